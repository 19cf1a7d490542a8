package sources

import (
	"slices"

	"github.com/stacklok/solarmap/internal/maps"
	"github.com/stacklok/solarmap/internal/meta"
)

// Hinode instrument kinds
const (
	KindSOT = "SOTMap"
	KindXRT = "XRTMap"
)

const observatoryHinode = "Hinode"

var sotInstruments = []string{"SOT/WB", "SOT/NB", "SOT/SP", "SOT/CT"}

// SOTMap is a Solar Optical Telescope image
type SOTMap struct {
	*maps.GenericMap
}

func newSOTMap(p meta.Pair) maps.Map {
	return &SOTMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*SOTMap) Kind() string { return KindSOT }

// Observatory implements maps.Map
func (*SOTMap) Observatory() string { return observatoryHinode }

// Detector implements maps.Map
func (*SOTMap) Detector() string { return "SOT" }

func isSOT(h meta.Header) bool {
	return slices.Contains(sotInstruments, value(h, "instrume"))
}

// XRTMap is an X-Ray Telescope image
type XRTMap struct {
	*maps.GenericMap
}

func newXRTMap(p meta.Pair) maps.Map {
	return &XRTMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*XRTMap) Kind() string { return KindXRT }

// Observatory implements maps.Map
func (*XRTMap) Observatory() string { return observatoryHinode }

// Detector implements maps.Map
func (*XRTMap) Detector() string { return "XRT" }

func isXRT(h meta.Header) bool {
	return equals(h, "instrume", "XRT")
}
