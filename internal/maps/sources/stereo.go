package sources

import (
	"github.com/stacklok/solarmap/internal/maps"
	"github.com/stacklok/solarmap/internal/meta"
)

// STEREO SECCHI instrument kinds
const (
	KindEUVI = "EUVIMap"
	KindCOR  = "CORMap"
	KindHI   = "HIMap"
)

// EUVIMap is a SECCHI Extreme Ultraviolet Imager image
type EUVIMap struct {
	*maps.GenericMap
}

func newEUVIMap(p meta.Pair) maps.Map {
	return &EUVIMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*EUVIMap) Kind() string { return KindEUVI }

func isEUVI(h meta.Header) bool {
	return equals(h, "detector", "EUVI")
}

// CORMap is a SECCHI coronagraph (COR1 or COR2) image
type CORMap struct {
	*maps.GenericMap
}

func newCORMap(p meta.Pair) maps.Map {
	return &CORMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*CORMap) Kind() string { return KindCOR }

func isCOR(h meta.Header) bool {
	return hasPrefix(h, "detector", "COR")
}

// HIMap is a SECCHI Heliospheric Imager (HI1 or HI2) image
type HIMap struct {
	*maps.GenericMap
}

func newHIMap(p meta.Pair) maps.Map {
	return &HIMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*HIMap) Kind() string { return KindHI }

func isHI(h meta.Header) bool {
	return hasPrefix(h, "detector", "HI")
}
