package sources

import (
	"strings"

	"github.com/stacklok/solarmap/internal/maps"
	"github.com/stacklok/solarmap/internal/meta"
)

// SDO instrument kinds
const (
	KindHMISynoptic = "HMISynopticMap"
	KindHMI         = "HMIMap"
	KindAIA         = "AIAMap"
)

// AIAMap is an Atmospheric Imaging Assembly image
type AIAMap struct {
	*maps.GenericMap
}

func newAIAMap(p meta.Pair) maps.Map {
	return &AIAMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*AIAMap) Kind() string { return KindAIA }

// Observatory implements maps.Map
func (*AIAMap) Observatory() string { return "SDO" }

// Detector implements maps.Map
func (m *AIAMap) Detector() string {
	if d := m.GenericMap.Detector(); d != "" {
		return d
	}
	return "AIA"
}

func isAIA(h meta.Header) bool {
	return hasPrefix(h, "instrume", "AIA")
}

// HMIMap is a Helioseismic and Magnetic Imager image
type HMIMap struct {
	*maps.GenericMap
}

func newHMIMap(p meta.Pair) maps.Map {
	return &HMIMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*HMIMap) Kind() string { return KindHMI }

// Observatory implements maps.Map
func (*HMIMap) Observatory() string { return "SDO" }

// Detector implements maps.Map
func (*HMIMap) Detector() string { return "HMI" }

// Measurement returns the observable, e.g. "magnetogram" or "continuum"
func (m *HMIMap) Measurement() string {
	content := strings.ToLower(m.Header().String("content"))
	return strings.TrimSpace(strings.SplitN(content, "[", 2)[0])
}

func isHMI(h meta.Header) bool {
	return strings.HasSuffix(value(h, "telescop"), "HMI")
}

// HMISynopticMap is an HMI synoptic (Carrington rotation) chart
type HMISynopticMap struct {
	*HMIMap
}

func newHMISynopticMap(p meta.Pair) maps.Map {
	return &HMISynopticMap{HMIMap: &HMIMap{GenericMap: maps.NewGenericMap(p)}}
}

// Kind implements maps.Map
func (*HMISynopticMap) Kind() string { return KindHMISynoptic }

func isHMISynoptic(h meta.Header) bool {
	return equals(h, "telescop", "SDO/HMI") &&
		strings.Contains(strings.ToLower(h.String("content")), "synoptic")
}
