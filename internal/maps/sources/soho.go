package sources

import (
	"github.com/stacklok/solarmap/internal/maps"
	"github.com/stacklok/solarmap/internal/meta"
)

// SOHO instrument kinds
const (
	KindEIT   = "EITMap"
	KindLASCO = "LASCOMap"
	KindMDI   = "MDIMap"
)

const observatorySOHO = "SOHO"

// EITMap is an Extreme ultraviolet Imaging Telescope image
type EITMap struct {
	*maps.GenericMap
}

func newEITMap(p meta.Pair) maps.Map {
	return &EITMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*EITMap) Kind() string { return KindEIT }

// Observatory implements maps.Map
func (*EITMap) Observatory() string { return observatorySOHO }

// Detector implements maps.Map
func (*EITMap) Detector() string { return "EIT" }

func isEIT(h meta.Header) bool {
	return equals(h, "instrume", "EIT")
}

// LASCOMap is a Large Angle and Spectrometric Coronagraph image
type LASCOMap struct {
	*maps.GenericMap
}

func newLASCOMap(p meta.Pair) maps.Map {
	return &LASCOMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*LASCOMap) Kind() string { return KindLASCO }

// Observatory implements maps.Map
func (*LASCOMap) Observatory() string { return observatorySOHO }

func isLASCO(h meta.Header) bool {
	return equals(h, "instrume", "LASCO")
}

// MDIMap is a Michelson Doppler Imager image
type MDIMap struct {
	*maps.GenericMap
}

func newMDIMap(p meta.Pair) maps.Map {
	return &MDIMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*MDIMap) Kind() string { return KindMDI }

// Observatory implements maps.Map
func (*MDIMap) Observatory() string { return observatorySOHO }

// Detector implements maps.Map
func (*MDIMap) Detector() string { return "MDI" }

// Instrument implements maps.Map. Older MDI files only set CAMERA.
func (m *MDIMap) Instrument() string {
	if inst := m.GenericMap.Instrument(); inst != "" {
		return inst
	}
	return "MDI"
}

func isMDI(h meta.Header) bool {
	return equals(h, "instrume", "MDI") || equals(h, "camera", "MDI")
}
