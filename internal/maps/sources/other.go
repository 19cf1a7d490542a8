package sources

import (
	"strings"

	"github.com/stacklok/solarmap/internal/maps"
	"github.com/stacklok/solarmap/internal/meta"
)

// Kinds for single-instrument missions
const (
	KindRHESSI = "RHESSIMap"
	KindSWAP   = "SWAPMap"
	KindSXT    = "SXTMap"
	KindTRACE  = "TRACEMap"
	KindSUVI   = "SUVIMap"
	KindEUI    = "EUIMap"
	KindIRIS   = "IRISMap"
	KindKCor   = "KCorMap"
)

// RHESSIMap is a reconstructed RHESSI X-ray image
type RHESSIMap struct {
	*maps.GenericMap
}

func newRHESSIMap(p meta.Pair) maps.Map {
	return &RHESSIMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*RHESSIMap) Kind() string { return KindRHESSI }

// Observatory implements maps.Map
func (*RHESSIMap) Observatory() string { return "RHESSI" }

func isRHESSI(h meta.Header) bool {
	return equals(h, "instrume", "RHESSI")
}

// SWAPMap is a PROBA2 SWAP image
type SWAPMap struct {
	*maps.GenericMap
}

func newSWAPMap(p meta.Pair) maps.Map {
	return &SWAPMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*SWAPMap) Kind() string { return KindSWAP }

// Observatory implements maps.Map
func (*SWAPMap) Observatory() string { return "PROBA2" }

func isSWAP(h meta.Header) bool {
	return equals(h, "instrume", "SWAP")
}

// SXTMap is a Yohkoh Soft X-ray Telescope image
type SXTMap struct {
	*maps.GenericMap
}

func newSXTMap(p meta.Pair) maps.Map {
	return &SXTMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*SXTMap) Kind() string { return KindSXT }

// Observatory implements maps.Map
func (*SXTMap) Observatory() string { return "Yohkoh" }

func isSXT(h meta.Header) bool {
	return equals(h, "instrume", "SXT")
}

// TRACEMap is a Transition Region and Coronal Explorer image
type TRACEMap struct {
	*maps.GenericMap
}

func newTRACEMap(p meta.Pair) maps.Map {
	return &TRACEMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*TRACEMap) Kind() string { return KindTRACE }

// Observatory implements maps.Map
func (*TRACEMap) Observatory() string { return "TRACE" }

func isTRACE(h meta.Header) bool {
	return equals(h, "instrume", "TRACE")
}

// SUVIMap is a GOES-R Solar Ultraviolet Imager image
type SUVIMap struct {
	*maps.GenericMap
}

func newSUVIMap(p meta.Pair) maps.Map {
	return &SUVIMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*SUVIMap) Kind() string { return KindSUVI }

// Detector implements maps.Map
func (*SUVIMap) Detector() string { return "SUVI" }

func isSUVI(h meta.Header) bool {
	return strings.Contains(value(h, "instrume"), "GOES-R Series Solar Ultraviolet Imager") &&
		hasPrefix(h, "telescop", "GOES")
}

// EUIMap is a Solar Orbiter Extreme Ultraviolet Imager image
type EUIMap struct {
	*maps.GenericMap
}

func newEUIMap(p meta.Pair) maps.Map {
	return &EUIMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*EUIMap) Kind() string { return KindEUI }

func isEUI(h meta.Header) bool {
	return equals(h, "instrume", "EUI") && equals(h, "obsrvtry", "Solar Orbiter")
}

// IRISMap is an IRIS slit-jaw image
type IRISMap struct {
	*maps.GenericMap
}

func newIRISMap(p meta.Pair) maps.Map {
	return &IRISMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*IRISMap) Kind() string { return KindIRIS }

// Observatory implements maps.Map
func (*IRISMap) Observatory() string { return "IRIS" }

func isIRIS(h meta.Header) bool {
	return hasPrefix(h, "instrume", "SJI")
}

// KCorMap is a MLSO K-Coronagraph image
type KCorMap struct {
	*maps.GenericMap
}

func newKCorMap(p meta.Pair) maps.Map {
	return &KCorMap{GenericMap: maps.NewGenericMap(p)}
}

// Kind implements maps.Map
func (*KCorMap) Kind() string { return KindKCor }

// Observatory implements maps.Map
func (*KCorMap) Observatory() string { return "MLSO" }

func isKCor(h meta.Header) bool {
	return equals(h, "instrume", "COSMO K-Coronagraph")
}
