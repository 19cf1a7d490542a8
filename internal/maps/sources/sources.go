// Package sources defines the instrument-specific map types and the
// predicates that recognize their headers.
//
// Register adds every source to a registry in documented precedence order,
// most specific first. Where two predicates could accept the same header the
// earlier entry wins; for example HMISynopticMap is listed before HMIMap.
package sources

import (
	"fmt"
	"strings"

	"github.com/stacklok/solarmap/internal/maps"
	"github.com/stacklok/solarmap/internal/meta"
)

// Entries returns the instrument entries in precedence order
func Entries() []maps.Entry {
	return []maps.Entry{
		{Name: KindHMISynoptic, Predicate: isHMISynoptic, Construct: newHMISynopticMap},
		{Name: KindHMI, Predicate: isHMI, Construct: newHMIMap},
		{Name: KindAIA, Predicate: isAIA, Construct: newAIAMap},
		{Name: KindEIT, Predicate: isEIT, Construct: newEITMap},
		{Name: KindLASCO, Predicate: isLASCO, Construct: newLASCOMap},
		{Name: KindMDI, Predicate: isMDI, Construct: newMDIMap},
		{Name: KindEUVI, Predicate: isEUVI, Construct: newEUVIMap},
		{Name: KindCOR, Predicate: isCOR, Construct: newCORMap},
		{Name: KindHI, Predicate: isHI, Construct: newHIMap},
		{Name: KindRHESSI, Predicate: isRHESSI, Construct: newRHESSIMap},
		{Name: KindSOT, Predicate: isSOT, Construct: newSOTMap},
		{Name: KindSWAP, Predicate: isSWAP, Construct: newSWAPMap},
		{Name: KindXRT, Predicate: isXRT, Construct: newXRTMap},
		{Name: KindSXT, Predicate: isSXT, Construct: newSXTMap},
		{Name: KindTRACE, Predicate: isTRACE, Construct: newTRACEMap},
		{Name: KindSUVI, Predicate: isSUVI, Construct: newSUVIMap},
		{Name: KindEUI, Predicate: isEUI, Construct: newEUIMap},
		{Name: KindIRIS, Predicate: isIRIS, Construct: newIRISMap},
		{Name: KindKCor, Predicate: isKCor, Construct: newKCorMap},
	}
}

// Register adds every instrument source to reg. It does not seal the registry,
// so callers may append their own sources afterwards.
func Register(reg *maps.Registry) error {
	for _, e := range Entries() {
		if err := reg.Register(e.Name, e.Predicate, e.Construct); err != nil {
			return fmt.Errorf("failed to register %s: %w", e.Name, err)
		}
	}
	return nil
}

// NewRegistry returns a sealed registry holding every instrument source
func NewRegistry(opts ...maps.RegistryOption) (*maps.Registry, error) {
	reg := maps.NewRegistry(opts...)
	if err := Register(reg); err != nil {
		return nil, err
	}
	reg.Seal()
	return reg, nil
}

func value(h meta.Header, key string) string {
	return strings.TrimSpace(h.String(key))
}

func equals(h meta.Header, key, want string) bool {
	return value(h, key) == want
}

func hasPrefix(h meta.Header, key, prefix string) bool {
	return strings.HasPrefix(value(h, key), prefix)
}
