package maps

import (
	"sync"
	"time"

	"github.com/stacklok/solarmap/internal/meta"
)

// KindGeneric is the kind reported by the fallback map type
const KindGeneric = "GenericMap"

// Map is a classified, immutable image wrapping one metadata pair.
// Accessors that return data hand out copies; a Map is never reclassified.
type Map interface {
	// Kind names the concrete type, e.g. "AIAMap"
	Kind() string

	// Data returns a copy of the image array
	Data() *meta.Array

	// Meta returns a copy of the metadata
	Meta() meta.Metadata

	// Pair returns a copy of the underlying metadata pair
	Pair() meta.Pair

	// Date returns the observation time, if the metadata carries one
	Date() (time.Time, bool)

	Instrument() string
	Observatory() string
	Detector() string

	// Wavelength returns the wavelength keyword in the header's own unit
	Wavelength() (float64, bool)

	// Shape returns the array shape, slowest axis first
	Shape() []int
}

// GenericMap is the fallback map type used when no registered source matches.
// Instrument types embed it and override Kind.
type GenericMap struct {
	pair meta.Pair

	dateOnce sync.Once
	date     time.Time
	dated    bool
}

var _ Map = (*GenericMap)(nil)

// NewGenericMap wraps pair. The pair is owned by the map from here on.
func NewGenericMap(pair meta.Pair) *GenericMap {
	if pair.Meta == nil {
		pair.Meta = meta.Metadata{}
	}
	return &GenericMap{pair: pair}
}

// Kind implements Map
func (*GenericMap) Kind() string {
	return KindGeneric
}

// Data implements Map
func (m *GenericMap) Data() *meta.Array {
	return m.pair.Data.Clone()
}

// Meta implements Map
func (m *GenericMap) Meta() meta.Metadata {
	return m.pair.Meta.Clone()
}

// Pair implements Map
func (m *GenericMap) Pair() meta.Pair {
	return m.pair.Clone()
}

// Header exposes the metadata read-only without copying
func (m *GenericMap) Header() meta.Header {
	return meta.ReadOnly(m.pair.Meta)
}

// Date implements Map. The value is parsed once on first use.
func (m *GenericMap) Date() (time.Time, bool) {
	m.dateOnce.Do(func() {
		m.date, m.dated = meta.ObservationTime(m.pair.Meta)
	})
	return m.date, m.dated
}

// Instrument implements Map
func (m *GenericMap) Instrument() string {
	return m.pair.Meta.String("instrume")
}

// Observatory implements Map
func (m *GenericMap) Observatory() string {
	if obs := m.pair.Meta.String("obsrvtry"); obs != "" {
		return obs
	}
	return m.pair.Meta.String("telescop")
}

// Detector implements Map
func (m *GenericMap) Detector() string {
	return m.pair.Meta.String("detector")
}

// Wavelength implements Map
func (m *GenericMap) Wavelength() (float64, bool) {
	return m.pair.Meta.Float("wavelnth")
}

// Shape implements Map
func (m *GenericMap) Shape() []int {
	if m.pair.Data == nil {
		return nil
	}
	return append([]int(nil), m.pair.Data.Shape...)
}
