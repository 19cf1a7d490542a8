// Package meta provides the normalized (array, metadata) unit that every
// map input is reduced to before classification.
package meta

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Header is a read-only view over map metadata.
// Registration predicates only ever see a Header, never the mutable Metadata.
type Header interface {
	// Get returns the raw value stored under key
	Get(key string) (any, bool)

	// String returns the value under key formatted as a string, or "" if absent
	String(key string) string

	// Float returns the value under key as a float64 when it is numeric
	Float(key string) (float64, bool)

	// Has reports whether key is present
	Has(key string) bool
}

// Metadata maps case-insensitive keys to scalar or string values.
// Keys are always stored lower-case; inserting an existing key overwrites it.
type Metadata map[string]any

var _ Header = Metadata(nil)

// NormalizeKey returns the canonical form of a metadata key
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// NewMetadata builds Metadata from an arbitrary string-keyed map, normalizing keys.
// Keys that collide after normalization are applied in sorted order, so the
// last one in byte order wins.
func NewMetadata(kv map[string]any) Metadata {
	md := make(Metadata, len(kv))
	for _, k := range slices.Sorted(maps.Keys(kv)) {
		md.Set(k, kv[k])
	}
	return md
}

// FromStrings builds Metadata from a map of string values
func FromStrings(kv map[string]string) Metadata {
	md := make(Metadata, len(kv))
	for _, k := range slices.Sorted(maps.Keys(kv)) {
		md.Set(k, kv[k])
	}
	return md
}

// Set stores value under the normalized key
func (m Metadata) Set(key string, value any) {
	m[NormalizeKey(key)] = value
}

// Delete removes key if present
func (m Metadata) Delete(key string) {
	delete(m, NormalizeKey(key))
}

// Get returns the raw value stored under key
func (m Metadata) Get(key string) (any, bool) {
	v, ok := m[NormalizeKey(key)]
	return v, ok
}

// Has reports whether key is present
func (m Metadata) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// String returns the value under key formatted as a string.
// Strings are returned trimmed of trailing blanks, as FITS pads them.
func (m Metadata) String(key string) string {
	v, ok := m.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimRight(val, " ")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Float returns the value under key as a float64 when it is numeric
// or a string holding a number
func (m Metadata) Float(key string) (float64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Int returns the value under key as an int when it is integral
func (m Metadata) Int(key string) (int, bool) {
	f, ok := m.Float(key)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Keys returns the sorted list of keys
func (m Metadata) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Clone returns a shallow copy; values are scalars so this is a full copy in practice
func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	return maps.Clone(m)
}

// Merge writes every override into m, overwriting matching keys
func (m Metadata) Merge(overrides map[string]any) {
	for k, v := range overrides {
		m.Set(k, v)
	}
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ReadOnly wraps md so the holder cannot reach the underlying map
func ReadOnly(md Metadata) Header {
	return readOnlyHeader{md: md}
}

type readOnlyHeader struct {
	md Metadata
}

func (h readOnlyHeader) Get(key string) (any, bool)       { return h.md.Get(key) }
func (h readOnlyHeader) String(key string) string         { return h.md.String(key) }
func (h readOnlyHeader) Float(key string) (float64, bool) { return h.md.Float(key) }
func (h readOnlyHeader) Has(key string) bool              { return h.md.Has(key) }
