package maps

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"
)

var (
	// ErrIndexOutOfRange is returned when a container index is invalid
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidAlpha is returned when a layer alpha falls outside [0, 1]
	ErrInvalidAlpha = errors.New("alpha must be between 0 and 1")
)

// SortByDate stable-sorts maps by observation time ascending.
// Maps without a date go last and keep their relative order.
func SortByDate(items []Map) {
	slices.SortStableFunc(items, func(a, b Map) int {
		ta, oka := a.Date()
		tb, okb := b.Date()
		switch {
		case oka && okb:
			return ta.Compare(tb)
		case oka:
			return -1
		case okb:
			return 1
		default:
			return 0
		}
	})
}

// Sequence is an ordered collection of maps for stepping through time.
// It may be empty.
type Sequence struct {
	maps []Map
}

// NewSequence builds a sequence in the given order
func NewSequence(items ...Map) *Sequence {
	return &Sequence{maps: append(make([]Map, 0, len(items)), items...)}
}

// Len returns the number of maps
func (s *Sequence) Len() int {
	return len(s.maps)
}

// At returns the map at index i
func (s *Sequence) At(i int) (Map, error) {
	if i < 0 || i >= len(s.maps) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.maps))
	}
	return s.maps[i], nil
}

// Maps returns a copy of the maps in sequence order
func (s *Sequence) Maps() []Map {
	return append(make([]Map, 0, len(s.maps)), s.maps...)
}

// All iterates the sequence in order
func (s *Sequence) All() iter.Seq2[int, Map] {
	return slices.All(s.maps)
}

// Dates returns each map's observation time; undated maps yield the zero time
func (s *Sequence) Dates() []time.Time {
	dates := make([]time.Time, len(s.maps))
	for i, m := range s.maps {
		dates[i], _ = m.Date()
	}
	return dates
}

// Layer is one map in a composite with its display settings
type Layer struct {
	Map    Map
	Alpha  float64
	ZOrder int
	Levels []float64
}

// Composite overlays maps for simultaneous use. Layers keep insertion order.
// It may be empty.
type Composite struct {
	layers []Layer
}

// NewComposite builds a composite with one opaque layer per map
func NewComposite(items ...Map) *Composite {
	c := &Composite{layers: make([]Layer, 0, len(items))}
	for _, m := range items {
		c.Add(m)
	}
	return c
}

// Add appends a layer on top of the existing ones
func (c *Composite) Add(m Map) {
	c.layers = append(c.layers, Layer{Map: m, Alpha: 1, ZOrder: len(c.layers)})
}

// Len returns the number of layers
func (c *Composite) Len() int {
	return len(c.layers)
}

// Layer returns a copy of layer i
func (c *Composite) Layer(i int) (Layer, error) {
	if i < 0 || i >= len(c.layers) {
		return Layer{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(c.layers))
	}
	l := c.layers[i]
	l.Levels = slices.Clone(l.Levels)
	return l, nil
}

// Layers returns a copy of all layers in insertion order
func (c *Composite) Layers() []Layer {
	out := make([]Layer, len(c.layers))
	for i, l := range c.layers {
		l.Levels = slices.Clone(l.Levels)
		out[i] = l
	}
	return out
}

// Maps returns the layer maps in insertion order
func (c *Composite) Maps() []Map {
	out := make([]Map, len(c.layers))
	for i, l := range c.layers {
		out[i] = l.Map
	}
	return out
}

// SetAlpha sets the opacity of layer i
func (c *Composite) SetAlpha(i int, alpha float64) error {
	if i < 0 || i >= len(c.layers) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(c.layers))
	}
	if !(alpha >= 0 && alpha <= 1) {
		return fmt.Errorf("%w: got %g", ErrInvalidAlpha, alpha)
	}
	c.layers[i].Alpha = alpha
	return nil
}

// SetZOrder sets the stacking position of layer i
func (c *Composite) SetZOrder(i, z int) error {
	if i < 0 || i >= len(c.layers) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(c.layers))
	}
	c.layers[i].ZOrder = z
	return nil
}

// SetLevels sets the contour levels drawn for layer i
func (c *Composite) SetLevels(i int, levels []float64) error {
	if i < 0 || i >= len(c.layers) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(c.layers))
	}
	c.layers[i].Levels = slices.Clone(levels)
	return nil
}
