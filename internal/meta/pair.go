package meta

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is returned when array data does not fill its declared shape
	ErrShapeMismatch = errors.New("array data does not match shape")

	// ErrNilArray is returned when a pair is built without data
	ErrNilArray = errors.New("pair requires a non-nil array")
)

// Array is an n-dimensional float64 array stored row-major, slowest axis first
type Array struct {
	Shape []int
	Data  []float64
}

// NewArray validates that data fills shape exactly and returns the array.
// The slices are copied so the caller keeps ownership of its own buffers.
func NewArray(shape []int, data []float64) (*Array, error) {
	n := 1
	for i, dim := range shape {
		if dim < 0 {
			return nil, fmt.Errorf("%w: axis %d has negative length %d", ErrShapeMismatch, i, dim)
		}
		n *= dim
	}
	if len(shape) == 0 {
		n = 0
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: shape %v holds %d values, got %d", ErrShapeMismatch, shape, n, len(data))
	}
	return &Array{
		Shape: append([]int(nil), shape...),
		Data:  append([]float64(nil), data...),
	}, nil
}

// FromRows builds a 2-D array from a slice of equal-length rows
func FromRows(rows [][]float64) (*Array, error) {
	if len(rows) == 0 {
		return &Array{Shape: []int{0, 0}}, nil
	}
	width := len(rows[0])
	data := make([]float64, 0, len(rows)*width)
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrShapeMismatch, i, len(row), width)
		}
		data = append(data, row...)
	}
	return &Array{Shape: []int{len(rows), width}, Data: data}, nil
}

// Len returns the number of elements
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}

// Clone returns a deep copy of the array
func (a *Array) Clone() *Array {
	if a == nil {
		return nil
	}
	return &Array{
		Shape: append([]int(nil), a.Shape...),
		Data:  append([]float64(nil), a.Data...),
	}
}

// Pair is the canonical (data, metadata) unit. Both halves are always set together.
type Pair struct {
	Data *Array
	Meta Metadata
}

// NewPair builds a pair, rejecting a nil array. A nil metadata map becomes empty.
func NewPair(data *Array, md Metadata) (Pair, error) {
	if data == nil {
		return Pair{}, ErrNilArray
	}
	if md == nil {
		md = Metadata{}
	}
	return Pair{Data: data, Meta: md}, nil
}

// Clone returns a deep copy of the pair
func (p Pair) Clone() Pair {
	return Pair{Data: p.Data.Clone(), Meta: p.Meta.Clone()}
}
