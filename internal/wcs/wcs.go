// Package wcs converts coordinate descriptors into header metadata.
package wcs

import (
	"errors"
	"fmt"

	"github.com/stacklok/solarmap/internal/meta"
)

// ErrNotDescriptor is returned when ToMetadata is given an unsupported value
var ErrNotDescriptor = errors.New("not a coordinate descriptor")

// Descriptor describes the world coordinate system of a 2-D image
type Descriptor struct {
	CType [2]string
	CUnit [2]string
	CRPix [2]float64
	CRVal [2]float64
	CDelt [2]float64

	// DateObs is the observation time, in any format meta.ParseTime accepts
	DateObs string
	// RSun is the reference solar radius in meters
	RSun float64
	// Observer names the observatory
	Observer string
}

// Converter implements resolve.DescriptorConverter for Descriptor values
type Converter struct{}

// NewConverter creates a Converter
func NewConverter() *Converter {
	return &Converter{}
}

// Accepts reports whether v is a Descriptor or *Descriptor
func (*Converter) Accepts(v any) bool {
	switch d := v.(type) {
	case Descriptor:
		return true
	case *Descriptor:
		return d != nil
	default:
		return false
	}
}

// ToMetadata converts a descriptor into FITS-style header keys
func (c *Converter) ToMetadata(v any) (meta.Metadata, error) {
	var d Descriptor
	switch val := v.(type) {
	case Descriptor:
		d = val
	case *Descriptor:
		if val == nil {
			return nil, fmt.Errorf("%w: nil", ErrNotDescriptor)
		}
		d = *val
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotDescriptor, v)
	}

	md := meta.Metadata{}
	md.Set("naxis", 2)
	for i := range 2 {
		n := i + 1
		md.Set(fmt.Sprintf("ctype%d", n), d.CType[i])
		md.Set(fmt.Sprintf("cunit%d", n), d.CUnit[i])
		md.Set(fmt.Sprintf("crpix%d", n), d.CRPix[i])
		md.Set(fmt.Sprintf("crval%d", n), d.CRVal[i])
		md.Set(fmt.Sprintf("cdelt%d", n), d.CDelt[i])
	}

	if d.DateObs != "" {
		md.Set("date-obs", d.DateObs)
	}
	if d.RSun != 0 {
		md.Set("rsun_ref", d.RSun)
	}
	if d.Observer != "" {
		md.Set("obsrvtry", d.Observer)
	}
	return md, nil
}
