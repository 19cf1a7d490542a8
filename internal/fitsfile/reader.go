// Package fitsfile reads and writes FITS images as metadata pairs.
package fitsfile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/stacklok/solarmap/internal/meta"
)

// ErrUnreadableFile is returned when a file is not a FITS file or holds no image data
var ErrUnreadableFile = errors.New("unreadable file")

// commentaryKeys are repeated cards that are joined into a single value
var commentaryKeys = map[string]bool{"COMMENT": true, "HISTORY": true, "": true, "END": true}

// Reader reads every image HDU of a FITS file
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a Reader. A nil logger uses slog.Default().
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// Read returns one pair per image HDU that carries data, in file order
func (r *Reader) Read(path string) (pairs []meta.Pair, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, path, err)
	}
	defer f.Close()

	// malformed headers can make the decoder panic
	defer func() {
		if rec := recover(); rec != nil {
			pairs = nil
			err = fmt.Errorf("%w: %s: %v", ErrUnreadableFile, path, rec)
		}
	}()

	fits, err := fitsio.Open(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, path, err)
	}
	defer fits.Close()

	for i, hdu := range fits.HDUs() {
		if hdu.Type() != fitsio.IMAGE_HDU {
			continue
		}
		img, ok := hdu.(fitsio.Image)
		if !ok {
			continue
		}

		pair, ok, err := readImage(img)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: hdu %d: %v", ErrUnreadableFile, path, i, err)
		}
		if !ok {
			continue
		}
		pairs = append(pairs, pair)
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: %s: no image data", ErrUnreadableFile, path)
	}

	r.logger.Debug("Read FITS file", "path", path, "images", len(pairs))
	return pairs, nil
}

// readImage converts one image HDU. It reports false for HDUs without data.
func readImage(img fitsio.Image) (meta.Pair, bool, error) {
	hdr := img.Header()
	axes := hdr.Axes()
	n := 0
	if len(axes) > 0 {
		n = 1
		for _, dim := range axes {
			n *= dim
		}
	}
	if n == 0 {
		return meta.Pair{}, false, nil
	}

	data, err := readPixels(img, hdr.Bitpix(), n)
	if err != nil {
		return meta.Pair{}, false, err
	}

	md := headerMetadata(hdr)
	applyScaling(data, md)

	// FITS lists the fastest axis first
	shape := make([]int, len(axes))
	for i, dim := range axes {
		shape[len(axes)-1-i] = dim
	}

	arr, err := meta.NewArray(shape, data)
	if err != nil {
		return meta.Pair{}, false, err
	}
	pair, err := meta.NewPair(arr, md)
	return pair, err == nil, err
}

func readPixels(img fitsio.Image, bitpix, n int) ([]float64, error) {
	out := make([]float64, n)
	switch bitpix {
	case 8:
		buf := make([]uint8, n)
		if err := img.Read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case 16:
		buf := make([]int16, n)
		if err := img.Read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case 32:
		buf := make([]int32, n)
		if err := img.Read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case 64:
		buf := make([]int64, n)
		if err := img.Read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case -32:
		buf := make([]float32, n)
		if err := img.Read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float64(v)
		}
	case -64:
		if err := img.Read(&out); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported BITPIX %d", bitpix)
	}
	return out, nil
}

func headerMetadata(hdr *fitsio.Header) meta.Metadata {
	md := meta.Metadata{}
	for _, key := range hdr.Keys() {
		if commentaryKeys[strings.ToUpper(key)] {
			continue
		}
		card := hdr.Get(key)
		if card == nil {
			continue
		}
		md.Set(key, card.Value)
	}
	if c := hdr.Comment(); c != "" {
		md.Set("comment", c)
	}
	if h := hdr.History(); h != "" {
		md.Set("history", h)
	}
	return md
}

// applyScaling converts stored values to physical values and drops the scaling keys
func applyScaling(data []float64, md meta.Metadata) {
	scale, hasScale := md.Float("bscale")
	zero, hasZero := md.Float("bzero")
	if !hasScale {
		scale = 1
	}
	if !hasZero {
		zero = 0
	}
	if scale != 1 || zero != 0 {
		for i, v := range data {
			data[i] = zero + scale*v
		}
	}
	md.Delete("bscale")
	md.Delete("bzero")
}
