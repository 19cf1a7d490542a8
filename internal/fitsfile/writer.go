package fitsfile

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/astrogo/fitsio"
	"github.com/google/uuid"

	"github.com/stacklok/solarmap/internal/maps"
)

// ErrWrite is returned when a map cannot be saved
var ErrWrite = errors.New("write error")

const (
	// FormatFITS is the only supported output format
	FormatFITS = "fits"

	maxKeyLength = 8
	// maxStringLength is the longest quoted value, after escaping, that fits on one card
	maxStringLength = 67
)

var fitsExtensions = map[string]bool{".fits": true, ".fts": true, ".fit": true}

// structuralKeys are written by the encoder itself
var structuralKeys = map[string]bool{
	"SIMPLE": true, "BITPIX": true, "NAXIS": true, "EXTEND": true,
	"XTENSION": true, "PCOUNT": true, "GCOUNT": true, "END": true,
	"BSCALE": true, "BZERO": true, "COMMENT": true, "HISTORY": true,
}

// Writer saves maps as single-image FITS files
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a Writer. A nil logger uses slog.Default().
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// Save writes m to dest. The format is inferred from the extension when empty.
// An existing dest is only replaced when overwrite is set.
func (w *Writer) Save(m maps.Map, dest, format string, overwrite bool) error {
	if m == nil {
		return fmt.Errorf("%w: nil map", ErrWrite)
	}
	if err := checkFormat(dest, format); err != nil {
		return err
	}

	if _, err := os.Stat(dest); err == nil {
		if !overwrite {
			return fmt.Errorf("%w: %s already exists", ErrWrite, dest)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s: %v", ErrWrite, dest, err)
	}

	dir := filepath.Dir(dest)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(dest), uuid.NewString()))

	if err := w.writeFile(m, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: failed to move into place: %v", ErrWrite, err)
	}

	w.logger.Debug("Saved map", "kind", m.Kind(), "path", dest)
	return nil
}

func checkFormat(dest, format string) error {
	switch strings.ToLower(format) {
	case FormatFITS, "fit", "fts":
		return nil
	case "":
		ext := strings.ToLower(filepath.Ext(dest))
		if fitsExtensions[ext] {
			return nil
		}
		return fmt.Errorf("%w: cannot infer format from %q", ErrWrite, dest)
	default:
		return fmt.Errorf("%w: unsupported format %q", ErrWrite, format)
	}
}

func (w *Writer) writeFile(m maps.Map, path string) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	defer out.Close()

	fits, err := fitsio.Create(out)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	data := m.Data()
	if data == nil {
		return fmt.Errorf("%w: map has no data", ErrWrite)
	}

	axes := make([]int, len(data.Shape))
	for i, dim := range data.Shape {
		axes[len(data.Shape)-1-i] = dim
	}

	img := fitsio.NewImage(-64, axes)
	defer img.Close()

	if err := img.Header().Append(w.cards(m)...); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	pixels := data.Data
	if err := img.Write(&pixels); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := fits.Write(img); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := fits.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// cards converts map metadata into header cards, in sorted key order
func (w *Writer) cards(m maps.Map) []fitsio.Card {
	md := m.Meta()
	cards := make([]fitsio.Card, 0, len(md))
	for _, key := range md.Keys() {
		name := strings.ToUpper(key)
		if structuralKeys[name] || strings.HasPrefix(name, "NAXIS") {
			continue
		}
		if len(name) > maxKeyLength {
			w.logger.Debug("Skipping header key longer than 8 characters", "key", key)
			continue
		}
		value, ok := cardValue(md[key])
		if !ok {
			w.logger.Debug("Skipping header key with unsupported value", "key", key)
			continue
		}
		cards = append(cards, fitsio.Card{Name: name, Value: value})
	}
	return cards
}

func cardValue(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case string:
		return quoteString(val), true
	case bool:
		return val, true
	case int:
		return val, true
	case int8:
		return int(val), true
	case int16:
		return int(val), true
	case int32:
		return int(val), true
	case int64:
		return int(val), true
	case uint8:
		return int(val), true
	case uint16:
		return int(val), true
	case uint32:
		return int(val), true
	case float32:
		return float64(val), true
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, false
		}
		return val, true
	default:
		return quoteString(fmt.Sprint(val)), true
	}
}

// quoteString doubles single quotes and cuts the result to maxStringLength
// without splitting an escaped quote or a multi-byte rune.
func quoteString(s string) string {
	var b strings.Builder
	for _, r := range s {
		piece := string(r)
		if r == '\'' {
			piece = "''"
		}
		if b.Len()+len(piece) > maxStringLength {
			break
		}
		b.WriteString(piece)
	}
	return b.String()
}
