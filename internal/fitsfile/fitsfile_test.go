package fitsfile_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/solarmap/internal/fitsfile"
	"github.com/stacklok/solarmap/internal/fitsfile/fitstest"
	"github.com/stacklok/solarmap/internal/maps"
	"github.com/stacklok/solarmap/internal/maps/sources"
)

func TestReader_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := fitstest.WriteFile(t, dir, "aia.fits", map[string]any{
		"INSTRUME": "AIA_3",
		"TELESCOP": "SDO/AIA",
		"WAVELNTH": 171,
		"EXPTIME":  2.9,
		"SIMPLE":   true,
		"BITPIX":   16,
	})

	pairs, err := fitsfile.NewReader(nil).Read(path)
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	pair := pairs[0]
	assert.Equal(t, []int{3, 4}, pair.Data.Shape)
	assert.Equal(t, 11.0, pair.Data.Data[11])
	assert.Equal(t, "AIA_3", pair.Meta.String("instrume"))

	wl, ok := pair.Meta.Int("wavelnth")
	require.True(t, ok)
	assert.Equal(t, 171, wl)

	exp, ok := pair.Meta.Float("exptime")
	require.True(t, ok)
	assert.InDelta(t, 2.9, exp, 1e-12)

	bitpix, ok := pair.Meta.Int("bitpix")
	require.True(t, ok)
	assert.Equal(t, -64, bitpix, "structural keys come from the written image")
}

func TestReader_Unreadable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.fits")
	require.NoError(t, os.WriteFile(garbage, []byte("this is not a FITS file"), 0o600))

	tests := []struct {
		name string
		path string
	}{
		{name: "garbage", path: garbage},
		{name: "missing", path: filepath.Join(dir, "missing.fits")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := fitsfile.NewReader(nil).Read(tt.path)
			assert.ErrorIs(t, err, fitsfile.ErrUnreadableFile)
		})
	}
}

func TestWriter_Overwrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := fitstest.WriteFile(t, dir, "eit.fits", fitstest.Headers["EITMap"])
	m := maps.NewGenericMap(fitstest.NewPair(t, fitstest.Headers["AIAMap"]))
	w := fitsfile.NewWriter(nil)

	err := w.Save(m, path, "", false)
	assert.ErrorIs(t, err, fitsfile.ErrWrite)

	require.NoError(t, w.Save(m, path, "", true))
	pairs, err := fitsfile.NewReader(nil).Read(path)
	require.NoError(t, err)
	assert.Equal(t, "AIA_3", pairs[0].Meta.String("instrume"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestWriter_Format(t *testing.T) {
	t.Parallel()

	m := maps.NewGenericMap(fitstest.NewPair(t, fitstest.Headers["EITMap"]))

	tests := []struct {
		name    string
		file    string
		format  string
		wantErr bool
	}{
		{name: "explicit fits", file: "a.dat", format: "fits"},
		{name: "inferred fits", file: "a.fits"},
		{name: "inferred fts", file: "a.fts"},
		{name: "inferred fit upper case", file: "a.FIT"},
		{name: "unknown extension", file: "a.jp2", wantErr: true},
		{name: "unsupported format", file: "a.fits", format: "jpeg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fitsfile.NewWriter(nil).Save(m, filepath.Join(t.TempDir(), tt.file), tt.format, false)
			if tt.wantErr {
				assert.ErrorIs(t, err, fitsfile.ErrWrite)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestWriter_QuotedStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "plain", value: "SDO/AIA", want: "SDO/AIA"},
		{name: "apostrophe", value: "O'Neil", want: "O'Neil"},
		{name: "only quotes", value: "''", want: "''"},
		{name: "long value cut after escaping", value: strings.Repeat("It's ", 14), want: strings.Repeat("It's ", 11) + "I"},
		{name: "escaped quote is not split", value: strings.Repeat("a", 66) + "'b", want: strings.Repeat("a", 66)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := fitstest.WriteFile(t, t.TempDir(), "quoted.fits", map[string]any{"OBSERVER": tt.value})

			pairs, err := fitsfile.NewReader(nil).Read(path)
			require.NoError(t, err)
			require.Len(t, pairs, 1)
			assert.Equal(t, tt.want, pairs[0].Meta.String("observer"))
		})
	}
}

func TestSave_ReclassifiesToSameKind(t *testing.T) {
	t.Parallel()

	reg, err := sources.NewRegistry()
	require.NoError(t, err)

	for kind, header := range fitstest.Headers {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			original := reg.Build(fitstest.NewPair(t, header))
			require.Equal(t, kind, original.Kind())

			path := filepath.Join(t.TempDir(), "roundtrip.fits")
			require.NoError(t, fitsfile.NewWriter(nil).Save(original, path, "", false))

			pairs, err := fitsfile.NewReader(nil).Read(path)
			require.NoError(t, err)
			require.Len(t, pairs, 1)

			again := reg.Build(pairs[0])
			assert.Equal(t, original.Kind(), again.Kind())
			assert.Equal(t, original.Data().Data, again.Data().Data)

			wantDate, wantOK := original.Date()
			gotDate, gotOK := again.Date()
			assert.Equal(t, wantOK, gotOK)
			assert.True(t, wantDate.Equal(gotDate))
		})
	}
}
