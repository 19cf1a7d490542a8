package pattern

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eitFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, digit := range []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"} {
		name := "efz20040301.0" + digit + "0010_s.fits"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "EFZ20040301.000010_S.FITS"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".efz20040301.000010_s.fits"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	return dir
}

func TestHasMeta(t *testing.T) {
	t.Parallel()

	assert.True(t, HasMeta("a*.fits"))
	assert.True(t, HasMeta("a?.fits"))
	assert.True(t, HasMeta("a[12].fits"))
	assert.False(t, HasMeta("/data/eit/efz.fits"))
}

func TestExpand(t *testing.T) {
	t.Parallel()

	dir := eitFixture(t)
	frame := func(digits ...string) []string {
		out := make([]string, 0, len(digits))
		for _, d := range digits {
			out = append(out, filepath.Join(dir, "efz20040301.0"+d+"0010_s.fits"))
		}
		return out
	}

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{
			name:    "single character wildcard",
			pattern: "efz20040301.0?0010_s.fits",
			want:    frame("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"),
		},
		{
			name:    "inclusive range",
			pattern: "efz20040301.0[2-6]0010_s.fits",
			want:    frame("2", "3", "4", "5", "6"),
		},
		{
			name:    "explicit set",
			pattern: "efz20040301.0[19]0010_s.fits",
			want:    frame("1", "9"),
		},
		{
			name:    "negated set",
			pattern: "efz20040301.0[!0-7]0010_s.fits",
			want:    frame("8", "9"),
		},
		{
			name:    "star skips hidden files and is case sensitive",
			pattern: "efz*.fits",
			want:    frame("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"),
		},
		{
			name:    "anchored match",
			pattern: "efz20040301.0?0010_s",
			want:    []string{},
		},
		{
			name:    "no matches",
			pattern: "aia*.fits",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Expand(filepath.Join(dir, tt.pattern))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpand_EmptyOrMissingDirectory(t *testing.T) {
	t.Parallel()

	empty := t.TempDir()
	got, err := Expand(filepath.Join(empty, "*.fits"))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Expand(filepath.Join(empty, "missing", "*.fits"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpand_InvalidPattern(t *testing.T) {
	t.Parallel()

	dir := eitFixture(t)

	tests := []struct {
		name    string
		pattern string
	}{
		{name: "unterminated bracket", pattern: filepath.Join(dir, "efz[0-9.fits")},
		{name: "wildcard in directory", pattern: filepath.Join(dir+"*", "efz*.fits")},
		{name: "no file name", pattern: dir + string(filepath.Separator)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Expand(tt.pattern)
			assert.ErrorIs(t, err, ErrInvalidPattern)
		})
	}
}

func TestCompile_BracesAreLiteral(t *testing.T) {
	t.Parallel()

	g, err := Compile("map{1}*.fits")
	require.NoError(t, err)
	assert.True(t, g.Match("map{1}_a.fits"))
	assert.False(t, g.Match("map1_a.fits"))
}
