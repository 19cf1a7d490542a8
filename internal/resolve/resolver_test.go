package resolve

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/solarmap/internal/maps"
	"github.com/stacklok/solarmap/internal/meta"
	"github.com/stacklok/solarmap/internal/pattern"
	"github.com/stacklok/solarmap/internal/resolve/mocks"
)

type recordHandle struct{ id int }

type descriptor struct{ ctype string }

func writeFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("data"), 0o600))
		paths = append(paths, p)
	}
	return paths
}

func testPair(t *testing.T) meta.Pair {
	t.Helper()
	arr, err := meta.NewArray([]int{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	p, err := meta.NewPair(arr, meta.NewMetadata(map[string]any{"instrume": "EIT"}))
	require.NoError(t, err)
	return p
}

func filePaths(sources []Source) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.Path)
	}
	return out
}

func TestResolve_Passthrough(t *testing.T) {
	t.Parallel()

	m := maps.NewGenericMap(testPair(t))
	sources, err := New().Resolve(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, SourceMap, sources[0].Kind)
	assert.Same(t, m, sources[0].Map)
}

func TestResolve_PairShapes(t *testing.T) {
	t.Parallel()

	arr, err := meta.NewArray([]int{1, 3}, []float64{1, 2, 3})
	require.NoError(t, err)
	header := map[string]any{"INSTRUME": "AIA"}
	pair := testPair(t)

	tests := []struct {
		name     string
		args     []any
		wantLen  int
		wantInst string
	}{
		{name: "pair value", args: []any{pair}, wantLen: 1, wantInst: "EIT"},
		{name: "pair pointer", args: []any{&pair}, wantLen: 1, wantInst: "EIT"},
		{name: "tuple", args: []any{[2]any{arr, header}}, wantLen: 1, wantInst: "AIA"},
		{name: "unwrapped", args: []any{arr, header}, wantLen: 1, wantInst: "AIA"},
		{name: "rows and string map", args: []any{[][]float64{{1, 2}}, map[string]string{"instrume": "XRT"}}, wantLen: 1, wantInst: "XRT"},
		{name: "flat data and metadata", args: []any{[]float64{1, 2}, meta.Metadata{"instrume": "SWAP"}}, wantLen: 1, wantInst: "SWAP"},
		{name: "two unwrapped pairs", args: []any{arr, header, *arr, header}, wantLen: 2, wantInst: "AIA"},
		{name: "pairs inside a list", args: []any{[]any{arr, header, pair}}, wantLen: 2, wantInst: "AIA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sources, err := New().Resolve(context.Background(), tt.args...)
			require.NoError(t, err)
			require.Len(t, sources, tt.wantLen)
			for _, s := range sources {
				assert.Equal(t, SourcePair, s.Kind)
				assert.NotNil(t, s.Pair.Data)
			}
			assert.Equal(t, tt.wantInst, sources[0].Pair.Meta.String("instrume"))
		})
	}
}

func TestResolve_TupleAndUnwrappedAreEquivalent(t *testing.T) {
	t.Parallel()

	arr, err := meta.NewArray([]int{1, 2}, []float64{5, 6})
	require.NoError(t, err)
	header := map[string]any{"INSTRUME": "EIT", "DATE-OBS": "2004-03-01T00:00:10"}

	r := New()
	tuple, err := r.Resolve(context.Background(), [2]any{arr, header})
	require.NoError(t, err)
	unwrapped, err := r.Resolve(context.Background(), arr, header)
	require.NoError(t, err)

	assert.Equal(t, tuple, unwrapped)
}

func TestResolve_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	arr, err := meta.NewArray([]int{1, 2}, []float64{5, 6})
	require.NoError(t, err)
	header := map[string]any{"INSTRUME": "EIT"}

	sources, err := New().Resolve(context.Background(), arr, header)
	require.NoError(t, err)

	sources[0].Pair.Data.Data[0] = 100
	sources[0].Pair.Meta.Set("instrume", "AIA")

	assert.Equal(t, 5.0, arr.Data[0])
	assert.Equal(t, "EIT", header["INSTRUME"])
	_, lower := header["instrume"]
	assert.False(t, lower, "caller map keys are not rewritten")
}

func TestResolve_Paths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := writeFiles(t, dir,
		"efz20040301.030010_s.fits",
		"efz20040301.010010_s.fits",
		"efz20040301.020010_s.fits",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))
	writeFiles(t, dir, ".hidden")

	sorted := []string{files[1], files[2], files[0]}

	tests := []struct {
		name       string
		args       []any
		want       []string
		wantOrigin SourceKind
	}{
		{name: "directory", args: []any{dir}, want: sorted, wantOrigin: SourceDirectory},
		{name: "directory as Path", args: []any{Path(dir)}, want: sorted, wantOrigin: SourceDirectory},
		{name: "single file", args: []any{files[0]}, want: files[:1], wantOrigin: SourceFile},
		{
			name:       "pattern",
			args:       []any{filepath.Join(dir, "efz20040301.0[1-2]0010_s.fits")},
			want:       []string{files[1], files[2]},
			wantOrigin: SourcePattern,
		},
		{name: "list of files keeps order", args: []any{[]string{files[0], files[1]}}, want: files[:2], wantOrigin: SourceFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sources, err := New().Resolve(context.Background(), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, filePaths(sources))
			for _, s := range sources {
				assert.Equal(t, SourceFile, s.Kind)
				assert.Equal(t, tt.wantOrigin, s.Origin)
			}
		})
	}
}

func TestResolve_DirectoryFollowsSymlinks(t *testing.T) {
	t.Parallel()

	fixtures := writeFiles(t, t.TempDir(), "a.fits", "b.fits")
	nested := t.TempDir()

	dir := t.TempDir()
	require.NoError(t, os.Symlink(fixtures[0], filepath.Join(dir, "frame1.fits")))
	require.NoError(t, os.Symlink(fixtures[1], filepath.Join(dir, "frame2.fits")))
	require.NoError(t, os.Symlink(nested, filepath.Join(dir, "linked-dir")))
	require.NoError(t, os.Symlink(filepath.Join(nested, "missing.fits"), filepath.Join(dir, "dangling.fits")))

	fromDir, err := New().Resolve(context.Background(), dir)
	require.NoError(t, err)
	want := []string{filepath.Join(dir, "frame1.fits"), filepath.Join(dir, "frame2.fits")}
	assert.Equal(t, want, filePaths(fromDir))

	fromPattern, err := New().Resolve(context.Background(), filepath.Join(dir, "frame*.fits"))
	require.NoError(t, err)
	assert.Equal(t, filePaths(fromPattern), filePaths(fromDir), "a directory and a pattern over it agree")
}

func TestUnrecognizedInputError_TruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	err := &UnrecognizedInputError{Value: strings.Repeat("a", 79) + "日本"}
	msg := err.Error()
	assert.True(t, utf8.ValidString(msg))
	assert.Contains(t, msg, strings.Repeat("a", 79)+"...")
}

func TestResolve_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := New().Resolve(context.Background(), filepath.Join(t.TempDir(), "efz[0-9.fits"))
	assert.ErrorIs(t, err, pattern.ErrInvalidPattern)
}

func TestResolve_Unrecognized(t *testing.T) {
	t.Parallel()

	arr, err := meta.NewArray([]int{1}, []float64{1})
	require.NoError(t, err)

	tests := []struct {
		name string
		args []any
	}{
		{name: "integer", args: []any{42}},
		{name: "missing file", args: []any{filepath.Join(t.TempDir(), "missing.fits")}},
		{name: "lone array", args: []any{arr}},
		{name: "array followed by a path", args: []any{arr, "x.fits"}},
		{name: "descriptor without converter", args: []any{arr, descriptor{ctype: "HPLN-TAN"}}},
		{name: "record without resolver", args: []any{recordHandle{id: 1}}},
		{name: "nested unrecognized", args: []any{[]any{3.14}}},
		{name: "empty string", args: []any{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New().Resolve(context.Background(), tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnrecognizedInput)

			var target *UnrecognizedInputError
			assert.ErrorAs(t, err, &target)
		})
	}
}

func TestResolve_FailureAbortsWholeCall(t *testing.T) {
	t.Parallel()

	files := writeFiles(t, t.TempDir(), "a.fits")
	sources, err := New().Resolve(context.Background(), files[0], 7)
	assert.ErrorIs(t, err, ErrUnrecognizedInput)
	assert.Nil(t, sources)
}

func TestResolve_URL(t *testing.T) {
	t.Parallel()

	const remote = "https://example.org/data/aia_lev1.fits?download=1"
	local := writeFiles(t, t.TempDir(), "cached.fits")[0]

	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), remote).Return(local, nil)

	sources, err := New(WithFetcher(fetcher)).Resolve(context.Background(), remote)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, SourceFile, sources[0].Kind)
	assert.Equal(t, SourceURL, sources[0].Origin)
	assert.Equal(t, local, sources[0].Path)
}

func TestResolve_URLErrors(t *testing.T) {
	t.Parallel()

	const remote = "http://example.org/eit.fits"

	_, err := New().Resolve(context.Background(), remote)
	assert.ErrorIs(t, err, ErrNoFetcher)

	fetchErr := errors.New("connection refused")
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), remote).Return("", fetchErr)

	_, err = New(WithFetcher(fetcher)).Resolve(context.Background(), remote)
	assert.ErrorIs(t, err, fetchErr)
}

func TestResolve_Record(t *testing.T) {
	t.Parallel()

	pair := testPair(t)
	handle := recordHandle{id: 7}

	ctrl := gomock.NewController(t)
	records := mocks.NewMockRecordResolver(ctrl)
	records.EXPECT().Accepts(handle).Return(true)
	records.EXPECT().Resolve(gomock.Any(), handle).Return(pair, nil)

	sources, err := New(WithRecordResolver(records)).Resolve(context.Background(), handle)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, SourcePair, sources[0].Kind)
	assert.Equal(t, SourceRecord, sources[0].Origin)
	assert.Equal(t, "EIT", sources[0].Pair.Meta.String("instrume"))
}

func TestResolve_RecordError(t *testing.T) {
	t.Parallel()

	notFound := errors.New("record not found")
	handle := recordHandle{id: 9}

	ctrl := gomock.NewController(t)
	records := mocks.NewMockRecordResolver(ctrl)
	records.EXPECT().Accepts(handle).Return(true)
	records.EXPECT().Resolve(gomock.Any(), handle).Return(meta.Pair{}, notFound)

	_, err := New(WithRecordResolver(records)).Resolve(context.Background(), handle)
	assert.ErrorIs(t, err, notFound)
}

func TestResolve_Descriptor(t *testing.T) {
	t.Parallel()

	arr, err := meta.NewArray([]int{1, 2}, []float64{1, 2})
	require.NoError(t, err)
	desc := descriptor{ctype: "HPLN-TAN"}

	ctrl := gomock.NewController(t)
	conv := mocks.NewMockDescriptorConverter(ctrl)
	conv.EXPECT().Accepts(desc).Return(true).Times(2)
	conv.EXPECT().ToMetadata(desc).Return(meta.Metadata{"ctype1": "HPLN-TAN"}, nil).Times(2)

	r := New(WithDescriptorConverter(conv))

	unwrapped, err := r.Resolve(context.Background(), arr, desc)
	require.NoError(t, err)
	require.Len(t, unwrapped, 1)
	assert.Equal(t, "HPLN-TAN", unwrapped[0].Pair.Meta.String("ctype1"))

	tuple, err := r.Resolve(context.Background(), [2]any{arr, desc})
	require.NoError(t, err)
	assert.Equal(t, unwrapped, tuple)
}

func TestSourceKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pattern", SourcePattern.String())
	assert.Equal(t, "record", SourceRecord.String())
	assert.Equal(t, "SourceKind(42)", SourceKind(42).String())
}
