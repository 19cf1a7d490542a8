package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/solarmap/internal/httpclient"
	"github.com/stacklok/solarmap/internal/httpclient/mocks"
)

const body = "SIMPLE  =                    T"

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(server.Close)
	return server
}

func countingHandler(hits *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = fmt.Fprint(w, body)
	}
}

func noWait() backoff.BackOff {
	return &backoff.ZeroBackOff{}
}

func newFetcher(t *testing.T, dir string, opts ...Option) *Fetcher {
	t.Helper()
	f, err := New(dir, append([]Option{WithBackOff(noWait)}, opts...)...)
	require.NoError(t, err)
	return f
}

func TestCacheName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		wantExt string
	}{
		{name: "fits extension", url: "https://example.org/eit/efz20040301.000010_s.fits", wantExt: ".fits"},
		{name: "query ignored", url: "https://example.org/data/aia.fts?download=1", wantExt: ".fts"},
		{name: "no extension", url: "https://example.org/data/latest", wantExt: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			name := CacheName(tt.url)
			assert.Len(t, strings.TrimSuffix(name, tt.wantExt), 64)
			assert.True(t, strings.HasSuffix(name, tt.wantExt))
			assert.Equal(t, name, CacheName(tt.url))
		})
	}

	assert.NotEqual(t, CacheName("https://example.org/a.fits"), CacheName("https://example.org/b.fits"))
}

func TestFetch_DownloadsOnceWhileFresh(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := newTestServer(t, countingHandler(&hits))
	dir := t.TempDir()
	f := newFetcher(t, dir)
	url := server.URL + "/eit/efz.fits"

	first, err := f.Fetch(context.Background(), url)
	require.NoError(t, err)
	second, err := f.Fetch(context.Background(), url)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, filepath.Join(dir, CacheName(url)), first)
	assert.EqualValues(t, 1, hits.Load())

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	leftovers, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFetch_FreshnessSurvivesRestart(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := newTestServer(t, countingHandler(&hits))
	dir := t.TempDir()
	url := server.URL + "/a.fits"

	_, err := newFetcher(t, dir).Fetch(context.Background(), url)
	require.NoError(t, err)
	_, err = newFetcher(t, dir).Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestFetch_StaleFileIsRefetched(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := newTestServer(t, countingHandler(&hits))
	dir := t.TempDir()
	url := server.URL + "/a.fits"
	f := newFetcher(t, dir, WithTTL(time.Hour))

	local, err := f.Fetch(context.Background(), url)
	require.NoError(t, err)

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(local, old, old))

	_, err = newFetcher(t, dir, WithTTL(time.Hour)).Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load())
}

func TestFetch_ZeroTTLAlwaysDownloads(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := newTestServer(t, countingHandler(&hits))
	f := newFetcher(t, t.TempDir(), WithTTL(0))

	for range 3 {
		_, err := f.Fetch(context.Background(), server.URL+"/a.fits")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 3, hits.Load())
}

func TestFetch_Retries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		failures   []int
		maxRetries uint
		wantHits   int32
		wantStatus int
	}{
		{name: "recovers from server errors", failures: []int{503, 500}, maxRetries: 3, wantHits: 3},
		{name: "retries rate limiting", failures: []int{429}, maxRetries: 1, wantHits: 2},
		{name: "not found is permanent", failures: []int{404, 404, 404}, maxRetries: 3, wantHits: 1, wantStatus: 404},
		{name: "forbidden is permanent", failures: []int{403}, maxRetries: 3, wantHits: 1, wantStatus: 403},
		{name: "gives up after max retries", failures: []int{502, 502, 502}, maxRetries: 2, wantHits: 3, wantStatus: 502},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var hits atomic.Int32
			server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				n := int(hits.Add(1))
				if n <= len(tt.failures) {
					w.WriteHeader(tt.failures[n-1])
					return
				}
				_, _ = fmt.Fprint(w, body)
			})
			dir := t.TempDir()
			f := newFetcher(t, dir, WithMaxRetries(tt.maxRetries))
			url := server.URL + "/a.fits"

			local, err := f.Fetch(context.Background(), url)
			assert.Equal(t, tt.wantHits, hits.Load())

			if tt.wantStatus == 0 {
				require.NoError(t, err)
				data, err := os.ReadFile(local)
				require.NoError(t, err)
				assert.Equal(t, body, string(data), "failed attempts leave no partial content")
				return
			}

			assert.ErrorIs(t, err, ErrFetch)
			var fetchErr *FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, url, fetchErr.URL)
			var httpErr *httpclient.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)

			_, statErr := os.Stat(filepath.Join(dir, CacheName(url)))
			assert.True(t, errors.Is(statErr, os.ErrNotExist))
		})
	}
}

func TestFetch_ConcurrentCallsShareDownload(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	release := make(chan struct{})
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		<-release
		_, _ = fmt.Fprint(w, body)
	})
	f := newFetcher(t, t.TempDir())
	url := server.URL + "/shared.fits"

	const callers = 8
	var wg sync.WaitGroup
	paths := make([]string, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			paths[i], errs[i] = f.Fetch(context.Background(), url)
		}()
	}

	require.Eventually(t, func() bool { return hits.Load() == 1 }, 5*time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, hits.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, paths[0], paths[i])
	}
}

func TestFetch_CancelledCallerDoesNotFailOthers(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	release := make(chan struct{})
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		<-release
		_, _ = fmt.Fprint(w, body)
	})
	f := newFetcher(t, t.TempDir())
	url := server.URL + "/cancelled.fits"

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := f.Fetch(ctx, url)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return hits.Load() == 1 }, 5*time.Second, 5*time.Millisecond)

	secondErr := make(chan error, 1)
	go func() {
		_, err := f.Fetch(context.Background(), url)
		secondErr <- err
	}()

	cancel()
	err := <-firstErr
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	require.NoError(t, <-secondErr)
	assert.EqualValues(t, 1, hits.Load())
}

func TestFetch_InvalidURL(t *testing.T) {
	t.Parallel()

	f := newFetcher(t, t.TempDir())
	for _, raw := range []string{"https://", "://nohost", "http://bad host/x"} {
		_, err := f.Fetch(context.Background(), raw)
		assert.ErrorIs(t, err, ErrFetch, raw)
	}
}

func TestFetch_ClientErrors(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	f := newFetcher(t, t.TempDir(), WithClient(client), WithMaxRetries(2))

	client.EXPECT().
		Download(gomock.Any(), "https://example.org/big.fits", gomock.Any()).
		Return(int64(0), httpclient.ErrResponseTooLarge).
		Times(1)
	_, err := f.Fetch(context.Background(), "https://example.org/big.fits")
	assert.ErrorIs(t, err, httpclient.ErrResponseTooLarge)

	gomock.InOrder(
		client.EXPECT().
			Download(gomock.Any(), "https://example.org/flaky.fits", gomock.Any()).
			Return(int64(0), errors.New("connection reset by peer")),
		client.EXPECT().
			Download(gomock.Any(), "https://example.org/flaky.fits", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, w io.Writer) (int64, error) {
				n, err := io.WriteString(w, body)
				return int64(n), err
			}),
	)
	local, err := f.Fetch(context.Background(), "https://example.org/flaky.fits")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(local, ".fits"))
}

func TestFetch_CancelledContext(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := newTestServer(t, countingHandler(&hits))
	f := newFetcher(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Fetch(ctx, server.URL+"/a.fits")
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := error(&FetchError{URL: "https://example.org/a.fits", Err: cause})
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to fetch https://example.org/a.fits: boom", err.Error())
}
