// Package fetch downloads remote data files into a local cache directory.
//
// Cached files are named by the sha256 of their URL and stay fresh for a
// configurable TTL. Freshness survives restarts through the file's
// modification time. Downloads of the same URL are collapsed within a process
// and serialized across processes by a lock file next to the cached file.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/stacklok/solarmap/internal/httpclient"
	"github.com/stacklok/solarmap/internal/otel"
	"github.com/stacklok/solarmap/internal/resolve"
	"github.com/stacklok/solarmap/internal/telemetry"
)

const (
	// TracerName is the instrumentation scope of fetch spans
	TracerName = "github.com/stacklok/solarmap/fetch"

	// DefaultTTL is how long a downloaded file is served without refetching
	DefaultTTL = 24 * time.Hour

	// DefaultMaxRetries is the number of retries after the first failed attempt
	DefaultMaxRetries = 3

	lockRetryDelay = 50 * time.Millisecond

	outcomeHit      = "hit"
	outcomeDownload = "download"
	outcomeError    = "error"
)

// Fetcher downloads URLs into a cache directory. It implements resolve.Fetcher.
type Fetcher struct {
	dir        string
	ttl        time.Duration
	maxRetries uint
	client     httpclient.Client
	newBackOff func() backoff.BackOff
	fresh      *gocache.Cache
	group      singleflight.Group
	tracer     trace.Tracer
	metrics    *telemetry.FetchMetrics
	logger     *slog.Logger

	meterProvider metric.MeterProvider
}

var _ resolve.Fetcher = (*Fetcher)(nil)

// Option configures a Fetcher
type Option func(*Fetcher)

// WithClient sets the HTTP client
func WithClient(c httpclient.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithTTL sets how long cached files stay fresh. A non-positive TTL disables reuse.
func WithTTL(ttl time.Duration) Option {
	return func(f *Fetcher) {
		f.ttl = ttl
	}
}

// WithMaxRetries sets how many times a failed download is retried
func WithMaxRetries(n uint) Option {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// WithBackOff sets the retry schedule. A new BackOff is requested per download.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(f *Fetcher) {
		f.newBackOff = newBackOff
	}
}

// WithTracerProvider enables tracing of fetches
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(f *Fetcher) {
		if tp != nil {
			f.tracer = tp.Tracer(TracerName)
		}
	}
}

// WithMeterProvider enables fetch metrics
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(f *Fetcher) {
		f.meterProvider = mp
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher caching into dir, creating it if needed
func New(dir string, opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		dir:        dir,
		ttl:        DefaultTTL,
		maxRetries: DefaultMaxRetries,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = httpclient.NewDefaultClient(0)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	metrics, err := telemetry.NewFetchMetrics(f.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch metrics: %w", err)
	}
	f.metrics = metrics
	f.fresh = gocache.New(max(f.ttl, time.Minute), 10*time.Minute)

	return f, nil
}

// CacheName returns the file name a URL is cached under:
// the hex sha256 of the URL followed by the extension of its base name.
func CacheName(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	name := hex.EncodeToString(sum[:])
	if u, err := url.Parse(rawURL); err == nil {
		name += path.Ext(u.Path)
	}
	return name
}

// Fetch returns the local path of rawURL, downloading it unless a fresh copy is cached
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (local string, err error) {
	ctx, span := otel.StartSpan(ctx, f.tracer, "fetch", trace.WithAttributes(otel.AttrURL.String(rawURL)))
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		f.metrics.RecordFetch(ctx, outcomeError)
		if err == nil {
			err = errors.New("missing host")
		}
		return "", &FetchError{URL: rawURL, Err: err}
	}

	name := CacheName(rawURL)
	target := filepath.Join(f.dir, name)

	if f.isFresh(name, target) {
		span.SetAttributes(otel.AttrCacheHit.Bool(true))
		f.metrics.RecordFetch(ctx, outcomeHit)
		f.logger.Debug("Cache hit", "url", rawURL, "path", target)
		return target, nil
	}
	span.SetAttributes(otel.AttrCacheHit.Bool(false))

	if err := ctx.Err(); err != nil {
		f.metrics.RecordFetch(ctx, outcomeError)
		return "", &FetchError{URL: rawURL, Err: err}
	}

	// The shared download outlives any single caller; each caller stops waiting on its own context.
	ch := f.group.DoChan(name, func() (any, error) {
		return nil, f.download(context.WithoutCancel(ctx), rawURL, name, target)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		f.metrics.RecordFetch(ctx, outcomeError)
		return "", &FetchError{URL: rawURL, Err: ctx.Err()}
	case res = <-ch:
	}
	if res.Err != nil {
		f.metrics.RecordFetch(ctx, outcomeError)
		return "", &FetchError{URL: rawURL, Err: res.Err}
	}

	f.metrics.RecordFetch(ctx, outcomeDownload)
	f.logger.Debug("Fetched", "url", rawURL, "path", target, "shared", res.Shared)
	return target, nil
}

// isFresh consults the in-memory cache, then the file's modification time
func (f *Fetcher) isFresh(name, target string) bool {
	if f.ttl <= 0 {
		return false
	}
	if _, ok := f.fresh.Get(name); ok {
		if _, err := os.Stat(target); err == nil {
			return true
		}
		f.fresh.Delete(name)
		return false
	}

	info, err := os.Stat(target)
	if err != nil {
		return false
	}
	remaining := f.ttl - time.Since(info.ModTime())
	if remaining <= 0 {
		return false
	}
	f.fresh.Set(name, struct{}{}, remaining)
	return true
}

func (f *Fetcher) download(ctx context.Context, rawURL, name, target string) error {
	lock := flock.New(target + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock cache entry: %w", err)
	}
	if !locked {
		return errors.New("failed to lock cache entry")
	}
	defer func() {
		_ = lock.Unlock()
	}()

	// Another process may have finished the download while we waited for the lock
	if f.isFresh(name, target) {
		return nil
	}

	tmp := filepath.Join(f.dir, fmt.Sprintf(".%s.%s.tmp", name, uuid.NewString()))
	file, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = file.Close()
		_ = os.Remove(tmp)
	}()

	attempt := 0
	n, err := backoff.Retry(ctx, func() (int64, error) {
		attempt++
		if err := reset(file); err != nil {
			return 0, backoff.Permanent(err)
		}
		n, err := f.client.Download(ctx, rawURL, file)
		if err != nil {
			if !retryable(ctx, err) {
				return 0, backoff.Permanent(err)
			}
			f.logger.Debug("Download attempt failed", "url", rawURL, "attempt", attempt, "error", err)
			return 0, err
		}
		return n, nil
	},
		backoff.WithBackOff(f.newBackOff()),
		backoff.WithMaxTries(f.maxRetries+1),
	)
	if err != nil {
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to move download into cache: %w", err)
	}
	if f.ttl > 0 {
		f.fresh.Set(name, struct{}{}, f.ttl)
	}

	f.logger.Info("Downloaded remote file", "url", rawURL, "bytes", n, "attempts", attempt)
	return nil
}

func reset(file *os.File) error {
	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate temp file: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to rewind temp file: %w", err)
	}
	return nil
}

// retryable reports whether a failed download is worth another attempt.
// Client errors other than 429 are permanent, as are oversized responses
// and a finished context.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	if errors.Is(err, httpclient.ErrResponseTooLarge) || errors.Is(err, fs.ErrPermission) {
		return false
	}
	return true
}
