// Package httpclient downloads remote data files over HTTP
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stacklok/solarmap/internal/versions"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the default maximum response size (1GB)
	MaxResponseSize = 1024 * 1024 * 1024

	// DefaultAccept is sent when no Accept header is configured
	DefaultAccept = "application/fits, application/octet-stream;q=0.9, */*;q=0.1"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// Client is an interface for HTTP operations
type Client interface {
	// Download performs an HTTP GET request and copies the response body to w
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// DefaultClient is the default HTTP client implementation
type DefaultClient struct {
	client    *http.Client
	accept    string
	userAgent string
	maxSize   int64
}

var _ Client = (*DefaultClient)(nil)

// Option configures a DefaultClient
type Option func(*DefaultClient)

// WithAccept sets the Accept header
func WithAccept(accept string) Option {
	return func(c *DefaultClient) {
		c.accept = accept
	}
}

// WithMaxSize caps the number of bytes a response may carry
func WithMaxSize(n int64) Option {
	return func(c *DefaultClient) {
		c.maxSize = n
	}
}

// WithTransport replaces the underlying round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(c *DefaultClient) {
		c.client.Transport = rt
	}
}

// NewDefaultClient creates a new default HTTP client with the specified timeout
// If timeout is 0, uses DefaultTimeout
func NewDefaultClient(timeout time.Duration, opts ...Option) *DefaultClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	c := &DefaultClient{
		client:    &http.Client{Timeout: timeout},
		accept:    DefaultAccept,
		userAgent: UserAgent(),
		maxSize:   MaxResponseSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserAgent returns the user agent sent with every request
func UserAgent() string {
	return "solarmap/" + versions.GetVersionInfo().Version
}

// Download performs an HTTP GET request and streams the body into w
func (c *DefaultClient) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", c.accept)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, NewHTTPError(resp.StatusCode, url, resp.Status)
	}

	if resp.ContentLength > c.maxSize {
		return 0, fmt.Errorf("%w: %d bytes exceeds maximum allowed size of %d bytes",
			ErrResponseTooLarge, resp.ContentLength, c.maxSize)
	}

	// +1 to detect if limit exceeded
	n, err := io.Copy(w, io.LimitReader(resp.Body, c.maxSize+1))
	if err != nil {
		return n, fmt.Errorf("failed to read response body: %w", err)
	}
	if n > c.maxSize {
		return n, fmt.Errorf("%w: exceeds maximum allowed size of %d bytes", ErrResponseTooLarge, c.maxSize)
	}

	return n, nil
}
