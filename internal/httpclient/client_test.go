package httpclient_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/solarmap/internal/httpclient"
)

// newTestServer disables keep-alives so closing one server does not disturb
// connections other specs share through the default transport.
func newTestServer(handler http.Handler) *httptest.Server {
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	return server
}

var _ = Describe("DefaultClient", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("NewDefaultClient", func() {
		It("should create a client with a zero timeout", func() {
			Expect(httpclient.NewDefaultClient(0)).NotTo(BeNil())
		})
	})

	Describe("Download", func() {
		It("should copy the body and send solarmap headers", func() {
			var gotAgent, gotAccept string
			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAgent = r.Header.Get("User-Agent")
				gotAccept = r.Header.Get("Accept")
				_, _ = fmt.Fprint(w, "SIMPLE  =                    T")
			}))
			defer server.Close()

			var buf bytes.Buffer
			n, err := httpclient.NewDefaultClient(5*time.Second).Download(ctx, server.URL+"/efz.fits", &buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeEquivalentTo(buf.Len()))
			Expect(buf.String()).To(HavePrefix("SIMPLE"))
			Expect(gotAgent).To(HavePrefix("solarmap/"))
			Expect(gotAgent).To(Equal(httpclient.UserAgent()))
			Expect(gotAccept).To(Equal(httpclient.DefaultAccept))
		})

		It("should send a configured Accept header", func() {
			var gotAccept string
			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAccept = r.Header.Get("Accept")
			}))
			defer server.Close()

			client := httpclient.NewDefaultClient(time.Second, httpclient.WithAccept("image/fits"))
			_, err := client.Download(ctx, server.URL, &bytes.Buffer{})
			Expect(err).NotTo(HaveOccurred())
			Expect(gotAccept).To(Equal("image/fits"))
		})

		It("should return an HTTPError for non-200 statuses", func() {
			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			_, err := httpclient.NewDefaultClient(time.Second).Download(ctx, server.URL, &bytes.Buffer{})
			var httpErr *httpclient.HTTPError
			Expect(errors.As(err, &httpErr)).To(BeTrue())
			Expect(httpErr.StatusCode).To(Equal(http.StatusNotFound))
			Expect(httpErr.URL).To(Equal(server.URL))
		})

		It("should reject responses larger than the limit", func() {
			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				// Chunked, so the limit is only detected while reading
				flusher := w.(http.Flusher)
				_, _ = fmt.Fprint(w, strings.Repeat("x", 8))
				flusher.Flush()
				_, _ = fmt.Fprint(w, strings.Repeat("x", 8))
			}))
			defer server.Close()

			client := httpclient.NewDefaultClient(time.Second, httpclient.WithMaxSize(10))
			_, err := client.Download(ctx, server.URL, &bytes.Buffer{})
			Expect(err).To(MatchError(httpclient.ErrResponseTooLarge))
		})

		It("should reject a declared Content-Length above the limit", func() {
			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Length", "64")
				_, _ = fmt.Fprint(w, strings.Repeat("x", 64))
			}))
			defer server.Close()

			client := httpclient.NewDefaultClient(time.Second, httpclient.WithMaxSize(10))
			n, err := client.Download(ctx, server.URL, &bytes.Buffer{})
			Expect(err).To(MatchError(httpclient.ErrResponseTooLarge))
			Expect(n).To(BeZero())
		})

		It("should fail on a cancelled context", func() {
			server := newTestServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
			defer server.Close()

			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := httpclient.NewDefaultClient(time.Second).Download(cancelled, server.URL, &bytes.Buffer{})
			Expect(err).To(MatchError(context.Canceled))
		})

		It("should fail on a malformed URL", func() {
			_, err := httpclient.NewDefaultClient(time.Second).Download(ctx, "://bad", &bytes.Buffer{})
			Expect(err).To(MatchError(ContainSubstring("failed to create request")))
		})
	})
})
