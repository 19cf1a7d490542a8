package httpclient_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/solarmap/internal/httpclient"
)

var _ = Describe("HTTPError", func() {
	Describe("NewHTTPError", func() {
		It("should create HTTPError with all fields", func() {
			err := httpclient.NewHTTPError(404, "http://example.com", "Not Found")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("HTTP 404"))
			Expect(err.Error()).To(ContainSubstring("http://example.com"))
			Expect(err.Error()).To(ContainSubstring("Not Found"))
		})

		It("should format error message correctly", func() {
			err := httpclient.NewHTTPError(500, "http://data.example.org/eit/efz.fits", "Internal Server Error")
			expected := "HTTP 500 for URL http://data.example.org/eit/efz.fits: Internal Server Error"
			Expect(err.Error()).To(Equal(expected))
		})

		It("should be matchable with errors.As", func() {
			err := httpclient.NewHTTPError(503, "http://example.com", "Service Unavailable")
			var httpErr *httpclient.HTTPError
			Expect(errors.As(err, &httpErr)).To(BeTrue())
			Expect(httpErr.StatusCode).To(Equal(503))
			Expect(httpErr.URL).To(Equal("http://example.com"))
		})
	})

	DescribeTable("Temporary",
		func(status int, temporary bool) {
			err := &httpclient.HTTPError{StatusCode: status}
			Expect(err.Temporary()).To(Equal(temporary))
		},
		Entry("bad request", 400, false),
		Entry("forbidden", 403, false),
		Entry("not found", 404, false),
		Entry("too many requests", 429, true),
		Entry("internal server error", 500, true),
		Entry("bad gateway", 502, true),
		Entry("service unavailable", 503, true),
	)
})
