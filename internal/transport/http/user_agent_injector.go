package http

import (
	"net/http"

	"github.com/oshokin/ytm-grabber/internal/utils"
)

// HeaderInjector is a http.RoundTripper that fills in the User-Agent and a fixed set of
// client headers when a request does not carry them already.
type HeaderInjector struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// userAgentProvider provides the User-Agent string to inject.
	userAgentProvider utils.UserAgentProvider
	// headers are static headers added to each request missing them.
	headers http.Header
}

// userAgentHeader is the HTTP header name for User-Agent.
const userAgentHeader = "User-Agent"

// NewHeaderInjector creates a HeaderInjector wrapping next.
// The headers map is copied, so later changes by the caller are not observed.
func NewHeaderInjector(
	next http.RoundTripper,
	userAgentProvider utils.UserAgentProvider,
	headers http.Header,
) http.RoundTripper {
	return &HeaderInjector{
		next:              next,
		userAgentProvider: userAgentProvider,
		headers:           headers.Clone(),
	}
}

// RoundTrip executes a single HTTP transaction with the missing headers set.
// The caller's request is cloned before modification, as http.RoundTripper requires.
func (t *HeaderInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	out := req.Clone(req.Context())

	if out.Header.Get(userAgentHeader) == "" {
		out.Header.Set(userAgentHeader, t.userAgentProvider.GetUserAgent())
	}

	for name, values := range t.headers {
		if out.Header.Get(name) != "" || len(values) == 0 {
			continue
		}

		out.Header[name] = append([]string(nil), values...)
	}

	return t.next.RoundTrip(out)
}
