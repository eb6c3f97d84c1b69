package transport

import (
	"net/http"
)

// HeaderOption sets one header on every outgoing request.
type HeaderOption func(set func(key string, value string))

type headersRoundTripper struct {
	next    http.RoundTripper
	options []HeaderOption
}

// NewHeadersRoundTripper returns a RoundTripper that applies opts to a clone of each request before handing it to next.
// A nil next uses http.DefaultTransport.
func NewHeadersRoundTripper(next http.RoundTripper, opts ...HeaderOption) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &headersRoundTripper{next: next, options: opts}
}

func (rt *headersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for _, opt := range rt.options {
		opt(req.Header.Set)
	}
	return rt.next.RoundTrip(req)
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) HeaderOption {
	return WithHeader("User-Agent", userAgent)
}

// WithHeader sets an arbitrary header. Empty values are skipped.
func WithHeader(key, value string) HeaderOption {
	return func(set func(key string, value string)) {
		if value != "" {
			set(key, value)
		}
	}
}

// WithScopeOrgID sets the tenant header understood by Loki in multi-tenant mode.
func WithScopeOrgID(tenant string) HeaderOption {
	return WithHeader("X-Scope-OrgID", tenant)
}
