package netclient

import "net/http"

// HostHeaders is the extra request state sent to a host.
type HostHeaders struct {
	// Cookie is a raw cookie string, e.g. "consent=yes; lang=en".
	Cookie string

	// Headers are additional request headers.
	Headers map[string]string
}

// HeaderSource returns the request state configured for a host.
type HeaderSource func(host string) HostHeaders

// headerInjectingTransport wraps an http.RoundTripper and sets the
// User-Agent, cookies and headers configured for the request's host.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
	source    HeaderSource
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.userAgent != "" && clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}

	var h HostHeaders
	if t.source != nil {
		h = t.source(clone.URL.Hostname())
	}
	if h.Cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+h.Cookie)
		} else {
			clone.Header.Set("Cookie", h.Cookie)
		}
	}
	for key, value := range h.Headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
