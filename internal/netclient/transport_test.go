package netclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestHeaderInjectingTransport tests User-Agent, cookie and header injection.
func TestHeaderInjectingTransport(t *testing.T) {
	t.Parallel()

	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := NewClient("", 5*time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	var asked string
	httpClient := client.HTTPClientWithConfig("linkcheck/test", func(host string) HostHeaders {
		asked = host
		return HostHeaders{
			Cookie:  "b=2",
			Headers: map[string]string{"Accept-Language": "en", "X-Token": "secret"},
		}
	})

	resp, err := httpClient.Head(srv.URL) //nolint:noctx // test code
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	got := <-headers
	if asked != "127.0.0.1" {
		t.Errorf("expected source to be asked for 127.0.0.1, got %q", asked)
	}
	if got.Get("User-Agent") != "linkcheck/test" {
		t.Errorf("expected User-Agent linkcheck/test, got %q", got.Get("User-Agent"))
	}
	if got.Get("Cookie") != "b=2" {
		t.Errorf("expected host cookie, got %q", got.Get("Cookie"))
	}
	if got.Get("Accept-Language") != "en" {
		t.Errorf("expected Accept-Language header, got %q", got.Get("Accept-Language"))
	}
	if got.Get("X-Token") != "secret" {
		t.Errorf("expected host header, got %q", got.Get("X-Token"))
	}
}

// TestHeaderInjectingTransportNilSource tests that only the User-Agent is
// set without a header source.
func TestHeaderInjectingTransportNilSource(t *testing.T) {
	t.Parallel()

	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := NewClient("", 5*time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	resp, err := client.HTTPClientWithConfig("linkcheck/test", nil).Head(srv.URL) //nolint:noctx // test code
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	got := <-headers
	if got.Get("User-Agent") != "linkcheck/test" {
		t.Errorf("expected User-Agent linkcheck/test, got %q", got.Get("User-Agent"))
	}
	if got.Get("Cookie") != "" {
		t.Errorf("expected no cookie, got %q", got.Get("Cookie"))
	}
}
