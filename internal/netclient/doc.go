// Package netclient builds the HTTP clients used to probe external links.
//
// A Client either dials targets directly or routes every connection through
// a SOCKS5 proxy (golang.org/x/net/proxy). Per-host headers and cookies from
// the configuration file are injected by a RoundTripper wrapper so that
// redirects carry them too.
//
// The package is meant for dependency injection: create one Client per run
// and hand its *http.Client to the external resolver rather than relying on
// http.DefaultClient.
package netclient
