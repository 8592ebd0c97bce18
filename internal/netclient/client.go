package netclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

const (
	// checkProxyTimeout bounds the proxy health check. It is only a handshake,
	// so it does not need the full probe timeout.
	checkProxyTimeout = 2 * time.Second

	// maxRedirects is the number of redirects followed before the last
	// response is returned as-is.
	maxRedirects = 10
)

// Client creates HTTP clients for external probes.
type Client struct {
	// proxyAddress is the SOCKS5 proxy in "host:port" form. Empty means direct.
	proxyAddress string

	// dialer is the SOCKS5 dialer. Nil when connecting directly.
	dialer proxy.Dialer

	// timeout is the overall request timeout of created HTTP clients.
	timeout time.Duration
}

// NewClient creates a Client.
//
// An empty proxyAddress produces a direct client. Otherwise the address must
// be in "host:port" form (e.g. "127.0.0.1:1080"). The proxy is not contacted
// here; call CheckConnection to verify it.
func NewClient(proxyAddress string, timeout time.Duration) (*Client, error) {
	c := &Client{timeout: timeout}
	if proxyAddress == "" {
		return c, nil
	}

	if !isValidProxyAddress(proxyAddress) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, proxyAddress)
	}
	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	c.proxyAddress = proxyAddress
	c.dialer = dialer
	return c, nil
}

// isValidProxyAddress reports whether address is "host:port" with a
// non-empty host and a port in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// ProxyAddress returns the configured proxy address, or "" for a direct client.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// UsesProxy reports whether connections go through a SOCKS5 proxy.
func (c *Client) UsesProxy() bool {
	return c.dialer != nil
}

// SOCKS5 protocol constants
const (
	socks5Version       = 0x05
	socks5AuthNone      = 0x00
	socks5AuthNoAccept  = 0xFF
	socks5CmdConnect    = 0x01
	socks5AddrTypeDomID = 0x03

	// socks5TestHost is a reserved name (RFC 2606) used for the CONNECT
	// probe. Only the proxy's reply matters, not whether the target resolves.
	socks5TestHost = "linkcheck.invalid"
)

// CheckConnection verifies that the proxy speaks SOCKS5 without
// authentication and answers CONNECT requests. A direct client is always OK.
func (c *Client) CheckConnection(ctx context.Context) ProxyStatus {
	if !c.UsesProxy() {
		return ProxyStatusOK
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// Greeting: version, one method, no auth.
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	authResp := make([]byte, 2)
	if _, err := io.ReadFull(conn, authResp); err != nil {
		if isTimeout(err) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}
	if authResp[0] != socks5Version || authResp[1] == socks5AuthNoAccept || authResp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}

	port := uint16(80)
	req := []byte{socks5Version, socks5CmdConnect, 0x00, socks5AddrTypeDomID, byte(len(socks5TestHost))}
	req = append(req, socks5TestHost...)
	req = append(req, byte(port>>8), byte(port&0xFF))
	if _, err := conn.Write(req); err != nil {
		return ProxyStatusCannotConnect
	}

	// version + reply + reserved + addr type. Any reply code means the proxy
	// processed the request.
	connectResp := make([]byte, 4)
	if _, err := io.ReadFull(conn, connectResp); err != nil {
		if isTimeout(err) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}
	if connectResp[0] != socks5Version {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// NewHTTPClient creates an HTTP client that follows up to ten redirects and
// routes through the proxy when one is configured.
func (c *Client) NewHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	transport.MaxIdleConns = 32
	transport.MaxIdleConnsPerHost = 4
	transport.IdleConnTimeout = 30 * time.Second

	if c.dialer != nil {
		transport.Proxy = nil
		transport.DialContext = c.dialContext
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// HTTPClientWithConfig creates an HTTP client that injects the given
// User-Agent and the cookies and headers source returns for each request's
// host. A nil source injects only the User-Agent.
func (c *Client) HTTPClientWithConfig(userAgent string, source HeaderSource) *http.Client {
	client := c.NewHTTPClient()
	client.Transport = &headerInjectingTransport{
		base:      client.Transport,
		userAgent: userAgent,
		source:    source,
	}
	return client
}

// dialContext dials through the SOCKS5 proxy, honouring ctx when the
// dialer supports it.
func (c *Client) dialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if cd, ok := c.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)
	go func() {
		conn, err := c.dialer.Dial(network, address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case result := <-resultCh:
		return result.conn, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
