package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/linkcheck/internal/model"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the per-probe timeout when none is configured.
	DefaultTimeout = 5 * time.Second

	// maxErrorMessage is the number of runes of a transport error kept in
	// the outcome message.
	maxErrorMessage = 50

	// maxDrain is how much of a response body is read before closing it so
	// the connection can be reused.
	maxDrain = 4 << 10
)

// UserAgent returns the default probe User-Agent for a tool version.
func UserAgent(version string) string {
	return fmt.Sprintf("linkcheck/%s (+https://github.com/nao1215/linkcheck)", version)
}

// ExternalConfig configures an External resolver.
type ExternalConfig struct {
	// Client sends the probes. Nil makes every probe unavailable.
	Client *http.Client

	// Capability says whether probes may be sent at all.
	Capability Capability

	// Timeout bounds each probe, redirects included.
	Timeout time.Duration

	// UserAgent is sent with every probe. Empty uses UserAgent("dev").
	UserAgent string

	// RatePerHost is the maximum number of probes per second to a single
	// host. Zero or negative disables limiting.
	RatePerHost float64

	// Logger receives per-probe debug logs. Nil uses slog.Default().
	Logger *slog.Logger
}

// External probes http and https references.
// It is safe for concurrent use.
type External struct {
	cfg    ExternalConfig
	group  singleflight.Group
	mu     sync.Mutex
	limits map[string]*rate.Limiter
}

// NewExternal creates an External resolver.
func NewExternal(cfg ExternalConfig) *External {
	if cfg.Client == nil && cfg.Capability.Available {
		cfg.Capability = Offline("no HTTP client")
	}
	if !cfg.Capability.Available && cfg.Capability.Reason == "" {
		cfg.Capability.Reason = "no HTTP client"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = UserAgent("dev")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &External{
		cfg:    cfg,
		limits: make(map[string]*rate.Limiter),
	}
}

// Capability returns the capability the resolver runs with.
func (e *External) Capability() Capability {
	return e.cfg.Capability
}

// Normalize turns a protocol-relative URL into an https URL.
// Other URLs are returned unchanged.
func Normalize(raw string) string {
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	return raw
}

// Probe sends a HEAD request for ref and maps the response to an outcome.
// Concurrent probes for the same normalized URL share one request. The
// shared request runs detached from the caller that started it, so a
// caller giving up only ends its own wait.
func (e *External) Probe(ctx context.Context, ref model.Reference) model.Outcome {
	if !e.cfg.Capability.Available {
		return model.Skipped("network unavailable: " + e.cfg.Capability.Reason)
	}
	if err := ctx.Err(); err != nil {
		return contextOutcome(err)
	}

	target := Normalize(ref.URL)
	flight := context.WithoutCancel(ctx)
	ch := e.group.DoChan(target, func() (any, error) {
		return e.probe(flight, target), nil
	})

	var (
		outcome model.Outcome
		shared  bool
	)
	select {
	case res := <-ch:
		shared = res.Shared
		v, ok := res.Val.(model.Outcome)
		if !ok {
			v = model.Error("probe returned no outcome")
		}
		outcome = v
	case <-ctx.Done():
		outcome = contextOutcome(ctx.Err())
	}

	e.cfg.Logger.Debug("probed external link",
		"url", ref.URL,
		"status", outcome.Status,
		"message", outcome.Message,
		"shared", shared,
	)
	return outcome
}

func (e *External) probe(ctx context.Context, target string) model.Outcome {
	u, err := url.Parse(target)
	if err != nil {
		return model.Error(truncate(err.Error(), maxErrorMessage))
	}

	if err := e.wait(ctx, u.Hostname()); err != nil {
		return contextOutcome(err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return model.Error(truncate(err.Error(), maxErrorMessage))
	}
	req.Header.Set("User-Agent", e.cfg.UserAgent)

	resp, err := e.cfg.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return model.Skipped("Interrupted")
		}
		if isTimeout(err) {
			return model.Warning("Timeout")
		}
		return model.Error(truncate(transportCause(err), maxErrorMessage))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	return statusOutcome(resp.StatusCode)
}

// statusOutcome maps an HTTP status code to an outcome.
// 403 and 405 are warnings because many hosts reject automated HEAD
// requests with them.
func statusOutcome(code int) model.Outcome {
	switch {
	case code < http.StatusBadRequest:
		return model.OK(fmt.Sprintf("HTTP %d", code))
	case code == http.StatusForbidden, code == http.StatusMethodNotAllowed:
		return model.Warning(fmt.Sprintf("HTTP %d (likely bot protection)", code))
	default:
		return model.Error(fmt.Sprintf("HTTP %d", code))
	}
}

// wait blocks until the host's limiter admits one more probe.
func (e *External) wait(ctx context.Context, host string) error {
	limiter := e.limiter(host)
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

func (e *External) limiter(host string) *rate.Limiter {
	if e.cfg.RatePerHost <= 0 {
		return nil
	}
	host = strings.ToLower(host)

	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.limits[host]
	if !ok {
		burst := int(math.Max(1, math.Ceil(e.cfg.RatePerHost)))
		l = rate.NewLimiter(rate.Limit(e.cfg.RatePerHost), burst)
		e.limits[host] = l
	}
	return l
}

// contextOutcome maps the error of a context or limiter wait.
// Cancellation means the run was interrupted and the reference was never
// checked; anything else ran out of time.
func contextOutcome(err error) model.Outcome {
	if errors.Is(err, context.Canceled) {
		return model.Skipped("Interrupted")
	}
	return model.Warning("Timeout")
}

// isTimeout reports whether err is a deadline rather than a definite failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// transportCause strips the method, URL and dial address that wrap the
// underlying failure, e.g. "connect: connection refused".
func transportCause(err error) string {
	var oe *net.OpError
	if errors.As(err, &oe) && oe.Err != nil {
		return oe.Err.Error()
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err.Error()
	}
	return err.Error()
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
