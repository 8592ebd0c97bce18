package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/linkcheck/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of external probes in flight at once
// when no other limit is configured.
const DefaultConcurrency = 8

// Prober resolves a single external reference.
type Prober interface {
	Probe(ctx context.Context, ref model.Reference) model.Outcome
}

// Dispatcher runs probes concurrently with a fixed upper bound.
type Dispatcher struct {
	// concurrency is the maximum number of probes in flight.
	concurrency int

	// logger is used for dispatch-level logging.
	logger *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets a custom logger for the dispatcher.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent probes.
// Values below 1 are ignored.
func WithConcurrency(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Concurrency returns the configured probe limit.
func (d *Dispatcher) Concurrency() int {
	return d.concurrency
}

// Dispatch probes every reference and calls callback once per reference
// with its result, from the goroutine that ran the probe. Callbacks
// therefore arrive in completion order and must be safe for concurrent use.
//
// A failing probe is an Outcome, not an error, so one probe never cancels
// another. Dispatch returns only after every callback has run.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	refs []model.Reference,
	prober Prober,
	callback func(result model.Result),
) error {
	if len(refs) == 0 {
		return nil
	}

	d.logger.Debug("dispatching external probes",
		"total", len(refs),
		"concurrency", d.concurrency,
	)
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for _, ref := range refs {
		g.Go(func() error {
			callback(model.NewResult(ref, prober.Probe(ctx, ref)))
			return nil
		})
	}

	err := g.Wait()

	d.logger.Debug("external probes complete",
		"total", len(refs),
		"elapsed", time.Since(start),
	)
	return err
}
