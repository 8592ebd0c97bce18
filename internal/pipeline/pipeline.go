package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/linkcheck/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the report
// filled in by the previous ones.
type Step interface {
	// Do executes the pipeline step.
	// It returns an error only for structural failures that make the rest
	// of the run meaningless; broken links are recorded in the report.
	Do(ctx context.Context, report *model.CheckReport) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence and records the wall time in
// report.Duration.
//
// Cancellation is checked between steps. A step already running decides
// for itself how to wind down.
func (p *Pipeline) Execute(ctx context.Context, report *model.CheckReport) error {
	p.logger.Debug("pipeline started",
		"document", report.DocumentPath,
		"steps", p.StepNames(),
	)
	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
	}()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			report.Interrupted = true
			report.Error = ctx.Err()
			report.ErrorMessage = ctx.Err().Error()
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"document", report.DocumentPath,
		)

		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"document", report.DocumentPath,
				"error", err,
			)
			report.Error = err
			report.ErrorMessage = err.Error()
			return err
		}
		p.logger.Debug("step completed",
			"step", step.Name(),
			"document", report.DocumentPath,
		)

		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}

	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
