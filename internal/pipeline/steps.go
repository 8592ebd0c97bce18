package pipeline

import (
	"context"
	"log/slog"
	"path"

	"github.com/nao1215/linkcheck/internal/classifier"
	"github.com/nao1215/linkcheck/internal/extractor"
	"github.com/nao1215/linkcheck/internal/model"
	"github.com/nao1215/linkcheck/internal/resolver"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Scope selects which reference families are actually checked.
type Scope int

const (
	// ScopeAll checks internal paths, anchors and external URLs.
	ScopeAll Scope = iota

	// ScopeNoExternal skips external URLs.
	ScopeNoExternal

	// ScopeExternalOnly skips internal paths and anchors.
	ScopeExternalOnly
)

// String returns the scope name used in logs.
func (s Scope) String() string {
	switch s {
	case ScopeAll:
		return "all"
	case ScopeNoExternal:
		return "no-external"
	case ScopeExternalOnly:
		return "external-only"
	default:
		return "unknown"
	}
}

// checksExternal reports whether external references are probed.
func (s Scope) checksExternal() bool { return s != ScopeNoExternal }

// checksInternal reports whether internal paths and anchors are resolved.
func (s Scope) checksInternal() bool { return s != ScopeExternalOnly }

// ExtractStep loads the document from disk and extracts its references.
// A document that cannot be loaded is a structural error.
type ExtractStep struct {
	logger *slog.Logger
}

// NewExtractStep creates a new extract step.
func NewExtractStep(logger *slog.Logger) *ExtractStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStep{logger: logger}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do executes the extract step.
func (s *ExtractStep) Do(_ context.Context, report *model.CheckReport) error {
	doc, err := extractor.Load(report.DocumentPath)
	if err != nil {
		return err
	}
	doc.References = extractor.Extract(doc.Content)
	report.Document = doc

	s.logger.Debug("extracted references",
		"document", report.DocumentPath,
		"count", len(doc.References),
	)
	return nil
}

// ClassifyStep deduplicates references by literal URL and assigns each
// first occurrence its category. Every reference, duplicates included, is
// counted in the result set.
type ClassifyStep struct{}

// NewClassifyStep creates a new classify step.
func NewClassifyStep() *ClassifyStep {
	return &ClassifyStep{}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do executes the classify step.
func (s *ClassifyStep) Do(_ context.Context, report *model.CheckReport) error {
	if report.Document == nil {
		return nil
	}
	for _, ref := range report.Document.References {
		if !report.Results.Claim(ref.URL) {
			continue
		}
		report.Unique = append(report.Unique, ref.Classified(classifier.Classify(ref.URL)))
	}
	return nil
}

// LocalCheckStep resolves every unique reference that needs no network,
// in document order. External references that will be probed are queued
// in report.Pending.
type LocalCheckStep struct {
	scope  Scope
	ignore []string
	logger *slog.Logger
}

// LocalCheckStepOption configures a LocalCheckStep.
type LocalCheckStepOption func(*LocalCheckStep)

// WithScope sets which reference families are checked.
func WithScope(scope Scope) LocalCheckStepOption {
	return func(s *LocalCheckStep) {
		s.scope = scope
	}
}

// WithIgnorePatterns sets glob patterns (path.Match syntax) matched against
// literal URLs. Matching references are skipped without being checked.
func WithIgnorePatterns(patterns []string) LocalCheckStepOption {
	return func(s *LocalCheckStep) {
		s.ignore = patterns
	}
}

// WithLocalLogger sets a custom logger for the local check step.
func WithLocalLogger(logger *slog.Logger) LocalCheckStepOption {
	return func(s *LocalCheckStep) {
		s.logger = logger
	}
}

// NewLocalCheckStep creates a new local check step.
func NewLocalCheckStep(opts ...LocalCheckStepOption) *LocalCheckStep {
	s := &LocalCheckStep{
		scope:  ScopeAll,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *LocalCheckStep) Name() string {
	return "local_check"
}

// Do executes the local check step.
func (s *LocalCheckStep) Do(_ context.Context, report *model.CheckReport) error {
	if report.Document == nil {
		return nil
	}
	local := resolver.NewLocal(report.Document)
	title := cases.Title(language.English)

	for _, ref := range report.Unique {
		if s.ignored(ref.URL) {
			report.Results.Add(model.NewResult(ref, model.Skipped("Ignored by configuration")))
			continue
		}

		var outcome model.Outcome
		switch ref.Category {
		case model.CategoryEmpty:
			outcome = model.Warning("Empty URL")
		case model.CategoryMailto, model.CategoryTel:
			outcome = model.OK(title.String(string(ref.Category)) + " link")
		case model.CategoryJavaScript, model.CategoryData:
			outcome = model.Skipped(title.String(string(ref.Category)) + " URI")
		case model.CategoryInternal, model.CategoryAnchor:
			if !s.scope.checksInternal() {
				outcome = model.Skipped("Internal check disabled")
				break
			}
			outcome = local.Resolve(ref)
		case model.CategoryExternal:
			if !s.scope.checksExternal() {
				outcome = model.Skipped("External check disabled")
				break
			}
			report.Pending = append(report.Pending, ref)
			continue
		default:
			outcome = model.Error("Unknown category: " + string(ref.Category))
		}
		report.Results.Add(model.NewResult(ref, outcome))
	}

	s.logger.Debug("local references resolved",
		"document", report.DocumentPath,
		"pending_external", len(report.Pending),
		"scope", s.scope,
	)
	return nil
}

func (s *LocalCheckStep) ignored(url string) bool {
	for _, pattern := range s.ignore {
		if ok, err := path.Match(pattern, url); err == nil && ok {
			return true
		}
	}
	return false
}

// ExternalCheckStep probes every pending external reference through a
// Dispatcher and adds each result as it completes.
type ExternalCheckStep struct {
	prober     Prober
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewExternalCheckStep creates a new external check step.
func NewExternalCheckStep(prober Prober, dispatcher *Dispatcher, logger *slog.Logger) *ExternalCheckStep {
	if dispatcher == nil {
		dispatcher = NewDispatcher()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExternalCheckStep{prober: prober, dispatcher: dispatcher, logger: logger}
}

// Name returns the step name.
func (s *ExternalCheckStep) Name() string {
	return "external_check"
}

// Do executes the external check step.
func (s *ExternalCheckStep) Do(ctx context.Context, report *model.CheckReport) error {
	if len(report.Pending) == 0 {
		return nil
	}
	if err := s.dispatcher.Dispatch(ctx, report.Pending, s.prober, report.Results.Add); err != nil {
		return err
	}
	if ctx.Err() != nil {
		s.logger.Warn("external checks interrupted", "reason", ctx.Err())
		report.Interrupted = true
	}
	s.logger.Debug("external references resolved",
		"document", report.DocumentPath,
		"resolved", report.Results.Resolved(),
		"unique", report.Results.Unique(),
	)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Scope selects which reference families are checked.
	Scope Scope

	// IgnorePatterns are glob patterns on literal URLs resolved as skipped.
	IgnorePatterns []string

	// Concurrency is the maximum number of external probes in flight.
	Concurrency int
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineScope sets the check scope.
func WithPipelineScope(scope Scope) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Scope = scope
	}
}

// WithPipelineIgnorePatterns sets URL patterns resolved as skipped.
func WithPipelineIgnorePatterns(patterns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.IgnorePatterns = patterns
	}
}

// WithPipelineConcurrency sets the external probe concurrency.
func WithPipelineConcurrency(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Concurrency = n
	}
}

// DefaultPipeline creates the standard link-check pipeline:
// extract, classify, local_check and, unless external checks are
// disabled, external_check. A nil prober makes every external reference
// resolve as skipped.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineScope, etc).
func DefaultPipeline(prober Prober, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		Scope:       ScopeAll,
		Concurrency: DefaultConcurrency,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddSteps(
		NewExtractStep(p.logger),
		NewClassifyStep(),
		NewLocalCheckStep(
			WithScope(cfg.Scope),
			WithIgnorePatterns(cfg.IgnorePatterns),
			WithLocalLogger(p.logger),
		),
	)
	if cfg.Scope.checksExternal() {
		if prober == nil {
			prober = resolver.NewExternal(resolver.ExternalConfig{Logger: p.logger})
		}
		p.AddStep(NewExternalCheckStep(
			prober,
			NewDispatcher(WithConcurrency(cfg.Concurrency), WithDispatcherLogger(p.logger)),
			p.logger,
		))
	}
	return p
}
