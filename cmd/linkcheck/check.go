package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/linkcheck/internal/config"
	"github.com/nao1215/linkcheck/internal/database"
	seclog "github.com/nao1215/linkcheck/internal/log"
	"github.com/nao1215/linkcheck/internal/model"
	"github.com/nao1215/linkcheck/internal/netclient"
	"github.com/nao1215/linkcheck/internal/pipeline"
	"github.com/nao1215/linkcheck/internal/report"
	"github.com/nao1215/linkcheck/internal/resolver"
	"github.com/spf13/cobra"
)

// ErrLinksBroken is returned by the check command when at least one link
// is broken, so that the process exits with status 1.
var ErrLinksBroken = errors.New("broken links found")

// ErrInterrupted is returned by the check command when a signal cancelled
// the run before every link was checked.
var ErrInterrupted = errors.New("check interrupted before all links were checked")

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file.html>",
		Short: "Check the links of an HTML file",
		Long: `Check extracts every <a href>, <img src>, <link href> and <script src> of an
HTML file and verifies each distinct URL:

- Relative paths must exist next to the document
- #fragments must match an id or name attribute of the document
- http(s) links must answer a HEAD request with a status below 400
- mailto: and tel: links are accepted, javascript: and data: URIs are skipped

HTTP 403 and 405 answers and timeouts are reported as warnings, which never
fail a run.

Examples:
  # Check everything
  linkcheck check public/index.html

  # Only local paths and anchors
  linkcheck check --no-external public/index.html

  # Markdown report written to a file
  linkcheck check -m -o report.md public/index.html

  # Record the run to compare it later with 'linkcheck history --diff'
  linkcheck check --save public/index.html`,
		Args: cobra.ExactArgs(1),
		RunE: runCheckCmd,
	}

	// Scope flags
	cmd.Flags().Bool("no-external", false, "Disable external link checks")
	cmd.Flags().Bool("external-only", false, "Only check external links")

	// Probe flags
	cmd.Flags().IntP("timeout", "t", int(config.DefaultTimeout/time.Second),
		"Per-request timeout in seconds")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum number of concurrent external requests")
	cmd.Flags().Float64("rate", config.DefaultRate,
		"Maximum requests per second to a single host (0 = unlimited)")
	cmd.Flags().String("user-agent", "", "User-Agent header of external requests")
	cmd.Flags().String("proxy", "", "SOCKS5 proxy address (host:port) for external requests")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkcheck in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("save", false, "Record the run in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")
	_ = cmd.Flags().MarkHidden("db-dir") //nolint:errcheck // flag is defined above

	return cmd
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := seclog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCheck(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// buildConfig creates a Config from cobra command flags and the config file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.NoExternal, err = flags.GetBool("no-external"); err != nil {
		return nil, err
	}
	if cfg.ExternalOnly, err = flags.GetBool("external-only"); err != nil {
		return nil, err
	}

	timeout, err := flags.GetInt("timeout")
	if err != nil {
		return nil, err
	}
	cfg.Timeout = time.Duration(timeout) * time.Second

	if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.Rate, err = flags.GetFloat64("rate"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.Save, err = flags.GetBool("save"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// An explicit --config must exist; the implicit search may find nothing.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file, func(name string) bool { return flags.Changed(name) })
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if len(args) > 0 {
		cfg.DocumentPath = args[0]
	}
	return cfg, nil
}

// scope maps the scope flags to a pipeline scope.
func scope(cfg *config.Config) pipeline.Scope {
	switch {
	case cfg.NoExternal:
		return pipeline.ScopeNoExternal
	case cfg.ExternalOnly:
		return pipeline.ScopeExternalOnly
	default:
		return pipeline.ScopeAll
	}
}

// runCheck runs the pipeline for cfg, writes the report and optionally
// records the run. It returns ErrLinksBroken when the run failed and
// ErrInterrupted when it was cancelled part way.
func runCheck(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, logger *slog.Logger) error {
	logger.Info("starting check",
		"document", cfg.DocumentPath,
		"scope", scope(cfg).String(),
		"concurrency", cfg.Concurrency,
		"rate", cfg.Rate,
	)

	var prober pipeline.Prober
	if scope(cfg) != pipeline.ScopeNoExternal {
		external, err := newExternalResolver(ctx, cfg, logger)
		if err != nil {
			return err
		}
		if capability := external.Capability(); !capability.Available {
			fmt.Fprintf(stderr, "Warning: external checks unavailable (%s); external links are reported as skipped.\n",
				capability.Reason)
		}
		prober = external
	}

	p := pipeline.DefaultPipeline(prober,
		[]pipeline.Option{pipeline.WithLogger(logger)},
		pipeline.WithPipelineScope(scope(cfg)),
		pipeline.WithPipelineIgnorePatterns(cfg.IgnorePatterns()),
		pipeline.WithPipelineConcurrency(cfg.Concurrency),
	)

	checkReport := model.NewCheckReport(cfg.DocumentPath)
	if err := p.Execute(ctx, checkReport); err != nil {
		if checkReport.Interrupted {
			return fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		return err
	}

	summary := model.NewSummary(checkReport)
	if err := outputReport(cfg, summary, stdout); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if checkReport.Interrupted {
		if cfg.Save {
			logger.Warn("interrupted run not saved", "document", cfg.DocumentPath)
		}
		return ErrInterrupted
	}

	if cfg.Save {
		if err := saveRun(ctx, cfg.DBDir, summary, logger); err != nil {
			logger.Error("failed to save run", "error", err)
		}
	}

	if summary.Verdict.ExitCode() != 0 {
		return ErrLinksBroken
	}
	return nil
}

// newExternalResolver builds the HTTP client and the capability external
// probes run with. A proxy that fails its health check degrades the run
// instead of aborting it.
func newExternalResolver(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*resolver.External, error) {
	client, err := netclient.NewClient(cfg.ProxyAddress, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	capability := resolver.Online()
	if status := client.CheckConnection(ctx); status != netclient.ProxyStatusOK {
		capability = resolver.Offline(fmt.Sprintf("proxy %s: %s", client.ProxyAddress(), status))
	} else if client.UsesProxy() {
		logger.Info("proxy connection verified", "address", client.ProxyAddress())
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = resolver.UserAgent(getVersion())
	}
	return resolver.NewExternal(resolver.ExternalConfig{
		Client:      client.HTTPClientWithConfig(userAgent, headerSource(cfg.File)),
		Capability:  capability,
		Timeout:     cfg.Timeout,
		UserAgent:   userAgent,
		RatePerHost: cfg.Rate,
		Logger:      logger,
	}), nil
}

// headerSource resolves per-host request state from the config file.
func headerSource(file *config.File) netclient.HeaderSource {
	if file == nil {
		return nil
	}
	return func(host string) netclient.HostHeaders {
		hc := file.GetHostConfig(host)
		return netclient.HostHeaders{Cookie: hc.Cookie, Headers: hc.Headers}
	}
}

// newWriter returns the report writer selected by cfg.
func newWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(w, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w, report.WithMarkdownVerbose(cfg.Verbose))
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// outputReport writes the report to the configured file or to stdout.
func outputReport(cfg *config.Config, summary *model.Summary, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	_, err := newWriter(cfg, output).WriteSummary(summary)
	return err
}

// saveRun records the summary under the absolute path of its document so
// that runs from different working directories share a history.
func saveRun(ctx context.Context, dbDir string, summary *model.Summary, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	stored := *summary
	stored.DocumentPath = documentKey(summary.DocumentPath)

	id, err := db.SaveRun(ctx, &stored)
	if err != nil {
		return err
	}
	logger.Info("run saved to database", "id", id, "document", stored.DocumentPath)
	return nil
}

// documentKey returns the history key of a document path.
func documentKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
