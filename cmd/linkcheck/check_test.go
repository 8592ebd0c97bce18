package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/linkcheck/internal/config"
	"github.com/nao1215/linkcheck/internal/database"
	"github.com/nao1215/linkcheck/internal/extractor"
	"github.com/nao1215/linkcheck/internal/report"
)

// writeDocument writes index.html with body next to about.html and
// returns its path.
func writeDocument(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "about.html"), []byte("about"), 0600); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/forbidden", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(doc string) *config.Config {
	cfg := config.NewConfig()
	cfg.DocumentPath = doc
	cfg.Rate = 0
	return cfg
}

// TestNewCheckCmd tests the check command creation.
func TestNewCheckCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCheckCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "check <file.html>" {
			t.Errorf("unexpected use %q", cmd.Use)
		}
	})

	t.Run("requires exactly one argument", func(t *testing.T) {
		t.Parallel()
		if err := cmd.Args(cmd, nil); err == nil {
			t.Error("expected error without arguments")
		}
		if err := cmd.Args(cmd, []string{"a.html", "b.html"}); err == nil {
			t.Error("expected error with two arguments")
		}
		if err := cmd.Args(cmd, []string{"a.html"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	flags := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "no-external", defValue: "false"},
		{name: "external-only", defValue: "false"},
		{name: "timeout", shorthand: "t", defValue: "5"},
		{name: "concurrency", shorthand: "n", defValue: "8"},
		{name: "rate", defValue: "5"},
		{name: "user-agent", defValue: ""},
		{name: "proxy", defValue: ""},
		{name: "config", shorthand: "c", defValue: ""},
		{name: "json", shorthand: "j", defValue: "false"},
		{name: "markdown", shorthand: "m", defValue: "false"},
		{name: "output", shorthand: "o", defValue: ""},
		{name: "save", defValue: "false"},
	}
	for _, tt := range flags {
		t.Run("has "+tt.name+" flag", func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

// TestBuildConfig tests flag parsing and config file precedence.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "linkcheck.yaml")
	content := `
concurrency: 3
timeout: 20
rate: 1
ignore:
  - "https://twitter.com/*"
hosts:
  example.com:
    cookie: "consent=yes"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Run("file values apply and explicit flags win", func(t *testing.T) {
		t.Parallel()

		cmd := NewCheckCmd()
		if err := cmd.ParseFlags([]string{"-c", configPath, "-n", "12", "--json"}); err != nil {
			t.Fatal(err)
		}
		cfg, err := buildConfig(cmd, []string{"index.html"})
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if cfg.Concurrency != 12 {
			t.Errorf("Concurrency = %d, want flag value 12", cfg.Concurrency)
		}
		if cfg.Timeout != 20*time.Second {
			t.Errorf("Timeout = %v, want file value 20s", cfg.Timeout)
		}
		if cfg.Rate != 1 {
			t.Errorf("Rate = %v, want file value 1", cfg.Rate)
		}
		if !cfg.JSONReport {
			t.Error("expected JSON report")
		}
		if cfg.DocumentPath != "index.html" {
			t.Errorf("DocumentPath = %q", cfg.DocumentPath)
		}
		if len(cfg.IgnorePatterns()) != 1 {
			t.Errorf("IgnorePatterns() = %v", cfg.IgnorePatterns())
		}
	})

	t.Run("missing explicit config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewCheckCmd()
		if err := cmd.ParseFlags([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}); err != nil {
			t.Fatal(err)
		}
		_, err := buildConfig(cmd, []string{"index.html"})
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

// TestCheckCmdValidation tests configuration errors surfaced by the command.
func TestCheckCmdValidation(t *testing.T) {
	t.Parallel()

	doc := writeDocument(t, `<a href="about.html">About</a>`)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "conflicting scopes", args: []string{"--no-external", "--external-only", doc}, want: config.ErrConflictingScopes},
		{name: "conflicting formats", args: []string{"-j", "-m", doc}, want: config.ErrConflictingReportFormats},
		{name: "zero timeout", args: []string{"-t", "0", doc}, want: config.ErrInvalidTimeout},
		{name: "zero concurrency", args: []string{"-n", "0", doc}, want: config.ErrInvalidConcurrency},
		{name: "negative rate", args: []string{"--rate", "-1", doc}, want: config.ErrInvalidRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewCheckCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			if err := cmd.Execute(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestRunCheck tests complete runs against a local HTTP server.
func TestRunCheck(t *testing.T) {
	t.Parallel()

	srv := newSiteServer(t)

	t.Run("broken links fail the run", func(t *testing.T) {
		t.Parallel()

		doc := writeDocument(t, `<html><body id="top">
<a href="about.html">About</a>
<a href="missing.html">Missing</a>
<a href="#top">Top</a>
<a href="`+srv.URL+`/ok">OK</a>
<a href="`+srv.URL+`/gone">Gone</a>
<a href="javascript:void(0)">JS</a>
</body></html>`)

		var stdout, stderr bytes.Buffer
		err := runCheck(context.Background(), testConfig(doc), &stdout, &stderr, discardLogger())
		if !errors.Is(err, ErrLinksBroken) {
			t.Fatalf("expected ErrLinksBroken, got %v", err)
		}

		out := stdout.String()
		for _, want := range []string{
			"Checking links in: " + doc,
			"ERRORS (2)",
			"File not found: missing.html",
			"HTTP 404",
			"SKIPPED (1)",
			"Javascript URI",
			"Unique checked: 5",
			"STATUS: FAILED",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
		if strings.Contains(out, "OK (") {
			t.Errorf("ok block should only appear in verbose mode:\n%s", out)
		}
		if stderr.Len() != 0 {
			t.Errorf("unexpected stderr: %s", stderr.String())
		}
	})

	t.Run("warnings do not fail the run", func(t *testing.T) {
		t.Parallel()

		doc := writeDocument(t, `<a href="about.html">About</a><a href="`+srv.URL+`/forbidden">F</a>`)

		var stdout bytes.Buffer
		cfg := testConfig(doc)
		cfg.Verbose = true
		if err := runCheck(context.Background(), cfg, &stdout, io.Discard, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := stdout.String()
		if !strings.Contains(out, "STATUS: PASSED (1 warning)") {
			t.Errorf("expected passed verdict with warning:\n%s", out)
		}
		if !strings.Contains(out, "OK (1)") {
			t.Errorf("expected ok block in verbose mode:\n%s", out)
		}
	})

	t.Run("no-external skips network references", func(t *testing.T) {
		t.Parallel()

		doc := writeDocument(t, `<a href="about.html">About</a><a href="`+srv.URL+`/gone">Gone</a>`)

		var stdout bytes.Buffer
		cfg := testConfig(doc)
		cfg.NoExternal = true
		if err := runCheck(context.Background(), cfg, &stdout, io.Discard, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout.String(), "External check disabled") {
			t.Errorf("expected disabled external check:\n%s", stdout.String())
		}
	})

	t.Run("unreachable proxy degrades to skipped", func(t *testing.T) {
		t.Parallel()

		doc := writeDocument(t, `<a href="`+srv.URL+`/gone">Gone</a>`)

		var stdout, stderr bytes.Buffer
		cfg := testConfig(doc)
		cfg.ProxyAddress = closedAddress(t)
		if err := runCheck(context.Background(), cfg, &stdout, &stderr, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stderr.String(), "external checks unavailable") {
			t.Errorf("expected degraded notice on stderr, got %q", stderr.String())
		}
		if !strings.Contains(stdout.String(), "network unavailable") {
			t.Errorf("expected skipped external link:\n%s", stdout.String())
		}
	})

	t.Run("missing document is a structural error", func(t *testing.T) {
		t.Parallel()

		var stdout bytes.Buffer
		cfg := testConfig(filepath.Join(t.TempDir(), "nope.html"))
		err := runCheck(context.Background(), cfg, &stdout, io.Discard, discardLogger())
		if !errors.Is(err, extractor.ErrDocumentNotFound) {
			t.Errorf("expected ErrDocumentNotFound, got %v", err)
		}
		if stdout.Len() != 0 {
			t.Errorf("expected no report, got:\n%s", stdout.String())
		}
	})

	t.Run("JSON report written to file", func(t *testing.T) {
		t.Parallel()

		doc := writeDocument(t, `<a href="about.html">About</a>`)
		outPath := filepath.Join(t.TempDir(), "reports", "report.json")

		cfg := testConfig(doc)
		cfg.JSONReport = true
		cfg.ReportFile = outPath
		if err := runCheck(context.Background(), cfg, io.Discard, io.Discard, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := os.Stat(outPath)
		if err != nil {
			t.Fatalf("report not written: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatal(err)
		}
		var got report.JSONReport
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Report == nil || got.Report.OKCount != 1 || !got.Report.Verdict.Passed {
			t.Errorf("unexpected report: %s", data)
		}
	})

	t.Run("markdown report", func(t *testing.T) {
		t.Parallel()

		doc := writeDocument(t, `<a href="missing.html">Missing</a>`)

		var stdout bytes.Buffer
		cfg := testConfig(doc)
		cfg.MarkdownReport = true
		if err := runCheck(context.Background(), cfg, &stdout, io.Discard, discardLogger()); !errors.Is(err, ErrLinksBroken) {
			t.Fatalf("expected ErrLinksBroken, got %v", err)
		}
		if !strings.Contains(stdout.String(), "# Link Check Report") {
			t.Errorf("expected markdown heading:\n%s", stdout.String())
		}
	})

	t.Run("interrupted run fails and is not saved", func(t *testing.T) {
		t.Parallel()

		arrived := make(chan struct{}, 1)
		release := make(chan struct{})
		blocking := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			arrived <- struct{}{}
			<-release
			w.WriteHeader(http.StatusNotFound)
		}))
		defer blocking.Close()
		defer close(release)

		doc := writeDocument(t, `<a href="about.html">About</a><a href="`+blocking.URL+`/gone">Gone</a>`)
		cfg := testConfig(doc)
		cfg.Save = true
		cfg.DBDir = t.TempDir()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			<-arrived
			cancel()
		}()

		var stdout bytes.Buffer
		err := runCheck(ctx, cfg, &stdout, io.Discard, discardLogger())
		if !errors.Is(err, ErrInterrupted) {
			t.Fatalf("expected ErrInterrupted, got %v", err)
		}

		out := stdout.String()
		for _, want := range []string{"Interrupted", "run was interrupted", "STATUS: INCOMPLETE (interrupted)"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
		if strings.Contains(out, "Timeout") {
			t.Errorf("cancellation must not be reported as a timeout:\n%s", out)
		}
		if _, err := os.Stat(filepath.Join(cfg.DBDir, database.FileName)); !os.IsNotExist(err) {
			t.Errorf("expected no history database for an interrupted run, stat err = %v", err)
		}
	})

	t.Run("run cancelled before it starts is interrupted", func(t *testing.T) {
		t.Parallel()

		doc := writeDocument(t, `<a href="about.html">About</a>`)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := runCheck(ctx, testConfig(doc), io.Discard, io.Discard, discardLogger())
		if !errors.Is(err, ErrInterrupted) || !errors.Is(err, context.Canceled) {
			t.Errorf("expected ErrInterrupted wrapping context.Canceled, got %v", err)
		}
	})

	t.Run("saved runs land in the history database", func(t *testing.T) {
		t.Parallel()

		doc := writeDocument(t, `<a href="about.html">About</a>`)
		cfg := testConfig(doc)
		cfg.Save = true
		cfg.DBDir = t.TempDir()
		if err := runCheck(context.Background(), cfg, io.Discard, io.Discard, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), documentKey(doc), 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 || runs[0].Verdict != "PASSED" {
			t.Errorf("unexpected runs: %+v", runs)
		}
	})
}

// closedAddress returns a local address nothing listens on.
func closedAddress(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

// TestHeaderSource tests that probe headers come from the config file's
// host lookup.
func TestHeaderSource(t *testing.T) {
	t.Parallel()

	if headerSource(nil) != nil {
		t.Error("expected no header source without a config file")
	}

	source := headerSource(&config.File{
		Defaults: config.HostConfig{Cookie: "a=1", Headers: map[string]string{"Accept-Language": "en"}},
		Hosts: map[string]config.HostConfig{
			"Example.com": {Cookie: "b=2", Headers: map[string]string{"X-Token": "secret"}},
		},
	})

	got := source("www.example.com")
	if got.Cookie != "b=2" {
		t.Errorf("Cookie = %q, want host cookie", got.Cookie)
	}
	if got.Headers["Accept-Language"] != "en" || got.Headers["X-Token"] != "secret" {
		t.Errorf("unexpected headers: %v", got.Headers)
	}
	if other := source("other.org"); other.Cookie != "a=1" || other.Headers["X-Token"] != "" {
		t.Errorf("unexpected defaults for other host: %+v", other)
	}
}
