package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/linkcheck/internal/model"
)

// ruleWidth is the width of the "=" and "-" separator lines.
const ruleWidth = 60

// SimpleWriter outputs the plain-text terminal report.
type SimpleWriter struct {
	baseWriter

	// verbose includes the OK block.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose includes ok results in the output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteSummary outputs the summary in human-readable format.
func (w *SimpleWriter) WriteSummary(s *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, s)
	w.writeBlock(&sb, "ERRORS", s.Errors, func(r model.Result) string {
		return fmt.Sprintf("  [ERROR] %s\n          %s\n", truncateRunes(r.URL, maxURLWidth), r.Message)
	})
	w.writeBlock(&sb, "WARNINGS", s.Warnings, func(r model.Result) string {
		return fmt.Sprintf("  [WARN]  %s\n          %s\n", truncateRunes(r.URL, maxURLWidth), r.Message)
	})
	if w.verbose {
		w.writeBlock(&sb, "OK", s.OK, func(r model.Result) string {
			return fmt.Sprintf("  [OK]    %s\n", truncateRunes(r.URL, maxURLWidth))
		})
	}
	w.writeBlock(&sb, "SKIPPED", s.Skipped, func(r model.Result) string {
		return fmt.Sprintf("  [SKIP]  %s - %s\n", truncateRunes(r.URL, maxURLWidth), r.Message)
	})
	w.writeSummary(&sb, s)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *model.Summary) {
	fmt.Fprintf(sb, "\nChecking links in: %s\n", s.DocumentPath)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\nLINK CHECK RESULTS\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}

// writeBlock writes one status block. Empty blocks are omitted.
func (w *SimpleWriter) writeBlock(sb *strings.Builder, title string, results []model.Result, line func(model.Result) string) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s (%d)\n", title, len(results))
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	for _, r := range results {
		sb.WriteString(line(r))
	}
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, s *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\nSUMMARY\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	fmt.Fprintf(sb, "  Total links: %d\n", s.TotalLinks)
	fmt.Fprintf(sb, "  Unique links: %d\n", s.UniqueLinks)
	fmt.Fprintf(sb, "  Unique checked: %d\n", s.UniqueChecked)
	fmt.Fprintf(sb, "  OK: %d\n", s.OKCount)
	fmt.Fprintf(sb, "  Errors: %d\n", s.ErrorCount)
	fmt.Fprintf(sb, "  Warnings: %d\n", s.WarningCount)
	fmt.Fprintf(sb, "  Skipped: %d\n", s.SkippedCount)
	if s.Interrupted {
		sb.WriteString("\n  NOTE: run was interrupted; some checks may be incomplete\n")
	}

	status := s.Verdict.String()
	if s.Interrupted && s.Verdict.Passed {
		status = "INCOMPLETE (interrupted)"
	}
	fmt.Fprintf(sb, "\n  STATUS: %s\n", status)
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}
