package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/linkcheck/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format, suitable for CI job
// summaries and pull request comments.
type MarkdownWriter struct {
	baseWriter

	// verbose includes the OK section.
	verbose bool
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownVerbose includes ok results in the output.
func WithMarkdownVerbose(verbose bool) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.verbose = verbose
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteSummary outputs the summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(s *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, s)
	w.writeSummary(md, s)

	w.writeResults(md, "Errors", s.Errors)
	w.writeResults(md, "Warnings", s.Warnings)
	if w.verbose {
		w.writeResults(md, "OK", s.OK)
	}
	w.writeResults(md, "Skipped", s.Skipped)

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.Summary) {
	md.H1("Link Check Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Document", "`" + s.DocumentPath + "`"},
			{"Date Checked", s.DateChecked.Format("2006-01-02 15:04:05 MST")},
			{"Duration", (time.Duration(s.DurationMS) * time.Millisecond).String()},
			{"Status", statusText(s)},
		},
	})
	md.PlainText("")
}

func statusText(s *model.Summary) string {
	switch {
	case s.Error != "":
		return "❌ Error - " + s.Error
	case !s.Verdict.Passed:
		return "❌ " + s.Verdict.String()
	case s.Interrupted:
		return "⚠️ " + s.Verdict.String() + " (interrupted)"
	default:
		return "✅ " + s.Verdict.String()
	}
}

// writeSummary writes the per-status counts, a pie chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, s *model.Summary) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Total links", strconv.Itoa(s.TotalLinks)},
			{"Unique links", strconv.Itoa(s.UniqueLinks)},
			{"Unique checked", strconv.Itoa(s.UniqueChecked)},
			{"🟢 OK", strconv.Itoa(s.OKCount)},
			{"🔴 Errors", strconv.Itoa(s.ErrorCount)},
			{"🟡 Warnings", strconv.Itoa(s.WarningCount)},
			{"⚪ Skipped", strconv.Itoa(s.SkippedCount)},
		},
	})
	md.PlainText("")

	if s.UniqueLinks > 0 {
		w.writePieChart(md, s)
	}
	w.writeAlert(md, s)
}

// writePieChart writes a mermaid pie chart of the status distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Link Status Distribution"),
		piechart.WithShowData(true),
	)

	parts := []struct {
		label string
		count int
	}{
		{"OK", s.OKCount},
		{"Errors", s.ErrorCount},
		{"Warnings", s.WarningCount},
		{"Skipped", s.SkippedCount},
	}
	for _, sl := range parts {
		if sl.count > 0 {
			chart.LabelAndIntValue(sl.label, uint64(sl.count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes a GitHub alert matching the verdict.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s *model.Summary) {
	switch {
	case s.ErrorCount > 0:
		md.Cautionf("%d broken link(s) found.", s.ErrorCount)
	case s.WarningCount > 0:
		md.Warningf("No broken links, but %d link(s) could not be confirmed.", s.WarningCount)
	case s.UniqueChecked == 0:
		md.Note("No links were checked.")
	default:
		md.Tip("All links are valid.")
	}
	md.PlainText("")
}

// writeResults writes one status section as a table. Empty sections are omitted.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, title string, results []model.Result) {
	if len(results) == 0 {
		return
	}

	md.H2(title + " (" + strconv.Itoa(len(results)) + ")")
	md.PlainText("")

	rows := make([][]string, len(results))
	for i, r := range results {
		url := "`" + truncateString(r.URL, 80) + "`"
		if r.URL == "" {
			url = "(empty)"
		}
		rows[i] = []string{
			url,
			string(r.Kind),
			string(r.Category),
			r.Message,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Kind", "Category", "Message"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [linkcheck](https://github.com/nao1215/linkcheck)*")
}
