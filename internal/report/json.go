package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/linkcheck/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for CI pipelines and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteSummary outputs the summary in JSON format.
func (w *JSONWriter) WriteSummary(summary *model.Summary) (int, error) {
	return w.writeJSON(summary)
}

// writeJSON marshals v and writes it followed by a newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport wraps a summary with the version of the tool that made it.
type JSONReport struct {
	// Version is the linkcheck version that generated this report.
	Version string `json:"version"`

	// Report is the run summary.
	Report *model.Summary `json:"report"`
}

// FullJSONWriter outputs summaries wrapped in a JSONReport.
type FullJSONWriter struct {
	*JSONWriter

	// version is the linkcheck version string.
	version string
}

// NewFullJSONWriter creates a writer for versioned JSON reports.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// WriteSummary outputs the summary wrapped with metadata.
func (w *FullJSONWriter) WriteSummary(summary *model.Summary) (int, error) {
	return w.writeJSON(&JSONReport{Version: w.version, Report: summary})
}
