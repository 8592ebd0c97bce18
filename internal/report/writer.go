package report

import (
	"io"

	"github.com/nao1215/linkcheck/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// WriteSummary outputs the summary of a finished run to the configured
	// destination. Returns the number of bytes written and any error
	// encountered.
	WriteSummary(summary *model.Summary) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// maxURLWidth is the number of runes of a URL shown in report listings.
const maxURLWidth = 50

// truncateRunes cuts s to at most n runes without adding an ellipsis.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// truncateString truncates s to maxLen runes, ending with "..." when cut.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
