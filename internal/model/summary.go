package model

import "time"

// Summary is the serializable view of a finished CheckReport.
// It is what the JSON writer emits and what the history store persists.
type Summary struct {
	// DocumentPath is the path of the checked HTML file.
	DocumentPath string `json:"document_path"`

	// DateChecked is when the run started.
	DateChecked time.Time `json:"date_checked"`

	// DurationMS is the wall time of the run in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	// TotalLinks counts every reference, duplicates included.
	TotalLinks int `json:"total_links"`

	// UniqueLinks counts distinct literal URLs.
	UniqueLinks int `json:"unique_links"`

	// UniqueChecked counts unique references that were evaluated (not skipped).
	UniqueChecked int `json:"unique_checked"`

	OKCount      int `json:"ok_count"`
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
	SkippedCount int `json:"skipped_count"`

	// Verdict is the pass/fail decision.
	Verdict Verdict `json:"verdict"`

	Errors   []Result `json:"errors"`
	Warnings []Result `json:"warnings"`
	OK       []Result `json:"ok"`
	Skipped  []Result `json:"skipped"`

	// Interrupted is true when the run was cancelled part way.
	Interrupted bool `json:"interrupted,omitempty"`

	// Error contains the structural error message if the run failed early.
	Error string `json:"error,omitempty"`
}

// NewSummary builds a Summary from a report.
func NewSummary(r *CheckReport) *Summary {
	rs := r.Results
	counts := rs.Counts()
	return &Summary{
		DocumentPath:  r.DocumentPath,
		DateChecked:   r.DateChecked,
		DurationMS:    r.Duration.Milliseconds(),
		TotalLinks:    rs.Total(),
		UniqueLinks:   rs.Unique(),
		UniqueChecked: rs.Checked(),
		OKCount:       counts[StatusOK],
		ErrorCount:    counts[StatusError],
		WarningCount:  counts[StatusWarning],
		SkippedCount:  counts[StatusSkipped],
		Verdict:       rs.Verdict(),
		Errors:        rs.Errors(),
		Warnings:      rs.Warnings(),
		OK:            rs.OK(),
		Skipped:       rs.Skipped(),
		Interrupted:   r.Interrupted,
		Error:         r.ErrorMessage,
	}
}

// Results returns the results of the given status.
func (s *Summary) Results(status Status) []Result {
	switch status {
	case StatusOK:
		return s.OK
	case StatusWarning:
		return s.Warnings
	case StatusError:
		return s.Errors
	case StatusSkipped:
		return s.Skipped
	default:
		return nil
	}
}

// BrokenURLs returns the URLs of all error results.
func (s *Summary) BrokenURLs() []string {
	urls := make([]string, len(s.Errors))
	for i, r := range s.Errors {
		urls[i] = r.URL
	}
	return urls
}
