package model

import "time"

// CheckReport is the state of one link-check run.
// Pipeline steps receive it in turn and fill it in; report writers and the
// history store read it once the pipeline finishes.
type CheckReport struct {
	// DocumentPath is the path of the checked HTML file.
	DocumentPath string `json:"document_path"`

	// DateChecked is when the run started.
	DateChecked time.Time `json:"date_checked"`

	// Document is the loaded document. Nil until the extract step ran.
	Document *Document `json:"-"`

	// Results aggregates the outcome of every unique reference.
	Results *ResultSet `json:"-"`

	// Unique holds the classified first occurrence of every distinct URL,
	// in document order. Filled by the classify step.
	Unique []Reference `json:"-"`

	// Pending holds the external references still waiting for a probe,
	// in document order. Filled by the local check step.
	Pending []Reference `json:"-"`

	// Interrupted is set when the run was cancelled before every
	// reference could be checked normally.
	Interrupted bool `json:"interrupted,omitempty"`

	// Duration is the wall time of the whole run.
	Duration time.Duration `json:"duration"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps"`

	// Error holds a structural error that stopped the run.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCheckReport creates an empty report for the given document path.
func NewCheckReport(path string) *CheckReport {
	return &CheckReport{
		DocumentPath:   path,
		DateChecked:    time.Now(),
		Results:        NewResultSet(),
		Unique:         make([]Reference, 0),
		Pending:        make([]Reference, 0),
		PerformedSteps: make([]string, 0),
	}
}

// Verdict returns the verdict of the run.
func (r *CheckReport) Verdict() Verdict {
	return r.Results.Verdict()
}
