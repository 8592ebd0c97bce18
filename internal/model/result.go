package model

// Status is the outcome tier of a resolved reference.
type Status string

const (
	// StatusOK means the target exists or responded successfully.
	StatusOK Status = "ok"

	// StatusWarning means the check was inconclusive (bot protection, timeout,
	// empty URL). Warnings never fail a run on their own.
	StatusWarning Status = "warning"

	// StatusError means the reference is broken.
	StatusError Status = "error"

	// StatusSkipped means the reference was intentionally not evaluated.
	StatusSkipped Status = "skipped"
)

// Outcome is the status and human-readable message produced by resolving
// a reference.
type Outcome struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// OK returns an ok outcome.
func OK(msg string) Outcome { return Outcome{Status: StatusOK, Message: msg} }

// Warning returns a warning outcome.
func Warning(msg string) Outcome { return Outcome{Status: StatusWarning, Message: msg} }

// Error returns an error outcome.
func Error(msg string) Outcome { return Outcome{Status: StatusError, Message: msg} }

// Skipped returns a skipped outcome.
func Skipped(msg string) Outcome { return Outcome{Status: StatusSkipped, Message: msg} }

// Result is a Reference paired with the Outcome of resolving it.
type Result struct {
	Reference
	Outcome
}

// NewResult pairs a reference with its outcome.
func NewResult(ref Reference, outcome Outcome) Result {
	return Result{Reference: ref, Outcome: outcome}
}
