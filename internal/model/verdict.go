package model

import "fmt"

// Verdict is the final pass/fail decision of a run.
// A run fails if and only if at least one reference is broken;
// warnings are reported but never fail a run.
type Verdict struct {
	Passed   bool `json:"passed"`
	Warnings int  `json:"warnings"`
}

// String renders the verdict as shown on the STATUS line of a report.
func (v Verdict) String() string {
	if !v.Passed {
		return "FAILED"
	}
	switch v.Warnings {
	case 0:
		return "PASSED"
	case 1:
		return "PASSED (1 warning)"
	default:
		return fmt.Sprintf("PASSED (%d warnings)", v.Warnings)
	}
}

// ExitCode returns the process exit code for CLI consumers:
// 0 when the run passed, 1 when any error exists.
func (v Verdict) ExitCode() int {
	if v.Passed {
		return 0
	}
	return 1
}
