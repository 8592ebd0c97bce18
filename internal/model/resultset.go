package model

import "sync"

// ResultSet aggregates Results into four disjoint sequences keyed by status.
//
// References are deduplicated by their literal URL: the first occurrence
// is claimed and checked, later occurrences are only counted in Total.
// Add is safe for concurrent use; external probes report through it as
// they complete.
type ResultSet struct {
	mu sync.Mutex

	ok       []Result
	warnings []Result
	errors   []Result
	skipped  []Result

	// total counts every reference seen, duplicates included.
	total int

	// seen holds the literal URLs already claimed.
	seen map[string]struct{}
}

// NewResultSet creates an empty ResultSet.
func NewResultSet() *ResultSet {
	return &ResultSet{
		ok:       make([]Result, 0),
		warnings: make([]Result, 0),
		errors:   make([]Result, 0),
		skipped:  make([]Result, 0),
		seen:     make(map[string]struct{}),
	}
}

// Claim records that a reference with the given URL was seen.
// It returns true for the first occurrence of the URL, which the caller
// must resolve and Add exactly once, and false for duplicates.
func (rs *ResultSet) Claim(url string) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.total++
	if _, dup := rs.seen[url]; dup {
		return false
	}
	rs.seen[url] = struct{}{}
	return true
}

// Add appends a result to the bucket matching its status.
// Results with an unknown status are treated as errors.
func (rs *ResultSet) Add(r Result) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	switch r.Status {
	case StatusOK:
		rs.ok = append(rs.ok, r)
	case StatusWarning:
		rs.warnings = append(rs.warnings, r)
	case StatusSkipped:
		rs.skipped = append(rs.skipped, r)
	default:
		rs.errors = append(rs.errors, r)
	}
}

// OK returns a copy of the ok results.
func (rs *ResultSet) OK() []Result { return rs.snapshot(StatusOK) }

// Warnings returns a copy of the warning results.
func (rs *ResultSet) Warnings() []Result { return rs.snapshot(StatusWarning) }

// Errors returns a copy of the error results.
func (rs *ResultSet) Errors() []Result { return rs.snapshot(StatusError) }

// Skipped returns a copy of the skipped results.
func (rs *ResultSet) Skipped() []Result { return rs.snapshot(StatusSkipped) }

func (rs *ResultSet) snapshot(s Status) []Result {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	var src []Result
	switch s {
	case StatusOK:
		src = rs.ok
	case StatusWarning:
		src = rs.warnings
	case StatusError:
		src = rs.errors
	case StatusSkipped:
		src = rs.skipped
	}
	out := make([]Result, len(src))
	copy(out, src)
	return out
}

// Total returns the number of references seen, duplicates included.
func (rs *ResultSet) Total() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.total
}

// Unique returns the number of distinct URLs claimed.
func (rs *ResultSet) Unique() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.seen)
}

// Resolved returns the number of results added so far.
// Once a run completes it equals Unique.
func (rs *ResultSet) Resolved() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.ok) + len(rs.warnings) + len(rs.errors) + len(rs.skipped)
}

// Checked returns the number of unique references that were actually
// evaluated, that is every result except the skipped ones.
func (rs *ResultSet) Checked() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.ok) + len(rs.warnings) + len(rs.errors)
}

// Counts returns the number of results per status.
func (rs *ResultSet) Counts() map[Status]int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return map[Status]int{
		StatusOK:      len(rs.ok),
		StatusWarning: len(rs.warnings),
		StatusError:   len(rs.errors),
		StatusSkipped: len(rs.skipped),
	}
}

// Verdict renders the pass/fail verdict of the results collected so far.
func (rs *ResultSet) Verdict() Verdict {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return Verdict{
		Passed:   len(rs.errors) == 0,
		Warnings: len(rs.warnings),
	}
}
