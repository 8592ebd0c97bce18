// Package model defines the data structures shared by every stage of a
// link check.
//
// This package contains the following main types:
//   - Document: an HTML file loaded once for the duration of a run
//   - Reference: a URL-bearing attribute extracted from a Document
//   - Outcome and Result: the status assigned to a Reference
//   - ResultSet: the deduplicating aggregator of Results
//   - CheckReport: the per-run envelope passed between pipeline steps
//
// Models live in their own package so that the extractor, resolvers,
// pipeline, report writers and history store can all depend on them
// without import cycles. Everything here serializes to JSON for report
// output and database storage.
package model
