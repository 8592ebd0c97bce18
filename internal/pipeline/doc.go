// Package pipeline runs a link check as a sequence of steps over a shared
// model.CheckReport.
//
// The default pipeline loads and tokenizes the document, classifies and
// deduplicates its references, resolves everything that can be answered
// locally in document order, and finally hands external references to a
// Dispatcher that probes them concurrently with errgroup.
package pipeline
