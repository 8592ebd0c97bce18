// Package extractor loads an HTML document from disk and pulls every
// checkable reference out of it.
//
// Extraction is built on the golang.org/x/net/html tokenizer rather than a
// full DOM parse. Only start and self-closing tags carry the attributes of
// interest, so the document is consumed as a flat stream of tag events and
// never materialized as a tree. Malformed markup is skipped by the tokenizer
// and never aborts a run.
package extractor
