// Package report renders finished link checks.
//
// This package contains writers for different output formats:
//   - SimpleWriter: the plain-text terminal report
//   - JSONWriter: structured JSON for CI and tool integration
//   - MarkdownWriter: a Markdown document with a status pie chart
//
// Writers implement the Writer interface, so the CLI can pick one at
// runtime.
package report
