// Package database stores link-check runs in SQLite (modernc.org/sqlite).
//
// Each saved run keeps its counters in columns for listing and the full
// model.Summary as JSON, so that two runs of the same document can be
// compared to find links that broke or were fixed in between.
package database
