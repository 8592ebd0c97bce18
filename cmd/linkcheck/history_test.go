package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/linkcheck/internal/database"
	"github.com/nao1215/linkcheck/internal/model"
)

// seedHistory records two runs of doc: the first with a broken "a" link,
// the second with a broken "b" link.
func seedHistory(t *testing.T, dbDir, doc string) {
	t.Helper()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, broken := range []string{"https://example.com/a", "https://example.com/b"} {
		summary := &model.Summary{
			DocumentPath: documentKey(doc),
			DateChecked:  base.Add(time.Duration(i) * time.Hour),
			TotalLinks:   1,
			UniqueLinks:  1,
			ErrorCount:   1,
			Verdict:      model.Verdict{Passed: false},
			Errors: []model.Result{model.NewResult(
				model.Reference{URL: broken, Kind: model.SourceAnchor, Category: model.CategoryExternal},
				model.Error("HTTP 404"),
			)},
		}
		if _, err := db.SaveRun(context.Background(), summary); err != nil {
			t.Fatal(err)
		}
	}
}

func runHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	cmd := NewHistoryCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// TestHistoryCmd tests listing, diffing and documents.
func TestHistoryCmd(t *testing.T) {
	// Subtests share one database file and run sequentially.
	dbDir := t.TempDir()
	doc := "site/index.html"
	seedHistory(t, dbDir, doc)

	t.Run("lists runs in a table", func(t *testing.T) {
		out, err := runHistory(t, "--db-dir", dbDir, doc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Run history for", "(2 runs)", "ID", "Warnings", "FAILED"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("lists runs as JSON", func(t *testing.T) {
		out, err := runHistory(t, "--db-dir", dbDir, "--json", "-n", "1", doc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var runs []database.RunMetadata
		if err := json.Unmarshal([]byte(out), &runs); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if len(runs) != 1 || runs[0].ErrorCount != 1 {
			t.Errorf("unexpected runs: %+v", runs)
		}
	})

	t.Run("diffs the latest two runs", func(t *testing.T) {
		out, err := runHistory(t, "--db-dir", dbDir, "--diff", doc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "broken") || !strings.Contains(out, "https://example.com/b") {
			t.Errorf("expected newly broken link:\n%s", out)
		}
		if !strings.Contains(out, "fixed") || !strings.Contains(out, "https://example.com/a") {
			t.Errorf("expected fixed link:\n%s", out)
		}
	})

	t.Run("diff as JSON", func(t *testing.T) {
		out, err := runHistory(t, "--db-dir", dbDir, "--diff", "--json", doc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var diff database.Diff
		if err := json.Unmarshal([]byte(out), &diff); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if len(diff.NewlyBroken) != 1 || diff.NewlyBroken[0] != "https://example.com/b" {
			t.Errorf("unexpected diff: %+v", diff)
		}
	})

	t.Run("lists documents", func(t *testing.T) {
		out, err := runHistory(t, "--db-dir", dbDir, "--list-documents")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, documentKey(doc)) {
			t.Errorf("expected document in output:\n%s", out)
		}
	})

	t.Run("diff needs two runs", func(t *testing.T) {
		if _, err := runHistory(t, "--db-dir", dbDir, "--diff", "other.html"); err == nil {
			t.Error("expected error for a document without history")
		}
	})

	t.Run("requires a document", func(t *testing.T) {
		if _, err := runHistory(t, "--db-dir", dbDir); err == nil {
			t.Error("expected error without a document")
		}
	})
}

// TestHistoryCmdWithoutDatabase tests the message shown before any run was saved.
func TestHistoryCmdWithoutDatabase(t *testing.T) {
	t.Parallel()

	out, err := runHistory(t, "--db-dir", t.TempDir(), "index.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No runs recorded yet") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
