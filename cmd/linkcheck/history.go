package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/linkcheck/internal/config"
	"github.com/nao1215/linkcheck/internal/database"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [file.html]",
		Short: "Show recorded runs of a document",
		Long: `History lists the runs recorded with 'linkcheck check --save'.

Examples:
  # List the recorded runs of a document
  linkcheck history public/index.html

  # Links that broke or were fixed between the latest two runs
  linkcheck history --diff public/index.html

  # List every document with recorded runs
  linkcheck history --list-documents`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-documents", "L", false,
		"List all documents with recorded runs")
	cmd.Flags().BoolP("diff", "d", false,
		"Show newly broken and fixed links between the latest two runs")
	cmd.Flags().IntP("limit", "n", 0,
		"Maximum number of runs to list (0 = all)")
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")
	_ = cmd.Flags().MarkHidden("db-dir") //nolint:errcheck // flag is defined above

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	listDocuments, err := flags.GetBool("list-documents")
	if err != nil {
		return err
	}
	diff, err := flags.GetBool("diff")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	if !listDocuments && len(args) == 0 {
		return errors.New("document path is required (use --list-documents to see recorded documents)")
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet. Use 'linkcheck check --save <file>' to record one.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if listDocuments {
		docs, err := db.ListDocuments(ctx)
		if err != nil {
			return err
		}
		return printDocuments(out, docs, jsonOutput)
	}

	doc := documentKey(args[0])
	if diff {
		d, err := db.DiffLatest(ctx, doc)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("at least 2 recorded runs are required for a diff of %s", doc)
		}
		return printDiff(out, d, jsonOutput)
	}

	runs, err := db.ListRuns(ctx, doc, limit)
	if err != nil {
		return err
	}
	return printRuns(out, doc, runs, jsonOutput)
}

func printDocuments(w io.Writer, docs []string, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(w, docs)
	}
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents found in the database.")
		return nil
	}

	fmt.Fprintf(w, "Recorded documents (%d):\n\n", len(docs))
	for _, doc := range docs {
		fmt.Fprintf(w, "  • %s\n", doc)
	}
	return nil
}

func printRuns(w io.Writer, doc string, runs []database.RunMetadata, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(w, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintf(w, "No runs recorded for %s\n", doc)
		return nil
	}

	fmt.Fprintf(w, "Run history for %s (%d runs):\n\n", doc, len(runs))
	tbl := table.New("ID", "Date", "Status", "Total", "Unique", "OK", "Errors", "Warnings", "Skipped").WithWriter(w)
	for _, run := range runs {
		tbl.AddRow(run.ID, run.Timestamp.Local().Format("2006-01-02 15:04:05"), run.Verdict,
			run.TotalLinks, run.UniqueLinks, run.OKCount, run.ErrorCount, run.WarningCount, run.SkippedCount)
	}
	tbl.Print()
	return nil
}

func printDiff(w io.Writer, d *database.Diff, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(w, d)
	}

	fmt.Fprintf(w, "Comparing run #%d (%s) with run #%d (%s)\n\n",
		d.Current.ID, d.Current.Verdict, d.Previous.ID, d.Previous.Verdict)
	if len(d.NewlyBroken) == 0 && len(d.Fixed) == 0 {
		fmt.Fprintln(w, "No changes in broken links.")
		return nil
	}

	tbl := table.New("Change", "URL").WithWriter(w)
	for _, u := range d.NewlyBroken {
		tbl.AddRow("broken", u)
	}
	for _, u := range d.Fixed {
		tbl.AddRow("fixed", u)
	}
	tbl.Print()
	return nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
