package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/linkcheck/internal/model"
)

// FileName is the name of the SQLite file inside the data directory.
const FileName = "linkcheck.db"

// ErrDatabaseNotFound is returned by Open when the database file is missing
// and CreateIfNotExists is false.
var ErrDatabaseNotFound = errors.New("history database not found")

// HistoryDB stores finished link-check runs in SQLite.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// RunMetadata is the listing view of a recorded run.
type RunMetadata struct {
	ID           int64     `json:"id"`
	DocumentPath string    `json:"document_path"`
	Timestamp    time.Time `json:"timestamp"`
	Verdict      string    `json:"verdict"`
	TotalLinks   int       `json:"total_links"`
	UniqueLinks  int       `json:"unique_links"`
	OKCount      int       `json:"ok_count"`
	ErrorCount   int       `json:"error_count"`
	WarningCount int       `json:"warning_count"`
	SkippedCount int       `json:"skipped_count"`
}

// Diff lists the URLs whose broken state changed between two runs.
type Diff struct {
	// Previous and Current are the compared runs, oldest first.
	Previous *RunMetadata `json:"previous"`
	Current  *RunMetadata `json:"current"`

	// NewlyBroken are URLs that are errors in Current but not in Previous.
	NewlyBroken []string `json:"newly_broken"`

	// Fixed are URLs that were errors in Previous but not in Current.
	Fixed []string `json:"fixed"`
}

// Open opens or creates a HistoryDB in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the path of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_path TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		verdict TEXT NOT NULL,
		total_links INTEGER NOT NULL,
		unique_links INTEGER NOT NULL,
		ok_count INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		warning_count INTEGER NOT NULL,
		skipped_count INTEGER NOT NULL,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_document ON runs(document_path);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun records a finished run and returns its ID.
func (hdb *HistoryDB) SaveRun(ctx context.Context, summary *model.Summary) (int64, error) {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	query := `
	INSERT INTO runs (document_path, timestamp, verdict, total_links, unique_links,
		ok_count, error_count, warning_count, skipped_count, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := hdb.db.ExecContext(ctx, query,
		summary.DocumentPath,
		summary.DateChecked.UTC().Format(timestampLayout),
		summary.Verdict.String(),
		summary.TotalLinks,
		summary.UniqueLinks,
		summary.OKCount,
		summary.ErrorCount,
		summary.WarningCount,
		summary.SkippedCount,
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return id, nil
}

// ListDocuments returns every document path with at least one recorded run.
func (hdb *HistoryDB) ListDocuments(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT document_path FROM runs ORDER BY document_path`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]string, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListRuns returns the runs recorded for a document, newest first.
// A limit of zero or less returns every run.
func (hdb *HistoryDB) ListRuns(ctx context.Context, documentPath string, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, document_path, timestamp, verdict, total_links, unique_links,
		ok_count, error_count, warning_count, skipped_count
	FROM runs
	WHERE document_path = ?
	ORDER BY timestamp DESC, id DESC
	`
	args := []any{documentPath}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var (
			meta      RunMetadata
			timestamp string
		)
		if err := rows.Scan(
			&meta.ID, &meta.DocumentPath, &timestamp, &meta.Verdict,
			&meta.TotalLinks, &meta.UniqueLinks,
			&meta.OKCount, &meta.ErrorCount, &meta.WarningCount, &meta.SkippedCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

// GetRunByID returns the stored summary of a run, or nil if no run has
// that ID.
func (hdb *HistoryDB) GetRunByID(ctx context.Context, id int64) (*model.Summary, error) {
	query := `SELECT summary_json FROM runs WHERE id = ?`

	var summaryJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var summary model.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	return &summary, nil
}

// DiffLatest compares the latest two runs of a document.
// It returns nil when fewer than two runs are recorded.
func (hdb *HistoryDB) DiffLatest(ctx context.Context, documentPath string) (*Diff, error) {
	runs, err := hdb.ListRuns(ctx, documentPath, 2)
	if err != nil {
		return nil, err
	}
	if len(runs) < 2 {
		return nil, nil
	}

	current, err := hdb.GetRunByID(ctx, runs[0].ID)
	if err != nil {
		return nil, err
	}
	previous, err := hdb.GetRunByID(ctx, runs[1].ID)
	if err != nil {
		return nil, err
	}
	if current == nil || previous == nil {
		return nil, nil
	}

	return &Diff{
		Previous:    &runs[1],
		Current:     &runs[0],
		NewlyBroken: difference(current.BrokenURLs(), previous.BrokenURLs()),
		Fixed:       difference(previous.BrokenURLs(), current.BrokenURLs()),
	}, nil
}

// difference returns the elements of a missing from b, sorted.
func difference(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		seen[s] = struct{}{}
	}
	out := make([]string, 0)
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// timestampLayout is fixed width so that timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// timestampFormats contains the timestamp formats that SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp tries every known format and returns the zero time if
// none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
