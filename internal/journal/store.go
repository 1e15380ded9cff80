package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mediatidy/internal/batch"
)

// ErrRunNotFound is returned when no run matches an identifier.
var ErrRunNotFound = fmt.Errorf("run %w", batch.ErrNotFound)

// ErrAmbiguousRun is returned when a run id prefix matches several runs.
var ErrAmbiguousRun = fmt.Errorf("%w: run id prefix is ambiguous", batch.ErrValidation)

// Run is one recorded invocation.
type Run struct {
	ID         string
	Operation  string
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time
	Succeeded  int
	Skipped    int
	Failed     int
	Entries    int
	Undone     int
}

// Finished reports whether FinishRun was called for the run.
func (r Run) Finished() bool { return !r.FinishedAt.IsZero() }

// Entry is one recorded move.
type Entry struct {
	ID        int64
	RunID     string
	Operation string
	Source    string
	Dest      string
	CreatedAt time.Time
	UndoneAt  time.Time
}

// Undone reports whether the entry has been reverted.
func (e Entry) Undone() bool { return !e.UndoneAt.IsZero() }

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	timeLayout              = "2006-01-02T15:04:05.000000000Z07:00"
)

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// BeginRun starts a run and returns it with a fresh UUID.
func (s *Store) BeginRun(ctx context.Context, operation, root string) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Operation: operation,
		Root:      root,
		StartedAt: s.now().UTC(),
	}
	err := s.execWithoutResultRetry(ctx,
		"INSERT INTO runs (id, operation, root, started_at) VALUES (?, ?, ?, ?)",
		run.ID, run.Operation, run.Root, run.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	return run, nil
}

// Record stores a completed move for runID.
func (s *Store) Record(ctx context.Context, runID, source, dest string) (Entry, error) {
	entry := Entry{RunID: runID, Source: source, Dest: dest, CreatedAt: s.now().UTC()}
	res, err := s.execWithRetry(ctx,
		"INSERT INTO entries (run_id, source, dest, created_at) VALUES (?, ?, ?, ?)",
		runID, source, dest, entry.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record entry: %w", err)
	}
	if entry.ID, err = res.LastInsertId(); err != nil {
		return Entry{}, fmt.Errorf("record entry id: %w", err)
	}
	return entry, nil
}

// FinishRun stores the outcome counts of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, summary batch.Summary) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE runs SET finished_at = ?, succeeded = ?, skipped = ?, failed = ? WHERE id = ?",
		s.now().UTC().Format(timeLayout), summary.Succeeded, summary.Skipped, summary.Failed, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	return nil
}

const runColumns = `r.id, r.operation, r.root, r.started_at, COALESCE(r.finished_at, ''),
	r.succeeded, r.skipped, r.failed,
	(SELECT COUNT(1) FROM entries e WHERE e.run_id = r.id),
	(SELECT COUNT(1) FROM entries e WHERE e.run_id = r.id AND e.undone_at IS NOT NULL)`

// Runs lists the most recent runs, newest first. limit <= 0 lists all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs r ORDER BY r.started_at DESC, r.rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindRun returns the run whose id equals or starts with idOrPrefix.
func (s *Store) FindRun(ctx context.Context, idOrPrefix string) (Run, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return Run{}, ErrRunNotFound
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(idOrPrefix)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+` FROM runs r WHERE r.id = ? OR r.id LIKE ? ESCAPE '\' ORDER BY r.started_at DESC LIMIT 3`,
		idOrPrefix, escaped+"%",
	)
	if err != nil {
		return Run{}, fmt.Errorf("find run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		if run.ID == idOrPrefix {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("%s: %w", idOrPrefix, ErrRunNotFound)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("%s: %w", idOrPrefix, ErrAmbiguousRun)
	}
}

// Entries returns the entries of a run in the order they were recorded.
func (s *Store) Entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.run_id, r.operation, e.source, e.dest, e.created_at, COALESCE(e.undone_at, '')
		FROM entries e JOIN runs r ON r.id = e.run_id WHERE e.run_id = ? ORDER BY e.id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                 Entry
			created, undoneAt string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Operation, &e.Source, &e.Dest, &created, &undoneAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.CreatedAt = parseTime(created)
		e.UndoneAt = parseTime(undoneAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkUndone flags an entry as reverted.
func (s *Store) MarkUndone(ctx context.Context, entryID int64) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE entries SET undone_at = ? WHERE id = ? AND undone_at IS NULL",
		s.now().UTC().Format(timeLayout), entryID,
	)
	if err != nil {
		return fmt.Errorf("mark undone: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return batch.Wrap(batch.ErrNotFound, "journal", fmt.Sprintf("entry %d missing or already undone", entryID), nil)
	}
	return nil
}

// Recorder binds a run so grouping and renumbering can record moves without
// knowing the run id.
func (s *Store) Recorder(runID string) *RunRecorder {
	return &RunRecorder{store: s, runID: runID}
}

// RunRecorder records entries for one run.
type RunRecorder struct {
	store *Store
	runID string
}

// Record stores a move for the bound run.
func (r *RunRecorder) Record(ctx context.Context, source, dest string) error {
	_, err := r.store.Record(ctx, r.runID, source, dest)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run               Run
		started, finished string
	)
	if err := row.Scan(&run.ID, &run.Operation, &run.Root, &started, &finished,
		&run.Succeeded, &run.Skipped, &run.Failed, &run.Entries, &run.Undone); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return run, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	ts, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := range busyRetryAttempts {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, busyRetryMaxBackoff)
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) execWithoutResultRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}
