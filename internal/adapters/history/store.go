// Package history keeps a ledger of cache runs in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		sdks TEXT NOT NULL,
		status TEXT NOT NULL,
		failed_step TEXT,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);

	CREATE TABLE IF NOT EXISTS run_modules (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		module TEXT NOT NULL,
		state TEXT NOT NULL,
		PRIMARY KEY (run_id, module)
	);
`

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
}

var _ ports.HistoryStore = (*Store)(nil)

// Store implements ports.HistoryStore. The database is opened per call,
// so commands that never touch the history never create it.
type Store struct {
	path string
}

// NewStore creates a history store backed by the database at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirPerm); err != nil {
		return nil, s.wrap(err, "failed to create history directory")
	}

	conn, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, s.wrap(err, "failed to open history database")
	}

	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			_ = conn.Close()
			return nil, s.wrap(err, "failed to set pragma")
		}
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		_ = conn.Close()
		return nil, s.wrap(err, "failed to initialize history schema")
	}
	return conn, nil
}

func (s *Store) wrap(err error, msg string) error {
	return zerr.With(zerr.Wrap(domain.ErrHistoryFailed, msg+": "+err.Error()), "path", s.path)
}

// Record stores a run and the final state of its modules.
// Recording the same run id again replaces the previous entry.
func (s *Store) Record(ctx context.Context, run *domain.RunRecord) error {
	conn, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return s.wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_modules WHERE run_id = ?`, run.ID); err != nil {
		return s.wrap(err, "failed to clear run modules")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, started_at, finished_at, sdks, status, failed_step, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		formatTime(run.StartedAt),
		nullString(formatTime(run.FinishedAt)),
		joinSDKs(run.SDKs),
		string(run.Status),
		nullString(run.FailedStep),
		nullString(run.Error),
	)
	if err != nil {
		return s.wrap(err, "failed to insert run")
	}

	for module, state := range run.Modules {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO run_modules (run_id, module, state) VALUES (?, ?, ?)`,
			run.ID, module, string(state))
		if err != nil {
			return zerr.With(s.wrap(err, "failed to insert module state"), "module", module)
		}
	}

	if err := tx.Commit(); err != nil {
		return s.wrap(err, "failed to commit run")
	}
	return nil
}

// Recent returns up to limit runs, newest first. A missing database has no runs.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, nil
	}

	conn, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	rows, err := conn.QueryContext(ctx, `
		SELECT id, started_at, finished_at, sdks, status, failed_step, error
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, s.wrap(err, "failed to query runs")
	}

	var runs []domain.RunRecord
	for rows.Next() {
		var (
			run                               domain.RunRecord
			started, sdks, status             string
			finished, failedStep, errorColumn sql.NullString
		)
		if err := rows.Scan(&run.ID, &started, &finished, &sdks, &status, &failedStep, &errorColumn); err != nil {
			_ = rows.Close()
			return nil, s.wrap(err, "failed to scan run")
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished.String)
		run.SDKs = splitSDKs(sdks)
		run.Status = domain.NormalizeRunStatus(status)
		run.FailedStep = failedStep.String
		run.Error = errorColumn.String
		runs = append(runs, run)
	}
	if err := rows.Close(); err != nil {
		return nil, s.wrap(err, "failed to read runs")
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(err, "failed to read runs")
	}

	for i := range runs {
		modules, err := s.modules(ctx, conn, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Modules = modules
	}
	return runs, nil
}

func (s *Store) modules(ctx context.Context, conn *sql.DB, runID string) (map[string]domain.ModuleState, error) {
	rows, err := conn.QueryContext(ctx, `SELECT module, state FROM run_modules WHERE run_id = ?`, runID)
	if err != nil {
		return nil, s.wrap(err, "failed to query module states")
	}
	defer func() { _ = rows.Close() }()

	modules := map[string]domain.ModuleState{}
	for rows.Next() {
		var module, state string
		if err := rows.Scan(&module, &state); err != nil {
			return nil, s.wrap(err, "failed to scan module state")
		}
		modules[module] = domain.ModuleState(state)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(err, "failed to read module states")
	}
	return modules, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func joinSDKs(sdks []domain.SDK) string {
	parts := make([]string, 0, len(sdks))
	for _, sdk := range sdks {
		parts = append(parts, string(sdk))
	}
	return strings.Join(parts, ",")
}

func splitSDKs(s string) []domain.SDK {
	if s == "" {
		return nil
	}
	var sdks []domain.SDK
	for _, part := range strings.Split(s, ",") {
		sdks = append(sdks, domain.SDK(part))
	}
	return sdks
}
