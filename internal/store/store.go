// Package store handles SQLite persistence for settings and run history.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/mkoda/bifrost/internal/types"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for settings documents and optimization history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			document TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS optimization_runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			course_id TEXT NOT NULL,
			budget INTEGER NOT NULL,
			status TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS optimization_builds (
			run_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			skill_ids TEXT NOT NULL,
			cost INTEGER NOT NULL,
			mean REAL NOT NULL,
			survival REAL NOT NULL,
			spurt REAL NOT NULL,
			final_leg REAL NOT NULL,
			recovery_count INTEGER NOT NULL,
			non_recovery_count INTEGER NOT NULL,
			PRIMARY KEY (run_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_optimization_runs_created_at ON optimization_runs(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveSettings stores the settings document, replacing any previous one.
func (s *Store) SaveSettings(ctx context.Context, document json.RawMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (id, document, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		string(document),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// LoadSettings returns the stored settings document, or nil when none has
// been saved yet.
func (s *Store) LoadSettings(ctx context.Context) (json.RawMessage, error) {
	var document string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM settings WHERE id = 1`).Scan(&document)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(document), nil
}

// Run is one recorded optimization run.
type Run struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	CourseID  string        `json:"course_id"`
	Budget    int           `json:"budget"`
	Status    string        `json:"status"`
	Builds    []types.Build `json:"builds"`
}

// InsertRun stores a completed optimization run and its builds.
func (s *Store) InsertRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback() //nolint:errcheck
		}
	}()

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO optimization_runs (id, created_at, course_id, budget, status)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		createdAt.UTC().Format(time.RFC3339Nano),
		run.CourseID,
		run.Budget,
		run.Status,
	)
	if err != nil {
		return err
	}

	for i, build := range run.Builds {
		ids, merr := json.Marshal(build.SkillIDs)
		if merr != nil {
			err = merr
			return err
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO optimization_builds (run_id, position, name, skill_ids, cost, mean, survival, spurt, final_leg, recovery_count, non_recovery_count)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			i,
			build.Name,
			string(ids),
			build.Cost,
			build.Mean,
			build.Metrics.Survival,
			build.Metrics.Spurt,
			build.Metrics.FinalLeg,
			build.RecoveryCount,
			build.NonRecoveryCount,
		); err != nil {
			return err
		}
	}

	err = tx.Commit()
	return err
}

// RecentRuns returns the most recent optimization runs with their builds,
// newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, course_id, budget, status
		 FROM optimization_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt string
		if err := rows.Scan(&run.ID, &createdAt, &run.CourseID, &run.Budget, &run.Status); err != nil {
			return nil, err
		}
		if ts, perr := time.Parse(time.RFC3339Nano, createdAt); perr == nil {
			run.CreatedAt = ts
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		builds, err := s.runBuilds(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Builds = builds
	}
	return runs, nil
}

func (s *Store) runBuilds(ctx context.Context, runID string) ([]types.Build, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, skill_ids, cost, mean, survival, spurt, final_leg, recovery_count, non_recovery_count
		 FROM optimization_builds WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var builds []types.Build
	for rows.Next() {
		var build types.Build
		var ids string
		if err := rows.Scan(&build.Name, &ids, &build.Cost, &build.Mean,
			&build.Metrics.Survival, &build.Metrics.Spurt, &build.Metrics.FinalLeg,
			&build.RecoveryCount, &build.NonRecoveryCount); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ids), &build.SkillIDs); err != nil {
			return nil, err
		}
		builds = append(builds, build)
	}
	return builds, rows.Err()
}
