// Package store provides the durable JobStore: a single-file sqlite
// database holding the job and media tables, adapted from the sqlx
// repository pattern in crawler/internal/database but targeting
// mattn/go-sqlite3 instead of Postgres, per the spec's embedded-store
// requirement.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mbari-org/dettrackd/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS job (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	engine     TEXT NOT NULL,
	model      TEXT NOT NULL,
	args       TEXT NOT NULL DEFAULT '',
	metadata   BLOB,
	kind       TEXT NOT NULL DEFAULT 'DOCKER',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS media (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id     INTEGER NOT NULL REFERENCES job(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'QUEUED',
	metadata   BLOB,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_media_status_id ON media(status, id);
CREATE INDEX IF NOT EXISTS idx_media_job_id ON media(job_id);
`

// Store wraps a sqlx.DB handle open against the sqlite job-cache file.
type Store struct {
	db *sqlx.DB
}

// New wraps an already-connected *sqlx.DB, the way
// crawler/internal/database.NewJobRepository takes a live connection
// rather than opening one itself. Exported so tests can drive a Store
// against a sqlmock-backed DB without touching the filesystem.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to (creating if absent) the sqlite file at dsn and applies
// the schema. Mirrors crawler/internal/database/postgres.go's
// NewPostgresConnection shape (connect, configure pool, ping) adapted to a
// single-writer embedded engine: sqlite only needs MaxOpenConns=1 to avoid
// "database is locked" errors under concurrent writers.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	return New(db), nil
}

// Close releases the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// Ping reports whether the store is reachable, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// InsertJob inserts a Job with exactly one Media row (status QUEUED) in a
// single transaction, returning the assigned job id. This is the only
// control-plane write path; everything after this belongs to the
// Scheduler.
func (s *Store) InsertJob(ctx context.Context, j domain.Job, videoURL string) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if j.Kind == "" {
		j.Kind = domain.DockerJobKind
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO job (name, engine, model, args, metadata, kind) VALUES (?, ?, ?, ?, ?, ?)`,
		j.Name, j.Engine, j.Model, j.Args, j.Metadata, j.Kind)
	if err != nil {
		return 0, fmt.Errorf("store: insert job: %w", err)
	}
	jobID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO media (job_id, name, status) VALUES (?, ?, ?)`,
		jobID, videoURL, domain.MediaQueued); err != nil {
		return 0, fmt.Errorf("store: insert media: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return jobID, nil
}

// JobByID loads a Job and its Media rows.
func (s *Store) JobByID(ctx context.Context, id int64) (domain.Job, []domain.Media, error) {
	var j domain.Job
	if err := s.db.GetContext(ctx, &j, `SELECT * FROM job WHERE id = ?`, id); err != nil {
		return domain.Job{}, nil, err
	}
	media, err := s.mediaForJob(ctx, id)
	return j, media, err
}

// JobByName loads the most recently created Job with the given name (names
// are not unique; the integer id is the true identity, but /status_by_name
// needs a deterministic pick).
func (s *Store) JobByName(ctx context.Context, name string) (domain.Job, []domain.Media, error) {
	var j domain.Job
	if err := s.db.GetContext(ctx, &j,
		`SELECT * FROM job WHERE name = ? ORDER BY id DESC LIMIT 1`, name); err != nil {
		return domain.Job{}, nil, err
	}
	media, err := s.mediaForJob(ctx, j.ID)
	return j, media, err
}

func (s *Store) mediaForJob(ctx context.Context, jobID int64) ([]domain.Media, error) {
	var media []domain.Media
	err := s.db.SelectContext(ctx, &media, `SELECT * FROM media WHERE job_id = ? ORDER BY id`, jobID)
	return media, err
}

// JobSummary is the row shape for GET /status.
type JobSummary struct {
	ID     int64             `db:"id" json:"id"`
	Name   string            `db:"name" json:"name"`
	Status domain.MediaStatus `json:"status"`
}

// ListJobs returns every DOCKER job's id/name plus its derived status.
func (s *Store) ListJobs(ctx context.Context) ([]JobSummary, error) {
	var jobs []struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}
	if err := s.db.SelectContext(ctx, &jobs,
		`SELECT id, name FROM job WHERE kind = ? ORDER BY id`, domain.DockerJobKind); err != nil {
		return nil, err
	}

	out := make([]JobSummary, 0, len(jobs))
	for _, j := range jobs {
		media, err := s.mediaForJob(ctx, j.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, JobSummary{ID: j.ID, Name: j.Name, Status: domain.DerivedStatus(media)})
	}
	return out, nil
}

// OldestQueuedMedia returns the oldest QUEUED media row (FIFO dispatch), or
// ok=false if none is queued.
func (s *Store) OldestQueuedMedia(ctx context.Context) (domain.Media, bool, error) {
	var m domain.Media
	err := s.db.GetContext(ctx, &m,
		`SELECT * FROM media WHERE status = ? ORDER BY id LIMIT 1`, domain.MediaQueued)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Media{}, false, nil
	}
	if err != nil {
		return domain.Media{}, false, err
	}
	return m, true, nil
}

// PromoteToRunning transitions a single media row QUEUED -> RUNNING. It is
// a single-row update so no explicit transaction is required (§5: "each
// mutation is performed inside its own short transaction").
func (s *Store) PromoteToRunning(ctx context.Context, mediaID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE media SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		domain.MediaRunning, mediaID, domain.MediaQueued)
	return err
}

// MarkSuccess transitions a media row to SUCCESS, merging the given result
// metadata. Metadata is written before the status column so any reader
// observing SUCCESS also observes the enriched metadata (§5).
func (s *Store) MarkSuccess(ctx context.Context, mediaID int64, metadata []byte) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE media SET metadata = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		metadata, domain.MediaSuccess, mediaID)
	return err
}

// MarkFailed transitions a media row to FAILED.
func (s *Store) MarkFailed(ctx context.Context, mediaID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE media SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		domain.MediaFailed, mediaID)
	return err
}

// RunningMedia returns every media row currently RUNNING, used by startup
// reconciliation (§4.6).
func (s *Store) RunningMedia(ctx context.Context) ([]domain.Media, error) {
	var media []domain.Media
	err := s.db.SelectContext(ctx, &media, `SELECT * FROM media WHERE status = ?`, domain.MediaRunning)
	return media, err
}

// ForceFailAll transitions every row in ids to FAILED unconditionally; used
// only by startup reconciliation to recover from a crash mid-run.
func (s *Store) ForceFailAll(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if err := s.MarkFailed(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ErrNotFound is returned by JobByID/JobByName when no row matches.
var ErrNotFound = sql.ErrNoRows
