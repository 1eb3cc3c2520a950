package jobstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tabreport/internal/trigger"
	logx "tabreport/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("jobstore: storage.path is required for sqlite driver")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, &StorageError{Op: "migrate", Err: err}
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Save(ctx context.Context, job *Job) error {
	if job == nil {
		return &StorageError{Op: "save", Err: errors.New("nil job")}
	}
	if err := validID(job.ID); err != nil {
		return &StorageError{Op: "save", ID: job.ID, Err: err}
	}

	cfgJSON, err := json.Marshal(job.Config)
	if err != nil {
		return &StorageError{Op: "save", ID: job.ID, Err: err}
	}
	schedJSON, err := json.Marshal(job.Schedule)
	if err != nil {
		return &StorageError{Op: "save", ID: job.ID, Err: err}
	}

	created := job.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs(id, version, created_at, config, schedule, snapshot)
		 VALUES(?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
		   version=excluded.version, config=excluded.config,
		   schedule=excluded.schedule, snapshot=excluded.snapshot`,
		job.ID, recordVersion, created.Format(time.RFC3339Nano),
		string(cfgJSON), string(schedJSON), job.Snapshot,
	)
	if err != nil {
		return &StorageError{Op: "save", ID: job.ID, Err: err}
	}
	return nil
}

func (s *sqliteStore) Load(ctx context.Context, id string) (*Job, error) {
	if err := validID(id); err != nil {
		return nil, &StorageError{Op: "load", ID: id, Err: err}
	}

	var (
		version   int
		createdAt string
		cfgJSON   string
		schedJSON string
		snapshot  []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT version, created_at, config, schedule, snapshot FROM jobs WHERE id = ?`, id,
	).Scan(&version, &createdAt, &cfgJSON, &schedJSON, &snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "load", ID: id, Err: err}
	}
	if version != recordVersion {
		return nil, &StorageError{Op: "load", ID: id, Err: fmt.Errorf("unsupported record version %d", version)}
	}

	job := &Job{ID: id, Snapshot: snapshot}
	if err := json.Unmarshal([]byte(cfgJSON), &job.Config); err != nil {
		return nil, &StorageError{Op: "load", ID: id, Err: err}
	}
	var sched trigger.Schedule
	if err := json.Unmarshal([]byte(schedJSON), &sched); err != nil {
		return nil, &StorageError{Op: "load", ID: id, Err: err}
	}
	job.Schedule = sched
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		job.CreatedAt = t
	}
	return job, nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return &StorageError{Op: "delete", ID: id, Err: err}
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return &StorageError{Op: "delete", ID: id, Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM jobs ORDER BY created_at`)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &StorageError{Op: "list", Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	return ids, nil
}
