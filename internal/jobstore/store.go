// Package jobstore persists job definitions across restarts.
//
// Records are versioned so store corruption or version skew surfaces as a
// decode error instead of a crash. Two backends exist: a dependency-light
// file driver (one JSON record per job, written atomically) and a SQLite
// driver.
package jobstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tabreport/internal/trigger"
	logx "tabreport/pkg/logx"
)

// ErrNotFound is returned when no record exists for a job id.
var ErrNotFound = errors.New("job not found")

// StorageError wraps I/O failures from the underlying backend. Callers can
// distinguish "already gone" (ErrNotFound) from "storage unavailable".
type StorageError struct {
	Op  string
	ID  string
	Err error
}

func (e *StorageError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("jobstore %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("jobstore %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// JobConfig carries the report parameters bound to a job.
//
// CredsRef names a credential in the daemon configuration; raw secrets are
// never persisted with the job.
type JobConfig struct {
	Name          string `json:"name"`
	Recipient     string `json:"recipient"`
	Language      string `json:"language"`
	IncludeCharts bool   `json:"include_charts"`
	AutoRefresh   bool   `json:"auto_refresh"`
	Source        string `json:"source"`
	CredsRef      string `json:"creds_ref,omitempty"`
}

// Job is the persisted unit of recurring work.
//
// Snapshot holds the encoded dataset captured at schedule time for
// non-auto-refresh jobs (see dataset.EncodeSnapshot); nil otherwise.
type Job struct {
	ID        string
	Config    JobConfig
	Schedule  trigger.Schedule
	Snapshot  []byte
	CreatedAt time.Time
}

// Store is the persistence API used by the scheduler service and executor.
type Store interface {
	// Save writes or overwrites the full record under job.ID atomically.
	Save(ctx context.Context, job *Job) error
	// Load reconstructs a record; ErrNotFound if the id is unknown.
	Load(ctx context.Context, id string) (*Job, error)
	// Delete removes a record; ErrNotFound if the id is unknown.
	Delete(ctx context.Context, id string) error
	// ListIDs enumerates all persisted job ids (startup reconciliation).
	ListIDs(ctx context.Context) ([]string, error)
	Close() error
}

// Config configures the store backend.
//
// Driver values: "file" or "sqlite".
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "":
		return nil, errors.New("jobstore: storage.driver is required")
	default:
		return nil, fmt.Errorf("jobstore: unknown storage driver %q", cfg.Driver)
	}
}

func validID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("job id required")
	}
	if strings.ContainsAny(id, "/\\.") {
		return fmt.Errorf("job id %q contains reserved characters", id)
	}
	return nil
}
