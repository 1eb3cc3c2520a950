package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"tabreport/internal/trigger"
	logx "tabreport/pkg/logx"
)

// recordVersion is bumped when the on-disk record shape changes.
const recordVersion = 1

type record struct {
	Version   int              `json:"version"`
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Config    JobConfig        `json:"config"`
	Schedule  trigger.Schedule `json:"schedule"`
	Snapshot  []byte           `json:"snapshot,omitempty"`
}

// fileStore keeps one <id>.json record per job under a directory.
//
// Save writes to <id>.json.tmp and renames, so a crash mid-write never
// corrupts a previously valid record.
type fileStore struct {
	dir string
	log logx.Logger

	mu sync.Mutex
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	dir := strings.TrimSpace(cfg.Path)
	if dir == "" {
		return nil, errors.New("jobstore: storage.path is required for file driver")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	return &fileStore{dir: dir, log: log}, nil
}

func (s *fileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *fileStore) Save(ctx context.Context, job *Job) error {
	_ = ctx
	if job == nil {
		return &StorageError{Op: "save", Err: errors.New("nil job")}
	}
	if err := validID(job.ID); err != nil {
		return &StorageError{Op: "save", ID: job.ID, Err: err}
	}

	rec := record{
		Version:   recordVersion,
		ID:        job.ID,
		CreatedAt: job.CreatedAt,
		Config:    job.Config,
		Schedule:  job.Schedule,
		Snapshot:  job.Snapshot,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return &StorageError{Op: "save", ID: job.ID, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(job.ID) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return &StorageError{Op: "save", ID: job.ID, Err: err}
	}
	if err := os.Rename(tmp, s.path(job.ID)); err != nil {
		_ = os.Remove(tmp)
		return &StorageError{Op: "save", ID: job.ID, Err: err}
	}
	return nil
}

func (s *fileStore) Load(ctx context.Context, id string) (*Job, error) {
	_ = ctx
	if err := validID(id); err != nil {
		return nil, &StorageError{Op: "load", ID: id, Err: err}
	}

	s.mu.Lock()
	b, err := os.ReadFile(s.path(id))
	s.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "load", ID: id, Err: err}
	}

	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, &StorageError{Op: "load", ID: id, Err: err}
	}
	if rec.Version != recordVersion {
		return nil, &StorageError{Op: "load", ID: id, Err: fmt.Errorf("unsupported record version %d", rec.Version)}
	}
	return &Job{
		ID:        rec.ID,
		Config:    rec.Config,
		Schedule:  rec.Schedule,
		Snapshot:  rec.Snapshot,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (s *fileStore) Delete(ctx context.Context, id string) error {
	_ = ctx
	if err := validID(id); err != nil {
		return &StorageError{Op: "delete", ID: id, Err: err}
	}

	s.mu.Lock()
	err := os.Remove(s.path(id))
	s.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return &StorageError{Op: "delete", ID: id, Err: err}
	}
	return nil
}

func (s *fileStore) ListIDs(ctx context.Context) ([]string, error) {
	_ = ctx
	s.mu.Lock()
	entries, err := os.ReadDir(s.dir)
	s.mu.Unlock()
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

func (s *fileStore) Close() error { return nil }
