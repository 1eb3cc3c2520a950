// Package scheduler owns the job lifecycle: creating jobs, registering
// their triggers with the cron runner, firing report runs, and keeping the
// persistent store and the in-memory trigger table consistent.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"tabreport/internal/dataset"
	"tabreport/internal/eventbus"
	"tabreport/internal/jobstore"
	"tabreport/internal/pipeline"
	"tabreport/internal/trigger"
	logx "tabreport/pkg/logx"
)

// ErrAlreadyRunning is returned by RunNow while a previous run of the same
// job is still in flight.
var ErrAlreadyRunning = errors.New("scheduler: job run already in progress")

// Runner executes one report run. *pipeline.Executor satisfies it.
type Runner interface {
	Execute(ctx context.Context, id string) pipeline.Result
}

type Config struct {
	Timezone   string
	RunTimeout time.Duration
}

// CreateRequest is the input to Create.
type CreateRequest struct {
	Config jobstore.JobConfig
	Params trigger.Params
}

// JobView is the read model returned by the lifecycle API.
type JobView struct {
	ID          string             `json:"id"`
	Config      jobstore.JobConfig `json:"config"`
	Schedule    string             `json:"schedule"`
	NextRun     time.Time          `json:"next_run"`
	HasSnapshot bool               `json:"has_snapshot"`
	CreatedAt   time.Time          `json:"created_at"`
}

type Service struct {
	store  jobstore.Store
	source pipeline.DataSource
	runner Runner
	creds  pipeline.CredentialResolver
	bus    eventbus.Bus
	log    logx.Logger

	loc        *time.Location
	runTimeout time.Duration
	now        func() time.Time

	cron *cron.Cron

	mu      sync.Mutex
	entries map[string]cron.EntryID
	running map[string]bool
	started bool
}

func New(cfg Config, store jobstore.Store, source pipeline.DataSource, runner Runner,
	creds pipeline.CredentialResolver, bus eventbus.Bus, log logx.Logger) (*Service, error) {

	loc := time.Local
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("scheduler: load timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 10 * time.Minute
	}

	return &Service{
		store:      store,
		source:     source,
		runner:     runner,
		creds:      creds,
		bus:        bus,
		log:        log,
		loc:        loc,
		runTimeout: cfg.RunTimeout,
		now:        time.Now,
		cron:       cron.New(cron.WithLocation(loc)),
		entries:    map[string]cron.EntryID{},
		running:    map[string]bool{},
	}, nil
}

// Start restores triggers for every persisted job and begins firing them.
// A record that fails to load is logged and skipped; one corrupt record
// must not block the rest of the schedule.
func (s *Service) Start(ctx context.Context) error {
	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("scheduler: list persisted jobs: %w", err)
	}

	restored := 0
	for _, id := range ids {
		job, err := s.store.Load(ctx, id)
		if err != nil {
			s.log.Error("skipping unloadable job record",
				logx.String("job_id", id), logx.Err(err))
			continue
		}
		s.register(job.ID, job.Schedule)
		restored++
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	s.cron.Start()

	s.log.Info("scheduler started",
		logx.Int("jobs_restored", restored),
		logx.String("timezone", s.loc.String()),
	)
	return nil
}

// Stop halts trigger firing and waits for in-flight runs started by the
// cron runner to return.
func (s *Service) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info("scheduler stopped")
}

// Create validates the request, captures a data snapshot for non-refresh
// jobs, persists the record, and registers its trigger. The store write and
// trigger registration are kept consistent: if registration cannot happen
// the record is rolled back.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*JobView, error) {
	sched, err := trigger.ParseParams(req.Params)
	if err != nil {
		return nil, err
	}
	if req.Config.Name == "" {
		return nil, &trigger.ConfigError{Field: "name", Reason: "required"}
	}
	if req.Config.Recipient == "" {
		return nil, &trigger.ConfigError{Field: "recipient", Reason: "required"}
	}
	if req.Config.Source == "" {
		return nil, &trigger.ConfigError{Field: "source", Reason: "required"}
	}

	job := &jobstore.Job{
		ID:        uuid.NewString()[:8],
		Config:    req.Config,
		Schedule:  sched,
		CreatedAt: s.now().In(s.loc),
	}

	// Non-refresh jobs reuse the dataset captured now for every future run.
	if !job.Config.AutoRefresh {
		var creds map[string]string
		if s.creds != nil {
			creds = s.creds(job.Config.CredsRef)
		}
		d, err := s.source.Fetch(ctx, job.Config.Source, creds)
		if err != nil {
			return nil, fmt.Errorf("scheduler: capture snapshot: %w", err)
		}
		snap, err := dataset.EncodeSnapshot(d)
		if err != nil {
			return nil, fmt.Errorf("scheduler: encode snapshot: %w", err)
		}
		job.Snapshot = snap
	}

	if err := s.store.Save(ctx, job); err != nil {
		return nil, err
	}
	if err := s.register(job.ID, job.Schedule); err != nil {
		// Keep the store consistent with the trigger table.
		if derr := s.store.Delete(ctx, job.ID); derr != nil && !errors.Is(derr, jobstore.ErrNotFound) {
			s.log.Error("rollback after trigger registration failure",
				logx.String("job_id", job.ID), logx.Err(derr))
		}
		return nil, err
	}

	s.publish("job.scheduled", job.ID)
	s.log.Info("job scheduled",
		logx.String("job_id", job.ID),
		logx.String("schedule", job.Schedule.String()),
		logx.Bool("auto_refresh", job.Config.AutoRefresh),
		logx.Bool("snapshot", len(job.Snapshot) > 0),
	)
	return s.view(job), nil
}

// Delete removes the trigger first so a fire cannot race the record
// deletion, then removes the record. Deleting an unknown id reports
// jobstore.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.unregister(id)
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.publish("job.deleted", id)
	s.log.Info("job deleted", logx.String("job_id", id))
	return nil
}

// RunNow fires the job immediately in the background. The registered
// trigger is untouched; the next scheduled fire stays where it was.
func (s *Service) RunNow(ctx context.Context, id string) error {
	if _, err := s.store.Load(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.running[id] {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running[id] = true
	s.mu.Unlock()

	go s.runLocked(id)
	return nil
}

// Get returns the read model for one job.
func (s *Service) Get(ctx context.Context, id string) (*JobView, error) {
	job, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(job), nil
}

// Jobs lists all persisted jobs. Records that fail to load are logged and
// excluded rather than failing the listing.
func (s *Service) Jobs(ctx context.Context) ([]JobView, error) {
	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]JobView, 0, len(ids))
	for _, id := range ids {
		job, err := s.store.Load(ctx, id)
		if err != nil {
			s.log.Error("excluding unloadable job from listing",
				logx.String("job_id", id), logx.Err(err))
			continue
		}
		out = append(out, *s.view(job))
	}
	return out, nil
}

// ---- internals ----

func (s *Service) register(id string, sched trigger.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; ok {
		return fmt.Errorf("scheduler: trigger for job %s already registered", id)
	}
	entryID := s.cron.Schedule(sched, cron.FuncJob(func() { s.fire(id) }))
	s.entries[id] = entryID
	return nil
}

func (s *Service) unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entries[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}
}

// fire is the cron callback. Overlapping fires of the same job are skipped
// so a slow source cannot stack runs.
func (s *Service) fire(id string) {
	s.mu.Lock()
	if s.running[id] {
		s.mu.Unlock()
		s.log.Warn("run skipped, previous run still active", logx.String("job_id", id))
		return
	}
	s.running[id] = true
	s.mu.Unlock()

	s.runLocked(id)
}

// runLocked executes one run; the caller must have set running[id].
func (s *Service) runLocked(id string) {
	defer func() {
		s.mu.Lock()
		delete(s.running, id)
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()
	s.runner.Execute(ctx, id)
}

func (s *Service) view(job *jobstore.Job) *JobView {
	return &JobView{
		ID:          job.ID,
		Config:      job.Config,
		Schedule:    job.Schedule.String(),
		NextRun:     job.Schedule.Next(s.now().In(s.loc)),
		HasSnapshot: len(job.Snapshot) > 0,
		CreatedAt:   job.CreatedAt,
	}
}

func (s *Service) publish(typ, id string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{Type: typ, Data: id})
}
