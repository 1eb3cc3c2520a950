// Package app wires the daemon: configuration, logging, storage, the
// report pipeline, the scheduler, and the optional admin API. It owns
// startup order and graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"tabreport/internal/charts"
	"tabreport/internal/config"
	"tabreport/internal/connectors"
	"tabreport/internal/eventbus"
	"tabreport/internal/httpadmin"
	"tabreport/internal/jobstore"
	"tabreport/internal/mail"
	"tabreport/internal/narrative"
	"tabreport/internal/pipeline"
	"tabreport/internal/report"
	"tabreport/internal/scheduler"
	logx "tabreport/pkg/logx"
)

const defaultAdminAddr = "127.0.0.1:8787"

type App struct {
	mgr *config.Manager
}

func New(configPath string) *App {
	return &App{mgr: config.NewManager(configPath)}
}

// Run starts every component and blocks until ctx is canceled or a fatal
// component error occurs. Shutdown order is the reverse of startup: admin
// API, scheduler, store.
func (a *App) Run(ctx context.Context) error {
	a.mgr.SetValidator(config.Validate)
	cfg, err := a.mgr.Load()
	if err != nil {
		return fmt.Errorf("app: load config: %w", err)
	}
	if err := config.Validate(ctx, cfg); err != nil {
		return fmt.Errorf("app: invalid config: %w", err)
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	defer logSvc.Close()
	a.mgr.SetLogger(log.With(logx.String("component", "config")))

	busyTimeout, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return err
	}
	store, err := jobstore.Open(jobstore.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busyTimeout,
	}, log.With(logx.String("component", "jobstore")))
	if err != nil {
		return fmt.Errorf("app: open job store: %w", err)
	}
	defer store.Close()

	bus := eventbus.New()
	events, unsubEvents := bus.Subscribe(32)
	defer unsubEvents()
	go func() {
		for ev := range events {
			log.Debug("event", logx.String("type", ev.Type), logx.Any("data", ev.Data))
		}
	}()

	resolver := credentialResolver(a.mgr.Get)
	registry := connectors.NewRegistry(log.With(logx.String("component", "connectors")))

	var narrator pipeline.Narrator
	if cfg.AI.APIKey != "" {
		aiTimeout, err := config.ParseDurationField("ai.timeout", cfg.AI.Timeout)
		if err != nil {
			return err
		}
		narrator = narrative.New(narrative.Config{
			APIKey:     cfg.AI.APIKey,
			Model:      cfg.AI.Model,
			BaseURL:    cfg.AI.BaseURL,
			RatePerMin: cfg.AI.RatePerMin,
			Timeout:    aiTimeout,
		}, log.With(logx.String("component", "narrative")))
	} else {
		log.Warn("no ai api key configured, reports will have no narrative")
	}

	renderer, err := report.NewRenderer()
	if err != nil {
		return err
	}

	mailTimeout, err := config.ParseDurationOrDefault("mail.timeout", cfg.Mail.Timeout, 30*time.Second)
	if err != nil {
		return err
	}
	mailer := mail.New(mail.Config{
		APIKey:    cfg.Mail.APIKey,
		FromEmail: cfg.Mail.FromEmail,
		FromName:  cfg.Mail.FromName,
		BaseURL:   cfg.Mail.BaseURL,
		Timeout:   mailTimeout,
	}, log.With(logx.String("component", "mail")))

	executor := &pipeline.Executor{
		Store:    store,
		Source:   registry,
		Narrator: narrator,
		Charts:   &charts.Generator{},
		Reports:  renderer,
		Mailer:   mailer,
		Creds:    resolver,
		Bus:      bus,
		Log:      log.With(logx.String("component", "pipeline")),
	}

	runTimeout, err := config.ParseDurationOrDefault("scheduler.run_timeout", cfg.Scheduler.RunTimeout, 10*time.Minute)
	if err != nil {
		return err
	}
	sched, err := scheduler.New(scheduler.Config{
		Timezone:   cfg.Scheduler.Timezone,
		RunTimeout: runTimeout,
	}, store, registry, executor, resolver, bus, log.With(logx.String("component", "scheduler")))
	if err != nil {
		return err
	}

	if cfg.Scheduler.Enabled {
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	} else {
		log.Warn("scheduler disabled, jobs will not fire automatically")
	}

	adminErr := make(chan error, 1)
	var adminSrv *http.Server
	if cfg.Admin.Enabled {
		adminSrv, err = a.startAdmin(cfg, sched, log, adminErr)
		if err != nil {
			return err
		}
	}

	// Hot reload: the watcher re-validates the file and publishes accepted
	// configs; only logging is applied live, everything else needs a restart.
	go func() {
		if err := a.mgr.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("config watcher stopped", logx.Err(err))
		}
	}()
	updates := a.mgr.Subscribe(4)
	defer a.mgr.Unsubscribe(updates)
	go func() {
		for next := range updates {
			logSvc.Apply(logx.Config{
				Level:   next.Logging.Level,
				Console: next.Logging.Console,
				File: logx.FileConfig{
					Enabled: next.Logging.File.Enabled,
					Path:    next.Logging.File.Path,
				},
			})
			log.Info("configuration reloaded", logx.String("log_level", next.Logging.Level))
		}
	}()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	log.Info("daemon ready",
		logx.Bool("scheduler", cfg.Scheduler.Enabled),
		logx.Bool("admin", cfg.Admin.Enabled),
		logx.String("storage", cfg.Storage.Driver),
	)

	select {
	case <-ctx.Done():
	case err := <-adminErr:
		return fmt.Errorf("app: admin server: %w", err)
	}

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	if adminSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = adminSrv.Shutdown(shutdownCtx)
	}
	log.Info("daemon stopping")
	return nil
}

func (a *App) startAdmin(cfg *config.Config, sched *scheduler.Service, log logx.Logger, fatal chan<- error) (*http.Server, error) {
	addr := cfg.Admin.Addr
	if addr == "" {
		addr = defaultAdminAddr
	}
	readTO, err := config.ParseDurationOrDefault("admin.read_timeout", cfg.Admin.ReadTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	writeTO, err := config.ParseDurationOrDefault("admin.write_timeout", cfg.Admin.WriteTimeout, 30*time.Second)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      httpadmin.New(sched, cfg.Admin.Token, log.With(logx.String("component", "admin"))).Handler(),
		ReadTimeout:  readTO,
		WriteTimeout: writeTO,
	}
	go func() {
		log.Info("admin api listening", logx.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal <- err
		}
	}()
	return srv, nil
}

// credentialResolver maps a job's creds_ref to the secrets addressed to it.
// Credential keys use "<ref>.<name>" so one file can hold secrets for many
// sources, e.g. "prod_airtable.airtable_token". Reading through the manager
// keeps rotated secrets live without a restart.
func credentialResolver(get func() *config.Config) pipeline.CredentialResolver {
	return func(ref string) map[string]string {
		cfg := get()
		if ref == "" || cfg == nil || len(cfg.Credentials) == 0 {
			return nil
		}
		prefix := ref + "."
		out := map[string]string{}
		for k, v := range cfg.Credentials {
			if strings.HasPrefix(k, prefix) {
				out[strings.TrimPrefix(k, prefix)] = v
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
}
