package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate checks cross-field constraints that strict decoding cannot
// express. It is installed as the manager's validator so a broken file is
// rejected on hot reload instead of taking effect.
func Validate(_ context.Context, cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case "file", "sqlite", "sqlite3":
	case "":
		return errors.New("storage.driver: required")
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		return errors.New("storage.path: required")
	}

	for _, f := range []struct{ path, raw string }{
		{"storage.busy_timeout", cfg.Storage.BusyTimeout},
		{"scheduler.run_timeout", cfg.Scheduler.RunTimeout},
		{"admin.read_timeout", cfg.Admin.ReadTimeout},
		{"admin.write_timeout", cfg.Admin.WriteTimeout},
		{"mail.timeout", cfg.Mail.Timeout},
		{"ai.timeout", cfg.AI.Timeout},
	} {
		if _, err := ParseDurationField(f.path, f.raw); err != nil {
			return err
		}
	}

	if cfg.Scheduler.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Scheduler.Timezone); err != nil {
			return fmt.Errorf("scheduler.timezone: %w", err)
		}
	}

	if cfg.Mail.APIKey != "" && cfg.Mail.FromEmail == "" {
		return errors.New("mail.from_email: required when mail.api_key is set")
	}
	if cfg.AI.RatePerMin < 0 {
		return errors.New("ai.rate_per_min: must be >= 0")
	}

	if cfg.Admin.Enabled && cfg.Admin.Token == "" {
		if addr := cfg.Admin.Addr; addr != "" &&
			!strings.HasPrefix(addr, "127.0.0.1") && !strings.HasPrefix(addr, "localhost") {
			return errors.New("admin.token: required when admin.addr is not loopback")
		}
	}
	return nil
}
