package config

// Config is the root configuration for the tabreport daemon.
//
// The file may be JSON or YAML; both are decoded strictly so typos in keys
// are caught at load time instead of silently ignored.
type Config struct {
	Logging   LoggingConfig   `json:"logging"`
	Storage   StorageConfig   `json:"storage"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Admin     AdminConfig     `json:"admin,omitempty"`
	Mail      MailConfig      `json:"mail"`
	AI        AIConfig        `json:"ai,omitempty"`

	// Credentials maps an opaque reference name (stored in job configs) to a
	// secret value. Job records never carry raw secrets, only these names.
	Credentials map[string]string `json:"credentials,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls the job store backend.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./jobs" }
//	"storage": { "driver": "sqlite", "path": "./tabreport.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// SchedulerConfig controls trigger behavior.
//
// All durations are Go duration strings (e.g. "30s", "10m").
type SchedulerConfig struct {
	Enabled bool `json:"enabled"`

	// Timezone is the IANA zone used to evaluate daily/weekly wall-clock
	// triggers, e.g. "Europe/Berlin". Empty means the process-local zone.
	Timezone string `json:"timezone,omitempty"`

	// RunTimeout bounds a single pipeline execution. "0s" disables it.
	RunTimeout string `json:"run_timeout,omitempty"`
}

// AdminConfig controls the optional admin HTTP API.
//
// Security note:
//   - Prefer binding to localhost (e.g. "127.0.0.1:8787").
//   - If you bind to a non-loopback address, set a token.
type AdminConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"`  // default: "127.0.0.1:8787"
	Token   string `json:"token,omitempty"` // optional bearer token (do not log)

	ReadTimeout  string `json:"read_timeout,omitempty"`
	WriteTimeout string `json:"write_timeout,omitempty"`
}

// MailConfig configures the outbound email transport (Resend-compatible API).
type MailConfig struct {
	APIKey    string `json:"api_key"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name,omitempty"`
	BaseURL   string `json:"base_url,omitempty"` // default: https://api.resend.com
	// Timeout is a Go duration string; the transport must not block forever.
	Timeout string `json:"timeout,omitempty"` // default: "30s"
}

// AIConfig configures the narrative generator client.
type AIConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model,omitempty"`    // default: "gemini-1.5-flash"
	BaseURL string `json:"base_url,omitempty"` // default: Google generative language endpoint
	// RatePerMin throttles outbound generate calls. 0 means a conservative default.
	RatePerMin int    `json:"rate_per_min,omitempty"`
	Timeout    string `json:"timeout,omitempty"`
}
