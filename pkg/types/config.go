package types

import "time"

// EngineConfig holds settings for the analysis pipeline.
type EngineConfig struct {
	// TermsFile is an optional YAML overlay extending the built-in term
	// databases.
	TermsFile string `json:"terms_file" yaml:"terms_file" mapstructure:"terms_file"`

	// FailOpenUnreadable restores the legacy behavior of reporting SAFE with
	// warnings when the OCR text is unreadable or empty. Off by default:
	// unreadable input yields MANUAL_REVIEW.
	FailOpenUnreadable bool `json:"fail_open_unreadable" yaml:"fail_open_unreadable" mapstructure:"fail_open_unreadable"`

	// LowConfidenceManualReview downgrades SAFE verdicts to MANUAL_REVIEW when
	// the OCR confidence band is "low" (default true).
	LowConfidenceManualReview bool `json:"low_confidence_manual_review" yaml:"low_confidence_manual_review" mapstructure:"low_confidence_manual_review"`
}

// StoreDriver selects the database/sql driver for persistence.
type StoreDriver string

const (
	DriverSQLite   StoreDriver = "sqlite3"
	DriverPostgres StoreDriver = "postgres"
)

// StoreConfig holds persistence settings.
type StoreConfig struct {
	// Driver is sqlite3 (default) or postgres.
	Driver StoreDriver `json:"driver" yaml:"driver" mapstructure:"driver"`

	// DSN is the data source. For sqlite3 it is a file path
	// (default "data/safescan.db").
	DSN string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
}

// ServerConfig holds settings for the HTTP adapter.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// RateLimitRPS is the sustained request rate per second (default 10).
	RateLimitRPS float64 `json:"rate_limit_rps" yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`

	// RateLimitBurst is the token bucket size (default 20).
	RateLimitBurst int `json:"rate_limit_burst" yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// NotifyConfig holds settings for admin alert publishing.
type NotifyConfig struct {
	// NATSURL enables publishing when set (e.g. "nats://localhost:4222").
	NATSURL string `json:"nats_url" yaml:"nats_url" mapstructure:"nats_url"`

	// Subject is the NATS subject alerts are published to
	// (default "safescan.alerts").
	Subject string `json:"subject" yaml:"subject" mapstructure:"subject"`

	// MaxAttempts is the number of publish attempts (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is debug, info, warn, or error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups all settings.
type Config struct {
	Engine EngineConfig `json:"engine" yaml:"engine" mapstructure:"engine"`
	Store  StoreConfig  `json:"store" yaml:"store" mapstructure:"store"`
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`
	Notify NotifyConfig `json:"notify" yaml:"notify" mapstructure:"notify"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	out := c
	if out.Store.Driver == "" {
		out.Store.Driver = DriverSQLite
	}
	if out.Store.DSN == "" && out.Store.Driver == DriverSQLite {
		out.Store.DSN = "data/safescan.db"
	}
	if out.Server.Addr == "" {
		out.Server.Addr = ":8080"
	}
	if out.Server.RateLimitRPS <= 0 {
		out.Server.RateLimitRPS = 10
	}
	if out.Server.RateLimitBurst <= 0 {
		out.Server.RateLimitBurst = 20
	}
	if out.Server.ShutdownTimeout <= 0 {
		out.Server.ShutdownTimeout = 10 * time.Second
	}
	if out.Notify.Subject == "" {
		out.Notify.Subject = "safescan.alerts"
	}
	if out.Notify.MaxAttempts <= 0 {
		out.Notify.MaxAttempts = 3
	}
	if out.Log.Level == "" {
		out.Log.Level = "info"
	}
	return out
}
