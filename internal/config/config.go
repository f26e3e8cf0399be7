// Package config defines service configuration and its defaults.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBDriver selects the store: sqlite or postgres.
	DBDriver string `koanf:"db_driver"`

	// DBDSN is the driver specific connection string.
	DBDSN string `koanf:"db_dsn"`

	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate bool `koanf:"auto_migrate"`

	// SessionSecret signs session tokens. Required by serve.
	SessionSecret string `koanf:"session_secret"`

	// SessionTTLSeconds is the lifetime of a session.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`

	// SessionCookie names the session cookie.
	SessionCookie string `koanf:"session_cookie"`

	// SecureCookie marks the session cookie Secure.
	SecureCookie bool `koanf:"secure_cookie"`

	// LoginRatePerMinute and LoginBurst throttle login attempts per client.
	LoginRatePerMinute float64 `koanf:"login_rate_per_minute"`
	LoginBurst         int     `koanf:"login_burst"`

	// DedupeSize bounds the remembered submission ids.
	DedupeSize int `koanf:"dedupe_size"`

	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// TrustProxy takes client addresses from forwarding headers. Enable it
	// only behind a reverse proxy that sets them.
	TrustProxy bool `koanf:"trust_proxy"`

	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `koanf:"shutdown_timeout_seconds"`
}

// New returns a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		DBDriver:               "sqlite",
		DBDSN:                  "liao.db",
		AutoMigrate:            true,
		SessionTTLSeconds:      604800,
		SessionCookie:          "liao_session",
		LoginRatePerMinute:     10,
		LoginBurst:             5,
		DedupeSize:             4096,
		ShutdownTimeoutSeconds: 10,
	}
}

// SessionTTL returns the session lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}
