// Package config loads and validates application configuration from
// environment variables (and, for the serve command, flags bound into the
// same viper instance).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment keys.
const (
	KeyPort                = "PORT"
	KeyDatabaseURL         = "DATABASE_URL"
	KeyLogLevel            = "LOG_LEVEL"
	KeyCORSOrigins         = "CORS_ORIGINS"
	KeyPoolMax             = "PG_POOL_MAX"
	KeyIdleTimeout         = "PG_IDLE_TIMEOUT"
	KeyConnectTimeout      = "PG_CONNECT_TIMEOUT"
	KeyDetailPublishedOnly = "DETAIL_PUBLISHED_ONLY"
	KeySampleMode          = "SAMPLE_MODE"
	KeySentryDSN           = "SENTRY_DSN"
	KeySentryEnvironment   = "SENTRY_ENVIRONMENT"
	KeyMetricsEnabled      = "METRICS_ENABLED"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres/PostGIS connection string.
	// Required unless SampleMode is set.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Empty (the default) allows every origin.
	CORSOrigins []string

	PoolMaxConns   int32
	IdleTimeout    time.Duration
	ConnectTimeout time.Duration

	// DetailPublishedOnly hides non-published viewpoints from the detail
	// endpoint. Off by default: any viewpoint can be fetched by id.
	DetailPublishedOnly bool

	// SampleMode serves the embedded sample catalogue instead of a database.
	SampleMode bool

	// SentryDSN enables error reporting when set.
	SentryDSN         string
	SentryEnvironment string

	MetricsEnabled bool
}

// New returns a viper instance with every default registered and environment
// lookup enabled. Callers may bind flags into it before calling FromViper.
func New() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyDatabaseURL, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyCORSOrigins, "")
	v.SetDefault(KeyPoolMax, 10)
	v.SetDefault(KeyIdleTimeout, 30*time.Second)
	v.SetDefault(KeyConnectTimeout, 5*time.Second)
	v.SetDefault(KeyDetailPublishedOnly, false)
	v.SetDefault(KeySampleMode, false)
	v.SetDefault(KeySentryDSN, "")
	v.SetDefault(KeySentryEnvironment, "production")
	v.SetDefault(KeyMetricsEnabled, true)
	return v
}

// Load reads configuration from environment variables and returns a Config.
func Load() (Config, error) {
	return FromViper(New())
}

// FromViper builds a Config from v. It returns an error listing any required
// variables that are not set, joined with any invalid values.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:                v.GetString(KeyPort),
		DatabaseURL:         v.GetString(KeyDatabaseURL),
		LogLevel:            strings.ToLower(v.GetString(KeyLogLevel)),
		CORSOrigins:         splitCSV(v.GetString(KeyCORSOrigins)),
		PoolMaxConns:        v.GetInt32(KeyPoolMax),
		IdleTimeout:         v.GetDuration(KeyIdleTimeout),
		ConnectTimeout:      v.GetDuration(KeyConnectTimeout),
		DetailPublishedOnly: v.GetBool(KeyDetailPublishedOnly),
		SampleMode:          v.GetBool(KeySampleMode),
		SentryDSN:           v.GetString(KeySentryDSN),
		SentryEnvironment:   v.GetString(KeySentryEnvironment),
		MetricsEnabled:      v.GetBool(KeyMetricsEnabled),
	}

	var errs []error

	var missing []string
	if cfg.DatabaseURL == "" && !cfg.SampleMode {
		missing = append(missing, KeyDatabaseURL)
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", ")))
	}

	if cfg.PoolMaxConns < 1 {
		errs = append(errs, fmt.Errorf("%s must be a positive integer", KeyPoolMax))
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be a positive duration", KeyIdleTimeout))
	}
	if cfg.ConnectTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be a positive duration", KeyConnectTimeout))
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("%s must be one of debug, info, warn, error", KeyLogLevel))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
