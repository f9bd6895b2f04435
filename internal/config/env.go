package config

import (
	"os"
	"strconv"
)

// FromEnv overlays JOURNAL_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("JOURNAL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("JOURNAL_FSYNC"); v != "" {
		cfg.Fsync = v
	}
	if v := os.Getenv("JOURNAL_RETENTION_MAX_AGE"); v != "" {
		cfg.Retention.MaxAge = v
	}
	if v := os.Getenv("JOURNAL_RETENTION_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Retention.MaxBytes = n
		}
	}
	if v := os.Getenv("JOURNAL_RETENTION_INTERVAL"); v != "" {
		cfg.Retention.Interval = v
	}
	if v := os.Getenv("JOURNAL_HTTP_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.HTTP.Enabled = b
		}
	}
	if v := os.Getenv("JOURNAL_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("JOURNAL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("JOURNAL_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}
