package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	DataDir   string    `json:"dataDir"`
	Fsync     string    `json:"fsync"`
	Retention Retention `json:"retention"`
	HTTP      HTTP      `json:"http"`
	Log       Log       `json:"log"`
}

// Retention bounds how much history the store keeps. Zero values disable the
// corresponding limit.
type Retention struct {
	// MaxAge discards entries older than this, e.g. "720h". Empty keeps
	// entries regardless of age.
	MaxAge string `json:"maxAge"`
	// MaxBytes caps the store's on-disk size; the oldest entries go first.
	MaxBytes int64 `json:"maxBytes"`
	// Interval is how often retention runs, default one minute.
	Interval string `json:"interval"`
}

// HTTP configures the gateway server.
type HTTP struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// Log configures process logging.
type Log struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		DataDir: DefaultDataDir(),
		Fsync:   "always",
		Retention: Retention{
			Interval: "1m",
		},
		HTTP: HTTP{
			Enabled: true,
			Addr:    ":8282",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a JSON file. If path is empty, returns
// defaults. Unknown keys are rejected so typos fail loudly at startup.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return Config{}, errors.New("yaml config not supported yet; use JSON for now")
	}
	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MaxAgeDuration parses the retention age bound; zero means unbounded.
func (r Retention) MaxAgeDuration() (time.Duration, error) {
	if r.MaxAge == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.MaxAge)
	if err != nil {
		return 0, fmt.Errorf("retention.maxAge: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("retention.maxAge: negative duration %q", r.MaxAge)
	}
	return d, nil
}

// IntervalDuration parses the retention sweep cadence.
func (r Retention) IntervalDuration() (time.Duration, error) {
	if r.Interval == "" {
		return time.Minute, nil
	}
	d, err := time.ParseDuration(r.Interval)
	if err != nil {
		return 0, fmt.Errorf("retention.interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("retention.interval: non-positive duration %q", r.Interval)
	}
	return d, nil
}

// Validate checks cross-field constraints that Load cannot express.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("dataDir must not be empty")
	}
	switch c.Fsync {
	case "always", "interval", "never":
	default:
		return fmt.Errorf("fsync: unknown mode %q", c.Fsync)
	}
	if _, err := c.Retention.MaxAgeDuration(); err != nil {
		return err
	}
	if _, err := c.Retention.IntervalDuration(); err != nil {
		return err
	}
	if c.Retention.MaxBytes < 0 {
		return fmt.Errorf("retention.maxBytes: negative %d", c.Retention.MaxBytes)
	}
	if c.HTTP.Enabled && c.HTTP.Addr == "" {
		return errors.New("http.addr must not be empty when the gateway is enabled")
	}
	return nil
}
