package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.HTTP.Addr == "" || cfg.Fsync != "always" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	body := `{"dataDir":"/tmp/j","fsync":"never","retention":{"maxAge":"720h","maxBytes":1048576},"http":{"enabled":false,"addr":""}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/j" || cfg.Fsync != "never" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Retention.MaxBytes != 1048576 {
		t.Fatalf("retention not applied: %+v", cfg.Retention)
	}
	// Untouched sections keep their defaults.
	if cfg.Log.Level != "info" {
		t.Fatalf("log defaults lost: %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if d, err := cfg.Retention.MaxAgeDuration(); err != nil || d != 720*time.Hour {
		t.Fatalf("max age: %v %v", d, err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	if err := os.WriteFile(path, []byte(`{"dataDirr":"/tmp/j"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("typoed key accepted")
	}
}

func TestLoadRejectsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.yaml")
	if err := os.WriteFile(path, []byte("dataDir: /tmp/j\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("yaml accepted")
	}
}

func TestFromEnvOverlay(t *testing.T) {
	t.Setenv("JOURNAL_DATA_DIR", "/srv/journal")
	t.Setenv("JOURNAL_FSYNC", "interval")
	t.Setenv("JOURNAL_RETENTION_MAX_BYTES", "2048")
	t.Setenv("JOURNAL_HTTP_ENABLED", "false")
	t.Setenv("JOURNAL_LOG_LEVEL", "debug")

	cfg := Default()
	FromEnv(&cfg)
	if cfg.DataDir != "/srv/journal" || cfg.Fsync != "interval" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Retention.MaxBytes != 2048 || cfg.HTTP.Enabled || cfg.Log.Level != "debug" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.DataDir = "" },
		func(c *Config) { c.Fsync = "sometimes" },
		func(c *Config) { c.Retention.MaxAge = "soon" },
		func(c *Config) { c.Retention.Interval = "-1m" },
		func(c *Config) { c.Retention.MaxBytes = -1 },
		func(c *Config) { c.HTTP.Addr = "" },
	}
	for i, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d passed validation: %+v", i, cfg)
		}
	}
}
