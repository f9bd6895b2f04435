// Package config provides loading and environment overlay for the journal
// server configuration. It exposes a Default() baseline, JSON file loading,
// and a JOURNAL_* env overlay applied on top.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/journal.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil {
//	    // reject startup
//	}
package config
