package log

import "fmt"

// Config selects logger level and output format from configuration strings.
type Config struct {
	Level  string
	Format string
}

// ApplyConfig builds a console logger from configuration. Empty fields take
// the defaults: info level, text format.
func ApplyConfig(cfg *Config) (Logger, error) {
	level := InfoLevel
	if cfg != nil && cfg.Level != "" {
		l, err := ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}
	var formatter Formatter = &TextFormatter{}
	if cfg != nil && cfg.Format != "" {
		switch cfg.Format {
		case "text":
		case "json":
			formatter = &JSONFormatter{}
		default:
			return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
		}
	}
	return NewLogger(WithLevel(level), WithFormatter(formatter)), nil
}
