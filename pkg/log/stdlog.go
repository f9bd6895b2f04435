package log

import (
	stdlog "log"
	"strings"
)

// stdLogWriter forwards stdlib log output to a Logger at a fixed level.
type stdLogWriter struct {
	logger Logger
	level  Level
}

func (w *stdLogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	switch w.level {
	case DebugLevel:
		w.logger.Debug(msg)
	case WarnLevel:
		w.logger.Warn(msg)
	case ErrorLevel:
		w.logger.Error(msg)
	default:
		w.logger.Info(msg)
	}
	return len(p), nil
}

// RedirectStdLog routes the global stdlib logger (used by Pebble and
// net/http) through the provided Logger at InfoLevel.
func RedirectStdLog(logger Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(&stdLogWriter{logger: logger, level: InfoLevel})
}

// ToStdLogger returns a *log.Logger that writes through the provided Logger
// at the given level.
func ToStdLogger(logger Logger, level Level) *stdlog.Logger {
	return stdlog.New(&stdLogWriter{logger: logger, level: level}, "", 0)
}
