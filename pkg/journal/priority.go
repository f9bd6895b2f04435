package journal

import (
	"fmt"
	"log/slog"
)

// Priority is the syslog-compatible severity attached to emitted entries via
// the PRIORITY field.
type Priority int

// Syslog severities, most to least severe.
const (
	PriEmerg Priority = iota
	PriAlert
	PriCrit
	PriErr
	PriWarning
	PriNotice
	PriInfo
	PriDebug
)

// String returns the conventional severity name.
func (p Priority) String() string {
	switch p {
	case PriEmerg:
		return "emerg"
	case PriAlert:
		return "alert"
	case PriCrit:
		return "crit"
	case PriErr:
		return "err"
	case PriWarning:
		return "warning"
	case PriNotice:
		return "notice"
	case PriInfo:
		return "info"
	case PriDebug:
		return "debug"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Valid reports whether p is one of the eight defined severities.
func (p Priority) Valid() bool { return p >= PriEmerg && p <= PriDebug }

// PriorityFromLevel maps an slog level to a wire priority. The mapping is
// total: levels between the named ones take the priority of the next named
// level below them, and levels outside the range clamp to debug or err.
func PriorityFromLevel(level slog.Level) Priority {
	switch {
	case level < slog.LevelInfo:
		return PriDebug
	case level < slog.LevelWarn:
		return PriInfo
	case level < slog.LevelError:
		return PriWarning
	default:
		return PriErr
	}
}
