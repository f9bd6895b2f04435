package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
)

// LogHandlerOptions configure the slog adapter.
type LogHandlerOptions struct {
	// MinLevel is the minimum level forwarded to the store. Defaults to
	// slog.LevelInfo.
	MinLevel slog.Level
	// ExtraFields are appended to every emitted entry, e.g.
	// "SYSLOG_IDENTIFIER=myservice".
	ExtraFields []string
}

// LogHandler is a slog.Handler that forwards application log calls into the
// store as structured entries: PRIORITY from the level, MESSAGE from the
// message, CODE_FILE/CODE_LINE/CODE_FUNCTION from the call site, and one
// uppercased field per attribute.
//
// Construct it explicitly with NewLogHandler and install it with
// slog.SetDefault if process-wide forwarding is wanted; there is no hidden
// global registration.
type LogHandler struct {
	engine Engine
	opts   LogHandlerOptions
	// bound holds attrs from With, already rendered under the group prefix
	// in effect when they were added.
	bound  []string
	prefix string
}

// NewLogHandler validates the engine and returns a handler forwarding log
// records to it.
func NewLogHandler(engine Engine, opts LogHandlerOptions) (*LogHandler, error) {
	if engine == nil {
		return nil, errors.New("journal: log handler: nil engine")
	}
	for _, f := range opts.ExtraFields {
		if !strings.Contains(f, "=") {
			return nil, fmt.Errorf("journal: log handler: extra field %q is not NAME=value", f)
		}
	}
	return &LogHandler{engine: engine, opts: opts}, nil
}

// Enabled implements slog.Handler.
func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.MinLevel
}

// Handle implements slog.Handler.
func (h *LogHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]string, 0, 8+len(h.bound)+r.NumAttrs())
	fields = append(fields,
		FieldPriority+"="+strconv.Itoa(int(PriorityFromLevel(r.Level))),
		FieldMessage+"="+r.Message,
	)
	if r.PC != 0 {
		if fn := runtime.FuncForPC(r.PC); fn != nil {
			file, line := fn.FileLine(r.PC)
			fields = append(fields,
				FieldCodeFile+"="+file,
				FieldCodeLine+"="+strconv.Itoa(line),
				FieldCodeFunction+"="+fn.Name(),
			)
		}
	}
	fields = append(fields, h.bound...)
	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, h.fieldFor(a))
		return true
	})
	fields = append(fields, h.opts.ExtraFields...)
	return h.engine.Send(fields)
}

func (h *LogHandler) fieldFor(a slog.Attr) string {
	return fieldName(h.prefix+a.Key) + "=" + fmt.Sprint(a.Value.Resolve().Any())
}

// WithAttrs implements slog.Handler.
func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	if len(attrs) > 0 {
		nh.bound = append([]string{}, h.bound...)
		for _, a := range attrs {
			nh.bound = append(nh.bound, h.fieldFor(a))
		}
	}
	return &nh
}

// WithGroup implements slog.Handler.
func (h *LogHandler) WithGroup(name string) slog.Handler {
	nh := *h
	if name != "" {
		nh.prefix = h.prefix + name + "_"
	}
	return &nh
}

// fieldName uppercases an attribute key into a valid field name: letters and
// digits pass through, anything else becomes an underscore.
func fieldName(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, c := range key {
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteRune(c - ('a' - 'A'))
		case (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'):
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
