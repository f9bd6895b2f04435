// Package filter compiles CEL match expressions evaluated against journal
// entries.
package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/rzbill/journal/pkg/journal"
)

// Filter wraps a compiled CEL program evaluated per entry, shared by the tail
// CLI and the HTTP entry stream. When disabled, Match always returns true.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// Compile parses and checks a match expression. An empty expression yields a
// disabled filter that matches everything.
func Compile(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		// All entry fields, name to value.
		cel.Variable("fields", cel.MapType(cel.StringType, cel.StringType)),
		// Shortcuts for the fields nearly every expression touches.
		cel.Variable("message", cel.StringType),
		cel.Variable("priority", cel.IntType),
		// Entry wall-clock time and current time, microseconds since epoch.
		cel.Variable("ts_us", cel.IntType),
		cel.Variable("now_us", cel.IntType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return Filter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true}, nil
}

// Enabled reports whether a non-empty expression was compiled.
func (f Filter) Enabled() bool { return f.enabled }

// Match evaluates the expression against one entry. Evaluation errors drop
// the entry rather than failing the stream.
func (f Filter) Match(rec journal.Record, realtimeUs uint64) bool {
	if !f.enabled {
		return true
	}
	msg, _ := rec.Message()
	pri := int64(-1)
	if raw, ok := rec[journal.FieldPriority]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			pri = int64(n)
		}
	}
	out, _, err := f.prog.Eval(map[string]any{
		"fields":   map[string]string(rec),
		"message":  msg,
		"priority": pri,
		"ts_us":    int64(realtimeUs),
		"now_us":   time.Now().UnixMicro(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
