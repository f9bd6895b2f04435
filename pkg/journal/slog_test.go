package journal

import (
	"log/slog"
	"strings"
	"testing"
)

func sentFields(t *testing.T, e *fakeEngine) map[string]string {
	t.Helper()
	if len(e.sent) != 1 {
		t.Fatalf("sent %d entries, want 1", len(e.sent))
	}
	out := map[string]string{}
	for _, f := range e.sent[0] {
		name, value, ok := strings.Cut(f, "=")
		if !ok {
			t.Fatalf("field without separator: %q", f)
		}
		out[name] = value
	}
	return out
}

func TestLogHandlerValidation(t *testing.T) {
	if _, err := NewLogHandler(nil, LogHandlerOptions{}); err == nil {
		t.Fatal("nil engine accepted")
	}
	if _, err := NewLogHandler(&fakeEngine{}, LogHandlerOptions{ExtraFields: []string{"NOVALUE"}}); err == nil {
		t.Fatal("malformed extra field accepted")
	}
}

func TestLogHandlerEmitsEntry(t *testing.T) {
	e := &fakeEngine{}
	h, err := NewLogHandler(e, LogHandlerOptions{
		ExtraFields: []string{"SYSLOG_IDENTIFIER=journal-test"},
	})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	logger := slog.New(h)
	logger.Warn("disk nearly full", "mount", "/var", "free-pct", 4)

	fields := sentFields(t, e)
	if fields[FieldMessage] != "disk nearly full" {
		t.Fatalf("message: %q", fields[FieldMessage])
	}
	if fields[FieldPriority] != "4" {
		t.Fatalf("priority for warn: %q", fields[FieldPriority])
	}
	if fields["MOUNT"] != "/var" || fields["FREE_PCT"] != "4" {
		t.Fatalf("attr fields: %v", fields)
	}
	if fields["SYSLOG_IDENTIFIER"] != "journal-test" {
		t.Fatalf("extra field missing: %v", fields)
	}
	if !strings.HasSuffix(fields[FieldCodeFile], "slog_test.go") {
		t.Fatalf("code file: %q", fields[FieldCodeFile])
	}
	if fields[FieldCodeLine] == "" || fields[FieldCodeFunction] == "" {
		t.Fatalf("call-site fields missing: %v", fields)
	}
}

func TestLogHandlerGroupsAndBoundAttrs(t *testing.T) {
	e := &fakeEngine{}
	h, err := NewLogHandler(e, LogHandlerOptions{})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	logger := slog.New(h).With("service", "api").WithGroup("req").With("id", "42")
	logger.Info("handled")

	fields := sentFields(t, e)
	if fields["SERVICE"] != "api" {
		t.Fatalf("bound attr: %v", fields)
	}
	if fields["REQ_ID"] != "42" {
		t.Fatalf("grouped attr: %v", fields)
	}
}

// redactedToken carries a secret that must never reach the store; its log
// form is the value a handler sees after resolving the attr.
type redactedToken struct{ secret string }

func (redactedToken) LogValue() slog.Value { return slog.StringValue("[redacted]") }

func TestLogHandlerResolvesLogValuer(t *testing.T) {
	e := &fakeEngine{}
	h, err := NewLogHandler(e, LogHandlerOptions{})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	logger := slog.New(h)
	logger.Info("auth", "token", redactedToken{secret: "hunter2"})

	fields := sentFields(t, e)
	if fields["TOKEN"] != "[redacted]" {
		t.Fatalf("valuer not resolved: %q", fields["TOKEN"])
	}
}

func TestLogHandlerMinLevel(t *testing.T) {
	e := &fakeEngine{}
	h, err := NewLogHandler(e, LogHandlerOptions{MinLevel: slog.LevelWarn})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	logger := slog.New(h)
	logger.Info("dropped")
	if len(e.sent) != 0 {
		t.Fatalf("entry below min level sent: %v", e.sent)
	}
	logger.Error("kept")
	if len(e.sent) != 1 {
		t.Fatalf("entry at min level not sent")
	}
}
