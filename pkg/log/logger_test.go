package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newBufLogger(level Level, f Formatter) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(
		WithLevel(level),
		WithFormatter(f),
		WithOutput(NewWriterOutput(&buf)),
	)
	return l, &buf
}

func TestTextFormatterFieldsSorted(t *testing.T) {
	l, buf := newBufLogger(InfoLevel, &TextFormatter{DisableTimestamp: true})
	l.Info("hello", Str("zeta", "z"), Str("alpha", "a"))
	got := buf.String()
	if !strings.HasPrefix(got, "INFO hello") {
		t.Fatalf("unexpected line: %q", got)
	}
	if strings.Index(got, "alpha=a") > strings.Index(got, "zeta=z") {
		t.Fatalf("fields not sorted: %q", got)
	}
}

func TestLevelGate(t *testing.T) {
	l, buf := newBufLogger(WarnLevel, &TextFormatter{DisableTimestamp: true})
	l.Info("dropped")
	l.Warn("kept")
	got := buf.String()
	if strings.Contains(got, "dropped") {
		t.Fatalf("info not gated: %q", got)
	}
	if !strings.Contains(got, "kept") {
		t.Fatalf("warn missing: %q", got)
	}
}

func TestSetLevelSharedWithDerived(t *testing.T) {
	l, buf := newBufLogger(InfoLevel, &TextFormatter{DisableTimestamp: true})
	child := l.WithComponent("reader")
	l.SetLevel(ErrorLevel)
	child.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("derived logger ignored SetLevel: %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	l, buf := newBufLogger(InfoLevel, &JSONFormatter{})
	l.Info("json line", Int("n", 7))
	var obj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &obj); err != nil {
		t.Fatalf("not json: %v (%q)", err, buf.String())
	}
	if obj["msg"] != "json line" || obj["level"] != "INFO" {
		t.Fatalf("unexpected object: %v", obj)
	}
	if n, ok := obj["n"].(float64); !ok || n != 7 {
		t.Fatalf("field lost: %v", obj)
	}
}

func TestApplyConfig(t *testing.T) {
	l, err := ApplyConfig(&Config{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if l.GetLevel() != DebugLevel {
		t.Fatalf("level: %v", l.GetLevel())
	}
	if _, err := ApplyConfig(&Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := ApplyConfig(nil); err != nil {
		t.Fatalf("nil config: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	if lv, err := ParseLevel("warn"); err != nil || lv != WarnLevel {
		t.Fatalf("parse warn: %v %v", lv, err)
	}
	if _, err := ParseLevel("bogus"); err == nil {
		t.Fatalf("expected error for bogus level")
	}
}
