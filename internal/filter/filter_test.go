package filter

import (
	"testing"

	"github.com/rzbill/journal/pkg/journal"
)

func TestEmptyExpressionMatchesEverything(t *testing.T) {
	f, err := Compile("  ")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if f.Enabled() {
		t.Fatal("blank expression compiled to an enabled filter")
	}
	if !f.Match(journal.Record{}, 0) {
		t.Fatal("disabled filter rejected an entry")
	}
}

func TestCompileRejectsBadExpression(t *testing.T) {
	if _, err := Compile("message ==="); err == nil {
		t.Fatal("malformed expression accepted")
	}
	if _, err := Compile("unknown_var == 1"); err == nil {
		t.Fatal("undeclared variable accepted")
	}
}

func TestMatchOnFieldsAndShortcuts(t *testing.T) {
	f, err := Compile(`priority <= 4 && fields["UNIT"] == "db.service" && message.contains("slow")`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	hit := journal.Record{
		"MESSAGE":  "slow query on users",
		"PRIORITY": "3",
		"UNIT":     "db.service",
	}
	if !f.Match(hit, 0) {
		t.Fatal("matching entry rejected")
	}
	miss := journal.Record{
		"MESSAGE":  "slow query on users",
		"PRIORITY": "6",
		"UNIT":     "db.service",
	}
	if f.Match(miss, 0) {
		t.Fatal("non-matching priority accepted")
	}
}

func TestMatchMissingPriorityAndEvalError(t *testing.T) {
	f, err := Compile("priority == 6")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	// No PRIORITY field evaluates as -1, never as a accidental match.
	if f.Match(journal.Record{"MESSAGE": "m"}, 0) {
		t.Fatal("entry without priority matched priority == 6")
	}

	// A runtime error (absent map key) drops the entry instead of failing.
	f2, err := Compile(`fields["ABSENT"] == "x"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if f2.Match(journal.Record{"MESSAGE": "m"}, 0) {
		t.Fatal("entry matched on absent key")
	}
}

func TestMatchTimestampWindow(t *testing.T) {
	f, err := Compile("now_us - ts_us < 5000000")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if f.Match(journal.Record{}, 1) {
		t.Fatal("ancient entry inside five second window")
	}
}
