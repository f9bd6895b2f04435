package journal

import (
	"fmt"
	"strconv"
)

// EncodeFields turns a record's name/value pairs into the pre-formatted
// "NAME=value" strings the store accepts for a single send, in sorted field
// order for deterministic output.
func EncodeFields(rec Record) []string {
	fields := make([]string, 0, len(rec))
	for _, name := range rec.FieldNames() {
		fields = append(fields, name+"="+rec[name])
	}
	return fields
}

// Send emits pre-formatted fields to the store. This is a low-level
// operation for callers that need precise control over the fields sent.
func Send(engine Engine, fields ...string) error {
	if len(fields) == 0 {
		return fmt.Errorf("journal: send: no fields")
	}
	return engine.Send(fields)
}

// SendRecord encodes and emits a record's fields as one entry.
func SendRecord(engine Engine, rec Record) error {
	return Send(engine, EncodeFields(rec)...)
}

// Print emits a simple message at the given priority.
func Print(engine Engine, pri Priority, msg string) error {
	if !pri.Valid() {
		return fmt.Errorf("journal: print: invalid priority %d", int(pri))
	}
	return Send(engine,
		FieldPriority+"="+strconv.Itoa(int(pri)),
		FieldMessage+"="+msg,
	)
}
