package journal

import (
	"bytes"
	"fmt"
	"sort"
)

// Record is one journal entry's fields: name to value, keys unique. A Record
// is created fresh per advance and owned by the caller; it has no identity
// beyond its fields.
type Record map[string]string

// FieldNames returns the record's field names in sorted order for
// deterministic enumeration.
func (r Record) FieldNames() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Message returns the MESSAGE field, if any.
func (r Record) Message() (string, bool) {
	msg, ok := r[FieldMessage]
	return msg, ok
}

// Well-known field names.
const (
	FieldMessage      = "MESSAGE"
	FieldPriority     = "PRIORITY"
	FieldCodeFile     = "CODE_FILE"
	FieldCodeLine     = "CODE_LINE"
	FieldCodeFunction = "CODE_FUNCTION"

	// FieldEntryError carries the description of a decode/read failure on
	// the placeholder record the iterator yields in place of the broken
	// entry.
	FieldEntryError = "JOURNAL_ENTRY_ERROR"
)

// readRecord materializes the field map of the connection's current entry.
// Field buffers are views owned by the connection, so names and values are
// copied out here. A buffer without a separator is a store contract
// violation and fails the whole record rather than being dropped silently.
func readRecord(conn Conn) (Record, error) {
	conn.RestartFields()
	rec := make(Record, 8)
	for {
		buf, done, err := conn.EnumerateField()
		if err != nil {
			return nil, err
		}
		if done {
			return rec, nil
		}
		eq := bytes.IndexByte(buf, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("malformed field buffer %q", buf)
		}
		// Split on the first '=' only; values may contain more.
		rec[string(buf[:eq])] = string(buf[eq+1:])
	}
}
