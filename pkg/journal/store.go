package journal

import (
	"errors"
	"time"
)

// Flags select which stores a connection reads and how entries are filtered.
// They are fixed at open time.
type Flags int

const (
	// FlagSystem includes the system-wide store.
	FlagSystem Flags = 1 << iota
	// FlagCurrentUser includes the current user's store.
	FlagCurrentUser
	// FlagRuntimeOnly restricts reads to entries from the current boot.
	FlagRuntimeOnly
	// FlagLocalOnly restricts reads to entries originating locally.
	FlagLocalOnly
)

// Neither store bit set means all stores are read.
const flagStoreMask = FlagSystem | FlagCurrentUser

// WantsSystem reports whether the flags include system-store entries.
func (f Flags) WantsSystem() bool {
	return f&flagStoreMask == 0 || f&FlagSystem != 0
}

// WantsCurrentUser reports whether the flags include current-user entries.
func (f Flags) WantsCurrentUser() bool {
	return f&flagStoreMask == 0 || f&FlagCurrentUser != 0
}

// WaitStatus is the outcome of a blocking wait on a connection.
type WaitStatus int

const (
	// WaitTimeout means the timeout elapsed with no new data.
	WaitTimeout WaitStatus = iota
	// WaitData means new entries are available.
	WaitData
	// WaitInvalidated means the store's file set changed (rotation, trim).
	// The reader retries its advance; this is never surfaced as an error.
	WaitInvalidated
)

// String returns a short name for the wait status.
func (s WaitStatus) String() string {
	switch s {
	case WaitTimeout:
		return "timeout"
	case WaitData:
		return "data"
	case WaitInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Sentinel errors shared by engine implementations.
var (
	// ErrNoEntry is returned by position-dependent calls before the first
	// successful advance.
	ErrNoEntry = errors.New("journal: not positioned on an entry")
	// ErrClosed is returned by any call on a released connection or handle.
	ErrClosed = errors.New("journal: closed")
	// ErrBadCursor is returned when a cursor token cannot be interpreted by
	// the store it was presented to.
	ErrBadCursor = errors.New("journal: malformed or foreign cursor")
)

// Conn is one open, single-owner connection to a store. All methods act on a
// shared position and must be serialized by the caller.
type Conn interface {
	// SeekHead positions before the oldest retained entry so the next
	// advance yields it.
	SeekHead() error

	// Next moves the position one entry forward. It returns false when no
	// more entries are currently available; that is not an error.
	Next() (bool, error)

	// RestartFields resets field enumeration to the first field of the
	// current entry.
	RestartFields()

	// EnumerateField returns the next raw "NAME=value" field buffer of the
	// current entry, or done=true when exhausted. The buffer is a view that
	// is only valid until the next call on the connection; callers must
	// copy what they keep.
	EnumerateField() (buf []byte, done bool, err error)

	// Cursor returns an owned, opaque text token for the current entry.
	Cursor() (string, error)

	// SeekCursor repositions so the next advance yields the entry after the
	// one the token identifies, or the nearest entry at or after it when
	// the exact entry has been reclaimed.
	SeekCursor(cursor string) error

	// TestCursor reports whether the token's exact entry still exists.
	TestCursor(cursor string) (bool, error)

	// Realtime returns the wall-clock timestamp of the current entry in
	// microseconds since the Unix epoch.
	Realtime() (uint64, error)

	// Wait blocks until new data arrives, the store is invalidated, or the
	// timeout elapses. A non-positive timeout waits indefinitely.
	Wait(timeout time.Duration) (WaitStatus, error)

	// Close releases the connection. It is idempotent.
	Close() error
}

// Engine opens connections to a store and accepts pre-formatted entries on
// the write path.
type Engine interface {
	// Open establishes a connection filtered per flags. Implementations
	// must not return a partially usable connection.
	Open(flags Flags) (Conn, error)

	// Send appends one entry built from pre-formatted "NAME=value" fields.
	Send(fields []string) error
}
