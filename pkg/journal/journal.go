package journal

import (
	"time"

	logpkg "github.com/rzbill/journal/pkg/log"
)

// Scope selects the set of stores a handle reads.
type Scope int

const (
	// ScopeAll reads the system-wide store and the current user's store.
	ScopeAll Scope = iota
	// ScopeSystem reads the system-wide store only.
	ScopeSystem
	// ScopeCurrentUser reads the current user's store only.
	ScopeCurrentUser
)

// Cursor is an opaque, serializable token identifying one entry position in
// the store's total order. Cursors are only comparable through the store's
// own seek/test operations, never by byte equality, and must be forwarded
// unchanged.
type Cursor string

// SeekOutcome distinguishes an exact cursor restore from a closest seek.
type SeekOutcome int

const (
	// SeekExact means the cursor's entry still exists and the position was
	// restored exactly.
	SeekExact SeekOutcome = iota
	// SeekClosest means the entry was reclaimed by retention and the
	// position landed on the nearest entry at or after it.
	SeekClosest
)

// Options configure a handle at open time. The scope and filters are fixed
// for the handle's lifetime; the wait timeout is mutable afterwards.
type Options struct {
	// Scope selects system, current-user, or both stores.
	Scope Scope
	// RuntimeOnly restricts reads to entries from the current boot.
	RuntimeOnly bool
	// LocalOnly restricts reads to entries that originated locally.
	LocalOnly bool
	// WaitTimeout bounds each blocking wait. Zero or negative waits
	// indefinitely, which is the default.
	WaitTimeout time.Duration
	// Logger receives handle diagnostics. Optional.
	Logger logpkg.Logger
}

func (o Options) flags() Flags {
	var f Flags
	switch o.Scope {
	case ScopeSystem:
		f |= FlagSystem
	case ScopeCurrentUser:
		f |= FlagCurrentUser
	}
	if o.RuntimeOnly {
		f |= FlagRuntimeOnly
	}
	if o.LocalOnly {
		f |= FlagLocalOnly
	}
	return f
}

// Journal is a read handle over one store connection. It is single-owner:
// operations share one position and must be serialized by the caller.
//
// If the process lacks privilege for the system store, opening with
// ScopeSystem or ScopeAll still succeeds but yields no system entries. That
// asymmetry belongs to the underlying store and is preserved here.
type Journal struct {
	conn        Conn
	waitTimeout time.Duration
	logger      logpkg.Logger
	closed      bool
}

// Open establishes a connection per opts and seeks to the logical head
// (oldest retained entry) so iteration starts from the beginning. On failure
// nothing is left half-open.
func Open(engine Engine, opts Options) (*Journal, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	conn, err := engine.Open(opts.flags())
	if err != nil {
		return nil, &OpenError{Err: err}
	}
	if err := conn.SeekHead(); err != nil {
		_ = conn.Close()
		return nil, &OpenError{Err: err}
	}
	return &Journal{
		conn:        conn,
		waitTimeout: opts.WaitTimeout,
		logger:      logger.WithComponent("journal"),
	}, nil
}

// SetWaitTimeout bounds subsequent blocking waits. Zero or negative means
// wait indefinitely.
func (j *Journal) SetWaitTimeout(d time.Duration) { j.waitTimeout = d }

// WaitTimeout returns the configured wait bound.
func (j *Journal) WaitTimeout() time.Duration { return j.waitTimeout }

// Next advances one entry and decodes it. It returns ok=false at the end of
// currently available data, which is not an error. Read and decode failures
// return a *ReadError and leave the handle usable.
func (j *Journal) Next() (Record, bool, error) {
	if j.closed {
		return nil, false, &ReadError{Op: "next", Err: ErrClosed}
	}
	ok, err := j.conn.Next()
	if err != nil {
		return nil, false, &ReadError{Op: "next", Err: err}
	}
	if !ok {
		return nil, false, nil
	}
	rec, err := readRecord(j.conn)
	if err != nil {
		return nil, false, &ReadError{Op: "decode", Err: err}
	}
	return rec, true, nil
}

// Cursor captures the opaque position token for the current entry. It fails
// with a *ReadError before the first successful advance.
func (j *Journal) Cursor() (Cursor, error) {
	if j.closed {
		return "", &ReadError{Op: "cursor", Err: ErrClosed}
	}
	text, err := j.conn.Cursor()
	if err != nil {
		return "", &ReadError{Op: "cursor", Err: err}
	}
	return Cursor(text), nil
}

// Seek repositions to the given cursor and reports whether the restore was
// exact or landed on the nearest surviving entry.
func (j *Journal) Seek(cursor Cursor) (SeekOutcome, error) {
	if j.closed {
		return SeekClosest, &SeekError{Err: ErrClosed}
	}
	exact, err := j.conn.TestCursor(string(cursor))
	if err != nil {
		return SeekClosest, &SeekError{Err: err}
	}
	if err := j.conn.SeekCursor(string(cursor)); err != nil {
		return SeekClosest, &SeekError{Err: err}
	}
	if exact {
		return SeekExact, nil
	}
	return SeekClosest, nil
}

// Realtime returns the wall-clock timestamp of the current entry in
// microseconds since the Unix epoch.
func (j *Journal) Realtime() (uint64, error) {
	if j.closed {
		return 0, &ReadError{Op: "realtime", Err: ErrClosed}
	}
	us, err := j.conn.Realtime()
	if err != nil {
		return 0, &ReadError{Op: "realtime", Err: err}
	}
	return us, nil
}

// Wait blocks until new data, invalidation, or the configured timeout.
func (j *Journal) Wait() (WaitStatus, error) {
	if j.closed {
		return WaitTimeout, &WaitError{Err: ErrClosed}
	}
	st, err := j.conn.Wait(j.waitTimeout)
	if err != nil {
		return st, &WaitError{Err: err}
	}
	return st, nil
}

// Close releases the connection exactly once. Further calls are no-ops, and
// no other operation may be used after it.
func (j *Journal) Close() error {
	if j.closed {
		return nil
	}
	j.closed = true
	return j.conn.Close()
}
