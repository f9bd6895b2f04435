package local

import (
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/rzbill/journal/internal/storage/pebble"
	journalpkg "github.com/rzbill/journal/pkg/journal"
)

// conn is a single-owner read connection. It tracks one position in the
// store's sequence space; all methods must be serialized by the caller.
type conn struct {
	engine *Engine
	flags  journalpkg.Flags

	pos      uint64 // seq of the current entry; 0 = before head
	cur      []byte // current entry bytes, nil when not on an entry
	curHdr   entryHeader
	fieldOff int
	closed   bool
}

var _ journalpkg.Conn = (*conn)(nil)

// SeekHead positions before the oldest retained entry.
func (c *conn) SeekHead() error {
	if c.closed {
		return journalpkg.ErrClosed
	}
	c.pos = 0
	c.dropEntry()
	return nil
}

// Next advances to the next visible entry. Corrupt entries advance the
// position past themselves and surface an error, leaving the connection
// usable.
func (c *conn) Next() (bool, error) {
	if c.closed {
		return false, journalpkg.ErrClosed
	}
	low, high := entryBounds()
	iter, err := c.engine.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return false, err
	}
	defer iter.Close()

	for ok := iter.SeekGE(keyEntry(c.pos + 1)); ok; ok = iter.Next() {
		seq := seqFromKey(iter.Key())
		hdr, err := decodeHeader(iter.Value())
		if err != nil {
			c.pos = seq
			c.dropEntry()
			return false, fmt.Errorf("local: entry %d: %w", seq, err)
		}
		if !c.visible(hdr) {
			// Filtered entries never become visible to this connection,
			// so the position can move past them. Keeping pos at the
			// last scanned sequence lets Wait tell unscanned appends
			// apart from entries this scan already rejected.
			c.pos = seq
			continue
		}
		c.pos = seq
		c.cur = append([]byte(nil), iter.Value()...)
		c.curHdr = hdr
		c.fieldOff = payloadOffset(c.cur)
		return true, nil
	}
	// End of currently available data; pos sits at the last scanned entry.
	c.dropEntry()
	return false, nil
}

// visible applies the open-time scope/boot/origin filters.
func (c *conn) visible(hdr entryHeader) bool {
	if hdr.system {
		if !c.flags.WantsSystem() || !c.engine.canReadSystem() {
			return false
		}
	} else if !c.flags.WantsCurrentUser() {
		return false
	}
	if c.flags&journalpkg.FlagRuntimeOnly != 0 && hdr.boot != c.engine.bootID {
		return false
	}
	if c.flags&journalpkg.FlagLocalOnly != 0 && hdr.remote {
		return false
	}
	return true
}

// RestartFields resets field enumeration to the current entry's first field.
func (c *conn) RestartFields() {
	if c.cur != nil {
		c.fieldOff = payloadOffset(c.cur)
	}
}

// EnumerateField returns the next raw field buffer of the current entry. The
// returned slice aliases the connection's entry buffer and is invalidated by
// the next advance.
func (c *conn) EnumerateField() ([]byte, bool, error) {
	if c.closed {
		return nil, false, journalpkg.ErrClosed
	}
	if c.cur == nil {
		return nil, false, journalpkg.ErrNoEntry
	}
	field, next, done, err := nextField(c.cur, c.fieldOff)
	if err != nil {
		return nil, false, err
	}
	if done {
		return nil, true, nil
	}
	c.fieldOff = next
	return field, false, nil
}

// Cursor returns an owned token for the current entry.
func (c *conn) Cursor() (string, error) {
	if c.closed {
		return "", journalpkg.ErrClosed
	}
	if c.cur == nil {
		return "", journalpkg.ErrNoEntry
	}
	return formatCursor(cursorInfo{
		storeID:  c.engine.storeID,
		seq:      c.pos,
		boot:     c.curHdr.boot,
		realtime: c.curHdr.realtime,
	}), nil
}

// SeekCursor repositions at the token. If the exact entry is gone the
// position lands just before the nearest entry at or after it, so the next
// advance yields that entry.
func (c *conn) SeekCursor(cursor string) error {
	if c.closed {
		return journalpkg.ErrClosed
	}
	ci, err := parseCursor(cursor)
	if err != nil {
		return err
	}
	if ci.storeID != c.engine.storeID {
		return fmt.Errorf("%w: foreign store %s", journalpkg.ErrBadCursor, ci.storeID)
	}
	exact, err := c.entryExists(ci.seq)
	if err != nil {
		return err
	}
	if exact {
		c.pos = ci.seq
	} else {
		c.pos = ci.seq - 1
	}
	c.dropEntry()
	return nil
}

// TestCursor reports whether the token's exact entry still exists.
func (c *conn) TestCursor(cursor string) (bool, error) {
	if c.closed {
		return false, journalpkg.ErrClosed
	}
	ci, err := parseCursor(cursor)
	if err != nil {
		return false, err
	}
	if ci.storeID != c.engine.storeID {
		return false, fmt.Errorf("%w: foreign store %s", journalpkg.ErrBadCursor, ci.storeID)
	}
	return c.entryExists(ci.seq)
}

func (c *conn) entryExists(seq uint64) (bool, error) {
	_, err := c.engine.db.Get(keyEntry(seq))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Realtime returns the current entry's wall-clock microseconds.
func (c *conn) Realtime() (uint64, error) {
	if c.closed {
		return 0, journalpkg.ErrClosed
	}
	if c.cur == nil {
		return 0, journalpkg.ErrNoEntry
	}
	return c.curHdr.realtime, nil
}

// Wait blocks until an append, an invalidation, or the timeout. A
// non-positive timeout blocks until data or invalidation arrives. Entries
// appended after the last advance but before the wait count as data, so an
// append racing the wait setup never strands the caller.
func (c *conn) Wait(timeout time.Duration) (journalpkg.WaitStatus, error) {
	if c.closed {
		return journalpkg.WaitTimeout, journalpkg.ErrClosed
	}
	notify, inval, pending := c.engine.waitState(c.pos)
	if pending {
		return journalpkg.WaitData, nil
	}
	if timeout <= 0 {
		select {
		case <-notify:
			return journalpkg.WaitData, nil
		case <-inval:
			return journalpkg.WaitInvalidated, nil
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-notify:
		return journalpkg.WaitData, nil
	case <-inval:
		return journalpkg.WaitInvalidated, nil
	case <-timer.C:
		return journalpkg.WaitTimeout, nil
	}
}

// Close releases the connection. Idempotent; the engine and database stay
// open for other connections.
func (c *conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.dropEntry()
	return nil
}

func (c *conn) dropEntry() {
	c.cur = nil
	c.fieldOff = 0
}
