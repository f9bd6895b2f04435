package journal

import (
	"errors"
	"iter"

	logpkg "github.com/rzbill/journal/pkg/log"
)

// Entries returns a pull sequence of (Record, Cursor) pairs in strict
// arrival order. At the end of available data it blocks in the handle's wait
// until new entries arrive; a wait timeout ends the sequence for this call
// only — a later Entries call re-enters the wait, so whether a timeout is
// terminal stays in the caller's hands.
//
// Store invalidation (rotation, retention) is handled by retrying the
// advance in place: positions are cursor-stable across file-set changes, so
// the retry neither skips nor re-delivers entries. A decode or read failure
// on one entry yields a placeholder record carrying FieldEntryError instead
// of silently ending the stream.
//
// The sequence must be consumed from a single goroutine, like every other
// operation on the handle.
func (j *Journal) Entries() iter.Seq2[Record, Cursor] {
	return func(yield func(Record, Cursor) bool) {
		for {
			rec, ok, err := j.Next()
			switch {
			case err != nil:
				if errors.Is(err, ErrClosed) {
					return
				}
				j.logger.Warn("failed to read entry, yielding placeholder", logpkg.Err(err))
				cursor, _ := j.Cursor()
				if !yield(Record{FieldEntryError: err.Error()}, cursor) {
					return
				}
			case ok:
				cursor, cerr := j.Cursor()
				if cerr != nil {
					j.logger.Warn("cursor capture failed", logpkg.Err(cerr))
				}
				if !yield(rec, cursor) {
					return
				}
			default:
				st, werr := j.Wait()
				if werr != nil {
					j.logger.Error("wait failed, ending sequence", logpkg.Err(werr))
					return
				}
				switch st {
				case WaitData:
					// Retry the advance without yielding.
				case WaitInvalidated:
					j.logger.Debug("store invalidated, retrying advance")
				default:
					// Timeout ends this pull sequence.
					return
				}
			}
		}
	}
}
