package local

import (
	"context"
	"time"

	"github.com/cockroachdb/pebble"
)

// TrimOlderThan deletes entries whose realtime is before cutoffUs.
// Deletes are committed in batches of up to batchLimit keys with an optional
// throttle between commits. Waiting readers receive an invalidation signal
// when anything was reclaimed. Returns the number of deleted entries and the
// last deleted sequence (0 if none).
func (e *Engine) TrimOlderThan(ctx context.Context, cutoffUs uint64, batchLimit int, throttle time.Duration) (int, uint64, error) {
	if batchLimit <= 0 {
		batchLimit = 1024
	}
	low, high := entryBounds()
	iter, err := e.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return 0, 0, err
	}
	defer iter.Close()

	deleted := 0
	var lastSeq uint64
	for ok := iter.First(); ok; {
		b := e.db.NewBatch()
		n := 0
		for ok && n < batchLimit {
			hdr, derr := decodeHeader(iter.Value())
			// Entries are time-ordered; stop at the first one at or past
			// the cutoff. Corrupt entries are reclaimed with their cohort.
			if derr == nil && hdr.realtime >= cutoffUs {
				ok = false
				break
			}
			if err := b.Delete(iter.Key(), nil); err != nil {
				b.Close()
				return deleted, lastSeq, err
			}
			lastSeq = seqFromKey(iter.Key())
			deleted++
			n++
			ok = iter.Next()
		}
		if n == 0 {
			b.Close()
			break
		}
		if err := e.db.CommitBatch(ctx, b); err != nil {
			b.Close()
			return deleted, lastSeq, err
		}
		b.Close()
		if throttle > 0 {
			time.Sleep(throttle)
		}
	}

	if deleted > 0 {
		e.mu.Lock()
		err = e.invalidateLocked()
		e.mu.Unlock()
	}
	return deleted, lastSeq, err
}

// TrimToMaxBytes approximates retention by total entry bytes. If the store
// is within budget it is a no-op; otherwise the oldest entries are deleted
// until the total fits. Batched, throttled, and invalidating like
// TrimOlderThan.
func (e *Engine) TrimToMaxBytes(ctx context.Context, maxBytes int64, batchLimit int, throttle time.Duration) (int, error) {
	if batchLimit <= 0 {
		batchLimit = 1024
	}
	if maxBytes < 0 {
		return 0, nil
	}
	low, high := entryBounds()
	iter, err := e.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	var total int64
	for ok := iter.First(); ok; ok = iter.Next() {
		total += int64(len(iter.Value()))
	}
	if total <= maxBytes {
		return 0, nil
	}

	deleted := 0
	for ok := iter.First(); ok && total > maxBytes; {
		b := e.db.NewBatch()
		n := 0
		for ok && n < batchLimit && total > maxBytes {
			total -= int64(len(iter.Value()))
			if err := b.Delete(iter.Key(), nil); err != nil {
				b.Close()
				return deleted, err
			}
			deleted++
			n++
			ok = iter.Next()
		}
		if err := e.db.CommitBatch(ctx, b); err != nil {
			b.Close()
			return deleted, err
		}
		b.Close()
		if throttle > 0 {
			time.Sleep(throttle)
		}
	}

	if deleted > 0 {
		e.mu.Lock()
		err = e.invalidateLocked()
		e.mu.Unlock()
	}
	return deleted, err
}
