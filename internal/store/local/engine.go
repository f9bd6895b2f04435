package local

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	pebblestore "github.com/rzbill/journal/internal/storage/pebble"
	journalpkg "github.com/rzbill/journal/pkg/journal"
	logpkg "github.com/rzbill/journal/pkg/log"
)

// Options configures a local store engine.
type Options struct {
	// Logger receives engine diagnostics. Optional.
	Logger logpkg.Logger
	// Privileged controls whether this process writes to the system store
	// and may read system entries, mirroring the privilege asymmetry of the
	// native store: unprivileged readers asking for system scope succeed but
	// see no system entries. Nil means autodetect (effective uid 0).
	Privileged *bool
}

// Engine is a Pebble-backed journal store. One Engine owns the store's
// identity, sequence allocation, and wake-up channels; connections opened
// from it share that state.
type Engine struct {
	db     *pebblestore.DB
	logger logpkg.Logger

	storeID    uuid.UUID
	bootID     uuid.UUID
	privileged bool

	mu           sync.Mutex
	lastSeq      uint64
	lastRealtime uint64
	generation   uint64
	notifyCh     chan struct{}
	invalCh      chan struct{}
}

// Open initializes an Engine over db, creating store identity on first use.
// The boot identity is fresh per Open, so reopening an engine models a
// reboot for the runtime-only filter.
func Open(db *pebblestore.DB, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	privileged := os.Geteuid() == 0
	if opts.Privileged != nil {
		privileged = *opts.Privileged
	}

	e := &Engine{
		db:         db,
		logger:     logger.WithComponent("store.local"),
		bootID:     uuid.New(),
		privileged: privileged,
		generation: 1,
		notifyCh:   make(chan struct{}),
		invalCh:    make(chan struct{}),
	}

	if meta, err := db.Get(keyMeta); err == nil && len(meta) >= 8 {
		e.lastSeq = binary.BigEndian.Uint64(meta[:8])
	} else if err != nil && !errors.Is(err, pebblestore.ErrNotFound) {
		return nil, fmt.Errorf("local: load meta: %w", err)
	}

	if idb, err := db.Get(keyStoreID); err == nil {
		id, perr := uuid.ParseBytes(idb)
		if perr != nil {
			return nil, fmt.Errorf("local: store id: %w", perr)
		}
		e.storeID = id
	} else if errors.Is(err, pebblestore.ErrNotFound) {
		e.storeID = uuid.New()
		if err := db.Set(keyStoreID, []byte(e.storeID.String())); err != nil {
			return nil, fmt.Errorf("local: persist store id: %w", err)
		}
	} else {
		return nil, fmt.Errorf("local: load store id: %w", err)
	}

	if gb, err := db.Get(keyGeneration); err == nil && len(gb) >= 8 {
		e.generation = binary.BigEndian.Uint64(gb[:8])
	} else if err != nil && !errors.Is(err, pebblestore.ErrNotFound) {
		return nil, fmt.Errorf("local: load generation: %w", err)
	}

	return e, nil
}

// Open establishes a read connection filtered per flags. Together with Send
// it satisfies the journal.Engine boundary.
func (e *Engine) Open(flags journalpkg.Flags) (journalpkg.Conn, error) {
	c := &conn{engine: e, flags: flags}
	if err := c.SeekHead(); err != nil {
		return nil, err
	}
	return c, nil
}

// Send appends one locally-originated entry built from pre-formatted
// "NAME=value" fields. The write scope follows the engine's privilege, as
// the native store routes root's entries to the system store.
func (e *Engine) Send(fields []string) error {
	return e.Append(fields, AppendOptions{System: e.privileged})
}

// AppendOptions control scope and origin stamps on appended entries.
type AppendOptions struct {
	// System stores the entry in the system scope rather than the current
	// user's.
	System bool
	// Remote marks the entry as not originating on this host.
	Remote bool
}

// Append stamps and stores one entry, then wakes blocked readers.
func (e *Engine) Append(fields []string, opts AppendOptions) error {
	for _, f := range fields {
		name, _, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return fmt.Errorf("local: field %q is not NAME=value", f)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := uint64(time.Now().UnixMicro())
	// Keep per-entry timestamps monotonic so cursor text stays ordered.
	if now <= e.lastRealtime {
		now = e.lastRealtime + 1
	}

	seq := e.lastSeq + 1
	val := encodeEntry(entryHeader{
		realtime: now,
		boot:     e.bootID,
		system:   opts.System,
		remote:   opts.Remote,
	}, fields)

	b := e.db.NewBatch()
	defer b.Close()
	if err := b.Set(keyEntry(seq), val, nil); err != nil {
		return err
	}
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], seq)
	if err := b.Set(keyMeta, meta[:], nil); err != nil {
		return err
	}
	if err := e.db.CommitBatch(context.Background(), b); err != nil {
		return err
	}

	e.lastSeq = seq
	e.lastRealtime = now
	// Wake waiters: close-and-recreate so every blocked reader sees it.
	close(e.notifyCh)
	e.notifyCh = make(chan struct{})
	return nil
}

// Rotate bumps the file-set generation and signals invalidation to waiting
// readers, modeling a store rotation.
func (e *Engine) Rotate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.invalidateLocked()
}

func (e *Engine) invalidateLocked() error {
	e.generation++
	var gb [8]byte
	binary.BigEndian.PutUint64(gb[:], e.generation)
	if err := e.db.Set(keyGeneration, gb[:]); err != nil {
		e.generation--
		return err
	}
	close(e.invalCh)
	e.invalCh = make(chan struct{})
	e.logger.Debug("store invalidated", logpkg.Uint64("generation", e.generation))
	return nil
}

// waitState snapshots the channels a waiter should select on, plus whether
// entries past afterSeq already exist. The pending check closes the window
// between a reader's failed advance and its wait: an append landing in that
// gap fires the old notify channel before the waiter snapshots the new one,
// so the wakeup would otherwise be lost.
func (e *Engine) waitState(afterSeq uint64) (notify, inval <-chan struct{}, pending bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.notifyCh, e.invalCh, e.lastSeq > afterSeq
}

// Status describes the store for diagnostics endpoints.
type Status struct {
	StoreID      string
	BootID       string
	LastSeq      uint64
	LastRealtime uint64
	Generation   uint64
	Privileged   bool
}

// Status returns a snapshot of store identity and position counters.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		StoreID:      e.storeID.String(),
		BootID:       e.bootID.String(),
		LastSeq:      e.lastSeq,
		LastRealtime: e.lastRealtime,
		Generation:   e.generation,
		Privileged:   e.privileged,
	}
}

// BootID returns this engine's boot identity.
func (e *Engine) BootID() uuid.UUID { return e.bootID }

func (e *Engine) canReadSystem() bool { return e.privileged }
