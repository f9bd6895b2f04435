// Package journal is the public reader and writer surface for the log store.
//
// A Journal is an open read handle: it iterates entries in sequence order,
// exposes an opaque Cursor for each entry so a consumer can persist its
// position and resume after a restart, and blocks in Wait until new entries
// arrive. Entries returns a range-over-func iterator combining all of that
// into a single pull loop.
//
// The store itself sits behind the Engine and Conn interfaces. The local
// pebble-backed implementation lives in internal/store/local; tools that only
// read or emit entries depend on this package alone.
//
// Writers use Send, SendRecord, or Print, or install NewLogHandler as a
// slog.Handler to forward application logs into the store.
package journal
