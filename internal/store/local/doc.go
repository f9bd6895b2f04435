// Package local implements the store boundary on Pebble.
//
// # Overview
//
// Entries live under big-endian sequence keys for ordered range scans:
//   - j/m            store metadata (lastSeq)
//   - j/id           store identity (UUID)
//   - j/g            file-set generation
//   - j/e/{seq_be8}  entries
//
// Each entry is framed as varint headerLen | header | fields | crc32c, where
// the header carries the realtime timestamp, boot UUID, and scope/origin
// flags the read filters act on, and the fields section is a sequence of
// uvarint-length "NAME=value" buffers.
//
// Appends wake blocked readers through a close-and-recreate notify channel;
// trims and rotations signal a separate invalidation channel, which readers
// treat as a retry hint rather than an error. Cursor tokens are opaque text
// of the form s=<store>;i=<seq>;b=<boot>;t=<realtime> and are parsed, never
// rewritten.
package local
