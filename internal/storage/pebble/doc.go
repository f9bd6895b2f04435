// Package pebblestore provides a thin wrapper around Pebble with an fsync
// policy, batches, and iterator access. The local journal store engine keeps
// its entries, metadata, and identity keys in one Pebble database opened
// through this wrapper.
package pebblestore
