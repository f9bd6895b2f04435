package local

import "encoding/binary"

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
//   - j/m            store metadata (lastSeq, 8 bytes big-endian)
//   - j/id           store identity (UUID text)
//   - j/g            file-set generation (8 bytes big-endian)
//   - j/e/{seq_be8}  entries
var (
	keyMeta        = []byte("j/m")
	keyStoreID     = []byte("j/id")
	keyGeneration  = []byte("j/g")
	entryPrefix    = []byte("j/e/")
	entryPrefixLen = len(entryPrefix)
)

// keyEntry builds the entry key with a big-endian sequence for ordering.
func keyEntry(seq uint64) []byte {
	k := make([]byte, 0, entryPrefixLen+8)
	k = append(k, entryPrefix...)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return append(k, b[:]...)
}

// seqFromKey extracts the sequence from an entry key.
func seqFromKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-8:])
}

// entryBounds returns the [low, high) range covering all entry keys.
func entryBounds() (low, high []byte) {
	low = keyEntry(0)
	high = append(keyEntry(^uint64(0)), 0x00)
	return low, high
}
