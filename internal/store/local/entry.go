package local

import (
	"encoding/binary"
	"errors"
	"hash/crc32"

	"github.com/google/uuid"
)

// Entry framing: varint headerLen | header | payload | crc32c(header|payload).
//
// The header carries per-entry metadata the read filters act on:
//
//	8B  realtime, microseconds since epoch, big-endian
//	16B boot UUID
//	1B  flags (bit0 = system store, bit1 = remote origin)
//
// The payload is a sequence of field buffers, each uvarint length prefixed,
// holding the raw "NAME=value" bytes.

const headerSize = 8 + 16 + 1

const (
	entryFlagSystem = 1 << 0
	entryFlagRemote = 1 << 1
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

var errCorruptEntry = errors.New("local: corrupt entry")

type entryHeader struct {
	realtime uint64
	boot     uuid.UUID
	system   bool
	remote   bool
}

func encodeEntry(hdr entryHeader, fields []string) []byte {
	payloadLen := 0
	for _, f := range fields {
		payloadLen += binary.MaxVarintLen64 + len(f)
	}
	out := make([]byte, 0, 1+headerSize+payloadLen+4)

	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], headerSize)
	out = append(out, tmp[:n]...)

	hdrStart := len(out)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], hdr.realtime)
	out = append(out, ts[:]...)
	out = append(out, hdr.boot[:]...)
	var flags byte
	if hdr.system {
		flags |= entryFlagSystem
	}
	if hdr.remote {
		flags |= entryFlagRemote
	}
	out = append(out, flags)

	for _, f := range fields {
		n = binary.PutUvarint(tmp[:], uint64(len(f)))
		out = append(out, tmp[:n]...)
		out = append(out, f...)
	}

	crc := crc32.Checksum(out[hdrStart:], castagnoli)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc)
	return append(out, crcb[:]...)
}

// decodeHeader parses only the entry header, used by read filters. It
// verifies the checksum of the whole entry so a corrupt record is caught
// before any of it is surfaced.
func decodeHeader(b []byte) (entryHeader, error) {
	hlen, n := binary.Uvarint(b)
	if n <= 0 || hlen != headerSize || n+int(hlen)+4 > len(b) {
		return entryHeader{}, errCorruptEntry
	}
	body := b[n : len(b)-4]
	expect := binary.BigEndian.Uint32(b[len(b)-4:])
	if crc32.Checksum(body, castagnoli) != expect {
		return entryHeader{}, errCorruptEntry
	}

	var hdr entryHeader
	hdr.realtime = binary.BigEndian.Uint64(body[:8])
	copy(hdr.boot[:], body[8:24])
	flags := body[24]
	hdr.system = flags&entryFlagSystem != 0
	hdr.remote = flags&entryFlagRemote != 0
	return hdr, nil
}

// payloadOffset returns the offset of the first field buffer. Valid only for
// entries that passed decodeHeader.
func payloadOffset(b []byte) int {
	_, n := binary.Uvarint(b)
	return n + headerSize
}

// nextField parses the field buffer at off, returning a view into b and the
// offset of the following field. done is true once off reaches the checksum
// trailer.
func nextField(b []byte, off int) (field []byte, next int, done bool, err error) {
	end := len(b) - 4
	if off >= end {
		return nil, off, true, nil
	}
	flen, n := binary.Uvarint(b[off:end])
	if n <= 0 || off+n+int(flen) > end {
		return nil, off, false, errCorruptEntry
	}
	start := off + n
	return b[start : start+int(flen)], start + int(flen), false, nil
}
