package local

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	journalpkg "github.com/rzbill/journal/pkg/journal"
)

// Cursor text format, in the spirit of the native store's tokens:
//
//	s=<store-uuid>;i=<seq-hex>;b=<boot-uuid>;t=<realtime-hex>
//
// The token is opaque to callers and must round-trip unmodified; this file
// only ever parses tokens, it never normalizes one.

type cursorInfo struct {
	storeID  uuid.UUID
	seq      uint64
	boot     uuid.UUID
	realtime uint64
}

func formatCursor(ci cursorInfo) string {
	return fmt.Sprintf("s=%s;i=%x;b=%s;t=%x", ci.storeID, ci.seq, ci.boot, ci.realtime)
}

func parseCursor(text string) (cursorInfo, error) {
	var ci cursorInfo
	var haveStore, haveSeq bool
	for _, part := range strings.Split(text, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return cursorInfo{}, journalpkg.ErrBadCursor
		}
		switch k {
		case "s":
			id, err := uuid.Parse(v)
			if err != nil {
				return cursorInfo{}, journalpkg.ErrBadCursor
			}
			ci.storeID = id
			haveStore = true
		case "i":
			seq, err := strconv.ParseUint(v, 16, 64)
			if err != nil || seq == 0 {
				return cursorInfo{}, journalpkg.ErrBadCursor
			}
			ci.seq = seq
			haveSeq = true
		case "b":
			id, err := uuid.Parse(v)
			if err != nil {
				return cursorInfo{}, journalpkg.ErrBadCursor
			}
			ci.boot = id
		case "t":
			ts, err := strconv.ParseUint(v, 16, 64)
			if err != nil {
				return cursorInfo{}, journalpkg.ErrBadCursor
			}
			ci.realtime = ts
		default:
			// Unknown keys are tolerated so token formats can grow.
		}
	}
	if !haveStore || !haveSeq {
		return cursorInfo{}, journalpkg.ErrBadCursor
	}
	return ci, nil
}
