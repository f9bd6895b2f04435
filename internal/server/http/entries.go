package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rzbill/journal/internal/filter"
	"github.com/rzbill/journal/internal/store/local"
	"github.com/rzbill/journal/pkg/journal"
	logpkg "github.com/rzbill/journal/pkg/log"
)

// followWaitBound keeps follow-mode waits short so a dropped client is
// noticed between pulls.
const followWaitBound = time.Second

const defaultLimit = 100

// maxReadFailures bounds consecutive non-advancing read errors in a single
// request. A store that keeps failing without progress (closed database,
// unreadable iterator) would otherwise spin the handler.
const maxReadFailures = 3

type entryItem struct {
	Cursor     string            `json:"cursor"`
	RealtimeUs uint64            `json:"realtimeUs"`
	Fields     map[string]string `json:"fields"`
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleEntriesRead(w, r)
	case http.MethodPost:
		s.handleEntriesWrite(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleEntriesRead(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := defaultLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	match, err := filter.Compile(q.Get("match"))
	if err != nil {
		http.Error(w, "invalid match expression: "+err.Error(), http.StatusBadRequest)
		return
	}
	follow := strings.Contains(r.Header.Get("Accept"), "text/event-stream")
	if v := q.Get("follow"); v != "" {
		follow, err = strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "invalid follow", http.StatusBadRequest)
			return
		}
	}

	j, err := journal.Open(s.engine, journal.Options{Logger: s.logger})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer j.Close()

	if cursor := q.Get("cursor"); cursor != "" {
		outcome, err := j.Seek(journal.Cursor(cursor))
		if err != nil {
			http.Error(w, "invalid cursor", http.StatusBadRequest)
			return
		}
		if outcome == journal.SeekClosest {
			w.Header().Set("X-Journal-Seek", "closest")
		} else {
			w.Header().Set("X-Journal-Seek", "exact")
		}
	}

	if follow {
		s.streamEntries(w, r, j, match)
		return
	}

	items := s.collectEntries(j, match, limit)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"entries": items})
}

// entrySource is the slice of the journal handle the read loop consumes.
type entrySource interface {
	Next() (journal.Record, bool, error)
	Cursor() (journal.Cursor, error)
	Realtime() (uint64, error)
}

// collectEntries drains up to limit matching entries. Read errors are
// tolerated while the source keeps advancing; once maxReadFailures land in a
// row the loop gives up and returns what it has, so a source stuck on the
// same failure cannot pin the handler.
func (s *Server) collectEntries(src entrySource, match filter.Filter, limit int) []entryItem {
	items := make([]entryItem, 0, limit)
	failures := 0
	for len(items) < limit {
		rec, ok, err := src.Next()
		if err != nil {
			s.logger.Warn("entry read failed", logpkg.Err(err))
			failures++
			if failures >= maxReadFailures {
				break
			}
			continue
		}
		failures = 0
		if !ok {
			break
		}
		if it, keep := s.itemFor(src, rec, match); keep {
			items = append(items, it)
		}
	}
	return items
}

// streamEntries serves follow mode as Server-Sent Events: one data event per
// entry, flushed immediately, until the client goes away.
func (s *Server) streamEntries(w http.ResponseWriter, r *http.Request, j *journal.Journal, match filter.Filter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	j.SetWaitTimeout(followWaitBound)
	ctx := r.Context()
	for ctx.Err() == nil {
		for rec, cursor := range j.Entries() {
			if ctx.Err() != nil {
				return
			}
			it, keep := s.itemFor(j, rec, match)
			if !keep {
				continue
			}
			it.Cursor = string(cursor)
			b, err := json.Marshal(it)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("data: ")); err != nil {
				return
			}
			if _, err := w.Write(b); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		// Wait timeout ended the pull; loop back unless the client is gone.
	}
}

func (s *Server) itemFor(src entrySource, rec journal.Record, match filter.Filter) (entryItem, bool) {
	cursor, err := src.Cursor()
	if err != nil {
		return entryItem{}, false
	}
	rt, err := src.Realtime()
	if err != nil {
		return entryItem{}, false
	}
	if !match.Match(rec, rt) {
		return entryItem{}, false
	}
	return entryItem{Cursor: string(cursor), RealtimeUs: rt, Fields: rec}, true
}

type writeReq struct {
	Fields map[string]string `json:"fields"`
}

// handleEntriesWrite appends one entry on behalf of a remote sender. Remote
// entries are marked as such so local-only readers can exclude them.
func (s *Server) handleEntriesWrite(w http.ResponseWriter, r *http.Request) {
	var req writeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if len(req.Fields) == 0 {
		http.Error(w, "no fields", http.StatusBadRequest)
		return
	}
	fields := journal.EncodeFields(journal.Record(req.Fields))
	if err := s.engine.Append(fields, local.AppendOptions{Remote: true}); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
