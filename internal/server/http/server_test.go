package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rzbill/journal/internal/filter"
	pebblestore "github.com/rzbill/journal/internal/storage/pebble"
	"github.com/rzbill/journal/internal/store/local"
	"github.com/rzbill/journal/pkg/journal"
	logpkg "github.com/rzbill/journal/pkg/log"
)

func newTestServer(t *testing.T) (*Server, *local.Engine) {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	priv := false
	e, err := local.Open(db, local.Options{Privileged: &priv})
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Format: "text"})
	return New(e, logger), e
}

type entriesResp struct {
	Entries []struct {
		Cursor     string            `json:"cursor"`
		RealtimeUs uint64            `json:"realtimeUs"`
		Fields     map[string]string `json:"fields"`
	} `json:"entries"`
}

func TestHealthHandler(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestStatusHandler(t *testing.T) {
	s, e := newTestServer(t)
	if err := e.Send([]string{"MESSAGE=x"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["storeId"] == "" || body["lastSeq"].(float64) != 1 {
		t.Fatalf("body: %v", body)
	}
}

func TestEntriesReadWithCursorResume(t *testing.T) {
	s, e := newTestServer(t)
	for _, m := range []string{"one", "two", "three"} {
		if err := e.Send([]string{"MESSAGE=" + m}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/entries?limit=2", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", w.Code, w.Body.String())
	}
	var page1 entriesResp
	if err := json.Unmarshal(w.Body.Bytes(), &page1); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page1.Entries) != 2 || page1.Entries[1].Fields["MESSAGE"] != "two" {
		t.Fatalf("page 1: %+v", page1)
	}

	// The last cursor of page one resumes at entry three.
	req = httptest.NewRequest(http.MethodGet, "/v1/entries?cursor="+url.QueryEscape(page1.Entries[1].Cursor), nil)
	w = httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	if got := w.Header().Get("X-Journal-Seek"); got != "exact" {
		t.Fatalf("seek header: %q", got)
	}
	var page2 entriesResp
	if err := json.Unmarshal(w.Body.Bytes(), &page2); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page2.Entries) != 1 || page2.Entries[0].Fields["MESSAGE"] != "three" {
		t.Fatalf("page 2: %+v", page2)
	}
}

func TestEntriesReadRejectsBadParams(t *testing.T) {
	s, _ := newTestServer(t)
	for _, target := range []string{
		"/v1/entries?limit=0",
		"/v1/entries?follow=perhaps",
		"/v1/entries?match=message%20===",
		"/v1/entries?cursor=garbage",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()
		s.srv.Handler.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", target, w.Code)
		}
	}
}

func TestEntriesReadWithMatch(t *testing.T) {
	s, e := newTestServer(t)
	if err := e.Send([]string{"MESSAGE=boring", "PRIORITY=6"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := e.Send([]string{"MESSAGE=on fire", "PRIORITY=2"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/entries?match=priority%20%3C%3D%203", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	var resp entriesResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Fields["MESSAGE"] != "on fire" {
		t.Fatalf("filtered entries: %+v", resp)
	}
}

// stuckSource yields its seeded records, then fails every advance without
// making progress, the way a store whose database went away mid-request does.
type stuckSource struct {
	recs  []journal.Record
	pos   int
	calls int
}

func (f *stuckSource) Next() (journal.Record, bool, error) {
	f.calls++
	if f.pos < len(f.recs) {
		rec := f.recs[f.pos]
		f.pos++
		return rec, true, nil
	}
	return nil, false, errors.New("iterator unavailable")
}

func (f *stuckSource) Cursor() (journal.Cursor, error) { return journal.Cursor("c"), nil }
func (f *stuckSource) Realtime() (uint64, error)       { return 1, nil }

func TestEntriesReadGivesUpOnStuckSource(t *testing.T) {
	s, _ := newTestServer(t)
	match, err := filter.Compile("")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	src := &stuckSource{recs: []journal.Record{{"MESSAGE": "kept"}}}
	items := s.collectEntries(src, match, 50)
	if len(items) != 1 || items[0].Fields["MESSAGE"] != "kept" {
		t.Fatalf("items: %v", items)
	}
	if want := 1 + maxReadFailures; src.calls != want {
		t.Fatalf("next calls = %d, want %d", src.calls, want)
	}
}

func TestEntriesWriteMarksRemote(t *testing.T) {
	s, e := newTestServer(t)
	body := `{"fields":{"MESSAGE":"from afar","UNIT":"edge.service"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/entries", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status: %d body: %s", w.Code, w.Body.String())
	}

	// A default reader sees the entry; a local-only reader does not.
	c, err := e.Open(0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()
	if ok, err := c.Next(); err != nil || !ok {
		t.Fatalf("next: ok=%v err=%v", ok, err)
	}
	lc, err := e.Open(journal.FlagLocalOnly)
	if err != nil {
		t.Fatalf("open local-only: %v", err)
	}
	defer lc.Close()
	if ok, err := lc.Next(); err != nil || ok {
		t.Fatalf("local-only saw remote entry: ok=%v err=%v", ok, err)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/entries", strings.NewReader(`{"fields":{}}`))
	w = httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty fields status: %d", w.Code)
	}
}

func TestEntriesFollowStreamsSSE(t *testing.T) {
	s, e := newTestServer(t)
	if err := e.Send([]string{"MESSAGE=live"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/v1/entries?follow=true", nil).WithContext(ctx)

	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		s.srv.Handler.ServeHTTP(rec, req)
		close(done)
	}()

	// Give the stream a moment to emit the first event, then hang up.
	time.Sleep(300 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("follow handler did not stop on client disconnect")
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: %q", ct)
	}
	sc := bufio.NewScanner(strings.NewReader(rec.Body.String()))
	var data string
	for sc.Scan() {
		if strings.HasPrefix(sc.Text(), "data: ") {
			data = strings.TrimPrefix(sc.Text(), "data: ")
			break
		}
	}
	if !strings.Contains(data, `"MESSAGE":"live"`) {
		t.Fatalf("sse event: %q", data)
	}
}
