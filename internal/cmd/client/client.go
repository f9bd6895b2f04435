// Package client contains the Cobra CLI commands that talk to a running
// journal server over its HTTP gateway.
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// entryItem mirrors the gateway's wire shape for one entry.
type entryItem struct {
	Cursor     string            `json:"cursor"`
	RealtimeUs uint64            `json:"realtimeUs"`
	Fields     map[string]string `json:"fields"`
}

type entriesPage struct {
	Entries []entryItem `json:"entries"`
}

func fetchEntries(baseURL string, cursor, match string, limit int, follow bool) (*http.Response, error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if match != "" {
		q.Set("match", match)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if follow {
		q.Set("follow", "true")
	}
	resp, err := http.Get(baseURL + "/v1/entries?" + q.Encode())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("server: %s: %s", resp.Status, string(body))
	}
	return resp, nil
}

func decodePage(resp *http.Response) (entriesPage, error) {
	defer resp.Body.Close()
	var page entriesPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return entriesPage{}, err
	}
	return page, nil
}
