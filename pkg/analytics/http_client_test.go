package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dashboard "github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

func TestHTTPClientFetchRecordsFollowsCursor(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feedback/query" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("expected auth header, got %s", got)
		}
		var req recordsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.From != "2025-01-01T00:00:00Z" || req.Limit != 2 {
			t.Fatalf("unexpected request: %#v", req)
		}
		calls++
		resp := recordsResponse{}
		switch req.Cursor {
		case "":
			resp.Records = []dashboard.FeedbackRecord{{ID: "fb-1"}, {ID: "fb-2"}}
			resp.NextCursor = "page-2"
		case "page-2":
			resp.Records = []dashboard.FeedbackRecord{{ID: "fb-3"}}
		default:
			t.Fatalf("unexpected cursor %q", req.Cursor)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL, APIKey: "secret", PageSize: 2})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	records, err := client.FetchRecords(context.Background(), RecordQuery{From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("fetch records: %v", err)
	}
	if calls != 2 || len(records) != 3 || records[2].ID != "fb-3" {
		t.Fatalf("unexpected records after %d calls: %#v", calls, records)
	}
}

func TestHTTPClientRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.FetchRecords(context.Background(), RecordQuery{}); err == nil {
		t.Fatalf("expected remote error")
	}
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPClient(HTTPConfig{}); err == nil {
		t.Fatalf("expected error for missing base url")
	}
}
