package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	dashboard "github.com/goliatone/go-feedback-dashboard/components/dashboard"
)

const maxPages = 1000

// HTTPConfig configures the HTTP analytics client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	PageSize   int
	HTTPClient *http.Client
}

// HTTPClient pulls feedback records from a remote analytics API.
type HTTPClient struct {
	baseURL  string
	apiKey   string
	pageSize int
	client   *http.Client
}

// NewHTTPClient builds a client for a live feedback API.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("analytics: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 500
	}
	return &HTTPClient{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		pageSize: pageSize,
		client:   httpClient,
	}, nil
}

// FetchRecords implements RecordClient, following cursors until the last page.
func (c *HTTPClient) FetchRecords(ctx context.Context, query RecordQuery) ([]dashboard.FeedbackRecord, error) {
	req := recordsRequest{Limit: c.pageSize}
	if !query.From.IsZero() {
		req.From = query.From.UTC().Format(time.RFC3339)
	}
	if !query.To.IsZero() {
		req.To = query.To.UTC().Format(time.RFC3339)
	}
	var out []dashboard.FeedbackRecord
	for page := 0; page < maxPages; page++ {
		var resp recordsResponse
		if err := c.do(ctx, http.MethodPost, "/feedback/query", req, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Records...)
		if resp.NextCursor == "" {
			return out, nil
		}
		req.Cursor = resp.NextCursor
	}
	return nil, fmt.Errorf("analytics: more than %d pages of records", maxPages)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("analytics: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("analytics: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("analytics: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("analytics: remote error %d: %s", resp.StatusCode, buf.String())
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("analytics: decode response: %w", err)
	}
	return nil
}

type recordsRequest struct {
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Cursor string `json:"cursor,omitempty"`
	Limit  int    `json:"limit"`
}

type recordsResponse struct {
	Records    []dashboard.FeedbackRecord `json:"records"`
	NextCursor string                     `json:"next_cursor,omitempty"`
}
