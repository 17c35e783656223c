package newswire

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stocksight/data-gateway/internal/testutil"
	"github.com/stocksight/data-gateway/pkg/client"
)

const searchBody = `{
  "status": "ok",
  "totalResults": 2,
  "articles": [
    {"source": {"id": "reuters", "name": "Reuters"}, "author": "Staff",
     "title": "AbCellera reports phase 2 results",
     "description": "Biotech firm announces trial outcome.",
     "url": "https://example.com/a", "publishedAt": "2024-01-15T09:30:00Z"},
    {"source": {"id": null, "name": "BioWorld"}, "author": "",
     "title": "FDA accepts filing",
     "description": "",
     "url": "https://example.com/b", "publishedAt": "2024-01-16T12:00:00Z"}
  ]
}`

func testNewswire(t *testing.T, mock *testutil.MockProvider) *Client {
	t.Helper()

	api, err := client.New(client.Config{
		Provider:     "newswire",
		BaseURL:      mock.URL(),
		APIKey:       "news-key",
		APIKeyHeader: "X-Api-Key",
		UserAgent:    "data-gateway-test/1.0",
		Timeout:      5 * time.Second,
		Retry:        client.RetryConfig{MaxRetries: 0, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffMultiplier: 2},
	})
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}
	return New(api)
}

func TestSearch(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.Script("/everything", testutil.MockResponse{StatusCode: http.StatusOK, Body: searchBody})

	c := testNewswire(t, mock)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	resp, err := c.Search(context.Background(), "AbCellera", from, to, 1, 50)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if resp.TotalResults != 2 || len(resp.Articles) != 2 {
		t.Fatalf("Unexpected result shape: total=%d articles=%d", resp.TotalResults, len(resp.Articles))
	}
	if resp.Articles[0].Source.Name != "Reuters" {
		t.Errorf("Source.Name = %q", resp.Articles[0].Source.Name)
	}
	if resp.Articles[0].PublishedAt.IsZero() {
		t.Error("PublishedAt should parse")
	}

	q := mock.LastQuery()
	if q.Get("q") != "AbCellera" {
		t.Errorf("q = %q", q.Get("q"))
	}
	if q.Get("from") != "2024-01-01" || q.Get("to") != "2024-01-31" {
		t.Errorf("Date params wrong: from=%q to=%q", q.Get("from"), q.Get("to"))
	}
	if q.Get("pageSize") != "50" {
		t.Errorf("pageSize = %q, want 50", q.Get("pageSize"))
	}
	if mock.LastHeader().Get("X-Api-Key") != "news-key" {
		t.Error("X-Api-Key header missing")
	}
}

func TestSearch_DefaultsPageBounds(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.Script("/everything", testutil.MockResponse{StatusCode: http.StatusOK, Body: `{"status":"ok","totalResults":0,"articles":[]}`})

	c := testNewswire(t, mock)

	if _, err := c.Search(context.Background(), "x", time.Time{}, time.Time{}, 0, 0); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	q := mock.LastQuery()
	if q.Get("page") != "1" {
		t.Errorf("page = %q, want 1", q.Get("page"))
	}
	if q.Get("pageSize") != "100" {
		t.Errorf("pageSize = %q, want 100", q.Get("pageSize"))
	}
	if q.Has("from") || q.Has("to") {
		t.Error("Zero dates should not be sent")
	}
}
