package openfda

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stocksight/data-gateway/internal/testutil"
	"github.com/stocksight/data-gateway/pkg/client"
)

const searchBody = `{
  "meta": {"results": {"skip": 0, "limit": 100, "total": 1}},
  "results": [
    {
      "application_number": "BLA761169",
      "sponsor_name": "ABCELLERA BIOLOGICS INC",
      "products": [
        {"product_number": "001", "brand_name": "BAMLANIVIMAB", "dosage_form": "SOLUTION",
         "route": "INTRAVENOUS", "marketing_status": "Discontinued", "reference_drug": "No"}
      ],
      "submissions": [
        {"submission_type": "ORIG", "submission_number": "1", "submission_status": "AP",
         "submission_status_date": "20201109", "review_priority": "PRIORITY"}
      ],
      "openfda": {"brand_name": ["BAMLANIVIMAB"], "manufacturer_name": ["AbCellera"]}
    }
  ]
}`

func testOpenFDA(t *testing.T, mock *testutil.MockProvider) *Client {
	t.Helper()

	api, err := client.New(client.Config{
		Provider:  "openfda",
		BaseURL:   mock.URL(),
		UserAgent: "data-gateway-test/1.0 (ops@example.com)",
		Timeout:   5 * time.Second,
		Retry:     client.RetryConfig{MaxRetries: 0, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffMultiplier: 2},
	})
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}
	return New(api)
}

func TestDrugApplications(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.Script("/drug/drugsfda.json", testutil.MockResponse{StatusCode: http.StatusOK, Body: searchBody})

	c := testOpenFDA(t, mock)

	result, err := c.DrugApplications(context.Background(), "ABCELLERA BIOLOGICS INC", 100, 0)
	if err != nil {
		t.Fatalf("DrugApplications failed: %v", err)
	}

	if result.Meta.Results.Total != 1 {
		t.Errorf("Total = %d, want 1", result.Meta.Results.Total)
	}
	if len(result.Results) != 1 {
		t.Fatalf("Expected 1 application, got %d", len(result.Results))
	}

	app := result.Results[0]
	if app.ApplicationNumber != "BLA761169" {
		t.Errorf("ApplicationNumber = %q", app.ApplicationNumber)
	}
	if len(app.Products) != 1 || app.Products[0].BrandName != "BAMLANIVIMAB" {
		t.Errorf("Unexpected products: %+v", app.Products)
	}
	if len(app.Submissions) != 1 || app.Submissions[0].SubmissionStatus != "AP" {
		t.Errorf("Unexpected submissions: %+v", app.Submissions)
	}

	q := mock.LastQuery()
	if got := q.Get("search"); got != `sponsor_name:"ABCELLERA BIOLOGICS INC"` {
		t.Errorf("search = %q", got)
	}
	if q.Get("limit") != "100" {
		t.Errorf("limit = %q, want 100", q.Get("limit"))
	}
	// The regulatory API requires an identifying User-Agent.
	if mock.LastHeader().Get("User-Agent") == "" {
		t.Error("User-Agent header missing")
	}
}

func TestDrugApplications_NoMatches(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.Script("/drug/drugsfda.json", testutil.MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"error": {"code": "NOT_FOUND", "message": "No matches found!"}}`,
	})

	c := testOpenFDA(t, mock)

	_, err := c.DrugApplications(context.Background(), "NO SUCH SPONSOR", 10, 0)
	if client.ClassOf(err) != client.ClassInvalidRequest {
		t.Fatalf("Expected invalid_request for openFDA 404, got %v", err)
	}
	if mock.PathCount("/drug/drugsfda.json") != 1 {
		t.Errorf("404 should not be retried, got %d attempts", mock.PathCount("/drug/drugsfda.json"))
	}
}

func TestDrugApplications_LimitClamped(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.Script("/drug/drugsfda.json", testutil.MockResponse{StatusCode: http.StatusOK, Body: searchBody})

	c := testOpenFDA(t, mock)

	if _, err := c.DrugApplications(context.Background(), "X", 100000, 25); err != nil {
		t.Fatalf("DrugApplications failed: %v", err)
	}

	q := mock.LastQuery()
	if q.Get("limit") != "100" {
		t.Errorf("Oversized limit should clamp to 100, got %q", q.Get("limit"))
	}
	if q.Get("skip") != "25" {
		t.Errorf("skip = %q, want 25", q.Get("skip"))
	}
}
