package reportapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"consultflow-backend/internal/finance"
	"consultflow-backend/internal/loader"
)

// Client fetches server-computed monthly series from the reporting endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type seriesResponse struct {
	Series []finance.MonthlyFinancialPoint `json:"series"`
}

// MonthlySeries calls GET /reports?company&range&from&to&currency.
func (c *Client) MonthlySeries(ctx context.Context, req loader.Request) ([]finance.MonthlyFinancialPoint, error) {
	q := url.Values{}
	q.Set("company", req.CompanyID)
	q.Set("range", req.Range.Preset)
	q.Set("from", req.Range.From.Format("2006-01-02"))
	q.Set("to", req.Range.To.Format("2006-01-02"))
	if req.Currency != "" {
		q.Set("currency", req.Currency)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reports?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build report request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("report request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("report endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out seriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode report response: %w", err)
	}
	if out.Series == nil {
		return nil, fmt.Errorf("report response has no series")
	}
	return out.Series, nil
}
