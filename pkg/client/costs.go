package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// CostService handles cost series API calls
type CostService struct {
	client *Client
}

// IngestRequest carries per-provider daily costs over a shared date axis.
type IngestRequest struct {
	Dates []string             `json:"dates"`
	Costs map[string][]float64 `json:"costs"`
}

// Ingest uploads daily cost series, replacing the providers' stored
// series.
func (s *CostService) Ingest(ctx context.Context, req IngestRequest) (*IngestSummary, error) {
	var summary IngestSummary
	if err := s.client.doRequest(ctx, "POST", "/api/v1/costs/", req, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// IngestSample asks the server to generate and ingest deterministic
// sample data for the given number of days.
func (s *CostService) IngestSample(ctx context.Context, days int) (*IngestSummary, error) {
	path := "/api/v1/costs/sample"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}

	var summary IngestSummary
	if err := s.client.doRequest(ctx, "POST", path, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Update replaces a single provider's series.
func (s *CostService) Update(ctx context.Context, provider string, points []Point) error {
	dates := make([]string, len(points))
	costs := make([]float64, len(points))
	for i, p := range points {
		dates[i] = p.Date.Format(time.DateOnly)
		costs[i] = p.Cost
	}

	body := struct {
		Dates []string  `json:"dates"`
		Costs []float64 `json:"costs"`
	}{Dates: dates, Costs: costs}

	path := "/api/v1/costs/" + url.PathEscape(provider)
	return s.client.doRequest(ctx, "PUT", path, body, nil)
}

// Get retrieves the stored series for one provider.
func (s *CostService) Get(ctx context.Context, provider string) (*Series, error) {
	path := "/api/v1/costs/" + url.PathEscape(provider)

	var series Series
	if err := s.client.doRequest(ctx, "GET", path, nil, &series); err != nil {
		return nil, err
	}
	return &series, nil
}

// Providers retrieves the providers with an ingested series.
func (s *CostService) Providers(ctx context.Context) ([]string, error) {
	var data struct {
		Providers []string `json:"providers"`
	}
	if err := s.client.doRequest(ctx, "GET", "/api/v1/providers", nil, &data); err != nil {
		return nil, err
	}
	return data.Providers, nil
}
