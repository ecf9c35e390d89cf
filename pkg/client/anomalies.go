package client

import (
	"context"
	"net/url"
	"strconv"
)

// AnomalyService handles detection-related API calls
type AnomalyService struct {
	client *Client
}

// AnomalyListOptions contains options for listing persisted anomalies
type AnomalyListOptions struct {
	Provider string
	Method   string
	Severity string // low, medium, high
	Page     int
	PageSize int
}

// Detect runs the detection pipeline for one provider.
func (s *AnomalyService) Detect(ctx context.Context, provider string) (*DetectionResult, error) {
	path := "/api/v1/detect/" + url.PathEscape(provider)

	var result DetectionResult
	if err := s.client.doRequest(ctx, "POST", path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DetectAll runs the detection pipeline for every ingested provider.
func (s *AnomalyService) DetectAll(ctx context.Context) (map[string]DetectionResult, error) {
	var results map[string]DetectionResult
	if err := s.client.doRequest(ctx, "POST", "/api/v1/detect/", nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// List retrieves persisted anomalies from past detection runs.
func (s *AnomalyService) List(ctx context.Context, opts *AnomalyListOptions) ([]StoredAnomaly, error) {
	query := url.Values{}

	if opts != nil {
		if opts.Provider != "" {
			query.Set("provider", opts.Provider)
		}
		if opts.Method != "" {
			query.Set("method", opts.Method)
		}
		if opts.Severity != "" {
			query.Set("severity", opts.Severity)
		}
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
	}

	path := "/api/v1/anomalies/"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var data struct {
		Anomalies []StoredAnomaly `json:"anomalies"`
	}
	if err := s.client.doRequest(ctx, "GET", path, nil, &data); err != nil {
		return nil, err
	}
	return data.Anomalies, nil
}

// Summary retrieves persisted anomaly counts grouped by severity.
func (s *AnomalyService) Summary(ctx context.Context) (map[string]int, error) {
	var data struct {
		BySeverity map[string]int `json:"by_severity"`
	}
	if err := s.client.doRequest(ctx, "GET", "/api/v1/anomalies/summary", nil, &data); err != nil {
		return nil, err
	}
	return data.BySeverity, nil
}
