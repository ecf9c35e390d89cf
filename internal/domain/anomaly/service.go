package anomaly

import "context"

// Service runs anomaly detection over per-provider cost series.
type Service interface {
	// Detect runs every detection method against the provider's cost
	// series and merges the findings. A provider with no stored series
	// yields an empty result, not an error.
	Detect(ctx context.Context, provider string) (*DetectionResult, error)

	// DetectAll runs Detect for every provider in the store. A failure
	// for one provider does not abort detection for the others.
	DetectAll(ctx context.Context) (map[string]*DetectionResult, error)
}

// Repository persists detection findings.
type Repository interface {
	// SaveResult stores the findings of one detection run, replacing any
	// previous findings for the provider.
	SaveResult(ctx context.Context, result *DetectionResult) error

	// List retrieves persisted anomalies matching the filter.
	List(ctx context.Context, filter Filter) ([]Stored, error)

	// CountBySeverity counts persisted anomalies grouped by severity.
	CountBySeverity(ctx context.Context) (map[Severity]int, error)
}
