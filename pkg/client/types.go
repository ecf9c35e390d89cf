package client

import "time"

// Point is a single daily cost observation.
type Point struct {
	Date time.Time `json:"date"`
	Cost float64   `json:"cost"`
}

// Series is one provider's daily cost series.
type Series struct {
	Provider string  `json:"provider"`
	Points   []Point `json:"points"`
}

// Anomaly is a single detection finding.
type Anomaly struct {
	Date             time.Time `json:"date"`
	ObservedCost     float64   `json:"cost"`
	ExpectedCost     *float64  `json:"expected_cost,omitempty"`
	Method           string    `json:"method"`
	Severity         string    `json:"severity"`
	DeviationPercent *float64  `json:"deviation_percent,omitempty"`
	ZScore           float64   `json:"z_score,omitempty"`
	DayOfWeek        int       `json:"day_of_week,omitempty"`
	OutlierScore     float64   `json:"outlier_score,omitempty"`
	TrendDirection   string    `json:"trend_direction,omitempty"`
}

// StoredAnomaly is a persisted anomaly with its provider.
type StoredAnomaly struct {
	Provider string `json:"provider"`
	Anomaly
}

// DetectionResult summarizes one detection run for a provider.
type DetectionResult struct {
	Provider       string         `json:"provider"`
	TotalAnomalies int            `json:"total_anomalies"`
	ByMethod       map[string]int `json:"anomalies_by_method"`
	BySeverity     map[string]int `json:"anomalies_by_severity"`
	Anomalies      []Anomaly      `json:"anomalies"`
}

// IngestSummary reports the outcome of a cost ingestion call.
type IngestSummary struct {
	IngestedPoints int `json:"ingested_points"`
	Providers      int `json:"providers"`
}

// HealthResponse is the liveness probe payload.
type HealthResponse struct {
	Status string `json:"status"`
}
