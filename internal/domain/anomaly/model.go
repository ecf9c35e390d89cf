package anomaly

import (
	"fmt"
	"time"
)

// Method identifies the detection method that produced an anomaly.
type Method string

// Detection methods
const (
	MethodZScore       Method = "z_score"
	MethodIQR          Method = "iqr"
	MethodTrend        Method = "trend"
	MethodSeasonal     Method = "seasonal"
	MethodOutlierModel Method = "outlier_model"
)

// Severity classifies how extreme an anomaly is.
type Severity string

// Severity levels, ordered low < medium < high.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank returns the ordinal position of a severity. Unknown severities
// rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

// Trend directions reported by the trend detector.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

// Anomaly is an immutable finding for a single date. ExpectedCost and
// DeviationPercent are nil for methods that do not produce a baseline.
type Anomaly struct {
	Date             time.Time `json:"date"`
	ObservedCost     float64   `json:"cost"`
	ExpectedCost     *float64  `json:"expected_cost,omitempty"`
	Method           Method    `json:"method"`
	Severity         Severity  `json:"severity"`
	DeviationPercent *float64  `json:"deviation_percent,omitempty"`

	// Method-specific metadata
	ZScore         float64      `json:"z_score,omitempty"`
	DayOfWeek      time.Weekday `json:"day_of_week,omitempty"`
	OutlierScore   float64      `json:"outlier_score,omitempty"`
	TrendDirection string       `json:"trend_direction,omitempty"`
}

// New constructs a validated Anomaly.
func New(date time.Time, observed float64, method Method, severity Severity) (Anomaly, error) {
	if observed < 0 {
		return Anomaly{}, fmt.Errorf("observed cost must be non-negative, got %.2f", observed)
	}
	switch method {
	case MethodZScore, MethodIQR, MethodTrend, MethodSeasonal, MethodOutlierModel:
	default:
		return Anomaly{}, fmt.Errorf("unknown detection method %q", method)
	}
	if severity.Rank() == 0 {
		return Anomaly{}, fmt.Errorf("unknown severity %q", severity)
	}
	return Anomaly{Date: date, ObservedCost: observed, Method: method, Severity: severity}, nil
}

// DetectionResult summarizes one detection run for a provider. Anomalies
// holds the deduplicated list, sorted by date, with at most one entry per
// date.
type DetectionResult struct {
	Provider       string           `json:"provider"`
	TotalAnomalies int              `json:"total_anomalies"`
	ByMethod       map[Method]int   `json:"anomalies_by_method"`
	BySeverity     map[Severity]int `json:"anomalies_by_severity"`
	Anomalies      []Anomaly        `json:"anomalies"`
}

// EmptyResult returns a DetectionResult with zero findings for a provider.
func EmptyResult(provider string) *DetectionResult {
	return &DetectionResult{
		Provider:   provider,
		ByMethod:   map[Method]int{},
		BySeverity: map[Severity]int{SeverityLow: 0, SeverityMedium: 0, SeverityHigh: 0},
		Anomalies:  []Anomaly{},
	}
}

// Stored is a persisted anomaly together with the provider it belongs to.
type Stored struct {
	Provider string `json:"provider"`
	Anomaly
}

// Filter contains anomaly listing options.
type Filter struct {
	Provider string
	Method   string
	Severity string
}
