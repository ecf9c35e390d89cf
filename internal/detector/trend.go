package detector

import (
	"math"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/domain/cost"
)

const (
	trendWindow     = 7
	trendHighCutoff = 50.0
)

// TrendDetector flags dates whose cost deviates from the trailing 7-day
// moving average by more than a percentage threshold.
type TrendDetector struct {
	threshold float64
}

// NewTrendDetector creates a trend detector with the given percent-change
// threshold. Non-positive thresholds fall back to the default.
func NewTrendDetector(threshold float64) *TrendDetector {
	if threshold <= 0 {
		threshold = DefaultTrendThreshold
	}
	return &TrendDetector{threshold: threshold}
}

// Detect compares every date from the 8th onward against the trailing
// 7-day mean, excluding the current day. A zero moving average leaves the
// percent change undefined and the date is skipped. This detector never
// emits low severity.
func (d *TrendDetector) Detect(series cost.Series) ([]anomaly.Anomaly, error) {
	costs := series.Costs()
	if len(costs) <= trendWindow {
		return nil, nil
	}

	var findings []anomaly.Anomaly
	for i := trendWindow; i < len(costs); i++ {
		movingAvg := mean(costs[i-trendWindow : i])
		if movingAvg == 0 {
			continue
		}

		c := costs[i]
		percentChange := (c - movingAvg) / movingAvg * 100
		if math.Abs(percentChange) <= d.threshold {
			continue
		}

		severity := anomaly.SeverityMedium
		if math.Abs(percentChange) > trendHighCutoff {
			severity = anomaly.SeverityHigh
		}
		direction := anomaly.DirectionIncrease
		if percentChange < 0 {
			direction = anomaly.DirectionDecrease
		}

		findings = append(findings, anomaly.Anomaly{
			Date:             series.Points[i].Date,
			ObservedCost:     c,
			ExpectedCost:     ptr(movingAvg),
			Method:           anomaly.MethodTrend,
			Severity:         severity,
			DeviationPercent: ptr(percentChange),
			TrendDirection:   direction,
		})
	}

	return findings, nil
}
