package detector

import (
	"math"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/domain/cost"
)

// iqrMultiplier scales the interquartile range when computing outlier
// bounds.
const iqrMultiplier = 1.5

// StatisticalDetector flags dates whose cost deviates from a centered
// rolling baseline (z-score test) or falls outside global IQR bounds.
type StatisticalDetector struct {
	window int
}

// NewStatisticalDetector creates a statistical detector with the given
// rolling window size in days. Non-positive windows fall back to the
// default.
func NewStatisticalDetector(window int) *StatisticalDetector {
	if window <= 0 {
		window = DefaultWindow
	}
	return &StatisticalDetector{window: window}
}

// Detect runs the rolling z-score and global IQR tests. Both tests only
// apply to dates with a fully populated centered window; dates too close
// to either edge of the series are skipped. A date can emit one candidate
// per sub-test; the aggregator deduplicates later.
func (d *StatisticalDetector) Detect(series cost.Series) ([]anomaly.Anomaly, error) {
	costs := series.Costs()
	n := len(costs)
	half := d.window / 2
	if n < 2*half+1 {
		return nil, nil
	}

	// Global distribution stats for the IQR sub-test.
	q1 := quantile(costs, 0.25)
	q3 := quantile(costs, 0.75)
	iqr := q3 - q1
	lowerBound := q1 - iqrMultiplier*iqr
	upperBound := q3 + iqrMultiplier*iqr
	globalMean := mean(costs)
	globalStd := stdDev(costs)

	var findings []anomaly.Anomaly
	for i := half; i < n-half; i++ {
		c := costs[i]
		window := costs[i-half : i+half+1]
		rollingMean := mean(window)
		rollingStd := stdDev(window)

		// Zero rolling std means a constant window; the point cannot be
		// anomalous under the z test.
		if rollingStd > 0 {
			z := (c - rollingMean) / rollingStd
			if math.Abs(z) > zScoreCutoff {
				severity := anomaly.SeverityMedium
				if math.Abs(z) > zScoreHighCutoff {
					severity = anomaly.SeverityHigh
				}
				findings = append(findings, anomaly.Anomaly{
					Date:             series.Points[i].Date,
					ObservedCost:     c,
					ExpectedCost:     ptr(rollingMean),
					Method:           anomaly.MethodZScore,
					Severity:         severity,
					DeviationPercent: deviationPercent(c, rollingMean),
					ZScore:           z,
				})
			}
		}

		if c < lowerBound || c > upperBound {
			severity := anomaly.SeverityMedium
			if globalStd > 0 && math.Abs(c-globalMean) > 2*globalStd {
				severity = anomaly.SeverityHigh
			}
			findings = append(findings, anomaly.Anomaly{
				Date:             series.Points[i].Date,
				ObservedCost:     c,
				ExpectedCost:     ptr(rollingMean),
				Method:           anomaly.MethodIQR,
				Severity:         severity,
				DeviationPercent: deviationPercent(c, rollingMean),
			})
		}
	}

	return findings, nil
}
