package detector

import (
	"math"
	"time"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/domain/cost"
)

// SeasonalDetector flags dates whose cost deviates from that day-of-week's
// own historical baseline. A Monday is judged against Mondays only, so a
// date can look normal globally and still be seasonally anomalous.
type SeasonalDetector struct{}

// NewSeasonalDetector creates a seasonal detector.
func NewSeasonalDetector() *SeasonalDetector {
	return &SeasonalDetector{}
}

// Detect partitions the series into seven day-of-week buckets and scores
// every point against its bucket's mean and standard deviation. Buckets
// with fewer than two points, or zero spread, give no verdict.
func (d *SeasonalDetector) Detect(series cost.Series) ([]anomaly.Anomaly, error) {
	if series.Len() == 0 {
		return nil, nil
	}

	buckets := make(map[time.Weekday][]float64, 7)
	for _, p := range series.Points {
		wd := p.Date.Weekday()
		buckets[wd] = append(buckets[wd], p.Cost)
	}

	type bucketStats struct {
		mean float64
		std  float64
	}
	stats := make(map[time.Weekday]bucketStats, 7)
	for wd, costs := range buckets {
		if len(costs) < 2 {
			continue
		}
		sd := stdDev(costs)
		if sd == 0 {
			continue
		}
		stats[wd] = bucketStats{mean: mean(costs), std: sd}
	}

	var findings []anomaly.Anomaly
	for _, p := range series.Points {
		st, ok := stats[p.Date.Weekday()]
		if !ok {
			continue
		}

		z := math.Abs(p.Cost-st.mean) / st.std
		if z <= zScoreCutoff {
			continue
		}

		severity := anomaly.SeverityMedium
		if z > zScoreHighCutoff {
			severity = anomaly.SeverityHigh
		}

		findings = append(findings, anomaly.Anomaly{
			Date:             p.Date,
			ObservedCost:     p.Cost,
			ExpectedCost:     ptr(st.mean),
			Method:           anomaly.MethodSeasonal,
			Severity:         severity,
			DeviationPercent: deviationPercent(p.Cost, st.mean),
			ZScore:           z,
			DayOfWeek:        p.Date.Weekday(),
		})
	}

	return findings, nil
}
