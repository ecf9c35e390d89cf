package detector

import (
	"fmt"

	"github.com/costwatch/costwatch/internal/detector/iforest"
	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/domain/cost"
)

// Decision-score cutoffs for outlier severity.
const (
	outlierHighCutoff   = -0.5
	outlierMediumCutoff = -0.3
)

const (
	shortFeatureWindow = 7
	longFeatureWindow  = 30
)

// OutlierDetector scores every point of a series with an isolation forest
// fit over a multivariate feature matrix. The model is rebuilt from
// scratch on every call; nothing is retained between runs or shared
// between providers.
type OutlierDetector struct {
	sensitivity float64
	seed        int64
}

// NewOutlierDetector creates an outlier detector. sensitivity is the
// expected anomaly fraction (contamination); out-of-range values fall
// back to the default. The seed fixes the forest's random source so
// repeated runs over an unchanged series are identical.
func NewOutlierDetector(sensitivity float64, seed int64) *OutlierDetector {
	if sensitivity <= 0 || sensitivity >= 1 {
		sensitivity = DefaultSensitivity
	}
	return &OutlierDetector{sensitivity: sensitivity, seed: seed}
}

// Detect fits a fresh isolation forest over the series' feature matrix
// and reports points in the outlier class. Severity comes from the
// decision score: high below -0.5, medium below -0.3, low otherwise.
// Series shorter than the 7-day feature window give no verdict.
func (d *OutlierDetector) Detect(series cost.Series) ([]anomaly.Anomaly, error) {
	if series.Len() < shortFeatureWindow {
		return nil, nil
	}

	features := extractFeatures(series.Costs())

	forest := iforest.New(
		iforest.WithContamination(d.sensitivity),
		iforest.WithSeed(d.seed),
	)
	if err := forest.Fit(features); err != nil {
		return nil, fmt.Errorf("outlier model fit for %s: %w", series.Provider, err)
	}

	decisions, err := forest.DecisionScores(features)
	if err != nil {
		return nil, fmt.Errorf("outlier model scoring for %s: %w", series.Provider, err)
	}

	var findings []anomaly.Anomaly
	for i, decision := range decisions {
		if decision >= 0 {
			continue
		}

		severity := anomaly.SeverityLow
		switch {
		case decision < outlierHighCutoff:
			severity = anomaly.SeverityHigh
		case decision < outlierMediumCutoff:
			severity = anomaly.SeverityMedium
		}

		findings = append(findings, anomaly.Anomaly{
			Date:         series.Points[i].Date,
			ObservedCost: series.Points[i].Cost,
			Method:       anomaly.MethodOutlierModel,
			Severity:     severity,
			OutlierScore: decision,
		})
	}

	return findings, nil
}

// extractFeatures builds the per-index feature vector: current cost,
// trailing 7-day mean and std, trailing 30-day mean and std, and the cost
// from the same weekday last week. Windows that reach before the start of
// the series fall back to the current cost (means) or zero (stds).
func extractFeatures(costs []float64) [][]float64 {
	features := make([][]float64, len(costs))
	for i, c := range costs {
		row := make([]float64, 0, 6)
		row = append(row, c)

		if i >= shortFeatureWindow {
			window := costs[i-shortFeatureWindow : i]
			row = append(row, mean(window), popStdDev(window))
		} else {
			row = append(row, c, 0)
		}

		if i >= longFeatureWindow {
			window := costs[i-longFeatureWindow : i]
			row = append(row, mean(window), popStdDev(window))
		} else {
			row = append(row, c, 0)
		}

		if i >= shortFeatureWindow {
			row = append(row, costs[i-shortFeatureWindow])
		} else {
			row = append(row, c)
		}

		features[i] = row
	}
	return features
}
