// Package detector implements the independent anomaly detection methods
// that analyze a provider's daily cost series: rolling z-score and IQR
// tests, short-term trend deviation, day-of-week seasonality, and an
// isolation-forest outlier model.
package detector

import (
	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/domain/cost"
)

// Detector analyzes a cost series and emits candidate anomalies. A series
// shorter than the detector's minimum window yields an empty result, not
// an error. Detectors are stateless across calls and safe to run
// concurrently on different series.
type Detector interface {
	Detect(series cost.Series) ([]anomaly.Anomaly, error)
}

// Z-score cutoffs shared by the statistical and seasonal detectors.
const (
	zScoreCutoff     = 2.5
	zScoreHighCutoff = 3.5
)

// Defaults for configurable detector parameters.
const (
	DefaultWindow         = 30
	DefaultTrendThreshold = 20.0
	DefaultSensitivity    = 0.1
	DefaultSeed           = 42
)
