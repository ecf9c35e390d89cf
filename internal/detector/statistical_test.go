package detector

import (
	"testing"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/domain/cost"
	"github.com/costwatch/costwatch/internal/testutil"
)

func findByDate(findings []anomaly.Anomaly, s cost.Series, index int, method anomaly.Method) *anomaly.Anomaly {
	date := s.Points[index].Date
	for i := range findings {
		if findings[i].Date.Equal(date) && findings[i].Method == method {
			return &findings[i]
		}
	}
	return nil
}

func anyByDate(findings []anomaly.Anomaly, s cost.Series, index int) *anomaly.Anomaly {
	date := s.Points[index].Date
	for i := range findings {
		if findings[i].Date.Equal(date) {
			return &findings[i]
		}
	}
	return nil
}

func TestStatisticalDetectorFlagsSpikes(t *testing.T) {
	costs := testutil.NoisyCosts(90, 100, 5)
	costs[15] = 250
	costs[25] = 180
	series := testutil.Series(cost.ProviderAWS, costs)

	findings, err := NewStatisticalDetector(DefaultWindow).Detect(series)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	spike := findByDate(findings, series, 15, anomaly.MethodZScore)
	if spike == nil {
		t.Fatal("250 spike not flagged by z-score test")
	}
	if spike.Severity != anomaly.SeverityHigh {
		t.Errorf("250 spike severity = %v, want high", spike.Severity)
	}
	if spike.ZScore <= zScoreHighCutoff {
		t.Errorf("250 spike z-score = %v, want > %v", spike.ZScore, zScoreHighCutoff)
	}
	if spike.ExpectedCost == nil || *spike.ExpectedCost < 95 || *spike.ExpectedCost > 115 {
		t.Errorf("250 spike expected cost = %v, want ~100-110", spike.ExpectedCost)
	}

	smaller := anyByDate(findings, series, 25)
	if smaller == nil {
		t.Fatal("180 spike not flagged by either sub-test")
	}
	if smaller.Severity == anomaly.SeverityLow {
		t.Errorf("180 spike severity = low, want at least medium")
	}
}

func TestStatisticalDetectorConstantSeries(t *testing.T) {
	series := testutil.Series(cost.ProviderGCP, testutil.ConstantCosts(90, 100))

	findings, err := NewStatisticalDetector(DefaultWindow).Detect(series)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("constant series produced %d findings, want 0", len(findings))
	}
}

func TestStatisticalDetectorShortSeries(t *testing.T) {
	series := testutil.Series(cost.ProviderAWS, testutil.NoisyCosts(20, 100, 5))

	findings, err := NewStatisticalDetector(DefaultWindow).Detect(series)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("short series produced %d findings, want 0", len(findings))
	}
}

func TestStatisticalDetectorSkipsEdges(t *testing.T) {
	// Spikes inside the first and last half-window cannot be reported.
	costs := testutil.NoisyCosts(90, 100, 5)
	costs[3] = 400
	costs[88] = 400
	series := testutil.Series(cost.ProviderAWS, costs)

	findings, err := NewStatisticalDetector(DefaultWindow).Detect(series)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if f := anyByDate(findings, series, 3); f != nil {
		t.Errorf("edge spike at index 3 reported: %+v", f)
	}
	if f := anyByDate(findings, series, 88); f != nil {
		t.Errorf("edge spike at index 88 reported: %+v", f)
	}
}

func TestStatisticalDetectorBothSubTestsCanFire(t *testing.T) {
	costs := testutil.NoisyCosts(90, 100, 5)
	costs[45] = 300
	series := testutil.Series(cost.ProviderAWS, costs)

	findings, err := NewStatisticalDetector(DefaultWindow).Detect(series)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if findByDate(findings, series, 45, anomaly.MethodZScore) == nil {
		t.Error("spike not flagged by z-score sub-test")
	}
	if findByDate(findings, series, 45, anomaly.MethodIQR) == nil {
		t.Error("spike not flagged by IQR sub-test")
	}
}
