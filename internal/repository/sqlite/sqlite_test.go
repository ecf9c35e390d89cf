package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/domain/cost"
	"github.com/costwatch/costwatch/internal/testutil"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCostPointsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	points := testutil.Series(cost.ProviderAWS, []float64{100, 110, 105}).Points
	if err := db.UpsertPoints(ctx, cost.ProviderAWS, points); err != nil {
		t.Fatalf("UpsertPoints() error = %v", err)
	}

	series, err := db.GetSeries(ctx, cost.ProviderAWS)
	if err != nil {
		t.Fatalf("GetSeries() error = %v", err)
	}
	if series.Len() != 3 {
		t.Fatalf("series has %d points, want 3", series.Len())
	}
	for i, p := range series.Points {
		if !p.Date.Equal(points[i].Date) || p.Cost != points[i].Cost {
			t.Errorf("point %d = %+v, want %+v", i, p, points[i])
		}
	}
}

func TestUpsertReplacesCost(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	points := testutil.Series(cost.ProviderGCP, []float64{600}).Points
	if err := db.UpsertPoints(ctx, cost.ProviderGCP, points); err != nil {
		t.Fatalf("UpsertPoints() error = %v", err)
	}

	points[0].Cost = 650
	if err := db.UpsertPoints(ctx, cost.ProviderGCP, points); err != nil {
		t.Fatalf("second UpsertPoints() error = %v", err)
	}

	series, err := db.GetSeries(ctx, cost.ProviderGCP)
	if err != nil {
		t.Fatalf("GetSeries() error = %v", err)
	}
	if series.Len() != 1 || series.Points[0].Cost != 650 {
		t.Errorf("series after upsert = %+v, want single point at 650", series.Points)
	}
}

func TestGetSeriesMissingProvider(t *testing.T) {
	db := openTestDB(t)

	series, err := db.GetSeries(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("GetSeries() error = %v", err)
	}
	if series.Len() != 0 {
		t.Errorf("missing provider returned %d points", series.Len())
	}
}

func TestProviders(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, provider := range []string{cost.ProviderGCP, cost.ProviderAWS} {
		points := testutil.Series(provider, []float64{100}).Points
		if err := db.UpsertPoints(ctx, provider, points); err != nil {
			t.Fatalf("UpsertPoints(%s) error = %v", provider, err)
		}
	}

	providers, err := db.Providers(ctx)
	if err != nil {
		t.Fatalf("Providers() error = %v", err)
	}
	want := []string{cost.ProviderAWS, cost.ProviderGCP}
	if len(providers) != 2 || providers[0] != want[0] || providers[1] != want[1] {
		t.Errorf("Providers() = %v, want %v", providers, want)
	}
}

func sampleResult() *anomaly.DetectionResult {
	expected := 100.0
	deviation := 150.0
	result := anomaly.EmptyResult(cost.ProviderAWS)
	result.Anomalies = []anomaly.Anomaly{
		{
			Date:             testutil.Start,
			ObservedCost:     250,
			ExpectedCost:     &expected,
			Method:           anomaly.MethodZScore,
			Severity:         anomaly.SeverityHigh,
			DeviationPercent: &deviation,
			ZScore:           4.2,
		},
		{
			Date:         testutil.Start.AddDate(0, 0, 1),
			ObservedCost: 180,
			Method:       anomaly.MethodOutlierModel,
			Severity:     anomaly.SeverityMedium,
			OutlierScore: -0.35,
		},
	}
	result.TotalAnomalies = len(result.Anomalies)
	return result
}

func TestSaveResultAndList(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SaveResult(ctx, sampleResult()); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}

	anomalies, err := db.List(ctx, anomaly.Filter{Provider: cost.ProviderAWS})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(anomalies) != 2 {
		t.Fatalf("List() returned %d anomalies, want 2", len(anomalies))
	}

	first := anomalies[0]
	if first.Provider != cost.ProviderAWS {
		t.Errorf("first anomaly provider = %q, want %q", first.Provider, cost.ProviderAWS)
	}
	if first.Method != anomaly.MethodZScore || first.Severity != anomaly.SeverityHigh {
		t.Errorf("first anomaly = %v/%v, want z_score/high", first.Method, first.Severity)
	}
	if first.ExpectedCost == nil || *first.ExpectedCost != 100 {
		t.Errorf("first anomaly expected cost = %v, want 100", first.ExpectedCost)
	}
	if !first.Date.Equal(testutil.Start) {
		t.Errorf("first anomaly date = %v, want %v", first.Date, testutil.Start)
	}

	second := anomalies[1]
	if second.ExpectedCost != nil {
		t.Errorf("second anomaly expected cost = %v, want nil", second.ExpectedCost)
	}
	if second.OutlierScore != -0.35 {
		t.Errorf("second anomaly outlier score = %v, want -0.35", second.OutlierScore)
	}
}

func TestSaveResultReplacesPreviousRun(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SaveResult(ctx, sampleResult()); err != nil {
		t.Fatalf("first SaveResult() error = %v", err)
	}

	// A clean second run wipes the provider's previous findings.
	if err := db.SaveResult(ctx, anomaly.EmptyResult(cost.ProviderAWS)); err != nil {
		t.Fatalf("second SaveResult() error = %v", err)
	}

	anomalies, err := db.List(ctx, anomaly.Filter{Provider: cost.ProviderAWS})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(anomalies) != 0 {
		t.Errorf("List() after empty run returned %d anomalies, want 0", len(anomalies))
	}
}

func TestListFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SaveResult(ctx, sampleResult()); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}

	bySeverity, err := db.List(ctx, anomaly.Filter{Severity: string(anomaly.SeverityHigh)})
	if err != nil {
		t.Fatalf("List(severity) error = %v", err)
	}
	if len(bySeverity) != 1 || bySeverity[0].Severity != anomaly.SeverityHigh {
		t.Errorf("severity filter returned %+v", bySeverity)
	}

	byMethod, err := db.List(ctx, anomaly.Filter{Method: string(anomaly.MethodOutlierModel)})
	if err != nil {
		t.Fatalf("List(method) error = %v", err)
	}
	if len(byMethod) != 1 || byMethod[0].Method != anomaly.MethodOutlierModel {
		t.Errorf("method filter returned %+v", byMethod)
	}
}

func TestCountBySeverity(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SaveResult(ctx, sampleResult()); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}

	counts, err := db.CountBySeverity(ctx)
	if err != nil {
		t.Fatalf("CountBySeverity() error = %v", err)
	}
	if counts[anomaly.SeverityHigh] != 1 || counts[anomaly.SeverityMedium] != 1 {
		t.Errorf("CountBySeverity() = %v, want high:1 medium:1", counts)
	}
}
