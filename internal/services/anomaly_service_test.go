package services

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/domain/cost"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/store"
	"github.com/costwatch/costwatch/internal/testutil"
)

type fakeAnomalyRepo struct {
	saved []*anomaly.DetectionResult
}

func (r *fakeAnomalyRepo) SaveResult(_ context.Context, result *anomaly.DetectionResult) error {
	r.saved = append(r.saved, result)
	return nil
}

func (r *fakeAnomalyRepo) List(_ context.Context, _ anomaly.Filter) ([]anomaly.Stored, error) {
	return nil, nil
}

func (r *fakeAnomalyRepo) CountBySeverity(_ context.Context) (map[anomaly.Severity]int, error) {
	return nil, nil
}

func newTestService(t *testing.T, repo anomaly.Repository, series map[string][]float64) *AnomalyService {
	t.Helper()
	ts := store.New()
	for provider, costs := range series {
		if err := ts.Put(provider, testutil.Series(provider, costs).Points); err != nil {
			t.Fatalf("Put(%s) error = %v", provider, err)
		}
	}
	log := logger.New(logger.Config{Level: "error"})
	return NewAnomalyService(ts, repo, log, DefaultDetectionConfig())
}

func TestDetectMissingProvider(t *testing.T) {
	svc := newTestService(t, nil, nil)

	result, err := svc.Detect(context.Background(), cost.ProviderAWS)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if result.Provider != cost.ProviderAWS {
		t.Errorf("provider = %q, want %q", result.Provider, cost.ProviderAWS)
	}
	if result.TotalAnomalies != 0 || len(result.Anomalies) != 0 {
		t.Errorf("missing provider produced anomalies: %+v", result)
	}
}

func TestDetectConstantSeries(t *testing.T) {
	svc := newTestService(t, nil, map[string][]float64{
		cost.ProviderGCP: testutil.ConstantCosts(90, 100),
	})

	result, err := svc.Detect(context.Background(), cost.ProviderGCP)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if result.TotalAnomalies != 0 {
		t.Errorf("constant series produced %d anomalies: %+v", result.TotalAnomalies, result.Anomalies)
	}
}

func TestDetectSpikeScenario(t *testing.T) {
	costs := testutil.NoisyCosts(90, 100, 5)
	costs[15] = 250
	costs[25] = 180
	svc := newTestService(t, nil, map[string][]float64{cost.ProviderAWS: costs})

	result, err := svc.Detect(context.Background(), cost.ProviderAWS)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	spikeDate := testutil.Start.AddDate(0, 0, 15)
	var spike *anomaly.Anomaly
	for i := range result.Anomalies {
		if result.Anomalies[i].Date.Equal(spikeDate) {
			spike = &result.Anomalies[i]
		}
	}
	if spike == nil {
		t.Fatal("250 spike missing from merged result")
	}
	if spike.Severity != anomaly.SeverityHigh {
		t.Errorf("250 spike severity = %v, want high", spike.Severity)
	}

	smallerDate := testutil.Start.AddDate(0, 0, 25)
	found := false
	for _, a := range result.Anomalies {
		if a.Date.Equal(smallerDate) {
			found = true
		}
	}
	if !found {
		t.Error("180 spike missing from merged result")
	}
}

func TestDetectResultInvariants(t *testing.T) {
	costs := testutil.NoisyCosts(90, 100, 5)
	costs[15] = 250
	costs[25] = 180
	costs[60] = 30
	svc := newTestService(t, nil, map[string][]float64{cost.ProviderAWS: costs})

	result, err := svc.Detect(context.Background(), cost.ProviderAWS)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if result.TotalAnomalies != len(result.Anomalies) {
		t.Errorf("TotalAnomalies = %d, len(Anomalies) = %d", result.TotalAnomalies, len(result.Anomalies))
	}

	severitySum := 0
	for _, n := range result.BySeverity {
		severitySum += n
	}
	if severitySum != result.TotalAnomalies {
		t.Errorf("severity counts sum to %d, want %d", severitySum, result.TotalAnomalies)
	}
	methodSum := 0
	for _, n := range result.ByMethod {
		methodSum += n
	}
	if methodSum != result.TotalAnomalies {
		t.Errorf("method counts sum to %d, want %d", methodSum, result.TotalAnomalies)
	}

	seen := make(map[time.Time]bool)
	for i, a := range result.Anomalies {
		if seen[a.Date] {
			t.Errorf("duplicate date %v in result", a.Date)
		}
		seen[a.Date] = true
		if i > 0 && result.Anomalies[i-1].Date.After(a.Date) {
			t.Errorf("anomalies out of date order at index %d", i)
		}
	}
}

func TestDetectIdempotent(t *testing.T) {
	costs := testutil.NoisyCosts(90, 100, 5)
	costs[15] = 250
	svc := newTestService(t, nil, map[string][]float64{cost.ProviderAWS: costs})

	first, err := svc.Detect(context.Background(), cost.ProviderAWS)
	if err != nil {
		t.Fatalf("first Detect() error = %v", err)
	}
	second, err := svc.Detect(context.Background(), cost.ProviderAWS)
	if err != nil {
		t.Fatalf("second Detect() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated runs over unchanged data differ:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestDetectShortSeries(t *testing.T) {
	svc := newTestService(t, nil, map[string][]float64{
		cost.ProviderAzure: {100, 105, 300, 95, 100, 110},
	})

	result, err := svc.Detect(context.Background(), cost.ProviderAzure)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if result.TotalAnomalies != 0 {
		t.Errorf("6-point series produced %d anomalies: %+v", result.TotalAnomalies, result.Anomalies)
	}
}

func TestDetectSeasonalScenario(t *testing.T) {
	costs := testutil.WeeklyPattern(84, 500, 100)
	costs[35] = 100
	svc := newTestService(t, nil, map[string][]float64{cost.ProviderAWS: costs})

	result, err := svc.Detect(context.Background(), cost.ProviderAWS)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	brokenDate := testutil.Start.AddDate(0, 0, 35)
	found := false
	for _, a := range result.Anomalies {
		if a.Date.Equal(brokenDate) {
			found = true
		}
	}
	if !found {
		t.Error("Monday that broke the weekly pattern missing from merged result")
	}
}

func TestDetectPersistsResult(t *testing.T) {
	costs := testutil.NoisyCosts(90, 100, 5)
	costs[15] = 250
	repo := &fakeAnomalyRepo{}
	svc := newTestService(t, repo, map[string][]float64{cost.ProviderAWS: costs})

	result, err := svc.Detect(context.Background(), cost.ProviderAWS)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("SaveResult called %d times, want 1", len(repo.saved))
	}
	if !reflect.DeepEqual(repo.saved[0], result) {
		t.Errorf("persisted result differs from returned result")
	}
}

func TestDetectAll(t *testing.T) {
	spiked := testutil.NoisyCosts(90, 100, 5)
	spiked[15] = 250
	svc := newTestService(t, nil, map[string][]float64{
		cost.ProviderAWS: spiked,
		cost.ProviderGCP: testutil.ConstantCosts(90, 100),
	})

	results, err := svc.DetectAll(context.Background())
	if err != nil {
		t.Fatalf("DetectAll() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("DetectAll() returned %d results, want 2", len(results))
	}
	if results[cost.ProviderAWS].TotalAnomalies == 0 {
		t.Error("spiked provider has no anomalies")
	}
	if results[cost.ProviderGCP].TotalAnomalies != 0 {
		t.Errorf("constant provider has %d anomalies", results[cost.ProviderGCP].TotalAnomalies)
	}
}

func TestDedupe(t *testing.T) {
	date := testutil.Start
	findings := []anomaly.Anomaly{
		{Date: date, Method: anomaly.MethodZScore, Severity: anomaly.SeverityMedium},
		{Date: date, Method: anomaly.MethodTrend, Severity: anomaly.SeverityHigh},
		{Date: date, Method: anomaly.MethodSeasonal, Severity: anomaly.SeverityHigh},
		{Date: date.AddDate(0, 0, 1), Method: anomaly.MethodIQR, Severity: anomaly.SeverityLow},
	}

	deduped := dedupe(findings)
	if len(deduped) != 2 {
		t.Fatalf("dedupe kept %d findings, want 2", len(deduped))
	}

	// Highest severity wins; on a tie the earlier method is kept.
	if deduped[0].Method != anomaly.MethodTrend || deduped[0].Severity != anomaly.SeverityHigh {
		t.Errorf("kept %v/%v for first date, want trend/high", deduped[0].Method, deduped[0].Severity)
	}
	if deduped[1].Method != anomaly.MethodIQR {
		t.Errorf("kept %v for second date, want iqr", deduped[1].Method)
	}
}

func TestDetectContextCancelled(t *testing.T) {
	svc := newTestService(t, nil, map[string][]float64{
		cost.ProviderAWS: testutil.ConstantCosts(90, 100),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Detect(ctx, cost.ProviderAWS); err == nil {
		t.Error("Detect() with cancelled context returned nil error")
	}
}
