package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/costwatch/costwatch/internal/detector"
	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/domain/cost"
	apperrors "github.com/costwatch/costwatch/internal/pkg/errors"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/pkg/metrics"
	"github.com/costwatch/costwatch/internal/store"
)

// DetectionConfig tunes the detection pipeline.
type DetectionConfig struct {
	Window         int
	TrendThreshold float64
	Sensitivity    float64
	Seed           int64
}

// DefaultDetectionConfig returns the standard pipeline tuning.
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		Window:         detector.DefaultWindow,
		TrendThreshold: detector.DefaultTrendThreshold,
		Sensitivity:    detector.DefaultSensitivity,
		Seed:           detector.DefaultSeed,
	}
}

// AnomalyService runs the full detection pipeline over stored cost series.
// The detectors run concurrently per provider, but their findings are
// merged in a fixed order so repeated runs over unchanged data produce
// identical results.
type AnomalyService struct {
	store     *store.TimeSeriesStore
	repo      anomaly.Repository
	log       *logger.Logger
	detectors []detector.Detector
}

// NewAnomalyService creates the detection service. repo may be nil, in
// which case findings are not persisted.
func NewAnomalyService(ts *store.TimeSeriesStore, repo anomaly.Repository, log *logger.Logger, cfg DetectionConfig) *AnomalyService {
	return &AnomalyService{
		store: ts,
		repo:  repo,
		log:   log.Named("anomaly_service"),
		detectors: []detector.Detector{
			detector.NewStatisticalDetector(cfg.Window),
			detector.NewTrendDetector(cfg.TrendThreshold),
			detector.NewSeasonalDetector(),
			detector.NewOutlierDetector(cfg.Sensitivity, cfg.Seed),
		},
	}
}

// Detect runs every detector against the provider's series and merges the
// findings into one deduplicated, date-sorted result. A provider with no
// stored series yields an empty result.
func (s *AnomalyService) Detect(ctx context.Context, provider string) (*anomaly.DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	series, ok := s.store.Get(provider)
	if !ok || series.Len() == 0 {
		s.log.Debugf("no cost series for provider %s", provider)
		return anomaly.EmptyResult(provider), nil
	}

	start := time.Now()

	findings, err := s.runDetectors(series)
	if err != nil {
		metrics.RecordDetectionRun(provider, "error", time.Since(start))
		s.log.ErrorWithErr(err, "detection run failed")
		return nil, apperrors.DetectionError(provider, err)
	}

	result := buildResult(provider, dedupe(findings))

	metrics.RecordDetectionRun(provider, "success", time.Since(start))
	for _, a := range result.Anomalies {
		metrics.RecordAnomaly(provider, string(a.Method), string(a.Severity))
	}
	s.log.Infof("detected %d anomalies for %s across %d days", result.TotalAnomalies, provider, series.Len())

	if s.repo != nil {
		if err := s.repo.SaveResult(ctx, result); err != nil {
			s.log.ErrorWithErr(err, "failed to persist detection result")
		}
	}

	return result, nil
}

// DetectAll runs Detect for every stored provider. Providers whose run
// fails are omitted from the map; the first failure is returned alongside
// the results of the providers that succeeded.
func (s *AnomalyService) DetectAll(ctx context.Context) (map[string]*anomaly.DetectionResult, error) {
	results := make(map[string]*anomaly.DetectionResult)

	var firstErr error
	for _, provider := range s.store.Providers() {
		result, err := s.Detect(ctx, provider)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results[provider] = result
	}

	return results, firstErr
}

// runDetectors fans the series out to every detector and joins the
// findings in the detectors' fixed registration order.
func (s *AnomalyService) runDetectors(series cost.Series) ([]anomaly.Anomaly, error) {
	findings := make([][]anomaly.Anomaly, len(s.detectors))
	errs := make([]error, len(s.detectors))

	var wg sync.WaitGroup
	for i, d := range s.detectors {
		wg.Add(1)
		go func(i int, d detector.Detector) {
			defer wg.Done()
			findings[i], errs[i] = d.Detect(series)
		}(i, d)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var merged []anomaly.Anomaly
	for _, f := range findings {
		merged = append(merged, f...)
	}
	return merged, nil
}

// dedupe keeps one finding per date: the highest severity wins, and on a
// severity tie the finding from the earlier detection method is kept. The
// input's order encodes that method precedence.
func dedupe(findings []anomaly.Anomaly) []anomaly.Anomaly {
	kept := make(map[time.Time]anomaly.Anomaly, len(findings))
	for _, f := range findings {
		existing, ok := kept[f.Date]
		if ok && existing.Severity.Rank() >= f.Severity.Rank() {
			continue
		}
		kept[f.Date] = f
	}

	deduped := make([]anomaly.Anomaly, 0, len(kept))
	for _, f := range kept {
		deduped = append(deduped, f)
	}
	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].Date.Before(deduped[j].Date)
	})
	return deduped
}

// buildResult assembles the summary counts over the deduplicated findings.
func buildResult(provider string, anomalies []anomaly.Anomaly) *anomaly.DetectionResult {
	result := anomaly.EmptyResult(provider)
	result.Anomalies = anomalies
	result.TotalAnomalies = len(anomalies)
	for _, a := range anomalies {
		result.ByMethod[a.Method]++
		result.BySeverity[a.Severity]++
	}
	return result
}
