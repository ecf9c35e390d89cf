package worker

import (
	"context"
	"time"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/pkg/logger"
)

// DetectScanner handles periodic anomaly detection scans
type DetectScanner struct {
	anomalyService anomaly.Service
	interval       time.Duration
	logger         *logger.Logger
}

// NewDetectScanner creates a new detection scanner worker
func NewDetectScanner(anomalyService anomaly.Service, interval time.Duration, log *logger.Logger) *DetectScanner {
	return &DetectScanner{
		anomalyService: anomalyService,
		interval:       interval,
		logger:         log.Named("detect_scanner"),
	}
}

// Start begins the periodic detection process. It blocks until the
// context is cancelled.
func (s *DetectScanner) Start(ctx context.Context) {
	s.logger.Info("Starting detection scanner worker")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run initial scan
	s.scan(ctx)

	for {
		select {
		case <-ticker.C:
			s.scan(ctx)
		case <-ctx.Done():
			s.logger.Info("Detection scanner worker stopped")
			return
		}
	}
}

// scan runs detection for every provider with stored cost data.
func (s *DetectScanner) scan(ctx context.Context) {
	s.logger.Info("Starting detection scan for all providers")

	results, err := s.anomalyService.DetectAll(ctx)
	if err != nil {
		s.logger.ErrorWithErr(err, "Detection scan finished with errors")
	}

	total := 0
	for provider, result := range results {
		total += result.TotalAnomalies
		if result.TotalAnomalies > 0 {
			s.logger.WithFields(map[string]interface{}{
				"provider":  provider,
				"anomalies": result.TotalAnomalies,
			}).Info("Detection scan found anomalies")
		}
	}

	s.logger.Infof("Completed detection scan: %d anomalies across %d providers", total, len(results))
}

// SetInterval updates the scanning interval for the next Start
func (s *DetectScanner) SetInterval(interval time.Duration) {
	s.interval = interval
	s.logger.WithFields(map[string]interface{}{
		"interval": interval.String(),
	}).Info("Updated detection scanner interval")
}
