package services

import (
	"context"

	"github.com/costwatch/costwatch/internal/domain/cost"
	apperrors "github.com/costwatch/costwatch/internal/pkg/errors"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/pkg/metrics"
	"github.com/costwatch/costwatch/internal/store"
)

// CostService ingests per-provider daily cost series into the in-memory
// store and, when a repository is configured, persists them.
type CostService struct {
	store *store.TimeSeriesStore
	repo  cost.Repository
	log   *logger.Logger
}

// NewCostService creates the ingestion service. repo may be nil, in which
// case series live only in memory.
func NewCostService(ts *store.TimeSeriesStore, repo cost.Repository, log *logger.Logger) *CostService {
	return &CostService{
		store: ts,
		repo:  repo,
		log:   log.Named("cost_service"),
	}
}

// Ingest validates the given series and makes them available to
// detection, replacing any existing series for the same providers.
// Returns the number of ingested points. An invalid series rejects the
// whole batch before any provider is stored.
func (s *CostService) Ingest(ctx context.Context, source string, series map[string][]cost.Point) (int, error) {
	validated := make(map[string]cost.Series, len(series))
	for provider, points := range series {
		v, err := cost.NewSeries(provider, points)
		if err != nil {
			return 0, apperrors.ValidationError("invalid cost series", map[string]string{
				"provider": provider,
				"reason":   err.Error(),
			})
		}
		validated[provider] = v
	}

	total := 0
	for provider, v := range validated {
		if err := s.store.Put(provider, v.Points); err != nil {
			return total, apperrors.Internal("failed to store cost series", err)
		}

		if s.repo != nil {
			if err := s.repo.UpsertPoints(ctx, provider, v.Points); err != nil {
				return total, apperrors.DatabaseError("failed to persist cost points", err)
			}
		}

		metrics.RecordIngestedPoints(provider, source, v.Len())
		total += v.Len()
		s.log.Infof("ingested %d cost points for %s from %s", v.Len(), provider, source)
	}

	return total, nil
}

// Hydrate loads every persisted series into the in-memory store. A nil
// repository makes this a no-op.
func (s *CostService) Hydrate(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	providers, err := s.repo.Providers(ctx)
	if err != nil {
		return apperrors.DatabaseError("failed to list persisted providers", err)
	}

	for _, provider := range providers {
		series, err := s.repo.GetSeries(ctx, provider)
		if err != nil {
			return apperrors.DatabaseError("failed to load persisted series", err)
		}
		if series.Len() == 0 {
			continue
		}
		if err := s.store.Put(provider, series.Points); err != nil {
			return apperrors.Internal("failed to store persisted series", err)
		}
	}

	s.log.Infof("hydrated %d providers from storage", len(providers))
	return nil
}

// Series returns the stored series for a provider.
func (s *CostService) Series(provider string) (cost.Series, bool) {
	return s.store.Get(provider)
}

// Providers returns the providers with an ingested series.
func (s *CostService) Providers() []string {
	return s.store.Providers()
}
