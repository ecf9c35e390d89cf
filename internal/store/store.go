// Package store holds the in-memory per-provider cost series that every
// detector reads from.
package store

import (
	"sort"
	"sync"

	"github.com/costwatch/costwatch/internal/domain/cost"
)

// TimeSeriesStore keeps one ordered cost series per provider. It is safe
// for concurrent use; detection runs for different providers never share
// series data.
type TimeSeriesStore struct {
	mu     sync.RWMutex
	series map[string]cost.Series
}

// New creates an empty TimeSeriesStore.
func New() *TimeSeriesStore {
	return &TimeSeriesStore{series: make(map[string]cost.Series)}
}

// Put validates and stores the daily cost points for a provider,
// replacing any existing series.
func (s *TimeSeriesStore) Put(provider string, points []cost.Point) error {
	series, err := cost.NewSeries(provider, points)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.series[provider] = series
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the provider's series. The second return value is
// false when the provider has no stored series.
func (s *TimeSeriesStore) Get(provider string) (cost.Series, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.series[provider]
	if !ok {
		return cost.Series{}, false
	}

	points := make([]cost.Point, len(series.Points))
	copy(points, series.Points)
	return cost.Series{Provider: series.Provider, Points: points}, true
}

// Providers returns the stored provider identifiers in sorted order.
func (s *TimeSeriesStore) Providers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	providers := make([]string, 0, len(s.series))
	for p := range s.series {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}
