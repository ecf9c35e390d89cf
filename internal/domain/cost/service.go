package cost

import "context"

// Service manages ingestion of per-provider daily cost series.
type Service interface {
	// Ingest validates the given series and makes them available to
	// detection, replacing any existing series for the same providers.
	// Returns the number of ingested points.
	Ingest(ctx context.Context, source string, series map[string][]Point) (int, error)

	// Hydrate loads every persisted series into the in-memory store.
	Hydrate(ctx context.Context) error

	// Series returns the stored series for a provider.
	Series(provider string) (Series, bool)

	// Providers returns the providers with an ingested series.
	Providers() []string
}
