package cost

import "context"

// Repository persists daily cost points.
type Repository interface {
	// UpsertPoints inserts or replaces daily cost points for a provider.
	UpsertPoints(ctx context.Context, provider string, points []Point) error

	// GetSeries retrieves the full stored series for a provider, ordered
	// by date. A provider with no stored points yields an empty series.
	GetSeries(ctx context.Context, provider string) (Series, error)

	// Providers returns every provider with stored cost points.
	Providers(ctx context.Context) ([]string, error)
}
