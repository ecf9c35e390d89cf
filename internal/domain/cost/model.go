package cost

import (
	"fmt"
	"sort"
	"time"
)

// Provider constants
const (
	ProviderAWS          = "aws"
	ProviderGCP          = "gcp"
	ProviderAzure        = "azure"
	ProviderDigitalOcean = "digitalocean"
)

// Point is a single daily cost observation.
type Point struct {
	Date time.Time `json:"date"`
	Cost float64   `json:"cost"`
}

// Series holds the ordered daily cost history for one provider.
// Dates are strictly increasing and unique; costs are non-negative.
type Series struct {
	Provider string  `json:"provider"`
	Points   []Point `json:"points"`
}

// NewSeries validates and normalizes a set of daily cost points into a
// Series. Points are sorted by date; duplicate dates and negative costs
// are rejected.
func NewSeries(provider string, points []Point) (Series, error) {
	if provider == "" {
		return Series{}, fmt.Errorf("provider is required")
	}

	normalized := make([]Point, len(points))
	for i, p := range points {
		if p.Cost < 0 {
			return Series{}, fmt.Errorf("negative cost %.2f on %s", p.Cost, p.Date.Format("2006-01-02"))
		}
		normalized[i] = Point{Date: day(p.Date), Cost: p.Cost}
	}

	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].Date.Before(normalized[j].Date)
	})

	for i := 1; i < len(normalized); i++ {
		if normalized[i].Date.Equal(normalized[i-1].Date) {
			return Series{}, fmt.Errorf("duplicate date %s", normalized[i].Date.Format("2006-01-02"))
		}
	}

	return Series{Provider: provider, Points: normalized}, nil
}

// Len returns the number of points in the series.
func (s Series) Len() int { return len(s.Points) }

// Costs returns the cost values in date order.
func (s Series) Costs() []float64 {
	costs := make([]float64, len(s.Points))
	for i, p := range s.Points {
		costs[i] = p.Cost
	}
	return costs
}

// day truncates a timestamp to midnight UTC.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
