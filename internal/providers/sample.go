package providers

import (
	"math/rand"
	"time"

	"github.com/costwatch/costwatch/internal/domain/cost"
)

// Per-provider daily cost baselines for generated sample data.
var sampleProfiles = []struct {
	provider string
	base     float64
	spread   float64
}{
	{cost.ProviderAWS, 1000, 50},
	{cost.ProviderAzure, 800, 40},
	{cost.ProviderGCP, 600, 30},
	{cost.ProviderDigitalOcean, 200, 10},
}

// GenerateSample produces days of daily costs per provider ending
// yesterday, with planted spikes: day 15 for aws and azure, day 25 for
// gcp and digitalocean, plus occasional random aws spikes. The same seed
// always yields the same data.
func GenerateSample(days int, seed int64) map[string][]cost.Point {
	start := time.Now().UTC().AddDate(0, 0, -days)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	return GenerateSampleFrom(start, days, seed)
}

// GenerateSampleFrom is GenerateSample with an explicit first date.
func GenerateSampleFrom(start time.Time, days int, seed int64) map[string][]cost.Point {
	rng := rand.New(rand.NewSource(seed))

	series := make(map[string][]cost.Point, len(sampleProfiles))
	for _, p := range sampleProfiles {
		points := make([]cost.Point, days)
		for i := 0; i < days; i++ {
			c := p.base + p.spread*rng.NormFloat64()

			switch {
			case i == 15 && p.provider == cost.ProviderAWS:
				c *= 1.5
			case i == 15 && p.provider == cost.ProviderAzure:
				c *= 1.3
			case i == 25 && p.provider == cost.ProviderGCP:
				c *= 1.4
			case i == 25 && p.provider == cost.ProviderDigitalOcean:
				c *= 1.2
			case p.provider == cost.ProviderAWS && rng.Float64() < 0.05:
				c *= 1.2 + 0.6*rng.Float64()
			}

			if c < 0 {
				c = 0
			}
			points[i] = cost.Point{Date: start.AddDate(0, 0, i), Cost: c}
		}
		series[p.provider] = points
	}

	return series
}
