package providers

import (
	"reflect"
	"testing"
	"time"

	"github.com/costwatch/costwatch/internal/domain/cost"
)

func TestGenerateSampleShape(t *testing.T) {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	series := GenerateSampleFrom(start, 90, 42)

	want := []string{cost.ProviderAWS, cost.ProviderAzure, cost.ProviderGCP, cost.ProviderDigitalOcean}
	for _, provider := range want {
		points, ok := series[provider]
		if !ok {
			t.Fatalf("missing provider %q", provider)
		}
		if len(points) != 90 {
			t.Errorf("%s has %d points, want 90", provider, len(points))
		}
		for i, p := range points {
			if p.Cost < 0 {
				t.Errorf("%s day %d has negative cost %v", provider, i, p.Cost)
			}
			if !p.Date.Equal(start.AddDate(0, 0, i)) {
				t.Errorf("%s day %d has date %v, want %v", provider, i, p.Date, start.AddDate(0, 0, i))
			}
		}
	}
}

func TestGenerateSampleDeterministic(t *testing.T) {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	first := GenerateSampleFrom(start, 90, 42)
	second := GenerateSampleFrom(start, 90, 42)
	if !reflect.DeepEqual(first, second) {
		t.Error("same seed produced different sample data")
	}

	other := GenerateSampleFrom(start, 90, 7)
	if reflect.DeepEqual(first, other) {
		t.Error("different seeds produced identical sample data")
	}
}

func TestGenerateSamplePlantedSpikes(t *testing.T) {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	series := GenerateSampleFrom(start, 90, 42)

	tests := []struct {
		provider string
		day      int
		base     float64
		factor   float64
	}{
		{cost.ProviderAWS, 15, 1000, 1.5},
		{cost.ProviderAzure, 15, 800, 1.3},
		{cost.ProviderGCP, 25, 600, 1.4},
		{cost.ProviderDigitalOcean, 25, 200, 1.2},
	}
	for _, tt := range tests {
		got := series[tt.provider][tt.day].Cost
		// The spike multiplies a noisy baseline; allow a generous band
		// around base*factor.
		low := tt.base * tt.factor * 0.7
		if got < low {
			t.Errorf("%s day %d cost = %v, want at least %v (planted spike)", tt.provider, tt.day, got, low)
		}
	}
}
