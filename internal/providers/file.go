package providers

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/costwatch/costwatch/internal/domain/cost"
)

// costFile is the on-disk format: a shared date axis plus one cost array
// per provider, all the same length.
//
//	{"dates": ["2025-06-02", ...], "aws": [1000.0, ...], "gcp": [...]}
type costFile struct {
	Dates []string `json:"dates"`
}

// LoadFile reads per-provider daily costs from a JSON file.
func LoadFile(path string) (map[string][]cost.Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cost file: %w", err)
	}

	var axis costFile
	if err := json.Unmarshal(data, &axis); err != nil {
		return nil, fmt.Errorf("failed to parse cost file: %w", err)
	}
	if len(axis.Dates) == 0 {
		return nil, fmt.Errorf("cost file %s has no dates", path)
	}

	dates := make([]time.Time, len(axis.Dates))
	for i, d := range axis.Dates {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q in cost file: %w", d, err)
		}
		dates[i] = parsed
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse cost file: %w", err)
	}

	series := make(map[string][]cost.Point)
	for provider, value := range raw {
		if provider == "dates" {
			continue
		}

		var costs []float64
		if err := json.Unmarshal(value, &costs); err != nil {
			return nil, fmt.Errorf("provider %q in cost file is not a cost array: %w", provider, err)
		}
		if len(costs) != len(dates) {
			return nil, fmt.Errorf("provider %q has %d costs for %d dates", provider, len(costs), len(dates))
		}

		points := make([]cost.Point, len(costs))
		for i, c := range costs {
			points[i] = cost.Point{Date: dates[i], Cost: c}
		}
		series[provider] = points
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("cost file %s has no provider series", path)
	}

	return series, nil
}
