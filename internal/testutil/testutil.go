// Package testutil provides fixtures shared by detector and service
// tests.
package testutil

import (
	"math"
	"time"

	"github.com/costwatch/costwatch/internal/domain/cost"
)

// Start is the first date of every generated test series: a Monday, so
// day-of-week assertions line up.
var Start = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

// Series builds a validated series from consecutive daily costs starting
// at Start. Panics on invalid input; tests construct only valid data.
func Series(provider string, costs []float64) cost.Series {
	points := make([]cost.Point, len(costs))
	for i, c := range costs {
		points[i] = cost.Point{Date: Start.AddDate(0, 0, i), Cost: c}
	}
	s, err := cost.NewSeries(provider, points)
	if err != nil {
		panic(err)
	}
	return s
}

// ConstantCosts returns days copies of value.
func ConstantCosts(days int, value float64) []float64 {
	costs := make([]float64, days)
	for i := range costs {
		costs[i] = value
	}
	return costs
}

// NoisyCosts returns days values of base plus deterministic bounded noise
// (amplitude ±noise), the same on every run.
func NoisyCosts(days int, base, noise float64) []float64 {
	costs := make([]float64, days)
	for i := range costs {
		costs[i] = base + noise*math.Sin(float64(i))
	}
	return costs
}

// WeeklyPattern returns days values where every Monday (offset 0 mod 7
// from Start) costs mondayCost and all other days cost weekdayCost.
func WeeklyPattern(days int, mondayCost, weekdayCost float64) []float64 {
	costs := make([]float64, days)
	for i := range costs {
		if i%7 == 0 {
			costs[i] = mondayCost
		} else {
			costs[i] = weekdayCost
		}
	}
	return costs
}
