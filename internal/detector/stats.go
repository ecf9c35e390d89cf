package detector

import "math"

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev returns the sample standard deviation (n-1 denominator).
// Returns 0 for fewer than two values.
func stdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		diff := v - m
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(n-1))
}

// popStdDev returns the population standard deviation (n denominator),
// used where a feature vector needs a defined spread for a single point.
func popStdDev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		diff := v - m
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(n))
}

// quantile computes the q-th quantile (0..1) of values using linear
// interpolation between closest ranks. values must not be mutated, so a
// sorted copy is made.
func quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	insertionSort(sorted)

	pos := q * float64(n-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

func insertionSort(values []float64) {
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && values[j] < values[j-1]; j-- {
			values[j], values[j-1] = values[j-1], values[j]
		}
	}
}

func ptr(v float64) *float64 { return &v }

// deviationPercent returns the signed percent deviation of observed from
// expected, or nil when the baseline is zero.
func deviationPercent(observed, expected float64) *float64 {
	if expected <= 0 {
		return nil
	}
	return ptr((observed - expected) / expected * 100)
}
