// Package stats holds the small set of descriptive statistics shared by the
// scoring packages. Every helper tolerates empty input and returns 0 for it.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev returns the population standard deviation of values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	_, std := stat.PopMeanStdDev(values, nil)
	return std
}

// CV returns the coefficient of variation (stddev / mean).
// A zero or negative mean yields 0.
func CV(values []float64) float64 {
	m := Mean(values)
	if m <= 0 {
		return 0
	}
	return StdDev(values) / m
}

// Consistency maps the coefficient of variation onto 0-100, where a constant
// series scores 100.
func Consistency(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Clamp(100*(1-CV(values)), 0, 100)
}

// Median returns the median of values without modifying the input.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Normalize linearly maps value from [min, max] onto [0, 100].
func Normalize(value, min, max float64) float64 {
	if max <= min {
		return 0
	}
	return Clamp((value-min)/(max-min)*100, 0, 100)
}

// InverseNormalize maps value from [min, max] onto [100, 0], so lower raw
// values (reaction times, error counts) score higher.
func InverseNormalize(value, min, max float64) float64 {
	if max <= min {
		return 0
	}
	return 100 - Normalize(value, min, max)
}

// Clamp bounds v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
