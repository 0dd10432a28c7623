package analytics

import (
	"math"
	"sort"
)

// ConversionRate is sold/views as a percentage; zero views yield 0.
func ConversionRate(sold, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return float64(sold) / float64(views) * 100
}

// Growth is the percentage change from base to current; a zero or negative base yields 0.
func Growth(base, current float64) float64 {
	if base <= 0 {
		return 0
	}
	return (current - base) / base * 100
}

// HalfGrowth compares the sum of the second half of values against the first. The split index is
// floor(len/2), so an odd middle element belongs to the second half.
func HalfGrowth(values []float64) float64 {
	mid := len(values) / 2
	return Growth(sum(values[:mid]), sum(values[mid:]))
}

func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func Percentage(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}

func Average(total float64, n int64) float64 {
	if n <= 0 {
		return 0
	}
	return total / float64(n)
}

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

// TopN returns the n largest items by key, descending. Equal keys keep their input order.
func TopN[T any](items []T, n int, key func(T) float64) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) > key(sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
