package aggregate

import (
	"math"
	"sort"
)

// Percentile returns the nearest-rank percentile of the values: the input
// is sorted ascending and indexed at floor(count * p), clamped to
// [0, count-1]. No interpolation is applied, so exact expected values are
// stable in tests (for 100 values [1..100], p=0.5 selects index 50, the
// value 51). Returns 0 for an empty input.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := int(math.Floor(float64(len(sorted)) * p))
	if idx < 0 {
		idx = 0
	}
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}

	return sorted[idx]
}

// safeMean averages the values excluding non-positive entries, which are
// treated as "not measured" rather than measured-as-zero. Returns 0 when
// no positive value exists.
func safeMean(values []float64) float64 {
	var sum float64
	var count int
	for _, v := range values {
		if v > 0 {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// maxValue returns the largest value, or 0 for an empty input.
func maxValue(values []float64) float64 {
	var m float64
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}
