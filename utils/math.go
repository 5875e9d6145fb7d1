// Package utils contains shared math helpers used by the controller and
// reward code.
package utils

import "math"

// Float64AlmostEqual returns true if v1 and v2 are within epsilon of each other.
func Float64AlmostEqual(v1, v2, epsilon float64) bool {
	return math.Abs(v1-v2) < epsilon
}

// ClipToRange clips a value to be within the given range.
func ClipToRange(value, min, max float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// ClipSliceToRange clips each element of values in place to its
// corresponding bounds and returns the slice.
func ClipSliceToRange(values, min, max []float64) []float64 {
	for i := range values {
		values[i] = ClipToRange(values[i], min[i], max[i])
	}
	return values
}
