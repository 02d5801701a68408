// Package testutil provides reusable test helper functions for masking tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	// DefaultTolerance bounds closed-form gain and mask comparisons.
	DefaultTolerance = 1e-10

	// LooseTolerance bounds results that pass through an FFT, a matrix
	// factorization or integer PCM.
	LooseTolerance = 1e-9
)

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange(t *testing.T, s []float64, minVal, maxVal float64) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}

// AssertBinary verifies that every element is exactly 0 or 1.
func AssertBinary(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if v != 0 && v != 1 {
			return assert.Fail(t, "value not binary", "s[%d]=%v is neither 0 nor 1", i, v)
		}
	}
	return true
}

// AssertAllInDelta verifies that every element is within tolerance of expected.
func AssertAllInDelta(t *testing.T, expected float64, s []float64, tolerance float64) bool {
	t.Helper()
	for i, v := range s {
		if !assert.InDelta(t, expected, v, tolerance, "s[%d]=%v, want %v", i, v, expected) {
			return false
		}
	}
	return true
}

// AssertSlicesInDelta verifies element-wise closeness of two equal-length slices.
func AssertSlicesInDelta(t *testing.T, expected, actual []float64, tolerance float64) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected)) {
		return false
	}
	for i := range expected {
		if !assert.InDelta(t, expected[i], actual[i], tolerance,
			"index %d: got %v, want %v", i, actual[i], expected[i]) {
			return false
		}
	}
	return true
}

// AssertNonIncreasing verifies that a slice never increases.
func AssertNonIncreasing(t *testing.T, s []float64) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] > s[i-1] {
			return assert.Fail(t, "not non-increasing",
				"s[%d]=%v > s[%d]=%v", i, s[i], i-1, s[i-1])
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// RunningMin returns the best-so-far sequence of s.
func RunningMin(s []float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		if i == 0 || v < out[i-1] {
			out[i] = v
		} else {
			out[i] = out[i-1]
		}
	}
	return out
}
