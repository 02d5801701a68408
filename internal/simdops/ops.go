// Package simdops provides the SIMD-accelerated element-wise kernels and
// reductions used by spectrogram arithmetic. All spectrogram data is float64,
// so only the f64 kernels are wired.
package simdops

import (
	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f64"
)

// Sum returns the sum of all elements.
func Sum(a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return f64.Sum(a)
}

// Mean returns the arithmetic mean of all elements, or 0 for an empty slice.
func Mean(a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return f64.Mean(a)
}

// Add computes element-wise addition: dst[i] = a[i] + b[i]
func Add(dst, a, b []float64) {
	if len(a) == 0 {
		return
	}
	f64.Add(dst, a, b)
}

// Sub computes element-wise subtraction: dst[i] = a[i] - b[i]
func Sub(dst, a, b []float64) {
	if len(a) == 0 {
		return
	}
	f64.Sub(dst, a, b)
}

// Mul computes element-wise multiplication: dst[i] = a[i] * b[i]
func Mul(dst, a, b []float64) {
	if len(a) == 0 {
		return
	}
	f64.Mul(dst, a, b)
}

// Div computes element-wise division: dst[i] = a[i] / b[i]
func Div(dst, a, b []float64) {
	if len(a) == 0 {
		return
	}
	f64.Div(dst, a, b)
}

// AddScalar adds scalar s to each element: dst[i] = a[i] + s
func AddScalar(dst, a []float64, s float64) {
	if len(a) == 0 {
		return
	}
	f64.AddScalar(dst, a, s)
}

// Scale multiplies each element by scalar s: dst[i] = a[i] * s
func Scale(dst, a []float64, s float64) {
	if len(a) == 0 {
		return
	}
	f64.Scale(dst, a, s)
}

// Energy returns the dot product of a with itself.
func Energy(a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return f64.DotProduct(a, a)
}

// Info describes the SIMD instruction set detected at runtime.
func Info() string {
	return cpu.Info()
}
