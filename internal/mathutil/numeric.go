package mathutil

import "math"

// Epsilon is the machine epsilon for float64, the smallest ε with 1 + ε != 1.
// Every denominator in the masking code is floored by it.
const Epsilon = 0x1p-52

// Clamp limits x to the closed interval [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}

// RoundTo rounds x to the given number of decimal places using
// round-half-to-even, so exponent grids stay unbiased.
func RoundTo(x float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.RoundToEven(x*scale) / scale
}

// SNR returns the signal-to-noise ratio of estimate against reference in dB,
// over the common prefix of both signals. A perfect estimate gives +Inf.
func SNR(reference, estimate []float64) float64 {
	n := min(len(reference), len(estimate))
	var signal, noise float64
	for i := range n {
		d := reference[i] - estimate[i]
		signal += reference[i] * reference[i]
		noise += d * d
	}
	if noise == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(signal/noise)
}
