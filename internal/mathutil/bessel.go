// Package mathutil provides the numerical helpers shared by the masking engine,
// the exponent optimizer and the multichannel filter.
package mathutil

import "math"

// BesselI0 computes the modified Bessel function of the first kind, order zero: I₀(x).
// It is used by the Kaiser analysis window.
//
// The power series I₀(x) = Σ ((x/2)^k / k!)² is summed until the next term is
// negligible relative to the partial sum. All terms are positive, so the
// summation has no cancellation error.
func BesselI0(x float64) float64 {
	half := math.Abs(x) / halfDivisor
	sum := 1.0
	term := 1.0
	for k := 1; k <= besselMaxTerms; k++ {
		f := half / float64(k)
		term *= f * f
		sum += term
		if term < besselSeriesTolerance*sum {
			break
		}
	}
	return sum
}

// KaiserBeta computes the Kaiser window β parameter from the desired
// sidelobe attenuation in decibels.
//
//   - att > 50 dB:        β = 0.1102·(att − 8.7)
//   - 21 dB ≤ att ≤ 50 dB: β = 0.5842·(att − 21)^0.4 + 0.07886·(att − 21)
//   - att < 21 dB:        β = 0
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff * (attenuation - kaiserBetaHighShift)
	case attenuation >= kaiserAttMedium:
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	default:
		return 0
	}
}
