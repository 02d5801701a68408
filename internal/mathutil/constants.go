package mathutil

// Bessel series constants
const (
	// Relative size below which a series term no longer changes the sum
	besselSeriesTolerance = 1e-17

	// Hard cap on series terms; I₀ converges well before this for |x| < 700
	besselMaxTerms = 500

	halfDivisor = 2.0
)

// Kaiser β formula constants (Kaiser & Schafer)
const (
	kaiserAttHigh   = 50.0 // High attenuation threshold (dB)
	kaiserAttMedium = 21.0 // Medium attenuation threshold (dB)

	kaiserBetaHighCoeff = 0.1102 // Coefficient for high attenuation
	kaiserBetaHighShift = 8.7    // Offset for high attenuation

	kaiserBetaMediumCoeff1 = 0.5842  // Primary coefficient for medium attenuation
	kaiserBetaMediumPower  = 0.4     // Power for medium attenuation formula
	kaiserBetaMediumCoeff2 = 0.07886 // Secondary coefficient for medium attenuation
)

// Pseudo-inverse constants
const (
	// Singular values below pinvRcond * σmax are treated as zero.
	pinvRcond = 1e-15
)
