package masking

// DefaultAlpha is the exponent applied to magnitudes when Config.Alpha is zero.
const DefaultAlpha = 1.2

// Mask decision thresholds
const (
	// ibmThreshold is the power ratio at or above which IBM keeps a bin.
	ibmThreshold = 0.5

	// ubbmThreshold is the log ratio at or above which UBBM keeps a bin.
	ubbmThreshold = 0.0

	// ubbmScale converts the natural-log ratio to the decision domain.
	ubbmScale = 20.0

	// wienerPower is the fixed exponent of the classic Wiener mask.
	wienerPower = 2.0
)

// Phase-sensitive mask
const (
	// sigmoidScale and sigmoidOffset map the logistic output from (0, 1) to (−1, 1).
	sigmoidScale  = 2.0
	sigmoidOffset = 1.0
)
