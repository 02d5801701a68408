// Package masking computes time-frequency masks that separate a target source
// from a residual, given magnitude (and optionally phase) spectrograms, and
// applies them to a mixture spectrogram.
//
// # Features
//
//   - Ratio, amplitude, binary and upper-bound binary masks
//   - Wiener-like and generalized (α-power) Wiener masks
//   - Phase-sensitive and exponential masks
//   - Multichannel Wiener filtering with SVD-based pseudo-inverses via gonum
//   - Per-source exponent fitting against an Itakura-Saito objective
//   - Pure Go implementation with no CGO dependencies
//
// # Quick Start
//
// For a one-shot separation:
//
//	e, err := masking.New(&masking.Config{
//	    Mixture:  mix,
//	    Target:   target,
//	    Residual: []*masking.Spectrogram{noise},
//	    Alpha:    2,
//	    Method:   masking.MethodAlphaWiener,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	separated, err := e.Process(false) // keep the target
//	residual, err := e.Process(true)   // keep everything else
//
// Masks can also be computed and applied without an engine:
//
//	m, err := masking.IRM{}.ComputeMask(masking.Sources{Target: target, Residual: []*masking.Spectrogram{noise}})
//	out, err := masking.Apply(m, mix)
//
// # Methods
//
//   - [MethodIRM]: t / (ε + t + r)
//   - [MethodIAM]: t / (ε + r), with the mixture magnitude passed as residual
//   - [MethodIBM]: 1 where t^α / (ε + r^α) ≥ 0.5
//   - [MethodUBBM]: 1 where 20·ln(ε + (ε + t^α)/(ε + r^α)) ≥ 0
//   - [MethodWiener]: (t² + ε) / (ε + t² + Σ r²)
//   - [MethodAlphaWiener]: (t^α + ε) / (ε + t^α + Σ r^α)
//   - [MethodPhase]: 2 / (1 + exp(−(t / (ε + r))·cos(φt − φr))) − 1
//   - [MethodExpMask]: log(t^α) / log(r^α), applied as (x^α)^m
//   - [MethodMWF]: multichannel Wiener filter, see [MultichannelWiener]
//
// ε is the float64 machine epsilon. Every multiplicative mask m satisfies
// Apply(m, x) + ApplyReverse(m, x) = x.
//
// # Exponent Fitting
//
// [OptimizeExponents] and [Engine.OptimizeAlpha] fit one exponent per source
// so that Σ sᵢ^αᵢ approximates |x|^α₀. Steps grow by η+ after the loss falls
// and shrink by η− after it rises; exponents are clipped to [0.5, 2] and
// rounded to two decimals. The search stops when the loss stalls, rolling
// back to its best entry if the stalled loss is still high.
//
// # Thread Safety
//
// An [Engine] is not safe for concurrent use. The mask variants and the
// package-level functions hold no state and may be called concurrently.
package masking
