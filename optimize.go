package masking

import (
	"fmt"
	"log/slog"

	"github.com/tphakala/go-audio-masking/internal/rprop"
)

// Termination records why an exponent search ended.
type Termination = rprop.Termination

// Termination reasons.
const (
	TerminationExhausted    = rprop.TerminationExhausted
	TerminationLocalMinimum = rprop.TerminationLocalMinimum
	TerminationStuck        = rprop.TerminationStuck
)

// OptimizerOptions controls the exponent search. DefaultOptimizerOptions
// returns the reference values.
type OptimizerOptions struct {
	// MaxIterations caps the number of update steps.
	MaxIterations int

	// LearningRate is the initial per-source step size.
	LearningRate float64

	// EtaPlus and EtaMinus scale every step size after the loss falls or rises.
	EtaPlus  float64
	EtaMinus float64

	// InitialAlpha is the starting exponent for every source.
	InitialAlpha float64

	// MinAlpha and MaxAlpha bound the exponents.
	MinAlpha float64
	MaxAlpha float64

	// RoundDecimals is the decimal grid exponents snap to after each step.
	RoundDecimals int

	// StagnationTolerance is the loss change below which a step counts as stalled.
	StagnationTolerance float64

	// StuckLoss is the loss above which a stalled search rolls back to its best entry.
	StuckLoss float64

	// AdaptAfter is the iteration index after which step sizes adapt.
	AdaptAfter int

	// StagnationAfter is the iteration index after which stalls end the search.
	StagnationAfter int

	// Logger receives one Debug record per iteration and an Info record at the end.
	Logger *slog.Logger
}

// DefaultOptimizerOptions returns the reference search configuration:
// 200 iterations, learning rate 1.5e-3, η+ 1.1, η− 0.1, exponents starting
// at 1.15 within [0.5, 2] on a 0.01 grid.
func DefaultOptimizerOptions() OptimizerOptions {
	d := rprop.DefaultOptions()
	return OptimizerOptions{
		MaxIterations:       d.MaxIterations,
		LearningRate:        d.LearningRate,
		EtaPlus:             d.EtaPlus,
		EtaMinus:            d.EtaMinus,
		InitialAlpha:        d.InitialAlpha,
		MinAlpha:            d.MinAlpha,
		MaxAlpha:            d.MaxAlpha,
		RoundDecimals:       d.RoundDecimals,
		StagnationTolerance: d.StagnationTolerance,
		StuckLoss:           d.StuckLoss,
		AdaptAfter:          d.AdaptAfter,
		StagnationAfter:     d.StagnationAfter,
	}
}

func (o *OptimizerOptions) search() rprop.Options {
	return rprop.Options{
		MaxIterations:       o.MaxIterations,
		LearningRate:        o.LearningRate,
		EtaPlus:             o.EtaPlus,
		EtaMinus:            o.EtaMinus,
		InitialAlpha:        o.InitialAlpha,
		MinAlpha:            o.MinAlpha,
		MaxAlpha:            o.MaxAlpha,
		RoundDecimals:       o.RoundDecimals,
		StagnationTolerance: o.StagnationTolerance,
		StuckLoss:           o.StuckLoss,
		AdaptAfter:          o.AdaptAfter,
		StagnationAfter:     o.StagnationAfter,
		Epsilon:             Epsilon,
		Logger:              o.Logger,
	}
}

// OptimizationResult is the record of one exponent search.
type OptimizationResult struct {
	// Exponents holds the committed exponent per source: target first, then
	// each residual in order.
	Exponents []float64

	// Loss is the Itakura-Saito divergence at Exponents.
	Loss float64

	// Iterations is the number of update steps performed.
	Iterations int

	// LossHistory and ExponentHistory hold one entry per step.
	LossHistory     []float64
	ExponentHistory [][]float64

	// Termination tells which stopping rule fired.
	Termination Termination

	// Mask is the generalized Wiener mask under Exponents.
	Mask *Mask
}

// OptimizeExponents fits one exponent per source so that the sum of the
// sources' α-power spectrograms approximates the mixture raised to the
// target's exponent, minimizing the Itakura-Saito divergence.
func OptimizeExponents(mixture *Spectrogram, src Sources, opts OptimizerOptions) (*OptimizationResult, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := requireSameShape("mixture", src.Target, mixture); err != nil {
		return nil, err
	}

	sources := make([][]float64, 0, len(src.Residual)+1)
	sources = append(sources, src.Target.Data)
	for _, r := range src.Residual {
		sources = append(sources, r.Data)
	}

	res, err := rprop.Search(mixture.Data, sources, opts.search())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	gains := &Spectrogram{
		Channels: src.Target.Channels,
		Bins:     src.Target.Bins,
		Frames:   src.Target.Frames,
		Data:     res.Gains,
	}

	return &OptimizationResult{
		Exponents:       res.Exponents,
		Loss:            res.Loss,
		Iterations:      res.Iterations,
		LossHistory:     res.LossHistory,
		ExponentHistory: res.ExponentHistory,
		Termination:     res.Termination,
		Mask:            &Mask{Gains: gains, Rule: RuleMultiplicative},
	}, nil
}
