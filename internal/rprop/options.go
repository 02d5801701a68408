package rprop

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tphakala/go-audio-masking/internal/mathutil"
)

// ErrInvalidOptions indicates an unusable search configuration.
var ErrInvalidOptions = errors.New("rprop: invalid options")

// Options controls the exponent search.
type Options struct {
	// MaxIterations caps the number of update steps.
	MaxIterations int

	// LearningRate is the initial per-source step size.
	LearningRate float64

	// EtaPlus multiplies all step sizes after a step that lowered the loss.
	EtaPlus float64

	// EtaMinus multiplies all step sizes after a step that raised the loss.
	EtaMinus float64

	// InitialAlpha is the starting exponent for every source.
	InitialAlpha float64

	// MinAlpha and MaxAlpha bound the exponent search space.
	MinAlpha float64
	MaxAlpha float64

	// RoundDecimals is the decimal grid exponents are rounded to after each step.
	RoundDecimals int

	// StagnationTolerance is the loss change below which a step counts as stalled.
	StagnationTolerance float64

	// StuckLoss is the loss above which a stalled search rolls back to its best entry.
	StuckLoss float64

	// AdaptAfter is the iteration index after which step sizes adapt.
	AdaptAfter int

	// StagnationAfter is the iteration index after which stalls end the search.
	StagnationAfter int

	// Epsilon floors every denominator and logarithm argument.
	Epsilon float64

	// Logger receives per-iteration traces. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns the reference search configuration.
func DefaultOptions() Options {
	return Options{
		MaxIterations:       defaultMaxIterations,
		LearningRate:        defaultLearningRate,
		EtaPlus:             defaultEtaPlus,
		EtaMinus:            defaultEtaMinus,
		InitialAlpha:        defaultInitialAlpha,
		MinAlpha:            defaultMinAlpha,
		MaxAlpha:            defaultMaxAlpha,
		RoundDecimals:       defaultRoundDecimals,
		StagnationTolerance: defaultStagnationTolerance,
		StuckLoss:           defaultStuckLoss,
		AdaptAfter:          defaultAdaptAfter,
		StagnationAfter:     defaultStagnationAfter,
		Epsilon:             mathutil.Epsilon,
	}
}

// Validate checks if the options are usable.
func (o *Options) Validate() error {
	if o.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations must be at least 1", ErrInvalidOptions)
	}

	if o.LearningRate <= 0 {
		return fmt.Errorf("%w: learning rate must be positive", ErrInvalidOptions)
	}

	if o.EtaPlus <= 0 || o.EtaMinus <= 0 {
		return fmt.Errorf("%w: step multipliers must be positive", ErrInvalidOptions)
	}

	if o.MinAlpha <= 0 || o.MaxAlpha < o.MinAlpha {
		return fmt.Errorf("%w: exponent bounds must satisfy 0 < min <= max", ErrInvalidOptions)
	}

	if o.InitialAlpha < o.MinAlpha || o.InitialAlpha > o.MaxAlpha {
		return fmt.Errorf("%w: initial exponent %v outside [%v, %v]",
			ErrInvalidOptions, o.InitialAlpha, o.MinAlpha, o.MaxAlpha)
	}

	if o.RoundDecimals < 0 {
		return fmt.Errorf("%w: round decimals must be non-negative", ErrInvalidOptions)
	}

	if o.StagnationTolerance < 0 {
		return fmt.Errorf("%w: stagnation tolerance must be non-negative", ErrInvalidOptions)
	}

	// Step adaptation compares two losses, stall detection three.
	if o.AdaptAfter < 0 || o.StagnationAfter < 1 {
		return fmt.Errorf("%w: adapt-after must be >= 0 and stagnation-after >= 1", ErrInvalidOptions)
	}

	if o.Epsilon <= 0 {
		return fmt.Errorf("%w: epsilon must be positive", ErrInvalidOptions)
	}

	return nil
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
