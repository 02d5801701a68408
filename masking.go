package masking

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tphakala/go-audio-masking/internal/mathutil"
)

// Epsilon is the float64 machine epsilon used to floor every denominator.
const Epsilon = mathutil.Epsilon

// Common errors returned by the engine.
var (
	// ErrInvalidConfig indicates invalid configuration parameters or inputs.
	ErrInvalidConfig = errors.New("invalid masking configuration")

	// ErrShapeMismatch indicates spectrograms whose dimensions disagree.
	ErrShapeMismatch = fmt.Errorf("%w: shape mismatch", ErrInvalidConfig)

	// ErrNotSupported indicates the requested operation is not supported.
	ErrNotSupported = errors.New("operation not supported")
)

// Config holds the inputs of a masking engine.
// The engine reads but never modifies the spectrograms it references.
type Config struct {
	// Mixture is the magnitude spectrogram the mask is applied to.
	Mixture *Spectrogram

	// Target is the magnitude spectrogram of the source to keep.
	Target *Spectrogram

	// Residual holds one or more interference components. Wiener and
	// alphaWiener sum all of them, MWF accepts exactly one, and the other
	// methods use the first.
	// For IAM the residual must be the mixture magnitude itself.
	Residual []*Spectrogram

	// TargetPhase and ResidualPhase are phase spectrograms in radians.
	// Only MethodPhase uses them, and it requires both.
	TargetPhase   *Spectrogram
	ResidualPhase *Spectrogram

	// Alpha is the magnitude exponent. Zero selects DefaultAlpha.
	Alpha float64

	// Method selects the masking algorithm.
	Method Method

	// Logger receives debug traces. Nil discards them.
	Logger *slog.Logger
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !c.Method.valid() {
		return fmt.Errorf("%w: unknown masking method %d", ErrInvalidConfig, int(c.Method))
	}

	// Phase inputs are checked first so a missing phase fails before anything else.
	if c.Method == MethodPhase && (c.TargetPhase.empty() || c.ResidualPhase.empty()) {
		return fmt.Errorf("%w: phase-sensitive masking requires target and residual phase", ErrInvalidConfig)
	}

	if c.Alpha < 0 {
		return fmt.Errorf("%w: alpha must be non-negative", ErrInvalidConfig)
	}

	if err := c.Mixture.Validate(); err != nil {
		return fmt.Errorf("mixture: %w", err)
	}

	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("target: %w", err)
	}

	if len(c.Residual) == 0 {
		return fmt.Errorf("%w: at least one residual spectrogram is required", ErrInvalidConfig)
	}

	for i, r := range c.Residual {
		if err := requireSameShape(fmt.Sprintf("residual %d", i), c.Target, r); err != nil {
			return err
		}
	}

	if c.Method == MethodMWF {
		return c.validateMultichannel()
	}

	if !c.Target.SameShape(c.Mixture) {
		return fmt.Errorf("%w: target is %s, mixture %s", ErrShapeMismatch, c.Target.Shape(), c.Mixture.Shape())
	}

	if c.Method == MethodPhase {
		if err := requireSameShape("target phase", c.Target, c.TargetPhase); err != nil {
			return err
		}
		if err := requireSameShape("residual phase", c.Target, c.ResidualPhase); err != nil {
			return err
		}
	}

	return nil
}

// validateMultichannel checks the MWF layout: a single residual, estimates
// sharing the mixture's bins and frames, and either one channel or as many
// as the mixture.
func (c *Config) validateMultichannel() error {
	if len(c.Residual) > 1 {
		return fmt.Errorf("%w: %s takes one residual estimate, got %d", ErrInvalidConfig, c.Method, len(c.Residual))
	}

	if c.Target.Bins != c.Mixture.Bins || c.Target.Frames != c.Mixture.Frames {
		return fmt.Errorf("%w: target is %s, mixture %s", ErrShapeMismatch, c.Target.Shape(), c.Mixture.Shape())
	}

	if c.Target.Channels != 1 && c.Target.Channels != c.Mixture.Channels {
		return fmt.Errorf("%w: %d estimated channels cannot steer %d mixture channels",
			ErrShapeMismatch, c.Target.Channels, c.Mixture.Channels)
	}

	return nil
}

// alpha returns the configured exponent or the default.
func (c *Config) alpha() float64 {
	if c.Alpha == 0 {
		return DefaultAlpha
	}
	return c.Alpha
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discardLogger()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
