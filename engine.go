package masking

import (
	"fmt"
	"log/slog"
	"slices"
)

// Engine computes and applies one masking method to one set of inputs.
// It is not safe for concurrent use; separate engines share nothing.
type Engine struct {
	config Config
	alpha  float64
	masker Masker
	logger *slog.Logger

	mask         *Mask
	optimization *OptimizationResult
}

// New creates an engine for the given configuration.
func New(config *Config) (*Engine, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config: *config,
		alpha:  config.alpha(),
		logger: config.logger(),
	}
	e.config.Residual = slices.Clone(config.Residual)
	e.masker = newMasker(&e.config, e.alpha)

	return e, nil
}

// newMasker builds the variant for the configured method, or nil for MWF.
func newMasker(c *Config, alpha float64) Masker {
	switch c.Method {
	case MethodPhase:
		return PhaseSensitive{TargetPhase: c.TargetPhase, ResidualPhase: c.ResidualPhase}
	case MethodIRM:
		return IRM{}
	case MethodIAM:
		return IAM{}
	case MethodIBM:
		return IBM{Alpha: alpha}
	case MethodUBBM:
		return UBBM{Alpha: alpha}
	case MethodAlphaWiener:
		return AlphaWiener{Alpha: alpha}
	case MethodExpMask:
		return ExpMask{Alpha: alpha}
	case MethodMWF:
		return nil
	default:
		return Wiener{}
	}
}

// Method returns the configured masking method.
func (e *Engine) Method() Method {
	return e.config.Method
}

// Alpha returns the magnitude exponent in use.
func (e *Engine) Alpha() float64 {
	return e.alpha
}

// Sources returns the target and residual estimates the engine masks with.
func (e *Engine) Sources() Sources {
	return Sources{Target: e.config.Target, Residual: e.config.Residual}
}

// Process computes the mask and applies it to the mixture, or applies its
// complement when reverse is set. For MethodMWF it returns the filtered
// multichannel output instead and reverse is ignored.
func (e *Engine) Process(reverse bool) (*Spectrogram, error) {
	if e.config.Method == MethodMWF {
		e.logger.Debug("multichannel wiener filtering",
			"channels", e.config.Mixture.Channels,
			"estimated_channels", e.config.Target.Channels)
		return MultichannelWiener(e.config.Mixture, e.config.Target, e.config.Residual[0], e.alpha)
	}

	if reverse && e.config.Method.Exponential() {
		return nil, fmt.Errorf("%w: %s masks cannot be reversed", ErrNotSupported, e.config.Method)
	}

	if _, err := e.ComputeMask(); err != nil {
		return nil, err
	}

	return e.Apply(reverse)
}

// ComputeMask computes the configured mask and stores it as the engine's
// current mask. MethodMWF produces no mask and returns ErrNotSupported.
func (e *Engine) ComputeMask() (*Mask, error) {
	if e.masker == nil {
		return nil, fmt.Errorf("%w: %s does not produce a mask", ErrNotSupported, e.config.Method)
	}

	e.logger.Debug("computing mask", "method", e.config.Method.String(), "alpha", e.alpha)

	m, err := e.masker.ComputeMask(e.Sources())
	if err != nil {
		return nil, err
	}

	e.logger.Debug("mask computed", "method", e.config.Method.String(), "mean_gain", m.Gains.Mean())

	e.mask = m
	return m, nil
}

// Apply applies the current mask to the mixture, computing it first if
// needed. With reverse set the complementary mask is applied.
func (e *Engine) Apply(reverse bool) (*Spectrogram, error) {
	if e.mask == nil {
		if _, err := e.ComputeMask(); err != nil {
			return nil, err
		}
	}

	if reverse {
		return ApplyReverse(e.mask, e.config.Mixture)
	}
	return Apply(e.mask, e.config.Mixture)
}

// Mask returns the current mask, or nil before the first computation.
func (e *Engine) Mask() *Mask {
	return e.mask
}

// OptimizeAlpha fits per-source exponents against the mixture, stores the
// result and replaces the current mask with the generalized Wiener mask
// under the fitted exponents.
func (e *Engine) OptimizeAlpha(opts OptimizerOptions) (*OptimizationResult, error) {
	if e.config.Method == MethodMWF {
		return nil, fmt.Errorf("%w: exponent fitting needs single-shape inputs, not %s", ErrNotSupported, e.config.Method)
	}

	if opts.Logger == nil {
		opts.Logger = e.logger
	}

	res, err := OptimizeExponents(e.config.Mixture, e.Sources(), opts)
	if err != nil {
		return nil, err
	}

	e.optimization = res
	e.mask = res.Mask
	return res, nil
}

// Optimization returns the last exponent search result, or nil.
func (e *Engine) Optimization() *OptimizationResult {
	return e.optimization
}

// Exponents returns the fitted per-source exponents, or nil if no search ran.
func (e *Engine) Exponents() []float64 {
	if e.optimization == nil {
		return nil
	}
	return slices.Clone(e.optimization.Exponents)
}
