// Package rprop fits per-source power-spectrogram exponents for generalized
// Wiener filtering.
//
// The model is the additive power spectrogram: the mixture raised to the
// target's exponent is approximated by Σ sᵢ^αᵢ. Exponents are fitted by
// gradient descent on the Itakura-Saito divergence with RProp-style step
// adaptation. Step sizes grow or shrink together, driven by the trend of the
// scalar loss rather than by the sign history of each source's gradient.
package rprop

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tphakala/go-audio-masking/internal/mathutil"
	"github.com/tphakala/go-audio-masking/internal/simdops"
)

// Errors returned by Search.
var (
	ErrNoSources      = errors.New("rprop: at least one source is required")
	ErrLengthMismatch = errors.New("rprop: mixture and sources differ in length")
)

// Termination records why a search ended.
type Termination int

const (
	// TerminationExhausted means the iteration cap was reached; the best entry is kept.
	TerminationExhausted Termination = iota

	// TerminationLocalMinimum means the loss stalled at an acceptable value.
	TerminationLocalMinimum

	// TerminationStuck means the loss stalled above the stuck threshold and
	// the search rolled back to its best entry.
	TerminationStuck
)

// String returns a short name for the termination reason.
func (t Termination) String() string {
	switch t {
	case TerminationExhausted:
		return "exhausted"
	case TerminationLocalMinimum:
		return "local-minimum"
	case TerminationStuck:
		return "stuck"
	default:
		return "unknown"
	}
}

// Result is the outcome of one search.
type Result struct {
	// Exponents holds the committed exponent per source, target first.
	Exponents []float64

	// Loss is the divergence associated with Exponents.
	Loss float64

	// Iterations is the number of update steps performed.
	Iterations int

	// LossHistory and ExponentHistory hold one entry per step.
	LossHistory     []float64
	ExponentHistory [][]float64

	// Termination tells which stopping rule fired.
	Termination Termination

	// Gains is the generalized Wiener gain of the first source under the
	// committed exponents: (s₀^α₀ + ε) / (Σ sᵢ^αᵢ + ε).
	Gains []float64
}

// state holds the transient per-search variables.
type state struct {
	alpha []float64
	lr    []float64
	grad  []float64

	xhat     []float64 // Σ sᵢ^αᵢ
	observed []float64 // |x|^α₀
	scratch  []float64

	divergence *mathutil.ItakuraSaito
	eps        float64
}

func newState(numSources, numBins int, opts *Options) *state {
	s := &state{
		alpha:      make([]float64, numSources),
		lr:         make([]float64, numSources),
		grad:       make([]float64, numSources),
		xhat:       make([]float64, numBins),
		observed:   make([]float64, numBins),
		scratch:    make([]float64, numBins),
		divergence: mathutil.NewItakuraSaito(numBins, opts.Epsilon),
		eps:        opts.Epsilon,
	}
	for i := range s.alpha {
		s.alpha[i] = opts.InitialAlpha
		s.lr[i] = opts.LearningRate
	}
	return s
}

// Search fits one exponent per source so that Σ sᵢ^αᵢ approximates |mixture|^α₀.
// sources[0] is the target. All slices are flattened spectrograms of equal length.
func Search(mixture []float64, sources [][]float64, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	n := len(mixture)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty mixture", ErrLengthMismatch)
	}
	for i, src := range sources {
		if len(src) != n {
			return nil, fmt.Errorf("%w: source %d has %d bins, mixture has %d",
				ErrLengthMismatch, i, len(src), n)
		}
	}

	logger := opts.logger()
	s := newState(len(sources), n, &opts)

	lossHistory := make([]float64, 0, opts.MaxIterations)
	alphaHistory := make([][]float64, 0, opts.MaxIterations)

	termination := TerminationExhausted
	var committed []float64
	var committedLoss float64
	iterations := 0

	for iter := range opts.MaxIterations {
		iterations = iter + 1

		// Gradient of the divergence at the current exponents
		s.evaluate(mixture, sources)
		dis := s.divergence.Derivative(s.observed, s.xhat)
		for k, src := range sources {
			s.grad[k] = dis * s.meanPowerLog(src, s.alpha[k])
		}

		// Simultaneous update, then clip and snap to the decimal grid
		for k := range s.alpha {
			next := s.alpha[k] - s.lr[k]*s.grad[k]
			next = mathutil.Clamp(next, opts.MinAlpha, opts.MaxAlpha)
			s.alpha[k] = mathutil.RoundTo(next, opts.RoundDecimals)
		}
		alphaHistory = append(alphaHistory, slices.Clone(s.alpha))

		s.evaluate(mixture, sources)
		loss := s.divergence.Loss(s.observed, s.xhat)
		lossHistory = append(lossHistory, loss)

		logger.Debug("optimizer iteration",
			"iteration", iter,
			"loss", loss,
			"alpha", s.alpha)

		if iter <= opts.AdaptAfter {
			continue
		}

		last := len(lossHistory) - 1
		improvement := lossHistory[last-1] - lossHistory[last]
		switch {
		case improvement > 0:
			floats.Scale(opts.EtaPlus, s.lr)
		case improvement < 0:
			floats.Scale(opts.EtaMinus, s.lr)
		}

		if iter <= opts.StagnationAfter {
			continue
		}

		if !stalled(lossHistory, opts.StagnationTolerance) {
			continue
		}

		if loss > opts.StuckLoss {
			best := floats.MinIdx(lossHistory)
			committed = alphaHistory[best]
			committedLoss = lossHistory[best]
			termination = TerminationStuck
		} else {
			committed = slices.Clone(s.alpha)
			committedLoss = loss
			termination = TerminationLocalMinimum
		}
		break
	}

	if termination == TerminationExhausted {
		best := floats.MinIdx(lossHistory)
		committed = alphaHistory[best]
		committedLoss = lossHistory[best]
	}

	logger.Info("optimizer finished",
		"reason", termination.String(),
		"loss", committedLoss,
		"alpha", committed,
		"iterations", iterations)

	return &Result{
		Exponents:       slices.Clone(committed),
		Loss:            committedLoss,
		Iterations:      iterations,
		LossHistory:     lossHistory,
		ExponentHistory: alphaHistory,
		Termination:     termination,
		Gains:           Gains(sources, committed, opts.Epsilon),
	}, nil
}

// Gains computes the generalized Wiener gain of sources[0] for the given exponents.
func Gains(sources [][]float64, alpha []float64, eps float64) []float64 {
	n := len(sources[0])
	target := make([]float64, n)
	total := make([]float64, n)
	scratch := make([]float64, n)

	power(target, sources[0], alpha[0])
	copy(total, target)
	for k, src := range sources[1:] {
		power(scratch, src, alpha[k+1])
		simdops.Add(total, total, scratch)
	}

	simdops.AddScalar(target, target, eps)
	simdops.AddScalar(total, total, eps)
	simdops.Div(target, target, total)
	return target
}

// evaluate refreshes the additive power estimate and the observed reference power.
func (s *state) evaluate(mixture []float64, sources [][]float64) {
	clear(s.xhat)
	for k, src := range sources {
		power(s.scratch, src, s.alpha[k])
		simdops.Add(s.xhat, s.xhat, s.scratch)
	}

	// The target's exponent doubles as the reference power of the mixture.
	for i, v := range mixture {
		s.observed[i] = math.Pow(math.Abs(v), s.alpha[0])
	}
}

// meanPowerLog returns mean(src^α · log(src + ε)), the spatially averaged
// derivative of src^α with respect to α.
func (s *state) meanPowerLog(src []float64, alpha float64) float64 {
	for i, v := range src {
		s.scratch[i] = math.Pow(v, alpha) * math.Log(v+s.eps)
	}
	return stat.Mean(s.scratch, nil)
}

// power sets dst[i] = a[i]^alpha.
func power(dst, a []float64, alpha float64) {
	for i, v := range a {
		dst[i] = math.Pow(v, alpha)
	}
}

// stalled reports whether the last two successive loss changes are both below tol.
func stalled(history []float64, tol float64) bool {
	n := len(history)
	if n < 3 {
		return false
	}
	return math.Abs(history[n-2]-history[n-1]) < tol &&
		math.Abs(history[n-3]-history[n-2]) < tol
}
