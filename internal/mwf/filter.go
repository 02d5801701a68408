// Package mwf implements the multichannel Wiener filter.
//
// Reference: I. Cohen, J. Benesty, and S. Gannot, "Speech Processing in Modern
// Communication", Springer, 2010, chapter 9.
package mwf

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tphakala/go-audio-masking/internal/mathutil"
)

// Filter constants
const (
	// Forgetting factor for the recursive single-estimate covariance update
	defaultForgetting = 0.99

	// Floor used inside the single-estimate power ratio
	ratioFloor = 1e-16
)

// ErrShape indicates inconsistent tensor dimensions.
var ErrShape = errors.New("mwf: inconsistent dimensions")

// Tensor is a read-only view of a channels × bins × frames array stored row-major.
type Tensor struct {
	Channels, Bins, Frames int
	Data                   []float64
}

func (t Tensor) at(c, f, n int) float64 {
	return t.Data[(c*t.Bins+f)*t.Frames+n]
}

func (t Tensor) valid() bool {
	return t.Channels > 0 && t.Bins > 0 && t.Frames > 0 &&
		len(t.Data) == t.Channels*t.Bins*t.Frames
}

// Params configures a filter pass.
type Params struct {
	// Alpha is the power applied to the target and residual magnitudes.
	Alpha float64

	// Forgetting is λ in R ← λR + (1−λ)·c for single-estimate inputs.
	// Zero selects the default of 0.99.
	Forgetting float64
}

// covariance holds the per-frequency Rxx / Rnn pair.
type covariance struct {
	rxx []*mat.Dense
	rnn []*mat.Dense
}

func newCovariance(channels, bins int) *covariance {
	c := &covariance{
		rxx: make([]*mat.Dense, bins),
		rnn: make([]*mat.Dense, bins),
	}
	for f := range bins {
		c.rxx[f] = identity(channels)
		c.rnn[f] = identity(channels)
	}
	return c
}

// Apply filters the observed mixture with covariances estimated from the
// target and residual magnitudes and returns |output| with the mixture's shape.
//
// target and residual must share a shape whose bins and frames match the
// mixture. Their channel count is either 1 (one estimate steering every
// observed channel, recursive covariance) or equal to the mixture's
// (memoryless outer-product covariance per frame). In the latter case a frame
// whose residual is silent passes the mixture through unchanged.
func Apply(mixture, target, residual Tensor, params Params) ([]float64, error) {
	if !mixture.valid() || !target.valid() || !residual.valid() {
		return nil, fmt.Errorf("%w: tensor data does not match its dimensions", ErrShape)
	}

	if target.Channels != residual.Channels || target.Bins != residual.Bins || target.Frames != residual.Frames {
		return nil, fmt.Errorf("%w: target %dx%dx%d vs residual %dx%dx%d", ErrShape,
			target.Channels, target.Bins, target.Frames,
			residual.Channels, residual.Bins, residual.Frames)
	}

	if target.Bins != mixture.Bins || target.Frames != mixture.Frames {
		return nil, fmt.Errorf("%w: estimates have %d bins x %d frames, mixture %d x %d", ErrShape,
			target.Bins, target.Frames, mixture.Bins, mixture.Frames)
	}

	m := mixture.Channels
	em := target.Channels
	if em != 1 && em != m {
		return nil, fmt.Errorf("%w: %d estimated channels cannot steer %d observed channels", ErrShape, em, m)
	}

	lambda := params.Forgetting
	if lambda == 0 {
		lambda = defaultForgetting
	}

	cx := power(target, params.Alpha)
	cn := power(residual, params.Alpha)

	bins, frames := mixture.Bins, mixture.Frames
	gain := 1 / float64(m)
	eye := identity(m)
	cov := newCovariance(m, bins)

	out := make([]float64, len(mixture.Data))
	xVec := mat.NewVecDense(m, nil)
	cxVec := mat.NewVecDense(em, nil)
	cnVec := mat.NewVecDense(em, nil)

	var sum, inv, w mat.Dense
	var y mat.VecDense

	for t := range frames {
		for f := range bins {
			for c := range em {
				cxVec.SetVec(c, cx.at(c, f, t))
				cnVec.SetVec(c, cn.at(c, f, t))
			}

			rxx, rnn := cov.rxx[f], cov.rnn[f]
			if em == 1 {
				forget(rxx, lambda, cxVec.AtVec(0))
				forget(rnn, lambda, cnVec.AtVec(0))
			} else {
				outerNormalized(rxx, cxVec)
				outerNormalized(rnn, cnVec)
			}

			p, err := mathutil.PseudoInverse(rnn)
			if err != nil {
				return nil, fmt.Errorf("bin %d frame %d: %w", f, t, err)
			}

			// inv = Rnn⁺ · (Rnn + Rxx)
			sum.Add(rnn, rxx)
			inv.Mul(p, &sum)

			for c := range m {
				xVec.SetVec(c, mixture.at(c, f, t))
			}

			denom := mat.Trace(&inv) * gain
			if em > 1 && denom <= mathutil.Epsilon {
				// Rnn⁺ vanishes on a silent residual frame; nothing is left to suppress.
				for c := range m {
					out[(c*bins+f)*frames+t] = math.Abs(xVec.AtVec(c))
				}
				continue
			}
			if em == 1 {
				x, n := cxVec.AtVec(0), cnVec.AtVec(0)
				denom += (n + x + ratioFloor) / (x + ratioFloor)
			}

			w.Sub(&inv, eye)
			w.Scale(1/denom, &w)

			y.MulVec(w.T(), xVec)

			for c := range m {
				out[(c*bins+f)*frames+t] = math.Abs(y.AtVec(c))
			}
		}
	}

	return out, nil
}

// power returns a copy of t with every element raised to alpha.
func power(t Tensor, alpha float64) Tensor {
	data := make([]float64, len(t.Data))
	for i, v := range t.Data {
		data[i] = math.Pow(v, alpha)
	}
	return Tensor{Channels: t.Channels, Bins: t.Bins, Frames: t.Frames, Data: data}
}

// forget applies R ← λR + (1−λ)·c with the scalar c added to every entry.
func forget(r *mat.Dense, lambda, c float64) {
	rows, cols := r.Dims()
	for i := range rows {
		for j := range cols {
			r.Set(i, j, lambda*r.At(i, j)+(1-lambda)*c)
		}
	}
}

// outerNormalized sets R = c·cᵀ / Σc. The sum is floored by ε so that
// silent frames give a zero matrix instead of NaNs.
func outerNormalized(r *mat.Dense, c *mat.VecDense) {
	total := mathutil.Epsilon
	for i := range c.Len() {
		total += c.AtVec(i)
	}
	r.Outer(1/total, c, c)
}

func identity(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := range n {
		d.Set(i, i, 1)
	}
	return d
}
