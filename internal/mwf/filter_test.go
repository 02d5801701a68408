package mwf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-masking/internal/testutil"
)

func tensor(channels, bins, frames int, fill func(c, f, t int) float64) Tensor {
	data := make([]float64, channels*bins*frames)
	for c := range channels {
		for f := range bins {
			for t := range frames {
				data[(c*bins+f)*frames+t] = fill(c, f, t)
			}
		}
	}
	return Tensor{Channels: channels, Bins: bins, Frames: frames, Data: data}
}

func constant(channels, bins, frames int, v float64) Tensor {
	return tensor(channels, bins, frames, func(int, int, int) float64 { return v })
}

// TestApplyScalarCase: with one channel, one bin and one frame the filter reduces
// to a single real gain. For unit target and residual powers Rxx = Rnn = 1,
// inv = 2 and W = (2 − 1) / (2 + 2).
func TestApplyScalarCase(t *testing.T) {
	out, err := Apply(constant(1, 1, 1, 2), constant(1, 1, 1, 1), constant(1, 1, 1, 1), Params{Alpha: 1})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.5, out[0], 1e-12)
}

func TestApplySingleChannelGainIsBounded(t *testing.T) {
	const bins, frames = 8, 12
	target := tensor(1, bins, frames, func(_, f, t int) float64 { return 0.2 + float64((f*7+t*3)%11)/4 })
	residual := tensor(1, bins, frames, func(_, f, t int) float64 { return 0.1 + float64((f*5+t)%13)/5 })
	mixture := tensor(1, bins, frames, func(_, f, t int) float64 {
		return target.at(0, f, t) + residual.at(0, f, t)
	})

	out, err := Apply(mixture, target, residual, Params{Alpha: 2})
	require.NoError(t, err)
	require.Len(t, out, len(mixture.Data))

	gains := make([]float64, len(out))
	for i := range out {
		gains[i] = out[i] / mixture.Data[i]
	}
	testutil.AssertNoNaNOrInf(t, gains)
	testutil.AssertAllInRange(t, gains, 0, 1)
}

func TestApplySingleEstimateSteersAllChannels(t *testing.T) {
	const channels, bins, frames = 3, 4, 5
	mixture := tensor(channels, bins, frames, func(c, f, t int) float64 { return 1 + float64(c+f+t)/10 })
	target := constant(1, bins, frames, 0.8)
	residual := constant(1, bins, frames, 0.3)

	out, err := Apply(mixture, target, residual, Params{Alpha: 1.2})
	require.NoError(t, err)
	assert.Len(t, out, channels*bins*frames)
	testutil.AssertNoNaNOrInf(t, out)
	testutil.AssertAllInRange(t, out, 0, 1e6)
}

func TestApplyMultichannelEstimates(t *testing.T) {
	const channels, bins, frames = 2, 3, 4
	mixture := tensor(channels, bins, frames, func(c, f, t int) float64 { return 1 + float64(c*f+t) })
	target := tensor(channels, bins, frames, func(c, f, t int) float64 { return 0.5 + float64(c+t)/3 })
	residual := tensor(channels, bins, frames, func(c, f, t int) float64 { return 0.2 + float64(f+c)/4 })

	out, err := Apply(mixture, target, residual, Params{Alpha: 1})
	require.NoError(t, err)
	assert.Len(t, out, channels*bins*frames)
	testutil.AssertNoNaNOrInf(t, out)
}

// TestApplySilentTargetMultichannel: with a silent target and equal residual
// channels, W projects onto the residual direction and cancels the mixture.
func TestApplySilentTargetMultichannel(t *testing.T) {
	const channels, bins, frames = 2, 2, 2
	mixture := constant(channels, bins, frames, 1)
	target := constant(channels, bins, frames, 0)
	residual := constant(channels, bins, frames, 1)

	out, err := Apply(mixture, target, residual, Params{Alpha: 1})
	require.NoError(t, err)
	assert.Len(t, out, channels*bins*frames)
	testutil.AssertAllInDelta(t, 0, out, testutil.LooseTolerance)
}

// TestApplySilentResidualFrame: a silent residual frame leaves Rnn at zero, so
// its pseudo-inverse vanishes and the frame passes the mixture through.
func TestApplySilentResidualFrame(t *testing.T) {
	const channels, bins, frames = 2, 1, 2
	mixture := constant(channels, bins, frames, 1)
	target := constant(channels, bins, frames, 1)
	residual := tensor(channels, bins, frames, func(_, _, t int) float64 {
		if t == 0 {
			return 0.5
		}
		return 0
	})

	out, err := Apply(mixture, target, residual, Params{Alpha: 1.2})
	require.NoError(t, err)
	testutil.AssertNoNaNOrInf(t, out)
	for c := range channels {
		assert.InDelta(t, 1.0, out[(c*bins)*frames+1], 1e-12, "channel %d", c)
	}
}

func TestApplyForgettingFactor(t *testing.T) {
	mixture := constant(1, 1, 2, 2)
	target := constant(1, 1, 2, 1)
	residual := constant(1, 1, 2, 1)

	// λ = 0.5 still converges to Rxx = Rnn = 1 for constant unit powers.
	out, err := Apply(mixture, target, residual, Params{Alpha: 1, Forgetting: 0.5})
	require.NoError(t, err)
	testutil.AssertAllInDelta(t, 0.5, out, testutil.DefaultTolerance)
}

func TestApplyRejectsInconsistentShapes(t *testing.T) {
	tests := []struct {
		name                       string
		mixture, target, residual Tensor
	}{
		{"target vs residual", constant(1, 2, 2, 1), constant(1, 2, 2, 1), constant(1, 2, 3, 1)},
		{"bins vs mixture", constant(1, 3, 2, 1), constant(1, 2, 2, 1), constant(1, 2, 2, 1)},
		{"channel steering", constant(3, 2, 2, 1), constant(2, 2, 2, 1), constant(2, 2, 2, 1)},
		{"bad data length", Tensor{Channels: 1, Bins: 2, Frames: 2, Data: []float64{1}}, constant(1, 2, 2, 1), constant(1, 2, 2, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(tt.mixture, tt.target, tt.residual, Params{Alpha: 1})
			require.ErrorIs(t, err, ErrShape)
		})
	}
}
