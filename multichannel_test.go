package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-masking/internal/testutil"
)

func TestMultichannelWienerSingleBin(t *testing.T) {
	out, err := MultichannelWiener(Full(1, 1, 1, 2), Full(1, 1, 1, 1), Full(1, 1, 1, 1), 1)
	require.NoError(t, err)

	gain := out.Data[0] / 2
	assert.InDelta(t, 0.25, gain, 1e-12)
	testutil.AssertAllInRange(t, []float64{gain}, 0, 1)
}

func TestMultichannelWienerFullEstimates(t *testing.T) {
	mixture := NewMultichannel(2, 3, 5)
	target := NewMultichannel(2, 3, 5)
	residual := NewMultichannel(2, 3, 5)
	for i := range mixture.Data {
		target.Data[i] = 0.5 + float64(i%4)/4
		residual.Data[i] = 0.2 + float64(i%3)/5
		mixture.Data[i] = target.Data[i] + residual.Data[i]
	}

	out, err := MultichannelWiener(mixture, target, residual, 1.2)
	require.NoError(t, err)
	assert.True(t, out.SameShape(mixture))
	testutil.AssertNoNaNOrInf(t, out.Data)
	testutil.AssertAllInRange(t, out.Data, 0, 1e9)
}

func TestMultichannelWienerSilentResidual(t *testing.T) {
	mixture := Full(2, 2, 3, 1)
	target := Full(2, 2, 3, 1)
	residual := Full(2, 2, 3, 0.5)
	for c := range 2 {
		for f := range 2 {
			residual.Set(c, f, 1, 0)
		}
	}

	out, err := MultichannelWiener(mixture, target, residual, 1.2)
	require.NoError(t, err)
	testutil.AssertNoNaNOrInf(t, out.Data)
	for c := range 2 {
		for f := range 2 {
			assert.InDelta(t, 1.0, out.At(c, f, 1), 1e-12)
		}
	}
}

func TestMultichannelWienerRejectsBadInput(t *testing.T) {
	_, err := MultichannelWiener(Full(1, 1, 1, 2), Full(1, 1, 1, 1), Full(1, 1, 1, 1), 0)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = MultichannelWiener(Full(2, 2, 2, 1), Full(3, 2, 2, 1), Full(3, 2, 2, 1), 1)
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = MultichannelWiener(Full(2, 2, 2, 1), Full(1, 2, 2, 1), Full(1, 2, 3, 1), 1)
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = MultichannelWiener(Full(2, 2, 3, 1), Full(1, 2, 2, 1), Full(1, 2, 2, 1), 1)
	require.ErrorIs(t, err, ErrShapeMismatch)
}
