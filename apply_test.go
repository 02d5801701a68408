package masking

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-masking/internal/testutil"
)

func TestApplyAndReverseSumToMixture(t *testing.T) {
	target := pattern(5, 9, 0.4)
	residual := pattern(5, 9, 1.7)
	mixture := pattern(5, 9, 2.9)
	phase := pattern(5, 9, 3.3)
	src := sources(target, residual)

	maskers := map[string]Masker{
		"IRM":         IRM{},
		"IAM":         IAM{},
		"IBM":         IBM{Alpha: 1.2},
		"UBBM":        UBBM{Alpha: 1.2},
		"Wiener":      Wiener{},
		"alphaWiener": AlphaWiener{Alpha: 1.2},
		"Phase":       PhaseSensitive{TargetPhase: phase, ResidualPhase: target},
	}

	for name, masker := range maskers {
		t.Run(name, func(t *testing.T) {
			m, err := masker.ComputeMask(src)
			require.NoError(t, err)

			kept, err := Apply(m, mixture)
			require.NoError(t, err)
			rest, err := ApplyReverse(m, mixture)
			require.NoError(t, err)

			sum := make([]float64, len(mixture.Data))
			for i := range sum {
				sum[i] = kept.Data[i] + rest.Data[i]
			}
			testutil.AssertSlicesInDelta(t, mixture.Data, sum, testutil.DefaultTolerance)
		})
	}
}

func TestApplyReverseRejectsExponentialMask(t *testing.T) {
	m := &Mask{Gains: Full(1, 1, 1, 0.5), Rule: RuleExponential, Alpha: 1}
	_, err := ApplyReverse(m, Full(1, 1, 1, 2))
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestApplyChecksShapes(t *testing.T) {
	m := &Mask{Gains: Full(1, 2, 2, 0.5)}

	_, err := Apply(m, Full(1, 2, 3, 1))
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = ApplyReverse(m, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Apply(nil, Full(1, 2, 2, 1))
	require.ErrorIs(t, err, ErrInvalidConfig)
}
