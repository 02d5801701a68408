package masking

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-masking/internal/simdops"
)

// Apply filters the mixture with the mask: m·x for multiplicative masks
// and (x^α)^m for exponential ones.
func Apply(m *Mask, mixture *Spectrogram) (*Spectrogram, error) {
	if err := checkApply(m, mixture); err != nil {
		return nil, err
	}

	out := NewMultichannel(mixture.Channels, mixture.Bins, mixture.Frames)
	switch m.Rule {
	case RuleExponential:
		for i, x := range mixture.Data {
			out.Data[i] = math.Pow(math.Pow(x, m.Alpha), m.Gains.Data[i])
		}
	default:
		simdops.Mul(out.Data, m.Gains.Data, mixture.Data)
	}

	return out, nil
}

// ApplyReverse filters the mixture with the complementary mask (1 − m)·x,
// which keeps the residual instead of the target.
// Exponential masks have no complement and return ErrNotSupported.
func ApplyReverse(m *Mask, mixture *Spectrogram) (*Spectrogram, error) {
	if m != nil && m.Rule == RuleExponential {
		return nil, fmt.Errorf("%w: exponential masks cannot be reversed", ErrNotSupported)
	}

	if err := checkApply(m, mixture); err != nil {
		return nil, err
	}

	// out = (1 − m)·x, built in place as (−m + 1)·x
	out := NewMultichannel(mixture.Channels, mixture.Bins, mixture.Frames)
	simdops.Scale(out.Data, m.Gains.Data, -1)
	simdops.AddScalar(out.Data, out.Data, 1)
	simdops.Mul(out.Data, out.Data, mixture.Data)

	return out, nil
}

func checkApply(m *Mask, mixture *Spectrogram) error {
	if m == nil {
		return fmt.Errorf("%w: mask is nil", ErrInvalidConfig)
	}

	if err := m.Gains.Validate(); err != nil {
		return fmt.Errorf("mask: %w", err)
	}

	return requireSameShape("mixture", m.Gains, mixture)
}
