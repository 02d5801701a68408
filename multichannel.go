package masking

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-masking/internal/mwf"
)

// MultichannelWiener filters an M-channel mixture with the multichannel
// Wiener filter and returns the output magnitude with the mixture's shape.
//
// target and residual are magnitude estimates sharing the mixture's bins and
// frames, with either one channel or as many channels as the mixture. A
// single-channel estimate updates the spatial covariances recursively with a
// forgetting factor of 0.99; a full estimate gives memoryless per-frame
// covariances. Both are raised to alpha before use.
func MultichannelWiener(mixture, target, residual *Spectrogram, alpha float64) (*Spectrogram, error) {
	if alpha <= 0 {
		return nil, fmt.Errorf("%w: alpha must be positive", ErrInvalidConfig)
	}

	cfg := Config{
		Mixture:  mixture,
		Target:   target,
		Residual: []*Spectrogram{residual},
		Method:   MethodMWF,
		Alpha:    alpha,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	data, err := mwf.Apply(tensor(mixture), tensor(target), tensor(residual), mwf.Params{Alpha: alpha})
	if err != nil {
		if errors.Is(err, mwf.ErrShape) {
			return nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
		}
		return nil, err
	}

	return &Spectrogram{
		Channels: mixture.Channels,
		Bins:     mixture.Bins,
		Frames:   mixture.Frames,
		Data:     data,
	}, nil
}

func tensor(s *Spectrogram) mwf.Tensor {
	return mwf.Tensor{Channels: s.Channels, Bins: s.Bins, Frames: s.Frames, Data: s.Data}
}
