// Package stft converts between time-domain signals and the magnitude/phase
// spectrograms the masking engine works on.
//
// Frames are centred: the signal is padded with half an FFT of zeros on both
// sides, so every sample lies under the flat part of some window. The inverse
// transform overlap-adds windowed frames and divides by the summed squared
// window, which reconstructs the input exactly when the spectrogram is unmodified.
package stft

import (
	"errors"
	"fmt"
	"math/cmplx"
	"slices"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-audio-masking/internal/simdops"
)

// ErrInvalidConfig indicates unusable transform parameters or inputs.
var ErrInvalidConfig = errors.New("stft: invalid configuration")

// Default transform parameters
const (
	DefaultFFTSize           = 2048
	DefaultHopSize           = 512
	DefaultKaiserAttenuation = 80.0

	// Overlap-add positions whose window energy falls below this are zeroed.
	minWindowEnergy = 1e-10
)

// Config describes the analysis frame layout.
type Config struct {
	// FFTSize is the frame length in samples; it must be even.
	FFTSize int

	// HopSize is the frame advance in samples, at most FFTSize.
	HopSize int

	// Window is the analysis and synthesis window.
	Window Window

	// KaiserAttenuation is the sidelobe attenuation in dB for WindowKaiser.
	KaiserAttenuation float64
}

// DefaultConfig returns a 2048-point Hann analysis with 75% overlap.
func DefaultConfig() Config {
	return Config{
		FFTSize:           DefaultFFTSize,
		HopSize:           DefaultHopSize,
		Window:            WindowHann,
		KaiserAttenuation: DefaultKaiserAttenuation,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.FFTSize < 2 || c.FFTSize%2 != 0 {
		return fmt.Errorf("%w: fft size %d must be even and at least 2", ErrInvalidConfig, c.FFTSize)
	}

	if c.HopSize < 1 || c.HopSize > c.FFTSize {
		return fmt.Errorf("%w: hop size %d must be in [1, %d]", ErrInvalidConfig, c.HopSize, c.FFTSize)
	}

	if c.Window < 0 || int(c.Window) >= len(windowNames) {
		return fmt.Errorf("%w: unknown window %d", ErrInvalidConfig, int(c.Window))
	}

	return nil
}

// Spectrum holds the one-sided spectrogram of a signal as bins × frames rows.
type Spectrum struct {
	Magnitude [][]float64
	Phase     [][]float64

	// Length is the number of samples of the analysed signal.
	Length int
}

// Bins returns the number of frequency bins.
func (s *Spectrum) Bins() int {
	return len(s.Magnitude)
}

// Frames returns the number of analysis frames.
func (s *Spectrum) Frames() int {
	if len(s.Magnitude) == 0 {
		return 0
	}
	return len(s.Magnitude[0])
}

// Transform performs forward and inverse STFTs with a fixed frame layout.
// It reuses internal buffers and is not safe for concurrent use.
type Transform struct {
	config Config
	fft    *fourier.FFT
	window []float64

	frame  []float64
	coeffs []complex128
}

// New creates a transform for the given configuration.
func New(config Config) (*Transform, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	n := config.FFTSize
	return &Transform{
		config: config,
		fft:    fourier.NewFFT(n),
		window: config.Window.coefficients(n, config.KaiserAttenuation),
		frame:  make([]float64, n),
		coeffs: make([]complex128, n/2+1),
	}, nil
}

// Bins returns the number of one-sided frequency bins, FFTSize/2 + 1.
func (t *Transform) Bins() int {
	return t.config.FFTSize/2 + 1
}

// Frames returns the number of frames produced for a signal of n samples.
func (t *Transform) Frames(n int) int {
	return 1 + (n+t.config.HopSize-1)/t.config.HopSize
}

// Forward analyses the signal into magnitude and phase spectrograms.
func (t *Transform) Forward(signal []float64) (*Spectrum, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("%w: empty signal", ErrInvalidConfig)
	}

	n := t.config.FFTSize
	pad := n / 2
	bins := t.Bins()
	frames := t.Frames(len(signal))

	spec := &Spectrum{
		Magnitude: makeRows(bins, frames),
		Phase:     makeRows(bins, frames),
		Length:    len(signal),
	}

	for k := range frames {
		start := k*t.config.HopSize - pad
		for i := range n {
			j := start + i
			if j >= 0 && j < len(signal) {
				t.frame[i] = signal[j] * t.window[i]
			} else {
				t.frame[i] = 0
			}
		}

		t.coeffs = t.fft.Coefficients(t.coeffs, t.frame)
		for f, c := range t.coeffs {
			spec.Magnitude[f][k] = cmplx.Abs(c)
			spec.Phase[f][k] = cmplx.Phase(c)
		}
	}

	return spec, nil
}

// Inverse resynthesises a signal of the given length from magnitude and phase
// rows shaped like those returned by Forward.
func (t *Transform) Inverse(magnitude, phase [][]float64, length int) ([]float64, error) {
	bins := t.Bins()
	if len(magnitude) != bins || len(phase) != bins {
		return nil, fmt.Errorf("%w: want %d bins, got %d magnitude and %d phase rows",
			ErrInvalidConfig, bins, len(magnitude), len(phase))
	}

	frames := len(magnitude[0])
	for f := range bins {
		if len(magnitude[f]) != frames || len(phase[f]) != frames {
			return nil, fmt.Errorf("%w: bin %d has ragged frames", ErrInvalidConfig, f)
		}
	}

	if length < 1 {
		return nil, fmt.Errorf("%w: output length must be positive", ErrInvalidConfig)
	}

	n := t.config.FFTSize
	pad := n / 2
	out := make([]float64, length)
	energy := make([]float64, length)

	for k := range frames {
		for f := range bins {
			t.coeffs[f] = cmplx.Rect(magnitude[f][k], phase[f][k])
		}
		t.frame = t.fft.Sequence(t.frame, t.coeffs)
		simdops.Scale(t.frame, t.frame, 1/float64(n))

		start := k*t.config.HopSize - pad
		for i := range n {
			j := start + i
			if j < 0 || j >= length {
				continue
			}
			w := t.window[i]
			out[j] += t.frame[i] * w
			energy[j] += w * w
		}
	}

	for j := range out {
		if energy[j] > minWindowEnergy {
			out[j] /= energy[j]
		} else {
			out[j] = 0
		}
	}

	return out, nil
}

// Window returns a copy of the analysis window.
func (t *Transform) Window() []float64 {
	return slices.Clone(t.window)
}

func makeRows(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	out := make([][]float64, rows)
	for i := range out {
		out[i] = backing[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return out
}
