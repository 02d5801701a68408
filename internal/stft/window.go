package stft

import (
	"fmt"
	"math"
	"strings"

	"github.com/mjibson/go-dsp/window"

	"github.com/tphakala/go-audio-masking/internal/mathutil"
)

// Window selects the analysis window.
type Window int

const (
	// WindowHann is the symmetric Hann window.
	WindowHann Window = iota

	// WindowHamming is the symmetric Hamming window.
	WindowHamming

	// WindowKaiser is a Kaiser window shaped by Config.KaiserAttenuation.
	WindowKaiser

	// WindowRectangular applies no taper.
	WindowRectangular
)

var windowNames = [...]string{
	WindowHann:        "hann",
	WindowHamming:     "hamming",
	WindowKaiser:      "kaiser",
	WindowRectangular: "rectangular",
}

// String returns the lower-case window name.
func (w Window) String() string {
	if w < 0 || int(w) >= len(windowNames) {
		return fmt.Sprintf("Window(%d)", int(w))
	}
	return windowNames[w]
}

// ParseWindow resolves a window name, ignoring case.
func ParseWindow(name string) (Window, error) {
	for i, n := range windowNames {
		if strings.EqualFold(n, name) {
			return Window(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown window %q", ErrInvalidConfig, name)
}

// coefficients returns n window samples.
func (w Window) coefficients(n int, attenuation float64) []float64 {
	switch w {
	case WindowHamming:
		return window.Hamming(n)
	case WindowKaiser:
		return kaiser(n, mathutil.KaiserBeta(attenuation))
	case WindowRectangular:
		return window.Rectangular(n)
	default:
		return window.Hann(n)
	}
}

// kaiser computes w[i] = I₀(β·√(1 − (2i/(n−1) − 1)²)) / I₀(β).
func kaiser(n int, beta float64) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}

	norm := mathutil.BesselI0(beta)
	for i := range w {
		x := 2*float64(i)/float64(n-1) - 1
		w[i] = mathutil.BesselI0(beta*math.Sqrt(1-x*x)) / norm
	}
	return w
}
