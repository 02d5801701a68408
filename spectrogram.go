package masking

import (
	"fmt"
	"slices"

	"github.com/tphakala/go-audio-masking/internal/simdops"
)

// Spectrogram is a real-valued time-frequency array of shape
// Channels × Bins × Frames stored row-major: frame index varies fastest.
// Single-channel (2D) spectrograms have Channels == 1.
//
// Magnitude and phase spectrograms share this type; phases are in radians.
type Spectrogram struct {
	Channels int
	Bins     int
	Frames   int
	Data     []float64
}

// NewSpectrogram allocates a zeroed single-channel spectrogram.
func NewSpectrogram(bins, frames int) *Spectrogram {
	return NewMultichannel(1, bins, frames)
}

// NewMultichannel allocates a zeroed spectrogram with the given shape.
func NewMultichannel(channels, bins, frames int) *Spectrogram {
	return &Spectrogram{
		Channels: channels,
		Bins:     bins,
		Frames:   frames,
		Data:     make([]float64, channels*bins*frames),
	}
}

// Full allocates a spectrogram with every element set to v.
func Full(channels, bins, frames int, v float64) *Spectrogram {
	s := NewMultichannel(channels, bins, frames)
	for i := range s.Data {
		s.Data[i] = v
	}
	return s
}

// FromRows builds a single-channel spectrogram from one row per frequency bin.
// All rows must have the same, non-zero length.
func FromRows(rows [][]float64) (*Spectrogram, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: spectrogram needs at least one bin and one frame", ErrInvalidConfig)
	}

	frames := len(rows[0])
	s := NewSpectrogram(len(rows), frames)
	for f, row := range rows {
		if len(row) != frames {
			return nil, fmt.Errorf("%w: row %d has %d frames, want %d", ErrShapeMismatch, f, len(row), frames)
		}
		copy(s.Data[f*frames:], row)
	}
	return s, nil
}

// Index returns the position of element (c, f, t) in Data.
func (s *Spectrogram) Index(c, f, t int) int {
	return (c*s.Bins+f)*s.Frames + t
}

// At returns element (c, f, t).
func (s *Spectrogram) At(c, f, t int) float64 {
	return s.Data[s.Index(c, f, t)]
}

// Set assigns element (c, f, t).
func (s *Spectrogram) Set(c, f, t int, v float64) {
	s.Data[s.Index(c, f, t)] = v
}

// Len returns the number of elements implied by the shape.
func (s *Spectrogram) Len() int {
	return s.Channels * s.Bins * s.Frames
}

// Row returns the frames of bin f in channel c. The slice aliases Data.
func (s *Spectrogram) Row(c, f int) []float64 {
	start := s.Index(c, f, 0)
	return s.Data[start : start+s.Frames]
}

// SameShape reports whether s and o have identical dimensions.
func (s *Spectrogram) SameShape(o *Spectrogram) bool {
	return s.Channels == o.Channels && s.Bins == o.Bins && s.Frames == o.Frames
}

// Shape formats the dimensions for error messages.
func (s *Spectrogram) Shape() string {
	return fmt.Sprintf("%dx%dx%d", s.Channels, s.Bins, s.Frames)
}

// Clone returns a deep copy.
func (s *Spectrogram) Clone() *Spectrogram {
	c := *s
	c.Data = slices.Clone(s.Data)
	return &c
}

// Mean returns the arithmetic mean of all elements.
func (s *Spectrogram) Mean() float64 {
	return simdops.Mean(s.Data)
}

// Energy returns the sum of squared elements.
func (s *Spectrogram) Energy() float64 {
	return simdops.Energy(s.Data)
}

// Validate checks that the spectrogram is non-empty and its data matches its shape.
func (s *Spectrogram) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: spectrogram is nil", ErrInvalidConfig)
	}

	if s.Channels < 1 || s.Bins < 1 || s.Frames < 1 {
		return fmt.Errorf("%w: spectrogram shape %s must be positive", ErrInvalidConfig, s.Shape())
	}

	if len(s.Data) != s.Len() {
		return fmt.Errorf("%w: spectrogram %s holds %d values, want %d",
			ErrShapeMismatch, s.Shape(), len(s.Data), s.Len())
	}

	return nil
}

// empty reports whether s carries no data. Phase inputs use it to tell
// "not supplied" apart from malformed.
func (s *Spectrogram) empty() bool {
	return s == nil || len(s.Data) == 0
}

func requireSameShape(what string, want, got *Spectrogram) error {
	if err := got.Validate(); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if !want.SameShape(got) {
		return fmt.Errorf("%w: %s is %s, want %s", ErrShapeMismatch, what, got.Shape(), want.Shape())
	}
	return nil
}
