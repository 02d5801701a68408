// Package wavio reads and writes PCM WAV files as normalized float64 channels.
package wavio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/go-audio-masking/internal/mathutil"
)

// Sample format constants
const (
	bitsPerSample8  = 8
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt8  = 127.0
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// DefaultBitDepth is used when writing audio with no bit depth set.
	DefaultBitDepth = bitsPerSample16

	pcmFormat = 1
)

// ErrInvalidFile indicates a file that is not a readable PCM WAV file.
var ErrInvalidFile = errors.New("wavio: invalid WAV file")

// Audio holds planar samples normalized to [-1, 1].
type Audio struct {
	SampleRate int
	BitDepth   int
	Channels   [][]float64
}

// Len returns the number of samples per channel.
func (a *Audio) Len() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Mono returns the average of all channels.
func (a *Audio) Mono() []float64 {
	out := make([]float64, a.Len())
	if len(a.Channels) == 0 {
		return out
	}
	scale := 1 / float64(len(a.Channels))
	for _, ch := range a.Channels {
		for i, v := range ch {
			out[i] += v * scale
		}
	}
	return out
}

// Read decodes a whole WAV file.
func Read(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	if format.NumChannels < 1 {
		return nil, fmt.Errorf("%w: %s has no channels", ErrInvalidFile, path)
	}

	return &Audio{
		SampleRate: format.SampleRate,
		BitDepth:   bitDepth,
		Channels:   deinterleave(buf.Data, format.NumChannels, bitDepth),
	}, nil
}

// Write encodes a as a PCM WAV file. Samples outside [-1, 1] are clipped.
func Write(path string, a *Audio) (err error) {
	if len(a.Channels) == 0 || a.SampleRate <= 0 {
		return fmt.Errorf("%w: nothing to write", ErrInvalidFile)
	}

	bitDepth := a.BitDepth
	if bitDepth == 0 {
		bitDepth = DefaultBitDepth
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	encoder := wav.NewEncoder(f, a.SampleRate, bitDepth, len(a.Channels), pcmFormat)
	buf := &audio.IntBuffer{
		Data: interleave(a.Channels, bitDepth),
		Format: &audio.Format{
			NumChannels: len(a.Channels),
			SampleRate:  a.SampleRate,
		},
		SourceBitDepth: bitDepth,
	}

	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}

	return nil
}

// maxValue returns the maximum sample value for the given bit depth.
func maxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample8:
		return maxInt8
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// deinterleave converts interleaved int samples to per-channel floats in [-1, 1].
func deinterleave(data []int, channels, bitDepth int) [][]float64 {
	samplesPerChannel := len(data) / channels
	inv := 1 / maxValue(bitDepth)

	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, samplesPerChannel)
	}

	for i := range samplesPerChannel {
		base := i * channels
		for ch := range channels {
			out[ch][i] = float64(data[base+ch]) * inv
		}
	}

	return out
}

// interleave converts per-channel floats to interleaved int samples.
func interleave(channels [][]float64, bitDepth int) []int {
	n := len(channels[0])
	maxVal := maxValue(bitDepth)

	out := make([]int, n*len(channels))
	for i := range n {
		base := i * len(channels)
		for ch, samples := range channels {
			var v float64
			if i < len(samples) {
				v = mathutil.Clamp(samples[i], -1, 1)
			}
			out[base+ch] = int(v * maxVal)
		}
	}

	return out
}
