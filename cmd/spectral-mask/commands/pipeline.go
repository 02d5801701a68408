package commands

import (
	"fmt"
	"log/slog"

	masking "github.com/tphakala/go-audio-masking"
	"github.com/tphakala/go-audio-masking/internal/stft"
	"github.com/tphakala/go-audio-masking/internal/wavio"
)

// Argument counts
const (
	minInputArgs = 3 // mixture, target, one residual
)

// session holds the analysed inputs of one run.
type session struct {
	transform *stft.Transform
	logger    *slog.Logger

	sampleRate int
	bitDepth   int
	length     int

	mixture      *masking.Spectrogram
	mixturePhase *masking.Spectrogram
	target       *masking.Spectrogram
	targetPhase  *masking.Spectrogram
	residual     []*masking.Spectrogram

	// residualPhase is the phase of the first residual.
	residualPhase *masking.Spectrogram
}

// openSession reads the mixture, target and residual WAV files and analyses
// them with a shared frame layout. Every file is cut or zero-padded to the
// mixture's length.
func openSession(cfg *Config, paths []string, logger *slog.Logger) (*session, error) {
	if len(paths) < minInputArgs {
		return nil, fmt.Errorf("need a mixture, a target and at least one residual file, got %d files", len(paths))
	}

	analysis, err := cfg.analysis()
	if err != nil {
		return nil, err
	}

	tr, err := stft.New(analysis)
	if err != nil {
		return nil, err
	}

	mix, err := wavio.Read(paths[0])
	if err != nil {
		return nil, err
	}

	s := &session{
		transform:  tr,
		logger:     logger,
		sampleRate: mix.SampleRate,
		bitDepth:   mix.BitDepth,
		length:     mix.Len(),
	}

	if s.length == 0 {
		return nil, fmt.Errorf("mixture %s holds no samples", paths[0])
	}

	logger.Debug("input format",
		"path", paths[0],
		"rate", mix.SampleRate,
		"channels", len(mix.Channels),
		"bits", mix.BitDepth,
		"samples", s.length)

	if s.mixture, s.mixturePhase, err = s.analyse(mix); err != nil {
		return nil, fmt.Errorf("mixture: %w", err)
	}

	sources := make([]*masking.Spectrogram, 0, len(paths)-1)
	var phases []*masking.Spectrogram
	for _, path := range paths[1:] {
		a, err := wavio.Read(path)
		if err != nil {
			return nil, err
		}
		if a.SampleRate != s.sampleRate {
			return nil, fmt.Errorf("%s is sampled at %d Hz, mixture at %d Hz", path, a.SampleRate, s.sampleRate)
		}

		mag, phase, err := s.analyse(a)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		sources = append(sources, mag)
		phases = append(phases, phase)
	}

	s.target, s.targetPhase = sources[0], phases[0]
	s.residual, s.residualPhase = sources[1:], phases[1]

	logger.Debug("analysed inputs",
		"bins", s.mixture.Bins,
		"frames", s.mixture.Frames,
		"residuals", len(s.residual))

	return s, nil
}

// analyse converts every channel of a to magnitude and phase spectrograms.
func (s *session) analyse(a *wavio.Audio) (mag, phase *masking.Spectrogram, err error) {
	bins := s.transform.Bins()
	frames := s.transform.Frames(s.length)
	mag = masking.NewMultichannel(len(a.Channels), bins, frames)
	phase = masking.NewMultichannel(len(a.Channels), bins, frames)

	signal := make([]float64, s.length)
	for c, samples := range a.Channels {
		clear(signal)
		copy(signal, samples)

		spec, err := s.transform.Forward(signal)
		if err != nil {
			return nil, nil, err
		}
		for f := range bins {
			copy(mag.Row(c, f), spec.Magnitude[f])
			copy(phase.Row(c, f), spec.Phase[f])
		}
	}

	return mag, phase, nil
}

// config builds the masking configuration for the analysed inputs.
func (s *session) config(cfg *Config) *masking.Config {
	return &masking.Config{
		Mixture:       s.mixture,
		Target:        s.target,
		Residual:      s.residual,
		TargetPhase:   s.targetPhase,
		ResidualPhase: s.residualPhase,
		Alpha:         cfg.Alpha,
		Method:        cfg.Method,
		Logger:        s.logger,
	}
}

// write resynthesises a magnitude spectrogram with the mixture phase and
// stores it as a WAV file with the mixture's format.
func (s *session) write(path string, mag *masking.Spectrogram) error {
	if !mag.SameShape(s.mixturePhase) {
		return fmt.Errorf("%w: output is %s, mixture phase %s",
			masking.ErrShapeMismatch, mag.Shape(), s.mixturePhase.Shape())
	}

	out := &wavio.Audio{
		SampleRate: s.sampleRate,
		BitDepth:   s.bitDepth,
		Channels:   make([][]float64, mag.Channels),
	}

	magRows := make([][]float64, mag.Bins)
	phaseRows := make([][]float64, mag.Bins)
	for c := range mag.Channels {
		for f := range mag.Bins {
			magRows[f] = mag.Row(c, f)
			phaseRows[f] = s.mixturePhase.Row(c, f)
		}

		signal, err := s.transform.Inverse(magRows, phaseRows, s.length)
		if err != nil {
			return err
		}
		out.Channels[c] = signal
	}

	if err := wavio.Write(path, out); err != nil {
		return err
	}

	s.logger.Info("wrote output", "path", path, "channels", mag.Channels, "samples", s.length)
	return nil
}
