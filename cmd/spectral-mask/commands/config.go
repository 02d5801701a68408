package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	masking "github.com/tphakala/go-audio-masking"
	"github.com/tphakala/go-audio-masking/internal/stft"
)

// Config is the file and flag configuration of a masking run.
type Config struct {
	Method    masking.Method  `yaml:"method"`
	Alpha     float64         `yaml:"alpha"`
	Reverse   bool            `yaml:"reverse"`
	STFT      STFTConfig      `yaml:"stft"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
}

// STFTConfig describes the analysis frames.
type STFTConfig struct {
	FFTSize           int     `yaml:"fft_size"`
	HopSize           int     `yaml:"hop_size"`
	Window            string  `yaml:"window"`
	KaiserAttenuation float64 `yaml:"kaiser_attenuation"`
}

// OptimizerConfig mirrors the numeric exponent search options.
type OptimizerConfig struct {
	MaxIterations       int     `yaml:"max_iterations"`
	LearningRate        float64 `yaml:"learning_rate"`
	EtaPlus             float64 `yaml:"eta_plus"`
	EtaMinus            float64 `yaml:"eta_minus"`
	InitialAlpha        float64 `yaml:"initial_alpha"`
	MinAlpha            float64 `yaml:"min_alpha"`
	MaxAlpha            float64 `yaml:"max_alpha"`
	RoundDecimals       int     `yaml:"round_decimals"`
	StagnationTolerance float64 `yaml:"stagnation_tolerance"`
	StuckLoss           float64 `yaml:"stuck_loss"`
	AdaptAfter          int     `yaml:"adapt_after"`
	StagnationAfter     int     `yaml:"stagnation_after"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	analysis := stft.DefaultConfig()
	search := masking.DefaultOptimizerOptions()

	return Config{
		Method: masking.MethodWiener,
		Alpha:  masking.DefaultAlpha,
		STFT: STFTConfig{
			FFTSize:           analysis.FFTSize,
			HopSize:           analysis.HopSize,
			Window:            analysis.Window.String(),
			KaiserAttenuation: analysis.KaiserAttenuation,
		},
		Optimizer: OptimizerConfig{
			MaxIterations:       search.MaxIterations,
			LearningRate:        search.LearningRate,
			EtaPlus:             search.EtaPlus,
			EtaMinus:            search.EtaMinus,
			InitialAlpha:        search.InitialAlpha,
			MinAlpha:            search.MinAlpha,
			MaxAlpha:            search.MaxAlpha,
			RoundDecimals:       search.RoundDecimals,
			StagnationTolerance: search.StagnationTolerance,
			StuckLoss:           search.StuckLoss,
			AdaptAfter:          search.AdaptAfter,
			StagnationAfter:     search.StagnationAfter,
		},
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the file
// keep their default values; unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the parts of the configuration that can be checked
// without inputs.
func (c *Config) Validate() error {
	if c.Alpha <= 0 {
		return fmt.Errorf("%w: alpha must be positive", masking.ErrInvalidConfig)
	}

	if _, err := c.analysis(); err != nil {
		return err
	}

	return nil
}

// analysis converts the STFT section to transform parameters.
func (c *Config) analysis() (stft.Config, error) {
	window, err := stft.ParseWindow(c.STFT.Window)
	if err != nil {
		return stft.Config{}, err
	}

	cfg := stft.Config{
		FFTSize:           c.STFT.FFTSize,
		HopSize:           c.STFT.HopSize,
		Window:            window,
		KaiserAttenuation: c.STFT.KaiserAttenuation,
	}
	if err := cfg.Validate(); err != nil {
		return stft.Config{}, err
	}
	return cfg, nil
}

// search converts the optimizer section to search options.
func (c *Config) search(logger *slog.Logger) masking.OptimizerOptions {
	opts := masking.DefaultOptimizerOptions()
	opts.MaxIterations = c.Optimizer.MaxIterations
	opts.LearningRate = c.Optimizer.LearningRate
	opts.EtaPlus = c.Optimizer.EtaPlus
	opts.EtaMinus = c.Optimizer.EtaMinus
	opts.InitialAlpha = c.Optimizer.InitialAlpha
	opts.MinAlpha = c.Optimizer.MinAlpha
	opts.MaxAlpha = c.Optimizer.MaxAlpha
	opts.RoundDecimals = c.Optimizer.RoundDecimals
	opts.StagnationTolerance = c.Optimizer.StagnationTolerance
	opts.StuckLoss = c.Optimizer.StuckLoss
	opts.AdaptAfter = c.Optimizer.AdaptAfter
	opts.StagnationAfter = c.Optimizer.StagnationAfter
	opts.Logger = logger
	return opts
}

// maskFlags holds the per-command overrides of the file configuration.
type maskFlags struct {
	method    string
	alpha     float64
	reverse   bool
	fftSize   int
	hopSize   int
	window    string
	output    string
	maxIters  int
	learnRate float64
}

func (f *maskFlags) register(cmd *cobra.Command, withOptimizer bool) {
	defaults := DefaultConfig()

	flags := cmd.Flags()
	flags.StringVarP(&f.method, "method", "m", defaults.Method.String(), "masking method")
	flags.Float64VarP(&f.alpha, "alpha", "a", defaults.Alpha, "magnitude exponent")
	flags.BoolVar(&f.reverse, "reverse", false, "keep the residual instead of the target")
	flags.IntVar(&f.fftSize, "fft-size", defaults.STFT.FFTSize, "STFT frame length in samples")
	flags.IntVar(&f.hopSize, "hop-size", defaults.STFT.HopSize, "STFT frame advance in samples")
	flags.StringVar(&f.window, "window", defaults.STFT.Window, "analysis window: hann, hamming, kaiser, rectangular")
	flags.StringVarP(&f.output, "output", "o", "", "output WAV file")

	if withOptimizer {
		flags.IntVar(&f.maxIters, "iterations", defaults.Optimizer.MaxIterations, "maximum optimizer iterations")
		flags.Float64Var(&f.learnRate, "learning-rate", defaults.Optimizer.LearningRate, "initial optimizer step size")
	}
}

// resolve loads the configuration file and applies every flag set explicitly.
func (f *maskFlags) resolve(cmd *cobra.Command, path string) (Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("method") {
		m, err := masking.ParseMethod(f.method)
		if err != nil {
			return cfg, err
		}
		cfg.Method = m
	}
	if flags.Changed("alpha") {
		cfg.Alpha = f.alpha
	}
	if flags.Changed("reverse") {
		cfg.Reverse = f.reverse
	}
	if flags.Changed("fft-size") {
		cfg.STFT.FFTSize = f.fftSize
	}
	if flags.Changed("hop-size") {
		cfg.STFT.HopSize = f.hopSize
	}
	if flags.Changed("window") {
		cfg.STFT.Window = f.window
	}
	if flags.Changed("iterations") {
		cfg.Optimizer.MaxIterations = f.maxIters
	}
	if flags.Changed("learning-rate") {
		cfg.Optimizer.LearningRate = f.learnRate
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
