// Package commands implements the spectral-mask command tree.
package commands

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// options holds the global flags shared by every command.
type options struct {
	verbose    bool
	configPath string
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "spectral-mask",
		Short: "Time-frequency masking for source separation",
		Long: `spectral-mask - time-frequency masking for source separation.

Separates a target source from a mixture, given magnitude estimates of the
target and of the residual (noise, accompaniment, interference).

Supported methods:
  IRM, IAM, IBM, UBBM, Wiener, alphaWiener, expMask, Phase, MWF

Example configuration file (mask.yaml):
  method: alphaWiener
  alpha: 2
  stft:
    fft_size: 2048
    hop_size: 512
    window: hann
  optimizer:
    max_iterations: 200

Examples:
  spectral-mask separate mix.wav voice.wav noise.wav -o voice_out.wav
  spectral-mask separate -m IBM --reverse mix.wav voice.wav noise.wav -o noise_out.wav
  spectral-mask optimize -c mask.yaml mix.wav voice.wav noise.wav drums.wav
  spectral-mask demo`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")

	root.AddCommand(
		newSeparateCmd(opts),
		newOptimizeCmd(opts),
		newDemoCmd(opts),
		newInfoCmd(),
	)

	return root
}

// newLogger returns a text logger on w at Info level, or Debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
