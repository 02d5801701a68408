package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	masking "github.com/tphakala/go-audio-masking"
)

func newSeparateCmd(opts *options) *cobra.Command {
	flags := &maskFlags{}

	cmd := &cobra.Command{
		Use:   "separate MIXTURE TARGET RESIDUAL [RESIDUAL...]",
		Short: "Mask a mixture with target and residual estimates",
		Long: `Compute a time-frequency mask from the target and residual estimates and
apply it to the mixture. With --reverse the complementary mask is applied,
keeping the residual instead of the target.

All files must share a sample rate. Estimates are cut or zero-padded to the
mixture's length. MWF accepts a multichannel mixture with mono or matching
multichannel estimates; the other methods need equal channel counts.

Example:
  spectral-mask separate -m alphaWiener -a 2 mix.wav voice.wav noise.wav -o voice_out.wav`,
		Args: cobra.MinimumNArgs(minInputArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd, opts.configPath)
			if err != nil {
				return err
			}
			if flags.output == "" {
				return fmt.Errorf("output file is required, use -o flag")
			}

			logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
			start := time.Now()

			s, err := openSession(&cfg, args, logger)
			if err != nil {
				return err
			}

			e, err := masking.New(s.config(&cfg))
			if err != nil {
				return err
			}

			out, err := e.Process(cfg.Reverse)
			if err != nil {
				return err
			}

			if err := s.write(flags.output, out); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Separated %s -> %s\n", args[0], flags.output)
			fmt.Fprintf(cmd.OutOrStdout(), "  method: %s, alpha: %g, reverse: %t\n", cfg.Method, e.Alpha(), cfg.Reverse)
			fmt.Fprintf(cmd.OutOrStdout(), "  %d bins x %d frames, %.2fs\n",
				out.Bins, out.Frames, time.Since(start).Seconds())
			if total := s.mixture.Energy(); total > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  energy kept: %.1f%%\n", 100*out.Energy()/total)
			}
			return nil
		},
	}

	flags.register(cmd, false)
	return cmd
}
