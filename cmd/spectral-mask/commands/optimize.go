package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	masking "github.com/tphakala/go-audio-masking"
)

func newOptimizeCmd(opts *options) *cobra.Command {
	flags := &maskFlags{}

	cmd := &cobra.Command{
		Use:   "optimize MIXTURE TARGET RESIDUAL [RESIDUAL...]",
		Short: "Fit per-source exponents for generalized Wiener filtering",
		Long: `Fit one magnitude exponent per source so that the sum of the sources'
power spectrograms best explains the mixture under the Itakura-Saito
divergence. The result is printed; with -o the fitted mask is applied
(or its complement, with --reverse) and written as WAV.

Example:
  spectral-mask optimize -v mix.wav voice.wav noise.wav -o voice_out.wav`,
		Args: cobra.MinimumNArgs(minInputArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd, opts.configPath)
			if err != nil {
				return err
			}
			if cfg.Method == masking.MethodMWF {
				return fmt.Errorf("%w: exponent fitting does not apply to %s", masking.ErrNotSupported, cfg.Method)
			}

			logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

			s, err := openSession(&cfg, args, logger)
			if err != nil {
				return err
			}

			// The search only reads magnitudes; the method just has to accept them.
			mc := s.config(&cfg)
			mc.Method = masking.MethodAlphaWiener

			e, err := masking.New(mc)
			if err != nil {
				return err
			}

			res, err := e.OptimizeAlpha(cfg.search(logger))
			if err != nil {
				return err
			}

			printOptimization(cmd.OutOrStdout(), args[1:], res)

			if flags.output == "" {
				return nil
			}

			out, err := e.Apply(cfg.Reverse)
			if err != nil {
				return err
			}
			return s.write(flags.output, out)
		},
	}

	flags.register(cmd, true)
	return cmd
}

func printOptimization(w io.Writer, sources []string, res *masking.OptimizationResult) {
	fmt.Fprintf(w, "Termination: %s after %d iterations\n", res.Termination, res.Iterations)
	fmt.Fprintf(w, "Loss:        %.6g\n", res.Loss)
	fmt.Fprintln(w, "Exponents:")
	for i, alpha := range res.Exponents {
		name := fmt.Sprintf("source %d", i)
		if i < len(sources) {
			name = sources[i]
		}
		fmt.Fprintf(w, "  %-24s %.2f\n", name, alpha)
	}
}
