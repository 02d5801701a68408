// Command spectral-mask separates a target source from WAV recordings with
// time-frequency masks.
//
// Usage:
//
//	spectral-mask [flags] <command> [args]
//
// Commands:
//
//	separate  - mask a mixture with target and residual estimates
//	optimize  - fit per-source exponents, then apply the fitted mask
//	demo      - denoise a synthetic tone and report the SNR gain
//	info      - list methods, windows and SIMD support
//
// Configuration:
//
//	Settings may be read from a YAML file with --config; flags given on the
//	command line take precedence over the file.
package main

import (
	"fmt"
	"os"

	"github.com/tphakala/go-audio-masking/cmd/spectral-mask/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
