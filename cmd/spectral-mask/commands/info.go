package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	masking "github.com/tphakala/go-audio-masking"
	"github.com/tphakala/go-audio-masking/internal/simdops"
	"github.com/tphakala/go-audio-masking/internal/stft"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "List methods, windows and SIMD support",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()

			fmt.Fprintln(w, "Methods:")
			for _, m := range masking.Methods() {
				fmt.Fprintf(w, "  %s\n", m)
			}

			fmt.Fprintln(w, "Windows:")
			for _, win := range []stft.Window{stft.WindowHann, stft.WindowHamming, stft.WindowKaiser, stft.WindowRectangular} {
				fmt.Fprintf(w, "  %s\n", win)
			}

			fmt.Fprintf(w, "SIMD: %s\n", simdops.Info())
			fmt.Fprintf(w, "Go:   %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
