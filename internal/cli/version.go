package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build information. Populated at build time by the release pipeline.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersionInfo stores the build metadata shown by the version command.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("skysweep %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
