// Package main is the entry point for the skysweep CLI. It runs coverage
// agents and publishes mission plans against a shared knowledge store.
package main

import (
	"fmt"
	"os"

	"github.com/openswarm-io/skysweep/internal/cli"
)

// Build information. Populated at build time by the release pipeline.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
