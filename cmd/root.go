// Package cmd defines and implements the CLI commands for the buildbar
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buildbar",
		Short: "Live terminal progress for multi-bundle builds",
		Long: `buildbar overlays a build pipeline with live progress reporting:
per-bundle progress bars, the file and loader chain currently being
processed, and an optional profiling report of where build time went.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is built-in defaults)")
	cmd.AddCommand(newDemoCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
