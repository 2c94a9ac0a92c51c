// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"sifbench/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "sifbench",
		Short: "Provision SWE-bench container artifacts as local SIF images",
		Long: TitleStyle.Render("sifbench") + SubtitleStyle.Render(" - SWE-bench artifact provisioner") + `

sifbench resolves benchmark instance IDs to registry references, pulls
each pre-built image with Apptainer or Singularity, and converts it into
a local SIF store. Re-runs are idempotent: artifacts already on disk are
skipped, and a failed instance never stops the rest of the batch.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Configure your registry namespace (config file, env, or flag)
  2. Provision:  sifbench pull --instance-ids django__django-11001
  3. Check:      sifbench status

` + SubtitleStyle.Render("Examples:") + `
  sifbench pull --manifest instances.txt --concurrency 4
  sifbench pull --manifest instances.txt --slice 100:200
  sifbench status
  sifbench script --manifest instances.txt > pull.sh
  sifbench logs prune --older-than 168h`,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/sifbench/config.cue)")

	app := NewApp(Dependencies{})

	// Add subcommands
	rootCmd.AddCommand(newPullCommand(app))
	rootCmd.AddCommand(newStatusCommand(app))
	rootCmd.AddCommand(newScriptCommand(app))
	rootCmd.AddCommand(newEnvCommand(app))
	rootCmd.AddCommand(newLogsCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command and maps ExitError to the process exit code.
// This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
