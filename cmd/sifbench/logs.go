// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"time"

	"sifbench/internal/issue"
	"sifbench/internal/store"

	"github.com/spf13/cobra"
)

// newLogsCommand creates the `sifbench logs` command group.
func newLogsCommand(app *App) *cobra.Command {
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Manage retained failure logs",
		Long: `Logs manages the per-instance failure transcripts the pipeline
retains when a pull fails. Successful and skipped instances never
leave a log behind.`,
	}

	logsCmd.AddCommand(newLogsPathCommand(app))
	logsCmd.AddCommand(newLogsPruneCommand(app))

	return logsCmd
}

// newLogsPathCommand creates `sifbench logs path`.
func newLogsPathCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the failure log directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				renderIssue(app, issue.ConfigLoadFailedId)
				return err
			}
			fmt.Fprintln(app.Stdout, cfg.LogDir)
			return nil
		},
	}
}

// newLogsPruneCommand creates `sifbench logs prune`.
func newLogsPruneCommand(app *App) *cobra.Command {
	var olderThan time.Duration

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete failure logs older than a cutoff",
		Long: `Prune deletes retained failure logs older than the given duration.
Only files written by this tool are touched; anything else in the log
directory is left alone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				renderIssue(app, issue.ConfigLoadFailedId)
				return err
			}

			logs, err := store.NewFailureLogs(cfg.LogDir)
			if err != nil {
				return err
			}

			removed, err := logs.Prune(olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Stdout, "Removed %d failure log(s) from %s\n", removed, PathStyle.Render(cfg.LogDir))
			return nil
		},
	}

	pruneCmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "age cutoff for deletion")

	return pruneCmd
}
