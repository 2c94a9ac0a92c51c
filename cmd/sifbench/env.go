// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"sifbench/internal/issue"
	"sifbench/internal/provision"

	"github.com/spf13/cobra"
)

// newEnvCommand creates the `sifbench env` command.
func newEnvCommand(app *App) *cobra.Command {
	var (
		storeDir string
		cacheDir string
	)

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Print a sourceable snippet pointing consumers at the store",
		Long: `Env prints shell export lines for the store directory and, when a
cache directory is configured, the conversion tool's cache variables.
Typical use:

  eval "$(sifbench env)"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				renderIssue(app, issue.ConfigLoadFailedId)
				return err
			}
			if storeDir != "" {
				cfg.StoreDir = storeDir
			}
			if cacheDir != "" {
				cfg.CacheDir = cacheDir
			}

			snippet, err := provision.DownstreamEnvScript(cfg.StoreDir, cfg.CacheDir, cfg.Engine)
			if err != nil {
				return err
			}
			fmt.Fprint(app.Stdout, snippet)
			return nil
		},
	}

	envCmd.Flags().StringVar(&storeDir, "store-dir", "", "local artifact store directory")
	envCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "scratch directory for the conversion tool")

	return envCmd
}
