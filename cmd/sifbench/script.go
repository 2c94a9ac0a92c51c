// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"

	"sifbench/internal/issue"
	"sifbench/internal/manifest"
	"sifbench/internal/provision"

	"github.com/spf13/cobra"
)

// newScriptCommand creates the `sifbench script` command.
func newScriptCommand(app *App) *cobra.Command {
	flags := &pullFlags{}

	scriptCmd := &cobra.Command{
		Use:   "script",
		Short: "Print a shell script that pulls the requested instances",
		Long: `Script resolves the requested instance IDs and prints a standalone
POSIX shell script with one pull command per instance. Use it to
provision on a machine where sifbench itself is not installed, or to
review the exact commands the pipeline would run.

Unlike pull, script requires every ID to resolve: an invalid ID is a
hard error so a broken command never lands in the output.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Context(), cmd, app, flags)
			if err != nil {
				return err
			}

			ids, err := manifest.Source{IDs: flags.instanceIDs, File: flags.manifestF, Slice: flags.slice}.Load()
			if err != nil {
				if errors.Is(err, manifest.ErrNoSource) {
					renderIssue(app, issue.ManifestMissingId)
				}
				return err
			}

			resolver := cfg.Resolver()
			items := make([]provision.WorkItem, 0, len(ids))
			for _, id := range ids {
				ref, name, err := resolver.Resolve(id)
				if err != nil {
					return fmt.Errorf("cannot resolve %q: %w", id, err)
				}
				items = append(items, provision.WorkItem{ID: id, Reference: ref, ArtifactName: name})
			}

			script, err := provision.PullScript(cfg.Engine, items, cfg.StoreDir, flags.force)
			if err != nil {
				return err
			}
			fmt.Fprint(app.Stdout, script)
			return nil
		},
	}

	scriptCmd.Flags().StringVar(&flags.instanceIDs, "instance-ids", "", "comma-separated instance IDs")
	scriptCmd.Flags().StringVar(&flags.manifestF, "manifest", "", "manifest file with one instance ID per line")
	scriptCmd.Flags().StringVar(&flags.slice, "slice", "", "restrict to a start:end slice of the instance list")
	scriptCmd.Flags().BoolVar(&flags.force, "force", false, "include --force in the generated pull commands")
	scriptCmd.Flags().StringVar(&flags.arch, "arch", "", "architecture segment of image tags (default from config)")
	scriptCmd.Flags().StringVar(&flags.host, "host", "", "registry host prefix")
	scriptCmd.Flags().StringVar(&flags.namespace, "namespace", "", "registry namespace to pull from")
	scriptCmd.Flags().StringVar(&flags.repository, "repository", "", "repository holding the per-instance tags")
	scriptCmd.Flags().StringVar(&flags.storeDir, "store-dir", "", "local artifact store directory")
	scriptCmd.Flags().StringVar(&flags.engine, "engine", "", "tool name to use in the generated commands")

	return scriptCmd
}
