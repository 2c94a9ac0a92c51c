// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"
	"strings"

	"sifbench/internal/container"
	"sifbench/internal/issue"
	"sifbench/internal/store"

	"github.com/spf13/cobra"
)

// newStatusCommand creates the `sifbench status` command.
func newStatusCommand(app *App) *cobra.Command {
	var (
		storeDir string
		inspect  bool
	)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "List provisioned artifacts in the local store",
		Long: `Status scans the local store directory and lists every completed
SIF artifact. In-progress staging files are never listed: an artifact
only counts once it has been renamed into its final name.

With --inspect, each artifact's embedded metadata is printed as reported
by the conversion tool.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				renderIssue(app, issue.ConfigLoadFailedId)
				return err
			}
			if storeDir != "" {
				cfg.StoreDir = storeDir
			}

			st, err := store.New(cfg.StoreDir)
			if err != nil {
				return err
			}

			artifacts, err := st.Scan()
			if err != nil {
				if errors.Is(err, store.ErrStoreUnreadable) {
					renderIssue(app, issue.StoreUnreadableId)
				}
				return err
			}

			fmt.Fprintln(app.Stdout, TitleStyle.Render("Local SIF Store"))
			fmt.Fprintf(app.Stdout, "%s %s\n\n", SubtitleStyle.Render("directory:"), PathStyle.Render(st.Dir()))

			if len(artifacts) == 0 {
				fmt.Fprintln(app.Stdout, SubtitleStyle.Render("No artifacts provisioned yet. Run 'sifbench pull' to get started."))
				return nil
			}

			var engine container.Engine
			if inspect {
				engine, err = selectEngine(cfg)
				if err != nil {
					var notAvailable *container.ErrEngineNotAvailable
					if errors.As(err, &notAvailable) {
						renderIssue(app, issue.EngineNotFoundId)
					}
					return err
				}
			}

			var totalBytes int64
			for _, a := range artifacts {
				fmt.Fprintf(app.Stdout, "  %s %s (%s)\n", SuccessStyle.Render("✓"), a.Name, formatSize(a.Size))
				totalBytes += a.Size

				if engine == nil {
					continue
				}
				meta, err := engine.Inspect(cmd.Context(), st.ArtifactPath(a.Name))
				if err != nil {
					fmt.Fprintf(app.Stdout, "    %s %v\n", WarningStyle.Render("inspect failed:"), err)
					continue
				}
				fmt.Fprint(app.Stdout, indentLines(meta, "    "))
			}
			fmt.Fprintf(app.Stdout, "\n%d artifact(s), %s total\n", len(artifacts), formatSize(totalBytes))
			return nil
		},
	}

	statusCmd.Flags().StringVar(&storeDir, "store-dir", "", "local artifact store directory")
	statusCmd.Flags().BoolVar(&inspect, "inspect", false, "print each artifact's embedded metadata")

	return statusCmd
}

// indentLines prefixes every non-empty line of s with the given indent.
func indentLines(s, indent string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString(indent + line + "\n")
	}
	return b.String()
}

// formatSize renders a byte count in a human-friendly unit.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
