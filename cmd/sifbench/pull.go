// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"

	"sifbench/internal/config"
	"sifbench/internal/container"
	"sifbench/internal/issue"
	"sifbench/internal/manifest"
	"sifbench/internal/provision"
	"sifbench/internal/store"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// maxFailureExitCode caps the exit code so large batches cannot collide
// with shell-reserved codes (126+).
const maxFailureExitCode = 125

// pullFlags carries the per-invocation overrides of the pull command.
type pullFlags struct {
	instanceIDs string
	manifestF   string
	slice       string
	concurrency int
	force       bool
	arch        string
	host        string
	namespace   string
	repository  string
	storeDir    string
	cacheDir    string
	logDir      string
	engine      string
}

// newPullCommand creates the `sifbench pull` command.
func newPullCommand(app *App) *cobra.Command {
	flags := &pullFlags{}

	pullCmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull and convert benchmark images into the local SIF store",
		Long: `Pull pre-built benchmark images from the registry and convert each
into a local SIF artifact.

Artifacts already present in the store are skipped, so re-running after
a partial failure only does the remaining work. The exit code is the
number of instances that failed in this run (capped at 125); a run that
only skips already-provisioned work exits 0.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPull(cmd.Context(), cmd, app, flags)
		},
	}

	pullCmd.Flags().StringVar(&flags.instanceIDs, "instance-ids", "", "comma-separated instance IDs to provision")
	pullCmd.Flags().StringVar(&flags.manifestF, "manifest", "", "manifest file with one instance ID per line")
	pullCmd.Flags().StringVar(&flags.slice, "slice", "", "provision only a start:end slice of the instance list")
	pullCmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "max concurrent pulls (default from config)")
	pullCmd.Flags().BoolVar(&flags.force, "force", false, "re-pull artifacts that already exist")
	pullCmd.Flags().StringVar(&flags.arch, "arch", "", "architecture segment of image tags (default from config)")
	pullCmd.Flags().StringVar(&flags.host, "host", "", "registry host prefix")
	pullCmd.Flags().StringVar(&flags.namespace, "namespace", "", "registry namespace to pull from")
	pullCmd.Flags().StringVar(&flags.repository, "repository", "", "repository holding the per-instance tags")
	pullCmd.Flags().StringVar(&flags.storeDir, "store-dir", "", "local artifact store directory")
	pullCmd.Flags().StringVar(&flags.cacheDir, "cache-dir", "", "scratch directory for the conversion tool")
	pullCmd.Flags().StringVar(&flags.logDir, "log-dir", "", "directory for per-instance failure logs")
	pullCmd.Flags().StringVar(&flags.engine, "engine", "", "conversion tool (apptainer or singularity, default auto-detect)")

	return pullCmd
}

// resolveConfig loads configuration and overlays the command-line flags.
func resolveConfig(ctx context.Context, cmd *cobra.Command, app *App, flags *pullFlags) (*config.Config, error) {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		renderIssue(app, issue.ConfigLoadFailedId)
		return nil, err
	}

	if flags.host != "" {
		cfg.Registry.Host = flags.host
	}
	if flags.namespace != "" {
		cfg.Registry.Namespace = flags.namespace
	}
	if flags.repository != "" {
		cfg.Registry.Repository = flags.repository
	}
	if flags.arch != "" {
		cfg.Arch = flags.arch
	}
	if flags.storeDir != "" {
		cfg.StoreDir = flags.storeDir
	}
	if flags.cacheDir != "" {
		cfg.CacheDir = flags.cacheDir
	}
	if flags.logDir != "" {
		cfg.LogDir = flags.logDir
	}
	if flags.engine != "" {
		cfg.Engine = flags.engine
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = flags.concurrency
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// selectEngine picks the conversion engine: a configured tool is used as a
// preference with fallback, otherwise auto-detection applies.
func selectEngine(cfg *config.Config) (container.Engine, error) {
	if cfg.Engine != "" {
		return container.NewEngine(container.EngineType(cfg.Engine))
	}
	return container.AutoDetectEngine()
}

func runPull(ctx context.Context, cmd *cobra.Command, app *App, flags *pullFlags) error {
	cfg, err := resolveConfig(ctx, cmd, app, flags)
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

	engine, err := selectEngine(cfg)
	if err != nil {
		var notAvailable *container.ErrEngineNotAvailable
		if errors.As(err, &notAvailable) {
			renderIssue(app, issue.EngineNotFoundId)
		}
		return err
	}

	st, err := store.New(cfg.StoreDir)
	if err != nil {
		return err
	}
	logs, err := store.NewFailureLogs(cfg.LogDir)
	if err != nil {
		return err
	}

	logger := log.NewWithOptions(app.Stderr, log.Options{
		Prefix: "sifbench",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	logger.Info("provisioning", "instances", len(ids), "engine", engine.Name(), "concurrency", cfg.Concurrency)

	prov, err := provision.New(provision.Options{
		Engine:   engine,
		Store:    st,
		Logs:     logs,
		Resolver: cfg.Resolver(),
		Force:    flags.force,
		CacheDir: cfg.CacheDir,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	outcomes := prov.Run(ctx, ids, cfg.Concurrency)

	// The summary re-checks the store on disk rather than trusting the
	// outcome slice, so artifacts from earlier runs count too.
	summary, err := st.Summarize(provision.ArtifactNames(outcomes))
	if err != nil {
		if errors.Is(err, store.ErrStoreUnreadable) {
			renderIssue(app, issue.StoreUnreadableId)
		}
		return err
	}

	envBlock, err := provision.DownstreamEnvScript(cfg.StoreDir, cfg.CacheDir, engine.Name())
	if err != nil {
		return err
	}
	printPullSummary(app, summary, outcomes, envBlock)

	if failed := provision.CountFailed(outcomes); failed > 0 {
		return &ExitError{
			Code: failureExitCode(failed),
			Err:  fmt.Errorf("%d of %d instance(s) failed", failed, len(ids)),
		}
	}
	return nil
}

// failureExitCode maps a failure count to the process exit code.
func failureExitCode(failed int) int {
	if failed > maxFailureExitCode {
		return maxFailureExitCode
	}
	return failed
}

// printPullSummary emits the run's report: on-disk counts for the requested
// set, the full artifact listing with sizes, per-failure detail, and a
// copy-pasteable configuration block for downstream consumers.
func printPullSummary(app *App, summary *store.Summary, outcomes []provision.Outcome, envBlock string) {
	fmt.Fprintln(app.Stdout)
	fmt.Fprintln(app.Stdout, TitleStyle.Render("Provisioning Summary"))
	fmt.Fprintf(app.Stdout, "  requested:  %d\n", summary.Total)
	fmt.Fprintf(app.Stdout, "  on disk:    %s\n", SuccessStyle.Render(fmt.Sprintf("%d", summary.Successful)))
	fmt.Fprintf(app.Stdout, "  missing:    %s\n", ErrorStyle.Render(fmt.Sprintf("%d", summary.Failed)))

	if len(summary.Artifacts) > 0 {
		fmt.Fprintf(app.Stdout, "\n%s\n", SubtitleStyle.Render("Artifacts in store:"))
		for _, a := range summary.Artifacts {
			fmt.Fprintf(app.Stdout, "  %s (%s)\n", PathStyle.Render(a.Name), formatSize(a.Size))
		}
	}

	transient := false
	for _, o := range outcomes {
		if o.Status != provision.StatusFailed {
			continue
		}
		fmt.Fprintf(app.Stdout, "\n%s %s: %s\n", ErrorStyle.Render("failed"), o.ID, formatErrorForDisplay(o.Err, verbose))
		if o.LogPath != "" {
			fmt.Fprintf(app.Stdout, "  log: %s\n", PathStyle.Render(o.LogPath))
		}
		transient = transient || o.Transient
	}
	if transient {
		fmt.Fprintf(app.Stdout, "\n%s\n", WarningStyle.Render("Some failures look transient (network/registry); re-running may succeed."))
	}

	fmt.Fprintf(app.Stdout, "\n%s\n%s", SubtitleStyle.Render("Downstream configuration:"), envBlock)
}

// renderIssue prints a catalog help page to stderr. Rendering failures are
// swallowed: the error itself is still returned to the user by the caller.
func renderIssue(app *App, id issue.Id) {
	if entry := issue.Lookup(id); entry != nil {
		if rendered, err := entry.Render(); err == nil {
			fmt.Fprint(app.Stderr, rendered)
		}
	}
}
