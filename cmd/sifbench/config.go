// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"sifbench/internal/config"
	"sifbench/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `sifbench config` command tree.
// Subcommands that read configuration use the App's config provider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage sifbench configuration",
		Long: `Manage sifbench configuration.

Configuration is stored in:
  - Linux: ~/.config/sifbench/config.cue
  - macOS: ~/Library/Application Support/sifbench/config.cue
  - Windows: %APPDATA%\sifbench\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{})
			if err != nil {
				return err
			}

			fmt.Fprint(app.Stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{})
	if err != nil {
		renderIssue(app, issue.ConfigLoadFailedId)
		return err
	}

	keyStyle := SubtitleStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(app.Stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.Stdout)

	// Derive the config file path from the standard config directory; the
	// provider does not cache resolved paths.
	if cfgDir, dirErr := config.ConfigDir(); dirErr == nil {
		cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
		if fileExistsCheck(cfgPath) {
			fmt.Fprintf(app.Stdout, "%s: %s\n", keyStyle.Render("Config file"), PathStyle.Render(cfgPath))
		} else {
			fmt.Fprintf(app.Stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	} else {
		fmt.Fprintf(app.Stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(app.Stdout)

	fmt.Fprintf(app.Stdout, "%s:\n", keyStyle.Render("registry"))
	if cfg.Registry.Host != "" {
		fmt.Fprintf(app.Stdout, "  host:       %s\n", valueStyle.Render(cfg.Registry.Host))
	}
	if cfg.Registry.Namespace != "" {
		fmt.Fprintf(app.Stdout, "  namespace:  %s\n", valueStyle.Render(cfg.Registry.Namespace))
	} else {
		fmt.Fprintf(app.Stdout, "  namespace:  %s\n", WarningStyle.Render("(not set, required for pull)"))
	}
	fmt.Fprintf(app.Stdout, "  repository: %s\n", valueStyle.Render(cfg.Registry.Repository))

	fmt.Fprintln(app.Stdout)
	fmt.Fprintf(app.Stdout, "%s: %s\n", keyStyle.Render("arch"), valueStyle.Render(cfg.Arch))
	fmt.Fprintf(app.Stdout, "%s: %s\n", keyStyle.Render("store_dir"), valueStyle.Render(cfg.StoreDir))
	if cfg.CacheDir != "" {
		fmt.Fprintf(app.Stdout, "%s: %s\n", keyStyle.Render("cache_dir"), valueStyle.Render(cfg.CacheDir))
	}
	fmt.Fprintf(app.Stdout, "%s: %s\n", keyStyle.Render("log_dir"), valueStyle.Render(cfg.LogDir))
	fmt.Fprintf(app.Stdout, "%s: %s\n", keyStyle.Render("concurrency"), valueStyle.Render(strconv.Itoa(cfg.Concurrency)))
	if cfg.Engine != "" {
		fmt.Fprintf(app.Stdout, "%s: %s\n", keyStyle.Render("engine"), valueStyle.Render(cfg.Engine))
	} else {
		fmt.Fprintf(app.Stdout, "%s: %s\n", keyStyle.Render("engine"), SubtitleStyle.Render("(auto-detect)"))
	}

	return nil
}

func initConfig(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err = config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(app.Stdout, "%s Created default configuration at %s\n",
		SuccessStyle.Render("✓"),
		PathStyle.Render(filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)))
	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.Stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}

func setConfigValue(ctx context.Context, app *App, key, value string) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{})
	if err != nil {
		return err
	}

	switch key {
	case "registry.host":
		cfg.Registry.Host = value

	case "registry.namespace":
		cfg.Registry.Namespace = value

	case "registry.repository":
		cfg.Registry.Repository = value

	case "arch":
		cfg.Arch = value

	case "store_dir":
		cfg.StoreDir = value

	case "cache_dir":
		cfg.CacheDir = value

	case "log_dir":
		cfg.LogDir = value

	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid concurrency: must be a positive integer")
		}
		cfg.Concurrency = n

	case "engine":
		if value != "apptainer" && value != "singularity" && value != "" {
			return fmt.Errorf("invalid engine: must be 'apptainer' or 'singularity'")
		}
		cfg.Engine = value

	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: registry.host, registry.namespace, registry.repository, arch, store_dir, cache_dir, log_dir, concurrency, engine", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(app.Stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
