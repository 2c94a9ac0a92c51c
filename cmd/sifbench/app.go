// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"io"
	"os"

	"sifbench/internal/config"
)

type (
	// App wires CLI services and shared dependencies. All Cobra command
	// handlers receive an App reference and load configuration through it,
	// which lets tests swap in custom providers and capture output.
	App struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}

	// Dependencies defines the injection points for building an App.
	// Nil fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}

	return &App{
		Config: deps.Config,
		Stdout: deps.Stdout,
		Stderr: deps.Stderr,
	}
}

// loadConfig loads configuration honoring the --config flag.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	return a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
}
