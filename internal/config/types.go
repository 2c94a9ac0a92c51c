// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"

	"sifbench/internal/registry"
	"sifbench/internal/store"
)

type (
	// Config is the root configuration structure.
	Config struct {
		// Registry locates the remote artifact repository.
		Registry RegistryConfig `mapstructure:"registry"`
		// Arch selects the architecture segment of image tags and
		// artifact file names (default "x86_64").
		Arch string `mapstructure:"arch"`
		// StoreDir is the local artifact store directory.
		StoreDir string `mapstructure:"store_dir"`
		// CacheDir is the scratch directory handed to the conversion tool.
		// Empty lets the tool use its own default.
		CacheDir string `mapstructure:"cache_dir"`
		// LogDir holds per-instance failure logs. Empty selects the
		// fixed temp-directory default.
		LogDir string `mapstructure:"log_dir"`
		// Concurrency bounds how many instances are provisioned at once.
		Concurrency int `mapstructure:"concurrency"`
		// Engine forces a specific conversion tool ("apptainer" or
		// "singularity"). Empty auto-detects.
		Engine string `mapstructure:"engine"`
	}

	// RegistryConfig identifies where per-instance images live.
	RegistryConfig struct {
		// Host is an optional registry host prefix (empty means the
		// default registry of the conversion tool).
		Host string `mapstructure:"host"`
		// Namespace is the registry user or organization. Required.
		Namespace string `mapstructure:"namespace"`
		// Repository holds the per-instance tags.
		Repository string `mapstructure:"repository"`
	}
)

// DefaultConfig returns the configuration used when no config file exists.
// The registry namespace has no default: it names someone's account and
// must be chosen deliberately.
func DefaultConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			Repository: "swe-bench",
		},
		Arch:        registry.DefaultArch,
		StoreDir:    store.DefaultDir(),
		LogDir:      store.DefaultFailureLogDir(),
		Concurrency: 1,
	}
}

// Validate checks constraints the CUE schema cannot express and the
// presence of required fields.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Registry.Namespace) == "" {
		return fmt.Errorf("registry.namespace is required")
	}
	if strings.TrimSpace(c.Registry.Repository) == "" {
		return fmt.Errorf("registry.repository is required")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	switch c.Engine {
	case "", "apptainer", "singularity":
	default:
		return fmt.Errorf("engine must be \"apptainer\" or \"singularity\", got %q", c.Engine)
	}
	return nil
}

// Resolver builds the image-reference resolver described by this config.
func (c *Config) Resolver() registry.Resolver {
	return registry.Resolver{
		Host:       c.Registry.Host,
		Namespace:  c.Registry.Namespace,
		Repository: c.Registry.Repository,
		Arch:       c.Arch,
	}
}
