// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions pins down where configuration comes from for one load.
type LoadOptions struct {
	// ConfigFilePath loads exactly this CUE file when set (the --config
	// flag); a missing file is then an error rather than a fallthrough.
	ConfigFilePath string
	// ConfigDirPath overrides the platform config directory lookup.
	ConfigDirPath string
}

// Provider loads pipeline configuration. Commands hold a Provider rather
// than calling the loader directly so tests can substitute a fixed Config.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider returns the production provider backed by the CUE config
// file, environment overrides, and built-in defaults.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load resolves and validates configuration for the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
