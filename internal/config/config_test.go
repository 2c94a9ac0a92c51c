// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfigFile places a config.cue in a fresh override config dir.
func writeConfigFile(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)
}

func TestLoad_Defaults(t *testing.T) {
	SetConfigDirOverride(t.TempDir()) // empty dir: no config file
	t.Cleanup(Reset)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Concurrency != 1 {
		t.Errorf("default concurrency should be 1, got %d", cfg.Concurrency)
	}
	if cfg.Arch != "x86_64" {
		t.Errorf("default arch should be x86_64, got %q", cfg.Arch)
	}
	if cfg.Registry.Namespace != "" {
		t.Errorf("namespace should have no default, got %q", cfg.Registry.Namespace)
	}
	if cfg.Registry.Repository == "" {
		t.Error("repository should have a default")
	}
}

func TestLoad_CUEFile(t *testing.T) {
	writeConfigFile(t, `
registry: {
	namespace:  "benchlab"
	repository: "swe-eval"
}
concurrency: 4
engine:      "singularity"
`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Registry.Namespace != "benchlab" {
		t.Errorf("namespace = %q, want benchlab", cfg.Registry.Namespace)
	}
	if cfg.Registry.Repository != "swe-eval" {
		t.Errorf("repository = %q, want swe-eval", cfg.Registry.Repository)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.Engine != "singularity" {
		t.Errorf("engine = %q, want singularity", cfg.Engine)
	}
	// Unset fields keep their defaults.
	if cfg.Arch != "x86_64" {
		t.Errorf("arch should keep default, got %q", cfg.Arch)
	}
}

func TestLoad_InvalidCUE(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantIn  string
	}{
		{"wrong type", `concurrency: "four"`, "concurrency"},
		{"below minimum", `concurrency: 0`, "concurrency"},
		{"unknown engine", `engine: "docker"`, "engine"},
		{"syntax error", `registry: {`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfigFile(t, tt.content)

			_, err := NewProvider().Load(context.Background(), LoadOptions{})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantIn != "" && !strings.Contains(err.Error(), tt.wantIn) {
				t.Errorf("error should mention %q: %v", tt.wantIn, err)
			}
		})
	}
}

func TestLoad_ExplicitFileNotFound(t *testing.T) {
	_, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "missing.cue"),
	})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	SetConfigDirOverride(t.TempDir())
	t.Cleanup(Reset)
	t.Setenv("SIFBENCH_REGISTRY_NAMESPACE", "from-env")
	t.Setenv("SIFBENCH_CONCURRENCY", "3")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Registry.Namespace != "from-env" {
		t.Errorf("namespace = %q, want from-env", cfg.Registry.Namespace)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("concurrency = %d, want 3", cfg.Concurrency)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewProvider().Load(ctx, LoadOptions{}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestGenerateCUE_RoundTrips(t *testing.T) {
	src := DefaultConfig()
	src.Registry.Namespace = "benchlab"
	src.Engine = "apptainer"
	src.Concurrency = 8

	writeConfigFile(t, GenerateCUE(src))

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("generated config should load cleanly: %v", err)
	}
	if cfg.Registry.Namespace != "benchlab" || cfg.Engine != "apptainer" || cfg.Concurrency != 8 {
		t.Errorf("round-trip mismatch: %+v", cfg)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	if err := CreateDefaultConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file should exist: %v", err)
	}

	// A second call must not clobber an existing file.
	if err := os.WriteFile(path, []byte("concurrency: 7\n"), 0o644); err != nil {
		t.Fatalf("failed to overwrite config: %v", err)
	}
	if err := CreateDefaultConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if !strings.Contains(string(data), "concurrency: 7") {
		t.Error("existing config file should be preserved")
	}
}
