// SPDX-License-Identifier: MPL-2.0

package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sifbench/internal/config"
)

func TestFormatSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{name: "bytes", bytes: 512, want: "512 B"},
		{name: "kilobytes", bytes: 2048, want: "2.0 KB"},
		{name: "megabytes", bytes: 5 * 1024 * 1024, want: "5.0 MB"},
		{name: "gigabytes", bytes: 3 * 1024 * 1024 * 1024, want: "3.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatSize(tt.bytes); got != tt.want {
				t.Errorf("formatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestStatusCommand_ListsArtifacts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"sweb.eval.x86_64.django_s_django-11001.sif",
		"sweb.eval.x86_64.astropy_s_astropy-12907.sif",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("sif-bytes"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Staging leftovers and unrelated files must never be listed.
	if err := os.WriteFile(filepath.Join(dir, "sweb.eval.x86_64.other.sif.partial"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	app, stdout, _ := newTestApp(cfg)

	cmd := newStatusCommand(app)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--store-dir", dir})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("status command error = %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "django_s_django-11001") || !strings.Contains(out, "astropy_s_astropy-12907") {
		t.Errorf("status output missing artifacts:\n%s", out)
	}
	if strings.Contains(out, "partial") {
		t.Errorf("status output lists staging files:\n%s", out)
	}
	if !strings.Contains(out, "2 artifact(s)") {
		t.Errorf("status output missing totals:\n%s", out)
	}
}

func TestStatusCommand_Inspect(t *testing.T) {
	// Not parallel: mutates PATH.
	bin := t.TempDir()
	script := "#!/bin/sh\n" +
		"if [ \"$1\" = \"inspect\" ]; then echo \"org.label-schema.build-date: 2026-08-01\"; fi\n" +
		"exit 0\n"
	if err := os.WriteFile(filepath.Join(bin, "apptainer"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin)
	t.Setenv("APPTAINER_EXECUTABLE", "")

	dir := t.TempDir()
	name := "sweb.eval.x86_64.django_s_django-11001.sif"
	if err := os.WriteFile(filepath.Join(dir, name), []byte("sif-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	app, stdout, _ := newTestApp(cfg)

	cmd := newStatusCommand(app)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--store-dir", dir, "--inspect"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("status --inspect error = %v", err)
	}

	if !strings.Contains(stdout.String(), "org.label-schema.build-date: 2026-08-01") {
		t.Errorf("status --inspect should print artifact metadata:\n%s", stdout.String())
	}
}

func TestStatusCommand_EmptyStore(t *testing.T) {
	cfg := config.DefaultConfig()
	app, stdout, _ := newTestApp(cfg)

	cmd := newStatusCommand(app)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--store-dir", t.TempDir()})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("status command error = %v", err)
	}

	if !strings.Contains(stdout.String(), "No artifacts provisioned yet") {
		t.Errorf("empty store should print a hint:\n%s", stdout.String())
	}
}
