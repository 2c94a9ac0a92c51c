// SPDX-License-Identifier: MPL-2.0

package main

import (
	"io"
	"strings"
	"testing"

	"sifbench/internal/config"
)

func TestScriptCommand_GeneratesPullCommands(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Registry.Namespace = "swebench"
	cfg.StoreDir = "/var/lib/sifbench/images"
	app, stdout, _ := newTestApp(cfg)

	cmd := newScriptCommand(app)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--instance-ids", "django__django-11001,astropy__astropy-12907"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("script command error = %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"#!/bin/sh",
		"mkdir -p /var/lib/sifbench/images",
		"apptainer pull /var/lib/sifbench/images/sweb.eval.x86_64.django_s_django-11001.sif docker://swebench/swe-bench:sweb.eval.x86_64.django_s_django-11001",
		"sweb.eval.x86_64.astropy_s_astropy-12907.sif",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("script missing %q:\n%s", want, out)
		}
	}
}

func TestScriptCommand_ForceAndEngine(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Registry.Namespace = "swebench"
	app, stdout, _ := newTestApp(cfg)

	cmd := newScriptCommand(app)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--instance-ids", "a__b-1", "--force", "--engine", "singularity"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("script command error = %v", err)
	}

	if !strings.Contains(stdout.String(), "singularity pull --force ") {
		t.Errorf("script should use the configured tool with --force:\n%s", stdout.String())
	}
}

func TestScriptCommand_FailsOnUnresolvableID(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Registry.Namespace = "swebench"
	app, _, _ := newTestApp(cfg)

	cmd := newScriptCommand(app)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--instance-ids", "bad id with spaces"})

	if err := cmd.Execute(); err == nil {
		t.Error("script command should fail for an unresolvable ID")
	}
}

func TestScriptCommand_RequiresInstances(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Registry.Namespace = "swebench"
	app, _, _ := newTestApp(cfg)

	cmd := newScriptCommand(app)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err == nil {
		t.Error("script command should fail when no instance list is supplied")
	}
}

func TestEnvCommand(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.StoreDir = "/var/lib/sifbench/images"
	cfg.CacheDir = "/var/cache/sifbench"
	app, stdout, _ := newTestApp(cfg)

	cmd := newEnvCommand(app)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("env command error = %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"export OH_RUNTIME=apptainer",
		"export SIFBENCH_STORE_DIR=/var/lib/sifbench/images",
		"export APPTAINER_CACHEDIR=/var/cache/sifbench",
		"export SINGULARITY_CACHEDIR=/var/cache/sifbench",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("env output missing %q:\n%s", want, out)
		}
	}
}
