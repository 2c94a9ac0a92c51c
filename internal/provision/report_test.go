// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"strings"
	"testing"

	"sifbench/internal/registry"

	"mvdan.cc/sh/v3/syntax"
)

// mustParseShell fails the test if src is not valid POSIX shell.
func mustParseShell(t *testing.T, src string) {
	t.Helper()
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	if _, err := parser.Parse(strings.NewReader(src), ""); err != nil {
		t.Fatalf("generated script does not parse: %v\n%s", err, src)
	}
}

func TestDownstreamEnvScript(t *testing.T) {
	t.Parallel()

	script, err := DownstreamEnvScript("/var/lib/sifbench/images", "/scratch/cache", "singularity")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustParseShell(t, script)

	for _, want := range []string{
		"export OH_RUNTIME=singularity",
		"export SIFBENCH_STORE_DIR=/var/lib/sifbench/images",
		"export APPTAINER_CACHEDIR=/scratch/cache",
		"export SINGULARITY_CACHEDIR=/scratch/cache",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script should contain %q:\n%s", want, script)
		}
	}
}

func TestDownstreamEnvScript_NoCacheDir(t *testing.T) {
	t.Parallel()

	script, err := DownstreamEnvScript("/store", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(script, "CACHEDIR") {
		t.Errorf("cache exports should be omitted when unset:\n%s", script)
	}
	if !strings.Contains(script, "export OH_RUNTIME=apptainer") {
		t.Errorf("runtime should default to apptainer:\n%s", script)
	}
}

func TestDownstreamEnvScript_QuotesSpaces(t *testing.T) {
	t.Parallel()

	script, err := DownstreamEnvScript("/var/lib/My Store", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustParseShell(t, script)
	if !strings.Contains(script, "'/var/lib/My Store'") && !strings.Contains(script, `"/var/lib/My Store"`) {
		t.Errorf("path with spaces should be quoted:\n%s", script)
	}
}

func TestPullScript(t *testing.T) {
	t.Parallel()

	resolver := registry.Resolver{Namespace: "benchlab", Repository: "swe-eval"}
	var items []WorkItem
	for _, id := range []registry.InstanceID{"django__django-11001", "astropy__astropy-12907"} {
		ref, name, err := resolver.Resolve(id)
		if err != nil {
			t.Fatalf("failed to resolve %s: %v", id, err)
		}
		items = append(items, WorkItem{ID: id, Reference: ref, ArtifactName: name})
	}

	script, err := PullScript("apptainer", items, "/store", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustParseShell(t, script)

	for _, want := range []string{
		"#!/bin/sh",
		"mkdir -p /store",
		"apptainer pull /store/sweb.eval.x86_64.django_s_django-11001.sif docker://benchlab/swe-eval:sweb.eval.x86_64.django_s_django-11001",
		"apptainer pull /store/sweb.eval.x86_64.astropy_s_astropy-12907.sif docker://benchlab/swe-eval:sweb.eval.x86_64.astropy_s_astropy-12907",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script should contain %q:\n%s", want, script)
		}
	}
	if strings.Contains(script, "--force") {
		t.Error("force flag should be absent by default")
	}
}

func TestPullScript_ForceAndDefaultTool(t *testing.T) {
	t.Parallel()

	resolver := registry.Resolver{Namespace: "benchlab", Repository: "swe-eval"}
	ref, name, err := resolver.Resolve("django__django-11001")
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}

	script, err := PullScript("", []WorkItem{{Reference: ref, ArtifactName: name}}, "/store", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustParseShell(t, script)

	if !strings.Contains(script, "apptainer pull --force") {
		t.Errorf("expected default tool with force flag:\n%s", script)
	}
}
