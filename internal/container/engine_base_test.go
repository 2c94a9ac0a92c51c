// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"
)

func TestPullArgs(t *testing.T) {
	t.Parallel()

	e := NewBaseCLIEngine("/usr/bin/apptainer")

	tests := []struct {
		name string
		opts PullOptions
		want []string
	}{
		{
			name: "basic",
			opts: PullOptions{
				Reference: "docker://benchlab/swe-eval:sweb.eval.x86_64.django_s_django-11001",
				DestPath:  "/store/sweb.eval.x86_64.django_s_django-11001.sif.partial",
			},
			want: []string{
				"pull",
				"/store/sweb.eval.x86_64.django_s_django-11001.sif.partial",
				"docker://benchlab/swe-eval:sweb.eval.x86_64.django_s_django-11001",
			},
		},
		{
			name: "force",
			opts: PullOptions{
				Reference: "docker://benchlab/swe-eval:tag",
				DestPath:  "/store/out.sif",
				Force:     true,
			},
			want: []string{"pull", "--force", "/store/out.sif", "docker://benchlab/swe-eval:tag"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := e.PullArgs(tt.opts); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PullArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPull_InvokesTool(t *testing.T) {
	recorder := NewMockCommandRecorder()
	e := NewApptainerEngine(
		WithBinaryPath("/usr/bin/apptainer"),
		WithExecCommand(recorder.ContextCommandFunc(t)),
	)

	err := e.Pull(context.Background(), PullOptions{
		Reference: "docker://benchlab/swe-eval:tag",
		DestPath:  "/store/out.sif.partial",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recorder.AssertInvocationCount(t, 1)
	recorder.AssertCommandName(t, "/usr/bin/apptainer")
	recorder.AssertFirstArg(t, "pull")
	recorder.AssertArgsNotContain(t, "--force")

	// Destination precedes the reference.
	args := recorder.LastArgs()
	if args[len(args)-2] != "/store/out.sif.partial" || args[len(args)-1] != "docker://benchlab/swe-eval:tag" {
		t.Errorf("unexpected arg order: %v", args)
	}
}

func TestPull_StreamsOutput(t *testing.T) {
	recorder := NewMockCommandRecorder()
	recorder.Stdout = "INFO: Converting OCI blobs to SIF format\n"
	recorder.Stderr = "WARNING: slow registry\n"

	e := NewApptainerEngine(
		WithBinaryPath("/usr/bin/apptainer"),
		WithExecCommand(recorder.ContextCommandFunc(t)),
	)

	var out bytes.Buffer
	err := e.Pull(context.Background(), PullOptions{
		Reference: "docker://benchlab/swe-eval:tag",
		DestPath:  "/store/out.sif.partial",
		Output:    &out,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), "Converting OCI blobs") {
		t.Errorf("stdout should be streamed to Output, got %q", out.String())
	}
	if !strings.Contains(out.String(), "slow registry") {
		t.Errorf("stderr should be streamed to Output, got %q", out.String())
	}
}

func TestPull_CacheDirEnv(t *testing.T) {
	recorder := NewMockCommandRecorder()
	e := NewApptainerEngine(
		WithBinaryPath("/usr/bin/apptainer"),
		WithExecCommand(recorder.ContextCommandFunc(t)),
	)

	err := e.Pull(context.Background(), PullOptions{
		Reference: "docker://benchlab/swe-eval:tag",
		DestPath:  "/store/out.sif.partial",
		CacheDir:  "/scratch/cache",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env := recorder.LastCmd().Env
	if !slices.Contains(env, "APPTAINER_CACHEDIR=/scratch/cache") {
		t.Error("APPTAINER_CACHEDIR should be set on the pull command")
	}
	if !slices.Contains(env, "SINGULARITY_CACHEDIR=/scratch/cache") {
		t.Error("SINGULARITY_CACHEDIR should be set on the pull command")
	}
}

func TestPull_Failure(t *testing.T) {
	recorder := NewMockCommandRecorder()
	recorder.ExitCode = 255
	recorder.Stderr = "FATAL: unable to pull: manifest unknown"

	e := NewApptainerEngine(
		WithBinaryPath("/usr/bin/apptainer"),
		WithExecCommand(recorder.ContextCommandFunc(t)),
	)

	var out bytes.Buffer
	err := e.Pull(context.Background(), PullOptions{
		Reference: "docker://benchlab/swe-eval:tag",
		DestPath:  "/store/out.sif.partial",
		Output:    &out,
	})
	if err == nil {
		t.Fatal("expected error for failing pull")
	}

	if !errors.Is(err, ErrPullFailed) {
		t.Errorf("expected ErrPullFailed, got %v", err)
	}
	var pullErr *PullError
	if !errors.As(err, &pullErr) {
		t.Fatalf("expected *PullError, got %T", err)
	}
	if pullErr.Reference != "docker://benchlab/swe-eval:tag" {
		t.Errorf("unexpected reference in error: %q", pullErr.Reference)
	}
	if !strings.Contains(out.String(), "manifest unknown") {
		t.Error("failure transcript should reach Output")
	}
}

func TestPull_ValidatesOptions(t *testing.T) {
	t.Parallel()

	e := NewBaseCLIEngine("/usr/bin/apptainer", WithName("apptainer"))

	if err := e.Pull(context.Background(), PullOptions{Reference: "docker://a/b:c"}); err == nil {
		t.Error("expected error for empty destination")
	}
	if err := e.Pull(context.Background(), PullOptions{DestPath: "/store/out.sif"}); err == nil {
		t.Error("expected error for empty reference")
	}
}

func TestInspect_InvokesTool(t *testing.T) {
	recorder := NewMockCommandRecorder()
	recorder.Stdout = "org.label-schema.build-date: 2026-08-01\n"

	e := NewApptainerEngine(
		WithBinaryPath("/usr/bin/apptainer"),
		WithExecCommand(recorder.ContextCommandFunc(t)),
	)

	out, err := e.Inspect(context.Background(), "/store/sweb.eval.x86_64.django_s_django-11001.sif")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recorder.AssertInvocationCount(t, 1)
	recorder.AssertFirstArg(t, "inspect")
	recorder.AssertArgsContain(t, "/store/sweb.eval.x86_64.django_s_django-11001.sif")
	if !strings.Contains(out, "build-date") {
		t.Errorf("Inspect() = %q, want the tool's metadata report", out)
	}
}

func TestInspect_ValidatesPath(t *testing.T) {
	t.Parallel()

	e := NewBaseCLIEngine("/usr/bin/apptainer", WithName("apptainer"))

	if _, err := e.Inspect(context.Background(), "  "); err == nil {
		t.Error("expected error for blank path")
	}
}

func TestCreateCommand_EnvOverrides(t *testing.T) {
	recorder := NewMockCommandRecorder()
	e := NewBaseCLIEngine("/usr/bin/apptainer",
		WithExecCommand(recorder.ContextCommandFunc(t)),
		WithCmdEnvOverride("APPTAINER_TMPDIR", "/scratch/tmp"),
	)

	e.CreateCommand(context.Background(), "version")

	if !slices.Contains(recorder.LastCmd().Env, "APPTAINER_TMPDIR=/scratch/tmp") {
		t.Error("engine-level env override should be applied to created commands")
	}
}
