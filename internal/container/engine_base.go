// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var (
	// ErrInvalidHostFilesystemPath is the sentinel error wrapped by InvalidHostFilesystemPathError.
	ErrInvalidHostFilesystemPath = errors.New("invalid host filesystem path")

	// ErrPullFailed is the sentinel error wrapped by PullError.
	ErrPullFailed = errors.New("pull failed")
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine provides common implementation for CLI-based conversion
	// engines. Apptainer and Singularity engines embed this struct; the two
	// tools share a command-line surface, so everything except binary lookup
	// and naming lives here.
	BaseCLIEngine struct {
		name string // Engine name for error messages (e.g., "apptainer")
		//plint:internal -- resolved at construction via exec.LookPath; not user-configurable
		binaryPath      HostFilesystemPath
		execCommand     ExecCommandFunc
		cmdEnvOverrides map[string]string // Per-command env var overrides (e.g., APPTAINER_CACHEDIR)
	}

	// HostFilesystemPath represents a filesystem path on the host.
	// A valid path must be non-empty and not whitespace-only.
	HostFilesystemPath string

	// InvalidHostFilesystemPathError is returned when a HostFilesystemPath is empty or whitespace-only.
	InvalidHostFilesystemPathError struct {
		Value HostFilesystemPath
	}

	// PullError is returned when a pull-and-convert operation fails.
	// It wraps ErrPullFailed and the underlying cause.
	PullError struct {
		Engine    string
		Reference string
		Cause     error
	}
)

// String returns the string representation of the HostFilesystemPath.
func (p HostFilesystemPath) String() string { return string(p) }

// Validate returns an error if the HostFilesystemPath is invalid.
// A valid path must be non-empty and not whitespace-only.
//
//goplint:nonzero
func (p HostFilesystemPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return &InvalidHostFilesystemPathError{Value: p}
	}
	return nil
}

// Error implements the error interface for InvalidHostFilesystemPathError.
func (e *InvalidHostFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid host filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidHostFilesystemPath for errors.Is() compatibility.
func (e *InvalidHostFilesystemPathError) Unwrap() error { return ErrInvalidHostFilesystemPath }

// Error implements the error interface for PullError.
func (e *PullError) Error() string {
	return fmt.Sprintf("%s pull of %s failed: %v", e.Engine, e.Reference, e.Cause)
}

// Unwrap returns the wrapped errors so callers can use errors.Is against
// both ErrPullFailed and the underlying cause (e.g., *exec.ExitError).
func (e *PullError) Unwrap() []error { return []error{ErrPullFailed, e.Cause} }

// --- Option Functions ---

// WithName sets the engine name used in error messages.
func WithName(name string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.name = name
	}
}

// WithBinaryPath overrides the binary resolved via exec.LookPath.
func WithBinaryPath(path HostFilesystemPath) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.binaryPath = path
	}
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.execCommand = fn
	}
}

// WithCmdEnvOverride adds an environment variable override applied to every
// exec.Cmd created by this engine.
func WithCmdEnvOverride(key, value string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		if e.cmdEnvOverrides == nil {
			e.cmdEnvOverrides = make(map[string]string)
		}
		e.cmdEnvOverrides[key] = value
	}
}

// --- Constructor ---

// NewBaseCLIEngine creates a new base engine with the given binary path.
func NewBaseCLIEngine(binaryPath HostFilesystemPath, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:  binaryPath,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// --- Accessor Methods ---

// Name returns the engine name used in error messages.
func (e *BaseCLIEngine) Name() string {
	return e.name
}

// BinaryPath returns the path to the conversion tool binary.
func (e *BaseCLIEngine) BinaryPath() string {
	return string(e.binaryPath)
}

// --- Argument Builders ---

// PullArgs constructs arguments for a pull-and-convert command.
// Returns arguments in the order expected by apptainer/singularity pull.
//
// Generated command: <binary> pull [--force] <dest.sif> <reference>
func (e *BaseCLIEngine) PullArgs(opts PullOptions) []string {
	args := []string{"pull"}

	if opts.Force {
		args = append(args, "--force")
	}

	args = append(args, opts.DestPath, opts.Reference)

	return args
}

// --- Command Execution ---

// RunCommand executes a command and returns its output.
// This is the low-level execution method used by concrete engines.
func (e *BaseCLIEngine) RunCommand(ctx context.Context, args ...string) ([]byte, error) {
	cmd := e.CreateCommand(ctx, args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("command %s %v failed: %w", string(e.binaryPath), args, err)
	}
	return out, nil
}

// RunCommandStatus executes a command and returns only the error status.
func (e *BaseCLIEngine) RunCommandStatus(ctx context.Context, args ...string) error {
	cmd := e.CreateCommand(ctx, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %s %v failed: %w", string(e.binaryPath), args, err)
	}
	return nil
}

// RunCommandWithOutput executes a command with stdout captured to a buffer.
func (e *BaseCLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command %s %v failed: %w", string(e.binaryPath), args, err)
	}

	return out.String(), nil
}

// CreateCommand creates an exec.Cmd for the given arguments.
// This is useful when the caller needs to customize stdin/stdout/stderr.
// Engine-level overrides (env vars) are applied automatically.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	cmd := e.execCommand(ctx, string(e.binaryPath), args...)
	e.customizeCmd(cmd)
	return cmd
}

// --- Promoted Engine Methods (shared by Apptainer and Singularity) ---

// Pull fetches a remote image and converts it to a local SIF file.
// Combined tool output is streamed to opts.Output when set; the transcript
// is the caller's failure diagnostic. A non-zero tool exit is returned as
// a *PullError wrapping the exec error.
func (e *BaseCLIEngine) Pull(ctx context.Context, opts PullOptions) error {
	if err := HostFilesystemPath(opts.DestPath).Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(opts.Reference) == "" {
		return &PullError{Engine: e.name, Reference: opts.Reference, Cause: errors.New("reference must be non-empty")}
	}

	cmd := e.CreateCommand(ctx, e.PullArgs(opts)...)
	cmd.Stdout = opts.Output
	cmd.Stderr = opts.Output

	if opts.CacheDir != "" {
		// Both spellings: Apptainer honors the former, Singularity the
		// latter, and forced binaries may be either tool.
		appendCmdEnv(cmd, "APPTAINER_CACHEDIR", opts.CacheDir)
		appendCmdEnv(cmd, "SINGULARITY_CACHEDIR", opts.CacheDir)
	}

	if err := cmd.Run(); err != nil {
		return &PullError{Engine: e.name, Reference: opts.Reference, Cause: err}
	}

	return nil
}

// Inspect runs the tool's inspect subcommand against a local SIF file and
// returns its metadata report (image labels and build provenance).
func (e *BaseCLIEngine) Inspect(ctx context.Context, path string) (string, error) {
	if err := HostFilesystemPath(path).Validate(); err != nil {
		return "", err
	}
	return e.RunCommandWithOutput(ctx, "inspect", path)
}

// customizeCmd applies env overrides to a command.
func (e *BaseCLIEngine) customizeCmd(cmd *exec.Cmd) {
	if len(e.cmdEnvOverrides) > 0 {
		for k, v := range e.cmdEnvOverrides {
			appendCmdEnv(cmd, k, v)
		}
	}
}

// appendCmdEnv adds one variable to a command's environment, seeding it
// with the parent environment first. exec.Cmd.Env being nil means "inherit
// everything", but once set to a non-nil slice, only the listed vars are
// passed to the child.
func appendCmdEnv(cmd *exec.Cmd, key, value string) {
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	cmd.Env = append(cmd.Env, key+"="+value)
}
