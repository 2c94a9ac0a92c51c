// SPDX-License-Identifier: MPL-2.0

// Package container provides an abstraction layer for SIF conversion
// tools (Apptainer/Singularity).
package container

import (
	"context"
	"fmt"
	"io"
	"os"
)

// EnvApptainerExecutable names the environment variable that forces a
// specific conversion binary, bypassing PATH lookup and engine fallback.
const EnvApptainerExecutable = "APPTAINER_EXECUTABLE"

// Engine defines the interface for SIF conversion operations
type Engine interface {
	// Name returns the engine name (apptainer or singularity)
	Name() string
	// Available checks if the engine is available on the system
	Available() bool
	// Version returns the engine version
	Version(ctx context.Context) (string, error)

	// Pull fetches a remote image and converts it to a local SIF file
	Pull(ctx context.Context, opts PullOptions) error

	// Inspect returns the tool's metadata report for a local SIF file
	Inspect(ctx context.Context, path string) (string, error)
}

// PullOptions contains options for pulling and converting an image
type PullOptions struct {
	// Reference is the scheme-qualified remote reference (e.g. docker://user/repo:tag)
	Reference string
	// DestPath is the local file the SIF is written to
	DestPath string
	// Force overwrites an existing destination file
	Force bool
	// CacheDir is the scratch directory for the conversion tool.
	// Empty lets the tool use its own default.
	CacheDir string
	// Output receives the combined stdout/stderr of the tool. The pull
	// transcript is the only diagnostic a failed conversion leaves behind,
	// so callers stream it to the per-instance failure log.
	Output io.Writer
}

// EngineType identifies the conversion engine type
type EngineType string

const (
	EngineTypeApptainer   EngineType = "apptainer"
	EngineTypeSingularity EngineType = "singularity"
)

// ErrEngineNotAvailable is returned when a conversion engine is not available
type ErrEngineNotAvailable struct {
	Engine string
	Reason string
}

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("conversion engine '%s' is not available: %s", e.Engine, e.Reason)
}

// NewEngine creates a new conversion engine based on preference
func NewEngine(preferredType EngineType, opts ...BaseCLIEngineOption) (Engine, error) {
	switch preferredType {
	case EngineTypeApptainer:
		engine := NewApptainerEngine(opts...)
		if engine.Available() {
			return engine, nil
		}
		// Fall back to Singularity
		singularityEngine := NewSingularityEngine(opts...)
		if singularityEngine.Available() {
			return singularityEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "apptainer",
			Reason: "apptainer is not installed or not accessible, and singularity fallback is also not available",
		}

	case EngineTypeSingularity:
		engine := NewSingularityEngine(opts...)
		if engine.Available() {
			return engine, nil
		}
		// Fall back to Apptainer
		apptainerEngine := NewApptainerEngine(opts...)
		if apptainerEngine.Available() {
			return apptainerEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "singularity",
			Reason: "singularity is not installed or not accessible, and apptainer fallback is also not available",
		}

	default:
		return nil, fmt.Errorf("unknown conversion engine type: %s", preferredType)
	}
}

// AutoDetectEngine tries to find an available conversion engine.
// APPTAINER_EXECUTABLE takes precedence over PATH lookup; otherwise
// Apptainer is tried first (Singularity's active successor), then
// Singularity.
func AutoDetectEngine(opts ...BaseCLIEngineOption) (Engine, error) {
	if bin := os.Getenv(EnvApptainerExecutable); bin != "" {
		forced := NewApptainerEngine(append([]BaseCLIEngineOption{WithBinaryPath(HostFilesystemPath(bin))}, opts...)...)
		if forced.Available() {
			return forced, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: bin,
			Reason: fmt.Sprintf("%s points at a binary that is missing or not runnable", EnvApptainerExecutable),
		}
	}

	apptainer := NewApptainerEngine(opts...)
	if apptainer.Available() {
		return apptainer, nil
	}

	singularity := NewSingularityEngine(opts...)
	if singularity.Available() {
		return singularity, nil
	}

	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no conversion engine (apptainer or singularity) is available on this system",
	}
}
