// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// SingularityEngine implements the Engine interface using the Singularity
// CLI. It embeds BaseCLIEngine for common CLI operations; Singularity
// predates the Apptainer rename and keeps the same pull surface.
type SingularityEngine struct {
	*BaseCLIEngine
}

// NewSingularityEngine creates a new Singularity engine.
func NewSingularityEngine(opts ...BaseCLIEngineOption) *SingularityEngine {
	path, _ := exec.LookPath("singularity")
	return &SingularityEngine{
		BaseCLIEngine: NewBaseCLIEngine(HostFilesystemPath(path), append([]BaseCLIEngineOption{WithName(string(EngineTypeSingularity))}, opts...)...),
	}
}

// Available checks if Singularity is available.
func (e *SingularityEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	cmd := e.CreateCommand(context.Background(), "version")
	return cmd.Run() == nil
}

// Version returns the Singularity version.
func (e *SingularityEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version")
	if err != nil {
		return "", fmt.Errorf("failed to get singularity version: %w", err)
	}
	return strings.TrimSpace(out), nil
}
