// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ApptainerEngine implements the Engine interface using the Apptainer CLI.
// It embeds BaseCLIEngine for common CLI operations.
type ApptainerEngine struct {
	*BaseCLIEngine
}

// NewApptainerEngine creates a new Apptainer engine.
func NewApptainerEngine(opts ...BaseCLIEngineOption) *ApptainerEngine {
	path, _ := exec.LookPath("apptainer")
	return &ApptainerEngine{
		BaseCLIEngine: NewBaseCLIEngine(HostFilesystemPath(path), append([]BaseCLIEngineOption{WithName(string(EngineTypeApptainer))}, opts...)...),
	}
}

// Available checks if Apptainer is available.
func (e *ApptainerEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	cmd := e.CreateCommand(context.Background(), "version")
	return cmd.Run() == nil
}

// Version returns the Apptainer version.
func (e *ApptainerEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version")
	if err != nil {
		return "", fmt.Errorf("failed to get apptainer version: %w", err)
	}
	return strings.TrimSpace(out), nil
}
