// SPDX-License-Identifier: MPL-2.0

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// logPrefix and logExt bound what Prune considers a failure log.
const (
	logPrefix = "pull-"
	logExt    = ".log"
)

// FailureLogs manages the per-instance diagnostic logs retained when a
// pull fails. Paths are keyed by the raw instance ID so operators can find
// the log for a failed instance without consulting any state. Logs are not
// removed automatically on failure; Prune implements the explicit cleanup
// policy.
type FailureLogs struct {
	dir string
}

// DefaultFailureLogDir returns the fixed default location for failure logs.
func DefaultFailureLogDir() string {
	return filepath.Join(os.TempDir(), "sifbench-logs")
}

// NewFailureLogs returns a FailureLogs rooted at dir, creating the
// directory if needed. An empty dir selects the default location.
func NewFailureLogs(dir string) (*FailureLogs, error) {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultFailureLogDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create failure log directory: %w", err)
	}
	return &FailureLogs{dir: dir}, nil
}

// Dir returns the failure log directory.
func (l *FailureLogs) Dir() string { return l.dir }

// Path returns the log path for the given instance ID.
func (l *FailureLogs) Path(instanceID string) string {
	return filepath.Join(l.dir, logPrefix+instanceID+logExt)
}

// Create opens (truncating) the log file for the given instance ID.
func (l *FailureLogs) Create(instanceID string) (*os.File, error) {
	f, err := os.Create(l.Path(instanceID))
	if err != nil {
		return nil, fmt.Errorf("failed to create failure log for %s: %w", instanceID, err)
	}
	return f, nil
}

// Remove deletes the log file for the given instance ID. Missing files
// are not an error: a successful pull removes a log that a prior failed
// attempt may never have left behind.
func (l *FailureLogs) Remove(instanceID string) error {
	err := os.Remove(l.Path(instanceID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove failure log for %s: %w", instanceID, err)
	}
	return nil
}

// Prune removes failure logs older than the given age and returns how many
// were removed. Files outside the log naming convention are left alone.
func (l *FailureLogs) Prune(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read failure log directory: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(l.dir, name)); err == nil {
			removed++
		}
	}
	return removed, nil
}
