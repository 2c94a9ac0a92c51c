// SPDX-License-Identifier: MPL-2.0

package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// artifactPrefix and artifactExt bound what Scan considers a
	// well-formed artifact file.
	artifactPrefix = "sweb.eval."
	artifactExt    = ".sif"

	// stagingSuffix marks in-flight downloads. Staged files live in the
	// store directory so the final rename never crosses a filesystem
	// boundary, and Scan/Exists ignore them.
	stagingSuffix = ".partial"
)

// ErrStoreUnreadable is the sentinel error wrapped by UnreadableError.
var ErrStoreUnreadable = errors.New("artifact store unreadable")

type (
	// Store is the local artifact directory.
	Store struct {
		dir string
	}

	// Artifact describes one completed artifact file in the store.
	Artifact struct {
		// Name is the file name within the store directory.
		Name string
		// Size is the file size in bytes.
		Size int64
	}

	// Summary is the on-disk truth for a requested instance set. Successful
	// is computed by re-checking the store, never from in-memory outcome
	// counters, so it stays correct across partial re-runs.
	Summary struct {
		// Total is the number of requested artifacts.
		Total int
		// Successful is how many requested artifacts are present on disk.
		Successful int
		// Failed is Total - Successful.
		Failed int
		// Artifacts lists every well-formed artifact currently in the
		// store, including ones provisioned by earlier runs.
		Artifacts []Artifact
	}

	// UnreadableError is returned when the store directory cannot be
	// scanned. It wraps ErrStoreUnreadable; callers treat it as fatal
	// because no summary derived from it can be trusted.
	UnreadableError struct {
		Dir   string
		Cause error
	}
)

// Error implements the error interface for UnreadableError.
func (e *UnreadableError) Error() string {
	return fmt.Sprintf("artifact store %s unreadable: %v", e.Dir, e.Cause)
}

// Unwrap returns ErrStoreUnreadable for errors.Is() compatibility.
func (e *UnreadableError) Unwrap() error { return ErrStoreUnreadable }

// DefaultDir returns the default artifact store location,
// $XDG_CACHE_HOME/sifbench/images (or ~/.cache/sifbench/images).
func DefaultDir() string {
	cache, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "sifbench", "images")
	}
	return filepath.Join(cache, "sifbench", "images")
}

// New returns a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store directory must be non-empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// ArtifactPath returns the final path for the named artifact.
func (s *Store) ArtifactPath(name string) string {
	return filepath.Join(s.dir, name)
}

// StagingPath returns the in-flight download path for the named artifact.
func (s *Store) StagingPath(name string) string {
	return s.ArtifactPath(name) + stagingSuffix
}

// Exists reports whether the named artifact is present and complete.
// Presence means a non-empty regular file at the final path: staged
// downloads and zero-byte leftovers do not count. No checksum is verified;
// a corrupt-but-complete file is treated as done.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.ArtifactPath(name))
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// Commit atomically promotes the staged download to the final artifact
// path. An existing artifact with the same name is replaced.
func (s *Store) Commit(name string) error {
	if err := os.Rename(s.StagingPath(name), s.ArtifactPath(name)); err != nil {
		return fmt.Errorf("failed to commit artifact %s: %w", name, err)
	}
	return nil
}

// DiscardStaging removes the staged download for the named artifact, if any.
func (s *Store) DiscardStaging(name string) {
	_ = os.Remove(s.StagingPath(name)) // Best-effort; a leftover .partial is ignored by Exists/Scan
}

// Scan returns every well-formed artifact currently in the store, sorted
// by name. Staged downloads, empty files, directories, and files outside
// the naming convention are excluded.
func (s *Store) Scan() ([]Artifact, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &UnreadableError{Dir: s.dir, Cause: err}
	}

	artifacts := make([]Artifact, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, artifactPrefix) || !strings.HasSuffix(name, artifactExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		artifacts = append(artifacts, Artifact{Name: name, Size: info.Size()})
	}

	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Name < artifacts[j].Name })
	return artifacts, nil
}

// Summarize computes the Summary for the requested artifact names by
// re-checking the store directory. Names that resolve to nothing on disk
// (including names of instances that failed to resolve at all) count as
// failed.
func (s *Store) Summarize(requested []string) (*Summary, error) {
	artifacts, err := s.Scan()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Total:     len(requested),
		Artifacts: artifacts,
	}
	for _, name := range requested {
		if name != "" && s.Exists(name) {
			summary.Successful++
		}
	}
	summary.Failed = summary.Total - summary.Successful
	return summary, nil
}
