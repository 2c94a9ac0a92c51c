// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"sifbench/internal/issue"
	"sifbench/internal/registry"
)

var (
	// ErrNoSource is returned when neither an inline list nor a manifest
	// file is supplied. This is a fatal configuration error: running the
	// pipeline with nothing to do is always a caller mistake.
	ErrNoSource = errors.New("no instance list supplied")

	// ErrInvalidSlice is the sentinel error wrapped by InvalidSliceError.
	ErrInvalidSlice = errors.New("invalid slice expression")
)

type (
	// Source describes where the instance list comes from. Exactly one of
	// IDs or File must be set; Slice optionally restricts the loaded list.
	Source struct {
		// IDs is an inline comma-separated list of instance IDs.
		IDs string
		// File is a path to a manifest file with one instance ID per
		// line. Blank lines and '#' comments are ignored.
		File string
		// Slice restricts the list to a half-open [start:end) range after
		// loading, in "start:end" form with either bound optional.
		Slice string
	}

	// InvalidSliceError is returned for malformed Slice expressions.
	// It wraps ErrInvalidSlice.
	InvalidSliceError struct {
		Value string
	}
)

// Error implements the error interface for InvalidSliceError.
func (e *InvalidSliceError) Error() string {
	return fmt.Sprintf("invalid slice expression %q: want \"start:end\" (e.g. \"100:200\")", e.Value)
}

// Unwrap returns ErrInvalidSlice for errors.Is() compatibility.
func (e *InvalidSliceError) Unwrap() error { return ErrInvalidSlice }

// Load returns the ordered, de-duplicated instance list described by the
// source. Order follows the input; the first occurrence of a duplicate
// wins. IDs are not validated here — resolution failures are per-instance
// outcomes, not load failures.
func (s Source) Load() ([]registry.InstanceID, error) {
	var ids []registry.InstanceID

	switch {
	case strings.TrimSpace(s.IDs) != "":
		for _, field := range strings.Split(s.IDs, ",") {
			if id := strings.TrimSpace(field); id != "" {
				ids = append(ids, registry.InstanceID(id))
			}
		}
	case s.File != "":
		fileIDs, err := loadFile(s.File)
		if err != nil {
			return nil, err
		}
		ids = fileIDs
	default:
		return nil, ErrNoSource
	}

	ids = dedupe(ids)

	if s.Slice != "" {
		start, end, err := parseSlice(s.Slice, len(ids))
		if err != nil {
			return nil, err
		}
		ids = ids[start:end]
	}

	return ids, nil
}

// loadFile reads one instance ID per line, skipping blanks and comments.
func loadFile(path string) ([]registry.InstanceID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read instance manifest").
			WithResource(path).
			WithSuggestion("Check that the manifest file exists and is readable").
			WithSuggestion("Or pass an inline list with --instance-ids").
			Wrap(err).
			BuildError()
	}
	defer f.Close()

	var ids []registry.InstanceID
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, registry.InstanceID(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, issue.WrapWithOperation(err, "read instance manifest")
	}
	return ids, nil
}

// dedupe removes later duplicates while preserving order.
func dedupe(ids []registry.InstanceID) []registry.InstanceID {
	seen := make(map[registry.InstanceID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// parseSlice resolves a "start:end" expression against a list length.
// Either bound may be omitted; bounds are clamped to [0, n].
func parseSlice(expr string, n int) (start, end int, err error) {
	parts := strings.Split(expr, ":")
	if len(parts) != 2 {
		return 0, 0, &InvalidSliceError{Value: expr}
	}

	start, end = 0, n
	if parts[0] != "" {
		start, err = strconv.Atoi(parts[0])
		if err != nil || start < 0 {
			return 0, 0, &InvalidSliceError{Value: expr}
		}
	}
	if parts[1] != "" {
		end, err = strconv.Atoi(parts[1])
		if err != nil || end < 0 {
			return 0, 0, &InvalidSliceError{Value: expr}
		}
	}

	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	if start > end {
		return 0, 0, &InvalidSliceError{Value: expr}
	}
	return start, end, nil
}
