// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultArch is the architecture segment used in tags and artifact
	// names when none is configured.
	DefaultArch = "x86_64"

	// ArtifactExt is the file extension of store-resident artifacts.
	ArtifactExt = ".sif"

	// namePrefix is the leading field of every artifact tag and file name.
	namePrefix = "sweb.eval"

	// escapedSeparator replaces the double-underscore namespace separator
	// inside instance IDs. Single underscores are already field separators
	// in the naming convention, so "__" must map to a sequence a lone "_"
	// can never produce on its own.
	escapedSeparator = "_s_"
)

var (
	// ErrInvalidInstanceID is the sentinel error wrapped by InvalidInstanceIDError.
	ErrInvalidInstanceID = errors.New("invalid instance id")

	// ErrIncompleteResolver is the sentinel error wrapped by IncompleteResolverError.
	ErrIncompleteResolver = errors.New("incomplete resolver configuration")
)

type (
	// InstanceID is the opaque identifier of one benchmark instance,
	// e.g. "scikit-learn__scikit-learn-13439". The double underscore
	// separates the repository namespace from the issue number suffix.
	InstanceID string

	// InvalidInstanceIDError is returned when an InstanceID cannot be
	// embedded in an artifact name. It wraps ErrInvalidInstanceID.
	InvalidInstanceIDError struct {
		Value  InstanceID
		Reason string
	}

	// IncompleteResolverError is returned when a Resolver is missing a
	// required field. It wraps ErrIncompleteResolver.
	IncompleteResolverError struct {
		Field string
	}

	// ImageReference fully qualifies a pullable remote image.
	ImageReference struct {
		// Host is the registry host (empty means the default registry).
		Host string
		// Namespace is the registry user or organization.
		Namespace string
		// Repository is the repository under the namespace.
		Repository string
		// Tag is the per-instance image tag.
		Tag string
	}

	// Resolver derives image references and artifact file names from
	// instance IDs. It is a plain value and performs no I/O.
	Resolver struct {
		// Host is the optional registry host prefix.
		Host string
		// Namespace is the registry namespace to pull from. Required.
		Namespace string
		// Repository is the repository holding the per-instance tags. Required.
		Repository string
		// Arch selects the architecture segment of tags and file names.
		// Empty means DefaultArch.
		Arch string
	}
)

// String returns the raw instance ID.
func (id InstanceID) String() string { return string(id) }

// Validate returns an error if the InstanceID cannot be embedded in an
// artifact name. IDs must be non-empty and free of whitespace and path
// separators (they become file names and log-file keys).
func (id InstanceID) Validate() error {
	s := string(id)
	switch {
	case strings.TrimSpace(s) == "":
		return &InvalidInstanceIDError{Value: id, Reason: "must be non-empty"}
	case strings.ContainsAny(s, " \t\n"):
		return &InvalidInstanceIDError{Value: id, Reason: "must not contain whitespace"}
	case strings.ContainsAny(s, `/\`):
		return &InvalidInstanceIDError{Value: id, Reason: "must not contain path separators"}
	}
	return nil
}

// Escaped returns the ID with every "__" rewritten to "_s_" so it can be
// embedded between single-underscore field separators. The mapping is a
// heuristic carried over from the artifact naming convention, not a proven
// bijection; the known collision-prone pairs are pinned by tests.
func (id InstanceID) Escaped() string {
	return strings.ReplaceAll(string(id), "__", escapedSeparator)
}

// Error implements the error interface for InvalidInstanceIDError.
func (e *InvalidInstanceIDError) Error() string {
	return fmt.Sprintf("invalid instance id %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidInstanceID for errors.Is() compatibility.
func (e *InvalidInstanceIDError) Unwrap() error { return ErrInvalidInstanceID }

// Error implements the error interface for IncompleteResolverError.
func (e *IncompleteResolverError) Error() string {
	return fmt.Sprintf("incomplete resolver configuration: %s is required", e.Field)
}

// Unwrap returns ErrIncompleteResolver for errors.Is() compatibility.
func (e *IncompleteResolverError) Unwrap() error { return ErrIncompleteResolver }

// String returns the reference in "[host/]namespace/repository:tag" form.
func (r ImageReference) String() string {
	ref := r.Namespace + "/" + r.Repository + ":" + r.Tag
	if r.Host != "" {
		ref = r.Host + "/" + ref
	}
	return ref
}

// PullRef returns the reference in the scheme-qualified form the conversion
// tool expects, e.g. "docker://user/repo:tag".
func (r ImageReference) PullRef() string {
	return NormalizeReference(r.String())
}

// NormalizeReference rewrites a reference into a form the conversion tool
// can pull directly:
//   - already-schemed references (docker://, library://, oras://) pass through
//   - local SIF files and filesystem paths pass through
//   - bare "namespace/repository:tag" references get a docker:// scheme
func NormalizeReference(ref string) string {
	if ref == "" {
		return ""
	}
	for _, scheme := range []string{"docker://", "library://", "oras://"} {
		if strings.HasPrefix(ref, scheme) {
			return ref
		}
	}
	if strings.HasSuffix(ref, ArtifactExt) || strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, ".") {
		return ref
	}
	if !strings.Contains(ref, "://") && strings.Contains(ref, "/") {
		return "docker://" + ref
	}
	return ref
}

// Validate returns an error if the resolver is missing a required field.
func (r Resolver) Validate() error {
	if strings.TrimSpace(r.Namespace) == "" {
		return &IncompleteResolverError{Field: "namespace"}
	}
	if strings.TrimSpace(r.Repository) == "" {
		return &IncompleteResolverError{Field: "repository"}
	}
	return nil
}

// arch returns the configured architecture segment, defaulting to DefaultArch.
func (r Resolver) arch() string {
	if r.Arch == "" {
		return DefaultArch
	}
	return r.Arch
}

// Tag returns the per-instance image tag, "sweb.eval.<arch>.<escaped-id>".
func (r Resolver) Tag(id InstanceID) string {
	return namePrefix + "." + r.arch() + "." + id.Escaped()
}

// ArtifactName returns the store-local file name for the instance's
// converted artifact: the tag plus the SIF extension.
func (r Resolver) ArtifactName(id InstanceID) string {
	return r.Tag(id) + ArtifactExt
}

// Resolve maps an instance ID to its remote image reference and its
// store-local artifact file name.
func (r Resolver) Resolve(id InstanceID) (ImageReference, string, error) {
	if err := id.Validate(); err != nil {
		return ImageReference{}, "", err
	}
	if err := r.Validate(); err != nil {
		return ImageReference{}, "", err
	}

	ref := ImageReference{
		Host:       r.Host,
		Namespace:  r.Namespace,
		Repository: r.Repository,
		Tag:        r.Tag(id),
	}
	return ref, r.ArtifactName(id), nil
}
