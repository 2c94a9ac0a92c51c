// SPDX-License-Identifier: MPL-2.0

// Package registry resolves logical benchmark instance identifiers into
// pullable remote image references and store-local artifact file names.
// Resolution is pure: the same instance ID always maps to the same reference
// and file name, and distinct IDs never collide on the file name.
package registry
