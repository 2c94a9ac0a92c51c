// SPDX-License-Identifier: MPL-2.0

// Package store manages the local artifact directory that is the ground
// truth for "what has been provisioned". Workers stage downloads next to
// the final path and rename into place, so a file that exists (and is
// non-empty) is always a completed artifact. The package also owns the
// per-instance failure logs retained for operator inspection.
package store
