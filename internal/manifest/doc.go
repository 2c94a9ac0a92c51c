// SPDX-License-Identifier: MPL-2.0

// Package manifest loads the ordered list of instance IDs to provision,
// from an inline comma-separated list or a one-per-line manifest file.
package manifest
