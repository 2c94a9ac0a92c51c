// SPDX-License-Identifier: MPL-2.0

// Package platform centralizes OS-specific constants and lookups.
package platform
