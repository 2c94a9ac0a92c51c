// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error types for sifbench. ActionableError
// carries operation/resource context plus fix suggestions; the issue catalog
// holds rendered help pages for the fatal error classes (missing engine,
// missing manifest, unreadable store).
package issue
