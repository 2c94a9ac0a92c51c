// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared helpers for validating CUE inputs and
// turning CUE errors into messages that point at the offending field.
package cueutil
