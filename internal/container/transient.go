// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"strings"
)

// IsTransientError reports whether err looks like a transient pull failure
// that may succeed on a later run: registry rate limits, DNS hiccups,
// dropped connections. The pipeline never retries within a run; this signal
// only annotates the per-instance outcome so operators know a plain re-run
// is worth trying.
//
// Context cancellation and deadline errors are explicitly non-transient
// because the caller explicitly stopped the operation.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	errStr := err.Error()

	// Network errors while fetching layers from the registry.
	if strings.Contains(errStr, "Temporary failure resolving") ||
		strings.Contains(errStr, "Could not resolve host") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "connection timed out") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "TLS handshake timeout") ||
		strings.Contains(errStr, "unexpected EOF") {
		return true
	}

	// Registry-side throttling and intermittent 5xx responses.
	if strings.Contains(errStr, "toomanyrequests") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "503 Service Unavailable") ||
		strings.Contains(errStr, "502 Bad Gateway") {
		return true
	}

	return false
}
