// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsTransientError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"wrapped cancel", fmt.Errorf("pull: %w", context.Canceled), false},
		{"dns failure", errors.New("Could not resolve host: registry-1.docker.io"), true},
		{"no such host", errors.New("dial tcp: lookup docker.io: no such host"), true},
		{"timeout", errors.New("read tcp: i/o timeout"), true},
		{"refused", errors.New("connect: connection refused"), true},
		{"reset", errors.New("read: connection reset by peer"), true},
		{"tls timeout", errors.New("net/http: TLS handshake timeout"), true},
		{"truncated body", errors.New("unexpected EOF"), true},
		{"rate limited", errors.New("toomanyrequests: You have reached your pull rate limit"), true},
		{"gateway error", errors.New("received unexpected HTTP status: 502 Bad Gateway"), true},
		{"manifest unknown", errors.New("manifest unknown: manifest tagged by sweb.eval.x86_64.x is not found"), false},
		{"unauthorized", errors.New("unauthorized: authentication required"), false},
		{"disk full", errors.New("write /store/out.sif: no space left on device"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsTransientError(tt.err); got != tt.want {
				t.Errorf("IsTransientError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
