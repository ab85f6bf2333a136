package ecp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
)

func TestWrapError_Sentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		sentinel error
	}{
		{
			name:     "HTTP 400",
			status:   http.StatusBadRequest,
			sentinel: ErrRejected,
		},
		{
			name:     "HTTP 503",
			status:   http.StatusServiceUnavailable,
			sentinel: ErrRejected,
		},
		{
			name:     "network timeout",
			err:      &net.DNSError{IsTimeout: true},
			sentinel: ErrTimeout,
		},
		{
			name:     "context deadline",
			err:      context.DeadlineExceeded,
			sentinel: ErrTimeout,
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp: connection refused"),
			sentinel: ErrUnreachable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := wrapError("launch", tc.status, "", tc.err)
			if !errors.Is(err, tc.sentinel) {
				t.Errorf("wrapError() = %v, want sentinel %v", err, tc.sentinel)
			}
		})
	}
}

func TestCommandError_Message(t *testing.T) {
	err := wrapError("input", http.StatusNotFound, "app not installed", nil)
	msg := err.Error()
	for _, want := range []string{"input", "404", "app not installed"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}
