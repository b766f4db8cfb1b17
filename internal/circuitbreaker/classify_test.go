package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stoat-chat/stoatgo"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want float64
	}{
		{"nil", nil, 0},
		{"retry_after", stoat.RetryAfter(5 * time.Second), 0.5},
		{"api_semantic", stoat.NewAPIError(&stoat.APIError{Type: stoat.ErrTypeUnknownUser}), 0},
		{"decode", stoat.NewDecodeError(errors.New("bad json")), 1.0},
		{"transport_timeout", stoat.NewTransportError(context.DeadlineExceeded), 1.5},
		{"transport_network", stoat.NewTransportError(&net.OpError{Op: "dial", Err: errors.New("refused")}), 1.0},
		{"non_stoat_error", errors.New("unrelated"), 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ClassifyError(tt.err)
			if got != tt.want {
				t.Errorf("ClassifyError(%v) = %f, want %f", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyErrorWrappedTransport(t *testing.T) {
	t.Parallel()
	wrapped := fmt.Errorf("facade: %w", stoat.NewTransportError(context.DeadlineExceeded))
	if got := ClassifyError(wrapped); got != 1.5 {
		t.Errorf("wrapped deadline = %f, want 1.5", got)
	}
}
