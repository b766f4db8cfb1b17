package circuitbreaker

import (
	"context"
	"errors"
	"net"
	"os"

	"github.com/stoat-chat/stoatgo"
)

// ClassifyError returns the error weight for circuit breaker tracking,
// given the *stoat.Error an HTTP facade call failed with.
//
// Weights:
//   - nil -> 0.0
//   - RetryAfter (429) -> 0.5: the host is alive, just loaded
//   - other Api-kind errors -> 0.0: semantic/validation failures are the
//     caller's fault, not evidence the host is unhealthy
//   - Decode-kind -> 1.0: the host answered with something unparseable
//   - Transport-kind timeout -> 1.5
//   - Transport-kind network error -> 1.0
func ClassifyError(err error) float64 {
	if err == nil {
		return 0
	}

	var se *stoat.Error
	if !errors.As(err, &se) {
		return 1.0
	}

	switch se.Kind {
	case stoat.KindAPI:
		if se.API != nil && se.API.Type == stoat.ErrTypeRetryAfter {
			return 0.5
		}
		return 0
	case stoat.KindDecode:
		return 1.0
	case stoat.KindTransport:
		return classifyTransport(se.Err)
	default:
		return 1.0
	}
}

func classifyTransport(err error) float64 {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return 1.5
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return 1.5
		}
		return 1.0
	}
	return 1.0
}
