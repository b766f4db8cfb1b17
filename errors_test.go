package stoat

import (
	"errors"
	"testing"
	"time"
)

func TestErrorKindString(t *testing.T) {
	t.Parallel()
	cases := map[Kind]string{
		KindAPI:       "api",
		KindTransport: "transport",
		KindDecode:    "decode",
		Kind(99):      "unknown",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestNewTransportErrorUnwraps(t *testing.T) {
	t.Parallel()
	cause := errors.New("dial tcp: timeout")
	err := NewTransportError(cause)

	if err.Kind != KindTransport {
		t.Errorf("Kind = %v, want KindTransport", err.Kind)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should unwrap to cause")
	}
}

func TestNewDecodeErrorUnwraps(t *testing.T) {
	t.Parallel()
	cause := errors.New("unexpected EOF")
	err := NewDecodeError(cause)

	if err.Kind != KindDecode {
		t.Errorf("Kind = %v, want KindDecode", err.Kind)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should unwrap to cause")
	}
}

func TestRetryAfterIsAPIErrorWithDuration(t *testing.T) {
	t.Parallel()
	err := RetryAfter(5 * time.Second)

	if err.Kind != KindAPI {
		t.Errorf("Kind = %v, want KindAPI", err.Kind)
	}
	if err.API.Type != ErrTypeRetryAfter {
		t.Errorf("API.Type = %q, want %q", err.API.Type, ErrTypeRetryAfter)
	}
	if err.API.Duration != 5*time.Second {
		t.Errorf("API.Duration = %v, want 5s", err.API.Duration)
	}
}

func TestAPIErrorIsMatchesByType(t *testing.T) {
	t.Parallel()
	err := NewAPIError(&APIError{Type: ErrTypeUsernameTaken})

	if !errors.Is(err, &APIError{Type: ErrTypeUsernameTaken}) {
		t.Error("errors.Is should match on Type")
	}
	if errors.Is(err, &APIError{Type: ErrTypeBanned}) {
		t.Error("errors.Is should not match a different Type")
	}
}

func TestAPIErrorMessageFormatting(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		err  *APIError
		want string
	}{
		{"missing permission", &APIError{Type: "MissingPermission", Permission: "SendMessage"}, "MissingPermission: SendMessage"},
		{"validation", &APIError{Type: "FailedValidation", ValidationErrors: map[string]string{"name": "too long"}}, "FailedValidation: map[name:too long]"},
		{"generic", &APIError{Type: ErrTypeBanned}, ErrTypeBanned},
	}
	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Errorf("%s: Error() = %q, want %q", c.name, got, c.want)
		}
	}
}
