package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(InputInvalid, "bad path")
	want := "[INPUT_INVALID] bad path"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := Wrap(NetworkFailed, "request failed", errors.New("timeout"))
	want = "[NETWORK_FAILED] request failed: timeout"
	if wrapped.Error() != want {
		t.Errorf("Error() = %q, want %q", wrapped.Error(), want)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(SourceUnreadable, "could not read", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestCodeOf(t *testing.T) {
	err := Wrap(RateLimited, "quota exhausted", nil)
	if CodeOf(err) != RateLimited {
		t.Errorf("CodeOf = %s, want %s", CodeOf(err), RateLimited)
	}

	// Code survives further wrapping
	outer := fmt.Errorf("outer: %w", err)
	if !IsCode(outer, RateLimited) {
		t.Error("expected IsCode to see through fmt.Errorf wrapping")
	}

	if CodeOf(errors.New("plain")) != InternalError {
		t.Error("plain errors should map to InternalError")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(ResolveFailed, "no base path").WithDetails(map[string]string{"import": "./x"})
	if err.Details == nil {
		t.Error("expected details to be set")
	}
}
