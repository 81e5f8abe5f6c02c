package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad revision: %s", "@@")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("code = %s, want %s", err.Code, ErrCodeInvalidInput)
	}
	if err.Message != "bad revision: @@" {
		t.Errorf("message = %q", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("cause = %v, want nil", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("exit status 1")
	err := Wrap(ErrCodeEngine, cause, "jj rebase failed")

	if err.Cause != cause {
		t.Errorf("cause = %v, want %v", err.Cause, cause)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "WithoutCause",
			err:  New(ErrCodeNotFound, "no such snapshot"),
			want: "NOT_FOUND: no such snapshot",
		},
		{
			name: "WithCause",
			err:  Wrap(ErrCodeEngine, stderrors.New("boom"), "log failed"),
			want: "ENGINE_ERROR: log failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeInvariantViolation, "commit lists itself as parent")

	if !Is(err, ErrCodeInvariantViolation) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeEngine) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeEngine) {
		t.Error("Is should not match plain errors")
	}

	// Wrapped in a plain fmt chain
	wrapped := fmt.Errorf("pipeline: %w", err)
	if !Is(wrapped, ErrCodeInvariantViolation) {
		t.Error("Is should unwrap fmt-wrapped errors")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeTimeout, "took too long")); got != ErrCodeTimeout {
		t.Errorf("GetCode = %s, want %s", got, ErrCodeTimeout)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode for plain error = %s, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeNotFound, "no such session")); got != "no such session" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(stderrors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage for plain error = %q", got)
	}
}
