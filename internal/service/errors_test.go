package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "question", Message: "must not be empty"}
	want := "validation error on field question: must not be empty"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		msg     string
		wantNil bool
	}{
		{
			name:    "nil error returns nil",
			err:     nil,
			msg:     "context",
			wantNil: true,
		},
		{
			name: "wraps sentinel",
			err:  ErrRetrieval,
			msg:  "semantic search",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapError(tt.err, tt.msg)
			if tt.wantNil {
				if wrapped != nil {
					t.Errorf("WrapError() = %v, want nil", wrapped)
				}
				return
			}
			if !errors.Is(wrapped, tt.err) {
				t.Errorf("errors.Is() = false, want true for %v", wrapped)
			}
		})
	}
}

func TestErrRetrieval_WrappingChain(t *testing.T) {
	inner := fmt.Errorf("dial tcp: connection refused")
	err := fmt.Errorf("%w: %v", ErrRetrieval, inner)
	if !errors.Is(err, ErrRetrieval) {
		t.Error("wrapped retrieval error should match ErrRetrieval")
	}
}
