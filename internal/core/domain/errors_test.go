package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrUnauthorized", ErrUnauthorized, "unauthorized"},
		{"ErrForbidden", ErrForbidden, "forbidden"},
		{"ErrTokenExpired", ErrTokenExpired, "token expired"},
		{"ErrTokenInvalid", ErrTokenInvalid, "token invalid"},
		{"ErrEmptyCorpus", ErrEmptyCorpus, "no usable text found"},
		{"ErrSchemaMismatch", ErrSchemaMismatch, "table schema mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrUnauthorized,
		ErrForbidden,
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrInvalidProvider,
		ErrServiceUnavailable,
		ErrEmptyCorpus,
		ErrEmbeddingMismatch,
		ErrJobNotFailed,
		ErrJobLocked,
		ErrSchemaMismatch,
	}

	for i, a := range allErrors {
		for j, b := range allErrors {
			if i != j && errors.Is(a, b) {
				t.Errorf("errors %q and %q should be distinct", a, b)
			}
		}
	}
}

func TestErrorsWrap(t *testing.T) {
	err := fmt.Errorf("gemini: %w: status 401", ErrUnauthorized)
	if !errors.Is(err, ErrUnauthorized) {
		t.Error("wrapped error should match ErrUnauthorized")
	}
}
