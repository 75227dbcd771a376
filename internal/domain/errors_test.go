package domain

import (
	"context"
	"errors"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("content", "required")

	if got := err.Error(); got != "validation: content: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "content", Message: "required"},
		{Field: "level", Message: "must be one of A1, A2, B1, B2, C1, C2"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
	if len(err.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Errors))
	}
}

func TestUpstreamError_UnwrapsBoth(t *testing.T) {
	t.Parallel()

	err := NewUpstreamError("llm", context.DeadlineExceeded)

	if !errors.Is(err, ErrUpstream) {
		t.Error("errors.Is(err, ErrUpstream) = false")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("errors.Is(err, context.DeadlineExceeded) = false")
	}
	if errors.Is(err, ErrValidation) {
		t.Error("upstream error must not match ErrValidation")
	}
	if got := err.Error(); got != "llm: context deadline exceeded" {
		t.Errorf("Error() = %q", got)
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{ErrNotFound, ErrValidation, ErrUpstream}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}
