package provider

import (
	"errors"
	"fmt"
	"testing"
)

func TestSearchHit_PayloadFields(t *testing.T) {
	t.Parallel()

	h := SearchHit{Payload: map[string]any{"text": "Leaves are green.", "source": "biology.md", "chunk": 3}}
	if got := h.Text(); got != "Leaves are green." {
		t.Errorf("Text() = %q", got)
	}
	if got := h.Source(); got != "biology.md" {
		t.Errorf("Source() = %q", got)
	}

	var empty SearchHit
	if empty.Text() != "" || empty.Source() != "" {
		t.Error("nil payload should give empty fields")
	}

	wrongType := SearchHit{Payload: map[string]any{"text": 42}}
	if wrongType.Text() != "" {
		t.Error("non-string text should give empty string")
	}
}

func TestStatusError_Retryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "500", err: &StatusError{Status: 500}, want: true},
		{name: "503 wrapped", err: fmt.Errorf("qdrant: %w", &StatusError{Status: 503}), want: true},
		{name: "429", err: &StatusError{Status: 429}, want: true},
		{name: "400", err: &StatusError{Status: 400}, want: false},
		{name: "404", err: &StatusError{Status: 404}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var se *StatusError
			if !errors.As(tt.err, &se) {
				t.Fatalf("%v is not a *StatusError", tt.err)
			}
			if got := se.Retryable(); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestStatusError_Message(t *testing.T) {
	t.Parallel()

	if got := (&StatusError{Status: 502}).Error(); got != "unexpected status 502" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&StatusError{Status: 400, Body: "bad"}).Error(); got != "unexpected status 400: bad" {
		t.Errorf("Error() = %q", got)
	}
}
