package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{
			name: "classified error",
			err:  &Error{Provider: "marketstack", Class: ClassRateLimited, StatusCode: 429},
			want: ClassRateLimited,
		},
		{
			name: "wrapped classified error",
			err:  fmt.Errorf("fetch eod: %w", &Error{Provider: "openfda", Class: ClassInvalidRequest}),
			want: ClassInvalidRequest,
		},
		{
			name: "unclassified error",
			err:  errors.New("boom"),
			want: "",
		},
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassOf(tt.err); got != tt.want {
				t.Errorf("ClassOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		class Class
		want  bool
	}{
		{ClassInvalidRequest, false},
		{ClassProviderError, false},
		{ClassRateLimited, true},
		{ClassUnavailable, true},
		{"", false},
	}

	for _, tt := range tests {
		if got := retryable(tt.class); got != tt.want {
			t.Errorf("retryable(%q) = %v, want %v", tt.class, got, tt.want)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &Error{Provider: "newswire", Class: ClassUnavailable, Message: "transport failure", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("Error should unwrap to its cause")
	}

	var ce *Error
	if !errors.As(fmt.Errorf("wrapped: %w", err), &ce) {
		t.Fatal("errors.As should find *Error in a wrapped chain")
	}
	if ce.Provider != "newswire" {
		t.Errorf("Provider = %q, want newswire", ce.Provider)
	}
}

func TestInvalidRequest(t *testing.T) {
	err := InvalidRequest("gateway", "symbol must not be empty")

	if ClassOf(err) != ClassInvalidRequest {
		t.Errorf("ClassOf = %q, want invalid_request", ClassOf(err))
	}
	if err.Error() == "" {
		t.Error("Error message should not be empty")
	}
}
