package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("valid authentication required"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("user is not the post owner"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("post", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "email already registered"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("text", "text is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Upstream wraps ErrUpstream",
			err:       Upstream("github api unreachable"),
			target:    ErrUpstream,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrForbidden",
			err:       NotFound("comment", "abc123"),
			target:    ErrForbidden,
			wantMatch: false,
		},
		{
			name:      "Unauthorized does NOT match ErrValidation",
			err:       Unauthorized("no token"),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorsIsThroughWrapping(t *testing.T) {
	// Services wrap AppErrors with fmt.Errorf("%w") on the way up.
	// errors.Is must still find the sentinel through the chain.
	inner := NotFound("profile", "user-1")
	outer := fmt.Errorf("fetching profile: %w", inner)

	if !errors.Is(outer, ErrNotFound) {
		t.Error("errors.Is() did not find ErrNotFound through a wrapped chain")
	}

	var appErr *AppError
	if !errors.As(outer, &appErr) {
		t.Fatal("errors.As() did not extract *AppError from a wrapped chain")
	}
	if appErr.Message != inner.Message {
		t.Errorf("extracted message = %q, want %q", appErr.Message, inner.Message)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound includes resource and id",
			err:         NotFound("post", "xyz"),
			wantMessage: "post not found with id xyz",
		},
		{
			name:        "Conflict includes resource and detail",
			err:         Conflict("like", "post already liked"),
			wantMessage: "like: post already liked",
		},
		{
			name:        "ValidationFailed carries the message verbatim",
			err:         ValidationFailed("status", "status is required"),
			wantMessage: "status is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestValidationFailedKeepsField(t *testing.T) {
	err := ValidationFailed("skills", "skills are required")
	if err.Field != "skills" {
		t.Errorf("Field = %q, want %q", err.Field, "skills")
	}
}
