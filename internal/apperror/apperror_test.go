package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Unauthorized("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{NeedsApproval("x"), http.StatusForbidden},
		{NotFound("x"), http.StatusNotFound},
		{InvalidRequest("x"), http.StatusBadRequest},
		{Conflict("x"), http.StatusConflict},
		{Internal("x", errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.err.Status(); got != tt.want {
			t.Errorf("%v: status %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestAsUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", NotFound("Request not found"))
	if got := As(wrapped); got.Kind != KindNotFound {
		t.Fatalf("expected NotFound, got %v", got.Kind)
	}
	if !IsKind(wrapped, KindNotFound) {
		t.Fatal("IsKind should see through wrapping")
	}

	plain := errors.New("db down")
	got := As(plain)
	if got.Kind != KindInternal || !errors.Is(got, plain) {
		t.Fatalf("expected Internal wrapping the cause, got %+v", got)
	}
}

func TestNeedsApprovalFlag(t *testing.T) {
	if !NeedsApproval("x").NeedsApproval {
		t.Fatal("NeedsApproval must set the flag")
	}
	if Forbidden("x").NeedsApproval {
		t.Fatal("plain Forbidden must not set the flag")
	}
}
