package failure_test

import (
	"clipper/shared/failure"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFailure_Error(t *testing.T) {
	f := &failure.Failure{
		Code:    http.StatusBadRequest,
		Message: "test error message",
	}

	if f.Error() != "test error message" {
		t.Errorf("expected error message to be 'test error message', got %s", f.Error())
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{
			name: "BadRequest",
			err:  failure.BadRequest(errors.New("bad input")),
			code: http.StatusBadRequest,
		},
		{
			name: "BadRequestFromString",
			err:  failure.BadRequestFromString("bad input"),
			code: http.StatusBadRequest,
		},
		{
			name: "Unauthorized",
			err:  failure.Unauthorized("no session"),
			code: http.StatusUnauthorized,
		},
		{
			name: "Forbidden",
			err:  failure.Forbidden("not allowed"),
			code: http.StatusForbidden,
		},
		{
			name: "NotFound",
			err:  failure.NotFound("schedule"),
			code: http.StatusNotFound,
		},
		{
			name: "Conflict",
			err:  failure.Conflict("slot taken"),
			code: http.StatusConflict,
		},
		{
			name: "Unprocessable",
			err:  failure.Unprocessable("day disabled"),
			code: http.StatusUnprocessableEntity,
		},
		{
			name: "InternalError",
			err:  failure.InternalError(errors.New("boom")),
			code: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := failure.GetCode(tt.err); got != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, got)
			}
		})
	}
}

func TestConstructors_NilError(t *testing.T) {
	if err := failure.BadRequest(nil); err != nil {
		t.Errorf("expected nil for a nil cause, got %v", err)
	}

	if err := failure.InternalError(nil); err != nil {
		t.Errorf("expected nil for a nil cause, got %v", err)
	}
}

func TestGetCode_UnknownError(t *testing.T) {
	if got := failure.GetCode(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("expected %d for a plain error, got %d", http.StatusInternalServerError, got)
	}
}

func TestGetCode_WrappedFailure(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", failure.Conflict("slot taken"))

	if got := failure.GetCode(wrapped); got != http.StatusConflict {
		t.Errorf("expected %d for a wrapped failure, got %d", http.StatusConflict, got)
	}
}
