package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tidytask/core/internal/domain/entities"
	"github.com/tidytask/core/internal/ports"
)

func TestHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation error", entities.NewValidationError("title", "title is required"), http.StatusBadRequest},
		{"domain error", entities.NewDomainError("cannot delete Personal category"), http.StatusUnprocessableEntity},
		{"unauthorized", entities.ErrUnauthorized, http.StatusForbidden},
		{"task not found", entities.ErrTaskNotFound, http.StatusNotFound},
		{"category not found", entities.ErrCategoryNotFound, http.StatusNotFound},
		{"subtask not found", entities.ErrSubtaskNotFound, http.StatusNotFound},
		{"email taken", entities.ErrEmailTaken, http.StatusConflict},
		{"invalid credentials", entities.ErrInvalidCredentials, http.StatusUnauthorized},
		{"wrapped sentinel", fmt.Errorf("loading: %w", entities.ErrTaskNotFound), http.StatusNotFound},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he, ok := httpError(tt.err).(*echo.HTTPError)
			if !ok {
				t.Fatal("expected an echo HTTP error")
			}
			if he.Code != tt.code {
				t.Errorf("status = %d, want %d", he.Code, tt.code)
			}
		})
	}

	t.Run("validation fields survive the mapping", func(t *testing.T) {
		he := httpError(entities.NewValidationError("priority", "priority must be between 1 (high) and 3 (low)")).(*echo.HTTPError)

		body, ok := he.Message.(ports.ErrorResponse)
		if !ok {
			t.Fatal("expected an ErrorResponse body")
		}
		if body.Fields["priority"] == "" {
			t.Error("expected the field message to be carried through")
		}
	})

	t.Run("internal details never leak", func(t *testing.T) {
		he := httpError(errors.New("pq: connection refused")).(*echo.HTTPError)

		body := he.Message.(ports.ErrorResponse)
		if body.Message != "internal error" {
			t.Errorf("unexpected message %q", body.Message)
		}
	})
}
