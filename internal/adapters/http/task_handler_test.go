package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tidytask/core/internal/domain/entities"
)

func queryContext(t *testing.T, rawQuery string) echo.Context {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks?"+rawQuery, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestTaskFilterFromQuery(t *testing.T) {
	t.Run("status all means no constraint", func(t *testing.T) {
		filter, err := taskFilterFromQuery(queryContext(t, "status=all"))
		if err != nil {
			t.Fatalf("taskFilterFromQuery returned error: %v", err)
		}
		if filter.Status != nil {
			t.Errorf("expected nil status filter, got %v", *filter.Status)
		}
	})

	t.Run("a concrete status is kept", func(t *testing.T) {
		filter, err := taskFilterFromQuery(queryContext(t, "status=pending"))
		if err != nil {
			t.Fatalf("taskFilterFromQuery returned error: %v", err)
		}
		if filter.Status == nil || *filter.Status != entities.TaskStatusPending {
			t.Errorf("expected pending status filter, got %v", filter.Status)
		}
	})

	t.Run("an unknown status is a bad request", func(t *testing.T) {
		_, err := taskFilterFromQuery(queryContext(t, "status=archived"))
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %v", err)
		}
	})

	t.Run("an unknown due filter is a bad request", func(t *testing.T) {
		_, err := taskFilterFromQuery(queryContext(t, "due=someday"))
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %v", err)
		}
	})
}
