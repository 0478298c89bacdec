package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tidytask/core/internal/infrastructure/logger"
	"github.com/tidytask/core/internal/ports"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categoryService ports.CategoryService
	logger          *logger.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService ports.CategoryService, logger *logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// ListCategories returns the current user's categories
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	actor := actorFromContext(c)

	categories, err := h.categoryService.ListCategories(c.Request().Context(), actor.UserID)
	if err != nil {
		h.logger.Error("List categories failed", "error", err, "user_id", actor.UserID)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, categories)
}

// CreateCategory handles category creation
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	actor := actorFromContext(c)

	var req ports.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), actor, req)
	if err != nil {
		h.logger.Error("Create category failed", "error", err, "user_id", actor.UserID)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles category updates
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	actor := actorFromContext(c)

	id, err := categoryIDParam(c)
	if err != nil {
		return err
	}

	var req ports.UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), actor, id, req)
	if err != nil {
		h.logger.Error("Update category failed", "error", err, "category_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, category)
}

// DeleteCategory deletes a category, moving its tasks to the personal one
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	actor := actorFromContext(c)

	id, err := categoryIDParam(c)
	if err != nil {
		return err
	}

	result, err := h.categoryService.DeleteCategory(c.Request().Context(), actor, id)
	if err != nil {
		h.logger.Error("Delete category failed", "error", err, "category_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// CanDeleteCategory reports whether a category may be deleted and what
// deleting it would do to its tasks
func (h *CategoryHandler) CanDeleteCategory(c echo.Context) error {
	actor := actorFromContext(c)

	id, err := categoryIDParam(c)
	if err != nil {
		return err
	}

	result, err := h.categoryService.CanDeleteCategory(c.Request().Context(), actor, id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// CategoryTasks lists the live tasks of one category
func (h *CategoryHandler) CategoryTasks(c echo.Context) error {
	actor := actorFromContext(c)

	id, err := categoryIDParam(c)
	if err != nil {
		return err
	}

	tasks, err := h.categoryService.CategoryTasks(c.Request().Context(), actor, id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, tasks)
}

func categoryIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}
	return id, nil
}
