package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tidytask/core/internal/infrastructure/logger"
	"github.com/tidytask/core/internal/ports"
)

// SubtaskHandler handles subtask-related requests
type SubtaskHandler struct {
	subtaskService ports.SubtaskService
	logger         *logger.Logger
}

// NewSubtaskHandler creates a new subtask handler
func NewSubtaskHandler(subtaskService ports.SubtaskService, logger *logger.Logger) *SubtaskHandler {
	return &SubtaskHandler{
		subtaskService: subtaskService,
		logger:         logger,
	}
}

// ListSubtasks lists the subtasks of one task
func (h *SubtaskHandler) ListSubtasks(c echo.Context) error {
	actor := actorFromContext(c)

	taskID, err := strconv.ParseInt(c.Param("taskId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	subtasks, err := h.subtaskService.ListSubtasks(c.Request().Context(), actor, taskID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, subtasks)
}

// CreateSubtask adds a subtask to a task
func (h *SubtaskHandler) CreateSubtask(c echo.Context) error {
	actor := actorFromContext(c)

	var req ports.CreateSubtaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	subtask, err := h.subtaskService.CreateSubtask(c.Request().Context(), actor, req)
	if err != nil {
		h.logger.Error("Create subtask failed", "error", err, "task_id", req.TaskID)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, subtask)
}

// UpdateSubtask handles partial subtask updates
func (h *SubtaskHandler) UpdateSubtask(c echo.Context) error {
	actor := actorFromContext(c)

	id, err := subtaskIDParam(c)
	if err != nil {
		return err
	}

	var req ports.UpdateSubtaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	subtask, err := h.subtaskService.UpdateSubtask(c.Request().Context(), actor, id, req)
	if err != nil {
		h.logger.Error("Update subtask failed", "error", err, "subtask_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, subtask)
}

// ToggleSubtask flips a subtask between pending and completed
func (h *SubtaskHandler) ToggleSubtask(c echo.Context) error {
	actor := actorFromContext(c)

	id, err := subtaskIDParam(c)
	if err != nil {
		return err
	}

	subtask, err := h.subtaskService.ToggleSubtask(c.Request().Context(), actor, id)
	if err != nil {
		h.logger.Error("Toggle subtask failed", "error", err, "subtask_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, subtask)
}

// DeleteSubtask removes a subtask
func (h *SubtaskHandler) DeleteSubtask(c echo.Context) error {
	actor := actorFromContext(c)

	id, err := subtaskIDParam(c)
	if err != nil {
		return err
	}

	if err := h.subtaskService.DeleteSubtask(c.Request().Context(), actor, id); err != nil {
		h.logger.Error("Delete subtask failed", "error", err, "subtask_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Subtask deleted successfully"})
}

func subtaskIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid subtask ID")
	}
	return id, nil
}
