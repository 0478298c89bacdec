package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tidytask/core/internal/domain/entities"
	"github.com/tidytask/core/internal/infrastructure/logger"
	"github.com/tidytask/core/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// RescheduleTaskRequest moves a task to a new day without touching anything else.
type RescheduleTaskRequest struct {
	DueDate time.Time `json:"due_date" validate:"required"`
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(c echo.Context) error {
	actor := actorFromContext(c)

	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), actor, req)
	if err != nil {
		h.logger.Error("Create task failed", "error", err, "user_id", actor.UserID)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

// GetTask handles getting a single task
func (h *TaskHandler) GetTask(c echo.Context) error {
	actor := actorFromContext(c)

	id, err := taskIDParam(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), actor, id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask handles partial task updates
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	actor := actorFromContext(c)

	id, err := taskIDParam(c)
	if err != nil {
		return err
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), actor, id, req)
	if err != nil {
		h.logger.Error("Update task failed", "error", err, "task_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// RescheduleTask handles moving a task to another day, typically from a
// calendar drag and drop.
func (h *TaskHandler) RescheduleTask(c echo.Context) error {
	actor := actorFromContext(c)

	id, err := taskIDParam(c)
	if err != nil {
		return err
	}

	var req RescheduleTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	task, err := h.taskService.RescheduleTask(c.Request().Context(), actor, id, req.DueDate)
	if err != nil {
		h.logger.Error("Reschedule task failed", "error", err, "task_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// ToggleTask flips a task between pending and completed
func (h *TaskHandler) ToggleTask(c echo.Context) error {
	actor := actorFromContext(c)

	id, err := taskIDParam(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.ToggleTask(c.Request().Context(), actor, id)
	if err != nil {
		h.logger.Error("Toggle task failed", "error", err, "task_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask handles task deletion
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	actor := actorFromContext(c)

	id, err := taskIDParam(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), actor, id); err != nil {
		h.logger.Error("Delete task failed", "error", err, "task_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Task deleted successfully"})
}

// ListTasks handles the filtered, sorted, paginated task listing
func (h *TaskHandler) ListTasks(c echo.Context) error {
	actor := actorFromContext(c)

	filter, err := taskFilterFromQuery(c)
	if err != nil {
		return err
	}

	page, err := h.taskService.ListTasks(c.Request().Context(), actor, filter)
	if err != nil {
		h.logger.Error("List tasks failed", "error", err, "user_id", actor.UserID)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, page)
}

// UpcomingTasks returns pending tasks due in the next seven days grouped by day
func (h *TaskHandler) UpcomingTasks(c echo.Context) error {
	actor := actorFromContext(c)

	groups, err := h.taskService.UpcomingTasks(c.Request().Context(), actor.UserID)
	if err != nil {
		h.logger.Error("Upcoming tasks failed", "error", err, "user_id", actor.UserID)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, groups)
}

// CalendarTasks returns a month of tasks grouped by day
func (h *TaskHandler) CalendarTasks(c echo.Context) error {
	actor := actorFromContext(c)

	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid year")
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid month")
	}

	groups, err := h.taskService.CalendarTasks(c.Request().Context(), actor.UserID, time.Month(month), year)
	if err != nil {
		h.logger.Error("Calendar tasks failed", "error", err, "user_id", actor.UserID)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, groups)
}

// OverdueTasks returns pending tasks whose due date is before today
func (h *TaskHandler) OverdueTasks(c echo.Context) error {
	actor := actorFromContext(c)

	tasks, err := h.taskService.OverdueTasks(c.Request().Context(), actor.UserID)
	if err != nil {
		h.logger.Error("Overdue tasks failed", "error", err, "user_id", actor.UserID)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, tasks)
}

// TaskStats returns pending and completed counts for the current user
func (h *TaskHandler) TaskStats(c echo.Context) error {
	actor := actorFromContext(c)

	stats, err := h.taskService.TaskStats(c.Request().Context(), actor.UserID)
	if err != nil {
		h.logger.Error("Task stats failed", "error", err, "user_id", actor.UserID)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, stats)
}

func taskIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}
	return id, nil
}

// taskFilterFromQuery translates list query parameters into a repository
// filter. Unknown sort keys are tolerated here; the filter normalizes them.
func taskFilterFromQuery(c echo.Context) (ports.TaskFilter, error) {
	var filter ports.TaskFilter

	// "all" means no status constraint.
	if v := c.QueryParam("status"); v != "" && v != "all" {
		status := entities.TaskStatus(v)
		if !status.IsValid() {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
		}
		filter.Status = &status
	}

	if v := c.QueryParam("priority"); v != "" {
		priority, err := strconv.Atoi(v)
		if err != nil || !entities.ValidPriority(priority) {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "Invalid priority")
		}
		filter.Priority = &priority
	}

	if v := c.QueryParam("category_id"); v != "" {
		categoryID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
		}
		filter.CategoryID = &categoryID
	}

	if v := c.QueryParam("due"); v != "" {
		due := ports.DueFilter(v)
		if !due.IsValid() {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "Invalid due filter")
		}
		filter.Due = due
	}

	// Admins may scope the listing to a specific owner.
	if v := c.QueryParam("owner_id"); v != "" {
		ownerID, err := uuid.Parse(v)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "Invalid owner ID")
		}
		filter.OwnerID = &ownerID
	}

	filter.Search = c.QueryParam("search")
	filter.SortBy = c.QueryParam("sort_by")
	filter.SortOrder = c.QueryParam("sort_order")
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.PerPage, _ = strconv.Atoi(c.QueryParam("per_page"))

	return filter, nil
}
