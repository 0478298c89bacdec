package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tidytask/core/internal/domain/entities"
	"github.com/tidytask/core/internal/infrastructure/logger"
	"github.com/tidytask/core/internal/ports"
)

// TaskService handles task lifecycle and query operations
type TaskService struct {
	taskRepo     ports.TaskRepository
	categoryRepo ports.CategoryRepository
	search       ports.SearchProvider
	logger       *logger.Logger
	now          func() time.Time
}

// NewTaskService creates a new task service. All "today" boundaries are
// computed in loc, the application timezone.
func NewTaskService(taskRepo ports.TaskRepository, categoryRepo ports.CategoryRepository, search ports.SearchProvider, loc *time.Location, logger *logger.Logger) *TaskService {
	if loc == nil {
		loc = time.UTC
	}
	return &TaskService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		search:       search,
		logger:       logger,
		now:          func() time.Time { return time.Now().In(loc) },
	}
}

// CreateTask creates a new pending task owned by the actor. When no category
// is supplied, the actor's personal category is assigned.
func (s *TaskService) CreateTask(ctx context.Context, actor ports.Actor, req ports.CreateTaskRequest) (*entities.Task, error) {
	if err := s.validateTaskFields(req.Title, req.Priority, req.DueDate); err != nil {
		return nil, err
	}

	categoryID := req.CategoryID
	if categoryID == nil {
		personal, err := s.categoryRepo.GetPersonal(ctx, actor.UserID)
		if err != nil {
			return nil, fmt.Errorf("resolve personal category: %w", err)
		}
		categoryID = &personal.ID
	} else {
		if err := s.checkCategoryOwner(ctx, *categoryID, actor.UserID); err != nil {
			return nil, err
		}
	}

	task := &entities.Task{
		OwnerID:     actor.UserID,
		CategoryID:  categoryID,
		Title:       req.Title,
		Description: req.Description,
		Status:      entities.TaskStatusPending,
		Priority:    req.Priority,
		SortOrder:   req.SortOrder,
		DueDate:     normalizeDueDate(req.DueDate),
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("Task created", "task_id", task.ID, "owner_id", task.OwnerID, "title", task.Title)

	return task, nil
}

// GetTask retrieves a task the actor may access.
func (s *TaskService) GetTask(ctx context.Context, actor ports.Actor, id int64) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(task.OwnerID) {
		return nil, entities.ErrUnauthorized
	}

	return task, nil
}

// UpdateTask applies a partial update. The owner is immutable; an omitted
// category keeps the stored one.
func (s *TaskService) UpdateTask(ctx context.Context, actor ports.Actor, id int64, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.GetTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	title := task.Title
	if req.Title != nil {
		title = *req.Title
	}
	priority := task.Priority
	if req.Priority != nil {
		priority = *req.Priority
	}
	if err := s.validateTaskFields(title, priority, req.DueDate); err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if err := s.checkCategoryOwner(ctx, *req.CategoryID, task.OwnerID); err != nil {
			return nil, err
		}
		task.CategoryID = req.CategoryID
	}

	task.Title = title
	task.Priority = priority
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.DueDate != nil {
		task.DueDate = normalizeDueDate(req.DueDate)
	}
	if req.SortOrder != nil {
		task.SortOrder = req.SortOrder
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Info("Task updated", "task_id", task.ID, "title", task.Title)

	return task, nil
}

// RescheduleTask is the narrow date-only update path used when dragging a
// task to a new day. It skips full field validation; only the date itself
// has to be usable.
func (s *TaskService) RescheduleTask(ctx context.Context, actor ports.Actor, id int64, dueDate time.Time) (*entities.Task, error) {
	task, err := s.GetTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if dueDate.IsZero() {
		return nil, entities.NewValidationError("due_date", "due date is required")
	}

	due := entities.StartOfDay(dueDate)
	if err := s.taskRepo.UpdateDueDate(ctx, id, due); err != nil {
		return nil, fmt.Errorf("failed to reschedule task: %w", err)
	}

	task.DueDate = &due

	s.logger.Info("Task rescheduled", "task_id", id, "due_date", entities.DateKey(due))

	return task, nil
}

// ToggleTask flips a task between pending and completed. Completing stamps
// completed_at; reopening clears it.
func (s *TaskService) ToggleTask(ctx context.Context, actor ports.Actor, id int64) (*entities.Task, error) {
	task, err := s.GetTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	task.ToggleStatus(s.now())

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}

	s.logger.Info("Task status toggled", "task_id", task.ID, "status", task.Status)

	return task, nil
}

// DeleteTask soft-deletes a task. Subtasks are left as they are.
func (s *TaskService) DeleteTask(ctx context.Context, actor ports.Actor, id int64) error {
	task, err := s.GetTask(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Info("Task deleted", "task_id", task.ID)

	return nil
}

// ListTasks runs the query engine: filters, optional full-text search,
// sorting and pagination. Non-admin actors are always scoped to their own
// tasks regardless of the requested owner filter.
func (s *TaskService) ListTasks(ctx context.Context, actor ports.Actor, filter ports.TaskFilter) (ports.Page[*entities.Task], error) {
	filter.Normalize()

	if !actor.IsAdmin() {
		owner := actor.UserID
		filter.OwnerID = &owner
	}

	if filter.Search != "" {
		ids, err := s.search.SearchTasks(ctx, filter.Search, filter.OwnerID)
		if err != nil {
			return ports.Page[*entities.Task]{}, fmt.Errorf("search tasks: %w", err)
		}
		if ids == nil {
			ids = []int64{}
		}
		filter.MatchIDs = ids
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return ports.Page[*entities.Task]{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	total, err := s.taskRepo.Count(ctx, filter)
	if err != nil {
		return ports.Page[*entities.Task]{}, fmt.Errorf("failed to count tasks: %w", err)
	}

	return ports.NewPage(tasks, total, filter.Page, filter.PerPage), nil
}

// UpcomingTasks returns the owner's pending tasks due within the next seven
// days, grouped by calendar date key and ordered by due date then priority.
func (s *TaskService) UpcomingTasks(ctx context.Context, ownerID uuid.UUID) (map[string][]*entities.Task, error) {
	today := entities.StartOfDay(s.now())

	tasks, err := s.taskRepo.ListDueBetween(ctx, ownerID, today, today.AddDate(0, 0, 7), true)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming tasks: %w", err)
	}

	return groupByDate(tasks), nil
}

// CalendarTasks returns all tasks due during the given month, grouped by
// calendar date key.
func (s *TaskService) CalendarTasks(ctx context.Context, ownerID uuid.UUID, month time.Month, year int) (map[string][]*entities.Task, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, s.now().Location())
	last := first.AddDate(0, 1, -1)

	tasks, err := s.taskRepo.ListDueBetween(ctx, ownerID, first, last, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar tasks: %w", err)
	}

	return groupByDate(tasks), nil
}

// OverdueTasks returns the owner's pending tasks due before today, oldest
// first.
func (s *TaskService) OverdueTasks(ctx context.Context, ownerID uuid.UUID) ([]*entities.Task, error) {
	tasks, err := s.taskRepo.ListOverdue(ctx, ownerID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue tasks: %w", err)
	}

	return tasks, nil
}

// TaskStats returns the owner's pending/completed counts.
func (s *TaskService) TaskStats(ctx context.Context, ownerID uuid.UUID) (*ports.TaskStats, error) {
	pending, completed, err := s.taskRepo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	return &ports.TaskStats{Pending: pending, Completed: completed}, nil
}

// validateTaskFields re-asserts the domain-level rules on top of request
// validation: title bounds, priority range, due date not in the past.
func (s *TaskService) validateTaskFields(title string, priority int, dueDate *time.Time) error {
	if title == "" {
		return entities.NewValidationError("title", "title is required")
	}
	if utf8.RuneCountInString(title) > entities.MaxTaskTitleLen {
		return entities.NewValidationError("title", fmt.Sprintf("title cannot exceed %d characters", entities.MaxTaskTitleLen))
	}
	if !entities.ValidPriority(priority) {
		return entities.NewValidationError("priority", "priority must be between 1 (high) and 3 (low)")
	}
	if dueDate != nil {
		today := entities.StartOfDay(s.now())
		if entities.StartOfDay(*dueDate).Before(today) {
			return entities.NewValidationError("due_date", "due date cannot be before today")
		}
	}
	return nil
}

func (s *TaskService) checkCategoryOwner(ctx context.Context, categoryID int64, ownerID uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	// A task's category must belong to the task's owner.
	if category.OwnerID != ownerID {
		return entities.ErrCategoryNotFound
	}
	return nil
}

// normalizeDueDate truncates a due date to midnight. Due dates are stored
// date-only; the midnight-to-midnight query windows rely on it.
func normalizeDueDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	due := entities.StartOfDay(*t)
	return &due
}

func groupByDate(tasks []*entities.Task) map[string][]*entities.Task {
	grouped := make(map[string][]*entities.Task)
	for _, task := range tasks {
		if task.DueDate == nil {
			continue
		}
		key := entities.DateKey(*task.DueDate)
		grouped[key] = append(grouped[key], task)
	}
	return grouped
}
