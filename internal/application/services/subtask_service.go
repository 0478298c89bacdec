package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/tidytask/core/internal/domain/entities"
	"github.com/tidytask/core/internal/infrastructure/logger"
	"github.com/tidytask/core/internal/ports"
)

// SubtaskService handles subtask lifecycle operations
type SubtaskService struct {
	subtaskRepo ports.SubtaskRepository
	taskRepo    ports.TaskRepository
	logger      *logger.Logger
}

// NewSubtaskService creates a new subtask service
func NewSubtaskService(subtaskRepo ports.SubtaskRepository, taskRepo ports.TaskRepository, logger *logger.Logger) *SubtaskService {
	return &SubtaskService{
		subtaskRepo: subtaskRepo,
		taskRepo:    taskRepo,
		logger:      logger,
	}
}

// ListSubtasks returns a task's live subtasks in creation order.
func (s *SubtaskService) ListSubtasks(ctx context.Context, actor ports.Actor, taskID int64) ([]*entities.Subtask, error) {
	if err := s.checkParent(ctx, actor, taskID); err != nil {
		return nil, err
	}

	subtasks, err := s.subtaskRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}

	return subtasks, nil
}

// CreateSubtask adds a subtask to a task the actor owns. At most
// entities.SubtaskCap live subtasks may exist per task; soft-deleted ones do
// not count.
func (s *SubtaskService) CreateSubtask(ctx context.Context, actor ports.Actor, req ports.CreateSubtaskRequest) (*entities.Subtask, error) {
	if err := s.checkParent(ctx, actor, req.TaskID); err != nil {
		return nil, err
	}

	if req.Text == "" {
		return nil, entities.NewValidationError("text", "text is required")
	}
	if utf8.RuneCountInString(req.Text) > entities.MaxSubtaskTextLen {
		return nil, entities.NewValidationError("text", fmt.Sprintf("text cannot exceed %d characters", entities.MaxSubtaskTextLen))
	}

	subtask := &entities.Subtask{
		TaskID: req.TaskID,
		Text:   req.Text,
		Status: entities.TaskStatusPending,
	}

	if err := s.subtaskRepo.CreateCapped(ctx, subtask); err != nil {
		if errors.Is(err, entities.ErrSubtaskCapReached) {
			return nil, entities.NewDomainError("cannot add more than %d subtasks per task", entities.SubtaskCap)
		}
		return nil, fmt.Errorf("failed to create subtask: %w", err)
	}

	s.logger.Info("Subtask created", "subtask_id", subtask.ID, "task_id", subtask.TaskID)

	return subtask, nil
}

// UpdateSubtask applies a partial text/status update.
func (s *SubtaskService) UpdateSubtask(ctx context.Context, actor ports.Actor, id int64, req ports.UpdateSubtaskRequest) (*entities.Subtask, error) {
	subtask, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Text != nil {
		if *req.Text == "" {
			return nil, entities.NewValidationError("text", "text is required")
		}
		if utf8.RuneCountInString(*req.Text) > entities.MaxSubtaskTextLen {
			return nil, entities.NewValidationError("text", fmt.Sprintf("text cannot exceed %d characters", entities.MaxSubtaskTextLen))
		}
		subtask.Text = *req.Text
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, entities.NewValidationError("status", "status must be pending or completed")
		}
		subtask.Status = *req.Status
	}

	if err := s.subtaskRepo.Update(ctx, subtask); err != nil {
		return nil, fmt.Errorf("failed to update subtask: %w", err)
	}

	s.logger.Info("Subtask updated", "subtask_id", subtask.ID)

	return subtask, nil
}

// ToggleSubtask flips a subtask between pending and completed.
func (s *SubtaskService) ToggleSubtask(ctx context.Context, actor ports.Actor, id int64) (*entities.Subtask, error) {
	subtask, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	subtask.ToggleStatus()

	if err := s.subtaskRepo.Update(ctx, subtask); err != nil {
		return nil, fmt.Errorf("failed to toggle subtask: %w", err)
	}

	s.logger.Info("Subtask status toggled", "subtask_id", subtask.ID, "status", subtask.Status)

	return subtask, nil
}

// DeleteSubtask soft-deletes a subtask, freeing a slot under the cap.
func (s *SubtaskService) DeleteSubtask(ctx context.Context, actor ports.Actor, id int64) error {
	subtask, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.subtaskRepo.Delete(ctx, subtask.ID); err != nil {
		return fmt.Errorf("failed to delete subtask: %w", err)
	}

	s.logger.Info("Subtask deleted", "subtask_id", subtask.ID, "task_id", subtask.TaskID)

	return nil
}

// checkParent verifies the parent task exists and the actor may act on it.
func (s *SubtaskService) checkParent(ctx context.Context, actor ports.Actor, taskID int64) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if !actor.CanAccess(task.OwnerID) {
		return entities.ErrUnauthorized
	}

	return nil
}

func (s *SubtaskService) getOwned(ctx context.Context, actor ports.Actor, id int64) (*entities.Subtask, error) {
	subtask, err := s.subtaskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkParent(ctx, actor, subtask.TaskID); err != nil {
		return nil, err
	}

	return subtask, nil
}
