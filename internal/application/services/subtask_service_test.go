package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tidytask/core/internal/domain/entities"
	"github.com/tidytask/core/internal/infrastructure/logger"
	"github.com/tidytask/core/internal/ports"
)

type subtaskServiceFixture struct {
	service  *SubtaskService
	subRepo  *mockSubtaskRepo
	taskRepo *mockTaskRepo
	owner    ports.Actor
	task     *entities.Task
}

func newSubtaskServiceFixture(t *testing.T) *subtaskServiceFixture {
	t.Helper()

	subRepo := newMockSubtaskRepo()
	taskRepo := newMockTaskRepo()

	ownerID := uuid.New()
	task := &entities.Task{
		OwnerID:  ownerID,
		Title:    "Parent",
		Status:   entities.TaskStatusPending,
		Priority: entities.PriorityMedium,
	}
	if err := taskRepo.Create(context.Background(), task); err != nil {
		t.Fatalf("seeding parent task failed: %v", err)
	}

	return &subtaskServiceFixture{
		service:  NewSubtaskService(subRepo, taskRepo, logger.NewNop()),
		subRepo:  subRepo,
		taskRepo: taskRepo,
		owner:    ports.Actor{UserID: ownerID, Role: entities.UserRoleUser},
		task:     task,
	}
}

func TestCreateSubtask(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending subtask", func(t *testing.T) {
		f := newSubtaskServiceFixture(t)

		subtask, err := f.service.CreateSubtask(ctx, f.owner, ports.CreateSubtaskRequest{
			TaskID: f.task.ID,
			Text:   "Step one",
		})
		if err != nil {
			t.Fatalf("CreateSubtask returned error: %v", err)
		}

		if subtask.Status != entities.TaskStatusPending {
			t.Errorf("expected pending, got %s", subtask.Status)
		}
		if subtask.TaskID != f.task.ID {
			t.Errorf("expected task %d, got %d", f.task.ID, subtask.TaskID)
		}
	})

	t.Run("enforces the per-task cap", func(t *testing.T) {
		f := newSubtaskServiceFixture(t)

		for i := 0; i < entities.SubtaskCap; i++ {
			if _, err := f.service.CreateSubtask(ctx, f.owner, ports.CreateSubtaskRequest{
				TaskID: f.task.ID,
				Text:   fmt.Sprintf("Step %d", i+1),
			}); err != nil {
				t.Fatalf("subtask %d failed: %v", i+1, err)
			}
		}

		_, err := f.service.CreateSubtask(ctx, f.owner, ports.CreateSubtaskRequest{
			TaskID: f.task.ID,
			Text:   "One too many",
		})
		if !entities.IsDomainError(err) {
			t.Fatalf("expected domain error at the cap, got %v", err)
		}
	})

	t.Run("deleting frees a slot under the cap", func(t *testing.T) {
		f := newSubtaskServiceFixture(t)

		var last *entities.Subtask
		for i := 0; i < entities.SubtaskCap; i++ {
			subtask, err := f.service.CreateSubtask(ctx, f.owner, ports.CreateSubtaskRequest{
				TaskID: f.task.ID,
				Text:   fmt.Sprintf("Step %d", i+1),
			})
			if err != nil {
				t.Fatalf("subtask %d failed: %v", i+1, err)
			}
			last = subtask
		}

		if err := f.service.DeleteSubtask(ctx, f.owner, last.ID); err != nil {
			t.Fatalf("DeleteSubtask returned error: %v", err)
		}

		if _, err := f.service.CreateSubtask(ctx, f.owner, ports.CreateSubtaskRequest{
			TaskID: f.task.ID,
			Text:   "Fits again",
		}); err != nil {
			t.Fatalf("expected a freed slot after deletion, got %v", err)
		}
	})

	t.Run("rejects an over-long text", func(t *testing.T) {
		f := newSubtaskServiceFixture(t)

		_, err := f.service.CreateSubtask(ctx, f.owner, ports.CreateSubtaskRequest{
			TaskID: f.task.ID,
			Text:   strings.Repeat("x", entities.MaxSubtaskTextLen+1),
		})
		if !entities.IsValidationError(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("counts the text limit in runes", func(t *testing.T) {
		f := newSubtaskServiceFixture(t)

		if _, err := f.service.CreateSubtask(ctx, f.owner, ports.CreateSubtaskRequest{
			TaskID: f.task.ID,
			Text:   strings.Repeat("é", entities.MaxSubtaskTextLen),
		}); err != nil {
			t.Fatalf("a %d rune text must pass: %v", entities.MaxSubtaskTextLen, err)
		}
	})

	t.Run("rejects a missing parent", func(t *testing.T) {
		f := newSubtaskServiceFixture(t)

		_, err := f.service.CreateSubtask(ctx, f.owner, ports.CreateSubtaskRequest{
			TaskID: 9999,
			Text:   "Orphan",
		})
		if err != entities.ErrTaskNotFound {
			t.Fatalf("expected ErrTaskNotFound, got %v", err)
		}
	})

	t.Run("denies a stranger through the parent task", func(t *testing.T) {
		f := newSubtaskServiceFixture(t)

		stranger := ports.Actor{UserID: uuid.New(), Role: entities.UserRoleUser}
		_, err := f.service.CreateSubtask(ctx, stranger, ports.CreateSubtaskRequest{
			TaskID: f.task.ID,
			Text:   "Not yours",
		})
		if err != entities.ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestToggleSubtask(t *testing.T) {
	ctx := context.Background()
	f := newSubtaskServiceFixture(t)

	subtask, err := f.service.CreateSubtask(ctx, f.owner, ports.CreateSubtaskRequest{
		TaskID: f.task.ID,
		Text:   "Flip me",
	})
	if err != nil {
		t.Fatalf("CreateSubtask returned error: %v", err)
	}

	completed, err := f.service.ToggleSubtask(ctx, f.owner, subtask.ID)
	if err != nil {
		t.Fatalf("ToggleSubtask returned error: %v", err)
	}
	if completed.Status != entities.TaskStatusCompleted {
		t.Errorf("expected completed, got %s", completed.Status)
	}

	reopened, err := f.service.ToggleSubtask(ctx, f.owner, subtask.ID)
	if err != nil {
		t.Fatalf("ToggleSubtask returned error: %v", err)
	}
	if reopened.Status != entities.TaskStatusPending {
		t.Errorf("expected pending after second toggle, got %s", reopened.Status)
	}
}

func TestUpdateSubtask(t *testing.T) {
	ctx := context.Background()
	f := newSubtaskServiceFixture(t)

	subtask, err := f.service.CreateSubtask(ctx, f.owner, ports.CreateSubtaskRequest{
		TaskID: f.task.ID,
		Text:   "Draft",
	})
	if err != nil {
		t.Fatalf("CreateSubtask returned error: %v", err)
	}

	t.Run("updates the text", func(t *testing.T) {
		text := "Final"
		updated, err := f.service.UpdateSubtask(ctx, f.owner, subtask.ID, ports.UpdateSubtaskRequest{Text: &text})
		if err != nil {
			t.Fatalf("UpdateSubtask returned error: %v", err)
		}
		if updated.Text != "Final" {
			t.Errorf("expected %q, got %q", "Final", updated.Text)
		}
	})

	t.Run("rejects an empty text", func(t *testing.T) {
		empty := ""
		_, err := f.service.UpdateSubtask(ctx, f.owner, subtask.ID, ports.UpdateSubtaskRequest{Text: &empty})
		if !entities.IsValidationError(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		bad := entities.TaskStatus("archived")
		_, err := f.service.UpdateSubtask(ctx, f.owner, subtask.ID, ports.UpdateSubtaskRequest{Status: &bad})
		if !entities.IsValidationError(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
