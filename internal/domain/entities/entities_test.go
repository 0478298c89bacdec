package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTaskToggleStatus(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	task := &Task{Status: TaskStatusPending}

	task.ToggleStatus(now)
	if task.Status != TaskStatusCompleted {
		t.Errorf("expected completed, got %s", task.Status)
	}
	if task.CompletedAt == nil || !task.CompletedAt.Equal(now) {
		t.Errorf("expected completed_at %v, got %v", now, task.CompletedAt)
	}

	task.ToggleStatus(now.Add(time.Hour))
	if task.Status != TaskStatusPending {
		t.Errorf("expected pending after second toggle, got %s", task.Status)
	}
	if task.CompletedAt != nil {
		t.Error("reopening must clear completed_at")
	}
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	earlierToday := time.Date(2026, 9, 1, 2, 0, 0, 0, time.UTC)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"pending past due", Task{Status: TaskStatusPending, DueDate: &yesterday}, true},
		{"pending due earlier today", Task{Status: TaskStatusPending, DueDate: &earlierToday}, false},
		{"pending due tomorrow", Task{Status: TaskStatusPending, DueDate: &tomorrow}, false},
		{"completed past due", Task{Status: TaskStatusCompleted, DueDate: &yesterday}, false},
		{"no due date", Task{Status: TaskStatusPending}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.IsOverdue(now); got != tt.want {
				t.Errorf("IsOverdue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserCanAccess(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()

	owner := &User{ID: ownerID, Role: UserRoleUser}
	stranger := &User{ID: otherID, Role: UserRoleUser}
	admin := &User{ID: otherID, Role: UserRoleAdmin}

	if !owner.CanAccess(ownerID) {
		t.Error("owner must access own resources")
	}
	if stranger.CanAccess(ownerID) {
		t.Error("stranger must not access foreign resources")
	}
	if !admin.CanAccess(ownerID) {
		t.Error("admin must access any resource")
	}
}

func TestCategoryCanRename(t *testing.T) {
	personal := &Category{Name: "Personal", IsPersonal: true}
	if personal.CanRename() {
		t.Error("personal category must not be renamable")
	}

	regular := &Category{Name: "Work"}
	if !regular.CanRename() {
		t.Error("regular categories must be renamable")
	}
}

func TestValidPriority(t *testing.T) {
	for p := PriorityHigh; p <= PriorityLow; p++ {
		if !ValidPriority(p) {
			t.Errorf("priority %d should be valid", p)
		}
	}
	if ValidPriority(0) || ValidPriority(4) {
		t.Error("priorities outside 1..3 should be invalid")
	}
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2026, 9, 1, 23, 59, 59, 123, time.UTC)
	want := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if got := StartOfDay(in); !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}
}

func TestErrorClassification(t *testing.T) {
	domainErr := NewDomainError("cannot add more than %d subtasks per task", SubtaskCap)
	if !IsDomainError(domainErr) {
		t.Error("expected a domain error")
	}
	if IsValidationError(domainErr) {
		t.Error("domain error misclassified as validation error")
	}

	validationErr := NewValidationError("title", "title is required")
	if !IsValidationError(validationErr) {
		t.Error("expected a validation error")
	}
	if IsDomainError(validationErr) {
		t.Error("validation error misclassified as domain error")
	}

	if IsDomainError(ErrTaskNotFound) || IsValidationError(ErrTaskNotFound) {
		t.Error("sentinel errors belong to neither category")
	}

	wrapped := errors.Join(errors.New("outer"), validationErr)
	if !IsValidationError(wrapped) {
		t.Error("classification must see through wrapping")
	}
}
