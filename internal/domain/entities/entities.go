package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrSubtaskNotFound    = errors.New("subtask not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPersonalNotFound   = errors.New("personal category not found for user")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSubtaskCapReached  = errors.New("subtask cap reached")
)

// SubtaskCap is the maximum number of live subtasks allowed per task.
const SubtaskCap = 30

// Field length limits enforced on top of request validation.
const (
	MaxTaskTitleLen       = 200
	MaxTaskDescriptionLen = 5000
	MaxCategoryNameLen    = 100
	MaxCategoryDescLen    = 500
	MaxSubtaskTextLen     = 255
)

// DomainError is a business-rule violation carrying a human-readable message.
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a domain rule violation error.
func NewDomainError(format string, args ...interface{}) *DomainError {
	return &DomainError{Message: fmt.Sprintf(format, args...)}
}

// IsDomainError reports whether err is a business-rule violation.
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// ValidationError carries per-field validation failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError creates a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// IsValidationError reports whether err is a field validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Enums and types
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Priority levels: 1 is highest.
const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3
)

// User represents an account in the system.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         UserRole   `json:"role" db:"role"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Category groups a user's tasks. Every user owns exactly one category with
// IsPersonal set; it cannot be deleted or renamed and acts as the fallback
// for tasks whose category is removed.
type Category struct {
	ID          int64      `json:"id" db:"id"`
	OwnerID     uuid.UUID  `json:"owner_id" db:"owner_id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	Color       string     `json:"color" db:"color"`
	Icon        *string    `json:"icon" db:"icon"`
	IsPersonal  bool       `json:"is_personal" db:"is_personal"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Task represents a task owned by a user.
type Task struct {
	ID          int64      `json:"id" db:"id"`
	OwnerID     uuid.UUID  `json:"owner_id" db:"owner_id"`
	CategoryID  *int64     `json:"category_id" db:"category_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	Status      TaskStatus `json:"status" db:"status"`
	Priority    int        `json:"priority" db:"priority"`
	SortOrder   *int       `json:"sort_order" db:"sort_order"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Subtask is a checklist item belonging to a task.
type Subtask struct {
	ID        int64      `json:"id" db:"id"`
	TaskID    int64      `json:"task_id" db:"task_id"`
	Text      string     `json:"text" db:"text"`
	Status    TaskStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Business logic methods for User

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// CanAccess reports whether the user may act on a resource owned by ownerID.
// Admins bypass the ownership check.
func (u *User) CanAccess(ownerID uuid.UUID) bool {
	return u.IsAdmin() || u.ID == ownerID
}

// Business logic methods for Category

// CanRename reports whether name and description changes apply to this
// category. The personal category accepts only color and icon updates.
func (c *Category) CanRename() bool {
	return !c.IsPersonal
}

// Business logic methods for Task

func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

func (t *Task) IsPending() bool {
	return t.Status == TaskStatusPending
}

// IsOverdue reports whether the task is pending with a due date before today.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return t.IsPending() && t.DueDate.Before(StartOfDay(now))
}

// Complete marks the task completed and stamps CompletedAt.
func (t *Task) Complete(now time.Time) {
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
}

// Reopen marks the task pending and clears CompletedAt.
func (t *Task) Reopen() {
	t.Status = TaskStatusPending
	t.CompletedAt = nil
}

// ToggleStatus flips the task between pending and completed, keeping the
// completed_at invariant: non-nil iff status is completed.
func (t *Task) ToggleStatus(now time.Time) {
	if t.IsCompleted() {
		t.Reopen()
	} else {
		t.Complete(now)
	}
}

// Business logic methods for Subtask

func (s *Subtask) IsCompleted() bool {
	return s.Status == TaskStatusCompleted
}

// ToggleStatus flips the subtask between pending and completed.
func (s *Subtask) ToggleStatus() {
	if s.IsCompleted() {
		s.Status = TaskStatusPending
	} else {
		s.Status = TaskStatusCompleted
	}
}

// Utility methods

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleUser, UserRoleAdmin:
		return true
	default:
		return false
	}
}

func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusPending, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// ValidPriority reports whether p is within the 1 (high) to 3 (low) range.
func ValidPriority(p int) bool {
	return p >= PriorityHigh && p <= PriorityLow
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateKey formats a time as the YYYY-MM-DD grouping key used by the
// upcoming and calendar views.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
