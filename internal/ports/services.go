package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tidytask/core/internal/domain/entities"
)

// Actor identifies the authenticated caller of a service operation.
// Admins may act on any owner's entities; everyone else only on their own.
type Actor struct {
	UserID uuid.UUID
	Role   entities.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == entities.UserRoleAdmin
}

// CanAccess reports whether the actor may act on a resource owned by ownerID.
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.UserID == ownerID
}

// AuthService interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// UserService interface for user management operations
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*entities.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*entities.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*entities.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context, limit, offset int) ([]*entities.User, int64, error)
}

// TaskService interface for task management operations
type TaskService interface {
	CreateTask(ctx context.Context, actor Actor, req CreateTaskRequest) (*entities.Task, error)
	GetTask(ctx context.Context, actor Actor, id int64) (*entities.Task, error)
	UpdateTask(ctx context.Context, actor Actor, id int64, req UpdateTaskRequest) (*entities.Task, error)
	RescheduleTask(ctx context.Context, actor Actor, id int64, dueDate time.Time) (*entities.Task, error)
	ToggleTask(ctx context.Context, actor Actor, id int64) (*entities.Task, error)
	DeleteTask(ctx context.Context, actor Actor, id int64) error
	ListTasks(ctx context.Context, actor Actor, filter TaskFilter) (Page[*entities.Task], error)
	UpcomingTasks(ctx context.Context, ownerID uuid.UUID) (map[string][]*entities.Task, error)
	CalendarTasks(ctx context.Context, ownerID uuid.UUID, month time.Month, year int) (map[string][]*entities.Task, error)
	OverdueTasks(ctx context.Context, ownerID uuid.UUID) ([]*entities.Task, error)
	TaskStats(ctx context.Context, ownerID uuid.UUID) (*TaskStats, error)
}

// CategoryService interface for category management operations
type CategoryService interface {
	ListCategories(ctx context.Context, ownerID uuid.UUID) ([]*entities.Category, error)
	CreateCategory(ctx context.Context, actor Actor, req CreateCategoryRequest) (*entities.Category, error)
	UpdateCategory(ctx context.Context, actor Actor, id int64, req UpdateCategoryRequest) (*entities.Category, error)
	DeleteCategory(ctx context.Context, actor Actor, id int64) (*DeleteCategoryResult, error)
	CanDeleteCategory(ctx context.Context, actor Actor, id int64) (*CanDeleteResult, error)
	CategoryTasks(ctx context.Context, actor Actor, id int64) ([]*entities.Task, error)
}

// SubtaskService interface for subtask management operations
type SubtaskService interface {
	ListSubtasks(ctx context.Context, actor Actor, taskID int64) ([]*entities.Subtask, error)
	CreateSubtask(ctx context.Context, actor Actor, req CreateSubtaskRequest) (*entities.Subtask, error)
	UpdateSubtask(ctx context.Context, actor Actor, id int64, req UpdateSubtaskRequest) (*entities.Subtask, error)
	ToggleSubtask(ctx context.Context, actor Actor, id int64) (*entities.Subtask, error)
	DeleteSubtask(ctx context.Context, actor Actor, id int64) error
}

// Request/Response Types

// Auth related types
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	User        *entities.User `json:"user"`
}

type Claims struct {
	UserID string            `json:"user_id"`
	Email  string            `json:"email"`
	Role   entities.UserRole `json:"role"`
}

// User related types
type CreateUserRequest struct {
	Name     string            `json:"name" validate:"required,max=100"`
	Email    string            `json:"email" validate:"required,email"`
	Password string            `json:"password" validate:"required,min=8"`
	Role     entities.UserRole `json:"role" validate:"required,oneof=user admin"`
}

type UpdateUserRequest struct {
	Name  *string            `json:"name" validate:"omitempty,max=100"`
	Email *string            `json:"email" validate:"omitempty,email"`
	Role  *entities.UserRole `json:"role" validate:"omitempty,oneof=user admin"`
}

// Task related types
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Priority    int        `json:"priority" validate:"required,min=1,max=3"`
	DueDate     *time.Time `json:"due_date"`
	CategoryID  *int64     `json:"category_id"`
	SortOrder   *int       `json:"sort_order"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Priority    *int       `json:"priority" validate:"omitempty,min=1,max=3"`
	DueDate     *time.Time `json:"due_date"`
	CategoryID  *int64     `json:"category_id"`
	SortOrder   *int       `json:"sort_order"`
}

type TaskStats struct {
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
}

// Category related types
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Color       string  `json:"color" validate:"required,hexcolor"`
	Icon        *string `json:"icon" validate:"omitempty,max=50"`
}

type UpdateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Color       string  `json:"color" validate:"required,hexcolor"`
	Icon        *string `json:"icon" validate:"omitempty,max=50"`
}

// DeleteCategoryResult summarizes a category deletion, including how many
// tasks were reassigned to the personal category.
type DeleteCategoryResult struct {
	MovedTasks int64  `json:"moved_tasks"`
	Message    string `json:"message"`
}

// CanDeleteResult is a dry-run probe for category deletion.
type CanDeleteResult struct {
	CanDelete bool   `json:"can_delete"`
	Reason    string `json:"reason,omitempty"`
	TaskCount int64  `json:"task_count"`
}

// Subtask related types
type CreateSubtaskRequest struct {
	TaskID int64  `json:"task_id" validate:"required"`
	Text   string `json:"text" validate:"required,max=255"`
}

type UpdateSubtaskRequest struct {
	Text   *string              `json:"text" validate:"omitempty,max=255"`
	Status *entities.TaskStatus `json:"status" validate:"omitempty,oneof=pending completed"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
