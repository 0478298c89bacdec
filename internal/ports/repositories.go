package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tidytask/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create inserts the user and its personal category in one transaction.
	// A user without a personal category must never be observable.
	Create(ctx context.Context, user *entities.User, personal *entities.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*entities.User, error)
	Count(ctx context.Context) (int64, error)
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *entities.Category) error
	GetByID(ctx context.Context, id int64) (*entities.Category, error)
	GetPersonal(ctx context.Context, ownerID uuid.UUID) (*entities.Category, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Category, error)
	NameExists(ctx context.Context, ownerID uuid.UUID, name string, excludeID int64) (bool, error)
	Update(ctx context.Context, category *entities.Category) error
	CountTasks(ctx context.Context, categoryID int64) (int64, error)
	// DeleteWithReassign moves every task referencing the category to the
	// target category and soft-deletes the category, atomically. Returns the
	// number of tasks moved.
	DeleteWithReassign(ctx context.Context, categoryID, targetCategoryID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id int64) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	UpdateDueDate(ctx context.Context, id int64, dueDate time.Time) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter TaskFilter) ([]*entities.Task, error)
	Count(ctx context.Context, filter TaskFilter) (int64, error)
	ListDueBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time, pendingOnly bool) ([]*entities.Task, error)
	ListOverdue(ctx context.Context, ownerID uuid.UUID, asOf time.Time) ([]*entities.Task, error)
	ListByCategory(ctx context.Context, categoryID int64, ownerID *uuid.UUID) ([]*entities.Task, error)
	CountByStatus(ctx context.Context, ownerID uuid.UUID) (pending, completed int64, err error)
}

// SubtaskRepository defines the interface for subtask data operations
type SubtaskRepository interface {
	// CreateCapped inserts the subtask unless the parent task already has
	// entities.SubtaskCap live subtasks. The count and the insert run in one
	// transaction holding a row lock on the parent task, so concurrent
	// creators cannot both pass the check. Returns entities.ErrSubtaskCapReached when
	// the cap is hit and entities.ErrTaskNotFound when the parent is gone.
	CreateCapped(ctx context.Context, subtask *entities.Subtask) error
	GetByID(ctx context.Context, id int64) (*entities.Subtask, error)
	ListByTask(ctx context.Context, taskID int64) ([]*entities.Subtask, error)
	CountByTask(ctx context.Context, taskID int64) (int64, error)
	Update(ctx context.Context, subtask *entities.Subtask) error
	Delete(ctx context.Context, id int64) error
}

// SearchProvider resolves free text to matching task IDs. Ordering is not
// part of the contract; the query engine re-imposes its own sort.
type SearchProvider interface {
	SearchTasks(ctx context.Context, query string, ownerID *uuid.UUID) ([]int64, error)
}

// DueFilter names a date-range predicate over a task's due date.
type DueFilter string

const (
	DueToday   DueFilter = "today"
	DueWeek    DueFilter = "week"
	DueMonth   DueFilter = "month"
	DueOverdue DueFilter = "overdue"
)

func (f DueFilter) IsValid() bool {
	switch f {
	case DueToday, DueWeek, DueMonth, DueOverdue:
		return true
	default:
		return false
	}
}

// Window returns the inclusive due-date range for the filter as of now.
// today = [today, today]; week = [today, today+7d]; month = [today, today+1mo].
// overdue has no upper-bounded window and reports ok = false; callers use
// ListOverdue or an explicit < today predicate instead.
func (f DueFilter) Window(now time.Time) (from, to time.Time, ok bool) {
	day := entities.StartOfDay(now)
	switch f {
	case DueToday:
		return day, day, true
	case DueWeek:
		return day, day.AddDate(0, 0, 7), true
	case DueMonth:
		return day, day.AddDate(0, 1, 0), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// Sortable task fields. An unrecognized field falls back to SortByPriority.
const (
	SortByPriority  = "priority"
	SortByDueDate   = "due_date"
	SortByCreatedAt = "created_at"
	SortByOrder     = "order"
)

// TaskFilter carries the query engine criteria. Nil pointer fields mean
// "no constraint"; a nil Status means all statuses.
type TaskFilter struct {
	OwnerID    *uuid.UUID
	Status     *entities.TaskStatus
	Priority   *int
	CategoryID *int64
	Due        DueFilter
	// Search is free text resolved by the service through the search
	// provider before the filter reaches the repository. Empty is a no-op.
	Search string
	// MatchIDs restricts results to these task IDs. Set by the service after
	// consulting the search provider; an empty non-nil slice yields no rows.
	MatchIDs  []int64
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// Normalize clamps pagination and sort direction to usable values.
func (f *TaskFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 15
	}
	if f.SortOrder != "desc" {
		f.SortOrder = "asc"
	}
	switch f.SortBy {
	case SortByPriority, SortByDueDate, SortByCreatedAt, SortByOrder:
	default:
		f.SortBy = SortByPriority
		f.SortOrder = "asc"
	}
}

// Offset returns the row offset for the current page.
func (f *TaskFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}

// Page is the standard pagination envelope returned by list operations.
type Page[T any] struct {
	Items    []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"current_page"`
	PerPage  int   `json:"per_page"`
	LastPage int   `json:"last_page"`
}

// NewPage builds a pagination envelope, computing the last page number.
// An empty result set is a valid single-page envelope.
func NewPage[T any](items []T, total int64, page, perPage int) Page[T] {
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	return Page[T]{
		Items:    items,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
		LastPage: last,
	}
}
