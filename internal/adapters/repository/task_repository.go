package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tidytask/core/internal/domain/entities"
	"github.com/tidytask/core/internal/ports"
)

const taskColumns = `id, owner_id, category_id, title, description, status, priority,
	sort_order, due_date, completed_at, created_at, updated_at, deleted_at`

// TaskRepositoryImpl implements the TaskRepository interface
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	query := `
		INSERT INTO tasks (owner_id, category_id, title, description, status, priority, sort_order, due_date, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.OwnerID, task.CategoryID, task.Title, task.Description,
		task.Status, task.Priority, task.SortOrder, task.DueDate, task.CompletedAt,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND deleted_at IS NULL`

	var task entities.Task
	err := r.db.GetContext(ctx, &task, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return &task, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task) error {
	query := `
		UPDATE tasks
		SET category_id = $2, title = $3, description = $4, status = $5, priority = $6,
			sort_order = $7, due_date = $8, completed_at = $9, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.CategoryID, task.Title, task.Description, task.Status,
		task.Priority, task.SortOrder, task.DueDate, task.CompletedAt,
	).Scan(&task.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrTaskNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}

	return nil
}

// UpdateDueDate is the narrow reschedule path: only the due date changes,
// everything else stays as stored.
func (r *TaskRepositoryImpl) UpdateDueDate(ctx context.Context, id int64, dueDate time.Time) error {
	query := `
		UPDATE tasks SET due_date = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, dueDate)
	if err != nil {
		return fmt.Errorf("update task due date: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id int64) error {
	query := `UPDATE tasks SET deleted_at = CURRENT_TIMESTAMP WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	where, args := buildTaskPredicates(filter, time.Now())

	query := fmt.Sprintf(
		`SELECT `+taskColumns+` FROM tasks WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		strings.Join(where, " AND "),
		taskOrderClause(filter),
		filter.PerPage,
		filter.Offset(),
	)

	var tasks []*entities.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) Count(ctx context.Context, filter ports.TaskFilter) (int64, error) {
	where, args := buildTaskPredicates(filter, time.Now())

	query := fmt.Sprintf(`SELECT COUNT(*) FROM tasks WHERE %s`, strings.Join(where, " AND "))

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}

	return count, nil
}

// buildTaskPredicates translates a TaskFilter into WHERE fragments and args.
// Soft-deleted rows are always excluded.
func buildTaskPredicates(filter ports.TaskFilter, now time.Time) ([]string, []interface{}) {
	where := []string{"deleted_at IS NULL"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.OwnerID != nil {
		where = append(where, "owner_id = "+arg(*filter.OwnerID))
	}
	if filter.Status != nil {
		where = append(where, "status = "+arg(*filter.Status))
	}
	if filter.Priority != nil {
		where = append(where, "priority = "+arg(*filter.Priority))
	}
	if filter.CategoryID != nil {
		where = append(where, "category_id = "+arg(*filter.CategoryID))
	}

	switch filter.Due {
	case ports.DueOverdue:
		where = append(where, "due_date < "+arg(entities.StartOfDay(now)))
		where = append(where, "status = "+arg(entities.TaskStatusPending))
	default:
		if from, to, ok := filter.Due.Window(now); ok {
			where = append(where, "due_date >= "+arg(from))
			where = append(where, "due_date <= "+arg(to))
		}
	}

	if filter.MatchIDs != nil {
		where = append(where, "id = ANY("+arg(pq.Int64Array(filter.MatchIDs))+")")
	}

	return where, args
}

// taskOrderClause maps the filter's sort field to an ORDER BY clause.
// Priority sorting always tiebreaks by due date ascending.
func taskOrderClause(filter ports.TaskFilter) string {
	dir := "ASC"
	if filter.SortOrder == "desc" {
		dir = "DESC"
	}

	switch filter.SortBy {
	case ports.SortByDueDate:
		return "due_date " + dir + " NULLS LAST"
	case ports.SortByCreatedAt:
		return "created_at " + dir
	case ports.SortByOrder:
		return "sort_order " + dir + " NULLS LAST"
	default:
		return "priority " + dir + ", due_date ASC NULLS LAST"
	}
}

func (r *TaskRepositoryImpl) ListDueBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time, pendingOnly bool) ([]*entities.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE owner_id = $1 AND deleted_at IS NULL
			AND due_date >= $2 AND due_date <= $3`
	args := []interface{}{ownerID, from, to}

	if pendingOnly {
		query += ` AND status = $4`
		args = append(args, entities.TaskStatusPending)
	}

	query += ` ORDER BY due_date ASC, priority ASC`

	var tasks []*entities.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks due between: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) ListOverdue(ctx context.Context, ownerID uuid.UUID, asOf time.Time) ([]*entities.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE owner_id = $1 AND deleted_at IS NULL
			AND status = $2 AND due_date IS NOT NULL AND due_date < $3
		ORDER BY due_date ASC`

	var tasks []*entities.Task
	err := r.db.SelectContext(ctx, &tasks, query, ownerID, entities.TaskStatusPending, entities.StartOfDay(asOf))
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) ListByCategory(ctx context.Context, categoryID int64, ownerID *uuid.UUID) ([]*entities.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE category_id = $1 AND deleted_at IS NULL`
	args := []interface{}{categoryID}

	if ownerID != nil {
		query += ` AND owner_id = $2`
		args = append(args, *ownerID)
	}

	query += ` ORDER BY priority ASC, due_date ASC NULLS LAST`

	var tasks []*entities.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks by category: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) CountByStatus(ctx context.Context, ownerID uuid.UUID) (int64, int64, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = $2) AS pending,
			COUNT(*) FILTER (WHERE status = $3) AS completed
		FROM tasks
		WHERE owner_id = $1 AND deleted_at IS NULL`

	var counts struct {
		Pending   int64 `db:"pending"`
		Completed int64 `db:"completed"`
	}
	err := r.db.GetContext(ctx, &counts, query, ownerID, entities.TaskStatusPending, entities.TaskStatusCompleted)
	if err != nil {
		return 0, 0, fmt.Errorf("count tasks by status: %w", err)
	}

	return counts.Pending, counts.Completed, nil
}
