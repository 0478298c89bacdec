package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tidytask/core/internal/domain/entities"
	"github.com/tidytask/core/internal/infrastructure/database"
	"github.com/tidytask/core/internal/ports"
)

const subtaskColumns = `id, task_id, text, status, created_at, updated_at, deleted_at`

// SubtaskRepositoryImpl implements the SubtaskRepository interface
type SubtaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewSubtaskRepository creates a new subtask repository
func NewSubtaskRepository(db *sqlx.DB) ports.SubtaskRepository {
	return &SubtaskRepositoryImpl{db: db}
}

// CreateCapped counts live subtasks and inserts within one transaction.
// The parent task row is locked FOR UPDATE first, so two concurrent creates
// for the same task serialize and cannot both observe a count below the cap.
func (r *SubtaskRepositoryImpl) CreateCapped(ctx context.Context, subtask *entities.Subtask) error {
	return database.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var parentID int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM tasks WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
			subtask.TaskID,
		).Scan(&parentID)
		if err != nil {
			if err == sql.ErrNoRows {
				return entities.ErrTaskNotFound
			}
			return fmt.Errorf("lock parent task: %w", err)
		}

		var count int64
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM subtasks WHERE task_id = $1 AND deleted_at IS NULL`,
			subtask.TaskID,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("count subtasks: %w", err)
		}

		if count >= entities.SubtaskCap {
			return entities.ErrSubtaskCapReached
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO subtasks (task_id, text, status)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at`,
			subtask.TaskID, subtask.Text, subtask.Status,
		).Scan(&subtask.ID, &subtask.CreatedAt, &subtask.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create subtask: %w", err)
		}

		return nil
	})
}

func (r *SubtaskRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Subtask, error) {
	query := `SELECT ` + subtaskColumns + ` FROM subtasks WHERE id = $1 AND deleted_at IS NULL`

	var subtask entities.Subtask
	err := r.db.GetContext(ctx, &subtask, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrSubtaskNotFound
		}
		return nil, fmt.Errorf("get subtask by id: %w", err)
	}

	return &subtask, nil
}

func (r *SubtaskRepositoryImpl) ListByTask(ctx context.Context, taskID int64) ([]*entities.Subtask, error) {
	query := `
		SELECT ` + subtaskColumns + `
		FROM subtasks
		WHERE task_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC`

	var subtasks []*entities.Subtask
	if err := r.db.SelectContext(ctx, &subtasks, query, taskID); err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}

	return subtasks, nil
}

func (r *SubtaskRepositoryImpl) CountByTask(ctx context.Context, taskID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM subtasks WHERE task_id = $1 AND deleted_at IS NULL`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, taskID); err != nil {
		return 0, fmt.Errorf("count subtasks: %w", err)
	}

	return count, nil
}

func (r *SubtaskRepositoryImpl) Update(ctx context.Context, subtask *entities.Subtask) error {
	query := `
		UPDATE subtasks
		SET text = $2, status = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		subtask.ID, subtask.Text, subtask.Status,
	).Scan(&subtask.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrSubtaskNotFound
		}
		return fmt.Errorf("update subtask: %w", err)
	}

	return nil
}

func (r *SubtaskRepositoryImpl) Delete(ctx context.Context, id int64) error {
	query := `UPDATE subtasks SET deleted_at = CURRENT_TIMESTAMP WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete subtask: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrSubtaskNotFound
	}

	return nil
}
