package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tidytask/core/internal/domain/entities"
	"github.com/tidytask/core/internal/infrastructure/database"
	"github.com/tidytask/core/internal/ports"
)

const categoryColumns = `id, owner_id, name, description, color, icon, is_personal,
	created_at, updated_at, deleted_at`

// CategoryRepositoryImpl implements the CategoryRepository interface
type CategoryRepositoryImpl struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sqlx.DB) ports.CategoryRepository {
	return &CategoryRepositoryImpl{db: db}
}

func (r *CategoryRepositoryImpl) Create(ctx context.Context, category *entities.Category) error {
	query := `
		INSERT INTO categories (owner_id, name, description, color, icon, is_personal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		category.OwnerID, category.Name, category.Description,
		category.Color, category.Icon, category.IsPersonal,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

func (r *CategoryRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND deleted_at IS NULL`

	var category entities.Category
	err := r.db.GetContext(ctx, &category, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category by id: %w", err)
	}

	return &category, nil
}

func (r *CategoryRepositoryImpl) GetPersonal(ctx context.Context, ownerID uuid.UUID) (*entities.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE owner_id = $1 AND is_personal = TRUE AND deleted_at IS NULL`

	var category entities.Category
	err := r.db.GetContext(ctx, &category, query, ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrPersonalNotFound
		}
		return nil, fmt.Errorf("get personal category: %w", err)
	}

	return &category, nil
}

func (r *CategoryRepositoryImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY name ASC`

	var categories []*entities.Category
	if err := r.db.SelectContext(ctx, &categories, query, ownerID); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

// NameExists checks per-owner name uniqueness among live categories.
// excludeID lets updates skip the category's own row; pass 0 on create.
func (r *CategoryRepositoryImpl) NameExists(ctx context.Context, ownerID uuid.UUID, name string, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE owner_id = $1 AND name = $2 AND id <> $3 AND deleted_at IS NULL
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, ownerID, name, excludeID); err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}

	return exists, nil
}

func (r *CategoryRepositoryImpl) Update(ctx context.Context, category *entities.Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3, color = $4, icon = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		category.ID, category.Name, category.Description, category.Color, category.Icon,
	).Scan(&category.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrCategoryNotFound
		}
		return fmt.Errorf("update category: %w", err)
	}

	return nil
}

func (r *CategoryRepositoryImpl) CountTasks(ctx context.Context, categoryID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE category_id = $1 AND deleted_at IS NULL`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, categoryID); err != nil {
		return 0, fmt.Errorf("count category tasks: %w", err)
	}

	return count, nil
}

// DeleteWithReassign moves all live tasks out of the category and
// soft-deletes it in a single transaction. Either both effects commit or
// neither does.
func (r *CategoryRepositoryImpl) DeleteWithReassign(ctx context.Context, categoryID, targetCategoryID int64) (int64, error) {
	var moved int64

	err := database.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE tasks SET category_id = $2, updated_at = CURRENT_TIMESTAMP
			WHERE category_id = $1 AND deleted_at IS NULL`,
			categoryID, targetCategoryID,
		)
		if err != nil {
			return fmt.Errorf("reassign tasks: %w", err)
		}

		moved, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}

		result, err = tx.ExecContext(ctx, `
			UPDATE categories SET deleted_at = CURRENT_TIMESTAMP
			WHERE id = $1 AND deleted_at IS NULL`,
			categoryID,
		)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if affected == 0 {
			return entities.ErrCategoryNotFound
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return moved, nil
}

func (r *CategoryRepositoryImpl) Delete(ctx context.Context, id int64) error {
	query := `UPDATE categories SET deleted_at = CURRENT_TIMESTAMP WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrCategoryNotFound
	}

	return nil
}
