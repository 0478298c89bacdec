package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tidytask/core/internal/ports"
)

// PostgresSearchProvider resolves free text to task IDs using the
// full-text index over title and description. It only returns IDs; the
// query engine applies its own filters and sort on top.
type PostgresSearchProvider struct {
	db *sqlx.DB
}

// NewSearchProvider creates a Postgres-backed search provider
func NewSearchProvider(db *sqlx.DB) ports.SearchProvider {
	return &PostgresSearchProvider{db: db}
}

func (p *PostgresSearchProvider) SearchTasks(ctx context.Context, query string, ownerID *uuid.UUID) ([]int64, error) {
	sqlQuery := `
		SELECT id FROM tasks
		WHERE deleted_at IS NULL
			AND to_tsvector('simple', title || ' ' || COALESCE(description, '')) @@ plainto_tsquery('simple', $1)`
	args := []interface{}{query}

	if ownerID != nil {
		sqlQuery += ` AND owner_id = $2`
		args = append(args, *ownerID)
	}

	var ids []int64
	if err := p.db.SelectContext(ctx, &ids, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}

	return ids, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
