package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tidytask/core/internal/domain/entities"
	"github.com/tidytask/core/internal/infrastructure/logger"
	"github.com/tidytask/core/internal/ports"
)

// CategoryService handles category lifecycle operations
type CategoryService struct {
	categoryRepo ports.CategoryRepository
	taskRepo     ports.TaskRepository
	logger       *logger.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo ports.CategoryRepository, taskRepo ports.TaskRepository, logger *logger.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		taskRepo:     taskRepo,
		logger:       logger,
	}
}

// ListCategories returns the owner's live categories ordered by name.
func (s *CategoryService) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]*entities.Category, error) {
	categories, err := s.categoryRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// CreateCategory creates a category for the actor. Names are unique per
// owner among live categories, and user-created categories are never the
// personal one.
func (s *CategoryService) CreateCategory(ctx context.Context, actor ports.Actor, req ports.CreateCategoryRequest) (*entities.Category, error) {
	exists, err := s.categoryRepo.NameExists(ctx, actor.UserID, req.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if exists {
		return nil, entities.NewDomainError("category name already exists for user")
	}

	category := &entities.Category{
		OwnerID:     actor.UserID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		IsPersonal:  false,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created", "category_id", category.ID, "owner_id", category.OwnerID, "name", category.Name)

	return category, nil
}

// UpdateCategory applies an update. For the personal category only color and
// icon take effect; a supplied name or description is silently ignored.
func (s *CategoryService) UpdateCategory(ctx context.Context, actor ports.Actor, id int64, req ports.UpdateCategoryRequest) (*entities.Category, error) {
	category, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if category.CanRename() {
		exists, err := s.categoryRepo.NameExists(ctx, category.OwnerID, req.Name, category.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check category name: %w", err)
		}
		if exists {
			return nil, entities.NewDomainError("category name already exists for user")
		}

		category.Name = req.Name
		category.Description = req.Description
	}

	category.Color = req.Color
	category.Icon = req.Icon

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Info("Category updated", "category_id", category.ID, "name", category.Name)

	return category, nil
}

// DeleteCategory soft-deletes a category. Tasks still referencing it move to
// the owner's personal category atomically with the delete. The personal
// category itself can never be deleted.
func (s *CategoryService) DeleteCategory(ctx context.Context, actor ports.Actor, id int64) (*ports.DeleteCategoryResult, error) {
	category, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if category.IsPersonal {
		return nil, entities.NewDomainError("cannot delete Personal category")
	}

	taskCount, err := s.categoryRepo.CountTasks(ctx, category.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count category tasks: %w", err)
	}

	var moved int64
	if taskCount > 0 {
		personal, err := s.categoryRepo.GetPersonal(ctx, category.OwnerID)
		if err != nil {
			if errors.Is(err, entities.ErrPersonalNotFound) {
				// Creation-time guarantee broken; surface instead of
				// orphaning the tasks.
				return nil, entities.NewDomainError("personal category not found for user")
			}
			return nil, fmt.Errorf("failed to resolve personal category: %w", err)
		}

		moved, err = s.categoryRepo.DeleteWithReassign(ctx, category.ID, personal.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to delete category: %w", err)
		}

		s.logger.Info("Category deleted with task reassignment",
			"category_id", category.ID, "moved_tasks", moved, "personal_id", personal.ID)
	} else {
		if err := s.categoryRepo.Delete(ctx, category.ID); err != nil {
			return nil, fmt.Errorf("failed to delete category: %w", err)
		}

		s.logger.Info("Category deleted", "category_id", category.ID)
	}

	message := "Category deleted successfully"
	if moved > 0 {
		message = fmt.Sprintf("Category deleted. %d tasks moved to Personal", moved)
	}

	return &ports.DeleteCategoryResult{MovedTasks: moved, Message: message}, nil
}

// CanDeleteCategory is a dry-run probe used by the UI before confirming a
// deletion.
func (s *CategoryService) CanDeleteCategory(ctx context.Context, actor ports.Actor, id int64) (*ports.CanDeleteResult, error) {
	category, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if category.IsPersonal {
		return &ports.CanDeleteResult{
			CanDelete: false,
			Reason:    "the Personal category cannot be deleted",
		}, nil
	}

	taskCount, err := s.categoryRepo.CountTasks(ctx, category.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count category tasks: %w", err)
	}

	return &ports.CanDeleteResult{CanDelete: true, TaskCount: taskCount}, nil
}

// CategoryTasks lists the live tasks in a category, highest priority first.
func (s *CategoryService) CategoryTasks(ctx context.Context, actor ports.Actor, id int64) ([]*entities.Task, error) {
	category, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByCategory(ctx, category.ID, &category.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list category tasks: %w", err)
	}

	return tasks, nil
}

func (s *CategoryService) getOwned(ctx context.Context, actor ports.Actor, id int64) (*entities.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(category.OwnerID) {
		return nil, entities.ErrUnauthorized
	}

	return category, nil
}
