package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tidytask/core/internal/domain/entities"
	"github.com/tidytask/core/internal/ports"
)

// In-memory repository fakes. They keep entities in maps, hand out
// sequential IDs and honor soft deletion the way the real queries do.

type mockTaskRepo struct {
	tasks      map[int64]*entities.Task
	nextID     int64
	lastFilter ports.TaskFilter
	listCalls  int
	countCalls int
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[int64]*entities.Task), nextID: 1}
}

func (m *mockTaskRepo) Create(ctx context.Context, task *entities.Task) error {
	task.ID = m.nextID
	m.nextID++
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id int64) (*entities.Task, error) {
	task, ok := m.tasks[id]
	if !ok || task.DeletedAt != nil {
		return nil, entities.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (m *mockTaskRepo) Update(ctx context.Context, task *entities.Task) error {
	stored, ok := m.tasks[task.ID]
	if !ok || stored.DeletedAt != nil {
		return entities.ErrTaskNotFound
	}
	copied := *task
	copied.UpdatedAt = time.Now()
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockTaskRepo) UpdateDueDate(ctx context.Context, id int64, dueDate time.Time) error {
	stored, ok := m.tasks[id]
	if !ok || stored.DeletedAt != nil {
		return entities.ErrTaskNotFound
	}
	stored.DueDate = &dueDate
	return nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, id int64) error {
	stored, ok := m.tasks[id]
	if !ok || stored.DeletedAt != nil {
		return entities.ErrTaskNotFound
	}
	now := time.Now()
	stored.DeletedAt = &now
	return nil
}

func (m *mockTaskRepo) List(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	m.listCalls++
	m.lastFilter = filter

	var out []*entities.Task
	for _, task := range m.tasks {
		if m.matches(task, filter) {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) Count(ctx context.Context, filter ports.TaskFilter) (int64, error) {
	m.countCalls++

	var count int64
	for _, task := range m.tasks {
		if m.matches(task, filter) {
			count++
		}
	}
	return count, nil
}

func (m *mockTaskRepo) matches(task *entities.Task, filter ports.TaskFilter) bool {
	if task.DeletedAt != nil {
		return false
	}
	if filter.OwnerID != nil && task.OwnerID != *filter.OwnerID {
		return false
	}
	if filter.Status != nil && task.Status != *filter.Status {
		return false
	}
	if filter.Priority != nil && task.Priority != *filter.Priority {
		return false
	}
	if filter.CategoryID != nil && (task.CategoryID == nil || *task.CategoryID != *filter.CategoryID) {
		return false
	}
	if filter.MatchIDs != nil {
		found := false
		for _, id := range filter.MatchIDs {
			if id == task.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *mockTaskRepo) ListDueBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time, pendingOnly bool) ([]*entities.Task, error) {
	var out []*entities.Task
	for _, task := range m.tasks {
		if task.DeletedAt != nil || task.OwnerID != ownerID || task.DueDate == nil {
			continue
		}
		if task.DueDate.Before(from) || task.DueDate.After(to) {
			continue
		}
		if pendingOnly && task.Status != entities.TaskStatusPending {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockTaskRepo) ListOverdue(ctx context.Context, ownerID uuid.UUID, asOf time.Time) ([]*entities.Task, error) {
	var out []*entities.Task
	for _, task := range m.tasks {
		if task.DeletedAt != nil || task.OwnerID != ownerID {
			continue
		}
		if task.IsOverdue(asOf) {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) ListByCategory(ctx context.Context, categoryID int64, ownerID *uuid.UUID) ([]*entities.Task, error) {
	var out []*entities.Task
	for _, task := range m.tasks {
		if task.DeletedAt != nil || task.CategoryID == nil || *task.CategoryID != categoryID {
			continue
		}
		if ownerID != nil && task.OwnerID != *ownerID {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockTaskRepo) CountByStatus(ctx context.Context, ownerID uuid.UUID) (int64, int64, error) {
	var pending, completed int64
	for _, task := range m.tasks {
		if task.DeletedAt != nil || task.OwnerID != ownerID {
			continue
		}
		if task.Status == entities.TaskStatusCompleted {
			completed++
		} else {
			pending++
		}
	}
	return pending, completed, nil
}

type mockCategoryRepo struct {
	categories    map[int64]*entities.Category
	taskCounts    map[int64]int64
	nextID        int64
	reassignCalls int
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{
		categories: make(map[int64]*entities.Category),
		taskCounts: make(map[int64]int64),
		nextID:     1,
	}
}

func (m *mockCategoryRepo) add(category *entities.Category) *entities.Category {
	category.ID = m.nextID
	m.nextID++
	m.categories[category.ID] = category
	return category
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *entities.Category) error {
	category.ID = m.nextID
	m.nextID++
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	copied := *category
	m.categories[category.ID] = &copied
	return nil
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id int64) (*entities.Category, error) {
	category, ok := m.categories[id]
	if !ok || category.DeletedAt != nil {
		return nil, entities.ErrCategoryNotFound
	}
	copied := *category
	return &copied, nil
}

func (m *mockCategoryRepo) GetPersonal(ctx context.Context, ownerID uuid.UUID) (*entities.Category, error) {
	for _, category := range m.categories {
		if category.DeletedAt == nil && category.OwnerID == ownerID && category.IsPersonal {
			copied := *category
			return &copied, nil
		}
	}
	return nil, entities.ErrPersonalNotFound
}

func (m *mockCategoryRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Category, error) {
	var out []*entities.Category
	for _, category := range m.categories {
		if category.DeletedAt == nil && category.OwnerID == ownerID {
			copied := *category
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockCategoryRepo) NameExists(ctx context.Context, ownerID uuid.UUID, name string, excludeID int64) (bool, error) {
	for _, category := range m.categories {
		if category.DeletedAt == nil && category.OwnerID == ownerID && category.Name == name && category.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCategoryRepo) Update(ctx context.Context, category *entities.Category) error {
	stored, ok := m.categories[category.ID]
	if !ok || stored.DeletedAt != nil {
		return entities.ErrCategoryNotFound
	}
	copied := *category
	copied.UpdatedAt = time.Now()
	m.categories[category.ID] = &copied
	return nil
}

func (m *mockCategoryRepo) CountTasks(ctx context.Context, categoryID int64) (int64, error) {
	return m.taskCounts[categoryID], nil
}

func (m *mockCategoryRepo) DeleteWithReassign(ctx context.Context, categoryID, targetCategoryID int64) (int64, error) {
	m.reassignCalls++
	stored, ok := m.categories[categoryID]
	if !ok || stored.DeletedAt != nil {
		return 0, entities.ErrCategoryNotFound
	}
	now := time.Now()
	stored.DeletedAt = &now
	moved := m.taskCounts[categoryID]
	m.taskCounts[targetCategoryID] += moved
	m.taskCounts[categoryID] = 0
	return moved, nil
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id int64) error {
	stored, ok := m.categories[id]
	if !ok || stored.DeletedAt != nil {
		return entities.ErrCategoryNotFound
	}
	now := time.Now()
	stored.DeletedAt = &now
	return nil
}

type mockSubtaskRepo struct {
	subtasks map[int64]*entities.Subtask
	nextID   int64
}

func newMockSubtaskRepo() *mockSubtaskRepo {
	return &mockSubtaskRepo{subtasks: make(map[int64]*entities.Subtask), nextID: 1}
}

func (m *mockSubtaskRepo) CreateCapped(ctx context.Context, subtask *entities.Subtask) error {
	count, _ := m.CountByTask(ctx, subtask.TaskID)
	if count >= entities.SubtaskCap {
		return entities.ErrSubtaskCapReached
	}

	subtask.ID = m.nextID
	m.nextID++
	subtask.CreatedAt = time.Now()
	subtask.UpdatedAt = subtask.CreatedAt
	copied := *subtask
	m.subtasks[subtask.ID] = &copied
	return nil
}

func (m *mockSubtaskRepo) GetByID(ctx context.Context, id int64) (*entities.Subtask, error) {
	subtask, ok := m.subtasks[id]
	if !ok || subtask.DeletedAt != nil {
		return nil, entities.ErrSubtaskNotFound
	}
	copied := *subtask
	return &copied, nil
}

func (m *mockSubtaskRepo) ListByTask(ctx context.Context, taskID int64) ([]*entities.Subtask, error) {
	var out []*entities.Subtask
	for _, subtask := range m.subtasks {
		if subtask.DeletedAt == nil && subtask.TaskID == taskID {
			copied := *subtask
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockSubtaskRepo) CountByTask(ctx context.Context, taskID int64) (int64, error) {
	var count int64
	for _, subtask := range m.subtasks {
		if subtask.DeletedAt == nil && subtask.TaskID == taskID {
			count++
		}
	}
	return count, nil
}

func (m *mockSubtaskRepo) Update(ctx context.Context, subtask *entities.Subtask) error {
	stored, ok := m.subtasks[subtask.ID]
	if !ok || stored.DeletedAt != nil {
		return entities.ErrSubtaskNotFound
	}
	copied := *subtask
	copied.UpdatedAt = time.Now()
	m.subtasks[subtask.ID] = &copied
	return nil
}

func (m *mockSubtaskRepo) Delete(ctx context.Context, id int64) error {
	stored, ok := m.subtasks[id]
	if !ok || stored.DeletedAt != nil {
		return entities.ErrSubtaskNotFound
	}
	now := time.Now()
	stored.DeletedAt = &now
	return nil
}

type mockSearchProvider struct {
	ids       []int64
	lastQuery string
	lastOwner *uuid.UUID
	calls     int
}

func (m *mockSearchProvider) SearchTasks(ctx context.Context, query string, ownerID *uuid.UUID) ([]int64, error) {
	m.calls++
	m.lastQuery = query
	m.lastOwner = ownerID
	return m.ids, nil
}

type mockUserRepo struct {
	users      map[uuid.UUID]*entities.User
	categories map[uuid.UUID]*entities.Category
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:      make(map[uuid.UUID]*entities.User),
		categories: make(map[uuid.UUID]*entities.Category),
	}
}

func (m *mockUserRepo) Create(ctx context.Context, user *entities.User, personal *entities.Category) error {
	for _, existing := range m.users {
		if existing.DeletedAt == nil && existing.Email == user.Email {
			return entities.ErrEmailTaken
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	m.users[user.ID] = &copied
	personalCopy := *personal
	m.categories[user.ID] = &personalCopy
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user, ok := m.users[id]
	if !ok || user.DeletedAt != nil {
		return nil, entities.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, user := range m.users {
		if user.DeletedAt == nil && user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, user *entities.User) error {
	stored, ok := m.users[user.ID]
	if !ok || stored.DeletedAt != nil {
		return entities.ErrUserNotFound
	}
	copied := *user
	copied.UpdatedAt = time.Now()
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	stored, ok := m.users[id]
	if !ok || stored.DeletedAt != nil {
		return entities.ErrUserNotFound
	}
	now := time.Now()
	stored.DeletedAt = &now
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	var out []*entities.User
	for _, user := range m.users {
		if user.DeletedAt == nil {
			copied := *user
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	for _, user := range m.users {
		if user.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}
