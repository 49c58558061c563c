package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ccaio-oliveira/test-alugamais/internal/common"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/models"
)

// TodoRepository is a map-backed todos.Repository. An insertion sequence
// number stands in for the created_at tiebreak of the SQL ordering.
type TodoRepository struct {
	mu   sync.RWMutex
	byID map[string]*models.Todo
	seq  map[string]int64
	next int64
}

func NewTodoRepository() *TodoRepository {
	return &TodoRepository{
		byID: make(map[string]*models.Todo),
		seq:  make(map[string]int64),
	}
}

func copyTodo(t *models.Todo) *models.Todo {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}

func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	r.next++
	r.seq[todo.ID] = r.next
	r.byID[todo.ID] = copyTodo(todo)
	return todo, nil
}

func (r *TodoRepository) owned(userID, id string) (*models.Todo, bool) {
	todo, ok := r.byID[id]
	if !ok || todo.UserID != userID {
		return nil, false
	}
	return todo, true
}

func (r *TodoRepository) GetByID(ctx context.Context, userID, id string) (*models.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todo, ok := r.owned(userID, id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyTodo(todo), nil
}

func (r *TodoRepository) GetByIDForUpdate(ctx context.Context, userID, id string) (*models.Todo, error) {
	return r.GetByID(ctx, userID, id)
}

func (r *TodoRepository) List(ctx context.Context, userID string, limit, offset int) ([]*models.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var owned []*models.Todo
	for _, todo := range r.byID {
		if todo.UserID == userID {
			owned = append(owned, todo)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return r.seq[owned[i].ID] > r.seq[owned[j].ID]
	})

	if offset >= len(owned) {
		return nil, nil
	}
	owned = owned[offset:]
	if limit < len(owned) {
		owned = owned[:limit]
	}

	result := make([]*models.Todo, 0, len(owned))
	for _, todo := range owned {
		result = append(result, copyTodo(todo))
	}
	return result, nil
}

func (r *TodoRepository) Count(ctx context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, todo := range r.byID {
		if todo.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *TodoRepository) Update(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.owned(todo.UserID, todo.ID)
	if !ok {
		return nil, common.ErrorNotFound
	}

	todo.CreatedAt = stored.CreatedAt
	todo.UpdatedAt = time.Now()
	r.byID[todo.ID] = copyTodo(todo)
	return todo, nil
}

func (r *TodoRepository) Toggle(ctx context.Context, userID, id string) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo, ok := r.owned(userID, id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	todo.IsCompleted = !todo.IsCompleted
	todo.UpdatedAt = time.Now()
	return copyTodo(todo), nil
}

func (r *TodoRepository) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owned(userID, id); !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	delete(r.seq, id)
	return nil
}
