package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ccaio-oliveira/test-alugamais/internal/common"
	"github.com/ccaio-oliveira/test-alugamais/internal/dbx"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/models"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	// DefaultPerPage is the page size used when the caller supplies none.
	DefaultPerPage = 15
	// MaxPerPage caps the page size a caller may request.
	MaxPerPage = 100
)

// TodoService enforces the todo lifecycle: ownership-scoped reads and writes,
// title normalization, partial updates, and the completion flip. Every
// operation takes the authenticated caller's id explicitly; a foreign or
// missing todo id is uniformly common.ErrorNotFound.
type TodoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewTodoService constructs a TodoService over the given repositories.
func NewTodoService(db *sql.DB, m repomanager.RepositoryManager) *TodoService {
	return &TodoService{db: db, repomanager: m}
}

// CreateTodoParams are the accepted fields for a new todo.
type CreateTodoParams struct {
	Title       string
	Description *string
	IsCompleted bool
	DueDate     *time.Time
}

// ClampPage normalizes page/perPage to sane bounds.
func ClampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// List returns one page of the owner's todos, newest first, plus the total
// count for pagination metadata.
func (s *TodoService) List(ctx context.Context, ownerID string, page, perPage int) ([]*models.Todo, int64, error) {
	page, perPage = ClampPage(page, perPage)

	repo := s.repomanager.Todos(s.db)
	total, err := repo.Count(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	items, err := repo.List(ctx, ownerID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get returns the owner's todo with the given id.
func (s *TodoService) Get(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	repo := s.repomanager.Todos(s.db)
	return repo.GetByID(ctx, ownerID, id)
}

// Create normalizes and validates the title, then persists a new todo owned
// by ownerID.
func (s *TodoService) Create(ctx context.Context, ownerID string, params CreateTodoParams) (*models.Todo, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		v := common.NewValidationError()
		v.Add("title", "The title field is required.")
		return nil, v
	}

	todo := &models.Todo{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Title:       title,
		Description: params.Description,
		IsCompleted: params.IsCompleted,
		DueDate:     params.DueDate,
	}

	repo := s.repomanager.Todos(s.db)
	return repo.Create(ctx, todo)
}

// Update applies a partial update: only fields present in the patch change.
// The row is locked for the read-modify-write so concurrent updates cannot
// interleave.
func (s *TodoService) Update(ctx context.Context, ownerID, id string, patch *models.TodoPatch) (*models.Todo, error) {
	// an empty patch changes nothing; still resolve the id so a foreign or
	// missing todo answers 404
	if patch.Empty() {
		return s.Get(ctx, ownerID, id)
	}

	v := common.NewValidationError()
	var title string
	if patch.Title.Set {
		if patch.Title.Null {
			v.Add("title", "The title field is required.")
		} else {
			title = strings.TrimSpace(patch.Title.Value)
			if title == "" {
				v.Add("title", "The title field is required.")
			}
		}
	}
	if patch.IsCompleted.Set && patch.IsCompleted.Null {
		v.Add("is_completed", "The is completed field must be true or false.")
	}
	if !v.Empty() {
		return nil, v
	}

	var updated *models.Todo
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Todos(tx)
		todo, err := repoTx.GetByIDForUpdate(ctx, ownerID, id)
		if err != nil {
			return err
		}

		if patch.Title.Set {
			todo.Title = title
		}
		if patch.Description.Set {
			if patch.Description.Null {
				todo.Description = nil
			} else {
				d := patch.Description.Value
				todo.Description = &d
			}
		}
		if patch.IsCompleted.Set {
			todo.IsCompleted = patch.IsCompleted.Value
		}
		if patch.DueDate.Set {
			if patch.DueDate.Null {
				todo.DueDate = nil
			} else {
				d := patch.DueDate.Value
				todo.DueDate = &d
			}
		}

		updated, err = repoTx.Update(ctx, todo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Toggle flips the completion flag. The flip happens in a single SQL update,
// so it is always computed from the freshly-read row value.
func (s *TodoService) Toggle(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	repo := s.repomanager.Todos(s.db)
	return repo.Toggle(ctx, ownerID, id)
}

// Delete removes the owner's todo permanently.
func (s *TodoService) Delete(ctx context.Context, ownerID, id string) error {
	repo := s.repomanager.Todos(s.db)
	return repo.Delete(ctx, ownerID, id)
}
