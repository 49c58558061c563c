package todos

import (
	"context"

	"github.com/ccaio-oliveira/test-alugamais/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	GetByID(ctx context.Context, userID, id string) (*models.Todo, error)
	GetByIDForUpdate(ctx context.Context, userID, id string) (*models.Todo, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*models.Todo, error)
	Count(ctx context.Context, userID string) (int64, error)
	Update(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	Toggle(ctx context.Context, userID, id string) (*models.Todo, error)
	Delete(ctx context.Context, userID, id string) error
}
