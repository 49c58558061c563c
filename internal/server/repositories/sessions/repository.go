package sessions

import (
	"context"
	"time"

	"github.com/ccaio-oliveira/test-alugamais/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID string, sessionID string, validity time.Duration) error
	Find(ctx context.Context, sessionID string) (*models.Session, error)
	Revoke(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
