package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/ccaio-oliveira/test-alugamais/internal/common"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/models"
)

// UserRepository is a map-backed users.Repository.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return nil, common.ErrorAlreadyExists
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.byID[user.ID] = copyUser(user)
	r.byEmail[user.Email] = user.ID
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyUser(r.byID[id]), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyUser(user), nil
}
