package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/ccaio-oliveira/test-alugamais/internal/common"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/models"
)

// SessionRepository is a map-backed sessions.Repository.
type SessionRepository struct {
	mu   sync.RWMutex
	byID map[string]*models.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{byID: make(map[string]*models.Session)}
}

func (r *SessionRepository) Create(ctx context.Context, userID string, sessionID string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.byID[sessionID] = &models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(validity),
		CreatedAt: now,
	}
	return nil
}

func (r *SessionRepository) Find(ctx context.Context, sessionID string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.byID[sessionID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *session
	return &c, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.byID[sessionID]
	if !ok || session.RevokedAt != nil {
		return nil
	}
	now := time.Now()
	session.RevokedAt = &now
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	now := time.Now()
	for id, session := range r.byID {
		if session.ExpiresAt.Before(now) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}
