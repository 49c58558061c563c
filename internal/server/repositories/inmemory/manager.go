// Package inmemory provides map-backed repository implementations. They back
// the service and handler tests; the production wiring uses the Postgres
// repositories.
package inmemory

import (
	"context"
	"database/sql"

	"github.com/ccaio-oliveira/test-alugamais/internal/dbx"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/repositories/sessions"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/repositories/todos"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/repositories/users"
)

// Manager vends the in-memory repositories. The DBTX arguments are ignored:
// there is no real database underneath, so transactional and plain callers
// share the same state.
type Manager struct {
	users    *UserRepository
	sessions *SessionRepository
	todos    *TodoRepository
}

func NewManager() *Manager {
	return &Manager{
		users:    NewUserRepository(),
		sessions: NewSessionRepository(),
		todos:    NewTodoRepository(),
	}
}

func (m *Manager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *Manager) Users(db dbx.DBTX) users.Repository {
	return m.users
}

func (m *Manager) Sessions(db dbx.DBTX) sessions.Repository {
	return m.sessions
}

func (m *Manager) Todos(db dbx.DBTX) todos.Repository {
	return m.todos
}
