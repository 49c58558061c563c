package repomanager

import (
	"context"
	"database/sql"

	"github.com/ccaio-oliveira/test-alugamais/internal/dbx"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/repositories/sessions"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/repositories/todos"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Todos(db dbx.DBTX) todos.Repository
}
