// Package todos provides a PostgreSQL-backed repository for todo records.
// Every query is scoped by user_id, so a foreign id is indistinguishable from
// a missing one.
package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ccaio-oliveira/test-alugamais/internal/common"
	"github.com/ccaio-oliveira/test-alugamais/internal/dbx"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/models"
)

const todoColumns = "id, user_id, title, description, is_completed, due_date, created_at, updated_at"

// PostgresRepository implements todo storage over a dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanTodo(row *sql.Row) (*models.Todo, error) {
	todo := &models.Todo{}
	err := row.Scan(
		&todo.ID, &todo.UserID, &todo.Title, &todo.Description,
		&todo.IsCompleted, &todo.DueDate, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

// Create inserts a new todo and fills in the server-assigned timestamps.
func (r *PostgresRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	query := `
		INSERT INTO todos (id, user_id, title, description, is_completed, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		todo.ID, todo.UserID, todo.Title, todo.Description, todo.IsCompleted, todo.DueDate).
		Scan(&todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

// GetByID returns the todo with the given id owned by userID,
// or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE id = $1 AND user_id = $2
	`
	return scanTodo(r.db.QueryRowContext(ctx, query, id, userID))
}

// GetByIDForUpdate is GetByID with a row lock, for read-modify-write inside a
// transaction.
func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, userID, id string) (*models.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`
	return scanTodo(r.db.QueryRowContext(ctx, query, id, userID))
}

// List returns up to limit todos owned by userID, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, limit, offset int) ([]*models.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Todo
	for rows.Next() {
		var item models.Todo
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Title, &item.Description,
			&item.IsCompleted, &item.DueDate, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the total number of todos owned by userID.
func (r *PostgresRepository) Count(ctx context.Context, userID string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM todos
		WHERE user_id = $1
	`
	var n int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Update writes the mutable fields of todo back to its row, scoped by owner.
// Returns common.ErrorNotFound when no such owned row exists.
func (r *PostgresRepository) Update(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	query := `
		UPDATE todos
		SET title = $3, description = $4, is_completed = $5, due_date = $6, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		todo.ID, todo.UserID, todo.Title, todo.Description, todo.IsCompleted, todo.DueDate).
		Scan(&todo.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

// Toggle flips is_completed in a single statement, so the flip is always
// computed from the current row value and concurrent toggles cannot lose
// updates.
func (r *PostgresRepository) Toggle(ctx context.Context, userID, id string) (*models.Todo, error) {
	query := `
		UPDATE todos
		SET is_completed = NOT is_completed, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + todoColumns + `
	`
	return scanTodo(r.db.QueryRowContext(ctx, query, id, userID))
}

// Delete removes the owned row. Returns common.ErrorNotFound when nothing was
// deleted.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `
		DELETE FROM todos
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
