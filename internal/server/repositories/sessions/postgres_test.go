package sessions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ccaio-oliveira/test-alugamais/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+sessions\s*\(id,\s*user_id,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*$`

	mock.ExpectExec(q).
		WithArgs("s1", "u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), "u1", "s1", time.Hour); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestFind_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,\s*user_id,\s*expires_at,\s*revoked_at,\s*created_at\s+FROM\s+sessions\s+WHERE\s+id\s*=\s*\$1\s*$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "expires_at", "revoked_at", "created_at"}).
		AddRow("s1", "u1", now.Add(time.Hour), nil, now)
	mock.ExpectQuery(q).WithArgs("s1").WillReturnRows(rows)

	got, err := repo.Find(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got.UserID != "u1" || got.Revoked() {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestFind_RevokedRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "expires_at", "revoked_at", "created_at"}).
		AddRow("s1", "u1", now.Add(time.Hour), now, now)
	mock.ExpectQuery(`(?s)^\s*SELECT\s+.*FROM\s+sessions`).WithArgs("s1").WillReturnRows(rows)

	got, err := repo.Find(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if !got.Revoked() {
		t.Fatalf("expected revoked session: %+v", got)
	}
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*SELECT\s+.*FROM\s+sessions`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestRevoke_IdempotentOnMissingRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+sessions\s+SET\s+revoked_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+AND\s+revoked_at\s+IS\s+NULL\s*$`

	// revoking an unknown or already-revoked session touches zero rows
	mock.ExpectExec(q).WithArgs("s1").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Revoke(context.Background(), "s1"); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
}

func TestDeleteExpired_ReturnsCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*DELETE\s+FROM\s+sessions\s+WHERE\s+expires_at\s*<\s*now\(\)\s*$`

	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background())
	if err != nil {
		t.Fatalf("DeleteExpired error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted, got %d", n)
	}
}
