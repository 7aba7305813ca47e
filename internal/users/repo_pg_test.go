package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("INSERT INTO users").
		WithArgs("ada@example.com", "Ada", "hash").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Create(context.Background(), User{Email: "ada@example.com", PasswordHash: "hash"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestPGRepoGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("SELECT email, name, password_hash, created_at").
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"email", "name", "password_hash", "created_at"}).
			AddRow("ada@example.com", "Ada", "hash", created))

	user, err := repo.GetByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.Name != "Ada" || user.PasswordHash != "hash" || !user.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", user)
	}

	mock.ExpectQuery("SELECT email").
		WithArgs("bob@example.com").
		WillReturnError(sql.ErrNoRows)
	if _, err := repo.GetByEmail(context.Background(), "bob@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
