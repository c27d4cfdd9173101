package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-auth-go/pkg/utilities"
)

// uniqueViolation is the Postgres SQLSTATE for a unique index conflict.
const uniqueViolation = "23505"

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db  *sqlx.DB
	ids *utilities.IDGenerator
}

func NewUserRepo(db *sqlx.DB, ids *utilities.IDGenerator) *UserRepo {
	return &UserRepo{db: db, ids: ids}
}

// EnsureTable creates the users table and its unique email index if they
// do not exist (idempotent).
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id VARCHAR(32) PRIMARY KEY,
  email TEXT NOT NULL,
  password TEXT NOT NULL,
  reset_code TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new user row and fills in its ID. A concurrent insert of
// the same email fails with ErrDuplicateEmail.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (id, email, password) VALUES ($1, $2, $3)`
	id := r.ids.NewID()
	if _, err := r.db.ExecContext(ctx, q, id, u.Email, u.Password); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	u.ID = id
	return nil
}

// GetByEmail returns the user with exactly this email or ErrNotFound.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT id, email, password, reset_code FROM users WHERE email=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// SetResetCode stores code on the user's row.
func (r *UserRepo) SetResetCode(ctx context.Context, email, code string) error {
	const q = `UPDATE users SET reset_code=$2, updated_at=NOW() WHERE email=$1`
	res, err := r.db.ExecContext(ctx, q, email, code)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
