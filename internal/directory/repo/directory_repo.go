package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/directory/entity"
	"github.com/ovaphlow/pitchfork/service-auth-go/pkg/utilities"
)

type DirectoryRepo struct {
	db  *sqlx.DB
	ids *utilities.IDGenerator
}

func NewDirectoryRepo(db *sqlx.DB, ids *utilities.IDGenerator) *DirectoryRepo {
	return &DirectoryRepo{db: db, ids: ids}
}

// EnsureTable creates the directory_users table if it does not already exist.
// Email is indexed but not unique.
func (r *DirectoryRepo) EnsureTable(ctx context.Context) error {
	const tbl = `
	CREATE TABLE IF NOT EXISTS directory_users (
		id varchar(32) PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	if _, err := r.db.ExecContext(ctx, tbl); err != nil {
		return err
	}

	const idx = `
	CREATE INDEX IF NOT EXISTS idx_directory_users_email ON directory_users (email);
	`
	if _, err := r.db.ExecContext(ctx, idx); err != nil {
		return err
	}
	return nil
}

// List returns every entry in insertion order.
func (r *DirectoryRepo) List(ctx context.Context) ([]entity.DirectoryUser, error) {
	const q = `SELECT id, name, email FROM directory_users ORDER BY created_at, id`
	out := []entity.DirectoryUser{}
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts u and fills in its ID.
func (r *DirectoryRepo) Create(ctx context.Context, u *entity.DirectoryUser) error {
	const q = `INSERT INTO directory_users (id, name, email) VALUES ($1, $2, $3)`
	id := r.ids.NewID()
	if _, err := r.db.ExecContext(ctx, q, id, u.Name, u.Email); err != nil {
		return err
	}
	u.ID = id
	return nil
}
