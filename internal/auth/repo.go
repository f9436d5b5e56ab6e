package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/userbase-hq/userbase/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	// SetRefreshTokenHash unconditionally stores the hash for a user. Used by
	// login, which supersedes whatever token was outstanding.
	SetRefreshTokenHash(ctx context.Context, id int64, hash string) error
	// ReplaceRefreshTokenHash swaps the stored hash only when it still equals
	// prevHash. Returns shared.ErrAccessDenied when a concurrent rotation
	// already overwrote it.
	ReplaceRefreshTokenHash(ctx context.Context, id int64, prevHash, newHash string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, name, email, phone, COALESCE(refresh_token_hash, ''), created_at`

// FindByEmail fetches a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID fetches a user by identifier.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// SetRefreshTokenHash overwrites the stored refresh token hash.
func (r *PGRepository) SetRefreshTokenHash(ctx context.Context, id int64, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET refresh_token_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReplaceRefreshTokenHash performs the rotation overwrite as a single
// compare-and-set statement, so concurrent rotations for the same user cannot
// both succeed against the same stored hash.
func (r *PGRepository) ReplaceRefreshTokenHash(ctx context.Context, id int64, prevHash, newHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token_hash = $1 WHERE id = $2 AND refresh_token_hash = $3`,
		newHash, id, prevHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrAccessDenied
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.RefreshTokenHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
