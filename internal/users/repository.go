package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/userbase-hq/userbase/internal/shared"
)

// Repository provides PostgreSQL backed persistence for registry records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, name, email, phone, birth_date, created_at`

// CreateUser inserts a single record. Unique violations on email or phone
// surface as shared.ErrDuplicate.
func (r *Repository) CreateUser(ctx context.Context, rec NewUser) (User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, phone, birth_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		rec.Name, rec.Email, rec.Phone, rec.BirthDate)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, shared.ErrDuplicate
		}
		return User{}, err
	}
	return user, nil
}

// GetUser fetches a record by identifier.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Count returns the number of records in the collection.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// List performs a keyset scan ordered ascending by identifier. The WHERE
// clause is built from the cursor plus whichever filters are set.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]User, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if q.AfterID > 0 {
		conds = append(conds, "id > "+arg(q.AfterID))
	}
	if q.Name != "" {
		conds = append(conds, "name ILIKE '%' || "+arg(q.Name)+" || '%'")
	}
	if q.Email != "" {
		conds = append(conds, "email = "+arg(q.Email))
	}
	if q.Phone != "" {
		conds = append(conds, "phone = "+arg(q.Phone))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + userColumns + ` FROM users`)
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY id ASC LIMIT " + arg(q.Limit))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

// BulkInsert writes a batch of records in one round trip with unordered,
// continue-on-error semantics: a duplicate email or phone skips that record
// without aborting the rest of the batch. Returns how many rows were inserted
// and how many were skipped on conflict. Errors other than conflicts are
// store-level and abort the batch.
func (r *Repository) BulkInsert(ctx context.Context, recs []NewUser) (inserted, skipped int, err error) {
	if len(recs) == 0 {
		return 0, 0, nil
	}
	batch := &pgx.Batch{}
	const query = `
INSERT INTO users (name, email, phone, birth_date, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT DO NOTHING`
	for _, rec := range recs {
		batch.Queue(query, rec.Name, rec.Email, rec.Phone, rec.BirthDate, rec.CreatedAt)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer func() {
		if cerr := results.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for range recs {
		tag, execErr := results.Exec()
		if execErr != nil {
			return inserted, skipped, fmt.Errorf("users: bulk insert: %w", execErr)
		}
		if tag.RowsAffected() > 0 {
			inserted++
		} else {
			skipped++
		}
	}
	return inserted, skipped, nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.BirthDate, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}
