package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nitty-hq/server/internal/domain/users"
	"github.com/nitty-hq/server/internal/metrics"
)

var _ users.Repository = (*UserRepository)(nil)

const uniqueViolation = "23505"

func (r *UserRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *UserRepository) Create(ctx context.Context, params users.CreateParams) (*users.User, error) {
	start := time.Now()
	row := r.queryer().QueryRow(ctx, `
INSERT INTO users (email, full_name, password_hash, is_superuser)
VALUES ($1, $2, $3, $4)
RETURNING id, email, full_name, password_hash, is_active, is_superuser, created_at
`,
		params.Email,
		nullableString(params.FullName),
		params.PasswordHash,
		params.IsSuperuser,
	)

	user, err := scanUser(row)
	metrics.RecordQuery("create_user", start, err)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, users.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	start := time.Now()
	row := r.queryer().QueryRow(ctx, `
SELECT id, email, full_name, password_hash, is_active, is_superuser, created_at
  FROM users
 WHERE id = $1
`, id)

	user, err := scanUser(row)
	metrics.RecordQuery("get_user", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	start := time.Now()
	row := r.queryer().QueryRow(ctx, `
SELECT id, email, full_name, password_hash, is_active, is_superuser, created_at
  FROM users
 WHERE email = $1
`, email)

	user, err := scanUser(row)
	metrics.RecordQuery("get_user_by_email", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var user users.User
	var fullName *string
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&fullName,
		&user.PasswordHash,
		&user.IsActive,
		&user.IsSuperuser,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	user.FullName = derefString(fullName)
	return &user, nil
}
