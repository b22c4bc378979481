package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/profilehub/apiserver/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT id, first_name, last_name, email, roles, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT id, first_name, last_name, email, roles, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (first_name, last_name, email, roles, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.FirstName,
		user.LastName,
		user.Email,
		pq.Array(user.Roles),
		user.PasswordHash,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrConflict
		}
		return types.User{}, err
	}
	return user, nil
}

// UpdateRoles replaces the user's role set. The update is scoped to the
// single row so concurrent mutations on different users never contend.
func (r *UserRepository) UpdateRoles(ctx context.Context, id int, roles []string) (types.User, error) {
	const query = `
		UPDATE users
		SET roles = $1,
			updated_at = $2
		WHERE id = $3
		RETURNING id, first_name, last_name, email, roles, password_hash, is_active, created_at, updated_at`
	return r.scanUser(r.db.QueryRowContext(ctx, query, pq.Array(roles), time.Now(), id))
}

// UpdatePassword replaces the user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $1,
			updated_at = $2
		WHERE id = $3`
	return r.execOne(ctx, query, passwordHash, time.Now(), id)
}

// Deactivate flips the account's active flag off. Deactivation does not
// delete the row and has no undo path.
func (r *UserRepository) Deactivate(ctx context.Context, id int) (types.User, error) {
	const query = `
		UPDATE users
		SET is_active = FALSE,
			updated_at = $1
		WHERE id = $2
		RETURNING id, first_name, last_name, email, roles, password_hash, is_active, created_at, updated_at`
	return r.scanUser(r.db.QueryRowContext(ctx, query, time.Now(), id))
}

func (r *UserRepository) scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		pq.Array(&user.Roles),
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
