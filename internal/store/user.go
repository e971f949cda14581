package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/useraccounts/apiserver/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	const query = `
		SELECT id, user_email, user_name, user_password
		FROM users
		WHERE user_name = $1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// GetByEmailOrUsername returns the first record whose email or username
// matches. Used by signup to detect collisions before any write.
func (r *UserRepository) GetByEmailOrUsername(ctx context.Context, email, username string) (types.User, error) {
	const query = `
		SELECT id, user_email, user_name, user_password
		FROM users
		WHERE user_email = $1 OR user_name = $2
		LIMIT 1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, email, username).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	const query = `
		INSERT INTO users (user_email, user_name, user_password)
		VALUES ($1, $2, $3)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Email,
		user.Username,
		user.PasswordHash,
	).Scan(&user.ID); err != nil {
		return types.User{}, err
	}
	return user, nil
}
