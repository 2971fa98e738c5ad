package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/deppfellow/profile-api/internal/model"
)

const userColumns = `id, name, username, password_hash, role, image_link, created_at, updated_at`

const (
	getUserByUsernameQuery = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	getUserByIDQuery       = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	listUsersQuery         = `SELECT ` + userColumns + ` FROM users ORDER BY created_at, username LIMIT $1 OFFSET $2`
	countUsersQuery        = `SELECT COUNT(*) FROM users`
	insertUserQuery        = `
		INSERT INTO users (name, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns
	updateUserNameQuery = `
		UPDATE users SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	updateUserImageLinkQuery = `
		UPDATE users SET image_link = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
)

// UserRepository persists users. Usernames are unique (users_username_key).
type UserRepository struct {
	db Querier
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername returns ErrNotFound when no user has that username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, getUserByUsernameQuery, username)
}

// FindByID returns ErrNotFound when the id is unknown.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getOne(ctx, getUserByIDQuery, id)
}

// List returns one page of users and the total count.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	users := []model.User{}
	if err := pgxscan.Select(ctx, r.db, &users, listUsersQuery, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	var total int
	if err := pgxscan.Get(ctx, r.db, &total, countUsersQuery); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}

// Insert stores a new user. A duplicate username surfaces as the driver's
// unique violation so callers can decide whether that is a conflict.
func (r *UserRepository) Insert(ctx context.Context, user *model.User) (*model.User, error) {
	var created model.User
	err := pgxscan.Get(ctx, r.db, &created, insertUserQuery,
		user.Name, user.Username, user.PasswordHash, user.Role)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &created, nil
}

// UpdateName sets or clears the display name.
func (r *UserRepository) UpdateName(ctx context.Context, id uuid.UUID, name *string) (*model.User, error) {
	return r.getOne(ctx, updateUserNameQuery, id, name)
}

// UpdateImageLink points the user's picture at link, or clears it when nil.
func (r *UserRepository) UpdateImageLink(ctx context.Context, id uuid.UUID, link *string) (*model.User, error) {
	return r.getOne(ctx, updateUserImageLinkQuery, id, link)
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (*model.User, error) {
	var user model.User
	if err := pgxscan.Get(ctx, r.db, &user, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("table:users: %w", err)
	}
	return &user, nil
}
