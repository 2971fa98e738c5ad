package service

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/deppfellow/profile-api/internal/errs"
	"github.com/deppfellow/profile-api/internal/model"
	"github.com/deppfellow/profile-api/internal/repository"
	"github.com/deppfellow/profile-api/internal/sqlerr"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// List returns one page of users. page starts at 1. Pages past the end are
// empty, however large the page number.
func (s *UserService) List(ctx context.Context, page, limit int) (*model.Page[model.User], error) {
	page = max(page, 1)
	limit = max(limit, 1)

	users, total, err := s.users.List(ctx, limit, pageOffset(page, limit))
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	return &model.Page[model.User]{
		Items: users,
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	return userOrNotFound(user, err)
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	return userOrNotFound(user, err)
}

// UpdateName sets the display name; nil clears it.
func (s *UserService) UpdateName(ctx context.Context, id uuid.UUID, name *string) (*model.User, error) {
	user, err := s.users.UpdateName(ctx, id, name)
	return userOrNotFound(user, err)
}

func userOrNotFound(user *model.User, err error) (*model.User, error) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NewNotFoundError("User not found", true, &codeUserNotFound)
		}
		return nil, sqlerr.HandleError(err)
	}
	return user, nil
}

// pageOffset is (page-1)*limit, saturated at math.MaxInt instead of wrapping.
func pageOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}
