package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/profile-api/internal/errs"
	"github.com/deppfellow/profile-api/internal/middleware"
	"github.com/deppfellow/profile-api/internal/model"
	"github.com/deppfellow/profile-api/internal/server"
	"github.com/deppfellow/profile-api/internal/service"
	"github.com/deppfellow/profile-api/internal/validation"
)

type ListUsersRequest struct {
	Page  int `json:"page" validate:"min=1"`
	Limit int `json:"limit" validate:"min=1,max=100"`
}

func (r *ListUsersRequest) Validate() error {
	return validation.Struct(r)
}

type GetUserRequest struct {
	Username string `json:"username"`
}

type UpdateMeRequest struct {
	Name *string `json:"name"`
}

// NoRequest is the request type of routes without input.
type NoRequest struct{}

type UserHandler struct {
	Handler
	users *service.UserService
}

func NewUserHandler(s *server.Server, users *service.UserService) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(s),
		users:   users,
	}
}

// List is admin only.
func (h *UserHandler) List(c echo.Context, req *ListUsersRequest) (*model.Page[model.User], error) {
	ac, err := middleware.MustAuthContext(c)
	if err != nil {
		return nil, err
	}
	if !ac.IsAdmin() {
		return nil, errs.NewForbiddenError("Administrator role required", true)
	}

	return h.users.List(c.Request().Context(), req.Page, req.Limit)
}

func (h *UserHandler) Me(c echo.Context, _ *NoRequest) (*model.User, error) {
	ac, err := middleware.MustAuthContext(c)
	if err != nil {
		return nil, err
	}
	return h.users.GetByID(c.Request().Context(), ac.Subject)
}

func (h *UserHandler) UpdateMe(c echo.Context, req *UpdateMeRequest) (*model.User, error) {
	ac, err := middleware.MustAuthContext(c)
	if err != nil {
		return nil, err
	}
	return h.users.UpdateName(c.Request().Context(), ac.Subject, req.Name)
}

func (h *UserHandler) GetByUsername(c echo.Context, req *GetUserRequest) (*model.User, error) {
	return h.users.GetByUsername(c.Request().Context(), req.Username)
}
