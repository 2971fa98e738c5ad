package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/profile-api/internal/server"
	"github.com/deppfellow/profile-api/internal/service"
	"github.com/deppfellow/profile-api/internal/validation"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	return validation.Struct(r)
}

type RegisterRequest struct {
	Username string  `json:"username" validate:"required"`
	Password string  `json:"password" validate:"required"`
	Name     *string `json:"name"`
}

func (r *RegisterRequest) Validate() error {
	return validation.Struct(r)
}

type AuthHandler struct {
	Handler
	auth *service.AuthService
}

func NewAuthHandler(s *server.Server, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{
		Handler: NewHandler(s),
		auth:    auth,
	}
}

func (h *AuthHandler) Login(c echo.Context, req *LoginRequest) (*service.LoginResult, error) {
	return h.auth.Login(c.Request().Context(), req.Username, req.Password)
}

func (h *AuthHandler) Register(c echo.Context, req *RegisterRequest) error {
	return h.auth.Register(c.Request().Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
	})
}
