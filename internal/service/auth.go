package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/deppfellow/profile-api/internal/errs"
	"github.com/deppfellow/profile-api/internal/lib/token"
	"github.com/deppfellow/profile-api/internal/lib/utils"
	"github.com/deppfellow/profile-api/internal/model"
	"github.com/deppfellow/profile-api/internal/repository"
	"github.com/deppfellow/profile-api/internal/sqlerr"
)

// collaborator name for failures enqueueing background work
const jobQueue = "job_queue"

var (
	codeUserNotFound      = "USER_NOT_FOUND"
	codeUserAlreadyExists = "USER_ALREADY_EXISTS"
)

type AuthService struct {
	users  UserStore
	tokens *token.Service
	jobs   Enqueuer
	logger *zerolog.Logger
}

func NewAuthService(users UserStore, tokens *token.Service, jobs Enqueuer, logger *zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		jobs:   jobs,
		logger: logger,
	}
}

// LoginResult is the data of a successful login.
type LoginResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// RegisterInput carries an already validated registration.
type RegisterInput struct {
	Username string
	Password string
	Name     *string
}

// Login checks the credentials and issues a token.
// An unknown username is NotFound; a wrong password is Unauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NewNotFoundError("User not found", true, &codeUserNotFound)
		}
		return nil, sqlerr.HandleError(err)
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, errs.NewUnauthorizedError("Invalid username or password", true)
	}

	signed, err := s.tokens.Sign(user.ID.String(), token.Claims{
		Username: user.Username,
		Name:     user.Name,
		Role:     string(user.Role),
	})
	if err != nil {
		return nil, errs.NewInternalError(err)
	}

	return &LoginResult{User: user, Token: signed}, nil
}

// Register creates a USER account and schedules the welcome email.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	_, err := s.users.FindByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return errs.NewConflictError("User already exists", &codeUserAlreadyExists)
	case !errors.Is(err, repository.ErrNotFound):
		return sqlerr.HandleError(err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return errs.NewInternalError(err)
	}

	created, err := s.users.Insert(ctx, &model.User{
		Name:         in.Name,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         model.RoleUser,
	})
	if err != nil {
		if sqlerr.IsUniqueViolation(err) {
			return errs.NewConflictError("User already exists", &codeUserAlreadyExists)
		}
		return sqlerr.HandleError(err)
	}

	name := ""
	if created.Name != nil {
		name = *created.Name
	}

	return errs.BestEffort(s.logger, "welcome_email", func() error {
		if err := s.jobs.EnqueueWelcomeEmail(ctx, created.Username, name); err != nil {
			return errs.NewUpstreamError(jobQueue, err)
		}
		return nil
	}, errs.TolerateUpstream)
}
