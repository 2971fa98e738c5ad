// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"github.com/deppfellow/profile-api/internal/lib/job"
	"github.com/deppfellow/profile-api/internal/repository"
	"github.com/deppfellow/profile-api/internal/server"
)

type Services struct {
	Auth     *AuthService
	Users    *UserService
	Pictures *PictureService
	Job      *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Auth:     NewAuthService(repos.Users, s.Tokens, s.Job, s.Logger),
		Users:    NewUserService(repos.Users),
		Pictures: NewPictureService(repos.Users, repos.Files, s.ImageHost, s.Job, s.Logger),
		Job:      s.Job,
	}, nil
}
