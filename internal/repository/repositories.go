package repository

import (
	"github.com/deppfellow/profile-api/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Users *UserRepository
	Files *FileRepository
}

// NewRepositories builds every repository over the shared pool.
func NewRepositories(s *server.Server) *Repositories {
	return NewRepositoriesWithQuerier(s.DB.Pool)
}

// NewRepositoriesWithQuerier builds repositories over any Querier
// (a pool, a single connection or a transaction).
func NewRepositoriesWithQuerier(db Querier) *Repositories {
	return &Repositories{
		Users: NewUserRepository(db),
		Files: NewFileRepository(db),
	}
}
