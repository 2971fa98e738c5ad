package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/deppfellow/profile-api/internal/lib/imagehost"
	"github.com/deppfellow/profile-api/internal/model"
)

// UserStore is the persistence the services need for users.
// *repository.UserRepository satisfies it.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, int, error)
	Insert(ctx context.Context, user *model.User) (*model.User, error)
	UpdateName(ctx context.Context, id uuid.UUID, name *string) (*model.User, error)
	UpdateImageLink(ctx context.Context, id uuid.UUID, link *string) (*model.User, error)
}

// FileStore is the persistence the services need for uploaded images.
type FileStore interface {
	Insert(ctx context.Context, file *model.File) (*model.File, error)
	FindByID(ctx context.Context, id string) (*model.File, error)
	FindByLink(ctx context.Context, link string) (*model.File, error)
	Delete(ctx context.Context, id string) error
}

// ImageHost stores pictures remotely.
type ImageHost interface {
	Upload(ctx context.Context, base64Image string) (*imagehost.Image, error)
	Delete(ctx context.Context, deleteHandle string) error
}

// Enqueuer schedules background work.
type Enqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, to, name string) error
	EnqueueImageDelete(ctx context.Context, fileID, deleteHandle string) error
}
