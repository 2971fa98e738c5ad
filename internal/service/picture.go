package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/profile-api/internal/errs"
	"github.com/deppfellow/profile-api/internal/model"
	"github.com/deppfellow/profile-api/internal/repository"
	"github.com/deppfellow/profile-api/internal/sqlerr"
)

var codeImageNotFound = "IMAGE_NOT_FOUND"

type PictureService struct {
	users  UserStore
	files  FileStore
	images ImageHost
	jobs   Enqueuer
	logger *zerolog.Logger
}

func NewPictureService(users UserStore, files FileStore, images ImageHost, jobs Enqueuer, logger *zerolog.Logger) *PictureService {
	return &PictureService{
		users:  users,
		files:  files,
		images: images,
		jobs:   jobs,
		logger: logger,
	}
}

// Upload replaces the user's profile picture and returns the new link.
//
// The image is created remotely first, then recorded, then linked to the
// user. Removing the previous image is best-effort.
func (s *PictureService) Upload(ctx context.Context, userID uuid.UUID, base64Image string) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if _, err = userOrNotFound(user, err); err != nil {
		return "", err
	}

	img, err := s.images.Upload(ctx, base64Image)
	if err != nil {
		return "", err
	}

	if _, err := s.files.Insert(ctx, &model.File{
		ID:           img.ID,
		Link:         img.Link,
		DeleteHandle: img.DeleteHandle,
		OwnerID:      &userID,
	}); err != nil {
		s.logger.Error().
			Err(err).
			Str("file_id", img.ID).
			Str("orphaned_delete_handle", img.DeleteHandle).
			Msg("failed to record uploaded image")
		return "", sqlerr.HandleError(err)
	}

	if _, err := s.users.UpdateImageLink(ctx, userID, &img.Link); err != nil {
		return "", sqlerr.HandleError(err)
	}

	if user.ImageLink != nil && *user.ImageLink != img.Link {
		oldLink := *user.ImageLink
		err := errs.BestEffort(s.logger, "old_image_cleanup", func() error {
			return s.removeByLink(ctx, oldLink)
		}, errs.TolerateUpstream)
		// the new link is already committed, so a cleanup failure must not
		// turn the replacement into an error for the client
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("old_link", oldLink).
				Str("new_link", img.Link).
				Msg("old image cleanup failed after the link was updated")
		}
	}

	return img.Link, nil
}

func (s *PictureService) removeByLink(ctx context.Context, link string) error {
	old, err := s.files.FindByLink(ctx, link)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.NewNotFoundError("Image not found", false, &codeImageNotFound)
		}
		return err
	}

	if err := s.jobs.EnqueueImageDelete(ctx, old.ID, old.DeleteHandle); err != nil {
		return errs.NewUpstreamError(jobQueue, err)
	}

	if err := s.files.Delete(ctx, old.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.NewNotFoundError("Image not found", false, &codeImageNotFound)
		}
		return err
	}
	return nil
}

// Delete removes an image. Only its owner or an admin may do so.
func (s *PictureService) Delete(ctx context.Context, actorID uuid.UUID, actorRole model.Role, fileID string) error {
	file, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.NewNotFoundError("Image not found", true, &codeImageNotFound)
		}
		return sqlerr.HandleError(err)
	}

	if !file.IsOwnedBy(actorID) && actorRole != model.RoleAdmin {
		return errs.NewForbiddenError("Only the owner or an administrator can delete this image", true)
	}

	if err := s.images.Delete(ctx, file.DeleteHandle); err != nil {
		return err
	}

	if err := s.files.Delete(ctx, file.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return sqlerr.HandleError(err)
	}

	if file.OwnerID == nil {
		return nil
	}

	owner, err := s.users.FindByID(ctx, *file.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return sqlerr.HandleError(err)
	}
	if owner.ImageLink != nil && *owner.ImageLink == file.Link {
		if _, err := s.users.UpdateImageLink(ctx, owner.ID, nil); err != nil {
			return sqlerr.HandleError(err)
		}
	}
	return nil
}
