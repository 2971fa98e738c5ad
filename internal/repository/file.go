package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/deppfellow/profile-api/internal/model"
)

const fileColumns = `id, link, delete_handle, owner_id, created_at`

const (
	insertFileQuery = `
		INSERT INTO files (id, link, delete_handle, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + fileColumns
	getFileByIDQuery   = `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	getFileByLinkQuery = `SELECT ` + fileColumns + ` FROM files WHERE link = $1 ORDER BY created_at DESC LIMIT 1`
	deleteFileQuery    = `DELETE FROM files WHERE id = $1`
)

// FileRepository persists records of images stored at the image host.
type FileRepository struct {
	db Querier
}

// NewFileRepository creates a FileRepository.
func NewFileRepository(db Querier) *FileRepository {
	return &FileRepository{db: db}
}

// Insert stores a file record. The id comes from the image host and is unique.
func (r *FileRepository) Insert(ctx context.Context, file *model.File) (*model.File, error) {
	var created model.File
	err := pgxscan.Get(ctx, r.db, &created, insertFileQuery,
		file.ID, file.Link, file.DeleteHandle, file.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("insert file: %w", err)
	}
	return &created, nil
}

// FindByID returns ErrNotFound when the id is unknown.
func (r *FileRepository) FindByID(ctx context.Context, id string) (*model.File, error) {
	return r.getOne(ctx, getFileByIDQuery, id)
}

// FindByLink returns the most recent file with that public link.
func (r *FileRepository) FindByLink(ctx context.Context, link string) (*model.File, error) {
	return r.getOne(ctx, getFileByLinkQuery, link)
}

// Delete removes a file record. ErrNotFound when nothing was deleted.
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, deleteFileQuery, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FileRepository) getOne(ctx context.Context, query string, args ...any) (*model.File, error) {
	var file model.File
	if err := pgxscan.Get(ctx, r.db, &file, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("table:files: %w", err)
	}
	return &file, nil
}
