package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/deppfellow/profile-api/internal/lib/imagehost"
	"github.com/deppfellow/profile-api/internal/model"
	"github.com/deppfellow/profile-api/internal/repository"
)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*model.User
	inserts int
	// lastOffset is the offset of the most recent List call.
	lastOffset int
	// findDelay widens the window between lookup and insert in race tests.
	findDelay time.Duration
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*model.User{}}
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	if f.findDelay > 0 {
		time.Sleep(f.findDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) List(_ context.Context, limit, offset int) ([]model.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOffset = offset
	all := make([]model.User, 0, len(f.byID))
	for _, u := range f.byID {
		all = append(all, *u)
	}
	if offset >= len(all) {
		return []model.User{}, len(all), nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], len(all), nil
}

func (f *fakeUsers) Insert(_ context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == user.Username {
			return nil, fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
		}
	}
	cp := *user
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.byID[cp.ID] = &cp
	f.inserts++
	out := cp
	return &out, nil
}

func (f *fakeUsers) UpdateName(_ context.Context, id uuid.UUID, name *string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Name = name
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdateImageLink(_ context.Context, id uuid.UUID, link *string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.ImageLink = link
	cp := *u
	return &cp, nil
}

type fakeFiles struct {
	mu        sync.Mutex
	byID      map[string]*model.File
	insertErr error
	findErr   error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{byID: map[string]*model.File{}}
}

func (f *fakeFiles) Insert(_ context.Context, file *model.File) (*model.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	cp := *file
	f.byID[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeFiles) FindByID(_ context.Context, id string) (*model.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if file, ok := f.byID[id]; ok {
		cp := *file
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeFiles) FindByLink(_ context.Context, link string) (*model.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, file := range f.byID {
		if file.Link == link {
			cp := *file
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeFiles) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeImageHost struct {
	next      int
	uploadErr error
	deleteErr error
	deleted   []string
}

func (h *fakeImageHost) Upload(_ context.Context, _ string) (*imagehost.Image, error) {
	if h.uploadErr != nil {
		return nil, h.uploadErr
	}
	h.next++
	id := fmt.Sprintf("img%d", h.next)
	return &imagehost.Image{
		ID:           id,
		Link:         "https://i.imgur.com/" + id + ".png",
		DeleteHandle: "del-" + id,
	}, nil
}

func (h *fakeImageHost) Delete(_ context.Context, handle string) error {
	if h.deleteErr != nil {
		return h.deleteErr
	}
	h.deleted = append(h.deleted, handle)
	return nil
}

type fakeJobs struct {
	mu       sync.Mutex
	welcomed []string
	deletes  []string
	err      error
}

func (j *fakeJobs) EnqueueWelcomeEmail(_ context.Context, to, _ string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.welcomed = append(j.welcomed, to)
	return nil
}

func (j *fakeJobs) EnqueueImageDelete(_ context.Context, _ string, handle string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.deletes = append(j.deletes, handle)
	return nil
}

var errRedisDown = errors.New("dial tcp: connection refused")
