package router

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/profile-api/internal/config"
	"github.com/deppfellow/profile-api/internal/handler"
	"github.com/deppfellow/profile-api/internal/lib/imagehost"
	"github.com/deppfellow/profile-api/internal/lib/token"
	"github.com/deppfellow/profile-api/internal/model"
	"github.com/deppfellow/profile-api/internal/repository"
	"github.com/deppfellow/profile-api/internal/server"
	"github.com/deppfellow/profile-api/internal/service"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func (m *memoryUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[username]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUsers) List(_ context.Context, limit, offset int) ([]model.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	total := len(out)
	if offset >= total {
		return []model.User{}, total, nil
	}
	return out[offset:min(total, offset+limit)], total, nil
}

func (m *memoryUsers) Insert(_ context.Context, user *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.users[cp.Username] = &cp
	out := cp
	return &out, nil
}

func (m *memoryUsers) update(id uuid.UUID, fn func(u *model.User)) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			fn(u)
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUsers) UpdateName(_ context.Context, id uuid.UUID, name *string) (*model.User, error) {
	return m.update(id, func(u *model.User) { u.Name = name })
}

func (m *memoryUsers) UpdateImageLink(_ context.Context, id uuid.UUID, link *string) (*model.User, error) {
	return m.update(id, func(u *model.User) { u.ImageLink = link })
}

type noFiles struct{}

func (noFiles) Insert(_ context.Context, f *model.File) (*model.File, error) { return f, nil }
func (noFiles) FindByID(context.Context, string) (*model.File, error) {
	return nil, repository.ErrNotFound
}
func (noFiles) FindByLink(context.Context, string) (*model.File, error) {
	return nil, repository.ErrNotFound
}
func (noFiles) Delete(context.Context, string) error { return repository.ErrNotFound }

type noImages struct{}

func (noImages) Upload(context.Context, string) (*imagehost.Image, error) {
	return &imagehost.Image{ID: "img1", Link: "https://i.imgur.com/img1.png", DeleteHandle: "del1"}, nil
}
func (noImages) Delete(context.Context, string) error { return nil }

type recordingJobs struct {
	mu      sync.Mutex
	welcome []string
}

func (r *recordingJobs) EnqueueWelcomeEmail(_ context.Context, to, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.welcome = append(r.welcome, to)
	return nil
}

func (r *recordingJobs) EnqueueImageDelete(context.Context, string, string) error { return nil }

type envelopeBody struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Errors  []struct {
		Field  string `json:"field"`
		Reason string `json:"reason"`
	} `json:"errors"`
}

type testApp struct {
	router *httptestRouter
	users  *memoryUsers
	jobs   *recordingJobs
}

type httptestRouter struct {
	t *testing.T
	h http.Handler
}

func (r *httptestRouter) do(method, path string, payload any, bearer string) (*httptest.ResponseRecorder, envelopeBody) {
	r.t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(r.t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	r.h.ServeHTTP(rec, req)

	var env envelopeBody
	require.NoError(r.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if !env.Success {
		assert.Equal(r.t, "null", string(env.Data))
	}
	return rec, env
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server: config.ServerConfig{
				CORSAllowedOrigins: []string{"http://localhost:3000"},
				BasePath:           "/api",
				BodyLimit:          "1M",
			},
		},
		Logger: &logger,
		Tokens: token.NewService("router-secret", time.Hour),
	}

	users := &memoryUsers{users: map[string]*model.User{}}
	jobs := &recordingJobs{}
	services := &service.Services{
		Auth:     service.NewAuthService(users, s.Tokens, jobs, &logger),
		Users:    service.NewUserService(users),
		Pictures: service.NewPictureService(users, noFiles{}, noImages{}, jobs, &logger),
	}

	e, err := NewRouter(s, handler.NewHandlers(s, services))
	require.NoError(t, err)

	return &testApp{router: &httptestRouter{t: t, h: e}, users: users, jobs: jobs}
}

func TestRegisterRejectsMalformedUsername(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.router.do(http.MethodPost, "/api/register",
		map[string]any{"username": "not-an-email", "password": "a123b"}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "username", env.Errors[0].Field)
	assert.Equal(t, "pattern", env.Errors[0].Reason)
	assert.Empty(t, app.jobs.welcome)
}

func TestLoginUnknownUser(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.router.do(http.MethodPost, "/api/login",
		map[string]any{"username": "x@x.io", "password": "a123b"}, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "User not found", env.Message)
	assert.Equal(t, "USER_NOT_FOUND", env.Code)
}

func TestRegisterLoginAndProfile(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.router.do(http.MethodPost, "/api/register",
		map[string]any{"username": "x@x.io", "password": "a123b", "name": "Xavier"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, env.Message)
	assert.True(t, env.Success)
	assert.Equal(t, "null", string(env.Data))
	assert.Equal(t, []string{"x@x.io"}, app.jobs.welcome)

	rec, env = app.router.do(http.MethodPost, "/api/register",
		map[string]any{"username": "x@x.io", "password": "a123b"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = app.router.do(http.MethodPost, "/api/login",
		map[string]any{"username": "x@x.io", "password": "b999c"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = app.router.do(http.MethodPost, "/api/login",
		map[string]any{"username": "x@x.io", "password": "a123b"}, "")
	require.Equal(t, http.StatusOK, rec.Code, env.Message)

	var login struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "x@x.io", login.User.Username)
	assert.NotContains(t, string(env.Data), "password")

	rec, env = app.router.do(http.MethodGet, "/api/users/me", nil, login.Token)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	assert.Contains(t, string(env.Data), `"name":"Xavier"`)

	rec, env = app.router.do(http.MethodPatch, "/api/users/me", map[string]any{"name": nil}, login.Token)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	assert.Contains(t, string(env.Data), `"name":null`)

	// regular users cannot list everyone
	rec, _ = app.router.do(http.MethodGet, "/api/users", nil, login.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.router.do(http.MethodGet, "/api/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.router.do(http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", env.Message)
}
