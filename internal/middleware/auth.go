package middleware

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/profile-api/internal/errs"
	"github.com/deppfellow/profile-api/internal/model"
	"github.com/deppfellow/profile-api/internal/pipeline"
	"github.com/deppfellow/profile-api/internal/server"
)

// AuthContextKey is the echo context key holding *AuthContext.
const AuthContextKey = "auth"

// AuthContext is the identity derived from a verified bearer token.
// It lives only for the request.
type AuthContext struct {
	Subject  uuid.UUID
	Username string
	Role     model.Role
}

// IsAdmin reports whether the caller has the admin role.
func (a *AuthContext) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

type AuthMiddleware struct {
	server *server.Server
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
	}
}

// Verify turns a raw token into an AuthContext, or fails with Unauthorized.
func (auth *AuthMiddleware) Verify(raw string) (*AuthContext, error) {
	if raw == "" {
		return nil, errs.NewUnauthorizedError("Unauthorized", false)
	}

	claims, err := auth.server.Tokens.Verify(raw)
	if err != nil {
		return nil, errs.NewUnauthorizedError("Unauthorized", false)
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errs.NewUnauthorizedError("Unauthorized", false)
	}

	role := model.Role(claims.Role)
	if !role.Valid() {
		return nil, errs.NewUnauthorizedError("Unauthorized", false)
	}

	return &AuthContext{
		Subject:  subject,
		Username: claims.Username,
		Role:     role,
	}, nil
}

// Stage is the pipeline's auth stage. It reads the Authorization header only.
func (auth *AuthMiddleware) Stage() pipeline.Stage {
	return pipeline.Stage{
		Name: pipeline.StageAuth,
		Run: func(c echo.Context, _ *pipeline.Request) error {
			return auth.authenticate(c, bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)))
		},
	}
}

// RequireAuth protects routes outside the pipeline (the websocket chat).
// Browsers cannot set headers on websocket upgrades, so a "token" query
// parameter is accepted as well.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if raw == "" {
			raw = c.QueryParam("token")
		}

		if err := auth.authenticate(c, raw); err != nil {
			return err
		}
		return next(c)
	}
}

func (auth *AuthMiddleware) authenticate(c echo.Context, raw string) error {
	start := time.Now()

	ac, err := auth.Verify(raw)
	if err != nil {
		GetLogger(c).Warn().
			Str("function", "authenticate").
			Dur("duration", time.Since(start)).
			Msg("rejected request without a valid token")
		return err
	}

	SetAuthContext(c, ac)

	GetLogger(c).Debug().
		Str("function", "authenticate").
		Dur("duration", time.Since(start)).
		Msg("user authenticated successfully")

	return nil
}

// SetAuthContext stores ac on the request and tags the request logger.
func SetAuthContext(c echo.Context, ac *AuthContext) {
	c.Set(AuthContextKey, ac)
	c.Set(UserIDKey, ac.Subject.String())
	c.Set(UserRoleKey, string(ac.Role))
	withUser(c, ac)
}

// GetAuthContext returns the caller's identity, if the request was authenticated.
func GetAuthContext(c echo.Context) (*AuthContext, bool) {
	ac, ok := c.Get(AuthContextKey).(*AuthContext)
	return ac, ok && ac != nil
}

// MustAuthContext is GetAuthContext for handlers behind the auth stage.
func MustAuthContext(c echo.Context) (*AuthContext, error) {
	ac, ok := GetAuthContext(c)
	if !ok {
		return nil, errs.NewUnauthorizedError("Unauthorized", false)
	}
	return ac, nil
}

func bearerToken(header string) string {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(raw)
}

