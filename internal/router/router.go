// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/profile-api/internal/handler"
	"github.com/deppfellow/profile-api/internal/middleware"
	"github.com/deppfellow/profile-api/internal/pipeline"
	"github.com/deppfellow/profile-api/internal/server"
)

// NewRouter builds the echo instance with global middleware, system routes
// and the enveloped API under server.base_path.
func NewRouter(s *server.Server, h *handler.Handlers) (*echo.Echo, error) {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// order matters: the request id feeds tracing and the request logger,
	// the context enhancer must run before anything that logs
	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.BodyLimit(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h, middlewares)

	dispatcher, err := pipeline.New(pipeline.Options{},
		pipeline.CORS(middlewares.Global.CORSConfig()),
		middlewares.Auth.Stage(),
		pipeline.ValidateRequest(),
		pipeline.HandleRequest(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build request pipeline: %w", err)
	}

	api := router.Group(s.Config.Server.BasePath)
	dispatcher.Register(api, V1Routes(h)...)

	return router, nil
}
