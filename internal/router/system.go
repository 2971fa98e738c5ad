package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deppfellow/profile-api/internal/handler"
	"github.com/deppfellow/profile-api/internal/middleware"
)

// registerSystemRoutes mounts the routes that bypass the pipeline: health,
// docs, static assets, metrics and the websocket chat.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	system := r.Group("", m.Global.CORS())

	system.GET("/status", h.Health.CheckHealth)
	system.Static("/static", "static")
	system.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
	system.GET("/docs/openapi.json", h.OpenAPI.ServeOpenAPISpec)
	system.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	system.GET("/chat", h.Chat.Serve, m.Auth.RequireAuth)
}
