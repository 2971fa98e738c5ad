package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/profile-api/internal/server"
)

// OpenAPIHandler serves the API reference page and the document it renders.
type OpenAPIHandler struct {
	Handler
	uiPath   string
	specPath string
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler:  NewHandler(s),
		uiPath:   "static/openapi.html",
		specPath: "static/openapi.json",
	}
}

func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	templateBytes, err := os.ReadFile(h.uiPath)

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTML(http.StatusOK, string(templateBytes)); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}

// ServeOpenAPISpec returns the OpenAPI document with its server URL pointed
// at the configured base path.
func (h *OpenAPIHandler) ServeOpenAPISpec(c echo.Context) error {
	raw, err := os.ReadFile(h.specPath)
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI document: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}

	basePath := h.server.Config.Server.BasePath
	if basePath == "" {
		basePath = "/"
	}
	doc["servers"] = []map[string]string{{"url": basePath}}

	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.JSON(http.StatusOK, doc)
}
