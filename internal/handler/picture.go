package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/profile-api/internal/middleware"
	"github.com/deppfellow/profile-api/internal/server"
	"github.com/deppfellow/profile-api/internal/service"
)

// UploadPictureRequest carries the picture as base64. Multipart uploads are
// converted to the same shape before validation.
type UploadPictureRequest struct {
	Image string `json:"image"`
}

type DeleteImageRequest struct {
	ID string `json:"id"`
}

type PictureHandler struct {
	Handler
	pictures *service.PictureService
}

func NewPictureHandler(s *server.Server, pictures *service.PictureService) *PictureHandler {
	return &PictureHandler{
		Handler:  NewHandler(s),
		pictures: pictures,
	}
}

// Upload returns the new public link.
func (h *PictureHandler) Upload(c echo.Context, req *UploadPictureRequest) (string, error) {
	ac, err := middleware.MustAuthContext(c)
	if err != nil {
		return "", err
	}
	return h.pictures.Upload(c.Request().Context(), ac.Subject, req.Image)
}

func (h *PictureHandler) Delete(c echo.Context, req *DeleteImageRequest) error {
	ac, err := middleware.MustAuthContext(c)
	if err != nil {
		return err
	}
	return h.pictures.Delete(c.Request().Context(), ac.Subject, ac.Role, req.ID)
}
