// Package handler is the first layer. The first entry point
// for business logic after the router.
//
// It binds validated payloads into request structs and calls the
// appropriate service. The pipeline wraps every result in an envelope.
package handler

import (
	"github.com/deppfellow/profile-api/internal/server"
	"github.com/deppfellow/profile-api/internal/service"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Auth    *AuthHandler
	User    *UserHandler
	Picture *PictureHandler
	Chat    *ChatHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Auth:    NewAuthHandler(s, services.Auth),
		User:    NewUserHandler(s, services.Users),
		Picture: NewPictureHandler(s, services.Pictures),
		Chat:    NewChatHandler(s),
	}
}
