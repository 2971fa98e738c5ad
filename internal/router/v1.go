package router

import (
	"net/http"

	"github.com/deppfellow/profile-api/internal/handler"
	"github.com/deppfellow/profile-api/internal/pipeline"
)

// V1Routes is the API route table. Routes are immutable once built.
func V1Routes(h *handler.Handlers) []*pipeline.Route {
	return []*pipeline.Route{
		{
			Name:           "auth.login",
			Method:         http.MethodPost,
			Path:           "/login",
			Public:         true,
			Schema:         handler.LoginSchema,
			SuccessMessage: "Login successful",
			Endpoint:       handler.Handle(h.Auth.Login),
		},
		{
			Name:           "auth.register",
			Method:         http.MethodPost,
			Path:           "/register",
			Public:         true,
			Schema:         handler.RegisterSchema,
			SuccessMessage: "Registration successful",
			SuccessStatus:  http.StatusCreated,
			Endpoint:       handler.HandleNoContent(h.Auth.Register),
		},
		{
			Name:           "users.list",
			Method:         http.MethodGet,
			Path:           "/users",
			Schema:         handler.ListUsersSchema,
			SuccessMessage: "Users retrieved",
			Endpoint:       handler.Handle(h.User.List),
		},
		{
			Name:           "users.me",
			Method:         http.MethodGet,
			Path:           "/users/me",
			SuccessMessage: "User retrieved",
			Endpoint:       handler.Handle(h.User.Me),
		},
		{
			Name:           "users.update_me",
			Method:         http.MethodPatch,
			Path:           "/users/me",
			Schema:         handler.UpdateMeSchema,
			SuccessMessage: "User updated",
			Endpoint:       handler.Handle(h.User.UpdateMe),
		},
		{
			Name:           "users.get",
			Method:         http.MethodGet,
			Path:           "/users/:username",
			Schema:         handler.GetUserSchema,
			SuccessMessage: "User retrieved",
			Endpoint:       handler.Handle(h.User.GetByUsername),
		},
		{
			Name:           "users.picture",
			Method:         http.MethodPost,
			Path:           "/users/me/picture",
			Schema:         handler.UploadPictureSchema,
			SuccessMessage: "Picture uploaded",
			Endpoint:       handler.Handle(h.Picture.Upload),
		},
		{
			Name:           "images.delete",
			Method:         http.MethodDelete,
			Path:           "/images/:id",
			Schema:         handler.DeleteImageSchema,
			SuccessMessage: "Image deleted",
			Endpoint:       handler.HandleNoContent(h.Picture.Delete),
		},
	}
}
