package handler

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/profile-api/internal/errs"
	"github.com/deppfellow/profile-api/internal/middleware"
	"github.com/deppfellow/profile-api/internal/pipeline"
	"github.com/deppfellow/profile-api/internal/server"
	"github.com/deppfellow/profile-api/internal/validation"
)

// Handler holds shared application dependencies for concrete handlers.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint body. req has already passed the route
// schema and the request struct's own Validate.
type HandlerFunc[Req any, Res any] func(c echo.Context, req *Req) (Res, error)

// HandlerFuncNoContent is a typed endpoint body whose envelope carries null data.
type HandlerFuncNoContent[Req any] func(c echo.Context, req *Req) error

type endpoint[Req any, Res any] struct {
	fn        HandlerFunc[Req, Res]
	operation string
}

// Bind decodes the validated payload into a fresh *Req.
func (e endpoint[Req, Res]) Bind(payload map[string]any) (any, error) {
	req := new(Req)
	if err := validation.Bind(payload, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Serve runs the typed handler with handler-level logging and tracing.
// Envelope writing and error reporting belong to the pipeline.
func (e endpoint[Req, Res]) Serve(c echo.Context, request any) (any, error) {
	req, ok := request.(*Req)
	if !ok {
		return nil, errs.NewInternalError(fmt.Errorf("unexpected request type %T", request))
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", e.operation).
		Logger()

	start := time.Now()
	result, err := e.fn(c, req)
	duration := time.Since(start)

	if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		txn.AddAttribute("handler.status", status)
		txn.AddAttribute("handler.duration_ms", duration.Milliseconds())
	}

	if err != nil {
		logger.Debug().Err(err).Dur("handler_duration", duration).Msg("handler returned an error")
		return nil, err
	}

	logger.Debug().Dur("handler_duration", duration).Msg("handler completed")
	return result, nil
}

// Handle adapts a typed handler into a pipeline endpoint.
func Handle[Req any, Res any](fn HandlerFunc[Req, Res]) pipeline.Endpoint {
	return endpoint[Req, Res]{fn: fn, operation: "handler"}
}

// HandleNoContent adapts a handler that has no data to return.
func HandleNoContent[Req any](fn HandlerFuncNoContent[Req]) pipeline.Endpoint {
	return endpoint[Req, any]{
		fn: func(c echo.Context, req *Req) (any, error) {
			return nil, fn(c, req)
		},
		operation: "handler_no_content",
	}
}
