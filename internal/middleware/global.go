package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/deppfellow/profile-api/internal/envelope"
	"github.com/deppfellow/profile-api/internal/errs"
	"github.com/deppfellow/profile-api/internal/server"
	"github.com/deppfellow/profile-api/internal/sqlerr"
)

type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORSConfig is shared by the global CORS middleware and the pipeline's CORS stage.
func (global *GlobalMiddlewares) CORSConfig() middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost,
			http.MethodPut, http.MethodPatch, http.MethodDelete,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, "Accept-Language", RequestIDHeader,
		},
		ExposeHeaders: []string{RequestIDHeader},
	}
}

// CORS covers the routes that bypass the pipeline (docs, status, metrics).
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(global.CORSConfig())
}

// RequestLogger emits one "API" line per request, at a level chosen by status.
//
// When a handler returns an error the final status is decided later by
// GlobalErrorHandler, so it is derived from the error here.
// See https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status

			if v.Error != nil {
				var httpErr *errs.HTTPError
				var echoErr *echo.HTTPError

				if errors.As(v.Error, &httpErr) {
					statusCode = httpErr.Status
				} else if errors.As(v.Error, &echoErr) {
					statusCode = echoErr.Code
				}
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if userID := GetUserID(c); userID != "" {
				e = e.Str("user_id", userID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// BodyLimit rejects request bodies above server.body_limit (e.g. "4M").
func (global *GlobalMiddlewares) BodyLimit() echo.MiddlewareFunc {
	return middleware.BodyLimit(global.server.Config.Server.BodyLimit)
}

// GlobalErrorHandler answers every error that escapes a handler with the
// same envelope the pipeline uses: unknown routes, wrong methods, oversized
// bodies, rate limiting and anything returned by raw routes.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	originalErr := err

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			err = fromEchoError(echoErr)
		} else {
			err = sqlerr.HandleError(err)
		}
	}

	env, status := envelope.Build(envelope.Fail(err), "", 0)

	logger := GetLogger(c)
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error().Stack()
	}
	event.
		Err(originalErr).
		Int("status", status).
		Str("error_code", env.Code).
		Msg(env.Message)

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, env)
	}
}

func fromEchoError(echoErr *echo.HTTPError) *errs.HTTPError {
	switch echoErr.Code {
	case http.StatusNotFound:
		return errs.NewNotFoundError("Route not found", false, nil)
	case http.StatusUnauthorized:
		return errs.NewUnauthorizedError("Unauthorized", false)
	case http.StatusForbidden:
		return errs.NewForbiddenError("Forbidden", false)
	case http.StatusTooManyRequests:
		return errs.NewRateLimitedError()
	case http.StatusRequestEntityTooLarge:
		return errs.NewPayloadTooLargeError()
	case http.StatusBadRequest:
		field := errs.FieldError{Field: "body", Reason: "malformed", Error: "body is malformed"}
		if msg, ok := echoErr.Message.(string); ok {
			field.Error = msg
		}
		return errs.NewValidationFailedError([]errs.FieldError{field})
	}

	message := http.StatusText(echoErr.Code)
	if msg, ok := echoErr.Message.(string); ok && msg != "" {
		message = msg
	}

	code := errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code))
	return &errs.HTTPError{
		Kind:    errs.KindInternal,
		Code:    code,
		Message: message,
		Status:  echoErr.Code,
	}
}
