package errs

import (
	"errors"
	"net/http"
)

// StatusFor returns the HTTP status a failure of the given kind maps to.
func StatusFor(kind Kind) int {
	switch kind {
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(status int, code *string) string {
	if code != nil {
		return *code
	}
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// NewUnauthorizedError creates a 401 Unauthorized HTTPError.
//
// Parameters:
//   - message: text to send to client
//   - override: whether the presentation layer may replace the message
func NewUnauthorizedError(message string, override bool) *HTTPError {
	return &HTTPError{
		Kind:     KindUnauthorized,
		Code:     codeFor(http.StatusUnauthorized, nil),
		Message:  message,
		Status:   http.StatusUnauthorized,
		Override: override,
	}
}

// NewPayloadTooLargeError creates a 413 for bodies over the configured limit.
func NewPayloadTooLargeError() *HTTPError {
	return &HTTPError{
		Kind:    KindPayloadTooLarge,
		Code:    codeFor(http.StatusRequestEntityTooLarge, nil),
		Message: "Request body too large",
		Status:  http.StatusRequestEntityTooLarge,
	}
}

// NewForbiddenError creates a 403 Forbidden HTTPError.
func NewForbiddenError(message string, override bool) *HTTPError {
	return &HTTPError{
		Kind:     KindForbidden,
		Code:     codeFor(http.StatusForbidden, nil),
		Message:  message,
		Status:   http.StatusForbidden,
		Override: override,
	}
}

// NewBadRequestError creates a 400 Bad Request HTTPError of kind ValidationFailed.
//
//   - code: optional custom code string (if nil, defaults to "BAD_REQUEST")
//   - errors: optional slice of field errors
func NewBadRequestError(message string, override bool, code *string, errors []FieldError) *HTTPError {
	return &HTTPError{
		Kind:     KindValidationFailed,
		Code:     codeFor(http.StatusBadRequest, code),
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
	}
}

// NewValidationFailedError creates a 400 carrying every field error.
// The message is the first field error's message.
func NewValidationFailedError(fieldErrors []FieldError) *HTTPError {
	message := "Validation failed"
	if len(fieldErrors) > 0 {
		message = fieldErrors[0].Error
	}

	code := string(KindValidationFailed)
	return NewBadRequestError(message, true, &code, fieldErrors)
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	return &HTTPError{
		Kind:     KindNotFound,
		Code:     codeFor(http.StatusNotFound, code),
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewConflictError creates a 409 Conflict HTTPError (e.g. duplicate username).
func NewConflictError(message string, code *string) *HTTPError {
	return &HTTPError{
		Kind:     KindConflict,
		Code:     codeFor(http.StatusConflict, code),
		Message:  message,
		Status:   http.StatusConflict,
		Override: true,
	}
}

// NewRateLimitedError creates a 429 Too Many Requests HTTPError.
func NewRateLimitedError() *HTTPError {
	return &HTTPError{
		Kind:    KindRateLimited,
		Code:    codeFor(http.StatusTooManyRequests, nil),
		Message: http.StatusText(http.StatusTooManyRequests),
		Status:  http.StatusTooManyRequests,
	}
}

// NewUpstreamError creates a 502 for a failing collaborator (image host, store, mailer).
//
// The client only sees a generic message; cause is kept for logs.
func NewUpstreamError(collaborator string, cause error) *HTTPError {
	return &HTTPError{
		Kind:         KindUpstreamFailure,
		Code:         codeFor(http.StatusBadGateway, nil),
		Message:      "Upstream service unavailable",
		Status:       http.StatusBadGateway,
		Collaborator: collaborator,
		cause:        cause,
	}
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// The message is the generic status text, never the real internal error.
func NewInternalServerError() *HTTPError {
	return NewInternalError(nil)
}

// NewInternalError is NewInternalServerError with a cause attached for logging.
func NewInternalError(cause error) *HTTPError {
	return &HTTPError{
		Kind:    KindInternal,
		Code:    codeFor(http.StatusInternalServerError, nil),
		Message: http.StatusText(http.StatusInternalServerError),
		Status:  http.StatusInternalServerError,
		cause:   cause,
	}
}

// From converts any error into an *HTTPError. Unknown errors become Internal.
func From(err error) *HTTPError {
	if err == nil {
		return nil
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	return NewInternalError(err)
}

// KindOf reports the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an *HTTPError of the given kind.
func IsKind(err error, kind Kind) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Kind == kind
}
