package errs

import "strings"

// FieldError represents a field-level validation error.
// Example:
//
//	{ "field": "username", "reason": "pattern", "error": "username must match pattern ..." }
type FieldError struct {
	// Field is the field path the error relates to (e.g. "username", "query.page").
	Field string `json:"field"`

	// Reason is a stable machine-readable code ("required", "type", "pattern", a validator tag).
	Reason string `json:"reason"`

	// Error is the human-readable, possibly localized, message.
	Error string `json:"error"`

	// Template selects the message template when it differs from Reason
	// (e.g. "min_len" for string lengths). Not serialized.
	Template string `json:"-"`

	// Params feed the message template (field name first). Not serialized.
	Params []string `json:"-"`
}

// Kind classifies a failure. The envelope builder derives the status code from it.
type Kind string

const (
	KindValidationFailed Kind = "VALIDATION_FAILED"
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindForbidden        Kind = "FORBIDDEN"
	KindNotFound         Kind = "NOT_FOUND"
	KindConflict         Kind = "CONFLICT"
	KindRateLimited      Kind = "RATE_LIMITED"
	KindPayloadTooLarge  Kind = "PAYLOAD_TOO_LARGE"
	KindUpstreamFailure  Kind = "UPSTREAM_FAILURE"
	KindInternal         Kind = "INTERNAL"
)

// HTTPError is the main custom error type for API responses.
//
// Fields:
//   - Kind: failure class, drives the status code.
//   - Code: machine-friendly error code (e.g. "USER_ALREADY_EXISTS").
//   - Message: human-friendly message, safe to show to clients.
//   - Status: HTTP status code.
//   - Override: lets the presentation layer replace the message.
//   - Errors: list of per-field errors (validation).
type HTTPError struct {
	Kind     Kind   `json:"-"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	// Errors holds field-level validation errors.
	Errors []FieldError `json:"errors"`

	// Collaborator names the upstream dependency for KindUpstreamFailure.
	Collaborator string `json:"-"`

	cause error
}

// Error returns the client-facing message.
func (e *HTTPError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause so errors.Is/As keep working through it.
func (e *HTTPError) Unwrap() error {
	return e.cause
}

// Cause returns the wrapped error, if any. Used for logging.
func (e *HTTPError) Cause() error {
	return e.cause
}

// Is reports whether target is also an *HTTPError of the same Kind.
// A target with an empty Kind matches any HTTPError.
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}

	return t.Kind == "" || t.Kind == e.Kind
}

// WithMessage returns a copy of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Kind:         e.Kind,
		Code:         e.Code,
		Message:      message,
		Status:       e.Status,
		Override:     e.Override,
		Errors:       e.Errors,
		Collaborator: e.Collaborator,
		cause:        e.cause,
	}
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
