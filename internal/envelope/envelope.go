// Package envelope builds the uniform response body every endpoint returns.
//
//	{ "success": true,  "message": "Login successful", "data": {...} }
//	{ "success": false, "message": "username is required", "data": null, "code": "VALIDATION_FAILED", "errors": [...] }
//
// Build is a pure function of its inputs. The status code it returns is the
// only one the transport layer is allowed to send.
package envelope

import (
	"net/http"

	"github.com/deppfellow/profile-api/internal/errs"
)

// Envelope is the response body.
//
// success is always status < 400, and data is null whenever success is false.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data"`
	Code    string            `json:"code,omitempty"`
	Errors  []errs.FieldError `json:"errors,omitempty"`
}

// Outcome is what a handler produced: a value or a failure, never both.
type Outcome struct {
	Value any
	Err   error
}

// Ok wraps a successful handler value.
func Ok(v any) Outcome {
	return Outcome{Value: v}
}

// Fail wraps a handler failure.
func Fail(err error) Outcome {
	return Outcome{Err: err}
}

// Failed reports whether the outcome carries an error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Build maps an outcome onto an envelope and its HTTP status.
//
// Success statuses outside 1xx-3xx fall back to 200. Failures take the status
// of their kind. Errors that are not *errs.HTTPError are reported as a generic
// 500 so internal details never reach clients.
func Build(outcome Outcome, successMessage string, successCode int) (Envelope, int) {
	if !outcome.Failed() {
		status := successCode
		if status < 100 || status >= http.StatusBadRequest {
			status = http.StatusOK
		}

		return Envelope{
			Success: true,
			Message: successMessage,
			Data:    outcome.Value,
		}, status
	}

	httpErr := errs.From(outcome.Err)
	status := failureStatus(httpErr)

	message := httpErr.Message
	if httpErr.Kind == errs.KindValidationFailed && len(httpErr.Errors) > 0 {
		message = httpErr.Errors[0].Error
	}
	if message == "" {
		message = http.StatusText(status)
	}

	return Envelope{
		Success: false,
		Message: message,
		Data:    nil,
		Code:    httpErr.Code,
		Errors:  httpErr.Errors,
	}, status
}

// failureStatus is derived from the kind. An explicit Status is honored
// only when it is a 4xx/5xx that does not claim one of the kind-reserved
// codes (400, 401, 404) for a different kind.
func failureStatus(httpErr *errs.HTTPError) int {
	kindStatus := errs.StatusFor(httpErr.Kind)

	status := httpErr.Status
	if status < http.StatusBadRequest || status > 599 {
		return kindStatus
	}

	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
		if status != kindStatus {
			return kindStatus
		}
	}

	switch httpErr.Kind {
	case errs.KindValidationFailed, errs.KindUnauthorized, errs.KindNotFound:
		return kindStatus
	}

	return status
}
