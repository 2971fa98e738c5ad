// Package errs define custom error types and utilities.
//
// Its purpose is to create specific error structures
// (e.g. FieldErrors for forms or HTTPError for API responses)
// so every failure can be mapped deterministically onto the
// response envelope.
//
// - Classify failures by Kind (validation, auth, not found, upstream).
// - Support field-level validation errors with stable reason codes.
// - Keep the underlying cause for server-side logging only.
// - Provide errors that play nicely with Go's standard errors package.
package errs
