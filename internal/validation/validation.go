// Package validation contains the logic for validating
// request data.
//
// Requests are checked against declarative field rules before any handler
// runs: presence, type (with query-string style coercion), full-match
// patterns and `validator` tags. Every failure is reported as an
// errs.FieldError with a stable reason code, and messages are localized
// from the client's Accept-Language.
//
// Typed request structs can additionally implement Validatable to get a
// struct-tag pass after the payload is decoded.
package validation
