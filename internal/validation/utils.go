package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/deppfellow/profile-api/internal/errs"
)

// validate is shared: validator caches struct metadata and is safe for
// concurrent use once configured.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report struct fields by their JSON name so errors line up with the
	// rule-based pass.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
// - Define a request struct with validator tags (`validate:"required,email"`)
// - Implement Validate() error that runs validation.Struct(req)
// - Return validator.ValidationErrors
type Validatable interface {
	Validate() error
}

// Struct runs the struct-tag validator over v.
func Struct(v any) error {
	return validate.Struct(v)
}

// Bind decodes a validated payload into dst and, when dst is Validatable,
// runs its struct-level checks.
//
// dst must be a pointer. Failures come back as a 400 *errs.HTTPError.
func Bind(payload map[string]any, dst any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errs.NewInternalError(fmt.Errorf("encode payload: %w", err))
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "body"
			}
			return errs.NewValidationFailedError([]errs.FieldError{
				newFieldError(field, "type", "", typeErr.Type.String()),
			})
		}
		return errs.NewInternalError(fmt.Errorf("decode payload: %w", err))
	}

	v, ok := dst.(Validatable)
	if !ok {
		return nil
	}

	if fieldErrors := extractValidationError(v.Validate()); len(fieldErrors) > 0 {
		return errs.NewValidationFailedError(fieldErrors)
	}

	return nil
}

func extractValidationError(err error) []errs.FieldError {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []errs.FieldError{{Field: "body", Reason: "invalid", Error: err.Error()}}
	}

	fieldErrors := make([]errs.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field := fe.Field()
		if field == "" {
			field = strings.ToLower(fe.StructField())
		}
		fieldErrors = append(fieldErrors, tagFieldError(field, fe.Tag(), fe.Param(), fe.Kind()))
	}

	return fieldErrors
}
