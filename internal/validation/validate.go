package validation

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/deppfellow/profile-api/internal/errs"
)

// Result is the outcome of validating one input map.
//
// Payload holds only declared fields, coerced and defaulted. It is nil when
// Errors is non-empty.
type Result struct {
	Payload map[string]any
	Errors  []errs.FieldError
}

// Valid reports whether no field failed.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks input against rules in declaration order and collects every
// failure. Undeclared keys are dropped from the payload.
func Validate(rules []Rule, input map[string]any) Result {
	return validateWithPrefix(rules, input, "")
}

func validateWithPrefix(rules []Rule, input map[string]any, prefix string) Result {
	payload := make(map[string]any, len(rules))
	var fieldErrors []errs.FieldError

	for _, rule := range rules {
		path := prefix + rule.name

		value, present := input[rule.name]
		if !present {
			if rule.hasDefault {
				if coerced, ok := coerce(rule.kind, rule.def); ok {
					payload[rule.name] = coerced
				} else {
					payload[rule.name] = rule.def
				}
				continue
			}
			if rule.required {
				fieldErrors = append(fieldErrors, newFieldError(path, "required", ""))
			}
			continue
		}

		if value == nil {
			// required means present and non-null, even for nullable rules
			switch {
			case rule.required:
				fieldErrors = append(fieldErrors, newFieldError(path, "required", ""))
			case rule.nullable || rule.kind == KindNull:
				payload[rule.name] = nil
			default:
				fieldErrors = append(fieldErrors, newFieldError(path, "type", "", string(rule.kind)))
			}
			continue
		}

		coerced, ok := coerce(rule.kind, value)
		if !ok {
			fieldErrors = append(fieldErrors, newFieldError(path, "type", "", string(rule.kind)))
			continue
		}

		if rule.pattern != nil {
			s, isString := coerced.(string)
			if isString && !rule.pattern.MatchString(s) {
				fieldErrors = append(fieldErrors, newFieldError(path, "pattern", "", rule.source))
				continue
			}
		}

		if rule.tag != "" && coerced != nil {
			if fieldErr, failed := checkTag(path, coerced, rule.tag); failed {
				fieldErrors = append(fieldErrors, fieldErr)
				continue
			}
		}

		payload[rule.name] = coerced
	}

	if len(fieldErrors) > 0 {
		return Result{Errors: fieldErrors}
	}
	return Result{Payload: payload}
}

func checkTag(path string, value any, tag string) (errs.FieldError, bool) {
	err := validate.Var(value, tag)
	if err == nil {
		return errs.FieldError{}, false
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return newFieldError(path, "invalid", "default", tag), true
	}

	fe := validationErrors[0]
	return tagFieldError(path, fe.Tag(), fe.Param(), fe.Kind()), true
}

func tagFieldError(path, tag, param string, kind reflect.Kind) errs.FieldError {
	template := tag
	switch tag {
	case "min", "max", "len":
		if kind == reflect.String || kind == reflect.Slice || kind == reflect.Map {
			template = tag + "_len"
		}
	case "required", "oneof", "email", "uuid", "uuid4", "base64", "url":
	default:
		template = "default"
	}

	params := []string{path}
	switch {
	case template == "default":
		params = append(params, tag)
	case param != "":
		params = append(params, param)
	}

	return newFieldError(path, tag, template, params[1:]...)
}

// newFieldError builds an English field error. Callers may localize it later.
func newFieldError(path, reason, template string, extra ...string) errs.FieldError {
	if template == "" {
		template = reason
	}

	params := append([]string{path}, extra...)
	return errs.FieldError{
		Field:    path,
		Reason:   reason,
		Error:    defaultTranslator.Message(LocaleEnglish, template, params...),
		Template: template,
		Params:   params,
	}
}

// coerce converts value into kind the way query strings and form posts need:
// numeric and boolean strings become numbers and booleans, scalars become
// single-element arrays, single-element arrays unwrap into scalars.
func coerce(kind Kind, value any) (any, bool) {
	if kind != KindArray {
		if arr, ok := value.([]any); ok && len(arr) == 1 {
			value = arr[0]
		}
	}

	switch kind {
	case KindString:
		return toString(value)
	case KindNumber:
		f, ok := toFloat(value)
		return f, ok
	case KindInteger:
		if n, ok := toInt(value); ok {
			return n, true
		}
		f, ok := toFloat(value)
		if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil, false
		}
		// floats at or beyond ±2^63 do not fit an int64
		if f >= math.MaxInt64 || f < math.MinInt64 {
			return nil, false
		}
		return int64(f), true
	case KindBoolean:
		return toBool(value)
	case KindObject:
		m, ok := value.(map[string]any)
		return m, ok
	case KindArray:
		switch v := value.(type) {
		case []any:
			return v, true
		case []string:
			out := make([]any, len(v))
			for i, s := range v {
				out[i] = s
			}
			return out, true
		case map[string]any:
			return nil, false
		default:
			return []any{v}, true
		}
	case KindNull:
		if s, ok := value.(string); ok && s == "" {
			return nil, true
		}
		return nil, value == nil
	default:
		return nil, false
	}
}

type floater interface {
	Float64() (float64, error)
}

func toString(value any) (any, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case floater:
		f, err := v.Float64()
		if err != nil {
			return nil, false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	default:
		return nil, false
	}
}

// toInt converts integer-typed values and decimal integer strings exactly,
// without a float64 round trip.
func toInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	case interface{ Int64() (int64, error) }:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case floater:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toBool(value any) (any, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch v {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	case float64:
		switch v {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	case int:
		switch v {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	}
	return nil, false
}
