package validation

import "github.com/deppfellow/profile-api/internal/errs"

// Schema declares the rules for each part of a request.
// A nil slice means the part is ignored entirely.
type Schema struct {
	Params []Rule
	Query  []Rule
	Body   []Rule
}

// Input is the raw request data, already extracted from the transport.
type Input struct {
	Params map[string]any
	Query  map[string]any
	Body   map[string]any
}

// IsEmpty reports whether the schema declares no rules at all.
func (s Schema) IsEmpty() bool {
	return len(s.Params) == 0 && len(s.Query) == 0 && len(s.Body) == 0
}

// Validate checks params, query and body in that order.
//
// Field paths are prefixed with "params." and "query." so the client can tell
// where the failure came from. Body fields keep their bare names. The payload
// merges every validated part into one map.
func (s Schema) Validate(in Input) Result {
	payload := make(map[string]any)
	var fieldErrors []errs.FieldError

	parts := []struct {
		rules  []Rule
		input  map[string]any
		prefix string
	}{
		{s.Params, in.Params, "params."},
		{s.Query, in.Query, "query."},
		{s.Body, in.Body, ""},
	}

	for _, part := range parts {
		if len(part.rules) == 0 {
			continue
		}

		input := part.input
		if input == nil {
			input = map[string]any{}
		}

		result := validateWithPrefix(part.rules, input, part.prefix)
		if !result.Valid() {
			fieldErrors = append(fieldErrors, result.Errors...)
			continue
		}
		for k, v := range result.Payload {
			payload[k] = v
		}
	}

	if len(fieldErrors) > 0 {
		return Result{Errors: fieldErrors}
	}
	return Result{Payload: payload}
}

// MalformedBody reports a body that could not be parsed at all.
func MalformedBody() errs.FieldError {
	return newFieldError("body", "malformed", "")
}
