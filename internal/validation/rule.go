package validation

import "regexp"

// Kind is the JSON type a field must have after coercion.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindNull    Kind = "null"
)

// Rule describes one field. Rules are values: every builder method returns
// a modified copy, so a rule shared between schemas cannot be mutated.
//
//	validation.Field("username", validation.KindString).Required().Match(`\w+@\w+\.\w{2,3}`)
type Rule struct {
	name       string
	kind       Kind
	required   bool
	nullable   bool
	pattern    *regexp.Regexp
	source     string
	def        any
	hasDefault bool
	tag        string
}

// Field starts a rule for the named field.
func Field(name string, kind Kind) Rule {
	return Rule{name: name, kind: kind}
}

// Required marks the field as mandatory and non-null.
func (r Rule) Required() Rule {
	r.required = true
	return r
}

// Nullable allows an explicit null.
func (r Rule) Nullable() Rule {
	r.nullable = true
	return r
}

// Match requires string values to match pattern in full.
// The pattern is compiled here and panics when invalid, so schemas fail at startup.
func (r Rule) Match(pattern string) Rule {
	r.pattern = regexp.MustCompile(`^(?:` + pattern + `)$`)
	r.source = pattern
	return r
}

// Default is substituted when the field is absent.
func (r Rule) Default(v any) Rule {
	r.def = v
	r.hasDefault = true
	return r
}

// Tag adds a go-playground validator tag ("email", "min=1,max=100").
func (r Rule) Tag(tag string) Rule {
	r.tag = tag
	return r
}
