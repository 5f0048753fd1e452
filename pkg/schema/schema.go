// Package schema declares the workflow's argument schema and the file
// document schema, and validates raw records against them.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// ErrValidation is the sentinel wrapped by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a single rejected field.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Field describes one property of a document schema.
type Field struct {
	ID          string
	Description string
	Required    bool
}

// Schema is a JSON Schema document plus the field list it was built from.
type Schema struct {
	Name   string
	Fields []Field
	raw    map[string]any
	loader gojsonschema.JSONLoader
}

func newSchema(name string, raw map[string]any) *Schema {
	s := &Schema{Name: name, raw: raw, loader: gojsonschema.NewGoLoader(raw)}

	required := map[string]bool{}
	if req, ok := raw["required"].([]any); ok {
		for _, r := range req {
			if id, ok := r.(string); ok {
				required[id] = true
			}
		}
	}

	props, _ := raw["properties"].(map[string]any)
	ids := make([]string, 0, len(props))
	for id := range props {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	// Required fields first, then the optional ones.
	sort.SliceStable(ids, func(i, j int) bool { return required[ids[i]] && !required[ids[j]] })

	for _, id := range ids {
		desc := ""
		if p, ok := props[id].(map[string]any); ok {
			desc, _ = p["description"].(string)
		}
		s.Fields = append(s.Fields, Field{ID: id, Description: desc, Required: required[id]})
	}
	return s
}

// Raw returns the JSON Schema as a generic map.
func (s *Schema) Raw() map[string]any {
	return s.raw
}

// Validate checks a decoded JSON value against the schema. The first
// failure is returned as a *ValidationError; all of them are in Reason.
func (s *Schema) Validate(doc any) error {
	result, err := gojsonschema.Validate(s.loader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("%s schema: %v", s.Name, err)}
	}
	if result.Valid() {
		return nil
	}

	errs := result.Errors()
	reasons := make([]string, 0, len(errs))
	for _, e := range errs {
		reasons = append(reasons, e.Description())
	}
	first := errs[0]
	field := first.Field()
	if field == "(root)" {
		field = ""
	}
	return &ValidationError{
		Field:  field,
		Value:  first.Value(),
		Reason: strings.Join(reasons, "; "),
	}
}

// PromptInstructions renders the output contract appended to generation
// prompts so the model answers with a document matching this schema.
func (s *Schema) PromptInstructions() string {
	var sb strings.Builder

	sb.WriteString("Return ONLY valid JSON with these exact keys:\n")
	for _, f := range s.Fields {
		hint := f.Description
		if hint == "" {
			hint = f.ID
		}
		optional := ""
		if !f.Required {
			optional = " (optional)"
		}
		sb.WriteString(fmt.Sprintf("- %s: %s%s\n", f.ID, hint, optional))
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validationErrorFromStruct converts validator output into a ValidationError.
func validationErrorFromStruct(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Reason: err.Error()}
	}
	fe := fieldErrs[0]
	reason := fmt.Sprintf("failed %q", fe.Tag())
	if fe.Tag() == "oneof" {
		reason = fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return &ValidationError{
		Field:  strings.ToLower(fe.Field()),
		Value:  fe.Value(),
		Reason: reason,
	}
}
