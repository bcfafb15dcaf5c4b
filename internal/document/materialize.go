package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(JSONTagName)
}

// messages maps validation tags to field messages.
var messages = map[string]string{
	"required": "is required",
	"oneof":    "must be one of [%s]",
	"datetime": "must be a timestamp in layout %s",
	"min":      "must have at least %s items",
}

// FieldError describes one non-conforming field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field of a document that does not conform.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err carries field level detail.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Materialize converts the document into out, a pointer to a struct with
// json and validate tags, and fails when the content does not conform.
func Materialize(d *Document, out any) error {
	raw, err := json.Marshal(d.root)
	if err != nil {
		var unsupported *json.UnsupportedValueError
		if errors.As(err, &unsupported) {
			return &ValidationError{Fields: []FieldError{{
				Field:   nonFinitePath(d.root, ""),
				Message: "must be a finite number, got " + unsupported.Str,
			}}}
		}
		return fmt.Errorf("document: materialize: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ValidationError{Fields: []FieldError{{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("must be a %s, got %s", typeErr.Type, typeErr.Value),
			}}}
		}
		return fmt.Errorf("document: materialize: %w", err)
	}
	return Validate(out)
}

// Validate runs the struct tags of v and converts failures to a ValidationError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	return FromValidator(validationErrs)
}

// FromValidator converts validator failures, e.g. from request binding.
func FromValidator(errs validator.ValidationErrors) *ValidationError {
	ve := &ValidationError{}
	for _, fe := range errs {
		ve.Fields = append(ve.Fields, FieldError{Field: fe.Field(), Message: parseMessage(fe)})
	}
	return ve
}

// JSONTagName names struct fields by their json tag in validation errors.
func JSONTagName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func parseMessage(fe validator.FieldError) string {
	msg, ok := messages[fe.Tag()]
	if !ok {
		return "is invalid: " + fe.Tag()
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, fe.Param())
	}
	return msg
}

// nonFinitePath returns the dotted path of the first NaN or infinite number
// in v, visiting map keys in sorted order.
func nonFinitePath(v any, path string) string {
	join := func(seg string) string {
		if path == "" {
			return seg
		}
		return path + "." + seg
	}
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return path
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if p := nonFinitePath(t[k], join(k)); p != "" {
				return p
			}
		}
	case []any:
		for i, item := range t {
			if p := nonFinitePath(item, join(fmt.Sprint(i))); p != "" {
				return p
			}
		}
	}
	return ""
}
