// Package validation checks form payloads before they are sent anywhere.
// A Schema coerces raw form values, decodes them into a typed input and runs
// the rules declared in the input's validate tags.
package validation

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// Kind is the type a field's raw value must have after coercion
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// Field describes one form field. Name must match the json tag of the
// corresponding struct field. Message replaces the generic rule message.
type Field struct {
	Name    string
	Kind    Kind
	Default any
	Message string
}

// RequiredMessage is reported for a string or boolean field that is absent
const RequiredMessage = "Required"

// Messages for number fields whose value cannot be sent as JSON
const (
	NaNMessage      = "Expected number, received nan"
	InfiniteMessage = "Number must be finite"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func rules() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Schema validates payloads for T
type Schema[T any] struct {
	fields []Field
	byName map[string]Field
}

// NewSchema declares a schema with fields in display order
func NewSchema[T any](fields ...Field) *Schema[T] {
	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	return &Schema[T]{fields: fields, byName: byName}
}

// Fields returns the declared fields in display order
func (s *Schema[T]) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the declaration of name
func (s *Schema[T]) Field(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Defaults returns a fresh map of every field's default value
func (s *Schema[T]) Defaults() map[string]any {
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		out[f.Name] = f.Default
	}
	return out
}

// Validate checks candidate and returns the decoded input. FieldErrors is
// empty when candidate is valid; otherwise T holds whatever decoded cleanly.
// Keys of candidate that are not declared fields are ignored.
func (s *Schema[T]) Validate(candidate map[string]any) (T, FieldErrors) {
	var out T
	errs := FieldErrors{}

	coerced := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		raw, present := candidate[f.Name]
		v, msg := coerce(f, raw, present)
		if msg != "" {
			errs[f.Name] = msg
			continue
		}
		coerced[f.Name] = v
	}

	if err := decode(coerced, &out); err != nil {
		for _, f := range s.fields {
			if !errs.Has(f.Name) {
				errs[f.Name] = "Invalid value"
			}
		}
		return out, errs
	}

	if err := rules().Struct(out); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			errs["_"] = err.Error()
			return out, errs
		}
		for _, fe := range verrs {
			name := fe.Field()
			if errs.Has(name) {
				continue
			}
			if f, ok := s.byName[name]; ok && f.Message != "" {
				errs[name] = f.Message
				continue
			}
			errs[name] = ruleMessage(fe)
		}
	}
	return out, errs
}

// Values converts a typed input back into raw form values, e.g. to load an
// existing record into a form for editing
func (s *Schema[T]) Values(v T) map[string]any {
	raw := map[string]any{}
	if err := decode(v, &raw); err != nil {
		return s.Defaults()
	}
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		if val, ok := raw[f.Name]; ok {
			out[f.Name] = val
		} else {
			out[f.Name] = f.Default
		}
	}
	return out
}

// coerce brings a raw value to the field's kind. Numbers accept any finite
// value spf13/cast can convert, with a blank string meaning zero; strings and
// booleans must already have the right type.
func coerce(f Field, raw any, present bool) (any, string) {
	switch f.Kind {
	case KindNumber:
		if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
			return float64(0), ""
		}
		n, err := cast.ToFloat64E(raw)
		if err != nil || math.IsNaN(n) {
			return nil, NaNMessage
		}
		if math.IsInf(n, 0) {
			return nil, InfiniteMessage
		}
		return n, ""
	case KindString, KindBool:
		if !present || raw == nil {
			return nil, RequiredMessage
		}
		if typeName(raw) != f.Kind.String() {
			return nil, fmt.Sprintf("Expected %s, received %s", f.Kind, typeName(raw))
		}
		rv := reflect.ValueOf(raw)
		if f.Kind == KindString {
			return rv.String(), ""
		}
		return rv.Bool(), ""
	default:
		return raw, ""
	}
}

func decode(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  output,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
