// Package validation checks adapter and record requests before any work is done with them.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jobcoach/jobcoach/internal/types"
)

// Validator decodes, normalizes and validates request payloads.
// It holds no per-request state and is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return &Validator{validate: v}
}

// Validate decodes raw into the request type for uc and validates it.
// On success the returned value is a pointer to the typed request.
// On failure the error is a *ValidationError listing every failing field.
func (v *Validator) Validate(uc types.UseCase, raw []byte) (any, error) {
	req := types.NewRequest(uc)
	if req == nil {
		return nil, rootError(fmt.Sprintf("unknown use case %q", uc))
	}
	if err := v.Decode(raw, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Decode is Validate for callers that already hold the target value.
// Fields with the wrong JSON type are reported alongside tag failures.
func (v *Validator) Decode(raw []byte, dst any) error {
	typeErr := decode(raw, dst)
	if typeErr != nil && typeErr.HasField(rootField) {
		return typeErr
	}

	err := v.Struct(dst)
	if typeErr == nil {
		return err
	}

	var tagErr *ValidationError
	if errors.As(err, &tagErr) {
		for _, fe := range tagErr.Fields {
			if !typeErr.HasField(fe.Field) {
				typeErr.Fields = append(typeErr.Fields, fe)
			}
		}
	}
	return typeErr
}

// Struct normalizes string fields of req in place and validates its tags.
func (v *Validator) Struct(req any) error {
	normalize(reflect.ValueOf(req))

	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return rootError(err.Error())
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

// decode fills dst field by field so that one badly typed field does not hide
// the others. Badly typed fields are left at their zero value.
func decode(raw []byte, dst any) *ValidationError {
	if len(bytes.TrimSpace(raw)) == 0 {
		return rootError("request body is required")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return rootError("request body must be a JSON object")
	}

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		if err := json.Unmarshal(raw, dst); err != nil {
			return rootError("request body must be a JSON object")
		}
		return nil
	}
	rv = rv.Elem()

	var out *ValidationError
	for i := 0; i < rv.NumField(); i++ {
		sf := rv.Type().Field(i)
		name := jsonName(sf)
		if name == "" {
			continue
		}
		value, ok := lookupField(fields, name)
		if !ok {
			continue
		}

		f := rv.Field(i)
		if err := json.Unmarshal(value, f.Addr().Interface()); err != nil {
			f.Set(reflect.Zero(sf.Type))
			if out == nil {
				out = &ValidationError{}
			}
			out.Fields = append(out.Fields, FieldError{
				Field:   name,
				Message: fmt.Sprintf("must be a %s", jsonKind(sf.Type)),
			})
		}
	}
	return out
}

func jsonName(sf reflect.StructField) string {
	if !sf.IsExported() {
		return ""
	}
	name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return sf.Name
	}
	return name
}

// lookupField matches keys the way encoding/json does: exact first, then case-insensitive.
func lookupField(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if v, ok := fields[name]; ok {
		return v, true
	}
	for k, v := range fields {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// normalize trims every string field and turns blank optional fields into nil.
func normalize(v reflect.Value) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if !f.CanSet() {
			continue
		}
		switch {
		case f.Kind() == reflect.String:
			f.SetString(strings.TrimSpace(f.String()))
		case f.Kind() == reflect.Pointer && f.Type().Elem().Kind() == reflect.String:
			if f.IsNil() {
				continue
			}
			trimmed := strings.TrimSpace(f.Elem().String())
			if trimmed == "" {
				f.Set(reflect.Zero(f.Type()))
				continue
			}
			f.Elem().SetString(trimmed)
		}
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "valid value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Pointer:
		return jsonKind(t.Elem())
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "number"
	case reflect.Slice:
		return "list"
	case reflect.Struct:
		if t == reflect.TypeOf(time.Time{}) {
			return "date-time string"
		}
		return "object"
	default:
		return "valid value"
	}
}
