package parsing

import (
	"fmt"
	"strings"
)

// UnparsableResultError is returned when the upstream reply carries no JSON that
// can be decoded. Raw is kept for logs only.
type UnparsableResultError struct {
	Raw   string
	Cause error
}

func (e *UnparsableResultError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unparsable result: %v", e.Cause)
	}
	return "unparsable result"
}

func (e *UnparsableResultError) Unwrap() error {
	return e.Cause
}

// FieldError is one shape violation in a decoded result.
type FieldError struct {
	Field   string
	Message string
}

// MalformedResultError is returned when the reply is valid JSON but does not
// have the shape of the expected result.
type MalformedResultError struct {
	Schema string
	Fields []FieldError
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("malformed %s result: %s", e.Schema, e.Details())
}

// Details renders the failing fields as "field: message, ...".
func (e *MalformedResultError) Details() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, ", ")
}
