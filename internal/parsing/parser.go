// Package parsing turns an upstream chat-completion body into a typed, shape-checked result.
package parsing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jobcoach/jobcoach/internal/llm"
	"github.com/jobcoach/jobcoach/internal/schemas"
)

// Mode selects where in the reply the result JSON lives. It is fixed per use case.
type Mode int

// Parse modes
const (
	// ModeDirect expects message content to be the JSON document itself
	ModeDirect Mode = iota
	// ModeFenced accepts content that may wrap the JSON in a ``` code fence
	ModeFenced
	// ModeToolCall reads the arguments of the first tool call
	ModeToolCall
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeFenced:
		return "fenced"
	case ModeToolCall:
		return "tool-call"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Candidate extracts the JSON text the mode points at from a chat-completion body.
func Candidate(body []byte, mode Mode) (string, error) {
	var completion llm.ChatCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", &UnparsableResultError{Raw: string(body), Cause: fmt.Errorf("decode envelope: %w", err)}
	}
	if len(completion.Choices) == 0 {
		return "", &UnparsableResultError{Raw: string(body), Cause: errors.New("no choices in response")}
	}
	msg := completion.Choices[0].Message

	switch mode {
	case ModeToolCall:
		if len(msg.ToolCalls) == 0 {
			return "", &UnparsableResultError{Raw: msg.Content, Cause: errors.New("no tool call in response")}
		}
		return msg.ToolCalls[0].Function.Arguments, nil
	case ModeFenced:
		return ExtractFenced(msg.Content), nil
	default:
		return strings.TrimSpace(msg.Content), nil
	}
}

// Parse extracts the result from body, checks it against the named schema and
// decodes it into dst. It returns *UnparsableResultError for JSON syntax failures
// and *MalformedResultError for shape violations.
func Parse(body []byte, mode Mode, schemaName string, dst any) error {
	candidate, err := Candidate(body, mode)
	if err != nil {
		return err
	}
	return Decode(candidate, schemaName, dst)
}

// Decode checks candidate JSON against the named schema and decodes it into dst.
func Decode(candidate, schemaName string, dst any) error {
	if strings.TrimSpace(candidate) == "" {
		return &UnparsableResultError{Raw: candidate, Cause: errors.New("empty content")}
	}

	var doc any
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		return &UnparsableResultError{Raw: candidate, Cause: err}
	}

	if err := schemas.Validate(schemaName, []byte(candidate)); err != nil {
		var verr *schemas.ValidationError
		if !errors.As(err, &verr) {
			return fmt.Errorf("shape check %s: %w", schemaName, err)
		}
		malformed := &MalformedResultError{Schema: schemaName}
		for _, fe := range verr.Errors {
			malformed.Fields = append(malformed.Fields, FieldError{Field: fe.Field, Message: fe.Message})
		}
		return malformed
	}

	if err := json.Unmarshal([]byte(candidate), dst); err != nil {
		return &MalformedResultError{
			Schema: schemaName,
			Fields: []FieldError{{Field: "(root)", Message: err.Error()}},
		}
	}
	return nil
}
