package gateway

import (
	"fmt"
	"strconv"
)

// ErrUnknownUseCase indicates a use case with no registered definition
type ErrUnknownUseCase struct {
	UseCase string
}

func (e *ErrUnknownUseCase) Error() string {
	return fmt.Sprintf("unknown use case: %s", e.UseCase)
}

// ErrConfiguration indicates the AI credential is missing. It is reported on every
// request rather than at startup.
type ErrConfiguration struct {
	Cause error
}

func (e *ErrConfiguration) Error() string {
	return "AI service is not configured"
}

func (e *ErrConfiguration) Unwrap() error {
	return e.Cause
}

// ErrRateLimited indicates the provider answered 429.
// RetryAfter is nil when the provider gave no numeric hint.
type ErrRateLimited struct {
	RetryAfter *int
}

func (e *ErrRateLimited) Error() string {
	if e.RetryAfter == nil {
		return "rate limited by AI provider"
	}
	return "rate limited by AI provider, retry after " + strconv.Itoa(*e.RetryAfter) + "s"
}

// ErrPaymentRequired indicates the provider answered 402: credits are depleted.
type ErrPaymentRequired struct{}

func (e *ErrPaymentRequired) Error() string {
	return "AI credits depleted"
}

// ErrUpstream indicates any other provider failure. Status is 0 for transport errors.
type ErrUpstream struct {
	Status int
	Cause  error
}

func (e *ErrUpstream) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI provider failed (status %d): %v", e.Status, e.Cause)
	}
	return fmt.Sprintf("AI provider failed (status %d)", e.Status)
}

func (e *ErrUpstream) Unwrap() error {
	return e.Cause
}
