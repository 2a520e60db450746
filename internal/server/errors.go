package server

import (
	"errors"
	"net/http"

	"github.com/jobcoach/jobcoach/internal/db"
	"github.com/jobcoach/jobcoach/internal/gateway"
	"github.com/jobcoach/jobcoach/internal/parsing"
	"github.com/jobcoach/jobcoach/internal/validation"
)

// User-facing messages. Provider bodies and internal errors are only logged.
const (
	msgInvalidInput     = "Invalid input"
	msgRateLimited      = "Rate limit exceeded. Please try again later."
	msgPaymentRequired  = "AI credits depleted. Please add funds to continue."
	msgNotConfigured    = "AI service is not configured"
	msgUpstream         = "AI service error"
	msgParseFailed      = "Failed to parse AI response"
	msgNotFound         = "Not found"
	msgInternal         = "Internal server error"
	msgMethodNotAllowed = "Method not allowed"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *validation.ValidationError
		rateLimited   *gateway.ErrRateLimited
		payment       *gateway.ErrPaymentRequired
		unknown       *gateway.ErrUnknownUseCase
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &rateLimited):
		return http.StatusTooManyRequests
	case errors.As(err, &payment):
		return http.StatusPaymentRequired
	case errors.As(err, &unknown), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the message shown to the caller for a 5xx or 402 error.
func publicMessage(err error) string {
	var (
		payment    *gateway.ErrPaymentRequired
		config     *gateway.ErrConfiguration
		unparsable *parsing.UnparsableResultError
		malformed  *parsing.MalformedResultError
		upstream   *gateway.ErrUpstream
	)
	switch {
	case errors.As(err, &payment):
		return msgPaymentRequired
	case errors.As(err, &config):
		return msgNotConfigured
	case errors.As(err, &unparsable), errors.As(err, &malformed):
		return msgParseFailed
	case errors.As(err, &upstream):
		return msgUpstream
	case errors.Is(err, db.ErrNotFound):
		return msgNotFound
	default:
		return msgInternal
	}
}
