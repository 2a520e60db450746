package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/jobcoach/jobcoach/internal/gateway"
	"github.com/jobcoach/jobcoach/internal/types"
	"github.com/jobcoach/jobcoach/internal/validation"
)

// handleAdapter serves one use-case endpoint. Only POST is accepted; preflight
// requests never reach it.
func (s *Server) handleAdapter(uc types.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST, OPTIONS")
			s.errorResponse(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
			return
		}

		body, ok := s.readBody(w, r)
		if !ok {
			return
		}

		resp, err := s.adapter.Run(r.Context(), uc, body)
		if err != nil {
			s.writeAdapterError(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, resp)
	}
}

// readBody reads at most maxBodyBytes, answering 400 itself when it cannot.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.invalidInputResponse(w, "(root): request body must be at most 1 MiB")
			return nil, false
		}
		s.invalidInputResponse(w, "(root): request body could not be read")
		return nil, false
	}
	return body, true
}

func (s *Server) writeAdapterError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *validation.ValidationError
		rateLimited   *gateway.ErrRateLimited
	)
	switch {
	case errors.As(err, &validationErr):
		s.invalidInputResponse(w, validationErr.Details())
	case errors.As(err, &rateLimited):
		s.rateLimitResponse(w, rateLimited.RetryAfter)
	default:
		status := HTTPStatus(err)
		message := publicMessage(err)
		if status == http.StatusInternalServerError && message == msgInternal {
			message = msgUpstream
		}
		if status == http.StatusNotFound {
			message = msgNotFound
		}
		if status >= http.StatusInternalServerError {
			s.logger.ErrorContext(r.Context(), "adapter request failed", "path", r.URL.Path, "error", err)
		}
		s.errorResponse(w, status, message)
	}
}
