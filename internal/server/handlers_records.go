package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jobcoach/jobcoach/internal/db"
	"github.com/jobcoach/jobcoach/internal/server/middleware"
	"github.com/jobcoach/jobcoach/internal/types"
	"github.com/jobcoach/jobcoach/internal/validation"
)

// Store is the record store behind the application and contact routes.
// *db.DB satisfies it.
type Store interface {
	ListApplications(ctx context.Context, userID uuid.UUID) ([]types.Application, error)
	GetApplication(ctx context.Context, userID, id uuid.UUID) (*types.Application, error)
	CreateApplication(ctx context.Context, userID uuid.UUID, in *types.ApplicationInput) (*types.Application, error)
	UpdateApplication(ctx context.Context, userID, id uuid.UUID, in *types.ApplicationInput) (*types.Application, error)
	DeleteApplication(ctx context.Context, userID, id uuid.UUID) error

	ListContacts(ctx context.Context, userID uuid.UUID) ([]types.Contact, error)
	GetContact(ctx context.Context, userID, id uuid.UUID) (*types.Contact, error)
	CreateContact(ctx context.Context, userID uuid.UUID, in *types.ContactInput) (*types.Contact, error)
	UpdateContact(ctx context.Context, userID, id uuid.UUID, in *types.ContactInput) (*types.Contact, error)
	DeleteContact(ctx context.Context, userID, id uuid.UUID) error
}

var _ Store = (*db.DB)(nil)

// recordScope resolves the authenticated user and, when withID is set, the {id} path value.
func (s *Server) recordScope(w http.ResponseWriter, r *http.Request, withID bool) (userID, id uuid.UUID, ok bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, uuid.Nil, false
	}
	if !withID {
		return userID, uuid.Nil, true
	}
	id, err = uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.invalidInputResponse(w, "id: must be a valid UUID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

// decodeInput reads and validates a record body into dst.
func (s *Server) decodeInput(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, ok := s.readBody(w, r)
	if !ok {
		return false
	}
	if err := s.validator.Decode(body, dst); err != nil {
		var validationErr *validation.ValidationError
		if errors.As(err, &validationErr) {
			s.invalidInputResponse(w, validationErr.Details())
			return false
		}
		s.invalidInputResponse(w, "(root): "+err.Error())
		return false
	}
	return true
}

// storeError writes the response for a failed store call.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, db.ErrNotFound) {
		s.errorResponse(w, http.StatusNotFound, msgNotFound)
		return
	}
	s.logger.ErrorContext(r.Context(), "record store failed", "path", r.URL.Path, "error", err)
	s.errorResponse(w, http.StatusInternalServerError, msgInternal)
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := s.recordScope(w, r, false)
	if !ok {
		return
	}
	apps, err := s.store.ListApplications(r.Context(), userID)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"applications": apps})
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := s.recordScope(w, r, true)
	if !ok {
		return
	}
	app, err := s.store.GetApplication(r.Context(), userID, id)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := s.recordScope(w, r, false)
	if !ok {
		return
	}
	var in types.ApplicationInput
	if !s.decodeInput(w, r, &in) {
		return
	}
	app, err := s.store.CreateApplication(r.Context(), userID, &in)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, app)
}

func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := s.recordScope(w, r, true)
	if !ok {
		return
	}
	var in types.ApplicationInput
	if !s.decodeInput(w, r, &in) {
		return
	}
	app, err := s.store.UpdateApplication(r.Context(), userID, id, &in)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := s.recordScope(w, r, true)
	if !ok {
		return
	}
	if err := s.store.DeleteApplication(r.Context(), userID, id); err != nil {
		s.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := s.recordScope(w, r, false)
	if !ok {
		return
	}
	contacts, err := s.store.ListContacts(r.Context(), userID)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"contacts": contacts})
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := s.recordScope(w, r, true)
	if !ok {
		return
	}
	contact, err := s.store.GetContact(r.Context(), userID, id)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, contact)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := s.recordScope(w, r, false)
	if !ok {
		return
	}
	var in types.ContactInput
	if !s.decodeInput(w, r, &in) {
		return
	}
	contact, err := s.store.CreateContact(r.Context(), userID, &in)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, contact)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := s.recordScope(w, r, true)
	if !ok {
		return
	}
	var in types.ContactInput
	if !s.decodeInput(w, r, &in) {
		return
	}
	contact, err := s.store.UpdateContact(r.Context(), userID, id, &in)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, contact)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := s.recordScope(w, r, true)
	if !ok {
		return
	}
	if err := s.store.DeleteContact(r.Context(), userID, id); err != nil {
		s.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
