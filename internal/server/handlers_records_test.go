package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jobcoach/jobcoach/internal/config"
	"github.com/jobcoach/jobcoach/internal/db"
	"github.com/jobcoach/jobcoach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store keyed by owner.
type memStore struct {
	apps     map[uuid.UUID]types.Application
	contacts map[uuid.UUID]types.Contact
	panicOn  string
}

func newMemStore() *memStore {
	return &memStore{
		apps:     map[uuid.UUID]types.Application{},
		contacts: map[uuid.UUID]types.Contact{},
	}
}

func (m *memStore) ListApplications(_ context.Context, userID uuid.UUID) ([]types.Application, error) {
	if m.panicOn == "ListApplications" {
		panic("store exploded")
	}
	out := []types.Application{}
	for _, a := range m.apps {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) GetApplication(_ context.Context, userID, id uuid.UUID) (*types.Application, error) {
	a, ok := m.apps[id]
	if !ok || a.UserID != userID {
		return nil, db.ErrNotFound
	}
	return &a, nil
}

func (m *memStore) CreateApplication(_ context.Context, userID uuid.UUID, in *types.ApplicationInput) (*types.Application, error) {
	now := time.Now()
	a := types.Application{
		ID: uuid.New(), UserID: userID,
		Company: in.Company, Position: in.Position, Status: in.Status,
		JobURL: in.JobURL, Notes: in.Notes, AppliedDate: in.AppliedDate,
		CreatedAt: now, UpdatedAt: now,
	}
	m.apps[a.ID] = a
	return &a, nil
}

func (m *memStore) UpdateApplication(ctx context.Context, userID, id uuid.UUID, in *types.ApplicationInput) (*types.Application, error) {
	a, err := m.GetApplication(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	a.Company, a.Position, a.Status = in.Company, in.Position, in.Status
	a.JobURL, a.Notes, a.AppliedDate = in.JobURL, in.Notes, in.AppliedDate
	a.UpdatedAt = time.Now()
	m.apps[id] = *a
	return a, nil
}

func (m *memStore) DeleteApplication(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := m.GetApplication(ctx, userID, id); err != nil {
		return err
	}
	delete(m.apps, id)
	return nil
}

func (m *memStore) ListContacts(_ context.Context, userID uuid.UUID) ([]types.Contact, error) {
	out := []types.Contact{}
	for _, c := range m.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) GetContact(_ context.Context, userID, id uuid.UUID) (*types.Contact, error) {
	c, ok := m.contacts[id]
	if !ok || c.UserID != userID {
		return nil, db.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) CreateContact(_ context.Context, userID uuid.UUID, in *types.ContactInput) (*types.Contact, error) {
	now := time.Now()
	c := types.Contact{
		ID: uuid.New(), UserID: userID, Name: in.Name,
		Company: in.Company, Role: in.Role, Email: in.Email,
		LinkedInURL: in.LinkedInURL, Notes: in.Notes, LastInteraction: in.LastInteraction,
		CreatedAt: now, UpdatedAt: now,
	}
	m.contacts[c.ID] = c
	return &c, nil
}

func (m *memStore) UpdateContact(ctx context.Context, userID, id uuid.UUID, in *types.ContactInput) (*types.Contact, error) {
	c, err := m.GetContact(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	c.Name, c.Company, c.Role, c.Email = in.Name, in.Company, in.Role, in.Email
	c.LinkedInURL, c.Notes, c.LastInteraction = in.LinkedInURL, in.Notes, in.LastInteraction
	c.UpdatedAt = time.Now()
	m.contacts[id] = *c
	return c, nil
}

func (m *memStore) DeleteContact(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := m.GetContact(ctx, userID, id); err != nil {
		return err
	}
	delete(m.contacts, id)
	return nil
}

const testSecret = "test-secret-that-is-at-least-32-characters"

type recordsFixture struct {
	handler http.Handler
	store   *memStore
	jwt     *JWTService
}

func newRecordsFixture(t *testing.T) *recordsFixture {
	t.Helper()
	jwtService := NewJWTService(&config.JWTConfig{Secret: testSecret, ExpirationHours: 1})
	store := newMemStore()
	h := newTestHandler(&fakeCaller{}, Options{Store: store, Tokens: jwtService.AsTokenValidator()})
	return &recordsFixture{handler: h, store: store, jwt: jwtService}
}

func (f *recordsFixture) do(t *testing.T, userID uuid.UUID, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := f.jwt.GenerateToken(userID)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRecords_RequireToken(t *testing.T) {
	f := newRecordsFixture(t)

	for _, path := range []string{"/v1/applications", "/v1/contacts"} {
		rec := do(t, f.handler, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "Unauthorized", decodeBody(t, rec)["error"])
		assertCORS(t, rec)
	}
}

func TestRecords_ApplicationLifecycle(t *testing.T) {
	f := newRecordsFixture(t)
	owner := uuid.New()

	created := f.do(t, owner, http.MethodPost, "/v1/applications",
		`{"company":"  Acme ","position":"SRE","status":"applied","applied_date":"2026-10-01T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	body := decodeBody(t, created)
	assert.Equal(t, "Acme", body["company"])
	id := body["id"].(string)

	list := f.do(t, owner, http.MethodGet, "/v1/applications", "")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Len(t, decodeBody(t, list)["applications"], 1)

	other := f.do(t, uuid.New(), http.MethodGet, "/v1/applications/"+id, "")
	assert.Equal(t, http.StatusNotFound, other.Code)

	updated := f.do(t, owner, http.MethodPut, "/v1/applications/"+id,
		`{"company":"Acme","position":"SRE","status":"interviewing"}`)
	require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
	assert.Equal(t, "interviewing", decodeBody(t, updated)["status"])

	deleted := f.do(t, owner, http.MethodDelete, "/v1/applications/"+id, "")
	assert.Equal(t, http.StatusNoContent, deleted.Code)

	missing := f.do(t, owner, http.MethodGet, "/v1/applications/"+id, "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestRecords_ApplicationValidation(t *testing.T) {
	f := newRecordsFixture(t)

	rec := f.do(t, uuid.New(), http.MethodPost, "/v1/applications", `{"company":"Acme","status":"ghosted"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid input", body["error"])
	assert.Contains(t, body["details"], "position")
	assert.Contains(t, body["details"], "status")
	assert.Empty(t, f.store.apps)
}

func TestRecords_BadID(t *testing.T) {
	f := newRecordsFixture(t)

	rec := f.do(t, uuid.New(), http.MethodGet, "/v1/contacts/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["details"], "id")
}

func TestRecords_ContactLifecycle(t *testing.T) {
	f := newRecordsFixture(t)
	owner := uuid.New()

	created := f.do(t, owner, http.MethodPost, "/v1/contacts",
		`{"name":"Dana","company":"Acme","email":"dana@example.com"}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	id := decodeBody(t, created)["id"].(string)

	badEmail := f.do(t, owner, http.MethodPut, "/v1/contacts/"+id, `{"name":"Dana","email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, badEmail.Code)

	updated := f.do(t, owner, http.MethodPut, "/v1/contacts/"+id, `{"name":"Dana R","role":"Recruiter"}`)
	require.Equal(t, http.StatusOK, updated.Code)
	assert.Equal(t, "Recruiter", decodeBody(t, updated)["role"])

	list := f.do(t, owner, http.MethodGet, "/v1/contacts", "")
	assert.Len(t, decodeBody(t, list)["contacts"], 1)

	assert.Equal(t, http.StatusNoContent, f.do(t, owner, http.MethodDelete, "/v1/contacts/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, owner, http.MethodDelete, "/v1/contacts/"+id, "").Code)
}

func TestRecords_PanicRecovered(t *testing.T) {
	f := newRecordsFixture(t)
	f.store.panicOn = "ListApplications"

	rec := f.do(t, uuid.New(), http.MethodGet, "/v1/applications", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgUpstream, decodeBody(t, rec)["error"])
	assertCORS(t, rec)
}
