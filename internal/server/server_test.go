package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jobcoach/jobcoach/internal/gateway"
	"github.com/jobcoach/jobcoach/internal/llm"
	"github.com/jobcoach/jobcoach/internal/server/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaller struct {
	result llm.Result
	err    error
	calls  int
}

func (f *fakeCaller) Call(_ context.Context, _ llm.Prompt) (llm.Result, error) {
	f.calls++
	return f.result, f.err
}

func contentResult(t *testing.T, content string) llm.Success {
	t.Helper()
	body, err := json.Marshal(llm.ChatCompletion{Choices: []llm.Choice{{
		Message: llm.Message{Role: "assistant", Content: content},
	}}})
	require.NoError(t, err)
	return llm.Success{Body: body}
}

func intPtr(v int) *int { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(caller llm.Caller, opts Options) http.Handler {
	opts.Adapter = gateway.New(caller, discardLogger())
	opts.Logger = discardLogger()
	return New(":0", opts).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, corsAllowHeaders, rec.Header().Get("Access-Control-Allow-Headers"))
}

const skillGapBody = `{"resume":"5 years Python","jobDescription":"Need 5 years Python"}`

func TestHandler_Preflight(t *testing.T) {
	caller := &fakeCaller{}
	h := newTestHandler(caller, Options{})

	rec := do(t, h, http.MethodOptions, "/v1/skill-gap", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assertCORS(t, rec)
	assert.Zero(t, caller.calls)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	caller := &fakeCaller{}
	h := newTestHandler(caller, Options{})

	rec := do(t, h, http.MethodGet, "/v1/skill-gap", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Allow"))
	assert.Equal(t, msgMethodNotAllowed, decodeBody(t, rec)["error"])
	assertCORS(t, rec)
	assert.Zero(t, caller.calls)
}

func TestHandler_SkillGapSuccess(t *testing.T) {
	caller := &fakeCaller{result: contentResult(t,
		"```json\n"+`{"matchScore":85,"strengths":["Python"],"gaps":["Cloud"],"recommendations":["Learn AWS"]}`+"\n```")}
	h := newTestHandler(caller, Options{})

	rec := do(t, h, http.MethodPost, "/v1/skill-gap", skillGapBody)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assertCORS(t, rec)
	analysis, ok := decodeBody(t, rec)["analysis"].(map[string]any)
	require.True(t, ok)
	score := analysis["matchScore"].(float64)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
	assert.NotEmpty(t, analysis["strengths"])
	assert.NotEmpty(t, analysis["gaps"])
	assert.NotEmpty(t, analysis["recommendations"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHandler_FencedResultWithSurroundingText(t *testing.T) {
	caller := &fakeCaller{result: contentResult(t,
		"Some text ```json\n"+`{"atsScore":72,"keywordInsights":["Go"],"suggestedRewrites":[],"overallFeedback":"Solid"}`+"\n``` trailing")}
	h := newTestHandler(caller, Options{})

	rec := do(t, h, http.MethodPost, "/v1/resume-optimization", `{"resume":"R","jobDescription":"J"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	optimization := decodeBody(t, rec)["optimization"].(map[string]any)
	assert.Equal(t, 72.0, optimization["atsScore"])
}

func TestHandler_InvalidInput(t *testing.T) {
	caller := &fakeCaller{}
	h := newTestHandler(caller, Options{})

	rec := do(t, h, http.MethodPost, "/v1/skill-gap", `{"resume":"R"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid input", body["error"])
	assert.Contains(t, body["details"], "jobDescription")
	assert.Zero(t, caller.calls)
}

func TestHandler_BodyTooLarge(t *testing.T) {
	caller := &fakeCaller{}
	h := newTestHandler(caller, Options{})

	big := `{"resume":"` + strings.Repeat("a", maxBodyBytes) + `","jobDescription":"J"}`
	rec := do(t, h, http.MethodPost, "/v1/skill-gap", big)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid input", decodeBody(t, rec)["error"])
	assert.Zero(t, caller.calls)
}

func TestHandler_UpstreamOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		result     llm.Result
		err        error
		wantStatus int
		wantError  string
		wantRetry  any
		wantHeader string
		checkRetry bool
	}{
		{
			name:       "rate limited with hint",
			result:     llm.RateLimited{RetryAfterSeconds: intPtr(45)},
			wantStatus: http.StatusTooManyRequests,
			wantError:  msgRateLimited,
			wantRetry:  45.0,
			wantHeader: "45",
			checkRetry: true,
		},
		{
			name:       "rate limited without hint",
			result:     llm.RateLimited{},
			wantStatus: http.StatusTooManyRequests,
			wantError:  msgRateLimited,
			wantRetry:  nil,
			checkRetry: true,
		},
		{
			name:       "payment required",
			result:     llm.PaymentRequired{},
			wantStatus: http.StatusPaymentRequired,
			wantError:  msgPaymentRequired,
		},
		{
			name:       "upstream failure",
			result:     llm.UpstreamFailure{Status: 503, Body: []byte("provider internals")},
			wantStatus: http.StatusInternalServerError,
			wantError:  msgUpstream,
		},
		{
			name:       "not configured",
			err:        llm.ErrNotConfigured,
			wantStatus: http.StatusInternalServerError,
			wantError:  msgNotConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := &fakeCaller{result: tt.result, err: tt.err}
			h := newTestHandler(caller, Options{})

			rec := do(t, h, http.MethodPost, "/v1/skill-gap", skillGapBody)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assertCORS(t, rec)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantError, body["error"])
			assert.NotContains(t, rec.Body.String(), "provider internals")
			if tt.checkRetry {
				retry, present := body["retryAfter"]
				assert.True(t, present)
				assert.Equal(t, tt.wantRetry, retry)
			}
			assert.Equal(t, tt.wantHeader, rec.Header().Get("Retry-After"))
			assert.Equal(t, 1, caller.calls)
		})
	}
}

func TestHandler_UnparsableResult(t *testing.T) {
	caller := &fakeCaller{result: contentResult(t, "I cannot help with that.")}
	h := newTestHandler(caller, Options{})

	rec := do(t, h, http.MethodPost, "/v1/skill-gap", skillGapBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgParseFailed, decodeBody(t, rec)["error"])
}

func TestHandler_Health(t *testing.T) {
	h := newTestHandler(&fakeCaller{}, Options{})

	rec := do(t, h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestHandler_UnknownRoute(t *testing.T) {
	h := newTestHandler(&fakeCaller{}, Options{})

	rec := do(t, h, http.MethodPost, "/v1/horoscope", "{}")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, msgNotFound, decodeBody(t, rec)["error"])
}

func TestHandler_RecordRoutesNotMountedWithoutStore(t *testing.T) {
	h := newTestHandler(&fakeCaller{}, Options{})

	rec := do(t, h, http.MethodGet, "/v1/applications", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_InboundRateLimit(t *testing.T) {
	cfg := ratelimit.DefaultConfig()
	cfg.CleanupInterval = 0
	cfg.Endpoints = []ratelimit.EndpointConfig{
		{Path: "/v1/skill-gap", Method: http.MethodPost, Limit: 1, Window: time.Hour, Burst: 1},
	}
	limiter := ratelimit.NewLimiter(cfg)
	defer limiter.Stop()

	caller := &fakeCaller{result: contentResult(t,
		`{"matchScore":50,"strengths":["a"],"gaps":["b"],"recommendations":["c"]}`)}
	h := newTestHandler(caller, Options{Limiter: limiter})

	first := do(t, h, http.MethodPost, "/v1/skill-gap", skillGapBody)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	second := do(t, h, http.MethodPost, "/v1/skill-gap", skillGapBody)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assertCORS(t, second)
	body := decodeBody(t, second)
	assert.Equal(t, msgRateLimited, body["error"])
	assert.Greater(t, body["retryAfter"], 0.0)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Equal(t, 1, caller.calls)

	preflight := do(t, h, http.MethodOptions, "/v1/skill-gap", "")
	assert.Equal(t, http.StatusNoContent, preflight.Code)
}

func TestHandler_RequestIDPropagated(t *testing.T) {
	h := newTestHandler(&fakeCaller{}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "3f1c6a8e-0f5e-4f57-9c1b-0c8f2f3d9a11")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "3f1c6a8e-0f5e-4f57-9c1b-0c8f2f3d9a11", rec.Header().Get("X-Request-ID"))
}

func TestJSONResponse(t *testing.T) {
	s := New(":0", Options{Logger: discardLogger()})
	rec := httptest.NewRecorder()

	s.jsonResponse(rec, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, strings.TrimSpace(rec.Body.String()))
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := New("127.0.0.1:0", Options{Logger: discardLogger()})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	require.NoError(t, <-done)
}
