// Package client is a typed HTTP client for the jobcoach adapter endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jobcoach/jobcoach/internal/countdown"
	"github.com/jobcoach/jobcoach/internal/gateway"
	"github.com/jobcoach/jobcoach/internal/types"
)

// InvalidInputError is a 400 from the server.
type InvalidInputError struct {
	Details string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Details
}

// APIError is any other non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type errorBody struct {
	Error      string `json:"error"`
	Details    string `json:"details"`
	RetryAfter *int   `json:"retryAfter"`
}

// Client calls the adapter endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run posts a raw request to the use-case endpoint and returns the result
// found under the use case's key.
func (c *Client) Run(ctx context.Context, uc types.UseCase, req any) (json.RawMessage, error) {
	def, err := gateway.Lookup(uc)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/"+string(uc), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", uc, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, respBody)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	result, ok := envelope[def.ResultKey]
	if !ok {
		return nil, fmt.Errorf("response is missing %q", def.ResultKey)
	}
	return result, nil
}

func decodeError(status int, body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.Error == "" {
		eb.Error = http.StatusText(status)
	}

	switch status {
	case http.StatusTooManyRequests:
		return &countdown.RateLimitedError{Message: eb.Error, RetryAfter: eb.RetryAfter}
	case http.StatusPaymentRequired:
		return &countdown.PaymentRequiredError{Message: eb.Error}
	case http.StatusBadRequest:
		return &InvalidInputError{Details: eb.Details}
	default:
		return &APIError{Status: status, Message: eb.Error}
	}
}

func call[T any](ctx context.Context, c *Client, uc types.UseCase, req any) (*T, error) {
	raw, err := c.Run(ctx, uc, req)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s result: %w", uc, err)
	}
	return &out, nil
}

// SkillGap calls POST /v1/skill-gap.
func (c *Client) SkillGap(ctx context.Context, req *types.SkillGapRequest) (*types.SkillGapAnalysis, error) {
	return call[types.SkillGapAnalysis](ctx, c, types.UseCaseSkillGap, req)
}

// ResumeOptimization calls POST /v1/resume-optimization.
func (c *Client) ResumeOptimization(ctx context.Context, req *types.ResumeOptimizationRequest) (*types.ResumeOptimization, error) {
	return call[types.ResumeOptimization](ctx, c, types.UseCaseResumeOptimization, req)
}

// CoverLetter calls POST /v1/cover-letter.
func (c *Client) CoverLetter(ctx context.Context, req *types.CoverLetterRequest) (*types.CoverLetter, error) {
	return call[types.CoverLetter](ctx, c, types.UseCaseCoverLetter, req)
}

// InterviewQuestions calls POST /v1/interview-questions.
func (c *Client) InterviewQuestions(ctx context.Context, req *types.InterviewQuestionsRequest) (*types.InterviewQuestions, error) {
	return call[types.InterviewQuestions](ctx, c, types.UseCaseInterviewQuestions, req)
}

// ApplicationInsight calls POST /v1/application-insight.
func (c *Client) ApplicationInsight(ctx context.Context, req *types.ApplicationInsightRequest) (*types.ApplicationInsight, error) {
	return call[types.ApplicationInsight](ctx, c, types.UseCaseApplicationInsight, req)
}

// NetworkingTip calls POST /v1/networking-tip.
func (c *Client) NetworkingTip(ctx context.Context, req *types.NetworkingTipRequest) (*types.NetworkingTip, error) {
	return call[types.NetworkingTip](ctx, c, types.UseCaseNetworkingTip, req)
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Message: "unhealthy"}
	}
	return nil
}
