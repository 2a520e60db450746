package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ErrNotConfigured is returned by every Caller when no credential was configured.
var ErrNotConfigured = errors.New("AI service is not configured")

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 10 << 20

// OutputFormat tells the provider how the model should shape its answer.
type OutputFormat int

// Output formats
const (
	// FormatText lets the model answer in prose (JSON may be fenced inside it)
	FormatText OutputFormat = iota
	// FormatJSONObject asks for a bare JSON document
	FormatJSONObject
	// FormatToolCall forces a single function call whose arguments carry the result
	FormatToolCall
)

// Tool describes the function the model must call in FormatToolCall.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON Schema of the arguments
}

// Prompt is one fully rendered upstream request.
type Prompt struct {
	System string
	User   string
	Format OutputFormat
	Tool   *Tool
}

// Caller makes exactly one upstream call and classifies the outcome.
// Transport failures are reported as UpstreamFailure, not as an error; the error
// return is reserved for ErrNotConfigured and requests that could not be built.
type Caller interface {
	Call(ctx context.Context, p Prompt) (Result, error)
}

// NewCaller creates the Caller for the configured provider.
func NewCaller(ctx context.Context, cfg *Config, logger *slog.Logger) (Caller, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg, logger)
	default:
		return NewGatewayClient(&http.Client{Timeout: cfg.Timeout}, cfg, logger), nil
	}
}

// GatewayClient implements Caller against an OpenAI-compatible chat-completions endpoint.
type GatewayClient struct {
	httpClient *http.Client
	cfg        Config
	logger     *slog.Logger
}

// NewGatewayClient creates a gateway client. cfg is copied and never mutated.
func NewGatewayClient(httpClient *http.Client, cfg *Config, logger *slog.Logger) *GatewayClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &GatewayClient{
		httpClient: httpClient,
		cfg:        *cfg,
		logger:     logger,
	}
}

// Call sends the prompt once. There are no retries; retry policy belongs to the caller.
func (c *GatewayClient) Call(ctx context.Context, p Prompt) (Result, error) {
	if !c.cfg.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(c.buildRequest(p))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "upstream call failed", "endpoint", c.cfg.Endpoint, "error", err)
		return UpstreamFailure{Err: fmt.Errorf("http call: %w", err)}, nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return UpstreamFailure{Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}, nil
	}

	return Classify(resp.StatusCode, resp.Header, respBody), nil
}

func (c *GatewayClient) buildRequest(p Prompt) chatRequest {
	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []Message{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
		Temperature: 0.2,
	}

	switch p.Format {
	case FormatJSONObject:
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	case FormatToolCall:
		if p.Tool != nil {
			req.Tools = []toolSpec{{
				Type: "function",
				Function: functionSpec{
					Name:        p.Tool.Name,
					Description: p.Tool.Description,
					Parameters:  p.Tool.Parameters,
				},
			}}
			choice := &toolChoice{Type: "function"}
			choice.Function.Name = p.Tool.Name
			req.ToolChoice = choice
		}
	}

	return req
}
