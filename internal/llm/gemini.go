package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GeminiClient implements Caller for Google Gemini. Its Success bodies are
// normalized into the ChatCompletion envelope.
type GeminiClient struct {
	client *genai.Client
	cfg    Config
	logger *slog.Logger
}

// NewGeminiClient creates a new Gemini client. Without an API key the client is
// created unconfigured and every Call returns ErrNotConfigured.
func NewGeminiClient(ctx context.Context, cfg *Config, logger *slog.Logger) (*GeminiClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &GeminiClient{cfg: *cfg, logger: logger}
	if !cfg.Configured() {
		return c, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

// Call sends the prompt once to Gemini and classifies the outcome.
func (c *GeminiClient) Call(ctx context.Context, p Prompt) (Result, error) {
	if c.client == nil {
		return nil, ErrNotConfigured
	}

	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(0.2)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(p.System)}}

	switch p.Format {
	case FormatJSONObject:
		model.ResponseMIMEType = "application/json"
	case FormatToolCall:
		if p.Tool != nil {
			params, err := geminiSchema(p.Tool.Parameters)
			if err != nil {
				return nil, fmt.Errorf("convert tool schema: %w", err)
			}
			model.Tools = []*genai.Tool{{
				FunctionDeclarations: []*genai.FunctionDeclaration{{
					Name:        p.Tool.Name,
					Description: p.Tool.Description,
					Parameters:  params,
				}},
			}}
			model.ToolConfig = &genai.ToolConfig{
				FunctionCallingConfig: &genai.FunctionCallingConfig{
					Mode:                 genai.FunctionCallingAny,
					AllowedFunctionNames: []string{p.Tool.Name},
				},
			}
		}
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := model.GenerateContent(callCtx, genai.Text(p.User))
	if err != nil {
		c.logger.WarnContext(ctx, "gemini call failed", "model", c.cfg.Model, "error", err)
		return classifyGeminiError(err), nil
	}

	completion, err := normalizeGeminiResponse(resp, c.cfg.Model)
	if err != nil {
		return UpstreamFailure{Status: http.StatusOK, Err: err}, nil
	}
	body, err := json.Marshal(completion)
	if err != nil {
		return nil, fmt.Errorf("marshal normalized response: %w", err)
	}
	return Success{Body: body}, nil
}

// callContext bounds one provider call by the configured timeout.
func (c *GeminiClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// classifyGeminiError maps a provider error onto the same status classification
// used for the gateway.
func classifyGeminiError(err error) Result {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code > 0 {
		return Classify(gerr.Code, gerr.Header, []byte(gerr.Body))
	}

	var aerr *apierror.APIError
	if errors.As(err, &aerr) {
		header := retryHeader(aerr)
		if code := aerr.HTTPCode(); code > 0 {
			return Classify(code, header, []byte(aerr.Error()))
		}
		if st := aerr.GRPCStatus(); st != nil {
			return Classify(httpStatusFromCode(st.Code()), header, []byte(st.Message()))
		}
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.OK {
		return Classify(httpStatusFromCode(st.Code()), nil, []byte(st.Message()))
	}

	return UpstreamFailure{Err: err}
}

// retryHeader turns a RetryInfo error detail into a Retry-After header.
func retryHeader(aerr *apierror.APIError) http.Header {
	info := aerr.Details().RetryInfo
	if info == nil || info.GetRetryDelay() == nil {
		return nil
	}
	secs := int(math.Ceil(info.GetRetryDelay().AsDuration().Seconds()))
	return http.Header{"Retry-After": []string{strconv.Itoa(secs)}}
}

func httpStatusFromCode(code codes.Code) int {
	switch code {
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// normalizeGeminiResponse converts the first candidate into a ChatCompletion.
func normalizeGeminiResponse(resp *genai.GenerateContentResponse, model string) (*ChatCompletion, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	msg := Message{Role: "assistant"}
	for _, part := range candidate.Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			msg.Content += string(v)
		case genai.FunctionCall:
			call, err := toolCall(v)
			if err != nil {
				return nil, err
			}
			msg.ToolCalls = append(msg.ToolCalls, call)
		case *genai.FunctionCall:
			call, err := toolCall(*v)
			if err != nil {
				return nil, err
			}
			msg.ToolCalls = append(msg.ToolCalls, call)
		}
	}

	return &ChatCompletion{
		Model:   model,
		Choices: []Choice{{Message: msg}},
	}, nil
}

func toolCall(fc genai.FunctionCall) (ToolCall, error) {
	args, err := json.Marshal(fc.Args)
	if err != nil {
		return ToolCall{}, fmt.Errorf("marshal function call args: %w", err)
	}
	return ToolCall{
		Type:     "function",
		Function: FunctionCall{Name: fc.Name, Arguments: string(args)},
	}, nil
}

// jsonSchema is the subset of JSON Schema the result schemas use.
type jsonSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Properties  map[string]*jsonSchema `json:"properties"`
	Items       *jsonSchema            `json:"items"`
	Required    []string               `json:"required"`
	Enum        []string               `json:"enum"`
}

func geminiSchema(raw json.RawMessage) (*genai.Schema, error) {
	var s jsonSchema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return s.toGenai(), nil
}

func (s *jsonSchema) toGenai() *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
		Enum:        s.Enum,
		Items:       s.Items.toGenai(),
	}
	switch s.Type {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.toGenai()
		}
	}
	return out
}
