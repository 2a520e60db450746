// Package llm wraps the upstream AI provider: it builds exactly one outbound call per
// request and classifies the response into a Result.
package llm

import (
	"fmt"
	"time"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGateway is any OpenAI-compatible chat-completions endpoint
	ProviderGateway Provider = "gateway"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// Defaults used when the environment leaves a value unset.
const (
	DefaultGatewayEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	DefaultGatewayModel    = "google/gemini-2.5-flash"
	DefaultGeminiModel     = "gemini-2.5-flash"
	DefaultTimeout         = 60 * time.Second
)

// Config is the read-only provider configuration resolved once at startup.
type Config struct {
	Provider Provider
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// DefaultConfig returns the default gateway configuration without a credential.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGateway,
		Endpoint: DefaultGatewayEndpoint,
		Model:    DefaultGatewayModel,
		Timeout:  DefaultTimeout,
	}
}

// Configured reports whether a credential is present.
func (c *Config) Configured() bool {
	return c != nil && c.APIKey != ""
}

// Validate checks the non-secret fields. A missing API key is not an error here;
// callers report it per request as ErrNotConfigured.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGateway:
		if c.Endpoint == "" {
			return fmt.Errorf("llm config: endpoint is required for provider %s", c.Provider)
		}
	case ProviderGemini:
	default:
		return fmt.Errorf("llm config: unknown provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("llm config: model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("llm config: timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// WithModel returns a copy of the config using model.
func (c *Config) WithModel(model string) *Config {
	cp := *c
	cp.Model = model
	return &cp
}
