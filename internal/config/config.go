// Package config resolves process configuration once at startup from the
// environment and an optional JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jobcoach/jobcoach/internal/llm"
)

// Config is the resolved server configuration. It is read-only after Load.
type Config struct {
	Port     int    `json:"port,omitempty"`
	LogLevel string `json:"log_level,omitempty"`

	// AI provider
	AIProvider   string        `json:"ai_provider,omitempty"`    // gateway or gemini
	AIGatewayURL string        `json:"ai_gateway_url,omitempty"` // OpenAI-compatible chat-completions URL
	AIAPIKey     string        `json:"-"`                        // never read from the file
	AIModel      string        `json:"ai_model,omitempty"`
	AITimeout    time.Duration `json:"-"`
	AITimeoutRaw string        `json:"ai_timeout,omitempty"` // e.g. "60s"

	// Persistence collaborator, optional
	DatabaseURL string `json:"database_url,omitempty"`
	JWTSecret   string `json:"-"`
}

// Defaults
const (
	DefaultPort     = 8080
	DefaultLogLevel = "info"
)

// LoadConfig reads a JSON config file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load resolves the configuration: environment variables win over the optional
// file at path, which wins over defaults. A missing AI credential is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		cfg.Port = port
	}
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.AIProvider, "AI_PROVIDER")
	setString(&cfg.AIGatewayURL, "AI_GATEWAY_URL")
	setString(&cfg.AIModel, "AI_MODEL")
	setString(&cfg.AITimeoutRaw, "AI_TIMEOUT")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.JWTSecret, "JWT_SECRET")

	cfg.applyDefaults()

	switch llm.Provider(cfg.AIProvider) {
	case llm.ProviderGemini:
		cfg.AIAPIKey = os.Getenv("GEMINI_API_KEY")
	default:
		cfg.AIAPIKey = os.Getenv("AI_GATEWAY_API_KEY")
	}

	timeout, err := time.ParseDuration(cfg.AITimeoutRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid AI_TIMEOUT: %v", err)
	}
	cfg.AITimeout = timeout

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.AIProvider == "" {
		c.AIProvider = string(llm.ProviderGateway)
	}
	if c.AIGatewayURL == "" {
		c.AIGatewayURL = llm.DefaultGatewayEndpoint
	}
	if c.AIModel == "" {
		if llm.Provider(c.AIProvider) == llm.ProviderGemini {
			c.AIModel = llm.DefaultGeminiModel
		} else {
			c.AIModel = llm.DefaultGatewayModel
		}
	}
	if c.AITimeoutRaw == "" {
		c.AITimeoutRaw = llm.DefaultTimeout.String()
	}
}

// Validate checks value ranges and cross-field requirements.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port must be between 1 and 65535, got %d", c.Port)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config error: unknown log level %q", c.LogLevel)
	}
	if c.DatabaseURL != "" && c.JWTSecret == "" {
		return fmt.Errorf("config error: JWT_SECRET is required when DATABASE_URL is set")
	}
	return c.LLM().Validate()
}

// LLM returns the provider configuration.
func (c *Config) LLM() *llm.Config {
	return &llm.Config{
		Provider: llm.Provider(c.AIProvider),
		APIKey:   c.AIAPIKey,
		Endpoint: c.AIGatewayURL,
		Model:    c.AIModel,
		Timeout:  c.AITimeout,
	}
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
