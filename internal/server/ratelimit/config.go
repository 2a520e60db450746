package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration // buckets unused for this long are dropped
	Allowlist       map[string]bool
	Blocklist       map[string]bool
	Endpoints       []EndpointConfig
}

// EndpointConfig is the limit for one route. Paths ending in "/" match by prefix.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per Window
	Window time.Duration
	Burst  int // bucket capacity, Limit if 0
}

// DefaultConfig returns the limits used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Allowlist:       map[string]bool{},
		Blocklist:       map[string]bool{},
		Endpoints:       DefaultEndpointConfigs(),
	}
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	cfg := DefaultConfig()
	cfg.Enabled = getEnvBool("RATE_LIMIT_ENABLED", true)
	if !cfg.Enabled {
		return cfg
	}

	cfg.DefaultLimit = getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.DefaultWindow = getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow)
	cfg.CleanupInterval = getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.Allowlist = parseIPList(os.Getenv("RATE_LIMIT_ALLOWLIST"))
	cfg.Blocklist = parseIPList(os.Getenv("RATE_LIMIT_BLOCKLIST"))

	aiLimit := getEnvInt("RATE_LIMIT_AI_LIMIT", 0)
	aiWindow := getEnvDuration("RATE_LIMIT_AI_WINDOW", 0)
	for i := range cfg.Endpoints {
		if !isAIEndpoint(cfg.Endpoints[i].Path) {
			continue
		}
		if aiLimit > 0 {
			cfg.Endpoints[i].Limit = aiLimit
		}
		if aiWindow > 0 {
			cfg.Endpoints[i].Window = aiWindow
		}
	}
	return cfg
}

// aiEndpoints are the routes that cost an upstream model call.
var aiEndpoints = []string{
	"/v1/skill-gap",
	"/v1/resume-optimization",
	"/v1/cover-letter",
	"/v1/interview-questions",
	"/v1/application-insight",
	"/v1/networking-tip",
}

func isAIEndpoint(path string) bool {
	for _, p := range aiEndpoints {
		if p == path {
			return true
		}
	}
	return false
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	configs := make([]EndpointConfig, 0, len(aiEndpoints)+6)

	// Model calls are the expensive tier
	for _, p := range aiEndpoints {
		configs = append(configs, EndpointConfig{Path: p, Method: "POST", Limit: 30, Window: time.Hour, Burst: 5})
	}

	// Record writes
	for _, p := range []string{"/v1/applications", "/v1/contacts"} {
		configs = append(configs,
			EndpointConfig{Path: p, Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
			EndpointConfig{Path: p + "/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
			EndpointConfig{Path: p + "/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		)
	}
	return configs
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
