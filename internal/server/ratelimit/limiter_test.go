package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(cfg *Config) (*Limiter, *clock) {
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	l.now = c.now
	return l, c
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l, _ := newTestLimiter(DefaultConfig())
	defer l.Stop()

	for i := 0; i < 5; i++ {
		d := l.Allow("10.0.0.1", "/v1/skill-gap", "POST")
		require.True(t, d.Allowed, "request %d", i+1)
		assert.Equal(t, 30, d.Limit)
	}

	d := l.Allow("10.0.0.1", "/v1/skill-gap", "POST")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	// 30 per hour refills one token every 120s
	assert.Equal(t, 120, d.RetryAfterSeconds())
	assert.True(t, d.ResetTime.After(time.Unix(1_700_000_000, 0)))
}

func TestLimiter_Refill(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Endpoints = []EndpointConfig{{Path: "/v1/cover-letter", Method: "POST", Limit: 60, Window: time.Minute, Burst: 1}}
	l, c := newTestLimiter(cfg)
	defer l.Stop()

	require.True(t, l.Allow("a", "/v1/cover-letter", "POST").Allowed)
	require.False(t, l.Allow("a", "/v1/cover-letter", "POST").Allowed)

	c.advance(time.Second)
	assert.True(t, l.Allow("a", "/v1/cover-letter", "POST").Allowed)
}

func TestLimiter_ClientsAndEndpointsAreIndependent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Endpoints = []EndpointConfig{{Path: "/v1/skill-gap", Method: "POST", Limit: 1, Window: time.Hour, Burst: 1}}
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	assert.True(t, l.Allow("a", "/v1/skill-gap", "POST").Allowed)
	assert.False(t, l.Allow("a", "/v1/skill-gap", "POST").Allowed)
	assert.True(t, l.Allow("b", "/v1/skill-gap", "POST").Allowed)
	assert.True(t, l.Allow("a", "/v1/networking-tip", "POST").Allowed)
}

func TestLimiter_PrefixSharesBucket(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Endpoints = []EndpointConfig{{Path: "/v1/contacts/", Method: "DELETE", Limit: 1, Window: time.Hour, Burst: 1}}
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	assert.True(t, l.Allow("a", "/v1/contacts/1", "DELETE").Allowed)
	assert.False(t, l.Allow("a", "/v1/contacts/2", "DELETE").Allowed)
}

func TestLimiter_AllowAndBlockLists(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Allowlist = map[string]bool{"trusted": true}
	cfg.Blocklist = map[string]bool{"bad": true}
	cfg.Endpoints = []EndpointConfig{{Path: "/v1/skill-gap", Method: "POST", Limit: 1, Window: time.Hour, Burst: 1}}
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("trusted", "/v1/skill-gap", "POST").Allowed)
	}
	d := l.Allow("bad", "/health", "GET")
	assert.False(t, d.Allowed)
	assert.GreaterOrEqual(t, d.RetryAfterSeconds(), 1)
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("a", "/v1/skill-gap", "POST").Allowed)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultLimit = 1
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("a", "/health", "GET").Allowed)
		assert.True(t, l.Allow("a", "/v1/skill-gap", "OPTIONS").Allowed)
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	l, c := newTestLimiter(DefaultConfig())
	defer l.Stop()

	l.Allow("a", "/v1/skill-gap", "POST")
	require.Len(t, l.buckets, 1)

	c.advance(30 * time.Minute)
	l.cleanup()
	assert.Len(t, l.buckets, 1)

	c.advance(31 * time.Minute)
	l.cleanup()
	assert.Empty(t, l.buckets)
}

func TestLimiter_Concurrent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Endpoints = []EndpointConfig{{Path: "/v1/skill-gap", Method: "POST", Limit: 50, Window: time.Hour, Burst: 50}}
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("a", "/v1/skill-gap", "POST").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestStopIsIdempotent(t *testing.T) {
	l := NewLimiter(nil)
	l.Stop()
	l.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	ep := MatchEndpoint("/v1/resume-optimization", "POST", configs)
	require.NotNil(t, ep)
	assert.Equal(t, 30, ep.Limit)

	ep = MatchEndpoint("/v1/applications/123", "PUT", configs)
	require.NotNil(t, ep)
	assert.Equal(t, "/v1/applications/", ep.Path)

	assert.Nil(t, MatchEndpoint("/v1/applications", "GET", configs))
	assert.Equal(t, 0, MatchEndpoint("/health", "GET", configs).Limit)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_AI_LIMIT", "5")
	t.Setenv("RATE_LIMIT_AI_WINDOW", "10m")
	t.Setenv("RATE_LIMIT_ALLOWLIST", "127.0.0.1, 10.0.0.1")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 600, cfg.DefaultLimit)
	assert.True(t, cfg.Allowlist["10.0.0.1"])

	ep := MatchEndpoint("/v1/cover-letter", "POST", cfg.Endpoints)
	require.NotNil(t, ep)
	assert.Equal(t, 5, ep.Limit)
	assert.Equal(t, 10*time.Minute, ep.Window)

	ep = MatchEndpoint("/v1/contacts", "POST", cfg.Endpoints)
	require.NotNil(t, ep)
	assert.Equal(t, 100, ep.Limit)
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
