package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Tiers group endpoints that share one budget per client
const (
	TierConvert = "convert"
	TierRender  = "render"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path; a trailing "/" matches everything below it
	Method string        // HTTP method (GET, POST, etc.)
	Tier   string        // Shared bucket name; empty means the endpoint has its own
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

func (e *EndpointConfig) capacity() int {
	if e.Burst > 0 {
		return e.Burst
	}
	return e.Limit
}

func (e *EndpointConfig) refillRate() float64 {
	if e.Window <= 0 {
		return 0
	}
	return float64(e.Limit) / e.Window.Seconds()
}

// Environment variables read by LoadConfig
const (
	EnvEnabled         = "RATE_LIMIT_ENABLED"
	EnvDefaultLimit    = "RATE_LIMIT_DEFAULT_LIMIT"
	EnvDefaultWindow   = "RATE_LIMIT_DEFAULT_WINDOW"
	EnvConvertLimit    = "RATE_LIMIT_CONVERT_LIMIT"
	EnvCleanupInterval = "RATE_LIMIT_CLEANUP_INTERVAL"
	EnvWhitelist       = "RATE_LIMIT_WHITELIST"
	EnvBlacklist       = "RATE_LIMIT_BLACKLIST"
)

// DefaultConvertLimit is the hourly number of conversions allowed per client
const DefaultConvertLimit = 20

// LookupFunc reads an environment variable
type LookupFunc func(key string) (string, bool)

// LoadConfig loads rate limiting configuration from the environment.
// A nil lookup reads the process environment.
func LoadConfig(lookup LookupFunc) *Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := envReader{lookup: lookup}

	if !env.boolean(EnvEnabled, true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env.integer(EnvDefaultLimit, 1000),
		DefaultWindow:   env.duration(EnvDefaultWindow, time.Minute),
		CleanupInterval: env.duration(EnvCleanupInterval, 5*time.Minute),
		Whitelist:       parseIPList(env.str(EnvWhitelist, "")),
		Blacklist:       parseIPList(env.str(EnvBlacklist, "")),
		EndpointConfigs: DefaultEndpointConfigs(env.integer(EnvConvertLimit, DefaultConvertLimit)),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific configurations.
// convertLimit is the hourly limit for the conversion endpoints.
func DefaultEndpointConfigs(convertLimit int) []EndpointConfig {
	if convertLimit <= 0 {
		convertLimit = DefaultConvertLimit
	}
	convertBurst := max(convertLimit/10, 2)

	return []EndpointConfig{
		// Tier 1: model calls (strictest limits)
		{Path: "/convert", Method: "POST", Tier: TierConvert, Limit: convertLimit, Window: time.Hour, Burst: convertBurst},
		{Path: "/convert/stream", Method: "POST", Tier: TierConvert, Limit: convertLimit, Window: time.Hour, Burst: convertBurst},

		// Tier 2: local rendering (moderate limits)
		{Path: "/render", Method: "POST", Tier: TierRender, Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/render/raw", Method: "POST", Tier: TierRender, Limit: 120, Window: time.Minute, Burst: 20},

		// Tier 3: reads (schema, templates) - handled by default limit
		// Tier 4: health check (unlimited) - handled by special case in matcher
	}
}

type envReader struct {
	lookup LookupFunc
}

func (e envReader) str(key, defaultValue string) string {
	if value, ok := e.lookup(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func (e envReader) integer(key string, defaultValue int) int {
	if n, err := strconv.Atoi(e.str(key, "")); err == nil {
		return n
	}
	return defaultValue
}

func (e envReader) boolean(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(e.str(key, "")); err == nil {
		return b
	}
	return defaultValue
}

func (e envReader) duration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(e.str(key, "")); err == nil {
		return d
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
