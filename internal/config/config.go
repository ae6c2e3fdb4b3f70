// Package config provides configuration loading and validation for the CLI and server.
// Settings come from an optional JSON file, then environment variables, then defaults.
// API keys are only ever read from the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

// Defaults applied by MergeWithDefaults(Default())
const (
	DefaultPort           = 8080
	DefaultLLMTimeout     = "2m"
	DefaultMaxUploadBytes = 10 << 20
)

// Config represents the settings shared by the CLI and the HTTP server.
// All fields are optional in the JSON file.
type Config struct {
	Port     int    `json:"port,omitempty" validate:"gte=0,lte=65535"`
	Template string `json:"template,omitempty"`

	// Slots are the provider credentials a request may select; keys come from the environment
	Slots []llm.Slot `json:"slots,omitempty"`

	// DefaultSlot is tried first when a request names no slot
	DefaultSlot string `json:"default_slot,omitempty"`

	// LLMTimeout is a Go duration, e.g. "90s"
	LLMTimeout string `json:"llm_timeout,omitempty"`

	// MaxAttempts is the number of calls per slot, retries included
	MaxAttempts int `json:"max_attempts,omitempty" validate:"gte=0,lte=10"`

	MaxUploadBytes int64 `json:"max_upload_bytes,omitempty" validate:"gte=0"`

	RenderingRules types.RenderingRules `json:"rendering_rules" validate:"-"`

	Verbose bool `json:"verbose,omitempty"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Port:           DefaultPort,
		Template:       rendering.DefaultTemplate,
		LLMTimeout:     DefaultLLMTimeout,
		MaxAttempts:    llm.DefaultRetryPolicy().MaxAttempts,
		MaxUploadBytes: DefaultMaxUploadBytes,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
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

// Load builds the effective configuration: the JSON file at path (optional),
// then the environment, then defaults. The result is validated.
func Load(path string, lookup LookupFunc) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	merged := cfg.MergeWithDefaults(Default())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Template != "" && !rendering.HasTemplate(c.Template) {
		return fmt.Errorf("config error: unknown template %q (available: %s)", c.Template, strings.Join(rendering.Templates(), ", "))
	}

	if c.LLMTimeout != "" {
		d, err := time.ParseDuration(c.LLMTimeout)
		if err != nil {
			return fmt.Errorf("config error: 'llm_timeout' is not a duration: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("config error: 'llm_timeout' must be non-negative")
		}
	}

	if err := c.RenderingRules.Validate(); err != nil {
		return fmt.Errorf("config error: invalid rendering_rules: %w", err)
	}

	seen := make(map[string]bool, len(c.Slots))
	for i := range c.Slots {
		slot := &c.Slots[i]
		if err := slot.Validate(); err != nil {
			return fmt.Errorf("config error: slot %d: %w", i+1, err)
		}
		if seen[slot.Name] {
			return fmt.Errorf("config error: slot %s is configured twice", slot.Name)
		}
		seen[slot.Name] = true
	}

	if c.DefaultSlot != "" && !seen[c.DefaultSlot] {
		return fmt.Errorf("config error: default_slot %q is not a configured slot", c.DefaultSlot)
	}

	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if len(result.Slots) == 0 {
		result.Slots = append([]llm.Slot(nil), defaults.Slots...)
	}
	if result.DefaultSlot == "" {
		result.DefaultSlot = defaults.DefaultSlot
	}
	if result.LLMTimeout == "" {
		result.LLMTimeout = defaults.LLMTimeout
	}
	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	result.RenderingRules = result.RenderingRules.Merge(defaults.RenderingRules)

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Timeout returns LLMTimeout as a duration, or 0 if it is unset or invalid
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.LLMTimeout)
	if err != nil {
		return 0
	}
	return d
}

// RetryPolicy returns the per-slot retry policy
func (c *Config) RetryPolicy() llm.RetryPolicy {
	policy := llm.DefaultRetryPolicy()
	if c.MaxAttempts > 0 {
		policy.MaxAttempts = c.MaxAttempts
	}
	return policy
}

// Slot returns the configured slot with the given name
func (c *Config) Slot(name string) (llm.Slot, bool) {
	for _, slot := range c.Slots {
		if slot.Name == name {
			return slot, true
		}
	}
	return llm.Slot{}, false
}

// Addr returns the server listen address
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
