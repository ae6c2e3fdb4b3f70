package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jonathan/resume-builder/internal/llm"
)

// Environment variables read by ApplyEnv
const (
	EnvPort             = "PORT"
	EnvTemplate         = "RENDER_TEMPLATE"
	EnvLLMTimeout       = "LLM_TIMEOUT"
	EnvLLMMaxAttempts   = "LLM_MAX_ATTEMPTS"
	EnvDefaultSlot      = "LLM_DEFAULT_SLOT"
	EnvGeminiAPIKey     = "GEMINI_API_KEY"
	EnvOpenRouterAPIKey = "OPENROUTER_API_KEY"
)

// LookupFunc reads an environment variable; os.LookupEnv is the usual choice
type LookupFunc func(key string) (string, bool)

// slotEnv returns the variable name for one slot setting, e.g. API_2_KEY
func slotEnv(n int, setting string) string {
	return fmt.Sprintf("API_%d_%s", n, setting)
}

// ApplyEnv overrides the configuration with environment variables.
//
// Slots are read from API_<N>_PROVIDER, API_<N>_KEY, API_<N>_MODEL and
// API_<N>_BASE_URL for N in 1..5. A slot without its own key uses the
// provider-wide GEMINI_API_KEY or OPENROUTER_API_KEY. When no slot is
// configured at all, each provider-wide key becomes a slot of its own.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) string {
		value, _ := lookup(key)
		return strings.TrimSpace(value)
	}

	if v := get(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: %s is not a number: %q", EnvPort, v)
		}
		c.Port = port
	}
	if v := get(EnvTemplate); v != "" {
		c.Template = v
	}
	if v := get(EnvLLMTimeout); v != "" {
		c.LLMTimeout = v
	}
	if v := get(EnvLLMMaxAttempts); v != "" {
		attempts, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: %s is not a number: %q", EnvLLMMaxAttempts, v)
		}
		c.MaxAttempts = attempts
	}
	if v := get(EnvDefaultSlot); v != "" {
		c.DefaultSlot = v
	}

	for n := 1; n <= llm.MaxSlots; n++ {
		provider := get(slotEnv(n, "PROVIDER"))
		key := get(slotEnv(n, "KEY"))
		model := get(slotEnv(n, "MODEL"))
		baseURL := get(slotEnv(n, "BASE_URL"))
		if provider == "" && key == "" && model == "" && baseURL == "" {
			continue
		}

		slot := c.slotRef(llm.SlotName(n))
		if provider != "" {
			slot.Provider = llm.Provider(strings.ToLower(provider))
		} else if slot.Provider == "" {
			slot.Provider = llm.ProviderGemini
		}
		if key != "" {
			slot.APIKey = key
		}
		if model != "" {
			slot.Model = model
		}
		if baseURL != "" {
			slot.BaseURL = baseURL
		}
	}

	providerKeys := map[llm.Provider]string{
		llm.ProviderGemini:     get(EnvGeminiAPIKey),
		llm.ProviderOpenRouter: get(EnvOpenRouterAPIKey),
	}

	if len(c.Slots) == 0 {
		for _, provider := range []llm.Provider{llm.ProviderGemini, llm.ProviderOpenRouter} {
			if providerKeys[provider] == "" {
				continue
			}
			c.Slots = append(c.Slots, llm.Slot{
				Name:     llm.SlotName(len(c.Slots) + 1),
				Provider: provider,
			})
		}
	}

	for i := range c.Slots {
		if c.Slots[i].APIKey == "" {
			c.Slots[i].APIKey = providerKeys[c.Slots[i].Provider]
		}
	}
	llm.SortSlots(c.Slots)

	return nil
}

// slotRef returns the slot named name, adding it if absent
func (c *Config) slotRef(name string) *llm.Slot {
	for i := range c.Slots {
		if c.Slots[i].Name == name {
			return &c.Slots[i]
		}
	}
	c.Slots = append(c.Slots, llm.Slot{Name: name})
	return &c.Slots[len(c.Slots)-1]
}
