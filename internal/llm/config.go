// Package llm provides the LLM provider clients used to structure resume text,
// the provider slot configuration and deterministic fallback across slots.
package llm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenRouter is the OpenRouter provider (OpenAI-compatible API)
	ProviderOpenRouter Provider = "openrouter"
)

const (
	// MaxSlots is the number of provider slots a deployment may configure
	MaxSlots = 5
	// slotPrefix prefixes every slot name: api_1 .. api_5
	slotPrefix = "api_"

	// DefaultGeminiModel is used by Gemini slots without an explicit model
	DefaultGeminiModel = "gemini-2.5-flash"
	// DefaultOpenRouterModel is used by OpenRouter slots without an explicit model
	DefaultOpenRouterModel = "google/gemini-2.5-flash"
	// DefaultOpenRouterBaseURL is the OpenRouter API root
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// Slot is one configured provider credential the caller can select
type Slot struct {
	Name     string   `json:"name" validate:"required"`
	Provider Provider `json:"provider" validate:"required,oneof=gemini openrouter"`
	APIKey   string   `json:"-"`
	Model    string   `json:"model,omitempty"`
	BaseURL  string   `json:"base_url,omitempty" validate:"omitempty,url"`
}

// Validate validates the slot using the validator
func (s *Slot) Validate() error {
	if !ValidSlotName(s.Name) {
		return fmt.Errorf("invalid slot name %q: expected %s1 to %s%d", s.Name, slotPrefix, slotPrefix, MaxSlots)
	}
	validate := validator.New()
	return validate.Struct(s)
}

// ModelName returns the configured model or the provider default
func (s Slot) ModelName() string {
	if s.Model != "" {
		return s.Model
	}
	switch s.Provider {
	case ProviderOpenRouter:
		return DefaultOpenRouterModel
	default:
		return DefaultGeminiModel
	}
}

// SlotName returns the name of the n-th slot (1-based)
func SlotName(n int) string {
	return slotPrefix + strconv.Itoa(n)
}

// ValidSlotName reports whether name is one of api_1 .. api_5
func ValidSlotName(name string) bool {
	n := slotNumber(name)
	return n >= 1 && n <= MaxSlots
}

// slotNumber returns the numeric suffix of a slot name, or 0
func slotNumber(name string) int {
	rest, ok := strings.CutPrefix(name, slotPrefix)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0
	}
	return n
}

// SortSlots orders slots by their numeric suffix, api_1 first
func SortSlots(slots []Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slotNumber(slots[i].Name) < slotNumber(slots[j].Name)
	})
}
