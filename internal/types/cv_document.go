// Package types provides type definitions for structured data used throughout the resume-builder system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

const (
	// DefaultDateFormat is the display pattern the model is asked to emit dates in.
	DefaultDateFormat = "MMM YYYY"
	// DefaultTruncateDescriptionsAt caps description fields, in runes.
	DefaultTruncateDescriptionsAt = 600
)

// CVDocument is the normalized, section-keyed representation of a resume.
// It is built once per conversion from the model's JSON output and consumed by the renderer.
type CVDocument struct {
	Sections       Sections       `json:"sections"`
	Metadata       Metadata       `json:"metadata"`
	RenderingRules RenderingRules `json:"rendering_rules"`
}

// Metadata carries document-level hints that are not section content
type Metadata struct {
	SectionOrder  []string `json:"section_order,omitempty"`
	SchemaVersion string   `json:"schema_version,omitempty"`
}

// RenderingRules configures how the renderer treats the document.
// Pointer fields distinguish "unset" from an explicit zero/false.
type RenderingRules struct {
	DateFormat             string `json:"date_format,omitempty"`
	HideEmptySections      *bool  `json:"hide_empty_sections,omitempty"`
	MaxItemsPerSection     int    `json:"max_items_per_section,omitempty" validate:"gte=0"`
	TruncateDescriptionsAt *int   `json:"truncate_descriptions_at,omitempty" validate:"omitempty,gte=0"`
}

// Validate validates the RenderingRules using the validator.
func (r *RenderingRules) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Merge returns a copy of r with unset fields taken from fallback.
func (r RenderingRules) Merge(fallback RenderingRules) RenderingRules {
	result := r
	if result.DateFormat == "" {
		result.DateFormat = fallback.DateFormat
	}
	if result.HideEmptySections == nil {
		result.HideEmptySections = fallback.HideEmptySections
	}
	if result.MaxItemsPerSection == 0 {
		result.MaxItemsPerSection = fallback.MaxItemsPerSection
	}
	if result.TruncateDescriptionsAt == nil {
		result.TruncateDescriptionsAt = fallback.TruncateDescriptionsAt
	}
	return result
}

// WithDefaults fills every unset field with its documented default
func (r RenderingRules) WithDefaults() RenderingRules {
	hide := true
	truncate := DefaultTruncateDescriptionsAt
	return r.Merge(RenderingRules{
		DateFormat:             DefaultDateFormat,
		HideEmptySections:      &hide,
		TruncateDescriptionsAt: &truncate,
	})
}

// HideEmpty reports whether empty sections are omitted (default true)
func (r RenderingRules) HideEmpty() bool {
	return r.HideEmptySections == nil || *r.HideEmptySections
}

// TruncateAt returns the description cap in runes; 0 disables truncation.
func (r RenderingRules) TruncateAt() int {
	if r.TruncateDescriptionsAt == nil {
		return DefaultTruncateDescriptionsAt
	}
	return *r.TruncateDescriptionsAt
}

// Sections holds the raw payload of every section keyed by its type tag,
// remembering the order the keys appeared in the source JSON.
type Sections struct {
	keys []string
	raw  map[string]json.RawMessage
}

// NewSections creates an empty Sections collection
func NewSections() Sections {
	return Sections{raw: make(map[string]json.RawMessage)}
}

// Keys returns the section tags in insertion order
func (s Sections) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Len returns the number of sections
func (s Sections) Len() int {
	return len(s.keys)
}

// Raw returns the raw JSON payload for a section tag
func (s Sections) Raw(tag string) (json.RawMessage, bool) {
	raw, ok := s.raw[tag]
	return raw, ok
}

// Has reports whether a section tag is present
func (s Sections) Has(tag string) bool {
	_, ok := s.raw[tag]
	return ok
}

// Set stores a section payload, appending the tag if it is new.
func (s *Sections) Set(tag string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal section %s: %w", tag, err)
	}
	s.setRaw(tag, data)
	return nil
}

func (s *Sections) setRaw(tag string, data []byte) {
	if s.raw == nil {
		s.raw = make(map[string]json.RawMessage)
	}
	if _, exists := s.raw[tag]; !exists {
		s.keys = append(s.keys, tag)
	}
	s.raw[tag] = json.RawMessage(data)
}

// UnmarshalJSON decodes a JSON object while keeping its key order.
// encoding/json maps lose ordering, so the object is walked with gjson instead.
func (s *Sections) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("sections: invalid JSON")
	}
	result := gjson.ParseBytes(data)
	*s = NewSections()
	if result.Type == gjson.Null {
		return nil
	}
	if !result.IsObject() {
		return fmt.Errorf("sections: expected an object, got %s", describeJSON(result))
	}
	result.ForEach(func(key, value gjson.Result) bool {
		s.setRaw(key.String(), []byte(value.Raw))
		return true
	})
	return nil
}

// MarshalJSON encodes the sections in insertion order
func (s Sections) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteString("{")
	for i, key := range s.keys {
		if i > 0 {
			sb.WriteString(",")
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		sb.Write(name)
		sb.WriteString(":")
		sb.Write(s.raw[key])
	}
	sb.WriteString("}")
	return []byte(sb.String()), nil
}

// describeJSON names the JSON kind of a gjson result for error messages
func describeJSON(r gjson.Result) string {
	switch {
	case r.IsArray():
		return "array"
	case r.IsObject():
		return "object"
	default:
		return strings.ToLower(r.Type.String())
	}
}
