package rendering

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// SectionContext is what a section renderer knows about its invocation
type SectionContext struct {
	// Tag is the section key as it appeared in the document
	Tag string
	// Rules are the effective rendering rules, defaults already applied
	Rules types.RenderingRules
}

// Fragment is the rendered output of one section.
// Title is already escaped; Body is empty when the section has nothing to show.
type Fragment struct {
	Title string
	Body  string
}

// IsEmpty reports whether the fragment has no body
func (f Fragment) IsEmpty() bool {
	return strings.TrimSpace(f.Body) == ""
}

// SectionRenderer turns the raw JSON of one section into a fragment
type SectionRenderer interface {
	RenderSection(raw json.RawMessage, ctx SectionContext) (Fragment, error)
}

// RenderFunc adapts a function to SectionRenderer
type RenderFunc func(raw json.RawMessage, ctx SectionContext) (Fragment, error)

// RenderSection implements SectionRenderer
func (f RenderFunc) RenderSection(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	return f(raw, ctx)
}

// Registry maps section type tags to their renderers.
// A Registry is not safe for concurrent registration; once built it may be
// shared by any number of concurrent renders.
type Registry struct {
	renderers map[string]SectionRenderer
	aliases   map[string]string
	prefixes  map[string]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]SectionRenderer),
		aliases:   make(map[string]string),
		prefixes:  make(map[string]string),
	}
}

// Register adds or replaces the renderer for a canonical section type
func (r *Registry) Register(sectionType string, renderer SectionRenderer) {
	r.renderers[normalizeTag(sectionType)] = renderer
}

// Alias makes alias resolve to the canonical section type
func (r *Registry) Alias(alias, sectionType string) {
	r.aliases[normalizeTag(alias)] = normalizeTag(sectionType)
}

// AliasPrefix makes every tag beginning with prefix resolve to sectionType
func (r *Registry) AliasPrefix(prefix, sectionType string) {
	r.prefixes[normalizeTag(prefix)] = normalizeTag(sectionType)
}

// Resolve returns the canonical section type for a tag as written in a document
func (r *Registry) Resolve(tag string) (string, bool) {
	key := normalizeTag(tag)
	if _, ok := r.renderers[key]; ok {
		return key, true
	}
	if canonical, ok := r.aliases[key]; ok {
		if _, registered := r.renderers[canonical]; registered {
			return canonical, true
		}
	}

	// Longest prefix wins so "custom_research" can be overridden independently of "custom".
	best := ""
	for prefix := range r.prefixes {
		if strings.HasPrefix(key, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		if _, registered := r.renderers[r.prefixes[best]]; registered {
			return r.prefixes[best], true
		}
	}
	return "", false
}

// Lookup returns the renderer for a tag
func (r *Registry) Lookup(tag string) (SectionRenderer, bool) {
	canonical, ok := r.Resolve(tag)
	if !ok {
		return nil, false
	}
	return r.renderers[canonical], true
}

// Types returns the registered canonical section types, sorted
func (r *Registry) Types() []string {
	result := make([]string, 0, len(r.renderers))
	for t := range r.renderers {
		result = append(result, t)
	}
	sort.Strings(result)
	return result
}

// normalizeTag lower-cases a tag and folds spaces and hyphens to underscores
func normalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return strings.Join(strings.FieldsFunc(tag, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
}

// DefaultRegistry returns a registry with every built-in section type.
// The header is not registered: the assembler renders it separately.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(string(types.SectionSummary), RenderFunc(renderSummary))
	r.Register(string(types.SectionExperience), RenderFunc(renderExperience))
	r.Register(string(types.SectionEducation), RenderFunc(renderEducation))
	r.Register(string(types.SectionSkills), RenderFunc(renderSkills))
	r.Register(string(types.SectionProjects), RenderFunc(renderProjects))
	r.Register(string(types.SectionCertifications), RenderFunc(renderCertifications))
	r.Register(string(types.SectionLanguages), RenderFunc(renderLanguages))
	r.Register(string(types.SectionVolunteer), RenderFunc(renderVolunteer))
	r.Register(string(types.SectionAchievements), RenderFunc(renderAchievements))
	r.Register(string(types.SectionPublications), RenderFunc(renderPublications))
	r.Register(string(types.SectionInterests), RenderFunc(renderInterests))
	r.Register(string(types.SectionReferences), RenderFunc(renderReferences))
	r.Register(string(types.SectionPatents), RenderFunc(renderPatents))
	r.Register(string(types.SectionResearch), RenderFunc(renderResearch))
	r.Register(string(types.SectionCustom), RenderFunc(renderCustom))

	for alias, canonical := range map[string]types.SectionType{
		"profile":                 types.SectionSummary,
		"professional_summary":    types.SectionSummary,
		"objective":               types.SectionSummary,
		"about":                   types.SectionSummary,
		"work_experience":         types.SectionExperience,
		"work":                    types.SectionExperience,
		"employment":              types.SectionExperience,
		"professional_experience": types.SectionExperience,
		"academics":               types.SectionEducation,
		"technical_skills":        types.SectionSkills,
		"skill":                   types.SectionSkills,
		"project":                 types.SectionProjects,
		"certificates":            types.SectionCertifications,
		"licenses":                types.SectionCertifications,
		"volunteering":            types.SectionVolunteer,
		"volunteer_experience":    types.SectionVolunteer,
		"awards":                  types.SectionAchievements,
		"honors":                  types.SectionAchievements,
		"accomplishments":         types.SectionAchievements,
		"hobbies":                 types.SectionInterests,
		"research_experience":     types.SectionResearch,
	} {
		r.Alias(alias, string(canonical))
	}
	r.AliasPrefix("custom", string(types.SectionCustom))

	return r
}

var defaultRegistry = DefaultRegistry()
