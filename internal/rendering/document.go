package rendering

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// ErrNoSections is the cause of the RenderError returned for a document without sections
var ErrNoSections = errors.New("document has no sections")

// Reasons a section is reported in Result.Skipped
const (
	SkipUnknownType = "unknown section type"
	SkipInvalidData = "invalid section data"
)

// Config selects how a document is rendered
type Config struct {
	// Template is the embedded template name; empty means DefaultTemplate
	Template string
	// Registry resolves section renderers; nil means DefaultRegistry
	Registry *Registry
	// Rules fill in rendering rules the document leaves unset
	Rules types.RenderingRules
}

// SkippedSection is a section left out of the document for a reason other than being empty
type SkippedSection struct {
	Tag    string `json:"tag"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Result is the outcome of rendering one document
type Result struct {
	// LaTeX is the complete document source
	LaTeX string
	// Sections lists the rendered section tags in output order, header first when present
	Sections []string
	// Skipped lists sections that were dropped because they could not be rendered
	Skipped []SkippedSection
}

// RenderDocument renders doc into a complete LaTeX document
func RenderDocument(doc *types.CVDocument, cfg Config) (string, error) {
	result, err := Render(doc, cfg)
	if err != nil {
		return "", err
	}
	return result.LaTeX, nil
}

// Render renders doc into a complete LaTeX document and reports what was rendered and skipped.
// It performs no I/O and keeps no state, so it may be called concurrently.
func Render(doc *types.CVDocument, cfg Config) (*Result, error) {
	if doc == nil || doc.Sections.Len() == 0 {
		return nil, &RenderError{Message: "cannot render document", Cause: ErrNoSections}
	}

	tmpl, err := loadTemplate(cfg.Template)
	if err != nil {
		return nil, err
	}

	registry := cfg.Registry
	if registry == nil {
		registry = defaultRegistry
	}

	rules := doc.RenderingRules.Merge(cfg.Rules).WithDefaults()
	if err := rules.Validate(); err != nil {
		return nil, &RenderError{Message: "invalid rendering rules", Cause: err}
	}

	result := &Result{}
	var body strings.Builder
	title := ""

	if raw, ok := doc.Sections.Raw(string(types.SectionHeader)); ok {
		header, err := renderHeader(raw)
		switch {
		case err != nil:
			result.Skipped = append(result.Skipped, SkippedSection{
				Tag:    string(types.SectionHeader),
				Reason: SkipInvalidData,
				Detail: err.Error(),
			})
		case header.body != "":
			body.WriteString(header.body)
			body.WriteString("\n\n")
			result.Sections = append(result.Sections, string(types.SectionHeader))
			title = header.name
		}
	}

	for _, tag := range sectionOrder(doc) {
		renderer, ok := registry.Lookup(tag)
		if !ok {
			result.Skipped = append(result.Skipped, SkippedSection{Tag: tag, Reason: SkipUnknownType})
			continue
		}

		raw, _ := doc.Sections.Raw(tag)
		frag, err := renderer.RenderSection(raw, SectionContext{Tag: tag, Rules: rules})
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedSection{Tag: tag, Reason: SkipInvalidData, Detail: err.Error()})
			continue
		}
		if frag.IsEmpty() && rules.HideEmpty() {
			continue
		}

		body.WriteString(`\cvsection{`)
		body.WriteString(frag.Title)
		body.WriteString("}\n")
		if !frag.IsEmpty() {
			body.WriteString(strings.TrimSpace(frag.Body))
			body.WriteString("\n")
		}
		body.WriteString("\n")
		result.Sections = append(result.Sections, tag)
	}

	var out strings.Builder
	err = tmpl.Execute(&out, templateData{
		Title: title,
		Body:  strings.TrimRight(body.String(), "\n"),
	})
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}

	result.LaTeX = out.String()
	return result, nil
}

// sectionOrder returns the section keys to render after the header.
// Keys named in metadata.section_order come first, in that order; every other
// key follows in document order. Order entries are matched case-insensitively
// and an entry naming a missing section is ignored.
func sectionOrder(doc *types.CVDocument) []string {
	keys := doc.Sections.Keys()
	byNormalized := make(map[string][]string, len(keys))
	for _, key := range keys {
		n := normalizeTag(key)
		byNormalized[n] = append(byNormalized[n], key)
	}

	used := make(map[string]bool, len(keys))
	used[string(types.SectionHeader)] = true

	ordered := make([]string, 0, len(keys))
	for _, name := range doc.Metadata.SectionOrder {
		for _, key := range byNormalized[normalizeTag(name)] {
			if !used[key] {
				used[key] = true
				ordered = append(ordered, key)
			}
		}
	}
	for _, key := range keys {
		if !used[key] {
			used[key] = true
			ordered = append(ordered, key)
		}
	}
	return ordered
}

// renderedHeader is the header fragment plus the plain name used as the PDF title
type renderedHeader struct {
	body string
	name string
}

// renderHeader renders the name, headline and contact line.
// It returns an empty body when no header field has content.
func renderHeader(raw json.RawMessage) (renderedHeader, error) {
	var header types.HeaderSection
	if err := json.Unmarshal(raw, &header); err != nil {
		return renderedHeader{}, fmt.Errorf("failed to decode header: %w", err)
	}

	name := esc(header.Name.String())
	headline := esc(header.Title.String())

	contacts := make([]string, 0, len(header.ContactInfo))
	for _, entry := range header.ContactInfo {
		value := strings.TrimSpace(entry.Value.String())
		target := strings.TrimSpace(entry.Link.String())
		switch {
		case value != "" && target != "":
			contacts = append(contacts, link(EscapeLaTeX(value), target))
		case value != "":
			contacts = append(contacts, EscapeLaTeX(value))
		case target != "":
			contacts = append(contacts, link("", target))
		}
	}

	if name == "" && headline == "" && len(contacts) == 0 {
		return renderedHeader{}, nil
	}

	var sb strings.Builder
	sb.WriteString("\\begin{center}\n")
	if name != "" {
		sb.WriteString(`\cvname{` + name + "}\n")
	}
	if headline != "" {
		sb.WriteString(`\cvheadline{` + headline + "}\n")
	}
	if len(contacts) > 0 {
		sb.WriteString(`\cvcontact{` + strings.Join(contacts, ` \cvsep{} `) + "}\n")
	}
	sb.WriteString("\\end{center}")

	return renderedHeader{body: sb.String(), name: name}, nil
}
