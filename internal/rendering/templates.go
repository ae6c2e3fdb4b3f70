package rendering

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"text/template"
)

// DefaultTemplate is used when no template is requested
const DefaultTemplate = "classic"

//go:embed templates/*.tex
var templateFS embed.FS

// templateData is passed to the document templates
type templateData struct {
	// Title is the escaped document title, usually the candidate's name
	Title string
	// Body holds the header and every rendered section
	Body string
}

// parsedTemplates is built once at package initialization and only read afterwards
var parsedTemplates, parseTemplatesErr = parseTemplates()

// Templates returns the names of the embedded document templates, sorted
func Templates() []string {
	names := make([]string, 0, len(parsedTemplates))
	for name := range parsedTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasTemplate reports whether name is an embedded template
func HasTemplate(name string) bool {
	_, ok := parsedTemplates[name]
	return ok
}

func parseTemplates() (map[string]*template.Template, error) {
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, err
	}

	parsed := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".tex")
		if !ok || entry.IsDir() {
			continue
		}
		content, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return nil, err
		}

		// Parse template with custom functions for LaTeX escaping
		tmpl, err := template.New(name).Funcs(template.FuncMap{
			"escape": EscapeLaTeX,
		}).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
		parsed[name] = tmpl
	}
	return parsed, nil
}

// loadTemplate returns the parsed template for name
func loadTemplate(name string) (*template.Template, error) {
	if parseTemplatesErr != nil {
		return nil, &TemplateError{
			Message: "failed to parse embedded templates",
			Cause:   parseTemplatesErr,
		}
	}
	if name == "" {
		name = DefaultTemplate
	}
	tmpl, ok := parsedTemplates[name]
	if !ok {
		return nil, &TemplateError{
			Message: fmt.Sprintf("%q (available: %s)", name, strings.Join(Templates(), ", ")),
			Cause:   ErrUnknownTemplate,
		}
	}
	return tmpl, nil
}

// ValidateTemplate returns a TemplateError if name is not an embedded template.
// An empty name selects DefaultTemplate and is always valid.
func ValidateTemplate(name string) error {
	_, err := loadTemplate(name)
	return err
}
