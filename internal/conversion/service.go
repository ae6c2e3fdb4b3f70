package conversion

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/jonathan/resume-builder/internal/validation"
)

// DefaultTimeout bounds one conversion's model calls, retries and fallbacks included
const DefaultTimeout = 2 * time.Minute

// Generator produces JSON text from a prompt, choosing a provider slot.
// *llm.FallbackClient is the production implementation.
type Generator interface {
	Generate(ctx context.Context, requested, system, prompt string) (*llm.Generation, error)
}

// Options configures a Service
type Options struct {
	// Template is used when a request does not name one
	Template string
	// Rules fill in rendering rules the model leaves unset
	Rules types.RenderingRules
	// Timeout bounds the model call; zero means DefaultTimeout, negative disables it
	Timeout time.Duration
}

// Request is one resume to convert
type Request struct {
	ResumeText   string
	Slot         string
	Template     string
	SectionOrder []string
}

// ProviderInfo records which slot answered
type ProviderInfo struct {
	Slot     string `json:"slot"`
	Model    string `json:"model"`
	Attempts int    `json:"attempts"`
}

// Result is a converted resume
type Result struct {
	RequestID string
	LaTeX     string
	Document  *types.CVDocument
	Sections  []string
	Skipped   []rendering.SkippedSection
	Provider  *ProviderInfo
}

// Service converts resume text to LaTeX
type Service struct {
	generator Generator
	options   Options
}

// NewService creates a conversion service
func NewService(generator Generator, opts Options) *Service {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Service{generator: generator, options: opts}
}

// BuildPrompt returns the system instruction and user prompt for req
func BuildPrompt(req Request) (system, prompt string, err error) {
	system, err = prompts.Render(prompts.ConversionFile, prompts.KeySystem, map[string]string{
		"Schema": schemas.CVDocumentSchema(),
	})
	if err != nil {
		return "", "", err
	}

	hint := ""
	if len(req.SectionOrder) > 0 {
		hint, err = prompts.Render(prompts.ConversionFile, prompts.KeySectionOrderHint, map[string]string{
			"SectionOrder": strings.Join(req.SectionOrder, ", "),
		})
		if err != nil {
			return "", "", err
		}
	}

	prompt, err = prompts.Render(prompts.ConversionFile, prompts.KeyConvert, map[string]string{
		"SectionOrder": hint,
		"ResumeText":   validation.QuoteExternalContentWithLabel(req.ResumeText, "resume text"),
	})
	if err != nil {
		return "", "", err
	}
	return system, prompt, nil
}

// Convert asks the model to structure the resume, parses its answer and renders it.
// Errors are *llm.ProviderError when no slot produced an answer, *ParseError when
// the answer is unusable and *rendering.RenderError or *rendering.TemplateError
// when the document cannot be generated.
func (s *Service) Convert(ctx context.Context, req Request) (*Result, error) {
	requestID := uuid.New().String()

	if strings.TrimSpace(req.ResumeText) == "" {
		return nil, ErrEmptyResume
	}
	template := s.template(req.Template)
	if err := rendering.ValidateTemplate(template); err != nil {
		return nil, err
	}

	validation.LogInjectionWarning(validation.CheckInjection(req.ResumeText), "request "+requestID)

	system, prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	if s.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.options.Timeout)
		defer cancel()
	}

	start := time.Now()
	log.Printf("[convert] %s: requesting slot %q (%d chars of resume text)", requestID, req.Slot, len(req.ResumeText))
	gen, err := s.generator.Generate(ctx, req.Slot, system, prompt)
	if err != nil {
		log.Printf("[convert] %s: provider failed after %v: %v", requestID, time.Since(start).Round(time.Millisecond), err)
		return nil, err
	}
	log.Printf("[convert] %s: %s answered via slot %s in %v (%d attempts)",
		requestID, gen.Model, gen.Slot, time.Since(start).Round(time.Millisecond), gen.Attempts)

	doc, err := ParseCVDocument(gen.Text)
	if err != nil {
		log.Printf("[convert] %s: %v", requestID, err)
		return nil, err
	}
	if len(req.SectionOrder) > 0 {
		doc.Metadata.SectionOrder = req.SectionOrder
	}

	result, err := s.render(requestID, doc, template)
	if err != nil {
		return nil, err
	}
	result.Provider = &ProviderInfo{Slot: gen.Slot, Model: gen.Model, Attempts: gen.Attempts}
	return result, nil
}

// RenderRaw parses model output produced elsewhere and renders it
func (s *Service) RenderRaw(raw, template string) (*Result, error) {
	requestID := uuid.New().String()

	doc, err := ParseCVDocument(raw)
	if err != nil {
		log.Printf("[convert] %s: %v", requestID, err)
		return nil, err
	}
	return s.render(requestID, doc, s.template(template))
}

// Render renders a document that is already structured
func (s *Service) Render(doc *types.CVDocument, template string) (*Result, error) {
	return s.render(uuid.New().String(), doc, s.template(template))
}

func (s *Service) render(requestID string, doc *types.CVDocument, template string) (*Result, error) {
	rendered, err := rendering.Render(doc, rendering.Config{
		Template: template,
		Rules:    s.options.Rules,
	})
	if err != nil {
		log.Printf("[convert] %s: render failed: %v", requestID, err)
		return nil, err
	}

	for _, skipped := range rendered.Skipped {
		log.Printf("[convert] %s: skipped section %q: %s %s", requestID, skipped.Tag, skipped.Reason, skipped.Detail)
	}

	return &Result{
		RequestID: requestID,
		LaTeX:     rendered.LaTeX,
		Document:  doc,
		Sections:  rendered.Sections,
		Skipped:   rendered.Skipped,
	}, nil
}

func (s *Service) template(requested string) string {
	if requested != "" {
		return requested
	}
	return s.options.Template
}
