package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/jonathan/resume-builder/internal/conversion"
	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// Media types for LaTeX responses
const (
	MediaTypeLaTeX = "application/x-tex"
	mediaTypeTeX   = "text/x-tex"
)

// resumeField is the multipart form field holding the uploaded resume
const resumeField = "resume"

// ConvertRequest is the JSON form of a /convert request
type ConvertRequest struct {
	ResumeText   string   `json:"resume_text"`
	Slot         string   `json:"slot,omitempty"`
	Template     string   `json:"template,omitempty"`
	SectionOrder []string `json:"section_order,omitempty"`
}

// RenderResponse is the response for /render and /render/raw
type RenderResponse struct {
	RequestID string                     `json:"request_id"`
	LaTeX     string                     `json:"latex"`
	Sections  []string                   `json:"sections"`
	Skipped   []rendering.SkippedSection `json:"skipped"`
}

// ConvertResponse is the response for /convert
type ConvertResponse struct {
	RequestID string                     `json:"request_id"`
	LaTeX     string                     `json:"latex"`
	Sections  []string                   `json:"sections"`
	Skipped   []rendering.SkippedSection `json:"skipped"`
	Provider  *conversion.ProviderInfo   `json:"provider,omitempty"`
	Source    *ingestion.Metadata        `json:"source,omitempty"`
}

// TemplatesResponse is the response for /templates
type TemplatesResponse struct {
	Default   string   `json:"default"`
	Templates []string `json:"templates"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSchema returns the CV document schema the model is prompted with
func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, schemas.CVDocumentSchema())
}

// handleTemplates lists the embedded LaTeX templates
func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, TemplatesResponse{
		Default:   rendering.DefaultTemplate,
		Templates: rendering.Templates(),
	})
}

// handleRender renders a CV document posted as JSON
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	var doc types.CVDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		s.decodeFailure(w, err)
		return
	}

	result, err := s.service.Render(&doc, r.URL.Query().Get("template"))
	if err != nil {
		s.failure(w, err)
		return
	}
	s.renderResponse(w, r, result)
}

// handleRenderRaw parses model output posted as the request body and renders it
func (s *Server) handleRenderRaw(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		s.decodeFailure(w, err)
		return
	}

	result, err := s.service.RenderRaw(string(raw), r.URL.Query().Get("template"))
	if err != nil {
		s.failure(w, err)
		return
	}
	s.renderResponse(w, r, result)
}

// handleConvert converts an uploaded resume to LaTeX
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	req, source, err := s.readConvertRequest(w, r)
	if err != nil {
		s.failure(w, err)
		return
	}

	result, err := s.service.Convert(r.Context(), req)
	if err != nil {
		s.failure(w, err)
		return
	}

	if wantsLaTeX(r) {
		s.latexResponse(w, result.RequestID, result.LaTeX)
		return
	}
	s.jsonResponse(w, http.StatusOK, convertResponse(result, source))
}

// readConvertRequest reads a multipart upload or a JSON body into a conversion request.
// The returned metadata is nil for JSON requests.
func (s *Server) readConvertRequest(w http.ResponseWriter, r *http.Request) (conversion.Request, *ingestion.Metadata, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body ConvertRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return conversion.Request{}, nil, decodeError(err)
		}
		return conversion.Request{
			ResumeText:   body.ResumeText,
			Slot:         s.slot(body.Slot),
			Template:     body.Template,
			SectionOrder: body.SectionOrder,
		}, nil, nil
	}

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		return conversion.Request{}, nil, decodeError(err)
	}
	file, header, err := r.FormFile(resumeField)
	if err != nil {
		return conversion.Request{}, nil, &ErrValidation{Field: resumeField, Message: "a resume file is required"}
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		return conversion.Request{}, nil, decodeError(err)
	}

	doc, err := ingestion.Extract(header.Filename, data)
	if err != nil {
		return conversion.Request{}, nil, err
	}

	return conversion.Request{
		ResumeText:   doc.Text,
		Slot:         s.slot(r.FormValue("slot")),
		Template:     r.FormValue("template"),
		SectionOrder: splitList(r.FormValue("section_order")),
	}, doc.Metadata, nil
}

// slot returns the requested slot, or the configured default
func (s *Server) slot(requested string) string {
	if requested = strings.TrimSpace(requested); requested != "" {
		return requested
	}
	return s.defaultSlot
}

// renderResponse writes a render result as JSON or, when the client asks for it, as LaTeX source
func (s *Server) renderResponse(w http.ResponseWriter, r *http.Request, result *conversion.Result) {
	if wantsLaTeX(r) {
		s.latexResponse(w, result.RequestID, result.LaTeX)
		return
	}
	s.jsonResponse(w, http.StatusOK, RenderResponse{
		RequestID: result.RequestID,
		LaTeX:     result.LaTeX,
		Sections:  result.Sections,
		Skipped:   skippedOrEmpty(result.Skipped),
	})
}

// latexResponse writes LaTeX source as an attachment
func (s *Server) latexResponse(w http.ResponseWriter, requestID, latex string) {
	w.Header().Set("Content-Type", MediaTypeLaTeX+"; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="resume.tex"`)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, latex)
}

// decodeFailure writes the response for a request body that could not be read
func (s *Server) decodeFailure(w http.ResponseWriter, err error) {
	s.failure(w, decodeError(err))
}

// decodeError keeps body size errors intact and reports everything else as a bad request
func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return &ErrValidation{Field: "body", Message: fmt.Sprintf("invalid request body: %v", err)}
}

func convertResponse(result *conversion.Result, source *ingestion.Metadata) ConvertResponse {
	return ConvertResponse{
		RequestID: result.RequestID,
		LaTeX:     result.LaTeX,
		Sections:  result.Sections,
		Skipped:   skippedOrEmpty(result.Skipped),
		Provider:  result.Provider,
		Source:    source,
	}
}

// wantsLaTeX reports whether the Accept header prefers LaTeX source over JSON
func wantsLaTeX(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case MediaTypeLaTeX, mediaTypeTeX:
			return true
		case "application/json":
			return false
		}
	}
	return false
}

// splitList splits a comma-separated form value, dropping blanks
func splitList(value string) []string {
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

func skippedOrEmpty(skipped []rendering.SkippedSection) []rendering.SkippedSection {
	if skipped == nil {
		return []rendering.SkippedSection{}
	}
	return skipped
}
