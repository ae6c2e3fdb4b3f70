package ingestion

import (
	"bytes"
	"fmt"
	"html"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported media types
const (
	MediaTypePDF   = "application/pdf"
	MediaTypeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypePlain = "text/plain"
)

var extensionTypes = map[string]string{
	".pdf":      MediaTypePDF,
	".docx":     MediaTypeDOCX,
	".txt":      MediaTypePlain,
	".text":     MediaTypePlain,
	".md":       MediaTypePlain,
	".markdown": MediaTypePlain,
}

// Document is the cleaned text of an uploaded resume
type Document struct {
	Text     string
	Metadata *Metadata
}

// DetectMediaType identifies a resume file from its extension, falling back to content sniffing.
// The result is one of the supported media types or whatever the sniffer reports.
func DetectMediaType(filename string, data []byte) string {
	if mediaType, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mediaType
	}

	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return MediaTypePDF
	}
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) && bytes.Contains(data, []byte("word/document.xml")) {
		return MediaTypeDOCX
	}

	sniffed := http.DetectContentType(data)
	if base, _, _ := strings.Cut(sniffed, ";"); base == MediaTypePlain {
		return MediaTypePlain
	}
	return sniffed
}

// Extract reads a PDF, DOCX or plain text resume and returns its cleaned text
func Extract(filename string, data []byte) (*Document, error) {
	mediaType := DetectMediaType(filename, data)

	var (
		raw   string
		pages int
		err   error
	)
	switch mediaType {
	case MediaTypePDF:
		raw, pages, err = extractPDF(data)
	case MediaTypeDOCX:
		raw, err = extractDOCX(data)
	case MediaTypePlain:
		raw, err = extractPlain(data)
	default:
		return nil, &UnsupportedTypeError{Filename: filename, MediaType: mediaType}
	}
	if err != nil {
		return nil, err
	}

	text := CleanText(raw)
	if text == "" {
		return nil, ErrNoText
	}

	metadata := NewMetadata(filename, mediaType, text)
	metadata.Pages = pages
	return &Document{Text: text, Metadata: metadata}, nil
}

// ExtractFile reads a resume from disk and extracts its text
func ExtractFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Extract(filepath.Base(path), data)
}

// extractPDF reads the text of every page. The PDF reader panics on some
// malformed files, which is reported as an ExtractionError.
func extractPDF(data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ExtractionError{Format: "pdf", Message: "malformed PDF", Cause: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, &ExtractionError{Format: "pdf", Message: "failed to open PDF", Cause: err}
	}

	var sb strings.Builder
	pages = reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, &ExtractionError{Format: "pdf", Message: fmt.Sprintf("failed to read page %d", i), Cause: err}
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), pages, nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br[^>]*/>|<w:cr[^>]*/>`)
	docxTab          = regexp.MustCompile(`<w:tab[^>]*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

// extractDOCX reads word/document.xml and turns paragraphs into lines
func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: "docx", Message: "failed to open DOCX", Cause: err}
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxTab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")
	return html.UnescapeString(content), nil
}

func extractPlain(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", &ExtractionError{Format: "text", Message: "file is not valid UTF-8"}
	}
	return string(data), nil
}
