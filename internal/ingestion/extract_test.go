package ingestion

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a one-page PDF showing each line with the standard Helvetica font
func buildPDF(t *testing.T, lines ...string) []byte {
	t.Helper()

	var content strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&content, "BT /F1 12 Tf 72 %d Td (%s) Tj ET\n", 720-i*16, line)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// buildDOCX writes a minimal DOCX whose body holds the given paragraph XML
func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()

	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"[Content_Types].xml", "word/_rels/document.xml.rels", "word/document.xml"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDetectMediaType(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		expected string
	}{
		{"pdf extension", "CV.PDF", nil, MediaTypePDF},
		{"docx extension", "resume.docx", nil, MediaTypeDOCX},
		{"txt extension", "resume.txt", nil, MediaTypePlain},
		{"markdown extension", "resume.md", nil, MediaTypePlain},
		{"pdf magic without extension", "upload", []byte("%PDF-1.7\n..."), MediaTypePDF},
		{"docx magic without extension", "upload", []byte("PK\x03\x04....word/document.xml...."), MediaTypeDOCX},
		{"plain text sniffed", "upload", []byte("Jane Doe\nEngineer"), MediaTypePlain},
		{"png sniffed", "photo.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectMediaType(tt.filename, tt.data))
		})
	}
}

func TestExtract_PlainText(t *testing.T) {
	data := []byte("\xef\xbb\xbfJane   Doe\r\n\r\n\r\n\r\n• Built things\r\n")

	doc, err := Extract("resume.txt", data)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe\n\n- Built things", doc.Text)
	assert.Equal(t, MediaTypePlain, doc.Metadata.MediaType)
	assert.Equal(t, "resume.txt", doc.Metadata.Filename)
	assert.Equal(t, computeHash(doc.Text), doc.Metadata.Hash)
}

func TestExtract_InvalidUTF8(t *testing.T) {
	_, err := Extract("resume.txt", []byte{0xff, 0xfe, 0xfd})

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "text", extractionErr.Format)
}

func TestExtract_NoText(t *testing.T) {
	_, err := Extract("resume.txt", []byte(" \n\t\n "))
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtract_UnsupportedType(t *testing.T) {
	_, err := Extract("photo.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))

	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "image/png", unsupported.MediaType)
	assert.Contains(t, err.Error(), "photo.png")
}

func TestExtract_DOCX(t *testing.T) {
	data := buildDOCX(t,
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t xml:space="preserve">Engineer &amp; Lead</w:t><w:tab/><w:t>2020</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Line one</w:t><w:br/><w:t>Line two</w:t></w:r></w:p>`)

	doc, err := Extract("resume.docx", data)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe\nEngineer & Lead 2020\nLine one\nLine two", doc.Text)
	assert.Equal(t, MediaTypeDOCX, doc.Metadata.MediaType)
}

func TestExtract_CorruptDOCX(t *testing.T) {
	_, err := Extract("resume.docx", []byte("definitely not a zip archive"))

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "docx", extractionErr.Format)
}

func TestExtract_PDF(t *testing.T) {
	data := buildPDF(t, "Jane Doe", "Software Engineer")

	doc, err := Extract("resume.pdf", data)
	require.NoError(t, err)

	assert.Contains(t, doc.Text, "Jane Doe")
	assert.Contains(t, doc.Text, "Software Engineer")
	assert.Equal(t, 1, doc.Metadata.Pages)
	assert.Equal(t, MediaTypePDF, doc.Metadata.MediaType)
}

func TestExtract_CorruptPDF(t *testing.T) {
	_, err := Extract("resume.pdf", []byte("%PDF-1.4\nthis file was truncated"))

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "pdf", extractionErr.Format)
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.md")
	require.NoError(t, os.WriteFile(path, []byte("# Jane Doe\n\nEngineer"), 0644))

	doc, err := ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Jane Doe\n\nEngineer", doc.Text)
	assert.Equal(t, "resume.md", doc.Metadata.Filename)

	_, err = ExtractFile(filepath.Join(dir, "missing.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "file not found")
}
