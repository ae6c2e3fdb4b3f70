// Package rendering provides functionality to render LaTeX resumes from CV documents.
package rendering

import (
	"fmt"
	"strings"
	"unicode"
)

// EscapeLaTeX escapes special LaTeX characters in text
// Special characters: \ { } $ & % # ^ _ ~
func EscapeLaTeX(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2) // Pre-allocate space for potential escaping

	for _, r := range text {
		switch r {
		case '\\':
			result.WriteString(`\textbackslash{}`)
		case '{':
			result.WriteString(`\{`)
		case '}':
			result.WriteString(`\}`)
		case '$':
			result.WriteString(`\$`)
		case '&':
			result.WriteString(`\&`)
		case '%':
			result.WriteString(`\%`)
		case '#':
			result.WriteString(`\#`)
		case '^':
			result.WriteString(`\textasciicircum{}`)
		case '_':
			result.WriteString(`\_`)
		case '~':
			result.WriteString(`\textasciitilde{}`)
		case '\r', '\n', '\t':
			result.WriteRune(' ')
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// EscapeURL prepares a URL for the first argument of \href.
// Characters that break the argument are percent-encoded, then the
// remaining % and # are backslash-escaped as hyperref expects inside
// another command's argument.
func EscapeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}

	var encoded strings.Builder
	for _, r := range u {
		switch {
		case r == ' ', r == '\\', r == '{', r == '}', r == '^', r == '~', r == '`', r == '"', r == '<', r == '>', r == '|':
			fmt.Fprintf(&encoded, "%%%02X", r)
		case unicode.IsControl(r):
			// dropped
		default:
			encoded.WriteRune(r)
		}
	}

	var result strings.Builder
	for _, r := range encoded.String() {
		switch r {
		case '%':
			result.WriteString(`\%`)
		case '#':
			result.WriteString(`\#`)
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}

// normalizeLink adds a scheme to bare links so \href produces a working target:
// email addresses become mailto: links and everything else https://.
func normalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	lower := strings.ToLower(link)
	for _, scheme := range []string{"http://", "https://", "mailto:", "tel:"} {
		if strings.HasPrefix(lower, scheme) {
			return link
		}
	}
	if strings.Contains(link, "@") && !strings.Contains(link, "/") {
		return "mailto:" + link
	}
	return "https://" + link
}
