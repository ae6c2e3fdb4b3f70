package llm

import (
	"strings"

	"github.com/tidwall/gjson"
)

// CleanJSONBlock strips what models wrap around JSON: markdown fences
// (with or without a language tag), conversational preambles and trailing
// remarks. Text that holds no balanced JSON value is returned trimmed so the
// caller's parser can report the failure.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}

	if !startsJSON(text) {
		if start := strings.Index(text, "```"); start >= 0 {
			text = stripFence(text[start+3:])
		}
	}

	// A truncated value stays whole rather than yielding a fragment of itself
	if startsJSON(text) && extractJSONValue(text) == "" {
		return text
	}
	if value := firstJSONValue(text); value != "" {
		return value
	}
	// Nothing parses; hand back the first balanced candidate for the error
	if idx := strings.IndexAny(text, "{["); idx >= 0 {
		if value := extractJSONValue(text[idx:]); value != "" {
			return value
		}
	}
	return text
}

// firstJSONValue returns the first balanced value in text that is valid JSON.
// Bracketed prose such as "[as requested]" is skipped.
func firstJSONValue(text string) string {
	for offset := 0; offset < len(text); {
		idx := strings.IndexAny(text[offset:], "{[")
		if idx < 0 {
			return ""
		}
		start := offset + idx
		value := extractJSONValue(text[start:])
		if value != "" && gjson.Valid(value) {
			return value
		}
		offset = start + max(len(value), 1)
	}
	return ""
}

// stripFence returns the body of a fence whose opening ``` has been consumed
func stripFence(text string) string {
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(text[:idx])
		// A short token without JSON punctuation is a language tag
		if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func startsJSON(text string) bool {
	return strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[")
}

func extractJSONValue(text string) string {
	if strings.HasPrefix(text, "[") {
		return extractJSONArray(text)
	}
	return extractJSONObject(text)
}

// extractJSONObject returns the balanced object at the start of text, or ""
func extractJSONObject(text string) string {
	return extractBalanced(text, '{', '}')
}

// extractJSONArray returns the balanced array at the start of text, or ""
func extractJSONArray(text string) string {
	return extractBalanced(text, '[', ']')
}

// extractBalanced scans from an opening bracket to its matching close,
// ignoring brackets inside string literals.
func extractBalanced(text string, open, close byte) string {
	if text == "" || text[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}
