package ingestion

import (
	"regexp"
	"strings"
)

var (
	spaceRun      = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	blankLineRun  = regexp.MustCompile(`\n\n\n+`)
	bulletMarkers = []string{"•", "·", "▪", "◦", "‣", "●", "○", "■", "–"}
)

// CleanText normalizes extracted resume text while keeping its line structure.
// Line endings become LF, runs of spaces collapse, bullet glyphs become "- "
// and at most one blank line separates blocks.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\x00", "")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = blankLineRun.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line, keeping headings, bullets and indentation
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t\u00a0")
	trimmed := strings.TrimLeft(line, " \t")
	if strings.TrimSpace(trimmed) == "" {
		return ""
	}
	indent := len(line) - len(trimmed)

	switch {
	case strings.HasPrefix(trimmed, "#"):
		return trimmed
	case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
		trimmed = trimmed[:2] + collapseSpaces(trimmed[2:])
	default:
		if rest, ok := cutBulletGlyph(trimmed); ok {
			trimmed = "- " + collapseSpaces(rest)
		} else {
			trimmed = collapseSpaces(trimmed)
		}
	}

	if indent > 0 {
		return strings.Repeat(" ", indent) + trimmed
	}
	return trimmed
}

func collapseSpaces(s string) string {
	return spaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// cutBulletGlyph strips a leading typographic bullet such as "•"
func cutBulletGlyph(line string) (string, bool) {
	for _, marker := range bulletMarkers {
		if rest, ok := strings.CutPrefix(line, marker); ok && strings.TrimSpace(rest) != "" {
			return rest, true
		}
	}
	return "", false
}
