package rendering

import (
	"strings"
)

// The helpers below build LaTeX fragments from already-escaped text.
// Every caller escapes literals with EscapeLaTeX (and links with EscapeURL)
// before handing them over; nothing in this file escapes again.

// entryBlock is the layout shared by dated, titled items such as roles,
// degrees and projects.
type entryBlock struct {
	heading     string
	dates       string
	subheading  string
	location    string
	description string
	bullets     []string
	lines       []labeledLine
}

// labeledLine is a "Label: value" line below an entry
type labeledLine struct {
	label string
	value string
}

func (e entryBlock) render() string {
	var sb strings.Builder

	if e.heading == "" {
		e.heading, e.subheading = e.subheading, ""
	}
	if e.heading != "" || e.dates != "" || e.subheading != "" || e.location != "" {
		sb.WriteString(`\cventry{`)
		sb.WriteString(e.heading)
		sb.WriteString(`}{`)
		sb.WriteString(e.dates)
		sb.WriteString(`}{`)
		sb.WriteString(e.subheading)
		sb.WriteString(`}{`)
		sb.WriteString(e.location)
		sb.WriteString("}\n")
	}
	if e.description != "" {
		sb.WriteString(e.description)
		sb.WriteString("\\par\n")
	}
	sb.WriteString(bulletList(e.bullets))
	for _, line := range e.lines {
		sb.WriteString(cvLine(line.label, line.value))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// bulletList renders items in the cvbullets environment; no items renders nothing
func bulletList(items []string) string {
	items = nonBlank(items)
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\\begin{cvbullets}\n")
	for _, item := range items {
		sb.WriteString("  \\item{} ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	sb.WriteString("\\end{cvbullets}\n")
	return sb.String()
}

// cvLine renders a labeled line; an empty value renders nothing
func cvLine(label, value string) string {
	if IsEmptyString(value) {
		return ""
	}
	return `\cvline{` + label + `}{` + value + "}\n"
}

// bold wraps non-empty text in \textbf
func bold(text string) string {
	if text == "" {
		return ""
	}
	return `\textbf{` + text + `}`
}

// italic wraps non-empty text in \textit
func italic(text string) string {
	if text == "" {
		return ""
	}
	return `\textit{` + text + `}`
}

// link renders escaped text as a hyperlink when url is set.
// With no text the url itself is shown.
func link(text, url string) string {
	target := EscapeURL(normalizeLink(url))
	if target == "" {
		return text
	}
	if text == "" {
		text = EscapeLaTeX(strings.TrimSpace(url))
	}
	return `\href{` + target + `}{` + text + `}`
}

// esc escapes a field value after trimming it
func esc(s string) string {
	return EscapeLaTeX(strings.TrimSpace(s))
}

// escAll escapes every non-blank entry of list
func escAll(list []string) []string {
	kept := nonBlank(list)
	for i, s := range kept {
		kept[i] = EscapeLaTeX(s)
	}
	return kept
}

// describe truncates then escapes a description field
func describe(s string, limit int) string {
	return EscapeLaTeX(Truncate(s, limit))
}
