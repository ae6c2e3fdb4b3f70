// Package rendering provides functionality to render LaTeX resumes from CV documents.
package rendering

import (
	"strings"
	"unicode"

	"github.com/jonathan/resume-builder/internal/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PresentLabel is the display value for an open-ended date
const PresentLabel = "Present"

// ellipsis is appended to truncated descriptions
const ellipsis = "..."

// IsEmptyString reports whether s has no content after trimming whitespace
func IsEmptyString(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsEmptyList reports whether l has no elements
func IsEmptyList[T any](l []T) bool {
	return len(l) == 0
}

// IsEmptyMapping reports whether m has no keys
func IsEmptyMapping[K comparable, V any](m map[K]V) bool {
	return len(m) == 0
}

// FormatDate normalizes an open-ended date marker to "Present".
// Every other value is returned trimmed but otherwise unchanged: dates are
// expected to already be in the document's display format.
func FormatDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "present", "ongoing":
		return PresentLabel
	}
	return trimmed
}

// DateRange formats a start/end pair as "Start -- End".
// An item marked current always ends in "Present". When only one side is
// known it is returned alone; an empty range yields "".
func DateRange(d types.Dates) string {
	start := FormatDate(d.Start.String())
	end := FormatDate(d.End.String())
	if bool(d.IsCurrent) {
		end = PresentLabel
	}

	switch {
	case start != "" && end != "":
		if start == end {
			return start
		}
		return start + " -- " + end
	case start != "":
		return start
	default:
		return end
	}
}

// Truncate shortens text to at most limit runes, cutting at the last word
// boundary when one exists in the second half of the window, and appends "...".
// A limit <= 0 disables truncation.
func Truncate(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	cut := runes[:limit]
	if !unicode.IsSpace(runes[limit]) {
		for i := len(cut) - 1; i > limit/2; i-- {
			if unicode.IsSpace(cut[i]) {
				cut = cut[:i]
				break
			}
		}
	}

	trimmed := strings.TrimRightFunc(string(cut), func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(",;:-", r)
	})
	return trimmed + ellipsis
}

// JoinNonEmpty joins the parts that are not blank with sep
func JoinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// nonBlank returns the trimmed entries of list that have content
func nonBlank(list []string) []string {
	kept := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	return kept
}

// DisplayTitle resolves the heading shown for a section: the explicit title
// when given, otherwise the tag in title case with underscores as spaces.
// A "custom_" prefix is dropped from the tag so "custom_volunteering" reads "Volunteering".
func DisplayTitle(sectionTitle, tag string) string {
	if title := strings.TrimSpace(sectionTitle); title != "" {
		return title
	}
	name := strings.TrimSpace(tag)
	if rest, ok := strings.CutPrefix(strings.ToLower(name), "custom_"); ok && rest != "" {
		name = rest
	}
	name = strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	}), " ")
	// Casers keep internal state and are not shared between calls.
	return cases.Title(language.English).String(name)
}
