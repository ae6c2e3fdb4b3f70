package validation

import (
	"regexp"
	"strconv"
	"strings"
)

// Issue severities
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue kinds
const (
	KindLaTeXError       = "latex_error"
	KindOverfullBox      = "overfull_box"
	KindMissingCharacter = "missing_character"
	KindLaTeXWarning     = "latex_warning"
	KindPageOverflow     = "page_overflow"
)

// Issue is one problem found while compiling a rendered document
type Issue struct {
	Severity string `json:"severity"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	// Line is the source line the engine reported, or 0
	Line int `json:"line,omitempty"`
}

var (
	errorLinePattern    = regexp.MustCompile(`^l\.(\d+)`)
	overfullPattern     = regexp.MustCompile(`^Overfull \\[hv]box \(([\d.]+)pt too (?:wide|high)\).*?lines? (\d+)`)
	missingCharPattern  = regexp.MustCompile(`^Missing character: (.*)$`)
	latexWarningPattern = regexp.MustCompile(`^(?:LaTeX|Package \w+) Warning: (.*?)(?: on input line (\d+))?\.?$`)
)

// MinOverfullPoints ignores overfull boxes narrower than this, which do not show in print
const MinOverfullPoints = 1.0

// ParseLog extracts errors and layout warnings from LaTeX engine output.
// Issues are returned in log order.
func ParseLog(logOutput string) []Issue {
	var issues []Issue
	lines := strings.Split(strings.ReplaceAll(logOutput, "\r\n", "\n"), "\n")

	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " ")

		switch {
		case strings.HasPrefix(line, "! "):
			issue := Issue{Severity: SeverityError, Kind: KindLaTeXError, Message: strings.TrimPrefix(line, "! ")}
			// The offending source line follows within a few lines as "l.<n> ..."
			for j := i + 1; j < len(lines) && j <= i+6; j++ {
				if m := errorLinePattern.FindStringSubmatch(lines[j]); m != nil {
					issue.Line, _ = strconv.Atoi(m[1])
					break
				}
			}
			issues = append(issues, issue)

		case strings.HasPrefix(line, "Overfull "):
			m := overfullPattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			points, _ := strconv.ParseFloat(m[1], 64)
			if points < MinOverfullPoints {
				continue
			}
			lineNum, _ := strconv.Atoi(m[2])
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Kind:     KindOverfullBox,
				Message:  "content overflows the margin by " + m[1] + "pt",
				Line:     lineNum,
			})

		default:
			if m := missingCharPattern.FindStringSubmatch(line); m != nil {
				issues = append(issues, Issue{Severity: SeverityWarning, Kind: KindMissingCharacter, Message: m[1]})
				continue
			}
			if m := latexWarningPattern.FindStringSubmatch(line); m != nil {
				issue := Issue{Severity: SeverityWarning, Kind: KindLaTeXWarning, Message: m[1]}
				if m[2] != "" {
					issue.Line, _ = strconv.Atoi(m[2])
				}
				issues = append(issues, issue)
			}
		}
	}

	return issues
}
