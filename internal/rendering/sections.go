package rendering

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// itemStyle controls how the rendered items of a list section are joined
type itemStyle int

const (
	// styleEntries separates multi-line entries with vertical space
	styleEntries itemStyle = iota
	// styleBullets renders each item as one bullet
	styleBullets
	// styleInline joins items on a single line
	styleInline
)

// renderList decodes a list-shaped section and renders each item with renderItem.
// Items that render to nothing are dropped and do not count towards max_items_per_section.
func renderList[T any](raw json.RawMessage, ctx SectionContext, style itemStyle, renderItem func(T, SectionContext) string) (Fragment, error) {
	var section types.ListSection[T]
	if err := json.Unmarshal(raw, &section); err != nil {
		return Fragment{}, &SectionError{Tag: ctx.Tag, Message: "invalid section data", Cause: err}
	}

	frag := Fragment{Title: EscapeLaTeX(DisplayTitle(section.SectionTitle.String(), ctx.Tag))}
	limit := ctx.Rules.MaxItemsPerSection

	var rendered []string
	for _, item := range section.Items {
		if limit > 0 && len(rendered) >= limit {
			break
		}
		if out := strings.TrimSpace(renderItem(item, ctx)); out != "" {
			rendered = append(rendered, out)
		}
	}

	frag.Body = joinItems(rendered, style)
	return frag, nil
}

func joinItems(rendered []string, style itemStyle) string {
	if len(rendered) == 0 {
		return ""
	}
	switch style {
	case styleBullets:
		return strings.TrimRight(bulletList(rendered), "\n")
	case styleInline:
		return strings.Join(rendered, ", ") + `\par`
	default:
		return strings.Join(rendered, "\n\\cvitemsep\n")
	}
}

// withDate appends a right-aligned date to a one-line item
func withDate(text, date string) string {
	switch {
	case date == "":
		return text
	case text == "":
		return date
	default:
		return text + ` \hfill ` + date
	}
}

func renderSummary(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	var section types.SummarySection
	if err := json.Unmarshal(raw, &section); err != nil {
		return Fragment{}, &SectionError{Tag: ctx.Tag, Message: "invalid section data", Cause: err}
	}

	items := nonBlank(section.Items)
	if limit := ctx.Rules.MaxItemsPerSection; limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	var body strings.Builder
	if content := esc(section.Content.String()); content != "" {
		body.WriteString(content)
		body.WriteString("\\par\n")
	}
	body.WriteString(bulletList(escAll(items)))

	return Fragment{
		Title: EscapeLaTeX(DisplayTitle(section.SectionTitle.String(), ctx.Tag)),
		Body:  strings.TrimRight(body.String(), "\n"),
	}, nil
}

func renderSkills(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	var section types.SkillsSection
	if err := json.Unmarshal(raw, &section); err != nil {
		return Fragment{}, &SectionError{Tag: ctx.Tag, Message: "invalid section data", Cause: err}
	}

	limit := ctx.Rules.MaxItemsPerSection
	var lines []string
	for _, category := range section.Categories {
		if limit > 0 && len(lines) >= limit {
			break
		}
		value := JoinNonEmpty(", ", nonBlank(category.Items)...)
		if proficiency := strings.TrimSpace(category.Proficiency.String()); proficiency != "" && value != "" {
			value += " (" + proficiency + ")"
		}
		value = JoinNonEmpty(" -- ", value, Truncate(category.Description.String(), ctx.Rules.TruncateAt()))
		if value == "" {
			continue
		}
		lines = append(lines, strings.TrimSpace(cvLine(esc(category.Name.String()), EscapeLaTeX(value))))
	}
	if flat := nonBlank(section.Items); len(flat) > 0 && (limit == 0 || len(lines) < limit) {
		lines = append(lines, strings.TrimSpace(cvLine("", EscapeLaTeX(strings.Join(flat, ", ")))))
	}

	return Fragment{
		Title: EscapeLaTeX(DisplayTitle(section.SectionTitle.String(), ctx.Tag)),
		Body:  strings.Join(lines, "\n"),
	}, nil
}

func renderExperience(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	return renderList(raw, ctx, styleEntries, func(item types.ExperienceItem, ctx SectionContext) string {
		return entryBlock{
			heading:     esc(item.Title.String()),
			dates:       esc(DateRange(item.Dates)),
			subheading:  link(esc(item.Company.String()), item.URL.String()),
			location:    esc(item.Location.String()),
			description: describe(item.Description.String(), ctx.Rules.TruncateAt()),
			bullets:     escAll(item.Achievements),
			lines: []labeledLine{
				{label: "Technologies", value: esc(strings.Join(nonBlank(item.Technologies), ", "))},
			},
		}.render()
	})
}

func renderEducation(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	return renderList(raw, ctx, styleEntries, func(item types.EducationItem, ctx SectionContext) string {
		return entryBlock{
			heading:     esc(item.Institution.String()),
			dates:       esc(DateRange(item.Dates)),
			subheading:  esc(JoinNonEmpty(" in ", item.Degree.String(), item.Field.String())),
			location:    esc(item.Location.String()),
			description: describe(item.Description.String(), ctx.Rules.TruncateAt()),
			lines: []labeledLine{
				{label: "GPA", value: esc(item.GPA.String())},
				{label: "Honors", value: esc(strings.Join(nonBlank(item.Honors), ", "))},
				{label: "Coursework", value: esc(strings.Join(nonBlank(item.Coursework), ", "))},
			},
		}.render()
	})
}

func renderProjects(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	return renderList(raw, ctx, styleEntries, func(item types.ProjectItem, ctx SectionContext) string {
		return entryBlock{
			heading:     link(esc(item.Name.String()), item.URL.String()),
			dates:       esc(DateRange(item.Dates)),
			subheading:  esc(item.Role.String()),
			description: describe(item.Description.String(), ctx.Rules.TruncateAt()),
			bullets:     escAll(item.Highlights),
			lines: []labeledLine{
				{label: "Technologies", value: esc(strings.Join(nonBlank(item.Technologies), ", "))},
			},
		}.render()
	})
}

func renderVolunteer(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	return renderList(raw, ctx, styleEntries, func(item types.VolunteerItem, ctx SectionContext) string {
		return entryBlock{
			heading:     esc(item.Role.String()),
			dates:       esc(DateRange(item.Dates)),
			subheading:  link(esc(item.Organization.String()), item.URL.String()),
			location:    esc(item.Location.String()),
			description: describe(item.Description.String(), ctx.Rules.TruncateAt()),
			bullets:     escAll(item.Achievements),
		}.render()
	})
}

func renderResearch(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	return renderList(raw, ctx, styleEntries, func(item types.ResearchItem, ctx SectionContext) string {
		return entryBlock{
			heading:     esc(item.Title.String()),
			dates:       esc(DateRange(item.Dates)),
			subheading:  JoinNonEmpty(", ", esc(item.Role.String()), link(esc(item.Institution.String()), item.URL.String())),
			location:    esc(item.Location.String()),
			description: describe(item.Description.String(), ctx.Rules.TruncateAt()),
			bullets:     escAll(item.Highlights),
			lines: []labeledLine{
				{label: "Technologies", value: esc(strings.Join(nonBlank(item.Technologies), ", "))},
			},
		}.render()
	})
}

func renderReferences(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	return renderList(raw, ctx, styleEntries, func(item types.ReferenceItem, _ SectionContext) string {
		email := strings.TrimSpace(item.Email.String())
		if email != "" {
			email = link(esc(email), email)
		}
		return entryBlock{
			heading:    esc(item.Name.String()),
			subheading: esc(JoinNonEmpty(", ", item.Title.String(), item.Company.String())),
			location:   esc(item.Relationship.String()),
			lines: []labeledLine{
				{label: "Email", value: email},
				{label: "Phone", value: esc(item.Phone.String())},
			},
		}.render()
	})
}

func renderCustom(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	return renderList(raw, ctx, styleEntries, func(item types.CustomItem, ctx SectionContext) string {
		dates := DateRange(item.Dates)
		if dates == "" {
			dates = FormatDate(item.Date.String())
		}
		return entryBlock{
			heading:     link(esc(item.Title.String()), item.URL.String()),
			dates:       esc(dates),
			subheading:  esc(item.Subtitle.String()),
			location:    esc(item.Location.String()),
			description: describe(item.Description.String(), ctx.Rules.TruncateAt()),
			bullets:     escAll(item.Bullets),
		}.render()
	})
}

func renderCertifications(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	return renderList(raw, ctx, styleBullets, func(item types.CertificationItem, _ SectionContext) string {
		credential := ""
		if id := esc(item.CredentialID.String()); id != "" {
			credential = "Credential ID " + id
		}
		text := JoinNonEmpty(", ",
			bold(link(esc(item.Name.String()), item.URL.String())),
			esc(item.Issuer.String()),
			credential,
		)
		dates := DateRange(types.Dates{Start: item.Date, End: item.ExpiryDate})
		return withDate(text, esc(dates))
	})
}

func renderAchievements(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	return renderList(raw, ctx, styleBullets, func(item types.AchievementItem, ctx SectionContext) string {
		head := JoinNonEmpty(", ", bold(link(esc(item.Title.String()), item.URL.String())), esc(item.Issuer.String()))
		text := JoinNonEmpty(": ", head, describe(item.Description.String(), ctx.Rules.TruncateAt()))
		return withDate(text, esc(FormatDate(item.Date.String())))
	})
}

func renderPublications(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	return renderList(raw, ctx, styleBullets, func(item types.PublicationItem, ctx SectionContext) string {
		text := JoinNonEmpty(". ",
			bold(link(esc(item.Title.String()), item.URL.String())),
			esc(strings.Join(nonBlank(item.Authors), ", ")),
			italic(esc(item.Publisher.String())),
			describe(item.Description.String(), ctx.Rules.TruncateAt()),
		)
		return withDate(text, esc(FormatDate(item.Date.String())))
	})
}

func renderPatents(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	return renderList(raw, ctx, styleBullets, func(item types.PatentItem, ctx SectionContext) string {
		inventors := ""
		if names := nonBlank(item.Inventors); len(names) > 0 {
			inventors = "Inventors: " + esc(strings.Join(names, ", "))
		}
		text := JoinNonEmpty(", ",
			bold(link(esc(item.Title.String()), item.URL.String())),
			esc(item.Number.String()),
			esc(item.Status.String()),
		)
		text = JoinNonEmpty(". ", text, inventors, describe(item.Description.String(), ctx.Rules.TruncateAt()))
		return withDate(text, esc(FormatDate(item.Date.String())))
	})
}

func renderLanguages(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	return renderList(raw, ctx, styleInline, func(item types.LanguageItem, _ SectionContext) string {
		language := esc(item.Language.String())
		if proficiency := esc(item.Proficiency.String()); language != "" && proficiency != "" {
			return language + " (" + proficiency + ")"
		}
		return language
	})
}

func renderInterests(raw json.RawMessage, ctx SectionContext) (Fragment, error) {
	return renderList(raw, ctx, styleInline, func(item types.InterestItem, _ SectionContext) string {
		name := esc(item.Name.String())
		if name == "" {
			name = esc(item.Description.String())
		}
		if keywords := esc(strings.Join(nonBlank(item.Keywords), ", ")); name != "" && keywords != "" {
			return name + " (" + keywords + ")"
		}
		return name
	})
}
