package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// SectionType is the tag a section is keyed by in CVDocument.Sections
type SectionType string

// Built-in section types
const (
	SectionHeader         SectionType = "header"
	SectionSummary        SectionType = "summary"
	SectionExperience     SectionType = "experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionProjects       SectionType = "projects"
	SectionCertifications SectionType = "certifications"
	SectionLanguages      SectionType = "languages"
	SectionVolunteer      SectionType = "volunteer"
	SectionAchievements   SectionType = "achievements"
	SectionPublications   SectionType = "publications"
	SectionInterests      SectionType = "interests"
	SectionReferences     SectionType = "references"
	SectionPatents        SectionType = "patents"
	SectionResearch       SectionType = "research"
	SectionCustom         SectionType = "custom"
)

// AllSectionTypes lists the built-in section types in their conventional order
var AllSectionTypes = []SectionType{
	SectionHeader,
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionCertifications,
	SectionLanguages,
	SectionVolunteer,
	SectionAchievements,
	SectionPublications,
	SectionInterests,
	SectionReferences,
	SectionPatents,
	SectionResearch,
	SectionCustom,
}

// HeaderSection is the candidate's name, headline and contact line
type HeaderSection struct {
	Name        Text        `json:"name"`
	Title       Text        `json:"title"`
	ContactInfo ContactInfo `json:"contact_info"`
}

// ContactEntry is one contact method, e.g. email or linkedin
type ContactEntry struct {
	Method string `json:"-"`
	Value  Text   `json:"value"`
	Link   Text   `json:"link,omitempty"`
}

// ContactInfo is the ordered set of contact methods.
// Each value may be an object {value, link} or a bare string.
type ContactInfo []ContactEntry

// UnmarshalJSON decodes the contact mapping preserving key order
func (c *ContactInfo) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("contact_info: invalid JSON")
	}
	r := gjson.ParseBytes(data)
	*c = nil
	if r.Type == gjson.Null {
		return nil
	}
	if !r.IsObject() {
		return fmt.Errorf("contact_info: expected an object, got %s", describeJSON(r))
	}
	r.ForEach(func(key, value gjson.Result) bool {
		entry := ContactEntry{Method: key.String()}
		if value.IsObject() {
			entry.Value = Text(textOf(value.Get("value")))
			entry.Link = Text(textOf(value.Get("link")))
		} else {
			entry.Value = Text(textOf(value))
		}
		*c = append(*c, entry)
		return true
	})
	return nil
}

// MarshalJSON encodes the contact mapping in order
func (c ContactInfo) MarshalJSON() ([]byte, error) {
	sections := NewSections()
	for _, entry := range c {
		if err := sections.Set(entry.Method, struct {
			Value Text `json:"value"`
			Link  Text `json:"link,omitempty"`
		}{entry.Value, entry.Link}); err != nil {
			return nil, err
		}
	}
	return sections.MarshalJSON()
}

// SummarySection is a free-text professional summary.
// A bare string decodes into Content.
type SummarySection struct {
	SectionTitle Text     `json:"section_title,omitempty"`
	Content      Text     `json:"content,omitempty"`
	Items        TextList `json:"items,omitempty"`
}

type summaryAlias SummarySection

// UnmarshalJSON accepts either the object form or a bare string
func (s *SummarySection) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("summary: invalid JSON")
	}
	r := gjson.ParseBytes(data)
	switch {
	case r.Type == gjson.String:
		*s = SummarySection{Content: Text(r.Str)}
		return nil
	case r.IsArray():
		var items TextList
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*s = SummarySection{Items: items}
		return nil
	}
	var alias summaryAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*s = SummarySection(alias)
	return nil
}

// ListSection is the common shape of item-based sections.
// A bare array decodes into Items.
type ListSection[T any] struct {
	SectionTitle Text `json:"section_title,omitempty"`
	Items        []T  `json:"items"`
}

type listSectionAlias[T any] ListSection[T]

// UnmarshalJSON accepts either the object form or a bare item array
func (s *ListSection[T]) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("section: invalid JSON")
	}
	r := gjson.ParseBytes(data)
	switch {
	case r.Type == gjson.Null:
		*s = ListSection[T]{}
		return nil
	case r.IsArray():
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*s = ListSection[T]{Items: items}
		return nil
	case !r.IsObject():
		return fmt.Errorf("section: expected an object or array, got %s", describeJSON(r))
	}
	var alias listSectionAlias[T]
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*s = ListSection[T](alias)
	return nil
}

// SkillsSection groups skills into categories.
// Items holds a flat skill list when the model did not categorize.
type SkillsSection struct {
	SectionTitle Text            `json:"section_title,omitempty"`
	Categories   []SkillCategory `json:"categories,omitempty"`
	Items        TextList        `json:"items,omitempty"`
}

type skillsAlias SkillsSection

// UnmarshalJSON accepts the categories object, a bare array of skills or
// categories, and a plain mapping of category name to skill list.
func (s *SkillsSection) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("skills: invalid JSON")
	}
	r := gjson.ParseBytes(data)
	*s = SkillsSection{}

	switch {
	case r.Type == gjson.Null:
		return nil
	case r.IsArray():
		var err error
		r.ForEach(func(_, value gjson.Result) bool {
			if value.IsObject() {
				var category SkillCategory
				if err = json.Unmarshal([]byte(value.Raw), &category); err != nil {
					return false
				}
				s.Categories = append(s.Categories, category)
				return true
			}
			if text := textOf(value); strings.TrimSpace(text) != "" {
				s.Items = append(s.Items, text)
			}
			return true
		})
		return err
	case !r.IsObject():
		s.Items = TextList{textOf(r)}
		return nil
	}

	if r.Get("categories").Exists() || r.Get("items").Exists() {
		var alias skillsAlias
		if err := json.Unmarshal(data, &alias); err != nil {
			return err
		}
		*s = SkillsSection(alias)
		return nil
	}

	// {"Languages": ["Go"], "Tools": "Docker, Git"}
	var err error
	r.ForEach(func(key, value gjson.Result) bool {
		if key.String() == "section_title" {
			s.SectionTitle = Text(textOf(value))
			return true
		}
		var items TextList
		if err = json.Unmarshal([]byte(value.Raw), &items); err != nil {
			return false
		}
		s.Categories = append(s.Categories, SkillCategory{Name: Text(key.String()), Items: items})
		return true
	})
	return err
}

// SkillCategory is a named group of skills
type SkillCategory struct {
	Name        Text     `json:"name"`
	Items       TextList `json:"items"`
	Description Text     `json:"description,omitempty"`
	Proficiency Text     `json:"proficiency,omitempty"`
}

// ExperienceItem is one role
type ExperienceItem struct {
	Title        Text     `json:"title,omitempty"`
	Company      Text     `json:"company,omitempty"`
	URL          Text     `json:"url,omitempty"`
	Location     Text     `json:"location,omitempty"`
	Dates        Dates    `json:"dates,omitempty"`
	Description  Text     `json:"description,omitempty"`
	Achievements TextList `json:"achievements,omitempty"`
	Technologies TextList `json:"technologies,omitempty"`
}

// EducationItem is one degree or program
type EducationItem struct {
	Institution Text     `json:"institution,omitempty"`
	Degree      Text     `json:"degree,omitempty"`
	Field       Text     `json:"field,omitempty"`
	Location    Text     `json:"location,omitempty"`
	Dates       Dates    `json:"dates,omitempty"`
	GPA         Text     `json:"gpa,omitempty"`
	Honors      TextList `json:"honors,omitempty"`
	Coursework  TextList `json:"coursework,omitempty"`
	Description Text     `json:"description,omitempty"`
}

// ProjectItem is one project
type ProjectItem struct {
	Name         Text     `json:"name,omitempty"`
	Role         Text     `json:"role,omitempty"`
	URL          Text     `json:"url,omitempty"`
	Dates        Dates    `json:"dates,omitempty"`
	Description  Text     `json:"description,omitempty"`
	Highlights   TextList `json:"highlights,omitempty"`
	Technologies TextList `json:"technologies,omitempty"`
}

// CertificationItem is one certification. A bare string decodes into Name.
type CertificationItem struct {
	Name         Text `json:"name,omitempty"`
	Issuer       Text `json:"issuer,omitempty"`
	Date         Text `json:"date,omitempty"`
	ExpiryDate   Text `json:"expiry_date,omitempty"`
	CredentialID Text `json:"credential_id,omitempty"`
	URL          Text `json:"url,omitempty"`
}

type certificationAlias CertificationItem

// UnmarshalJSON accepts either the object form or a bare string
func (c *CertificationItem) UnmarshalJSON(data []byte) error {
	var alias certificationAlias
	name, err := decodeItemOrName(data, &alias)
	if err != nil {
		return err
	}
	*c = CertificationItem(alias)
	if name != "" {
		c.Name = Text(name)
	}
	return nil
}

// LanguageItem is one spoken language. A bare string decodes into Language.
type LanguageItem struct {
	Language    Text `json:"language,omitempty"`
	Name        Text `json:"name,omitempty"`
	Proficiency Text `json:"proficiency,omitempty"`
}

type languageAlias LanguageItem

// UnmarshalJSON accepts either the object form or a bare string
func (l *LanguageItem) UnmarshalJSON(data []byte) error {
	var alias languageAlias
	name, err := decodeItemOrName(data, &alias)
	if err != nil {
		return err
	}
	*l = LanguageItem(alias)
	if name != "" {
		l.Language = Text(name)
	}
	if l.Language == "" {
		l.Language = l.Name
	}
	return nil
}

// VolunteerItem is one volunteer role
type VolunteerItem struct {
	Role         Text     `json:"role,omitempty"`
	Organization Text     `json:"organization,omitempty"`
	Location     Text     `json:"location,omitempty"`
	URL          Text     `json:"url,omitempty"`
	Dates        Dates    `json:"dates,omitempty"`
	Description  Text     `json:"description,omitempty"`
	Achievements TextList `json:"achievements,omitempty"`
}

// AchievementItem is one award or achievement. A bare string decodes into Title.
type AchievementItem struct {
	Title       Text `json:"title,omitempty"`
	Issuer      Text `json:"issuer,omitempty"`
	Date        Text `json:"date,omitempty"`
	URL         Text `json:"url,omitempty"`
	Description Text `json:"description,omitempty"`
}

type achievementAlias AchievementItem

// UnmarshalJSON accepts either the object form or a bare string
func (a *AchievementItem) UnmarshalJSON(data []byte) error {
	var alias achievementAlias
	name, err := decodeItemOrName(data, &alias)
	if err != nil {
		return err
	}
	*a = AchievementItem(alias)
	if name != "" {
		a.Title = Text(name)
	}
	return nil
}

// PublicationItem is one publication
type PublicationItem struct {
	Title       Text     `json:"title,omitempty"`
	Authors     TextList `json:"authors,omitempty"`
	Publisher   Text     `json:"publisher,omitempty"`
	Date        Text     `json:"date,omitempty"`
	URL         Text     `json:"url,omitempty"`
	Description Text     `json:"description,omitempty"`
}

// InterestItem is one interest. A bare string decodes into Name.
type InterestItem struct {
	Name        Text     `json:"name,omitempty"`
	Keywords    TextList `json:"keywords,omitempty"`
	Description Text     `json:"description,omitempty"`
}

type interestAlias InterestItem

// UnmarshalJSON accepts either the object form or a bare string
func (i *InterestItem) UnmarshalJSON(data []byte) error {
	var alias interestAlias
	name, err := decodeItemOrName(data, &alias)
	if err != nil {
		return err
	}
	*i = InterestItem(alias)
	if name != "" {
		i.Name = Text(name)
	}
	return nil
}

// ReferenceItem is one professional reference
type ReferenceItem struct {
	Name         Text `json:"name,omitempty"`
	Title        Text `json:"title,omitempty"`
	Company      Text `json:"company,omitempty"`
	Relationship Text `json:"relationship,omitempty"`
	Email        Text `json:"email,omitempty"`
	Phone        Text `json:"phone,omitempty"`
}

// PatentItem is one patent
type PatentItem struct {
	Title       Text     `json:"title,omitempty"`
	Number      Text     `json:"number,omitempty"`
	Status      Text     `json:"status,omitempty"`
	Date        Text     `json:"date,omitempty"`
	URL         Text     `json:"url,omitempty"`
	Inventors   TextList `json:"inventors,omitempty"`
	Description Text     `json:"description,omitempty"`
}

// ResearchItem is one research position or project
type ResearchItem struct {
	Title        Text     `json:"title,omitempty"`
	Institution  Text     `json:"institution,omitempty"`
	Role         Text     `json:"role,omitempty"`
	Location     Text     `json:"location,omitempty"`
	URL          Text     `json:"url,omitempty"`
	Dates        Dates    `json:"dates,omitempty"`
	Description  Text     `json:"description,omitempty"`
	Highlights   TextList `json:"highlights,omitempty"`
	Technologies TextList `json:"technologies,omitempty"`
}

// CustomItem is a free-form entry for sections without a dedicated shape
type CustomItem struct {
	Title       Text     `json:"title,omitempty"`
	Subtitle    Text     `json:"subtitle,omitempty"`
	Location    Text     `json:"location,omitempty"`
	Date        Text     `json:"date,omitempty"`
	Dates       Dates    `json:"dates,omitempty"`
	URL         Text     `json:"url,omitempty"`
	Description Text     `json:"description,omitempty"`
	Bullets     TextList `json:"bullets,omitempty"`
}

// decodeItemOrName decodes data into v when it is an object and returns
// the string itself when the item was given as a bare scalar.
func decodeItemOrName(data []byte, v any) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("item: invalid JSON")
	}
	r := gjson.ParseBytes(data)
	if !r.IsObject() {
		return textOf(r), nil
	}
	return "", json.Unmarshal(data, v)
}
