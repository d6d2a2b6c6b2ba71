// Package layout slices the work-experience list across a fixed sequence of
// page templates and numbers the resulting pages.
package layout

import (
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
)

// SectionID identifies a sidebar or main section.
type SectionID string

// Sidebar sections.
const (
	SectionPhoto       SectionID = "photo"
	SectionContact     SectionID = "contact"
	SectionSkills      SectionID = "skills"
	SectionLanguages   SectionID = "languages"
	SectionEducation   SectionID = "education"
	SectionReferences  SectionID = "references"
	SectionAttachments SectionID = "attachments"
)

// Main sections.
const (
	SectionProfile      SectionID = "profile"
	SectionExperience   SectionID = "experience"
	SectionAchievements SectionID = "achievements"
	SectionMotivation   SectionID = "motivation"
)

// ExperienceSlice selects experience entries [Start, End). A nil End runs to
// the end of the list. A nil ShowTitle defaults to Start == 0.
type ExperienceSlice struct {
	Start     int   `json:"start"`
	End       *int  `json:"end,omitempty"`
	ShowTitle *bool `json:"showTitle,omitempty"`
}

// MainSection is a main-column entry of a template. Slice is set only for
// sliced-experience directives.
type MainSection struct {
	ID    SectionID        `json:"id"`
	Slice *ExperienceSlice `json:"slice,omitempty"`
}

// IsExperience reports whether the section renders experience entries.
func (m MainSection) IsExperience() (ok bool) {
	ok = m.ID == SectionExperience || m.Slice != nil
	return ok
}

// PageTemplate is the static definition of one output page.
type PageTemplate struct {
	Sidebar []SectionID   `json:"sidebar"`
	Main    []MainSection `json:"main"`
}

// Section is a main section ready for rendering. For experience sections the
// slice is already materialised into Experience.
type Section struct {
	ID           SectionID                 `json:"id"`
	IsExperience bool                      `json:"isExperience"`
	ShowTitle    bool                      `json:"showTitle"`
	Experience   []content.ExperienceEntry `json:"experience,omitempty"`
}

// Page is one rendered page.
type Page struct {
	Number  int         `json:"number"`
	Total   int         `json:"total"`
	Sidebar []SectionID `json:"sidebar"`
	Main    []Section   `json:"main"`
}

// Slice returns an experience-slice directive.
func Slice(start int, end ...int) (m MainSection) {
	s := &ExperienceSlice{Start: start}
	if len(end) > 0 {
		e := end[0]
		s.End = &e
	}
	m = MainSection{ID: SectionExperience, Slice: s}
	return m
}

// Main returns a plain main-section entry.
func Main(id SectionID) (m MainSection) {
	m = MainSection{ID: id}
	return m
}

// Paginate materialises the templates against the experience list. Pages with
// nothing on them are dropped; when showExperience is false, pages holding
// only experience are dropped too and experience sections are removed from
// the rest. Surviving pages are numbered from 1 and carry the final total.
func Paginate(templates []PageTemplate, experience []content.ExperienceEntry, showExperience bool) (pages []Page) {
	pages = make([]Page, 0, len(templates))

	for _, tpl := range templates {
		if len(tpl.Sidebar) == 0 && len(tpl.Main) == 0 {
			continue
		}

		if !showExperience && len(tpl.Sidebar) == 0 && allExperience(tpl.Main) {
			continue
		}

		page := Page{
			Sidebar: append([]SectionID{}, tpl.Sidebar...),
			Main:    make([]Section, 0, len(tpl.Main)),
		}

		for _, m := range tpl.Main {
			if m.IsExperience() && !showExperience {
				continue
			}
			page.Main = append(page.Main, materialise(m, experience))
		}

		pages = append(pages, page)
	}

	total := len(pages)
	for i := range pages {
		pages[i].Number = i + 1
		pages[i].Total = total
	}

	return pages
}

func allExperience(main []MainSection) (ok bool) {
	for _, m := range main {
		if !m.IsExperience() {
			return ok
		}
	}
	ok = true
	return ok
}

func materialise(m MainSection, experience []content.ExperienceEntry) (s Section) {
	s = Section{ID: m.ID}
	if !m.IsExperience() {
		s.ShowTitle = true
		return s
	}

	s.IsExperience = true

	start, end := 0, len(experience)
	if m.Slice != nil {
		start = m.Slice.Start
		if m.Slice.End != nil {
			end = *m.Slice.End
		}
	}
	start = clamp(start, 0, len(experience))
	end = clamp(end, start, len(experience))

	s.Experience = append([]content.ExperienceEntry{}, experience[start:end]...)

	s.ShowTitle = start == 0
	if m.Slice != nil {
		s.ShowTitle = m.Slice.Start == 0
		if m.Slice.ShowTitle != nil {
			s.ShowTitle = *m.Slice.ShowTitle
		}
	}

	return s
}

func clamp(v, lo, hi int) (out int) {
	out = max(lo, min(v, hi))
	return out
}
