package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/document"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/layout"
)

// pageBreak is understood by pandoc's LaTeX writer and ignored elsewhere.
const pageBreak = "\n\\newpage\n\n"

// Markdown renders the paginated document. Each page lists its sidebar
// sections first, then its main sections, then a page footer.
func Markdown(doc document.Document) (md string) {
	var b strings.Builder

	for i, page := range doc.Pages {
		if i > 0 {
			b.WriteString(pageBreak)
		}
		if page.Number == 1 {
			writeHeader(&b, doc)
		}
		for _, id := range page.Sidebar {
			writeSidebarSection(&b, doc, id)
		}
		for _, section := range page.Main {
			writeMainSection(&b, doc, section)
		}
		fmt.Fprintf(&b, "*Page %d / %d*\n", page.Number, page.Total)
	}

	md = b.String()
	return md
}

func writeHeader(b *strings.Builder, doc document.Document) {
	fmt.Fprintf(b, "# %s\n\n", doc.Person.Name)
	if doc.Person.Title != "" {
		fmt.Fprintf(b, "*%s*\n\n", doc.Person.Title)
	}
	if doc.Content.Tagline != "" {
		fmt.Fprintf(b, "**%s**\n\n", doc.Content.Tagline)
	}
}

//nolint:gocyclo // One case per sidebar section
func writeSidebarSection(b *strings.Builder, doc document.Document, id layout.SectionID) {
	switch id {
	case layout.SectionPhoto:
		if doc.Person.Photo != "" {
			fmt.Fprintf(b, "![%s](%s)\n\n", doc.Person.Name, doc.Person.Photo)
		}

	case layout.SectionContact:
		if doc.Visibility.ShowPersonalBlock {
			writeList(b, "Contact", personalLines(doc.Person))
		}
		writeList(b, "Links", publicLines(doc.Person))

	case layout.SectionSkills:
		if len(doc.Content.SkillCategories) == 0 {
			return
		}
		b.WriteString("### Skills\n\n")
		for _, cat := range doc.Content.SkillCategories {
			fmt.Fprintf(b, "- **%s**: %s\n", cat.Category, strings.Join(cat.Skills, ", "))
		}
		b.WriteString("\n")

	case layout.SectionLanguages:
		if len(doc.Languages) == 0 {
			return
		}
		b.WriteString("### Languages\n\n")
		for _, lang := range doc.Languages {
			fmt.Fprintf(b, "- %s (%s)\n", lang.Name, lang.Level)
		}
		b.WriteString("\n")

	case layout.SectionEducation:
		if doc.Content.Education == "" {
			return
		}
		fmt.Fprintf(b, "### Education\n\n%s\n\n", doc.Content.Education)

	case layout.SectionReferences:
		if len(doc.References) == 0 {
			return
		}
		b.WriteString("### References\n\n")
		for _, ref := range doc.References {
			writeReference(b, ref)
		}
		b.WriteString("\n")

	case layout.SectionAttachments:
		if len(doc.Attachments) == 0 {
			return
		}
		b.WriteString("### Attachments\n\n")
		for _, att := range doc.Attachments {
			fmt.Fprintf(b, "- [%s](%s)\n", att.Title, att.File)
		}
		b.WriteString("\n")
	}
}

func writeMainSection(b *strings.Builder, doc document.Document, section layout.Section) {
	switch section.ID {
	case layout.SectionProfile:
		if doc.Content.Profile == "" {
			return
		}
		fmt.Fprintf(b, "## Profile\n\n%s\n\n", doc.Content.Profile)
		if doc.Content.Slogan != "" {
			fmt.Fprintf(b, "> %s\n\n", doc.Content.Slogan)
		}

	case layout.SectionExperience:
		if len(section.Experience) == 0 {
			return
		}
		if section.ShowTitle {
			b.WriteString("## Experience\n\n")
		}
		for _, entry := range section.Experience {
			writeExperience(b, entry)
		}

	case layout.SectionAchievements:
		if len(doc.Content.KeyAchievements) == 0 {
			return
		}
		b.WriteString("## Key Achievements\n\n")
		for _, a := range doc.Content.KeyAchievements {
			fmt.Fprintf(b, "- %s\n", a)
		}
		b.WriteString("\n")

	case layout.SectionMotivation:
		letter := doc.Content.MotivationLetter
		if letter.Greeting == "" && letter.Body == "" && letter.Closing == "" {
			return
		}
		b.WriteString("## Motivation\n\n")
		for _, part := range []string{letter.Greeting, letter.Body, letter.Closing} {
			if part != "" {
				fmt.Fprintf(b, "%s\n\n", part)
			}
		}
	}
}

func writeExperience(b *strings.Builder, entry content.ExperienceEntry) {
	fmt.Fprintf(b, "### %s, %s\n\n", entry.Role, entry.Company)
	if entry.Period != "" {
		fmt.Fprintf(b, "*%s*\n\n", entry.Period)
	}
	if entry.Description != "" {
		fmt.Fprintf(b, "%s\n\n", entry.Description)
	}
	for _, a := range entry.Achievements {
		fmt.Fprintf(b, "- %s\n", a)
	}
	if len(entry.Achievements) > 0 {
		b.WriteString("\n")
	}
	if len(entry.Skills) > 0 {
		fmt.Fprintf(b, "*%s*\n\n", strings.Join(entry.Skills, " · "))
	}
}

func writeReference(b *strings.Builder, ref content.Reference) {
	line := ref.Name
	if ref.Position != "" || ref.Company != "" {
		line = fmt.Sprintf("%s, %s", line, strings.Trim(ref.Position+" "+ref.Company, " "))
	}
	fmt.Fprintf(b, "- %s\n", line)
	if ref.Email != "" {
		fmt.Fprintf(b, "  %s\n", ref.Email)
	}
	if ref.Phone != "" {
		fmt.Fprintf(b, "  %s\n", ref.Phone)
	}
}

// writeList writes a sidebar heading and its bullets, or nothing when lines
// is empty.
func writeList(b *strings.Builder, heading string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", heading)
	for _, line := range lines {
		fmt.Fprintf(b, "- %s\n", line)
	}
	b.WriteString("\n")
}

// personalLines lists whatever personal contact data survived the privacy
// gate.
func personalLines(p content.Person) (lines []string) {
	for _, v := range []string{p.Email, p.Phone, p.Location} {
		if v != "" {
			lines = append(lines, v)
		}
	}
	return lines
}

// publicLines lists the website and links, which every viewer sees.
func publicLines(p content.Person) (lines []string) {
	if p.Website != "" {
		lines = append(lines, p.Website)
	}

	keys := make([]string, 0, len(p.Links))
	for k := range p.Links {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, p.Links[k]))
	}
	return lines
}
