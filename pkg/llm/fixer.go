package llm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
)

// Fixer cleans up formatting the model was told not to produce. It only
// touches presentation; facts are never rewritten.
type Fixer struct {
	markupPatterns      []FixPattern
	listItemPatterns    []FixPattern
	placeholderPatterns []FixPattern
}

// FixPattern defines a search-and-fix pattern.
type FixPattern struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// NewFixer creates a new fixer with predefined fix patterns.
func NewFixer() (fixer *Fixer) {
	fixer = &Fixer{
		markupPatterns:      buildMarkupPatterns(),
		listItemPatterns:    buildListItemPatterns(),
		placeholderPatterns: buildPlaceholderPatterns(),
	}
	return fixer
}

// ApplyFixes returns b with every text field cleaned, plus a description of
// each fix that changed something.
func (f *Fixer) ApplyFixes(b content.Bundle) (fixed content.Bundle, appliedFixes []string) {
	fixed = b.Clone()
	appliedFixes = []string{}

	text := func(field string, s *string) {
		var applied []string
		*s, applied = f.fixText(*s)
		for _, name := range applied {
			appliedFixes = append(appliedFixes, fmt.Sprintf("%s: %s", field, name))
		}
	}
	item := func(field string, items []string) {
		for i := range items {
			var applied []string
			items[i], applied = f.fixListItem(items[i])
			for _, name := range applied {
				appliedFixes = append(appliedFixes, fmt.Sprintf("%s[%d]: %s", field, i, name))
			}
		}
	}

	text("tagline", &fixed.Tagline)
	text("profile", &fixed.Profile)
	text("slogan", &fixed.Slogan)
	text("education", &fixed.Education)
	text("motivationLetter.greeting", &fixed.MotivationLetter.Greeting)
	text("motivationLetter.body", &fixed.MotivationLetter.Body)
	text("motivationLetter.closing", &fixed.MotivationLetter.Closing)
	item("keyAchievements", fixed.KeyAchievements)

	for i := range fixed.WorkExperience {
		entry := &fixed.WorkExperience[i]
		text(fmt.Sprintf("workExperience[%d].description", i), &entry.Description)
		item(fmt.Sprintf("workExperience[%d].achievements", i), entry.Achievements)
	}

	return fixed, appliedFixes
}

func (f *Fixer) fixText(s string) (fixed string, applied []string) {
	fixed, applied = applyPatterns(s, f.markupPatterns, applied)
	fixed, applied = applyPatterns(fixed, f.placeholderPatterns, applied)
	fixed = strings.TrimSpace(fixed)
	return fixed, applied
}

func (f *Fixer) fixListItem(s string) (fixed string, applied []string) {
	fixed, applied = applyPatterns(s, f.listItemPatterns, applied)
	fixed, applied = applyPatterns(fixed, f.markupPatterns, applied)
	fixed = strings.TrimSpace(fixed)
	return fixed, applied
}

func applyPatterns(s string, patterns []FixPattern, applied []string) (fixed string, out []string) {
	fixed = s
	out = applied
	for _, pattern := range patterns {
		if pattern.Pattern.MatchString(fixed) {
			fixed = pattern.Pattern.ReplaceAllString(fixed, pattern.Replacement)
			out = append(out, pattern.Name)
		}
	}
	return fixed, out
}

// buildMarkupPatterns strips markdown emphasis and headings.
func buildMarkupPatterns() (patterns []FixPattern) {
	patterns = []FixPattern{
		{
			Name:        "bold markup",
			Pattern:     regexp.MustCompile(`\*\*([^*\n]+)\*\*`),
			Replacement: `$1`,
		},
		{
			Name:        "underscore emphasis",
			Pattern:     regexp.MustCompile(`(^|\s)_([^_\n]+)_(\s|[.,;:]|$)`),
			Replacement: `$1$2$3`,
		},
		{
			Name:        "heading markup",
			Pattern:     regexp.MustCompile(`(?m)^#{1,6}\s+`),
			Replacement: ``,
		},
	}

	return patterns
}

// buildListItemPatterns strips bullet characters the renderer adds itself.
func buildListItemPatterns() (patterns []FixPattern) {
	patterns = []FixPattern{
		{
			Name:        "leading bullet",
			Pattern:     regexp.MustCompile(`^\s*(?:[-*•▪◦]|\d+[.)])\s+`),
			Replacement: ``,
		},
	}

	return patterns
}

// buildPlaceholderPatterns removes template placeholders left unfilled.
func buildPlaceholderPatterns() (patterns []FixPattern) {
	patterns = []FixPattern{
		{
			Name:        "unfilled placeholder",
			Pattern:     regexp.MustCompile(`\s?\[(?:Company|Company Name|Hiring Manager|Role|Position|Your Name|Date)\]`),
			Replacement: ``,
		},
	}

	return patterns
}
