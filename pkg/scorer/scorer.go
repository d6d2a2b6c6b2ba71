// Package scorer audits generated content against the baseline CV and scores
// how much of it could not be traced back to the candidate's own data.
package scorer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
)

//nolint:gochecknoglobals // Compiled once
var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)*`)

// Violation represents a rule violation.
type Violation struct {
	Rule       string `json:"rule"`
	Severity   string `json:"severity"`
	Location   string `json:"location"`
	Fabricated string `json:"fabricated"`
}

// Report is the outcome of an audit.
type Report struct {
	Score      int         `json:"score"`
	Violations []Violation `json:"violations"`
}

// Passed reports whether the score reaches PassingScore.
func (r Report) Passed() (ok bool) {
	ok = r.Score >= PassingScore
	return ok
}

// Scorer compares generated content with a baseline.
type Scorer struct {
	baseline content.Bundle
	numbers  map[string]bool
	skills   map[string]bool
}

// NewScorer indexes the numbers and skills of baseline.
func NewScorer(baseline content.Bundle) (scorer *Scorer) {
	scorer = &Scorer{
		baseline: baseline,
		numbers:  make(map[string]bool),
		skills:   make(map[string]bool),
	}

	for _, t := range texts(baseline) {
		for _, n := range numberPattern.FindAllString(t.text, -1) {
			scorer.numbers[n] = true
		}
	}

	for _, cat := range baseline.SkillCategories {
		for _, s := range cat.Skills {
			scorer.skills[normalizeSkill(s)] = true
		}
	}
	for _, e := range baseline.WorkExperience {
		for _, s := range e.Skills {
			scorer.skills[normalizeSkill(s)] = true
		}
	}

	return scorer
}

// Audit checks generated against the baseline.
func (s *Scorer) Audit(generated content.Bundle) (report Report) {
	report.Violations = []Violation{}
	report.Violations = append(report.Violations, s.checkNumbers(generated)...)
	report.Violations = append(report.Violations, s.checkSkills(generated)...)
	report.Violations = append(report.Violations, s.checkExperience(generated)...)
	report.Score = calculateScore(report.Violations)
	return report
}

func (s *Scorer) checkNumbers(generated content.Bundle) (violations []Violation) {
	seen := make(map[string]bool)
	for _, t := range texts(generated) {
		for _, n := range numberPattern.FindAllString(t.text, -1) {
			if s.numbers[n] || seen[t.location+n] {
				continue
			}
			seen[t.location+n] = true
			violations = append(violations, newViolation(RuleNumberFabrication, t.location, n))
		}
	}
	return violations
}

func (s *Scorer) checkSkills(generated content.Bundle) (violations []Violation) {
	for _, cat := range generated.SkillCategories {
		for _, skill := range cat.Skills {
			if !s.skills[normalizeSkill(skill)] {
				violations = append(violations, newViolation(RuleSkillFabrication, "skillCategories."+cat.Category, skill))
			}
		}
	}
	for i, e := range generated.WorkExperience {
		for _, skill := range e.Skills {
			if !s.skills[normalizeSkill(skill)] {
				violations = append(violations, newViolation(RuleSkillFabrication, fmt.Sprintf("workExperience[%d].skills", i), skill))
			}
		}
	}
	return violations
}

func (s *Scorer) checkExperience(generated content.Bundle) (violations []Violation) {
	base := s.baseline.WorkExperience
	if len(generated.WorkExperience) != len(base) {
		violations = append(violations, newViolation(RuleExperienceCount, "workExperience",
			fmt.Sprintf("%d entries, baseline has %d", len(generated.WorkExperience), len(base))))
	}

	for i := 0; i < len(generated.WorkExperience) && i < len(base); i++ {
		got, want := generated.WorkExperience[i], base[i]
		loc := fmt.Sprintf("workExperience[%d]", i)
		if got.Company != want.Company {
			violations = append(violations, newViolation(RuleCompanyMismatch, loc, got.Company))
		}
		if got.Role != want.Role {
			violations = append(violations, newViolation(RuleRoleTitleMismatch, loc, got.Role))
		}
		if got.Period != want.Period {
			violations = append(violations, newViolation(RulePeriodMismatch, loc, got.Period))
		}
	}
	return violations
}

func calculateScore(violations []Violation) (score int) {
	score = 100
	for _, v := range violations {
		score -= ScoringRules[v.Rule].Weight
	}
	if score < 0 {
		score = 0
	}
	return score
}

// ExtractLessons turns a report into short notes for the next generation
// request.
func ExtractLessons(report Report) (lessons []string) {
	lessons = []string{}

	byRule := make(map[string][]string)
	for _, v := range report.Violations {
		byRule[v.Rule] = append(byRule[v.Rule], v.Fabricated)
	}

	rules := make([]string, 0, len(byRule))
	for rule := range byRule {
		rules = append(rules, rule)
	}
	sort.Strings(rules)

	for _, rule := range rules {
		lessons = append(lessons, fmt.Sprintf("%s: %s (%s)", rule, ScoringRules[rule].Description, strings.Join(byRule[rule], ", ")))
	}

	return lessons
}

func newViolation(rule, location, fabricated string) (v Violation) {
	v = Violation{
		Rule:       rule,
		Severity:   ScoringRules[rule].Severity,
		Location:   location,
		Fabricated: fabricated,
	}
	return v
}

type locatedText struct {
	location string
	text     string
}

// texts lists every free-text value of b with where it came from.
func texts(b content.Bundle) (out []locatedText) {
	add := func(loc, text string) {
		if text != "" {
			out = append(out, locatedText{location: loc, text: text})
		}
	}

	add("tagline", b.Tagline)
	add("profile", b.Profile)
	add("slogan", b.Slogan)
	add("education", b.Education)
	add("motivationLetter.greeting", b.MotivationLetter.Greeting)
	add("motivationLetter.body", b.MotivationLetter.Body)
	add("motivationLetter.closing", b.MotivationLetter.Closing)

	for i, a := range b.KeyAchievements {
		add(fmt.Sprintf("keyAchievements[%d]", i), a)
	}
	for i, e := range b.WorkExperience {
		loc := fmt.Sprintf("workExperience[%d]", i)
		add(loc+".period", e.Period)
		add(loc+".description", e.Description)
		for j, a := range e.Achievements {
			add(fmt.Sprintf("%s.achievements[%d]", loc, j), a)
		}
	}

	return out
}

func normalizeSkill(s string) (out string) {
	out = strings.ToLower(strings.TrimSpace(s))
	return out
}
