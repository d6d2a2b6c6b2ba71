package scorer

import (
	"strings"
	"testing"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
)

func testBaseline() (b content.Bundle) {
	b = content.Bundle{
		Profile: "Engineer with 12 years of backend work.",
		WorkExperience: []content.ExperienceEntry{
			{
				Company:      "Acme",
				Role:         "Staff Engineer",
				Period:       "2019 - 2024",
				Achievements: []string{"Cut cloud spend by 40%"},
				Skills:       []string{"Kubernetes"},
			},
			{
				Company: "Initech",
				Role:    "Engineer",
				Period:  "2012 - 2019",
			},
		},
		SkillCategories: []content.SkillCategory{{Category: "Languages", Skills: []string{"Go", "SQL"}}},
	}
	return b
}

func TestAuditClean(t *testing.T) {
	generated := testBaseline()
	generated.Profile = "Backend engineer, 12 years, focused on platform work."
	generated.SkillCategories = []content.SkillCategory{{Category: "Core", Skills: []string{"go", "kubernetes"}}}

	report := NewScorer(testBaseline()).Audit(generated)

	if report.Score != 100 {
		t.Errorf("Expected score 100, got %d: %+v", report.Score, report.Violations)
	}
	if !report.Passed() {
		t.Error("Expected report to pass")
	}
}

func TestAuditViolations(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(b *content.Bundle)
		wantRule  string
		wantScore int
	}{
		{
			name:      "invented metric",
			mutate:    func(b *content.Bundle) { b.KeyAchievements = []string{"Grew revenue by 300%"} },
			wantRule:  RuleNumberFabrication,
			wantScore: 70,
		},
		{
			name:      "invented skill",
			mutate:    func(b *content.Bundle) { b.SkillCategories[0].Skills = append(b.SkillCategories[0].Skills, "Rust") },
			wantRule:  RuleSkillFabrication,
			wantScore: 85,
		},
		{
			name:      "dropped entry",
			mutate:    func(b *content.Bundle) { b.WorkExperience = b.WorkExperience[:1] },
			wantRule:  RuleExperienceCount,
			wantScore: 75,
		},
		{
			name:      "changed role",
			mutate:    func(b *content.Bundle) { b.WorkExperience[1].Role = "Senior Engineer" },
			wantRule:  RuleRoleTitleMismatch,
			wantScore: 80,
		},
		{
			name:      "changed company",
			mutate:    func(b *content.Bundle) { b.WorkExperience[0].Company = "Acme Corp" },
			wantRule:  RuleCompanyMismatch,
			wantScore: 75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generated := testBaseline()
			tt.mutate(&generated)

			report := NewScorer(testBaseline()).Audit(generated)

			if len(report.Violations) != 1 {
				t.Fatalf("Expected 1 violation, got %+v", report.Violations)
			}
			if report.Violations[0].Rule != tt.wantRule {
				t.Errorf("Expected rule %s, got %s", tt.wantRule, report.Violations[0].Rule)
			}
			if report.Score != tt.wantScore {
				t.Errorf("Expected score %d, got %d", tt.wantScore, report.Score)
			}
		})
	}
}

func TestAuditChangedPeriod(t *testing.T) {
	generated := testBaseline()
	generated.WorkExperience[0].Period = "2018 - 2024"

	report := NewScorer(testBaseline()).Audit(generated)

	rules := make(map[string]int)
	for _, v := range report.Violations {
		rules[v.Rule]++
	}
	if rules[RulePeriodMismatch] != 1 {
		t.Errorf("Expected a period mismatch, got %+v", report.Violations)
	}
	if rules[RuleNumberFabrication] != 1 {
		t.Errorf("Expected the new year flagged once, got %+v", report.Violations)
	}
}

func TestAuditScoreFloor(t *testing.T) {
	generated := testBaseline()
	generated.KeyAchievements = []string{"1", "2", "3", "4", "5"}

	report := NewScorer(testBaseline()).Audit(generated)

	if report.Score != 0 {
		t.Errorf("Expected score clamped to 0, got %d", report.Score)
	}
	if report.Passed() {
		t.Error("Expected report to fail")
	}
}

func TestExtractLessons(t *testing.T) {
	report := Report{Violations: []Violation{
		{Rule: RuleSkillFabrication, Fabricated: "Rust"},
		{Rule: RuleNumberFabrication, Fabricated: "300"},
		{Rule: RuleSkillFabrication, Fabricated: "Haskell"},
	}}

	lessons := ExtractLessons(report)

	if len(lessons) != 2 {
		t.Fatalf("Expected 2 lessons, got %v", lessons)
	}
	if !strings.HasPrefix(lessons[0], RuleNumberFabrication) {
		t.Errorf("Expected lessons sorted by rule, got %v", lessons)
	}
	if !strings.Contains(lessons[1], "Rust, Haskell") {
		t.Errorf("Expected grouped skills, got %q", lessons[1])
	}
}

func TestExtractLessonsEmpty(t *testing.T) {
	lessons := ExtractLessons(Report{})
	if len(lessons) != 0 {
		t.Errorf("Expected no lessons, got %v", lessons)
	}
}
