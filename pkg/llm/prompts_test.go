package llm

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestBuildResearchPrompt(t *testing.T) {
	posting := "We are looking for a Staff Engineer with Go experience at Acme Corp."

	prompt := buildResearchPrompt(posting)

	if !strings.Contains(prompt, posting) {
		t.Error("Prompt should contain the job posting")
	}

	for _, key := range []string{"company_name", "role_title", "key_requirements", "technical_stack", "role_focus", "company_signals"} {
		if !strings.Contains(prompt, key) {
			t.Errorf("Prompt should specify %s in response format", key)
		}
	}
}

func TestBuildVariantPromptSources(t *testing.T) {
	tests := []struct {
		name       string
		sources    DataSource
		shouldHave []string
		shouldSkip []string
	}{
		{
			name:       "profile only",
			sources:    SourceProfile,
			shouldHave: []string{"CURRENT TAGLINE, PROFILE AND SLOGAN", `"tagline"`, "Generalist engineer."},
			shouldSkip: []string{"WORK EXPERIENCE", "SKILL CATEGORIES", "KEY ACHIEVEMENTS", `"workExperience"`},
		},
		{
			name:       "experience and skills",
			sources:    SourceExperience | SourceSkills,
			shouldHave: []string{"WORK EXPERIENCE", "SKILL CATEGORIES", "Built X", `"skillCategories"`},
			shouldSkip: []string{"CURRENT TAGLINE", "EDUCATION:", "CURRENT MOTIVATION LETTER"},
		},
		{
			name:       "everything",
			sources:    SourceAll,
			shouldHave: []string{"CURRENT TAGLINE", "WORK EXPERIENCE", "SKILL CATEGORIES", "KEY ACHIEVEMENTS", "EDUCATION:", "CURRENT MOTIVATION LETTER"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := buildVariantPrompt(VariantRequest{
				JobPosting: "posting",
				Company:    "Acme Corp",
				Role:       "Staff Engineer",
				Sources:    tt.sources,
				Baseline:   testBaseline(),
			})

			for _, s := range tt.shouldHave {
				if !strings.Contains(prompt, s) {
					t.Errorf("Prompt should contain %q", s)
				}
			}
			for _, s := range tt.shouldSkip {
				if strings.Contains(prompt, s) {
					t.Errorf("Prompt should not contain %q", s)
				}
			}
		})
	}
}

func TestBuildVariantPromptContext(t *testing.T) {
	prompt := buildVariantPrompt(VariantRequest{
		JobPosting:   "Looking for a Go engineer",
		Company:      "Acme Corp",
		Role:         "Senior Engineer",
		Research:     ResearchResponse{RoleFocus: "Platform engineering"},
		Sources:      SourceProfile,
		Baseline:     testBaseline(),
		Instructions: "Mention open source work",
	})

	for _, s := range []string{"Looking for a Go engineer", "COMPANY: Acme Corp", "ROLE: Senior Engineer", "RESEARCH NOTES", "Platform engineering", "Mention open source work", "Jane Doe"} {
		if !strings.Contains(prompt, s) {
			t.Errorf("Prompt should contain %q", s)
		}
	}
}

func TestBuildVariantPromptOmitsEmptyContext(t *testing.T) {
	prompt := buildVariantPrompt(VariantRequest{Sources: SourceProfile, Baseline: testBaseline()})

	if strings.Contains(prompt, "RESEARCH NOTES") {
		t.Error("Prompt should omit empty research notes")
	}
	if strings.Contains(prompt, "ADDITIONAL INSTRUCTIONS") {
		t.Error("Prompt should omit empty instructions")
	}
}

func TestPromptsCriticalRules(t *testing.T) {
	prompt := buildVariantPrompt(VariantRequest{Sources: SourceAll, Baseline: testBaseline()})

	shouldHave := []string{
		"Use ONLY facts present in the sections above",
		"Never invent employers, dates, titles, degrees, metrics or skills",
		"Keep every work experience entry, in the same order",
		"Plain text only",
		"Return ONLY valid JSON",
	}

	for _, rule := range shouldHave {
		if !strings.Contains(prompt, rule) {
			t.Errorf("Prompt missing critical rule: '%s'", rule)
		}
	}
}

func TestBuildVariantPromptEmbedsValidJSON(t *testing.T) {
	base := testBaseline()
	prompt := buildVariantPrompt(VariantRequest{Sources: SourceExperience, Baseline: base})

	experienceJSON, err := json.MarshalIndent(base.Content.WorkExperience, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal experience: %v", err)
	}

	if !strings.Contains(prompt, string(experienceJSON)) {
		t.Error("Prompt should contain properly marshaled experience JSON")
	}
}

func TestBuildRepairPrompt(t *testing.T) {
	prompt := buildRepairPrompt(`{"content": {}}`, errors.New("role is required"))

	if !strings.Contains(prompt, "role is required") {
		t.Error("Repair prompt should contain the validation error")
	}
	if !strings.Contains(prompt, `{"content": {}}`) {
		t.Error("Repair prompt should contain the rejected JSON")
	}
}
