package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// buildResearchPrompt creates the Phase 1 prompt.
func buildResearchPrompt(posting string) (prompt string) {
	prompt = fmt.Sprintf(`You are an expert career consultant researching a job posting before a CV is tailored to it.

JOB POSTING:
%s

Analyze the posting and:
1. Extract the company name
2. Extract the role title
3. Extract key requirements (technical skills, experience, domain expertise)
4. Extract the technical stack that is named or clearly implied
5. Describe the role focus (IC vs leadership, product vs platform, greenfield vs maintenance)
6. Summarise what the posting says about the company's culture and stage

Return ONLY valid JSON in this exact format (no markdown, no commentary):
{
  "company_name": "company name from the posting",
  "role_title": "role title from the posting",
  "key_requirements": ["requirement1", "requirement2"],
  "technical_stack": ["tech1", "tech2"],
  "role_focus": "description of role focus",
  "company_signals": "insights about company culture/stage"
}`, posting)

	return prompt
}

// buildVariantPrompt creates the Phase 2 prompt. Only the baseline fields
// selected by req.Sources are included and only those may be rewritten.
//
//nolint:funlen // Prompt template with anti-hallucination constraints
func buildVariantPrompt(req VariantRequest) (prompt string) {
	var sections strings.Builder
	var fields []string

	base := req.Baseline.Content

	addSection := func(title string, v interface{}) {
		data, _ := json.MarshalIndent(v, "", "  ")
		fmt.Fprintf(&sections, "%s:\n%s\n\n", title, string(data))
	}

	personJSON, _ := json.MarshalIndent(map[string]string{
		"name":  req.Baseline.Person.Name,
		"title": req.Baseline.Person.Title,
	}, "", "  ")

	if req.Sources.Has(SourceProfile) {
		addSection("CURRENT TAGLINE, PROFILE AND SLOGAN", map[string]string{
			"tagline": base.Tagline,
			"profile": base.Profile,
			"slogan":  base.Slogan,
		})
		fields = append(fields, `"tagline": "one line"`, `"profile": "3-5 sentences"`, `"slogan": "short phrase"`)
	}
	if req.Sources.Has(SourceExperience) {
		addSection("WORK EXPERIENCE (most recent first)", base.WorkExperience)
		fields = append(fields, `"workExperience": [{"company": "", "role": "", "period": "", "description": "", "achievements": [""], "skills": [""]}]`)
	}
	if req.Sources.Has(SourceSkills) {
		addSection("SKILL CATEGORIES", base.SkillCategories)
		fields = append(fields, `"skillCategories": [{"category": "", "skills": [""]}]`)
	}
	if req.Sources.Has(SourceAchievements) {
		addSection("KEY ACHIEVEMENTS", base.KeyAchievements)
		fields = append(fields, `"keyAchievements": [""]`)
	}
	if req.Sources.Has(SourceEducation) {
		addSection("EDUCATION", base.Education)
		fields = append(fields, `"education": ""`)
	}
	if req.Sources.Has(SourceMotivation) {
		addSection("CURRENT MOTIVATION LETTER", base.MotivationLetter)
		fields = append(fields, `"motivationLetter": {"greeting": "", "body": "", "closing": ""}`)
	}

	researchSection := ""
	if summary := req.Research.Summary(); summary != "" {
		researchSection = fmt.Sprintf("\nRESEARCH NOTES:\n%s\n", summary)
	}

	instructionSection := ""
	if req.Instructions != "" {
		instructionSection = fmt.Sprintf("\nADDITIONAL INSTRUCTIONS FROM THE CANDIDATE:\n%s\n", req.Instructions)
	}

	prompt = fmt.Sprintf(`You are an expert CV writer tailoring an existing CV to one job posting.

JOB POSTING:
%s

COMPANY: %s
ROLE: %s
%s
CANDIDATE:
%s

%s%s
Rewrite ONLY the sections listed above so they speak to this posting.

CRITICAL RULES:
- Use ONLY facts present in the sections above. Never invent employers, dates, titles, degrees, metrics or skills.
- Keep every work experience entry, in the same order, with the same company, role and period.
- You may reword descriptions and achievements, reorder achievements within an entry, and drop achievements that are irrelevant.
- Plain text only: no markdown, no bullet characters, no placeholders such as [Company].
- Write the motivation letter (if requested) in the first person, addressed to the company above.

Return ONLY valid JSON in this exact format (no markdown, no commentary):
{
  "company": "%s",
  "role": "%s",
  "content": {
    %s
  }
}`, req.JobPosting, req.Company, req.Role, researchSection, string(personJSON),
		sections.String(), instructionSection, req.Company, req.Role, strings.Join(fields, ",\n    "))

	return prompt
}

// buildRepairPrompt asks the model to correct output that failed validation.
func buildRepairPrompt(raw string, validationErr error) (prompt string) {
	prompt = fmt.Sprintf(`The JSON below was supposed to match a CV content schema but failed validation.

VALIDATION ERRORS:
%s

JSON:
%s

Fix ONLY what the errors describe. Do not change any wording that is not involved in an error.
Return ONLY the corrected JSON (no markdown, no commentary).`, validationErr.Error(), raw)

	return prompt
}
