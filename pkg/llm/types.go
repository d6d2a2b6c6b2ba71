package llm

import (
	"encoding/json"
	"strings"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
)

// DataSource selects which parts of the baseline CV are sent to the model.
type DataSource uint

// Data sources.
const (
	SourceProfile DataSource = 1 << iota
	SourceExperience
	SourceSkills
	SourceAchievements
	SourceEducation
	SourceMotivation

	SourceAll = SourceProfile | SourceExperience | SourceSkills | SourceAchievements | SourceEducation | SourceMotivation
)

var sourceNames = []struct {
	source DataSource
	name   string
}{
	{SourceProfile, "profile"},
	{SourceExperience, "experience"},
	{SourceSkills, "skills"},
	{SourceAchievements, "achievements"},
	{SourceEducation, "education"},
	{SourceMotivation, "motivation"},
}

// Has reports whether every bit of other is set.
func (d DataSource) Has(other DataSource) (ok bool) {
	ok = d&other == other
	return ok
}

func (d DataSource) String() (s string) {
	names := make([]string, 0, len(sourceNames))
	for _, sn := range sourceNames {
		if d.Has(sn.source) {
			names = append(names, sn.name)
		}
	}
	s = strings.Join(names, ",")
	return s
}

// ParseDataSources parses names such as "profile,skills". "all" selects
// everything. Unknown names are reported in unknown.
func ParseDataSources(names []string) (d DataSource, unknown []string) {
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if name == "all" {
			d |= SourceAll
			continue
		}
		found := false
		for _, sn := range sourceNames {
			if sn.name == name {
				d |= sn.source
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, raw)
		}
	}
	return d, unknown
}

// ResearchResponse is the Phase 1 result: what the model learned about the
// posting.
type ResearchResponse struct {
	CompanyName     string   `json:"company_name"`
	RoleTitle       string   `json:"role_title"`
	KeyRequirements []string `json:"key_requirements"`
	TechnicalStack  []string `json:"technical_stack"`
	RoleFocus       string   `json:"role_focus"`
	CompanySignals  string   `json:"company_signals"`
}

// Summary renders the research as a short plain-text note.
func (r ResearchResponse) Summary() (s string) {
	var b strings.Builder
	if r.RoleFocus != "" {
		b.WriteString("Focus: " + r.RoleFocus + "\n")
	}
	if len(r.KeyRequirements) > 0 {
		b.WriteString("Requirements: " + strings.Join(r.KeyRequirements, "; ") + "\n")
	}
	if len(r.TechnicalStack) > 0 {
		b.WriteString("Stack: " + strings.Join(r.TechnicalStack, ", ") + "\n")
	}
	if r.CompanySignals != "" {
		b.WriteString("Company: " + r.CompanySignals + "\n")
	}
	s = strings.TrimSpace(b.String())
	return s
}

// VariantRequest is the Phase 2 request.
type VariantRequest struct {
	JobPosting string
	Company    string
	Role       string
	Research   ResearchResponse
	Sources    DataSource
	Baseline   content.Data
	// Instructions are free-form operator notes passed to the model.
	Instructions string
}

// VariantResponse is a generated, fully populated bundle. It is only a
// candidate until the operator saves it as a variant.
type VariantResponse struct {
	Content  content.Bundle   `json:"content"`
	Research ResearchResponse `json:"-"`
	Company  string           `json:"company"`
	Role     string           `json:"role"`
	Fixes    []string         `json:"-"`
}

// variantEnvelope is the JSON shape the model is asked to return.
type variantEnvelope struct {
	Company string          `json:"company"`
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// ClaudeRequest represents the Claude API request format.
type ClaudeRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
}

// ClaudeResponse represents the Claude API response format.
type ClaudeResponse struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Role    string    `json:"role"`
	Content []Content `json:"content"`
	Model   string    `json:"model"`
	Usage   Usage     `json:"usage"`
}

// Message represents a message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Content represents content in the response.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Usage represents token usage information.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
