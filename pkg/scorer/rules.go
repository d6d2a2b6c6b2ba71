package scorer

// Rule represents a scoring rule.
type Rule struct {
	Name        string
	Category    string // anti_fabrication, accuracy
	Severity    string // critical, major, minor
	Description string
	Weight      int // Points deducted per violation
}

// Rule names.
const (
	RuleNumberFabrication = "NUMBER_FABRICATION"
	RuleSkillFabrication  = "SKILL_FABRICATION"
	RuleExperienceCount   = "EXPERIENCE_COUNT_MISMATCH"
	RuleCompanyMismatch   = "COMPANY_MISMATCH"
	RuleRoleTitleMismatch = "ROLE_TITLE_MISMATCH"
	RulePeriodMismatch    = "PERIOD_MISMATCH"
)

//nolint:gochecknoglobals // Scoring configuration constants
var ScoringRules = map[string]Rule{
	RuleNumberFabrication: {
		Name:        RuleNumberFabrication,
		Category:    "anti_fabrication",
		Severity:    "critical",
		Description: "Numbers that appear nowhere in the baseline CV",
		Weight:      30,
	},
	RuleSkillFabrication: {
		Name:        RuleSkillFabrication,
		Category:    "anti_fabrication",
		Severity:    "major",
		Description: "Skills that are not listed anywhere in the baseline CV",
		Weight:      15,
	},
	RuleExperienceCount: {
		Name:        RuleExperienceCount,
		Category:    "accuracy",
		Severity:    "critical",
		Description: "Work experience entries added or removed",
		Weight:      25,
	},
	RuleCompanyMismatch: {
		Name:        RuleCompanyMismatch,
		Category:    "accuracy",
		Severity:    "critical",
		Description: "Employer differs from the baseline entry at the same position",
		Weight:      25,
	},
	RuleRoleTitleMismatch: {
		Name:        RuleRoleTitleMismatch,
		Category:    "accuracy",
		Severity:    "critical",
		Description: "Role title modified from the baseline entry",
		Weight:      20,
	},
	RulePeriodMismatch: {
		Name:        RulePeriodMismatch,
		Category:    "accuracy",
		Severity:    "critical",
		Description: "Employment period modified from the baseline entry",
		Weight:      20,
	},
}

// PassingScore is the lowest score a variant may have without a warning.
const PassingScore = 70
