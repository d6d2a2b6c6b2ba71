package content

// Data represents the static baseline CV document.
type Data struct {
	Person      Person       `json:"person" yaml:"person"`
	References  []Reference  `json:"references" yaml:"references"`
	Languages   []Language   `json:"languages" yaml:"languages"`
	Attachments []Attachment `json:"attachments" yaml:"attachments"`
	Content     Bundle       `json:"content" yaml:"content"`
}

// Person represents the candidate's personal information.
type Person struct {
	Name     string            `json:"name" yaml:"name"`
	Title    string            `json:"title" yaml:"title"`
	Photo    string            `json:"photo,omitempty" yaml:"photo,omitempty"`
	Email    string            `json:"email,omitempty" yaml:"email,omitempty"`
	Phone    string            `json:"phone,omitempty" yaml:"phone,omitempty"`
	Location string            `json:"location,omitempty" yaml:"location,omitempty"`
	Website  string            `json:"website,omitempty" yaml:"website,omitempty"`
	Links    map[string]string `json:"links,omitempty" yaml:"links,omitempty"`
}

// Reference represents a professional reference.
type Reference struct {
	Name     string `json:"name" yaml:"name"`
	Position string `json:"position" yaml:"position"`
	Company  string `json:"company" yaml:"company"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// Language represents a spoken language and proficiency.
type Language struct {
	Name  string `json:"name" yaml:"name"`
	Level string `json:"level" yaml:"level"`
}

// Attachment represents a document appended to the CV (certificates, diplomas).
type Attachment struct {
	Title string `json:"title" yaml:"title"`
	File  string `json:"file" yaml:"file"`
}

// Bundle is a fully populated content bundle.
type Bundle struct {
	Tagline          string            `json:"tagline" yaml:"tagline"`
	Profile          string            `json:"profile" yaml:"profile"`
	Slogan           string            `json:"slogan" yaml:"slogan"`
	WorkExperience   []ExperienceEntry `json:"workExperience" yaml:"workExperience"`
	SkillCategories  []SkillCategory   `json:"skillCategories" yaml:"skillCategories"`
	KeyAchievements  []string          `json:"keyAchievements" yaml:"keyAchievements"`
	Education        string            `json:"education" yaml:"education"`
	MotivationLetter MotivationLetter  `json:"motivationLetter" yaml:"motivationLetter"`
}

// ExperienceEntry represents a single position. Ordering is preserved from source.
type ExperienceEntry struct {
	Company      string   `json:"company" yaml:"company"`
	Role         string   `json:"role" yaml:"role"`
	Period       string   `json:"period" yaml:"period"`
	Description  string   `json:"description" yaml:"description"`
	Achievements []string `json:"achievements" yaml:"achievements"`
	Skills       []string `json:"skills" yaml:"skills,omitempty"`
}

// SkillCategory groups related skills under a heading.
type SkillCategory struct {
	Category string   `json:"category" yaml:"category"`
	Skills   []string `json:"skills" yaml:"skills"`
}

// MotivationLetter represents the optional cover letter attached to a variant.
type MotivationLetter struct {
	Greeting string `json:"greeting" yaml:"greeting"`
	Body     string `json:"body" yaml:"body"`
	Closing  string `json:"closing" yaml:"closing"`
}

// Overrides is a partial Bundle. A nil field is absent and falls back to the
// layer below; an empty string or empty list is a present, cleared value.
//
// List fields deliberately have no omitempty so that a cleared list survives
// a JSON round trip as [] while an absent one is written as null.
type Overrides struct {
	Tagline          *string           `json:"tagline,omitempty"`
	Profile          *string           `json:"profile,omitempty"`
	Slogan           *string           `json:"slogan,omitempty"`
	WorkExperience   []ExperienceEntry `json:"workExperience"`
	SkillCategories  []SkillCategory   `json:"skillCategories"`
	KeyAchievements  []string          `json:"keyAchievements"`
	Education        *string           `json:"education,omitempty"`
	MotivationLetter *MotivationLetter `json:"motivationLetter,omitempty"`
}

// Field names a top-level content field.
type Field string

// Content fields, in display order.
const (
	FieldTagline          Field = "tagline"
	FieldProfile          Field = "profile"
	FieldSlogan           Field = "slogan"
	FieldWorkExperience   Field = "workExperience"
	FieldSkillCategories  Field = "skillCategories"
	FieldKeyAchievements  Field = "keyAchievements"
	FieldEducation        Field = "education"
	FieldMotivationLetter Field = "motivationLetter"
)

// Fields returns every content field in display order.
func Fields() (fields []Field) {
	fields = []Field{
		FieldTagline,
		FieldProfile,
		FieldSlogan,
		FieldWorkExperience,
		FieldSkillCategories,
		FieldKeyAchievements,
		FieldEducation,
		FieldMotivationLetter,
	}
	return fields
}

// String returns a pointer to s, for building Overrides literals.
func String(s string) (p *string) {
	p = &s
	return p
}
