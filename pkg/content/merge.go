package content

import (
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Resolver computes the content to display from three layers: the static
// baseline, the active variant's saved overrides and an in-progress edit
// buffer. Both upper layers are optional. Resolver is a value; all of its
// methods are pure.
type Resolver struct {
	Baseline Bundle
	Active   *Overrides
	Edit     *Overrides
}

// Resolve returns edit ?? active ?? baseline, decided per top-level field.
// List fields are taken wholesale from the first layer that has them.
func (r Resolver) Resolve() (resolved Bundle) {
	resolved = Apply(r.Baseline, r.Active, r.Edit)
	return resolved
}

// Original returns the last-saved state of the active variant, i.e. the
// resolution without the edit buffer.
func (r Resolver) Original() (original Bundle) {
	original = Apply(r.Baseline, r.Active)
	return original
}

// IsFieldModified reports whether the resolved value of field differs from
// the last-saved value of the active variant.
func (r Resolver) IsFieldModified(field Field) (modified bool) {
	if r.Edit == nil {
		return modified
	}
	current := r.Resolve().Value(field)
	original := r.Original().Value(field)
	modified = !equalValues(current, original)
	return modified
}

// ModifiedFields lists every modified field in display order.
func (r Resolver) ModifiedFields() (fields []Field) {
	fields = make([]Field, 0)
	if r.Edit == nil {
		return fields
	}
	current := r.Resolve()
	original := r.Original()
	for _, f := range Fields() {
		if !equalValues(current.Value(f), original.Value(f)) {
			fields = append(fields, f)
		}
	}
	return fields
}

// Apply overlays each non-nil layer onto base in order, later layers winning.
func Apply(base Bundle, layers ...*Overrides) (out Bundle) {
	out = base
	for _, o := range layers {
		if o == nil {
			continue
		}
		if o.Tagline != nil {
			out.Tagline = *o.Tagline
		}
		if o.Profile != nil {
			out.Profile = *o.Profile
		}
		if o.Slogan != nil {
			out.Slogan = *o.Slogan
		}
		if o.WorkExperience != nil {
			out.WorkExperience = o.WorkExperience
		}
		if o.SkillCategories != nil {
			out.SkillCategories = o.SkillCategories
		}
		if o.KeyAchievements != nil {
			out.KeyAchievements = o.KeyAchievements
		}
		if o.Education != nil {
			out.Education = *o.Education
		}
		if o.MotivationLetter != nil {
			out.MotivationLetter = *o.MotivationLetter
		}
	}
	return out
}

// Merge returns a copy of o with every present field of partial applied.
func (o Overrides) Merge(partial Overrides) (merged Overrides) {
	merged = o
	if partial.Tagline != nil {
		merged.Tagline = String(*partial.Tagline)
	}
	if partial.Profile != nil {
		merged.Profile = String(*partial.Profile)
	}
	if partial.Slogan != nil {
		merged.Slogan = String(*partial.Slogan)
	}
	if partial.WorkExperience != nil {
		merged.WorkExperience = cloneExperience(partial.WorkExperience)
	}
	if partial.SkillCategories != nil {
		merged.SkillCategories = cloneSkills(partial.SkillCategories)
	}
	if partial.KeyAchievements != nil {
		merged.KeyAchievements = cloneStrings(partial.KeyAchievements)
	}
	if partial.Education != nil {
		merged.Education = String(*partial.Education)
	}
	if partial.MotivationLetter != nil {
		letter := *partial.MotivationLetter
		merged.MotivationLetter = &letter
	}
	return merged
}

// IsEmpty reports whether no field is present.
func (o Overrides) IsEmpty() (empty bool) {
	empty = o.Tagline == nil && o.Profile == nil && o.Slogan == nil &&
		o.WorkExperience == nil && o.SkillCategories == nil && o.KeyAchievements == nil &&
		o.Education == nil && o.MotivationLetter == nil
	return empty
}

// FromBundle returns Overrides with every field present, deep-copied from b.
func FromBundle(b Bundle) (o Overrides) {
	c := b.Clone()
	letter := c.MotivationLetter
	o = Overrides{
		Tagline:          String(c.Tagline),
		Profile:          String(c.Profile),
		Slogan:           String(c.Slogan),
		WorkExperience:   nonNil(c.WorkExperience),
		SkillCategories:  nonNil(c.SkillCategories),
		KeyAchievements:  nonNil(c.KeyAchievements),
		Education:        String(c.Education),
		MotivationLetter: &letter,
	}
	return o
}

// Clone returns a deep copy of b.
func (b Bundle) Clone() (c Bundle) {
	c = b
	c.WorkExperience = cloneExperience(b.WorkExperience)
	c.SkillCategories = cloneSkills(b.SkillCategories)
	c.KeyAchievements = cloneStrings(b.KeyAchievements)
	return c
}

// Value returns the value of a single field.
func (b Bundle) Value(field Field) (value interface{}) {
	switch field {
	case FieldTagline:
		value = b.Tagline
	case FieldProfile:
		value = b.Profile
	case FieldSlogan:
		value = b.Slogan
	case FieldWorkExperience:
		value = b.WorkExperience
	case FieldSkillCategories:
		value = b.SkillCategories
	case FieldKeyAchievements:
		value = b.KeyAchievements
	case FieldEducation:
		value = b.Education
	case FieldMotivationLetter:
		value = b.MotivationLetter
	}
	return value
}

// Equal reports whether two bundles hold the same content.
func Equal(a, b Bundle) (equal bool) {
	equal = cmp.Equal(a, b, cmpopts.EquateEmpty())
	return equal
}

func equalValues(a, b interface{}) (equal bool) {
	equal = cmp.Equal(a, b, cmpopts.EquateEmpty())
	return equal
}

func cloneExperience(in []ExperienceEntry) (out []ExperienceEntry) {
	if in == nil {
		return out
	}
	out = make([]ExperienceEntry, len(in))
	for i, e := range in {
		out[i] = e
		out[i].Achievements = cloneStrings(e.Achievements)
		out[i].Skills = cloneStrings(e.Skills)
	}
	return out
}

func cloneSkills(in []SkillCategory) (out []SkillCategory) {
	if in == nil {
		return out
	}
	out = make([]SkillCategory, len(in))
	for i, s := range in {
		out[i] = s
		out[i].Skills = cloneStrings(s.Skills)
	}
	return out
}

func cloneStrings(in []string) (out []string) {
	out = slices.Clone(in)
	return out
}

func nonNil[T any](in []T) (out []T) {
	out = in
	if out == nil {
		out = []T{}
	}
	return out
}
