package layout

// DefaultTemplates returns the page sequence of the printed CV. The first
// page carries the personal block and the opening experience entries; later
// pages continue the list without repeating the section heading.
func DefaultTemplates() (templates []PageTemplate) {
	templates = []PageTemplate{
		{
			Sidebar: []SectionID{SectionPhoto, SectionContact, SectionSkills, SectionLanguages},
			Main:    []MainSection{Main(SectionProfile), Slice(0, 2)},
		},
		{
			Sidebar: []SectionID{SectionEducation},
			Main:    []MainSection{Slice(2, 5)},
		},
		{
			Sidebar: []SectionID{},
			Main:    []MainSection{Slice(5)},
		},
		{
			Sidebar: []SectionID{SectionReferences, SectionAttachments},
			Main:    []MainSection{Main(SectionAchievements), Main(SectionMotivation)},
		},
	}
	return templates
}
