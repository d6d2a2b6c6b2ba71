package document

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/layout"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/privacy"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/share"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/versions"
)

func testData(experience int) (data content.Data) {
	entries := make([]content.ExperienceEntry, experience)
	for i := range entries {
		entries[i] = content.ExperienceEntry{Company: fmt.Sprintf("Company %d", i), Role: "Engineer"}
	}

	data = content.Data{
		Person: content.Person{
			Name:     "Jane Doe",
			Photo:    "photo.jpg",
			Email:    "jane@example.com",
			Phone:    "+41 00 000 00 00",
			Location: "Zurich",
			Website:  "https://example.com",
		},
		References: []content.Reference{
			{Name: "Ref One", Company: "Acme", Email: "ref@acme.example", Phone: "123"},
		},
		Attachments: []content.Attachment{{Title: "Diploma", File: "diploma.pdf"}},
		Content: content.Bundle{
			Tagline:        "Engineer",
			Profile:        "A",
			WorkExperience: entries,
		},
	}
	return data
}

func hasSidebar(pages []layout.Page, id layout.SectionID) (found bool) {
	for _, p := range pages {
		for _, s := range p.Sidebar {
			if s == id {
				found = true
				return found
			}
		}
	}
	return found
}

func TestUnauthenticatedFullPrivacyShowsNoContacts(t *testing.T) {
	opts, err := share.ParseQuery("privacy=full")
	require.NoError(t, err)

	doc := Build(Input{
		Data:    testData(3),
		Viewer:  privacy.Viewer{Authenticated: false, CanViewReferences: true},
		Options: opts,
	})

	assert.Equal(t, privacy.LevelNone, doc.Visibility.Level)
	assert.False(t, doc.Visibility.ShowPersonalContact)
	assert.False(t, doc.Visibility.ShowReferenceContact)
	assert.Empty(t, doc.Person.Email)
	assert.Empty(t, doc.Person.Phone)
	assert.Empty(t, doc.Person.Location)
	assert.Equal(t, "https://example.com", doc.Person.Website)
	assert.Empty(t, doc.References[0].Email)
	assert.Empty(t, doc.References[0].Phone)
	assert.Equal(t, "Ref One", doc.References[0].Name)
	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0], "authenticated")
}

func TestContactGating(t *testing.T) {
	tests := []struct {
		name         string
		viewer       privacy.Viewer
		level        privacy.Level
		wantPersonal bool
		wantRefs     bool
	}{
		{"personal", privacy.Viewer{Authenticated: true}, privacy.LevelPersonal, true, false},
		{"full without reference capability", privacy.Viewer{Authenticated: true}, privacy.LevelFull, true, false},
		{"full with reference capability", privacy.Viewer{Authenticated: true, CanViewReferences: true}, privacy.LevelFull, true, true},
		{"none", privacy.Viewer{Authenticated: true, CanViewReferences: true}, privacy.LevelNone, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := share.Defaults()
			opts.Privacy = tc.level
			doc := Build(Input{Data: testData(1), Viewer: tc.viewer, Options: opts})

			assert.Equal(t, tc.wantPersonal, doc.Person.Email != "")
			assert.Equal(t, tc.wantRefs, doc.References[0].Email != "")
			assert.Equal(t, tc.wantPersonal, doc.Visibility.ShowPersonalBlock)
			assert.Empty(t, doc.Warnings)
		})
	}
}

func TestUnsetPrivacyIsNone(t *testing.T) {
	doc := Build(Input{Data: testData(1), Viewer: privacy.Viewer{Authenticated: true, CanViewReferences: true}})

	assert.Equal(t, privacy.LevelNone, doc.Visibility.Level)
	assert.False(t, doc.Visibility.ShowPersonalBlock)
	assert.Empty(t, doc.Person.Email)
	assert.Empty(t, doc.Warnings)
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	data := testData(2)
	Build(Input{Data: data, Options: share.Defaults()})

	assert.Equal(t, "jane@example.com", data.Person.Email)
	assert.Equal(t, "ref@acme.example", data.References[0].Email)
}

func TestPhotoAndAttachments(t *testing.T) {
	opts := share.Defaults()
	doc := Build(Input{Data: testData(2), Options: opts})
	assert.Equal(t, "photo.jpg", doc.Person.Photo)
	assert.True(t, hasSidebar(doc.Pages, layout.SectionPhoto))
	assert.Empty(t, doc.Attachments)
	assert.False(t, hasSidebar(doc.Pages, layout.SectionAttachments))

	opts.ShowPhoto = false
	opts.ShowAttachments = true
	doc = Build(Input{Data: testData(2), Options: opts})
	assert.Empty(t, doc.Person.Photo)
	assert.False(t, hasSidebar(doc.Pages, layout.SectionPhoto))
	assert.Len(t, doc.Attachments, 1)
	assert.True(t, hasSidebar(doc.Pages, layout.SectionAttachments))
}

func TestPageTotals(t *testing.T) {
	for n := 0; n <= 8; n++ {
		for _, show := range []bool{true, false} {
			opts := share.Defaults()
			opts.ShowExperience = show
			doc := Build(Input{Data: testData(n), Options: opts})

			for _, p := range doc.Pages {
				assert.Equal(t, len(doc.Pages), p.Total, "n=%d show=%v", n, show)
			}
		}
	}
}

func TestSourceOverridesBaseline(t *testing.T) {
	data := testData(1)
	resolver := content.Resolver{
		Baseline: data.Content,
		Active:   &content.Overrides{Profile: content.String("B")},
	}

	doc := Build(Input{Data: data, Source: resolver, Options: share.Defaults()})
	assert.Equal(t, "B", doc.Content.Profile)
	assert.Equal(t, "Engineer", doc.Content.Tagline)
}

func TestSelectVariant(t *testing.T) {
	ctx := context.Background()
	store := versions.NewMemoryStore()
	id, err := store.Create(ctx, versions.Variant{Name: "acme", Content: content.Overrides{Profile: content.String("B")}})
	require.NoError(t, err)

	dir := versions.NewDirectory(store)
	defer dir.Close()

	warnings, err := SelectVariant(ctx, dir, share.Options{VersionID: "missing"}, nil)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Nil(t, dir.Active())

	warnings, err = SelectVariant(ctx, dir, share.Options{VersionID: id}, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	doc := Build(Input{
		Data:     testData(1),
		Source:   dir.Resolver(testData(1).Content),
		Options:  share.Defaults(),
		Warnings: warnings,
	})
	assert.Equal(t, "B", doc.Content.Profile)

	warnings, err = SelectVariant(ctx, dir, share.Options{}, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Nil(t, dir.Active(), "shared variant dropped")
}
