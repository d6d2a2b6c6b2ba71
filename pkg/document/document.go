// Package document composes resolved content, the privacy gate and the page
// layout into the page list handed to a renderer.
package document

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/layout"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/privacy"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/share"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/versions"
)

// Source produces the content to render. content.Resolver and
// *editor.Session both satisfy it.
type Source interface {
	Resolve() (resolved content.Bundle)
}

// Input is everything Build needs.
type Input struct {
	Data      content.Data
	Source    Source // nil renders the baseline content
	Viewer    privacy.Viewer
	Options   share.Options
	Templates []layout.PageTemplate // nil uses layout.DefaultTemplates
	Warnings  []string
}

// Document is the renderer-facing result.
type Document struct {
	Person      content.Person
	References  []content.Reference
	Languages   []content.Language
	Attachments []content.Attachment
	Content     content.Bundle
	Visibility  privacy.Visibility
	Options     share.Options
	Pages       []layout.Page
	Warnings    []string
}

// Build resolves and gates the document. Contact details the viewer may not
// see are removed from the result rather than flagged, so a renderer cannot
// leak them by mistake.
func Build(in Input) (doc Document) {
	doc.Options = in.Options
	doc.Warnings = append([]string{}, in.Warnings...)

	if in.Source != nil {
		doc.Content = in.Source.Resolve()
	} else {
		doc.Content = in.Data.Content.Clone()
	}

	requested := in.Options.Privacy
	if requested == "" {
		requested = privacy.LevelNone
	}
	selector := privacy.NewSelector(in.Viewer, privacy.LevelNone)
	err := selector.Set(requested)
	if err != nil {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("%v, showing %q", err, selector.Level()))
	}
	doc.Visibility = selector.Visibility()

	doc.Person = gatePerson(in.Data.Person, doc.Visibility, in.Options.ShowPhoto)
	doc.References = gateReferences(in.Data.References, doc.Visibility)
	doc.Languages = append([]content.Language{}, in.Data.Languages...)
	if in.Options.ShowAttachments {
		doc.Attachments = append([]content.Attachment{}, in.Data.Attachments...)
	}

	templates := in.Templates
	if templates == nil {
		templates = layout.DefaultTemplates()
	}
	templates = filterSidebar(templates, in.Options)

	doc.Pages = layout.Paginate(templates, doc.Content.WorkExperience, in.Options.ShowExperience)
	return doc
}

// SelectVariant makes the variant named by opts.VersionID active on dir. A
// missing variant is not an error: the baseline stays in effect and a
// warning is returned instead. Without a version id any earlier shared
// variant is dropped.
func SelectVariant(ctx context.Context, dir *versions.Directory, opts share.Options, logger *zap.Logger) (warnings []string, err error) {
	if opts.VersionID == "" {
		dir.ClearShared()
		return warnings, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	err = dir.LoadShared(ctx, opts.VersionID)
	if versions.IsNotFound(err) {
		logger.Warn("shared variant not found", zap.String("id", opts.VersionID))
		warnings = append(warnings, fmt.Sprintf("variant %s not found, showing the default CV", opts.VersionID))
		err = nil
		return warnings, err
	}
	return warnings, err
}

func gatePerson(p content.Person, v privacy.Visibility, showPhoto bool) (out content.Person) {
	out = p
	if p.Links != nil {
		out.Links = make(map[string]string, len(p.Links))
		for k, link := range p.Links {
			out.Links[k] = link
		}
	}
	if !v.ShowPersonalContact {
		out.Email = ""
		out.Phone = ""
		out.Location = ""
	}
	if !showPhoto {
		out.Photo = ""
	}
	return out
}

func gateReferences(refs []content.Reference, v privacy.Visibility) (out []content.Reference) {
	out = make([]content.Reference, len(refs))
	copy(out, refs)
	if v.ShowReferenceContact {
		return out
	}
	for i := range out {
		out[i].Email = ""
		out[i].Phone = ""
	}
	return out
}

// filterSidebar drops sidebar sections disabled by opts. Templates are copied.
func filterSidebar(templates []layout.PageTemplate, opts share.Options) (out []layout.PageTemplate) {
	out = make([]layout.PageTemplate, 0, len(templates))
	for _, tpl := range templates {
		sidebar := make([]layout.SectionID, 0, len(tpl.Sidebar))
		for _, id := range tpl.Sidebar {
			if id == layout.SectionPhoto && !opts.ShowPhoto {
				continue
			}
			if id == layout.SectionAttachments && !opts.ShowAttachments {
				continue
			}
			sidebar = append(sidebar, id)
		}
		out = append(out, layout.PageTemplate{Sidebar: sidebar, Main: tpl.Main})
	}
	return out
}
