// Package versions keeps the set of named content variants, tracks which one
// is active and funnels every change through a persistence Store.
package versions

import (
	"context"
	"time"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
)

// Variant is a named, persisted override bundle.
type Variant struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Content    content.Overrides `json:"content"`
	JobContext *JobContext       `json:"job_context,omitempty"`
	IsDefault  bool              `json:"is_default"`
	CreatedAt  time.Time         `json:"created_at"`
}

// JobContext records what a variant was tailored for. It is informational
// and never rendered.
type JobContext struct {
	Company     string `json:"company,omitempty"`
	Role        string `json:"role,omitempty"`
	PostingURL  string `json:"posting_url,omitempty"`
	PostingText string `json:"posting_text,omitempty"`
	Research    string `json:"research,omitempty"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name       *string
	Content    *content.Overrides
	JobContext *JobContext
	IsDefault  *bool
}

// SnapshotFunc receives the complete, ordered variant list.
type SnapshotFunc func(variants []Variant)

// Store is the persistence collaborator.
type Store interface {
	// Create persists a new variant and returns its id. v.ID is ignored.
	Create(ctx context.Context, v Variant) (id string, err error)
	// Get returns the variant, or nil when no variant has that id.
	Get(ctx context.Context, id string) (v *Variant, err error)
	Update(ctx context.Context, id string, patch Patch) (err error)
	Delete(ctx context.Context, id string) (err error)
	// Subscribe registers fn, delivers the current snapshot, and then
	// delivers a new snapshot after every change.
	Subscribe(fn SnapshotFunc) (unsubscribe func())
	Close() (err error)
}

// apply returns v with patch applied.
func (p Patch) apply(v Variant) (out Variant) {
	out = v
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Content != nil {
		out.Content = *p.Content
	}
	if p.JobContext != nil {
		jc := *p.JobContext
		out.JobContext = &jc
	}
	if p.IsDefault != nil {
		out.IsDefault = *p.IsDefault
	}
	return out
}

// Bool returns a pointer to b, for building Patch literals.
func Bool(b bool) (p *bool) {
	p = &b
	return p
}
