package versions

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
)

// Directory tracks the known variants and which one is active.
//
// The variant list is only ever replaced by snapshots from the store's
// subscription feed; mutating operations write through to the store and
// never edit the list locally.
type Directory struct {
	store  Store
	logger *zap.Logger

	mu           sync.Mutex
	variants     []Variant
	selectedID   string
	shared       *Variant
	autoSelected bool
	listeners    []func()

	unsubscribe func()
}

// Option configures a Directory.
type Option func(d *Directory)

// WithLogger sets the directory's logger.
func WithLogger(logger *zap.Logger) (opt Option) {
	opt = func(d *Directory) {
		d.logger = logger
	}
	return opt
}

// NewDirectory subscribes to store and returns the directory.
func NewDirectory(store Store, opts ...Option) (d *Directory) {
	d = &Directory{
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.unsubscribe = store.Subscribe(d.applySnapshot)
	return d
}

// Close stops receiving snapshots. The store itself is left open.
func (d *Directory) Close() {
	if d.unsubscribe != nil {
		d.unsubscribe()
	}
}

// OnChange registers fn to run after every applied snapshot and every
// selection change.
func (d *Directory) OnChange(fn func()) {
	d.mu.Lock()
	d.listeners = append(d.listeners, fn)
	d.mu.Unlock()
}

func (d *Directory) applySnapshot(variants []Variant) {
	d.mu.Lock()
	d.variants = variants

	if !d.autoSelected {
		d.autoSelected = true
		if d.selectedID == "" {
			for _, v := range variants {
				if v.IsDefault {
					d.selectedID = v.ID
					d.logger.Debug("auto-selected default variant", zap.String("id", v.ID), zap.String("name", v.Name))
					break
				}
			}
		}
	}
	listeners := append([]func(){}, d.listeners...)
	d.mu.Unlock()

	d.logger.Debug("applied variant snapshot", zap.Int("variants", len(variants)))
	fire(listeners)
}

// Variants returns the current variant list.
func (d *Directory) Variants() (variants []Variant) {
	d.mu.Lock()
	defer d.mu.Unlock()
	variants = cloneVariants(d.variants)
	return variants
}

// Find returns the listed variant with id, or nil.
func (d *Directory) Find(id string) (v *Variant) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v = d.findLocked(id)
	return v
}

// Default returns the variant marked default, or nil.
func (d *Directory) Default() (v *Variant) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, candidate := range d.variants {
		if candidate.IsDefault {
			found := candidate
			v = &found
			return v
		}
	}
	return v
}

// Active returns the active variant: a shared variant first, then the
// explicitly (or automatically) selected one. Nil means the baseline.
func (d *Directory) Active() (v *Variant) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v = d.activeLocked()
	return v
}

// ActiveContent returns the active variant's overrides, or nil for the
// baseline.
func (d *Directory) ActiveContent() (o *content.Overrides) {
	v := d.Active()
	if v == nil {
		return o
	}
	c := v.Content
	o = &c
	return o
}

// Resolver returns a resolver over baseline and the active variant.
func (d *Directory) Resolver(baseline content.Bundle) (r content.Resolver) {
	r = content.Resolver{Baseline: baseline, Active: d.ActiveContent()}
	return r
}

func (d *Directory) activeLocked() (v *Variant) {
	if d.shared != nil {
		shared := *d.shared
		v = &shared
		return v
	}
	if d.selectedID == "" {
		return v
	}
	v = d.findLocked(d.selectedID)
	return v
}

func (d *Directory) findLocked(id string) (v *Variant) {
	for _, candidate := range d.variants {
		if candidate.ID == id {
			found := candidate
			v = &found
			return v
		}
	}
	return v
}

// Select makes id the explicit selection. An empty id clears the selection
// and reverts to the baseline. A shared variant, if loaded, still takes
// precedence.
func (d *Directory) Select(id string) {
	d.mu.Lock()
	d.selectedID = id
	d.autoSelected = true
	listeners := append([]func(){}, d.listeners...)
	d.mu.Unlock()

	fire(listeners)
}

// LoadShared fetches a variant by id for a shared link. It works without the
// directory listing, so unauthenticated visitors can open shared links. When
// the id does not resolve a NotFoundError is returned and the baseline stays
// in effect.
func (d *Directory) LoadShared(ctx context.Context, id string) (err error) {
	var v *Variant
	v, err = d.store.Get(ctx, id)
	if err != nil {
		err = persistenceError("load", id, err)
		return err
	}
	if v == nil {
		err = &NotFoundError{ID: id}
		d.logger.Warn("shared variant not found, using baseline", zap.String("id", id))
		return err
	}

	d.mu.Lock()
	d.shared = v
	listeners := append([]func(){}, d.listeners...)
	d.mu.Unlock()

	fire(listeners)
	return err
}

// ClearShared drops the shared variant, returning the selection to the
// explicit or default variant.
func (d *Directory) ClearShared() {
	d.mu.Lock()
	if d.shared == nil {
		d.mu.Unlock()
		return
	}
	d.shared = nil
	listeners := append([]func(){}, d.listeners...)
	d.mu.Unlock()

	fire(listeners)
}

// Create persists a new variant and returns its id. The variant appears in
// Variants once the store's feed delivers it.
func (d *Directory) Create(ctx context.Context, name string, c content.Overrides, jc *JobContext) (id string, err error) {
	id, err = d.store.Create(ctx, Variant{Name: name, Content: c, JobContext: jc})
	if err != nil {
		err = persistenceError("create", "", err)
		return id, err
	}

	d.logger.Info("created variant", zap.String("id", id), zap.String("name", name))
	return id, err
}

// Update writes patch through to the store.
func (d *Directory) Update(ctx context.Context, id string, patch Patch) (err error) {
	err = d.store.Update(ctx, id, patch)
	if err != nil {
		err = persistenceError("update", id, err)
		return err
	}

	d.mu.Lock()
	if d.shared != nil && d.shared.ID == id {
		updated := patch.apply(*d.shared)
		d.shared = &updated
	}
	d.mu.Unlock()

	d.logger.Info("updated variant", zap.String("id", id))
	return err
}

// Delete removes a variant. If it was active, the selection reverts to the
// baseline.
func (d *Directory) Delete(ctx context.Context, id string) (err error) {
	err = d.store.Delete(ctx, id)
	if err != nil {
		err = persistenceError("delete", id, err)
		return err
	}

	d.mu.Lock()
	if d.selectedID == id {
		d.selectedID = ""
	}
	if d.shared != nil && d.shared.ID == id {
		d.shared = nil
	}
	listeners := append([]func(){}, d.listeners...)
	d.mu.Unlock()

	d.logger.Info("deleted variant", zap.String("id", id))
	fire(listeners)
	return err
}

// SetDefault marks id as the default and then clears the flag on every other
// variant. A failed write never leaves the directory without a default it
// had before.
func (d *Directory) SetDefault(ctx context.Context, id string) (err error) {
	d.mu.Lock()
	target := d.findLocked(id)
	var others []string
	for _, v := range d.variants {
		if v.IsDefault && v.ID != id {
			others = append(others, v.ID)
		}
	}
	d.mu.Unlock()

	if target == nil {
		err = &NotFoundError{ID: id}
		return err
	}

	if !target.IsDefault {
		err = d.store.Update(ctx, id, Patch{IsDefault: Bool(true)})
		if err != nil {
			err = persistenceError("set default on", id, err)
			return err
		}
	}

	for _, other := range others {
		err = d.store.Update(ctx, other, Patch{IsDefault: Bool(false)})
		if err != nil {
			err = persistenceError("clear default on", other, err)
			return err
		}
	}

	d.logger.Info("set default variant", zap.String("id", id))
	return err
}

func fire(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
