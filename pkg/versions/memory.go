package versions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. Snapshots are delivered synchronously
// on the goroutine that made the change.
type MemoryStore struct {
	mu       sync.Mutex
	variants []Variant
	subs     map[int]SnapshotFunc
	nextSub  int
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() (s *MemoryStore) {
	s = &MemoryStore{
		subs: make(map[int]SnapshotFunc),
		now:  time.Now,
	}
	return s
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, v Variant) (id string, err error) {
	if err = ctx.Err(); err != nil {
		return id, err
	}

	s.mu.Lock()
	v.ID = uuid.NewString()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now().UTC()
	}
	s.variants = append(s.variants, v)
	id = v.ID
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
	return id, err
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (v *Variant, err error) {
	if err = ctx.Err(); err != nil {
		return v, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return v, err
	}
	found := s.variants[idx]
	v = &found
	return v, err
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, id string, patch Patch) (err error) {
	if err = ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		err = &NotFoundError{ID: id}
		return err
	}
	s.variants[idx] = patch.apply(s.variants[idx])
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
	return err
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id string) (err error) {
	if err = ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		err = &NotFoundError{ID: id}
		return err
	}
	s.variants = append(s.variants[:idx], s.variants[idx+1:]...)
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
	return err
}

// Subscribe implements Store.
func (s *MemoryStore) Subscribe(fn SnapshotFunc) (unsubscribe func()) {
	s.mu.Lock()
	key := s.nextSub
	s.nextSub++
	s.subs[key] = fn
	snapshot := cloneVariants(s.variants)
	s.mu.Unlock()

	fn(snapshot)

	unsubscribe = func() {
		s.mu.Lock()
		delete(s.subs, key)
		s.mu.Unlock()
	}
	return unsubscribe
}

// Close implements Store.
func (s *MemoryStore) Close() (err error) {
	s.mu.Lock()
	s.subs = make(map[int]SnapshotFunc)
	s.mu.Unlock()
	return err
}

func (s *MemoryStore) indexLocked(id string) (idx int) {
	for i, v := range s.variants {
		if v.ID == id {
			idx = i
			return idx
		}
	}
	idx = -1
	return idx
}

func (s *MemoryStore) snapshotLocked() (snapshot []Variant, subs []SnapshotFunc) {
	snapshot = cloneVariants(s.variants)
	subs = make([]SnapshotFunc, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return snapshot, subs
}

func notify(subs []SnapshotFunc, snapshot []Variant) {
	for _, fn := range subs {
		fn(cloneVariants(snapshot))
	}
}

func cloneVariants(in []Variant) (out []Variant) {
	out = make([]Variant, len(in))
	copy(out, in)
	return out
}
