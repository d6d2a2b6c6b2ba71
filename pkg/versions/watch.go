package versions

import (
	"context"
	"sync"
)

// Watch adapts a store's subscription feed to a channel. Only the newest
// undelivered snapshot is kept. The channel is closed when ctx is done.
func Watch(ctx context.Context, store Store) (snapshots <-chan []Variant) {
	ch := make(chan []Variant, 1)

	var mu sync.Mutex
	closed := false

	deliver := func(variants []Variant) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case <-ch:
		default:
		}
		ch <- variants
	}

	unsubscribe := store.Subscribe(deliver)

	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	snapshots = ch
	return snapshots
}
