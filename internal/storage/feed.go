package storage

import "sync"

// Feed is an in-process change feed. Stores call Publish after each
// successful mutation; subscribers receive coalesced signals per collection.
type Feed struct {
	mu   sync.Mutex
	next int
	subs map[Collection]map[int]chan struct{}
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[Collection]map[int]chan struct{})}
}

// Watch implements Watcher.
func (f *Feed) Watch(c Collection) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	f.mu.Lock()
	id := f.next
	f.next++
	if f.subs[c] == nil {
		f.subs[c] = make(map[int]chan struct{})
	}
	f.subs[c][id] = ch
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs[c], id)
			f.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish signals every watcher of c without blocking. A watcher that has
// not drained its previous signal keeps just that one.
func (f *Feed) Publish(c Collection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[c] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Watchers returns the number of active watches on c.
func (f *Feed) Watchers(c Collection) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[c])
}
