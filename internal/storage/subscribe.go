package storage

import (
	"context"
	"sync"
)

// Snapshot is the complete result set of a query at one point in time.
// Err is set when the query failed; Items is then empty.
type Snapshot[T any] struct {
	Items []T
	Err   error
}

// LoadFunc runs a one-shot query.
type LoadFunc[T any] func(ctx context.Context) ([]T, error)

// Subscribe pushes the full result of load once immediately and again after
// every change to c. The channel is closed when ctx ends or the returned
// function is called; either is safe to do more than once.
func Subscribe[T any](ctx context.Context, w Watcher, c Collection, load LoadFunc[T]) (<-chan Snapshot[T], func()) {
	ctx, cancel := context.WithCancel(ctx)
	// Watch before the first load so no change between the two is lost.
	signals, stop := w.Watch(c)
	out := make(chan Snapshot[T])

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)
		defer stop()

		for {
			items, err := load(ctx)
			if ctx.Err() != nil {
				return
			}
			snap := Snapshot[T]{Items: items, Err: err}
			if err != nil {
				snap.Items = nil
			}
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}

			select {
			case _, ok := <-signals:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() {
		cancel()
		wg.Wait()
	}
}

// Static returns a subscription that delivers snap once and then stays open
// until ctx ends or the returned function is called. It never touches a store.
func Static[T any](ctx context.Context, snap Snapshot[T]) (<-chan Snapshot[T], func()) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Snapshot[T])

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)
		select {
		case out <- snap:
		case <-ctx.Done():
			return
		}
		<-ctx.Done()
	}()

	return out, func() {
		cancel()
		wg.Wait()
	}
}
