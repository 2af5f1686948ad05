// Package eventbus delivers typed events to in-process subscribers.
//
// Events are routed by their dynamic type and handlers run synchronously on
// the publishing goroutine. Publishing only reads an immutable snapshot of
// the subscriptions, so it never waits on Subscribe.
package eventbus

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
)

// Handler processes events of type T.
type Handler[T any] func(context.Context, T)

type subscription struct {
	id      uint64
	deliver func(context.Context, any)
}

// routes is never modified once published through Bus.routes.
type routes map[reflect.Type][]subscription

// Bus is an in-process event dispatcher.
type Bus struct {
	mu     sync.Mutex // serializes writers
	lastID uint64
	routes atomic.Pointer[routes]
}

func New() *Bus {
	b := &Bus{}
	b.routes.Store(&routes{})
	return b
}

// update replaces the routes of t with what edit returns.
func (b *Bus) update(t reflect.Type, edit func([]subscription) []subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	old := *b.routes.Load()
	next := make(routes, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	if subs := edit(old[t]); len(subs) > 0 {
		next[t] = subs
	} else {
		delete(next, t)
	}
	b.routes.Store(&next)
}

func (b *Bus) add(t reflect.Type, deliver func(context.Context, any)) func() {
	b.mu.Lock()
	b.lastID++
	id := b.lastID
	b.mu.Unlock()

	b.update(t, func(subs []subscription) []subscription {
		return append(subs[:len(subs):len(subs)], subscription{id: id, deliver: deliver})
	})
	var once sync.Once
	return func() {
		once.Do(func() {
			b.update(t, func(subs []subscription) []subscription {
				kept := make([]subscription, 0, len(subs))
				for _, s := range subs {
					if s.id != id {
						kept = append(kept, s)
					}
				}
				return kept
			})
		})
	}
}

func (b *Bus) dispatch(ctx context.Context, e any) {
	for _, s := range (*b.routes.Load())[reflect.TypeOf(e)] {
		s.deliver(ctx, e)
	}
}

var current atomic.Pointer[Bus]

// Use installs b as the process-wide bus. nil turns publishing off.
func Use(b *Bus) { current.Store(b) }

// Subscribe registers h on the current bus and returns a function that
// removes it again. Without a bus it does nothing.
func Subscribe[T any](h Handler[T]) (unsubscribe func()) {
	b := current.Load()
	if b == nil {
		return func() {}
	}
	return b.add(reflect.TypeFor[T](), func(ctx context.Context, e any) { h(ctx, e.(T)) })
}

// Publish hands e to every handler subscribed to its type.
func Publish[T any](ctx context.Context, e T) {
	if b := current.Load(); b != nil {
		b.dispatch(ctx, e)
	}
}
