package pubsub

import (
	"context"
	"sync"
)

// Subscription is one consumer of a topic. Its queue is unbounded, so
// publishers never wait on it. Next is meant for a single reader.
type Subscription struct {
	ID    string
	Topic string

	reg    *Registry
	notify chan struct{}
	done   chan struct{}

	mu     sync.Mutex
	queue  []any
	ended  bool
	closed bool
}

// Next blocks until a payload is available and returns it. It returns false
// once the subscription is closed, its topic was closed and the queue is
// drained, or ctx ends.
func (s *Subscription) Next(ctx context.Context) (any, bool) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil, false
		}
		if len(s.queue) > 0 {
			item := s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return item, true
		}
		if s.ended {
			s.mu.Unlock()
			return nil, false
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
		case <-ctx.Done():
			return nil, false
		}
	}
}

// Close detaches the subscription and discards anything still queued. Other
// subscriptions of the topic are unaffected. Close is idempotent.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue = nil
	close(s.done)
	s.mu.Unlock()

	s.wake()
	s.reg.detach(s)
}

func (s *Subscription) push(payload any) bool {
	s.mu.Lock()
	if s.closed || s.ended {
		s.mu.Unlock()
		return false
	}
	s.queue = append(s.queue, payload)
	s.mu.Unlock()
	s.wake()
	return true
}

func (s *Subscription) end() {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}
