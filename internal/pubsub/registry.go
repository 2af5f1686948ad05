// Package pubsub provides the in-memory topic registry that fans streamed lnd
// events out to GraphQL subscriptions.
package pubsub

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	subscribersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lngraph_pubsub_subscribers",
		Help: "Number of attached pub/sub subscriptions",
	})
	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lngraph_pubsub_published_total",
		Help: "Published payloads by outcome",
	}, []string{"outcome"})
)

// Registry maps topics to their attached subscriptions. The zero value is not
// usable; create one with New and share it for the lifetime of a server.
type Registry struct {
	mu     sync.Mutex
	topics map[string]map[string]*Subscription
	logger zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger replaces the global logger.
func WithLogger(l zerolog.Logger) Option { return func(r *Registry) { r.logger = l } }

func New(opts ...Option) *Registry {
	r := &Registry{
		topics: make(map[string]map[string]*Subscription),
		logger: log.Logger,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Subscribe attaches a new subscription to topic. The subscription receives
// every payload published after this call, in publish order. It is detached
// when ctx ends or Close is called.
func (r *Registry) Subscribe(ctx context.Context, topic string) *Subscription {
	s := &Subscription{
		ID:     uuid.New().String(),
		Topic:  topic,
		reg:    r,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	subs := r.topics[topic]
	if subs == nil {
		subs = make(map[string]*Subscription)
		r.topics[topic] = subs
	}
	subs[s.ID] = s
	r.mu.Unlock()
	subscribersGauge.Inc()

	r.logger.Debug().
		Str("subscriberID", s.ID).
		Str("topic", topic).
		Msg("new subscription")

	if done := ctx.Done(); done != nil {
		go func() {
			select {
			case <-done:
				s.Close()
			case <-s.done:
			}
		}()
	}
	return s
}

// Publish delivers payload to every subscription attached to topic and
// returns how many received it. It never blocks on slow subscribers. A
// payload published to a topic with no subscribers is dropped.
func (r *Registry) Publish(topic string, payload any) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, s := range r.topics[topic] {
		if s.push(payload) {
			n++
		}
	}
	if n == 0 {
		publishedTotal.WithLabelValues("dropped").Inc()
		r.logger.Debug().Str("topic", topic).Msg("no subscribers, payload dropped")
		return 0
	}
	publishedTotal.WithLabelValues("delivered").Inc()
	return n
}

// CloseTopic removes topic. Its subscriptions end once they have drained
// what was already queued.
func (r *Registry) CloseTopic(topic string) {
	r.mu.Lock()
	subs := r.topics[topic]
	delete(r.topics, topic)
	r.mu.Unlock()

	for _, s := range subs {
		s.end()
		subscribersGauge.Dec()
	}
	if len(subs) > 0 {
		r.logger.Debug().Str("topic", topic).Int("subscribers", len(subs)).Msg("topic closed")
	}
}

// Subscribers reports how many subscriptions are attached to topic.
func (r *Registry) Subscribers(topic string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.topics[topic])
}

func (r *Registry) detach(s *Subscription) {
	r.mu.Lock()
	subs := r.topics[s.Topic]
	_, ok := subs[s.ID]
	if ok {
		delete(subs, s.ID)
		if len(subs) == 0 {
			delete(r.topics, s.Topic)
		}
	}
	r.mu.Unlock()

	if ok {
		subscribersGauge.Dec()
		r.logger.Debug().
			Str("subscriberID", s.ID).
			Str("topic", s.Topic).
			Msg("subscription removed")
	}
}
