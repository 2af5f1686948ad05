package pubsub_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/lngraph/internal/pubsub"
)

func drain(t *testing.T, s *pubsub.Subscription, n int) []any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	var out []any
	for i := 0; i < n; i++ {
		v, ok := s.Next(ctx)
		require.True(t, ok, "item %d", i)
		out = append(out, v)
	}
	return out
}

func TestRegistry_EverySubscriberGetsEveryEventInOrder(t *testing.T) {
	r := pubsub.New()
	a := r.Subscribe(context.Background(), "invoices")
	b := r.Subscribe(context.Background(), "invoices")
	defer a.Close()
	defer b.Close()

	for i := 1; i <= 3; i++ {
		require.Equal(t, 2, r.Publish("invoices", i))
	}

	want := []any{1, 2, 3}
	if diff := cmp.Diff(want, drain(t, a, 3)); diff != "" {
		t.Fatalf("subscriber a mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, drain(t, b, 3)); diff != "" {
		t.Fatalf("subscriber b mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_NoReplayForLateSubscriber(t *testing.T) {
	r := pubsub.New()
	early := r.Subscribe(context.Background(), "t")
	defer early.Close()
	r.Publish("t", "first")

	late := r.Subscribe(context.Background(), "t")
	defer late.Close()
	r.Publish("t", "second")

	assert.Equal(t, []any{"first", "second"}, drain(t, early, 2))
	assert.Equal(t, []any{"second"}, drain(t, late, 1))
}

func TestRegistry_PublishWithoutSubscribersIsDropped(t *testing.T) {
	r := pubsub.New()
	require.Equal(t, 0, r.Publish("t", "lost"))

	s := r.Subscribe(context.Background(), "t")
	defer s.Close()
	r.Publish("t", "kept")
	assert.Equal(t, []any{"kept"}, drain(t, s, 1))
}

func TestRegistry_CloseStopsOnlyThatSubscriber(t *testing.T) {
	r := pubsub.New()
	a := r.Subscribe(context.Background(), "t")
	b := r.Subscribe(context.Background(), "t")
	defer b.Close()

	r.Publish("t", 1)
	a.Close()
	a.Close()
	require.Equal(t, 1, r.Subscribers("t"))
	require.Equal(t, 1, r.Publish("t", 2))

	_, ok := a.Next(context.Background())
	assert.False(t, ok)
	assert.Equal(t, []any{1, 2}, drain(t, b, 2))
}

func TestRegistry_CloseTopicDrainsQueuedItems(t *testing.T) {
	r := pubsub.New()
	s := r.Subscribe(context.Background(), "t")
	defer s.Close()

	r.Publish("t", "a")
	r.Publish("t", "b")
	r.CloseTopic("t")
	require.Equal(t, 0, r.Subscribers("t"))
	require.Equal(t, 0, r.Publish("t", "c"))

	assert.Equal(t, []any{"a", "b"}, drain(t, s, 2))
	_, ok := s.Next(context.Background())
	assert.False(t, ok)
}

func TestRegistry_ContextCancelDetaches(t *testing.T) {
	r := pubsub.New()
	ctx, cancel := context.WithCancel(context.Background())
	s := r.Subscribe(ctx, "t")
	require.Equal(t, 1, r.Subscribers("t"))

	cancel()
	require.Eventually(t, func() bool { return r.Subscribers("t") == 0 }, time.Second, 5*time.Millisecond)
	_, ok := s.Next(context.Background())
	assert.False(t, ok)
}

func TestSubscription_NextWaitsForPublish(t *testing.T) {
	r := pubsub.New()
	s := r.Subscribe(context.Background(), "t")
	defer s.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		r.Publish("t", "late")
	}()
	v, ok := s.Next(context.Background())
	require.True(t, ok)
	assert.Equal(t, "late", v)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, ok = s.Next(ctx)
	assert.False(t, ok)
}

func TestRegistry_ConcurrentPublishKeepsPerPublisherOrder(t *testing.T) {
	r := pubsub.New()
	s := r.Subscribe(context.Background(), "t")
	defer s.Close()

	const publishers, perPublisher = 4, 50
	var wg sync.WaitGroup
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				r.Publish("t", [2]int{p, i})
			}
		}(p)
	}
	wg.Wait()

	last := map[int]int{0: -1, 1: -1, 2: -1, 3: -1}
	for _, v := range drain(t, s, publishers*perPublisher) {
		pair := v.([2]int)
		require.Equal(t, last[pair[0]]+1, pair[1])
		last[pair[0]] = pair[1]
	}
}
