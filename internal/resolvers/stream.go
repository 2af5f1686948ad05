package resolvers

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/hanpama/lngraph/internal/eventbus"
	"github.com/hanpama/lngraph/internal/events"
	"github.com/hanpama/lngraph/internal/lnrpc"
	"github.com/hanpama/lngraph/internal/pubsub"
)

type streaming[A, Req, Res, Out any] struct {
	registry *pubsub.Registry
	method   string
	open     func(context.Context, *Req) (lnrpc.Stream[Res], error)
	before   func(A, any) (*Req, error)
	after    func(*Res) (Out, error)
}

// Streaming adapts a server streaming or bidirectional call into a
// subscription. Each Subscribe opens one stream whose messages and errors are
// published to a topic private to that session.
func Streaming[A, Req, Res, Out any](
	registry *pubsub.Registry,
	method string,
	open func(context.Context, *Req) (lnrpc.Stream[Res], error),
	before func(args A, parent any) (*Req, error),
	after func(*Res) (Out, error),
) SubscriptionResolver {
	return &streaming[A, Req, Res, Out]{
		registry: registry,
		method:   method,
		open:     open,
		before:   before,
		after:    after,
	}
}

func (s *streaming[A, Req, Res, Out]) Subscribe(ctx context.Context, parent any, args map[string]any) (Sequence, error) {
	var a A
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	req, err := s.before(a, parent)
	if err != nil {
		return nil, err
	}

	topic := s.method + "/" + uuid.New().String()
	streamCtx, cancel := context.WithCancel(ctx)
	// attach before opening so the first message cannot be missed
	sub := s.registry.Subscribe(streamCtx, topic)

	stream, err := s.open(streamCtx, req)
	if err != nil {
		sub.Close()
		cancel()
		return nil, err
	}

	sess := &session{
		method: s.method,
		topic:  topic,
		sub:    sub,
		stream: stream,
		cancel: cancel,
		start:  time.Now(),
		ctx:    ctx,
	}
	go pump(streamCtx, s.registry, topic, stream)

	log.Debug().Str("method", s.method).Str("topic", topic).Msg("subscription started")
	eventbus.Publish(ctx, events.SubscriptionStart{Method: s.method, Topic: topic})
	return sess, nil
}

func (s *streaming[A, Req, Res, Out]) Resolve(ctx context.Context, payload any, args map[string]any) (any, error) {
	switch p := payload.(type) {
	case error:
		return nil, p
	case *Res:
		return s.after(p)
	default:
		return nil, errors.Wrapf(ErrUnexpectedPayload, "%s: %T", s.method, payload)
	}
}

// pump forwards stream messages to topic until the stream ends. A terminal
// error other than EOF is forwarded too, unless the session was torn down.
func pump[Res any](ctx context.Context, registry *pubsub.Registry, topic string, stream lnrpc.Stream[Res]) {
	defer registry.CloseTopic(topic)
	for {
		msg, err := stream.Recv()
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				registry.Publish(topic, err)
			}
			return
		}
		registry.Publish(topic, msg)
	}
}

type session struct {
	method string
	topic  string
	sub    *pubsub.Subscription
	stream interface{ Close() error }
	cancel context.CancelFunc
	start  time.Time
	ctx    context.Context

	once sync.Once
}

func (s *session) Next(ctx context.Context) (any, bool) {
	return s.sub.Next(ctx)
}

func (s *session) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		err = s.stream.Close()
		s.sub.Close()
		log.Debug().Str("method", s.method).Str("topic", s.topic).Msg("subscription stopped")
		eventbus.Publish(s.ctx, events.SubscriptionStop{
			Method:   s.method,
			Topic:    s.topic,
			Duration: time.Since(s.start),
		})
	})
	return err
}
