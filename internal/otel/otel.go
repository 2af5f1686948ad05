// Package otel turns event bus traffic into OpenTelemetry spans: one per HTTP
// request, GraphQL operation, lnd call and subscription session.
package otel

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	eventbus "github.com/hanpama/lngraph/internal/eventbus"
	events "github.com/hanpama/lngraph/internal/events"
	reqid "github.com/hanpama/lngraph/internal/reqid"
)

const tracerName = "github.com/hanpama/lngraph"

// Setup exports spans to the OTLP gRPC collector at endpoint. An empty
// endpoint leaves tracing off. The returned function flushes and detaches.
func Setup(endpoint, service string) (shutdown func(context.Context) error, err error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, errors.Wrap(err, "otlp exporter")
	}
	res := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(service))
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)

	detach := newSubscriber(tp.Tracer(tracerName)).register()
	return func(ctx context.Context) error {
		detach()
		return tp.Shutdown(ctx)
	}, nil
}

// openSpans holds spans between their start and finish events.
type openSpans struct{ m sync.Map }

func (o *openSpans) put(key string, span trace.Span) { o.m.Store(key, span) }

func (o *openSpans) get(key string) (trace.Span, bool) {
	v, ok := o.m.Load(key)
	if !ok {
		return nil, false
	}
	return v.(trace.Span), true
}

// finish ends the span stored under key after letting annotate decorate it.
func (o *openSpans) finish(key string, annotate func(trace.Span)) {
	v, ok := o.m.LoadAndDelete(key)
	if !ok {
		return
	}
	span := v.(trace.Span)
	if annotate != nil {
		annotate(span)
	}
	span.End()
}

type subscriber struct {
	tracer trace.Tracer

	requests   openSpans // by request id
	operations openSpans // by operation id
	calls      openSpans // by call id
	sessions   openSpans // by topic
}

func newSubscriber(tracer trace.Tracer) *subscriber {
	return &subscriber{tracer: tracer}
}

func (s *subscriber) register() (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(s.httpStart),
		eventbus.Subscribe(s.httpFinish),
		eventbus.Subscribe(s.operationStart),
		eventbus.Subscribe(s.operationFinish),
		eventbus.Subscribe(s.callStart),
		eventbus.Subscribe(s.callFinish),
		eventbus.Subscribe(s.sessionStart),
		eventbus.Subscribe(s.sessionStop),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// parent returns ctx carrying the innermost open span of its request: the
// operation span when there is one, else the HTTP span.
func (s *subscriber) parent(ctx context.Context) context.Context {
	if op, ok := reqid.OperationFrom(ctx); ok {
		if span, ok := s.operations.get(op); ok {
			return trace.ContextWithSpan(ctx, span)
		}
	}
	if rid, ok := reqid.FromContext(ctx); ok {
		if span, ok := s.requests.get(rid); ok {
			return trace.ContextWithSpan(ctx, span)
		}
	}
	return ctx
}

func (s *subscriber) httpStart(ctx context.Context, e events.HTTPStart) {
	rid, ok := reqid.FromContext(ctx)
	if !ok {
		return
	}
	_, span := s.tracer.Start(ctx, "http.request",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			semconv.HTTPMethodKey.String(e.Request.Method),
			attribute.String("http.target", e.Request.URL.Path),
			attribute.String("request.id", rid),
		))
	s.requests.put(rid, span)
}

func (s *subscriber) httpFinish(ctx context.Context, e events.HTTPFinish) {
	rid, _ := reqid.FromContext(ctx)
	s.requests.finish(rid, func(span trace.Span) {
		span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
		if e.Status >= 500 {
			span.SetStatus(codes.Error, "")
		}
	})
}

func (s *subscriber) operationStart(ctx context.Context, e events.GraphQLStart) {
	_, span := s.tracer.Start(s.parent(ctx), "graphql.operation",
		trace.WithAttributes(
			attribute.String("graphql.operation.name", e.OperationName),
			attribute.String("graphql.operation.type", e.OperationType),
		))
	s.operations.put(e.OperationID, span)
}

func (s *subscriber) operationFinish(_ context.Context, e events.GraphQLFinish) {
	s.operations.finish(e.OperationID, func(span trace.Span) {
		span.SetAttributes(attribute.Int("graphql.error_count", len(e.Errors)))
		if len(e.Errors) > 0 {
			span.SetStatus(codes.Error, e.Errors[0].Error())
		}
	})
}

func (s *subscriber) callStart(ctx context.Context, e events.GRPCClientStart) {
	_, span := s.tracer.Start(s.parent(ctx), "grpc.client",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.RPCSystemGRPC,
			semconv.RPCServiceKey.String(e.Service),
			semconv.RPCMethodKey.String(e.Method),
			attribute.String("net.peer.name", e.Target),
			attribute.Bool("rpc.streaming", e.Streaming),
		))
	s.calls.put(e.CallID, span)
}

func (s *subscriber) callFinish(_ context.Context, e events.GRPCClientFinish) {
	s.calls.finish(e.CallID, func(span trace.Span) {
		span.SetAttributes(attribute.String("grpc.code", e.Code.String()))
		if e.Err != nil {
			span.RecordError(e.Err)
			span.SetStatus(codes.Error, e.Code.String())
		}
	})
}

func (s *subscriber) sessionStart(ctx context.Context, e events.SubscriptionStart) {
	_, span := s.tracer.Start(s.parent(ctx), "lnd.subscription",
		trace.WithAttributes(
			semconv.RPCMethodKey.String(e.Method),
			attribute.String("pubsub.topic", e.Topic),
		))
	s.sessions.put(e.Topic, span)
}

func (s *subscriber) sessionStop(_ context.Context, e events.SubscriptionStop) {
	s.sessions.finish(e.Topic, nil)
}
