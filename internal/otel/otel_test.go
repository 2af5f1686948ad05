package otel

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	eventbus "github.com/hanpama/lngraph/internal/eventbus"
	events "github.com/hanpama/lngraph/internal/events"
	reqid "github.com/hanpama/lngraph/internal/reqid"
)

func TestSpansFollowRequest(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	unsubscribe := newSubscriber(tp.Tracer("test")).register()
	defer unsubscribe()

	r := httptest.NewRequest("POST", "/graphql", nil)
	ctx, _ := reqid.NewContext(context.Background())
	eventbus.Publish(ctx, events.HTTPStart{Request: r})

	opCtx, op := reqid.WithOperation(ctx)
	eventbus.Publish(opCtx, events.GraphQLStart{OperationID: op, OperationType: "query"})

	// two concurrent calls of one operation
	eventbus.Publish(opCtx, events.GRPCClientStart{CallID: "c1", Service: "lnrpc.Lightning", Method: "GetInfo"})
	eventbus.Publish(opCtx, events.GRPCClientStart{CallID: "c2", Service: "lnrpc.Lightning", Method: "WalletBalance"})
	eventbus.Publish(opCtx, events.GRPCClientFinish{CallID: "c2", Code: codes.OK})
	failed := status.Error(codes.NotFound, "nope")
	eventbus.Publish(opCtx, events.GRPCClientFinish{CallID: "c1", Code: codes.NotFound, Err: failed})

	eventbus.Publish(opCtx, events.GraphQLFinish{OperationID: op, Errors: []error{failed}, Duration: time.Millisecond})
	eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: 200})

	ended := rec.Ended()
	require.Len(t, ended, 4)

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range ended {
		byName[s.Name()+"/"+methodOf(s)] = s
	}
	httpSpan := byName["http.request/"]
	gqlSpan := byName["graphql.operation/"]
	info := byName["grpc.client/GetInfo"]
	balance := byName["grpc.client/WalletBalance"]
	require.NotNil(t, httpSpan)
	require.NotNil(t, gqlSpan)
	require.NotNil(t, info)
	require.NotNil(t, balance)

	require.Equal(t, httpSpan.SpanContext().SpanID(), gqlSpan.Parent().SpanID())
	require.Equal(t, gqlSpan.SpanContext().SpanID(), info.Parent().SpanID())
	require.Equal(t, gqlSpan.SpanContext().SpanID(), balance.Parent().SpanID())
	require.Len(t, info.Events(), 1)
	require.Empty(t, balance.Events())
}

func TestSubscriptionSpan(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer newSubscriber(tp.Tracer("test")).register()()

	ctx := context.Background()
	eventbus.Publish(ctx, events.SubscriptionStart{Method: "OpenChannel", Topic: "OpenChannel/1"})
	require.Empty(t, rec.Ended())
	eventbus.Publish(ctx, events.SubscriptionStop{Method: "OpenChannel", Topic: "OpenChannel/1"})
	require.Len(t, rec.Ended(), 1)
	require.Equal(t, "lnd.subscription", rec.Ended()[0].Name())
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup("", "lngraph")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func methodOf(s sdktrace.ReadOnlySpan) string {
	for _, kv := range s.Attributes() {
		if kv.Key == "rpc.method" {
			return kv.Value.AsString()
		}
	}
	return ""
}
