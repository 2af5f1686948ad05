package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	eventbus "github.com/hanpama/lngraph/internal/eventbus"
	events "github.com/hanpama/lngraph/internal/events"
)

func TestCollectorsFollowEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	reg := prometheus.NewRegistry()
	c := New(reg)
	unsubscribe := c.Register()

	ctx := context.Background()
	r := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: 200, Duration: 20 * time.Millisecond})
	eventbus.Publish(ctx, events.GraphQLFinish{OperationType: "query", Duration: time.Millisecond})
	eventbus.Publish(ctx, events.GraphQLFinish{OperationType: "query", Errors: []error{errors.New("boom")}})
	eventbus.Publish(ctx, events.GRPCClientFinish{Method: "GetInfo", Code: codes.OK})
	eventbus.Publish(ctx, events.GRPCClientFinish{Method: "GetInfo", Code: codes.Unavailable})
	eventbus.Publish(ctx, events.SubscriptionStart{Method: "OpenChannel", Topic: "a"})
	eventbus.Publish(ctx, events.SubscriptionStart{Method: "OpenChannel", Topic: "b"})
	eventbus.Publish(ctx, events.SubscriptionStop{Method: "OpenChannel", Topic: "a"})

	assert.Equal(t, 1, testutil.CollectAndCount(c.httpDuration))
	assert.Equal(t, 2, testutil.CollectAndCount(c.operationDuration))
	assert.Equal(t, 2, testutil.CollectAndCount(c.lndCallDuration))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.activeSubscriptions.WithLabelValues("OpenChannel")))

	unsubscribe()
	eventbus.Publish(ctx, events.SubscriptionStop{Method: "OpenChannel", Topic: "b"})
	assert.Equal(t, float64(1), testutil.ToFloat64(c.activeSubscriptions.WithLabelValues("OpenChannel")))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	c.lndCallDuration.WithLabelValues("GetInfo", "OK").Observe(0.01)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `lngraph_lnd_call_duration_seconds_count{code="OK",method="GetInfo"} 1`)
}

func TestServeStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", prometheus.NewRegistry()) }()
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}
