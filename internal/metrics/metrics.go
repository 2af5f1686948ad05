// Package metrics exports Prometheus collectors fed from the event bus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	eventbus "github.com/hanpama/lngraph/internal/eventbus"
	events "github.com/hanpama/lngraph/internal/events"
)

// Collectors holds the gateway's request, operation and lnd call metrics.
type Collectors struct {
	httpDuration        *prometheus.HistogramVec
	operationDuration   *prometheus.HistogramVec
	lndCallDuration     *prometheus.HistogramVec
	activeSubscriptions *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lngraph_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
		operationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lngraph_graphql_operation_duration_seconds",
			Help:    "GraphQL operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"type", "outcome"}),
		lndCallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lngraph_lnd_call_duration_seconds",
			Help:    "lnd gRPC call duration in seconds; for streams, the time to open",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "code"}),
		activeSubscriptions: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lngraph_lnd_subscriptions_active",
			Help: "Open lnd subscription streams",
		}, []string{"method"}),
	}
}

// Register subscribes the collectors to the global event bus.
func (c *Collectors) Register() (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			method := ""
			if e.Request != nil {
				method = e.Request.Method
			}
			c.httpDuration.WithLabelValues(method, strconv.Itoa(e.Status)).Observe(e.Duration.Seconds())
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
			outcome := "ok"
			if len(e.Errors) > 0 {
				outcome = "error"
			}
			c.operationDuration.WithLabelValues(e.OperationType, outcome).Observe(e.Duration.Seconds())
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.GRPCClientFinish) {
			c.lndCallDuration.WithLabelValues(e.Method, e.Code.String()).Observe(e.Duration.Seconds())
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.SubscriptionStart) {
			c.activeSubscriptions.WithLabelValues(e.Method).Inc()
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.SubscriptionStop) {
			c.activeSubscriptions.WithLabelValues(e.Method).Dec()
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Handler serves g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve runs a /metrics listener on addr until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	log.Info().Str("addr", addr).Msg("starting metrics server")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down metrics server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	}
}
