package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	config "github.com/hanpama/lngraph/internal/config"
	eventbus "github.com/hanpama/lngraph/internal/eventbus"
	executor "github.com/hanpama/lngraph/internal/executor"
	gqlrt "github.com/hanpama/lngraph/internal/gqlrt"
	introspection "github.com/hanpama/lngraph/internal/introspection"
	lndconn "github.com/hanpama/lngraph/internal/lndconn"
	lnrpc "github.com/hanpama/lngraph/internal/lnrpc"
	metrics "github.com/hanpama/lngraph/internal/metrics"
	otel "github.com/hanpama/lngraph/internal/otel"
	pubsub "github.com/hanpama/lngraph/internal/pubsub"
	resolvers "github.com/hanpama/lngraph/internal/resolvers"
	schema "github.com/hanpama/lngraph/internal/schema"
	server "github.com/hanpama/lngraph/internal/server"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the GraphQL gateway",
		Long: `Connect to lnd and serve GraphQL over HTTP and websockets.

Settings come from flags, LNGRAPH_* environment variables (.env is loaded
first) and lngraph.yaml, in that order of precedence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			if err := applyLogLevel(cfg.Log.Level, a.verbose); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.String("lnd.address", "", "lnd gRPC address (default localhost:10009)")
	f.String("lnd.cert", "", "path to lnd's tls.cert")
	f.String("lnd.macaroon", "", "path to the macaroon sent with every call")
	f.Duration("lnd.rpc-timeout", 0, "timeout of calls without a deadline (default 30s)")
	f.String("http.listen", "", "HTTP listen address (default :3000, or :$PORT)")
	f.String("http.endpoint", "", "GraphQL endpoint path (default /graphql)")
	f.String("http.playground", "", "GraphiQL path (default /playground)")
	f.StringSlice("http.cors-origin", nil, "allowed CORS origin; repeatable, * allows all")
	f.StringSlice("http.metadata-header", nil, "HTTP header forwarded to lnd as gRPC metadata; repeatable")
	f.Duration("http.timeout", 0, "per-request timeout; 0 disables it")
	f.Bool("http.introspection", true, "enable GraphQL introspection")
	f.Bool("http.pretty", false, "indent JSON responses")
	f.Int64("http.max-body-bytes", 0, "largest accepted POST body (default 1MiB)")
	f.String("metrics.listen", "", "Prometheus listen address (default :9090)")
	f.String("otel.endpoint", "", "OTLP gRPC collector endpoint; empty disables tracing")
	f.String("otel.service", "", "OpenTelemetry service name (default lngraph)")

	for key, flag := range map[string]string{
		"lnd.address":           "lnd.address",
		"lnd.cert":              "lnd.cert",
		"lnd.macaroon":          "lnd.macaroon",
		"lnd.rpc_timeout":       "lnd.rpc-timeout",
		"http.listen":           "http.listen",
		"http.endpoint":         "http.endpoint",
		"http.playground":       "http.playground",
		"http.cors_origin":      "http.cors-origin",
		"http.metadata_headers": "http.metadata-header",
		"http.timeout":          "http.timeout",
		"http.introspection":    "http.introspection",
		"http.pretty":           "http.pretty",
		"http.max_body_bytes":   "http.max-body-bytes",
		"metrics.listen":        "metrics.listen",
		"otel.endpoint":         "otel.endpoint",
		"otel.service":          "otel.service",
	} {
		_ = a.v.BindPFlag(key, f.Lookup(flag))
	}
	return cmd
}

// buildHandler assembles the GraphQL stack on top of an lnd connection.
func buildHandler(cfg *config.Config, cc *lndconn.Conn) (http.Handler, error) {
	sch, err := schema.BuildFromSDL(resolvers.SDL())
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	m := resolvers.Build(lnrpc.NewClient(cc), pubsub.New())

	var rt executor.Runtime = gqlrt.New(m, sch)
	if cfg.HTTP.Introspection {
		w := introspection.Wrap(rt, sch)
		rt, sch = w.Runtime, w.Schema
	}

	opts := []server.Option{server.WithEndpoint(cfg.HTTP.Endpoint)}
	if cfg.HTTP.Pretty {
		opts = append(opts, server.WithPretty())
	}
	if cfg.HTTP.MaxBodyBytes > 0 {
		opts = append(opts, server.WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes))
	}
	if cfg.HTTP.Timeout > 0 {
		opts = append(opts, server.WithTimeout(cfg.HTTP.Timeout))
	}
	if len(cfg.HTTP.CORSOrigin) > 0 {
		opts = append(opts, server.WithCORS(cfg.HTTP.CORSOrigin...))
	}
	if len(cfg.HTTP.MetadataHeaders) > 0 {
		opts = append(opts, server.WithMetadataHeaders(cfg.HTTP.MetadataHeaders...))
	}
	if cfg.HTTP.Playground == "" {
		opts = append(opts, server.WithPlayground(false))
	}
	h, err := server.New(rt, sch, opts...)
	if err != nil {
		return nil, fmt.Errorf("server init: %w", err)
	}

	routes := server.Routes{Endpoint: cfg.HTTP.Endpoint, Playground: cfg.HTTP.Playground, Health: "/health"}
	return server.NewMux(h, routes, func(context.Context) error { return cc.Healthy() }), nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	eventbus.Use(eventbus.New())
	shutdownTracing, err := otel.Setup(cfg.Otel.Endpoint, cfg.Otel.Service)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	if cfg.Metrics.Listen != "" {
		defer metrics.New(prometheus.DefaultRegisterer).Register()()
	}

	cc, err := lndconn.Dial(ctx,
		lndconn.WithAddress(cfg.LND.Address),
		lndconn.WithCertPath(cfg.LND.Cert),
		lndconn.WithMacaroonPath(cfg.LND.Macaroon),
		lndconn.WithRPCTimeout(cfg.LND.RPCTimeout),
		lndconn.WithReadyTimeout(cfg.LND.ReadyTimeout),
	)
	if err != nil {
		return fmt.Errorf("connect to lnd: %w", err)
	}
	defer cc.Close()

	handler, err := buildHandler(cfg, cc)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.HTTP.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", cfg.HTTP.Listen).
			Str("endpoint", cfg.HTTP.Endpoint).
			Str("playground", cfg.HTTP.Playground).
			Msg("GraphQL server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down GraphQL server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Metrics.Listen != "" {
		g.Go(func() error { return metrics.Serve(gctx, cfg.Metrics.Listen, prometheus.DefaultGatherer) })
	}
	return g.Wait()
}
