package lndconn

import (
	"time"

	"google.golang.org/grpc"
)

// Options configures the connection to lnd.
//
// Defaults:
// - Address:      localhost:10009
// - RPCTimeout:   30s (used only if the call context has no deadline)
// - ReadyTimeout: 10s
//
// CertPath and MacaroonPath are required unless DialOptions replaces the
// credentials entirely.
type Options struct {
	Address      string
	CertPath     string
	MacaroonPath string

	RPCTimeout   time.Duration
	ReadyTimeout time.Duration

	DialOptions []grpc.DialOption
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Address:      "localhost:10009",
		RPCTimeout:   30 * time.Second,
		ReadyTimeout: 10 * time.Second,
	}
}

func WithAddress(addr string) Option          { return func(o *Options) { o.Address = addr } }
func WithCertPath(path string) Option         { return func(o *Options) { o.CertPath = path } }
func WithMacaroonPath(path string) Option     { return func(o *Options) { o.MacaroonPath = path } }
func WithRPCTimeout(d time.Duration) Option   { return func(o *Options) { o.RPCTimeout = d } }
func WithReadyTimeout(d time.Duration) Option { return func(o *Options) { o.ReadyTimeout = d } }

// WithDialOptions replaces the TLS and macaroon credentials with opts.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *Options) { o.DialOptions = opts }
}
