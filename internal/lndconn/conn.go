// Package lndconn opens the gRPC connection to an lnd node. The returned Conn
// carries TLS and macaroon credentials, applies a default deadline to unary
// calls and reports every call on the event bus.
package lndconn

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/status"

	"github.com/hanpama/lngraph/internal/eventbus"
	"github.com/hanpama/lngraph/internal/events"
)

var errClosed = errors.New("lndconn: closed")

// Conn is a ready connection to lnd. It implements grpc.ClientConnInterface.
type Conn struct {
	cc     *grpc.ClientConn
	opts   *Options
	closed atomic.Bool
}

var _ grpc.ClientConnInterface = (*Conn)(nil)

// Dial connects to lnd and blocks until the connection is ready, ctx is done
// or ReadyTimeout elapses.
func Dial(ctx context.Context, opts ...Option) (*Conn, error) {
	o := defaultOptions()
	for _, f := range opts {
		f(o)
	}

	dialOpts := o.DialOptions
	if len(dialOpts) == 0 {
		creds, err := loadTLS(o.CertPath)
		if err != nil {
			return nil, err
		}
		mac, err := loadMacaroon(o.MacaroonPath)
		if err != nil {
			return nil, err
		}
		dialOpts = []grpc.DialOption{
			grpc.WithTransportCredentials(creds),
			grpc.WithPerRPCCredentials(mac),
			grpc.WithConnectParams(grpc.ConnectParams{Backoff: backoff.DefaultConfig}),
		}
	}

	cc, err := grpc.NewClient(o.Address, dialOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "lndconn: dial %s", o.Address)
	}
	if err := waitReady(ctx, cc, o.ReadyTimeout); err != nil {
		_ = cc.Close()
		return nil, errors.Wrapf(err, "lndconn: %s not ready", o.Address)
	}
	log.Info().Str("address", o.Address).Msg("connected to lnd")
	return &Conn{cc: cc, opts: o}, nil
}

func waitReady(ctx context.Context, cc *grpc.ClientConn, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	cc.Connect()
	for {
		state := cc.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return errClosed
		}
		if !cc.WaitForStateChange(ctx, state) {
			return ctx.Err()
		}
	}
}

// Target returns the address the connection was dialed with.
func (c *Conn) Target() string { return c.opts.Address }

// Healthy reports an error when the connection is closed or failing.
func (c *Conn) Healthy() error {
	if c.closed.Load() {
		return errClosed
	}
	switch st := c.cc.GetState(); st {
	case connectivity.TransientFailure, connectivity.Shutdown:
		return errors.Errorf("lndconn: connection %s", strings.ToLower(st.String()))
	}
	return nil
}

func (c *Conn) Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) (err error) {
	if c.closed.Load() {
		return errClosed
	}
	if _, ok := ctx.Deadline(); !ok && c.opts.RPCTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.RPCTimeout)
		defer cancel()
	}

	service, name := splitMethod(method)
	call := uuid.NewString()
	start := time.Now()
	eventbus.Publish(ctx, events.GRPCClientStart{CallID: call, Service: service, Method: name, Target: c.opts.Address})
	err = c.cc.Invoke(ctx, method, args, reply, opts...)
	eventbus.Publish(ctx, events.GRPCClientFinish{
		CallID:   call,
		Service:  service,
		Method:   name,
		Target:   c.opts.Address,
		Code:     status.Code(err),
		Err:      err,
		Duration: time.Since(start),
	})
	return err
}

// NewStream opens a stream. Streams live until the caller cancels ctx, so no
// default deadline is applied. Finish is published when the stream ends: on
// the first RecvMsg error or when ctx is done, whichever comes first.
func (c *Conn) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	if c.closed.Load() {
		return nil, errClosed
	}
	service, name := splitMethod(method)
	s := &trackedStream{
		ctx: ctx,
		finish: events.GRPCClientFinish{
			CallID:    uuid.NewString(),
			Service:   service,
			Method:    name,
			Target:    c.opts.Address,
			Streaming: true,
		},
		start: time.Now(),
	}
	eventbus.Publish(ctx, events.GRPCClientStart{
		CallID:    s.finish.CallID,
		Service:   service,
		Method:    name,
		Target:    c.opts.Address,
		Streaming: true,
	})
	cs, err := c.cc.NewStream(ctx, desc, method, opts...)
	if err != nil {
		s.end(err)
		return nil, err
	}
	s.ClientStream = cs
	s.stop = context.AfterFunc(ctx, func() { s.end(ctx.Err()) })
	return s, nil
}

// trackedStream reports the end of a client stream on the event bus.
type trackedStream struct {
	grpc.ClientStream
	ctx    context.Context
	start  time.Time
	finish events.GRPCClientFinish
	stop   func() bool
	once   sync.Once
}

func (s *trackedStream) RecvMsg(m any) error {
	err := s.ClientStream.RecvMsg(m)
	if err != nil {
		s.stop()
		s.end(err)
	}
	return err
}

// end publishes Finish once. io.EOF is a clean end of stream.
func (s *trackedStream) end(err error) {
	s.once.Do(func() {
		e := s.finish
		switch {
		case errors.Is(err, io.EOF):
			e.Code = codes.OK
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			e.Code, e.Err = status.FromContextError(err).Code(), err
		default:
			e.Code, e.Err = status.Code(err), err
		}
		e.Duration = time.Since(s.start)
		eventbus.Publish(s.ctx, e)
	})
}

func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.cc.Close()
}

// splitMethod turns "/lnrpc.Lightning/GetInfo" into its service and method.
func splitMethod(full string) (string, string) {
	full = strings.TrimPrefix(full, "/")
	if i := strings.LastIndex(full, "/"); i >= 0 {
		return full[:i], full[i+1:]
	}
	return "", full
}
