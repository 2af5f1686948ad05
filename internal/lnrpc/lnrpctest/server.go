// Package lnrpctest runs an in-process fake of the lnd Lightning service for
// tests. Handlers are written against the typed lnrpc structs; the server
// speaks the real wire format through the runtime descriptor.
package lnrpctest

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/hanpama/lngraph/internal/lnrpc"
)

type handler func(stream grpc.ServerStream, md protoreflect.MethodDescriptor, record func(req any)) error

// Call records one request received by the fake node.
type Call struct {
	Method   string
	Request  any
	Metadata metadata.MD
}

// Server is a fake Lightning node. Unregistered methods fail with
// codes.Unimplemented.
type Server struct {
	mu       sync.RWMutex
	handlers map[string]handler
	calls    []Call

	grpc *grpc.Server
}

func New() *Server {
	return &Server{handlers: make(map[string]handler)}
}

// HandleUnary registers fn as the implementation of a unary RPC.
func HandleUnary[Req, Res any](s *Server, method string, fn func(ctx context.Context, req *Req) (*Res, error)) {
	s.register(method, func(stream grpc.ServerStream, md protoreflect.MethodDescriptor, record func(any)) error {
		req, err := recv[Req](stream, md)
		if err != nil {
			return err
		}
		record(req)
		res, err := fn(stream.Context(), req)
		if err != nil {
			return err
		}
		return send(stream, md, res)
	})
}

// HandleStream registers fn as the implementation of a server-streaming or
// bidirectional RPC. The stream ends when fn returns.
func HandleStream[Req, Res any](s *Server, method string, fn func(ctx context.Context, req *Req, send func(*Res) error) error) {
	s.register(method, func(stream grpc.ServerStream, md protoreflect.MethodDescriptor, record func(any)) error {
		req, err := recv[Req](stream, md)
		if err != nil {
			return err
		}
		record(req)
		return fn(stream.Context(), req, func(res *Res) error {
			return send(stream, md, res)
		})
	})
}

func (s *Server) register(method string, h handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// Calls returns the requests received for method, oldest first.
func (s *Server) Calls(method string) []Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Call
	for _, c := range s.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Serve starts serving on lis until the test ends.
func (s *Server) Serve(t testing.TB, lis net.Listener, opts ...grpc.ServerOption) {
	t.Helper()
	opts = append(opts, grpc.UnknownServiceHandler(s.handle))
	s.grpc = grpc.NewServer(opts...)
	go func() {
		_ = s.grpc.Serve(lis)
	}()
	t.Cleanup(s.grpc.Stop)
}

// Dial serves over an in-memory listener and returns a client connection to
// it. Both are torn down when the test ends.
func (s *Server) Dial(t testing.TB) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s.Serve(t, lis)

	cc, err := grpc.NewClient("passthrough:///lnd",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("lnrpctest: dial: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })
	return cc
}

func (s *Server) handle(_ any, stream grpc.ServerStream) error {
	full, ok := grpc.MethodFromServerStream(stream)
	if !ok {
		return status.Error(codes.Internal, "lnrpctest: no method in stream")
	}
	name := full[strings.LastIndex(full, "/")+1:]
	if !strings.HasPrefix(full, "/"+lnrpc.PackageName+"."+lnrpc.ServiceName+"/") {
		return status.Errorf(codes.Unimplemented, "unknown service for %s", full)
	}

	s.mu.RLock()
	h := s.handlers[name]
	s.mu.RUnlock()
	if h == nil {
		return status.Errorf(codes.Unimplemented, "method %s not implemented", name)
	}
	md, err := lnrpc.Method(name)
	if err != nil {
		return status.Error(codes.Unimplemented, err.Error())
	}

	start := time.Now()
	err = h(stream, md, func(req any) {
		inMD, _ := metadata.FromIncomingContext(stream.Context())
		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: name, Request: req, Metadata: inMD})
		s.mu.Unlock()
	})
	log.Debug().
		Str("method", name).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("lnrpctest call")
	return err
}

func recv[T any](stream grpc.ServerStream, md protoreflect.MethodDescriptor) (*T, error) {
	msg := dynamicpb.NewMessage(md.Input())
	if err := stream.RecvMsg(msg); err != nil {
		return nil, err
	}
	out := new(T)
	if err := lnrpc.Decode(msg, out); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return out, nil
}

func send[T any](stream grpc.ServerStream, md protoreflect.MethodDescriptor, v *T) error {
	if v == nil {
		v = new(T)
	}
	msg, err := lnrpc.Encode(md.Output(), v)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	return stream.SendMsg(msg)
}
