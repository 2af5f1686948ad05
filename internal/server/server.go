// Package server exposes an Executor over HTTP and websockets.
//
// POST and GET requests follow the GraphQL over HTTP conventions, with JSON
// arrays accepted as batches. Subscriptions are only served over websocket,
// speaking either graphql-transport-ws or the legacy graphql-ws protocol.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/grpc/metadata"

	eventbus "github.com/hanpama/lngraph/internal/eventbus"
	events "github.com/hanpama/lngraph/internal/events"
	executor "github.com/hanpama/lngraph/internal/executor"
	language "github.com/hanpama/lngraph/internal/language"
	reqid "github.com/hanpama/lngraph/internal/reqid"
	schema "github.com/hanpama/lngraph/internal/schema"
)

// RequestIDHeader carries the request id back to the client and is
// forwarded to lnd as gRPC metadata.
const RequestIDHeader = "X-Request-Id"

const (
	requestIDMetadataKey = "graphql-request-id"
	maxInboundRequestID  = 128
)

// Handler serves one GraphQL endpoint.
type Handler struct {
	exec     *executor.Executor
	schema   *schema.Schema
	opt      Options
	upgrader websocket.Upgrader
}

type Options struct {
	// Timeout bounds requests whose context has no deadline. Zero disables
	// it. Websocket operations are never bounded by it.
	Timeout time.Duration
	// Pretty indents JSON responses.
	Pretty bool
	// MaxBodyBytes limits POST bodies. Zero means unlimited.
	MaxBodyBytes int64
	// AllowedOrigins enables CORS for the listed origins; "*" allows any.
	AllowedOrigins []string
	// MetadataHeaders are copied from the HTTP request into outgoing gRPC
	// metadata, matched case-insensitively.
	MetadataHeaders []string
	// Playground serves GraphiQL to GET requests that accept HTML.
	Playground bool
	// Endpoint is the path GraphiQL talks to.
	Endpoint string
	// KeepAlive is the interval of graphql-ws "ka" messages. Zero disables them.
	KeepAlive time.Duration
	// InitTimeout bounds the wait for connection_init on a new websocket.
	InitTimeout time.Duration
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option         { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                         { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option            { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option          { return func(o *Options) { o.AllowedOrigins = origins } }
func WithMetadataHeaders(names ...string) Option { return func(o *Options) { o.MetadataHeaders = names } }
func WithPlayground(enable bool) Option          { return func(o *Options) { o.Playground = enable } }
func WithEndpoint(path string) Option            { return func(o *Options) { o.Endpoint = path } }
func WithKeepAlive(d time.Duration) Option       { return func(o *Options) { o.KeepAlive = d } }
func WithInitTimeout(d time.Duration) Option     { return func(o *Options) { o.InitTimeout = d } }

// New returns a Handler executing against runtime. Runtimes implementing
// executor.StreamRuntime also serve subscriptions.
func New(runtime executor.Runtime, sch *schema.Schema, opts ...Option) (*Handler, error) {
	if runtime == nil || sch == nil {
		return nil, errors.New("server: runtime and schema are required")
	}
	o := Options{
		Timeout:     10 * time.Second,
		Playground:  true,
		Endpoint:    "/graphql",
		KeepAlive:   15 * time.Second,
		InitTimeout: 10 * time.Second,
	}
	for _, apply := range opts {
		apply(&o)
	}
	h := &Handler{exec: executor.NewExecutor(runtime, sch), schema: sch, opt: o}
	h.upgrader.Subprotocols = []string{protocolTransportWS, protocolGraphQLWS}
	if len(o.AllowedOrigins) > 0 {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || h.originAllowed(origin)
		}
	}
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		h.serveWebSocket(w, r)
		return
	}

	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}
	ctx, rid := h.requestContext(ctx, r)
	w.Header().Set(RequestIDHeader, rid)
	h.setCORSHeaders(w, r)

	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	status := h.serve(ctx, w, r)
	eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
}

// serve answers one plain HTTP request and returns the status it wrote.
func (h *Handler) serve(ctx context.Context, w http.ResponseWriter, r *http.Request) int {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return http.StatusNoContent
	case http.MethodGet:
		if h.opt.Playground && r.URL.Query().Get("query") == "" && acceptsHTML(r.Header.Get("Accept")) {
			h.Playground().ServeHTTP(w, r)
			return http.StatusOK
		}
	case http.MethodPost:
	default:
		return h.fail(w, &requestError{status: http.StatusMethodNotAllowed, msg: "method not allowed"})
	}

	reqs, batch, rerr := h.readRequests(w, r)
	if rerr != nil {
		return h.fail(w, rerr)
	}
	mutable := r.Method == http.MethodPost
	if batch {
		out := make([]any, len(reqs))
		for i, req := range reqs {
			out[i], _ = h.executeHTTP(ctx, req, mutable)
		}
		writeJSON(w, http.StatusOK, out, h.opt.Pretty)
		return http.StatusOK
	}
	res, status := h.executeHTTP(ctx, reqs[0], mutable)
	writeJSON(w, status, res, h.opt.Pretty)
	return status
}

func (h *Handler) fail(w http.ResponseWriter, err *requestError) int {
	writeJSON(w, err.status, failure(&language.Error{Message: err.msg}), h.opt.Pretty)
	return err.status
}

// requestContext attaches the request id and the forwarded gRPC metadata.
// An inbound X-Request-Id of sane length is reused.
func (h *Handler) requestContext(ctx context.Context, r *http.Request) (context.Context, string) {
	var rid string
	if in := strings.TrimSpace(r.Header.Get(RequestIDHeader)); in != "" && len(in) <= maxInboundRequestID {
		rid = in
		ctx = reqid.WithID(ctx, rid)
	} else {
		ctx, rid = reqid.NewContext(ctx)
	}

	md := metadata.Pairs(requestIDMetadataKey, rid)
	for _, name := range h.opt.MetadataHeaders {
		if vals := r.Header.Values(name); len(vals) > 0 {
			md.Append(strings.ToLower(name), vals...)
		}
	}
	return metadata.NewOutgoingContext(ctx, md), rid
}

// prepare parses and validates a request and picks its operation. A non-nil
// response is the error reply for the client.
func (h *Handler) prepare(req Request) (*language.QueryDocument, *language.OperationDefinition, *response) {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		res := failureFrom(err)
		return nil, nil, &res
	}
	if err := h.schema.Validate(doc); err != nil {
		res := failureFrom(err)
		return nil, nil, &res
	}

	op := doc.Operations.ForName(req.OperationName)
	if op == nil && req.OperationName == "" && len(doc.Operations) == 1 {
		op = doc.Operations[0]
	}
	if op == nil {
		res := failure(&language.Error{Message: "operation not found"})
		return nil, nil, &res
	}
	return doc, op, nil
}

// executeHTTP runs a query or mutation. Validation problems are reported
// with status 200, like execution errors.
func (h *Handler) executeHTTP(ctx context.Context, req Request, mutable bool) (any, int) {
	doc, op, bad := h.prepare(req)
	if bad != nil {
		return *bad, http.StatusOK
	}
	if op.Operation == language.Subscription {
		return failure(&language.Error{Message: "subscriptions are served over websocket"}), http.StatusBadRequest
	}
	if op.Operation == language.Mutation && !mutable {
		return failure(&language.Error{Message: "mutations require POST"}), http.StatusMethodNotAllowed
	}
	return h.execute(ctx, req, doc, op), http.StatusOK
}

func (h *Handler) execute(ctx context.Context, req Request, doc *language.QueryDocument, op *language.OperationDefinition) *executor.ExecutionResult {
	ctx, opID := reqid.WithOperation(ctx)
	started := startEvent(opID, req, op)
	eventbus.Publish(ctx, started)
	start := time.Now()
	result := h.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables, nil)
	eventbus.Publish(ctx, finishEvent(started, resultErrors(result), time.Since(start)))
	return result
}

func startEvent(opID string, req Request, op *language.OperationDefinition) events.GraphQLStart {
	return events.GraphQLStart{
		OperationID:   opID,
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: string(op.Operation),
	}
}

func finishEvent(s events.GraphQLStart, errs []error, d time.Duration) events.GraphQLFinish {
	return events.GraphQLFinish{
		OperationID:   s.OperationID,
		Query:         s.Query,
		OperationName: s.OperationName,
		OperationType: s.OperationType,
		Errors:        errs,
		Duration:      d,
	}
}

func resultErrors(result *executor.ExecutionResult) []error {
	if len(result.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(result.Errors))
	for i, e := range result.Errors {
		errs[i] = e
	}
	return errs
}
