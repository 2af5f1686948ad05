package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	eventbus "github.com/hanpama/lngraph/internal/eventbus"
	language "github.com/hanpama/lngraph/internal/language"
	reqid "github.com/hanpama/lngraph/internal/reqid"
)

// Websocket subprotocols. graphql-transport-ws is the graphql-ws library's
// protocol; graphql-ws is the older subscriptions-transport-ws one.
const (
	protocolTransportWS = "graphql-transport-ws"
	protocolGraphQLWS   = "graphql-ws"
)

// Message types of both protocols.
const (
	msgConnectionInit      = "connection_init"
	msgConnectionAck       = "connection_ack"
	msgConnectionError     = "connection_error"
	msgConnectionTerminate = "connection_terminate"
	msgKeepAlive           = "ka"
	msgPing                = "ping"
	msgPong                = "pong"
	msgSubscribe           = "subscribe"
	msgNext                = "next"
	msgStart               = "start"
	msgData                = "data"
	msgStop                = "stop"
	msgError               = "error"
	msgComplete            = "complete"
)

// Close codes of graphql-transport-ws.
const (
	closeBadRequest         = 4400
	closeUnauthorized       = 4401
	closeInitTimeout        = 4408
	closeSubscriberExists   = 4409
	closeTooManyInitRequest = 4429
)

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// wsProtocol names the per-protocol message types.
type wsProtocol struct {
	name      string
	subscribe string
	next      string
	stop      string
	// legacy graphql-ws errors carry one error object, not a list
	singleError bool
}

var (
	transportWS = wsProtocol{name: protocolTransportWS, subscribe: msgSubscribe, next: msgNext, stop: msgComplete}
	legacyWS    = wsProtocol{name: protocolGraphQLWS, subscribe: msgStart, next: msgData, stop: msgStop, singleError: true}
)

type wsOp struct {
	cancel context.CancelFunc
}

type wsConn struct {
	h     *Handler
	conn  *websocket.Conn
	proto wsProtocol
	ctx   context.Context

	writeMu sync.Mutex

	mu          sync.Mutex
	initialized bool
	ops         map[string]*wsOp
	wg          sync.WaitGroup
}

func (h *Handler) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	proto := transportWS
	if conn.Subprotocol() == protocolGraphQLWS {
		proto = legacyWS
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx, rid := h.requestContext(ctx, r)

	c := &wsConn{h: h, conn: conn, proto: proto, ctx: ctx, ops: make(map[string]*wsOp)}
	log.Debug().Str("request_id", rid).Str("protocol", proto.name).Msg("websocket connected")
	c.run()
	cancel()
	c.wg.Wait()
	_ = conn.Close()
	log.Debug().Str("request_id", rid).Msg("websocket closed")
}

func (c *wsConn) run() {
	initTimer := time.AfterFunc(c.h.opt.InitTimeout, func() {
		c.mu.Lock()
		done := c.initialized
		c.mu.Unlock()
		if !done {
			c.close(closeInitTimeout, "Connection initialisation timeout")
		}
	})
	defer initTimer.Stop()

	for {
		var msg wsMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				c.close(closeBadRequest, "Invalid message received")
			} else if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("websocket read")
			}
			return
		}
		if !c.handle(msg) {
			return
		}
	}
}

// handle processes one client message and reports whether to keep reading.
func (c *wsConn) handle(msg wsMessage) bool {
	switch msg.Type {
	case msgConnectionInit:
		c.mu.Lock()
		again := c.initialized
		c.initialized = true
		c.mu.Unlock()
		if again {
			if c.proto.name == protocolTransportWS {
				c.close(closeTooManyInitRequest, "Too many initialisation requests")
				return false
			}
			return true
		}
		c.write(wsMessage{Type: msgConnectionAck})
		if c.proto.name == protocolGraphQLWS && c.h.opt.KeepAlive > 0 {
			c.write(wsMessage{Type: msgKeepAlive})
			c.wg.Add(1)
			go c.keepAlive()
		}
		return true

	case msgPing:
		c.write(wsMessage{Type: msgPong, Payload: msg.Payload})
		return true

	case msgPong:
		return true

	case msgConnectionTerminate:
		return false

	case c.proto.subscribe:
		c.mu.Lock()
		ready := c.initialized
		_, dup := c.ops[msg.ID]
		c.mu.Unlock()
		switch {
		case !ready && c.proto.name == protocolTransportWS:
			c.close(closeUnauthorized, "Unauthorized")
			return false
		case msg.ID == "":
			c.close(closeBadRequest, "Invalid message received")
			return false
		case dup && c.proto.name == protocolTransportWS:
			c.close(closeSubscriberExists, "Subscriber for "+msg.ID+" already exists")
			return false
		case dup:
			c.stop(msg.ID)
		}
		var req Request
		if err := decodeJSON(msg.Payload, &req); err != nil || req.Query == "" {
			if c.proto.name == protocolTransportWS {
				c.close(closeBadRequest, "Invalid message received")
				return false
			}
			c.sendErrors(msg.ID, failure(&language.Error{Message: "invalid payload"}).Errors)
			return true
		}
		c.start(msg.ID, req)
		return true

	case c.proto.stop:
		c.stop(msg.ID)
		return true
	}

	if c.proto.name == protocolTransportWS {
		c.close(closeBadRequest, "Invalid message received")
		return false
	}
	c.write(wsMessage{ID: msg.ID, Type: msgConnectionError, Payload: mustJSON(map[string]string{"message": "unknown message type " + msg.Type})})
	return true
}

func (c *wsConn) start(id string, req Request) {
	ctx, cancel := context.WithCancel(c.ctx)
	op := &wsOp{cancel: cancel}
	c.mu.Lock()
	c.ops[id] = op
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.finish(id, op)
		c.operate(ctx, id, req)
	}()
}

// operate runs one operation to its end. Queries and mutations produce a
// single result.
func (c *wsConn) operate(ctx context.Context, id string, req Request) {
	doc, opDef, bad := c.h.prepare(req)
	if bad != nil {
		c.sendErrors(id, bad.Errors)
		return
	}

	if opDef.Operation != language.Subscription {
		res := c.h.execute(ctx, req, doc, opDef)
		if ctx.Err() == nil {
			c.write(wsMessage{ID: id, Type: c.proto.next, Payload: mustJSON(res)})
			c.complete(ctx, id)
		}
		return
	}

	ctx, opID := reqid.WithOperation(ctx)
	started := startEvent(opID, req, opDef)
	eventbus.Publish(ctx, started)
	start := time.Now()
	var errs []error
	defer func() {
		eventbus.Publish(ctx, finishEvent(started, errs, time.Since(start)))
	}()

	results, err := c.h.exec.Subscribe(ctx, doc, req.OperationName, req.Variables)
	if err != nil {
		errs = append(errs, err)
		c.sendErrors(id, failureFrom(err).Errors)
		return
	}
	for res := range results {
		errs = append(errs, resultErrors(res)...)
		c.write(wsMessage{ID: id, Type: c.proto.next, Payload: mustJSON(res)})
	}
	c.complete(ctx, id)
}

// complete tells the client an operation ended, unless the client stopped it.
func (c *wsConn) complete(ctx context.Context, id string) {
	if ctx.Err() != nil {
		return
	}
	c.write(wsMessage{ID: id, Type: msgComplete})
}

func (c *wsConn) sendErrors(id string, errs []responseError) {
	if c.proto.singleError {
		c.write(wsMessage{ID: id, Type: msgError, Payload: mustJSON(errs[0])})
		return
	}
	c.write(wsMessage{ID: id, Type: msgError, Payload: mustJSON(errs)})
}

func (c *wsConn) stop(id string) {
	c.mu.Lock()
	op := c.ops[id]
	delete(c.ops, id)
	c.mu.Unlock()
	if op != nil {
		op.cancel()
	}
}

// finish forgets op unless the id was already reused by a newer operation.
func (c *wsConn) finish(id string, op *wsOp) {
	op.cancel()
	c.mu.Lock()
	if c.ops[id] == op {
		delete(c.ops, id)
	}
	c.mu.Unlock()
}

func (c *wsConn) keepAlive() {
	defer c.wg.Done()
	t := time.NewTicker(c.h.opt.KeepAlive)
	defer t.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-t.C:
			c.write(wsMessage{Type: msgKeepAlive})
		}
	}
}

func (c *wsConn) write(msg wsMessage) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Debug().Err(err).Str("type", msg.Type).Msg("websocket write")
	}
}

func (c *wsConn) close(code int, reason string) {
	log.Warn().Int("code", code).Str("reason", reason).Str("protocol", c.proto.name).Msg("closing websocket")
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
	_ = c.conn.Close()
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(map[string]string{"message": err.Error()})
	}
	return b
}
