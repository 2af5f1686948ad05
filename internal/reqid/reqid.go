// Package reqid carries a per-request identifier through context. The id is
// echoed to clients, forwarded to lnd as metadata and keys trace spans.
package reqid

import (
	"context"

	"github.com/google/uuid"
)

type key struct{}

// NewContext returns a copy of parent carrying a fresh random id.
func NewContext(parent context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(parent, key{}, id), id
}

// WithID stores a caller-chosen id, such as one taken from an inbound header.
func WithID(parent context.Context, id string) context.Context {
	return context.WithValue(parent, key{}, id)
}

// FromContext extracts the request id from ctx.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(key{}).(string)
	return id, ok && id != ""
}

type opKey struct{}

// WithOperation returns a copy of parent carrying a fresh GraphQL operation
// id. Calls to lnd made while executing the operation see it in their ctx.
func WithOperation(parent context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(parent, opKey{}, id), id
}

// OperationFrom extracts the operation id from ctx.
func OperationFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(opKey{}).(string)
	return id, ok
}
