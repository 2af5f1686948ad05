// Package resolvers binds every field of the lngraph schema to a call on the
// lnd Lightning service.
//
// Query and mutation fields are unary adapters: they decode the GraphQL
// arguments, build the request, make one call and transform the response.
// Subscription fields are streaming adapters: each subscription opens its own
// stream and pumps its events through a per-session pub/sub topic.
package resolvers

import (
	"context"
	_ "embed"

	"github.com/pkg/errors"
)

//go:embed schema.graphql
var schemaSDL string

// SDL returns the GraphQL schema served over the resolver map.
func SDL() string { return schemaSDL }

var (
	// ErrUnknownUpdate reports a stream event with none of the known
	// branches set.
	ErrUnknownUpdate = errors.New("resolvers: stream update matches no known branch")
	// ErrUnexpectedPayload reports a pub/sub payload of the wrong type.
	ErrUnexpectedPayload = errors.New("resolvers: unexpected subscription payload")
)

// FieldResolver resolves a root field. parent is the root value and args the
// coerced GraphQL arguments.
type FieldResolver func(ctx context.Context, parent any, args map[string]any) (any, error)

// Sequence is the event source of one subscription session.
type Sequence interface {
	// Next blocks for the next payload. It returns false when the sequence
	// has ended or ctx is done.
	Next(ctx context.Context) (any, bool)
	// Close ends the session and releases the remote stream.
	Close() error
}

// SubscriptionResolver opens subscription sessions and maps their payloads
// to GraphQL values.
type SubscriptionResolver interface {
	Subscribe(ctx context.Context, parent any, args map[string]any) (Sequence, error)
	Resolve(ctx context.Context, payload any, args map[string]any) (any, error)
}

// ScalarCodec converts a custom scalar between its Go and GraphQL forms.
type ScalarCodec interface {
	Serialize(v any) (any, error)
	Parse(v any) (any, error)
}

// Map holds the resolvers of every root field plus the custom scalar codecs.
// It is immutable once built.
type Map struct {
	Query        map[string]FieldResolver
	Mutation     map[string]FieldResolver
	Subscription map[string]SubscriptionResolver
	Scalars      map[string]ScalarCodec
}
