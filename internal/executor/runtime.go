package executor

import (
	"context"
)

// Runtime is what the Executor needs from the application: field values,
// concrete types for abstract values, and JSON-ready leaves.
//
// objectType is the GraphQL type that owns the field ("Query" for roots),
// source is the parent value (the initial value for roots) and args hold
// already coerced arguments. Implementations must not modify source or args
// and must be safe for concurrent operations.
type Runtime interface {
	// ResolveSync returns the raw value of a field with Async unset. A nil
	// value completes to null.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves every async field found at one depth. It is
	// called once per depth and only with live tasks. results[i] answers
	// tasks[i]; a failed task sets its own Error and leaves the others alone.
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// ResolveType names the object type of a value of an interface or union.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// ResolveUnionConcreteValue unwraps a union value once its type is known.
	ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, value any) (any, error)

	// ResolveInterfaceConcreteValue unwraps an interface value once its type
	// is known.
	ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, value any) (any, error)

	// SerializeLeafValue turns a scalar or enum into something encoding/json
	// can write: enums as their name, Int as int64, bytes as base64 and so on.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

// AsyncResolveTask is one queued async field.
type AsyncResolveTask struct {
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
}

// AsyncResolveResult is the outcome of one AsyncResolveTask.
type AsyncResolveResult struct {
	Value any
	Error error
}
