// Package gqlrt serves a resolver map to the executor.
//
// Query root fields arrive in one batch per request and are resolved
// concurrently. Mutation and subscription roots are resolved one at a time in
// document order. Everything below a root field is projected from the value
// the root resolver returned, so nested fields never reach the node.
package gqlrt

import (
	"context"
	"encoding/base64"
	"fmt"
	"reflect"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hanpama/lngraph/internal/executor"
	"github.com/hanpama/lngraph/internal/resolvers"
	"github.com/hanpama/lngraph/internal/schema"
)

// ErrNoResolver reports a root field with nothing bound to it.
var ErrNoResolver = errors.New("gqlrt: no resolver bound")

// Runtime implements executor.StreamRuntime and executor.ScalarParser over a
// resolvers.Map.
type Runtime struct {
	m      *resolvers.Map
	schema *schema.Schema

	// maximum concurrent root calls per batch; 0 is unlimited
	limit int
}

var (
	_ executor.StreamRuntime = (*Runtime)(nil)
	_ executor.ScalarParser  = (*Runtime)(nil)
)

type Option func(*Runtime)

// WithConcurrency caps the number of root calls in flight for one batch.
func WithConcurrency(n int) Option { return func(r *Runtime) { r.limit = n } }

func New(m *resolvers.Map, sch *schema.Schema, opts ...Option) *Runtime {
	r := &Runtime{m: m, schema: sch}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ResolveSync resolves mutation and subscription roots through the map and
// projects every other field from its source value.
func (r *Runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	switch objectType {
	case r.schema.QueryType:
		return r.resolveRoot(ctx, r.m.Query, objectType, field, source, args)
	case r.schema.MutationType:
		return r.resolveRoot(ctx, r.m.Mutation, objectType, field, source, args)
	case r.schema.SubscriptionType:
		sr := r.m.Subscription[field]
		if sr == nil {
			return nil, errors.Wrapf(ErrNoResolver, "%s.%s", objectType, field)
		}
		v, err := sr.Resolve(ctx, source, args)
		if err != nil {
			return nil, wrapFieldError(err)
		}
		return v, nil
	}
	return project(source, field)
}

// BatchResolveAsync resolves one depth of query root fields concurrently.
// Each task fails on its own; results keep task order.
func (r *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}
	var g errgroup.Group
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}
	for i, task := range tasks {
		g.Go(func() error {
			v, err := r.ResolveSync(ctx, task.ObjectType, task.Field, task.Source, task.Args)
			results[i] = executor.AsyncResolveResult{Value: v, Error: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Runtime) resolveRoot(ctx context.Context, fields map[string]resolvers.FieldResolver, objectType, field string, source any, args map[string]any) (any, error) {
	fn := fields[field]
	if fn == nil {
		return nil, errors.Wrapf(ErrNoResolver, "%s.%s", objectType, field)
	}
	v, err := fn(ctx, source, args)
	if err != nil {
		return nil, wrapFieldError(err)
	}
	return v, nil
}

// Subscribe opens the session behind a subscription root field.
func (r *Runtime) Subscribe(ctx context.Context, objectType string, field string, args map[string]any) (executor.SourceStream, error) {
	sr := r.m.Subscription[field]
	if objectType != r.schema.SubscriptionType || sr == nil {
		return nil, errors.Wrapf(ErrNoResolver, "%s.%s", objectType, field)
	}
	seq, err := sr.Subscribe(ctx, nil, args)
	if err != nil {
		return nil, wrapFieldError(err)
	}
	return seq, nil
}

// The lngraph schema has no interfaces or unions.
func (r *Runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	return "", fmt.Errorf("gqlrt: cannot resolve concrete type of %s for %T", abstractType, value)
}

func (r *Runtime) ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, value any) (any, error) {
	return value, nil
}

func (r *Runtime) ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, value any) (any, error) {
	return value, nil
}

// SerializeLeafValue applies custom scalar codecs and normalizes built-in
// scalars and enums to JSON-safe values.
func (r *Runtime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	if codec, ok := r.m.Scalars[scalarOrEnumTypeName]; ok {
		return codec.Serialize(value)
	}
	rv := reflect.ValueOf(value)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, nil
	}

	switch scalarOrEnumTypeName {
	case "Int":
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return int64(rv.Uint()), nil
		}
	case "Float":
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return rv.Float(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int()), nil
		}
	case "Boolean":
		if rv.Kind() == reflect.Bool {
			return rv.Bool(), nil
		}
	default:
		switch rv.Kind() {
		case reflect.String:
			return rv.String(), nil
		case reflect.Slice:
			if b, ok := rv.Interface().([]byte); ok {
				return base64.StdEncoding.EncodeToString(b), nil
			}
		case reflect.Int, reflect.Int32, reflect.Int64:
			if scalarOrEnumTypeName == "ID" {
				return fmt.Sprint(rv.Int()), nil
			}
		}
	}
	return nil, fmt.Errorf("%s cannot represent %T", scalarOrEnumTypeName, value)
}

// ParseLeafValue parses custom scalar input with the map's codecs.
func (r *Runtime) ParseLeafValue(ctx context.Context, scalarTypeName string, value any) (any, error) {
	if codec, ok := r.m.Scalars[scalarTypeName]; ok {
		return codec.Parse(value)
	}
	return value, nil
}
