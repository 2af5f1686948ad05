package executor

import (
	"context"
	"errors"
	"sync"
)

// MockResolver resolves one field for MockRuntime.
type MockResolver func(ctx context.Context, source any, args map[string]any) (any, error)

// Call kinds recorded by MockRuntime.
const (
	SyncCall  = "sync"
	AsyncCall = "async"
)

// Returns always returns val.
func Returns(val any) MockResolver {
	return func(context.Context, any, map[string]any) (any, error) { return val, nil }
}

// Fails always fails with err.
func Fails(err error) MockResolver {
	return func(context.Context, any, map[string]any) (any, error) { return nil, err }
}

// Call records one field resolution. Async calls made by the same
// BatchResolveAsync share a BatchID, counted from 1; sync calls have 0.
type Call struct {
	Kind       string
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
	BatchID    int
}

// MockRuntime is a Runtime backed by resolvers keyed "Type.field". Fields
// without a resolver resolve to nil. Leaves are passed through unchanged and
// abstract values name their type in a "__typename" map entry.
type MockRuntime struct {
	// TypeOf overrides ResolveType when set.
	TypeOf func(value any) (string, error)
	// Serialize overrides SerializeLeafValue when set.
	Serialize func(typeName string, value any) (any, error)

	mu        sync.Mutex
	resolvers map[string]MockResolver
	log       []Call
	batch     int
}

func NewMockRuntime(resolvers map[string]MockResolver) *MockRuntime {
	m := &MockRuntime{resolvers: map[string]MockResolver{}}
	for key, r := range resolvers {
		m.resolvers[key] = r
	}
	return m
}

func (m *MockRuntime) SetResolver(objectType, field string, resolver MockResolver) {
	m.mu.Lock()
	m.resolvers[objectType+"."+field] = resolver
	m.mu.Unlock()
}

func (m *MockRuntime) record(ctx context.Context, c Call) (any, error) {
	m.mu.Lock()
	m.log = append(m.log, c)
	resolve, ok := m.resolvers[c.ObjectType+"."+c.Field]
	m.mu.Unlock()
	if !ok || resolve == nil {
		return nil, nil
	}
	return resolve(ctx, c.Source, c.Args)
}

func (m *MockRuntime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	return m.record(ctx, Call{Kind: SyncCall, ObjectType: objectType, Field: field, Source: source, Args: args})
}

// BatchResolveAsync resolves the tasks one field at a time, fields in the
// order they first appear, so recorded calls come out grouped.
func (m *MockRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	if len(tasks) == 0 {
		return nil
	}
	m.mu.Lock()
	m.batch++
	batch := m.batch
	m.mu.Unlock()

	out := make([]AsyncResolveResult, len(tasks))
	done := make([]bool, len(tasks))
	for i := range tasks {
		if done[i] {
			continue
		}
		for j := i; j < len(tasks); j++ {
			t := tasks[j]
			if done[j] || t.ObjectType != tasks[i].ObjectType || t.Field != tasks[i].Field {
				continue
			}
			done[j] = true
			v, err := m.record(ctx, Call{
				Kind:       AsyncCall,
				ObjectType: t.ObjectType,
				Field:      t.Field,
				Source:     t.Source,
				Args:       t.Args,
				BatchID:    batch,
			})
			out[j] = AsyncResolveResult{Value: v, Error: err}
		}
	}
	return out
}

func (m *MockRuntime) ResolveType(_ context.Context, _ string, value any) (string, error) {
	if m.TypeOf != nil {
		return m.TypeOf(value)
	}
	obj, _ := value.(map[string]any)
	if name, ok := obj["__typename"].(string); ok {
		return name, nil
	}
	return "", errors.New("cannot resolve type")
}

func (m *MockRuntime) ResolveUnionConcreteValue(_ context.Context, _ string, value any) (any, error) {
	return value, nil
}

func (m *MockRuntime) ResolveInterfaceConcreteValue(_ context.Context, _ string, value any) (any, error) {
	return value, nil
}

func (m *MockRuntime) SerializeLeafValue(_ context.Context, typeName string, value any) (any, error) {
	if m.Serialize == nil {
		return value, nil
	}
	return m.Serialize(typeName, value)
}

// Calls returns a copy of everything recorded so far.
func (m *MockRuntime) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.log...)
}

// Reset forgets recorded calls and restarts batch numbering.
func (m *MockRuntime) Reset() {
	m.mu.Lock()
	m.log, m.batch = nil, 0
	m.mu.Unlock()
}
