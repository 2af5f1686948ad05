package executor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	executor "github.com/hanpama/lngraph/internal/executor"
	language "github.com/hanpama/lngraph/internal/language"
	schema "github.com/hanpama/lngraph/internal/schema"
)

func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	doc, err := language.ParseQuery(q)
	require.NoError(t, err)
	return doc
}

// newSchema returns a schema rooted at query holding types and the built-in
// scalars.
func newSchema(query *schema.Type, types ...*schema.Type) *schema.Schema {
	sch := schema.NewSchema("").SetQueryType(query.Name).AddType(query)
	for _, name := range []string{"String", "Int", "Float", "Boolean", "ID"} {
		sch.AddType(schema.NewType(name, schema.TypeKindScalar, ""))
	}
	for _, t := range types {
		sch.AddType(t)
	}
	return sch
}

func field(name string, typ *schema.TypeRef) *schema.Field {
	return schema.NewField(name, "", typ)
}

func named(name string) *schema.TypeRef { return schema.NamedType(name) }

// prop resolves a field from a map source.
func prop(name string) executor.MockResolver {
	return func(_ context.Context, source any, _ map[string]any) (any, error) {
		return source.(map[string]any)[name], nil
	}
}

type codeError struct{ msg, code string }

func (e codeError) Error() string              { return e.msg }
func (e codeError) Extensions() map[string]any { return map[string]any{"code": e.code} }

func run(t *testing.T, rt executor.Runtime, sch *schema.Schema, query string, vars map[string]any) *executor.ExecutionResult {
	t.Helper()
	return executor.NewExecutor(rt, sch).ExecuteRequest(context.Background(), mustParseQuery(t, query), "", vars, nil)
}

func TestExecute_OperationSelection(t *testing.T) {
	sch := newSchema(objectType("Query", field("alias", named("String")), field("color", named("String"))))
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.alias": executor.Returns("carol"),
		"Query.color": executor.Returns("#3399ff"),
	})

	tests := []struct {
		name      string
		query     string
		operation string
		want      *executor.ExecutionResult
	}{
		{
			name:  "anonymous",
			query: "{ alias }",
			want:  &executor.ExecutionResult{Data: map[string]any{"alias": "carol"}, Errors: []executor.GraphQLError{}},
		},
		{
			name:  "single named without a name",
			query: "query Node { alias }",
			want:  &executor.ExecutionResult{Data: map[string]any{"alias": "carol"}, Errors: []executor.GraphQLError{}},
		},
		{
			name:      "picked by name",
			query:     "query A { alias } query B { color }",
			operation: "B",
			want:      &executor.ExecutionResult{Data: map[string]any{"color": "#3399ff"}, Errors: []executor.GraphQLError{}},
		},
		{
			name:  "ambiguous",
			query: "query A { alias } query B { color }",
			want:  &executor.ExecutionResult{Errors: []executor.GraphQLError{{Message: "operation not found"}}},
		},
		{
			name:      "unknown name",
			query:     "query A { alias }",
			operation: "C",
			want:      &executor.ExecutionResult{Errors: []executor.GraphQLError{{Message: "operation not found"}}},
		},
		{
			name:  "fragments only",
			query: "fragment F on Query { alias }",
			want:  &executor.ExecutionResult{Errors: []executor.GraphQLError{{Message: "operation not found"}}},
		},
		{
			name:  "missing root",
			query: "mutation { alias }",
			want:  &executor.ExecutionResult{Errors: []executor.GraphQLError{{Message: "root type not found for mutation operation"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := executor.NewExecutor(rt, sch).ExecuteRequest(context.Background(), mustParseQuery(t, tt.query), tt.operation, nil, nil)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExecute_VariableErrors(t *testing.T) {
	sch := newSchema(objectType("Query",
		field("channels", named("String")).AddArgument(schema.NewInputValue("limit", "", named("Int"))),
	))
	rt := executor.NewMockRuntime(nil)

	res := run(t, rt, sch, "query($n: Int!) { channels(limit: $n) }", nil)
	require.Equal(t, []executor.GraphQLError{{Message: "variable $n of required type Int! was not provided"}}, res.Errors)
	require.Nil(t, res.Data)

	res = run(t, rt, sch, "query($n: Int!) { channels(limit: $n) }", map[string]any{"n": nil})
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0].Message, "cannot be null")

	res = run(t, rt, sch, "query($n: Int = 5) { channels(limit: $n) }", nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"limit": int64(5)}, rt.Calls()[0].Args)
}

func TestExecute_NonNullPropagation(t *testing.T) {
	sch := newSchema(
		objectType("Query",
			field("node", named("Node")),
			field("info", schema.NonNullType(named("Node"))),
			field("channels", schema.ListType(schema.NonNullType(named("Channel")))),
			field("peers", schema.ListType(named("Channel"))),
		),
		objectType("Node", field("alias", schema.NonNullType(named("String"))), field("color", named("String"))),
		objectType("Channel", field("id", named("ID"))),
	)
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.node":     executor.Returns(map[string]any{"color": "#fff"}),
		"Query.channels": executor.Returns([]any{map[string]any{"id": "1"}, nil}),
		"Query.peers":    executor.Returns([]any{nil, map[string]any{"id": "2"}}),
		"Node.alias":     prop("alias"),
		"Node.color":     prop("color"),
		"Channel.id":     prop("id"),
	})

	got := run(t, rt, sch, "{ node { alias color } info { color } channels { id } peers { id } }", nil)

	want := &executor.ExecutionResult{
		Data: map[string]any{
			"node":     nil,
			"info":     nil,
			"channels": nil,
			"peers":    []any{nil, map[string]any{"id": "2"}},
		},
		Errors: []executor.GraphQLError{
			{Message: "Cannot return null for non-nullable field node.alias", Path: executor.Path{"node", "alias"}},
			{Message: "Cannot return null for non-nullable field info", Path: executor.Path{"info"}},
			{Message: "Cannot return null for non-nullable field channels[1]", Path: executor.Path{"channels", 1}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

// A failed Non-Null async field nulls its top level field and drops the work
// still queued below it.
func TestExecute_AsyncFailurePrunesQueuedWork(t *testing.T) {
	sch := newSchema(
		objectType("Query", asyncField("channel", "Channel"), asyncField("alias", "String")),
		objectType("Channel",
			&schema.Field{Name: "peer", Type: schema.NonNullType(named("Peer")), Async: true},
			asyncField("policy", "Policy"),
		),
		objectType("Peer", field("address", named("String"))),
		objectType("Policy", asyncField("feeRate", "Int")),
	)
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.channel":  executor.Returns(map[string]any{}),
		"Query.alias":    executor.Returns("carol"),
		"Channel.peer":   executor.Fails(codeError{msg: "peer offline", code: "Unavailable"}),
		"Channel.policy": executor.Returns(map[string]any{}),
		"Policy.feeRate": executor.Returns(1),
	})

	got := run(t, rt, sch, "{ channel { peer { address } policy { feeRate } } alias }", nil)

	want := &executor.ExecutionResult{
		Data: map[string]any{"channel": nil, "alias": "carol"},
		Errors: []executor.GraphQLError{{
			Message:    "peer offline",
			Path:       executor.Path{"channel", "peer"},
			Extensions: map[string]any{"code": "Unavailable"},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}

	var fields []string
	for _, c := range rt.Calls() {
		fields = append(fields, fmt.Sprintf("%d %s.%s", c.BatchID, c.ObjectType, c.Field))
	}
	wantFields := []string{"1 Query.channel", "1 Query.alias", "2 Channel.peer", "2 Channel.policy"}
	if diff := cmp.Diff(wantFields, fields); diff != "" {
		t.Fatalf("Runtime calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_Leaves(t *testing.T) {
	sch := newSchema(objectType("Query",
		field("chains", schema.ListType(named("String"))),
		field("uris", schema.ListType(named("String"))),
		field("capacity", named("Int")),
		field("fee", named("Int")),
	))
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.chains":   executor.Returns([]string{"bitcoin", "litecoin"}),
		"Query.uris":     executor.Returns("02ab@10.0.0.1:9735"),
		"Query.capacity": executor.Returns(20000),
		"Query.fee":      executor.Returns("1sat"),
	})
	rt.Serialize = func(typeName string, v any) (any, error) {
		if typeName != "Int" {
			return v, nil
		}
		n, ok := v.(int)
		if !ok {
			return nil, fmt.Errorf("Int cannot represent %T", v)
		}
		return int64(n), nil
	}

	got := run(t, rt, sch, "{ chains uris capacity fee }", nil)

	want := &executor.ExecutionResult{
		Data: map[string]any{
			"chains":   []any{"bitcoin", "litecoin"},
			"uris":     nil,
			"capacity": int64(20000),
			"fee":      nil,
		},
		Errors: []executor.GraphQLError{
			{Message: "Expected list value, got string", Path: executor.Path{"uris"}},
			{Message: "Int cannot represent string", Path: executor.Path{"fee"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_AbstractTypes(t *testing.T) {
	invoice := objectType("Invoice", field("memo", named("String")), field("amount", named("Int"))).AddInterface("Transfer")
	payment := objectType("Payment", field("hash", named("String")), field("amount", named("Int"))).AddInterface("Transfer")
	activity := schema.NewType("Activity", schema.TypeKindUnion, "").AddPossibleType("Invoice").AddPossibleType("Payment")
	transfer := schema.NewType("Transfer", schema.TypeKindInterface, "").
		AddField(field("amount", named("Int"))).
		AddPossibleType("Invoice").
		AddPossibleType("Payment")
	sch := newSchema(
		objectType("Query",
			field("activity", schema.ListType(named("Activity"))),
			field("latest", named("Transfer")),
		),
		invoice, payment, activity, transfer,
	)
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.activity": executor.Returns([]any{
			map[string]any{"__typename": "Invoice", "memo": "coffee", "amount": 100},
			map[string]any{"__typename": "Payment", "hash": "ab", "amount": 50},
		}),
		"Query.latest":   executor.Returns(map[string]any{"__typename": "Refund"}),
		"Invoice.memo":   prop("memo"),
		"Invoice.amount": prop("amount"),
		"Payment.hash":   prop("hash"),
		"Payment.amount": prop("amount"),
	})

	got := run(t, rt, sch, `{
		activity {
			__typename
			... on Invoice { memo }
			... on Payment { hash }
			... on Transfer { amount }
		}
		latest { amount }
	}`, nil)

	want := &executor.ExecutionResult{
		Data: map[string]any{
			"activity": []any{
				map[string]any{"__typename": "Invoice", "memo": "coffee", "amount": 100},
				map[string]any{"__typename": "Payment", "hash": "ab", "amount": 50},
			},
			"latest": nil,
		},
		Errors: []executor.GraphQLError{{
			Message: "Abstract type Transfer must resolve to an Object type at runtime. Got: Refund",
			Path:    executor.Path{"latest"},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_FieldCollection(t *testing.T) {
	sch := newSchema(
		objectType("Query", field("node", named("Node"))),
		objectType("Node", field("alias", named("String")), field("color", named("String")), field("pubKey", named("String"))),
	)
	node := map[string]any{"alias": "carol", "color": "#3399ff", "pubKey": "02ab"}
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.node":  executor.Returns(node),
		"Node.alias":  prop("alias"),
		"Node.color":  prop("color"),
		"Node.pubKey": prop("pubKey"),
	})

	query := `query($withColor: Boolean!) {
		a: node { alias }
		a: node { pubKey }
		node { ...NodeParts color @include(if: $withColor) }
		skipped: node @skip(if: true) { alias }
	}
	fragment NodeParts on Node { alias ...NodeParts }`

	got := run(t, rt, sch, query, map[string]any{"withColor": false})
	want := &executor.ExecutionResult{
		Data: map[string]any{
			"a":    map[string]any{"alias": "carol", "pubKey": "02ab"},
			"node": map[string]any{"alias": "carol"},
		},
		Errors: []executor.GraphQLError{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}

	var order []string
	for _, c := range rt.Calls() {
		order = append(order, c.ObjectType+"."+c.Field)
	}
	wantOrder := []string{"Query.node", "Node.alias", "Node.pubKey", "Query.node", "Node.alias"}
	if diff := cmp.Diff(wantOrder, order); diff != "" {
		t.Fatalf("resolution order mismatch (-want +got):\n%s", diff)
	}

	rt.Reset()
	got = run(t, rt, sch, query, map[string]any{"withColor": true})
	require.Equal(t, map[string]any{"alias": "carol", "color": "#3399ff"}, got.Data.(map[string]any)["node"])
}

func TestExecute_UnknownField(t *testing.T) {
	sch := newSchema(objectType("Query", field("alias", named("String"))))
	got := run(t, executor.NewMockRuntime(nil), sch, "{ alias nope }", nil)

	want := &executor.ExecutionResult{
		Data:   map[string]any{"alias": nil},
		Errors: []executor.GraphQLError{{Message: "Cannot query field 'nope' on type 'Query'", Path: executor.Path{"nope"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_MutationsRunInDocumentOrder(t *testing.T) {
	sch := newSchema(objectType("Query", field("alias", named("String"))),
		objectType("Mutation",
			field("sendPayment", named("String")).AddArgument(schema.NewInputValue("amount", "", schema.NonNullType(named("Int")))),
			field("closeChannel", named("String")),
		),
	)
	sch.SetMutationType("Mutation")

	var log []string
	record := func(name string) executor.MockResolver {
		return func(_ context.Context, _ any, args map[string]any) (any, error) {
			entry := name
			if amt, ok := args["amount"]; ok {
				entry = fmt.Sprintf("%s %d", name, amt)
			}
			log = append(log, entry)
			return entry, nil
		}
	}
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Mutation.sendPayment":  record("sendPayment"),
		"Mutation.closeChannel": record("closeChannel"),
	})

	got := run(t, rt, sch, "mutation { first: sendPayment(amount: 1) second: closeChannel third: sendPayment(amount: 2) }", nil)
	require.Empty(t, got.Errors)
	require.Equal(t, []string{"sendPayment 1", "closeChannel", "sendPayment 2"}, log)
	for _, c := range rt.Calls() {
		require.Equal(t, executor.SyncCall, c.Kind)
	}
}

func TestExecute_ResolverErrorOnNullableField(t *testing.T) {
	sch := newSchema(objectType("Query", field("alias", named("String")), asyncField("color", "String")))
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.alias": executor.Fails(errors.New("rpc failed")),
		"Query.color": executor.Fails(codeError{msg: "deadline", code: "DeadlineExceeded"}),
	})

	got := run(t, rt, sch, "{ alias color }", nil)

	want := &executor.ExecutionResult{
		Data: map[string]any{"alias": nil, "color": nil},
		Errors: []executor.GraphQLError{
			{Message: "rpc failed", Path: executor.Path{"alias"}},
			{Message: "deadline", Path: executor.Path{"color"}, Extensions: map[string]any{"code": "DeadlineExceeded"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestPath_String(t *testing.T) {
	require.Equal(t, "channels[2].peer", executor.Path{"channels", 2, "peer"}.String())
	require.Equal(t, "[0]", executor.Path{0}.String())
	require.Equal(t, "", executor.Path{}.String())
}
