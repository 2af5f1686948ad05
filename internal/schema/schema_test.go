package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/hanpama/lngraph/internal/language"
)

const testSDL = `
"Point in time"
scalar DateTime

enum Kind {
  A
  B @deprecated(reason: "use A")
}

input Filter {
  kind: Kind
  limit: Int = 10
}

type Item {
  id: ID!
  kind: Kind
  at: DateTime
  old: String @deprecated
}

type Query {
  items(filter: Filter): [Item!]
  item(id: ID!): Item
}

type Mutation {
  touch(id: ID!): Item
}

type Subscription {
  changed: Item
}

schema {
  query: Query
  mutation: Mutation
  subscription: Subscription
}
`

func TestBuildFromSDL_RootsAndAsync(t *testing.T) {
	s, err := BuildFromSDL(testSDL)
	require.NoError(t, err)

	require.Equal(t, "Query", s.Query().Name)
	require.Equal(t, "Mutation", s.Mutation().Name)
	require.Equal(t, "Subscription", s.Subscription().Name)

	for _, f := range s.Query().Fields {
		require.True(t, f.Async, f.Name)
	}
	require.False(t, s.Mutation().Field("touch").Async)
	require.False(t, s.Subscription().Field("changed").Async)
	require.False(t, s.Types["Item"].Field("id").Async)
}

func TestBuildFromSDL_Types(t *testing.T) {
	s, err := BuildFromSDL(testSDL)
	require.NoError(t, err)

	kind := s.Types["Kind"]
	require.Equal(t, TypeKindEnum, kind.Kind)
	want := []*EnumValue{
		{Name: "A"},
		{Name: "B", Deprecation: Deprecation{IsDeprecated: true, DeprecationReason: "use A"}},
	}
	if diff := cmp.Diff(want, kind.EnumValues); diff != "" {
		t.Fatalf("enum values mismatch (-want +got):\n%s", diff)
	}

	filter := s.Types["Filter"]
	require.Equal(t, TypeKindInputObject, filter.Kind)
	require.Len(t, filter.InputFields, 2)
	require.Nil(t, filter.InputFields[0].DefaultValue)
	require.Equal(t, int64(10), filter.InputFields[1].DefaultValue)
	require.Equal(t, "10", filter.InputFields[1].DefaultLiteral)
	require.Equal(t, "Int", filter.InputFields[1].Type.String())

	items := s.Query().Field("items")
	require.Equal(t, "[Item!]", items.Type.String())
	require.Equal(t, "Filter", items.Arguments[0].Type.String())

	old := s.Types["Item"].Field("old")
	require.True(t, old.IsDeprecated)
	require.Equal(t, "No longer supported", old.DeprecationReason)

	require.Equal(t, TypeKindScalar, s.Types["DateTime"].Kind)
	require.Equal(t, "Point in time", s.Types["DateTime"].Description)
}

func TestBuildFromSDL_Invalid(t *testing.T) {
	_, err := BuildFromSDL(`type Query { a: Missing }`)
	require.Error(t, err)

	_, err = BuildFromSDL(`type Thing { a: String }`)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	s, err := BuildFromSDL(testSDL)
	require.NoError(t, err)

	doc, err := language.ParseQuery(`{ items { id kind } }`)
	require.NoError(t, err)
	require.NoError(t, s.Validate(doc))

	doc, err = language.ParseQuery(`{ items { nope } }`)
	require.NoError(t, err)
	require.Error(t, s.Validate(doc))

	doc, err = language.ParseQuery(`{ __schema { queryType { name } } }`)
	require.NoError(t, err)
	require.NoError(t, s.Validate(doc))

	hand := NewSchema("")
	require.NoError(t, hand.Validate(doc))
}

func TestRender_RoundTrip(t *testing.T) {
	s, err := BuildFromSDL(testSDL)
	require.NoError(t, err)

	out := Render(s)
	require.Contains(t, out, "enum Kind {")
	require.Contains(t, out, `B @deprecated(reason: "use A")`)
	require.Contains(t, out, "items(filter: Filter): [Item!]")
	require.Contains(t, out, "limit: Int = 10")
	require.NotContains(t, out, "scalar String")

	again, err := BuildFromSDL(out)
	require.NoError(t, err)
	require.Equal(t, len(s.Types), len(again.Types))
}

func TestPrelude(t *testing.T) {
	p := Prelude()
	for _, name := range []string{"String", "Int", "Float", "Boolean", "ID", "__Schema", "__Type", "__TypeKind"} {
		require.Contains(t, p.Types, name)
	}
	require.Contains(t, p.Directives, "skip")
	require.Contains(t, p.Directives, "deprecated")

	fields := p.Types["__Type"].Field("fields")
	require.NotNil(t, fields)
	require.Equal(t, "[__Field!]", fields.Type.String())
	require.Equal(t, false, fields.Arguments[0].DefaultValue)

	hand := NewSchema("").AddType(NewType("Query", TypeKindObject, ""))
	full := hand.WithPrelude()
	require.Contains(t, full.Types, "Boolean")
	require.Same(t, hand.Types["Query"], full.Types["Query"])
	require.NotContains(t, hand.Types, "Boolean")
}

func TestRender_Builtins(t *testing.T) {
	s, err := BuildFromSDL(testSDL)
	require.NoError(t, err)

	require.NotContains(t, Render(s), "__Schema")
	all := RenderAll(s)
	require.Contains(t, all, "type __Schema")
	require.Contains(t, all, "scalar Boolean")

	require.Equal(t, "", Render(NewSchema("")))
}
