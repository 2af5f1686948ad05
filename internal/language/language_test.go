package language

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sdl = `
type Query {
  node(id: ID!): Node
}
type Node {
  id: ID!
}
`

func TestLoadSchemaAndValidate(t *testing.T) {
	s, err := LoadSchema("test.graphql", sdl)
	require.NoError(t, err)
	require.Equal(t, "Query", s.Query.Name)

	doc, err := ParseQuery(`{ node(id: "1") { id } }`)
	require.NoError(t, err)
	require.Empty(t, Validate(s, doc))

	doc, err = ParseQuery(`{ node { id name } }`)
	require.NoError(t, err)
	errs := Validate(s, doc)
	require.Len(t, errs, 2)
	for _, e := range errs {
		require.NotEmpty(t, e.Locations)
	}
}

func TestParseErrors(t *testing.T) {
	_, err := ParseQuery(`{ node(`)
	require.Error(t, err)

	_, err = LoadSchema("bad.graphql", `type Query { x: Missing }`)
	require.ErrorContains(t, err, "bad.graphql")
}
