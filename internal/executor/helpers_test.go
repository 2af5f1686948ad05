package executor

import (
	"testing"

	"github.com/stretchr/testify/require"

	language "github.com/hanpama/lngraph/internal/language"
	schema "github.com/hanpama/lngraph/internal/schema"
)

func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	doc, err := language.ParseQuery(q)
	require.NoError(t, err)
	return doc
}

func object(name string, fields ...*schema.Field) *schema.Type {
	return &schema.Type{Name: name, Kind: schema.TypeKindObject, Fields: fields}
}

func scalars(sch *schema.Schema, names ...string) *schema.Schema {
	for _, name := range names {
		sch.AddType(schema.NewType(name, schema.TypeKindScalar, ""))
	}
	return sch
}
