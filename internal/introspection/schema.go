package introspection

import (
	"slices"

	schema "github.com/hanpama/lngraph/internal/schema"
)

// extend returns a copy of sch holding the built-in types plus the __schema
// and __type root fields. sch itself is left untouched.
func extend(sch *schema.Schema) *schema.Schema {
	ext := sch.WithPrelude()
	q := ext.Query()
	if q == nil {
		return ext
	}
	root := *q
	root.Fields = append(slices.Clip(q.Fields),
		schema.NewField("__schema", "Access the current type schema of this server.",
			schema.NonNullType(schema.NamedType("__Schema"))),
		schema.NewField("__type", "Request the type information of a single type.",
			schema.NamedType("__Type")).
			AddArgument(schema.NewInputValue("name", "", schema.NonNullType(schema.NamedType("String")))),
	)
	ext.Types[root.Name] = &root
	return ext
}
