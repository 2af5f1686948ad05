package schema

import (
	"sync"

	language "github.com/hanpama/lngraph/internal/language"
)

var prelude = sync.OnceValue(func() *Schema {
	doc, err := language.LoadSchema("prelude.graphql", "")
	if err != nil {
		panic("schema: load prelude: " + err.Error())
	}
	return buildFromAST(doc)
})

// Prelude returns the built-in scalars, directives and __ introspection types
// shared by every schema. The result is shared; do not modify it.
func Prelude() *Schema { return prelude() }

// WithPrelude returns a copy of s that also holds every built-in type and
// directive s does not define itself.
func (s *Schema) WithPrelude() *Schema {
	c := s.Clone()
	p := Prelude()
	for name, t := range p.Types {
		if _, ok := c.Types[name]; !ok {
			c.Types[name] = t
		}
	}
	for name, d := range p.Directives {
		if _, ok := c.Directives[name]; !ok {
			c.Directives[name] = d
		}
	}
	return c
}
