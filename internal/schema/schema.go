// Package schema holds the executable model of a GraphQL schema: named types
// with their fields, plus the per-field Async flag that drives batching in
// the executor.
package schema

import "github.com/vektah/gqlparser/v2/ast"

// Schema maps type and directive names to their definitions. Schemas loaded
// from SDL include the built-in scalars and directives.
type Schema struct {
	Description string

	QueryType        string
	MutationType     string
	SubscriptionType string

	Types      map[string]*Type
	Directives map[string]*Directive

	// set by BuildFromSDL and used to validate documents
	ast *ast.Schema
}

// NewSchema returns an empty schema with no root types set.
func NewSchema(description string) *Schema {
	return &Schema{
		Description: description,
		Types:       map[string]*Type{},
		Directives:  map[string]*Directive{},
	}
}

// Query returns the query root type.
func (s *Schema) Query() *Type { return s.Types[s.QueryType] }

// Mutation returns the mutation root type, or nil.
func (s *Schema) Mutation() *Type { return s.root(s.MutationType) }

// Subscription returns the subscription root type, or nil.
func (s *Schema) Subscription() *Type { return s.root(s.SubscriptionType) }

func (s *Schema) root(name string) *Type {
	if name == "" {
		return nil
	}
	return s.Types[name]
}

func (s *Schema) SetQueryType(name string) *Schema        { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema     { s.MutationType = name; return s }
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }

func (s *Schema) AddType(t *Type) *Schema {
	if s.Types == nil {
		s.Types = map[string]*Type{}
	}
	s.Types[t.Name] = t
	return s
}

func (s *Schema) AddDirective(d *Directive) *Schema {
	if s.Directives == nil {
		s.Directives = map[string]*Directive{}
	}
	s.Directives[d.Name] = d
	return s
}

// Clone returns a copy whose type and directive tables can be changed
// without touching s. Documents are still validated against the SDL s was
// built from.
func (s *Schema) Clone() *Schema {
	c := *s
	c.Types = make(map[string]*Type, len(s.Types))
	for name, t := range s.Types {
		c.Types[name] = t
	}
	c.Directives = make(map[string]*Directive, len(s.Directives))
	for name, d := range s.Directives {
		c.Directives[name] = d
	}
	return &c
}
