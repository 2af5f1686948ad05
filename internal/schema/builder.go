package schema

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"

	language "github.com/hanpama/lngraph/internal/language"
)

// BuildFromSDL loads and validates SDL and returns the executable schema.
//
// Query root fields are marked async so that the executor batches them into a
// single runtime call per depth. Every other field, including mutation and
// subscription roots, resolves synchronously; mutations therefore run in
// document order.
func BuildFromSDL(sdl string) (*Schema, error) {
	doc, err := language.LoadSchema("schema.graphql", sdl)
	if err != nil {
		return nil, errors.Wrap(err, "load schema")
	}
	if doc.Query == nil {
		return nil, errors.New("schema has no query type")
	}
	return buildFromAST(doc), nil
}

func buildFromAST(doc *ast.Schema) *Schema {
	s := NewSchema(doc.Description)
	s.ast = doc
	if doc.Query != nil {
		s.SetQueryType(doc.Query.Name)
	}
	if doc.Mutation != nil {
		s.SetMutationType(doc.Mutation.Name)
	}
	if doc.Subscription != nil {
		s.SetSubscriptionType(doc.Subscription.Name)
	}

	// built-in scalars and the __ types come along from the prelude
	for name, def := range doc.Types {
		switch def.Kind {
		case ast.Object:
			s.AddType(buildObject(def, name == s.QueryType))
		case ast.Interface:
			s.AddType(buildObject(def, false))
		case ast.Union:
			t := NewType(def.Name, TypeKindUnion, def.Description)
			for _, name := range def.Types {
				t.AddPossibleType(name)
			}
			s.AddType(t)
		case ast.Enum:
			t := NewType(def.Name, TypeKindEnum, def.Description)
			for _, v := range def.EnumValues {
				ev := NewEnumValue(v.Name, v.Description)
				if reason, ok := deprecation(v.Directives); ok {
					ev.Deprecate(reason)
				}
				t.AddEnumValue(ev)
			}
			s.AddType(t)
		case ast.InputObject:
			t := NewType(def.Name, TypeKindInputObject, def.Description).
				SetOneOf(def.Directives.ForName("oneOf") != nil)
			for _, f := range def.Fields {
				t.AddInputField(buildInputValue(f.Name, f.Description, f.Type, f.DefaultValue, f.Directives))
			}
			s.AddType(t)
		case ast.Scalar:
			t := NewType(def.Name, TypeKindScalar, def.Description)
			if sb := def.Directives.ForName("specifiedBy"); sb != nil {
				if url := sb.Arguments.ForName("url"); url != nil {
					t.SetSpecifiedByURL(url.Value.Raw)
				}
			}
			s.AddType(t)
		}
	}

	for _, d := range doc.Directives {
		dir := NewDirective(d.Name, d.Description).SetRepeatable(d.IsRepeatable)
		for _, loc := range d.Locations {
			dir.AddLocation(string(loc))
		}
		for _, a := range d.Arguments {
			dir.AddArgument(buildInputValue(a.Name, a.Description, a.Type, a.DefaultValue, a.Directives))
		}
		s.AddDirective(dir)
	}
	return s
}

func buildObject(def *ast.Definition, async bool) *Type {
	kind := TypeKindObject
	if def.Kind == ast.Interface {
		kind = TypeKindInterface
	}
	t := NewType(def.Name, kind, def.Description)
	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	for _, fd := range def.Fields {
		if strings.HasPrefix(fd.Name, "__") {
			continue
		}
		f := NewField(fd.Name, fd.Description, buildTypeRef(fd.Type)).SetAsync(async)
		if reason, ok := deprecation(fd.Directives); ok {
			f.Deprecate(reason)
		}
		for _, a := range fd.Arguments {
			f.AddArgument(buildInputValue(a.Name, a.Description, a.Type, a.DefaultValue, a.Directives))
		}
		t.AddField(f)
	}
	return t
}

func buildInputValue(name, description string, typ *ast.Type, def *ast.Value, directives ast.DirectiveList) *InputValue {
	in := NewInputValue(name, description, buildTypeRef(typ))
	if def != nil {
		if v, err := def.Value(nil); err == nil {
			in.SetDefault(v)
		}
		in.DefaultLiteral = def.String()
	}
	if reason, ok := deprecation(directives); ok {
		in.Deprecate(reason)
	}
	return in
}

func buildTypeRef(t *ast.Type) *TypeRef {
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(buildTypeRef(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		return NonNullType(ref)
	}
	return ref
}

func deprecation(directives ast.DirectiveList) (string, bool) {
	d := directives.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if reason := d.Arguments.ForName("reason"); reason != nil {
		return reason.Value.Raw, true
	}
	return "No longer supported", true
}

// Validate checks a parsed query against the schema. Schemas assembled by
// hand rather than loaded from SDL skip validation.
func (s *Schema) Validate(doc *language.QueryDocument) error {
	if s.ast == nil {
		return nil
	}
	if errs := language.Validate(s.ast, doc); len(errs) > 0 {
		return errs
	}
	return nil
}
