// Package introspection answers __schema and __type queries from the
// executable schema, and forwards everything else to the wrapped runtime.
package introspection

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	executor "github.com/hanpama/lngraph/internal/executor"
	schema "github.com/hanpama/lngraph/internal/schema"
)

// IntrospectionWrapper pairs the wrapping runtime with the extended schema it
// must be executed against.
type IntrospectionWrapper struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap adds introspection to base. Execute queries against the returned
// Schema, which carries the __ types.
func Wrap(base executor.Runtime, sch *schema.Schema) *IntrospectionWrapper {
	ext := extend(sch)
	return &IntrospectionWrapper{
		Runtime: &runtime{Runtime: base, schema: ext},
		Schema:  ext,
	}
}

type runtime struct {
	executor.Runtime
	schema *schema.Schema
}

type resolveFunc func(sch *schema.Schema, source any, args map[string]any) any

// metaFields resolves the fields of the introspection object types.
var metaFields = map[string]map[string]resolveFunc{
	"__Schema": {
		"description": func(_ *schema.Schema, src any, _ map[string]any) any {
			return optional(src.(*schema.Schema).Description)
		},
		"types": func(sch *schema.Schema, _ any, _ map[string]any) any {
			out := make([]any, 0, len(sch.Types))
			for _, name := range sortedKeys(sch.Types) {
				out = append(out, &typeView{def: sch.Types[name]})
			}
			return out
		},
		"queryType": func(sch *schema.Schema, _ any, _ map[string]any) any {
			return namedView(sch, sch.QueryType)
		},
		"mutationType": func(sch *schema.Schema, _ any, _ map[string]any) any {
			return namedView(sch, sch.MutationType)
		},
		"subscriptionType": func(sch *schema.Schema, _ any, _ map[string]any) any {
			return namedView(sch, sch.SubscriptionType)
		},
		"directives": func(sch *schema.Schema, _ any, _ map[string]any) any {
			out := make([]any, 0, len(sch.Directives))
			for _, name := range sortedKeys(sch.Directives) {
				out = append(out, sch.Directives[name])
			}
			return out
		},
	},
	"__Type": {
		"kind":           func(sch *schema.Schema, src any, _ map[string]any) any { return src.(*typeView).kind() },
		"name":           func(_ *schema.Schema, src any, _ map[string]any) any { return src.(*typeView).name() },
		"description":    typeAttr(func(t *schema.Type) any { return optional(t.Description) }),
		"specifiedByURL": typeAttr(func(t *schema.Type) any {
			if t.SpecifiedByURL == nil {
				return nil
			}
			return *t.SpecifiedByURL
		}),
		"isOneOf": typeAttr(func(t *schema.Type) any {
			if t.Kind != schema.TypeKindInputObject {
				return nil
			}
			return t.OneOf
		}),
		"fields": typeListAttr(func(sch *schema.Schema, t *schema.Type, withDeprecated bool) []any {
			if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
				return nil
			}
			out := []any{}
			for _, f := range t.Fields {
				if strings.HasPrefix(f.Name, "__") || (f.IsDeprecated && !withDeprecated) {
					continue
				}
				out = append(out, f)
			}
			return out
		}),
		"interfaces": typeListAttr(func(sch *schema.Schema, t *schema.Type, _ bool) []any {
			if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
				return nil
			}
			return namedViews(sch, t.Interfaces)
		}),
		"possibleTypes": typeListAttr(func(sch *schema.Schema, t *schema.Type, _ bool) []any {
			if t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion {
				return nil
			}
			return namedViews(sch, t.PossibleTypes)
		}),
		"enumValues": typeListAttr(func(_ *schema.Schema, t *schema.Type, withDeprecated bool) []any {
			if t.Kind != schema.TypeKindEnum {
				return nil
			}
			out := []any{}
			for _, v := range t.EnumValues {
				if !v.IsDeprecated || withDeprecated {
					out = append(out, v)
				}
			}
			return out
		}),
		"inputFields": typeListAttr(func(_ *schema.Schema, t *schema.Type, withDeprecated bool) []any {
			if t.Kind != schema.TypeKindInputObject {
				return nil
			}
			return inputValues(t.InputFields, withDeprecated)
		}),
		"ofType": func(sch *schema.Schema, src any, _ map[string]any) any {
			v := src.(*typeView)
			if v.ref == nil {
				return nil
			}
			return refView(sch, v.ref.OfType)
		},
	},
	"__Field": {
		"name":        func(_ *schema.Schema, src any, _ map[string]any) any { return src.(*schema.Field).Name },
		"description": func(_ *schema.Schema, src any, _ map[string]any) any { return optional(src.(*schema.Field).Description) },
		"args": func(_ *schema.Schema, src any, args map[string]any) any {
			return inputValues(src.(*schema.Field).Arguments, includeDeprecated(args))
		},
		"type":         func(sch *schema.Schema, src any, _ map[string]any) any { return refView(sch, src.(*schema.Field).Type) },
		"isDeprecated": func(_ *schema.Schema, src any, _ map[string]any) any { return src.(*schema.Field).IsDeprecated },
		"deprecationReason": func(_ *schema.Schema, src any, _ map[string]any) any {
			f := src.(*schema.Field)
			return reason(f.IsDeprecated, f.DeprecationReason)
		},
	},
	"__InputValue": {
		"name":         func(_ *schema.Schema, src any, _ map[string]any) any { return src.(*schema.InputValue).Name },
		"description":  func(_ *schema.Schema, src any, _ map[string]any) any { return optional(src.(*schema.InputValue).Description) },
		"type":         func(sch *schema.Schema, src any, _ map[string]any) any { return refView(sch, src.(*schema.InputValue).Type) },
		"defaultValue": func(_ *schema.Schema, src any, _ map[string]any) any { return defaultValue(src.(*schema.InputValue)) },
		"isDeprecated": func(_ *schema.Schema, src any, _ map[string]any) any { return src.(*schema.InputValue).IsDeprecated },
		"deprecationReason": func(_ *schema.Schema, src any, _ map[string]any) any {
			v := src.(*schema.InputValue)
			return reason(v.IsDeprecated, v.DeprecationReason)
		},
	},
	"__EnumValue": {
		"name":         func(_ *schema.Schema, src any, _ map[string]any) any { return src.(*schema.EnumValue).Name },
		"description":  func(_ *schema.Schema, src any, _ map[string]any) any { return optional(src.(*schema.EnumValue).Description) },
		"isDeprecated": func(_ *schema.Schema, src any, _ map[string]any) any { return src.(*schema.EnumValue).IsDeprecated },
		"deprecationReason": func(_ *schema.Schema, src any, _ map[string]any) any {
			v := src.(*schema.EnumValue)
			return reason(v.IsDeprecated, v.DeprecationReason)
		},
	},
	"__Directive": {
		"name":         func(_ *schema.Schema, src any, _ map[string]any) any { return src.(*schema.Directive).Name },
		"description":  func(_ *schema.Schema, src any, _ map[string]any) any { return optional(src.(*schema.Directive).Description) },
		"isRepeatable": func(_ *schema.Schema, src any, _ map[string]any) any { return src.(*schema.Directive).IsRepeatable },
		"locations": func(_ *schema.Schema, src any, _ map[string]any) any {
			locs := src.(*schema.Directive).Locations
			out := make([]any, len(locs))
			for i, l := range locs {
				out[i] = l
			}
			return out
		},
		"args": func(_ *schema.Schema, src any, args map[string]any) any {
			return inputValues(src.(*schema.Directive).Arguments, includeDeprecated(args))
		},
	},
}

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if objectType == r.schema.QueryType {
		switch field {
		case "__schema":
			return r.schema, nil
		case "__type":
			name, _ := args["name"].(string)
			return namedView(r.schema, name), nil
		}
	}
	if fields, ok := metaFields[objectType]; ok {
		fn, ok := fields[field]
		if !ok {
			return nil, fmt.Errorf("introspection: unknown field %s.%s", objectType, field)
		}
		return fn(r.schema, source, args), nil
	}
	return r.Runtime.ResolveSync(ctx, objectType, field, source, args)
}

// ParseLeafValue forwards custom scalar parsing when the base runtime has it.
func (r *runtime) ParseLeafValue(ctx context.Context, typ string, value any) (any, error) {
	if p, ok := r.Runtime.(executor.ScalarParser); ok {
		return p.ParseLeafValue(ctx, typ, value)
	}
	return value, nil
}

// Subscribe forwards subscription roots to the base runtime.
func (r *runtime) Subscribe(ctx context.Context, objectType, field string, args map[string]any) (executor.SourceStream, error) {
	sr, ok := r.Runtime.(executor.StreamRuntime)
	if !ok {
		return nil, fmt.Errorf("subscriptions are not supported by %T", r.Runtime)
	}
	return sr.Subscribe(ctx, objectType, field, args)
}

// typeView is the source of a __Type: either a named type or a List/Non-Null
// wrapper.
type typeView struct {
	def *schema.Type
	ref *schema.TypeRef // set for wrappers only
}

func (v *typeView) kind() string {
	if v.ref != nil {
		if v.ref.Kind == schema.TypeRefKindList {
			return "LIST"
		}
		return "NON_NULL"
	}
	return string(v.def.Kind)
}

func (v *typeView) name() any {
	if v.ref != nil {
		return nil
	}
	return v.def.Name
}

// namedView returns the __Type for name, or nil when the schema has no such
// type.
func namedView(sch *schema.Schema, name string) any {
	def := sch.Types[name]
	if def == nil {
		return nil
	}
	return &typeView{def: def}
}

func namedViews(sch *schema.Schema, names []string) []any {
	out := []any{}
	for _, name := range names {
		if v := namedView(sch, name); v != nil {
			out = append(out, v)
		}
	}
	return out
}

func refView(sch *schema.Schema, ref *schema.TypeRef) any {
	if ref == nil {
		return nil
	}
	if ref.Kind == schema.TypeRefKindList || ref.Kind == schema.TypeRefKindNonNull {
		return &typeView{ref: ref}
	}
	return namedView(sch, ref.Named)
}

// typeAttr resolves a __Type field that is null for wrapper types.
func typeAttr(fn func(t *schema.Type) any) resolveFunc {
	return func(_ *schema.Schema, src any, _ map[string]any) any {
		v := src.(*typeView)
		if v.def == nil {
			return nil
		}
		return fn(v.def)
	}
}

func typeListAttr(fn func(sch *schema.Schema, t *schema.Type, withDeprecated bool) []any) resolveFunc {
	return func(sch *schema.Schema, src any, args map[string]any) any {
		v := src.(*typeView)
		if v.def == nil {
			return nil
		}
		out := fn(sch, v.def, includeDeprecated(args))
		if out == nil {
			return nil // untyped, so the field completes to null
		}
		return out
	}
}

func inputValues(in []*schema.InputValue, withDeprecated bool) []any {
	out := []any{}
	for _, v := range in {
		if !v.IsDeprecated || withDeprecated {
			out = append(out, v)
		}
	}
	return out
}

func includeDeprecated(args map[string]any) bool {
	b, _ := args["includeDeprecated"].(bool)
	return b
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func reason(deprecated bool, why string) any {
	if !deprecated {
		return nil
	}
	return why
}

// defaultValue renders a default as a GraphQL literal.
func defaultValue(v *schema.InputValue) any {
	if v.DefaultLiteral != "" {
		return v.DefaultLiteral
	}
	if v.DefaultValue == nil {
		return nil
	}
	return literal(v.DefaultValue)
}

func literal(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = literal(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		parts := make([]string, 0, len(v))
		for _, k := range sortedKeys(v) {
			parts = append(parts, k+": "+literal(v[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
