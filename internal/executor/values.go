package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	language "github.com/hanpama/lngraph/internal/language"
	schema "github.com/hanpama/lngraph/internal/schema"
)

// ScalarParser is implemented by runtimes that parse custom scalar input.
// Without it custom scalar values reach resolvers as they arrived.
type ScalarParser interface {
	ParseLeafValue(ctx context.Context, scalarTypeName string, value any) (any, error)
}

// coercer carries what input coercion needs beyond the value itself.
type coercer struct {
	ctx    context.Context
	schema *schema.Schema
	parser ScalarParser
}

func newCoercer(ctx context.Context, sch *schema.Schema, rt Runtime) coercer {
	c := coercer{ctx: ctx, schema: sch}
	if p, ok := rt.(ScalarParser); ok {
		c.parser = p
	}
	return c
}

// coerceVariableValues applies the operation's variable definitions to the
// request variables. Defaults fill in missing variables; explicit nulls for
// non-null types are rejected.
func coerceVariableValues(c coercer, op *language.OperationDefinition, in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(op.VariableDefinitions))
	for _, def := range op.VariableDefinitions {
		name, t := def.Variable, def.Type
		val, ok := lookupVar(in, name)
		switch {
		case ok:
		case def.DefaultValue != nil:
			val = valueFromASTWithVars(def.DefaultValue, nil)
		case t.NonNull:
			return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, t.String())
		default:
			continue
		}
		if val == nil && t.NonNull {
			return nil, fmt.Errorf("variable $%s of type %s cannot be null", name, t.String())
		}
		cv, err := c.value(val, typeRefFromAST(t))
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s cannot be coerced: %v", name, t.String(), err)
		}
		out[name] = cv
	}
	return out, nil
}

func lookupVar(vars map[string]any, name string) (any, bool) {
	if v, ok := vars[name]; ok {
		return v, true
	}
	v, ok := vars[strings.TrimPrefix(name, "$")]
	return v, ok
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	var ref *schema.TypeRef
	if t.Elem != nil {
		ref = schema.ListType(typeRefFromAST(t.Elem))
	} else {
		ref = schema.NamedType(t.NamedType)
	}
	if t.NonNull {
		ref = schema.NonNullType(ref)
	}
	return ref
}

// arguments coerces the arguments given to a field, filling in defaults.
// Problems are recorded as errors at path.
func (r *request) arguments(def *schema.Field, given language.ArgumentList, path Path) map[string]any {
	out := make(map[string]any, len(def.Arguments))
	for _, arg := range given {
		var in *schema.InputValue
		for _, a := range def.Arguments {
			if a.Name == arg.Name {
				in = a
				break
			}
		}
		if in == nil {
			r.addError(fmt.Sprintf("unknown argument '%s' on field '%s'", arg.Name, def.Name), path)
			continue
		}
		cv, err := r.coerce.value(valueFromASTWithVars(arg.Value, r.vars), in.Type)
		if err != nil {
			r.addError(fmt.Sprintf("argument '%s' cannot be coerced: %v", arg.Name, err), path)
			continue
		}
		out[arg.Name] = cv
	}
	for _, in := range def.Arguments {
		if _, ok := out[in.Name]; ok {
			continue
		}
		switch {
		case in.DefaultValue != nil:
			cv, err := r.coerce.value(in.DefaultValue, in.Type)
			if err != nil {
				r.addError(fmt.Sprintf("argument '%s' default cannot be coerced: %v", in.Name, err), path)
				continue
			}
			out[in.Name] = cv
		case in.Type.IsNonNull():
			r.addError(fmt.Sprintf("argument '%s' of required type was not provided", in.Name), path)
		}
	}
	return out
}

// valueFromASTWithVars converts a literal to a Go value, substituting
// variables at any depth. Ints that overflow int64 fall back to float64.
func valueFromASTWithVars(value *language.Value, vars map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		v, _ := lookupVar(vars, value.Raw)
		return v
	case language.IntValue:
		if i, err := strconv.ParseInt(value.Raw, 10, 64); err == nil {
			return i
		}
		f, _ := strconv.ParseFloat(value.Raw, 64)
		return f
	case language.FloatValue:
		f, _ := strconv.ParseFloat(value.Raw, 64)
		return f
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = valueFromASTWithVars(c.Value, vars)
		}
		return out
	case language.ObjectValue:
		out := make(map[string]any, len(value.Children))
		for _, c := range value.Children {
			out[c.Name] = valueFromASTWithVars(c.Value, vars)
		}
		return out
	}
	return nil
}

// value coerces an input value, from variables or literals, to typ.
func (c coercer) value(v any, typ *schema.TypeRef) (any, error) {
	if typ.IsNonNull() {
		if v == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type")
		}
		typ = typ.OfType
	}
	if v == nil {
		return nil, nil
	}
	if typ.Kind == schema.TypeRefKindList {
		return c.list(v, typ.OfType)
	}

	name := typ.Named
	if coerce, ok := builtinScalars[name]; ok {
		return coerce(v)
	}
	var def *schema.Type
	if c.schema != nil {
		def = c.schema.Types[name]
	}
	switch {
	case def == nil:
		return v, nil
	case def.Kind == schema.TypeKindEnum:
		return enumValue(def, v)
	case def.Kind == schema.TypeKindInputObject:
		return c.inputObject(def, v)
	case def.Kind == schema.TypeKindScalar && c.parser != nil:
		return c.parser.ParseLeafValue(c.ctx, name, v)
	}
	return v, nil
}

// list coerces each item to elem. A single value becomes a list of one.
func (c coercer) list(v any, elem *schema.TypeRef) (any, error) {
	items, ok := v.([]any)
	if !ok {
		item, err := c.value(v, elem)
		if err != nil {
			return nil, err
		}
		return []any{item}, nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		cv, err := c.value(item, elem)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %v", i, err)
		}
		out[i] = cv
	}
	return out, nil
}

func enumValue(def *schema.Type, v any) (any, error) {
	name, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %v (%T) to enum %s", v, v, def.Name)
	}
	if !slices.ContainsFunc(def.EnumValues, func(ev *schema.EnumValue) bool { return ev.Name == name }) {
		return nil, fmt.Errorf("value '%s' does not exist in enum %s", name, def.Name)
	}
	return name, nil
}

func (c coercer) inputObject(def *schema.Type, v any) (any, error) {
	in, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %v (%T) to input object %s", v, v, def.Name)
	}

	unknown := slices.Sorted(maps.Keys(in))
	unknown = slices.DeleteFunc(unknown, func(name string) bool {
		return slices.ContainsFunc(def.InputFields, func(f *schema.InputValue) bool { return f.Name == name })
	})

	out := make(map[string]any, len(def.InputFields))
	for _, f := range def.InputFields {
		fv, present := in[f.Name]
		switch {
		case present:
		case f.DefaultValue != nil:
			fv = f.DefaultValue
		case f.Type.IsNonNull():
			return nil, fmt.Errorf("required field '%s' of %s was not provided", f.Name, def.Name)
		default:
			continue
		}
		cv, err := c.value(fv, f.Type)
		if err != nil {
			return nil, fmt.Errorf("field '%s': %v", f.Name, err)
		}
		out[f.Name] = cv
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown field '%s' on %s", unknown[0], def.Name)
	}
	return out, nil
}

var builtinScalars = map[string]func(any) (any, error){
	"Int":     intValue,
	"Float":   floatValue,
	"String":  stringValue,
	"Boolean": boolValue,
	"ID":      idValue,
}

func cannotCoerce(v any, to string) error {
	return fmt.Errorf("cannot coerce %v (%T) to %s", v, v, to)
}

// intValue accepts the full int64 range; lnd amounts do not fit in 32 bits.
func intValue(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n == math.Trunc(n) && math.Abs(n) <= 1<<53 {
			return int64(n), nil
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
	}
	return nil, cannotCoerce(v, "int")
}

func floatValue(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, nil
		}
	}
	return nil, cannotCoerce(v, "float")
}

func stringValue(v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return nil, cannotCoerce(v, "string")
}

func boolValue(v any) (any, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return nil, cannotCoerce(v, "boolean")
}

// idValue accepts strings and integers and always yields a string.
func idValue(v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	if n, err := intValue(v); err == nil {
		return strconv.FormatInt(n.(int64), 10), nil
	}
	return nil, cannotCoerce(v, "ID")
}
