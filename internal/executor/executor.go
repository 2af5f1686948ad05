package executor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	language "github.com/hanpama/lngraph/internal/language"
	schema "github.com/hanpama/lngraph/internal/schema"
)

// Path locates a value in the response. Elements are response names
// (string) and list indices (int).
type Path []PathElement

type PathElement any

// String renders p as it appears in error messages, e.g. "channels[2].peer".
func (p Path) String() string {
	var b strings.Builder
	for _, el := range p {
		switch v := el.(type) {
		case string:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		case int:
			b.WriteString("[" + strconv.Itoa(v) + "]")
		}
	}
	return b.String()
}

func (p Path) with(el PathElement) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, el)
}

// Executor runs operations against an executable schema, resolving fields
// through a Runtime.
type Executor struct {
	runtime Runtime
	schema  *schema.Schema
}

func NewExecutor(runtime Runtime, sch *schema.Schema) *Executor {
	return &Executor{runtime: runtime, schema: sch}
}

// ExecuteRequest executes a query or mutation. Failures that prevent
// execution come back as a result with errors and no data.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	op, err := operation(document, operationName)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}
	req, root, err := e.start(ctx, document, op, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}
	return req.run(root, op.SelectionSet, initialValue)
}

func operation(document *language.QueryDocument, name string) (*language.OperationDefinition, error) {
	if name == "" && len(document.Operations) == 1 {
		return document.Operations[0], nil
	}
	if name != "" {
		if op := document.Operations.ForName(name); op != nil {
			return op, nil
		}
	}
	return nil, errors.New("operation not found")
}

// start coerces the variables of op and looks up its root type.
func (e *Executor) start(ctx context.Context, document *language.QueryDocument, op *language.OperationDefinition, variableValues map[string]any) (*request, *schema.Type, error) {
	c := newCoercer(ctx, e.schema, e.runtime)
	vars, err := coerceVariableValues(c, op, variableValues)
	if err != nil {
		return nil, nil, err
	}
	var root *schema.Type
	switch op.Operation {
	case language.Query:
		root = e.schema.Query()
	case language.Mutation:
		root = e.schema.Mutation()
	case language.Subscription:
		root = e.schema.Subscription()
	default:
		return nil, nil, fmt.Errorf("unsupported operation type: %s", op.Operation)
	}
	if root == nil {
		return nil, nil, fmt.Errorf("root type not found for %s operation", op.Operation)
	}
	return &request{
		ctx:    ctx,
		rt:     e.runtime,
		schema: e.schema,
		doc:    document,
		vars:   vars,
		coerce: c,
		errors: []GraphQLError{},
		pruned: map[string]bool{},
	}, root, nil
}

// request is the state of one execution.
type request struct {
	ctx    context.Context
	rt     Runtime
	schema *schema.Schema
	doc    *language.QueryDocument
	vars   map[string]any
	coerce coercer

	errors []GraphQLError
	queue  []*deferredField
	pruned map[string]bool // keyed by Path.String()
}

// fork returns a fresh request sharing the coerced variables of r.
func (r *request) fork() *request {
	return &request{
		ctx:    r.ctx,
		rt:     r.rt,
		schema: r.schema,
		doc:    r.doc,
		vars:   r.vars,
		coerce: r.coerce,
		errors: []GraphQLError{},
		pruned: map[string]bool{},
	}
}

// deferredField is an async field waiting for the next batch.
type deferredField struct {
	task   AsyncResolveTask
	path   Path
	typ    *schema.TypeRef
	fields []*language.Field
}

// placeholder holds the response slot of a queued async field.
type placeholder struct{}

// run executes the root selection set, then resolves queued async fields one
// depth at a time until none are left.
func (r *request) run(root *schema.Type, sel language.SelectionSet, value any) *ExecutionResult {
	data := r.selectionSet(root, sel, value, nil)
	for len(r.queue) > 0 {
		r.flush(data)
	}
	return &ExecutionResult{Data: data, Errors: r.errors}
}

func (r *request) flush(data map[string]any) {
	batch := make([]*deferredField, 0, len(r.queue))
	for _, d := range r.queue {
		if !r.isPruned(d.path) {
			batch = append(batch, d)
		}
	}
	r.queue = nil
	if len(batch) == 0 {
		return
	}

	tasks := make([]AsyncResolveTask, len(batch))
	for i, d := range batch {
		tasks[i] = d.task
	}
	results := r.rt.BatchResolveAsync(r.ctx, tasks)
	for i, d := range batch {
		res := AsyncResolveResult{Error: errors.New("runtime returned no result")}
		if i < len(results) {
			res = results[i]
		}
		r.finish(data, d, res)
	}
}

// finish completes one async result and writes it into data. A null for a
// non-null field nulls the whole top level field it sits under.
func (r *request) finish(data map[string]any, d *deferredField, res AsyncResolveResult) {
	if r.isPruned(d.path) {
		return
	}
	var v any
	if res.Error != nil {
		r.fieldError(res.Error, d.path)
	} else {
		v = r.complete(d.typ, d.fields, res.Value, d.path)
	}
	if isNullish(v) && d.typ.IsNonNull() {
		top := d.path[:1]
		r.pruned[top.String()] = true
		put(data, top, nil)
		return
	}
	if isNullish(v) {
		v = nil
	}
	put(data, d.path, v)
}

func (r *request) isPruned(p Path) bool {
	if len(r.pruned) == 0 {
		return false
	}
	for i := 1; i <= len(p); i++ {
		if r.pruned[p[:i].String()] {
			return true
		}
	}
	return false
}

// selectionSet executes sel against source. It returns nil when a non-null
// field comes back null below the root.
func (r *request) selectionSet(typ *schema.Type, sel language.SelectionSet, source any, path Path) map[string]any {
	out := make(map[string]any)
	for _, group := range r.collect(typ, sel) {
		fieldPath := path.with(group.name)
		first := group.fields[0]
		if first.Name == "__typename" {
			out[group.name] = typ.Name
			continue
		}
		def := typ.Field(first.Name)
		if def == nil {
			r.addError(fmt.Sprintf("Cannot query field '%s' on type '%s'", first.Name, typ.Name), fieldPath)
			continue
		}

		v := r.field(typ, def, group.fields, source, fieldPath)
		if isNullish(v) {
			if def.Type.IsNonNull() && len(path) > 0 {
				return nil
			}
			v = nil
		}
		out[group.name] = v
	}
	return out
}

// field resolves one field. Async fields are queued and leave a placeholder.
func (r *request) field(parent *schema.Type, def *schema.Field, fields []*language.Field, source any, path Path) any {
	before := len(r.errors)
	args := r.arguments(def, fields[0].Arguments, path)
	if len(r.errors) > before {
		return nil
	}

	if def.Async {
		r.queue = append(r.queue, &deferredField{
			task:   AsyncResolveTask{ObjectType: parent.Name, Field: def.Name, Source: source, Args: args},
			path:   path,
			typ:    def.Type,
			fields: fields,
		})
		return placeholder{}
	}

	v, err := r.rt.ResolveSync(r.ctx, parent.Name, def.Name, source, args)
	if err != nil {
		r.fieldError(err, path)
		v = nil
	}
	return r.complete(def.Type, fields, v, path)
}

func (r *request) complete(typ *schema.TypeRef, fields []*language.Field, v any, path Path) any {
	if typ.IsNonNull() {
		if isNullish(v) {
			if !r.hasError(path) {
				r.addError("Cannot return null for non-nullable field "+path.String(), path)
			}
			return nil
		}
		out := r.complete(typ.OfType, fields, v, path)
		if isNullish(out) {
			return nil
		}
		return out
	}
	if isNullish(v) {
		return nil
	}
	if typ.Kind == schema.TypeRefKindList {
		return r.completeList(typ, fields, v, path)
	}

	def := r.schema.Types[typ.Named]
	if def == nil {
		r.addError("Unknown type: "+typ.Named, path)
		return nil
	}
	switch def.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		out, err := r.rt.SerializeLeafValue(r.ctx, def.Name, v)
		if err != nil {
			r.fieldError(err, path)
			return nil
		}
		return out
	case schema.TypeKindObject:
		return r.completeObject(def, fields, v, path)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return r.completeAbstract(def, fields, v, path)
	}
	r.addError(fmt.Sprintf("Cannot complete value of unexpected type: %s", def.Kind), path)
	return nil
}

func (r *request) completeList(typ *schema.TypeRef, fields []*language.Field, v any, path Path) any {
	items, ok := v.([]any)
	if !ok {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			r.addError(fmt.Sprintf("Expected list value, got %T", v), path)
			return nil
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}

	out := make([]any, len(items))
	for i, item := range items {
		c := r.complete(typ.OfType, fields, item, path.with(i))
		if isNullish(c) {
			if typ.OfType.IsNonNull() {
				return nil
			}
			c = nil
		}
		out[i] = c
	}
	return out
}

func (r *request) completeObject(typ *schema.Type, fields []*language.Field, v any, path Path) any {
	var sel language.SelectionSet
	for _, f := range fields {
		sel = append(sel, f.SelectionSet...)
	}
	if m := r.selectionSet(typ, sel, v, path); m != nil {
		return m
	}
	return nil
}

func (r *request) completeAbstract(abstract *schema.Type, fields []*language.Field, v any, path Path) any {
	name, err := r.rt.ResolveType(r.ctx, abstract.Name, v)
	if err != nil {
		r.fieldError(err, path)
		return nil
	}
	concrete := r.schema.Types[name]
	if concrete == nil || concrete.Kind != schema.TypeKindObject {
		r.addError(fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime. Got: %s", abstract.Name, name), path)
		return nil
	}
	if abstract.Kind == schema.TypeKindUnion {
		v, err = r.rt.ResolveUnionConcreteValue(r.ctx, abstract.Name, v)
	} else {
		v, err = r.rt.ResolveInterfaceConcreteValue(r.ctx, abstract.Name, v)
	}
	if err != nil {
		r.fieldError(err, path)
		return nil
	}
	return r.completeObject(concrete, fields, v, path)
}

func (r *request) addError(message string, path Path) {
	r.errors = append(r.errors, GraphQLError{Message: message, Path: path})
}

// fieldError records a resolver failure along with any extensions it carries.
func (r *request) fieldError(err error, path Path) {
	e := GraphQLError{Message: err.Error(), Path: path}
	var ext ExtendedError
	if errors.As(err, &ext) {
		e.Extensions = ext.Extensions()
	}
	r.errors = append(r.errors, e)
}

func (r *request) hasError(path Path) bool {
	for _, e := range r.errors {
		if reflect.DeepEqual(e.Path, path) {
			return true
		}
	}
	return false
}

// put stores v at path inside data. Slots whose parent was nulled in the
// meantime are dropped.
func put(data map[string]any, path Path, v any) {
	var cur any = data
	for i, el := range path {
		last := i == len(path)-1
		switch el := el.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return
			}
			if last {
				m[el] = v
				return
			}
			cur = m[el]
		case int:
			s, ok := cur.([]any)
			if !ok || el >= len(s) {
				return
			}
			if last {
				s[el] = v
				return
			}
			cur = s[el]
		}
	}
}

// isNullish reports nil and typed nil pointers, maps, slices and the like.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
