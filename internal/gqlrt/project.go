package gqlrt

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// fieldIndex maps a struct type's JSON names to field indexes.
var fieldIndex sync.Map // reflect.Type -> map[string][]int

// project reads a nested GraphQL field from the value its parent resolved
// to. Structs are read through their json tags and maps by key. A nil
// pointer yields null and a nil slice an empty list.
func project(source any, field string) (any, error) {
	if source == nil {
		return nil, nil
	}
	if m, ok := source.(map[string]any); ok {
		return m[field], nil
	}

	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("gqlrt: cannot read field %q from %T", field, source)
	}

	idx, ok := indexOf(rv.Type())[field]
	if !ok {
		return nil, fmt.Errorf("gqlrt: %s has no field %q", rv.Type(), field)
	}
	fv := rv.FieldByIndex(idx)
	switch fv.Kind() {
	case reflect.Slice:
		// repeated fields the node left empty
		if fv.IsNil() {
			return []any{}, nil
		}
	case reflect.Pointer, reflect.Map, reflect.Interface:
		if fv.IsNil() {
			return nil, nil
		}
	}
	return fv.Interface(), nil
}

func indexOf(t reflect.Type) map[string][]int {
	if cached, ok := fieldIndex.Load(t); ok {
		return cached.(map[string][]int)
	}
	out := make(map[string][]int)
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		out[name] = f.Index
	}
	fieldIndex.Store(t, out)
	return out
}
