package executor

import (
	"slices"

	language "github.com/hanpama/lngraph/internal/language"
	schema "github.com/hanpama/lngraph/internal/schema"
)

// fieldGroup holds every field node answering to one response name.
type fieldGroup struct {
	name   string
	fields []*language.Field
}

// collect flattens sel for typ into response-name groups, in the order the
// names first appear. Fragments whose condition typ does not satisfy are
// skipped, and each named fragment is expanded once.
func (r *request) collect(typ *schema.Type, sel language.SelectionSet) []fieldGroup {
	var groups []fieldGroup
	index := map[string]int{}
	seen := map[string]bool{}

	var walk func(language.SelectionSet)
	walk = func(sel language.SelectionSet) {
		for _, s := range sel {
			switch s := s.(type) {
			case *language.Field:
				if !r.included(s.Directives) {
					continue
				}
				name := s.Alias
				if name == "" {
					name = s.Name
				}
				if i, ok := index[name]; ok {
					groups[i].fields = append(groups[i].fields, s)
					continue
				}
				index[name] = len(groups)
				groups = append(groups, fieldGroup{name: name, fields: []*language.Field{s}})

			case *language.InlineFragment:
				if r.included(s.Directives) && r.satisfies(typ, s.TypeCondition) {
					walk(s.SelectionSet)
				}

			case *language.FragmentSpread:
				if seen[s.Name] || !r.included(s.Directives) {
					continue
				}
				seen[s.Name] = true
				frag := r.doc.Fragments.ForName(s.Name)
				if frag != nil && r.satisfies(typ, frag.TypeCondition) && r.included(frag.Directives) {
					walk(frag.SelectionSet)
				}
			}
		}
	}
	walk(sel)
	return groups
}

// satisfies reports whether typ matches a fragment type condition, directly
// or through an interface or union.
func (r *request) satisfies(typ *schema.Type, cond string) bool {
	if cond == "" || cond == typ.Name {
		return true
	}
	if slices.Contains(typ.Interfaces, cond) {
		return true
	}
	abstract := r.schema.Types[cond]
	return abstract != nil && slices.Contains(abstract.PossibleTypes, typ.Name)
}

// included applies @skip and @include. A missing or non-boolean "if" leaves
// the node in.
func (r *request) included(dirs language.DirectiveList) bool {
	if d := dirs.ForName("skip"); d != nil {
		if v, ok := r.condition(d); ok && v {
			return false
		}
	}
	if d := dirs.ForName("include"); d != nil {
		if v, ok := r.condition(d); ok && !v {
			return false
		}
	}
	return true
}

func (r *request) condition(d *language.Directive) (bool, bool) {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false, false
	}
	v, ok := valueFromASTWithVars(arg.Value, r.vars).(bool)
	return v, ok
}
