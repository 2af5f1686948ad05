package schema

import (
	"strings"

	"github.com/vektah/gqlparser/v2/formatter"
)

// Render prints the SDL s was loaded from, without the built-in definitions.
// Schemas assembled in Go have no SDL and render as "".
func Render(s *Schema) string { return render(s, false) }

// RenderAll is Render including the built-in scalars, directives and
// introspection types.
func RenderAll(s *Schema) string { return render(s, true) }

func render(s *Schema, builtins bool) string {
	if s == nil || s.ast == nil {
		return ""
	}
	opts := []formatter.FormatterOption{formatter.WithIndent("  ")}
	if builtins {
		opts = append(opts, formatter.WithBuiltin())
	}
	var b strings.Builder
	formatter.NewFormatter(&b, opts...).FormatSchema(s.ast)
	return b.String()
}
