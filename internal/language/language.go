// Package language wraps gqlparser behind the names the executor and schema
// packages use.
package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses sdl together with the GraphQL prelude and checks it.
// name shows up in error locations.
func LoadSchema(name, sdl string) (*Schema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Validate runs the standard validation rules over doc. A nil list means doc
// is valid.
func Validate(s *Schema, doc *QueryDocument) ErrorList {
	return validator.Validate(s, doc)
}
