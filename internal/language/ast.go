package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Documents and the schema they are checked against.
type (
	QueryDocument       = ast.QueryDocument
	OperationDefinition = ast.OperationDefinition
	Schema              = ast.Schema
)

// Selections.
type (
	SelectionSet   = ast.SelectionSet
	Field          = ast.Field
	FragmentSpread = ast.FragmentSpread
	InlineFragment = ast.InlineFragment
	DirectiveList  = ast.DirectiveList
	Directive      = ast.Directive
	ArgumentList   = ast.ArgumentList
	Value          = ast.Value
	Type           = ast.Type
)

type (
	// Error is a located GraphQL error from parsing or validation.
	Error = gqlerror.Error
	// ErrorList is what validation reports.
	ErrorList = gqlerror.List
)

type Operation = ast.Operation

const (
	Query        = ast.Query
	Mutation     = ast.Mutation
	Subscription = ast.Subscription
)

// ValueKind tells literal kinds apart. Null literals have no constant here;
// they convert to nil.
type ValueKind = ast.ValueKind

const (
	Variable     = ast.Variable
	IntValue     = ast.IntValue
	FloatValue   = ast.FloatValue
	StringValue  = ast.StringValue
	BlockValue   = ast.BlockValue
	BooleanValue = ast.BooleanValue
	EnumValue    = ast.EnumValue
	ListValue    = ast.ListValue
	ObjectValue  = ast.ObjectValue
)
