package schema

type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// Type is a named type. Which of the lists are used depends on Kind.
type Type struct {
	Name        string
	Kind        TypeKind
	Description string

	// objects and interfaces
	Fields     []*Field
	Interfaces []string
	// interfaces and unions
	PossibleTypes []string
	// enums
	EnumValues []*EnumValue
	// input objects
	InputFields []*InputValue
	OneOf       bool
	// scalars
	SpecifiedByURL *string
}

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type            { t.Fields = append(t.Fields, f); return t }
func (t *Type) AddInterface(name string) *Type     { t.Interfaces = append(t.Interfaces, name); return t }
func (t *Type) AddPossibleType(name string) *Type  { t.PossibleTypes = append(t.PossibleTypes, name); return t }
func (t *Type) AddEnumValue(v *EnumValue) *Type    { t.EnumValues = append(t.EnumValues, v); return t }
func (t *Type) AddInputField(v *InputValue) *Type  { t.InputFields = append(t.InputFields, v); return t }
func (t *Type) SetOneOf(oneOf bool) *Type          { t.OneOf = oneOf; return t }
func (t *Type) SetSpecifiedByURL(url string) *Type { t.SpecifiedByURL = &url; return t }

// Field returns the named field, or nil.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Field is a field of an object or interface. Async fields are resolved in
// depth-wise batches through Runtime.BatchResolveAsync.
type Field struct {
	Name        string
	Description string
	Type        *TypeRef
	Arguments   []*InputValue
	Async       bool
	Deprecation
}

func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

func (f *Field) SetAsync(async bool) *Field       { f.Async = async; return f }
func (f *Field) AddArgument(a *InputValue) *Field { f.Arguments = append(f.Arguments, a); return f }
func (f *Field) Deprecate(reason string) *Field   { f.deprecate(reason); return f }

// Deprecation is shared by everything @deprecated applies to.
type Deprecation struct {
	IsDeprecated      bool
	DeprecationReason string
}

func (d *Deprecation) deprecate(reason string) {
	d.IsDeprecated = true
	d.DeprecationReason = reason
}

type EnumValue struct {
	Name        string
	Description string
	Deprecation
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (e *EnumValue) Deprecate(reason string) *EnumValue { e.deprecate(reason); return e }

// InputValue is an argument or an input object field.
type InputValue struct {
	Name         string
	Description  string
	Type         *TypeRef
	DefaultValue any
	// DefaultLiteral is DefaultValue as written in the SDL, e.g. "10" or
	// "[OPEN]". Empty for defaults set in Go.
	DefaultLiteral string
	Deprecation
}

func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

func (v *InputValue) SetDefault(value any) *InputValue    { v.DefaultValue = value; return v }
func (v *InputValue) Deprecate(reason string) *InputValue { v.deprecate(reason); return v }

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) SetRepeatable(r bool) *Directive      { d.IsRepeatable = r; return d }
func (d *Directive) AddArgument(a *InputValue) *Directive { d.Arguments = append(d.Arguments, a); return d }
func (d *Directive) AddLocation(loc string) *Directive    { d.Locations = append(d.Locations, loc); return d }
