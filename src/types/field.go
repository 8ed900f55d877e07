package types

import "github.com/tanema/typhon/src/parse"

type (
	// Field is a named, typed value declared in a package.
	Field struct {
		entity
		name    string
		parent  MemberAccess
		rawType *parse.TypeExpr
		Type    *TypeRef
	}
	// Parameter is a named, typed parameter of a function or of an annotation
	// definition.
	Parameter struct {
		entity
		name    string
		parent  MemberAccess
		rawType *parse.TypeExpr
		Type    *TypeRef
	}
)

// NewField creates an unresolved field. A nil raw type resolves to Any.
func NewField(prog *Program, source parse.LineInfo, name string, rawType *parse.TypeExpr) *Field {
	return &Field{entity: prog.newEntity(source), name: name, rawType: rawType}
}

// NewLibraryField creates a resolved field.
func NewLibraryField(prog *Program, name string, typ *TypeRef) *Field {
	f := &Field{entity: prog.newEntity(parse.LineInfo{}), name: name, Type: typ}
	f.markAsLibrary()
	return f
}

// Name of the field.
func (f *Field) Name() string { return f.name }

// MemberParent is the package the field is declared in.
func (f *Field) MemberParent() MemberAccess { return f.parent }

// Members of a field are the members of its type.
func (f *Field) Members(TemplateMap) []MemberAccess {
	if f.Type == nil {
		return nil
	}
	return f.Type.Members()
}

// RawType is the type expression waiting for resolution.
func (f *Field) RawType() *parse.TypeExpr { return f.rawType }

func (f *Field) String() string {
	return f.name + ": " + f.Type.String()
}

// NewParameter creates an unresolved parameter. A nil raw type resolves to Any.
func NewParameter(prog *Program, source parse.LineInfo, name string, rawType *parse.TypeExpr) *Parameter {
	return &Parameter{entity: prog.newEntity(source), name: name, rawType: rawType}
}

// NewLibraryParameter creates a resolved parameter.
func NewLibraryParameter(prog *Program, name string, typ *TypeRef) *Parameter {
	p := &Parameter{entity: prog.newEntity(parse.LineInfo{}), name: name, Type: typ}
	p.markAsLibrary()
	return p
}

// Name of the parameter.
func (p *Parameter) Name() string { return p.name }

// MemberParent is the function or annotation definition declaring the parameter.
func (p *Parameter) MemberParent() MemberAccess { return p.parent }

// Members of a parameter are the members of its type.
func (p *Parameter) Members(TemplateMap) []MemberAccess {
	if p.Type == nil {
		return nil
	}
	return p.Type.Members()
}

// RawType is the type expression waiting for resolution.
func (p *Parameter) RawType() *parse.TypeExpr { return p.rawType }

func (p *Parameter) String() string {
	return p.name + ": " + p.Type.String()
}
