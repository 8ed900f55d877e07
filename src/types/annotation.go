package types

import (
	"strings"

	"github.com/tanema/typhon/src/parse"
)

type (
	// AnnotationDefinition is the schema of an annotation: its name and the
	// parameters an instance may give.
	AnnotationDefinition struct {
		entity
		name   string
		parent MemberAccess
		params []*Parameter
	}
	// Annotation is an annotation attached to an entity. Its definition is found
	// by name during resolution.
	Annotation struct {
		entity
		rawName    *parse.TypeExpr
		definition *AnnotationDefinition
	}
)

// NewAnnotationDefinition creates an unresolved annotation definition.
func NewAnnotationDefinition(prog *Program, source parse.LineInfo, name string, params ...*Parameter) *AnnotationDefinition {
	def := &AnnotationDefinition{entity: prog.newEntity(source), name: name, params: []*Parameter{}}
	for _, param := range params {
		def.AddParam(param)
	}
	return def
}

// NewLibraryAnnotationDefinition creates a resolved annotation definition.
func NewLibraryAnnotationDefinition(prog *Program, name string, params ...*Parameter) *AnnotationDefinition {
	def := NewAnnotationDefinition(prog, parse.LineInfo{}, name, params...)
	def.markAsLibrary()
	return def
}

// Name of the annotation.
func (d *AnnotationDefinition) Name() string { return d.name }

// MemberParent is the package the definition is declared in.
func (d *AnnotationDefinition) MemberParent() MemberAccess { return d.parent }

// Members of a definition are its parameters.
func (d *AnnotationDefinition) Members(TemplateMap) []MemberAccess {
	members := make([]MemberAccess, len(d.params))
	for i, param := range d.params {
		members[i] = param
	}
	return members
}

// Params of the definition.
func (d *AnnotationDefinition) Params() []*Parameter { return d.params }

// AddParam appends a parameter.
func (d *AnnotationDefinition) AddParam(param *Parameter) *Parameter {
	param.parent = d
	d.params = append(d.params, param)
	return param
}

// PrettyPrint renders the definition with its parameters.
func (d *AnnotationDefinition) PrettyPrint() string {
	params := make([]string, len(d.params))
	for i, param := range d.params {
		params[i] = param.String()
	}
	return "annotation " + QualifiedName(d) + "(" + strings.Join(params, ", ") + ")"
}

func (d *AnnotationDefinition) String() string { return QualifiedName(d) }

// NewAnnotation creates an annotation waiting for its definition to be looked
// up by the dotted name rawName.
func NewAnnotation(prog *Program, source parse.LineInfo, rawName *parse.TypeExpr) *Annotation {
	return &Annotation{entity: prog.newEntity(source), rawName: rawName}
}

// NewLibraryAnnotation creates an annotation already bound to def.
func NewLibraryAnnotation(prog *Program, def *AnnotationDefinition) *Annotation {
	a := &Annotation{entity: prog.newEntity(parse.LineInfo{}), definition: def}
	a.markAsLibrary()
	return a
}

// RawName is the dotted name waiting for resolution.
func (a *Annotation) RawName() *parse.TypeExpr { return a.rawName }

// Definition the annotation is bound to, nil until resolved or when the name
// could not be found.
func (a *Annotation) Definition() *AnnotationDefinition { return a.definition }

// SetDefinition binds the annotation.
func (a *Annotation) SetDefinition(def *AnnotationDefinition) { a.definition = def }

func (a *Annotation) String() string {
	if a.definition != nil {
		return "@" + a.definition.Name()
	}
	return "@" + a.rawName.String()
}
