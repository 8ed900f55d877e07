package types

import (
	"github.com/pkg/errors"

	"github.com/tanema/typhon/src/conf"
	"github.com/tanema/typhon/src/parse"
)

// Package is a named scope holding fields, functions, types, annotation
// definitions and subpackages. Types also own an unnamed package for their
// members and functions own one for their template parameters.
type Package struct {
	entity
	name            string
	parent          MemberAccess
	fields          []*Field
	functions       []*Function
	types           []Type
	annotationDefs  []*AnnotationDefinition
	subpackages     []*Package
	root            bool
	hideSubpackages bool
}

// NewPackage creates an empty unresolved package. It is attached to a scope by
// adding it as a subpackage.
func NewPackage(prog *Program, source parse.LineInfo, name string) *Package {
	return newPackage(prog, source, name, nil)
}

func newPackage(prog *Program, source parse.LineInfo, name string, parent MemberAccess) *Package {
	return &Package{
		entity:         prog.newEntity(source),
		name:           name,
		parent:         parent,
		fields:         []*Field{},
		functions:      []*Function{},
		types:          []Type{},
		annotationDefs: []*AnnotationDefinition{},
		subpackages:    []*Package{},
	}
}

// Name of the package, empty for the scope of a type or function.
func (p *Package) Name() string { return p.name }

// MemberParent is the enclosing scope.
func (p *Package) MemberParent() MemberAccess { return p.parent }

// SetParent moves the package under another scope. The root package cannot be
// moved.
func (p *Package) SetParent(parent MemberAccess) {
	if p.root {
		panic(errors.Errorf("cannot set the parent of root package %s", p.name))
	}
	p.parent = parent
}

// Fields declared in the package.
func (p *Package) Fields() []*Field { return p.fields }

// Functions declared in the package.
func (p *Package) Functions() []*Function { return p.functions }

// Types declared in the package.
func (p *Package) Types() []Type { return p.types }

// AnnotationDefinitions declared in the package.
func (p *Package) AnnotationDefinitions() []*AnnotationDefinition { return p.annotationDefs }

// Subpackages nested in the package.
func (p *Package) Subpackages() []*Package { return p.subpackages }

// Subpackage returns the nested package named name or nil.
func (p *Package) Subpackage(name string) *Package {
	for _, sub := range p.subpackages {
		if sub.name == name {
			return sub
		}
	}
	return nil
}

// AddField declares a field in the package.
func (p *Package) AddField(f *Field) *Field {
	f.parent = p
	p.fields = append(p.fields, f)
	return f
}

// AddFunction declares a function in the package.
func (p *Package) AddFunction(fn *Function) *Function {
	fn.parent = p
	p.functions = append(p.functions, fn)
	return fn
}

// AddType declares a type in the package.
func (p *Package) AddType(t Type) Type {
	t.setMemberParent(p)
	p.types = append(p.types, t)
	return t
}

// AddAnnotationDefinition declares an annotation definition in the package.
func (p *Package) AddAnnotationDefinition(def *AnnotationDefinition) *AnnotationDefinition {
	def.parent = p
	p.annotationDefs = append(p.annotationDefs, def)
	return def
}

// AddSubpackage nests sub in the package.
func (p *Package) AddSubpackage(sub *Package) *Package {
	sub.SetParent(p)
	p.subpackages = append(p.subpackages, sub)
	return sub
}

// Members of the package. Subpackages of the root package are not members,
// they are only reachable from inside.
func (p *Package) Members(tmap TemplateMap) []MemberAccess {
	members := make([]MemberAccess, 0, len(p.fields)+len(p.functions)+len(p.types)+len(p.annotationDefs)+len(p.subpackages))
	for _, f := range p.fields {
		members = append(members, f)
	}
	for _, fn := range p.functions {
		members = append(members, fn)
	}
	for _, t := range p.types {
		members = append(members, bindTemplate(t, p, tmap))
	}
	for _, def := range p.annotationDefs {
		members = append(members, def)
	}
	if !p.hideSubpackages {
		for _, sub := range p.subpackages {
			members = append(members, sub)
		}
	}
	return members
}

func (p *Package) String() string {
	if path := PathString(p); path != "" {
		return path + conf.PATHSEP + p.name
	}
	return p.name
}
