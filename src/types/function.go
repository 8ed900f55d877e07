package types

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"

	"github.com/tanema/typhon/src/parse"
)

type (
	// Form is how the body of a function was written.
	Form int
	// Function is a named or anonymous function. Functions declared in the
	// package of a type are instance functions of that type unless they are
	// annotated static, and take part in virtual override chains.
	Function struct {
		entity
		name          string
		parent        MemberAccess
		params        []*Parameter
		rets          []*TypeRef
		rawRets       []*parse.TypeExpr
		templates     []*TemplateType
		templateScope *Package
		form          Form
		body          []string
		bases         []*Function
		overrides     []*Function
		baseSet       *set.Set[uint64]
		overrideSet   *set.Set[uint64]
	}
)

const (
	// FormStub functions have no body, they are declarations only.
	FormStub Form = iota
	// FormExpr functions have a body of a single expression.
	FormExpr
	// FormBlock functions have a body of statements.
	FormBlock
)

func (f Form) String() string {
	switch f {
	case FormStub:
		return "stub"
	case FormExpr:
		return "expr"
	case FormBlock:
		return "block"
	default:
		return "unknown"
	}
}

// NewFunction creates an unresolved function. An empty name is an anonymous
// function.
func NewFunction(prog *Program, source parse.LineInfo, name string) *Function {
	return &Function{
		entity:      prog.newEntity(source),
		name:        name,
		params:      []*Parameter{},
		rets:        []*TypeRef{},
		templates:   []*TemplateType{},
		bases:       []*Function{},
		overrides:   []*Function{},
		baseSet:     set.New[uint64](0),
		overrideSet: set.New[uint64](0),
	}
}

// NewLibraryFunction creates a resolved function.
func NewLibraryFunction(prog *Program, name string, params []*Parameter, rets []*TypeRef) *Function {
	fn := NewFunction(prog, parse.LineInfo{}, name)
	for _, param := range params {
		fn.AddParam(param)
	}
	fn.rets = rets
	fn.markAsLibrary()
	return fn
}

// Name of the function, empty when anonymous.
func (f *Function) Name() string { return f.name }

// IsAnonymous reports if the function has no name.
func (f *Function) IsAnonymous() bool { return f.name == "" }

// MemberParent is the package the function is declared in.
func (f *Function) MemberParent() MemberAccess { return f.parent }

// Members of a function are its template parameters so that lookups from inside
// the function see them before anything declared around it.
func (f *Function) Members(tmap TemplateMap) []MemberAccess {
	return f.TemplateScope().Members(tmap)
}

// Params are the ordered parameters.
func (f *Function) Params() []*Parameter { return f.params }

// AddParam appends a parameter.
func (f *Function) AddParam(param *Parameter) *Parameter {
	param.parent = f
	f.params = append(f.params, param)
	return param
}

// Rets are the ordered return types.
func (f *Function) Rets() []*TypeRef { return f.rets }

// SetRets replaces the return types.
func (f *Function) SetRets(rets []*TypeRef) { f.rets = rets }

// RawRets are the return type expressions waiting for resolution.
func (f *Function) RawRets() []*parse.TypeExpr { return f.rawRets }

// Form of the function body.
func (f *Function) Form() Form { return f.form }

// Body is the opaque source of the function body.
func (f *Function) Body() []string { return f.body }

// SetRawData sets the raw return types and body of the function and marks it
// for resolution. A stub has no body and an expression body has exactly one
// entry, anything else is a bug in the caller and panics.
func (f *Function) SetRawData(rawRets []*parse.TypeExpr, form Form, body []string) {
	switch {
	case form == FormStub && len(body) != 0:
		panic(errors.Errorf("function %s: stub form cannot have a body", f.name))
	case form == FormExpr && len(body) != 1:
		panic(errors.Errorf("function %s: expression form requires exactly one expression, got %d", f.name, len(body)))
	case form != FormStub && form != FormExpr && form != FormBlock:
		panic(errors.Errorf("function %s: unknown form %d", f.name, form))
	}
	f.rawRets = rawRets
	f.form = form
	f.body = body
	f.status = Unresolved
}

// Templates are the function's own template parameters.
func (f *Function) Templates() []*TemplateType { return f.templates }

// AddTemplate appends a template parameter.
func (f *Function) AddTemplate(tt *TemplateType) {
	tt.setMemberParent(f)
	f.templates = append(f.templates, tt)
	f.templateScope = nil
}

// SetTemplates replaces the template parameters.
func (f *Function) SetTemplates(templates []*TemplateType) {
	for _, tt := range templates {
		tt.setMemberParent(f)
	}
	f.templates = templates
	f.templateScope = nil
}

// TemplateScope is the scope holding the function's template parameters. It is
// built once and kept until the templates change.
func (f *Function) TemplateScope() *Package {
	if f.templateScope == nil {
		scope := newPackage(f.prog, f.source, "", f)
		for _, tt := range f.templates {
			scope.types = append(scope.types, tt)
		}
		scope.markAsLibrary()
		f.templateScope = scope
	}
	return f.templateScope
}

// TemplateMap maps each template parameter to its default, or to its bound
// when it has none.
func (f *Function) TemplateMap() TemplateMap {
	tmap := TemplateMap{}
	for _, tt := range f.templates {
		tmap[tt] = tt.Value()
	}
	return tmap
}

// IsStatic reports if the function is not an instance function of a type,
// either because it carries the core static annotation or because it is
// declared outside of a type.
func (f *Function) IsStatic() bool {
	return f.FieldOf() == nil
}

// FieldOf is the type the function is an instance function of, nil for static
// functions and functions outside of a type.
func (f *Function) FieldOf() Type {
	if f.HasAnnotation(f.prog.Core.AnnotStatic) {
		return nil
	}
	for scope := f.parent; scope != nil; scope = scope.MemberParent() {
		if t, ok := scope.(Type); ok {
			return t
		}
	}
	return nil
}

// AsType is the structural type of the function.
func (f *Function) AsType() *FunctionType {
	args := make([]*TypeRef, len(f.params))
	for i, param := range f.params {
		args[i] = param.Type
	}
	targs := make([]*TemplateArg, len(f.templates))
	for i, tt := range f.templates {
		targs[i] = LabeledArg(tt.Name(), NewTypeRef(tt))
	}
	return NewFunctionType(f.prog, f.source, args, f.rets, targs)
}

// Bases are the functions this one overrides, in registration order.
func (f *Function) Bases() []*Function { return f.bases }

// Overrides are the functions overriding this one, in registration order. A
// static function has none.
func (f *Function) Overrides() []*Function {
	if f.IsStatic() {
		return nil
	}
	return f.overrides
}

// RegisterOverride links override as an override of virtual in both
// directions and marks it with the core override annotation. Registering the
// same pair again has no effect.
func RegisterOverride(virtual, override *Function) {
	if virtual.IsStatic() {
		panic(errors.Errorf("function %s is static and cannot be overridden", QualifiedName(virtual)))
	}
	if virtual.overrideSet.Insert(override.id) {
		virtual.overrides = append(virtual.overrides, override)
	}
	if override.baseSet.Insert(virtual.id) {
		override.bases = append(override.bases, virtual)
	}
	if core := override.prog.Core; !override.HasAnnotation(core.AnnotOverride) {
		override.AddAnnotation(NewLibraryAnnotation(override.prog, core.AnnotOverride))
	}
}

// ResolveBase is the oldest base whose declaring type expected can be cast to,
// or the function itself when there is none.
func (f *Function) ResolveBase(expected *TypeRef) *Function {
	for _, base := range f.bases {
		if declaredFor(base, expected) {
			return base
		}
	}
	return f
}

// ResolveOverride is the newest override whose declaring type expected can be
// cast to, or the function itself when there is none.
func (f *Function) ResolveOverride(expected *TypeRef) *Function {
	overrides := f.Overrides()
	for i := len(overrides) - 1; i >= 0; i-- {
		if declaredFor(overrides[i], expected) {
			return overrides[i]
		}
	}
	return f
}

func declaredFor(fn *Function, expected *TypeRef) bool {
	declaring := fn.FieldOf()
	return declaring != nil && CanCastTo(expected, NewTypeRef(declaring))
}

// PrettyPrint renders the signature of the function.
func (f *Function) PrettyPrint() string {
	var b strings.Builder
	for _, annot := range f.annots {
		b.WriteString(annot.String() + " ")
	}
	b.WriteString("function " + f.name)
	if len(f.templates) > 0 {
		tmpls := make([]string, len(f.templates))
		for i, tt := range f.templates {
			tmpls[i] = tt.PrettyPrint()
		}
		b.WriteString("<" + strings.Join(tmpls, ", ") + ">")
	}
	params := make([]string, len(f.params))
	for i, param := range f.params {
		params[i] = param.String()
	}
	fmt.Fprintf(&b, "(%s)", strings.Join(params, ", "))
	switch len(f.rets) {
	case 0:
	case 1:
		b.WriteString(": " + f.rets[0].String())
	default:
		b.WriteString(": (" + fmtRefs(f.rets, ", ") + ")")
	}
	return b.String()
}

func (f *Function) String() string {
	if f.IsAnonymous() {
		return "<anonymous>"
	}
	return QualifiedName(f)
}
