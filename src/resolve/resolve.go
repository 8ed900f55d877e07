// Package resolve turns the raw type expressions attached to a model graph into
// TypeRefs. Every procedure works on a single entity, returns straight away if
// the entity is already resolved and resolves whatever else it needs on demand,
// so the procedures can be called in any order and any number of times.
//
// Failures never stop resolution. They are added to the program's diagnostics
// and the offending type is replaced by Any, so one pass reports every
// independent error.
package resolve

import (
	"github.com/pkg/errors"

	"github.com/tanema/typhon/src/lerrors"
	"github.com/tanema/typhon/src/parse"
	"github.com/tanema/typhon/src/types"
)

// Package resolves the fields, functions, types, annotation definitions and
// subpackages of p, in that order, and then the annotations of p itself.
func Package(p *types.Package) {
	if p.Status() != types.Unresolved {
		return
	}
	p.SetStatus(types.InProgress)
	for _, f := range p.Fields() {
		Field(f)
	}
	for _, fn := range p.Functions() {
		Function(fn)
	}
	for _, t := range p.Types() {
		Type(t)
	}
	for _, def := range p.AnnotationDefinitions() {
		AnnotationDefinition(def)
	}
	for _, sub := range p.Subpackages() {
		Package(sub)
	}
	annotations(p.Annotations(), p)
	p.SetStatus(types.Resolved)
	p.Program().Logger.Debug("resolved package", "package", p.String())
}

// Field resolves the type of f in the scope it is declared in.
func Field(f *types.Field) {
	if f.Status() != types.Unresolved {
		return
	}
	f.SetStatus(types.InProgress)
	f.Type = ReadType(f.Program(), f.RawType(), scopeOf(f.Program(), f.MemberParent()))
	annotations(f.Annotations(), f.MemberParent())
	f.SetStatus(types.Resolved)
	f.Program().Logger.Debug("resolved field", "field", types.QualifiedName(f), "type", f.Type.String())
}

// Function resolves the template parameters, parameters and return types of fn.
// Types are looked up from the function itself so its own template parameters
// shadow everything declared around it.
func Function(fn *types.Function) {
	if fn.Status() != types.Unresolved {
		return
	}
	fn.SetStatus(types.InProgress)
	prog := fn.Program()
	for _, tt := range fn.Templates() {
		Type(tt)
	}
	for _, param := range fn.Params() {
		Parameter(param)
	}
	if raw := fn.RawRets(); raw != nil {
		rets := make([]*types.TypeRef, len(raw))
		for i, expr := range raw {
			rets[i] = ReadType(prog, expr, fn)
		}
		fn.SetRets(rets)
	}
	annotations(fn.Annotations(), fn.MemberParent())
	fn.SetStatus(types.Resolved)
	prog.Logger.Debug("resolved function", "function", fn.String())
}

// Parameter resolves the type of p in the scope of the function or annotation
// definition declaring it.
func Parameter(p *types.Parameter) {
	if p.Status() != types.Unresolved {
		return
	}
	p.SetStatus(types.InProgress)
	scope := scopeOf(p.Program(), p.MemberParent())
	p.Type = ReadType(p.Program(), p.RawType(), scope)
	annotations(p.Annotations(), scope)
	p.SetStatus(types.Resolved)
}

// AnnotationDefinition resolves the parameter types of def.
func AnnotationDefinition(def *types.AnnotationDefinition) {
	if def.Status() != types.Unresolved {
		return
	}
	def.SetStatus(types.InProgress)
	for _, param := range def.Params() {
		Parameter(param)
	}
	annotations(def.Annotations(), def.MemberParent())
	def.SetStatus(types.Resolved)
}

// Annotation binds a to the annotation definition its name refers to, searching
// from lookup outwards through the enclosing scopes like a type name. An
// annotation that cannot be bound is left without a definition.
func Annotation(a *types.Annotation, lookup types.MemberAccess) {
	if a.Status() != types.Unresolved {
		return
	}
	a.SetStatus(types.InProgress)
	prog := a.Program()
	if member, ok := search(prog, a.RawName(), scopeOf(prog, lookup), "annotation", isAnnotationDefinition); ok {
		a.SetDefinition(member.(*types.AnnotationDefinition))
	}
	a.SetStatus(types.Resolved)
}

// Type resolves the parents of t, or the bound and default of a template
// parameter, and then its members. A type counts as resolved as soon as its
// parents are, its members are resolved with its type package.
func Type(t types.Type) {
	typeParents(t)
	pkg := t.TypePackage()
	if pkg.Status() != types.Unresolved {
		return
	}
	Package(pkg)
	LinkOverrides(t)
	annotations(t.Annotations(), t.MemberParent())
	t.Program().Logger.Debug("resolved type", "type", types.QualifiedName(t), "kind", t.Kind().String())
}

// typeParents resolves the parents of t and, on demand, the parents of those
// without touching any members. A type stays in progress only while its own
// ancestors are read, so meeting one again is always an inheritance cycle.
func typeParents(t types.Type) {
	if t.Status() != types.Unresolved {
		return
	}
	t.SetStatus(types.InProgress)
	prog := t.Program()
	switch typ := t.(type) {
	case *types.UserType:
		userTypeParents(typ)
	case *types.TemplateType:
		scope := scopeOf(prog, typ.MemberParent())
		if raw := typ.RawBase(); raw != nil {
			typ.SetBase(ReadType(prog, raw, scope))
		}
		if raw := typ.RawDefault(); raw != nil {
			typ.SetDefault(ReadType(prog, raw, scope))
		}
	}
	for _, tt := range t.Templates() {
		typeParents(tt)
	}
	t.SetStatus(types.Resolved)
}

func userTypeParents(t *types.UserType) {
	prog := t.Program()
	parents := []*types.TypeRef{}
	for _, raw := range t.RawParents() {
		parent := ReadType(prog, raw, t)
		if parent.Type == types.Type(t) || parent.Type.Status() == types.InProgress {
			report(prog, &lerrors.Error{
				Kind: lerrors.CycleErr,
				Err:  errors.Errorf("type %s is its own ancestor through %s", types.QualifiedName(t), parent),
			}, raw.LineInfo)
			parent = prog.Any()
		} else {
			typeParents(parent.Type)
		}
		parents = append(parents, parent)
	}
	if len(parents) == 0 {
		parents = append(parents, prog.Any())
	}
	t.SetParents(parents)
}

func annotations(annots []*types.Annotation, lookup types.MemberAccess) {
	for _, a := range annots {
		Annotation(a, lookup)
	}
}

func scopeOf(prog *types.Program, scope types.MemberAccess) types.MemberAccess {
	if scope == nil {
		return prog.Core
	}
	return scope
}

func isAnnotationDefinition(m types.MemberAccess) bool {
	_, ok := m.(*types.AnnotationDefinition)
	return ok
}

func report(prog *types.Program, err *lerrors.Error, source parse.LineInfo) {
	err.Filename = source.Filename
	err.Line = source.Line
	err.Column = source.Column
	prog.Errors.Add(err)
	prog.Logger.Warn(err.Error(), "kind", err.Kind.String())
}
