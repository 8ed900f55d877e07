package types

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tanema/typhon/src/conf"
	"github.com/tanema/typhon/src/parse"
)

type (
	// Kind discriminates the variants of Type.
	Kind int
	// Type is a node of the type graph. The set of implementations is closed to
	// this package: AnyType, UserType, SystemType, TemplateType, FunctionType and
	// ComboType.
	Type interface {
		MemberAccess
		fmt.Stringer
		ID() uint64
		Kind() Kind
		Program() *Program
		Source() parse.LineInfo
		// Parents are the direct supertypes. They may mention the type's own
		// template parameters, which are substituted by a reference's arguments.
		Parents() []*TypeRef
		Templates() []*TemplateType
		// TypePackage is the scope holding the type's own members.
		TypePackage() *Package
		Annotations() []*Annotation
		AddAnnotation(a *Annotation)
		HasAnnotation(def *AnnotationDefinition) bool
		Status() Status
		SetStatus(s Status)
		setMemberParent(parent MemberAccess)
	}
	baseType struct {
		entity
		self        Type
		name        string
		parent      MemberAccess
		parents     []*TypeRef
		templates   []*TemplateType
		typePackage *Package
	}
	// AnyType is the universal supertype. It has no parents.
	AnyType struct{ baseType }
	// UserType is a nominal type declared by a program or a library.
	UserType struct {
		baseType
		rawParents []*parse.TypeExpr
	}
	// SystemType is a nominal type backed by a primitive of the runtime.
	SystemType struct{ baseType }
	// TemplateType is a generic parameter. Its bound is its only parent.
	TemplateType struct {
		baseType
		base       *TypeRef
		def        *TypeRef
		rawBase    *parse.TypeExpr
		rawDefault *parse.TypeExpr
	}
	// FunctionType is a structural signature. Two function types with the same
	// arguments and returns are the same type.
	FunctionType struct {
		baseType
		ArgTypes     []*TypeRef
		RetTypes     []*TypeRef
		TemplateArgs []*TemplateArg
	}
	// ComboType is a set of types a value must conform to. Written explicitly it
	// accepts anything one of its constituents accepts, computed by CommonType it
	// holds the closest common ancestors of two types.
	ComboType struct {
		baseType
		Types []*TypeRef
	}
)

const (
	// KindAny is the AnyType.
	KindAny Kind = iota
	// KindUser is a UserType.
	KindUser
	// KindSystem is a SystemType.
	KindSystem
	// KindTemplate is a TemplateType.
	KindTemplate
	// KindFunction is a FunctionType.
	KindFunction
	// KindCombo is a ComboType.
	KindCombo
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindUser:
		return "user"
	case KindSystem:
		return "system"
	case KindTemplate:
		return "template"
	case KindFunction:
		return "function"
	case KindCombo:
		return "combo"
	default:
		return "unknown"
	}
}

func (prog *Program) newBaseType(source parse.LineInfo, name string) baseType {
	return baseType{
		entity:    prog.newEntity(source),
		name:      name,
		parents:   []*TypeRef{},
		templates: []*TemplateType{},
	}
}

// NewUserType creates an unresolved user type. Its parents are set from raw
// expressions by SetRawData and resolved later.
func NewUserType(prog *Program, source parse.LineInfo, name string) *UserType {
	t := &UserType{baseType: prog.newBaseType(source, name)}
	t.self = t
	return t
}

// NewLibraryUserType creates a resolved user type with the given parents.
func NewLibraryUserType(prog *Program, name string, parents ...Type) *UserType {
	t := &UserType{baseType: prog.newBaseType(parse.LineInfo{}, name)}
	t.self = t
	for _, parent := range parents {
		t.parents = append(t.parents, NewTypeRef(parent))
	}
	t.markAsLibrary()
	return t
}

// NewSystemType creates a resolved system type with the given parents.
func NewSystemType(prog *Program, name string, parents ...Type) *SystemType {
	t := &SystemType{baseType: prog.newBaseType(parse.LineInfo{}, name)}
	t.self = t
	for _, parent := range parents {
		t.parents = append(t.parents, NewTypeRef(parent))
	}
	t.markAsLibrary()
	return t
}

// NewTemplateType creates an unresolved template parameter. A nil raw bound
// resolves to Any, a nil raw default leaves the parameter without a default.
func NewTemplateType(prog *Program, source parse.LineInfo, name string, rawBase, rawDefault *parse.TypeExpr) *TemplateType {
	t := &TemplateType{
		baseType:   prog.newBaseType(source, name),
		rawBase:    rawBase,
		rawDefault: rawDefault,
	}
	t.self = t
	return t
}

// NewLibraryTemplateType creates a resolved template parameter. A nil bound is Any.
func NewLibraryTemplateType(prog *Program, name string, base, def *TypeRef) *TemplateType {
	t := &TemplateType{baseType: prog.newBaseType(parse.LineInfo{}, name), base: base, def: def}
	t.self = t
	t.markAsLibrary()
	return t
}

// NewFunctionType creates a resolved function type.
func NewFunctionType(prog *Program, source parse.LineInfo, args, rets []*TypeRef, templateArgs []*TemplateArg) *FunctionType {
	t := &FunctionType{
		baseType:     prog.newBaseType(source, ""),
		ArgTypes:     args,
		RetTypes:     rets,
		TemplateArgs: templateArgs,
	}
	t.self = t
	t.markAsLibrary()
	return t
}

// NewComboType creates a resolved combo type over the given references.
func NewComboType(prog *Program, source parse.LineInfo, refs ...*TypeRef) *ComboType {
	t := &ComboType{baseType: prog.newBaseType(source, ""), Types: refs}
	t.self = t
	t.markAsLibrary()
	return t
}

// Name of the type, empty for function and combo types.
func (t *baseType) Name() string { return t.name }

// MemberParent is the scope the type is declared in.
func (t *baseType) MemberParent() MemberAccess { return t.parent }

func (t *baseType) setMemberParent(parent MemberAccess) { t.parent = parent }

// Parents are the direct supertypes.
func (t *baseType) Parents() []*TypeRef { return t.parents }

// SetParents replaces the direct supertypes.
func (t *baseType) SetParents(parents []*TypeRef) { t.parents = parents }

// Templates are the template parameters of the type.
func (t *baseType) Templates() []*TemplateType { return t.templates }

// AddTemplate appends a template parameter. The parameter is scoped to the type.
func (t *baseType) AddTemplate(tt *TemplateType) {
	t.templates = append(t.templates, tt)
	tt.setMemberParent(t.self)
}

// TypePackage is the scope holding the type's own members. Its member parent is
// the type itself so that lookups inside members see the type's templates.
func (t *baseType) TypePackage() *Package {
	if t.typePackage == nil {
		t.typePackage = newPackage(t.prog, t.source, "", t.self)
	}
	return t.typePackage
}

// Members are the type's templates and the members of its type package.
func (t *baseType) Members(tmap TemplateMap) []MemberAccess {
	members := make([]MemberAccess, 0, len(t.templates))
	for _, tt := range t.templates {
		members = append(members, bindTemplate(tt, t.self, tmap))
	}
	return append(members, t.TypePackage().Members(tmap)...)
}

func (t *baseType) String() string { return t.name }

// Kind implements Type.
func (t *AnyType) Kind() Kind { return KindAny }

// Kind implements Type.
func (t *UserType) Kind() Kind { return KindUser }

// RawParents are the parent expressions waiting for resolution.
func (t *UserType) RawParents() []*parse.TypeExpr { return t.rawParents }

// SetRawData sets the raw parent expressions and marks the type for resolution.
func (t *UserType) SetRawData(rawParents []*parse.TypeExpr) {
	t.rawParents = rawParents
	t.status = Unresolved
}

// Kind implements Type.
func (t *SystemType) Kind() Kind { return KindSystem }

// Kind implements Type.
func (t *TemplateType) Kind() Kind { return KindTemplate }

// Parents of a template parameter is only its bound.
func (t *TemplateType) Parents() []*TypeRef { return []*TypeRef{t.Base()} }

// Base is the upper bound of the parameter, Any when none was given.
func (t *TemplateType) Base() *TypeRef {
	if t.base == nil {
		return t.prog.Any()
	}
	return t.base
}

// SetBase sets the upper bound.
func (t *TemplateType) SetBase(base *TypeRef) { t.base = base }

// Default is used when an instantiation omits the argument. May be nil.
func (t *TemplateType) Default() *TypeRef { return t.def }

// SetDefault sets the default argument.
func (t *TemplateType) SetDefault(def *TypeRef) { t.def = def }

// RawBase is the bound expression waiting for resolution.
func (t *TemplateType) RawBase() *parse.TypeExpr { return t.rawBase }

// RawDefault is the default expression waiting for resolution.
func (t *TemplateType) RawDefault() *parse.TypeExpr { return t.rawDefault }

// Value is what the parameter stands for when no argument is given: the
// default if there is one, otherwise the bound.
func (t *TemplateType) Value() *TypeRef {
	if t.def != nil {
		return t.def
	}
	return t.Base()
}

// Kind implements Type.
func (t *FunctionType) Kind() Kind { return KindFunction }

// Parents of a function type is Any.
func (t *FunctionType) Parents() []*TypeRef { return []*TypeRef{t.prog.Any()} }

func (t *FunctionType) String() string {
	targs := ""
	if len(t.TemplateArgs) > 0 {
		targs = "<" + fmtTemplateArgs(t.TemplateArgs) + ">"
	}
	switch len(t.RetTypes) {
	case 0:
		return fmt.Sprintf("function%s(%s)", targs, fmtRefs(t.ArgTypes, ", "))
	case 1:
		return fmt.Sprintf("function%s(%s): %s", targs, fmtRefs(t.ArgTypes, ", "), t.RetTypes[0])
	default:
		return fmt.Sprintf("function%s(%s): (%s)", targs, fmtRefs(t.ArgTypes, ", "), fmtRefs(t.RetTypes, ", "))
	}
}

func (t *FunctionType) substitute(tmap TemplateMap) Type {
	args, argsChanged := substituteAll(t.ArgTypes, tmap)
	rets, retsChanged := substituteAll(t.RetTypes, tmap)
	if !argsChanged && !retsChanged {
		return t
	}
	return NewFunctionType(t.prog, t.source, args, rets, t.TemplateArgs)
}

// Kind implements Type.
func (t *ComboType) Kind() Kind { return KindCombo }

// Parents of a combo type are its constituents: a combo value can be used as
// any of them.
func (t *ComboType) Parents() []*TypeRef { return t.Types }

// Members of a combo type are the members of all of its constituents.
func (t *ComboType) Members(tmap TemplateMap) []MemberAccess {
	members := []MemberAccess{}
	for _, ref := range t.Types {
		members = append(members, ref.Type.Members(mergeTemplateMaps(tmap, ref.templateMap()))...)
	}
	return members
}

// TemplateMap merges the template maps of all constituents.
func (t *ComboType) TemplateMap(tmap TemplateMap) TemplateMap {
	out := TemplateMap{}
	for _, ref := range t.Types {
		for k, v := range mergeTemplateMaps(tmap, ref.templateMap()) {
			out[k] = v
		}
	}
	return out
}

func (t *ComboType) String() string {
	return fmt.Sprintf("{%s}", fmtRefs(t.Types, " & "))
}

func (t *ComboType) substitute(tmap TemplateMap) Type {
	refs, changed := substituteAll(t.Types, tmap)
	if !changed {
		return t
	}
	return NewComboType(t.prog, t.source, refs...)
}

// sameType compares types by identity, except function and combo types which
// compare by structure.
func sameType(a, b Type) bool {
	if a == b {
		return true
	}
	switch ta := a.(type) {
	case *FunctionType:
		tb, ok := b.(*FunctionType)
		return ok && refsEqual(ta.ArgTypes, tb.ArgTypes) && refsEqual(ta.RetTypes, tb.RetTypes)
	case *ComboType:
		tb, ok := b.(*ComboType)
		return ok && sameConstituents(ta.Types, tb.Types) && sameConstituents(tb.Types, ta.Types)
	default:
		return false
	}
}

// sameConstituents reports if every constituent of a is in b. Combos are sets,
// constituent order does not matter.
func sameConstituents(a, b []*TypeRef) bool {
	for _, x := range a {
		if !slices.ContainsFunc(b, x.Equal) {
			return false
		}
	}
	return true
}

// QualifiedName is the path of the type's scope followed by its name.
func QualifiedName(m MemberAccess) string {
	if path := PathString(m); path != "" {
		return path + conf.PATHSEP + nameOf(m)
	}
	return nameOf(m)
}

func nameOf(m MemberAccess) string {
	if t, ok := m.(Type); ok && t.Name() == "" {
		return t.String()
	}
	return m.Name()
}

func fmtRefs(refs []*TypeRef, sep string) string {
	parts := make([]string, len(refs))
	for i, ref := range refs {
		parts[i] = ref.String()
	}
	return strings.Join(parts, sep)
}

// PrettyPrint renders the parameter with its bound and default.
func (t *TemplateType) PrettyPrint() string {
	str := t.name
	if t.base != nil && t.base.Type.Kind() != KindAny {
		str += ": " + t.base.String()
	}
	if t.def != nil {
		str += " = " + t.def.String()
	}
	return str
}
