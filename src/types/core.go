package types

import (
	"github.com/tanema/typhon/src/conf"
	"github.com/tanema/typhon/src/parse"
)

// Names of the core types and annotations. They are looked up by these exact
// names from every scope.
const (
	NameAny     = "Any"
	NameNumber  = "Number"
	NameInteger = "Integer"
	NameReal    = "Real"
	NameByte    = "byte"
	NameShort   = "short"
	NameInt     = "int"
	NameLong    = "long"
	NameUByte   = "ubyte"
	NameUShort  = "ushort"
	NameUInt    = "uint"
	NameULong   = "ulong"
	NameChar    = "char"
	NameFloat   = "float"
	NameDouble  = "double"
	NameString  = "string"
	NameBool    = "bool"
	NameList    = "List"
	NameMap     = "Map"

	AnnotNameOverride = "override"
	AnnotNameStatic   = "static"
	AnnotNameMain     = "main"
	AnnotNameVararg   = "vararg"
	AnnotNameVarflag  = "varflag"

	// LibNameMath is the core math library. Like every subpackage of core it has
	// to be imported to be visible.
	LibNameMath = "math"
)

// CorePackage is the root of every scope chain. It holds the built in types,
// functions and annotations. Its subpackages are libraries and user packages,
// which are not visible from the core scope itself.
type CorePackage struct {
	*Package
	TypeAny     *AnyType
	TypeNumber  *UserType
	TypeInteger *UserType
	TypeReal    *UserType
	TypeByte    *SystemType
	TypeShort   *SystemType
	TypeInt     *SystemType
	TypeLong    *SystemType
	TypeUByte   *SystemType
	TypeUShort  *SystemType
	TypeUInt    *SystemType
	TypeULong   *SystemType
	TypeChar    *SystemType
	TypeFloat   *SystemType
	TypeDouble  *SystemType
	TypeString  *SystemType
	TypeBool    *SystemType
	TypeList    *UserType
	TypeMap     *UserType

	AnnotOverride *AnnotationDefinition
	AnnotStatic   *AnnotationDefinition
	AnnotMain     *AnnotationDefinition
	AnnotVararg   *AnnotationDefinition
	AnnotVarflag  *AnnotationDefinition

	FuncPrint   *Function
	FuncPrintln *Function

	LibMath *Package
}

func newCorePackage(prog *Program) *CorePackage {
	core := &CorePackage{Package: newPackage(prog, parse.LineInfo{}, conf.CORENAME, nil)}
	core.root = true
	core.hideSubpackages = true
	prog.Core = core

	core.TypeAny = &AnyType{baseType: prog.newBaseType(parse.LineInfo{}, NameAny)}
	core.TypeAny.self = core.TypeAny
	core.TypeAny.markAsLibrary()
	core.AddType(core.TypeAny)

	userType := func(name string, parent Type) *UserType {
		t := NewLibraryUserType(prog, name, parent)
		core.AddType(t)
		return t
	}
	systemType := func(name string, parent Type) *SystemType {
		t := NewSystemType(prog, name, parent)
		core.AddType(t)
		return t
	}

	core.TypeNumber = userType(NameNumber, core.TypeAny)
	core.TypeInteger = userType(NameInteger, core.TypeNumber)
	core.TypeReal = userType(NameReal, core.TypeNumber)

	core.TypeByte = systemType(NameByte, core.TypeInteger)
	core.TypeShort = systemType(NameShort, core.TypeInteger)
	core.TypeInt = systemType(NameInt, core.TypeInteger)
	core.TypeLong = systemType(NameLong, core.TypeInteger)
	core.TypeUByte = systemType(NameUByte, core.TypeInteger)
	core.TypeUShort = systemType(NameUShort, core.TypeInteger)
	core.TypeUInt = systemType(NameUInt, core.TypeInteger)
	core.TypeULong = systemType(NameULong, core.TypeInteger)
	core.TypeChar = systemType(NameChar, core.TypeInteger)
	core.TypeFloat = systemType(NameFloat, core.TypeReal)
	core.TypeDouble = systemType(NameDouble, core.TypeReal)
	core.TypeString = systemType(NameString, core.TypeAny)
	core.TypeBool = systemType(NameBool, core.TypeAny)

	core.TypeList = userType(NameList, core.TypeAny)
	core.TypeList.AddTemplate(NewLibraryTemplateType(prog, "T", nil, nil))
	core.TypeMap = userType(NameMap, core.TypeAny)
	core.TypeMap.AddTemplate(NewLibraryTemplateType(prog, "K", nil, nil))
	core.TypeMap.AddTemplate(NewLibraryTemplateType(prog, "V", nil, nil))

	core.FuncPrint = core.AddFunction(NewLibraryFunction(prog, "print",
		[]*Parameter{NewLibraryParameter(prog, "toPrint", NewTypeRef(core.TypeAny))}, nil))
	core.FuncPrintln = core.AddFunction(NewLibraryFunction(prog, "println",
		[]*Parameter{NewLibraryParameter(prog, "toPrint", NewTypeRef(core.TypeAny))}, nil))

	annotDef := func(name string) *AnnotationDefinition {
		return core.AddAnnotationDefinition(NewLibraryAnnotationDefinition(prog, name))
	}
	core.AnnotOverride = annotDef(AnnotNameOverride)
	core.AnnotStatic = annotDef(AnnotNameStatic)
	core.AnnotMain = annotDef(AnnotNameMain)
	core.AnnotVararg = annotDef(AnnotNameVararg)
	core.AnnotVarflag = annotDef(AnnotNameVarflag)

	core.FuncPrintln.Params()[0].AddAnnotation(NewLibraryAnnotation(prog, core.AnnotVararg))

	core.LibMath = core.AddSubpackage(newMathLibrary(prog, core))
	core.markAsLibrary()
	return core
}

func newMathLibrary(prog *Program, core *CorePackage) *Package {
	lib := NewPackage(prog, parse.LineInfo{}, LibNameMath)

	abs := NewFunction(prog, parse.LineInfo{}, "abs")
	num := NewLibraryTemplateType(prog, "T", NewTypeRef(core.TypeNumber), nil)
	abs.AddTemplate(num)
	abs.AddParam(NewLibraryParameter(prog, "x", NewTypeRef(num)))
	abs.SetRets([]*TypeRef{NewTypeRef(num)})
	abs.markAsLibrary()
	lib.AddFunction(abs)

	for _, name := range []string{"sqrt", "floor", "ceil"} {
		lib.AddFunction(NewLibraryFunction(prog, name,
			[]*Parameter{NewLibraryParameter(prog, "x", NewTypeRef(core.TypeDouble))},
			[]*TypeRef{NewTypeRef(core.TypeDouble)}))
	}
	lib.AddField(NewLibraryField(prog, "PI", &TypeRef{Type: core.TypeDouble, Const: true}))
	lib.markAsLibrary()
	return lib
}

// CoreSubpackages are the libraries and user packages nested in core. They are
// not members of the core scope.
func (core *CorePackage) CoreSubpackages() []*Package {
	return core.Package.Subpackages()
}

// Subpackages of core are hidden, see CoreSubpackages.
func (core *CorePackage) Subpackages() []*Package { return []*Package{} }

// Subpackage of core is always nil, see CoreSubpackage.
func (core *CorePackage) Subpackage(string) *Package { return nil }

// CoreSubpackage returns the library or user package named name or nil.
func (core *CorePackage) CoreSubpackage(name string) *Package {
	return core.Package.Subpackage(name)
}
