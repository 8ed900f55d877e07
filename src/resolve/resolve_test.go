package resolve

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanema/typhon/src/lerrors"
	"github.com/tanema/typhon/src/parse"
	"github.com/tanema/typhon/src/types"
)

var src = parse.LineInfo{Filename: "test.ty", Line: 1, Column: 1}

func newPackage(prog *types.Program, name string) *types.Package {
	return prog.Core.AddSubpackage(types.NewPackage(prog, src, name))
}

func userType(pkg *types.Package, name string, parents ...string) *types.UserType {
	t := types.NewUserType(pkg.Program(), src, name)
	raws := make([]*parse.TypeExpr, len(parents))
	for i, parent := range parents {
		raws[i] = parse.MustType(parent)
	}
	t.SetRawData(raws)
	pkg.AddType(t)
	return t
}

func field(pkg *types.Package, name, typ string) *types.Field {
	var raw *parse.TypeExpr
	if typ != "" {
		raw = parse.MustType(typ)
	}
	return pkg.AddField(types.NewField(pkg.Program(), src, name, raw))
}

func function(pkg *types.Package, name string, params []string, rets ...string) *types.Function {
	prog := pkg.Program()
	fn := types.NewFunction(prog, src, name)
	for i, param := range params {
		fn.AddParam(types.NewParameter(prog, src, string(rune('a'+i)), parse.MustType(param)))
	}
	raws := make([]*parse.TypeExpr, len(rets))
	for i, ret := range rets {
		raws[i] = parse.MustType(ret)
	}
	fn.SetRawData(raws, types.FormStub, nil)
	return pkg.AddFunction(fn)
}

func annotate(entity interface{ AddAnnotation(*types.Annotation) }, prog *types.Program, name string) *types.Annotation {
	a := types.NewAnnotation(prog, src, parse.MustType(name))
	entity.AddAnnotation(a)
	return a
}

func TestReadType(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	pkg := newPackage(prog, "app")

	cases := []struct {
		src      string
		expected string
	}{
		{"int", "int"},
		{"Any", "Any"},
		{"const int", "const int"},
		{"var", "var"},
		{"int[]", "List<int>"},
		{"int[][]", "List<List<int>>"},
		{"[string: int]", "Map<string, int>"},
		{"function(int, string): bool", "function(int, string): bool"},
		{"function(): (int, int)", "function(): (int, int)"},
		{"List<Map<K: int, V: string>>", "List<Map<K: int, V: string>>"},
		{"(double)", "double"},
	}
	for i, tc := range cases {
		ref := ReadType(prog, parse.MustType(tc.src), pkg)
		assert.Equal(t, tc.expected, ref.String(), "[%v] %s", i, tc.src)
	}
	assert.False(t, prog.Errors.HasErrors(), prog.Errors.String())

	varRef := ReadType(prog, parse.MustType("var"), pkg)
	assert.True(t, varRef.Var)
	assert.Same(t, prog.Core.TypeAny, varRef.Type)
	constRef := ReadType(prog, parse.MustType("const string"), pkg)
	assert.True(t, constRef.Const)
	assert.Same(t, prog.Core.TypeString, constRef.Type)
	assert.Same(t, prog.Core.TypeAny, ReadType(prog, nil, pkg).Type)
}

func TestReadTypeUnknownKind(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	expr := &parse.TypeExpr{Kind: parse.TypeKind(99)}
	assert.Panics(t, func() { ReadType(prog, expr, prog.Core) })
	assert.Panics(t, func() {
		ReadType(prog, &parse.TypeExpr{Kind: parse.KindConst, Inner: expr}, prog.Core)
	})
	assert.False(t, prog.Errors.HasErrors())
}

func TestArraySugarIsList(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	pkg := newPackage(prog, "app")
	userType(pkg, "Point")
	for _, elem := range []string{"int", "string", "Number", "Point", "List<int>", "[int: bool]", "(function(int): int)"} {
		array := ReadType(prog, parse.MustType(elem+"[]"), pkg)
		list := ReadType(prog, parse.MustType("List<"+elem+">"), pkg)
		assert.True(t, array.Equal(list), "%s[] is %s, List<%s> is %s", elem, array, elem, list)
		assert.True(t, types.CanCastTo(array, list))
		assert.True(t, types.CanCastTo(list, array))
	}
	mapRef := ReadType(prog, parse.MustType("[string: int]"), pkg)
	assert.True(t, mapRef.Equal(ReadType(prog, parse.MustType("Map<string, int>"), pkg)))
	assert.False(t, prog.Errors.HasErrors(), prog.Errors.String())
}

func TestReadTypeAmbiguous(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	app := newPackage(prog, "app")
	outer := app.AddSubpackage(types.NewPackage(prog, src, "outer"))
	first := outer.AddSubpackage(types.NewPackage(prog, src, "inner"))
	second := outer.AddSubpackage(types.NewPackage(prog, src, "inner"))
	userType(first, "Name")
	userType(second, "Name")

	expr, err := parse.Type("main.ty", "outer.inner.Name")
	require.NoError(t, err)
	ref := ReadType(prog, expr, app)
	assert.Same(t, prog.Core.TypeAny, ref.Type)

	errs := prog.Errors.OfKind(lerrors.AmbiguousErr)
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"outer", "inner", "Name"}, errs[0].Path)
	assert.Equal(t, []string{"app.outer.inner.Name", "app.outer.inner.Name"}, errs[0].Candidates)
	assert.Equal(t, "main.ty", errs[0].Filename)
	assert.Equal(t, int64(1), errs[0].Line)
	assert.Equal(t, int64(1), errs[0].Column)
}

func TestReadTypeNotFound(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	app := newPackage(prog, "app")

	ref := ReadType(prog, parse.MustType("nope.Missing<int>"), app)
	assert.Same(t, prog.Core.TypeAny, ref.Type)
	errs := prog.Errors.OfKind(lerrors.NotFoundErr)
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"nope", "Missing"}, errs[0].Path)
	assert.Equal(t, "Type Error: <const>:1:1 type nope.Missing not found", errs[0].Error())

	// math is a subpackage of core and is not visible from app
	ReadType(prog, parse.MustType("math.PI"), app)
	assert.Len(t, prog.Errors.OfKind(lerrors.NotFoundErr), 2)
}

func TestReadTypeScopeChain(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	app := newPackage(prog, "app")
	sub := app.AddSubpackage(types.NewPackage(prog, src, "sub"))
	point := userType(app, "Point")
	shadow := userType(app, "int")
	nested := userType(sub, "Nested")

	assert.Same(t, point, ReadType(prog, parse.MustType("Point"), sub).Type)
	assert.Same(t, shadow, ReadType(prog, parse.MustType("int"), sub).Type)
	assert.Same(t, prog.Core.TypeInt, ReadType(prog, parse.MustType("int"), prog.Core).Type)
	assert.Same(t, nested, ReadType(prog, parse.MustType("sub.Nested"), app).Type)
	assert.Same(t, nested, ReadType(prog, parse.MustType("sub.Nested"), sub).Type)
	assert.False(t, prog.Errors.HasErrors(), prog.Errors.String())
}

func TestReadTypeTemplateErrors(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	app := newPackage(prog, "app")

	ref := ReadType(prog, parse.MustType("List<int, int>"), app)
	assert.Same(t, prog.Core.TypeList, ref.Type)
	ReadType(prog, parse.MustType("Map<X: int>"), app)
	assert.Len(t, prog.Errors.OfKind(lerrors.TemplateErr), 2)
}

func TestResolveUserTypes(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	app := newPackage(prog, "app")
	number := userType(app, "Num", "Number")
	lonely := userType(app, "Lonely")
	byteT := userType(app, "Byte", "Integer", "Comparable<Byte>")
	comparable := userType(app, "Comparable")
	comparable.AddTemplate(types.NewTemplateType(prog, src, "T", nil, nil))

	Package(app)
	assert.False(t, prog.Errors.HasErrors(), prog.Errors.String())
	for _, typ := range []types.Type{number, lonely, byteT, comparable} {
		assert.Equal(t, types.Resolved, typ.Status())
	}
	assert.Same(t, prog.Core.TypeNumber, number.Parents()[0].Type)
	require.Len(t, lonely.Parents(), 1)
	assert.Same(t, prog.Core.TypeAny, lonely.Parents()[0].Type)
	assert.Equal(t, "Comparable<Byte>", byteT.Parents()[1].String())

	byteRef := types.NewTypeRef(byteT)
	assert.True(t, types.CanCastTo(byteRef, types.NewTypeRef(prog.Core.TypeNumber)))
	assert.Same(t, prog.Core.TypeInteger, types.CommonType(byteRef, types.NewTypeRef(prog.Core.TypeInteger)).Type)
	assert.Same(t, prog.Core.TypeNumber, types.CommonType(byteRef, types.NewTypeRef(prog.Core.TypeReal)).Type)
}

func TestResolveCycle(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	app := newPackage(prog, "app")
	a := userType(app, "A", "B")
	b := userType(app, "B", "A")
	self := userType(app, "Self", "Self")

	Package(app)
	assert.Len(t, prog.Errors.OfKind(lerrors.CycleErr), 2)
	assert.Same(t, b, a.Parents()[0].Type)
	assert.Same(t, prog.Core.TypeAny, b.Parents()[0].Type)
	assert.Same(t, prog.Core.TypeAny, self.Parents()[0].Type)
	for _, typ := range []types.Type{a, b, self} {
		assert.True(t, types.CanCastTo(types.NewTypeRef(typ), prog.Any()))
	}
}

func TestResolveNestedTypeExtendingOuterSubtype(t *testing.T) {
	t.Parallel()
	for _, aFirst := range []bool{true, false} {
		prog := types.NewProgram(nil)
		app := newPackage(prog, "app")
		var a, b *types.UserType
		if aFirst {
			a = userType(app, "A", "B")
			b = userType(app, "B")
		} else {
			b = userType(app, "B")
			a = userType(app, "A", "B")
		}
		nested := userType(b.TypePackage(), "N", "A")

		Package(app)
		assert.False(t, prog.Errors.HasErrors(), "a first: %v %s", aFirst, prog.Errors.String())
		assert.Same(t, b, a.Parents()[0].Type)
		assert.Same(t, a, nested.Parents()[0].Type)
		assert.True(t, types.CanCastTo(types.NewTypeRef(nested), types.NewTypeRef(b)))
	}
}

func TestResolveIdempotent(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	app := newPackage(prog, "app")
	f := field(app, "count", "Missing")
	fn := function(app, "first", []string{"int[]"}, "int")
	point := userType(app, "Point")
	function(point.TypePackage(), "x", nil, "double")

	Package(app)
	errs := prog.Errors.Len()
	fieldType := f.Type
	params := fn.Params()[0].Type
	members := len(point.Members(nil))

	Package(app)
	Field(f)
	Function(fn)
	Type(point)
	assert.Equal(t, errs, prog.Errors.Len())
	assert.Equal(t, 1, errs)
	assert.Same(t, fieldType, f.Type)
	assert.Same(t, params, fn.Params()[0].Type)
	assert.Len(t, point.Members(nil), members)
	assert.Len(t, app.Types(), 1)
}

func TestResolveFieldsAndFunctions(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	app := newPackage(prog, "app")
	untyped := field(app, "anything", "")
	typed := field(app, "names", "string[]")
	fn := function(app, "lookup", []string{"[string: int]", "string"}, "int", "bool")

	Package(app)
	assert.False(t, prog.Errors.HasErrors(), prog.Errors.String())
	assert.Same(t, prog.Core.TypeAny, untyped.Type.Type)
	assert.Equal(t, "List<string>", typed.Type.String())
	assert.Equal(t, "function lookup(a: Map<string, int>, b: string): (int, bool)", fn.PrettyPrint())
}

func TestResolveFunctionTemplates(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	app := newPackage(prog, "app")
	userType(app, "T")
	fn := types.NewFunction(prog, src, "first")
	elem := types.NewTemplateType(prog, src, "T", parse.MustType("Number"), parse.MustType("int"))
	fn.AddTemplate(elem)
	fn.AddParam(types.NewParameter(prog, src, "list", parse.MustType("T[]")))
	fn.SetRawData([]*parse.TypeExpr{parse.MustType("T")}, types.FormExpr, []string{"list[0]"})
	app.AddFunction(fn)

	Package(app)
	assert.False(t, prog.Errors.HasErrors(), prog.Errors.String())
	assert.Same(t, prog.Core.TypeNumber, elem.Base().Type)
	assert.Same(t, prog.Core.TypeInt, elem.Default().Type)
	assert.Same(t, elem, fn.Rets()[0].Type)
	assert.Same(t, elem, fn.Params()[0].Type.TemplateArgs[0].Value.Type)
	assert.Equal(t, "function first<T: Number = int>(list: List<T>): T", fn.PrettyPrint())

	tmap := fn.TemplateMap()
	assert.Equal(t, "List<int>", types.Substitute(fn.Params()[0].Type, tmap).String())
}

func TestResolveGenericType(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	app := newPackage(prog, "app")
	stack := userType(app, "Stack", "List<E>")
	stack.AddTemplate(types.NewTemplateType(prog, src, "E", nil, nil))
	top := field(stack.TypePackage(), "top", "E")
	push := function(stack.TypePackage(), "push", []string{"E"}, "Stack<E>")

	Package(app)
	assert.False(t, prog.Errors.HasErrors(), prog.Errors.String())
	elem := stack.Templates()[0]
	assert.Same(t, elem, top.Type.Type)
	assert.Same(t, elem, push.Params()[0].Type.Type)
	assert.Equal(t, "Stack<E>", push.Rets()[0].String())

	intStack := types.NewTypeRef(stack, types.Arg(types.NewTypeRef(prog.Core.TypeInt)))
	intList := types.NewTypeRef(prog.Core.TypeList, types.Arg(types.NewTypeRef(prog.Core.TypeInt)))
	assert.True(t, types.CanCastTo(intStack, intList))
	assert.Same(t, prog.Core.TypeList, types.CommonType(intStack, intList).Type)
}

func TestResolveAnnotations(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	app := newPackage(prog, "app")
	entity := app.AddAnnotationDefinition(types.NewAnnotationDefinition(prog, src, "entity",
		types.NewParameter(prog, src, "table", parse.MustType("string"))))
	point := userType(app, "Point")
	onType := annotate(point, prog, "entity")
	fn := function(app, "start", nil)
	onFunc := annotate(fn, prog, "main")
	missing := annotate(fn, prog, "nope")
	onPackage := annotate(app, prog, "entity")
	notAnnotation := annotate(fn, prog, "Point")

	Package(app)
	assert.Same(t, entity, onType.Definition())
	assert.Same(t, prog.Core.AnnotMain, onFunc.Definition())
	assert.Same(t, entity, onPackage.Definition())
	assert.Nil(t, missing.Definition())
	assert.Nil(t, notAnnotation.Definition())
	assert.Same(t, prog.Core.TypeString, entity.Params()[0].Type.Type)
	assert.True(t, point.HasAnnotation(entity))
	errs := prog.Errors.OfKind(lerrors.NotFoundErr)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "annotation nope not found")
	assert.Contains(t, errs[1].Error(), "annotation Point not found")
}

func TestLinkOverrides(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	app := newPackage(prog, "app")
	shape := userType(app, "Shape")
	square := userType(app, "Square", "Shape")
	cube := userType(app, "Cube", "Square")
	shapeArea := function(shape.TypePackage(), "area", nil, "double")
	shapeScale := function(shape.TypePackage(), "scale", []string{"double"})
	shapeUnit := function(shape.TypePackage(), "unit", nil, "Shape")
	annotate(shapeUnit, prog, "static")
	squareArea := function(square.TypePackage(), "area", nil, "double")
	squareScale := function(square.TypePackage(), "scale", []string{"int"})
	squareUnit := function(square.TypePackage(), "unit", nil, "Square")
	cubeArea := function(cube.TypePackage(), "area", nil, "double")

	Package(app)
	assert.False(t, prog.Errors.HasErrors(), prog.Errors.String())
	assert.Equal(t, []*types.Function{squareArea, cubeArea}, shapeArea.Overrides())
	assert.Equal(t, []*types.Function{cubeArea}, squareArea.Overrides())
	assert.Equal(t, []*types.Function{squareArea, shapeArea}, cubeArea.Bases())
	assert.True(t, cubeArea.HasAnnotation(prog.Core.AnnotOverride))
	assert.Empty(t, squareScale.Bases())
	assert.Empty(t, shapeScale.Overrides())
	assert.Empty(t, squareUnit.Bases())
	assert.Nil(t, shapeUnit.Overrides())

	assert.Same(t, squareArea, shapeArea.ResolveOverride(types.NewTypeRef(square)))
	assert.Same(t, cubeArea, shapeArea.ResolveOverride(types.NewTypeRef(cube)))
	assert.Same(t, shapeArea, shapeArea.ResolveOverride(types.NewTypeRef(prog.Core.TypeInt)))
	assert.Same(t, squareArea, cubeArea.ResolveBase(types.NewTypeRef(square)))
}

func TestLinkOverridesGeneric(t *testing.T) {
	t.Parallel()
	prog := types.NewProgram(nil)
	app := newPackage(prog, "app")
	box := userType(app, "Box")
	box.AddTemplate(types.NewTemplateType(prog, src, "T", nil, nil))
	put := function(box.TypePackage(), "put", []string{"T"})
	intBox := userType(app, "IntBox", "Box<int>")
	intPut := function(intBox.TypePackage(), "put", []string{"int"})
	strBox := userType(app, "StrBox", "Box<int>")
	strPut := function(strBox.TypePackage(), "put", []string{"string"})

	Package(app)
	assert.False(t, prog.Errors.HasErrors(), prog.Errors.String())
	assert.Equal(t, []*types.Function{intPut}, put.Overrides())
	assert.Empty(t, strPut.Bases())
}

func TestDiagnosticsAreLogged(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	prog := types.NewProgram(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	app := newPackage(prog, "app")
	field(app, "broken", "Missing")
	field(app, "fine", "int")

	Package(app)
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "type Missing not found")
	assert.Contains(t, out, `msg="resolved field" field=app.fine type=int`)
	assert.Contains(t, out, `msg="resolved package" package=app`)
}
