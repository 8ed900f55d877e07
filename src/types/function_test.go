package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanema/typhon/src/parse"
)

// shapes builds Shape <- Square <- Cube, each with an instance function area,
// plus an unrelated type Point.
func shapes(t *testing.T) (prog *Program, shape, square, cube, point *UserType, fns [3]*Function) {
	t.Helper()
	prog = NewProgram(nil)
	pkg := prog.Core.AddSubpackage(NewPackage(prog, parse.LineInfo{}, "geo"))
	shape = NewLibraryUserType(prog, "Shape", prog.Core.TypeAny)
	square = NewLibraryUserType(prog, "Square", shape)
	cube = NewLibraryUserType(prog, "Cube", square)
	point = NewLibraryUserType(prog, "Point", prog.Core.TypeAny)
	for i, typ := range []*UserType{shape, square, cube} {
		pkg.AddType(typ)
		fns[i] = typ.TypePackage().AddFunction(NewLibraryFunction(prog, "area", nil, []*TypeRef{ref(prog.Core.TypeDouble)}))
	}
	pkg.AddType(point)
	return prog, shape, square, cube, point, fns
}

func TestRegisterOverride(t *testing.T) {
	t.Parallel()
	prog, _, _, _, _, fns := shapes(t)
	base, override := fns[0], fns[1]

	RegisterOverride(base, override)
	assert.Equal(t, []*Function{override}, base.Overrides())
	assert.Equal(t, []*Function{base}, override.Bases())
	assert.True(t, override.HasAnnotation(prog.Core.AnnotOverride))
	assert.False(t, base.HasAnnotation(prog.Core.AnnotOverride))

	RegisterOverride(base, override)
	assert.Len(t, base.Overrides(), 1)
	assert.Len(t, override.Bases(), 1)
	assert.Len(t, override.Annotations(), 1)
}

func TestResolveOverride(t *testing.T) {
	t.Parallel()
	_, shape, square, cube, point, fns := shapes(t)
	RegisterOverride(fns[0], fns[1])
	RegisterOverride(fns[0], fns[2])
	RegisterOverride(fns[1], fns[2])

	cases := []struct {
		fn       *Function
		expected *TypeRef
		override *Function
		base     *Function
	}{
		{fns[0], ref(shape), fns[0], fns[0]},
		{fns[0], ref(square), fns[1], fns[0]},
		{fns[0], ref(cube), fns[2], fns[0]},
		{fns[0], ref(point), fns[0], fns[0]},
		{fns[1], ref(cube), fns[2], fns[0]},
		{fns[1], ref(point), fns[1], fns[1]},
		{fns[2], ref(shape), fns[2], fns[0]},
		{fns[2], ref(square), fns[2], fns[0]},
		{fns[2], ref(cube), fns[2], fns[0]},
		{fns[2], ref(point), fns[2], fns[2]},
	}
	for i, tc := range cases {
		assert.Same(t, tc.override, tc.fn.ResolveOverride(tc.expected), "[%v] override", i)
		assert.Same(t, tc.base, tc.fn.ResolveBase(tc.expected), "[%v] base", i)
	}
}

func TestStaticFunctions(t *testing.T) {
	t.Parallel()
	prog, shape, _, _, _, fns := shapes(t)
	static := shape.TypePackage().AddFunction(NewLibraryFunction(prog, "unit", nil, nil))
	static.AddAnnotation(NewLibraryAnnotation(prog, prog.Core.AnnotStatic))

	assert.True(t, static.IsStatic())
	assert.Nil(t, static.FieldOf())
	assert.Nil(t, static.Overrides())
	assert.Panics(t, func() { RegisterOverride(static, fns[1]) })

	assert.False(t, fns[0].IsStatic())
	assert.Same(t, shape, fns[0].FieldOf())
	assert.Nil(t, prog.Core.FuncPrint.FieldOf())
}

func TestPackageFunctionsAreStatic(t *testing.T) {
	t.Parallel()
	prog, _, _, _, _, fns := shapes(t)
	printFn := prog.Core.FuncPrint
	assert.True(t, printFn.IsStatic())
	assert.Nil(t, printFn.Overrides())
	assert.Panics(t, func() { RegisterOverride(printFn, fns[0]) })
	assert.Empty(t, fns[0].Bases())

	abs := prog.Core.LibMath.Functions()[0]
	assert.True(t, abs.IsStatic())
	assert.Nil(t, abs.Overrides())
}

func TestFunctionSetRawData(t *testing.T) {
	t.Parallel()
	prog := NewProgram(nil)
	rets := []*parse.TypeExpr{parse.MustType("int")}

	cases := []struct {
		form   Form
		body   []string
		panics bool
	}{
		{FormStub, nil, false},
		{FormStub, []string{"return 1"}, true},
		{FormExpr, []string{"a + b"}, false},
		{FormExpr, nil, true},
		{FormExpr, []string{"a", "b"}, true},
		{FormBlock, nil, false},
		{FormBlock, []string{"a()", "b()"}, false},
		{Form(42), nil, true},
	}
	for i, tc := range cases {
		fn := NewFunction(prog, parse.LineInfo{}, "f")
		if tc.panics {
			assert.Panics(t, func() { fn.SetRawData(rets, tc.form, tc.body) }, "[%v]", i)
			continue
		}
		require.NotPanics(t, func() { fn.SetRawData(rets, tc.form, tc.body) }, "[%v]", i)
		assert.Equal(t, tc.form, fn.Form())
		assert.Equal(t, rets, fn.RawRets())
		assert.Equal(t, Unresolved, fn.Status())
	}
}

func TestFunctionTemplateScope(t *testing.T) {
	t.Parallel()
	prog := NewProgram(nil)
	fn := NewFunction(prog, parse.LineInfo{}, "first")
	elem := NewLibraryTemplateType(prog, "T", ref(prog.Core.TypeNumber), ref(prog.Core.TypeInt))
	fn.AddTemplate(elem)

	scope := fn.TemplateScope()
	assert.Same(t, scope, fn.TemplateScope())
	assert.Len(t, scope.Types(), 1)
	assert.Same(t, MemberAccess(fn), scope.MemberParent())
	found := LookupMembers(fn, "T", nil)
	require.Len(t, found, 1)
	assert.Same(t, elem, found[0])

	bound := LookupMembers(fn, "T", TemplateMap{elem: ref(prog.Core.TypeLong)})
	require.Len(t, bound, 1)
	binding, ok := bound[0].(*Binding)
	require.True(t, ok)
	assert.Same(t, prog.Core.TypeLong, binding.Value.Type)

	fn.AddTemplate(NewLibraryTemplateType(prog, "U", nil, nil))
	assert.NotSame(t, scope, fn.TemplateScope())
	assert.Len(t, fn.TemplateScope().Types(), 2)

	tmap := fn.TemplateMap()
	assert.Same(t, prog.Core.TypeInt, tmap[elem].Type)
	assert.Same(t, prog.Core.TypeAny, tmap[fn.Templates()[1]].Type)
}

func TestFunctionAsTypeAndPrettyPrint(t *testing.T) {
	t.Parallel()
	prog := NewProgram(nil)
	core := prog.Core
	fn := core.LibMath.Functions()[0]
	assert.Equal(t, "abs", fn.Name())
	assert.Equal(t, "function abs<T: Number>(x: T): T", fn.PrettyPrint())
	assert.Equal(t, "function<T: T>(T): T", fn.AsType().String())
	assert.Equal(t, "function println(toPrint: Any)", core.FuncPrintln.PrettyPrint())
	assert.Equal(t, "math.abs", fn.String())
	assert.Equal(t, "<anonymous>", NewFunction(prog, parse.LineInfo{}, "").String())

	sqrt := core.LibMath.Functions()[1]
	asType := ref(sqrt.AsType())
	assert.True(t, asType.Equal(ref(NewFunctionType(prog, parse.LineInfo{}, []*TypeRef{ref(core.TypeDouble)}, []*TypeRef{ref(core.TypeDouble)}, nil))))
}
