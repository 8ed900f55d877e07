package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorePackage(t *testing.T) {
	t.Parallel()
	prog := NewProgram(nil)
	core := prog.Core

	assert.Equal(t, "core", core.Name())
	assert.Nil(t, core.MemberParent())
	assert.Equal(t, Resolved, core.Status())
	assert.Empty(t, core.TypeAny.Parents())

	cases := []struct {
		typ    Type
		kind   Kind
		parent Type
	}{
		{core.TypeNumber, KindUser, core.TypeAny},
		{core.TypeInteger, KindUser, core.TypeNumber},
		{core.TypeReal, KindUser, core.TypeNumber},
		{core.TypeByte, KindSystem, core.TypeInteger},
		{core.TypeShort, KindSystem, core.TypeInteger},
		{core.TypeInt, KindSystem, core.TypeInteger},
		{core.TypeLong, KindSystem, core.TypeInteger},
		{core.TypeUByte, KindSystem, core.TypeInteger},
		{core.TypeUShort, KindSystem, core.TypeInteger},
		{core.TypeUInt, KindSystem, core.TypeInteger},
		{core.TypeULong, KindSystem, core.TypeInteger},
		{core.TypeChar, KindSystem, core.TypeInteger},
		{core.TypeFloat, KindSystem, core.TypeReal},
		{core.TypeDouble, KindSystem, core.TypeReal},
		{core.TypeString, KindSystem, core.TypeAny},
		{core.TypeBool, KindSystem, core.TypeAny},
		{core.TypeList, KindUser, core.TypeAny},
		{core.TypeMap, KindUser, core.TypeAny},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, tc.typ.Kind(), "%s", tc.typ)
		assert.Equal(t, Resolved, tc.typ.Status(), "%s", tc.typ)
		require.Len(t, tc.typ.Parents(), 1, "%s", tc.typ)
		assert.Same(t, tc.parent, tc.typ.Parents()[0].Type, "%s", tc.typ)
		found := LookupMembers(core, tc.typ.Name(), nil)
		require.Len(t, found, 1, "%s", tc.typ)
		assert.Same(t, tc.typ, found[0], "%s", tc.typ)
	}

	assert.Len(t, core.TypeList.Templates(), 1)
	assert.Len(t, core.TypeMap.Templates(), 2)
	for _, def := range []*AnnotationDefinition{core.AnnotOverride, core.AnnotStatic, core.AnnotMain, core.AnnotVararg, core.AnnotVarflag} {
		assert.Same(t, def, LookupMembers(core, def.Name(), nil)[0])
	}
	assert.True(t, core.FuncPrintln.Params()[0].HasAnnotation(core.AnnotVararg))
	assert.Equal(t, "annotation main()", core.AnnotMain.PrettyPrint())
}

func TestTemplateTypeParents(t *testing.T) {
	t.Parallel()
	prog := NewProgram(nil)
	unbounded := NewLibraryTemplateType(prog, "T", nil, nil)
	bounded := NewLibraryTemplateType(prog, "N", ref(prog.Core.TypeNumber), nil)

	assert.Same(t, prog.Core.TypeAny, unbounded.Parents()[0].Type)
	assert.Same(t, prog.Core.TypeNumber, bounded.Parents()[0].Type)
	assert.True(t, CanCastTo(ref(bounded), ref(prog.Core.TypeNumber)))
	assert.False(t, CanCastTo(ref(prog.Core.TypeInt), ref(bounded)))
	assert.Equal(t, "N: Number", bounded.PrettyPrint())
	assert.Equal(t, "T", unbounded.PrettyPrint())
}

func TestStatusString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "unresolved", Unresolved.String())
	assert.Equal(t, "in progress", InProgress.String())
	assert.Equal(t, "resolved", Resolved.String())
	assert.Equal(t, "unknown", Status(9).String())
	assert.Equal(t, "combo", KindCombo.String())
	assert.Equal(t, "block", FormBlock.String())
}
