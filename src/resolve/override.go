package resolve

import (
	"github.com/hashicorp/go-set/v2"

	"github.com/tanema/typhon/src/types"
)

// LinkOverrides registers every instance function of t as an override of the
// instance functions with the same name and parameter types in the ancestors of
// t. Parameter types are compared after the ancestor's template parameters are
// replaced by the arguments t passes to it.
func LinkOverrides(t types.Type) {
	own := instanceFunctions(t)
	if len(own) == 0 {
		return
	}
	prog := t.Program()
	visited := set.New[uint64](8)
	var walk func(parents []*types.TypeRef)
	walk = func(parents []*types.TypeRef) {
		for _, parent := range parents {
			if !visited.Insert(parent.Type.ID()) {
				continue
			}
			Type(parent.Type)
			tmap, _ := parent.TemplateMap()
			for _, base := range instanceFunctions(parent.Type) {
				for _, fn := range own {
					if fn.Name() == base.Name() && sameParams(base, fn, tmap) {
						types.RegisterOverride(base, fn)
						prog.Logger.Debug("linked override", "base", base.String(), "override", fn.String())
					}
				}
			}
			walk(parent.Parents())
		}
	}
	walk(types.NewTypeRef(t).Parents())
}

func instanceFunctions(t types.Type) []*types.Function {
	fns := []*types.Function{}
	for _, fn := range t.TypePackage().Functions() {
		Function(fn)
		if !fn.IsAnonymous() && !fn.IsStatic() {
			fns = append(fns, fn)
		}
	}
	return fns
}

func sameParams(base, fn *types.Function, tmap types.TemplateMap) bool {
	if len(base.Params()) != len(fn.Params()) {
		return false
	}
	for i, param := range base.Params() {
		if !types.Substitute(param.Type, tmap).Equal(fn.Params()[i].Type) {
			return false
		}
	}
	return true
}
