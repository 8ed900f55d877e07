package resolve

import (
	"strings"

	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"

	"github.com/tanema/typhon/src/conf"
	"github.com/tanema/typhon/src/lerrors"
	"github.com/tanema/typhon/src/parse"
	"github.com/tanema/typhon/src/types"
)

// ReadType resolves a raw type expression looked up from lookup. Names are
// searched in lookup first and then in each enclosing scope. A name that cannot
// be resolved is reported and read as Any. A nil expression is Any. An
// expression of an unknown kind is a caller bug and panics.
func ReadType(prog *types.Program, expr *parse.TypeExpr, lookup types.MemberAccess) *types.TypeRef {
	if expr == nil {
		return prog.Any()
	}
	var ref *types.TypeRef
	switch expr.Kind {
	case parse.KindFunc:
		args := make([]*types.TypeRef, len(expr.Args))
		for i, arg := range expr.Args {
			args[i] = ReadType(prog, arg, lookup)
		}
		rets := make([]*types.TypeRef, len(expr.Rets))
		for i, ret := range expr.Rets {
			rets[i] = ReadType(prog, ret, lookup)
		}
		targs := ReadTemplateArgs(prog, expr.Template, lookup)
		ref = types.NewTypeRef(types.NewFunctionType(prog, expr.LineInfo, args, rets, targs))
	case parse.KindArray:
		ref = types.NewTypeRef(prog.Core.TypeList, types.Arg(ReadType(prog, expr.Elem, lookup)))
	case parse.KindMap:
		ref = types.NewTypeRef(prog.Core.TypeMap,
			types.Arg(ReadType(prog, expr.Key, lookup)),
			types.Arg(ReadType(prog, expr.Value, lookup)))
	case parse.KindVar:
		ref = prog.Any()
		ref.Var = true
	case parse.KindConst:
		ref = ReadType(prog, expr.Inner, lookup)
		ref.Const = true
	case parse.KindBasic:
		ref = readBasic(prog, expr, lookup)
	default:
		panic(errors.Errorf("unknown type expression kind %v at %v", expr.Kind, expr.LineInfo))
	}
	ref.Source = expr.LineInfo
	return ref
}

// ReadTemplateArgs resolves a template argument clause in lookup.
func ReadTemplateArgs(prog *types.Program, args []*parse.TemplateArg, lookup types.MemberAccess) []*types.TemplateArg {
	out := make([]*types.TemplateArg, len(args))
	for i, arg := range args {
		out[i] = &types.TemplateArg{
			Label:  arg.Label,
			Value:  ReadType(prog, arg.Type, lookup),
			Source: arg.LineInfo,
		}
	}
	return out
}

func readBasic(prog *types.Program, expr *parse.TypeExpr, lookup types.MemberAccess) *types.TypeRef {
	member, ok := search(prog, expr, lookup, "type", isType)
	if !ok {
		return prog.Any()
	}
	ref, _ := types.AsTypeRef(member)
	if targs := expr.LastTemplate(); len(targs) > 0 {
		ref.TemplateArgs = ReadTemplateArgs(prog, targs, lookup)
		if _, err := ref.TemplateMap(); err != nil {
			report(prog, &lerrors.Error{Kind: lerrors.TemplateErr, Path: expr.Names(), Err: err}, expr.LineInfo)
		}
	}
	return ref
}

// search walks the enclosing scopes of lookup outwards. At every scope the
// dotted name is followed segment by segment and the members accepted at the
// last segment are the candidates. The first scope with candidates decides:
// one candidate is found, more than one is reported as ambiguous. Reaching the
// root without candidates is reported as not found.
func search(prog *types.Program, expr *parse.TypeExpr, lookup types.MemberAccess, what string, accept func(types.MemberAccess) bool) (types.MemberAccess, bool) {
	if expr == nil || len(expr.Lookup) == 0 {
		return nil, false
	}
	for scope := lookup; scope != nil; scope = scope.MemberParent() {
		candidates := followPath(scope, expr.Lookup, accept)
		switch len(candidates) {
		case 0:
			continue
		case 1:
			return candidates[0], true
		default:
			names := make([]string, len(candidates))
			for i, candidate := range candidates {
				names[i] = types.QualifiedName(candidate)
			}
			report(prog, &lerrors.Error{
				Kind:       lerrors.AmbiguousErr,
				Path:       expr.Names(),
				Candidates: names,
				Err:        errors.Errorf("ambiguous %s %s", what, strings.Join(expr.Names(), conf.PATHSEP)),
			}, expr.LineInfo)
			return nil, false
		}
	}
	report(prog, &lerrors.Error{
		Kind: lerrors.NotFoundErr,
		Path: expr.Names(),
		Err:  errors.Errorf("%s %s not found", what, strings.Join(expr.Names(), conf.PATHSEP)),
	}, expr.LineInfo)
	return nil, false
}

func followPath(scope types.MemberAccess, segments []*parse.Segment, accept func(types.MemberAccess) bool) []types.MemberAccess {
	current := []types.MemberAccess{scope}
	for _, seg := range segments {
		next := []types.MemberAccess{}
		for _, m := range current {
			next = append(next, types.LookupMembers(m, seg.Name, nil)...)
		}
		current = next
	}
	seen := set.New[types.MemberAccess](len(current))
	candidates := []types.MemberAccess{}
	for _, m := range current {
		if accept(m) && seen.Insert(m) {
			candidates = append(candidates, m)
		}
	}
	return candidates
}

func isType(m types.MemberAccess) bool {
	_, ok := types.AsTypeRef(m)
	return ok
}
