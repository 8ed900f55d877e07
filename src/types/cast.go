package types

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hashicorp/go-set/v2"
)

// CanCastTo reports if a value of type from can be used where to is expected.
// Every type casts to Any, a type casts to its parents transitively with their
// template arguments applied, a combo casts if one of its constituents does and
// anything that casts to one constituent of a combo casts to the combo.
func CanCastTo(from, to *TypeRef) bool {
	if to.Type.Kind() == KindAny || refMatches(from, to) {
		return true
	}
	if combo, ok := to.Type.(*ComboType); ok {
		for _, constituent := range combo.Types {
			if CanCastTo(from, constituent) {
				return true
			}
		}
		return false
	}
	return castWalk(from, to, set.New[string](8))
}

func castWalk(from, to *TypeRef, visited *set.Set[string]) bool {
	if refMatches(from, to) {
		return true
	} else if !visited.Insert(from.key()) {
		return false
	}
	for _, parent := range from.Parents() {
		if castWalk(parent, to, visited) {
			return true
		}
	}
	return false
}

// refMatches is a cast without walking parents. A target written without
// template arguments matches every instantiation.
func refMatches(from, to *TypeRef) bool {
	if !sameType(from.Type, to.Type) {
		return false
	}
	return len(to.TemplateArgs) == 0 || sameBindings(from, to)
}

// CommonType is the type both a and b can be used as. When neither casts to
// the other the closest ancestors of a that b casts to are collected and the
// ones that cast to another candidate are dropped. Several unrelated
// survivors make a combo of all of them.
func CommonType(a, b *TypeRef) *TypeRef {
	ab, ba := CanCastTo(a, b), CanCastTo(b, a)
	switch {
	case a.Equal(b), ab && ba:
		if compareRefs(a, b) <= 0 {
			return a
		}
		return b
	case ba:
		return a
	case ab:
		return b
	}

	candidates := []*TypeRef{}
	seen := set.New[string](8)
	collectCommon(a, b, set.New[string](8), func(ref *TypeRef) {
		if seen.Insert(ref.key()) {
			candidates = append(candidates, ref)
		}
	})

	survivors := []*TypeRef{}
	for _, candidate := range candidates {
		if !hasSupertypeIn(candidate, candidates) {
			survivors = append(survivors, candidate)
		}
	}
	slices.SortFunc(survivors, compareRefs)

	prog := a.Type.Program()
	switch len(survivors) {
	case 0:
		return prog.Any()
	case 1:
		return survivors[0]
	default:
		return NewTypeRef(NewComboType(prog, a.Source, survivors...))
	}
}

// collectCommon walks up from a and yields the first ancestor on every path
// that b can be cast to.
func collectCommon(a, b *TypeRef, visited *set.Set[string], yield func(*TypeRef)) {
	if CanCastTo(b, a) {
		yield(a)
		return
	} else if !visited.Insert(a.key()) {
		return
	}
	for _, parent := range a.Parents() {
		collectCommon(parent, b, visited, yield)
	}
}

// hasSupertypeIn reports if ref is strictly more specific than another
// candidate.
func hasSupertypeIn(ref *TypeRef, candidates []*TypeRef) bool {
	for _, other := range candidates {
		if other != ref && CanCastTo(ref, other) && !CanCastTo(other, ref) {
			return true
		}
	}
	return false
}

// compareRefs orders references by the handle of their target and then by
// their template arguments.
func compareRefs(x, y *TypeRef) int {
	if c := cmp.Compare(x.Type.ID(), y.Type.ID()); c != 0 {
		return c
	}
	return strings.Compare(x.key(), y.key())
}
