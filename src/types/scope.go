package types

import (
	"slices"
	"strings"

	"github.com/tanema/typhon/src/conf"
)

type (
	// MemberAccess is implemented by everything that can be looked up by name
	// and that can hold named members: packages, types, functions, fields,
	// parameters and annotation definitions.
	MemberAccess interface {
		Name() string
		// MemberParent is the enclosing scope, nil for the root scope. It is a
		// navigation edge, the parent does not necessarily own the member.
		MemberParent() MemberAccess
		// Members returns the children of the scope. Template parameters bound in
		// tmap are returned as a *Binding to their value instead of themselves.
		Members(tmap TemplateMap) []MemberAccess
	}
	// Binding is a template parameter seen through a scope that binds it to a
	// concrete type.
	Binding struct {
		Template *TemplateType
		Value    *TypeRef
		parent   MemberAccess
	}
)

// LookupMembers returns the members of m named name.
func LookupMembers(m MemberAccess, name string, tmap TemplateMap) []MemberAccess {
	found := []MemberAccess{}
	for _, member := range m.Members(tmap) {
		if member.Name() == name {
			found = append(found, member)
		}
	}
	return found
}

// PathString is the dotted path of the scopes enclosing m, outermost first. The
// root scope and unnamed scopes are left out.
func PathString(m MemberAccess) string {
	names := []string{}
	for scope := m.MemberParent(); scope != nil && scope.MemberParent() != nil; scope = scope.MemberParent() {
		if name := scope.Name(); name != "" {
			names = append(names, name)
		}
	}
	slices.Reverse(names)
	return strings.Join(names, conf.PATHSEP)
}

// AsTypeRef converts a lookup result into a type reference. Only types and
// template bindings denote types.
func AsTypeRef(m MemberAccess) (*TypeRef, bool) {
	switch member := m.(type) {
	case *Binding:
		return member.Value.Copy(), true
	case Type:
		return NewTypeRef(member), true
	default:
		return nil, false
	}
}

func bindTemplate(t Type, parent MemberAccess, tmap TemplateMap) MemberAccess {
	if tt, ok := t.(*TemplateType); ok {
		if value, found := tmap[tt]; found {
			return &Binding{Template: tt, Value: value, parent: parent}
		}
	}
	return t
}

// Name of the bound template parameter.
func (b *Binding) Name() string { return b.Template.Name() }

// MemberParent is the scope that bound the parameter.
func (b *Binding) MemberParent() MemberAccess { return b.parent }

// Members of the bound value.
func (b *Binding) Members(tmap TemplateMap) []MemberAccess {
	return b.Value.Type.Members(mergeTemplateMaps(tmap, b.Value.templateMap()))
}

func (b *Binding) String() string {
	return b.Template.Name() + " = " + b.Value.String()
}
