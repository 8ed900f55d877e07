package types

import (
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tanema/typhon/src/parse"
)

type (
	// TypeRef is a use of a type: the target plus the template arguments and
	// qualifiers written at the use site. A TypeRef never owns its target.
	TypeRef struct {
		Type         Type
		TemplateArgs []*TemplateArg
		Const        bool
		// Var marks a type that was written as var and is left for inference.
		Var    bool
		Source parse.LineInfo
	}
	// TemplateArg is a single template argument, optionally labelled with the
	// name of the parameter it binds.
	TemplateArg struct {
		Label  string
		Value  *TypeRef
		Source parse.LineInfo
	}
	// TemplateMap binds template parameters to concrete references.
	TemplateMap map[*TemplateType]*TypeRef
)

// NewTypeRef creates a plain reference to t.
func NewTypeRef(t Type, args ...*TemplateArg) *TypeRef {
	return &TypeRef{Type: t, TemplateArgs: args, Source: t.Source()}
}

// Arg creates an unlabelled template argument.
func Arg(value *TypeRef) *TemplateArg {
	return &TemplateArg{Value: value, Source: value.Source}
}

// LabeledArg creates a template argument bound to the parameter named label.
func LabeledArg(label string, value *TypeRef) *TemplateArg {
	return &TemplateArg{Label: label, Value: value, Source: value.Source}
}

// Copy is a shallow copy, the target and argument values are shared.
func (ref *TypeRef) Copy() *TypeRef {
	cpy := *ref
	cpy.TemplateArgs = append([]*TemplateArg{}, ref.TemplateArgs...)
	return &cpy
}

// Parents of the target with the reference's template arguments applied.
func (ref *TypeRef) Parents() []*TypeRef {
	tmap := ref.templateMap()
	parents := ref.Type.Parents()
	out := make([]*TypeRef, len(parents))
	for i, parent := range parents {
		out[i] = Substitute(parent, tmap)
	}
	return out
}

// Members of the target with the reference's template arguments applied.
func (ref *TypeRef) Members() []MemberAccess {
	return ref.Type.Members(ref.templateMap())
}

// Equal reports if both references denote the same type with the same template
// bindings. Qualifiers and source are ignored.
func (ref *TypeRef) Equal(other *TypeRef) bool {
	if ref == other {
		return true
	} else if ref == nil || other == nil {
		return false
	}
	return sameType(ref.Type, other.Type) && sameBindings(ref, other)
}

// TemplateMap binds the target's template parameters to the arguments of the
// reference. Labelled arguments bind by name, unlabelled ones fill the
// remaining parameters in order and parameters left over take their default,
// or their bound when there is no default. Arguments that do not fit the
// parameters are reported, the returned map is still complete.
func (ref *TypeRef) TemplateMap() (TemplateMap, error) {
	tmap, err := ref.explicitBindings()
	for _, tt := range ref.Type.Templates() {
		if _, bound := tmap[tt]; !bound {
			tmap[tt] = tt.Value()
		}
	}
	return tmap, err
}

func (ref *TypeRef) templateMap() TemplateMap {
	tmap, _ := ref.TemplateMap()
	return tmap
}

// explicitBindings binds only the parameters that have an argument written.
func (ref *TypeRef) explicitBindings() (TemplateMap, error) {
	templates := ref.Type.Templates()
	tmap := TemplateMap{}
	var errs []string
	positional := []*TemplateArg{}
	for _, arg := range ref.TemplateArgs {
		if arg.Label == "" {
			positional = append(positional, arg)
			continue
		}
		tt := findTemplate(templates, arg.Label)
		if tt == nil {
			errs = append(errs, "unknown template parameter "+arg.Label)
		} else if _, bound := tmap[tt]; bound {
			errs = append(errs, "template parameter "+arg.Label+" bound twice")
		} else {
			tmap[tt] = arg.Value
		}
	}
	for _, tt := range templates {
		if _, bound := tmap[tt]; bound {
			continue
		} else if len(positional) > 0 {
			tmap[tt] = positional[0].Value
			positional = positional[1:]
		}
	}
	if len(positional) > 0 {
		errs = append(errs, strconv.Itoa(len(positional))+" template arguments too many")
	}
	if len(errs) > 0 {
		return tmap, errors.Errorf("%s: %s", ref, strings.Join(errs, ", "))
	}
	return tmap, nil
}

// key identifies the denoted type and its template arguments. Function and
// combo types are keyed by their structure.
func (ref *TypeRef) key() string {
	return ref.keyIn(map[*TemplateType]bool{})
}

// keyIn expands omitted template arguments to their value. A parameter met
// again while its own value is expanded, like T in Comparable<T: Comparable>,
// is written as itself.
func (ref *TypeRef) keyIn(expanding map[*TemplateType]bool) string {
	var b strings.Builder
	switch t := ref.Type.(type) {
	case *FunctionType:
		b.WriteString("fn(" + refKeys(t.ArgTypes, expanding) + ")(" + refKeys(t.RetTypes, expanding) + ")")
	case *ComboType:
		keys := make([]string, len(t.Types))
		for i, constituent := range t.Types {
			keys[i] = constituent.keyIn(expanding)
		}
		slices.Sort(keys)
		b.WriteString("{" + strings.Join(keys, ",") + "}")
	default:
		b.WriteString(strconv.FormatUint(ref.Type.ID(), 10))
	}
	if templates := ref.Type.Templates(); len(templates) > 0 {
		tmap, _ := ref.explicitBindings()
		b.WriteString("<")
		for i, tt := range templates {
			if i > 0 {
				b.WriteString(",")
			}
			if value, bound := tmap[tt]; bound {
				b.WriteString(value.keyIn(expanding))
			} else if expanding[tt] {
				b.WriteString("~" + strconv.FormatUint(tt.ID(), 10))
			} else {
				expanding[tt] = true
				b.WriteString(tt.Value().keyIn(expanding))
				delete(expanding, tt)
			}
		}
		b.WriteString(">")
	}
	return b.String()
}

func (ref *TypeRef) String() string {
	if ref == nil {
		return "<nil>"
	} else if ref.Var {
		return "var"
	}
	str := ref.Type.String()
	if len(ref.TemplateArgs) > 0 {
		str += "<" + fmtTemplateArgs(ref.TemplateArgs) + ">"
	}
	if ref.Const {
		return "const " + str
	}
	return str
}

func (arg *TemplateArg) String() string {
	if arg.Label != "" {
		return arg.Label + ": " + arg.Value.String()
	}
	return arg.Value.String()
}

// Substitute replaces every template parameter bound in tmap, including the
// ones nested in template arguments, function signatures and combo types.
// The reference is returned as is when nothing is replaced.
func Substitute(ref *TypeRef, tmap TemplateMap) *TypeRef {
	if len(tmap) == 0 || ref == nil {
		return ref
	}
	if tt, ok := ref.Type.(*TemplateType); ok {
		if value, found := tmap[tt]; found {
			out := value.Copy()
			out.Const = out.Const || ref.Const
			out.Source = ref.Source
			return out
		}
		return ref
	}
	changed := false
	args := make([]*TemplateArg, len(ref.TemplateArgs))
	for i, arg := range ref.TemplateArgs {
		value := Substitute(arg.Value, tmap)
		changed = changed || value != arg.Value
		args[i] = &TemplateArg{Label: arg.Label, Value: value, Source: arg.Source}
	}
	target := ref.Type
	switch t := ref.Type.(type) {
	case *FunctionType:
		target = t.substitute(tmap)
	case *ComboType:
		target = t.substitute(tmap)
	}
	if !changed && target == ref.Type {
		return ref
	}
	out := ref.Copy()
	out.Type = target
	out.TemplateArgs = args
	return out
}

func substituteAll(refs []*TypeRef, tmap TemplateMap) ([]*TypeRef, bool) {
	changed := false
	out := make([]*TypeRef, len(refs))
	for i, ref := range refs {
		out[i] = Substitute(ref, tmap)
		changed = changed || out[i] != ref
	}
	return out, changed
}

// mergeTemplateMaps applies outer to the values of inner and adds the
// bindings of outer that inner does not shadow.
func mergeTemplateMaps(outer, inner TemplateMap) TemplateMap {
	out := TemplateMap{}
	for k, v := range outer {
		out[k] = v
	}
	for k, v := range inner {
		out[k] = Substitute(v, outer)
	}
	return out
}

// sameBindings compares the template arguments of a and b. An omitted argument
// stands for the parameter's value and is only expanded when the other side
// has one written, so self referencing bounds are never unfolded.
func sameBindings(a, b *TypeRef) bool {
	templates := a.Type.Templates()
	if len(templates) == 0 {
		return true
	}
	amap, _ := a.explicitBindings()
	bmap, _ := b.explicitBindings()
	for _, tt := range templates {
		av, aok := amap[tt]
		bv, bok := bmap[tt]
		switch {
		case aok && bok:
			if !av.Equal(bv) {
				return false
			}
		case aok:
			if !av.Equal(tt.Value()) {
				return false
			}
		case bok:
			if !bv.Equal(tt.Value()) {
				return false
			}
		}
	}
	return true
}

func refsEqual(a, b []*TypeRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func refKeys(refs []*TypeRef, expanding map[*TemplateType]bool) string {
	keys := make([]string, len(refs))
	for i, ref := range refs {
		keys[i] = ref.keyIn(expanding)
	}
	return strings.Join(keys, ",")
}

func findTemplate(templates []*TemplateType, name string) *TemplateType {
	for _, tt := range templates {
		if tt.Name() == name {
			return tt
		}
	}
	return nil
}

func fmtTemplateArgs(args []*TemplateArg) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, ", ")
}
