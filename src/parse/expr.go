package parse

import (
	"fmt"
	"strings"
)

type (
	// LineInfo tags a node, a type reference or an error with where it came from
	// in the source. It is carried through resolution untouched.
	LineInfo struct {
		Filename string
		Line     int64
		Column   int64
	}
	// TypeKind discriminates the variants of TypeExpr.
	TypeKind int
	// TypeExpr is a raw, unresolved type expression as written in the source.
	// Only the fields of its Kind are set. A nil *TypeExpr is an absent type.
	TypeExpr struct {
		LineInfo
		Kind TypeKind
		// Lookup is the dotted name of a KindBasic expression.
		Lookup []*Segment
		// Args and Rets are the argument and return types of a KindFunc expression.
		Args []*TypeExpr
		Rets []*TypeExpr
		// Template are the template parameters of a KindFunc expression.
		Template []*TemplateArg
		// Elem is the element type of a KindArray expression.
		Elem *TypeExpr
		// Key and Value are the key and value types of a KindMap expression.
		Key   *TypeExpr
		Value *TypeExpr
		// Inner is the qualified type of a KindConst expression.
		Inner *TypeExpr
	}
	// Segment is a single name in a dotted lookup with its optional template
	// argument clause.
	Segment struct {
		LineInfo
		Name     string
		Template []*TemplateArg
	}
	// TemplateArg is a single, optionally labelled, template argument.
	TemplateArg struct {
		LineInfo
		Label string
		Type  *TypeExpr
	}
)

const (
	// KindBasic is a dotted name lookup like a.b.C<T>.
	KindBasic TypeKind = iota
	// KindFunc is a function signature like function<T>(A, B): R.
	KindFunc
	// KindArray is array sugar like T[].
	KindArray
	// KindMap is map sugar like [K: V].
	KindMap
	// KindVar is the inferred type marker var.
	KindVar
	// KindConst is a const qualified type like const T.
	KindConst
)

func (kind TypeKind) String() string {
	switch kind {
	case KindBasic:
		return "basic"
	case KindFunc:
		return "function"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindVar:
		return "var"
	case KindConst:
		return "const"
	default:
		return "unknown"
	}
}

func (info LineInfo) String() string {
	return fmt.Sprintf("%s:%v:%v", info.Filename, info.Line, info.Column)
}

// Names returns the segment names of a KindBasic expression.
func (expr *TypeExpr) Names() []string {
	names := make([]string, len(expr.Lookup))
	for i, seg := range expr.Lookup {
		names[i] = seg.Name
	}
	return names
}

// LastTemplate returns the template clause attached to the final segment of a
// KindBasic expression, which is the one applied to the resolved type.
func (expr *TypeExpr) LastTemplate() []*TemplateArg {
	if len(expr.Lookup) == 0 {
		return nil
	}
	return expr.Lookup[len(expr.Lookup)-1].Template
}

func (expr *TypeExpr) String() string {
	if expr == nil {
		return "<none>"
	}
	switch expr.Kind {
	case KindBasic:
		parts := make([]string, len(expr.Lookup))
		for i, seg := range expr.Lookup {
			parts[i] = seg.Name + fmtTemplate(seg.Template)
		}
		return strings.Join(parts, ".")
	case KindFunc:
		if len(expr.Rets) == 0 {
			return fmt.Sprintf("function%s(%s)", fmtTemplate(expr.Template), fmtExprs(expr.Args))
		}
		return fmt.Sprintf("function%s(%s): %s", fmtTemplate(expr.Template), fmtExprs(expr.Args), fmtRets(expr.Rets))
	case KindArray:
		return expr.Elem.String() + "[]"
	case KindMap:
		return fmt.Sprintf("[%s: %s]", expr.Key, expr.Value)
	case KindVar:
		return "var"
	case KindConst:
		return "const " + expr.Inner.String()
	default:
		return "<unknown>"
	}
}

func (arg *TemplateArg) String() string {
	if arg.Label != "" {
		return fmt.Sprintf("%s: %s", arg.Label, arg.Type)
	}
	return arg.Type.String()
}

func fmtTemplate(args []*TemplateArg) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func fmtExprs(exprs []*TypeExpr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func fmtRets(rets []*TypeExpr) string {
	if len(rets) == 1 {
		return rets[0].String()
	}
	return "(" + fmtExprs(rets) + ")"
}
