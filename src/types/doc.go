// Package types contains the model graph of a program: packages, functions,
// fields, annotations and the type hierarchy they reference. It answers the
// questions later stages ask of a resolved graph: can one type be cast to
// another, what is the common type of two branches, and which declared
// signature of a virtual function applies through a given static type.
//
// Types form a graph with multiple parents. Every type except Any reaches Any
// through its parents. Combo types carry a set of types a value must conform
// to and are also the result of a common type computation when two types share
// more than one closest ancestor.
//
// Entities built from source start unresolved and carry raw type expressions.
// The resolve package turns those into TypeRefs. Entities built by the core
// package start resolved.
package types //nolint:revive
