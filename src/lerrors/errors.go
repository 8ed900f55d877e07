// Package lerrors is a unified errors package for type expression parsing and
// type resolution so that they can be formatted in a unified way and collected
// in a unified way.
package lerrors

import (
	"fmt"
	"strings"

	"github.com/tanema/typhon/src/conf"
)

type (
	// ErrorKind is an enum to describe where the error originates from.
	ErrorKind int
	// Error captures all errors raised while parsing and resolving types. It
	// distinguishes between lexer, parser and resolution errors and will format
	// them accordingly.
	Error struct {
		Line     int64
		Column   int64
		Kind     ErrorKind
		Err      error
		Filename string
		// Path is the dotted lookup that failed, one entry per segment.
		Path []string
		// Candidates are the pretty printed entities an ambiguous lookup matched.
		Candidates []string
	}
	// Diagnostics is an append-only collection of errors. Resolution keeps going
	// after every error so that one pass reports everything it can.
	Diagnostics struct {
		items []*Error
	}
)

const (
	// ParserErr is an error that originates from the type expression parser.
	ParserErr ErrorKind = iota
	// LexerErr is an error that originates from the lexer.
	LexerErr
	// AmbiguousErr is raised when a lookup matches more than one type at a single scope level.
	AmbiguousErr
	// NotFoundErr is raised when a lookup exhausts the enclosing scope chain.
	NotFoundErr
	// CycleErr is raised when a type transitively refers to itself as a parent.
	CycleErr
	// TemplateErr is raised when template arguments do not fit the template parameters.
	TemplateErr
)

func (kind ErrorKind) String() string {
	switch kind {
	case ParserErr:
		return "parse"
	case LexerErr:
		return "lex"
	case AmbiguousErr:
		return "ambiguous"
	case NotFoundErr:
		return "not found"
	case CycleErr:
		return "cycle"
	case TemplateErr:
		return "template"
	default:
		return "unknown"
	}
}

func (err *Error) Error() string {
	switch err.Kind {
	case ParserErr:
		return fmt.Sprintf(`Parse Error: %s:%v:%v %v`, err.Filename, err.Line, err.Column, err.Err)
	case LexerErr:
		return fmt.Sprintf("Lex Error: %v", err.Err.Error())
	case AmbiguousErr:
		msg := "ambiguous type " + strings.Join(err.Path, conf.PATHSEP)
		if err.Err != nil {
			msg = err.Err.Error()
		}
		return fmt.Sprintf(
			"Type Error: %s:%v:%v %s, candidates: %s",
			err.Filename,
			err.Line,
			err.Column,
			msg,
			strings.Join(err.Candidates, ", "),
		)
	case NotFoundErr:
		msg := "type " + strings.Join(err.Path, conf.PATHSEP) + " not found"
		if err.Err != nil {
			msg = err.Err.Error()
		}
		return fmt.Sprintf("Type Error: %s:%v:%v %s", err.Filename, err.Line, err.Column, msg)
	case CycleErr, TemplateErr:
		return fmt.Sprintf("Type Error: %s:%v:%v %v", err.Filename, err.Line, err.Column, err.Err)
	default:
		return err.Err.Error()
	}
}

// Unwrap allows errors.Is and errors.As to see the underlying cause.
func (err *Error) Unwrap() error { return err.Err }

// NewDiagnostics creates an empty collection.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{items: []*Error{}}
}

// Add appends an error to the collection.
func (d *Diagnostics) Add(err *Error) {
	d.items = append(d.items, err)
}

// Len is the amount of errors collected so far.
func (d *Diagnostics) Len() int { return len(d.items) }

// HasErrors reports if anything was collected.
func (d *Diagnostics) HasErrors() bool { return len(d.items) > 0 }

// Errors returns a copy of the collected errors in the order they were added.
func (d *Diagnostics) Errors() []*Error {
	out := make([]*Error, len(d.items))
	copy(out, d.items)
	return out
}

// OfKind returns only the errors with the given kind.
func (d *Diagnostics) OfKind(kind ErrorKind) []*Error {
	out := []*Error{}
	for _, err := range d.items {
		if err.Kind == kind {
			out = append(out, err)
		}
	}
	return out
}

func (d *Diagnostics) String() string {
	parts := make([]string, len(d.items))
	for i, err := range d.items {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "\n")
}
