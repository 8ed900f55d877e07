package types

import (
	"io"
	"log/slog"

	"github.com/tanema/typhon/src/lerrors"
	"github.com/tanema/typhon/src/parse"
)

type (
	// Status is the resolution state of an entity.
	Status int
	// Program owns a model graph. It hands out the stable handles entities are
	// identified by, holds the core package every scope chain ends in, and
	// collects the diagnostics raised while resolving.
	Program struct {
		Core   *CorePackage
		Errors *lerrors.Diagnostics
		Logger *slog.Logger
		nextID uint64
	}
	// entity is the state shared by every node of the model graph.
	entity struct {
		prog   *Program
		id     uint64
		source parse.LineInfo
		annots []*Annotation
		status Status
	}
)

const (
	// Unresolved entities still hold raw type expressions.
	Unresolved Status = iota
	// InProgress entities are being resolved. Meeting one again means a cycle.
	InProgress
	// Resolved entities have every TypeRef populated.
	Resolved
)

func (s Status) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case InProgress:
		return "in progress"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// NewProgram creates an empty program with its core package bootstrapped. A nil
// logger discards everything.
func NewProgram(logger *slog.Logger) *Program {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	prog := &Program{
		Errors: lerrors.NewDiagnostics(),
		Logger: logger,
	}
	prog.Core = newCorePackage(prog)
	return prog
}

// Any is a fresh reference to the core Any type.
func (prog *Program) Any() *TypeRef {
	return NewTypeRef(prog.Core.TypeAny)
}

func (prog *Program) newEntity(source parse.LineInfo) entity {
	prog.nextID++
	return entity{
		prog:   prog,
		id:     prog.nextID,
		source: source,
		annots: []*Annotation{},
		status: Unresolved,
	}
}

// ID is the stable handle of the entity within its program.
func (e *entity) ID() uint64 { return e.id }

// Program is the program the entity belongs to.
func (e *entity) Program() *Program { return e.prog }

// Source is where the entity was declared.
func (e *entity) Source() parse.LineInfo { return e.source }

// Status is the resolution state of the entity.
func (e *entity) Status() Status { return e.status }

// SetStatus is used by the resolver to move the entity through resolution.
func (e *entity) SetStatus(s Status) { e.status = s }

// Annotations attached to the entity.
func (e *entity) Annotations() []*Annotation { return e.annots }

// AddAnnotation attaches an annotation to the entity.
func (e *entity) AddAnnotation(a *Annotation) { e.annots = append(e.annots, a) }

// HasAnnotation reports if an annotation bound to def is attached.
func (e *entity) HasAnnotation(def *AnnotationDefinition) bool {
	for _, a := range e.annots {
		if a.Definition() == def {
			return true
		}
	}
	return false
}

func (e *entity) markAsLibrary() { e.status = Resolved }
