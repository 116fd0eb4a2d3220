package types

import (
	"fmt"

	"github.com/matthew-healy/uplp/pkg/token"
)

// Error is the type-checker's error taxonomy (spec.md §4.4/§7):
// IllFormedType, Mismatch, InvalidApplication, UnboundVariable, Internal.
// Pos is the position of the source expression the error was raised
// against; it is filled in by Annotate, which internal/typecheck calls as
// an error returns up through synth/check, not by the unification internals here,
// since Ctx has no notion of "the expression currently being checked".
type Error struct {
	Kind        ErrorKind
	IllFormed   Type
	Got, Expect Type
	Invalid     Type
	VarIndex    int
	Msg         string
	Pos         token.Position
}

// ErrorKind discriminates the members of Error.
type ErrorKind int

const (
	ErrIllFormedType ErrorKind = iota
	ErrMismatch
	ErrInvalidApplication
	ErrUnboundVariable
	ErrInternal
)

func (e *Error) Error() string {
	switch e.Kind {
	case ErrIllFormedType:
		return fmt.Sprintf("ill-formed type: %s", e.IllFormed)
	case ErrMismatch:
		return fmt.Sprintf("type mismatch: got %s, expected %s", e.Got, e.Expect)
	case ErrInvalidApplication:
		return fmt.Sprintf("invalid application of non-function type %s", e.Invalid)
	case ErrUnboundVariable:
		return fmt.Sprintf("unbound variable at index %d", e.VarIndex)
	case ErrInternal:
		return fmt.Sprintf("internal type-checker error: %s", e.Msg)
	default:
		return "unknown type error"
	}
}

func illFormed(t Type) *Error        { return &Error{Kind: ErrIllFormedType, IllFormed: t} }
func mismatch(got, want Type) *Error { return &Error{Kind: ErrMismatch, Got: got, Expect: want} }
func unboundVar(i int) *Error        { return &Error{Kind: ErrUnboundVariable, VarIndex: i} }
func internal(msg string, args ...any) *Error {
	return &Error{Kind: ErrInternal, Msg: fmt.Sprintf(msg, args...)}
}

// NewMismatchError builds a Mismatch error: got does not match expected.
func NewMismatchError(got, want Type) *Error { return mismatch(got, want) }

// NewInvalidApplicationError builds an InvalidApplication error: t was
// applied to an argument but is not a function type.
func NewInvalidApplicationError(t Type) *Error { return &Error{Kind: ErrInvalidApplication, Invalid: t} }

// NewInternalError builds an Internal error: an invariant was violated.
func NewInternalError(msg string, args ...any) *Error { return internal(msg, args...) }

// Annotate records pos as the origin of err, if err is an *Error that
// doesn't already carry one. Called by internal/typecheck at each
// synth/check call site as an error returns from a subexpression. The
// first call wins, so the position left on the error is that of the
// innermost expression whose synth/check the failure returned through;
// enclosing expressions do not overwrite it, and the unification steps
// that produce the error record no position of their own.
func Annotate(err error, pos token.Position) error {
	if te, ok := err.(*Error); ok && te.Pos == (token.Position{}) {
		te.Pos = pos
	}
	return err
}

// elemKind discriminates the three kinds of ordered-context element.
type elemKind int

const (
	elemTypedVariable elemKind = iota
	elemExistential
	elemSolved
)

// Element is one entry of the ordered typing context: a typed variable
// binding, an unsolved existential, or a solved existential. Grounded on
// original_source/src/typ/ctx.rs's `Element` enum.
//
// Adaptation note (see DESIGN.md): the original keys TypedVariable by
// interner id because it type-checks the *named* AST directly. spec.md's
// pipeline instead type-checks the de-Bruijn AST, so TypedVariable here
// carries no identifier at all — Var(i) resolves against the context by
// counting TypedVariable elements from the back (skipping
// Existential/Solved elements along the way), mirroring exactly how
// internal/env resolves the same index against binding layers.
type Element struct {
	kind elemKind
	typ  Type
	ext  Existential
}

// TypedVariable constructs a context element binding the next de Bruijn
// slot to typ.
func TypedVariable(typ Type) Element { return Element{kind: elemTypedVariable, typ: typ} }

// UnsolvedExistential constructs a context element marking existential a
// as unsolved.
func UnsolvedExistential(a Existential) Element { return Element{kind: elemExistential, ext: a} }

// SolvedExistential constructs a context element recording that a has
// been solved to typ.
func SolvedExistential(a Existential, typ Type) Element {
	return Element{kind: elemSolved, ext: a, typ: typ}
}

func (e Element) equal(other Element) bool {
	if e.kind != other.kind {
		return false
	}
	switch e.kind {
	case elemTypedVariable:
		return e.typ.Equal(other.typ)
	case elemExistential:
		return e.ext == other.ext
	case elemSolved:
		return e.ext == other.ext && e.typ.Equal(other.typ)
	}
	return false
}

func (e Element) String() string {
	switch e.kind {
	case elemTypedVariable:
		return fmt.Sprintf(": %s", e.typ)
	case elemExistential:
		return e.ext.String()
	case elemSolved:
		return fmt.Sprintf("%s = %s", e.ext, e.typ)
	}
	return "?"
}

// Ctx is the ordered typing context: append to the right, search from
// the right. It is threaded functionally (every operation returns a new
// Ctx) so that a failed branch never mutates a context another branch
// still holds.
type Ctx struct {
	elements []Element
}

// NewCtx returns the empty context.
func NewCtx() Ctx { return Ctx{} }

// Add appends element to the right of the context.
func (c Ctx) Add(e Element) Ctx {
	next := make([]Element, len(c.elements), len(c.elements)+1)
	copy(next, c.elements)
	return Ctx{elements: append(next, e)}
}

func (c Ctx) firstAppearanceFromBack(e Element) int {
	for i := len(c.elements) - 1; i >= 0; i-- {
		if c.elements[i].equal(e) {
			return i
		}
	}
	return -1
}

// SplitAt returns (left, right) where right begins with element, the
// first occurrence searching from the back.
func (c Ctx) SplitAt(e Element) (left, right Ctx, err error) {
	i := c.firstAppearanceFromBack(e)
	if i < 0 {
		return Ctx{}, Ctx{}, internal("split_at called with non-existent element %s", e)
	}
	l := make([]Element, i)
	copy(l, c.elements[:i])
	r := make([]Element, len(c.elements)-i)
	copy(r, c.elements[i:])
	return Ctx{elements: l}, Ctx{elements: r}, nil
}

// InsertInPlace replaces the first (from the back) occurrence of element
// with replacements, in place.
func (c Ctx) InsertInPlace(e Element, replacements ...Element) (Ctx, error) {
	i := c.firstAppearanceFromBack(e)
	if i < 0 {
		return Ctx{}, internal("insert_in_place called with non-existent element %s", e)
	}
	next := make([]Element, 0, len(c.elements)-1+len(replacements))
	next = append(next, c.elements[:i]...)
	next = append(next, replacements...)
	next = append(next, c.elements[i+1:]...)
	return Ctx{elements: next}, nil
}

// Drop truncates the context to everything strictly before the first
// (from the back) occurrence of element.
func (c Ctx) Drop(e Element) (Ctx, error) {
	i := c.firstAppearanceFromBack(e)
	if i < 0 {
		return Ctx{}, internal("drop called with non-existent element %s", e)
	}
	next := make([]Element, i)
	copy(next, c.elements[:i])
	return Ctx{elements: next}, nil
}

// GetSolved returns the solution for a, if any, searching from the back.
func (c Ctx) GetSolved(a Existential) (Type, bool) {
	for i := len(c.elements) - 1; i >= 0; i-- {
		if c.elements[i].kind == elemSolved && c.elements[i].ext == a {
			return c.elements[i].typ, true
		}
	}
	return Type{}, false
}

// HasExistential reports whether a appears as an unsolved existential.
func (c Ctx) HasExistential(a Existential) bool {
	for _, e := range c.elements {
		if e.kind == elemExistential && e.ext == a {
			return true
		}
	}
	return false
}

// GetAnnotation resolves de Bruijn index i against the TypedVariable
// elements of the context, counting from the back (i=0 is the innermost
// binding), per the adaptation note on Element above.
func (c Ctx) GetAnnotation(i int) (Type, error) {
	count := 0
	for j := len(c.elements) - 1; j >= 0; j-- {
		if c.elements[j].kind == elemTypedVariable {
			if count == i {
				return c.elements[j].typ, nil
			}
			count++
		}
	}
	return Type{}, unboundVar(i)
}

// CheckTypeWellFormed reports whether t is well-formed under c (spec.md
// §3's Types invariant).
func (c Ctx) CheckTypeWellFormed(t Type) error {
	if _, ok := t.IsPrimitive(); ok {
		return nil
	}
	if a, ok := t.IsExistential(); ok {
		if c.HasExistential(a) {
			return nil
		}
		if _, ok := c.GetSolved(a); ok {
			return nil
		}
		return illFormed(t)
	}
	if from, to, ok := t.IsArrow(); ok {
		if err := c.CheckTypeWellFormed(from); err != nil {
			return err
		}
		return c.CheckTypeWellFormed(to)
	}
	return illFormed(t)
}

// Apply replaces every Existential(α) in t with its solution in c,
// transitively, leaving unsolved existentials untouched (spec.md §4.4's
// finalisation step: "unsolved existentials remaining in the result are
// permitted").
func (c Ctx) Apply(t Type) Type {
	if p, ok := t.IsPrimitive(); ok {
		return NewPrimitive(p)
	}
	if from, to, ok := t.IsArrow(); ok {
		return NewArrow(c.Apply(from), c.Apply(to))
	}
	if a, ok := t.IsExistential(); ok {
		if solved, ok := c.GetSolved(a); ok {
			return c.Apply(solved)
		}
		return t
	}
	return t
}

func (c Ctx) String() string {
	s := "["
	for i, e := range c.elements {
		if i != 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + "]"
}
