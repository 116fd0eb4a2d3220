// Package types defines the type language and the ordered typing context
// of the bidirectional checker. Grounded on original_source/src/typ/mod.rs
// (Type, Primitive, Existential) and original_source/src/typ/ctx.rs (the
// ordered context itself, in ctx.go alongside this file).
package types

import "fmt"

// Primitive is one of the three base types.
type Primitive int

const (
	Bool Primitive = iota
	Num
	Unit
)

func (p Primitive) String() string {
	switch p {
	case Bool:
		return "Bool"
	case Num:
		return "Num"
	case Unit:
		return "Unit"
	default:
		return "?"
	}
}

// Existential is a fresh metavariable introduced during inference,
// standing for an as-yet-unknown type.
type Existential int

func (e Existential) String() string { return fmt.Sprintf("t%d", int(e)) }

// Type is Primitive(P) | Arrow(τ1, τ2) | Existential(α). There are no
// universally quantified types (spec.md §3).
type Type struct {
	kind kind
	prim Primitive
	from *Type
	to   *Type
	ext  Existential
}

type kind int

const (
	kPrimitive kind = iota
	kArrow
	kExistential
)

// NewPrimitive builds a primitive type.
func NewPrimitive(p Primitive) Type { return Type{kind: kPrimitive, prim: p} }

// NewArrow builds a function type from -> to.
func NewArrow(from, to Type) Type { return Type{kind: kArrow, from: &from, to: &to} }

// NewExistential builds a reference to existential α.
func NewExistential(a Existential) Type { return Type{kind: kExistential, ext: a} }

// IsPrimitive reports whether this type is Primitive(p) for some p, and
// returns it.
func (t Type) IsPrimitive() (Primitive, bool) {
	if t.kind == kPrimitive {
		return t.prim, true
	}
	return 0, false
}

// IsArrow reports whether this type is Arrow(from, to), and returns both
// halves.
func (t Type) IsArrow() (from, to Type, ok bool) {
	if t.kind == kArrow {
		return *t.from, *t.to, true
	}
	return Type{}, Type{}, false
}

// IsExistential reports whether this type is Existential(α), and returns
// α.
func (t Type) IsExistential() (Existential, bool) {
	if t.kind == kExistential {
		return t.ext, true
	}
	return 0, false
}

// Equal is syntactic type equality (no solving): used to short-circuit
// subtype checks once two types are already identical.
func (t Type) Equal(other Type) bool {
	if t.kind != other.kind {
		return false
	}
	switch t.kind {
	case kPrimitive:
		return t.prim == other.prim
	case kArrow:
		return t.from.Equal(*other.from) && t.to.Equal(*other.to)
	case kExistential:
		return t.ext == other.ext
	}
	return false
}

func (t Type) String() string {
	switch t.kind {
	case kPrimitive:
		return t.prim.String()
	case kArrow:
		return fmt.Sprintf("%s -> %s", arrowOperand(*t.from), t.to)
	case kExistential:
		return t.ext.String()
	}
	return "?"
}

// arrowOperand parenthesises an arrow type appearing on the left of
// another arrow, since -> is right-associative (spec.md §6).
func arrowOperand(t Type) string {
	if _, _, ok := t.IsArrow(); ok {
		return "(" + t.String() + ")"
	}
	return t.String()
}
