// Package ast defines the two AST representations this system's pipeline
// passes through: the named surface AST (RawExpr, produced by the
// parser) and the de-Bruijn-indexed AST (Expr, produced by the scope
// checker). Grounded in shape on original_source/src/ast.rs, generalized
// to curried single-argument Lambda/App per the Open Question decision
// recorded in DESIGN.md.
package ast

import (
	"fmt"

	"github.com/matthew-healy/uplp/internal/interner"
	"github.com/matthew-healy/uplp/internal/types"
	"github.com/matthew-healy/uplp/internal/value"
	"github.com/matthew-healy/uplp/pkg/token"
)

// BinOp identifies one of the six binary operators of the surface
// grammar.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Eq
	And
)

func (op BinOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Eq:
		return "=="
	case And:
		return "&&"
	default:
		return "?"
	}
}

// RawExpr is the named AST: the parser's direct output. Every variant
// carries a source Position for error reporting: that of its leading
// token, except RawOp (its operator token) and RawAscribed (its ':').
type RawExpr interface {
	rawExpr()
	Pos() token.Position
	String() string
}

// Base carries the source position every RawExpr variant embeds.
// Exported so internal/parser can attach a position when constructing
// nodes outside this package.
type Base struct{ At token.Position }

func (Base) rawExpr()              {}
func (b Base) Pos() token.Position { return b.At }

// NewBase builds a Base anchored at pos.
func NewBase(pos token.Position) Base { return Base{At: pos} }

// RawLiteral is a literal boolean, number, or unit value.
type RawLiteral struct {
	Base
	Value value.Val
}

func (l RawLiteral) String() string { return l.Value.String() }

// RawVar is a reference to an identifier, not yet resolved to a de Bruijn
// index.
type RawVar struct {
	Base
	Name interner.ID
	Text string // retained for error messages and AST dumps
}

func (v RawVar) String() string { return v.Text }

// RawAscribed is a type-annotated expression `e : τ`.
type RawAscribed struct {
	Base
	Expr RawExpr
	Type types.Type
}

func (a RawAscribed) String() string { return fmt.Sprintf("(%s : %s)", a.Expr, a.Type) }

// RawApp is single-argument application.
type RawApp struct {
	Base
	Func RawExpr
	Arg  RawExpr
}

func (a RawApp) String() string { return fmt.Sprintf("(%s %s)", a.Func, a.Arg) }

// RawLambda is a single-argument abstraction with an optional parameter
// type annotation.
type RawLambda struct {
	Base
	Param      interner.ID
	ParamText  string
	Annotation *types.Type
	Body       RawExpr
}

func (l RawLambda) String() string {
	if l.Annotation != nil {
		return fmt.Sprintf("(|%s: %s| %s)", l.ParamText, *l.Annotation, l.Body)
	}
	return fmt.Sprintf("(|%s| %s)", l.ParamText, l.Body)
}

// RawLet is both non-recursive and recursive let; Recursive selects
// between the two rule sets.
type RawLet struct {
	Base
	Recursive bool
	Name      interner.ID
	NameText  string
	Binding   RawExpr
	Body      RawExpr
}

func (l RawLet) String() string {
	kw := "let"
	if l.Recursive {
		kw = "let rec"
	}
	return fmt.Sprintf("(%s %s = %s in %s)", kw, l.NameText, l.Binding, l.Body)
}

// RawIfThenElse is a conditional.
type RawIfThenElse struct {
	Base
	Cond, Then, Else RawExpr
}

func (i RawIfThenElse) String() string {
	return fmt.Sprintf("(if %s then %s else %s)", i.Cond, i.Then, i.Else)
}

// RawOp is a binary operator application.
type RawOp struct {
	Base
	Left  RawExpr
	Op    BinOp
	Right RawExpr
}

func (o RawOp) String() string { return fmt.Sprintf("(%s %s %s)", o.Left, o.Op, o.Right) }
