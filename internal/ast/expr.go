package ast

import (
	"fmt"

	"github.com/matthew-healy/uplp/internal/types"
	"github.com/matthew-healy/uplp/internal/value"
	"github.com/matthew-healy/uplp/pkg/token"
)

// Expr is the de-Bruijn-indexed AST: the scope checker's output and the
// type checker's and compiler's input. No named identifiers remain; every
// Var carries a nonnegative index into the binder stack in effect at that
// point. Grounded on spec.md §3's post-scope-check expression sum type.
// Every node still carries the Position of the named-AST node it was
// scope-checked from, so that internal/typecheck can attach a source
// location to the errors it raises against this AST.
type Expr interface {
	expr()
	Pos() token.Position
	String() string
}

// ExprBase carries the source position every Expr variant embeds.
// Exported so internal/scope can attach a position when constructing
// nodes outside this package.
type ExprBase struct{ At token.Position }

func (ExprBase) expr() {}

func (e ExprBase) Pos() token.Position { return e.At }

// NewExprBase builds the embeddable position-carrying base every Expr
// variant uses, threaded through by internal/scope from the RawExpr node
// it is checking.
func NewExprBase(pos token.Position) ExprBase { return ExprBase{At: pos} }

// Literal is a value of primitive kind.
type Literal struct {
	ExprBase
	Value value.Val
}

func (l Literal) String() string { return l.Value.String() }

// Var is a de Bruijn index.
type Var struct {
	ExprBase
	Index int
}

func (v Var) String() string { return fmt.Sprintf("#%d", v.Index) }

// Ascribed is a type annotation.
type Ascribed struct {
	ExprBase
	Expr Expr
	Type types.Type
}

func (a Ascribed) String() string { return fmt.Sprintf("(%s : %s)", a.Expr, a.Type) }

// App is single-argument application.
type App struct {
	ExprBase
	Func Expr
	Arg  Expr
}

func (a App) String() string { return fmt.Sprintf("(%s %s)", a.Func, a.Arg) }

// Lambda is single-argument abstraction with an optional parameter
// annotation.
type Lambda struct {
	ExprBase
	Annotation *types.Type
	Body       Expr
}

func (l Lambda) String() string {
	if l.Annotation != nil {
		return fmt.Sprintf("(\\: %s -> %s)", *l.Annotation, l.Body)
	}
	return fmt.Sprintf("(\\ -> %s)", l.Body)
}

// Let is both non-recursive and recursive let.
type Let struct {
	ExprBase
	Recursive bool
	Binding   Expr
	Body      Expr
}

func (l Let) String() string {
	kw := "let"
	if l.Recursive {
		kw = "let rec"
	}
	return fmt.Sprintf("(%s = %s in %s)", kw, l.Binding, l.Body)
}

// IfThenElse is a conditional.
type IfThenElse struct {
	ExprBase
	Cond, Then, Else Expr
}

func (i IfThenElse) String() string {
	return fmt.Sprintf("(if %s then %s else %s)", i.Cond, i.Then, i.Else)
}

// Op is a binary operator application.
type Op struct {
	ExprBase
	Left  Expr
	Op    BinOp
	Right Expr
}

func (o Op) String() string { return fmt.Sprintf("(%s %s %s)", o.Left, o.Op, o.Right) }
