// Package scope resolves the parser's named AST (ast.RawExpr) into the
// de-Bruijn-indexed AST (ast.Expr) the type checker and compiler consume.
// Grounded on spec.md §4.3 and, for the threaded-stack traversal shape,
// original_source/src/scope.rs.
package scope

import (
	"fmt"

	"github.com/matthew-healy/uplp/internal/ast"
	"github.com/matthew-healy/uplp/internal/interner"
	"github.com/matthew-healy/uplp/pkg/token"
)

// Error is the scope checker's sole error: a reference to an identifier
// with no enclosing binder. spec.md §7 classifies this as a member of
// the Parse error family, not its own family, so internal/driver wraps
// it alongside *parser.SyntaxError rather than giving it a sibling
// "Scope" stage.
type Error struct {
	Name interner.ID
	Text string
	Pos  token.Position
}

func (e *Error) Error() string { return fmt.Sprintf("unbound identifier %q", e.Text) }

func unbound(id interner.ID, text string, pos token.Position) *Error {
	return &Error{Name: id, Text: text, Pos: pos}
}

// Check resolves e against an empty initial scope, returning the
// de-Bruijn AST or the first unbound identifier encountered.
func Check(e ast.RawExpr) (ast.Expr, error) {
	c := &checker{}
	return c.check(e)
}

// checker threads a stack of identifiers, innermost last, through the
// traversal. Resolving a Var scans from the top (the end of the slice)
// down, so the position found from the top is exactly the de Bruijn
// index.
type checker struct {
	scope []interner.ID
}

func (c *checker) push(id interner.ID) {
	c.scope = append(c.scope, id)
}

func (c *checker) pop() {
	c.scope = c.scope[:len(c.scope)-1]
}

func (c *checker) resolve(id interner.ID) (int, bool) {
	for i := len(c.scope) - 1; i >= 0; i-- {
		if c.scope[i] == id {
			return len(c.scope) - 1 - i, true
		}
	}
	return 0, false
}

func (c *checker) check(e ast.RawExpr) (ast.Expr, error) {
	switch e := e.(type) {
	case ast.RawLiteral:
		return ast.Literal{ExprBase: ast.NewExprBase(e.Pos()), Value: e.Value}, nil
	case ast.RawVar:
		idx, ok := c.resolve(e.Name)
		if !ok {
			return nil, unbound(e.Name, e.Text, e.Pos())
		}
		return ast.Var{ExprBase: ast.NewExprBase(e.Pos()), Index: idx}, nil
	case ast.RawAscribed:
		inner, err := c.check(e.Expr)
		if err != nil {
			return nil, err
		}
		return ast.Ascribed{ExprBase: ast.NewExprBase(e.Pos()), Expr: inner, Type: e.Type}, nil
	case ast.RawApp:
		f, err := c.check(e.Func)
		if err != nil {
			return nil, err
		}
		a, err := c.check(e.Arg)
		if err != nil {
			return nil, err
		}
		return ast.App{ExprBase: ast.NewExprBase(e.Pos()), Func: f, Arg: a}, nil
	case ast.RawLambda:
		c.push(e.Param)
		body, err := c.check(e.Body)
		c.pop()
		if err != nil {
			return nil, err
		}
		return ast.Lambda{ExprBase: ast.NewExprBase(e.Pos()), Annotation: e.Annotation, Body: body}, nil
	case ast.RawLet:
		return c.checkLet(e)
	case ast.RawIfThenElse:
		cond, err := c.check(e.Cond)
		if err != nil {
			return nil, err
		}
		then, err := c.check(e.Then)
		if err != nil {
			return nil, err
		}
		els, err := c.check(e.Else)
		if err != nil {
			return nil, err
		}
		return ast.IfThenElse{ExprBase: ast.NewExprBase(e.Pos()), Cond: cond, Then: then, Else: els}, nil
	case ast.RawOp:
		l, err := c.check(e.Left)
		if err != nil {
			return nil, err
		}
		r, err := c.check(e.Right)
		if err != nil {
			return nil, err
		}
		return ast.Op{ExprBase: ast.NewExprBase(e.Pos()), Left: l, Op: e.Op, Right: r}, nil
	default:
		return nil, fmt.Errorf("scope: unknown ast.RawExpr variant %T", e)
	}
}

// checkLet implements both rule sets of spec.md §4.3: non-recursive let
// checks its binding before the name is in scope; recursive let pushes
// the name first so the binding may refer to itself.
func (c *checker) checkLet(e ast.RawLet) (ast.Expr, error) {
	if e.Recursive {
		c.push(e.Name)
		binding, err := c.check(e.Binding)
		if err != nil {
			c.pop()
			return nil, err
		}
		body, err := c.check(e.Body)
		c.pop()
		if err != nil {
			return nil, err
		}
		return ast.Let{ExprBase: ast.NewExprBase(e.Pos()), Recursive: true, Binding: binding, Body: body}, nil
	}

	binding, err := c.check(e.Binding)
	if err != nil {
		return nil, err
	}
	c.push(e.Name)
	body, err := c.check(e.Body)
	c.pop()
	if err != nil {
		return nil, err
	}
	return ast.Let{ExprBase: ast.NewExprBase(e.Pos()), Recursive: false, Binding: binding, Body: body}, nil
}
