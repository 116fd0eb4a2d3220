// Package driver sequences the pipeline end to end: lex → parse →
// scope-check → type-check → compile → evaluate. It is the one place
// that knows about every stage package at once, and the one place that
// lifts a stage's own error type into the uniform Error this package
// exports.
package driver

import (
	"github.com/matthew-healy/uplp/internal/ast"
	"github.com/matthew-healy/uplp/internal/bytecode"
	"github.com/matthew-healy/uplp/internal/interner"
	"github.com/matthew-healy/uplp/internal/parser"
	"github.com/matthew-healy/uplp/internal/scope"
	"github.com/matthew-healy/uplp/internal/typecheck"
	"github.com/matthew-healy/uplp/internal/types"
	"github.com/matthew-healy/uplp/internal/value"
	"github.com/matthew-healy/uplp/internal/vm"
)

// Parsed bundles a source program through parsing and scope checking:
// the named AST (for ast-dump) and the de-Bruijn AST (everything past
// it), plus the interner both were built against.
type Parsed struct {
	Raw  ast.RawExpr
	Expr ast.Expr
	In   *interner.Interner
}

// Parse runs the parser alone, for `uplp ast-dump`: the raw, named AST
// with no scope or type information.
func Parse(source string) (ast.RawExpr, *Error) {
	in := interner.New()
	raw, err := parser.Parse(source, in)
	if err != nil {
		return nil, wrapParse(err)
	}
	return raw, nil
}

// Resolve runs parse and scope-check, for any stage that needs the
// de-Bruijn AST without yet committing to type-checking or evaluation.
func Resolve(source string) (*Parsed, *Error) {
	in := interner.New()
	raw, err := parser.Parse(source, in)
	if err != nil {
		return nil, wrapParse(err)
	}
	expr, err := scope.Check(raw)
	if err != nil {
		return nil, wrapScope(err)
	}
	return &Parsed{Raw: raw, Expr: expr, In: in}, nil
}

// Typecheck runs parse → scope-check → type-check, for `uplp typecheck`.
func Typecheck(source string) (types.Type, *Error) {
	p, derr := Resolve(source)
	if derr != nil {
		return types.Type{}, derr
	}
	t, err := typecheck.Infer(p.Expr)
	if err != nil {
		return types.Type{}, wrapType(err)
	}
	return t, nil
}

// Evaluate runs the full pipeline — parse → scope-check → type-check →
// compile → evaluate — for `uplp eval` and the fixture harness. Per
// spec.md §4.4/§4.6, type-checking always runs before evaluation even
// though its result (beyond well-typedness) is discarded here; an
// ill-typed program never reaches the machine.
func Evaluate(source string) (value.Val, *Error) {
	p, derr := Resolve(source)
	if derr != nil {
		return nil, derr
	}
	if _, err := typecheck.Infer(p.Expr); err != nil {
		return nil, wrapType(err)
	}
	code := bytecode.Compile(p.Expr)
	v, err := vm.New(code).Run()
	if err != nil {
		return nil, wrapEval(err)
	}
	return v, nil
}
