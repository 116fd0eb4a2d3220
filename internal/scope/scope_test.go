package scope

import (
	"testing"

	"github.com/matthew-healy/uplp/internal/ast"
	"github.com/matthew-healy/uplp/internal/interner"
	"github.com/matthew-healy/uplp/internal/value"
)

func rawVar(in *interner.Interner, name string) ast.RawVar {
	return ast.RawVar{Name: in.Intern(name), Text: name}
}

func TestCheckResolvesBoundIdentifiers(t *testing.T) {
	in := interner.New()

	tests := []struct {
		name string
		expr ast.RawExpr
		want ast.Expr
	}{
		{
			name: "literal",
			expr: ast.RawLiteral{Value: value.Num(1)},
			want: ast.Literal{Value: value.Num(1)},
		},
		{
			name: "outer lambda param counted past inner binder",
			// |x| |y| x  ->  index 1 (y is innermost, x one out)
			expr: ast.RawLambda{
				Param: in.Intern("x"),
				Body: ast.RawLambda{
					Param: in.Intern("y"),
					Body:  rawVar(in, "x"),
				},
			},
			want: ast.Lambda{Body: ast.Lambda{Body: ast.Var{Index: 1}}},
		},
		{
			name: "lambda param resolves to index 0",
			// |x| x -> index 0
			expr: ast.RawLambda{Param: in.Intern("x"), Body: rawVar(in, "x")},
			want: ast.Lambda{Body: ast.Var{Index: 0}},
		},
		{
			name: "non-recursive let binds its name for the body",
			// let x = 1 in x  ->  binding compiles in the outer scope, body sees index 0
			expr: ast.RawLet{
				Name:    in.Intern("x"),
				Binding: ast.RawLiteral{Value: value.Num(1)},
				Body:    rawVar(in, "x"),
			},
			want: ast.Let{Binding: ast.Literal{Value: value.Num(1)}, Body: ast.Var{Index: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Check(tt.expr)
			if err != nil {
				t.Fatalf("Check() returned error: %v", err)
			}
			if got.String() != tt.want.String() {
				t.Errorf("Check() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCheckRecursiveLetSeesItself(t *testing.T) {
	in := interner.New()
	// let rec f = f in f  ->  both occurrences resolve to index 0
	expr := ast.RawLet{
		Recursive: true,
		Name:      in.Intern("f"),
		Binding:   rawVar(in, "f"),
		Body:      rawVar(in, "f"),
	}

	got, err := Check(expr)
	if err != nil {
		t.Fatalf("Check() returned error: %v", err)
	}
	want := ast.Let{Recursive: true, Binding: ast.Var{Index: 0}, Body: ast.Var{Index: 0}}
	if got.String() != want.String() {
		t.Errorf("Check() = %s, want %s", got, want)
	}
}

func TestCheckUnboundIdentifier(t *testing.T) {
	in := interner.New()
	_, err := Check(rawVar(in, "nope"))
	if err == nil {
		t.Fatal("Check() returned no error for an unbound identifier")
	}
	var scopeErr *Error
	if se, ok := err.(*Error); ok {
		scopeErr = se
	} else {
		t.Fatalf("Check() returned error of type %T, want *Error", err)
	}
	if scopeErr.Text != "nope" {
		t.Errorf("Error.Text = %q, want %q", scopeErr.Text, "nope")
	}
}

func TestCheckOpDescendsIntoBothSides(t *testing.T) {
	in := interner.New()
	expr := ast.RawLambda{
		Param: in.Intern("x"),
		Body: ast.RawOp{
			Left:  rawVar(in, "x"),
			Op:    ast.Add,
			Right: ast.RawLiteral{Value: value.Num(2)},
		},
	}

	got, err := Check(expr)
	if err != nil {
		t.Fatalf("Check() returned error: %v", err)
	}
	want := ast.Lambda{Body: ast.Op{Left: ast.Var{Index: 0}, Op: ast.Add, Right: ast.Literal{Value: value.Num(2)}}}
	if got.String() != want.String() {
		t.Errorf("Check() = %s, want %s", got, want)
	}
}

func TestCheckIfThenElsePropagatesErrorsFromEachBranch(t *testing.T) {
	in := interner.New()
	cond := ast.RawLiteral{Value: value.Bool(true)}
	okBranch := ast.RawLiteral{Value: value.Num(1)}

	tests := []struct {
		name string
		expr ast.RawExpr
	}{
		{"bad condition", ast.RawIfThenElse{Cond: rawVar(in, "nope1"), Then: okBranch, Else: okBranch}},
		{"bad then", ast.RawIfThenElse{Cond: cond, Then: rawVar(in, "nope2"), Else: okBranch}},
		{"bad else", ast.RawIfThenElse{Cond: cond, Then: okBranch, Else: rawVar(in, "nope3")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Check(tt.expr); err == nil {
				t.Fatal("Check() returned no error for an unbound identifier in a branch")
			}
		})
	}
}
