package bytecode

import "github.com/matthew-healy/uplp/internal/ast"

// Compile produces the reversed instruction stream for e, in normal
// (non-tail) mode. Grounded on spec.md §4.5.
func Compile(e ast.Expr) Code {
	c := &compiler{}
	c.push(e, false)
	return c.code
}

// compiler accumulates instructions for a single code stream. Two
// emission modes share the same traversal: normal, and tail (where the
// expression being compiled occupies the return position of the
// enclosing function body, enabling tail-call elimination).
type compiler struct {
	code Code
}

func (c *compiler) emit(op Op) { c.code = append(c.code, op) }

func (c *compiler) snapshot() Code {
	cp := make(Code, len(c.code))
	copy(cp, c.code)
	return cp
}

// push compiles e into c, honouring tail. The emission order below is
// deliberately the reverse of runtime execution order (see package
// doc): whichever sub-expression is appended last runs first.
func (c *compiler) push(e ast.Expr, tail bool) {
	switch e := e.(type) {
	case ast.Literal:
		c.pushLeaf(tail, func() { c.emit(Const{Value: e.Value}) })
	case ast.Var:
		c.pushLeaf(tail, func() { c.emit(Access{Index: e.Index}) })
	case ast.Ascribed:
		c.push(e.Expr, tail)
	case ast.Op:
		c.pushLeaf(tail, func() {
			c.emit(Binary{Op: e.Op})
			c.push(e.Right, false)
			c.push(e.Left, false)
		})
	case ast.IfThenElse:
		c.pushLeaf(tail, func() { c.pushIf(e) })
	case ast.Lambda:
		c.pushLambda(e)
	case ast.App:
		c.pushApp(e, tail)
	case ast.Let:
		c.pushLet(e, tail)
	default:
		panic("bytecode: unknown ast.Expr variant")
	}
}

// pushLeaf runs body, wrapping it in a trailing Return() when in tail
// mode (spec.md §4.5: "All other forms fall back: prepend Return() to
// terminate this function body"). Since emission order is the reverse
// of execution order, "prepend" here means emitted before body, so
// that it executes after.
func (c *compiler) pushLeaf(tail bool, body func()) {
	if tail {
		c.emit(Return{})
	}
	body()
}

func (c *compiler) pushIf(e ast.IfThenElse) {
	thenC := &compiler{}
	thenC.emit(Join{})
	thenC.push(e.Then, false)

	elseC := &compiler{}
	elseC.emit(Join{})
	elseC.push(e.Else, false)

	c.emit(Sel{Then: thenC.code, Else: elseC.code})
	c.push(e.Cond, false)
}

// pushLambda collapses a chain of nested single-argument lambdas into
// one closure taking n arguments, per spec.md §4.5.
func (c *compiler) pushLambda(e ast.Lambda) {
	n := 0
	body := ast.Expr(e)
	for {
		lam, ok := body.(ast.Lambda)
		if !ok {
			break
		}
		n++
		body = lam.Body
	}

	bodyC := &compiler{}
	bodyC.push(body, true)
	for i := 0; i < n; i++ {
		bodyC.emit(Grab{})
	}
	c.emit(Closure{Body: bodyC.code})
}

// pushApp collects a left-spine of curried applications into (f, args)
// and emits the calling convention described in spec.md §4.6: the
// saved return marker sits deepest on the stack, then the arguments
// (the last argument deepest, arg1 just beneath the top), then the
// function value on top (where Apply can pop it directly); Grab, running
// inside the callee, then finds arg1 nearest the top and consumes
// arguments in source order. The emission order below is the reverse of
// runtime order, per this package's general back-to-front storage
// convention, so at runtime the arguments are evaluated from last to
// first and the function expression after all of them. Tail calls drop
// the saved return, reusing the current frame.
func (c *compiler) pushApp(e ast.App, tail bool) {
	f, args := flattenApp(e)

	var remaining Code
	if !tail {
		remaining = c.snapshot()
	}

	c.emit(Apply{})
	c.push(f, false)
	for _, a := range args {
		c.push(a, false)
	}

	if !tail {
		c.emit(PushRetAddr{Code: remaining})
	}
}

func flattenApp(e ast.App) (ast.Expr, []ast.Expr) {
	var args []ast.Expr
	cur := ast.Expr(e)
	for {
		app, ok := cur.(ast.App)
		if !ok {
			break
		}
		args = append(args, app.Arg)
		cur = app.Func
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return cur, args
}

// pushLet compiles both non-recursive and recursive let, per spec.md
// §4.5. The body inherits tail; the binding is always compiled in
// normal mode (a binding is never itself in tail position).
func (c *compiler) pushLet(e ast.Let, tail bool) {
	if e.Recursive {
		c.emit(EndLet{})
		c.push(e.Body, tail)
		c.emit(Update{})
		c.push(e.Binding, false)
		c.emit(Dummy{})
		return
	}
	c.emit(EndLet{})
	c.push(e.Body, tail)
	c.emit(Grab{})
	c.push(e.Binding, false)
}
