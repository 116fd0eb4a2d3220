// Package vm is the abstract machine: it runs the reversed instruction
// stream package bytecode produces against a layered environment of
// runtime values. Grounded on original_source/src/vm/mod.rs's
// VirtualMachine and spec.md §4.6.
package vm

import (
	"github.com/matthew-healy/uplp/internal/ast"
	"github.com/matthew-healy/uplp/internal/bytecode"
	"github.com/matthew-healy/uplp/internal/env"
	"github.com/matthew-healy/uplp/internal/value"
)

// Closure is a function value: a code body paired with the environment
// it closed over at the point the Closure instruction ran. Defined
// here rather than in package value so that value can stay a leaf
// package (see value.ValMarker's doc comment).
type Closure struct {
	value.ValMarker
	Body bytecode.Code
	Env  *env.Env[value.Val]
}

func (Closure) String() string { return "<closure>" }

// markerKind discriminates the four shapes a stack entry can take.
type markerKind int

const (
	markVal markerKind = iota
	markCode
	markEnv
	markAppDelim
)

// marker is one entry of the machine's auxiliary stack: a value, a
// saved code continuation, a saved environment, or a call-boundary
// delimiter. Grouped as one struct (rather than an interface) since the
// machine's hot loop inspects and branches on the stack shape
// constantly.
type marker struct {
	kind markerKind
	val  value.Val
	code bytecode.Code
	env  *env.Env[value.Val]
}

// VM is the abstract machine's full state: the remaining instructions,
// the current environment, and the auxiliary stack.
type VM struct {
	code  bytecode.Code
	env   *env.Env[value.Val]
	stack []marker
}

// New constructs a machine ready to run code against an empty top-level
// environment.
func New(code bytecode.Code) *VM {
	return &VM{code: code, env: env.New[value.Val]()}
}

// Run executes until code is exhausted, returning the single remaining
// value, or an error from the Evaluation family (spec.md §7).
func (m *VM) Run() (value.Val, error) {
	for len(m.code) > 0 {
		op := m.code[len(m.code)-1]
		m.code = m.code[:len(m.code)-1]
		if err := m.step(op); err != nil {
			return nil, err
		}
	}
	return m.finalValue()
}

// Snapshot is a pretty-printable view of the machine's state immediately
// before an instruction executes: the remaining code and the contents of
// the auxiliary stack, with saved environments and call delimiters
// rendered as placeholders rather than deep-printed. Exposed so the CLI's
// --trace flag can render it with its own pretty-printer rather than this
// package taking a dependency on one.
type Snapshot struct {
	Code  bytecode.Code
	Stack []any
}

func (m *VM) snapshot() Snapshot {
	stack := make([]any, len(m.stack))
	for i, mk := range m.stack {
		switch mk.kind {
		case markVal:
			stack[i] = mk.val
		case markCode:
			stack[i] = mk.code
		case markEnv:
			stack[i] = "<env>"
		case markAppDelim:
			stack[i] = "<appDelim>"
		}
	}
	return Snapshot{Code: m.code, Stack: stack}
}

// Trace runs to completion like Run, calling observe with the instruction
// about to execute and a snapshot of the state it executes against,
// immediately before each dispatch.
func (m *VM) Trace(observe func(op bytecode.Op, snap Snapshot)) (value.Val, error) {
	for len(m.code) > 0 {
		op := m.code[len(m.code)-1]
		m.code = m.code[:len(m.code)-1]
		if observe != nil {
			observe(op, m.snapshot())
		}
		if err := m.step(op); err != nil {
			return nil, err
		}
	}
	return m.finalValue()
}

func (m *VM) finalValue() (value.Val, error) {
	if len(m.stack) != 1 {
		return nil, internalf("expected exactly one value on the stack at program end, found %d", len(m.stack))
	}
	if m.stack[0].kind != markVal {
		return nil, internalf("expected a value at program end, found something else")
	}
	return m.stack[0].val, nil
}

func (m *VM) step(op bytecode.Op) error {
	switch op := op.(type) {
	case bytecode.Const:
		m.pushVal(op.Value)
		return nil
	case bytecode.Access:
		v, ok := m.env.Lookup(op.Index)
		if !ok {
			return internalf("access to unbound variable at index %d", op.Index)
		}
		m.pushVal(v)
		return nil
	case bytecode.Binary:
		return m.stepBinary(op.Op)
	case bytecode.Closure:
		m.pushVal(Closure{Body: op.Body, Env: m.env.Clone()})
		return nil
	case bytecode.Apply:
		return m.stepApply()
	case bytecode.PushRetAddr:
		m.pushEnv(m.env.Clone())
		m.pushCode(op.Code)
		m.pushAppDelim()
		return nil
	case bytecode.Grab:
		return m.stepGrab()
	case bytecode.Return:
		return m.stepReturn()
	case bytecode.Dummy:
		m.env.Bind(value.Dummy{})
		return nil
	case bytecode.Update:
		v, err := m.forcePopVal()
		if err != nil {
			return err
		}
		if !m.env.UpdateFirstMatch(v, isDummy) {
			return internalf("update: no dummy slot awaiting this binding")
		}
		return nil
	case bytecode.EndLet:
		m.env.Unbind()
		return nil
	case bytecode.Sel:
		return m.stepSel(op)
	case bytecode.Join:
		return m.stepJoin()
	default:
		return internalf("unrecognised opcode %T", op)
	}
}

func isDummy(v value.Val) bool {
	_, ok := v.(value.Dummy)
	return ok
}

func (m *VM) stepBinary(op ast.BinOp) error {
	r, err := m.forcePopVal()
	if err != nil {
		return err
	}
	l, err := m.forcePopVal()
	if err != nil {
		return err
	}

	switch op {
	case ast.Add, ast.Sub, ast.Mul, ast.Div:
		ln, lok := l.(value.Num)
		rn, rok := r.(value.Num)
		if !lok || !rok {
			return internalf("binary %s applied to non-numeric operands", op)
		}
		switch op {
		case ast.Add:
			m.pushVal(ln + rn)
		case ast.Sub:
			m.pushVal(ln - rn)
		case ast.Mul:
			m.pushVal(ln * rn)
		case ast.Div:
			if rn == 0 {
				return divisionByZero()
			}
			m.pushVal(ln / rn)
		}
		return nil
	case ast.Eq:
		eq, err := valuesEqual(l, r)
		if err != nil {
			return err
		}
		m.pushVal(value.Bool(eq))
		return nil
	case ast.And:
		lb, lok := l.(value.Bool)
		rb, rok := r.(value.Bool)
		if !lok || !rok {
			return internalf("&& applied to non-boolean operands")
		}
		m.pushVal(value.Bool(lb && rb))
		return nil
	default:
		return internalf("unrecognised binary operator %s", op)
	}
}

// valuesEqual compares l and r. Only a closure on both sides is an
// error (closures have no well-defined equality at all); every other
// pairing, including a mismatched kind like Bool vs. Num, compares
// false rather than erroring.
func valuesEqual(l, r value.Val) (bool, error) {
	_, lClosure := l.(Closure)
	_, rClosure := r.(Closure)
	if lClosure && rClosure {
		return false, illegalEquality()
	}
	if lClosure || rClosure {
		return false, nil
	}
	switch lv := l.(type) {
	case value.Bool:
		rv, ok := r.(value.Bool)
		return ok && lv == rv, nil
	case value.Num:
		rv, ok := r.(value.Num)
		return ok && lv == rv, nil
	case value.Unit:
		_, ok := r.(value.Unit)
		return ok, nil
	default:
		return false, internalf("equality on an unsupported value kind")
	}
}

// stepApply pops the function value and installs its code and
// environment as current. Grab, reached next as the callee's own first
// instruction, finds its arguments already sitting below on the stack.
func (m *VM) stepApply() error {
	fn, err := m.forcePopVal()
	if err != nil {
		return err
	}
	closure, ok := fn.(Closure)
	if !ok {
		return internalf("apply: value on top of stack is not a closure")
	}
	m.code = closure.Body
	m.env = closure.Env.Clone()
	return nil
}

// stepGrab consumes one pending argument into the environment. If
// there is none waiting (the next marker is not a Val — a partial
// application), it reifies the remaining code as a fresh closure and
// returns it to the caller.
func (m *VM) stepGrab() error {
	top, ok := m.peek()
	if !ok {
		return internalf("grab: stack is empty")
	}
	if top.kind == markVal {
		v, err := m.forcePopVal()
		if err != nil {
			return err
		}
		m.env.Bind(v)
		return nil
	}

	if err := m.forcePopAppDelim(); err != nil {
		return err
	}
	callerCode, err := m.forcePopCode()
	if err != nil {
		return err
	}
	callerEnv, err := m.forcePopEnv()
	if err != nil {
		return err
	}

	oldCode := m.code
	oldEnv := m.env
	remaining := make(bytecode.Code, len(oldCode), len(oldCode)+1)
	copy(remaining, oldCode)
	remaining = append(remaining, bytecode.Grab{})

	m.code = callerCode
	m.env = callerEnv
	m.pushVal(Closure{Body: remaining, Env: oldEnv})
	return nil
}

// stepReturn tail-applies a closure left on top of the stack
// unconditionally (whatever is pending beneath it, if anything, stays
// put for the closure's own Grab to consume), or, if the top is an
// ordinary value, pops it and restores the saved caller code/env.
func (m *VM) stepReturn() error {
	top, ok := m.peek()
	if !ok {
		return internalf("return: stack is empty")
	}
	if top.kind == markVal {
		if closure, ok := top.val.(Closure); ok {
			m.stack = m.stack[:len(m.stack)-1]
			m.code = closure.Body
			m.env = closure.Env.Clone()
			return nil
		}
	}

	v, err := m.forcePopVal()
	if err != nil {
		return err
	}
	if err := m.forcePopAppDelim(); err != nil {
		return err
	}
	callerCode, err := m.forcePopCode()
	if err != nil {
		return err
	}
	callerEnv, err := m.forcePopEnv()
	if err != nil {
		return err
	}
	m.code = callerCode
	m.env = callerEnv
	m.pushVal(v)
	return nil
}

func (m *VM) stepSel(op bytecode.Sel) error {
	cond, err := m.forcePopVal()
	if err != nil {
		return err
	}
	b, ok := cond.(value.Bool)
	if !ok {
		return internalf("sel: condition is not a bool")
	}
	old := m.code
	if b {
		m.code = op.Then
	} else {
		m.code = op.Else
	}
	m.pushCode(old)
	return nil
}

func (m *VM) stepJoin() error {
	v, err := m.forcePopVal()
	if err != nil {
		return err
	}
	old, err := m.forcePopCode()
	if err != nil {
		return err
	}
	m.code = old
	m.pushVal(v)
	return nil
}
