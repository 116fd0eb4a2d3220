// Package bytecode defines the instruction set this system compiles to
// and the compiler that produces it. Grounded on spec.md §"Bytecode
// instruction set"/§4.5 and, for the general shape of a reversed,
// pop-from-tail instruction stream, original_source/src/vm/compiler.rs.
package bytecode

import (
	"fmt"

	"github.com/matthew-healy/uplp/internal/ast"
	"github.com/matthew-healy/uplp/internal/value"
)

// Op is one instruction. Code is produced in reverse execution order:
// the machine advances by popping the last element of a Code, so
// whatever was appended last runs first.
type Op interface {
	op()
	String() string
}

// Code is a linear instruction stream, stored back-to-front.
type Code []Op

type opBase struct{}

func (opBase) op() {}

// Const pushes a value.
type Const struct {
	opBase
	Value value.Val
}

func (c Const) String() string { return fmt.Sprintf("Const(%s)", c.Value) }

// Access pushes the env binding at de Bruijn index Index.
type Access struct {
	opBase
	Index int
}

func (a Access) String() string { return fmt.Sprintf("Access(%d)", a.Index) }

// Binary pops two values and pushes the result of applying Op.
type Binary struct {
	opBase
	Op ast.BinOp
}

func (b Binary) String() string { return fmt.Sprintf("Binary(%s)", b.Op) }

// Closure builds a closure from Body and the current environment.
type Closure struct {
	opBase
	Body Code
}

func (Closure) String() string { return "Closure(...)" }

// Apply performs a call: pop the function value, install its code and
// env as current (its env has already been augmented by preceding
// Grabs consuming the arguments).
type Apply struct{ opBase }

func (Apply) String() string { return "Apply()" }

// PushRetAddr pushes a return marker (env, code, delimiter) linking a
// non-tail call back to its continuation.
type PushRetAddr struct {
	opBase
	Code Code
}

func (PushRetAddr) String() string { return "PushRetAddr(...)" }

// Grab consumes one pending argument into the environment, or, if none
// is waiting, reifies the remaining code as a fresh closure (partial
// application).
type Grab struct{ opBase }

func (Grab) String() string { return "Grab()" }

// Return returns a value to the caller, or tail-applies it if it is
// itself a closure, whether or not arguments are pending beneath it (with
// none pending, the closure's first Grab reifies it as a closure again
// and returns that to the caller).
type Return struct{ opBase }

func (Return) String() string { return "Return()" }

// Dummy pushes an uninitialised placeholder binding, for rec-let.
type Dummy struct{ opBase }

func (Dummy) String() string { return "Dummy()" }

// Update pops a value and installs it into the most recently pushed
// Dummy slot.
type Update struct{ opBase }

func (Update) String() string { return "Update()" }

// EndLet pops one binding from the environment.
type EndLet struct{ opBase }

func (EndLet) String() string { return "EndLet()" }

// Sel pops a bool, swaps the current code for the chosen branch, and
// pushes the old code as a restore marker.
type Sel struct {
	opBase
	Then, Else Code
}

func (Sel) String() string { return "Sel(...)" }

// Join finishes a branch: pop a value, restore the code saved by Sel,
// push the value back.
type Join struct{ opBase }

func (Join) String() string { return "Join()" }
