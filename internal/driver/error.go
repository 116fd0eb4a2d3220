package driver

import (
	"fmt"

	"github.com/matthew-healy/uplp/internal/errors"
	"github.com/matthew-healy/uplp/internal/parser"
	"github.com/matthew-healy/uplp/internal/scope"
	"github.com/matthew-healy/uplp/internal/types"
	"github.com/matthew-healy/uplp/internal/vm"
	"github.com/matthew-healy/uplp/pkg/token"
)

// Stage identifies which pipeline phase raised an Error, matching the
// three error families spec.md §7 names (Parse, Type, Evaluation); the
// scope checker's UnboundIdentifier is folded into StageParse, as §7
// directs.
type Stage int

const (
	StageParse Stage = iota
	StageType
	StageEval
)

func (s Stage) String() string {
	switch s {
	case StageParse:
		return "parse error"
	case StageType:
		return "type error"
	case StageEval:
		return "evaluation error"
	default:
		return "error"
	}
}

// Error is the pipeline's uniform error: exactly one of Parse, Scope,
// Type, or Eval is non-nil, discriminated by Stage (Parse and Scope both
// report StageParse). Error() renders a one-line "stage: message" form,
// the payload a fixture's structured `error:` assertion inspects; Format
// renders a richer caret-pointing presentation, used only by the CLI.
type Error struct {
	Stage  Stage
	Parse  *parser.SyntaxError
	Scope  *scope.Error
	Type   *types.Error
	Eval   *vm.EvaluationError
	Source string
	File   string
}

func wrapParse(err error) *Error {
	se, _ := err.(*parser.SyntaxError)
	return &Error{Stage: StageParse, Parse: se}
}

func wrapScope(err error) *Error {
	se, _ := err.(*scope.Error)
	return &Error{Stage: StageParse, Scope: se}
}

func wrapType(err error) *Error {
	te, _ := err.(*types.Error)
	return &Error{Stage: StageType, Type: te}
}

func wrapEval(err error) *Error {
	ee, _ := err.(*vm.EvaluationError)
	return &Error{Stage: StageEval, Eval: ee}
}

// WithSource attaches the original source text and file name so Format
// can render a caret; Error() never needs either.
func (e *Error) WithSource(source, file string) *Error {
	e.Source = source
	e.File = file
	return e
}

func (e *Error) message() string {
	switch {
	case e.Parse != nil:
		return e.Parse.Error()
	case e.Scope != nil:
		return e.Scope.Error()
	case e.Type != nil:
		return e.Type.Error()
	case e.Eval != nil:
		return e.Eval.Error()
	default:
		return "unknown pipeline error"
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.message())
}

// pos returns the position to render a caret at, and whether one is
// available at all — the VM reports no position (see DESIGN.md).
func (e *Error) pos() (token.Position, bool) {
	switch {
	case e.Parse != nil:
		return e.Parse.Token.Pos, true
	case e.Scope != nil:
		return e.Scope.Pos, true
	case e.Type != nil:
		return e.Type.Pos, e.Type.Pos != (token.Position{})
	default:
		return token.Position{}, false
	}
}

// Format renders the one-line message plus, when a position and source
// text are both available, a caret-pointing source excerpt via
// internal/errors.CompilerError.
func (e *Error) Format() string {
	pos, ok := e.pos()
	if !ok || e.Source == "" {
		return e.Error()
	}
	return errors.NewCompilerError(pos, e.Error(), e.Source, e.File).Format()
}

// Code renders the dotted family.member taxonomy name spec.md §6's fixture
// `error:` annotation names errors by (e.g. "Parse.unbound_identifier",
// "Type.mismatch", "Evaluation.division_by_zero"), so internal/fixture can
// compare a fixture's expectation against an *Error by string equality
// rather than by concrete type switch.
func (e *Error) Code() string {
	switch {
	case e.Scope != nil:
		return "Parse.unbound_identifier"
	case e.Parse != nil:
		switch e.Parse.Kind {
		case parser.ErrInvalidToken:
			return "Parse.invalid_token"
		case parser.ErrUnexpectedToken:
			return "Parse.unexpected_token"
		}
	case e.Type != nil:
		switch e.Type.Kind {
		case types.ErrIllFormedType:
			return "Type.ill_formed_type"
		case types.ErrMismatch:
			return "Type.mismatch"
		case types.ErrInvalidApplication:
			return "Type.invalid_application"
		case types.ErrUnboundVariable:
			return "Type.unbound_variable"
		case types.ErrInternal:
			return "Type.internal"
		}
	case e.Eval != nil:
		switch e.Eval.Kind {
		case vm.ErrDivisionByZero:
			return "Evaluation.division_by_zero"
		case vm.ErrIllegalEquality:
			return "Evaluation.illegal_equality"
		case vm.ErrInternal:
			return "Evaluation.internal"
		}
	}
	return "unknown"
}
