// Package typecheck implements the bidirectional algorithmic type checker
// over internal/types's ordered context, after Dunfield & Krishnaswami.
// Grounded verbatim in algorithm shape on
// original_source/src/typ/checker.rs; ported from name-keyed
// TypedVariable elements to de-Bruijn-indexed ones per the adaptation
// note on types.Element, since this checker runs on the already
// scope-checked ast.Expr rather than the named AST the original checks.
package typecheck

import (
	"github.com/matthew-healy/uplp/internal/ast"
	"github.com/matthew-healy/uplp/internal/types"
	"github.com/matthew-healy/uplp/internal/value"
)

// state carries the fresh-existential counter across a single top-level
// Infer call.
type state struct {
	next int
}

func (s *state) fresh() types.Existential {
	e := types.Existential(s.next)
	s.next++
	return e
}

// Infer type-checks e from the empty context and returns its inferred
// type, finalised by applying the residual context (spec.md §4.4's
// finalisation step).
func Infer(e ast.Expr) (types.Type, error) {
	s := &state{}
	t, ctx, err := synth(s, types.NewCtx(), e)
	if err != nil {
		return types.Type{}, err
	}
	return ctx.Apply(t), nil
}

// synth synthesises a type for e under ctx, returning the synthesised
// type and the residual context.
func synth(s *state, ctx types.Ctx, e ast.Expr) (types.Type, types.Ctx, error) {
	switch n := e.(type) {
	case ast.Literal:
		return literalType(n.Value), ctx, nil

	case ast.Var:
		t, err := ctx.GetAnnotation(n.Index)
		if err != nil {
			return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
		}
		return t, ctx, nil

	case ast.Ascribed:
		if err := ctx.CheckTypeWellFormed(n.Type); err != nil {
			return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
		}
		ctx2, err := check(s, ctx, n.Expr, n.Type)
		if err != nil {
			return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
		}
		return n.Type, ctx2, nil

	case ast.Lambda:
		var fromTy types.Type
		c := ctx
		if n.Annotation != nil {
			fromTy = *n.Annotation
		} else {
			from := s.fresh()
			c = c.Add(types.UnsolvedExistential(from))
			fromTy = types.NewExistential(from)
		}
		to := s.fresh()
		elem := types.TypedVariable(fromTy)
		c = c.Add(types.UnsolvedExistential(to)).Add(elem)
		c, err := check(s, c, n.Body, types.NewExistential(to))
		if err != nil {
			return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
		}
		// Remove the parameter's TypedVariable in place rather than Drop-ing
		// the tail of the context: anything solved to the right of it while
		// checking the body (nested existentials from an inner application,
		// say) must survive so Ctx.Apply can still follow solved chains
		// through them once this returns.
		c, err = c.InsertInPlace(elem)
		if err != nil {
			return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
		}
		return types.NewArrow(fromTy, types.NewExistential(to)), c, nil

	case ast.App:
		tf, c, err := synth(s, ctx, n.Func)
		if err != nil {
			return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
		}
		tf = c.Apply(tf)
		if a, ok := tf.IsExistential(); ok {
			from := s.fresh()
			to := s.fresh()
			c, err = c.InsertInPlace(types.UnsolvedExistential(a),
				types.UnsolvedExistential(to),
				types.UnsolvedExistential(from),
				types.SolvedExistential(a, types.NewArrow(types.NewExistential(from), types.NewExistential(to))),
			)
			if err != nil {
				return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
			}
			c, err = check(s, c, n.Arg, types.NewExistential(from))
			if err != nil {
				return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
			}
			return types.NewExistential(to), c, nil
		}
		if from, to, ok := tf.IsArrow(); ok {
			c, err = check(s, c, n.Arg, from)
			if err != nil {
				return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
			}
			return to, c, nil
		}
		return types.Type{}, types.Ctx{}, types.Annotate(types.NewInvalidApplicationError(tf), n.Pos())

	case ast.Let:
		if !n.Recursive {
			bindingTy, c, err := synth(s, ctx, n.Binding)
			if err != nil {
				return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
			}
			elem := types.TypedVariable(bindingTy)
			c = c.Add(elem)
			bodyTy, c, err := synth(s, c, n.Body)
			if err != nil {
				return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
			}
			c, err = c.InsertInPlace(elem)
			if err != nil {
				return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
			}
			return bodyTy, c, nil
		}

		a := s.fresh()
		elem := types.TypedVariable(types.NewExistential(a))
		c := ctx.Add(types.UnsolvedExistential(a)).Add(elem)
		_, c, err := synth(s, c, n.Binding)
		if err != nil {
			return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
		}
		bodyTy, c, err := synth(s, c, n.Body)
		if err != nil {
			return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
		}
		c, err = c.InsertInPlace(elem)
		if err != nil {
			return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
		}
		return bodyTy, c, nil

	case ast.IfThenElse:
		condTy, c, err := synth(s, ctx, n.Cond)
		if err != nil {
			return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
		}
		c, err = covariantSubtype(s, c, c.Apply(condTy), types.NewPrimitive(types.Bool))
		if err != nil {
			return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
		}
		thenTy, c, err := synth(s, c, n.Then)
		if err != nil {
			return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
		}
		c, err = check(s, c, n.Else, thenTy)
		if err != nil {
			return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
		}
		return thenTy, c, nil

	case ast.Op:
		lTy, c, err := synth(s, ctx, n.Left)
		if err != nil {
			return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
		}
		rTy, c, err := synth(s, c, n.Right)
		if err != nil {
			return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
		}
		switch n.Op {
		case ast.Eq:
			return types.NewPrimitive(types.Bool), c, nil
		case ast.And:
			b := types.NewPrimitive(types.Bool)
			c, err = covariantSubtype(s, c, c.Apply(lTy), b)
			if err != nil {
				return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
			}
			c, err = covariantSubtype(s, c, c.Apply(rTy), b)
			if err != nil {
				return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
			}
			return b, c, nil
		default: // Add, Sub, Mul, Div
			num := types.NewPrimitive(types.Num)
			c, err = covariantSubtype(s, c, c.Apply(lTy), num)
			if err != nil {
				return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
			}
			c, err = covariantSubtype(s, c, c.Apply(rTy), num)
			if err != nil {
				return types.Type{}, types.Ctx{}, types.Annotate(err, n.Pos())
			}
			return num, c, nil
		}
	}
	return types.Type{}, types.Ctx{}, types.NewInternalError("synth: unhandled expression %T", e)
}

// check checks that e has type t under ctx, returning the residual
// context.
func check(s *state, ctx types.Ctx, e ast.Expr, t types.Type) (types.Ctx, error) {
	if err := ctx.CheckTypeWellFormed(t); err != nil {
		return types.Ctx{}, types.Annotate(err, e.Pos())
	}

	if lit, ok := e.(ast.Literal); ok {
		if p, ok := t.IsPrimitive(); ok {
			c, err := checkLiteralType(ctx, lit.Value, p)
			return c, types.Annotate(err, e.Pos())
		}
	}

	if lam, ok := e.(ast.Lambda); ok {
		if from, to, ok := t.IsArrow(); ok {
			c := ctx
			if lam.Annotation != nil {
				var err error
				c, err = contravariantSubtype(s, c, from, *lam.Annotation)
				if err != nil {
					return types.Ctx{}, types.Annotate(err, e.Pos())
				}
			}
			elem := types.TypedVariable(from)
			c = c.Add(elem)
			c, err := check(s, c, lam.Body, to)
			if err != nil {
				return types.Ctx{}, types.Annotate(err, e.Pos())
			}
			return c.Drop(elem)
		}
	}

	inferred, c, err := synth(s, ctx, e)
	if err != nil {
		return types.Ctx{}, types.Annotate(err, e.Pos())
	}
	a := c.Apply(inferred)
	b := c.Apply(t)
	c, err = covariantSubtype(s, c, a, b)
	return c, types.Annotate(err, e.Pos())
}

type variance int

const (
	covariant variance = iota
	contravariant
)

func covariantSubtype(s *state, ctx types.Ctx, a, b types.Type) (types.Ctx, error) {
	return subtype(s, ctx, a, b, covariant)
}

func contravariantSubtype(s *state, ctx types.Ctx, a, b types.Type) (types.Ctx, error) {
	return subtype(s, ctx, a, b, contravariant)
}

func subtype(s *state, ctx types.Ctx, a, b types.Type, v variance) (types.Ctx, error) {
	if err := ctx.CheckTypeWellFormed(a); err != nil {
		return types.Ctx{}, err
	}
	if err := ctx.CheckTypeWellFormed(b); err != nil {
		return types.Ctx{}, err
	}

	if p1, ok := a.IsPrimitive(); ok {
		if p2, ok := b.IsPrimitive(); ok && p1 == p2 {
			return ctx, nil
		}
	}
	if e1, ok := a.IsExistential(); ok {
		if e2, ok := b.IsExistential(); ok && e1 == e2 {
			return ctx, nil
		}
	}
	if from1, to1, ok := a.IsArrow(); ok {
		if from2, to2, ok := b.IsArrow(); ok {
			c, err := contravariantSubtype(s, ctx, from2, from1)
			if err != nil {
				return types.Ctx{}, err
			}
			to1 = c.Apply(to1)
			to2 = c.Apply(to2)
			return covariantSubtype(s, c, to1, to2)
		}
	}
	if e1, ok := a.IsExistential(); ok {
		return instantiateL(s, ctx, e1, b)
	}
	if e2, ok := b.IsExistential(); ok {
		return instantiateR(s, ctx, a, e2)
	}
	if v == covariant {
		return types.Ctx{}, types.NewMismatchError(a, b)
	}
	return types.Ctx{}, types.NewMismatchError(b, a)
}

func instantiateL(s *state, ctx types.Ctx, toInstantiate types.Existential, t types.Type) (types.Ctx, error) {
	left, right, err := ctx.SplitAt(types.UnsolvedExistential(toInstantiate))
	if err != nil {
		return types.Ctx{}, err
	}

	if left.CheckTypeWellFormed(t) == nil {
		return ctx.InsertInPlace(types.UnsolvedExistential(toInstantiate), types.SolvedExistential(toInstantiate, t))
	}

	if from, to, ok := t.IsArrow(); ok {
		inferredFrom := s.fresh()
		inferredTo := s.fresh()
		c, err := ctx.InsertInPlace(types.UnsolvedExistential(toInstantiate),
			types.UnsolvedExistential(inferredTo),
			types.UnsolvedExistential(inferredFrom),
			types.SolvedExistential(toInstantiate, types.NewArrow(types.NewExistential(inferredFrom), types.NewExistential(inferredTo))),
		)
		if err != nil {
			return types.Ctx{}, err
		}
		c, err = instantiateR(s, c, from, inferredFrom)
		if err != nil {
			return types.Ctx{}, err
		}
		to = c.Apply(to)
		return instantiateL(s, c, inferredTo, to)
	}

	if e, ok := t.IsExistential(); ok {
		if err := right.CheckTypeWellFormed(t); err != nil {
			return types.Ctx{}, err
		}
		return ctx.InsertInPlace(types.UnsolvedExistential(e), types.SolvedExistential(e, types.NewExistential(toInstantiate)))
	}

	return types.Ctx{}, types.NewInternalError("instantiate_l: unreachable type %s", t)
}

func instantiateR(s *state, ctx types.Ctx, t types.Type, toInstantiate types.Existential) (types.Ctx, error) {
	left, right, err := ctx.SplitAt(types.UnsolvedExistential(toInstantiate))
	if err != nil {
		return types.Ctx{}, err
	}

	if left.CheckTypeWellFormed(t) == nil {
		return ctx.InsertInPlace(types.UnsolvedExistential(toInstantiate), types.SolvedExistential(toInstantiate, t))
	}

	if from, to, ok := t.IsArrow(); ok {
		inferredFrom := s.fresh()
		inferredTo := s.fresh()
		c, err := ctx.InsertInPlace(types.UnsolvedExistential(toInstantiate),
			types.UnsolvedExistential(inferredTo),
			types.UnsolvedExistential(inferredFrom),
			types.SolvedExistential(toInstantiate, types.NewArrow(types.NewExistential(inferredFrom), types.NewExistential(inferredTo))),
		)
		if err != nil {
			return types.Ctx{}, err
		}
		c, err = instantiateL(s, c, inferredFrom, from)
		if err != nil {
			return types.Ctx{}, err
		}
		to = c.Apply(to)
		return instantiateR(s, c, to, inferredTo)
	}

	if e, ok := t.IsExistential(); ok {
		if err := right.CheckTypeWellFormed(t); err != nil {
			return types.Ctx{}, err
		}
		return ctx.Add(types.SolvedExistential(e, types.NewExistential(toInstantiate))), nil
	}

	return types.Ctx{}, types.NewInternalError("instantiate_r: unreachable type %s", t)
}

func checkLiteralType(ctx types.Ctx, v value.Val, p types.Primitive) (types.Ctx, error) {
	got := literalType(v)
	if gp, ok := got.IsPrimitive(); ok && gp == p {
		return ctx, nil
	}
	return types.Ctx{}, types.NewMismatchError(got, types.NewPrimitive(p))
}

func literalType(v value.Val) types.Type {
	switch v.(type) {
	case value.Bool:
		return types.NewPrimitive(types.Bool)
	case value.Num:
		return types.NewPrimitive(types.Num)
	case value.Unit:
		return types.NewPrimitive(types.Unit)
	default:
		panic("typecheck: literal holds a non-literal runtime value")
	}
}
