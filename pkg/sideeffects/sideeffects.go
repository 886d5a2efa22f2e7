// Package sideeffects implements a conservative predicate reporting
// whether an expression may have any observable side effect. pkg/ir has
// no assignment or increment/decrement expression forms (those are
// always statements), so only MethodCall is unconditionally
// side-effecting; everything else defers to its children.
package sideeffects

import "github.com/p4lang/p4dismantle/pkg/ir"

// Check conservatively reports whether e may have an observable side
// effect. Method calls are always reported as side-effecting: a more
// precise answer would require interprocedural analysis, which is a type
// oracle's job, not this predicate's.
func Check(e ir.Expression) bool {
	switch expr := e.(type) {
	case *ir.Literal, *ir.Path, *ir.CatchAll:
		return false
	case *ir.Member:
		return Check(expr.Expr)
	case *ir.ArrayIndex:
		return Check(expr.Array) || Check(expr.Index)
	case *ir.Unary:
		return Check(expr.Expr)
	case *ir.Binary:
		return Check(expr.Left) || Check(expr.Right)
	case *ir.LogicalAnd:
		return Check(expr.Left) || Check(expr.Right)
	case *ir.LogicalOr:
		return Check(expr.Left) || Check(expr.Right)
	case *ir.Mux:
		return Check(expr.Cond) || Check(expr.Then) || Check(expr.Else)
	case *ir.MethodCall:
		return true
	case *ir.Select:
		return Check(expr.Selector)
	}
	return false
}

// AnyHasSideEffects reports whether any of exprs may have a side effect.
func AnyHasSideEffects(exprs []ir.Expression) bool {
	for _, e := range exprs {
		if Check(e) {
			return true
		}
	}
	return false
}
