// Package rewrite implements the post-order statement walk and the
// per-scope declaration splice that drive a Dismantler over a whole
// statement tree.
package rewrite

import (
	"github.com/p4lang/p4dismantle/pkg/dismantle"
	"github.com/p4lang/p4dismantle/pkg/ir"
)

// StatementRewriter drives a Dismantler over every statement kind.
type StatementRewriter struct {
	dismantler *dismantle.Dismantler
}

// New creates a StatementRewriter over the given Dismantler.
func New(d *dismantle.Dismantler) *StatementRewriter {
	return &StatementRewriter{dismantler: d}
}

// Rewrite dispatches one statement by kind. Nested blocks and branches
// are rewritten first (post-order), then the statement's own expression
// slot is dismantled; the pass-introduced declarations from that
// dismantling are buffered into scope rather than attached here, since
// only the enclosing unit knows where its local-declaration list lives.
func (r *StatementRewriter) Rewrite(scope *Scope, stmt ir.Statement) (ir.Statement, error) {
	switch s := stmt.(type) {
	case *ir.Block:
		return r.rewriteBlock(scope, s)
	case *ir.Assign:
		return r.rewriteAssign(scope, s)
	case *ir.MethodCallStmt:
		return r.rewriteMethodCallStmt(scope, s)
	case *ir.Return:
		return r.rewriteReturn(scope, s)
	case *ir.If:
		return r.rewriteIf(scope, s)
	case *ir.Switch:
		return r.rewriteSwitch(scope, s)
	case *ir.DeclStmt:
		return s, nil
	}
	return stmt, nil
}

func (r *StatementRewriter) rewriteBlock(scope *Scope, b *ir.Block) (*ir.Block, error) {
	out := make([]ir.Statement, 0, len(b.Stmts))
	for _, s := range b.Stmts {
		rewritten, err := r.Rewrite(scope, s)
		if err != nil {
			return nil, err
		}
		out = append(out, rewritten)
	}
	return &ir.Block{Stmts: out}, nil
}

// wrap buffers order's declarations into scope and, if the dismantling
// produced no statements of its own, returns residual unchanged;
// otherwise it wraps the emitted statements and residual into a Block.
func (r *StatementRewriter) wrap(scope *Scope, order *dismantle.EvaluationOrder, residual ir.Statement) ir.Statement {
	scope.buffer(order.Declarations)
	if len(order.Stmts) == 0 {
		return residual
	}
	return &ir.Block{Stmts: append(append([]ir.Statement{}, order.Stmts...), residual)}
}

func (r *StatementRewriter) rewriteAssign(scope *Scope, s *ir.Assign) (ir.Statement, error) {
	order := r.dismantler.NewOrder()
	lhs, err := r.dismantler.DismantleShared(order, s.LHS, true)
	if err != nil {
		return nil, err
	}
	rhs, err := r.dismantler.DismantleShared(order, s.RHS, false)
	if err != nil {
		return nil, err
	}
	return r.wrap(scope, order, &ir.Assign{LHS: lhs, RHS: rhs}), nil
}

func (r *StatementRewriter) rewriteMethodCallStmt(scope *Scope, s *ir.MethodCallStmt) (ir.Statement, error) {
	order, err := r.dismantler.Dismantle(s.Call, false, true)
	if err != nil {
		return nil, err
	}
	if order.Final == nil {
		// The call's own rule already appended a MethodCallStmt to
		// order.Stmts (the resultNotUsed case); nothing further to attach
		// as the trailing residual.
		scope.buffer(order.Declarations)
		return &ir.Block{Stmts: order.Stmts}, nil
	}
	residual := &ir.MethodCallStmt{Call: order.Final.(*ir.MethodCall)}
	return r.wrap(scope, order, residual), nil
}

func (r *StatementRewriter) rewriteReturn(scope *Scope, s *ir.Return) (ir.Statement, error) {
	if s.Expr == nil {
		return s, nil
	}
	order, err := r.dismantler.Dismantle(s.Expr, false, false)
	if err != nil {
		return nil, err
	}
	return r.wrap(scope, order, &ir.Return{Expr: order.Final}), nil
}

func (r *StatementRewriter) rewriteIf(scope *Scope, s *ir.If) (ir.Statement, error) {
	ifTrue, err := r.Rewrite(scope, s.IfTrue)
	if err != nil {
		return nil, err
	}
	var ifFalse ir.Statement
	if s.IfFalse != nil {
		ifFalse, err = r.Rewrite(scope, s.IfFalse)
		if err != nil {
			return nil, err
		}
	}

	order, err := r.dismantler.Dismantle(s.Cond, false, false)
	if err != nil {
		return nil, err
	}
	return r.wrap(scope, order, &ir.If{Cond: order.Final, IfTrue: ifTrue, IfFalse: ifFalse}), nil
}

func (r *StatementRewriter) rewriteSwitch(scope *Scope, s *ir.Switch) (ir.Statement, error) {
	cases := make([]ir.SwitchCase, len(s.Cases))
	for i, c := range s.Cases {
		body, err := r.Rewrite(scope, c.Body)
		if err != nil {
			return nil, err
		}
		cases[i] = ir.SwitchCase{Label: c.Label, Body: body}
	}

	order, err := r.dismantler.Dismantle(s.Expr, false, false)
	if err != nil {
		return nil, err
	}
	return r.wrap(scope, order, &ir.Switch{Expr: order.Final, Cases: cases}), nil
}
