// Package dismantle implements the core of an expression-normalization
// pass: the EvaluationOrder accumulator and the Dismantler, a recursive
// per-node-kind rewrite that hoists side-effecting sub-expressions into
// temporaries, lowers short-circuit and mux expressions into
// if-statements, and inserts copy-in/copy-out temporaries for call
// arguments.
package dismantle

import (
	"github.com/p4lang/p4dismantle/pkg/ir"
	"github.com/p4lang/p4dismantle/pkg/methoddesc"
	"github.com/p4lang/p4dismantle/pkg/ptypes"
	"github.com/p4lang/p4dismantle/pkg/refmap"
	"github.com/p4lang/p4dismantle/pkg/sideeffects"
	"github.com/p4lang/p4dismantle/pkg/tableapply"
	"github.com/p4lang/p4dismantle/pkg/typemap"
)

// applyContext records why a MethodCall is being dismantled as the
// direct scrutinee of a Member selector, so the result-placement rule can
// recognize table.apply().hit / table.apply().action_run and skip
// hoisting the call into a temporary of its unnamable Table type.
type applyContext int

const (
	noApplyContext applyContext = iota
	applyContextSelector
)

// Dismantler is the per-node-kind recursive rewriter. It carries no
// per-invocation mutable state itself: isLeftValue and resultNotUsed are
// threaded as explicit parameters, and every EvaluationOrder is owned
// either by one top-level Dismantle call or by the caller that created it
// with NewOrder and fills it through one or more DismantleShared calls.
type Dismantler struct {
	typeMap *typemap.TypeMap
	refMap  *refmap.ReferenceMap
	calls   *methoddesc.Registry
}

// New creates a Dismantler over the given TypeMap, ReferenceMap, and
// method-call-signature registry.
func New(tm *typemap.TypeMap, rm *refmap.ReferenceMap, calls *methoddesc.Registry) *Dismantler {
	return &Dismantler{typeMap: tm, refMap: rm, calls: calls}
}

// Dismantle recursively rewrites expr, returning the accumulated
// evaluation order.
func (d *Dismantler) Dismantle(expr ir.Expression, isLeftValue, resultNotUsed bool) (*EvaluationOrder, error) {
	order := newEvaluationOrder(d.refMap)
	final, err := d.dismantle(order, &order.Stmts, expr, isLeftValue, resultNotUsed, noApplyContext)
	if err != nil {
		return nil, err
	}
	order.Final = final
	return order, nil
}

// NewOrder creates an empty accumulator sharing this Dismantler's
// ReferenceMap, for a caller that needs to dismantle more than one
// expression into the same accumulator (see DismantleShared).
func (d *Dismantler) NewOrder() *EvaluationOrder {
	return newEvaluationOrder(d.refMap)
}

// DismantleShared dismantles expr into an already-existing accumulator,
// appending to its current statement stream. An assignment's rewrite rule
// uses this to dismantle the left-hand side and right-hand side into one
// shared accumulator, so side effects in the left-hand side (e.g. inside
// an array index) are sequenced before the right-hand side's.
func (d *Dismantler) DismantleShared(order *EvaluationOrder, expr ir.Expression, isLeftValue bool) (ir.Expression, error) {
	return d.dismantle(order, &order.Stmts, expr, isLeftValue, false, noApplyContext)
}

func (d *Dismantler) dismantle(order *EvaluationOrder, stream *[]ir.Statement, expr ir.Expression, isLeftValue, resultNotUsed bool, ctx applyContext) (ir.Expression, error) {
	switch e := expr.(type) {
	case *ir.Literal:
		return e, nil
	case *ir.Path:
		return e, nil
	case *ir.CatchAll:
		return d.dismantleCatchAll(e)
	case *ir.Member:
		return d.dismantleMember(order, stream, e, isLeftValue)
	case *ir.ArrayIndex:
		return d.dismantleArrayIndex(order, stream, e, isLeftValue)
	case *ir.Unary:
		return d.dismantleUnary(order, stream, e)
	case *ir.Binary:
		return d.dismantleBinary(order, stream, e)
	case *ir.LogicalAnd:
		return d.dismantleLogicalAnd(order, stream, e)
	case *ir.LogicalOr:
		return d.dismantleLogicalOr(order, stream, e)
	case *ir.Mux:
		return d.dismantleMux(order, stream, e)
	case *ir.MethodCall:
		return d.dismantleMethodCall(order, stream, e, isLeftValue, resultNotUsed, ctx)
	case *ir.Select:
		return d.dismantleSelect(order, stream, e)
	}
	return nil, errMissingType(expr)
}

// dismantleCatchAll handles a node kind with no dedicated rewrite: it
// copies the original's type, left-value, and compile-time-constant
// annotations onto a freshly built replacement rather than reusing the
// original node.
func (d *Dismantler) dismantleCatchAll(e *ir.CatchAll) (ir.Expression, error) {
	fresh := &ir.CatchAll{Kind: e.Kind}
	d.typeMap.CopyAnnotations(fresh, e)
	return fresh, nil
}

func (d *Dismantler) dismantleMember(order *EvaluationOrder, stream *[]ir.Statement, e *ir.Member, isLeftValue bool) (ir.Expression, error) {
	typ, ok := d.typeMap.GetType(e)
	if !ok {
		return nil, errMissingType(e)
	}

	ctx := noApplyContext
	if tableapply.IsHit(e) || tableapply.IsActionRun(e) {
		ctx = applyContextSelector
	}

	inner, err := d.dismantle(order, stream, e.Expr, isLeftValue, false, ctx)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		return nil, errNilResidual(e)
	}

	fresh := &ir.Member{Expr: inner, Name: e.Name}
	d.typeMap.SetType(fresh, typ)
	if isLeftValue || d.typeMap.IsLeftValue(e) {
		d.typeMap.SetLeftValue(fresh)
	}
	// Decision (b) in DESIGN.md's Open Questions: the flag is set on the
	// rewritten node, not the discarded original.
	if d.typeMap.IsCompileTimeConstant(e) {
		d.typeMap.SetCompileTimeConstant(fresh)
	}
	return fresh, nil
}

func (d *Dismantler) dismantleArrayIndex(order *EvaluationOrder, stream *[]ir.Statement, e *ir.ArrayIndex, isLeftValue bool) (ir.Expression, error) {
	typ, ok := d.typeMap.GetType(e)
	if !ok {
		return nil, errMissingType(e)
	}

	array, err := d.dismantle(order, stream, e.Array, isLeftValue, false, noApplyContext)
	if err != nil {
		return nil, err
	}
	// An index is always an r-value, regardless of the array's own
	// left-value mode.
	index, err := d.dismantle(order, stream, e.Index, false, false, noApplyContext)
	if err != nil {
		return nil, err
	}

	fresh := &ir.ArrayIndex{Array: array, Index: index}
	d.typeMap.SetType(fresh, typ)
	if isLeftValue {
		d.typeMap.SetLeftValue(fresh)
	}
	return fresh, nil
}

func (d *Dismantler) dismantleUnary(order *EvaluationOrder, stream *[]ir.Statement, e *ir.Unary) (ir.Expression, error) {
	typ, ok := d.typeMap.GetType(e)
	if !ok {
		return nil, errMissingType(e)
	}
	operand, err := d.dismantle(order, stream, e.Expr, false, false, noApplyContext)
	if err != nil {
		return nil, err
	}
	fresh := &ir.Unary{Op: e.Op, Expr: operand}
	d.typeMap.SetType(fresh, typ)
	return fresh, nil
}

func (d *Dismantler) dismantleBinary(order *EvaluationOrder, stream *[]ir.Statement, e *ir.Binary) (ir.Expression, error) {
	typ, ok := d.typeMap.GetType(e)
	if !ok {
		return nil, errMissingType(e)
	}
	left, err := d.dismantle(order, stream, e.Left, false, false, noApplyContext)
	if err != nil {
		return nil, err
	}
	right, err := d.dismantle(order, stream, e.Right, false, false, noApplyContext)
	if err != nil {
		return nil, err
	}

	rebuilt := &ir.Binary{Op: e.Op, Left: left, Right: right}
	d.typeMap.SetType(rebuilt, typ)

	// Every side-effect-free binary composition is hoisted, intentionally,
	// so the evaluation order becomes a linear sequence of assignments.
	tmp := order.newTemp(typ)
	residual := emitAssign(stream, tmp, rebuilt)
	d.typeMap.SetType(residual, typ)
	return residual, nil
}

func (d *Dismantler) dismantleLogicalAnd(order *EvaluationOrder, stream *[]ir.Statement, e *ir.LogicalAnd) (ir.Expression, error) {
	cond, err := d.dismantle(order, stream, e.Left, false, false, noApplyContext)
	if err != nil {
		return nil, err
	}

	tmp := order.newTemp(ptypes.Bool{})

	var falseBranch []ir.Statement
	rightResidual, err := d.dismantle(order, &falseBranch, e.Right, false, false, noApplyContext)
	if err != nil {
		return nil, err
	}
	emitAssign(&falseBranch, tmp, rightResidual)

	negatedCond := &ir.Unary{Op: ir.OpNot, Expr: cond}
	d.typeMap.SetType(negatedCond, ptypes.Bool{})

	ifStmt := &ir.If{
		Cond:    negatedCond,
		IfTrue:  &ir.Block{Stmts: []ir.Statement{&ir.Assign{LHS: &ir.Path{Name: tmp}, RHS: &ir.Literal{Value: false}}}},
		IfFalse: &ir.Block{Stmts: falseBranch},
	}
	*stream = append(*stream, ifStmt)

	result := &ir.Path{Name: tmp}
	d.typeMap.SetType(result, ptypes.Bool{})
	return result, nil
}

func (d *Dismantler) dismantleLogicalOr(order *EvaluationOrder, stream *[]ir.Statement, e *ir.LogicalOr) (ir.Expression, error) {
	cond, err := d.dismantle(order, stream, e.Left, false, false, noApplyContext)
	if err != nil {
		return nil, err
	}

	tmp := order.newTemp(ptypes.Bool{})

	var falseBranch []ir.Statement
	rightResidual, err := d.dismantle(order, &falseBranch, e.Right, false, false, noApplyContext)
	if err != nil {
		return nil, err
	}
	emitAssign(&falseBranch, tmp, rightResidual)

	ifStmt := &ir.If{
		Cond:    cond,
		IfTrue:  &ir.Block{Stmts: []ir.Statement{&ir.Assign{LHS: &ir.Path{Name: tmp}, RHS: &ir.Literal{Value: true}}}},
		IfFalse: &ir.Block{Stmts: falseBranch},
	}
	*stream = append(*stream, ifStmt)

	result := &ir.Path{Name: tmp}
	d.typeMap.SetType(result, ptypes.Bool{})
	return result, nil
}

func (d *Dismantler) dismantleMux(order *EvaluationOrder, stream *[]ir.Statement, e *ir.Mux) (ir.Expression, error) {
	typ, ok := d.typeMap.GetType(e)
	if !ok {
		return nil, errMissingType(e)
	}

	cond, err := d.dismantle(order, stream, e.Cond, false, false, noApplyContext)
	if err != nil {
		return nil, err
	}

	tmp := order.newTemp(typ)

	var thenBranch []ir.Statement
	thenResidual, err := d.dismantle(order, &thenBranch, e.Then, false, false, noApplyContext)
	if err != nil {
		return nil, err
	}
	emitAssign(&thenBranch, tmp, thenResidual)

	var elseBranch []ir.Statement
	elseResidual, err := d.dismantle(order, &elseBranch, e.Else, false, false, noApplyContext)
	if err != nil {
		return nil, err
	}
	emitAssign(&elseBranch, tmp, elseResidual)

	ifStmt := &ir.If{
		Cond:    cond,
		IfTrue:  &ir.Block{Stmts: thenBranch},
		IfFalse: &ir.Block{Stmts: elseBranch},
	}
	*stream = append(*stream, ifStmt)

	result := &ir.Path{Name: tmp}
	d.typeMap.SetType(result, typ)
	return result, nil
}

func (d *Dismantler) dismantleSelect(order *EvaluationOrder, stream *[]ir.Statement, e *ir.Select) (ir.Expression, error) {
	selector, err := d.dismantle(order, stream, e.Selector, false, false, noApplyContext)
	if err != nil {
		return nil, err
	}
	fresh := &ir.Select{Selector: selector, Cases: e.Cases}
	if typ, ok := d.typeMap.GetType(e); ok {
		d.typeMap.SetType(fresh, typ)
	}
	return fresh, nil
}

func (d *Dismantler) dismantleMethodCall(order *EvaluationOrder, stream *[]ir.Statement, call *ir.MethodCall, isLeftValue, resultNotUsed bool, ctx applyContext) (ir.Expression, error) {
	if isLeftValue {
		return nil, errMethodCallInLeftValue(call)
	}

	typ, ok := d.typeMap.GetType(call)
	if !ok {
		return nil, errMissingType(call)
	}

	if !sideeffects.Check(call) {
		return call, nil
	}

	params := d.calls.Describe(call)

	useTemporaries := sideeffects.AnyHasSideEffects(call.Args)
	if !useTemporaries {
		for _, p := range params {
			if p.Direction == ir.DirOut || p.Direction == ir.DirInOut {
				useTemporaries = true
				break
			}
		}
	}

	method, err := d.dismantle(order, stream, call.Method, false, false, noApplyContext)
	if err != nil {
		return nil, err
	}

	newArgs := make([]ir.Expression, len(call.Args))
	var copyBacks []ir.Statement
	for i, origArg := range call.Args {
		p := methoddesc.Param{Direction: ir.DirIn}
		if i < len(params) {
			p = params[i]
		}

		if p.Direction == ir.DirNone {
			// A type/compile-time argument: passed through unchanged,
			// never evaluated at run time.
			newArgs[i] = origArg
			continue
		}

		argIsLeftValue := p.Direction == ir.DirOut || p.Direction == ir.DirInOut
		newArg, err := d.dismantle(order, stream, origArg, argIsLeftValue, false, noApplyContext)
		if err != nil {
			return nil, err
		}
		if newArg == nil {
			return nil, errNilResidual(origArg)
		}

		var argValue ir.Expression
		if useTemporaries && !d.typeMap.IsCompileTimeConstant(newArg) {
			tmp := order.newTemp(p.Type)
			argValue = &ir.Path{Name: tmp}
			if p.Direction != ir.DirOut {
				*stream = append(*stream, &ir.Assign{LHS: &ir.Path{Name: tmp}, RHS: newArg})
			}
			if argIsLeftValue {
				copyBacks = append(copyBacks, &ir.Assign{LHS: newArg, RHS: &ir.Path{Name: tmp}})
			}
		} else {
			argValue = newArg
		}
		newArgs[i] = argValue
	}

	simplified := &ir.MethodCall{Method: method, Args: newArgs}
	d.typeMap.SetType(simplified, typ)

	var final ir.Expression
	_, isVoid := typ.(ptypes.Void)
	switch {
	case isVoid || resultNotUsed:
		*stream = append(*stream, &ir.MethodCallStmt{Call: simplified})
		final = nil
	case ctx == applyContextSelector:
		// The type of a table.apply() result is not expressible as a
		// local, so it is never hoisted into a temporary.
		final = simplified
	default:
		tmp := order.newTemp(typ)
		result := emitAssign(stream, tmp, simplified)
		d.typeMap.SetType(result, typ)
		final = result
	}

	*stream = append(*stream, copyBacks...)
	return final, nil
}
