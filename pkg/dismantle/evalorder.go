package dismantle

import (
	"github.com/p4lang/p4dismantle/pkg/ir"
	"github.com/p4lang/p4dismantle/pkg/ptypes"
	"github.com/p4lang/p4dismantle/pkg/refmap"
)

// EvaluationOrder is the in-progress (declarations, statements,
// residual-expression) triple for one dismantling invocation.
// Declarations always accumulate at the
// top level of a dismantling (they are never redirected into a nested
// stream); Stmts is the top-level statement stream. The short-circuit
// and mux rules collect each branch's statements in a separate nested
// slice instead, which ends up inside the emitted if-statement (see
// dismantleLogicalAnd, dismantleLogicalOr and dismantleMux in
// dismantler.go).
type EvaluationOrder struct {
	refMap       *refmap.ReferenceMap
	Declarations []*ir.Declaration
	Stmts        []ir.Statement
	Final        ir.Expression
}

func newEvaluationOrder(refMap *refmap.ReferenceMap) *EvaluationOrder {
	return &EvaluationOrder{refMap: refMap}
}

// newTemp allocates a fresh identifier from the ReferenceMap, appends a
// local Declaration of the given type with no initializer, and returns
// the name. Temporaries appear in Declarations in creation order.
func (e *EvaluationOrder) newTemp(typ ptypes.Type) string {
	name := e.refMap.NewName("tmp")
	e.Declarations = append(e.Declarations, &ir.Declaration{Name: name, Type: typ})
	return name
}

// IsSimple reports whether this accumulator produced no declarations and
// no statements — i.e. the original expression was already free of side
// effects and needed no rewriting.
func (e *EvaluationOrder) IsSimple() bool {
	return len(e.Declarations) == 0 && len(e.Stmts) == 0
}

// emitAssign appends `name := value` to stream and returns a fresh path
// expression referring to name. A fresh object is returned on every call
// (never a shared pointer) so the output tree never aliases the same
// expression node from two positions.
func emitAssign(stream *[]ir.Statement, name string, value ir.Expression) *ir.Path {
	*stream = append(*stream, &ir.Assign{LHS: &ir.Path{Name: name}, RHS: value})
	return &ir.Path{Name: name}
}
