package rewrite

import (
	"testing"

	"github.com/p4lang/p4dismantle/pkg/dismantle"
	"github.com/p4lang/p4dismantle/pkg/ir"
	"github.com/p4lang/p4dismantle/pkg/methoddesc"
	"github.com/p4lang/p4dismantle/pkg/ptypes"
	"github.com/p4lang/p4dismantle/pkg/refmap"
	"github.com/p4lang/p4dismantle/pkg/typemap"
)

func newRewriterFixture() (*StatementRewriter, *typemap.TypeMap) {
	tm := typemap.New()
	d := dismantle.New(tm, refmap.New(), methoddesc.NewRegistry())
	return New(d), tm
}

func TestRewriteSimpleAssignUnchanged(t *testing.T) {
	r, tm := newRewriterFixture()
	x := &ir.Path{Name: "x"}
	tm.SetType(x, ptypes.Bool{})
	tm.SetLeftValue(x)
	y := &ir.Path{Name: "y"}
	tm.SetType(y, ptypes.Bool{})

	scope := newScope()
	stmt := &ir.Assign{LHS: x, RHS: y}

	rewritten, err := r.Rewrite(scope, stmt)
	if err != nil {
		t.Fatalf("Rewrite() error: %v", err)
	}
	if _, ok := rewritten.(*ir.Assign); !ok {
		t.Errorf("a side-effect-free assignment should rewrite to itself unchanged, got %T", rewritten)
	}
	if len(scope.pending) != 0 {
		t.Errorf("expected no buffered declarations, got %d", len(scope.pending))
	}
}

func TestRewriteAssignWithCallHoistsAndWraps(t *testing.T) {
	r, tm := newRewriterFixture()
	x := &ir.Path{Name: "x"}
	tm.SetType(x, ptypes.Bits{Width: 8})
	tm.SetLeftValue(x)
	call := &ir.MethodCall{Method: &ir.Path{Name: "f"}}
	tm.SetType(call, ptypes.Bits{Width: 8})

	scope := newScope()
	stmt := &ir.Assign{LHS: x, RHS: call}

	rewritten, err := r.Rewrite(scope, stmt)
	if err != nil {
		t.Fatalf("Rewrite() error: %v", err)
	}
	block, ok := rewritten.(*ir.Block)
	if !ok {
		t.Fatalf("expected a Block (hoisted temp + simplified assign), got %T", rewritten)
	}
	if len(block.Stmts) != 2 {
		t.Fatalf("expected 2 statements in the block, got %d", len(block.Stmts))
	}
	if _, ok := block.Stmts[1].(*ir.Assign); !ok {
		t.Errorf("expected the trailing statement to be the simplified Assign, got %T", block.Stmts[1])
	}
	if len(scope.pending) != 1 {
		t.Errorf("expected 1 buffered declaration (the call's result temp), got %d", len(scope.pending))
	}
}

func TestRewriteIfRecursesIntoBranchesBeforeCondition(t *testing.T) {
	r, tm := newRewriterFixture()
	cond := &ir.Path{Name: "c"}
	tm.SetType(cond, ptypes.Bool{})

	innerX := &ir.Path{Name: "x"}
	tm.SetType(innerX, ptypes.Bits{Width: 8})
	tm.SetLeftValue(innerX)
	innerCall := &ir.MethodCall{Method: &ir.Path{Name: "g"}}
	tm.SetType(innerCall, ptypes.Bits{Width: 8})

	scope := newScope()
	stmt := &ir.If{
		Cond:   cond,
		IfTrue: &ir.Assign{LHS: innerX, RHS: innerCall},
	}

	rewritten, err := r.Rewrite(scope, stmt)
	if err != nil {
		t.Fatalf("Rewrite() error: %v", err)
	}
	ifStmt, ok := rewritten.(*ir.If)
	if !ok {
		t.Fatalf("a pure condition with no hoisting needed should stay a bare If, got %T", rewritten)
	}
	if _, ok := ifStmt.IfTrue.(*ir.Block); !ok {
		t.Errorf("expected the recursively-rewritten then-branch to be a Block, got %T", ifStmt.IfTrue)
	}
	if len(scope.pending) != 1 {
		t.Errorf("expected 1 buffered declaration from the nested assign, got %d", len(scope.pending))
	}
}

func TestSpliceActionPrependsTemporaries(t *testing.T) {
	r, tm := newRewriterFixture()
	x := &ir.Path{Name: "x"}
	tm.SetType(x, ptypes.Bits{Width: 8})
	tm.SetLeftValue(x)
	call := &ir.MethodCall{Method: &ir.Path{Name: "f"}}
	tm.SetType(call, ptypes.Bits{Width: 8})

	action := &ir.Action{
		Name: "do_thing",
		Body: &ir.Block{Stmts: []ir.Statement{&ir.Assign{LHS: x, RHS: call}}},
	}

	if err := r.SpliceAction(action); err != nil {
		t.Fatalf("SpliceAction() error: %v", err)
	}
	if len(action.Body.Stmts) < 2 {
		t.Fatalf("expected the temp declaration prepended ahead of the rewritten body, got %d statements", len(action.Body.Stmts))
	}
	if _, ok := action.Body.Stmts[0].(*ir.DeclStmt); !ok {
		t.Errorf("expected the first statement to be the spliced DeclStmt, got %T", action.Body.Stmts[0])
	}
}

func TestRewriteReturnWithCallHoistsAndWraps(t *testing.T) {
	r, tm := newRewriterFixture()
	call := &ir.MethodCall{Method: &ir.Path{Name: "f"}}
	tm.SetType(call, ptypes.Bits{Width: 8})

	scope := newScope()
	stmt := &ir.Return{Expr: call}

	rewritten, err := r.Rewrite(scope, stmt)
	if err != nil {
		t.Fatalf("Rewrite() error: %v", err)
	}
	block, ok := rewritten.(*ir.Block)
	if !ok {
		t.Fatalf("expected a Block (hoisted temp + simplified return), got %T", rewritten)
	}
	if len(block.Stmts) != 2 {
		t.Fatalf("expected 2 statements in the block, got %d", len(block.Stmts))
	}
	ret, ok := block.Stmts[1].(*ir.Return)
	if !ok {
		t.Fatalf("expected the trailing statement to be the simplified Return, got %T", block.Stmts[1])
	}
	if _, ok := ret.Expr.(*ir.Path); !ok {
		t.Errorf("expected the return's Expr to be a Path to the hoisted temp, got %T", ret.Expr)
	}
	if len(scope.pending) != 1 {
		t.Errorf("expected 1 buffered declaration (the call's result temp), got %d", len(scope.pending))
	}
}

func TestRewriteReturnWithNoExprUnchanged(t *testing.T) {
	r, _ := newRewriterFixture()
	scope := newScope()
	stmt := &ir.Return{}

	rewritten, err := r.Rewrite(scope, stmt)
	if err != nil {
		t.Fatalf("Rewrite() error: %v", err)
	}
	if rewritten != stmt {
		t.Errorf("a bare `return;` should rewrite to itself unchanged, got %T", rewritten)
	}
}

func TestRewriteSwitchWithCallHoistsAndRecursesIntoCases(t *testing.T) {
	r, tm := newRewriterFixture()
	call := &ir.MethodCall{Method: &ir.Path{Name: "classify"}}
	tm.SetType(call, ptypes.Bits{Width: 8})

	caseX := &ir.Path{Name: "x"}
	tm.SetType(caseX, ptypes.Bits{Width: 8})
	tm.SetLeftValue(caseX)
	caseCall := &ir.MethodCall{Method: &ir.Path{Name: "g"}}
	tm.SetType(caseCall, ptypes.Bits{Width: 8})

	scope := newScope()
	stmt := &ir.Switch{
		Expr: call,
		Cases: []ir.SwitchCase{
			{Label: "1", Body: &ir.Assign{LHS: caseX, RHS: caseCall}},
			{Label: "", Body: &ir.Block{}},
		},
	}

	rewritten, err := r.Rewrite(scope, stmt)
	if err != nil {
		t.Fatalf("Rewrite() error: %v", err)
	}
	block, ok := rewritten.(*ir.Block)
	if !ok {
		t.Fatalf("expected a Block (hoisted temp + simplified switch), got %T", rewritten)
	}
	if len(block.Stmts) != 2 {
		t.Fatalf("expected 2 statements in the block, got %d", len(block.Stmts))
	}
	sw, ok := block.Stmts[1].(*ir.Switch)
	if !ok {
		t.Fatalf("expected the trailing statement to be the simplified Switch, got %T", block.Stmts[1])
	}
	if len(sw.Cases) != 2 {
		t.Fatalf("expected both cases retained, got %d", len(sw.Cases))
	}
	if _, ok := sw.Cases[0].Body.(*ir.Block); !ok {
		t.Errorf("expected the first case's body to be recursively rewritten into a Block, got %T", sw.Cases[0].Body)
	}
	// One temp from the switch expression, one from the first case's hoisted call.
	if len(scope.pending) != 2 {
		t.Errorf("expected 2 buffered declarations, got %d", len(scope.pending))
	}
}

func TestSpliceControlPrependsTemporariesAndRewritesApply(t *testing.T) {
	r, tm := newRewriterFixture()
	x := &ir.Path{Name: "x"}
	tm.SetType(x, ptypes.Bits{Width: 8})
	tm.SetLeftValue(x)
	actionCall := &ir.MethodCall{Method: &ir.Path{Name: "f"}}
	tm.SetType(actionCall, ptypes.Bits{Width: 8})

	y := &ir.Path{Name: "y"}
	tm.SetType(y, ptypes.Bits{Width: 8})
	tm.SetLeftValue(y)
	applyCall := &ir.MethodCall{Method: &ir.Path{Name: "g"}}
	tm.SetType(applyCall, ptypes.Bits{Width: 8})

	control := &ir.Control{
		Name: "c",
		Actions: []*ir.Action{
			{Name: "do_thing", Body: &ir.Block{Stmts: []ir.Statement{&ir.Assign{LHS: x, RHS: actionCall}}}},
		},
		Apply: &ir.Block{Stmts: []ir.Statement{&ir.Assign{LHS: y, RHS: applyCall}}},
	}

	if err := r.SpliceControl(control); err != nil {
		t.Fatalf("SpliceControl() error: %v", err)
	}
	if len(control.Locals) != 2 {
		t.Fatalf("expected 2 spliced locals (one per hoisted call), got %d", len(control.Locals))
	}
	if _, ok := control.Actions[0].Body.Stmts[0].(*ir.Assign); !ok {
		t.Errorf("expected the action body to start with the hoisted temp assignment, got %T", control.Actions[0].Body.Stmts[0])
	}
	if _, ok := control.Apply.Stmts[0].(*ir.Assign); !ok {
		t.Errorf("expected the apply block to start with the hoisted temp assignment, got %T", control.Apply.Stmts[0])
	}
}

func TestSpliceFunctionPrependsTemporaries(t *testing.T) {
	r, tm := newRewriterFixture()
	x := &ir.Path{Name: "x"}
	tm.SetType(x, ptypes.Bits{Width: 8})
	tm.SetLeftValue(x)
	call := &ir.MethodCall{Method: &ir.Path{Name: "f"}}
	tm.SetType(call, ptypes.Bits{Width: 8})

	fn := &ir.Function{
		Name: "compute",
		Body: &ir.Block{Stmts: []ir.Statement{&ir.Assign{LHS: x, RHS: call}}},
	}

	if err := r.SpliceFunction(fn); err != nil {
		t.Fatalf("SpliceFunction() error: %v", err)
	}
	if len(fn.Body.Stmts) < 2 {
		t.Fatalf("expected the temp declaration prepended ahead of the rewritten body, got %d statements", len(fn.Body.Stmts))
	}
	if _, ok := fn.Body.Stmts[0].(*ir.DeclStmt); !ok {
		t.Errorf("expected the first statement to be the spliced DeclStmt, got %T", fn.Body.Stmts[0])
	}
}

func TestSpliceParserFlattensIntoStateComponents(t *testing.T) {
	r, tm := newRewriterFixture()
	selector := &ir.MethodCall{Method: &ir.Path{Name: "peek"}}
	tm.SetType(selector, ptypes.Bits{Width: 8})

	state := &ir.ParserState{
		Name: "start",
		Select: &ir.Select{
			Selector: selector,
			Cases:    []ir.SelectCase{{Pattern: &ir.Literal{Value: 0}, State: "accept"}},
		},
	}
	parser := &ir.Parser{Name: "p", States: []*ir.ParserState{state}}

	if err := r.SpliceParser(parser); err != nil {
		t.Fatalf("SpliceParser() error: %v", err)
	}
	if len(parser.Locals) != 1 {
		t.Fatalf("expected 1 spliced local (the selector's result temp), got %d", len(parser.Locals))
	}
	if len(state.Components) != 1 {
		t.Fatalf("expected the hoisted assignment appended directly to Components, got %d", len(state.Components))
	}
	if state.Select == nil {
		t.Fatal("expected the state to retain a (now-simplified) Select")
	}
	if _, ok := state.Select.Selector.(*ir.Path); !ok {
		t.Errorf("expected the select's Selector to be replaced by a Path to the temp, got %T", state.Select.Selector)
	}
}
