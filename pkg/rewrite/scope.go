package rewrite

import "github.com/p4lang/p4dismantle/pkg/ir"

// Scope is a pending-declaration buffer: each unit handed to a splice
// method (Parser, Control, Action, Function) owns one Scope for the
// duration of rewriting its body, and temporaries introduced anywhere
// inside that body are drained into the unit's own declaration list once
// rewriting the body finishes. A parser's states and a control's actions
// share their enclosing unit's Scope rather than owning one.
type Scope struct {
	pending []*ir.Declaration
}

func newScope() *Scope {
	return &Scope{}
}

// buffer appends newly introduced declarations to the scope, in the
// order the Dismantler produced them.
func (s *Scope) buffer(decls []*ir.Declaration) {
	s.pending = append(s.pending, decls...)
}

// drain returns the buffered declarations and clears the scope, for
// splicing onto the front of a unit's own locals.
func (s *Scope) drain() []*ir.Declaration {
	d := s.pending
	s.pending = nil
	return d
}

// SpliceParser rewrites every state of a parser, draining temporaries
// introduced anywhere in the parser onto the front of its Locals — a
// P4 parser has one flat local scope shared by every state.
func (r *StatementRewriter) SpliceParser(p *ir.Parser) error {
	scope := newScope()
	for _, state := range p.States {
		if err := r.rewriteParserState(scope, state); err != nil {
			return err
		}
	}
	p.Locals = append(scope.drain(), p.Locals...)
	return nil
}

// SpliceControl rewrites a control's actions and its apply block,
// draining temporaries onto the front of the control's Locals (actions
// and the apply block share the control's single local scope, as in P4).
func (r *StatementRewriter) SpliceControl(c *ir.Control) error {
	scope := newScope()
	for _, a := range c.Actions {
		if err := r.spliceBody(scope, &a.Body); err != nil {
			return err
		}
	}
	if c.Apply != nil {
		if err := r.spliceBody(scope, &c.Apply); err != nil {
			return err
		}
	}
	c.Locals = append(scope.drain(), c.Locals...)
	return nil
}

// SpliceAction rewrites a standalone action's body, draining temporaries
// onto the front of the body.
func (r *StatementRewriter) SpliceAction(a *ir.Action) error {
	scope := newScope()
	if err := r.spliceBody(scope, &a.Body); err != nil {
		return err
	}
	a.Body.Stmts = append(declsToStmts(scope.drain()), a.Body.Stmts...)
	return nil
}

// SpliceFunction rewrites a function's body the same way as an action.
func (r *StatementRewriter) SpliceFunction(f *ir.Function) error {
	scope := newScope()
	if err := r.spliceBody(scope, &f.Body); err != nil {
		return err
	}
	f.Body.Stmts = append(declsToStmts(scope.drain()), f.Body.Stmts...)
	return nil
}

func (r *StatementRewriter) spliceBody(scope *Scope, body **ir.Block) error {
	rewritten, err := r.rewriteBlock(scope, *body)
	if err != nil {
		return err
	}
	*body = rewritten
	return nil
}

// rewriteParserState handles a parser state's Select expression
// directly: it does not occupy a Statement slot, so it cannot go through
// Rewrite's generic statement contract. Emitted
// statements are appended straight onto the state's own Components list
// (flattened, not wrapped in a sibling Block) and the Select field is
// replaced in place with the dismantled residual.
func (r *StatementRewriter) rewriteParserState(scope *Scope, state *ir.ParserState) error {
	for i, stmt := range state.Components {
		rewritten, err := r.Rewrite(scope, stmt)
		if err != nil {
			return err
		}
		state.Components[i] = rewritten
	}

	if state.Select == nil {
		return nil
	}

	order, err := r.dismantler.Dismantle(state.Select, false, false)
	if err != nil {
		return err
	}
	scope.buffer(order.Declarations)
	state.Components = append(state.Components, order.Stmts...)

	residual, ok := order.Final.(*ir.Select)
	if !ok {
		return errSelectResidual(order.Final)
	}
	state.Select = residual
	return nil
}

// declsToStmts is unused by the Parser/Control splice paths (they have a
// dedicated Locals list to prepend onto) but Action/Function bodies are
// plain Blocks, so their spliced declarations are represented as leading
// Declaration-carrying statements instead. The ir package models a
// Declaration as a Node, not a Statement, precisely because the two
// splice shapes (Locals list vs. leading Block statements) need it to
// sit outside the Statement tagged union; each unit kind adapts it to
// whichever shape its own AST uses.
func declsToStmts(decls []*ir.Declaration) []ir.Statement {
	if len(decls) == 0 {
		return nil
	}
	stmts := make([]ir.Statement, len(decls))
	for i, d := range decls {
		stmts[i] = &ir.DeclStmt{Decl: d}
	}
	return stmts
}
