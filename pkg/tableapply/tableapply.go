// Package tableapply recognizes the `table.apply().hit` and
// `table.apply().action_run` call patterns, whose result type is never
// nameable and so must never be hoisted into a temporary declaration.
package tableapply

import "github.com/p4lang/p4dismantle/pkg/ir"

// IsApplyCall reports whether call is (syntactically) a table.apply()
// invocation: a Member access named "apply" used as the callee.
func IsApplyCall(call *ir.MethodCall) bool {
	member, ok := call.Method.(*ir.Member)
	return ok && member.Name == "apply"
}

// IsHit reports whether parent is the `.hit` selector applied directly to
// a table.apply() call: `t.apply().hit`.
func IsHit(parent *ir.Member) bool {
	return isApplyResultSelector(parent, "hit")
}

// IsActionRun reports whether parent is the `.action_run` selector
// applied directly to a table.apply() call: `t.apply().action_run`.
func IsActionRun(parent *ir.Member) bool {
	return isApplyResultSelector(parent, "action_run")
}

func isApplyResultSelector(parent *ir.Member, name string) bool {
	if parent == nil || parent.Name != name {
		return false
	}
	call, ok := parent.Expr.(*ir.MethodCall)
	return ok && IsApplyCall(call)
}
