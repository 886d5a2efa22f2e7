package dismantle

import "fmt"

// InternalError reports a fatal, unrecoverable precondition violation: the
// pass assumes a well-typed, resolved input tree, so any of these indicate
// an internal compiler bug rather than a malformed source program. The
// caller (a host compiler) is expected to surface this through its own
// diagnostic channel and abort the pass for the current unit; there is no
// recovery path.
type InternalError struct {
	Reason string
	Node   interface{}
}

func (e *InternalError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("simplifyexpressions: internal error: %s (node: %#v)", e.Reason, e.Node)
	}
	return fmt.Sprintf("simplifyexpressions: internal error: %s", e.Reason)
}

func errMethodCallInLeftValue(call interface{}) error {
	return &InternalError{Reason: "method call found in left-value position", Node: call}
}

func errMissingType(node interface{}) error {
	return &InternalError{Reason: "missing type annotation", Node: node}
}

func errNilResidual(node interface{}) error {
	return &InternalError{Reason: "dismantling a required slot produced a nil residual", Node: node}
}
