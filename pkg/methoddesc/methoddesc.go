// Package methoddesc resolves a call's parameter list (direction and
// type) against its argument list. A call with no recorded signature
// defaults every argument to direction `in`: each argument is still
// evaluated and gets a copy-in temporary whenever the call uses
// temporaries, but an `in` parameter does not by itself make the call
// use them.
package methoddesc

import (
	"github.com/p4lang/p4dismantle/pkg/ir"
	"github.com/p4lang/p4dismantle/pkg/ptypes"
)

// Param describes one parameter of a resolved call.
type Param struct {
	Name      string
	Direction ir.Direction
	Type      ptypes.Type
}

// Signature is a call's resolved parameter list, keyed by callee identity
// so a host compiler can register one signature per declared method.
type Signature struct {
	Params []Param
}

// Registry maps a callee expression (the resolved IR::Method node in the
// original pass's terms) to its signature. A real front end would
// populate this from symbol-table lookups performed while building the
// tree; this package only resolves what has been registered.
type Registry struct {
	signatures map[ir.Expression]Signature
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{signatures: make(map[ir.Expression]Signature)}
}

// Register associates callee with its resolved signature.
func (r *Registry) Register(callee ir.Expression, sig Signature) {
	r.signatures[callee] = sig
}

// Describe resolves call's parameter list against its arguments, in
// declaration order. If call.Method has no registered signature, every
// argument is given a default `in` parameter (conservative: the
// Dismantler will still copy the value into a temporary when other
// arguments force useTemporaries, but a none-direction type argument
// cannot be synthesized without a signature).
func (r *Registry) Describe(call *ir.MethodCall) []Param {
	sig, ok := r.signatures[call.Method]
	if ok {
		n := len(call.Args)
		if n > len(sig.Params) {
			n = len(sig.Params)
		}
		return sig.Params[:n]
	}
	params := make([]Param, len(call.Args))
	for i := range call.Args {
		params[i] = Param{Direction: ir.DirIn, Type: ptypes.Error{}}
	}
	return params
}
