package main

import (
	"github.com/p4lang/p4dismantle/pkg/ir"
	"github.com/p4lang/p4dismantle/pkg/methoddesc"
	"github.com/p4lang/p4dismantle/pkg/ptypes"
	"github.com/p4lang/p4dismantle/pkg/typemap"
)

// sample bundles a hand-built unit together with the type annotations
// and method signatures a real front end would already have attached by
// the time this pass runs — there is no text parser in scope, so the
// demonstration programs are built directly against pkg/ir.
type sample struct {
	name        string
	description string
	build       func() (*ir.Action, *typemap.TypeMap, *methoddesc.Registry)
}

var samples = []sample{
	{
		name:        "inout-call",
		description: "an action calling an extern method with an inout header argument",
		build: func() (*ir.Action, *typemap.TypeMap, *methoddesc.Registry) {
			tm := typemap.New()
			hdr := &ir.Path{Name: "hdr"}
			tm.SetType(hdr, ptypes.Struct{Name: "headers_t"})
			tm.SetLeftValue(hdr)

			call := &ir.MethodCall{Method: &ir.Path{Name: "checksum_update"}, Args: []ir.Expression{hdr}}
			tm.SetType(call, ptypes.Void{})

			calls := methoddesc.NewRegistry()
			calls.Register(call.Method, methoddesc.Signature{Params: []methoddesc.Param{
				{Name: "h", Direction: ir.DirInOut, Type: ptypes.Struct{Name: "headers_t"}},
			}})

			action := &ir.Action{
				Name: "fix_checksum",
				Body: &ir.Block{Stmts: []ir.Statement{&ir.MethodCallStmt{Call: call}}},
			}
			return action, tm, calls
		},
	},
	{
		name:        "short-circuit",
		description: "an if condition combining a pure flag with a side-effecting lookup via &&",
		build: func() (*ir.Action, *typemap.TypeMap, *methoddesc.Registry) {
			tm := typemap.New()
			enabled := &ir.Path{Name: "enabled"}
			tm.SetType(enabled, ptypes.Bool{})

			lookup := &ir.MethodCall{Method: &ir.Path{Name: "lookup_allowed"}}
			tm.SetType(lookup, ptypes.Bool{})

			cond := &ir.LogicalAnd{Left: enabled, Right: lookup}

			drop := &ir.MethodCall{Method: &ir.Path{Name: "mark_to_drop"}}
			tm.SetType(drop, ptypes.Void{})

			action := &ir.Action{
				Name: "filter",
				Body: &ir.Block{Stmts: []ir.Statement{
					&ir.If{Cond: cond, IfTrue: &ir.MethodCallStmt{Call: drop}},
				}},
			}
			return action, tm, methoddesc.NewRegistry()
		},
	},
	{
		name:        "ternary",
		description: "an assignment whose right-hand side is a mux expression",
		build: func() (*ir.Action, *typemap.TypeMap, *methoddesc.Registry) {
			tm := typemap.New()
			isIPv6 := &ir.Path{Name: "is_ipv6"}
			tm.SetType(isIPv6, ptypes.Bool{})

			port := &ir.Path{Name: "egress_port"}
			tm.SetType(port, ptypes.Bits{Width: 9})
			tm.SetLeftValue(port)

			mux := &ir.Mux{Cond: isIPv6, Then: &ir.Literal{Value: 2}, Else: &ir.Literal{Value: 1}}
			tm.SetType(mux, ptypes.Bits{Width: 9})

			action := &ir.Action{
				Name: "route",
				Body: &ir.Block{Stmts: []ir.Statement{&ir.Assign{LHS: port, RHS: mux}}},
			}
			return action, tm, methoddesc.NewRegistry()
		},
	},
}

func findSample(name string) (sample, bool) {
	for _, s := range samples {
		if s.name == name {
			return s, true
		}
	}
	return sample{}, false
}
