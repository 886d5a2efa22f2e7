// Package typemap implements an identity-keyed type oracle: a side table
// recording, for any expression node a caller has seen, its type and its
// left-value / compile-time-constant flags.
//
// Identity, not structural equality, is the key: two structurally-equal
// nodes dismantled in different contexts must not share an entry. The
// table is keyed by Go pointer identity rather than embedding the type
// directly on the node, since annotations must be settable on nodes this
// package did not itself construct — including the postorder catch-all
// case, which copies annotations from an original node onto a freshly
// built replacement.
package typemap

import (
	"fmt"

	"github.com/p4lang/p4dismantle/pkg/ir"
	"github.com/p4lang/p4dismantle/pkg/ptypes"
)

type entry struct {
	typ                   ptypes.Type
	hasType               bool
	isLeftValue           bool
	isCompileTimeConstant bool
}

// TypeMap is the oracle. The zero value is not usable; construct with New.
type TypeMap struct {
	entries map[ir.Expression]*entry
}

// New creates an empty TypeMap.
func New() *TypeMap {
	return &TypeMap{entries: make(map[ir.Expression]*entry)}
}

func (m *TypeMap) entryFor(node ir.Expression) *entry {
	e, ok := m.entries[node]
	if !ok {
		e = &entry{}
		m.entries[node] = e
	}
	return e
}

// GetType returns the recorded type for node. It reports ok=false if no
// type was ever recorded, which a caller should treat as a fatal
// precondition violation rather than a recoverable case.
func (m *TypeMap) GetType(node ir.Expression) (ptypes.Type, bool) {
	e, ok := m.entries[node]
	if !ok || !e.hasType {
		return nil, false
	}
	return e.typ, true
}

// SetType records the type of node.
func (m *TypeMap) SetType(node ir.Expression, typ ptypes.Type) {
	e := m.entryFor(node)
	e.typ = typ
	e.hasType = true
}

// IsLeftValue reports whether node occupies a left-value position.
func (m *TypeMap) IsLeftValue(node ir.Expression) bool {
	e, ok := m.entries[node]
	return ok && e.isLeftValue
}

// SetLeftValue marks node as a left-value.
func (m *TypeMap) SetLeftValue(node ir.Expression) {
	m.entryFor(node).isLeftValue = true
}

// IsCompileTimeConstant reports whether node is a compile-time constant.
func (m *TypeMap) IsCompileTimeConstant(node ir.Expression) bool {
	e, ok := m.entries[node]
	return ok && e.isCompileTimeConstant
}

// SetCompileTimeConstant marks node as a compile-time constant.
func (m *TypeMap) SetCompileTimeConstant(node ir.Expression) {
	m.entryFor(node).isCompileTimeConstant = true
}

// CopyAnnotations copies type, left-value, and compile-time-constant flags
// from src onto dst. Used by the catch-all rewrite rule to carry
// annotations onto a freshly-constructed node.
func (m *TypeMap) CopyAnnotations(dst, src ir.Expression) {
	if typ, ok := m.GetType(src); ok {
		m.SetType(dst, typ)
	}
	if m.IsLeftValue(src) {
		m.SetLeftValue(dst)
	}
	if m.IsCompileTimeConstant(src) {
		m.SetCompileTimeConstant(dst)
	}
}

// MissingTypeError reports that a node requiring a type has none recorded.
type MissingTypeError struct {
	Node ir.Expression
}

func (e *MissingTypeError) Error() string {
	return fmt.Sprintf("internal error: no type recorded for node %T", e.Node)
}
