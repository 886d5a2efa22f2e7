// Package ptypes defines the P4 type algebra used by the type oracle.
// It mirrors CompCert's Ctypes in shape (a closed sum type behind a Type
// interface) but with P4's own finite set of value types.
package ptypes

import "fmt"

// Type is the interface implemented by every P4 value type.
type Type interface {
	implType()
	String() string
}

// Bool is P4's boolean type.
type Bool struct{}

func (Bool) implType()      {}
func (Bool) String() string { return "bool" }

// Bits is a P4 bit<N> or int<N> type.
type Bits struct {
	Width  int
	Signed bool
}

func (Bits) implType() {}
func (b Bits) String() string {
	if b.Signed {
		return fmt.Sprintf("int<%d>", b.Width)
	}
	return fmt.Sprintf("bit<%d>", b.Width)
}

// Void is the type of a statement-context method call with no result.
type Void struct{}

func (Void) implType()      {}
func (Void) String() string { return "void" }

// Error stands in for a failed or missing type lookup.
type Error struct{}

func (Error) implType()      {}
func (Error) String() string { return "<type error>" }

// Table is the opaque, unnamable type of a table.apply() result. No
// temporary can be declared with this type, which is the reason the
// result-placement special case in the Dismantler exists.
type Table struct {
	TableName string
}

func (Table) implType()        {}
func (t Table) String() string { return fmt.Sprintf("<apply result of %s>", t.TableName) }

// Extern is an opaque externally-defined type (e.g. an extern object or
// a parser/control instance type), referenced only by name.
type Extern struct {
	Name string
}

func (Extern) implType()        {}
func (e Extern) String() string { return e.Name }

// Field is one member of a Struct type.
type Field struct {
	Name string
	Type Type
}

// Struct is a P4 struct/header type.
type Struct struct {
	Name   string
	Fields []Field
}

func (Struct) implType()        {}
func (s Struct) String() string { return "struct " + s.Name }

// FieldType returns the type of the named field, or Error if absent.
func (s Struct) FieldType(name string) Type {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return Error{}
}
