// Package types defines the C type model: char, int, pointers and arrays.
//
// Size is fixed at construction from the kind, base and length and is
// never recomputed. int is deliberately 8 bytes so every scalar occupies
// one stack slot.
package types

import "fmt"

// Kind identifies the shape of a Type.
type Kind int

const (
	Char  Kind = iota // char
	Int               // int
	Ptr               // pointer to Base
	Array             // array of Len Base
)

// Type is an immutable C type.
type Type struct {
	Kind Kind
	Size int   // sizeof() value
	Base *Type // Pointee or element type; nil for char and int
	Len  int   // Number of elements if Kind == Array
}

// MaxSize bounds the size of any object and of any stack frame, keeping
// every frame offset inside a 32-bit displacement.
const MaxSize = 1 << 30

// Shared primitive types.
var (
	CharType = &Type{Kind: Char, Size: 1}
	IntType  = &Type{Kind: Int, Size: 8}
)

// PointerTo returns the type "pointer to base".
func PointerTo(base *Type) *Type {
	return &Type{Kind: Ptr, Size: 8, Base: base}
}

// ArrayOf returns the type "array of n base".
func ArrayOf(base *Type, n int) *Type {
	return &Type{Kind: Array, Size: base.Size * n, Base: base, Len: n}
}

// IsInteger reports whether t is char or int.
func (t *Type) IsInteger() bool {
	return t.Kind == Char || t.Kind == Int
}

// HasBase reports whether t is a pointer or an array.
func (t *Type) HasBase() bool {
	return t.Base != nil
}

// Decay returns pointer-to-element for arrays and t itself otherwise.
func (t *Type) Decay() *Type {
	if t.Kind == Array {
		return PointerTo(t.Base)
	}
	return t
}

// String renders t in C-like notation, e.g. "int*" or "char[4]".
func (t *Type) String() string {
	switch t.Kind {
	case Char:
		return "char"
	case Int:
		return "int"
	case Ptr:
		return t.Base.String() + "*"
	case Array:
		return fmt.Sprintf("%s[%d]", t.Base, t.Len)
	default:
		return "invalid"
	}
}
