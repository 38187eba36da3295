// Package ast defines the abstract syntax tree for the C subset.
//
// Nodes live in an arena owned by the Program and refer to each other by
// NodeID. Index 0 of the arena is a sentinel, so the zero NodeID means
// "no node". Nodes are always built bottom-up: children are added to the
// arena before the parent that references them.
//
// Node kinds:
//
//	expressions: Num, Var, Addr, Deref, Add, PtrAdd, Sub, PtrSub, PtrDiff,
//	             Mul, Div, Eq, Ne, Lt, Le, Assign, Call, StmtExpr
//	statements:  Return, If, While, For, Block, ExprStmt, Null
package ast

import (
	"github.com/kolkov/ucc/internal/token"
	"github.com/kolkov/ucc/internal/types"
)

// NodeID addresses a node in the Program arena.
type NodeID int32

// NoNode is the zero NodeID; it never refers to a real node.
const NoNode NodeID = 0

// Kind is the tag of a Node.
type Kind uint8

const (
	Null     Kind = iota // empty statement
	Num                  // integer literal
	VarRef               // variable reference
	Addr                 // unary &
	Deref                // unary *
	Add                  // int + int
	PtrAdd               // pointer + int
	Sub                  // int - int
	PtrSub               // pointer - int
	PtrDiff              // pointer - pointer
	Mul                  // *
	Div                  // /
	Eq                   // ==
	Ne                   // !=
	Lt                   // <
	Le                   // <=
	Assign               // =
	Call                 // function call
	StmtExpr             // ({ ... })
	ExprStmt             // expression statement
	Return               // "return"
	If                   // "if"
	While                // "while"
	For                  // "for"
	Block                // { ... }
)

var kindNames = [...]string{
	Null:     "null",
	Num:      "num",
	VarRef:   "var",
	Addr:     "addr",
	Deref:    "deref",
	Add:      "add",
	PtrAdd:   "ptr-add",
	Sub:      "sub",
	PtrSub:   "ptr-sub",
	PtrDiff:  "ptr-diff",
	Mul:      "mul",
	Div:      "div",
	Eq:       "eq",
	Ne:       "ne",
	Lt:       "lt",
	Le:       "le",
	Assign:   "assign",
	Call:     "call",
	StmtExpr: "stmt-expr",
	ExprStmt: "expr-stmt",
	Return:   "return",
	If:       "if",
	While:    "while",
	For:      "for",
	Block:    "block",
}

// String returns the node kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// IsBinary reports whether k is a two-operand expression.
func (k Kind) IsBinary() bool {
	return k >= Add && k <= Assign
}

// Node is one AST node. Which fields are meaningful depends on Kind.
type Node struct {
	Kind Kind
	Pos  token.Position // Representative token, for diagnostics
	Type *types.Type    // Resolved type; nil until type propagation reaches it

	Lhs NodeID // Unary operand, left operand, return value, expression statement
	Rhs NodeID // Right operand

	// "if", "while" and "for"
	Cond NodeID
	Then NodeID
	Else NodeID
	Init NodeID
	Inc  NodeID

	// Block and statement expression
	Body []NodeID

	// Value is the final expression of a statement expression; its value
	// is the value of the whole construct.
	Value NodeID

	// Function call
	FuncName string
	Args     []NodeID

	Var *Var  // Kind == VarRef
	Val int64 // Kind == Num
}
