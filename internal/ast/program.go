package ast

import (
	"github.com/kolkov/ucc/internal/token"
	"github.com/kolkov/ucc/internal/types"
)

// Var is a named storage location.
type Var struct {
	Name    string
	Type    *types.Type
	IsLocal bool
	Pos     token.Position

	// Offset is the distance below the frame base for locals.
	// It is zero until the stack layout pass runs.
	Offset int

	// Contents holds the initial bytes of a string-literal global.
	Contents []byte
}

// Function is a function definition.
type Function struct {
	Name   string
	Pos    token.Position
	Params []*Var   // Subset of Locals, in declaration order
	Locals []*Var   // Every local in declaration order
	Body   []NodeID // Statements

	// StackSize is the aligned frame size, set by the layout pass.
	StackSize int
}

// Program is the root artifact handed to code generation.
type Program struct {
	Globals   []*Var
	Functions []*Function

	nodes []Node
}

// NewProgram creates an empty Program whose arena holds only the sentinel.
func NewProgram() *Program {
	return &Program{nodes: make([]Node, 1, 64)}
}

// Add appends n to the arena and returns its ID.
func (p *Program) Add(n Node) NodeID {
	p.nodes = append(p.nodes, n)
	return NodeID(len(p.nodes) - 1)
}

// Node returns the node with the given ID. The pointer is only valid
// until the next call to Add.
func (p *Program) Node(id NodeID) *Node {
	return &p.nodes[id]
}

// Len returns the number of real nodes in the arena.
func (p *Program) Len() int {
	return len(p.nodes) - 1
}

// Function looks up a function by name.
func (p *Program) Function(name string) *Function {
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// Global looks up a global variable by name.
func (p *Program) Global(name string) *Var {
	for _, v := range p.Globals {
		if v.Name == name {
			return v
		}
	}
	return nil
}
