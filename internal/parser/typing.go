package parser

import (
	"github.com/kolkov/ucc/internal/ast"
	"github.com/kolkov/ucc/internal/diag"
	"github.com/kolkov/ucc/internal/token"
	"github.com/kolkov/ucc/internal/types"
)

// AddType resolves the type of id and of every node below it. Nodes that
// already carry a type are left untouched, so calling it again is a no-op.
func AddType(prog *ast.Program, id ast.NodeID) (err error) {
	defer recoverError(&err)
	addType(prog, id)
	return nil
}

func addType(prog *ast.Program, id ast.NodeID) {
	if id == ast.NoNode {
		return
	}
	n := prog.Node(id)
	if n.Type != nil {
		return
	}

	addType(prog, n.Lhs)
	addType(prog, n.Rhs)
	addType(prog, n.Cond)
	addType(prog, n.Then)
	addType(prog, n.Else)
	addType(prog, n.Init)
	addType(prog, n.Inc)
	addType(prog, n.Value)
	for _, b := range n.Body {
		addType(prog, b)
	}
	for _, a := range n.Args {
		addType(prog, a)
	}

	switch n.Kind {
	case ast.Num, ast.Call:
		n.Type = types.IntType
	case ast.Add, ast.Sub, ast.PtrDiff:
		n.Type = types.IntType
	case ast.Mul, ast.Div, ast.Eq, ast.Ne, ast.Lt, ast.Le:
		checkScalar(prog, n.Lhs)
		checkScalar(prog, n.Rhs)
		n.Type = types.IntType
	case ast.PtrAdd, ast.PtrSub:
		n.Type = typeOf(prog, n.Lhs)
	case ast.Assign:
		n.Type = checkAssign(prog, n)
	case ast.VarRef:
		n.Type = n.Var.Type
	case ast.Addr:
		operand := typeOf(prog, n.Lhs)
		if operand.Kind == types.Array {
			n.Type = types.PointerTo(operand.Base)
		} else {
			n.Type = types.PointerTo(operand)
		}
	case ast.Deref:
		operand := typeOf(prog, n.Lhs)
		if !operand.HasBase() {
			abort(diag.Type, n.Pos, errInvalidDeref)
		}
		n.Type = operand.Base
	case ast.StmtExpr:
		n.Type = typeOf(prog, n.Value)
	case ast.Return:
		checkScalar(prog, n.Lhs)
	case ast.If, ast.While, ast.For:
		if n.Cond != ast.NoNode {
			checkScalar(prog, n.Cond)
		}
	case ast.Null, ast.ExprStmt, ast.Block:
		// No type, nothing to check.
	}
}

// checkScalar rejects an array where its value, rather than its address,
// is needed.
func checkScalar(prog *ast.Program, id ast.NodeID) {
	if typeOf(prog, id).Kind == types.Array {
		abort(diag.Type, prog.Node(id).Pos, errArrayAsScalar)
	}
}

// checkAssign rejects stores into arrays and array values stored into
// scalars, then yields the type of the left operand.
func checkAssign(prog *ast.Program, n *ast.Node) *types.Type {
	lhs := typeOf(prog, n.Lhs)
	if lhs.Kind == types.Array {
		abort(diag.Type, prog.Node(n.Lhs).Pos, errNotLValue)
	}
	if lhs.IsInteger() && typeOf(prog, n.Rhs).Kind == types.Array {
		abort(diag.Type, prog.Node(n.Rhs).Pos, errArrayAsScalar)
	}
	return lhs
}

func typeOf(prog *ast.Program, id ast.NodeID) *types.Type {
	return prog.Node(id).Type
}

// newAdd builds "+" after resolving operand types. Pointer arithmetic is
// normalized so the pointer is always the left operand.
func (p *Parser) newAdd(lhs, rhs ast.NodeID, pos token.Position) ast.NodeID {
	addType(p.prog, lhs)
	addType(p.prog, rhs)
	lt, rt := typeOf(p.prog, lhs), typeOf(p.prog, rhs)

	switch {
	case lt.IsInteger() && rt.IsInteger():
		return p.newBinary(ast.Add, lhs, rhs, pos)
	case lt.HasBase() && rt.IsInteger():
		return p.newPtrArith(ast.PtrAdd, lhs, rhs, pos)
	case lt.IsInteger() && rt.HasBase():
		return p.newPtrArith(ast.PtrAdd, rhs, lhs, pos)
	}
	abort(diag.Type, pos, errInvalidOperands)
	return ast.NoNode
}

// newSub builds "-": int-int, pointer-int or pointer-pointer.
func (p *Parser) newSub(lhs, rhs ast.NodeID, pos token.Position) ast.NodeID {
	addType(p.prog, lhs)
	addType(p.prog, rhs)
	lt, rt := typeOf(p.prog, lhs), typeOf(p.prog, rhs)

	switch {
	case lt.IsInteger() && rt.IsInteger():
		return p.newBinary(ast.Sub, lhs, rhs, pos)
	case lt.HasBase() && rt.IsInteger():
		return p.newPtrArith(ast.PtrSub, lhs, rhs, pos)
	case lt.HasBase() && rt.HasBase():
		return p.newBinary(ast.PtrDiff, lhs, rhs, pos)
	}
	abort(diag.Type, pos, errInvalidOperands)
	return ast.NoNode
}

// newPtrArith builds pointer +/- int. An array operand decays, so the
// node's type is a pointer to the element type.
func (p *Parser) newPtrArith(kind ast.Kind, ptr, offset ast.NodeID, pos token.Position) ast.NodeID {
	id := p.newBinary(kind, ptr, offset, pos)
	p.node(id).Type = typeOf(p.prog, ptr).Decay()
	return id
}
