// Package codegen lowers a typed Program to x86-64 assembly (Intel syntax).
//
// Code is generated for a stack machine: every expression pushes exactly
// one 8-byte value onto the hardware stack and every statement leaves the
// stack as it found it.
package codegen

import (
	"fmt"
	"strings"

	"github.com/kolkov/ucc/internal/ast"
	"github.com/kolkov/ucc/internal/diag"
	"github.com/kolkov/ucc/internal/token"
	"github.com/kolkov/ucc/internal/types"
)

// Argument registers in calling-convention order.
var (
	argReg8 = [...]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
	argReg1 = [...]string{"dil", "sil", "dl", "cl", "r8b", "r9b"}
)

type generator struct {
	prog  *ast.Program
	sb    strings.Builder
	fn    *ast.Function // Function being generated
	seq   int           // Label sequence number
	depth int           // Values currently on the evaluation stack
}

// Generate emits the assembly for prog. Layout must have run first.
// Malformed trees that the parser should have rejected produce an
// internal *diag.Error instead of assembly.
func Generate(prog *ast.Program) (asm string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if de, ok := r.(*diag.Error); ok {
				asm, err = "", de
				return
			}
			panic(r)
		}
	}()

	g := &generator{prog: prog}
	g.emitf(".intel_syntax noprefix")
	g.emitData()
	g.emitText()
	return g.sb.String(), nil
}

func (g *generator) emitf(format string, args ...any) {
	fmt.Fprintf(&g.sb, format, args...)
	g.sb.WriteByte('\n')
}

// insn emits an indented instruction.
func (g *generator) insn(format string, args ...any) {
	g.sb.WriteString("  ")
	g.emitf(format, args...)
}

func (g *generator) label(format string, args ...any) {
	g.emitf(format+":", args...)
}

func (g *generator) nextSeq() int {
	n := g.seq
	g.seq++
	return n
}

func (g *generator) fail(pos token.Position, format string, args ...any) {
	panic(diag.Errorf(diag.Internal, pos, format, args...))
}

// -----------------------------------------------------------------------------
// Sections
// -----------------------------------------------------------------------------

func (g *generator) emitData() {
	g.emitf(".data")
	for _, v := range g.prog.Globals {
		g.label("%s", v.Name)
		if v.Contents == nil {
			g.insn(".zero %d", v.Type.Size)
			continue
		}
		for _, b := range v.Contents {
			g.insn(".byte %d", b)
		}
	}
}

func (g *generator) emitText() {
	g.emitf(".text")
	for _, fn := range g.prog.Functions {
		g.fn = fn
		g.emitf(".global %s", fn.Name)
		g.label("%s", fn.Name)

		// Prologue
		g.insn("push rbp")
		g.insn("mov rbp, rsp")
		g.insn("sub rsp, %d", fn.StackSize)

		for i, v := range fn.Params {
			if v.Type.Size == 1 {
				g.insn("mov [rbp-%d], %s", v.Offset, argReg1[i])
			} else {
				g.insn("mov [rbp-%d], %s", v.Offset, argReg8[i])
			}
		}

		for _, id := range fn.Body {
			g.genStmt(id)
			if g.depth != 0 {
				g.fail(g.prog.Node(id).Pos, "unbalanced evaluation stack in %s", fn.Name)
			}
		}

		// Epilogue
		g.label(".L.return.%s", fn.Name)
		g.insn("mov rsp, rbp")
		g.insn("pop rbp")
		g.insn("ret")
	}
}

// -----------------------------------------------------------------------------
// Evaluation stack
// -----------------------------------------------------------------------------

func (g *generator) push(operand string) {
	g.insn("push %s", operand)
	g.depth++
}

func (g *generator) pop(reg string) {
	g.insn("pop %s", reg)
	g.depth--
}

// load replaces the address on top of the stack with the value it
// points to. Single bytes are sign-extended.
func (g *generator) load(ty *types.Type) {
	g.pop("rax")
	if ty.Size == 1 {
		g.insn("movsx rax, byte ptr [rax]")
	} else {
		g.insn("mov rax, [rax]")
	}
	g.push("rax")
}

// store pops a value and an address, writes the value, and pushes it
// back as the result of the assignment.
func (g *generator) store(ty *types.Type) {
	g.pop("rdi")
	g.pop("rax")
	if ty.Size == 1 {
		g.insn("mov [rax], dil")
	} else {
		g.insn("mov [rax], rdi")
	}
	g.push("rdi")
}

// -----------------------------------------------------------------------------
// Addresses
// -----------------------------------------------------------------------------

// genAddr pushes the address of an lvalue.
func (g *generator) genAddr(id ast.NodeID) {
	n := g.prog.Node(id)
	switch n.Kind {
	case ast.VarRef:
		if n.Var.IsLocal {
			g.insn("lea rax, [rbp-%d]", n.Var.Offset)
		} else {
			g.insn("lea rax, %s[rip]", n.Var.Name)
		}
		g.push("rax")
	case ast.Deref:
		g.genExpr(n.Lhs)
	default:
		g.fail(n.Pos, "not an lvalue")
	}
}

// genLval pushes the address of an assignment target.
func (g *generator) genLval(id ast.NodeID) {
	n := g.prog.Node(id)
	if n.Type != nil && n.Type.Kind == types.Array {
		g.fail(n.Pos, "not an lvalue")
	}
	g.genAddr(id)
}

// -----------------------------------------------------------------------------
// Expressions
// -----------------------------------------------------------------------------

func (g *generator) genExpr(id ast.NodeID) {
	n := g.prog.Node(id)
	switch n.Kind {
	case ast.Num:
		if n.Val == int64(int32(n.Val)) {
			g.push(fmt.Sprint(n.Val))
		} else {
			g.insn("mov rax, %d", n.Val)
			g.push("rax")
		}
	case ast.VarRef:
		g.genAddr(id)
		if n.Type.Kind != types.Array {
			g.load(n.Type)
		}
	case ast.Addr:
		g.genAddr(n.Lhs)
	case ast.Deref:
		g.genExpr(n.Lhs)
		if n.Type.Kind != types.Array {
			g.load(n.Type)
		}
	case ast.Assign:
		g.genLval(n.Lhs)
		g.genExpr(n.Rhs)
		g.store(n.Type)
	case ast.StmtExpr:
		for _, s := range n.Body {
			g.genStmt(s)
		}
		g.genExpr(n.Value)
	case ast.Call:
		g.genCall(n)
	case ast.Add, ast.PtrAdd, ast.Sub, ast.PtrSub, ast.PtrDiff,
		ast.Mul, ast.Div, ast.Eq, ast.Ne, ast.Lt, ast.Le:
		g.genBinary(n)
	case ast.Null, ast.ExprStmt, ast.Return, ast.If, ast.While, ast.For, ast.Block:
		g.fail(n.Pos, "%s statement used as an expression", n.Kind)
	default:
		g.fail(n.Pos, "invalid expression")
	}
}

// genBinary evaluates both operands and combines them in rax.
func (g *generator) genBinary(n *ast.Node) {
	kind := n.Kind
	var scale int
	if kind == ast.PtrAdd || kind == ast.PtrSub || kind == ast.PtrDiff {
		scale = g.prog.Node(n.Lhs).Type.Base.Size
	}

	g.genExpr(n.Lhs)
	g.genExpr(n.Rhs)
	g.pop("rdi")
	g.pop("rax")

	switch kind {
	case ast.Add:
		g.insn("add rax, rdi")
	case ast.PtrAdd:
		g.insn("imul rdi, %d", scale)
		g.insn("add rax, rdi")
	case ast.Sub:
		g.insn("sub rax, rdi")
	case ast.PtrSub:
		g.insn("imul rdi, %d", scale)
		g.insn("sub rax, rdi")
	case ast.PtrDiff:
		g.insn("sub rax, rdi")
		g.insn("cqo")
		g.insn("mov rdi, %d", scale)
		g.insn("idiv rdi")
	case ast.Mul:
		g.insn("imul rax, rdi")
	case ast.Div:
		g.insn("cqo")
		g.insn("idiv rdi")
	case ast.Eq:
		g.compare("sete")
	case ast.Ne:
		g.compare("setne")
	case ast.Lt:
		g.compare("setl")
	case ast.Le:
		g.compare("setle")
	}

	g.push("rax")
}

func (g *generator) compare(set string) {
	g.insn("cmp rax, rdi")
	g.insn("%s al", set)
	g.insn("movzb rax, al")
}

// genCall evaluates arguments left to right, moves them into argument
// registers, and aligns rsp to 16 bytes around the call.
func (g *generator) genCall(n *ast.Node) {
	if len(n.Args) > len(argReg8) {
		g.fail(n.Pos, "too many arguments")
	}
	for _, a := range n.Args {
		g.genExpr(a)
	}
	for i := len(n.Args) - 1; i >= 0; i-- {
		g.pop(argReg8[i])
	}

	seq := g.nextSeq()
	g.insn("mov rax, rsp")
	g.insn("and rax, 15")
	g.insn("jnz .L.call.%d", seq)
	g.insn("mov rax, 0")
	g.insn("call %s", n.FuncName)
	g.insn("jmp .L.end.%d", seq)
	g.label(".L.call.%d", seq)
	g.insn("sub rsp, 8")
	g.insn("mov rax, 0")
	g.insn("call %s", n.FuncName)
	g.insn("add rsp, 8")
	g.label(".L.end.%d", seq)
	g.push("rax")
}

// -----------------------------------------------------------------------------
// Statements
// -----------------------------------------------------------------------------

// genCond evaluates a condition and jumps to target when it is zero.
func (g *generator) genCond(cond ast.NodeID, target string) {
	g.genExpr(cond)
	g.pop("rax")
	g.insn("cmp rax, 0")
	g.insn("je %s", target)
}

func (g *generator) genStmt(id ast.NodeID) {
	n := g.prog.Node(id)
	switch n.Kind {
	case ast.Null:
	case ast.ExprStmt:
		g.genExpr(n.Lhs)
		g.insn("add rsp, 8")
		g.depth--
	case ast.Return:
		g.genExpr(n.Lhs)
		g.pop("rax")
		g.insn("jmp .L.return.%s", g.fn.Name)
	case ast.If:
		seq := g.nextSeq()
		if n.Else == ast.NoNode {
			g.genCond(n.Cond, fmt.Sprintf(".L.end.%d", seq))
			g.genStmt(n.Then)
		} else {
			g.genCond(n.Cond, fmt.Sprintf(".L.else.%d", seq))
			g.genStmt(n.Then)
			g.insn("jmp .L.end.%d", seq)
			g.label(".L.else.%d", seq)
			g.genStmt(n.Else)
		}
		g.label(".L.end.%d", seq)
	case ast.While:
		seq := g.nextSeq()
		g.label(".L.begin.%d", seq)
		g.genCond(n.Cond, fmt.Sprintf(".L.end.%d", seq))
		g.genStmt(n.Then)
		g.insn("jmp .L.begin.%d", seq)
		g.label(".L.end.%d", seq)
	case ast.For:
		seq := g.nextSeq()
		if n.Init != ast.NoNode {
			g.genStmt(n.Init)
		}
		g.label(".L.begin.%d", seq)
		if n.Cond != ast.NoNode {
			g.genCond(n.Cond, fmt.Sprintf(".L.end.%d", seq))
		}
		g.genStmt(n.Then)
		if n.Inc != ast.NoNode {
			g.genStmt(n.Inc)
		}
		g.insn("jmp .L.begin.%d", seq)
		g.label(".L.end.%d", seq)
	case ast.Block:
		for _, s := range n.Body {
			g.genStmt(s)
		}
	default:
		g.fail(n.Pos, "invalid statement")
	}
}
