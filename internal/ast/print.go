package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Printer writes a human-readable, S-expression-like rendering of a
// Program. Expressions print on one line with their resolved types;
// statements print one per line, indented by nesting depth.
type Printer struct {
	w      io.Writer
	prog   *Program
	indent int
	err    error
}

// NewPrinter creates a new Printer that writes nodes of prog to w.
func NewPrinter(w io.Writer, prog *Program) *Printer {
	return &Printer{w: w, prog: prog}
}

// Fprint writes the whole program to w.
func Fprint(w io.Writer, prog *Program) error {
	return NewPrinter(w, prog).PrintProgram()
}

// String renders a single node.
func (p *Program) String(id NodeID) string {
	var sb strings.Builder
	pr := NewPrinter(&sb, p)
	pr.printExpr(id)
	return sb.String()
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) writeIndent() {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, strings.Repeat("  ", p.indent))
}

// PrintProgram writes globals then functions.
func (p *Printer) PrintProgram() error {
	for _, v := range p.prog.Globals {
		p.printf("global %s %s", v.Name, v.Type)
		if v.Contents != nil {
			p.printf(" %s", strconv.Quote(string(v.Contents)))
		}
		p.printf("\n")
	}
	for _, fn := range p.prog.Functions {
		p.printFunction(fn)
	}
	return p.err
}

func (p *Printer) printFunction(fn *Function) {
	names := make([]string, len(fn.Params))
	for i, v := range fn.Params {
		names[i] = v.Name
	}
	p.printf("func %s(%s) stack=%d\n", fn.Name, strings.Join(names, ", "), fn.StackSize)

	p.indent++
	for _, v := range fn.Locals {
		p.writeIndent()
		p.printf("local %s %s @%d\n", v.Name, v.Type, v.Offset)
	}
	for _, id := range fn.Body {
		p.printStmt(id)
	}
	p.indent--
}

func (p *Printer) printStmt(id NodeID) {
	n := p.prog.Node(id)
	p.writeIndent()

	switch n.Kind {
	case Null:
		p.printf("(null)\n")
	case ExprStmt:
		p.printf("(expr ")
		p.printExpr(n.Lhs)
		p.printf(")\n")
	case Return:
		p.printf("(return ")
		p.printExpr(n.Lhs)
		p.printf(")\n")
	case If:
		p.printf("(if ")
		p.printExpr(n.Cond)
		p.printf("\n")
		p.printNested(n.Then)
		if n.Else != NoNode {
			p.writeIndent()
			p.printf("else\n")
			p.printNested(n.Else)
		}
		p.writeIndent()
		p.printf(")\n")
	case While:
		p.printf("(while ")
		p.printExpr(n.Cond)
		p.printf("\n")
		p.printNested(n.Then)
		p.writeIndent()
		p.printf(")\n")
	case For:
		p.printf("(for\n")
		p.indent++
		for _, part := range []NodeID{n.Init, n.Cond, n.Inc} {
			p.writeIndent()
			if part == NoNode {
				p.printf("-\n")
				continue
			}
			p.printExpr(part)
			p.printf("\n")
		}
		p.indent--
		p.printNested(n.Then)
		p.writeIndent()
		p.printf(")\n")
	case Block:
		p.printf("(block\n")
		for _, s := range n.Body {
			p.printNested(s)
		}
		p.writeIndent()
		p.printf(")\n")
	default:
		p.printExpr(id)
		p.printf("\n")
	}
}

func (p *Printer) printNested(id NodeID) {
	p.indent++
	p.printStmt(id)
	p.indent--
}

func (p *Printer) printExpr(id NodeID) {
	if id == NoNode {
		p.printf("<nil>")
		return
	}
	n := p.prog.Node(id)

	p.printf("(%s", n.Kind)
	if n.Type != nil {
		p.printf(":%s", n.Type)
	}

	switch {
	case n.Kind == Num:
		p.printf(" %d", n.Val)
	case n.Kind == VarRef:
		p.printf(" %s", n.Var.Name)
	case n.Kind == Addr || n.Kind == Deref:
		p.printf(" ")
		p.printExpr(n.Lhs)
	case n.Kind.IsBinary():
		p.printf(" ")
		p.printExpr(n.Lhs)
		p.printf(" ")
		p.printExpr(n.Rhs)
	case n.Kind == Call:
		p.printf(" %s", n.FuncName)
		for _, a := range n.Args {
			p.printf(" ")
			p.printExpr(a)
		}
	case n.Kind == StmtExpr:
		for _, s := range n.Body {
			p.printf(" ")
			p.printInline(s)
		}
		p.printf(" ")
		p.printExpr(n.Value)
	case n.Kind == ExprStmt || n.Kind == Return:
		p.printf(" ")
		p.printExpr(n.Lhs)
	}
	p.printf(")")
}

// printInline renders a statement nested inside an expression.
func (p *Printer) printInline(id NodeID) {
	var sb strings.Builder
	sub := &Printer{w: &sb, prog: p.prog}
	sub.printStmt(id)
	p.printf("%s", strings.Join(strings.Fields(sb.String()), " "))
	if sub.err != nil && p.err == nil {
		p.err = sub.err
	}
}
