package ucc

import (
	"io"
	"strings"

	"github.com/kolkov/ucc/internal/ast"
	"github.com/kolkov/ucc/internal/codegen"
)

// Program represents a compiled translation unit.
type Program struct {
	tree   *ast.Program
	frames []codegen.Frame
	asm    string
	source string // Original source for debugging
}

// Frame is the stack layout of one function.
type Frame struct {
	Func   string
	Size   int // Frame size in bytes, 16-byte aligned
	Locals []Local
}

// Local is one stack slot. Its address is Offset bytes below the frame base.
type Local struct {
	Name   string
	Type   string
	Offset int
	Size   int
}

// Assembly returns the generated assembly text.
func (p *Program) Assembly() string {
	return p.asm
}

// WriteTo writes the assembly to w.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, p.asm)
	return int64(n), err
}

// Source returns the original C source.
func (p *Program) Source() string {
	return p.source
}

// DumpAST returns the typed syntax tree in a human-readable form.
func (p *Program) DumpAST() string {
	var sb strings.Builder
	if err := ast.Fprint(&sb, p.tree); err != nil {
		return err.Error()
	}
	return sb.String()
}

// Frames returns the stack layout of every function in definition order.
func (p *Program) Frames() []Frame {
	frames := make([]Frame, len(p.frames))
	for i, f := range p.frames {
		locals := make([]Local, len(f.Locals))
		for j, v := range f.Locals {
			locals[j] = Local{
				Name:   v.Name,
				Type:   v.Type.String(),
				Offset: v.Offset,
				Size:   v.Type.Size,
			}
		}
		frames[i] = Frame{Func: f.Func, Size: f.Size, Locals: locals}
	}
	return frames
}
