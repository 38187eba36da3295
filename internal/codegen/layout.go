package codegen

import (
	"github.com/kolkov/ucc/internal/ast"
)

// FrameAlign is the boundary every frame size is rounded up to.
const FrameAlign = 16

// Frame describes the stack layout of one function.
type Frame struct {
	Func   string
	Size   int        // Aligned frame size
	Locals []*ast.Var // In declaration order, offsets assigned
}

// Layout assigns a frame-base offset to every local of every function and
// records each function's frame size. Locals are packed in declaration
// order without padding: each one ends where the previous one began.
// It must run after parsing and before Generate.
func Layout(prog *ast.Program) []Frame {
	frames := make([]Frame, 0, len(prog.Functions))
	for _, fn := range prog.Functions {
		offset := 0
		for _, v := range fn.Locals {
			offset += v.Type.Size
			v.Offset = offset
		}
		fn.StackSize = alignTo(offset, FrameAlign)
		frames = append(frames, Frame{Func: fn.Name, Size: fn.StackSize, Locals: fn.Locals})
	}
	return frames
}

// alignTo rounds n up to the nearest multiple of align.
func alignTo(n, align int) int {
	return (n + align - 1) / align * align
}
