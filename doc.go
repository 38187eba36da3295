// Package ucc compiles a small subset of C to x86-64 assembly.
//
// The accepted language has char and 8-byte int, pointers, arrays,
// global and local variables, string literals, if/while/for, blocks,
// statement expressions and calls to functions of up to six arguments.
// The output is a single Intel-syntax assembly file with a .data and a
// .text section, ready for an external assembler and linker.
//
// # Quick Start
//
//	prog, err := ucc.Compile(`int main() { return 2+3*4; }`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(prog.Assembly())
//
// Or write straight to an io.Writer:
//
//	err := ucc.Exec(src, os.Stdout, nil)
//
// # Error Handling
//
// Compilation stops at the first error. Errors are returned as [*Error],
// which records the kind of failure (lexical, syntax, type or internal),
// its source position, and renders a caret diagnostic with
// [Error.Diagnostic]:
//
//	int main() { return x; }
//	                    ^ undefined variable
//
// # Thread Safety
//
// Each call to [Compile] is independent; a compiled [Program] is
// immutable and safe for concurrent use.
package ucc
