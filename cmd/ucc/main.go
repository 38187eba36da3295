// ucc - a small C compiler
//
// Translates a subset of C to x86-64 assembly (Intel syntax).
// Uses manual argument parsing so flags may be glued to their argument
// (-ofile, -fsrc.c).
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kolkov/ucc"
)

// version can be overridden at build time via -ldflags.
var version = ucc.Version

const (
	shortUsage = "usage: ucc [-o outfile] [-d | -dl] (-f srcfile | 'source')"
	longUsage  = `Arguments:
  'source'          C source text to compile
  -f srcfile        read the source from srcfile ("-" for stdin)
  -o outfile        write assembly to outfile instead of stdout

Debugging arguments:
  -d                print the typed AST to stderr and exit
  -dl               print the stack frame layout to stderr and exit

Other:
  -h, --help        show this help message
  -version          show ucc version and exit
`
)

//nolint:gocyclo // CLI argument parsing is inherently branchy
func main() {
	var srcFile, outFile string
	debugAST := false
	debugLayout := false

	var i int
	for i = 1; i < len(os.Args); i++ {
		arg := os.Args[i]
		if arg == "--" {
			i++
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			break
		}

		switch arg {
		case "-f":
			if i+1 >= len(os.Args) {
				errorExitf("flag needs an argument: -f")
			}
			i++
			srcFile = os.Args[i]
		case "-o":
			if i+1 >= len(os.Args) {
				errorExitf("flag needs an argument: -o")
			}
			i++
			outFile = os.Args[i]
		case "-d":
			debugAST = true
		case "-dl":
			debugLayout = true
		case "-h", "--help":
			fmt.Printf("ucc %s - small C compiler\n\n%s\n\n%s", version, shortUsage, longUsage)
			os.Exit(0)
		case "-version", "--version":
			fmt.Printf("ucc version %s\n", version)
			os.Exit(0)
		default:
			switch {
			case strings.HasPrefix(arg, "-f"):
				srcFile = arg[2:]
			case strings.HasPrefix(arg, "-o"):
				outFile = arg[2:]
			default:
				errorExitf("flag provided but not defined: %s", arg)
			}
		}
	}
	args := os.Args[i:]

	// Determine source
	var src, filename string
	switch {
	case srcFile != "" && len(args) == 0:
		data, err := readSource(srcFile)
		if err != nil {
			errorExitf("cannot read source file %s: %v", srcFile, err)
		}
		src, filename = string(data), srcFile
	case srcFile == "" && len(args) == 1:
		src = args[0]
	default:
		usageExit()
	}

	prog, err := ucc.CompileWithConfig(src, &ucc.Config{Filename: filename})
	if err != nil {
		compileErrorExit(err)
	}

	if debugAST {
		fmt.Fprint(os.Stderr, prog.DumpAST())
		os.Exit(0)
	}
	if debugLayout {
		printLayout(os.Stderr, prog.Frames())
		os.Exit(0)
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			errorExitf("cannot create %s: %v", outFile, err)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	if _, err := prog.WriteTo(w); err != nil {
		errorExitf("write error: %v", err)
	}
	if err := w.Flush(); err != nil {
		errorExitf("write error: %v", err)
	}
}

func readSource(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

func printLayout(w io.Writer, frames []ucc.Frame) {
	for _, f := range frames {
		fmt.Fprintf(w, "%s: frame %d\n", f.Func, f.Size)
		for _, l := range f.Locals {
			fmt.Fprintf(w, "  %-12s %-10s rbp-%d (%d bytes)\n", l.Name, l.Type, l.Offset, l.Size)
		}
	}
}

// usageExit reports a wrong argument count against the program name.
func usageExit() {
	fmt.Fprintf(os.Stderr, "%s: invalid number of arguments\n%s\n", os.Args[0], shortUsage)
	os.Exit(1)
}

// compileErrorExit prints the caret diagnostic and exits with code 1.
func compileErrorExit(err error) {
	var ce *ucc.Error
	if errors.As(err, &ce) {
		if ce.Filename != "" {
			fmt.Fprintf(os.Stderr, "%s:%d:%d:\n", ce.Filename, ce.Line, ce.Column)
		}
		fmt.Fprint(os.Stderr, ce.Diagnostic())
		os.Exit(1)
	}
	errorExit(err)
}

// errorExitf prints formatted error message and exits with code 1
func errorExitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "ucc: "+format+"\n", args...)
	os.Exit(1)
}

// errorExit prints error and exits with code 1
func errorExit(err error) {
	fmt.Fprintf(os.Stderr, "ucc: %v\n", err)
	os.Exit(1)
}
