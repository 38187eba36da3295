package ucc

import (
	"io"

	"github.com/kolkov/ucc/internal/codegen"
	"github.com/kolkov/ucc/internal/lexer"
	"github.com/kolkov/ucc/internal/parser"
)

// Version is the ucc version string.
const Version = "0.1.0"

// Compile translates C source into assembly.
//
// Example:
//
//	prog, err := ucc.Compile(`int main() { return 42; }`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(prog.Assembly())
func Compile(src string) (*Program, error) {
	return CompileWithConfig(src, nil)
}

// CompileWithConfig is like Compile with explicit configuration.
// A nil config uses defaults.
func CompileWithConfig(src string, config *Config) (*Program, error) {
	if config == nil {
		config = &Config{}
	}

	// Tokenize
	toks, err := lexer.New(src, config.Filename).Tokenize()
	if err != nil {
		return nil, convertError(src, err)
	}

	// Parse and resolve types
	tree, err := parser.Parse(toks)
	if err != nil {
		return nil, convertError(src, err)
	}

	// Assign stack slots
	frames := codegen.Layout(tree)

	// Emit assembly
	asm, err := codegen.Generate(tree)
	if err != nil {
		return nil, convertError(src, err)
	}

	return &Program{
		tree:   tree,
		frames: frames,
		asm:    asm,
		source: src,
	}, nil
}

// MustCompile is like Compile but panics if the source cannot be compiled.
func MustCompile(src string) *Program {
	prog, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return prog
}

// Exec compiles src and writes the assembly to w.
//
// Example:
//
//	err := ucc.Exec(`int main() { return 0; }`, os.Stdout, nil)
func Exec(src string, w io.Writer, config *Config) error {
	prog, err := CompileWithConfig(src, config)
	if err != nil {
		return err
	}
	_, err = prog.WriteTo(w)
	return err
}
