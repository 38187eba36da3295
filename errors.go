package ucc

import (
	"errors"
	"fmt"

	"github.com/kolkov/ucc/internal/diag"
)

// ErrorKind classifies a compilation error.
type ErrorKind int

const (
	LexicalError  ErrorKind = iota // Unrecognized character, bad literal
	SyntaxError                    // Expected token not found
	TypeError                      // Invalid operands, undefined variable
	InternalError                  // Malformed tree reached code generation
)

// String returns a human-readable name for the kind.
func (k ErrorKind) String() string {
	return diag.Kind(k).String()
}

// Error represents a fatal compilation error at a source position.
type Error struct {
	Kind     ErrorKind
	Filename string // From Config.Filename
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Offset   int    // 0-based byte offset
	Message  string // Error description

	diagnostic string
}

func (e *Error) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Filename, e.Line, e.Column, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Column, e.Message)
}

// Diagnostic returns the caret rendering of the error: the offending
// source line, a caret under the failing byte, and the message.
func (e *Error) Diagnostic() string {
	return e.diagnostic
}

// convertError maps an internal diagnostic to the public Error type.
func convertError(src string, err error) error {
	var de *diag.Error
	if !errors.As(err, &de) {
		return err
	}
	return &Error{
		Kind:       ErrorKind(de.Kind),
		Filename:   de.Pos.Filename,
		Line:       de.Pos.Line,
		Column:     de.Pos.Column,
		Offset:     de.Pos.Offset,
		Message:    de.Message,
		diagnostic: diag.Render(src, de),
	}
}
