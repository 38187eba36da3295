// Package diag provides the diagnostic error shared by every compiler stage
// and renders it with a caret under the failing byte.
package diag

import (
	"fmt"
	"strings"

	"github.com/kolkov/ucc/internal/token"
)

// Kind classifies a diagnostic.
type Kind int

const (
	Lexical  Kind = iota // Unrecognized character, bad literal
	Syntax               // Expected token not found
	Type                 // Invalid operands, undefined variable
	Internal             // Malformed AST reaching the code generator
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntax:
		return "syntax error"
	case Type:
		return "type error"
	case Internal:
		return "internal error"
	default:
		return "error"
	}
}

// Error is a fatal diagnostic attached to a source position.
type Error struct {
	Kind    Kind
	Pos     token.Position
	Message string
}

// Error returns the message prefixed with its position.
func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

// Errorf creates an Error of the given kind at pos.
func Errorf(kind Kind, pos token.Position, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// Render formats err against src: the source line containing the error,
// a caret aligned under the failing byte, then the message.
func Render(src string, err *Error) string {
	var sb strings.Builder
	if !err.Pos.IsValid() {
		sb.WriteString(err.Message)
		sb.WriteByte('\n')
		return sb.String()
	}

	offset := min(err.Pos.Offset, len(src))
	start := strings.LastIndexByte(src[:offset], '\n') + 1
	end := strings.IndexByte(src[offset:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += offset
	}

	sb.WriteString(src[start:end])
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "%*s^ %s\n", offset-start, "", err.Message)
	return sb.String()
}
