// Package token defines lexical tokens for the C subset.
package token

// Kind represents a lexical token category.
type Kind uint8

const (
	EOF      Kind = iota // end of input
	RESERVED             // keyword or punctuator
	IDENT                // identifier
	NUM                  // integer literal
	STR                  // string literal
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case RESERVED:
		return "reserved"
	case IDENT:
		return "identifier"
	case NUM:
		return "number"
	case STR:
		return "string"
	default:
		return "invalid"
	}
}

// Token is one lexical unit. Text is a slice of the source, never a copy.
type Token struct {
	Kind Kind
	Pos  Position
	Text string // Source text of the token (empty for EOF)
	Val  int64  // Value if Kind == NUM
	Str  []byte // Decoded contents if Kind == STR, including the trailing NUL
}

// Is reports whether tok is the reserved word or punctuator s.
func (tok *Token) Is(s string) bool {
	return tok.Kind == RESERVED && tok.Text == s
}

// Keywords lists the reserved words. A keyword only matches when it is
// not followed by another identifier character.
var Keywords = []string{
	"return", "if", "else", "while", "for", "int", "char", "sizeof",
}

// Operators lists the multi-character punctuators. They are tried before
// single-character punctuation so "==" is never split into "=" "=".
var Operators = []string{"==", "!=", "<=", ">="}

// Punctuators lists every single-character punctuator of the language.
// Any other character outside identifiers, numbers and strings is a
// lexical error.
const Punctuators = "+-*/&()<>=;{},[]"
