// Package lexer provides C source tokenization.
package lexer

import (
	"strconv"
	"strings"

	"github.com/coregx/coregex"

	"github.com/kolkov/ucc/internal/diag"
	"github.com/kolkov/ucc/internal/token"
)

// MaxStringLen is the largest decoded string literal accepted, in bytes.
const MaxStringLen = 1024

// Anchored patterns for runs that are matched greedily at the cursor.
var (
	identRe  = mustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
	numberRe = mustCompile(`^[0-9]+`)
)

func mustCompile(pattern string) *coregex.Regexp {
	re, err := coregex.Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// Lexer tokenizes C source code.
type Lexer struct {
	src       string // Source code
	filename  string // Attached to every position
	offset    int    // Current byte offset
	line      int    // Current line (1-indexed)
	lineStart int    // Offset of the first byte of the current line
}

// New creates a new Lexer for the given source code.
func New(src, filename string) *Lexer {
	return &Lexer{src: src, filename: filename, line: 1}
}

// Tokenize splits src into tokens. The returned slice always ends with
// an EOF token. The first lexical error stops the scan.
func Tokenize(src string) ([]token.Token, error) {
	return New(src, "").Tokenize()
}

// Tokenize scans the whole input.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := l.scan()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) scan() (token.Token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return token.Token{}, err
	}

	pos := l.pos()
	if l.offset >= len(l.src) {
		return token.Token{Kind: token.EOF, Pos: pos}, nil
	}
	rest := l.src[l.offset:]

	if rest[0] == '"' {
		return l.scanString(pos)
	}

	if kw := startsWithKeyword(rest); kw != "" {
		return l.emit(token.RESERVED, pos, len(kw)), nil
	}

	for _, op := range token.Operators {
		if strings.HasPrefix(rest, op) {
			return l.emit(token.RESERVED, pos, len(op)), nil
		}
	}

	if loc := identRe.FindStringIndex(rest); loc != nil {
		return l.emit(token.IDENT, pos, loc[1]), nil
	}

	if loc := numberRe.FindStringIndex(rest); loc != nil {
		tok := l.emit(token.NUM, pos, loc[1])
		val, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return token.Token{}, l.errorAt(pos, "integer literal out of range")
		}
		tok.Val = val
		return tok, nil
	}

	if isPunct(rest[0]) {
		return l.emit(token.RESERVED, pos, 1), nil
	}

	return token.Token{}, l.errorAt(pos, "cannot tokenize")
}

// emit builds a token spanning n bytes from the cursor and advances past it.
func (l *Lexer) emit(kind token.Kind, pos token.Position, n int) token.Token {
	tok := token.Token{Kind: kind, Pos: pos, Text: l.src[l.offset : l.offset+n]}
	l.offset += n
	return tok
}

func (l *Lexer) scanString(pos token.Position) (token.Token, error) {
	start := l.offset
	l.offset++ // opening quote

	var buf []byte
	for {
		if l.offset >= len(l.src) {
			return token.Token{}, l.errorAt(pos, "unclosed string literal")
		}
		ch := l.src[l.offset]
		if ch == '"' {
			break
		}
		if len(buf) >= MaxStringLen {
			return token.Token{}, l.errorAt(pos, "string literal too large")
		}
		if ch == '\\' {
			l.offset++
			if l.offset >= len(l.src) {
				return token.Token{}, l.errorAt(pos, "unclosed string literal")
			}
			ch = l.src[l.offset]
			if ch == '\n' {
				l.newline(l.offset + 1)
			}
			ch = escapedChar(ch)
		} else if ch == '\n' {
			l.newline(l.offset + 1)
		}
		buf = append(buf, ch)
		l.offset++
	}
	l.offset++ // closing quote

	return token.Token{
		Kind: token.STR,
		Pos:  pos,
		Text: l.src[start:l.offset],
		Str:  append(buf, 0),
	}, nil
}

// escapedChar decodes the character following a backslash. Unknown
// escapes stand for the character itself.
func escapedChar(c byte) byte {
	switch c {
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 't':
		return '\t'
	case 'n':
		return '\n'
	case 'v':
		return '\v'
	case 'f':
		return '\f'
	case 'r':
		return '\r'
	case 'e':
		return 27
	case '0':
		return 0
	default:
		return c
	}
}

func (l *Lexer) skipSpaceAndComments() error {
	for l.offset < len(l.src) {
		ch := l.src[l.offset]
		switch {
		case ch == '\n':
			l.offset++
			l.newline(l.offset)
		case isSpace(ch):
			l.offset++
		case strings.HasPrefix(l.src[l.offset:], "//"):
			for l.offset < len(l.src) && l.src[l.offset] != '\n' {
				l.offset++
			}
		case strings.HasPrefix(l.src[l.offset:], "/*"):
			pos := l.pos()
			end := strings.Index(l.src[l.offset+2:], "*/")
			if end < 0 {
				return l.errorAt(pos, "unclosed block comment")
			}
			stop := l.offset + 2 + end + 2
			for ; l.offset < stop; l.offset++ {
				if l.src[l.offset] == '\n' {
					l.newline(l.offset + 1)
				}
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) newline(lineStart int) {
	l.line++
	l.lineStart = lineStart
}

func (l *Lexer) pos() token.Position {
	return token.Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   l.offset - l.lineStart + 1,
		Offset:   l.offset,
	}
}

func (l *Lexer) errorAt(pos token.Position, msg string) error {
	return diag.Errorf(diag.Lexical, pos, "%s", msg)
}

// startsWithKeyword returns the keyword at the start of s, if it is not
// immediately followed by another identifier character.
func startsWithKeyword(s string) string {
	for _, kw := range token.Keywords {
		if strings.HasPrefix(s, kw) && (len(s) == len(kw) || !isIdentContinue(s[len(kw)])) {
			return kw
		}
	}
	return ""
}

// Helper functions

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\v' || ch == '\f'
}

func isPunct(ch byte) bool {
	return strings.IndexByte(token.Punctuators, ch) >= 0
}

func isIdentContinue(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || (ch >= '0' && ch <= '9')
}
