package lexer

import (
	"errors"
	"testing"

	"github.com/kolkov/ucc/internal/diag"
	"github.com/kolkov/ucc/internal/token"
)

func texts(toks []token.Token) []string {
	out := make([]string, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Text)
	}
	return out
}

func TestTokenizeKinds(t *testing.T) {
	tests := []struct {
		input string
		kinds []token.Kind
		texts []string
	}{
		{"", []token.Kind{token.EOF}, []string{""}},
		{"42", []token.Kind{token.NUM, token.EOF}, []string{"42", ""}},
		{"a==b", []token.Kind{token.IDENT, token.RESERVED, token.IDENT, token.EOF}, []string{"a", "==", "b", ""}},
		{"a=b", []token.Kind{token.IDENT, token.RESERVED, token.IDENT, token.EOF}, []string{"a", "=", "b", ""}},
		{"<= >= != <>", []token.Kind{token.RESERVED, token.RESERVED, token.RESERVED, token.RESERVED, token.RESERVED, token.EOF}, []string{"<=", ">=", "!=", "<", ">", ""}},
		{"return x;", []token.Kind{token.RESERVED, token.IDENT, token.RESERVED, token.EOF}, []string{"return", "x", ";", ""}},
		{"returnx", []token.Kind{token.IDENT, token.EOF}, []string{"returnx", ""}},
		{"int integer", []token.Kind{token.RESERVED, token.IDENT, token.EOF}, []string{"int", "integer", ""}},
		{"sizeof(x)", []token.Kind{token.RESERVED, token.RESERVED, token.IDENT, token.RESERVED, token.EOF}, []string{"sizeof", "(", "x", ")", ""}},
		{"_foo1 bar_2", []token.Kind{token.IDENT, token.IDENT, token.EOF}, []string{"_foo1", "bar_2", ""}},
		{"12ab", []token.Kind{token.NUM, token.IDENT, token.EOF}, []string{"12", "ab", ""}},
		{"a[3]", []token.Kind{token.IDENT, token.RESERVED, token.NUM, token.RESERVED, token.EOF}, []string{"a", "[", "3", "]", ""}},
		{"&*x", []token.Kind{token.RESERVED, token.RESERVED, token.IDENT, token.EOF}, []string{"&", "*", "x", ""}},
		{"1 // comment\n2", []token.Kind{token.NUM, token.NUM, token.EOF}, []string{"1", "2", ""}},
		{"1 /* a\nb */ 2", []token.Kind{token.NUM, token.NUM, token.EOF}, []string{"1", "2", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			if len(toks) != len(tt.kinds) {
				t.Fatalf("got %d tokens %q, want %d", len(toks), texts(toks), len(tt.kinds))
			}
			for i, tok := range toks {
				if tok.Kind != tt.kinds[i] {
					t.Errorf("token[%d]: kind = %v, want %v", i, tok.Kind, tt.kinds[i])
				}
				if tok.Text != tt.texts[i] {
					t.Errorf("token[%d]: text = %q, want %q", i, tok.Text, tt.texts[i])
				}
			}
		})
	}
}

func TestTokenizeNumbers(t *testing.T) {
	toks, err := Tokenize("0 7 123456789 9223372036854775807")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	want := []int64{0, 7, 123456789, 9223372036854775807}
	for i, v := range want {
		if toks[i].Val != v {
			t.Errorf("token[%d]: val = %d, want %d", i, toks[i].Val, v)
		}
	}
}

func TestTokenizeStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`""`, "\x00"},
		{`"abc"`, "abc\x00"},
		{`"a\nb"`, "a\nb\x00"},
		{`"\a\b\t\n\v\f\r\e\0"`, "\a\b\t\n\v\f\r\x1b\x00\x00"},
		{`"\"q\""`, "\"q\"\x00"},
		{`"\\"`, "\\\x00"},
		{`"\j"`, "j\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			if toks[0].Kind != token.STR {
				t.Fatalf("kind = %v, want STR", toks[0].Kind)
			}
			if got := string(toks[0].Str); got != tt.want {
				t.Errorf("Str = %q, want %q", got, tt.want)
			}
			if toks[0].Text != tt.input {
				t.Errorf("Text = %q, want %q", toks[0].Text, tt.input)
			}
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	toks, err := Tokenize("int x;\n  x = 1;")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	tests := []struct {
		idx    int
		line   int
		column int
		offset int
	}{
		{0, 1, 1, 0},
		{1, 1, 5, 4},
		{3, 2, 3, 9},
		{5, 2, 7, 13},
	}
	for _, tt := range tests {
		pos := toks[tt.idx].Pos
		if pos.Line != tt.line || pos.Column != tt.column || pos.Offset != tt.offset {
			t.Errorf("token[%d] %q at %d:%d+%d, want %d:%d+%d",
				tt.idx, toks[tt.idx].Text, pos.Line, pos.Column, pos.Offset, tt.line, tt.column, tt.offset)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	long := make([]byte, MaxStringLen+1)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name   string
		input  string
		msg    string
		offset int
	}{
		{"bad char", "1 + $", "cannot tokenize", 4},
		{"at sign", "a @ b", "cannot tokenize", 2},
		{"lone bang", "!x", "cannot tokenize", 0},
		{"hash", "#include", "cannot tokenize", 0},
		{"modulo", "x = 7 % 2;", "cannot tokenize", 6},
		{"caret on second line", "int x;\n  x ~ 1;", "cannot tokenize", 11},
		{"non-ascii", "x\x80", "cannot tokenize", 1},
		{"unclosed string", `x = "abc`, "unclosed string literal", 4},
		{"unclosed escape", `"abc\`, "unclosed string literal", 0},
		{"too large", `"` + string(long) + `"`, "string literal too large", 0},
		{"unclosed comment", "1 /* x", "unclosed block comment", 2},
		{"out of range", "99999999999999999999", "integer literal out of range", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			var de *diag.Error
			if !errors.As(err, &de) {
				t.Fatalf("error type = %T, want *diag.Error", err)
			}
			if de.Kind != diag.Lexical {
				t.Errorf("kind = %v, want lexical", de.Kind)
			}
			if de.Message != tt.msg {
				t.Errorf("message = %q, want %q", de.Message, tt.msg)
			}
			if de.Pos.Offset != tt.offset {
				t.Errorf("offset = %d, want %d", de.Pos.Offset, tt.offset)
			}
		})
	}
}

func TestTokenizePunctuators(t *testing.T) {
	for _, ch := range token.Punctuators {
		toks, err := Tokenize(string(ch))
		if err != nil {
			t.Errorf("Tokenize(%q) error = %v", ch, err)
			continue
		}
		if toks[0].Kind != token.RESERVED || toks[0].Text != string(ch) {
			t.Errorf("Tokenize(%q) = %v %q, want reserved", ch, toks[0].Kind, toks[0].Text)
		}
	}
}

func TestMaxStringLenAccepted(t *testing.T) {
	long := make([]byte, MaxStringLen)
	for i := range long {
		long[i] = 'z'
	}
	toks, err := Tokenize(`"` + string(long) + `"`)
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if got := len(toks[0].Str); got != MaxStringLen+1 {
		t.Errorf("len(Str) = %d, want %d", got, MaxStringLen+1)
	}
}
