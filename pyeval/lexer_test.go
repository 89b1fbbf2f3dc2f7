// lexer_test.go
package pyeval

import (
	"reflect"
	"testing"
)

func toks(t *testing.T, src string) []Token {
	t.Helper()
	l := NewLexer(src)
	ts, err := l.Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	return ts
}

func typesWithoutEOF(tokens []Token) []TokenType {
	if len(tokens) == 0 {
		return nil
	}
	end := len(tokens)
	if tokens[end-1].Type == EOF {
		end--
	}
	out := make([]TokenType, 0, end)
	for i := 0; i < end; i++ {
		out = append(out, tokens[i].Type)
	}
	return out
}

func wantTypes(t *testing.T, src string, want []TokenType) []Token {
	t.Helper()
	got := toks(t, src)
	gotTypes := typesWithoutEOF(got)
	if !reflect.DeepEqual(gotTypes, want) {
		t.Fatalf("\nsource:\n%s\nwant types:\n%v\ngot types:\n%v\n", src, want, gotTypes)
	}
	return got
}

func Test_Lexer_ListOfMixedLiterals(t *testing.T) {
	got := wantTypes(t, `[1, 'a', 2.5, True, None]`, []TokenType{
		LSQUARE, INTEGER, COMMA, STRING, COMMA, FLOAT, COMMA, BOOLEAN, COMMA, NONE, RSQUARE,
	})
	if got[1].Literal.(int64) != 1 {
		t.Fatalf("int literal: %v", got[1].Literal)
	}
	if got[3].Literal.(string) != "a" {
		t.Fatalf("str literal: %v", got[3].Literal)
	}
	if got[5].Literal.(float64) != 2.5 {
		t.Fatalf("float literal: %v", got[5].Literal)
	}
	if got[7].Literal.(bool) != true {
		t.Fatalf("bool literal: %v", got[7].Literal)
	}
}

func Test_Lexer_NumberForms(t *testing.T) {
	cases := []struct {
		src   string
		typ   TokenType
		value interface{}
	}{
		{"42", INTEGER, int64(42)},
		{"1_000_000", INTEGER, int64(1000000)},
		{"3.5", FLOAT, 3.5},
		{".5", FLOAT, 0.5},
		{"1.", FLOAT, 1.0},
		{"1e3", FLOAT, 1000.0},
		{"2.5e-1", FLOAT, 0.25},
		{"1E2", FLOAT, 100.0},
		{"1_000.5", FLOAT, 1000.5},
		{"1e1_0", FLOAT, 1e10},
		{"0x1F", INTEGER, int64(31)},
		{"0X_ff", INTEGER, int64(255)}, // underscore after the prefix is fine
		{"0o17", INTEGER, int64(15)},
		{"0b1_01", INTEGER, int64(5)},
	}
	for _, c := range cases {
		ts := toks(t, c.src)
		if ts[0].Type != c.typ {
			t.Fatalf("%q: want type %v, got %v", c.src, c.typ, ts[0].Type)
		}
		if ts[0].Literal != c.value {
			t.Fatalf("%q: want literal %v, got %v", c.src, c.value, ts[0].Literal)
		}
	}
}

func Test_Lexer_IntegerOverflowIsAnError(t *testing.T) {
	for _, src := range []string{"99999999999999999999", "0xffffffffffffffff9"} {
		l := NewLexer(src)
		_, err := l.Scan()
		if err == nil {
			t.Fatalf("%q: expected error for out-of-range integer literal", src)
		}
		if _, ok := err.(*LexError); !ok {
			t.Fatalf("%q: want *LexError, got %T", src, err)
		}
	}
}

func Test_Lexer_BadUnderscorePlacement(t *testing.T) {
	// underscores must sit between digits
	for _, src := range []string{"1_", "1__0", "1_.5", "1._5", "1.5_", "1e5_", "0x_", "0xff_", "0b1__0"} {
		l := NewLexer(src)
		if _, err := l.Scan(); err == nil {
			t.Fatalf("%q: expected underscore placement error", src)
		}
	}
}

func Test_Lexer_EmptyRadixLiteral(t *testing.T) {
	for _, src := range []string{"0x", "0o", "0b"} {
		l := NewLexer(src)
		if _, err := l.Scan(); err == nil {
			t.Fatalf("%q: expected invalid literal error", src)
		}
	}
}

func Test_Lexer_StringEscapes(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`'hello'`, "hello"},
		{`"hello"`, "hello"},
		{`'it\'s'`, "it's"},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`'\x41'`, "A"},
		{`'é'`, "é"},
		{`'back\\slash'`, `back\slash`},
		{`'\q'`, `\q`}, // unknown escapes stay verbatim
	}
	for _, c := range cases {
		ts := toks(t, c.src)
		if ts[0].Type != STRING {
			t.Fatalf("%q: want STRING, got %v", c.src, ts[0].Type)
		}
		if got := ts[0].Literal.(string); got != c.want {
			t.Fatalf("%q: want %q, got %q", c.src, c.want, got)
		}
	}
}

func Test_Lexer_UnterminatedString(t *testing.T) {
	for _, src := range []string{`'abc`, `"abc`, "'ab\nc'"} {
		l := NewLexer(src)
		if _, err := l.Scan(); err == nil {
			t.Fatalf("%q: expected unterminated string error", src)
		}
	}
}

func Test_Lexer_OperatorsAndKeywords(t *testing.T) {
	wantTypes(t, `1 + 2 ** 3 // 4 != 5`, []TokenType{
		INTEGER, PLUS, INTEGER, DBLSTAR, INTEGER, DBLSLASH, INTEGER, NEQ, INTEGER,
	})
	wantTypes(t, `not x in y and a or b`, []TokenType{
		NOT, ID, IN, ID, AND, ID, OR, ID,
	})
	wantTypes(t, `x if c else y`, []TokenType{
		ID, IF, ID, ELSE, ID,
	})
}

func Test_Lexer_CommentsAreSkipped(t *testing.T) {
	wantTypes(t, "1 # trailing comment\n+ 2", []TokenType{INTEGER, PLUS, INTEGER})
}

func Test_Lexer_UnexpectedCharacter(t *testing.T) {
	l := NewLexer("1 @ 2")
	_, err := l.Scan()
	le, ok := err.(*LexError)
	if !ok {
		t.Fatalf("want *LexError, got %T (%v)", err, err)
	}
	if le.Line != 1 || le.Col != 2 {
		t.Fatalf("want position 1:2, got %d:%d", le.Line, le.Col)
	}
}

func Test_Lexer_PositionTracking(t *testing.T) {
	ts := toks(t, "[1,\n 2]")
	// "2" is on line 2, col 1 (0-based)
	var two Token
	for _, tok := range ts {
		if tok.Type == INTEGER && tok.Literal.(int64) == 2 {
			two = tok
		}
	}
	if two.Line != 2 || two.Col != 1 {
		t.Fatalf("want 2:1, got %d:%d", two.Line, two.Col)
	}
}
