// lexer.go — tokenizer for the expression language.
package pyeval

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota

	// Punctuation
	LROUND  // "("
	RROUND  // ")"
	LSQUARE // "["
	RSQUARE // "]"
	LCURLY  // "{"
	RCURLY  // "}"
	COLON   // ":"
	COMMA   // ","

	// Operators
	PLUS       // "+"
	MINUS      // "-"
	STAR       // "*"
	DBLSTAR    // "**"
	SLASH      // "/"
	DBLSLASH   // "//"
	PERCENT    // "%"
	EQ         // "=="
	NEQ        // "!="
	LESS       // "<"
	LESS_EQ    // "<="
	GREATER    // ">"
	GREATER_EQ // ">="

	// Literals & identifiers
	ID
	STRING
	INTEGER
	FLOAT
	BOOLEAN
	NONE

	// Keywords
	AND
	OR
	NOT
	IN
	IF
	ELSE
)

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw text slice
	Literal interface{} // parsed value for literals
	Line    int         // 1-based
	Col     int         // 0-based
}

// keywords map
var keywords = map[string]TokenType{
	"True":  BOOLEAN,
	"False": BOOLEAN,
	"None":  NONE,
	"and":   AND,
	"or":    OR,
	"not":   NOT,
	"in":    IN,
	"if":    IF,
	"else":  ELSE,
}

// LexError is a tokenization failure at a source position.
// Line is 1-based, Col is 0-based (renderers display Col+1).
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// Lexer scans an expression source string into tokens.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 0-based column within line
	tokens []Token

	// precise token start position
	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1}
}

// Scan tokenizes the whole source, ending with an EOF token.
func (l *Lexer) Scan() ([]Token, error) {
	for !l.atEnd() {
		l.start = l.cur
		l.tokStartLine = l.line
		l.tokStartCol = l.col
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	l.tokens = append(l.tokens, Token{Type: EOF, Line: l.line, Col: l.col})
	return l.tokens, nil
}

func (l *Lexer) atEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) advance() byte {
	c := l.src[l.cur]
	l.cur++
	if c == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return c
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) peekNext() byte {
	if l.cur+1 >= len(l.src) {
		return 0
	}
	return l.src[l.cur+1]
}

func (l *Lexer) match(c byte) bool {
	if l.atEnd() || l.src[l.cur] != c {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) emit(tt TokenType, lit interface{}) {
	l.tokens = append(l.tokens, Token{
		Type:    tt,
		Lexeme:  l.src[l.start:l.cur],
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol,
	})
}

func (l *Lexer) errf(format string, args ...interface{}) error {
	return &LexError{Line: l.tokStartLine, Col: l.tokStartCol, Msg: fmt.Sprintf(format, args...)}
}

func (l *Lexer) scanToken() error {
	c := l.advance()
	switch c {
	case ' ', '\t', '\r', '\n':
		return nil
	case '#':
		for !l.atEnd() && l.peek() != '\n' {
			l.advance()
		}
		return nil
	case '(':
		l.emit(LROUND, nil)
	case ')':
		l.emit(RROUND, nil)
	case '[':
		l.emit(LSQUARE, nil)
	case ']':
		l.emit(RSQUARE, nil)
	case '{':
		l.emit(LCURLY, nil)
	case '}':
		l.emit(RCURLY, nil)
	case ':':
		l.emit(COLON, nil)
	case ',':
		l.emit(COMMA, nil)
	case '+':
		l.emit(PLUS, nil)
	case '-':
		l.emit(MINUS, nil)
	case '*':
		if l.match('*') {
			l.emit(DBLSTAR, nil)
		} else {
			l.emit(STAR, nil)
		}
	case '/':
		if l.match('/') {
			l.emit(DBLSLASH, nil)
		} else {
			l.emit(SLASH, nil)
		}
	case '%':
		l.emit(PERCENT, nil)
	case '=':
		if l.match('=') {
			l.emit(EQ, nil)
		} else {
			return l.errf("unexpected character '='")
		}
	case '!':
		if l.match('=') {
			l.emit(NEQ, nil)
		} else {
			return l.errf("unexpected character '!'")
		}
	case '<':
		if l.match('=') {
			l.emit(LESS_EQ, nil)
		} else {
			l.emit(LESS, nil)
		}
	case '>':
		if l.match('=') {
			l.emit(GREATER_EQ, nil)
		} else {
			l.emit(GREATER, nil)
		}
	case '\'', '"':
		return l.scanString(c)
	case '.':
		if isDigit(l.peek()) {
			return l.scanNumber()
		}
		return l.errf("unexpected character '.'")
	default:
		if isDigit(c) {
			return l.scanNumber()
		}
		if isIdentStart(c) {
			l.scanIdent()
			return nil
		}
		return l.errf("unexpected character %q", string(c))
	}
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func (l *Lexer) scanIdent() {
	for !l.atEnd() && isIdentPart(l.peek()) {
		l.advance()
	}
	name := l.src[l.start:l.cur]
	if tt, ok := keywords[name]; ok {
		switch tt {
		case BOOLEAN:
			l.emit(BOOLEAN, name == "True")
		case NONE:
			l.emit(NONE, nil)
		default:
			l.emit(tt, nil)
		}
		return
	}
	l.emit(ID, name)
}

// scanNumber handles numeric literals: decimal ints (42, 1_000), radix
// ints (0x1F, 0o17, 0b101), and floats (3.5, .5, 1., 1e3, 2.5e-4). The
// token is a FLOAT if it contains a '.' or an exponent. Underscores group
// digits and must sit between digits, as in Python.
func (l *Lexer) scanNumber() error {
	if l.src[l.start] == '0' {
		switch l.peek() {
		case 'x', 'X':
			l.advance()
			return l.scanRadixInt(16)
		case 'o', 'O':
			l.advance()
			return l.scanRadixInt(8)
		case 'b', 'B':
			l.advance()
			return l.scanRadixInt(2)
		}
	}

	isFloat := l.src[l.start] == '.'

	digits := func() error {
		for !l.atEnd() {
			switch {
			case isDigit(l.peek()):
				l.advance()
			case l.peek() == '_':
				if !isDigit(l.src[l.cur-1]) || !isDigit(l.peekNext()) {
					return l.errf("invalid underscore placement in numeric literal")
				}
				l.advance()
			default:
				return nil
			}
		}
		return nil
	}
	if err := digits(); err != nil {
		return err
	}
	if !isFloat && l.peek() == '.' {
		isFloat = true
		l.advance()
		if err := digits(); err != nil {
			return err
		}
	}
	if c := l.peek(); c == 'e' || c == 'E' {
		next := l.peekNext()
		if isDigit(next) || ((next == '+' || next == '-') && l.cur+2 < len(l.src) && isDigit(l.src[l.cur+2])) {
			isFloat = true
			l.advance() // e
			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}
			if err := digits(); err != nil {
				return err
			}
		}
	}

	text := strings.ReplaceAll(l.src[l.start:l.cur], "_", "")
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return l.errf("invalid float literal %q", l.src[l.start:l.cur])
		}
		l.emit(FLOAT, f)
		return nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return l.errf("integer literal out of range: %s", text)
	}
	l.emit(INTEGER, n)
	return nil
}

// scanRadixInt consumes the digit run of a 0x/0o/0b literal (prefix already
// consumed). Python also allows an underscore right after the prefix.
func (l *Lexer) scanRadixInt(base int) error {
	seen := false
	for !l.atEnd() {
		c := l.peek()
		if d := digitVal(c); d >= 0 && d < base {
			l.advance()
			seen = true
			continue
		}
		if c == '_' {
			if d := digitVal(l.peekNext()); d < 0 || d >= base {
				return l.errf("invalid underscore placement in numeric literal")
			}
			l.advance()
			continue
		}
		break
	}
	if !seen {
		return l.errf("invalid numeric literal %q", l.src[l.start:l.cur])
	}
	text := strings.ReplaceAll(l.src[l.start+2:l.cur], "_", "")
	n, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		return l.errf("integer literal out of range: %s", l.src[l.start:l.cur])
	}
	l.emit(INTEGER, n)
	return nil
}

// digitVal returns the value of a digit in bases up to 16, or -1.
func digitVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// scanString handles single- and double-quoted strings with backslash
// escapes (\\ \' \" \n \t \r \0 \xHH \uXXXX).
func (l *Lexer) scanString(quote byte) error {
	var b strings.Builder
	for {
		if l.atEnd() || l.peek() == '\n' {
			return l.errf("unterminated string literal")
		}
		c := l.advance()
		if c == quote {
			break
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if l.atEnd() {
			return l.errf("unterminated string literal")
		}
		esc := l.advance()
		switch esc {
		case '\\', '\'', '"':
			b.WriteByte(esc)
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case 'x':
			code, err := l.hexDigits(2)
			if err != nil {
				return err
			}
			b.WriteByte(byte(code))
		case 'u':
			code, err := l.hexDigits(4)
			if err != nil {
				return err
			}
			b.WriteRune(rune(code))
		default:
			// Python keeps unknown escapes verbatim.
			b.WriteByte('\\')
			b.WriteByte(esc)
		}
	}
	l.emit(STRING, b.String())
	return nil
}

func (l *Lexer) hexDigits(n int) (uint32, error) {
	var code uint32
	for i := 0; i < n; i++ {
		if l.atEnd() {
			return 0, l.errf("truncated escape sequence")
		}
		d := digitVal(l.advance())
		if d < 0 {
			return 0, l.errf("invalid escape sequence")
		}
		code = code<<4 | uint32(d)
	}
	return code, nil
}
