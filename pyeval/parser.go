// parser.go — Pratt parser producing compact S-expression ASTs.
//
// The AST is a tree of S-expressions: []any whose first element is a string
// tag. Node shapes:
//
//	("int",  int64)               // from INTEGER
//	("float", float64)            // from FLOAT
//	("str",  string)              // decoded literal
//	("bool", bool)                // from True/False
//	("none")                      // from None
//	("id",   string)              // identifier
//
//	("unop",  op, rhs)            // prefix "-" or "+"
//	("binop", op, lhs, rhs)       // "+" "-" "*" "/" "//" "%" "**"
//	                              // "==" "!=" "<" "<=" ">" ">=" "in" "not in"
//	("not", expr)
//	("and", lhs, rhs)             // short-circuit
//	("or",  lhs, rhs)             // short-circuit
//	("cond", cond, then, else)    // x if cond else y
//
//	("call",  callee, arg...)
//	("index", obj, indexExpr)
//
//	("list",  e...)
//	("tuple", e...)
//	("set",   e...)
//	("dict",  ("pair", k, v)...)
//
// Precedence follows Python: conditional < or < and < not < comparison <
// additive < multiplicative < unary < power < call/index. Power is
// right-associative and binds tighter than unary on its left operand, so
// -2**2 parses as -(2**2) while 2**-1 is valid. Comparison chains expand
// to conjunctions of adjacent pairs: "a < b == c" is "a < b and b == c".
//
// The interactive entry point reports unterminated constructs at EOF as
// incomplete (IsIncomplete), which the REPL uses to prompt for more input.
package pyeval

import "fmt"

// S is the S-expression node type: a tag string followed by children.
type S = []any

// L builds an S-expression node.
func L(tag string, parts ...any) S { return append([]any{tag}, parts...) }

// ParseError is a syntax failure at a source position.
// Line is 1-based, Col is 0-based (renderers display Col+1).
type ParseError struct {
	Line int
	Col  int
	Msg  string

	incomplete bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// IsIncomplete reports whether err marks input that ended mid-construct
// (interactive mode only).
func IsIncomplete(err error) bool {
	pe, ok := err.(*ParseError)
	return ok && pe.incomplete
}

// ParseSExpr parses exactly one expression and returns its AST. Trailing
// tokens are an error.
func ParseSExpr(src string) (S, error) {
	return parse(src, false)
}

// ParseSExprInteractive parses in REPL-friendly mode: unterminated
// constructs at EOF produce an incomplete ParseError instead of a hard
// syntax error.
func ParseSExprInteractive(src string) (S, error) {
	return parse(src, true)
}

func parse(src string, interactive bool) (S, error) {
	lex := NewLexer(src)
	toks, err := lex.Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, interactive: interactive}
	node, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errHere("unexpected token after expression")
	}
	return node, nil
}

type parser struct {
	toks        []Token
	i           int
	interactive bool
}

// ─────────────────────────── token basics & helpers ─────────────────────────

func (p *parser) atEnd() bool { return p.peek().Type == EOF }

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *parser) peekNext() Token {
	if p.i+1 >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+1]
}

func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) match(tt ...TokenType) bool {
	if p.atEnd() {
		return false
	}
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

func (p *parser) need(t TokenType, msg string) (Token, error) {
	if p.match(t) {
		return p.prev(), nil
	}
	return Token{}, p.errHere(msg)
}

func (p *parser) errHere(msg string) error {
	g := p.peek()
	return &ParseError{
		Line:       g.Line,
		Col:        g.Col,
		Msg:        msg,
		incomplete: p.interactive && g.Type == EOF,
	}
}

// ───────────────────────────── expression grammar ────────────────────────────

// expression = orExpr ["if" orExpr "else" expression]
func (p *parser) expression() (S, error) {
	then, err := p.orExpr()
	if err != nil {
		return nil, err
	}
	if !p.match(IF) {
		return then, nil
	}
	cond, err := p.orExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(ELSE, "expected 'else' in conditional expression"); err != nil {
		return nil, err
	}
	els, err := p.expression()
	if err != nil {
		return nil, err
	}
	return L("cond", cond, then, els), nil
}

func (p *parser) orExpr() (S, error) {
	lhs, err := p.andExpr()
	if err != nil {
		return nil, err
	}
	for p.match(OR) {
		rhs, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		lhs = L("or", lhs, rhs)
	}
	return lhs, nil
}

func (p *parser) andExpr() (S, error) {
	lhs, err := p.notExpr()
	if err != nil {
		return nil, err
	}
	for p.match(AND) {
		rhs, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		lhs = L("and", lhs, rhs)
	}
	return lhs, nil
}

func (p *parser) notExpr() (S, error) {
	// "not in" belongs to the comparison level, not here.
	if p.peek().Type == NOT && p.peekNext().Type != IN {
		p.i++
		rhs, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		return L("not", rhs), nil
	}
	return p.comparison()
}

// comparison parses comparison chains with Python semantics: "a < b == c"
// means "a < b and b == c", each link comparing adjacent operands.
func (p *parser) comparison() (S, error) {
	lhs, err := p.additive()
	if err != nil {
		return nil, err
	}
	var chain S
	for {
		op, ok := p.matchCmpOp()
		if !ok {
			break
		}
		rhs, err := p.additive()
		if err != nil {
			return nil, err
		}
		link := L("binop", op, lhs, rhs)
		if chain == nil {
			chain = link
		} else {
			chain = L("and", chain, link)
		}
		lhs = rhs
	}
	if chain == nil {
		return lhs, nil
	}
	return chain, nil
}

func (p *parser) matchCmpOp() (string, bool) {
	switch {
	case p.match(EQ):
		return "==", true
	case p.match(NEQ):
		return "!=", true
	case p.match(LESS):
		return "<", true
	case p.match(LESS_EQ):
		return "<=", true
	case p.match(GREATER):
		return ">", true
	case p.match(GREATER_EQ):
		return ">=", true
	case p.match(IN):
		return "in", true
	case p.peek().Type == NOT && p.peekNext().Type == IN:
		p.i += 2
		return "not in", true
	}
	return "", false
}

func (p *parser) additive() (S, error) {
	lhs, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch {
		case p.match(PLUS):
			op = "+"
		case p.match(MINUS):
			op = "-"
		default:
			return lhs, nil
		}
		rhs, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		lhs = L("binop", op, lhs, rhs)
	}
}

func (p *parser) multiplicative() (S, error) {
	lhs, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch {
		case p.match(STAR):
			op = "*"
		case p.match(SLASH):
			op = "/"
		case p.match(DBLSLASH):
			op = "//"
		case p.match(PERCENT):
			op = "%"
		default:
			return lhs, nil
		}
		rhs, err := p.unary()
		if err != nil {
			return nil, err
		}
		lhs = L("binop", op, lhs, rhs)
	}
}

func (p *parser) unary() (S, error) {
	switch {
	case p.match(MINUS):
		rhs, err := p.unary()
		if err != nil {
			return nil, err
		}
		return L("unop", "-", rhs), nil
	case p.match(PLUS):
		rhs, err := p.unary()
		if err != nil {
			return nil, err
		}
		return L("unop", "+", rhs), nil
	}
	return p.power()
}

func (p *parser) power() (S, error) {
	base, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if !p.match(DBLSTAR) {
		return base, nil
	}
	// Right operand may carry a unary sign: 2**-1.
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return L("binop", "**", base, exp), nil
}

func (p *parser) postfix() (S, error) {
	node, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(LROUND):
			args := []any{}
			if p.peek().Type != RROUND {
				for {
					arg, err := p.expression()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if !p.match(COMMA) {
						break
					}
				}
			}
			if _, err := p.need(RROUND, "expected ')' after call arguments"); err != nil {
				return nil, err
			}
			node = L("call", append([]any{node}, args...)...)
		case p.match(LSQUARE):
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.need(RSQUARE, "expected ']' after index"); err != nil {
				return nil, err
			}
			node = L("index", node, idx)
		default:
			return node, nil
		}
	}
}

func (p *parser) primary() (S, error) {
	tok := p.peek()
	switch tok.Type {
	case INTEGER:
		p.i++
		return L("int", tok.Literal.(int64)), nil
	case FLOAT:
		p.i++
		return L("float", tok.Literal.(float64)), nil
	case STRING:
		p.i++
		return L("str", tok.Literal.(string)), nil
	case BOOLEAN:
		p.i++
		return L("bool", tok.Literal.(bool)), nil
	case NONE:
		p.i++
		return L("none"), nil
	case ID:
		p.i++
		return L("id", tok.Literal.(string)), nil
	case LROUND:
		p.i++
		return p.parenOrTuple()
	case LSQUARE:
		p.i++
		return p.listLiteral()
	case LCURLY:
		p.i++
		return p.setOrDictLiteral()
	case EOF:
		return nil, p.errHere("unexpected end of input")
	default:
		return nil, p.errHere(fmt.Sprintf("unexpected token %q", tok.Lexeme))
	}
}

// parenOrTuple handles "()" (empty tuple), "(e)" (grouping) and
// "(e, ...)" / "(e,)" (tuples).
func (p *parser) parenOrTuple() (S, error) {
	if p.match(RROUND) {
		return L("tuple"), nil
	}
	first, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.match(RROUND) {
		return first, nil
	}
	elems := []any{first}
	for p.match(COMMA) {
		if p.peek().Type == RROUND {
			break
		}
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.need(RROUND, "expected ')' after tuple elements"); err != nil {
		return nil, err
	}
	return L("tuple", elems...), nil
}

func (p *parser) listLiteral() (S, error) {
	elems := []any{}
	if p.peek().Type != RSQUARE {
		for {
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if !p.match(COMMA) {
				break
			}
			if p.peek().Type == RSQUARE {
				break
			}
		}
	}
	if _, err := p.need(RSQUARE, "expected ']' after list elements"); err != nil {
		return nil, err
	}
	return L("list", elems...), nil
}

// setOrDictLiteral disambiguates "{}" (empty dict), "{k: v, ...}" (dict)
// and "{e, ...}" (set) after the first element.
func (p *parser) setOrDictLiteral() (S, error) {
	if p.match(RCURLY) {
		return L("dict"), nil
	}
	first, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.match(COLON) {
		val, err := p.expression()
		if err != nil {
			return nil, err
		}
		pairs := []any{L("pair", first, val)}
		for p.match(COMMA) {
			if p.peek().Type == RCURLY {
				break
			}
			k, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.need(COLON, "expected ':' in dict entry"); err != nil {
				return nil, err
			}
			v, err := p.expression()
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, L("pair", k, v))
		}
		if _, err := p.need(RCURLY, "expected '}' after dict entries"); err != nil {
			return nil, err
		}
		return L("dict", pairs...), nil
	}
	elems := []any{first}
	for p.match(COMMA) {
		if p.peek().Type == RCURLY {
			break
		}
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.need(RCURLY, "expected '}' after set elements"); err != nil {
		return nil, err
	}
	return L("set", elems...), nil
}
