package script

import (
	"math/big"
	"strconv"
)

// Expression grammar, lowest precedence first:
//
//	exprlist    → test { ',' test } [',']
//	test        → or_expr [IF or_expr ELSE test]
//	or_expr     → and_expr { OR and_expr }
//	and_expr    → not_expr { AND not_expr }
//	not_expr    → NOT not_expr | comparison
//	comparison  → bitor { (== != < > <= >= IN | NOT IN) bitor }
//	bitor       → bitxor { '|' bitxor }
//	bitxor      → bitand { '^' bitand }
//	bitand      → shift { '&' shift }
//	shift       → arith { (<< | >>) arith }
//	arith       → term { (+ | -) term }
//	term        → unary { (* | / | // | %) unary }
//	unary       → (+ | - | ~) unary | postfix
//	postfix     → primary { call | '[' index ']' | '.' IDENT }
//	index       → exprlist | [test] ':' [test] [':' [test]]
//	primary     → IDENT | INT | FLOAT | STRING | '(' ... ')' | '[' ... ']' | '{' ... '}'

// parseExprList parses one or more comma-separated tests, returning a
// TupleExpr when a comma is present.
func (p *Parser) parseExprList() Expr {
	first := p.parseTest()
	if !p.check(COMMA) {
		return first
	}

	list := []Expr{first}
	for p.match(COMMA) {
		if !p.startsExpr() {
			break
		}
		list = append(list, p.parseTest())
	}
	return &TupleExpr{Lparen: first.Pos(), List: list}
}

func (p *Parser) startsExpr() bool {
	switch p.token.Type {
	case IDENT, INT, FLOAT, STRING, LPAREN, LBRACK, LBRACE, MINUS, PLUS, TILDE, NOT:
		return true
	}
	return false
}

func (p *Parser) parseTest() Expr {
	x := p.parseOr()
	if !p.check(IF) {
		return x
	}

	pos := p.token.Pos
	p.nextToken()
	cond := p.parseOr()
	p.expect(ELSE)
	return &CondExpr{IfPos: pos, Cond: cond, True: x, False: p.parseTest()}
}

func (p *Parser) parseOr() Expr {
	x := p.parseAnd()
	for p.check(OR) {
		pos := p.token.Pos
		p.nextToken()
		x = &BinaryExpr{OpPos: pos, Op: OR, X: x, Y: p.parseAnd()}
	}
	return x
}

func (p *Parser) parseAnd() Expr {
	x := p.parseNot()
	for p.check(AND) {
		pos := p.token.Pos
		p.nextToken()
		x = &BinaryExpr{OpPos: pos, Op: AND, X: x, Y: p.parseNot()}
	}
	return x
}

func (p *Parser) parseNot() Expr {
	if p.check(NOT) {
		pos := p.token.Pos
		p.nextToken()
		return &UnaryExpr{OpPos: pos, Op: NOT, X: p.parseNot()}
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() Expr {
	x := p.parseArith()
	for {
		pos := p.token.Pos
		var op TokenType
		switch p.token.Type {
		case EQL, NEQ, LT, GT, LE, GE, IN:
			op = p.token.Type
			p.nextToken()
		case NOT:
			if !p.checkPeek(IN) {
				return x
			}
			p.nextToken()
			p.nextToken()
			op = NOT_IN
		default:
			return x
		}
		x = &BinaryExpr{OpPos: pos, Op: op, X: x, Y: p.parseBitOr()}
	}
}

func (p *Parser) parseBitOr() Expr {
	return p.parseBinary(p.parseBitXor, PIPE)
}

func (p *Parser) parseBitXor() Expr {
	return p.parseBinary(p.parseBitAnd, CIRCUMFLEX)
}

func (p *Parser) parseBitAnd() Expr {
	return p.parseBinary(p.parseShift, AMP)
}

func (p *Parser) parseShift() Expr {
	return p.parseBinary(p.parseArith, LTLT, GTGT)
}

// parseBinary parses a left-associative chain of operands separated by any
// of ops.
func (p *Parser) parseBinary(operand func() Expr, ops ...TokenType) Expr {
	x := operand()
	for p.checkAny(ops...) {
		op := p.token
		p.nextToken()
		x = &BinaryExpr{OpPos: op.Pos, Op: op.Type, X: x, Y: operand()}
	}
	return x
}

func (p *Parser) checkAny(types ...TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			return true
		}
	}
	return false
}

func (p *Parser) parseArith() Expr {
	x := p.parseTerm()
	for p.check(PLUS) || p.check(MINUS) {
		op := p.token
		p.nextToken()
		x = &BinaryExpr{OpPos: op.Pos, Op: op.Type, X: x, Y: p.parseTerm()}
	}
	return x
}

func (p *Parser) parseTerm() Expr {
	x := p.parseUnary()
	for p.check(STAR) || p.check(SLASH) || p.check(SLASHSLASH) || p.check(PERCENT) {
		op := p.token
		p.nextToken()
		x = &BinaryExpr{OpPos: op.Pos, Op: op.Type, X: x, Y: p.parseUnary()}
	}
	return x
}

func (p *Parser) parseUnary() Expr {
	if p.check(MINUS) || p.check(PLUS) || p.check(TILDE) {
		op := p.token
		p.nextToken()
		return &UnaryExpr{OpPos: op.Pos, Op: op.Type, X: p.parseUnary()}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() Expr {
	x := p.parsePrimary()
	for {
		switch p.token.Type {
		case LPAREN:
			x = p.parseCall(x)
		case LBRACK:
			x = p.parseIndex(x)
		case DOT:
			pos := p.token.Pos
			p.nextToken()
			x = &DotExpr{X: x, Dot: pos, Name: p.expectIdent()}
		default:
			return x
		}
	}
}

// parseIndex parses "x[i]" or one of the slice forms "x[lo:hi:step]", where
// every slice bound is optional.
func (p *Parser) parseIndex(x Expr) Expr {
	lbrack := p.expect(LBRACK).Pos
	var lo Expr
	if !p.check(COLON) {
		index := p.parseExprList()
		if !p.check(COLON) {
			p.expect(RBRACK)
			return &IndexExpr{X: x, Lbrack: lbrack, Index: index}
		}
		lo = index
	}

	s := &SliceExpr{X: x, Lbrack: lbrack, Lo: lo}
	p.expect(COLON)
	if !p.check(COLON) && !p.check(RBRACK) {
		s.Hi = p.parseTest()
	}
	if p.match(COLON) && !p.check(RBRACK) {
		s.Step = p.parseTest()
	}
	p.expect(RBRACK)
	return s
}

func (p *Parser) parseCall(fn Expr) Expr {
	lparen := p.expect(LPAREN).Pos
	var args []Expr
	sawKeyword := false

	for !p.check(RPAREN) {
		if p.check(IDENT) && p.checkPeek(EQ) {
			name := p.expectIdent()
			p.nextToken()
			args = append(args, &KeywordArg{Name: name, Value: p.parseTest()})
			sawKeyword = true
		} else {
			if sawKeyword {
				p.errorf(p.token.Pos, "positional argument follows keyword argument")
			}
			args = append(args, p.parseTest())
		}
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(RPAREN)

	return &CallExpr{Fn: fn, Lparen: lparen, Args: args}
}

func (p *Parser) parsePrimary() Expr {
	tok := p.token
	switch tok.Type {
	case IDENT:
		p.nextToken()
		return &Ident{NamePos: tok.Pos, Name: tok.Literal}

	case INT:
		p.nextToken()
		// Starlark rejects legacy octal such as 010.
		if len(tok.Literal) > 1 && tok.Literal[0] == '0' && isDigit(tok.Literal[1]) {
			p.errorf(tok.Pos, ErrInvalidNumber)
		}
		lit := &Literal{ValuePos: tok.Pos, Token: INT, Raw: tok.Literal}
		if v, err := strconv.ParseInt(tok.Literal, 0, 64); err == nil {
			lit.Value = v
		} else if b, ok := new(big.Int).SetString(tok.Literal, 0); ok {
			lit.Value = b
		} else {
			p.errorf(tok.Pos, "%s: %s", ErrInvalidNumber, tok.Literal)
		}
		return lit

	case FLOAT:
		p.nextToken()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorf(tok.Pos, "%s: %s", ErrInvalidNumber, tok.Literal)
		}
		return &Literal{ValuePos: tok.Pos, Token: FLOAT, Raw: tok.Literal, Value: v}

	case STRING:
		p.nextToken()
		return &Literal{ValuePos: tok.Pos, Token: STRING, Raw: strconv.Quote(tok.Literal), Value: tok.Literal}

	case LPAREN:
		p.nextToken()
		if p.match(RPAREN) {
			return &TupleExpr{Lparen: tok.Pos}
		}
		x := p.parseTest()
		if !p.check(COMMA) {
			p.expect(RPAREN)
			return x
		}
		list := []Expr{x}
		for p.match(COMMA) {
			if p.check(RPAREN) {
				break
			}
			list = append(list, p.parseTest())
		}
		p.expect(RPAREN)
		return &TupleExpr{Lparen: tok.Pos, List: list}

	case LBRACK:
		p.nextToken()
		var list []Expr
		for !p.check(RBRACK) {
			list = append(list, p.parseTest())
			if !p.match(COMMA) {
				break
			}
		}
		p.expect(RBRACK)
		return &ListExpr{Lbrack: tok.Pos, List: list}

	case LBRACE:
		p.nextToken()
		dict := &DictExpr{Lbrace: tok.Pos}
		for !p.check(RBRACE) {
			key := p.parseTest()
			p.expect(COLON)
			dict.Entries = append(dict.Entries, &DictEntry{Key: key, Value: p.parseTest()})
			if !p.match(COMMA) {
				break
			}
		}
		p.expect(RBRACE)
		return dict
	}

	p.errorf(tok.Pos, ErrUnexpectedToken, tok, "expression")
	return nil
}
