// Package script parses hybrid script, the kernel dialect bound by package
// hybrid.
//
// # Usage
//
//	f, err := script.Parse("kernel.star", src)
//	if err != nil {
//	    // *script.ParseError
//	}
//	def, err := script.FindDefinition(f)
//
// # Grammar Overview
//
// The parser is a recursive descent parser for the Starlark-compatible
// subset the dialect accepts:
//
//	file       → { NEWLINE | stmt }
//	stmt       → def_stmt | if_stmt | for_stmt | while_stmt | simple_line
//	def_stmt   → DEF IDENT '(' [params] ')' ':' suite
//	suite      → simple_line | NEWLINE INDENT { stmt } OUTDENT
//	simple     → RETURN [exprlist] | PASS | BREAK | CONTINUE
//	           | exprlist [assign_op exprlist]
//
// Expression grammar is in parser_expr.go.
package script

import "fmt"

// Parser parses hybrid script into a syntax tree.
type Parser struct {
	lexer    *Lexer
	filename string
	token    Token // current token
	peek     Token // lookahead token
	errors   []error
}

// bailout unwinds the parser after the first error.
type bailout struct{}

// NewParser creates a new parser for the given source.
func NewParser(filename, src string) *Parser {
	return &Parser{
		lexer:    NewLexer(src),
		filename: filename,
	}
}

// Parse parses src and returns the file syntax tree.
// The returned error, if any, is a *ParseError.
func Parse(filename string, src []byte) (*File, error) {
	p := NewParser(filename, string(src))
	f, err := p.ParseFile()
	if err != nil {
		return nil, err
	}
	f.Marked = HasMarker(src)
	return f, nil
}

// ParseFile parses the whole input. It stops at the first error.
func (p *Parser) ParseFile() (f *File, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			f, err = nil, p.errors[0]
		}
	}()

	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()

	f = &File{Name: p.filename}
	for !p.check(EOF) {
		if p.match(NEWLINE) {
			continue
		}
		f.Stmts = append(f.Stmts, p.parseStmt()...)
	}
	return f, nil
}

// Errors returns the errors recorded so far.
func (p *Parser) Errors() []error {
	return p.errors
}

// ---------- Token Helpers ----------

// nextToken advances to the next token. Lexical errors surface when the
// offending token becomes current.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
	if p.token.Type == ILLEGAL {
		p.errorf(p.token.Pos, "%s", p.token.Literal)
	}
}

func (p *Parser) check(t TokenType) bool {
	return p.token.Type == t
}

func (p *Parser) checkPeek(t TokenType) bool {
	return p.peek.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise fails.
func (p *Parser) expect(t TokenType) Token {
	tok := p.token
	if !p.check(t) {
		p.errorf(tok.Pos, ErrUnexpectedToken, tok, t)
	}
	p.nextToken()
	return tok
}

func (p *Parser) expectIdent() *Ident {
	tok := p.expect(IDENT)
	return &Ident{NamePos: tok.Pos, Name: tok.Literal}
}

func (p *Parser) errorf(pos Position, format string, args ...any) {
	p.errors = append(p.errors, &ParseError{
		File:    p.filename,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	})
	panic(bailout{})
}

// ---------- Statements ----------

func (p *Parser) parseStmt() []Stmt {
	switch p.token.Type {
	case DEF:
		return []Stmt{p.parseDef()}
	case IF:
		return []Stmt{p.parseIf()}
	case FOR:
		return []Stmt{p.parseFor()}
	case WHILE:
		return []Stmt{p.parseWhile()}
	default:
		return p.parseSimpleLine()
	}
}

// parseSimpleLine parses simple statements separated by ';' up to NEWLINE.
func (p *Parser) parseSimpleLine() []Stmt {
	stmts := []Stmt{p.parseSimpleStmt()}
	for p.match(SEMI) {
		if p.check(NEWLINE) {
			break
		}
		stmts = append(stmts, p.parseSimpleStmt())
	}
	p.expect(NEWLINE)
	return stmts
}

func (p *Parser) parseSimpleStmt() Stmt {
	switch p.token.Type {
	case RETURN:
		pos := p.token.Pos
		p.nextToken()
		if p.check(NEWLINE) || p.check(SEMI) {
			return &ReturnStmt{ReturnPos: pos}
		}
		return &ReturnStmt{ReturnPos: pos, Result: p.parseExprList()}
	case PASS, BREAK, CONTINUE:
		tok := p.token
		p.nextToken()
		return &BranchStmt{TokPos: tok.Pos, Token: tok.Type}
	}

	x := p.parseExprList()
	if !isAssignOp(p.token.Type) {
		return &ExprStmt{X: x}
	}

	op := p.token
	p.nextToken()
	if op.Type == EQ {
		p.checkTarget(x)
	} else {
		switch x.(type) {
		case *Ident, *IndexExpr, *DotExpr:
		default:
			p.errorf(x.Pos(), ErrBadTarget, describe(x))
		}
	}
	return &AssignStmt{OpPos: op.Pos, Op: op.Type, LHS: x, RHS: p.parseExprList()}
}

func (p *Parser) parseDef() *FuncDef {
	pos := p.expect(DEF).Pos
	name := p.expectIdent()
	p.expect(LPAREN)
	params := p.parseParams()
	p.expect(RPAREN)
	p.expect(COLON)

	return &FuncDef{
		DefPos: pos,
		Name:   name.Name,
		Params: params,
		Body:   p.parseSuite(),
	}
}

func (p *Parser) parseParams() []*Param {
	var params []*Param
	seen := make(map[string]bool)
	sawDefault := false

	for !p.check(RPAREN) {
		name := p.expectIdent()
		if seen[name.Name] {
			p.errorf(name.NamePos, ErrDuplicateParam, name.Name)
		}
		seen[name.Name] = true

		param := &Param{NamePos: name.NamePos, Name: name.Name}
		if p.match(EQ) {
			param.Default = p.parseTest()
			sawDefault = true
		} else if sawDefault {
			p.errorf(name.NamePos, ErrParamOrder, name.Name)
		}
		params = append(params, param)

		if !p.match(COMMA) {
			break
		}
	}
	return params
}

// parseSuite parses a block after ':' either on the same line or indented.
func (p *Parser) parseSuite() []Stmt {
	if !p.match(NEWLINE) {
		return p.parseSimpleLine()
	}
	if !p.check(INDENT) {
		p.errorf(p.token.Pos, "expected an indented block")
	}
	p.nextToken()

	var body []Stmt
	for !p.check(OUTDENT) && !p.check(EOF) {
		if p.match(NEWLINE) {
			continue
		}
		body = append(body, p.parseStmt()...)
	}
	p.match(OUTDENT)
	return body
}

// parseIf parses if and elif; an elif becomes a nested IfStmt.
func (p *Parser) parseIf() *IfStmt {
	pos := p.token.Pos
	p.nextToken()
	cond := p.parseTest()
	p.expect(COLON)

	stmt := &IfStmt{IfPos: pos, Cond: cond, Then: p.parseSuite()}
	switch p.token.Type {
	case ELIF:
		stmt.Else = []Stmt{p.parseIf()}
	case ELSE:
		p.nextToken()
		p.expect(COLON)
		stmt.Else = p.parseSuite()
	}
	return stmt
}

func (p *Parser) parseFor() *ForStmt {
	pos := p.expect(FOR).Pos
	vars := p.parseForTargets()
	p.expect(IN)
	x := p.parseExprList()
	p.expect(COLON)

	return &ForStmt{ForPos: pos, Vars: vars, X: x, Body: p.parseSuite()}
}

// parseForTargets parses loop variables without consuming "in" as an operator.
func (p *Parser) parseForTargets() Expr {
	first := p.parsePostfix()
	if !p.check(COMMA) {
		p.checkTarget(first)
		return first
	}

	list := []Expr{first}
	for p.match(COMMA) {
		if p.check(IN) {
			break
		}
		list = append(list, p.parsePostfix())
	}
	tuple := &TupleExpr{Lparen: first.Pos(), List: list}
	p.checkTarget(tuple)
	return tuple
}

func (p *Parser) parseWhile() *WhileStmt {
	pos := p.expect(WHILE).Pos
	cond := p.parseTest()
	p.expect(COLON)

	return &WhileStmt{WhilePos: pos, Cond: cond, Body: p.parseSuite()}
}

// checkTarget validates the left-hand side of an assignment or loop.
func (p *Parser) checkTarget(e Expr) {
	switch e := e.(type) {
	case *Ident, *IndexExpr, *DotExpr:
	case *TupleExpr:
		if len(e.List) == 0 {
			p.errorf(e.Pos(), ErrBadTarget, "()")
		}
		for _, x := range e.List {
			p.checkTarget(x)
		}
	case *ListExpr:
		if len(e.List) == 0 {
			p.errorf(e.Pos(), ErrBadTarget, "[]")
		}
		for _, x := range e.List {
			p.checkTarget(x)
		}
	default:
		p.errorf(e.Pos(), ErrBadTarget, describe(e))
	}
}

func isAssignOp(t TokenType) bool {
	switch t {
	case EQ, PLUS_EQ, MINUS_EQ, STAR_EQ, SLASH_EQ, SLASHSLASH_EQ, PERCENT_EQ,
		AMP_EQ, PIPE_EQ, CIRCUMFLEX_EQ, LTLT_EQ, GTGT_EQ:
		return true
	}
	return false
}

// describe names an expression kind for error messages.
func describe(e Expr) string {
	switch e.(type) {
	case *Literal:
		return "literal"
	case *CallExpr:
		return "function call"
	case *UnaryExpr, *BinaryExpr:
		return "operator expression"
	case *CondExpr:
		return "conditional expression"
	case *TupleExpr:
		return "tuple"
	case *ListExpr:
		return "list"
	case *DictExpr:
		return "dict"
	case *KeywordArg:
		return "keyword argument"
	case *SliceExpr:
		return "slice"
	default:
		return "expression"
	}
}
