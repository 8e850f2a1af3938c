package script

import "strings"

// Lexer tokenizes hybrid script source. It tracks indentation the way the
// dialect requires, emitting INDENT and OUTDENT tokens at the start of each
// logical line and suppressing newlines inside brackets.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	depth      int   // bracket nesting; newlines are ignored when > 0
	indents    []int // indentation stack, bottom is always 0
	pending    []Token
	lineStart  bool
	sawContent bool // a non-layout token was emitted since the last NEWLINE
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input:     input,
		line:      1,
		col:       0,
		indents:   []int{0},
		lineStart: true,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
// A newline belongs to the line it ends; the line count advances on the
// character after it.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// peekChar2 returns the character after the next one.
func (l *Lexer) peekChar2() byte {
	if l.readPos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.readPos+1]
}

func (l *Lexer) currentPos() Position {
	return Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}
	tok := l.scan()
	switch tok.Type {
	case NEWLINE, INDENT, OUTDENT, EOF:
	default:
		l.sawContent = true
	}
	return tok
}

func (l *Lexer) scan() Token {
	for {
		if l.lineStart && l.depth == 0 {
			l.lineStart = false
			if toks := l.indentation(); len(toks) > 0 {
				l.pending = append(l.pending, toks[1:]...)
				return toks[0]
			}
		}

		l.skipWhitespace()
		if l.ch == '#' {
			l.skipComment()
		}

		pos := l.currentPos()
		switch l.ch {
		case 0:
			return l.eof(pos)
		case '\n':
			l.readChar()
			if l.depth > 0 {
				continue
			}
			l.lineStart = true
			l.sawContent = false
			return Token{Type: NEWLINE, Literal: "\n", Pos: pos}
		}
		return l.scanToken(pos)
	}
}

// indentation measures leading whitespace at the start of a logical line.
// Blank and comment-only lines are skipped entirely.
func (l *Lexer) indentation() []Token {
	for {
		col := 0
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			switch l.ch {
			case '\t':
				col += 8 - col%8
			case ' ':
				col++
			}
			l.readChar()
		}
		if l.ch == '#' {
			l.skipComment()
		}
		if l.ch == '\n' {
			l.readChar()
			continue
		}
		if l.ch == 0 {
			return nil
		}

		pos := l.currentPos()
		top := l.indents[len(l.indents)-1]
		switch {
		case col > top:
			l.indents = append(l.indents, col)
			return []Token{{Type: INDENT, Pos: pos}}
		case col < top:
			var toks []Token
			for col < top {
				l.indents = l.indents[:len(l.indents)-1]
				top = l.indents[len(l.indents)-1]
				toks = append(toks, Token{Type: OUTDENT, Pos: pos})
			}
			if col != top {
				return []Token{{Type: ILLEGAL, Literal: ErrBadOutdent, Pos: pos}}
			}
			return toks
		}
		return nil
	}
}

// eof closes the last logical line and any open blocks before EOF.
func (l *Lexer) eof(pos Position) Token {
	if l.sawContent {
		l.sawContent = false
		return Token{Type: NEWLINE, Pos: pos}
	}
	if len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		return Token{Type: OUTDENT, Pos: pos}
	}
	return Token{Type: EOF, Pos: pos}
}

func (l *Lexer) scanToken(pos Position) Token {
	switch l.ch {
	case '+':
		return l.operator(pos, PLUS, PLUS_EQ)
	case '-':
		return l.operator(pos, MINUS, MINUS_EQ)
	case '*':
		return l.operator(pos, STAR, STAR_EQ)
	case '%':
		return l.operator(pos, PERCENT, PERCENT_EQ)
	case '/':
		if l.peekChar() == '/' {
			l.readChar()
			return l.operator(pos, SLASHSLASH, SLASHSLASH_EQ)
		}
		return l.operator(pos, SLASH, SLASH_EQ)
	case '=':
		return l.operator(pos, EQ, EQL)
	case '<':
		if l.peekChar() == '<' {
			l.readChar()
			return l.operator(pos, LTLT, LTLT_EQ)
		}
		return l.operator(pos, LT, LE)
	case '>':
		if l.peekChar() == '>' {
			l.readChar()
			return l.operator(pos, GTGT, GTGT_EQ)
		}
		return l.operator(pos, GT, GE)
	case '&':
		return l.operator(pos, AMP, AMP_EQ)
	case '|':
		return l.operator(pos, PIPE, PIPE_EQ)
	case '^':
		return l.operator(pos, CIRCUMFLEX, CIRCUMFLEX_EQ)
	case '~':
		return l.single(pos, TILDE)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: NEQ, Literal: "!=", Pos: pos}
		}
		l.readChar()
		return Token{Type: ILLEGAL, Literal: "unexpected character '!'", Pos: pos}
	case '.':
		if isDigit(l.peekChar()) {
			return l.readNumber(pos)
		}
		return l.single(pos, DOT)
	case ',':
		return l.single(pos, COMMA)
	case ':':
		return l.single(pos, COLON)
	case ';':
		return l.single(pos, SEMI)
	case '(':
		l.depth++
		return l.single(pos, LPAREN)
	case ')':
		l.closeBracket()
		return l.single(pos, RPAREN)
	case '[':
		l.depth++
		return l.single(pos, LBRACK)
	case ']':
		l.closeBracket()
		return l.single(pos, RBRACK)
	case '{':
		l.depth++
		return l.single(pos, LBRACE)
	case '}':
		l.closeBracket()
		return l.single(pos, RBRACE)
	case '"', '\'':
		return l.readString(pos)
	}

	if isDigit(l.ch) {
		return l.readNumber(pos)
	}
	if isIdentStart(l.ch) {
		ident := l.readIdentifier()
		return Token{Type: LookupIdent(ident), Literal: ident, Pos: pos}
	}

	ch := l.ch
	l.readChar()
	return Token{Type: ILLEGAL, Literal: "unexpected character " + string(rune(ch)), Pos: pos}
}

func (l *Lexer) closeBracket() {
	if l.depth > 0 {
		l.depth--
	}
}

// single consumes the current character as a token of type t.
func (l *Lexer) single(pos Position, t TokenType) Token {
	lit := string(l.ch)
	l.readChar()
	return Token{Type: t, Literal: lit, Pos: pos}
}

// operator consumes an operator that becomes withEq when followed by '='.
func (l *Lexer) operator(pos Position, plain, withEq TokenType) Token {
	l.readChar()
	if l.ch == '=' {
		l.readChar()
		return Token{Type: withEq, Literal: withEq.String(), Pos: pos}
	}
	return Token{Type: plain, Literal: plain.String(), Pos: pos}
}

// skipWhitespace skips blanks and backslash line continuations.
func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '\\' && l.peekChar() == '\n':
			l.readChar()
			l.readChar()
		default:
			return
		}
	}
}

// skipComment skips to the end of the line, leaving the newline in place.
func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isIdentStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos
	typ := INT

	if l.ch == '0' {
		var digit func(byte) bool
		switch l.peekChar() {
		case 'x', 'X':
			digit = isHexDigit
		case 'o', 'O':
			digit = func(ch byte) bool { return ch >= '0' && ch <= '7' }
		case 'b', 'B':
			digit = func(ch byte) bool { return ch == '0' || ch == '1' }
		}
		if digit != nil {
			l.readChar()
			l.readChar()
			if !digit(l.ch) {
				return Token{Type: ILLEGAL, Literal: ErrInvalidNumber, Pos: pos}
			}
			for digit(l.ch) {
				l.readChar()
			}
			return Token{Type: INT, Literal: l.input[start:l.pos], Pos: pos}
		}
	}

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		typ = FLOAT
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		typ = FLOAT
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			return Token{Type: ILLEGAL, Literal: ErrInvalidNumber, Pos: pos}
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return Token{Type: typ, Literal: l.input[start:l.pos], Pos: pos}
}

// readString reads a single, double, or triple quoted string literal.
// The token literal holds the decoded value.
func (l *Lexer) readString(pos Position) Token {
	quote := l.ch
	triple := l.peekChar() == quote && l.peekChar2() == quote
	if triple {
		l.readChar()
		l.readChar()
	}
	l.readChar()

	var sb strings.Builder
	for {
		switch {
		case l.ch == 0, l.ch == '\n' && !triple:
			return Token{Type: ILLEGAL, Literal: ErrUnterminatedString, Pos: pos}
		case l.ch == '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			case '\\', '\'', '"':
				sb.WriteByte(l.ch)
			case '\n':
				// escaped newline joins lines
			case 0:
				return Token{Type: ILLEGAL, Literal: ErrUnterminatedString, Pos: pos}
			default:
				sb.WriteByte('\\')
				sb.WriteByte(l.ch)
			}
			l.readChar()
		case l.ch == quote:
			if !triple {
				l.readChar()
				return Token{Type: STRING, Literal: sb.String(), Pos: pos}
			}
			if l.peekChar() == quote && l.peekChar2() == quote {
				l.readChar()
				l.readChar()
				l.readChar()
				return Token{Type: STRING, Literal: sb.String(), Pos: pos}
			}
			sb.WriteByte(l.ch)
			l.readChar()
		default:
			sb.WriteByte(l.ch)
			l.readChar()
		}
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch >= 0x80
}
