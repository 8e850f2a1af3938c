package script

import "fmt"

// TokenType represents the type of a lexical token.
type TokenType int

// Token types.
const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL
	NEWLINE
	INDENT
	OUTDENT

	// Literals
	IDENT
	INT
	FLOAT
	STRING

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	SLASHSLASH
	PERCENT
	EQ  // =
	EQL // ==
	NEQ // !=
	LT
	GT
	LE
	GE
	PLUS_EQ
	MINUS_EQ
	STAR_EQ
	SLASH_EQ
	SLASHSLASH_EQ
	PERCENT_EQ
	AMP        // &
	PIPE       // |
	CIRCUMFLEX // ^
	LTLT       // <<
	GTGT       // >>
	TILDE      // ~
	AMP_EQ
	PIPE_EQ
	CIRCUMFLEX_EQ
	LTLT_EQ
	GTGT_EQ
	DOT
	COMMA
	COLON
	SEMI
	LPAREN
	RPAREN
	LBRACK
	RBRACK
	LBRACE
	RBRACE

	// Keywords
	AND
	BREAK
	CONTINUE
	DEF
	ELIF
	ELSE
	FOR
	IF
	IN
	NOT
	OR
	PASS
	RETURN
	WHILE

	// NOT_IN is synthesized by the parser for "not in".
	NOT_IN
)

var tokenNames = map[TokenType]string{
	EOF:           "EOF",
	ILLEGAL:       "ILLEGAL",
	NEWLINE:       "newline",
	INDENT:        "indent",
	OUTDENT:       "outdent",
	IDENT:         "identifier",
	INT:           "int literal",
	FLOAT:         "float literal",
	STRING:        "string literal",
	PLUS:          "+",
	MINUS:         "-",
	STAR:          "*",
	SLASH:         "/",
	SLASHSLASH:    "//",
	PERCENT:       "%",
	EQ:            "=",
	EQL:           "==",
	NEQ:           "!=",
	LT:            "<",
	GT:            ">",
	LE:            "<=",
	GE:            ">=",
	PLUS_EQ:       "+=",
	MINUS_EQ:      "-=",
	STAR_EQ:       "*=",
	SLASH_EQ:      "/=",
	SLASHSLASH_EQ: "//=",
	PERCENT_EQ:    "%=",
	AMP:           "&",
	PIPE:          "|",
	CIRCUMFLEX:    "^",
	LTLT:          "<<",
	GTGT:          ">>",
	TILDE:         "~",
	AMP_EQ:        "&=",
	PIPE_EQ:       "|=",
	CIRCUMFLEX_EQ: "^=",
	LTLT_EQ:       "<<=",
	GTGT_EQ:       ">>=",
	DOT:           ".",
	COMMA:         ",",
	COLON:         ":",
	SEMI:          ";",
	LPAREN:        "(",
	RPAREN:        ")",
	LBRACK:        "[",
	RBRACK:        "]",
	LBRACE:        "{",
	RBRACE:        "}",
	AND:           "and",
	BREAK:         "break",
	CONTINUE:      "continue",
	DEF:           "def",
	ELIF:          "elif",
	ELSE:          "else",
	FOR:           "for",
	IF:            "if",
	IN:            "in",
	NOT:           "not",
	OR:            "or",
	PASS:          "pass",
	RETURN:        "return",
	WHILE:         "while",
	NOT_IN:        "not in",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

var keywords = map[string]TokenType{
	"and":      AND,
	"break":    BREAK,
	"continue": CONTINUE,
	"def":      DEF,
	"elif":     ELIF,
	"else":     ELSE,
	"for":      FOR,
	"if":       IF,
	"in":       IN,
	"not":      NOT,
	"or":       OR,
	"pass":     PASS,
	"return":   RETURN,
	"while":    WHILE,
}

// LookupIdent returns the keyword token for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Position represents a location in the source text.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

func (t Token) String() string {
	switch t.Type {
	case IDENT, INT, FLOAT, STRING:
		return fmt.Sprintf("%s %q", t.Type, t.Literal)
	default:
		return t.Type.String()
	}
}
