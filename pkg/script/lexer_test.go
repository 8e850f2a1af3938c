package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexTypes(t *testing.T, input string) []TokenType {
	t.Helper()
	l := NewLexer(input)
	var types []TokenType
	for i := 0; i < 1000; i++ {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF || tok.Type == ILLEGAL {
			return types
		}
	}
	require.FailNow(t, "lexer did not reach EOF")
	return nil
}

func TestLexer_Tokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{
			name:  "one line definition",
			input: "def addone(x): return x + 1",
			want:  []TokenType{DEF, IDENT, LPAREN, IDENT, RPAREN, COLON, RETURN, IDENT, PLUS, INT, NEWLINE, EOF},
		},
		{
			name:  "indented block",
			input: "def f(x):\n    return x\n",
			want:  []TokenType{DEF, IDENT, LPAREN, IDENT, RPAREN, COLON, NEWLINE, INDENT, RETURN, IDENT, NEWLINE, OUTDENT, EOF},
		},
		{
			name:  "nested blocks close at EOF",
			input: "def f(x):\n    if x:\n        pass",
			want: []TokenType{
				DEF, IDENT, LPAREN, IDENT, RPAREN, COLON, NEWLINE,
				INDENT, IF, IDENT, COLON, NEWLINE,
				INDENT, PASS, NEWLINE, OUTDENT, OUTDENT, EOF,
			},
		},
		{
			name:  "newlines ignored inside brackets",
			input: "x = (1,\n     2)\n",
			want:  []TokenType{IDENT, EQ, LPAREN, INT, COMMA, INT, RPAREN, NEWLINE, EOF},
		},
		{
			name:  "marker comment and blank lines skipped",
			input: "# @hybrid.script\n\n   \ndef f(): pass",
			want:  []TokenType{DEF, IDENT, LPAREN, RPAREN, COLON, PASS, NEWLINE, EOF},
		},
		{
			name:  "compound operators",
			input: "a //= b != c <= d >= e == f",
			want:  []TokenType{IDENT, SLASHSLASH_EQ, IDENT, NEQ, IDENT, LE, IDENT, GE, IDENT, EQL, IDENT, NEWLINE, EOF},
		},
		{
			name:  "bitwise operators",
			input: "a & b | c ^ ~d << e >> f",
			want:  []TokenType{IDENT, AMP, IDENT, PIPE, IDENT, CIRCUMFLEX, TILDE, IDENT, LTLT, IDENT, GTGT, IDENT, NEWLINE, EOF},
		},
		{
			name:  "bitwise augmented assignment",
			input: "a <<= 1; a >>= 1; a &= 1; a |= 1; a ^= 1",
			want: []TokenType{
				IDENT, LTLT_EQ, INT, SEMI, IDENT, GTGT_EQ, INT, SEMI,
				IDENT, AMP_EQ, INT, SEMI, IDENT, PIPE_EQ, INT, SEMI,
				IDENT, CIRCUMFLEX_EQ, INT, NEWLINE, EOF,
			},
		},
		{
			name:  "numbers",
			input: "1 2.5 .5 1e3 0x1F 0o17 0b101",
			want:  []TokenType{INT, FLOAT, FLOAT, FLOAT, INT, INT, INT, NEWLINE, EOF},
		},
		{
			name:  "keywords",
			input: "for i in x: continue",
			want:  []TokenType{FOR, IDENT, IN, IDENT, COLON, CONTINUE, NEWLINE, EOF},
		},
		{
			name:  "line continuation",
			input: "x = 1 + \\\n    2\n",
			want:  []TokenType{IDENT, EQ, INT, PLUS, INT, NEWLINE, EOF},
		},
		{
			name:  "bad outdent",
			input: "if x:\n    a\n  b\n",
			want:  []TokenType{IF, IDENT, COLON, NEWLINE, INDENT, IDENT, NEWLINE, ILLEGAL},
		},
		{
			name:  "unexpected character",
			input: "x = $",
			want:  []TokenType{IDENT, EQ, ILLEGAL},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lexTypes(t, tt.input))
		})
	}
}

func TestLexer_Strings(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "double quoted", input: `"hello"`, want: "hello"},
		{name: "single quoted", input: `'hello'`, want: "hello"},
		{name: "escapes", input: `"a\tb\n\"c\""`, want: "a\tb\n\"c\""},
		{name: "triple quoted", input: "\"\"\"line one\nline two\"\"\"", want: "line one\nline two"},
		{name: "unterminated", input: `"abc`, wantErr: true},
		{name: "newline in single quoted", input: "'ab\ncd'", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := NewLexer(tt.input).NextToken()
			if tt.wantErr {
				assert.Equal(t, ILLEGAL, tok.Type)
				assert.Equal(t, ErrUnterminatedString, tok.Literal)
				return
			}
			require.Equal(t, STRING, tok.Type)
			assert.Equal(t, tt.want, tok.Literal)
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	l := NewLexer("# @hybrid.script\ndef f(x):\n    return x\n")

	def := l.NextToken()
	require.Equal(t, DEF, def.Type)
	assert.Equal(t, 2, def.Pos.Line)
	assert.Equal(t, 1, def.Pos.Column)

	name := l.NextToken()
	assert.Equal(t, "f", name.Literal)
	assert.Equal(t, 5, name.Pos.Column)
}
