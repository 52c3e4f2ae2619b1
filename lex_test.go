package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func lexInput(inputStr string) *Lexer {
	input := []byte(inputStr + "\x00") // trailing null byte
	lx := NewLexer(input)
	lx.NextToken()
	return lx
}

func TestIntLiteral(t *testing.T) {
	lx := lexInput("12345")
	be.Equal(t, lx.Tok.Type, INT)
	be.Equal(t, lx.Tok.Literal, "12345")
	be.Equal(t, lx.Tok.Int, int64(12345))
}

func TestFloatLiteral(t *testing.T) {
	lx := lexInput("3.25")
	be.Equal(t, lx.Tok.Type, FLOAT)
	be.Equal(t, lx.Tok.Literal, "3.25")
	be.Equal(t, lx.Tok.Float, 3.25)
}

func TestIntFollowedByDot(t *testing.T) {
	// "1.x" is member access on an integer, not a malformed float.
	lx := lexInput("1.x")
	be.Equal(t, lx.Tok.Type, INT)
	lx.NextToken()
	be.Equal(t, lx.Tok.Type, DOT)
	lx.NextToken()
	be.Equal(t, lx.Tok.Type, IDENT)
}

func TestIdentifier(t *testing.T) {
	lx := lexInput("foobar")
	be.Equal(t, lx.Tok.Type, IDENT)
	be.Equal(t, lx.Tok.Literal, "foobar")
}

func TestStringLiteral(t *testing.T) {
	lx := lexInput("\"hello\"")
	be.Equal(t, lx.Tok.Type, STRING)
	be.Equal(t, lx.Tok.Literal, "hello")
}

func TestSingleQuoteString(t *testing.T) {
	lx := lexInput("'hello'")
	be.Equal(t, lx.Tok.Type, STRING)
	be.Equal(t, lx.Tok.Literal, "hello")
}

func TestStringEscapes(t *testing.T) {
	lx := lexInput(`"a\nb\tc"`)
	be.Equal(t, lx.Tok.Type, STRING)
	be.Equal(t, lx.Tok.Literal, "a\nb\tc")
}

func TestDelimiters(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"(", LPAREN},
		{")", RPAREN},
		{"{", LBRACE},
		{"}", RBRACE},
		{"[", LBRACKET},
		{"]", RBRACKET},
		{",", COMMA},
		{";", SEMICOLON},
		{":", COLON},
		{".", DOT},
		{"...", ELLIPSIS},
	}

	for _, tt := range tests {
		lx := lexInput(tt.input)
		be.Equal(t, lx.Tok.Type, tt.typ)
	}
}

func TestOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"=", ASSIGN},
		{"+", PLUS},
		{"-", MINUS},
		{"!", BANG},
		{"*", ASTERISK},
		{"/", SLASH},
		{"%", PERCENT},
		{"==", EQ},
		{"!=", NOT_EQ},
		{"<", LT},
		{">", GT},
		{"<=", LE},
		{">=", GE},
		{"&&", AND},
		{"||", OR},
		{"|", PIPE},
		{"?", QUESTION},
		{"=>", ARROW},
	}

	for _, tt := range tests {
		lx := lexInput(tt.input)
		be.Equal(t, lx.Tok.Type, tt.expected)
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"let", LET},
		{"const", CONST},
		{"fn", FN},
		{"async", ASYNC},
		{"class", CLASS},
		{"interface", INTERFACE},
		{"enum", ENUM},
		{"type", TYPE},
		{"constructor", CONSTRUCTOR},
		{"export", EXPORT},
		{"if", IF},
		{"else", ELSE},
		{"while", WHILE},
		{"do", DO},
		{"for", FOR},
		{"in", IN},
		{"of", OF},
		{"switch", SWITCH},
		{"case", CASE},
		{"default", DEFAULT},
		{"break", BREAK},
		{"continue", CONTINUE},
		{"return", RETURN},
		{"try", TRY},
		{"catch", CATCH},
		{"finally", FINALLY},
		{"new", NEW},
		{"typeof", TYPEOF},
		{"instanceof", INSTANCEOF},
		{"await", AWAIT},
		{"true", TRUE},
		{"false", FALSE},
		{"null", NULL},
	}

	for _, tt := range tests {
		lx := lexInput(tt.input)
		be.Equal(t, lx.Tok.Type, tt.expected)
		be.Equal(t, lx.Tok.Literal, tt.input)
	}
}

func TestLineComments(t *testing.T) {
	lx := lexInput("// comment\nfoo")
	be.Equal(t, lx.Tok.Type, IDENT)
	be.Equal(t, lx.Tok.Literal, "foo")
	be.Equal(t, lx.Tok.Line, 2)
}

func TestBlockComments(t *testing.T) {
	lx := lexInput("/* a\nb */ foo")
	be.Equal(t, lx.Tok.Type, IDENT)
	be.Equal(t, lx.Tok.Literal, "foo")
}

func TestTokenPositions(t *testing.T) {
	lx := lexInput("let x\n  = 1")
	be.Equal(t, lx.Tok.Type, LET)
	be.Equal(t, lx.Tok.Line, 1)
	be.Equal(t, lx.Tok.Col, 1)

	lx.NextToken()
	be.Equal(t, lx.Tok.Type, IDENT)
	be.Equal(t, lx.Tok.Col, 5)

	lx.NextToken()
	be.Equal(t, lx.Tok.Type, ASSIGN)
	be.Equal(t, lx.Tok.Line, 2)
	be.Equal(t, lx.Tok.Col, 3)
}

func TestTokenSequence(t *testing.T) {
	lx := lexInput("let x: int = 42;")
	var types []TokenType
	for lx.Tok.Type != EOF {
		types = append(types, lx.Tok.Type)
		lx.NextToken()
	}
	be.Equal(t, types, []TokenType{LET, IDENT, COLON, IDENT, ASSIGN, INT, SEMICOLON})
}

func TestIllegalToken(t *testing.T) {
	lx := lexInput("@")
	be.Equal(t, lx.Tok.Type, ILLEGAL)
}
