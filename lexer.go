package main

// TokenType is the type of token (identifier, operator, literal, etc.).
type TokenType string

// Definition of token types
const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	IDENT  = "IDENT"
	INT    = "INT"
	FLOAT  = "FLOAT"
	STRING = "STRING"

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	BANG     = "!"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"

	LT     = "<"
	GT     = ">"
	EQ     = "=="
	NOT_EQ = "!="
	LE     = "<="
	GE     = ">="

	AND      = "&&"
	OR       = "||"
	PIPE     = "|"
	QUESTION = "?"
	ARROW    = "=>"

	// Delimiters
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"
	LPAREN    = "("
	RPAREN    = ")"
	LBRACE    = "{"
	RBRACE    = "}"
	LBRACKET  = "["
	RBRACKET  = "]"
	DOT       = "."
	ELLIPSIS  = "..."

	// Keywords
	LET         = "LET"
	CONST       = "CONST"
	FN          = "FN"
	ASYNC       = "ASYNC"
	CLASS       = "CLASS"
	INTERFACE   = "INTERFACE"
	ENUM        = "ENUM"
	TYPE        = "TYPE"
	CONSTRUCTOR = "CONSTRUCTOR"
	EXPORT      = "EXPORT"
	IF          = "IF"
	ELSE        = "ELSE"
	WHILE       = "WHILE"
	DO          = "DO"
	FOR         = "FOR"
	IN          = "IN"
	OF          = "OF"
	SWITCH      = "SWITCH"
	CASE        = "CASE"
	DEFAULT     = "DEFAULT"
	BREAK       = "BREAK"
	CONTINUE    = "CONTINUE"
	RETURN      = "RETURN"
	TRY         = "TRY"
	CATCH       = "CATCH"
	FINALLY     = "FINALLY"
	NEW         = "NEW"
	TYPEOF      = "TYPEOF"
	INSTANCEOF  = "INSTANCEOF"
	AWAIT       = "AWAIT"
	TRUE        = "TRUE"
	FALSE       = "FALSE"
	NULL        = "NULL"
)

var keywords = map[string]TokenType{
	"let": LET, "const": CONST, "fn": FN, "async": ASYNC,
	"class": CLASS, "interface": INTERFACE, "enum": ENUM, "type": TYPE,
	"constructor": CONSTRUCTOR, "export": EXPORT,
	"if": IF, "else": ELSE, "while": WHILE, "do": DO, "for": FOR,
	"in": IN, "of": OF, "switch": SWITCH, "case": CASE, "default": DEFAULT,
	"break": BREAK, "continue": CONTINUE, "return": RETURN,
	"try": TRY, "catch": CATCH, "finally": FINALLY,
	"new": NEW, "typeof": TYPEOF, "instanceof": INSTANCEOF, "await": AWAIT,
	"true": TRUE, "false": FALSE, "null": NULL,
}

// Token is one scanned token with its source position.
type Token struct {
	Type     TokenType
	Literal  string
	Int      int64   // meaningful when Type == INT
	Float    float64 // meaningful when Type == FLOAT
	Line     int
	Col      int
}

// Lexer scans a null-terminated input buffer. The current token is held in
// Tok; call NextToken repeatedly until Tok.Type == EOF.
type Lexer struct {
	input []byte
	pos   int
	line  int
	col   int

	Tok Token
}

// NewLexer initializes a lexer for the given input (must end with a 0 byte).
func NewLexer(input []byte) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

func (l *Lexer) advance() byte {
	c := l.input[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *Lexer) peek() byte  { return l.input[l.pos] }
func (l *Lexer) peek2() byte { return l.input[l.pos+1] }

// NextToken scans the next token into l.Tok.
func (l *Lexer) NextToken() {
	l.skipWhitespaceAndComments()

	line, col := l.line, l.col
	c := l.peek()
	tok := Token{Line: line, Col: col}

	switch {
	case c == 0:
		tok.Type = EOF

	case isLetter(c):
		lit := l.readIdentifier()
		if kw, ok := keywords[lit]; ok {
			tok.Type = kw
		} else {
			tok.Type = IDENT
		}
		tok.Literal = lit

	case isDigit(c):
		l.readNumber(&tok)

	case c == '"' || c == '\'':
		tok.Type = STRING
		tok.Literal = l.readString(c)

	default:
		l.readOperator(&tok)
	}

	l.Tok = tok
}

func (l *Lexer) readOperator(tok *Token) {
	c := l.advance()
	two := func(t TokenType, lit string) {
		l.advance()
		tok.Type = t
		tok.Literal = lit
	}
	one := func(t TokenType) {
		tok.Type = t
		tok.Literal = string(c)
	}

	switch c {
	case '=':
		if l.peek() == '=' {
			two(EQ, "==")
		} else if l.peek() == '>' {
			two(ARROW, "=>")
		} else {
			one(ASSIGN)
		}
	case '!':
		if l.peek() == '=' {
			two(NOT_EQ, "!=")
		} else {
			one(BANG)
		}
	case '<':
		if l.peek() == '=' {
			two(LE, "<=")
		} else {
			one(LT)
		}
	case '>':
		if l.peek() == '=' {
			two(GE, ">=")
		} else {
			one(GT)
		}
	case '&':
		if l.peek() == '&' {
			two(AND, "&&")
		} else {
			one(ILLEGAL)
		}
	case '|':
		if l.peek() == '|' {
			two(OR, "||")
		} else {
			one(PIPE)
		}
	case '+':
		one(PLUS)
	case '-':
		one(MINUS)
	case '*':
		one(ASTERISK)
	case '/':
		one(SLASH)
	case '%':
		one(PERCENT)
	case '?':
		one(QUESTION)
	case ',':
		one(COMMA)
	case ';':
		one(SEMICOLON)
	case ':':
		one(COLON)
	case '(':
		one(LPAREN)
	case ')':
		one(RPAREN)
	case '{':
		one(LBRACE)
	case '}':
		one(RBRACE)
	case '[':
		one(LBRACKET)
	case ']':
		one(RBRACKET)
	case '.':
		if l.peek() == '.' && l.peek2() == '.' {
			l.advance()
			l.advance()
			tok.Type = ELLIPSIS
			tok.Literal = "..."
		} else {
			one(DOT)
		}
	default:
		one(ILLEGAL)
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		c := l.peek()
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.advance()
			continue
		}
		if c == '/' && l.peek2() == '/' {
			for l.peek() != '\n' && l.peek() != 0 {
				l.advance()
			}
			continue
		}
		if c == '/' && l.peek2() == '*' {
			l.advance()
			l.advance()
			for l.peek() != 0 && !(l.peek() == '*' && l.peek2() == '/') {
				l.advance()
			}
			if l.peek() == '*' {
				l.advance()
				l.advance()
			}
			continue
		}
		return
	}
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	return string(l.input[start:l.pos])
}

func (l *Lexer) readNumber(tok *Token) {
	start := l.pos
	var intVal int64
	for isDigit(l.peek()) {
		intVal = intVal*10 + int64(l.peek()-'0')
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peek2()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
		lit := string(l.input[start:l.pos])
		tok.Type = FLOAT
		tok.Literal = lit
		tok.Float = parseFloatLiteral(lit)
		return
	}
	tok.Type = INT
	tok.Literal = string(l.input[start:l.pos])
	tok.Int = intVal
}

func parseFloatLiteral(lit string) float64 {
	var whole, frac float64
	scale := 1.0
	inFrac := false
	for i := 0; i < len(lit); i++ {
		c := lit[i]
		if c == '.' {
			inFrac = true
			continue
		}
		d := float64(c - '0')
		if inFrac {
			scale /= 10
			frac += d * scale
		} else {
			whole = whole*10 + d
		}
	}
	return whole + frac
}

func (l *Lexer) readString(quote byte) string {
	l.advance() // opening quote
	var out []byte
	for l.peek() != quote && l.peek() != 0 {
		c := l.advance()
		if c == '\\' && l.peek() != 0 {
			esc := l.advance()
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			default:
				out = append(out, esc)
			}
			continue
		}
		out = append(out, c)
	}
	if l.peek() == quote {
		l.advance()
	}
	return string(out)
}
