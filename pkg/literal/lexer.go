package literal

// TokenType represents the type of a literal token.
type TokenType int

const (
	TOK_EOF TokenType = iota
	TOK_NAME
	TOK_NUMBER
	TOK_STRING
	TOK_PUNCT
	TOK_ILLEGAL
)

func (t TokenType) String() string {
	switch t {
	case TOK_EOF:
		return "EOF"
	case TOK_NAME:
		return "NAME"
	case TOK_NUMBER:
		return "NUMBER"
	case TOK_STRING:
		return "STRING"
	case TOK_PUNCT:
		return "PUNCT"
	case TOK_ILLEGAL:
		return "ILLEGAL"
	default:
		return "UNKNOWN"
	}
}

// Token is a lexical element of a literal. Pos is the byte offset of the
// token in the input.
type Token struct {
	Type TokenType
	Text string
	Pos  int
}

// Lexer splits literal text into tokens. It never fails; malformed input
// produces TOK_ILLEGAL tokens that the parser rejects.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a lexer over input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	for l.pos < len(l.input) && isWhitespace(l.peek()) {
		l.pos++
	}

	if l.pos >= len(l.input) {
		return Token{Type: TOK_EOF, Pos: l.pos}
	}

	c := l.peek()
	switch {
	case c == '"' || c == '\'':
		return l.scanString(c)
	case isDigit(c) || (c == '.' && isDigit(l.peekAt(1))):
		return l.scanNumber()
	case isIdentStart(c):
		return l.scanName()
	}

	switch c {
	case '(', ')', '[', ']', ',', '+', '-':
		tok := Token{Type: TOK_PUNCT, Text: string(c), Pos: l.pos}
		l.pos++
		return tok
	}

	tok := Token{Type: TOK_ILLEGAL, Text: string(c), Pos: l.pos}
	l.pos++
	return tok
}

// AllTokens returns all tokens up to and including TOK_EOF.
func (l *Lexer) AllTokens() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TOK_EOF {
			break
		}
	}
	return tokens
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentContinue(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// scanString scans a quoted string including its quotes. An unterminated
// string is returned as TOK_ILLEGAL.
func (l *Lexer) scanString(quote byte) Token {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.input) {
		c := l.peek()
		if c == quote {
			l.pos++
			return Token{Type: TOK_STRING, Text: l.input[start:l.pos], Pos: start}
		}
		if c == '\\' && l.pos+1 < len(l.input) {
			l.pos += 2
			continue
		}
		if c == '\n' {
			break
		}
		l.pos++
	}
	l.pos = len(l.input)
	return Token{Type: TOK_ILLEGAL, Text: l.input[start:], Pos: start}
}

// scanNumber scans a Python-style number:
// digits, letters, underscores and dots, plus a sign directly after an
// exponent marker. Validation happens in the parser.
func (l *Lexer) scanNumber() Token {
	start := l.pos
	hex := l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X')
	for l.pos < len(l.input) {
		c := l.peek()
		if !isIdentContinue(c) && c != '.' {
			break
		}
		if !hex && (c == 'e' || c == 'E') {
			if next := l.peekAt(1); next == '+' || next == '-' {
				l.pos += 2
				continue
			}
		}
		l.pos++
	}
	return Token{Type: TOK_NUMBER, Text: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) scanName() Token {
	start := l.pos
	for l.pos < len(l.input) && isIdentContinue(l.peek()) {
		l.pos++
	}
	return Token{Type: TOK_NAME, Text: l.input[start:l.pos], Pos: start}
}
