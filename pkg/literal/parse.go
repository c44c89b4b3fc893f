package literal

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/raymyers/pypre/pkg/diag"
)

// Parse parses src as a literal. It accepts integers, floats, quoted
// strings, True, False, None and parenthesized or bracketed sequences of
// literals. Names, calls and operators other than a single leading sign
// on a number are rejected with a SyntaxKind error. Nothing is evaluated.
func Parse(src string) (Value, error) {
	p := &parser{src: src, tokens: NewLexer(src).AllTokens()}

	if p.peek().Type == TOK_EOF {
		return None(), p.errorf("empty literal")
	}

	v, err := p.parseValue()
	if err != nil {
		return None(), err
	}

	if tok := p.peek(); tok.Type != TOK_EOF {
		return None(), p.errorf("unexpected %q at offset %d", tok.Text, tok.Pos)
	}
	return v, nil
}

// MustParse is like Parse but panics on error. It is meant for constant
// tables and tests.
func MustParse(src string) Value {
	v, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return v
}

type parser struct {
	src    string
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TOK_EOF, Pos: len(p.src)}
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) match(text string) bool {
	if tok := p.peek(); tok.Type == TOK_PUNCT && tok.Text == text {
		p.advance()
		return true
	}
	return false
}

func (p *parser) errorf(format string, args ...any) error {
	return diag.Errorf(diag.SyntaxKind, "invalid literal %q: %s", p.src, fmt.Sprintf(format, args...))
}

func (p *parser) parseValue() (Value, error) {
	tok := p.peek()

	switch tok.Type {
	case TOK_NUMBER:
		p.advance()
		return p.number(tok.Text, false)

	case TOK_STRING:
		// Adjacent strings concatenate.
		var sb strings.Builder
		for p.peek().Type == TOK_STRING {
			s, err := unquote(p.advance().Text)
			if err != nil {
				return None(), p.errorf("%v", err)
			}
			sb.WriteString(s)
		}
		return Str(sb.String()), nil

	case TOK_NAME:
		p.advance()
		switch tok.Text {
		case "True":
			return Bool(true), nil
		case "False":
			return Bool(false), nil
		case "None":
			return None(), nil
		}
		if next := p.peek(); next.Type == TOK_PUNCT && next.Text == "(" {
			return None(), p.errorf("call of %q is not a literal", tok.Text)
		}
		return None(), p.errorf("name %q is not a literal", tok.Text)

	case TOK_PUNCT:
		switch tok.Text {
		case "+", "-":
			p.advance()
			num := p.peek()
			if num.Type != TOK_NUMBER {
				return None(), p.errorf("sign must be followed by a number")
			}
			p.advance()
			return p.number(num.Text, tok.Text == "-")
		case "(":
			return p.parseSequence(")", true)
		case "[":
			return p.parseSequence("]", false)
		}

	case TOK_EOF:
		return None(), p.errorf("unexpected end of input")
	}

	return None(), p.errorf("unexpected %q at offset %d", tok.Text, tok.Pos)
}

// parseSequence parses "( ... )" or "[ ... ]". A parenthesized single
// value without a trailing comma is just that value.
func (p *parser) parseSequence(closer string, paren bool) (Value, error) {
	p.advance() // opener

	if p.match(closer) {
		return Tuple(), nil
	}

	first, err := p.parseValue()
	if err != nil {
		return None(), err
	}
	if p.match(closer) {
		if paren {
			return first, nil
		}
		return Tuple(first), nil
	}
	if !p.match(",") {
		return None(), p.errorf("expected ',' or '%s' at offset %d", closer, p.peek().Pos)
	}

	elems := []Value{first}
	for !p.match(closer) {
		v, err := p.parseValue()
		if err != nil {
			return None(), err
		}
		elems = append(elems, v)
		if p.match(closer) {
			break
		}
		if !p.match(",") {
			return None(), p.errorf("expected ',' or '%s' at offset %d", closer, p.peek().Pos)
		}
	}
	return Tuple(elems...), nil
}

func (p *parser) number(text string, neg bool) (Value, error) {
	v, err := parseNumber(text, neg)
	if err != nil {
		return None(), p.errorf("%v", err)
	}
	return v, nil
}

// parseNumber converts a number token. Integers are limited to 64 bits.
func parseNumber(text string, neg bool) (Value, error) {
	lower := strings.ToLower(text)

	if strings.HasSuffix(lower, "j") {
		return None(), errors.New("complex numbers are not supported")
	}

	if len(lower) > 1 && lower[0] == '0' && (lower[1] == 'x' || lower[1] == 'o' || lower[1] == 'b') {
		base := map[byte]int{'x': 16, 'o': 8, 'b': 2}[lower[1]]
		digits := lower[2:]
		if strings.HasPrefix(digits, "_") {
			digits = digits[1:]
		}
		clean, ok := stripUnderscores(digits, isHexDigit)
		if !ok || clean == "" {
			return None(), fmt.Errorf("malformed number %q", text)
		}
		u, err := strconv.ParseUint(clean, base, 64)
		if err != nil {
			return None(), numError(text, err)
		}
		return signedInt(text, u, neg)
	}

	clean, ok := stripUnderscores(lower, isDigit)
	if !ok {
		return None(), fmt.Errorf("malformed number %q", text)
	}

	if strings.ContainsAny(clean, ".e") {
		for i := 0; i < len(clean); i++ {
			c := clean[i]
			if !isDigit(c) && c != '.' && c != 'e' && c != '+' && c != '-' {
				return None(), fmt.Errorf("malformed number %q", text)
			}
		}
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return None(), numError(text, err)
		}
		if neg {
			f = -f
		}
		return Float(f), nil
	}

	if len(clean) > 1 && clean[0] == '0' && strings.Trim(clean, "0") != "" {
		return None(), fmt.Errorf("leading zeros are not permitted in %q", text)
	}
	u, err := strconv.ParseUint(clean, 10, 64)
	if err != nil {
		return None(), numError(text, err)
	}
	return signedInt(text, u, neg)
}

func signedInt(text string, u uint64, neg bool) (Value, error) {
	if neg {
		if u > uint64(math.MaxInt64)+1 {
			return None(), fmt.Errorf("integer %q out of range", "-"+text)
		}
		return Int(int64(-u)), nil
	}
	if u > math.MaxInt64 {
		return None(), fmt.Errorf("integer %q out of range", text)
	}
	return Int(int64(u)), nil
}

func numError(text string, err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("number %q out of range", text)
	}
	return fmt.Errorf("malformed number %q", text)
}

// stripUnderscores removes digit-group underscores. Every underscore must
// sit between two digits.
func stripUnderscores(s string, digit func(byte) bool) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			sb.WriteByte(s[i])
			continue
		}
		if i == 0 || i == len(s)-1 || !digit(s[i-1]) || !digit(s[i+1]) {
			return "", false
		}
	}
	return sb.String(), true
}

// unquote decodes a quoted string token, including its quotes.
// Unrecognized escapes are kept verbatim.
func unquote(text string) (string, error) {
	if len(text) < 2 {
		return "", fmt.Errorf("unterminated string %s", text)
	}
	body := text[1 : len(text)-1]

	var sb strings.Builder
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("trailing backslash in %s", text)
		}
		e := body[i]
		i++
		switch e {
		case '\n':
		case '\\', '\'', '"':
			sb.WriteByte(e)
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'v':
			sb.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			n := int(e - '0')
			for k := 0; k < 2 && i < len(body) && body[i] >= '0' && body[i] <= '7'; k++ {
				n = n*8 + int(body[i]-'0')
				i++
			}
			sb.WriteRune(rune(n))
		case 'x', 'u', 'U':
			width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[e]
			if i+width > len(body) {
				return "", fmt.Errorf("truncated \\%c escape in %s", e, text)
			}
			n, err := strconv.ParseUint(body[i:i+width], 16, 32)
			if err != nil {
				return "", fmt.Errorf("malformed \\%c escape in %s", e, text)
			}
			if !utf8.ValidRune(rune(n)) {
				return "", fmt.Errorf("invalid code point in %s", text)
			}
			sb.WriteRune(rune(n))
			i += width
		case 'N':
			return "", fmt.Errorf("named escapes are not supported in %s", text)
		default:
			sb.WriteByte('\\')
			sb.WriteByte(e)
		}
	}
	return sb.String(), nil
}
