// lexer.go
package jslet

import (
	"fmt"
	"strconv"
	"unicode/utf16"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Punctuation
	LROUND    // "("
	RROUND    // ")"
	SEMICOLON // ";"

	// Operators
	PLUS
	MINUS
	MULT
	DIV
	ASSIGN // "="
	EQ     // "=="

	// Literals & identifiers
	ID
	STRING
	NUMBER

	// Keywords
	LET
)

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw text slice
	Literal interface{} // parsed value for literals
	Line    int         // 1-based
	Col     int         // 0-based
}

// keywords map. `true`, `false` and `undefined` are deliberately absent:
// they are ordinary identifiers resolved against the global scope, where the
// engine interns its singletons.
var keywords = map[string]TokenType{
	"let": LET,
}

// Lexer scans a source string into tokens.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 0-based column within line
	tokens []Token

	// precise token start position
	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:  src,
		line: 1,
		col:  0,
	}
}

// Scan tokenizes the whole source, returning the token slice terminated by
// an EOF token, or the first *LexError encountered.
func (l *Lexer) Scan() ([]Token, error) {
	for {
		l.skipWhitespaceAndComments()
		if l.isAtEnd() {
			break
		}
		l.start = l.cur
		l.tokStartLine = l.line
		l.tokStartCol = l.col
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	l.tokStartLine = l.line
	l.tokStartCol = l.col
	l.start = l.cur
	l.addToken(EOF, nil)
	return l.tokens, nil
}

func (l *Lexer) scanToken() error {
	ch, _ := l.advance()
	switch ch {
	case '(':
		l.addToken(LROUND, nil)
	case ')':
		l.addToken(RROUND, nil)
	case ';':
		l.addToken(SEMICOLON, nil)
	case '+':
		l.addToken(PLUS, nil)
	case '-':
		l.addToken(MINUS, nil)
	case '*':
		l.addToken(MULT, nil)
	case '/':
		l.addToken(DIV, nil)
	case '=':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			l.addToken(EQ, nil)
		} else {
			l.addToken(ASSIGN, nil)
		}
	case '"', '\'':
		s, err := l.scanString()
		if err != nil {
			return err
		}
		l.addToken(STRING, s)
	default:
		switch {
		case isDigit(ch) || (ch == '.' && l.peekIsDigit()):
			return l.scanNumber()
		case isAlpha(ch):
			return l.scanIdentifier()
		default:
			return l.err(fmt.Sprintf("unexpected character %q", string(ch)))
		}
	}
	return nil
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) peekIsDigit() bool {
	b, ok := l.peek()
	return ok && isDigit(b)
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) addToken(tt TokenType, lit interface{}) Token {
	tok := Token{
		Type:    tt,
		Lexeme:  l.src[l.start:l.cur],
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	return tok
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\n', '\t':
			l.advance()
			l.start = l.cur
		case '/':
			// "//" starts a line comment; a lone '/' is the division operator.
			if b, ok := l.peekN(1); !ok || b != '/' {
				return
			}
			for !l.isAtEnd() {
				c, _ := l.peek()
				if c == '\n' {
					break
				}
				l.advance()
			}
			l.start = l.cur
		default:
			return
		}
	}
}

// helpers

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

// ----- errors -----

type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

func (l *Lexer) err(msg string) error {
	return &LexError{Line: l.tokStartLine, Col: l.tokStartCol, Msg: msg}
}

// ----- scanners -----

// scanString parses a JSON-style string literal (single or double quotes).
// The opening quote has already been consumed.
func (l *Lexer) scanString() (string, error) {
	del := l.src[l.start]

	var out []rune
	for !l.isAtEnd() {
		ch, _ := l.advance()
		if ch == del {
			return string(out), nil
		}
		if ch == '\n' {
			return "", l.err("unterminated string literal")
		}
		if ch != '\\' {
			out = append(out, rune(ch))
			continue
		}

		if l.isAtEnd() {
			return "", l.err("unfinished escape sequence")
		}
		esc, _ := l.advance()
		switch esc {
		case '"':
			out = append(out, '"')
		case '\'':
			out = append(out, '\'')
		case '\\':
			out = append(out, '\\')
		case '/':
			out = append(out, '/')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'u':
			r, err := l.scanUnicodeEscape()
			if err != nil {
				return "", err
			}
			out = append(out, r)
		default:
			return "", l.err(fmt.Sprintf("unknown escape sequence \\%s", string(esc)))
		}
	}
	return "", l.err("unterminated string literal")
}

// scanUnicodeEscape reads the 4 hex digits after "\u", pairing surrogates
// when a matching low half follows.
func (l *Lexer) scanUnicodeEscape() (rune, error) {
	read4 := func() (rune, error) {
		var hex string
		for i := 0; i < 4; i++ {
			b, ok := l.peek()
			if !ok || !isHex(b) {
				return 0, l.err("unicode escape was not terminated (expect 4 hex digits)")
			}
			hex += string(b)
			l.advance()
		}
		v, err := strconv.ParseInt(hex, 16, 32)
		if err != nil {
			return 0, l.err("invalid unicode escape")
		}
		return rune(v), nil
	}

	r, err := read4()
	if err != nil {
		return 0, err
	}
	if 0xD800 <= r && r <= 0xDBFF {
		if b0, ok := l.peek(); ok && b0 == '\\' {
			if b1, ok := l.peekN(1); ok && b1 == 'u' {
				l.advance()
				l.advance()
				r2, err := read4()
				if err != nil {
					return 0, err
				}
				if 0xDC00 <= r2 && r2 <= 0xDFFF {
					return utf16.DecodeRune(r, r2), nil
				}
				return 0, l.err("invalid surrogate pair in unicode escape")
			}
		}
		return 0, l.err("unpaired surrogate in unicode escape")
	}
	return r, nil
}

// scanNumber parses a decimal literal with optional fraction and exponent.
// The first character (a digit, or '.' followed by a digit) has already
// been consumed.
func (l *Lexer) scanNumber() error {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if b, ok := l.peek(); ok && b == '.' {
		l.advance()
		for {
			b, ok := l.peek()
			if !ok || !isDigit(b) {
				break
			}
			l.advance()
		}
	}
	if b, ok := l.peek(); ok && (b == 'e' || b == 'E') {
		l.advance()
		if b, ok := l.peek(); ok && (b == '+' || b == '-') {
			l.advance()
		}
		sawDigit := false
		for {
			b, ok := l.peek()
			if !ok || !isDigit(b) {
				break
			}
			sawDigit = true
			l.advance()
		}
		if !sawDigit {
			return l.err("exponent has no digits")
		}
	}

	lexeme := l.src[l.start:l.cur]
	v, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return l.err(fmt.Sprintf("invalid number literal %q", lexeme))
	}
	l.addToken(NUMBER, v)
	return nil
}

// scanIdentifier parses an identifier or keyword. The first character has
// already been consumed.
func (l *Lexer) scanIdentifier() error {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	lexeme := l.src[l.start:l.cur]
	if tt, ok := keywords[lexeme]; ok {
		l.addToken(tt, nil)
	} else {
		l.addToken(ID, lexeme)
	}
	return nil
}
