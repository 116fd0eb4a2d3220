// Package lexer implements the scanner for the surface syntax: arithmetic,
// let-bindings, lambdas, conditionals and ascriptions.
//
// Column positions are reported as Unicode code point counts, not byte
// offsets, so multi-byte runes each count as one column. golang.org/x/text's
// width tables are consulted only by internal/errors when rendering a caret
// under a wide rune; the lexer itself never needs display width.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matthew-healy/uplp/pkg/token"
)

// Lexer scans a fixed input string into a stream of tokens.
type Lexer struct {
	input            string
	position         int
	readPosition     int
	line             int
	column           int
	ch               rune
	width            int
	preserveComments bool
}

// Option configures a Lexer at construction time.
type Option func(*Lexer)

// WithPreserveComments makes the lexer emit each `-- ...` comment line as
// a COMMENT token instead of silently skipping it.
func WithPreserveComments(preserve bool) Option {
	return func(l *Lexer) { l.preserveComments = preserve }
}

// New creates a Lexer over input, stripping a leading UTF-8 BOM if present.
func New(input string, opts ...Option) *Lexer {
	if strings.HasPrefix(input, "\xEF\xBB\xBF") {
		input = strings.TrimPrefix(input, "\xEF\xBB\xBF")
	}
	l := &Lexer{input: input, line: 1, column: 0}
	for _, opt := range opts {
		opt(l)
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.width = 0
		l.position = l.readPosition
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	if r == utf8.RuneError && w == 1 {
		r = rune(l.input[l.readPosition])
	}
	l.position = l.readPosition
	l.readPosition += w
	l.width = w
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	l.column++
	l.ch = r
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) pos() token.Position {
	return token.Position{Line: l.line, Column: l.column, Offset: l.position}
}

// NextToken scans and returns the next token, advancing the lexer.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.pos()

	switch {
	case l.ch == 0:
		return token.Token{Type: token.EOF, Pos: pos}
	case l.ch == '(':
		l.readChar()
		return token.Token{Type: token.LPAREN, Literal: "(", Pos: pos}
	case l.ch == ')':
		l.readChar()
		return token.Token{Type: token.RPAREN, Literal: ")", Pos: pos}
	case l.ch == '|':
		l.readChar()
		return token.Token{Type: token.PIPE, Literal: "|", Pos: pos}
	case l.ch == ':':
		l.readChar()
		return token.Token{Type: token.COLON, Literal: ":", Pos: pos}
	case l.ch == ',':
		l.readChar()
		return token.Token{Type: token.COMMA, Literal: ",", Pos: pos}
	case l.ch == '+':
		l.readChar()
		return token.Token{Type: token.PLUS, Literal: "+", Pos: pos}
	case l.ch == '*':
		l.readChar()
		return token.Token{Type: token.STAR, Literal: "*", Pos: pos}
	case l.ch == '/':
		l.readChar()
		return token.Token{Type: token.SLASH, Literal: "/", Pos: pos}
	case l.preserveComments && l.ch == '-' && l.peekChar() == '-':
		return token.Token{Type: token.COMMENT, Literal: l.RawComment(), Pos: pos}
	case l.ch == '-':
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.ARROW, Literal: "->", Pos: pos}
		}
		l.readChar()
		return token.Token{Type: token.MINUS, Literal: "-", Pos: pos}
	case l.ch == '=':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.EQ, Literal: "==", Pos: pos}
		}
		l.readChar()
		return token.Token{Type: token.ASSIGN, Literal: "=", Pos: pos}
	case l.ch == '&':
		if l.peekChar() == '&' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.AND, Literal: "&&", Pos: pos}
		}
		l.readChar()
		return token.Token{Type: token.ILLEGAL, Literal: "&", Pos: pos}
	case l.ch == 0x2192: // '→'
		l.readChar()
		return token.Token{Type: token.ARROW, Literal: "→", Pos: pos}
	case isDigit(l.ch):
		return l.readNumber(pos)
	case isIdentStart(l.ch):
		return l.readIdentifier(pos)
	default:
		ch := l.ch
		l.readChar()
		return token.Token{Type: token.ILLEGAL, Literal: string(ch), Pos: pos}
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for unicode.IsSpace(l.ch) {
			l.readChar()
		}
		if l.ch == '-' && l.peekChar() == '-' {
			if l.preserveComments {
				return
			}
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		return
	}
}

func (l *Lexer) readNumber(pos token.Position) token.Token {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return token.Token{Type: token.NUM, Literal: l.input[start:l.position], Pos: pos}
}

func (l *Lexer) readIdentifier(pos token.Position) token.Token {
	start := l.position
	for isIdentStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.position]
	if kw, ok := token.Keywords[lit]; ok {
		return token.Token{Type: kw, Literal: lit, Pos: pos}
	}
	return token.Token{Type: token.IDENT, Literal: lit, Pos: pos}
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

// RawComment reads a full `-- ...` comment line verbatim, including the
// leading `--`. Only meaningful when the lexer was built with
// WithPreserveComments(true); NextToken uses it for COMMENT tokens.
func (l *Lexer) RawComment() string {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}
	if !(l.ch == '-' && l.peekChar() == '-') {
		return ""
	}
	start := l.position
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	return l.input[start:l.position]
}
