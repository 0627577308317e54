package typeexpr

import (
	"unicode"
	"unicode/utf8"

	"github.com/smasher164/xid"
)

var punctuation = map[rune]TokenType{
	'<': LessThan,
	'>': GreaterThan,
	',': Comma,
	'.': Period,
	'?': QuestionMark,
	'&': And,
	'[': LeftBracket,
	']': RightBracket,
	'(': LeftParen,
	')': RightParen,
}

type Lexer struct {
	input string
	pos   int
	ch    rune
	width int
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.read()
	return l
}

const eof = -1

func (l *Lexer) read() {
	if l.pos >= len(l.input) {
		l.ch, l.width = eof, 0
		return
	}
	l.ch, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
}

func (l *Lexer) next() {
	l.pos += l.width
	l.read()
}

func isLetter(ch rune) bool {
	return ch == '_' || xid.Start(ch)
}

// Next returns the next token, and EOF forever once the input is consumed
func (l *Lexer) Next() Token {
	for unicode.IsSpace(l.ch) {
		l.next()
	}
	start := l.pos
	switch {
	case l.ch == eof:
		return Token{Type: EOF, Offset: start}
	case isLetter(l.ch):
		l.next()
		for l.ch != eof && xid.Continue(l.ch) {
			l.next()
		}
		return Token{Type: Ident, Offset: start, Data: l.input[start:l.pos]}
	}
	if typ, ok := punctuation[l.ch]; ok {
		l.next()
		return Token{Type: typ, Offset: start}
	}
	illegal := string(l.ch)
	l.next()
	return Token{Type: Illegal, Offset: start, Data: illegal}
}

// Tokens lexes all of input, including the final EOF token
func Tokens(input string) []Token {
	l := NewLexer(input)
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}
