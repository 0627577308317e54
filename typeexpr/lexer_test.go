package typeexpr

import (
	"testing"

	"github.com/kr/pretty"
	"github.com/stretchr/testify/assert"
)

func TestTokens(t *testing.T) {
	toks := Tokens("Map<? extends java.lang.Number, int[]> & Ünïcode")
	expected := []Token{
		{Type: Ident, Offset: 0, Data: "Map"},
		{Type: LessThan, Offset: 3},
		{Type: QuestionMark, Offset: 4},
		{Type: Ident, Offset: 6, Data: "extends"},
		{Type: Ident, Offset: 14, Data: "java"},
		{Type: Period, Offset: 18},
		{Type: Ident, Offset: 19, Data: "lang"},
		{Type: Period, Offset: 23},
		{Type: Ident, Offset: 24, Data: "Number"},
		{Type: Comma, Offset: 30},
		{Type: Ident, Offset: 32, Data: "int"},
		{Type: LeftBracket, Offset: 35},
		{Type: RightBracket, Offset: 36},
		{Type: GreaterThan, Offset: 37},
		{Type: And, Offset: 39},
		{Type: Ident, Offset: 41, Data: "Ünïcode"},
		{Type: EOF, Offset: 50},
	}
	if !assert.Equal(t, expected, toks) {
		pretty.Ldiff(t, expected, toks)
	}
}

func TestNestedCloseIsTwoTokens(t *testing.T) {
	toks := Tokens("A<B<C>>")
	var types []TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{Ident, LessThan, Ident, LessThan, Ident, GreaterThan, GreaterThan, EOF}, types)
}

func TestIllegal(t *testing.T) {
	l := NewLexer("  $x")
	tok := l.Next()
	assert.Equal(t, Token{Type: Illegal, Offset: 2, Data: "$"}, tok)
	assert.Equal(t, Token{Type: Ident, Offset: 3, Data: "x"}, l.Next())
	assert.Equal(t, EOF, l.Next().Type)
	assert.Equal(t, EOF, l.Next().Type)
}
