package typeexpr

import "fmt"

type TokenType int

const (
	EOF TokenType = iota
	Illegal
	Ident
	LessThan
	GreaterThan
	Comma
	Period
	QuestionMark
	And
	LeftBracket
	RightBracket
	LeftParen
	RightParen
)

var tokenNames = map[TokenType]string{
	EOF:          "end of input",
	Illegal:      "illegal character",
	Ident:        "identifier",
	LessThan:     "'<'",
	GreaterThan:  "'>'",
	Comma:        "','",
	Period:       "'.'",
	QuestionMark: "'?'",
	And:          "'&'",
	LeftBracket:  "'['",
	RightBracket: "']'",
	LeftParen:    "'('",
	RightParen:   "')'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

type Token struct {
	Type TokenType
	// Offset of the first byte of the token in the input
	Offset int
	Data   string
}

func (t Token) String() string {
	if t.Type == Ident || t.Type == Illegal {
		return fmt.Sprintf("%s %q", t.Type, t.Data)
	}
	return t.Type.String()
}
