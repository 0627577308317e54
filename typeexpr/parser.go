package typeexpr

import (
	"fmt"
	"strings"

	"github.com/cottand/nomtype/tyerr"
	"github.com/cottand/nomtype/types"
)

// Resolver tells which names are declarations. types.Source implements it
type Resolver interface {
	Has(id types.DeclID) bool
}

// Parse reads a type written as
//
//	type  := elem ('&' elem)*
//	elem  := ('Null' | primitive | name ['<' arg (',' arg)* '>'] | '(' type ')') ('[' ']')*
//	arg   := '?' ['extends' type] ['super' type] | type
//	name  := ident ('.' ident)*
//
// A name is first looked up among the type variables in scope, then in r.
// The declaration Object is always known.
// Syntax errors and unknown names are reported as tyerr.NewSyntax
func Parse(input string, r Resolver, scope ...*types.DeclaredVar) (types.Type, error) {
	p := newParser(input, r, scope)
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != EOF {
		return nil, p.errorf(tok, "unexpected %s after type", tok)
	}
	return t, nil
}

// ParseNominal is Parse for types that must be a Nominal
func ParseNominal(input string, r Resolver, scope ...*types.DeclaredVar) (*types.Nominal, error) {
	t, err := Parse(input, r, scope...)
	if err != nil {
		return nil, err
	}
	n, ok := t.(*types.Nominal)
	if !ok {
		return nil, tyerr.New(tyerr.NewSyntax{Input: input, Message: fmt.Sprintf("%s is not a declared type", t)})
	}
	return n, nil
}

// MustParse is like Parse but panics on error
func MustParse(input string, r Resolver, scope ...*types.DeclaredVar) types.Type {
	t, err := Parse(input, r, scope...)
	if err != nil {
		panic(err)
	}
	return t
}

// Format renders t in the syntax Parse reads
func Format(t types.TypeArg) string {
	return t.String()
}

type parser struct {
	input    string
	toks     []Token
	pos      int
	resolver Resolver
	scope    map[string]*types.DeclaredVar
}

func newParser(input string, r Resolver, scope []*types.DeclaredVar) *parser {
	p := &parser{
		input:    input,
		toks:     Tokens(input),
		resolver: r,
		scope:    make(map[string]*types.DeclaredVar, len(scope)),
	}
	for _, v := range scope {
		p.scope[v.Name()] = v
	}
	return p
}

func (p *parser) peek() Token {
	return p.toks[p.pos]
}

func (p *parser) advance() Token {
	tok := p.toks[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != typ {
		return tok, p.errorf(tok, "expected %s, found %s", typ, tok)
	}
	return tok, nil
}

func (p *parser) errorf(at Token, format string, args ...any) error {
	return tyerr.New(tyerr.NewSyntax{Input: p.input, Offset: at.Offset, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) parseType() (types.Type, error) {
	first, err := p.parseElem()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != And {
		return first, nil
	}
	members := []types.Type{first}
	for p.peek().Type == And {
		p.advance()
		next, err := p.parseElem()
		if err != nil {
			return nil, err
		}
		members = append(members, next)
	}
	return types.NewIntersection(members...), nil
}

func (p *parser) parseElem() (t types.Type, err error) {
	tok := p.peek()
	switch tok.Type {
	case LeftParen:
		p.advance()
		if t, err = p.parseType(); err != nil {
			return nil, err
		}
		if _, err = p.expect(RightParen); err != nil {
			return nil, err
		}
	case Ident:
		if t, err = p.parseNamed(); err != nil {
			return nil, err
		}
	default:
		return nil, p.errorf(tok, "expected a type, found %s", tok)
	}

	for p.peek().Type == LeftBracket {
		p.advance()
		if _, err := p.expect(RightBracket); err != nil {
			return nil, err
		}
		t = types.NewArray(t)
	}
	return t, nil
}

func (p *parser) parseNamed() (types.Type, error) {
	start := p.peek()
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	if name == "Null" {
		return types.Bottom, nil
	}
	if prim, ok := types.PrimitiveNamed(name); ok {
		return prim, nil
	}
	if v, ok := p.scope[name]; ok {
		if p.peek().Type == LessThan {
			return nil, p.errorf(p.peek(), "type variable %s cannot have type arguments", name)
		}
		return v, nil
	}

	decl := types.DeclID(name)
	if decl != types.ObjectDecl && (p.resolver == nil || !p.resolver.Has(decl)) {
		return nil, p.errorf(start, "unknown type %s", name)
	}
	if p.peek().Type != LessThan {
		return types.Raw(decl), nil
	}
	p.advance()
	var args []types.TypeArg
	for {
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().Type != Comma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(GreaterThan); err != nil {
		return nil, err
	}
	return types.NewNominal(decl, args...), nil
}

func (p *parser) parseName() (string, error) {
	first, err := p.expect(Ident)
	if err != nil {
		return "", err
	}
	parts := []string{first.Data}
	for p.peek().Type == Period {
		p.advance()
		part, err := p.expect(Ident)
		if err != nil {
			return "", err
		}
		parts = append(parts, part.Data)
	}
	return strings.Join(parts, "."), nil
}

func (p *parser) isKeyword(word string) bool {
	tok := p.peek()
	return tok.Type == Ident && tok.Data == word
}

func (p *parser) parseArg() (types.TypeArg, error) {
	if p.peek().Type != QuestionMark {
		return p.parseType()
	}
	p.advance()
	var upper, lower types.Type
	var err error
	if p.isKeyword("extends") {
		p.advance()
		if upper, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	if p.isKeyword("super") {
		p.advance()
		if lower, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	return types.NewWildcard(upper, lower), nil
}
