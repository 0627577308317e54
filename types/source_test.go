package types

import (
	"errors"
	"maps"
	"sync"
)

// fakeSource declares:
//
//	Number; Integer extends Number; String
//	Box<E>; NumBox<N extends Number> extends Box<N>
//	Pair<A, B extends A>
//	Cyclic<A extends B, B extends A>
type fakeSource struct {
	params map[DeclID][]*DeclaredVar
	supers map[DeclID][]*Nominal
	broken DeclID

	mu      sync.Mutex
	fetches map[DeclID]int
}

func newFakeSource() *fakeSource {
	s := &fakeSource{
		params:  map[DeclID][]*DeclaredVar{},
		supers:  map[DeclID][]*Nominal{},
		fetches: map[DeclID]int{},
	}
	number := Raw("Number")
	s.declare("Number", nil)
	s.declare("Integer", nil, number)
	s.declare("String", nil)

	e := NewDeclaredVar("Box", "E")
	s.declare("Box", []*DeclaredVar{e})

	n := NewDeclaredVar("NumBox", "N").SetUpper(number)
	s.declare("NumBox", []*DeclaredVar{n}, NewNominal("Box", n))

	a := NewDeclaredVar("Pair", "A")
	b := NewDeclaredVar("Pair", "B")
	b.SetUpper(a)
	s.declare("Pair", []*DeclaredVar{a, b})

	ca := NewDeclaredVar("Cyclic", "A")
	cb := NewDeclaredVar("Cyclic", "B")
	ca.SetUpper(cb)
	cb.SetUpper(ca)
	s.declare("Cyclic", []*DeclaredVar{ca, cb})
	return s
}

func (s *fakeSource) declare(id DeclID, params []*DeclaredVar, supers ...*Nominal) {
	s.params[id] = params
	s.supers[id] = supers
}

func (s *fakeSource) Has(id DeclID) bool {
	_, ok := s.params[id]
	return ok
}

func (s *fakeSource) TypeParams(id DeclID) ([]*DeclaredVar, error) {
	s.mu.Lock()
	s.fetches[id]++
	s.mu.Unlock()
	if id == s.broken {
		return nil, errors.New("source is broken")
	}
	return s.params[id], nil
}

func (s *fakeSource) Supertypes(id DeclID) ([]*Nominal, error) {
	return s.supers[id], nil
}

// fetched returns how many times each declaration was fetched
func (s *fakeSource) fetched() map[DeclID]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.fetches)
}
