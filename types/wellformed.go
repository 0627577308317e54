package types

import (
	"github.com/cottand/nomtype/util"
	"github.com/hashicorp/go-set/v3"
)

// AssertWellFormed returns a tyerr.NewMalformedType error describing the first
// violation found in t:
//   - a Nominal whose argument count does not match its declaration
//   - an argument outside the bound of its type parameter
//   - a primitive used as a type argument
//   - a captured var whose lower bound is not a subtype of its upper bound
//   - a type parameter bounded, directly or through other parameters, by itself
func (e *Env) AssertWellFormed(t Type) (err error) {
	defer recoverAbort(&err)
	return e.wellFormed(t)
}

func (e *Env) wellFormed(t Type) error {
	switch t := t.(type) {
	case *Intersection:
		for _, member := range t.members {
			if err := e.wellFormed(member); err != nil {
				return err
			}
		}
	case *Array:
		return e.wellFormed(t.elem)
	case *CapturedVar:
		if !e.isSubtype(t.lower, t.upper) {
			return malformed(t, "lower bound %s is not a subtype of upper bound %s", t.lower, t.upper)
		}
	case *Nominal:
		return e.wellFormedNominal(t)
	}
	return nil
}

func (e *Env) wellFormedNominal(n *Nominal) error {
	params := e.params(n.decl)
	for _, param := range params {
		if HasCyclicBound(param) {
			return malformed(n, "type variable %s has a cyclic bound", param.name)
		}
	}
	if len(n.args) == 0 {
		return nil
	}
	if len(n.args) != len(params) {
		return malformed(n, "%s expects %d type arguments, got %d", n.decl, len(params), len(n.args))
	}
	for _, arg := range n.args {
		var err error
		switch arg := arg.(type) {
		case Primitive:
			return malformed(n, "primitive type %s cannot be a type argument", arg)
		case *Wildcard:
			if err = e.wellFormed(arg.upper); err == nil {
				err = e.wellFormed(arg.lower)
			}
		case Type:
			err = e.wellFormed(arg)
		}
		if err != nil {
			return err
		}
	}

	captured := e.captureConvert(n)
	s := e.bindings(captured)
	for i, param := range params {
		arg := captured.args[i].(Type)
		if arg == n.args[i] {
			if !e.isSubtype(arg, Substitute(param.upper, s)) {
				return malformed(n, "type argument %s is not within bounds of type variable %s", arg, param.name)
			}
			continue
		}
		v := arg.(*CapturedVar)
		if !e.isSubtype(v.lower, v.upper) {
			return malformed(n, "type argument %s is not within bounds of type variable %s", n.args[i], param.name)
		}
	}
	return nil
}

// HasCyclicBound reports whether v reaches itself by following upper bounds
// that are type variables or intersections of them
func HasCyclicBound(v *DeclaredVar) bool {
	visited := set.New[varKey](4)
	var stack util.Stack[Type]
	stack.Push(v.upper)
	for {
		t, ok := stack.Pop()
		if !ok {
			return false
		}
		switch t := t.(type) {
		case *Intersection:
			stack.Push(t.members...)
		case *DeclaredVar:
			if t.key() == v.key() {
				return true
			}
			if visited.Insert(t.key()) {
				stack.Push(t.upper)
			}
		}
	}
}
