package types

import (
	"github.com/cottand/nomtype/internal/log"
	"github.com/samber/lo"
)

var subtypeLogger = log.DefaultLogger.With("section", "subtype")

// IsSubtype reports whether a <: b.
// The error is only non-nil when e's Source fails or the input is malformed
func (e *Env) IsSubtype(a, b Type) (ok bool, err error) {
	defer recoverAbort(&err)
	ok = e.isSubtype(a, b)
	subtypeLogger.Debug("checked subtype", "a", a, "b", b, "result", ok)
	return ok, nil
}

// IsEquivalent reports whether a and b are structurally equal or subtypes of each other
func (e *Env) IsEquivalent(a, b Type) (ok bool, err error) {
	defer recoverAbort(&err)
	return e.isEquivalent(a, b), nil
}

func (e *Env) isEquivalent(a, b Type) bool {
	return Equal(a, b) || e.isSubtype(a, b) && e.isSubtype(b, a)
}

func (e *Env) isSubtype(a, b Type) bool {
	return e.subtype(a, b, nil)
}

// boundChain records the variables whose bounds the current check descended through.
// Bounds may form cycles, so a variable met twice on the same side yields false
type boundChain struct {
	key   varKey
	lower bool
	next  *boundChain
}

func (c *boundChain) has(key varKey, lower bool) bool {
	for ; c != nil; c = c.next {
		if c.key == key && c.lower == lower {
			return true
		}
	}
	return false
}

func (e *Env) subtype(a, b Type, seen *boundChain) bool {
	if a == Bottom {
		return true
	}
	if a == b {
		return true
	}

	aNominal, aIsNominal := a.(*Nominal)
	bNominal, bIsNominal := b.(*Nominal)
	if aIsNominal && bIsNominal {
		return e.isNominalSubtype(aNominal, bNominal)
	}

	if bInter, ok := b.(*Intersection); ok {
		return lo.EveryBy(bInter.members, func(member Type) bool {
			return e.subtype(a, member, seen)
		})
	}

	bVar, bIsVar := asVar(b)
	toLower := func() bool {
		if !bIsVar || seen.has(bVar.key(), true) {
			return false
		}
		return e.subtype(a, bVar.Lower(), &boundChain{key: bVar.key(), lower: true, next: seen})
	}
	if aInter, ok := a.(*Intersection); ok {
		if len(aInter.members) == 0 {
			return e.subtype(object, b, seen)
		}
		if lo.SomeBy(aInter.members, func(member Type) bool { return e.subtype(member, b, seen) }) {
			return true
		}
		return toLower()
	}

	if aVar, ok := asVar(a); ok {
		if Equal(a, b) {
			return true
		}
		if !seen.has(aVar.key(), false) &&
			e.subtype(aVar.Upper(), b, &boundChain{key: aVar.key(), next: seen}) {
			return true
		}
		return toLower()
	}
	if bIsVar {
		return toLower()
	}

	if aArray, ok := a.(*Array); ok {
		switch b := b.(type) {
		case *Array:
			return e.isArraySubtype(aArray, b)
		case *Nominal:
			return e.isArraySupertype(b)
		}
		return false
	}

	// primitives only relate to themselves
	return Equal(a, b)
}

func (e *Env) isArraySubtype(a, b *Array) bool {
	_, aPrimitive := a.elem.(Primitive)
	_, bPrimitive := b.elem.(Primitive)
	if aPrimitive || bPrimitive {
		return a.elem == b.elem
	}
	return e.isSubtype(a.elem, b.elem)
}

func (e *Env) isNominalSubtype(a, b *Nominal) bool {
	if !e.isAncestor(a.decl, b.decl) {
		return false
	}
	if len(b.args) == 0 {
		// b is raw or not generic
		return true
	}
	if e.isRaw(a) {
		// the supertypes of raw types are raw
		return false
	}
	atB := e.supertypeAt(e.captureConvert(a), b.decl)
	if atB == nil || len(atB.args) != len(b.args) {
		return false
	}
	for i, arg := range atB.args {
		if !e.contains(b.args[i], arg) {
			return false
		}
	}
	return true
}

// contains reports whether the argument of a supertype is contained by outer
func (e *Env) contains(outer, arg TypeArg) bool {
	argWildcard, argIsWildcard := arg.(*Wildcard)
	switch outer := outer.(type) {
	case *Wildcard:
		if argIsWildcard {
			return e.isSubtype(outer.lower, argWildcard.lower) && e.isSubtype(argWildcard.upper, outer.upper)
		}
		argType := arg.(Type)
		return e.isSubtype(outer.lower, argType) && e.isSubtype(argType, outer.upper)
	case Type:
		if argIsWildcard {
			return false
		}
		return e.isEquivalent(arg.(Type), outer)
	}
	return false
}
