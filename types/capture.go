package types

import (
	"github.com/cottand/nomtype/internal/log"
)

var captureLogger = log.DefaultLogger.With("section", "capture")

// CaptureConvert replaces every wildcard argument of n with a fresh CapturedVar.
// n is returned unchanged if it has no wildcard argument
func (e *Env) CaptureConvert(n *Nominal) (captured *Nominal, err error) {
	defer recoverAbort(&err)
	return e.captureConvert(n), nil
}

func (e *Env) captureConvert(n *Nominal) *Nominal {
	if !n.HasWildcard() {
		return n
	}
	params := e.params(n.decl)
	if len(params) != len(n.args) {
		fail(malformed(n, "%s expects %d type arguments, got %d", n.decl, len(params), len(n.args)))
	}

	wildcards := 0
	for _, arg := range n.args {
		if _, ok := arg.(*Wildcard); ok {
			wildcards++
		}
	}

	// the bounds of captured vars can mention each other, so every var is
	// allocated before any bound is set
	arena := make([]CapturedVar, wildcards)
	args := make([]TypeArg, len(n.args))
	var s Substitution
	next := 0
	for i, arg := range n.args {
		if _, ok := arg.(*Wildcard); ok {
			v := &arena[next]
			next++
			v.id = captureIDs.Add(1)
			args[i] = v
		} else {
			args[i] = arg
		}
		s.Set(params[i], args[i].(Type))
	}

	for i, arg := range n.args {
		w, ok := arg.(*Wildcard)
		if !ok {
			continue
		}
		v := args[i].(*CapturedVar)
		v.lower = w.lower
		v.upper = glb(w.upper, Substitute(params[i].upper, s))
	}

	captured := &Nominal{decl: n.decl, args: args}
	captureLogger.Debug("captured", "from", n, "to", captured)
	return captured
}

// glb combines two upper bounds
func glb(a, b Type) Type {
	if isTop(a) {
		return b
	}
	if isTop(b) {
		return a
	}
	return NewIntersection(a, b)
}
