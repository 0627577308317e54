package types

import (
	"strings"
)

// Substitution maps type variables to the types replacing them.
// The zero value is an empty Substitution
type Substitution struct {
	entries map[varKey]substEntry
}

type substEntry struct {
	v  Var
	to Type
}

// Zip maps each of vars to the type at the same index of to
func Zip(vars []*DeclaredVar, to []Type) Substitution {
	var s Substitution
	for i, v := range vars {
		if i >= len(to) {
			break
		}
		s.Set(v, to[i])
	}
	return s
}

func (s *Substitution) Set(v Var, to Type) {
	if s.entries == nil {
		s.entries = make(map[varKey]substEntry)
	}
	s.entries[v.key()] = substEntry{v: v, to: to}
}

func (s Substitution) Lookup(v Var) (Type, bool) {
	entry, ok := s.entries[v.key()]
	return entry.to, ok
}

func (s Substitution) Len() int { return len(s.entries) }

func (s Substitution) String() string {
	sb := strings.Builder{}
	sb.WriteString("[")
	first := true
	for _, entry := range s.entries {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(entry.v.Name())
		sb.WriteString(" := ")
		sb.WriteString(entry.to.String())
	}
	sb.WriteString("]")
	return sb.String()
}

// Substitute replaces the variables of s occurring in t.
// When none occurs, t itself is returned rather than an equal copy
func Substitute(t Type, s Substitution) Type {
	if len(s.entries) == 0 {
		return t
	}
	switch t := t.(type) {
	case *Nominal:
		args, changed := substituteArgs(t.args, s)
		if !changed {
			return t
		}
		return &Nominal{decl: t.decl, args: args}
	case *Array:
		elem := Substitute(t.elem, s)
		if elem == t.elem {
			return t
		}
		return NewArray(elem)
	case *Intersection:
		changed := false
		members := make([]Type, len(t.members))
		for i, m := range t.members {
			members[i] = Substitute(m, s)
			changed = changed || members[i] != m
		}
		if !changed {
			return t
		}
		return NewIntersection(members...)
	case Var:
		if to, ok := s.Lookup(t); ok {
			return to
		}
		return t
	default:
		return t
	}
}

func substituteArg(arg TypeArg, s Substitution) TypeArg {
	switch arg := arg.(type) {
	case *Wildcard:
		upper, lower := Substitute(arg.upper, s), Substitute(arg.lower, s)
		if upper == arg.upper && lower == arg.lower {
			return arg
		}
		return NewWildcard(upper, lower)
	case Type:
		return Substitute(arg, s)
	default:
		return arg
	}
}

func substituteArgs(args []TypeArg, s Substitution) ([]TypeArg, bool) {
	var rewritten []TypeArg
	for i, arg := range args {
		newArg := substituteArg(arg, s)
		if newArg == arg && rewritten == nil {
			continue
		}
		if rewritten == nil {
			rewritten = make([]TypeArg, len(args))
			copy(rewritten, args[:i])
		}
		rewritten[i] = newArg
	}
	if rewritten == nil {
		return args, false
	}
	return rewritten, true
}
