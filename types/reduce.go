package types

// reduce breaks c down into smaller constraints, following the cases of isSubtype.
// A constraint between a variable being solved for and anything but an intersection
// is filed against the variable instead
func (s *solver) reduce(c *constraint) error {
	c = s.closedSolutions(c)
	_, lhsIsInter := c.lhs.(*Intersection)
	_, rhsIsInter := c.rhs.(*Intersection)

	if b := s.lookup(c.lhs); b != nil && !rhsIsInter {
		return b.file(c)
	}
	if b := s.lookup(c.rhs); b != nil && !lhsIsInter {
		return b.file(c.reverse())
	}

	switch c.rel {
	case subOf:
		return s.reduceSubtype(c.lhs, c.rhs, c)
	case superOf:
		return s.reduceSubtype(c.rhs, c.lhs, c)
	default:
		return s.reduceEqual(c.lhs, c.rhs, c)
	}
}

func (s *solver) reduceEqual(a, b Type, c *constraint) error {
	aNominal, aIsNominal := a.(*Nominal)
	bNominal, bIsNominal := b.(*Nominal)
	if aIsNominal && bIsNominal {
		if aNominal.decl != bNominal.decl || len(aNominal.args) != len(bNominal.args) {
			return unsatisfiable(c)
		}
		if !aNominal.HasWildcard() && !bNominal.HasWildcard() {
			for i, arg := range aNominal.args {
				s.add(c, arg.(Type), bNominal.args[i].(Type), equalTo)
			}
			return nil
		}
	}
	// both directions are added separately because either may fork
	s.add(c, a, b, subOf)
	s.add(c, a, b, superOf)
	return nil
}

func (s *solver) reduceSubtype(a, b Type, c *constraint) error {
	aNominal, aIsNominal := a.(*Nominal)
	bNominal, bIsNominal := b.(*Nominal)
	if aIsNominal && bIsNominal {
		return s.reduceNominal(aNominal, bNominal, c)
	}
	if a == Bottom {
		return nil
	}

	if bInter, ok := b.(*Intersection); ok {
		for _, member := range bInter.members {
			s.add(c, a, member, subOf)
		}
		return nil
	}

	bVar, bIsVar := asVar(b)
	if aInter, ok := a.(*Intersection); ok {
		if len(aInter.members) == 0 {
			s.add(c, object, b, subOf)
			return nil
		}
		for _, member := range aInter.members {
			s.fork(c, member, b, subOf)
		}
		if bIsVar {
			s.fork(c, a, bVar.Lower(), subOf)
		}
		return nil
	}

	if aVar, ok := asVar(a); ok {
		if !bIsVar {
			s.add(c, aVar.Upper(), b, subOf)
			return nil
		}
		if Equal(a, b) {
			return nil
		}
		s.fork(c, aVar.Upper(), b, subOf)
		s.fork(c, a, bVar.Lower(), subOf)
		return nil
	}
	if bIsVar {
		s.add(c, a, bVar.Lower(), subOf)
		return nil
	}

	if aArray, ok := a.(*Array); ok {
		switch b := b.(type) {
		case *Array:
			return s.reduceArray(aArray, b, c)
		case *Nominal:
			if s.env.isArraySupertype(b) {
				return nil
			}
		}
		return unsatisfiable(c)
	}

	if _, ok := a.(Primitive); ok && a == b {
		return nil
	}
	return unsatisfiable(c)
}

func (s *solver) reduceNominal(a, b *Nominal, c *constraint) error {
	if !s.env.isAncestor(a.decl, b.decl) {
		return unsatisfiable(c)
	}
	if len(b.args) == 0 {
		return nil
	}
	if s.env.isRaw(a) {
		return unsatisfiable(c)
	}

	// a is captured even when it already has b's declaration
	atB := s.env.supertypeAt(s.env.captureConvert(a), b.decl)
	if atB == nil || len(atB.args) != len(b.args) {
		return unsatisfiable(c)
	}
	for i, arg := range atB.args {
		argA, ok := arg.(Type)
		if !ok {
			return unsatisfiable(c)
		}
		switch argB := b.args[i].(type) {
		case *Wildcard:
			s.add(c, argB.lower, argA, subOf)
			s.add(c, argA, argB.upper, subOf)
		case Type:
			s.add(c, argA, argB, equalTo)
		}
	}
	return nil
}

func (s *solver) reduceArray(a, b *Array, c *constraint) error {
	_, aPrimitive := a.elem.(Primitive)
	_, bPrimitive := b.elem.(Primitive)
	if !aPrimitive && !bPrimitive {
		s.add(c, a.elem, b.elem, subOf)
		return nil
	}
	if a.elem == b.elem {
		return nil
	}
	return unsatisfiable(c)
}
