package types

import (
	"slices"

	"github.com/cottand/nomtype/tyerr"
)

type relation int8

const (
	subOf   relation = -1
	equalTo relation = 0
	superOf relation = 1
)

func (r relation) String() string {
	switch r {
	case subOf:
		return "<:"
	case superOf:
		return ":>"
	default:
		return "="
	}
}

// constraint is lhs rel rhs. parent is the constraint this one was reduced from,
// nil for the constraints inference starts from
type constraint struct {
	parent   *constraint
	lhs, rhs Type
	rel      relation
}

func (c *constraint) reverse() *constraint {
	return &constraint{parent: c.parent, lhs: c.rhs, rhs: c.lhs, rel: -c.rel}
}

func (c *constraint) String() string {
	return c.lhs.String() + " " + c.rel.String() + " " + c.rhs.String()
}

// chain lists the constraints c was reduced from, closest first
func (c *constraint) chain() []string {
	var chain []string
	for p := c.parent; p != nil; p = p.parent {
		chain = append(chain, p.String())
	}
	return chain
}

func unsatisfiable(c *constraint) error {
	return tyerr.New(tyerr.NewUnsatisfiableConstraint{Constraint: c.String(), Chain: c.chain()})
}

// varBounds collects the constraints 'v rel X' on one variable being solved for.
// X is never an intersection, but may mention other variables being solved for
type varBounds struct {
	v                   *DeclaredVar
	upper, equal, lower []*constraint

	// solution is set once v is solved. closed is set once the constraints
	// of v have been checked against its solution, after which the buckets are discarded
	solution Type
	closed   bool
}

// file adds c, whose lhs must be v, to the matching bucket
func (b *varBounds) file(c *constraint) error {
	if c.rhs == Bottom {
		if c.rel == superOf {
			return nil
		}
		// Null is never accepted as a solution
		return unsatisfiable(c)
	}
	switch c.rel {
	case subOf:
		b.upper = append(b.upper, c)
	case equalTo:
		b.equal = append(b.equal, c)
	default:
		b.lower = append(b.lower, c)
	}
	return nil
}

func (b *varBounds) clone() *varBounds {
	return &varBounds{
		v:        b.v,
		upper:    slices.Clone(b.upper),
		equal:    slices.Clone(b.equal),
		lower:    slices.Clone(b.lower),
		solution: b.solution,
		closed:   b.closed,
	}
}

// take empties the buckets of b and returns their constraints
func (b *varBounds) take() []*constraint {
	all := slices.Concat(b.upper, b.equal, b.lower)
	b.upper, b.equal, b.lower = nil, nil, nil
	return all
}
