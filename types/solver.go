package types

import (
	"slices"
	"strconv"

	"github.com/cottand/nomtype/internal/log"
	"github.com/cottand/nomtype/tyerr"
	"github.com/samber/lo"
)

var solverLogger = log.DefaultLogger.With("section", "solver")

// budget is shared by a solver and all of its branches
type budget struct {
	steps, max int
	branches   int
}

// solver reduces constraints until every variable being solved for has a solution.
//
// When a reduction is a disjunction, the solver stops and forks one branch per
// disjunct; each branch is a full copy of the solver state plus that disjunct
type solver struct {
	env     *Env
	name    string
	vars    []*varBounds
	pending []*constraint
	budget  *budget

	branches []*solver

	// found and ambiguous are the outcome of solve:
	//  - found, !ambiguous: there is exactly one solution
	//  - found, ambiguous: a solution was found but there may be others
	//  - !found: err says why
	found     bool
	ambiguous bool
	solutions []Type
	err       error
}

func (e *Env) newSolver(vars []*DeclaredVar) *solver {
	s := &solver{
		env:    e,
		budget: &budget{max: e.opts.MaxSteps},
		vars: lo.Map(vars, func(v *DeclaredVar, _ int) *varBounds {
			return &varBounds{v: v}
		}),
	}
	for _, v := range vars {
		s.add(nil, v, v.Upper(), subOf)
		s.add(nil, v, v.Lower(), superOf)
	}
	return s
}

func (s *solver) add(parent *constraint, lhs, rhs Type, rel relation) {
	c := &constraint{parent: parent, lhs: lhs, rhs: rhs, rel: rel}
	s.pending = append(s.pending, c)
	solverLogger.Debug("adding constraint", "branch", s.name, "constraint", c)
}

// fork starts a branch where the disjunct 'lhs rel rhs' holds on top of
// everything s knows so far
func (s *solver) fork(parent *constraint, lhs, rhs Type, rel relation) {
	branch := &solver{
		env:     s.env,
		name:    s.name + "." + strconv.Itoa(len(s.branches)+1),
		budget:  s.budget,
		pending: slices.Clone(s.pending),
		vars: lo.Map(s.vars, func(b *varBounds, _ int) *varBounds {
			return b.clone()
		}),
	}
	s.budget.branches++
	s.branches = append(s.branches, branch)
	solverLogger.Debug("forking", "branch", branch.name, "from", parent)
	branch.add(parent, lhs, rhs, rel)
}

// lookup returns the bounds of t if t is one of the variables being solved for
func (s *solver) lookup(t Type) *varBounds {
	v, ok := t.(*DeclaredVar)
	if !ok {
		return nil
	}
	for _, b := range s.vars {
		if b.v == v || b.v.key() == v.key() {
			return b
		}
	}
	return nil
}

func (s *solver) containsVar(t Type) bool {
	switch t := t.(type) {
	case *DeclaredVar:
		return s.lookup(t) != nil
	case *Intersection:
		return lo.SomeBy(t.members, s.containsVar)
	case *Array:
		return s.containsVar(t.elem)
	case *Nominal:
		return lo.SomeBy(t.args, func(arg TypeArg) bool {
			if w, ok := arg.(*Wildcard); ok {
				return s.containsVar(w.upper) || s.containsVar(w.lower)
			}
			return s.containsVar(arg.(Type))
		})
	}
	return false
}

func (s *solver) solve() {
	if err := s.run(); err != nil {
		s.err = err
		solverLogger.Debug("branch failed", "branch", s.name, "error", err)
		return
	}
	if s.branches != nil {
		s.solveBranches()
		return
	}

	var unsolved []string
	s.solutions = make([]Type, len(s.vars))
	for i, b := range s.vars {
		s.solutions[i] = b.solution
		if b.solution == nil {
			unsolved = append(unsolved, b.v.Name())
		}
	}
	if len(unsolved) == 0 {
		s.found = true
		return
	}
	s.err = tyerr.New(tyerr.NewInferenceIncomplete{Unsolved: unsolved})
}

func (s *solver) solveBranches() {
	var failures *tyerr.Errors
	for _, branch := range s.branches {
		branch.solve()
		if tyerr.CodeOf(branch.err) == tyerr.Runaway {
			s.err = branch.err
			return
		}
		if branch.found {
			if !s.found {
				s.found = true
				s.solutions = branch.solutions
			} else {
				s.ambiguous = true
			}
		} else if typeErr, ok := branch.err.(tyerr.TypeError); ok {
			failures = failures.With(typeErr)
		}
		if branch.ambiguous {
			s.ambiguous = true
		}
		if s.found && s.ambiguous && !s.env.opts.Exhaustive {
			break
		}
	}
	if s.found {
		return
	}
	solverLogger.Debug("no branch succeeded", "branch", s.name, "failures", failures)
	s.err = pickFailure(failures)
}

// pickFailure reports a branch that lacked information over one that found a contradiction,
// so that the failure of a disjunction is only unsatisfiable if all of its branches are
func pickFailure(failures *tyerr.Errors) error {
	if !failures.HasError() {
		return tyerr.New(tyerr.NewInferenceIncomplete{})
	}
	errs := failures.Errors()
	if incomplete, ok := lo.Find(errs, func(err tyerr.TypeError) bool {
		return err.Code() == tyerr.Incomplete
	}); ok {
		return incomplete
	}
	return errs[0]
}

func (s *solver) run() error {
	choseBounded := false
	for {
		for len(s.pending) > 0 {
			if err := s.step(); err != nil {
				return err
			}
			c := s.pending[0]
			s.pending = s.pending[1:]
			if err := s.reduce(c); err != nil {
				return err
			}
			if s.branches != nil {
				// kept for diagnostics, the branches carry on from here
				s.pending = slices.Insert(s.pending, 0, c)
				return nil
			}
		}

		for s.checkSolved() > 0 {
			s.substituteSolved()
		}
		if len(s.pending) > 0 {
			continue
		}

		chosen, err := s.boundedChoices()
		if err != nil {
			return err
		}
		if chosen > 0 {
			choseBounded = true
			continue
		}
		break
	}
	if choseBounded {
		s.ambiguous = true
	}
	return nil
}

func (s *solver) step() error {
	s.budget.steps++
	if s.budget.steps <= s.budget.max {
		return nil
	}
	trace := lo.Map(s.pending[:min(len(s.pending), 8)], func(c *constraint, _ int) string {
		return c.String()
	})
	return tyerr.New(tyerr.NewInternalRunaway{Steps: s.budget.max, Trace: trace})
}

// checkSolved promotes to solution every equality whose right side does not mention
// an unsolved variable, and returns how many variables are solved but not yet closed
func (s *solver) checkSolved() int {
	solved := 0
	for _, b := range s.vars {
		if b.closed {
			continue
		}
		if b.solution == nil {
			for i, eq := range b.equal {
				if s.containsVar(eq.rhs) {
					continue
				}
				b.solution = eq.rhs
				b.equal = slices.Delete(b.equal, i, i+1)
				solverLogger.Debug("solved", "branch", s.name, "var", b.v.Name(), "solution", b.solution)
				break
			}
		}
		if b.solution != nil {
			solved++
		}
	}
	return solved
}

// substituteSolved applies every solution found to the remaining bounds, and closes the
// newly solved variables by queueing their bounds back as constraints on the solution
func (s *solver) substituteSolved() {
	var solutions Substitution
	for _, b := range s.vars {
		if b.solution != nil {
			solutions.Set(b.v, b.solution)
		}
	}

	for _, b := range s.vars {
		if b.closed {
			continue
		}
		substituteAll(b.upper, solutions)
		substituteAll(b.equal, solutions)
		substituteAll(b.lower, solutions)
		if b.solution != nil {
			s.pending = append(s.pending, b.take()...)
			b.closed = true
		}
	}
}

func substituteAll(constraints []*constraint, s Substitution) {
	for i, c := range constraints {
		lhs, rhs := Substitute(c.lhs, s), Substitute(c.rhs, s)
		if lhs == c.lhs && rhs == c.rhs {
			continue
		}
		constraints[i] = &constraint{parent: c, lhs: lhs, rhs: rhs, rel: c.rel}
	}
}

// closedSolutions replaces variables that were already closed in c. Their constraints
// were discarded, so they are never filed again
func (s *solver) closedSolutions(c *constraint) *constraint {
	var solutions Substitution
	for _, b := range s.vars {
		if b.closed {
			solutions.Set(b.v, b.solution)
		}
	}
	lhs, rhs := Substitute(c.lhs, solutions), Substitute(c.rhs, solutions)
	if lhs == c.lhs && rhs == c.rhs {
		return c
	}
	return &constraint{parent: c, lhs: lhs, rhs: rhs, rel: c.rel}
}

func (s *solver) boundedChoices() (int, error) {
	chosen := 0
	for _, b := range s.vars {
		ok, err := s.boundedChoice(b)
		if err != nil {
			return chosen, err
		}
		if ok {
			chosen++
		}
	}
	return chosen, nil
}

// boundedChoice picks one of the bounds of b as its solution: the first lower bound
// within all other bounds, else the first such upper bound. It gives up on bounds
// mentioning unsolved variables, so it can miss solutions
func (s *solver) boundedChoice(b *varBounds) (bool, error) {
	if b.closed || b.solution != nil {
		return false, nil
	}
	if len(b.lower) == 0 && len(b.upper) == 0 {
		return false, nil
	}
	if slices.ContainsFunc(b.upper, s.mentionsVar) || slices.ContainsFunc(b.lower, s.mentionsVar) {
		return false, nil
	}

	for _, lower := range b.lower {
		for _, upper := range b.upper {
			if !s.env.isSubtype(lower.rhs, upper.rhs) {
				return false, unsatisfiable(&constraint{parent: lower, lhs: lower.rhs, rhs: upper.rhs, rel: subOf})
			}
		}
	}

	var chosen Type
	for _, candidate := range slices.Concat(b.lower, b.upper) {
		if s.withinBounds(candidate.rhs, b) {
			chosen = candidate.rhs
			break
		}
	}
	if chosen == nil {
		return false, nil
	}

	solverLogger.Debug("bounded choice", "branch", s.name, "var", b.v.Name(), "solution", chosen)
	b.solution = chosen
	b.upper, b.lower = nil, nil
	return true, nil
}

func (s *solver) mentionsVar(c *constraint) bool {
	return s.containsVar(c.rhs)
}

func (s *solver) withinBounds(t Type, b *varBounds) bool {
	for _, upper := range b.upper {
		if !s.env.isSubtype(t, upper.rhs) {
			return false
		}
	}
	for _, lower := range b.lower {
		if !s.env.isSubtype(lower.rhs, t) {
			return false
		}
	}
	return true
}
