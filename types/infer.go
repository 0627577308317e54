package types

import (
	"github.com/samber/lo"
)

// Inference is the outcome of a successful diamond inference
type Inference struct {
	Target Type
	Decl   DeclID
	// Result has Decl applied to one inferred argument per type parameter, and Result <: Target
	Result *Nominal
	// Unique is false when a bounded choice was made, or when several branches
	// found a solution: other arguments may satisfy Target as well
	Unique bool
	// Steps is the number of reductions performed, across all branches
	Steps int
	// Branches is the number of branches forked while solving
	Branches int
}

// InferDiamond returns decl applied to arguments such that the result is a subtype of target,
// like the diamond in 'Target t = new Decl<>()'.
// Failures are tyerr.NewUnsatisfiableConstraint, tyerr.NewInferenceIncomplete, or
// tyerr.NewInternalRunaway if inference does not converge within Options.MaxSteps
func (e *Env) InferDiamond(target Type, decl DeclID) (*Nominal, error) {
	inference, err := e.Infer(target, decl)
	if err != nil {
		return nil, err
	}
	return inference.Result, nil
}

// Infer is InferDiamond, also reporting whether the inferred arguments are the only solution
func (e *Env) Infer(target Type, decl DeclID) (inference *Inference, err error) {
	defer recoverAbort(&err)

	params := e.params(decl)
	seed := &Nominal{decl: decl, args: lo.Map(params, func(p *DeclaredVar, _ int) TypeArg { return p })}

	s := e.newSolver(params)
	s.add(nil, seed, target, subOf)
	s.solve()
	if !s.found {
		solverLogger.Debug("inference failed", "target", target, "decl", decl, "error", s.err)
		return nil, s.err
	}

	result := &Nominal{decl: decl}
	if len(s.solutions) > 0 {
		result.args = lo.Map(s.solutions, func(t Type, _ int) TypeArg { return t })
	}
	inference = &Inference{
		Target:   target,
		Decl:     decl,
		Result:   result,
		Unique:   !s.ambiguous,
		Steps:    s.budget.steps,
		Branches: s.budget.branches,
	}
	solverLogger.Debug("inferred", "target", target, "result", result, "unique", inference.Unique)
	return inference, nil
}
