package universe

import (
	"slices"
	"sort"
	"sync"

	"github.com/cottand/nomtype/internal/log"
	"github.com/cottand/nomtype/tyerr"
	"github.com/cottand/nomtype/typeexpr"
	"github.com/cottand/nomtype/types"
	"github.com/cottand/nomtype/util"
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
	xset "github.com/xtgo/set"
)

var logger = log.DefaultLogger.With("section", "universe")

// Def describes one declaration
type Def struct {
	Name   string     `yaml:"name"`
	Params []ParamDef `yaml:"params,omitempty"`
	// Extends lists the direct supertypes, written over the declaration's own parameters
	Extends []string `yaml:"extends,omitempty"`
}

type ParamDef struct {
	Name string `yaml:"name"`
	// Bound is the upper bound of the parameter, Object if empty.
	// It may mention any parameter of the same declaration
	Bound string `yaml:"bound,omitempty"`
}

type decl struct {
	params []*types.DeclaredVar
	supers []*types.Nominal
}

// Registry is an in-memory types.Source. It is safe for concurrent use
type Registry struct {
	mu    sync.RWMutex
	decls map[types.DeclID]*decl
}

var _ types.Source = (*Registry)(nil)

func New() *Registry {
	return &Registry{decls: make(map[types.DeclID]*decl)}
}

func (r *Registry) Has(id types.DeclID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.decls[id]
	return ok
}

func (r *Registry) TypeParams(id types.DeclID) ([]*types.DeclaredVar, error) {
	d, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return d.params, nil
}

func (r *Registry) Supertypes(id types.DeclID) ([]*types.Nominal, error) {
	d, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return d.supers, nil
}

func (r *Registry) lookup(id types.DeclID) (*decl, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decls[id]
	if !ok {
		return nil, errors.Errorf("no declaration named %s", id)
	}
	return d, nil
}

// Decls returns the names of every declaration, sorted
func (r *Registry) Decls() []types.DeclID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]types.DeclID, 0, len(r.decls))
	for id := range r.decls {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// pendingResolver sees the declarations being added as well as the existing ones,
// so that definitions can refer to each other
type pendingResolver struct {
	existing map[types.DeclID]*decl
	pending  map[types.DeclID]*decl
}

func (p pendingResolver) Has(id types.DeclID) bool {
	_, existing := p.existing[id]
	_, pending := p.pending[id]
	return existing || pending
}

// Declare adds defs. Every declaration and its parameters are created before any
// bound or supertype is parsed, so defs may refer to each other in any order.
// Either all of defs are added, or none is
func (r *Registry) Declare(defs ...Def) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make(map[types.DeclID]*decl, len(defs))
	for _, def := range defs {
		id := types.DeclID(def.Name)
		if def.Name == "" {
			return errors.New("declaration without a name")
		}
		if _, ok := r.decls[id]; ok {
			return errors.Errorf("declaration %s already exists", id)
		}
		if _, ok := pending[id]; ok {
			return errors.Errorf("declaration %s is defined twice", id)
		}
		params := make([]*types.DeclaredVar, len(def.Params))
		for i, param := range def.Params {
			params[i] = types.NewDeclaredVar(id, param.Name)
		}
		pending[id] = &decl{params: params}
	}

	resolver := pendingResolver{existing: r.decls, pending: pending}
	for _, def := range defs {
		id := types.DeclID(def.Name)
		d := pending[id]
		for i, param := range def.Params {
			if param.Bound == "" {
				continue
			}
			bound, err := typeexpr.Parse(param.Bound, resolver, d.params...)
			if err != nil {
				return errors.Wrapf(err, "bound of %s in %s", param.Name, id)
			}
			d.params[i].SetUpper(bound)
		}
		for _, param := range d.params {
			if types.HasCyclicBound(param) {
				return errors.Errorf("cyclic bound for type variable %s in %s", param.Name(), id)
			}
		}
		for _, super := range def.Extends {
			parent, err := typeexpr.ParseNominal(super, resolver, d.params...)
			if err != nil {
				return errors.Wrapf(err, "supertype of %s", id)
			}
			if parent.Decl() == id {
				return tyerr.New(tyerr.NewMalformedType{Type: super, Detail: "a declaration cannot extend itself"})
			}
			if parent.HasWildcard() {
				return tyerr.New(tyerr.NewMalformedType{Type: super, Detail: "a supertype cannot have wildcard arguments"})
			}
			d.supers = append(d.supers, parent)
		}
	}

	for id, d := range pending {
		r.decls[id] = d
		logger.Debug("declared", "decl", id, "params", len(d.params), "supers", len(d.supers))
	}
	return nil
}

// MustDeclare is like Declare but panics on error
func (r *Registry) MustDeclare(defs ...Def) *Registry {
	if err := r.Declare(defs...); err != nil {
		panic(err)
	}
	return r
}

// Ancestors returns every transitive supertype declaration of id, sorted,
// including the implicit Object
func (r *Registry) Ancestors(id types.DeclID) ([]types.DeclID, error) {
	if _, err := r.lookup(id); err != nil {
		return nil, err
	}
	visited := set.New[types.DeclID](8)
	var found []types.DeclID
	var stack util.Stack[types.DeclID]
	stack.Push(id)
	for stack.Len() > 0 {
		current, _ := stack.Pop()
		if !visited.Insert(current) {
			continue
		}
		supers, err := r.Supertypes(current)
		if err != nil {
			return nil, err
		}
		for _, super := range supers {
			found = append(found, super.Decl())
			stack.Push(super.Decl())
		}
	}
	if id != types.ObjectDecl {
		found = append(found, types.ObjectDecl)
	}

	sorted := declIDs(found)
	sort.Sort(sorted)
	return sorted[:xset.Uniq(sorted)], nil
}

type declIDs []types.DeclID

func (d declIDs) Len() int           { return len(d) }
func (d declIDs) Less(i, j int) bool { return d[i] < d[j] }
func (d declIDs) Swap(i, j int)      { d[i], d[j] = d[j], d[i] }
