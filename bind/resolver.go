package bind

import (
	"slices"
	"strings"
	"sync/atomic"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/nomtype/types"
)

// Match is the outcome of resolving a query
type Match struct {
	Binding Binding
	// Type is the concrete type Binding produces for the query
	Type *types.Nominal
}

type query struct {
	typ  *types.Nominal
	tags string
}

type queryHasher struct{}

func (queryHasher) Hash(q query) uint32 {
	h := q.typ.Hash() ^ uint64(declHasher{}.Hash(types.DeclID(q.tags)))
	return uint32(h ^ h>>32)
}

func (queryHasher) Equal(a, b query) bool {
	return a.tags == b.tags && types.Equal(a.typ, b.typ)
}

// resolverState pairs bindings with the lookups cached for them, so that a
// lookup computed against outdated bindings is never cached
type resolverState struct {
	list  *List
	cache *immutable.Map[query, Match]
}

// Resolver finds the binding for a query type: the most recently added one that matches.
// Successful lookups are cached until a binding applying to the same declaration is added.
// It is safe for concurrent use and never locks
type Resolver struct {
	env   *types.Env
	state atomic.Pointer[resolverState]
}

func NewResolver(env *types.Env) *Resolver {
	r := &Resolver{env: env}
	r.state.Store(&resolverState{list: NewList(), cache: immutable.NewMap[query, Match](queryHasher{})})
	return r
}

// Add makes b the preferred binding for the queries it matches
func (r *Resolver) Add(b Binding) {
	for {
		current := r.state.Load()
		next := &resolverState{list: current.list.Add(b), cache: evict(current.cache, b.Applicable())}
		if r.state.CompareAndSwap(current, next) {
			logger.Debug("added binding", "binding", b)
			return
		}
	}
}

func evict(cache *immutable.Map[query, Match], applicable []types.DeclID) *immutable.Map[query, Match] {
	if cache.Len() == 0 {
		return cache
	}
	if applicable == nil {
		return immutable.NewMap[query, Match](queryHasher{})
	}
	itr := cache.Iterator()
	for !itr.Done() {
		q, _, _ := itr.Next()
		if slices.Contains(applicable, q.typ.Decl()) {
			cache = cache.Delete(q)
		}
	}
	return cache
}

// Bindings returns a snapshot of the bindings of r
func (r *Resolver) Bindings() *List {
	return r.state.Load().list
}

// Resolve returns the match of the most recently added binding matching typ and tags
func (r *Resolver) Resolve(typ *types.Nominal, tags ...string) (Match, bool, error) {
	q := query{typ: typ, tags: strings.Join(tags, "\x00")}
	state := r.state.Load()
	if m, ok := state.cache.Get(q); ok {
		return m, true, nil
	}

	var found Match
	bindings := state.list.For(typ.Decl())
	for i := bindings.Len() - 1; i >= 0; i-- {
		b := bindings.Get(i)
		produced, err := b.Match(r.env, typ, tags)
		if err != nil {
			return Match{}, false, err
		}
		if produced != nil {
			found = Match{Binding: b, Type: produced}
			break
		}
	}
	if found.Binding == nil {
		return Match{}, false, nil
	}

	for {
		current := r.state.Load()
		if current.list != state.list {
			// bindings changed while resolving
			break
		}
		if _, ok := current.cache.Get(q); ok {
			break
		}
		next := &resolverState{list: current.list, cache: current.cache.Set(q, found)}
		if r.state.CompareAndSwap(current, next) {
			break
		}
	}
	return found, true, nil
}

// ResolveAll returns the matches of every binding matching typ and tags, oldest first
func (r *Resolver) ResolveAll(typ *types.Nominal, tags ...string) ([]Match, error) {
	var matches []Match
	bindings := r.Bindings().For(typ.Decl())
	itr := bindings.Iterator()
	for !itr.Done() {
		_, b := itr.Next()
		produced, err := b.Match(r.env, typ, tags)
		if err != nil {
			return nil, err
		}
		if produced != nil {
			matches = append(matches, Match{Binding: b, Type: produced})
		}
	}
	return matches, nil
}
