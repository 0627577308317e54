package types

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/cottand/nomtype/internal/log"
	"github.com/cottand/nomtype/tyerr"
	"github.com/cottand/nomtype/util"
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
)

var universeLogger = log.DefaultLogger.With("section", "universe")

// Source supplies the declarations types are built from
type Source interface {
	// TypeParams returns the ordered type parameters of id, with their upper bounds set
	TypeParams(id DeclID) ([]*DeclaredVar, error)
	// Supertypes returns the direct parents of id, expressed over id's own type parameters.
	// A declaration without parents implicitly extends Object
	Supertypes(id DeclID) ([]*Nominal, error)
	Has(id DeclID) bool
}

const DefaultMaxSteps = 10_000

type Options struct {
	// MaxSteps bounds the number of constraint reductions of one inference, across all its branches
	MaxSteps int
	// Exhaustive makes inference explore every branch even after ambiguity is known
	Exhaustive bool
	// ArraySupertypes are the non-generic declarations every array is a subtype of
	ArraySupertypes []DeclID
}

func DefaultOptions() Options {
	return Options{
		MaxSteps:        DefaultMaxSteps,
		ArraySupertypes: []DeclID{ObjectDecl, "Cloneable", "Serializable"},
	}
}

type Option func(*Options)

func WithMaxSteps(steps int) Option {
	return func(o *Options) { o.MaxSteps = steps }
}

func WithExhaustive(exhaustive bool) Option {
	return func(o *Options) { o.Exhaustive = exhaustive }
}

func WithArraySupertypes(decls ...DeclID) Option {
	return func(o *Options) { o.ArraySupertypes = decls }
}

// Env answers questions about types built from the declarations of a Source.
// It is safe for concurrent use. Lookups into the Source are memoised for the
// lifetime of the process and shared by every Env over the same Source, so the
// Source must not change what it reports for a declaration once reported
type Env struct {
	source      Source
	opts        Options
	arraySupers *set.Set[DeclID]
	memo        *memo
}

func NewEnv(source Source, opts ...Option) *Env {
	return newEnv(source, memoFor(source), opts)
}

// memos holds the memo of every Source an Env was built over
var memos sync.Map // Source -> *memo

// memoFor returns the memo shared by Envs over source. Sources that cannot
// be map keys get a memo of their own
func memoFor(source Source) *memo {
	if !reflect.TypeOf(source).Comparable() {
		return &memo{}
	}
	actual, _ := memos.LoadOrStore(source, &memo{})
	return actual.(*memo)
}

// With returns an Env with opts applied on top of e's options, sharing e's memo cache
func (e *Env) With(opts ...Option) *Env {
	return newEnv(e.source, e.memo, append([]Option{func(o *Options) { *o = e.opts }}, opts...))
}

func newEnv(source Source, m *memo, opts []Option) *Env {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxSteps <= 0 {
		options.MaxSteps = DefaultMaxSteps
	}
	return &Env{
		source:      source,
		opts:        options,
		arraySupers: set.From(options.ArraySupertypes),
		memo:        m,
	}
}

func (e *Env) Options() Options { return e.opts }
func (e *Env) Source() Source   { return e.source }

// memo holds what was learnt from the Source, keyed by declaration. Entries are
// inserted if absent: two goroutines computing the same entry compute equal values
type memo struct {
	decls sync.Map // DeclID -> *declInfo
	paths sync.Map // util.Pair[DeclID, DeclID] -> pathEntry
}

type declInfo struct {
	params  []*DeclaredVar
	parents []*Nominal
}

// pathEntry is the direct parent of a declaration leading to one of its ancestors,
// nil if the ancestor is not reachable
type pathEntry struct {
	parent *Nominal
}

// abort carries an error out of the recursive algorithms, which are total
// for well-formed input and only fail when the Source does
type abort struct {
	err error
}

func fail(err error) {
	panic(abort{err: err})
}

func recoverAbort(err *error) {
	if r := recover(); r != nil {
		a, ok := r.(abort)
		if !ok {
			panic(r)
		}
		*err = a.err
	}
}

func (e *Env) info(id DeclID) *declInfo {
	if cached, ok := e.memo.decls.Load(id); ok {
		return cached.(*declInfo)
	}
	info := e.fetch(id)
	actual, _ := e.memo.decls.LoadOrStore(id, info)
	return actual.(*declInfo)
}

func (e *Env) fetch(id DeclID) *declInfo {
	if id == ObjectDecl && !e.source.Has(id) {
		return &declInfo{}
	}
	if !e.source.Has(id) {
		fail(tyerr.New(tyerr.NewSourceFailure{Decl: string(id), From: errors.New("unknown declaration")}))
	}
	params, err := e.source.TypeParams(id)
	if err != nil {
		fail(tyerr.New(tyerr.NewSourceFailure{Decl: string(id), From: errors.Wrap(err, "type parameters")}))
	}
	parents, err := e.source.Supertypes(id)
	if err != nil {
		fail(tyerr.New(tyerr.NewSourceFailure{Decl: string(id), From: errors.Wrap(err, "supertypes")}))
	}
	if len(parents) == 0 && id != ObjectDecl {
		parents = []*Nominal{object}
	}
	universeLogger.Debug("loaded declaration", "decl", id, "params", len(params), "parents", len(parents))
	return &declInfo{params: params, parents: parents}
}

func (e *Env) params(id DeclID) []*DeclaredVar {
	return e.info(id).params
}

// Params returns the type parameters of decl
func (e *Env) Params(decl DeclID) (params []*DeclaredVar, err error) {
	defer recoverAbort(&err)
	return e.params(decl), nil
}

// isRaw reports whether n omits the arguments of a generic declaration
func (e *Env) isRaw(n *Nominal) bool {
	return len(n.args) == 0 && len(e.params(n.decl)) > 0
}

// isAncestor reports whether sup is sub or one of its transitive supertypes
func (e *Env) isAncestor(sub, sup DeclID) bool {
	if sub == sup {
		return true
	}
	if sup == ObjectDecl {
		e.info(sub)
		return true
	}
	_, ok := e.parentToward(sub, sup)
	return ok
}

// parentToward returns the direct parent of sub through which ancestor is reached
func (e *Env) parentToward(sub, ancestor DeclID) (*Nominal, bool) {
	key := util.NewPair(sub, ancestor)
	if cached, ok := e.memo.paths.Load(key); ok {
		entry := cached.(pathEntry)
		return entry.parent, entry.parent != nil
	}
	var entry pathEntry
	for _, parent := range e.info(sub).parents {
		if e.reaches(parent.decl, ancestor) {
			entry.parent = parent
			break
		}
	}
	actual, _ := e.memo.paths.LoadOrStore(key, entry)
	entry = actual.(pathEntry)
	return entry.parent, entry.parent != nil
}

// reaches walks the declaration graph from `from`, reporting whether `to` is found.
// Cyclic declarations are tolerated
func (e *Env) reaches(from, to DeclID) bool {
	visited := set.New[DeclID](8)
	var stack util.Stack[DeclID]
	stack.Push(from)
	for {
		decl, ok := stack.Pop()
		if !ok {
			return false
		}
		if decl == to {
			return true
		}
		if !visited.Insert(decl) {
			continue
		}
		for _, parent := range e.info(decl).parents {
			stack.Push(parent.decl)
		}
	}
}

// bindings maps the parameters of n's declaration to n's arguments, which must not be wildcards
func (e *Env) bindings(n *Nominal) Substitution {
	params := e.params(n.decl)
	if len(n.args) != len(params) {
		fail(malformed(n, "%s expects %d type arguments, got %d", n.decl, len(params), len(n.args)))
	}
	var s Substitution
	for i, param := range params {
		arg, ok := n.args[i].(Type)
		if !ok {
			fail(malformed(n, "argument %s must be captured first", n.args[i]))
		}
		s.Set(param, arg)
	}
	return s
}

// supertypeAt returns n's instantiation at the declaration ancestor, or nil if
// ancestor is not an ancestor of n. n must not have wildcard arguments.
// The instantiations of a raw type are raw
func (e *Env) supertypeAt(n *Nominal, ancestor DeclID) *Nominal {
	if ancestor == ObjectDecl {
		e.info(n.decl)
		return object
	}
	for n.decl != ancestor {
		parent, ok := e.parentToward(n.decl, ancestor)
		if !ok {
			return nil
		}
		if len(n.args) == 0 {
			// raw, or a declaration without parameters
			if e.isRaw(n) {
				n = Raw(parent.decl)
				continue
			}
			n = parent
			continue
		}
		n = Substitute(parent, e.bindings(n)).(*Nominal)
	}
	return n
}

// SupertypeAt returns the instantiation of n at the declaration ancestor.
// Wildcard arguments of n are captured first, so the result may mention captured vars.
// The result is nil if ancestor is not an ancestor of n
func (e *Env) SupertypeAt(n *Nominal, ancestor DeclID) (super *Nominal, err error) {
	defer recoverAbort(&err)
	return e.supertypeAt(e.captureConvert(n), ancestor), nil
}

func (e *Env) isArraySupertype(n *Nominal) bool {
	return len(n.args) == 0 && e.arraySupers.Contains(n.decl)
}

func malformed(t TypeArg, format string, args ...any) tyerr.TypeError {
	return tyerr.New(tyerr.NewMalformedType{Type: t.String(), Detail: fmt.Sprintf(format, args...)})
}
