package bind

import (
	"hash/fnv"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/nomtype/types"
)

type declHasher struct{}

func (declHasher) Hash(id types.DeclID) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return h.Sum32()
}

func (declHasher) Equal(a, b types.DeclID) bool { return a == b }

// List holds bindings in the order they were added, indexed by the declarations they apply to.
// A List is immutable: Add returns a new List sharing most of its structure, so
// any List can be used as a snapshot
type List struct {
	all    *immutable.List[Binding]
	byDecl *immutable.Map[types.DeclID, *immutable.List[Binding]]
	// wild holds the bindings applying to any declaration
	wild *immutable.List[Binding]
}

func NewList() *List {
	return &List{
		all:    immutable.NewList[Binding](),
		byDecl: immutable.NewMap[types.DeclID, *immutable.List[Binding]](declHasher{}),
		wild:   immutable.NewList[Binding](),
	}
}

func (l *List) Add(b Binding) *List {
	next := &List{
		all:    l.all.Append(b),
		byDecl: l.byDecl,
		wild:   l.wild,
	}
	applicable := b.Applicable()
	if applicable == nil {
		next.wild = l.wild.Append(b)
		itr := l.byDecl.Iterator()
		for !itr.Done() {
			decl, bindings, _ := itr.Next()
			next.byDecl = next.byDecl.Set(decl, bindings.Append(b))
		}
		return next
	}
	for _, decl := range applicable {
		bindings, ok := next.byDecl.Get(decl)
		if !ok {
			// the wild bindings were added before b, so they come first
			bindings = l.wild
		}
		next.byDecl = next.byDecl.Set(decl, bindings.Append(b))
	}
	return next
}

// For returns the bindings that may apply to queries of decl, oldest first
func (l *List) For(decl types.DeclID) *immutable.List[Binding] {
	if bindings, ok := l.byDecl.Get(decl); ok {
		return bindings
	}
	return l.wild
}

func (l *List) Len() int { return l.all.Len() }

// All returns every binding, oldest first
func (l *List) All() []Binding {
	all := make([]Binding, 0, l.all.Len())
	itr := l.all.Iterator()
	for !itr.Done() {
		_, b := itr.Next()
		all = append(all, b)
	}
	return all
}
