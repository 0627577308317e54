package types

import (
	"fmt"
	"hash/fnv"
	"slices"
	"strconv"
	"sync/atomic"

	"github.com/cottand/nomtype/util"
	"github.com/samber/lo"
)

// TypeArg is anything that can be supplied as an argument of a Nominal:
// every Type, plus *Wildcard
type TypeArg interface {
	fmt.Stringer
	// Hash is structural, except for *CapturedVar which hashes its identity
	Hash() uint64
	isTypeArg()
}

// Type is the closed set of type shapes: Primitive, *Nominal, *Array,
// *DeclaredVar, *CapturedVar, *Intersection and Bottom.
//
// Values are immutable once built and safe to share between goroutines.
type Type interface {
	TypeArg
	isType()
}

// Var is a type variable, either declared by a generic declaration or
// produced by capture conversion
type Var interface {
	Type
	Name() string
	Upper() Type
	Lower() Type
	key() varKey
}

var (
	_ Type = Primitive(0)
	_ Type = (*Nominal)(nil)
	_ Type = (*Array)(nil)
	_ Type = (*Intersection)(nil)
	_ Type = nullType{}

	_ Var = (*DeclaredVar)(nil)
	_ Var = (*CapturedVar)(nil)

	_ TypeArg = (*Wildcard)(nil)
)

// tags distinguishing variants when hashing
const (
	tagPrimitive byte = iota + 1
	tagNominal
	tagWildcard
	tagArray
	tagDeclaredVar
	tagCapturedVar
	tagIntersection
	tagBottom
)

// memoHash returns the hash stored in slot, computing and storing it first if needed.
// Two goroutines racing here store the same value.
func memoHash(slot *atomic.Uint64, compute func() uint64) uint64 {
	if h := slot.Load(); h != 0 {
		return h
	}
	h := compute()
	if h == 0 {
		h = 1
	}
	slot.Store(h)
	return h
}

func hashOf(tag byte, parts ...string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte{tag})
	for _, part := range parts {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

// Primitive is a fixed value kind. Primitives are not references: they only
// relate to themselves and may appear as array components
type Primitive uint8

const (
	Boolean Primitive = iota + 1
	Byte
	Char
	Short
	Int
	Long
	Float
	Double
)

var primitiveNames = map[Primitive]string{
	Boolean: "boolean",
	Byte:    "byte",
	Char:    "char",
	Short:   "short",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
}

// PrimitiveNamed returns the Primitive spelled name, like "int"
func PrimitiveNamed(name string) (Primitive, bool) {
	return lo.FindKey(primitiveNames, name)
}

func (p Primitive) String() string {
	if name, ok := primitiveNames[p]; ok {
		return name
	}
	return "primitive(" + strconv.Itoa(int(p)) + ")"
}
func (p Primitive) Hash() uint64 { return hashOf(tagPrimitive, p.String()) }
func (Primitive) isTypeArg()     {}
func (Primitive) isType()        {}

type nullType struct{}

// Bottom is the type of null, a subtype of every type
var Bottom Type = nullType{}

func (nullType) String() string { return "Null" }
func (nullType) Hash() uint64   { return hashOf(tagBottom) }
func (nullType) isTypeArg()     {}
func (nullType) isType()        {}

// DeclID identifies a declaration, as understood by a Source
type DeclID string

func (id DeclID) String() string { return string(id) }

// ObjectDecl is the universal top declaration. Every declaration without
// listed supertypes implicitly extends it
const ObjectDecl DeclID = "Object"

// Nominal is a declaration applied to type arguments.
// Its argument list is either empty (non-generic, or raw) or exactly as
// long as the declaration's parameter list
type Nominal struct {
	decl DeclID
	args []TypeArg
	hash atomic.Uint64
}

var object = &Nominal{decl: ObjectDecl}

// Object returns the universal top Nominal
func Object() *Nominal { return object }

func NewNominal(decl DeclID, args ...TypeArg) *Nominal {
	if len(args) == 0 {
		return &Nominal{decl: decl}
	}
	return &Nominal{decl: decl, args: slices.Clone(args)}
}

// Raw returns the Nominal of decl without any argument
func Raw(decl DeclID) *Nominal {
	if decl == ObjectDecl {
		return object
	}
	return &Nominal{decl: decl}
}

func (n *Nominal) Decl() DeclID { return n.decl }

// Args returns the type arguments of n. The returned slice must not be modified
func (n *Nominal) Args() []TypeArg { return n.args }

func (n *Nominal) HasWildcard() bool {
	return lo.ContainsBy(n.args, func(arg TypeArg) bool {
		_, ok := arg.(*Wildcard)
		return ok
	})
}

func (n *Nominal) String() string {
	if len(n.args) == 0 {
		return string(n.decl)
	}
	return fmt.Sprintf("%s<%s>", n.decl, util.JoinString(n.args, ", "))
}

func (n *Nominal) Hash() uint64 {
	return memoHash(&n.hash, func() uint64 {
		hash := hashOf(tagNominal, string(n.decl))
		for _, arg := range n.args {
			hash = hash*31 + arg.Hash()
		}
		return hash
	})
}
func (*Nominal) isTypeArg() {}
func (*Nominal) isType()    {}

// Wildcard is a type argument denoting some unknown type between Lower and Upper
type Wildcard struct {
	upper, lower Type
	hash         atomic.Uint64
}

func NewWildcard(upper, lower Type) *Wildcard {
	if upper == nil {
		upper = object
	}
	if lower == nil {
		lower = Bottom
	}
	return &Wildcard{upper: upper, lower: lower}
}

// Extends returns '? extends upper'
func Extends(upper Type) *Wildcard { return NewWildcard(upper, Bottom) }

// Super returns '? super lower'
func Super(lower Type) *Wildcard { return NewWildcard(object, lower) }

// Unbounded returns '?'
func Unbounded() *Wildcard { return NewWildcard(object, Bottom) }

func (w *Wildcard) Upper() Type { return w.upper }
func (w *Wildcard) Lower() Type { return w.lower }

func (w *Wildcard) String() string {
	hasUpper := !Equal(w.upper, object)
	hasLower := w.lower != Bottom
	switch {
	case hasUpper && hasLower:
		return "? extends " + w.upper.String() + " super " + w.lower.String()
	case hasUpper:
		return "? extends " + w.upper.String()
	case hasLower:
		return "? super " + w.lower.String()
	default:
		return "?"
	}
}

func (w *Wildcard) Hash() uint64 {
	return memoHash(&w.hash, func() uint64 {
		return (hashOf(tagWildcard)*31+w.upper.Hash())*31 + w.lower.Hash()
	})
}
func (*Wildcard) isTypeArg() {}

// Array of elem, which may be a Primitive
type Array struct {
	elem Type
	hash atomic.Uint64
}

func NewArray(elem Type) *Array { return &Array{elem: elem} }

func (a *Array) Elem() Type { return a.elem }

func (a *Array) String() string {
	if _, ok := a.elem.(*Intersection); ok {
		return "(" + a.elem.String() + ")[]"
	}
	return a.elem.String() + "[]"
}

func (a *Array) Hash() uint64 {
	return memoHash(&a.hash, func() uint64 {
		return hashOf(tagArray)*31 + a.elem.Hash()
	})
}
func (*Array) isTypeArg() {}
func (*Array) isType()    {}

// Intersection of its members. Members are never themselves intersections,
// and an Intersection without members is the universal top type
type Intersection struct {
	members []Type
	hash    atomic.Uint64
}

var top = &Intersection{}

// Top returns the empty intersection
func Top() *Intersection { return top }

// NewIntersection flattens any nested intersection among members. Members are
// kept in order and never de-duplicated
func NewIntersection(members ...Type) *Intersection {
	flat := make([]Type, 0, len(members))
	for _, m := range members {
		if inner, ok := m.(*Intersection); ok {
			flat = append(flat, inner.members...)
		} else {
			flat = append(flat, m)
		}
	}
	if len(flat) == 0 {
		return top
	}
	return &Intersection{members: flat}
}

// Members returns the members of i. The returned slice must not be modified
func (i *Intersection) Members() []Type { return i.members }

func (i *Intersection) String() string {
	if len(i.members) == 0 {
		return "(top)"
	}
	return util.JoinString(i.members, " & ")
}

func (i *Intersection) Hash() uint64 {
	return memoHash(&i.hash, func() uint64 {
		hash := hashOf(tagIntersection)
		for _, m := range i.members {
			hash = hash*31 + m.Hash()
		}
		return hash
	})
}
func (*Intersection) isTypeArg() {}
func (*Intersection) isType()    {}

// varKey identifies a type variable: declared vars by their declaration and name,
// captured vars by their id
type varKey struct {
	decl DeclID
	name string
	id   uint64
}

// DeclaredVar is a type parameter of a generic declaration. Its lower bound is always Bottom
type DeclaredVar struct {
	decl  DeclID
	name  string
	upper Type
}

// NewDeclaredVar returns the parameter name of decl, bounded by Object.
// Use SetUpper before sharing it to give it a different bound
func NewDeclaredVar(decl DeclID, name string) *DeclaredVar {
	return &DeclaredVar{decl: decl, name: name, upper: object}
}

// SetUpper sets the declared bound of v. The bound may mention v itself, as in
// 'T extends Comparable<T>', so it can only be set once v exists
func (v *DeclaredVar) SetUpper(upper Type) *DeclaredVar {
	v.upper = upper
	return v
}

func (v *DeclaredVar) Decl() DeclID   { return v.decl }
func (v *DeclaredVar) Name() string   { return v.name }
func (v *DeclaredVar) Upper() Type    { return v.upper }
func (v *DeclaredVar) Lower() Type    { return Bottom }
func (v *DeclaredVar) String() string { return v.name }
func (v *DeclaredVar) key() varKey    { return varKey{decl: v.decl, name: v.name} }
func (v *DeclaredVar) Hash() uint64   { return hashOf(tagDeclaredVar, string(v.decl), v.name) }
func (*DeclaredVar) isTypeArg()       {}
func (*DeclaredVar) isType()          {}

// CapturedVar stands for the unknown type of one wildcard during capture conversion.
// Two captured vars are equal only if they are the same var
type CapturedVar struct {
	id           uint64
	upper, lower Type
}

var captureIDs atomic.Uint64

func (v *CapturedVar) ID() uint64     { return v.id }
func (v *CapturedVar) Name() string   { return "Cap#" + strconv.FormatUint(v.id, 10) }
func (v *CapturedVar) Upper() Type    { return v.upper }
func (v *CapturedVar) Lower() Type    { return v.lower }
func (v *CapturedVar) String() string { return v.Name() }
func (v *CapturedVar) key() varKey    { return varKey{id: v.id} }
func (v *CapturedVar) Hash() uint64 {
	return hashOf(tagCapturedVar, strconv.FormatUint(v.id, 10))
}
func (*CapturedVar) isTypeArg() {}
func (*CapturedVar) isType()    {}

// Equal is structural equality, except for captured vars which are only equal to themselves.
// Intersections are compared member by member, in order
func Equal(a, b TypeArg) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Hash() != b.Hash() {
		return false
	}
	switch a := a.(type) {
	case *Nominal:
		b, ok := b.(*Nominal)
		return ok && a.decl == b.decl && slices.EqualFunc(a.args, b.args, Equal)
	case *Wildcard:
		b, ok := b.(*Wildcard)
		return ok && Equal(a.upper, b.upper) && Equal(a.lower, b.lower)
	case *Array:
		b, ok := b.(*Array)
		return ok && Equal(a.elem, b.elem)
	case *Intersection:
		b, ok := b.(*Intersection)
		return ok && slices.EqualFunc(a.members, b.members, equalTypes)
	case *DeclaredVar:
		b, ok := b.(*DeclaredVar)
		return ok && a.key() == b.key()
	default:
		// primitives and Bottom compare by value, captured vars by identity
		return false
	}
}

func equalTypes(a, b Type) bool { return Equal(a, b) }

// isTop reports whether t is Object or the empty intersection
func isTop(t Type) bool {
	switch t := t.(type) {
	case *Nominal:
		return t.decl == ObjectDecl && len(t.args) == 0
	case *Intersection:
		return len(t.members) == 0
	}
	return false
}

func asVar(t Type) (Var, bool) {
	v, ok := t.(Var)
	return v, ok
}
