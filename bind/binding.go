package bind

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cottand/nomtype/internal/log"
	"github.com/cottand/nomtype/tyerr"
	"github.com/cottand/nomtype/types"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var logger = log.DefaultLogger.With("section", "bind")

// Binding produces values of some types. Values are never built here: a Binding
// only decides which concrete type it would produce for a query
type Binding interface {
	fmt.Stringer
	// Applicable lists the declarations a query must have for Match to succeed.
	// nil means queries of any declaration may match
	Applicable() []types.DeclID
	// Match returns the type produced for query and tags, or nil if the binding does not apply
	Match(env *types.Env, query *types.Nominal, tags []string) (*types.Nominal, error)
}

// single applies to the supertypes of bound, always producing the same type
type single struct {
	kind     string
	bound    *types.Nominal
	produces *types.Nominal
	tags     []string
	// anyDecl is set when queries of other declarations than bound's may match
	anyDecl bool
}

// Instance binds an existing value of type typ, for every query typ is a subtype of
func Instance(typ *types.Nominal, tags ...string) Binding {
	return &single{kind: "instance", bound: typ, produces: typ, tags: tags, anyDecl: true}
}

func (b *single) Applicable() []types.DeclID {
	if b.anyDecl {
		return nil
	}
	return []types.DeclID{b.bound.Decl()}
}

func (b *single) Match(env *types.Env, query *types.Nominal, tags []string) (*types.Nominal, error) {
	if !b.anyDecl && query.Decl() != b.bound.Decl() || !slices.Equal(b.tags, tags) {
		return nil, nil
	}
	ok, err := env.IsSubtype(b.bound, query)
	if err != nil || !ok {
		return nil, err
	}
	return b.produces, nil
}

func (b *single) String() string {
	return fmt.Sprintf("%s(type=%s, produces=%s, tags=[%s])", b.kind, b.bound, b.produces, strings.Join(b.tags, ", "))
}

// viaInference binds queries of iface to impl, inferring impl's arguments per query
type viaInference struct {
	iface types.DeclID
	impl  types.DeclID
	tags  []string
}

func (b *viaInference) Applicable() []types.DeclID { return []types.DeclID{b.iface} }

func (b *viaInference) Match(env *types.Env, query *types.Nominal, tags []string) (*types.Nominal, error) {
	if query.Decl() != b.iface || !slices.Equal(b.tags, tags) {
		return nil, nil
	}
	produced, err := env.InferDiamond(query, b.impl)
	if tyerr.IsSoft(err) {
		logger.Debug("binding does not apply", "binding", b, "query", query, "reason", err)
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "matching %s", query)
	}
	return produced, nil
}

func (b *viaInference) String() string {
	return fmt.Sprintf("impl(%s<> => %s<>, tags=[%s])", b.iface, b.impl, strings.Join(b.tags, ", "))
}

// Impl binds typ to the implementation declaration impl, which must have typ's
// declaration among its ancestors.
//
// When typ has arguments, impl's arguments are inferred once, now. When typ is raw,
// they are inferred for every query, and queries impl cannot satisfy are not matched
func Impl(env *types.Env, typ *types.Nominal, impl types.DeclID, tags ...string) (Binding, error) {
	params, err := env.Params(impl)
	if err != nil {
		return nil, err
	}
	declared := types.NewNominal(impl, lo.Map(params, func(p *types.DeclaredVar, _ int) types.TypeArg { return p })...)
	atIface, err := env.SupertypeAt(declared, typ.Decl())
	if err != nil {
		return nil, err
	}
	if atIface == nil {
		return nil, errors.Errorf("%s is not a subtype of %s", impl, typ.Decl())
	}

	bindSingle := func(bound *types.Nominal) (Binding, error) {
		produced, err := env.InferDiamond(bound, impl)
		if err != nil {
			return nil, errors.Wrapf(err, "binding %s to %s", bound, impl)
		}
		return &single{kind: "impl", bound: bound, produces: produced, tags: tags}, nil
	}

	if len(typ.Args()) > 0 {
		return bindSingle(typ)
	}
	// atIface mentions none of impl's parameters, so every query of typ's declaration
	// is answered by the same arguments
	if len(atIface.Args()) == 0 || len(params) == 0 {
		return bindSingle(atIface)
	}
	return &viaInference{iface: typ.Decl(), impl: impl, tags: tags}, nil
}
