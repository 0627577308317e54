package universe_test

import (
	"strings"
	"testing"

	"github.com/cottand/nomtype/tyerr"
	"github.com/cottand/nomtype/types"
	"github.com/cottand/nomtype/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins(t *testing.T) {
	r := universe.Builtins()
	assert.True(t, r.Has("ArrayList"))
	assert.False(t, r.Has("LinkedList"))
	assert.Contains(t, r.Decls(), types.DeclID("Object"))

	params, err := r.TypeParams("HashMap")
	require.NoError(t, err)
	require.Len(t, params, 2)
	assert.Equal(t, "K", params[0].Name())
	assert.Equal(t, types.DeclID("HashMap"), params[0].Decl())

	supers, err := r.Supertypes("HashMap")
	require.NoError(t, err)
	assert.Equal(t, "Map<K, V>", supers[0].String())

	_, err = r.TypeParams("LinkedList")
	assert.ErrorContains(t, err, "no declaration named LinkedList")
}

func TestDeclareInAnyOrder(t *testing.T) {
	r := universe.Builtins()
	require.NoError(t, r.Declare(
		universe.Def{Name: "Sub", Extends: []string{"Base<Sub>"}},
		universe.Def{Name: "Base", Params: []universe.ParamDef{{Name: "T", Bound: "Base<T>"}}},
	))

	params, err := r.TypeParams("Base")
	require.NoError(t, err)
	bound := params[0].Upper().(*types.Nominal)
	assert.Equal(t, "Base<T>", bound.String())
	assert.Same(t, params[0], bound.Args()[0], "the bound of T mentions T itself")

	ok, err := types.NewEnv(r).IsSubtype(types.Raw("Sub"), types.NewNominal("Base", types.Raw("Sub")))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeclareRejects(t *testing.T) {
	tests := map[string]struct {
		defs    []universe.Def
		message string
	}{
		"existing": {
			defs:    []universe.Def{{Name: "String"}},
			message: "declaration String already exists",
		},
		"twice": {
			defs:    []universe.Def{{Name: "A"}, {Name: "A"}},
			message: "declaration A is defined twice",
		},
		"nameless": {
			defs:    []universe.Def{{}},
			message: "declaration without a name",
		},
		"self extension": {
			defs:    []universe.Def{{Name: "A", Params: []universe.ParamDef{{Name: "T"}}, Extends: []string{"A<T>"}}},
			message: "a declaration cannot extend itself",
		},
		"wildcard supertype": {
			defs:    []universe.Def{{Name: "A", Extends: []string{"List<?>"}}},
			message: "a supertype cannot have wildcard arguments",
		},
		"unknown supertype": {
			defs:    []universe.Def{{Name: "A", Extends: []string{"Missing"}}},
			message: "unknown type Missing",
		},
		"unknown bound": {
			defs:    []universe.Def{{Name: "A", Params: []universe.ParamDef{{Name: "T", Bound: "U"}}}},
			message: "bound of T in A",
		},
		"cyclic bounds": {
			defs: []universe.Def{{Name: "A", Params: []universe.ParamDef{
				{Name: "S", Bound: "Number"}, {Name: "T", Bound: "U"}, {Name: "U", Bound: "T"},
			}}},
			message: "cyclic bound for type variable T in A",
		},
		"self bound": {
			defs:    []universe.Def{{Name: "A", Params: []universe.ParamDef{{Name: "T", Bound: "T"}}}},
			message: "cyclic bound for type variable T in A",
		},
		"array supertype": {
			defs:    []universe.Def{{Name: "A", Extends: []string{"String[]"}}},
			message: "not a declared type",
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			r := universe.Builtins()
			before := r.Decls()
			err := r.Declare(append(test.defs, universe.Def{Name: "Unrelated"})...)
			require.Error(t, err)
			assert.ErrorContains(t, err, test.message)
			assert.Equal(t, before, r.Decls(), "nothing is declared on failure")
		})
	}
}

func TestMalformedSupertypesAreTypeErrors(t *testing.T) {
	err := universe.New().Declare(universe.Def{Name: "A", Extends: []string{"A"}})
	assert.Equal(t, tyerr.Malformed, tyerr.CodeOf(err))
}

func TestMustDeclare(t *testing.T) {
	assert.Panics(t, func() {
		universe.Builtins().MustDeclare(universe.Def{Name: "Object"})
	})
}

func TestAncestors(t *testing.T) {
	r := universe.Builtins()

	ancestors, err := r.Ancestors("ArrayList")
	require.NoError(t, err)
	assert.Equal(t, []types.DeclID{"Cloneable", "Collection", "Iterable", "List", "Object", "Serializable"}, ancestors)

	ancestors, err = r.Ancestors("Integer")
	require.NoError(t, err)
	assert.Equal(t, []types.DeclID{"Comparable", "Number", "Object", "Serializable"}, ancestors)

	ancestors, err = r.Ancestors("Object")
	require.NoError(t, err)
	assert.Empty(t, ancestors)

	_, err = r.Ancestors("Missing")
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	r := universe.Builtins()
	require.NoError(t, r.LoadFile("testdata/boxes.yaml"))
	assert.True(t, r.Has("NumBox"))

	params, err := r.TypeParams("Node")
	require.NoError(t, err)
	assert.Equal(t, "Node<T>", params[0].Upper().String())

	supers, err := r.Supertypes("NumBox")
	require.NoError(t, err)
	assert.Equal(t, "Box<N>", supers[0].String())

	err = r.LoadFile("testdata/boxes.yaml")
	assert.ErrorContains(t, err, "already exists")

	err = r.LoadFile("testdata/missing.yaml")
	assert.ErrorContains(t, err, "opening universe")
}

func TestReadYAML(t *testing.T) {
	defs, err := universe.ReadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, defs)

	defs, err = universe.ReadYAML(strings.NewReader("declarations:\n  - name: A\n    extends: [B]\n"))
	require.NoError(t, err)
	assert.Equal(t, []universe.Def{{Name: "A", Extends: []string{"B"}}}, defs)

	_, err = universe.ReadYAML(strings.NewReader("declarations:\n  - name: A\n    implements: [B]\n"))
	assert.ErrorContains(t, err, "field implements not found")
}
