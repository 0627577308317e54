package types_test

import (
	"testing"

	"github.com/cottand/nomtype/typeexpr"
	"github.com/cottand/nomtype/types"
	"github.com/cottand/nomtype/universe"
	"github.com/stretchr/testify/require"
)

// testEnv extends the builtin universe with:
//
//	Box<E>
//	NumBox<N extends Number> extends Box<N>
//	SortedBox<T extends Comparable<T>> extends Box<T>
func testEnv(t *testing.T, opts ...types.Option) (*types.Env, func(string) types.Type) {
	t.Helper()
	registry := universe.Builtins()
	require.NoError(t, registry.Declare(
		universe.Def{Name: "Box", Params: []universe.ParamDef{{Name: "E"}}},
		universe.Def{
			Name:    "NumBox",
			Params:  []universe.ParamDef{{Name: "N", Bound: "Number"}},
			Extends: []string{"Box<N>"},
		},
		universe.Def{
			Name:    "SortedBox",
			Params:  []universe.ParamDef{{Name: "T", Bound: "Comparable<T>"}},
			Extends: []string{"Box<T>"},
		},
	))
	parse := func(expr string) types.Type {
		t.Helper()
		parsed, err := typeexpr.Parse(expr, registry)
		require.NoError(t, err, "parsing %s", expr)
		return parsed
	}
	return types.NewEnv(registry, opts...), parse
}
