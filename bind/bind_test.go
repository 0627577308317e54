package bind_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cottand/nomtype/bind"
	"github.com/cottand/nomtype/tyerr"
	"github.com/cottand/nomtype/typeexpr"
	"github.com/cottand/nomtype/types"
	"github.com/cottand/nomtype/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv(t *testing.T, opts ...types.Option) (*types.Env, func(string) *types.Nominal) {
	t.Helper()
	registry := universe.Builtins()
	require.NoError(t, registry.Declare(
		universe.Def{Name: "Box", Params: []universe.ParamDef{{Name: "E"}}},
		universe.Def{
			Name:    "NumBox",
			Params:  []universe.ParamDef{{Name: "N", Bound: "Number"}},
			Extends: []string{"Box<N>"},
		},
	))
	parse := func(expr string) *types.Nominal {
		t.Helper()
		n, err := typeexpr.ParseNominal(expr, registry)
		require.NoError(t, err)
		return n
	}
	return types.NewEnv(registry, opts...), parse
}

// counting matches queries of decl, producing the query itself
type counting struct {
	decl  types.DeclID
	calls atomic.Int32
}

func (c *counting) String() string             { return "counting(" + string(c.decl) + ")" }
func (c *counting) Applicable() []types.DeclID { return []types.DeclID{c.decl} }
func (c *counting) Match(_ *types.Env, query *types.Nominal, _ []string) (*types.Nominal, error) {
	c.calls.Add(1)
	return query, nil
}

func TestImplWithArguments(t *testing.T) {
	env, parse := testEnv(t)
	b, err := bind.Impl(env, parse("List<String>"), "ArrayList")
	require.NoError(t, err)
	assert.Equal(t, []types.DeclID{"List"}, b.Applicable())

	produced, err := b.Match(env, parse("List<? extends CharSequence>"), nil)
	require.NoError(t, err)
	assert.Equal(t, "ArrayList<String>", produced.String())

	produced, err = b.Match(env, parse("List<Integer>"), nil)
	require.NoError(t, err)
	assert.Nil(t, produced)
}

func TestImplViaInference(t *testing.T) {
	env, parse := testEnv(t)
	b, err := bind.Impl(env, types.Raw("Box"), "NumBox")
	require.NoError(t, err)

	produced, err := b.Match(env, parse("Box<Integer>"), nil)
	require.NoError(t, err)
	assert.Equal(t, "NumBox<Integer>", produced.String())

	produced, err = b.Match(env, parse("Box<? extends Number>"), nil)
	require.NoError(t, err)
	assert.Equal(t, "NumBox<Number>", produced.String())

	produced, err = b.Match(env, parse("Box<String>"), nil)
	require.NoError(t, err)
	assert.Nil(t, produced, "an unsatisfiable inference means the binding does not apply")
}

func TestImplOfNonGenericDeclaration(t *testing.T) {
	env, parse := testEnv(t)
	b, err := bind.Impl(env, types.Raw("Comparable"), "Integer")
	require.NoError(t, err)

	produced, err := b.Match(env, parse("Comparable<Integer>"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Integer", produced.String())

	produced, err = b.Match(env, parse("Comparable<String>"), nil)
	require.NoError(t, err)
	assert.Nil(t, produced)
}

func TestImplErrors(t *testing.T) {
	env, parse := testEnv(t)

	_, err := bind.Impl(env, types.Raw("List"), "HashMap")
	assert.ErrorContains(t, err, "HashMap is not a subtype of List")

	_, err = bind.Impl(env, types.Raw("List"), "LinkedList")
	assert.Equal(t, tyerr.SourceFailure, tyerr.CodeOf(err))

	_, err = bind.Impl(env, parse("Box<String>"), "NumBox")
	assert.ErrorContains(t, err, "binding Box<String> to NumBox")
}

func TestHardFailuresPropagate(t *testing.T) {
	env, parse := testEnv(t, types.WithMaxSteps(1))
	b, err := bind.Impl(env, types.Raw("List"), "ArrayList")
	require.NoError(t, err)

	_, err = b.Match(env, parse("List<String>"), nil)
	require.Error(t, err)
	assert.Equal(t, tyerr.Runaway, tyerr.CodeOf(err))
	assert.ErrorContains(t, err, "matching List<String>")
}

func TestInstance(t *testing.T) {
	env, parse := testEnv(t)
	b := bind.Instance(parse("ArrayList<String>"), "primary")
	assert.Nil(t, b.Applicable())

	for query, matches := range map[string]bool{
		"ArrayList<String>":                  true,
		"List<String>":                       true,
		"Collection<? extends CharSequence>": true,
		"List<Integer>":                      false,
		"Set<String>":                        false,
	} {
		produced, err := b.Match(env, parse(query), []string{"primary"})
		require.NoError(t, err)
		if matches {
			assert.Equal(t, "ArrayList<String>", produced.String(), query)
		} else {
			assert.Nil(t, produced, query)
		}
	}

	produced, err := b.Match(env, parse("List<String>"), nil)
	require.NoError(t, err)
	assert.Nil(t, produced, "tags must match exactly")
}

func TestListSnapshots(t *testing.T) {
	env, parse := testEnv(t)
	list := bind.NewList()
	impl, err := bind.Impl(env, types.Raw("List"), "ArrayList")
	require.NoError(t, err)
	instance := bind.Instance(parse("HashSet<String>"))

	withImpl := list.Add(impl)
	withBoth := withImpl.Add(instance)

	assert.Equal(t, 0, list.Len())
	assert.Equal(t, 1, withImpl.Len())
	assert.Equal(t, 2, withBoth.Len())
	assert.Equal(t, []bind.Binding{impl, instance}, withBoth.All())

	assert.Equal(t, 1, withImpl.For("List").Len())
	assert.Equal(t, 0, withImpl.For("Set").Len())
	assert.Equal(t, 2, withBoth.For("List").Len(), "wild bindings apply to every declaration")
	assert.Equal(t, 1, withBoth.For("Set").Len())

	// bindings for a new declaration keep the wild bindings added before them
	another := withBoth.Add(&counting{decl: "Map"})
	assert.Equal(t, 2, another.For("Map").Len())
	assert.Equal(t, instance, another.For("Map").Get(0))
}

func TestResolvePrefersNewest(t *testing.T) {
	env, parse := testEnv(t)
	r := bind.NewResolver(env)

	instance := bind.Instance(parse("ArrayList<String>"))
	r.Add(instance)
	m, ok, err := r.Resolve(parse("List<String>"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, instance, m.Binding)

	_, ok, err = r.Resolve(parse("List<Integer>"))
	require.NoError(t, err)
	assert.False(t, ok)

	impl, err := bind.Impl(env, types.Raw("List"), "ArrayList")
	require.NoError(t, err)
	r.Add(impl)

	m, ok, err = r.Resolve(parse("List<String>"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, impl, m.Binding)
	assert.Equal(t, "ArrayList<String>", m.Type.String())

	m, ok, err = r.Resolve(parse("List<Integer>"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ArrayList<Integer>", m.Type.String())

	all, err := r.ResolveAll(parse("List<String>"))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, instance, all[0].Binding)
	assert.Equal(t, impl, all[1].Binding)
}

func TestResolveFallsBackOnSoftFailures(t *testing.T) {
	env, parse := testEnv(t)
	r := bind.NewResolver(env)

	strings := bind.Instance(parse("Box<String>"))
	numbers, err := bind.Impl(env, types.Raw("Box"), "NumBox")
	require.NoError(t, err)
	r.Add(strings)
	r.Add(numbers)

	m, ok, err := r.Resolve(parse("Box<String>"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, strings, m.Binding)

	m, ok, err = r.Resolve(parse("Box<Integer>"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, numbers, m.Binding)
}

func TestResolveCaches(t *testing.T) {
	env, parse := testEnv(t)
	r := bind.NewResolver(env)
	lists := &counting{decl: "List"}
	r.Add(lists)

	query := parse("List<String>")
	for range 3 {
		_, ok, err := r.Resolve(parse("List<String>"))
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.EqualValues(t, 1, lists.calls.Load())

	_, _, err := r.Resolve(query, "other")
	require.NoError(t, err)
	assert.EqualValues(t, 2, lists.calls.Load(), "tags are part of the query")

	r.Add(&counting{decl: "Set"})
	_, _, err = r.Resolve(query)
	require.NoError(t, err)
	assert.EqualValues(t, 2, lists.calls.Load(), "unrelated bindings keep the cache")

	newer := &counting{decl: "List"}
	r.Add(newer)
	m, _, err := r.Resolve(query)
	require.NoError(t, err)
	assert.Equal(t, newer, m.Binding)
	assert.EqualValues(t, 1, newer.calls.Load())

	r.Add(bind.Instance(parse("HashSet<String>")))
	_, _, err = r.Resolve(query)
	require.NoError(t, err)
	assert.EqualValues(t, 2, newer.calls.Load(), "wild bindings clear the cache")
}

func TestConcurrentResolver(t *testing.T) {
	env, parse := testEnv(t)
	r := bind.NewResolver(env)
	impl, err := bind.Impl(env, types.Raw("List"), "ArrayList")
	require.NoError(t, err)
	r.Add(impl)
	query := parse("List<Integer>")

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				r.Add(&counting{decl: "Set"})
				return
			}
			m, ok, err := r.Resolve(query)
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "ArrayList<Integer>", m.Type.String())
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, r.Bindings().Len())
}
