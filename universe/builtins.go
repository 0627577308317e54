package universe

var builtinDefs = []Def{
	{Name: "Object"},
	{Name: "Cloneable"},
	{Name: "Serializable"},
	{Name: "Comparable", Params: []ParamDef{{Name: "T"}}},
	{Name: "CharSequence"},
	{Name: "Number", Extends: []string{"Serializable"}},
	{Name: "Integer", Extends: []string{"Number", "Comparable<Integer>"}},
	{Name: "Long", Extends: []string{"Number", "Comparable<Long>"}},
	{Name: "Double", Extends: []string{"Number", "Comparable<Double>"}},
	{Name: "String", Extends: []string{"Serializable", "CharSequence", "Comparable<String>"}},
	{Name: "Iterable", Params: []ParamDef{{Name: "T"}}},
	{Name: "Collection", Params: []ParamDef{{Name: "E"}}, Extends: []string{"Iterable<E>"}},
	{Name: "List", Params: []ParamDef{{Name: "E"}}, Extends: []string{"Collection<E>"}},
	{Name: "ArrayList", Params: []ParamDef{{Name: "E"}}, Extends: []string{"List<E>", "Cloneable", "Serializable"}},
	{Name: "Set", Params: []ParamDef{{Name: "E"}}, Extends: []string{"Collection<E>"}},
	{Name: "HashSet", Params: []ParamDef{{Name: "E"}}, Extends: []string{"Set<E>", "Cloneable", "Serializable"}},
	{Name: "Map", Params: []ParamDef{{Name: "K"}, {Name: "V"}}},
	{Name: "HashMap", Params: []ParamDef{{Name: "K"}, {Name: "V"}}, Extends: []string{"Map<K, V>", "Cloneable", "Serializable"}},
}

// Builtins returns a new Registry declaring a small standard library:
// Object, Cloneable, Serializable, Comparable<T>, CharSequence, Number, Integer, Long,
// Double, String, Iterable<T>, Collection<E>, List<E>, ArrayList<E>, Set<E>, HashSet<E>,
// Map<K, V> and HashMap<K, V>
func Builtins() *Registry {
	return New().MustDeclare(builtinDefs...)
}
