package eval

import (
	"sort"

	"src.dde.sh/pkg/persistent/hashmap"
)

// Env maps names to values. The global Env of an Evaler is mutated in place
// by top-level assignments. Loop iterations and function calls evaluate their
// bodies in a Snapshot, so assignments made there never reach the enclosing
// Env, while arrays read from it are still shared.
type Env struct {
	m hashmap.Map[any]
}

// NewEnv returns an empty Env.
func NewEnv() *Env {
	return &Env{hashmap.New[any]()}
}

// Get returns the value bound to name and whether such a binding exists.
func (e *Env) Get(name string) (any, bool) {
	return e.m.Index(name)
}

// Set binds name to v in this Env.
func (e *Env) Set(name string, v any) {
	e.m = e.m.Assoc(name, v)
}

// Snapshot returns a copy of the Env. It takes constant time; later changes
// to either Env are not visible in the other.
func (e *Env) Snapshot() *Env {
	return &Env{e.m}
}

// Len returns the number of bindings.
func (e *Env) Len() int {
	return e.m.Len()
}

// Names returns all bound names in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, e.m.Len())
	for it := e.m.Iterator(); it.HasElem(); it.Next() {
		name, _ := it.Elem()
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Value is like Get without the second return value, suitable for
// vals.JSONMap.
func (e *Env) Value(name string) any {
	v, _ := e.m.Index(name)
	return v
}
