package vals

// Array is a mutable ordered sequence of values. Arrays are shared by
// reference: assigning an array to another variable, or reading it from a
// snapshot of an environment, yields the same *Array.
type Array struct {
	Elems []any
}

// NewArray returns a new Array containing the given elements.
func NewArray(elems ...any) *Array {
	if elems == nil {
		elems = []any{}
	}
	return &Array{elems}
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.Elems) }

// Push appends values to the array in place.
func (a *Array) Push(vs ...any) { a.Elems = append(a.Elems, vs...) }
