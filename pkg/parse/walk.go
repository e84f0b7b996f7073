package parse

// Children returns the direct child nodes of n, in source order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Binary:
		return []Node{n.Left, n.Right}
	case *Array:
		return n.Elems
	case *Index:
		return []Node{n.Object, n.Index}
	case *Property:
		return []Node{n.Object}
	case *Assign:
		return []Node{n.Value}
	case *Func:
		return []Node{n.Body}
	case *Call:
		return append([]Node{n.Callee}, n.Args...)
	case *Block:
		return n.Stmts
	case *If:
		if n.Else == nil {
			return []Node{n.Cond, n.Then}
		}
		return []Node{n.Cond, n.Then, n.Else}
	case *For:
		return []Node{n.Iterable, n.Body}
	case *Return:
		if n.Value != nil {
			return []Node{n.Value}
		}
	}
	return nil
}

// Inspect traverses the tree rooted at n in depth-first order, calling f for
// each node. If f returns false, the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if !f(n) {
		return
	}
	for _, ch := range Children(n) {
		Inspect(ch, f)
	}
}
