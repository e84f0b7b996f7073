package parse

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Pprint pretty-prints the given top-level statements, one node per line,
// with children indented by two spaces.
func Pprint(w io.Writer, nodes []Node) {
	for _, n := range nodes {
		pprint(w, n, "")
	}
}

func pprint(w io.Writer, n Node, indent string) {
	fmt.Fprintf(w, "%s%s %d-%d\n", indent, describe(n), n.Range().From, n.Range().To)
	for _, ch := range Children(n) {
		pprint(w, ch, indent+"  ")
	}
}

func describe(n Node) string {
	switch n := n.(type) {
	case *Number:
		return "Number " + strconv.FormatFloat(n.Value, 'g', -1, 64)
	case *String:
		return "String " + strconv.Quote(n.Value)
	case *Bool:
		return "Bool " + strconv.FormatBool(n.Value)
	case *Null:
		return "Null"
	case *Ident:
		return "Ident " + n.Name
	case *Binary:
		return "Binary " + n.Op
	case *Array:
		return "Array"
	case *Index:
		return "Index"
	case *Property:
		return "Property " + n.Name
	case *Assign:
		return "Assign " + n.Name
	case *Func:
		return "Func (" + strings.Join(n.Params, ", ") + ")"
	case *Call:
		return "Call"
	case *Block:
		return "Block"
	case *If:
		return "If"
	case *For:
		if n.Index != "" {
			return "For " + n.Item + ", " + n.Index
		}
		return "For " + n.Item
	case *Return:
		return "Return"
	}
	return fmt.Sprintf("%T", n)
}
