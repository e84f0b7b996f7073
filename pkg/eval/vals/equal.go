package vals

// Equal returns whether two values are equal. Numbers, strings, booleans and
// null compare by value; arrays and functions compare by identity.
func Equal(x, y any) bool {
	switch x := x.(type) {
	case nil:
		return y == nil
	case bool:
		y, ok := y.(bool)
		return ok && x == y
	case float64:
		y, ok := y.(float64)
		return ok && x == y
	case string:
		y, ok := y.(string)
		return ok && x == y
	case *Array:
		y, ok := y.(*Array)
		return ok && x == y
	default:
		return x == y
	}
}
