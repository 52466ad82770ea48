package absval

// And is the three-valued conjunction: false dominates, then
// undetermined.
func And(x, y Value) Value {
	if isFalse(x) || isFalse(y) {
		return Bool(false)
	}
	if isTrue(x) && isTrue(y) {
		return Bool(true)
	}
	return Undetermined
}

// Or is the three-valued disjunction: true dominates, then undetermined.
func Or(x, y Value) Value {
	if isTrue(x) || isTrue(y) {
		return Bool(true)
	}
	if isFalse(x) && isFalse(y) {
		return Bool(false)
	}
	return Undetermined
}

func Not(x Value) Value {
	if b, ok := x.AsBool(); ok {
		return Bool(!b)
	}
	return Undetermined
}

// Possibly reports whether x may be true, i.e. x is true or
// undetermined.
func Possibly(x Value) bool {
	return !x.IsDetermined() || isTrue(x)
}

// Definitely reports whether x is determined true.
func Definitely(x Value) bool {
	return isTrue(x)
}

func isTrue(x Value) bool {
	b, ok := x.AsBool()
	return ok && b
}

func isFalse(x Value) bool {
	b, ok := x.AsBool()
	return ok && !b
}

// Apply evaluates a binary operator on two abstracted values. Unknown
// operators and undetermined or ill-typed operands give Undetermined.
func Apply(op string, x, y Value) Value {
	switch op {
	case "&&":
		return And(x, y)
	case "||":
		return Or(x, y)
	}
	if !x.IsDetermined() || !y.IsDetermined() {
		return Undetermined
	}
	switch op {
	case "==":
		return Bool(x.v == y.v)
	case "!=":
		return Bool(x.v != y.v)
	}
	if a, ok := x.AsInt(); ok {
		if b, ok := y.AsInt(); ok {
			return applyInt(op, a, b)
		}
	}
	if a, ok := x.v.(string); ok {
		if b, ok := y.v.(string); ok && op == "+" {
			return Of(a + b)
		}
	}
	return Undetermined
}

func applyInt(op string, a, b int) Value {
	switch op {
	case "+":
		return Int(a + b)
	case "-":
		return Int(a - b)
	case "*":
		return Int(a * b)
	case "/":
		if b == 0 {
			return Undetermined
		}
		return Int(a / b)
	case "%":
		if b == 0 {
			return Undetermined
		}
		return Int(a % b)
	case "<":
		return Bool(a < b)
	case "<=":
		return Bool(a <= b)
	case ">":
		return Bool(a > b)
	case ">=":
		return Bool(a >= b)
	}
	return Undetermined
}

// ApplyUnary evaluates "-" and "!".
func ApplyUnary(op string, x Value) Value {
	switch op {
	case "!":
		return Not(x)
	case "-":
		if i, ok := x.AsInt(); ok {
			return Int(-i)
		}
	}
	return Undetermined
}
