// Package absval implements the abstracted value domain used by the
// state space exploration: a value is either determined (a known
// concrete value) or undetermined.
package absval

import (
	"fmt"
)

// A Value is an abstracted value. The zero Value is undetermined.
//
// Determined payloads must be comparable; the exploration uses them as
// parts of map keys and compares them with ==.
type Value struct {
	v          interface{}
	determined bool
}

// Undetermined is the top element of the domain.
var Undetermined = Value{}

// Of returns the determined value v.
func Of(v interface{}) Value {
	return Value{v: v, determined: true}
}

// Bool returns the determined boolean b.
func Bool(b bool) Value { return Of(b) }

// Int returns the determined integer i.
func Int(i int) Value { return Of(i) }

func (x Value) IsDetermined() bool { return x.determined }

// Get returns the concrete value. It panics if x is undetermined.
func (x Value) Get() interface{} {
	if !x.determined {
		panic("Get on undetermined value")
	}
	return x.v
}

// Equal reports whether x and y are the same abstract value.
func (x Value) Equal(y Value) bool {
	if x.determined != y.determined {
		return false
	}
	return !x.determined || x.v == y.v
}

// Join returns the least upper bound of x and y.
func (x Value) Join(y Value) Value {
	if x.Equal(y) {
		return x
	}
	return Undetermined
}

// JoinAll joins all values; the join of nothing is undetermined.
func JoinAll(vs ...Value) Value {
	if len(vs) == 0 {
		return Undetermined
	}
	r := vs[0]
	for _, v := range vs[1:] {
		r = r.Join(v)
	}
	return r
}

func (x Value) String() string {
	if !x.determined {
		return "?"
	}
	return fmt.Sprint(x.v)
}

// Key returns a canonical text form, distinguishing payload types.
func (x Value) Key() string {
	if !x.determined {
		return "?"
	}
	if s, ok := x.v.(fmt.Stringer); ok {
		return fmt.Sprintf("%T(%s)", x.v, s.String())
	}
	return fmt.Sprintf("%T(%v)", x.v, x.v)
}

// AsBool returns the payload as a bool. ok is false if x is determined
// but not a bool.
func (x Value) AsBool() (b bool, ok bool) {
	if !x.determined {
		return false, false
	}
	b, ok = x.v.(bool)
	return
}

// AsInt returns the payload as an int.
func (x Value) AsInt() (i int, ok bool) {
	if !x.determined {
		return 0, false
	}
	i, ok = x.v.(int)
	return
}
