package explore

import (
	"strconv"
	"strings"

	"github.com/yangshenyi/SDG4Go/model"
)

// A Location is an evaluation point: a function and the index path of
// an expression in its body. The empty path denotes the body itself.
type Location struct {
	Function *model.Function
	Indices  []int
}

// Expression returns the expression at l, or nil for the body.
func (l Location) Expression() model.Expression {
	return l.Function.At(l.Indices)
}

// Parent returns the location of the enclosing expression.
func (l Location) Parent() Location {
	if len(l.Indices) == 0 {
		return l
	}
	n := len(l.Indices) - 1
	return Location{l.Function, l.Indices[:n:n]}
}

// Child returns the location of the i-th child of l.
func (l Location) Child(i int) Location {
	ind := make([]int, len(l.Indices)+1)
	copy(ind, l.Indices)
	ind[len(l.Indices)] = i
	return Location{l.Function, ind}
}

func (l Location) clone() Location {
	return Location{l.Function, append([]int(nil), l.Indices...)}
}

func (l Location) String() string {
	var b strings.Builder
	l.writeKey(&b)
	return b.String()
}

func (l Location) writeKey(b *strings.Builder) {
	b.WriteString(l.Function.String())
	b.WriteByte('[')
	for i, x := range l.Indices {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(x))
	}
	b.WriteByte(']')
}

// LocationsKey is the canonical text of a location stack, outermost
// first.
func LocationsKey(locs []Location) string {
	var b strings.Builder
	for i, l := range locs {
		if i > 0 {
			b.WriteByte('/')
		}
		l.writeKey(&b)
	}
	return b.String()
}
