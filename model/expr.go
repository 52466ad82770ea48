package model

import (
	"fmt"
	"strings"
)

// An Expression is a node of a function body. Children returns the
// sub-expressions in index order; the exploration addresses
// expressions by these indices.
type Expression interface {
	Children() []Expression
	String() string
}

type (
	// Const is a constant: a number, bool, string, TimeUnit, *Event or
	// *Instance.
	Const struct{ Value interface{} }

	// VarRef names a variable. It is read, except on the left hand side
	// of an assignment.
	VarRef struct{ Var *Var }

	// EventRef names an event of the current "this" instance.
	EventRef struct{ Name string }

	Unary struct {
		Op string
		X  Expression
	}

	// Binary is an operator application. Op "=" assigns Y to the
	// variable X; "&" and "|" on events build event lists.
	Binary struct {
		Op   string
		X, Y Expression
	}

	Bracket struct{ X Expression }

	Block struct{ List []Expression }

	// If has children [Cond, Then..., Else...].
	If struct {
		Cond       Expression
		Then, Else []Expression
	}

	// While has children [Cond, Body...].
	While struct {
		Label string
		Cond  Expression
		Body  []Expression
	}

	// DoWhile has children [Cond, Body...]; the body runs first.
	DoWhile struct {
		Label string
		Cond  Expression
		Body  []Expression
	}

	// For has children [Init, Cond, Body..., Post].
	For struct {
		Label            string
		Init, Cond, Post Expression
		Body             []Expression
	}

	// Switch has children [Tag, Cases...].
	Switch struct {
		Label string
		Tag   Expression
		Cases []*Case
	}

	// Case has children [Value, Body...], or just Body for the default
	// case (Value == nil).
	Case struct {
		Value Expression
		Body  []Expression
	}

	Break    struct{ Label string }
	Continue struct{ Label string }

	// Return has children [Value] or none.
	Return struct{ Value Expression }

	// Call has the arguments as children.
	Call struct {
		Func *Function
		Args []Expression
	}

	// Access evaluates X and uses its value as the qualifier of Member,
	// which is a *Call (X becomes "this") or a *VarRef to a field.
	Access struct {
		X      Expression
		Member Expression
	}

	// Notify has children [Event, Delay...]: no delay is an immediate
	// notification, one delay is a time unit (SC_ZERO_TIME) and two are
	// amount and unit.
	Notify struct {
		Event Expression
		Delay []Expression
	}

	Stop  struct{}
	Empty struct{}
)

func (*Const) Children() []Expression    { return nil }
func (*VarRef) Children() []Expression   { return nil }
func (*EventRef) Children() []Expression { return nil }
func (x *Unary) Children() []Expression  { return []Expression{x.X} }
func (x *Binary) Children() []Expression { return []Expression{x.X, x.Y} }
func (x *Bracket) Children() []Expression {
	return []Expression{x.X}
}
func (x *Block) Children() []Expression { return x.List }
func (x *If) Children() []Expression {
	return concat([]Expression{x.Cond}, x.Then, x.Else)
}
func (x *While) Children() []Expression   { return concat([]Expression{x.Cond}, x.Body) }
func (x *DoWhile) Children() []Expression { return concat([]Expression{x.Cond}, x.Body) }
func (x *For) Children() []Expression {
	return concat([]Expression{x.Init, x.Cond}, x.Body, []Expression{x.Post})
}
func (x *Switch) Children() []Expression {
	r := []Expression{x.Tag}
	for _, c := range x.Cases {
		r = append(r, c)
	}
	return r
}
func (x *Case) Children() []Expression {
	if x.Value == nil {
		return x.Body
	}
	return concat([]Expression{x.Value}, x.Body)
}
func (*Break) Children() []Expression    { return nil }
func (*Continue) Children() []Expression { return nil }
func (x *Return) Children() []Expression {
	if x.Value == nil {
		return nil
	}
	return []Expression{x.Value}
}
func (x *Call) Children() []Expression   { return x.Args }
func (x *Access) Children() []Expression { return []Expression{x.X, x.Member} }
func (x *Notify) Children() []Expression {
	return concat([]Expression{x.Event}, x.Delay)
}
func (*Stop) Children() []Expression  { return nil }
func (*Empty) Children() []Expression { return nil }

// IsDefault reports whether c is the default case.
func (c *Case) IsDefault() bool { return c.Value == nil }

// Loop reports whether e is a loop and returns its label.
func Loop(e Expression) (label string, ok bool) {
	switch e := e.(type) {
	case *While:
		return e.Label, true
	case *DoWhile:
		return e.Label, true
	case *For:
		return e.Label, true
	}
	return "", false
}

func concat(parts ...[]Expression) []Expression {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	r := make([]Expression, 0, n)
	for _, p := range parts {
		r = append(r, p...)
	}
	return r
}

func (x *Const) String() string    { return fmt.Sprint(x.Value) }
func (x *VarRef) String() string   { return x.Var.Name }
func (x *EventRef) String() string { return x.Name }
func (x *Unary) String() string    { return x.Op + x.X.String() }
func (x *Binary) String() string   { return x.X.String() + " " + x.Op + " " + x.Y.String() }
func (x *Bracket) String() string  { return "(" + x.X.String() + ")" }
func (x *Block) String() string    { return "{" + list(x.List) + "}" }
func (x *If) String() string {
	s := "if (" + x.Cond.String() + ") {" + list(x.Then) + "}"
	if len(x.Else) > 0 {
		s += " else {" + list(x.Else) + "}"
	}
	return s
}
func (x *While) String() string {
	return "while (" + x.Cond.String() + ") {" + list(x.Body) + "}"
}
func (x *DoWhile) String() string {
	return "do {" + list(x.Body) + "} while (" + x.Cond.String() + ")"
}
func (x *For) String() string {
	return "for (" + x.Init.String() + "; " + x.Cond.String() + "; " + x.Post.String() + ") {" + list(x.Body) + "}"
}
func (x *Switch) String() string {
	s := "switch (" + x.Tag.String() + ") {"
	for _, c := range x.Cases {
		s += c.String()
	}
	return s + "}"
}
func (x *Case) String() string {
	if x.Value == nil {
		return "default: " + list(x.Body)
	}
	return "case " + x.Value.String() + ": " + list(x.Body)
}
func (x *Break) String() string    { return "break" }
func (x *Continue) String() string { return "continue" }
func (x *Return) String() string {
	if x.Value == nil {
		return "return"
	}
	return "return " + x.Value.String()
}
func (x *Call) String() string   { return x.Func.Name + "(" + args(x.Args) + ")" }
func (x *Access) String() string { return x.X.String() + "." + x.Member.String() }
func (x *Notify) String() string {
	return x.Event.String() + ".notify(" + args(x.Delay) + ")"
}
func (x *Stop) String() string  { return "sc_stop()" }
func (x *Empty) String() string { return ";" }

func list(es []Expression) string {
	var b strings.Builder
	for i, e := range es {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(e.String())
		b.WriteString(";")
	}
	return b.String()
}

func args(es []Expression) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
