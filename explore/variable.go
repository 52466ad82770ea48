package explore

import (
	"fmt"
	"strings"

	"github.com/yangshenyi/SDG4Go/model"
)

type VarKind int

const (
	LocalVar     VarKind = iota // local of a frame on a call stack
	GlobalVar                   // field of an instance or system global
	BlockTrigger                // resumption of an instance at a location
	EventTrigger                // notification of an event
)

var varKindNames = [...]string{"local", "global", "block", "event"}

func (k VarKind) String() string { return varKindNames[k] }

// Special local declarations.
type specialDecl int

const (
	ThisDecl   specialDecl = iota + 1 // the receiver of a call
	ResultDecl                        // the value returned by a call
)

func (d specialDecl) String() string {
	if d == ThisDecl {
		return "this"
	}
	return "return"
}

// ArgDecl stands for the i-th argument of a call that has no matching
// parameter declaration (built-ins and arity mismatches).
type ArgDecl int

func (d ArgDecl) String() string { return fmt.Sprintf("arg%d", int(d)) }

type unknownQualifier struct{}

func (unknownQualifier) String() string { return "?" }

// Unknown is the qualifier of a global variable accessed through an
// undetermined instance.
var Unknown interface{} = unknownQualifier{}

// A Variable identifies a storage location. Variables are comparable
// and used directly as map keys.
//
// Locals are identified by the call stack of the declaring frame
// (Scope, Depth) and the declaration; globals by qualifier (Owner) and
// declaration. Trigger variables are global: a block trigger is owned
// by the resumed instance and scoped by the resumption location stack,
// an event trigger is owned by the event.
type Variable struct {
	Kind  VarKind
	Owner interface{}
	Scope string
	Depth int
	Decl  interface{}
}

// Local returns the variable decl of the frame whose call stack is
// stack.
func Local(stack []*model.Function, decl interface{}) Variable {
	names := make([]string, len(stack))
	for i, f := range stack {
		names[i] = f.String()
	}
	return Variable{Kind: LocalVar, Scope: strings.Join(names, "/"), Depth: len(stack), Decl: decl}
}

// Global returns the field or system global v qualified by owner,
// which is an *model.Instance, nil for system globals, or Unknown.
func Global(owner interface{}, v *model.Var) Variable {
	if v.Kind == model.Global {
		owner = nil
	}
	return Variable{Kind: GlobalVar, Owner: owner, Decl: v}
}

// BlockTriggerOf returns the trigger written whenever inst may resume
// at the location stack locs.
func BlockTriggerOf(inst interface{}, locs []Location) Variable {
	return Variable{Kind: BlockTrigger, Owner: inst, Scope: LocationsKey(locs), Depth: len(locs)}
}

// EventTriggerOf returns the trigger written by delayed notifications
// of e.
func EventTriggerOf(e *model.Event) Variable {
	return Variable{Kind: EventTrigger, Owner: e}
}

// IsQualified reports whether v is a global with a determined
// qualifier.
func (v Variable) IsQualified() bool {
	return v.Kind != GlobalVar || v.Owner != Unknown
}

func (v Variable) String() string {
	switch v.Kind {
	case LocalVar:
		return fmt.Sprintf("%s:%v", v.Scope, v.Decl)
	case GlobalVar:
		if v.Owner == nil {
			return fmt.Sprint(v.Decl)
		}
		return fmt.Sprintf("%v.%v", v.Owner, v.Decl)
	case BlockTrigger:
		return fmt.Sprintf("block(%v@%s)", v.Owner, v.Scope)
	default:
		return fmt.Sprintf("event(%v)", v.Owner)
	}
}
