// Package model is the read-only process model consumed by the
// exploration: a system of class instances, their events and member
// functions, and the processes that run them. Expressions form plain
// trees; a node must not appear at two places of a tree, since the
// exploration identifies evaluation points by pointer and index path.
package model

import (
	"fmt"
	"strings"
)

type VarKind int

const (
	Field  VarKind = iota // member of a class instance
	Local                 // local of a function frame
	Param                 // parameter of a function
	Global                // system-wide variable without qualifier
)

// A Var is a variable declaration.
type Var struct {
	Name string
	Kind VarKind
	// Init, when non-nil, is the initial value of a tracked variable.
	Init interface{}
}

func (v *Var) String() string { return v.Name }

// IsGlobal reports whether accesses to v address a global storage
// location (a field of some instance or a system global).
func (v *Var) IsGlobal() bool { return v.Kind == Field || v.Kind == Global }

// A Function is a routine: a member function of a class, a process
// body or one of the built-ins.
type Function struct {
	Name    string
	Class   *Class // nil for built-ins
	Params  []*Var
	Body    []Expression
	Returns bool // whether calls produce a value

	builtin bool
}

// The built-in routines handled by the scheduler.
var (
	Wait          = &Function{Name: "wait", builtin: true}
	RequestUpdate = &Function{Name: "request_update", builtin: true}
)

func (f *Function) IsBuiltin() bool { return f.builtin }

// IsUpdate reports whether f is a channel's update routine.
func (f *Function) IsUpdate() bool { return f.Name == "update" && f.Class != nil }

func (f *Function) String() string {
	if f.Class == nil {
		return f.Name
	}
	return f.Class.Name + "." + f.Name
}

// At returns the expression at the index path, or nil for the empty
// path (the function body itself) and for paths past the end of a
// list.
func (f *Function) At(indices []int) Expression {
	if len(indices) == 0 {
		return nil
	}
	if indices[0] < 0 || indices[0] >= len(f.Body) {
		return nil
	}
	e := f.Body[indices[0]]
	for _, i := range indices[1:] {
		ch := e.Children()
		if i < 0 || i >= len(ch) {
			return nil
		}
		e = ch[i]
	}
	return e
}

// A Class declares fields, events and member functions.
type Class struct {
	Name      string
	Fields    []*Var
	Events    []string
	Functions []*Function
}

// Method returns the member function with the given name, or nil.
func (c *Class) Method(name string) *Function {
	for _, f := range c.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Add registers member functions and sets their class.
func (c *Class) Add(fns ...*Function) *Class {
	for _, f := range fns {
		f.Class = c
		c.Functions = append(c.Functions, f)
	}
	return c
}

// An Instance is a named instance of a class.
type Instance struct {
	Name   string
	Class  *Class
	events map[string]*Event
}

// NewInstance creates an instance together with one event per event
// declared by its class.
func NewInstance(name string, class *Class) *Instance {
	inst := &Instance{Name: name, Class: class, events: make(map[string]*Event)}
	for _, e := range class.Events {
		inst.events[e] = &Event{Name: e, Owner: inst}
	}
	return inst
}

// Event returns the instance's event with the given name, or nil.
func (i *Instance) Event(name string) *Event { return i.events[name] }

func (i *Instance) String() string { return i.Name }

// An Event is a notifiable event owned by an instance (or by nobody,
// for free-standing events).
type Event struct {
	Name  string
	Owner *Instance
}

func (e *Event) String() string {
	if e.Owner == nil {
		return e.Name
	}
	return e.Owner.Name + "." + e.Name
}

type ProcessKind int

const (
	Thread ProcessKind = iota // runs until it waits, may wait anywhere
	Method                    // runs to completion, re-armed by its sensitivity
)

// A Process is a routine started by the scheduler for an instance.
type Process struct {
	Name           string
	Instance       *Instance
	Function       *Function
	Kind           ProcessKind
	Sensitivity    []*Event
	DontInitialize bool
}

func (p *Process) String() string {
	return p.Instance.Name + "." + p.Name
}

// A System is the whole model under analysis.
type System struct {
	Instances []*Instance
	Processes []*Process
	Globals   []*Var
}

// Instance returns the instance with the given name, or nil.
func (s *System) Instance(name string) *Instance {
	for _, i := range s.Instances {
		if i.Name == name {
			return i
		}
	}
	return nil
}

// Process returns the process with the given qualified name
// ("instance.process"), or nil.
func (s *System) Process(name string) *Process {
	for _, p := range s.Processes {
		if p.String() == name {
			return p
		}
	}
	return nil
}

// Validate checks the structural requirements the exploration relies
// on.
func (s *System) Validate() error {
	var problems []string
	seen := make(map[string]bool)
	for _, i := range s.Instances {
		if seen[i.Name] {
			problems = append(problems, fmt.Sprintf("duplicate instance %q", i.Name))
		}
		seen[i.Name] = true
		if i.Class == nil {
			problems = append(problems, fmt.Sprintf("instance %q has no class", i.Name))
		}
	}
	seenProc := make(map[string]bool)
	for _, p := range s.Processes {
		switch {
		case p.Instance == nil:
			problems = append(problems, fmt.Sprintf("process %q has no instance", p.Name))
			continue
		case p.Function == nil:
			problems = append(problems, fmt.Sprintf("process %s has no function", p))
		case p.Kind == Method && len(p.Sensitivity) == 0:
			problems = append(problems, fmt.Sprintf("method process %s has no sensitivity", p))
		}
		if seenProc[p.String()] {
			problems = append(problems, fmt.Sprintf("duplicate process %s", p))
		}
		seenProc[p.String()] = true
	}
	if len(s.Processes) == 0 {
		problems = append(problems, "no processes")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid system: %s", strings.Join(problems, "; "))
	}
	return nil
}

// A TimeUnit scales time amounts in wait and notify arguments.
type TimeUnit int

const (
	ZeroTime TimeUnit = iota // SC_ZERO_TIME, a delta delay
	FS
	PS
	NS
	US
	MS
	SEC
)

var unitNames = [...]string{"SC_ZERO_TIME", "SC_FS", "SC_PS", "SC_NS", "SC_US", "SC_MS", "SC_SEC"}

func (u TimeUnit) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return fmt.Sprintf("TimeUnit(%d)", int(u))
}
