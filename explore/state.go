package explore

import (
	"sort"
	"strconv"
	"strings"

	"github.com/yangshenyi/SDG4Go/absval"
	"github.com/yangshenyi/SDG4Go/model"
)

// A Slot holds the result of one evaluated child expression.
type Slot struct {
	Value absval.Value
	Set   bool
}

// A Frame is one entry of an execution stack: the function being
// evaluated, the path to the expression currently evaluated, the index
// of the child evaluation comes from (-1 when entering an expression)
// and the child results per nesting level. Values has one more level
// than Indices: Values[0] collects the results of the body statements.
type Frame struct {
	Location
	ComingFrom int
	Values     [][]Slot
	This       absval.Value
}

func newFrame(fn *model.Function, this absval.Value) *Frame {
	return &Frame{
		Location:   Location{Function: fn},
		ComingFrom: -1,
		Values:     [][]Slot{nil},
		This:       this,
	}
}

func (f *Frame) clone() *Frame {
	vs := make([][]Slot, len(f.Values))
	for i, l := range f.Values {
		vs[i] = append([]Slot(nil), l...)
	}
	return &Frame{Location: f.Location.clone(), ComingFrom: f.ComingFrom, Values: vs, This: f.This}
}

// Value returns the result of child idx of the expression levelsAbove
// levels above the current one.
func (f *Frame) Value(levelsAbove, idx int) Slot {
	l := len(f.Values) - 1 - levelsAbove
	if l < 0 || idx < 0 || idx >= len(f.Values[l]) {
		return Slot{}
	}
	return f.Values[l][idx]
}

// enter descends into child i.
func (f *Frame) enter(i int) {
	f.Indices = append(f.Indices[:len(f.Indices):len(f.Indices)], i)
	f.ComingFrom = -1
	f.Values = append(f.Values, nil)
}

// leave pops one level, storing the result at the parent if keep.
func (f *Frame) leave(v absval.Value, keep bool) {
	idx := f.Indices[len(f.Indices)-1]
	f.Indices = f.Indices[: len(f.Indices)-1 : len(f.Indices)-1]
	f.Values = f.Values[:len(f.Values)-1]
	f.ComingFrom = idx
	if keep {
		f.set(idx, Slot{Value: v, Set: true})
	}
}

// unwind pops n levels and returns the index of the outermost
// expression left.
func (f *Frame) unwind(n int) int {
	k := len(f.Indices) - n
	idx := f.Indices[k]
	f.Indices = f.Indices[:k:k]
	f.Values = f.Values[:len(f.Values)-n]
	return idx
}

func (f *Frame) set(idx int, s Slot) {
	top := f.Values[len(f.Values)-1]
	for len(top) <= idx {
		top = append(top, Slot{})
	}
	top[idx] = s
	f.Values[len(f.Values)-1] = top
}

func (f *Frame) writeKey(b *strings.Builder) {
	f.Location.writeKey(b)
	b.WriteByte('@')
	b.WriteString(strconv.Itoa(f.ComingFrom))
	b.WriteString(" this=")
	b.WriteString(f.This.Key())
	for _, l := range f.Values {
		b.WriteString(" (")
		for i, s := range l {
			if i > 0 {
				b.WriteByte(',')
			}
			if s.Set {
				b.WriteString(s.Value.Key())
			} else {
				b.WriteByte('_')
			}
		}
		b.WriteByte(')')
	}
}

// A ProcessState is the blocker and execution stack of one process,
// or of the scheduler while it runs update routines.
type ProcessState struct {
	Lockable
	blocker Blocker
	stack   []*Frame
	locals  map[Variable]absval.Value
}

// NewProcessState returns an unlocked state with the given blocker and
// stack.
func NewProcessState(b Blocker, stack ...*Frame) *ProcessState {
	return &ProcessState{blocker: b, stack: stack, locals: make(map[Variable]absval.Value)}
}

func (ps *ProcessState) Blocker() Blocker { return ps.blocker }

func (ps *ProcessState) SetBlocker(b Blocker) {
	ps.mutate()
	ps.blocker = b
}

// Stack returns the execution stack, outermost frame first. It must
// not be modified.
func (ps *ProcessState) Stack() []*Frame { return ps.stack }

// Top returns the innermost frame, or nil.
func (ps *ProcessState) Top() *Frame {
	if len(ps.stack) == 0 {
		return nil
	}
	return ps.stack[len(ps.stack)-1]
}

func (ps *ProcessState) top() *Frame {
	ps.mutate()
	return ps.Top()
}

func (ps *ProcessState) push(f *Frame) {
	ps.mutate()
	ps.stack = append(ps.stack, f)
}

func (ps *ProcessState) pop() *Frame {
	ps.mutate()
	f := ps.stack[len(ps.stack)-1]
	ps.stack = ps.stack[:len(ps.stack)-1]
	return f
}

// Functions returns the functions of the stack, outermost first.
func (ps *ProcessState) Functions() []*model.Function {
	fns := make([]*model.Function, len(ps.stack))
	for i, f := range ps.stack {
		fns[i] = f.Function
	}
	return fns
}

// Locations returns the current location of every frame.
func (ps *ProcessState) Locations() []Location {
	locs := make([]Location, len(ps.stack))
	for i, f := range ps.stack {
		locs[i] = f.Location.clone()
	}
	return locs
}

func (ps *ProcessState) Local(v Variable) (absval.Value, bool) {
	x, ok := ps.locals[v]
	return x, ok
}

func (ps *ProcessState) SetLocal(v Variable, x absval.Value) {
	ps.mutate()
	ps.locals[v] = x
}

func (ps *ProcessState) deleteLocal(v Variable) {
	ps.mutate()
	delete(ps.locals, v)
}

func (ps *ProcessState) Lock() { ps.freeze(ps.computeKey) }

func (ps *ProcessState) Key() string { return ps.cachedKey(ps.computeKey) }

func (ps *ProcessState) computeKey() string {
	var b strings.Builder
	b.WriteString(blockerKey(ps.blocker))
	for _, f := range ps.stack {
		b.WriteString(" | ")
		f.writeKey(&b)
	}
	writeValues(&b, ps.locals)
	return b.String()
}

// UnlockedClone returns an independent unlocked copy of ps.
func (ps *ProcessState) UnlockedClone() *ProcessState {
	c := &ProcessState{blocker: ps.blocker, locals: make(map[Variable]absval.Value, len(ps.locals))}
	c.stack = make([]*Frame, len(ps.stack))
	for i, f := range ps.stack {
		c.stack[i] = f.clone()
	}
	for v, x := range ps.locals {
		c.locals[v] = x
	}
	return c
}

// A GlobalState is the part of a system state owned by the scheduler:
// pending event notifications, requested updates, the stopped flag and
// the values of tracked globals.
type GlobalState struct {
	Lockable
	values  map[Variable]absval.Value
	events  map[*model.Event]TimedBlocker
	updates []*model.Instance
	stopped bool
}

func NewGlobalState() *GlobalState {
	return &GlobalState{values: make(map[Variable]absval.Value), events: make(map[*model.Event]TimedBlocker)}
}

func (g *GlobalState) Value(v Variable) (absval.Value, bool) {
	x, ok := g.values[v]
	return x, ok
}

func (g *GlobalState) SetValue(v Variable, x absval.Value) {
	g.mutate()
	g.values[v] = x
}

// Pending returns the delay of the pending notification of e, or nil.
func (g *GlobalState) Pending(e *model.Event) TimedBlocker { return g.events[e] }

// PendingEvents returns the events with a pending notification.
func (g *GlobalState) PendingEvents() []*model.Event {
	evs := make([]*model.Event, 0, len(g.events))
	for e := range g.events {
		evs = append(evs, e)
	}
	sort.Slice(evs, func(i, j int) bool { return evs[i].String() < evs[j].String() })
	return evs
}

func (g *GlobalState) setPending(e *model.Event, t TimedBlocker) {
	g.mutate()
	if t == nil {
		delete(g.events, e)
		return
	}
	g.events[e] = t
}

// RequestUpdate schedules inst's update routine for the next update
// phase.
func (g *GlobalState) RequestUpdate(inst *model.Instance) {
	g.mutate()
	for _, x := range g.updates {
		if x == inst {
			return
		}
	}
	g.updates = append(g.updates, inst)
}

func (g *GlobalState) Updates() []*model.Instance { return g.updates }

func (g *GlobalState) takeUpdates() []*model.Instance {
	g.mutate()
	u := g.updates
	g.updates = nil
	return u
}

func (g *GlobalState) Stopped() bool { return g.stopped }

func (g *GlobalState) Lock() { g.freeze(g.computeKey) }

func (g *GlobalState) Key() string { return g.cachedKey(g.computeKey) }

func (g *GlobalState) computeKey() string {
	var b strings.Builder
	if g.stopped {
		b.WriteString("stopped ")
	}
	for _, e := range g.PendingEvents() {
		b.WriteString(e.String())
		b.WriteByte('@')
		b.WriteString(g.events[e].String())
		b.WriteByte(' ')
	}
	b.WriteString("updates[")
	for i, u := range g.updates {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(u.Name)
	}
	b.WriteByte(']')
	writeValues(&b, g.values)
	return b.String()
}

func (g *GlobalState) UnlockedClone() *GlobalState {
	c := &GlobalState{
		values:  make(map[Variable]absval.Value, len(g.values)),
		events:  make(map[*model.Event]TimedBlocker, len(g.events)),
		updates: append([]*model.Instance(nil), g.updates...),
		stopped: g.stopped,
	}
	for v, x := range g.values {
		c.values[v] = x
	}
	for e, t := range g.events {
		c.events[e] = t
	}
	return c
}

func writeValues(b *strings.Builder, m map[Variable]absval.Value) {
	if len(m) == 0 {
		return
	}
	kv := make([]string, 0, len(m))
	for v, x := range m {
		kv = append(kv, v.String()+"="+x.Key())
	}
	sort.Strings(kv)
	b.WriteString(" {")
	b.WriteString(strings.Join(kv, ","))
	b.WriteByte('}')
}

// A State is an explored system state: the global state and one
// ProcessState per analyzed process, indexed by Process.ID. Update is
// the scheduler's own state while it runs update routines and nil
// otherwise.
type State struct {
	Lockable
	Global *GlobalState
	Procs  []*ProcessState
	Update *ProcessState
}

// Lock freezes s and all its parts.
func (s *State) Lock() {
	if s.IsLocked() {
		return
	}
	s.Global.Lock()
	for _, ps := range s.Procs {
		ps.Lock()
	}
	if s.Update != nil {
		s.Update.Lock()
	}
	s.freeze(s.computeKey)
}

func (s *State) Key() string { return s.cachedKey(s.computeKey) }

func (s *State) computeKey() string {
	var b strings.Builder
	b.WriteString(s.Global.Key())
	for i, ps := range s.Procs {
		b.WriteString("\n")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(": ")
		b.WriteString(ps.Key())
	}
	if s.Update != nil {
		b.WriteString("\nupdate: ")
		b.WriteString(s.Update.Key())
	}
	return b.String()
}

// UnlockedClone returns a copy of s whose parts are unlocked copies.
func (s *State) UnlockedClone() *State {
	c := &State{Global: s.Global.UnlockedClone(), Procs: make([]*ProcessState, len(s.Procs))}
	for i, ps := range s.Procs {
		c.Procs[i] = ps.UnlockedClone()
	}
	if s.Update != nil {
		c.Update = s.Update.UnlockedClone()
	}
	return c
}

func (s *State) String() string { return s.Key() }

func (g *GlobalState) stop() {
	g.mutate()
	g.stopped = true
	g.events = make(map[*model.Event]TimedBlocker)
}
