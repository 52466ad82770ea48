package explore

import (
	"github.com/yangshenyi/SDG4Go/absval"
	"github.com/yangshenyi/SDG4Go/model"
)

// A Transition is a (partial) step being explored: the state reached
// so far, the information gathered for it and the scratch of the
// current step. Proc is nil for scheduler transitions. Origin is the
// instance the running code was started for.
type Transition struct {
	State  *State
	Info   Information
	Proc   *Process
	Origin *model.Instance

	scope *stepScope
}

type condition struct {
	e model.Expression
	v absval.Value
}

// stepScope is the scratch of one step. It is dropped when the step
// is finalized and is not part of the state's identity.
type stepScope struct {
	read, written []Variable
	announced     []Location
	event         *model.Event
	conds         [][]condition // one layer per call
}

func newTransition(s *State, info Information, p *Process, origin *model.Instance) *Transition {
	return &Transition{State: s, Info: info, Proc: p, Origin: origin, scope: &stepScope{conds: [][]condition{nil}}}
}

// Local returns the state of the code the transition runs: the
// process's state, or the scheduler's update state.
func (t *Transition) Local() *ProcessState {
	if t.Proc == nil {
		return t.State.Update
	}
	return t.State.Procs[t.Proc.ID]
}

// WithInfo returns a view of t with a different information. The view
// shares state and scratch with t.
func (t *Transition) WithInfo(info Information) *Transition {
	c := *t
	c.Info = info
	return &c
}

// fork returns an independent copy of t for a nondeterministic branch.
func (t *Transition) fork() *Transition {
	sc := *t.scope
	sc.read = append([]Variable(nil), sc.read...)
	sc.written = append([]Variable(nil), sc.written...)
	sc.conds = make([][]condition, len(t.scope.conds))
	for i, l := range t.scope.conds {
		sc.conds[i] = append([]condition(nil), l...)
	}
	return &Transition{
		State:  t.State.UnlockedClone(),
		Info:   t.Info.UnlockedClone(),
		Proc:   t.Proc,
		Origin: t.Origin,
		scope:  &sc,
	}
}

// ReadVariables returns the variables read by the last small step.
func (t *Transition) ReadVariables() []Variable { return t.scope.read }

// WrittenVariables returns the variables written by the last small
// step.
func (t *Transition) WrittenVariables() []Variable { return t.scope.written }

func (t *Transition) resetAccesses() {
	t.scope.read = t.scope.read[:0:0]
	t.scope.written = t.scope.written[:0:0]
}

func (t *Transition) addRead(v Variable)    { t.scope.read = addVar(t.scope.read, v) }
func (t *Transition) addWritten(v Variable) { t.scope.written = addVar(t.scope.written, v) }

func addVar(vs []Variable, v Variable) []Variable {
	for _, x := range vs {
		if x == v {
			return vs
		}
	}
	return append(vs, v)
}

// Announced returns the location stack stored by the last Announce.
func (t *Transition) Announced() []Location { return t.scope.announced }

func (t *Transition) SetAnnounced(locs []Location) { t.scope.announced = locs }

// AnnouncedEvent returns the event announced for the notification
// evaluated by the current small step, or nil. The scheduler clears it
// after the handlers have seen the step.
func (t *Transition) AnnouncedEvent() *model.Event { return t.scope.event }

func (t *Transition) SetAnnouncedEvent(e *model.Event) { t.scope.event = e }

// Condition returns the conjunction of the branch conditions under
// which the current evaluation point is reached.
func (t *Transition) Condition() absval.Value {
	c := absval.Bool(true)
	for _, l := range t.scope.conds {
		for _, x := range l {
			c = absval.And(c, x.v)
		}
	}
	return c
}

func (t *Transition) addCondition(e model.Expression, v absval.Value) {
	l := t.scope.conds[len(t.scope.conds)-1]
	for i := range l {
		if l[i].e == e {
			l[i].v = absval.And(l[i].v, v)
			return
		}
	}
	t.scope.conds[len(t.scope.conds)-1] = append(l, condition{e, v})
}

// removeConditionsUntil drops the conditions of the current call up to
// and including the one added by e.
func (t *Transition) removeConditionsUntil(e model.Expression) {
	last := len(t.scope.conds) - 1
	for l := t.scope.conds[last]; len(l) > 0; {
		removed := l[len(l)-1]
		l = l[:len(l)-1]
		t.scope.conds[last] = l
		if removed.e == e {
			return
		}
	}
}

// removeConditionsAbove drops the conditions of the current call that
// were added after the one of e.
func (t *Transition) removeConditionsAbove(e model.Expression) {
	last := len(t.scope.conds) - 1
	l := t.scope.conds[last]
	for len(l) > 0 && l[len(l)-1].e != e {
		l = l[:len(l)-1]
	}
	t.scope.conds[last] = l
}

func (t *Transition) enterCall() { t.scope.conds = append(t.scope.conds, nil) }

func (t *Transition) leaveCall() {
	if len(t.scope.conds) > 1 {
		t.scope.conds = t.scope.conds[:len(t.scope.conds)-1]
	} else {
		t.scope.conds[0] = nil
	}
}

// endStep drops the step scratch.
func (t *Transition) endStep() {
	t.scope = &stepScope{conds: [][]condition{nil}}
}
