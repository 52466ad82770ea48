package explore

import (
	"fmt"

	"github.com/yangshenyi/SDG4Go/absval"
	"github.com/yangshenyi/SDG4Go/model"
)

// smallStep is the outcome of one small step: the expression that was
// evaluated (nil for steps on a function body), the child it was
// entered from and the resulting transitions.
type smallStep struct {
	expr       model.Expression
	comingFrom int
	results    []*Transition
	end        bool // the code blocked or ran to its end
	repeating  bool // the result may be reached again within the step
}

func one(e model.Expression, comingFrom int, t *Transition) smallStep {
	return smallStep{expr: e, comingFrom: comingFrom, results: []*Transition{t}}
}

// makeSmallStep evaluates one piece of the expression at the top of
// the running code's stack and lets the handler see the result.
func (s *Scheduler) makeSmallStep(t *Transition) (smallStep, error) {
	t.resetAccesses()
	top := t.Local().top()
	comingFrom := top.ComingFrom

	var (
		st  smallStep
		err error
	)
	if len(top.Indices) == 0 {
		st, err = s.functionBody(t, comingFrom)
	} else {
		e := top.Expression()
		if err = s.h.Announce(t, e); err != nil {
			return smallStep{}, err
		}
		st, err = s.expression(t, e, comingFrom)
	}
	if err != nil {
		return smallStep{}, err
	}
	for _, r := range st.results {
		if r.Info, err = s.h.Evaluated(r, st.expr, st.comingFrom); err != nil {
			return smallStep{}, err
		}
		// Every handler has seen the announced event by now.
		r.SetAnnouncedEvent(nil)
	}
	return st, nil
}

func (s *Scheduler) functionBody(t *Transition, comingFrom int) (smallStep, error) {
	top := t.Local().top()
	if comingFrom < len(top.Function.Body)-1 {
		top.enter(comingFrom + 1)
		return one(nil, comingFrom, t), nil
	}
	return s.returnFromFunction(t, nil, comingFrom, absval.Undetermined)
}

func (s *Scheduler) returnFromFunction(t *Transition, e model.Expression, comingFrom int, result absval.Value) (smallStep, error) {
	ps := t.Local()
	ps.pop()
	if len(ps.Stack()) == 0 {
		return s.endOfCode(t)
	}
	top := ps.top()
	top.ComingFrom++
	top.set(top.ComingFrom, Slot{Value: result, Set: true})
	t.leaveCall()
	if call, ok := top.Expression().(*model.Call); ok {
		s.functionReturned(t, call)
	}
	return one(e, comingFrom, t), nil
}

// endOfCode handles the end of the routine a transition started in.
// Processes with a sensitivity are re-armed, others terminate.
func (s *Scheduler) endOfCode(t *Transition) (smallStep, error) {
	if t.Proc != nil {
		ps := t.Local()
		p := t.Proc
		if len(p.Sensitivity) == 0 {
			ps.SetBlocker(Terminated)
		} else {
			ps.SetBlocker(NewEventBlocker(p.Sensitivity, true, nil))
			ps.push(newFrame(p.Function, absval.Of(p.Instance)))
		}
	}
	return smallStep{comingFrom: -2, results: []*Transition{t}, end: true}, nil
}

func (s *Scheduler) expression(t *Transition, e model.Expression, comingFrom int) (smallStep, error) {
	top := t.Local().top()
	switch e := e.(type) {
	case *model.Const:
		returnToParent(top, absval.Of(e.Value))
		return one(e, comingFrom, t), nil

	case *model.EventRef:
		v := absval.Undetermined
		if inst, ok := instanceOf(top.This); ok {
			if ev := inst.Event(e.Name); ev != nil {
				v = absval.Of(ev)
			}
		}
		returnToParent(top, v)
		return one(e, comingFrom, t), nil

	case *model.VarRef:
		v := s.readVariable(t, e)
		returnToParent(top, v)
		return one(e, comingFrom, t), nil

	case *model.Unary, *model.Binary, *model.Access, *model.Bracket, *model.Block, *model.Empty:
		n := len(e.Children())
		if comingFrom < n-1 {
			top.enter(comingFrom + 1)
			return one(e, comingFrom, t), nil
		}
		v, err := s.aggregate(t, e)
		if err != nil {
			return smallStep{}, err
		}
		returnToParent(top, v)
		return one(e, comingFrom, t), nil

	case *model.If:
		return s.ifElse(t, e, comingFrom)
	case *model.While:
		return s.whileLoop(t, e, e.Body, true, comingFrom)
	case *model.DoWhile:
		return s.whileLoop(t, e, e.Body, false, comingFrom)
	case *model.For:
		return s.forLoop(t, e, comingFrom)
	case *model.Switch:
		return s.switchExpr(t, e, comingFrom)
	case *model.Case:
		return s.caseExpr(t, e, comingFrom)
	case *model.Break:
		return s.breakExpr(t, e, comingFrom)
	case *model.Continue:
		return s.continueExpr(t, e, comingFrom)

	case *model.Return:
		if comingFrom == -1 && e.Value != nil {
			top.enter(0)
			return one(e, comingFrom, t), nil
		}
		v := absval.Undetermined
		if e.Value != nil {
			v = top.Value(0, 0).Value
		}
		return s.returnFromFunction(t, e, comingFrom, v)

	case *model.Notify:
		return s.notify(t, e, comingFrom)

	case *model.Stop:
		returnToParent(top, absval.Undetermined)
		s.stopSimulation(t)
		return one(e, comingFrom, t), nil

	case *model.Call:
		return s.call(t, e, comingFrom)
	}
	return smallStep{}, fmt.Errorf("%s: unsupported expression %T", top.Location, e)
}

// returnToParent leaves the current expression with result v.
func returnToParent(top *Frame, v absval.Value) {
	idx := top.Indices[len(top.Indices)-1]
	top.leave(v, caresAboutValue(top.Parent().Expression(), idx))
}

// caresAboutValue reports whether parent uses the result of its child
// idx. Statement lists ignore results, except the results of cases,
// which decide fall-through.
func caresAboutValue(parent model.Expression, idx int) bool {
	switch p := parent.(type) {
	case nil:
		return false
	case *model.While, *model.DoWhile, *model.If:
		return idx == 0
	case *model.For:
		return idx == 1
	case *model.Case:
		return idx == 0 && !p.IsDefault()
	case *model.Block:
		return false
	}
	return true
}

func instanceOf(v absval.Value) (*model.Instance, bool) {
	if !v.IsDetermined() {
		return nil, false
	}
	inst, ok := v.Get().(*model.Instance)
	return inst, ok
}

// truth interprets v as a condition.
func truth(v absval.Value) (b bool, ok bool) {
	if b, ok := v.AsBool(); ok {
		return b, true
	}
	if i, ok := v.AsInt(); ok {
		return i != 0, true
	}
	return false, false
}

// isAssignTarget reports whether the variable reference at loc names
// the target of an assignment, directly or as the member of an access.
func isAssignTarget(loc Location) bool {
	last := func(l Location) int { return l.Indices[len(l.Indices)-1] }
	p := loc.Parent()
	switch pe := p.Expression().(type) {
	case *model.Binary:
		return pe.Op == "=" && last(loc) == 0
	case *model.Access:
		if last(loc) != 1 || len(p.Indices) == 0 {
			return false
		}
		b, ok := p.Parent().Expression().(*model.Binary)
		return ok && b.Op == "=" && last(p) == 0
	}
	return false
}

// readVariable evaluates a variable reference. Assignment targets
// evaluate to the Variable itself.
func (s *Scheduler) readVariable(t *Transition, e *model.VarRef) absval.Value {
	ps := t.Local()
	top := ps.Top()
	target := isAssignTarget(top.Location)

	var v Variable
	if !e.Var.IsGlobal() {
		v = Local(ps.Functions(), e.Var)
	} else {
		qual := top.This
		if _, ok := top.Parent().Expression().(*model.Access); ok && top.Indices[len(top.Indices)-1] == 1 {
			qual = top.Value(1, 0).Value
		}
		var owner interface{} = Unknown
		if inst, ok := instanceOf(qual); ok {
			owner = inst
		}
		v = Global(owner, e.Var)
	}

	if target {
		if !v.IsQualified() {
			return absval.Undetermined
		}
		return absval.Of(v)
	}
	t.addRead(v)
	if !v.IsQualified() || !s.tracks(v) {
		return absval.Undetermined
	}
	var (
		x  absval.Value
		ok bool
	)
	if v.Kind == LocalVar {
		x, ok = ps.Local(v)
	} else {
		x, ok = t.State.Global.Value(v)
	}
	if !ok {
		return absval.Undetermined
	}
	return x
}

func (s *Scheduler) store(t *Transition, v Variable, x absval.Value) {
	if !s.tracks(v) {
		return
	}
	if v.Kind == LocalVar {
		t.Local().SetLocal(v, x)
	} else {
		t.State.Global.SetValue(v, x)
	}
}

// aggregate computes the result of an expression whose children have
// all been evaluated.
func (s *Scheduler) aggregate(t *Transition, e model.Expression) (absval.Value, error) {
	top := t.Local().top()
	child := func(i int) absval.Value { return top.Value(0, i).Value }
	switch e := e.(type) {
	case *model.Unary:
		return absval.ApplyUnary(e.Op, child(0)), nil
	case *model.Binary:
		switch e.Op {
		case "=":
			target := child(0)
			if !target.IsDetermined() {
				return absval.Undetermined, precisionError(top.Location, "target of %v", e)
			}
			v := target.Get().(Variable)
			x := child(1)
			t.addWritten(v)
			s.store(t, v, x)
			return x, nil
		case "&", "|":
			if b, ok := eventList(e.Op == "|", child(0), child(1)); ok {
				return absval.Of(b), nil
			}
		}
		return absval.Apply(e.Op, child(0), child(1)), nil
	case *model.Access:
		return child(1), nil
	case *model.Bracket:
		return child(0), nil
	}
	return absval.Undetermined, nil
}

// eventList builds the blocker of "l op r" where r is an event and l
// an event or an event list.
func eventList(choice bool, l, r absval.Value) (*EventBlocker, bool) {
	if !l.IsDetermined() || !r.IsDetermined() {
		return nil, false
	}
	ev, ok := r.Get().(*model.Event)
	if !ok {
		return nil, false
	}
	switch x := l.Get().(type) {
	case *model.Event:
		return NewEventBlocker([]*model.Event{x, ev}, choice, nil), true
	case *EventBlocker:
		return x.join(choice, ev), true
	}
	return nil, false
}

func (s *Scheduler) ifElse(t *Transition, e *model.If, comingFrom int) (smallStep, error) {
	top := t.Local().top()
	nThen, nElse := len(e.Then), len(e.Else)

	// enterThen and enterElse start a branch of u, or leave e if the
	// branch is empty.
	enterThen := func(u *Transition, c absval.Value) {
		u.addCondition(e, c)
		if nThen == 0 {
			u.removeConditionsUntil(e)
			returnToParent(u.Local().top(), absval.Undetermined)
			return
		}
		u.Local().top().enter(1)
	}
	enterElse := func(u *Transition, c absval.Value) {
		if nElse == 0 {
			returnToParent(u.Local().top(), absval.Undetermined)
			return
		}
		u.addCondition(e, absval.Not(c))
		u.Local().top().enter(nThen + 1)
	}

	switch {
	case comingFrom == -1:
		top.enter(0)
		return one(e, comingFrom, t), nil

	case comingFrom == 0:
		c := top.Value(0, 0).Value
		b, ok := truth(c)
		if !ok {
			then := t.fork()
			enterThen(then, absval.Undetermined)
			enterElse(t, absval.Undetermined)
			return smallStep{expr: e, comingFrom: comingFrom, results: []*Transition{then, t}}, nil
		}
		if b {
			enterThen(t, absval.Bool(true))
		} else {
			enterElse(t, absval.Bool(false))
		}
		return one(e, comingFrom, t), nil

	case comingFrom <= nThen:
		if comingFrom == nThen {
			t.removeConditionsUntil(e)
			returnToParent(top, absval.Undetermined)
		} else {
			top.enter(comingFrom + 1)
		}
		return one(e, comingFrom, t), nil

	case comingFrom >= nThen+nElse:
		t.removeConditionsUntil(e)
		returnToParent(top, absval.Undetermined)
		st := one(e, comingFrom, t)
		st.repeating = true
		return st, nil
	}
	top.enter(comingFrom + 1)
	return one(e, comingFrom, t), nil
}

// whileLoop handles while (condition first) and do-while loops, both
// laid out as [Cond, Body...].
func (s *Scheduler) whileLoop(t *Transition, e model.Expression, body []model.Expression, condFirst bool, comingFrom int) (smallStep, error) {
	top := t.Local().top()
	st := one(e, comingFrom, t)
	switch {
	case comingFrom == -1:
		t.addCondition(e, absval.Bool(true))
		if condFirst || len(body) == 0 {
			top.enter(0)
			st.repeating = true
		} else {
			top.enter(1)
		}
		return st, nil

	case comingFrom == 0:
		c := top.Value(0, 0).Value
		enterBody := func(u *Transition) {
			if len(body) == 0 {
				u.Local().top().enter(0)
				st.repeating = true
				return
			}
			u.Local().top().enter(1)
		}
		b, ok := truth(c)
		switch {
		case !ok:
			loop := t.fork()
			loop.addCondition(e, c)
			enterBody(loop)
			t.removeConditionsUntil(e)
			returnToParent(top, absval.Undetermined)
			st.results = []*Transition{loop, t}
		case b:
			enterBody(t)
		default:
			t.removeConditionsUntil(e)
			returnToParent(top, absval.Undetermined)
		}
		return st, nil

	case comingFrom >= len(body):
		top.enter(0)
		st.repeating = true
		return st, nil
	}
	top.enter(comingFrom + 1)
	return st, nil
}

// forLoop handles for loops laid out as [Init, Cond, Body..., Post].
func (s *Scheduler) forLoop(t *Transition, e *model.For, comingFrom int) (smallStep, error) {
	top := t.Local().top()
	n := len(e.Body)
	st := one(e, comingFrom, t)
	switch {
	case comingFrom == -1:
		t.addCondition(e, absval.Bool(true))
		top.enter(0)

	case comingFrom == 0:
		top.enter(1)
		st.repeating = true

	case comingFrom == 1:
		c := top.Value(0, 1).Value
		b, ok := truth(c)
		switch {
		case !ok:
			loop := t.fork()
			loop.addCondition(e, c)
			loop.Local().top().enter(2)
			t.removeConditionsUntil(e)
			returnToParent(top, absval.Undetermined)
			st.results = []*Transition{loop, t}
		case b:
			top.enter(2)
		default:
			t.removeConditionsUntil(e)
			returnToParent(top, absval.Undetermined)
		}

	case comingFrom == n+2:
		top.enter(1)
		st.repeating = true

	default:
		top.enter(comingFrom + 1)
	}
	return st, nil
}

func (s *Scheduler) switchExpr(t *Transition, e *model.Switch, comingFrom int) (smallStep, error) {
	top := t.Local().top()
	n := len(e.Cases) + 1
	st := one(e, comingFrom, t)
	switch {
	case comingFrom == -1:
		t.addCondition(e, absval.Bool(true))
		top.enter(0)
	case comingFrom == n-1:
		t.removeConditionsUntil(e)
		returnToParent(top, absval.Undetermined)
		st.repeating = true
	case comingFrom == 0:
		top.enter(1)
	default:
		top.enter(comingFrom + 1)
		st.repeating = true
	}
	return st, nil
}

// caseExpr evaluates a case label and body. A case evaluates to true
// if its body ran, which lets the next case fall through.
func (s *Scheduler) caseExpr(t *Transition, e *model.Case, comingFrom int) (smallStep, error) {
	top := t.Local().top()
	n := len(e.Children())
	bodyStart := 1
	if e.IsDefault() {
		bodyStart = 0
	}
	// enterBody runs the body of u's case, or leaves it if it is empty.
	enterBody := func(u *Transition) {
		if len(e.Body) == 0 {
			returnToParent(u.Local().top(), absval.Bool(true))
			return
		}
		u.Local().top().enter(bodyStart)
	}

	switch {
	case comingFrom == -1:
		me := top.Indices[len(top.Indices)-1]
		fallingThrough := false
		if me > 1 {
			prev := top.Value(1, me-1)
			fallingThrough, _ = truth(prev.Value)
		}
		if fallingThrough || e.IsDefault() {
			enterBody(t)
		} else {
			top.enter(0)
		}
		return one(e, comingFrom, t), nil

	case comingFrom == 0 && !e.IsDefault():
		eq := absval.Apply("==", top.Value(1, 0).Value, top.Value(0, 0).Value)
		b, ok := truth(eq)
		switch {
		case !ok:
			into := t.fork()
			into.addCondition(e, eq)
			enterBody(into)
			t.addCondition(e, absval.Not(eq))
			returnToParent(top, absval.Bool(false))
			return smallStep{expr: e, comingFrom: comingFrom, results: []*Transition{into, t}}, nil
		case b:
			enterBody(t)
		default:
			returnToParent(top, absval.Bool(false))
		}
		return one(e, comingFrom, t), nil

	case comingFrom == n-1:
		returnToParent(top, absval.Bool(true))
	default:
		top.enter(comingFrom + 1)
	}
	return one(e, comingFrom, t), nil
}

// targeted reports whether x is the innermost candidate for a break or
// continue with the given label.
func targeted(x model.Expression, label string, isBreak bool) bool {
	l, ok := model.Loop(x)
	if !ok {
		sw, isSwitch := x.(*model.Switch)
		if !isBreak || !isSwitch {
			return false
		}
		l = sw.Label
	}
	return label == "" || label == l
}

// findTarget returns how many levels above the current expression the
// target of a break or continue is.
func findTarget(top *Frame, label string, isBreak bool) (int, model.Expression, error) {
	for levels := 1; levels <= len(top.Indices); levels++ {
		x := top.Function.At(top.Indices[:len(top.Indices)-levels])
		if x == nil {
			break
		}
		if targeted(x, label, isBreak) {
			return levels, x, nil
		}
	}
	return 0, nil, fmt.Errorf("%s: no enclosing statement for break or continue %q", top.Location, label)
}

func (s *Scheduler) breakExpr(t *Transition, e *model.Break, comingFrom int) (smallStep, error) {
	top := t.Local().top()
	levels, target, err := findTarget(top, e.Label, true)
	if err != nil {
		return smallStep{}, err
	}
	t.removeConditionsUntil(target)
	idx := top.unwind(levels + 1)
	top.ComingFrom = idx
	top.set(idx, Slot{})
	return one(e, comingFrom, t), nil
}

func (s *Scheduler) continueExpr(t *Transition, e *model.Continue, comingFrom int) (smallStep, error) {
	top := t.Local().top()
	levels, target, err := findTarget(top, e.Label, false)
	if err != nil {
		return smallStep{}, err
	}
	t.removeConditionsAbove(target)
	top.unwind(levels)
	if f, ok := target.(*model.For); ok {
		top.ComingFrom = len(f.Body) + 1
	} else {
		top.ComingFrom = len(target.Children()) - 1
	}
	return one(e, comingFrom, t), nil
}

func (s *Scheduler) notify(t *Transition, e *model.Notify, comingFrom int) (smallStep, error) {
	top := t.Local().top()
	n := len(e.Delay)
	if comingFrom < n {
		top.enter(comingFrom + 1)
		return one(e, comingFrom, t), nil
	}
	ev, ok := determined[*model.Event](top.Value(0, 0).Value)
	if !ok {
		return smallStep{}, precisionError(top.Location, "notified event %v", e.Event)
	}
	var delay TimedBlocker
	switch n {
	case 0:
	case 1:
		p := top.Value(0, 1).Value
		if !p.IsDetermined() {
			return smallStep{}, precisionError(top.Location, "notification delay %v", e.Delay[0])
		}
		switch x := p.Get().(type) {
		case TimedBlocker:
			delay = x
		case model.TimeUnit:
			if x != model.ZeroTime {
				return smallStep{}, fmt.Errorf("%s: notification with a single time unit must be SC_ZERO_TIME", top.Location)
			}
			delay = Delta
		default:
			return smallStep{}, fmt.Errorf("%s: invalid notification delay %v", top.Location, p)
		}
	default:
		amount, ok1 := determined[int](top.Value(0, 1).Value)
		unit, ok2 := determined[model.TimeUnit](top.Value(0, 2).Value)
		if !ok1 || !ok2 {
			return smallStep{}, precisionError(top.Location, "notification delay %v", e)
		}
		var err error
		if delay, err = Time(amount, unit); err != nil {
			return smallStep{}, fmt.Errorf("%s: %v", top.Location, err)
		}
	}
	if err := s.notifyEvents(t, ev, delay); err != nil {
		return smallStep{}, err
	}
	returnToParent(t.Local().top(), absval.Undetermined)
	return one(e, comingFrom, t), nil
}

// determined returns the payload of v if it is determined and of type
// T.
func determined[T any](v absval.Value) (T, bool) {
	var zero T
	if !v.IsDetermined() {
		return zero, false
	}
	x, ok := v.Get().(T)
	return x, ok
}

func (s *Scheduler) call(t *Transition, e *model.Call, comingFrom int) (smallStep, error) {
	ps := t.Local()
	top := ps.top()
	n := len(e.Args)
	if comingFrom < n-1 {
		top.enter(comingFrom + 1)
		return one(e, comingFrom, t), nil
	}
	if comingFrom >= n {
		returnToParent(top, top.Value(0, n).Value)
		return one(e, comingFrom, t), nil
	}

	this := top.This
	if _, ok := top.Parent().Expression().(*model.Access); ok && top.Indices[len(top.Indices)-1] == 1 {
		this = top.Value(1, 0).Value
	}

	switch e.Func {
	case model.Wait:
		return s.wait(t, e, comingFrom)
	case model.RequestUpdate:
		inst, ok := instanceOf(this)
		if !ok {
			return smallStep{}, precisionError(top.Location, "receiver of %v", e)
		}
		t.State.Global.RequestUpdate(inst)
		returnToParent(top, absval.Undetermined)
		return one(e, comingFrom, t), nil
	}

	args := make([]absval.Value, n)
	for i := range args {
		args[i] = top.Value(0, i).Value
	}
	ps.push(newFrame(e.Func, this))
	t.enterCall()
	s.functionCalled(t, e, args)
	return one(e, comingFrom, t), nil
}

// functionCalled binds the parameters of the frame just pushed.
func (s *Scheduler) functionCalled(t *Transition, e *model.Call, args []absval.Value) {
	ps := t.Local()
	fns := ps.Functions()
	for i, p := range e.Func.Params {
		v := Local(fns, p)
		t.addWritten(v)
		if i < len(args) {
			s.store(t, v, args[i])
		}
	}
}

// functionReturned drops the parameter values of the frame just
// popped.
func (s *Scheduler) functionReturned(t *Transition, e *model.Call) {
	ps := t.Local()
	fns := append(ps.Functions(), e.Func)
	for _, p := range e.Func.Params {
		if _, ok := ps.Local(Local(fns, p)); ok {
			ps.deleteLocal(Local(fns, p))
		}
	}
}

func (s *Scheduler) wait(t *Transition, e *model.Call, comingFrom int) (smallStep, error) {
	ps := t.Local()
	top := ps.top()
	if t.Proc == nil {
		return smallStep{}, fmt.Errorf("%s: wait outside of a process", top.Location)
	}
	args := make([]absval.Value, len(e.Args))
	for i := range args {
		args[i] = top.Value(0, i).Value
		if !args[i].IsDetermined() {
			return smallStep{}, precisionError(top.Location, "argument %d of %v", i, e)
		}
	}
	b, err := waitBlocker(t.Proc, args)
	if err != nil {
		return smallStep{}, fmt.Errorf("%s: %v", top.Location, err)
	}
	returnToParent(top, absval.Undetermined)
	ps.SetBlocker(b)
	st := one(e, comingFrom, t)
	st.end = true
	return st, nil
}

// waitBlocker interprets the arguments of a wait call.
func waitBlocker(p *Process, args []absval.Value) (Blocker, error) {
	get := func(i int) interface{} { return args[i].Get() }
	single := func(x interface{}) (Blocker, bool) {
		switch x := x.(type) {
		case *EventBlocker:
			return x, true
		case *model.Event:
			return NewEventBlocker([]*model.Event{x}, true, nil), true
		case TimedBlocker:
			return x, true
		case model.TimeUnit:
			if x == model.ZeroTime {
				return Delta, true
			}
		}
		return nil, false
	}
	withTimeout := func(x interface{}, timeout TimedBlocker) (Blocker, bool) {
		switch x := x.(type) {
		case *model.Event:
			return NewEventBlocker([]*model.Event{x}, true, timeout), true
		case *EventBlocker:
			return x.WithTimeout(timeout), true
		}
		return nil, false
	}
	amountUnit := func(i int) (TimedBlocker, bool) {
		amount, ok1 := get(i).(int)
		unit, ok2 := get(i + 1).(model.TimeUnit)
		if !ok1 || !ok2 {
			return nil, false
		}
		d, err := Time(amount, unit)
		return d, err == nil
	}

	switch len(args) {
	case 0:
		return NewEventBlocker(p.Sensitivity, true, nil), nil
	case 1:
		if b, ok := single(get(0)); ok {
			return b, nil
		}
	case 2:
		if d, ok := amountUnit(0); ok {
			return d, nil
		}
		if timeout, ok := get(0).(TimedBlocker); ok {
			if b, ok := withTimeout(get(1), timeout); ok {
				return b, nil
			}
		}
	case 3:
		if d, ok := amountUnit(0); ok {
			if b, ok := withTimeout(get(2), d); ok {
				return b, nil
			}
		}
	}
	return nil, fmt.Errorf("invalid arguments to wait: %v", args)
}
