package explore

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/yangshenyi/SDG4Go/absval"
	"github.com/yangshenyi/SDG4Go/model"
)

// ErrAborted is returned by steps running while or after Abort is
// called.
var ErrAborted = errors.New("exploration aborted")

// StopMode selects what sc_stop does to the rest of the simulation.
type StopMode int

const (
	// StopFinishImmediate stops every process at once.
	StopFinishImmediate StopMode = iota
	// StopFinishDelta lets processes that are ready or waiting for
	// events finish the current delta cycle.
	StopFinishDelta
)

// Config configures a Scheduler.
type Config struct {
	Handler  Handler // nil means NoInformationHandler
	StopMode StopMode

	// TrackEvent reports whether notifications of an event are
	// represented in the state. Untracked events are notified
	// nowhere and their waiters may always resume. nil tracks every
	// event.
	TrackEvent func(*model.Event) bool

	// TrackVariable reports whether the value of a variable is kept
	// in the state. nil tracks nothing.
	TrackVariable func(Variable) bool

	// If Log is non-nil, log messages are written to it. It must be
	// safe for concurrent use if the exploration runs on several
	// workers.
	Log io.Writer
}

// A Scheduler computes the transitions of a system under the
// evaluate-update-advance semantics of delta cycles.
type Scheduler struct {
	sys     *model.System
	procs   []*Process
	h       Handler
	cfg     Config
	log     io.Writer
	aborted atomic.Bool
}

// NewScheduler validates sys and returns a scheduler for it.
func NewScheduler(sys *model.System, cfg Config) (*Scheduler, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	s := &Scheduler{sys: sys, h: cfg.Handler, cfg: cfg, log: cfg.Log}
	if s.h == nil {
		s.h = NoInformationHandler{}
	}
	for i, p := range sys.Processes {
		s.procs = append(s.procs, &Process{Process: p, ID: i, s: s})
	}
	return s, nil
}

// Processes returns the processes in ID order.
func (s *Scheduler) Processes() []*Process { return s.procs }

// Handler returns the information handler in use.
func (s *Scheduler) Handler() Handler { return s.h }

// Abort makes running and future steps fail with ErrAborted.
func (s *Scheduler) Abort() { s.aborted.Store(true) }

func (s *Scheduler) trackEvent(e *model.Event) bool {
	return s.cfg.TrackEvent == nil || s.cfg.TrackEvent(e)
}

func (s *Scheduler) tracks(v Variable) bool {
	return s.cfg.TrackVariable != nil && s.cfg.TrackVariable(v)
}

func (s *Scheduler) stoppedImmediately(st *State) bool {
	return st.Global.Stopped() && s.cfg.StopMode == StopFinishImmediate
}

// ReadyProcesses returns the processes that may run from st: those
// without blocker, and those waiting for events that may have been
// notified without being tracked.
func (s *Scheduler) ReadyProcesses(st *State) []*Process {
	if s.stoppedImmediately(st) {
		return nil
	}
	var ready []*Process
	for _, p := range s.procs {
		switch b := st.Procs[p.ID].Blocker().(type) {
		case nil:
			ready = append(ready, p)
		case *EventBlocker:
			tracked := 0
			for _, e := range b.Events {
				if s.trackEvent(e) {
					tracked++
				}
			}
			if (b.Choice && tracked < len(b.Events)) || (!b.Choice && tracked == 0) {
				ready = append(ready, p)
			}
		}
	}
	return ready
}

// CanEndEvaluation reports whether the evaluation phase may end in st,
// which is the case once no process is ready.
func (s *Scheduler) CanEndEvaluation(st *State) bool {
	if s.stoppedImmediately(st) {
		return false
	}
	for _, ps := range st.Procs {
		if ps.Blocker() == nil {
			return false
		}
	}
	return true
}

// Successors returns every transition leaving st. Failing steps do not
// hide the successors of the others; their errors are joined, each
// naming the step that failed.
func (s *Scheduler) Successors(st *State) ([]*Transition, error) {
	var (
		out  []*Transition
		errs []error
	)
	if s.CanEndEvaluation(st) {
		ts, err := s.EndEvaluation(st)
		out = append(out, ts...)
		if err != nil {
			errs = append(errs, fmt.Errorf("end of evaluation: %w", err))
		}
	}
	for _, p := range s.ReadyProcesses(st) {
		ts, err := p.MakeStep(st)
		out = append(out, ts...)
		if err != nil {
			errs = append(errs, fmt.Errorf("step of %s: %w", p, err))
		}
	}
	return out, errors.Join(errs...)
}

// EndEvaluation runs the update phase and advances the simulation to
// the next delta cycle or point in time.
func (s *Scheduler) EndEvaluation(from *State) ([]*Transition, error) {
	if s.aborted.Load() {
		return nil, ErrAborted
	}
	if s.log != nil {
		fmt.Fprintf(s.log, "\tend of evaluation phase\n")
	}
	t := newTransition(from.UnlockedClone(), s.h.Neutral(), nil, nil)
	updated, err := s.updateCycle(t)
	if err != nil {
		return nil, err
	}
	var out []*Transition
	for _, u := range updated {
		r, err := s.advanceSimulation(u)
		if err != nil {
			return nil, err
		}
		if r == nil {
			r = u
		}
		out = append(out, r)
	}
	s.finalize(out)
	return out, nil
}

// updateCycle runs the requested update routines one after the other
// on every branch produced so far.
func (s *Scheduler) updateCycle(t *Transition) ([]*Transition, error) {
	current := []*Transition{t}
	for _, inst := range t.State.Global.takeUpdates() {
		fn := inst.Class.Method("update")
		if fn == nil {
			return nil, fmt.Errorf("update requested for %s, whose class has no update routine", inst)
		}
		var next []*Transition
		for _, c := range current {
			c.State.Update = NewProcessState(nil, newFrame(fn, absval.Of(inst)))
			c.Origin = inst
			var err error
			if c.Info, err = s.h.StartOfCode(c); err != nil {
				return nil, err
			}
			rs, err := s.crawl(c)
			if err != nil {
				return nil, err
			}
			for _, r := range rs {
				r.State.Update = nil
				r.Origin = nil
			}
			next = append(next, rs...)
		}
		current = next
	}
	return current, nil
}

// advanceSimulation wakes the processes of the next delta cycle, or
// lets time pass up to the earliest timed wakeup. It returns nil if
// nothing can happen anymore.
func (s *Scheduler) advanceSimulation(t *Transition) (*Transition, error) {
	st := t.State
	if st.Global.Stopped() {
		return t, nil
	}
	var (
		deltaWaiting, timeWaiting, eventWaiting []*Process
		earliest                                TimedBlocker
	)
	for _, p := range s.procs {
		switch b := st.Procs[p.ID].Blocker().(type) {
		case deltaBlocker:
			deltaWaiting = append(deltaWaiting, p)
		case RealTime:
			timeWaiting = append(timeWaiting, p)
			earliest = earlier(earliest, b)
		case *EventBlocker:
			eventWaiting = append(eventWaiting, p)
			switch to := b.Timeout.(type) {
			case deltaBlocker:
				deltaWaiting = append(deltaWaiting, p)
			case RealTime:
				timeWaiting = append(timeWaiting, p)
				earliest = earlier(earliest, to)
			}
		}
	}
	var deltaEvents []*model.Event
	for _, e := range st.Global.PendingEvents() {
		switch d := st.Global.Pending(e).(type) {
		case deltaBlocker:
			deltaEvents = append(deltaEvents, e)
		case RealTime:
			earliest = earlier(earliest, d)
		}
	}

	switch {
	case len(deltaWaiting) > 0 || len(deltaEvents) > 0:
		return t, s.doDeltaCycle(t, deltaWaiting, eventWaiting, deltaEvents)
	case earliest == nil:
		return nil, nil
	}
	return t, s.letTimePass(t, earliest.(RealTime), timeWaiting, eventWaiting)
}

func (s *Scheduler) doDeltaCycle(t *Transition, deltaWaiting, eventWaiting []*Process, events []*model.Event) error {
	g := t.State.Global
	for _, e := range events {
		g.setPending(e, nil)
	}
	for _, p := range eventWaiting {
		if err := s.notifyEventsForProcess(t, p, events); err != nil {
			return err
		}
	}
	for _, p := range deltaWaiting {
		ps := t.State.Procs[p.ID]
		if ps.Blocker() == nil {
			continue
		}
		ps.SetBlocker(nil)
		t.Info = s.h.WaitedForDelta(t, p)
	}
	return nil
}

func (s *Scheduler) letTimePass(t *Transition, earliest RealTime, timeWaiting, eventWaiting []*Process) error {
	g := t.State.Global
	var notified []*model.Event
	for _, e := range g.PendingEvents() {
		d, ok := g.Pending(e).(RealTime)
		if !ok {
			continue
		}
		if d == earliest {
			notified = append(notified, e)
			g.setPending(e, nil)
		} else {
			g.setPending(e, d.Sub(earliest))
		}
	}
	if len(notified) > 0 {
		for _, p := range eventWaiting {
			if err := s.notifyEventsForProcess(t, p, notified); err != nil {
				return err
			}
		}
	}
	for _, p := range timeWaiting {
		ps := t.State.Procs[p.ID]
		var timer RealTime
		switch b := ps.Blocker().(type) {
		case nil:
			continue
		case *EventBlocker:
			timer = b.Timeout.(RealTime)
		case RealTime:
			timer = b
		}
		if timer == earliest {
			ps.SetBlocker(nil)
		} else if eb, ok := ps.Blocker().(*EventBlocker); ok {
			ps.SetBlocker(eb.WithTimeout(timer.Sub(earliest)))
			continue
		} else {
			ps.SetBlocker(timer.Sub(earliest))
			continue
		}
		t.Info = s.h.WaitedForTime(t, p)
	}
	return nil
}

// notifyEventsForProcess removes the notified events from the blocker
// of p, waking it if its wait is satisfied.
func (s *Scheduler) notifyEventsForProcess(t *Transition, p *Process, notified []*model.Event) error {
	ps := t.State.Procs[p.ID]
	before, ok := ps.Blocker().(*EventBlocker)
	if !ok {
		return nil
	}
	var remaining []*model.Event
	for _, e := range before.Events {
		if !containsEvent(notified, e) {
			remaining = append(remaining, e)
		}
	}
	if len(remaining) == len(before.Events) {
		return nil
	}
	if len(remaining) == 0 || before.Choice {
		ps.SetBlocker(nil)
	} else {
		ps.SetBlocker(before.WithEvents(remaining))
	}
	var woken []*model.Event
	for _, e := range before.Events {
		if containsEvent(notified, e) {
			woken = append(woken, e)
		}
	}
	info, err := s.h.WaitedForEvents(t, p, woken, before)
	if err != nil {
		return err
	}
	t.Info = info
	return nil
}

func containsEvent(es []*model.Event, e *model.Event) bool {
	for _, x := range es {
		if x == e {
			return true
		}
	}
	return false
}

// notifyEvents handles e.notify(delay). Immediate notifications wake
// the waiting processes at once; delayed ones are kept pending, an
// earlier pending notification overriding a later one.
func (s *Scheduler) notifyEvents(t *Transition, e *model.Event, delay TimedBlocker) error {
	g := t.State.Global
	if s.stoppedImmediately(t.State) || !s.trackEvent(e) {
		return nil
	}
	if delay != nil {
		g.setPending(e, earlier(g.Pending(e), delay))
		return nil
	}
	g.setPending(e, nil)
	for _, p := range s.procs {
		if t.Proc != nil && p.ID == t.Proc.ID {
			continue
		}
		if err := s.notifyEventsForProcess(t, p, []*model.Event{e}); err != nil {
			return err
		}
	}
	return nil
}

// stopSimulation handles sc_stop.
func (s *Scheduler) stopSimulation(t *Transition) {
	t.State.Global.stop()
	for _, ps := range t.State.Procs {
		if s.cfg.StopMode == StopFinishDelta {
			switch ps.Blocker().(type) {
			case nil, *EventBlocker:
				continue
			}
		}
		ps.SetBlocker(Terminated)
	}
}
