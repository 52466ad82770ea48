package explore

import (
	"fmt"

	"github.com/yangshenyi/SDG4Go/absval"
	"github.com/yangshenyi/SDG4Go/model"
)

// A Process is a model process registered with a scheduler. ID is its
// index in State.Procs.
type Process struct {
	*model.Process
	ID int

	s *Scheduler
}

// MakeStep runs p from the state from until it blocks or terminates.
// It returns one transition per distinct reachable resulting state.
// from is not modified.
func (p *Process) MakeStep(from *State) ([]*Transition, error) {
	s := p.s
	if s.aborted.Load() {
		return nil, ErrAborted
	}
	t := newTransition(from.UnlockedClone(), s.h.Neutral(), p, p.Instance)
	var err error
	if t.Info, err = s.h.StartOfCode(t); err != nil {
		return nil, err
	}
	if s.log != nil {
		fmt.Fprintf(s.log, "\tstep of %s\n", p)
	}
	return s.runStep(t, true)
}

// transitionQueue is an insertion-ordered set of transitions keyed by
// state. Adding a transition for a known state composes the
// informations.
type transitionQueue struct {
	order []string
	byKey map[string]*Transition
}

func newTransitionQueue() *transitionQueue {
	return &transitionQueue{byKey: make(map[string]*Transition)}
}

func (q *transitionQueue) len() int { return len(q.order) }

func (q *transitionQueue) add(t *Transition) {
	k := t.State.Key()
	if old, ok := q.byKey[k]; ok {
		old.Info = old.Info.Compose(t.Info)
		return
	}
	q.order = append(q.order, k)
	q.byKey[k] = t
}

func (q *transitionQueue) pop() *Transition {
	k := q.order[0]
	q.order = q.order[1:]
	t := q.byKey[k]
	delete(q.byKey, k)
	return t
}

func (q *transitionQueue) list() []*Transition {
	r := make([]*Transition, len(q.order))
	for i, k := range q.order {
		r[i] = q.byKey[k]
	}
	return r
}

// runStep crawls t small step by small step until every branch has
// ended. Branches reaching the same state are merged. Repeating
// evaluation points (loop heads and joins) are remembered with the
// information reaching them; a branch that reaches one again without
// new information is dropped, which makes loops terminate.
func (s *Scheduler) runStep(t *Transition, finalize bool) ([]*Transition, error) {
	results, err := s.crawl(t)
	if err != nil {
		return nil, err
	}
	if finalize {
		s.finalize(results)
	}
	return results, nil
}

func (s *Scheduler) crawl(start *Transition) ([]*Transition, error) {
	toHandle := newTransitionQueue()
	toHandle.add(start)
	results := newTransitionQueue()
	seen := make(map[string]Information)

	for toHandle.len() > 0 {
		if s.aborted.Load() {
			return nil, ErrAborted
		}
		t := toHandle.pop()
		st, err := s.makeSmallStep(t)
		if err != nil {
			return nil, err
		}
		for _, r := range st.results {
			switch {
			case st.end:
				results.add(r)
			case st.repeating:
				r.State.Lock()
				r.Info.Lock()
				k := r.State.Key()
				merged := r.Info
				if old, ok := seen[k]; ok {
					merged = old.Compose(r.Info)
					merged.Lock()
					if merged.Key() == old.Key() {
						continue
					}
				}
				seen[k] = merged
				toHandle.add(&Transition{
					State:  r.State.UnlockedClone(),
					Info:   merged.UnlockedClone(),
					Proc:   r.Proc,
					Origin: r.Origin,
					scope:  r.scope,
				})
			default:
				toHandle.add(r)
			}
		}
	}
	return results.list(), nil
}

func (s *Scheduler) finalize(ts []*Transition) {
	for _, t := range ts {
		t.Info = s.h.Finalize(t.Info)
		t.endStep()
		t.State.Lock()
		t.Info.Lock()
	}
}

// InitialState returns the state before any process ran: every
// process at the start of its function, or waiting for its
// sensitivity if it is not initialized, and the tracked globals at
// their initial values.
func (s *Scheduler) InitialState() *State {
	st := &State{Global: NewGlobalState(), Procs: make([]*ProcessState, len(s.procs))}
	for i, p := range s.procs {
		frame := newFrame(p.Function, absval.Of(p.Instance))
		if p.DontInitialize && len(p.Sensitivity) > 0 {
			st.Procs[i] = NewProcessState(NewEventBlocker(p.Sensitivity, true, nil), frame)
		} else {
			st.Procs[i] = NewProcessState(nil, frame)
		}
	}
	for _, v := range s.sys.Globals {
		s.initGlobal(st.Global, nil, v)
	}
	for _, inst := range s.sys.Instances {
		for _, f := range inst.Class.Fields {
			s.initGlobal(st.Global, inst, f)
		}
	}
	st.Lock()
	return st
}

func (s *Scheduler) initGlobal(g *GlobalState, owner *model.Instance, decl *model.Var) {
	if decl.Init == nil {
		return
	}
	v := Global(owner, decl)
	if s.tracks(v) {
		g.SetValue(v, absval.Of(decl.Init))
	}
}
