package pdg

import (
	"fmt"
	"sort"

	"github.com/yangshenyi/SDG4Go/explore"
	"github.com/yangshenyi/SDG4Go/model"
)

func sortVariables(vs []explore.Variable) {
	sort.Slice(vs, func(a, b int) bool { return vs[a].String() < vs[b].String() })
}

// announceNotify remembers the event of a notification about to be
// performed; the evaluation consumes it.
func (h *Handler) announceNotify(t *explore.Transition, e model.Expression) error {
	top := t.Local().Top()
	if _, ok := e.(*model.Notify); !ok || top.ComingFrom != len(e.Children())-1 {
		return nil
	}
	v := top.Value(0, 0).Value
	if !v.IsDetermined() {
		return &explore.PrecisionError{What: "notified event", Where: top.Location.String()}
	}
	ev, ok := v.Get().(*model.Event)
	if !ok {
		return fmt.Errorf("%s: notified value %v is not an event", top.Location, v)
	}
	t.SetAnnouncedEvent(ev)
	return nil
}

// waitTrigger lets a wait define the block trigger of the location
// following it.
func (h *Handler) waitTrigger(s *step) {
	resume := append([]explore.Location(nil), s.stack...)
	top := resume[len(resume)-1]
	resume[len(resume)-1] = top.Parent().Child(s.idx + 1)
	s.written = addVar(s.written, explore.BlockTriggerOf(s.t.Origin, resume))
}

// requestUpdateTrigger lets request_update define the block trigger of
// the channel's update routine.
func (h *Handler) requestUpdateTrigger(s *step) error {
	top := s.t.Local().Top()
	this := top.This
	if a, ok := s.parent.(*model.Access); ok && a.Member == s.e {
		this = top.Value(0, 0).Value
	}
	if !this.IsDetermined() {
		return &explore.PrecisionError{What: "receiver of request_update", Where: s.stack[len(s.stack)-1].String()}
	}
	inst, ok := this.Get().(*model.Instance)
	if !ok {
		return fmt.Errorf("%s: request_update on %v, which is not an instance", s.stack[len(s.stack)-1], this)
	}
	update := inst.Class.Method("update")
	if update == nil {
		return fmt.Errorf("%s: class %s has no update routine", s.stack[len(s.stack)-1], inst.Class.Name)
	}
	s.written = addVar(s.written, explore.BlockTriggerOf(inst, []explore.Location{{Function: update}}))
	return nil
}

// notifyTrigger lets a delayed notification define the event's
// trigger. Immediate notifications were handled when the waiting
// processes woke up.
func (h *Handler) notifyTrigger(s *step, e *model.Notify) {
	ev := s.t.AnnouncedEvent()
	if len(e.Delay) == 0 {
		if n, ok := s.info.index[stmtNode(Statement, s.statement)]; ok {
			s.node = n
		}
		return
	}
	s.statementNode()
	if ev != nil {
		s.written = addVar(s.written, explore.EventTriggerOf(ev))
	}
}

// wakeup records that p resumes because of events. The wakeup reads
// the event triggers, or is the notifying statement itself for an
// immediate notification, and defines the block trigger of the
// location p resumes at.
func (h *Handler) wakeup(t *explore.Transition, p *explore.Process, events []*model.Event, before *explore.EventBlocker) explore.Information {
	info := unlocked(t.Info)
	var n nodeid
	if t.AnnouncedEvent() != nil {
		n = info.statement(StatementID{This: t.Origin, Stack: t.Announced()})
	} else {
		n = info.statement(StatementID{Process: p})
		for _, e := range events {
			if before.Contains(e) {
				info.readBy(explore.EventTriggerOf(e), n)
			}
		}
	}
	resume := entryStack(t.State.Procs[p.ID])
	info.addDefinition(explore.BlockTriggerOf(p.Instance, resume), n)
	return info
}
