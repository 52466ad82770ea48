package explore

import (
	"github.com/yangshenyi/SDG4Go/absval"
	"github.com/yangshenyi/SDG4Go/model"
)

// Information is the composable payload attached to every transition.
// Compose must be associative, with the handler's Neutral value as a
// two-sided identity. Compose never modifies a locked receiver; it may
// modify and return an unlocked one.
type Information interface {
	Compose(other Information) Information
	Lock()
	IsLocked() bool
	UnlockedClone() Information
	Key() string
}

// A Handler computes the information of transitions while they are
// explored. The crawler calls StartOfCode whenever code starts running
// for a transition, Announce before and Evaluated after every small
// step on an expression, and Finalize once the transition is complete.
// The Waited hooks run on scheduler transitions when a process becomes
// ready. Handlers must be safe for concurrent use; per-step scratch
// lives in the Transition.
type Handler interface {
	Neutral() Information
	StartOfCode(t *Transition) (Information, error)
	Announce(t *Transition, e model.Expression) error
	Evaluated(t *Transition, e model.Expression, comingFrom int) (Information, error)
	Finalize(info Information) Information
	WaitedForDelta(t *Transition, p *Process) Information
	WaitedForTime(t *Transition, p *Process) Information
	WaitedForEvents(t *Transition, p *Process, events []*model.Event, before *EventBlocker) (Information, error)
}

// Accesses is implemented by informations that know which variables a
// transition reads and writes. Read and Written return false for
// variables that are never accessed, true for variables that are
// always accessed and Undetermined otherwise.
type Accesses interface {
	Read(v Variable) absval.Value
	Written(v Variable) absval.Value
	Variables() []Variable
}

// NoInformation carries nothing.
type NoInformation struct{}

func (NoInformation) Compose(Information) Information { return NoInformation{} }
func (NoInformation) Lock()                           {}
func (NoInformation) IsLocked() bool                  { return true }
func (NoInformation) UnlockedClone() Information      { return NoInformation{} }
func (NoInformation) Key() string                     { return "" }

// NoInformationHandler ignores every event.
type NoInformationHandler struct{}

func (NoInformationHandler) Neutral() Information { return NoInformation{} }

func (NoInformationHandler) StartOfCode(t *Transition) (Information, error) { return t.Info, nil }

func (NoInformationHandler) Announce(*Transition, model.Expression) error { return nil }

func (NoInformationHandler) Evaluated(t *Transition, _ model.Expression, _ int) (Information, error) {
	return t.Info, nil
}

func (NoInformationHandler) Finalize(info Information) Information { return info }

func (NoInformationHandler) WaitedForDelta(t *Transition, _ *Process) Information { return t.Info }

func (NoInformationHandler) WaitedForTime(t *Transition, _ *Process) Information { return t.Info }

func (NoInformationHandler) WaitedForEvents(t *Transition, _ *Process, _ []*model.Event, _ *EventBlocker) (Information, error) {
	return t.Info, nil
}
