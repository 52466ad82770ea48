package explore

import "github.com/yangshenyi/SDG4Go/model"

// TwoInformation pairs the informations of two handlers.
type TwoInformation struct {
	First, Second Information
}

func (i TwoInformation) Compose(other Information) Information {
	o := other.(TwoInformation)
	return TwoInformation{i.First.Compose(o.First), i.Second.Compose(o.Second)}
}

func (i TwoInformation) Lock() {
	i.First.Lock()
	i.Second.Lock()
}

func (i TwoInformation) IsLocked() bool { return i.First.IsLocked() && i.Second.IsLocked() }

func (i TwoInformation) UnlockedClone() Information {
	return TwoInformation{i.First.UnlockedClone(), i.Second.UnlockedClone()}
}

func (i TwoInformation) Key() string { return i.First.Key() + "\x00" + i.Second.Key() }

// TwoHandler runs two handlers side by side.
type TwoHandler struct {
	First, Second Handler
}

func (h TwoHandler) Neutral() Information {
	return TwoInformation{h.First.Neutral(), h.Second.Neutral()}
}

func split(t *Transition) (*Transition, *Transition) {
	info := t.Info.(TwoInformation)
	return t.WithInfo(info.First), t.WithInfo(info.Second)
}

func (h TwoHandler) StartOfCode(t *Transition) (Information, error) {
	a, b := split(t)
	x, err := h.First.StartOfCode(a)
	if err != nil {
		return nil, err
	}
	y, err := h.Second.StartOfCode(b)
	if err != nil {
		return nil, err
	}
	return TwoInformation{x, y}, nil
}

func (h TwoHandler) Announce(t *Transition, e model.Expression) error {
	a, b := split(t)
	if err := h.First.Announce(a, e); err != nil {
		return err
	}
	return h.Second.Announce(b, e)
}

func (h TwoHandler) Evaluated(t *Transition, e model.Expression, comingFrom int) (Information, error) {
	a, b := split(t)
	x, err := h.First.Evaluated(a, e, comingFrom)
	if err != nil {
		return nil, err
	}
	y, err := h.Second.Evaluated(b, e, comingFrom)
	if err != nil {
		return nil, err
	}
	return TwoInformation{x, y}, nil
}

func (h TwoHandler) Finalize(info Information) Information {
	i := info.(TwoInformation)
	return TwoInformation{h.First.Finalize(i.First), h.Second.Finalize(i.Second)}
}

func (h TwoHandler) WaitedForDelta(t *Transition, p *Process) Information {
	a, b := split(t)
	return TwoInformation{h.First.WaitedForDelta(a, p), h.Second.WaitedForDelta(b, p)}
}

func (h TwoHandler) WaitedForTime(t *Transition, p *Process) Information {
	a, b := split(t)
	return TwoInformation{h.First.WaitedForTime(a, p), h.Second.WaitedForTime(b, p)}
}

func (h TwoHandler) WaitedForEvents(t *Transition, p *Process, events []*model.Event, before *EventBlocker) (Information, error) {
	a, b := split(t)
	x, err := h.First.WaitedForEvents(a, p, events, before)
	if err != nil {
		return nil, err
	}
	y, err := h.Second.WaitedForEvents(b, p, events, before)
	if err != nil {
		return nil, err
	}
	return TwoInformation{x, y}, nil
}
