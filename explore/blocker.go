package explore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yangshenyi/SDG4Go/model"
)

// A Blocker is what a process waits for. A nil Blocker means the
// process is ready.
type Blocker interface {
	String() string
	isBlocker()
}

// A TimedBlocker is a delay: Delta or a RealTime.
type TimedBlocker interface {
	Blocker
	isTimed()
}

type deltaBlocker struct{}

func (deltaBlocker) String() string { return "delta" }
func (deltaBlocker) isBlocker()     {}
func (deltaBlocker) isTimed()       {}

// Delta waits for the next delta cycle.
var Delta TimedBlocker = deltaBlocker{}

type terminated struct{}

func (terminated) String() string { return "terminated" }
func (terminated) isBlocker()     {}

// Terminated never becomes ready again.
var Terminated Blocker = terminated{}

// RealTime is a strictly positive amount of simulated time in
// femtoseconds.
type RealTime struct{ FS int64 }

func (RealTime) isBlocker() {}
func (RealTime) isTimed()   {}

func (t RealTime) String() string { return fmt.Sprintf("%dfs", t.FS) }

func (t RealTime) Less(u RealTime) bool { return t.FS < u.FS }

// Sub returns t-u. It panics unless u is shorter than t.
func (t RealTime) Sub(u RealTime) RealTime {
	if u.FS >= t.FS {
		panic(fmt.Sprintf("subtracting %v from %v", u, t))
	}
	return RealTime{t.FS - u.FS}
}

var unitFS = [...]int64{
	model.FS:  1,
	model.PS:  1e3,
	model.NS:  1e6,
	model.US:  1e9,
	model.MS:  1e12,
	model.SEC: 1e15,
}

// Time returns the delay of amount units; zero amounts and ZeroTime
// are Delta.
func Time(amount int, unit model.TimeUnit) (TimedBlocker, error) {
	if unit == model.ZeroTime || amount == 0 {
		return Delta, nil
	}
	if amount < 0 || unit < model.FS || unit > model.SEC {
		return nil, fmt.Errorf("invalid time %d %v", amount, unit)
	}
	return RealTime{int64(amount) * unitFS[unit]}, nil
}

// earlier returns the earlier of two delays; Delta is earlier than any
// RealTime and nil is later than anything.
func earlier(a, b TimedBlocker) TimedBlocker {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	ra, okA := a.(RealTime)
	rb, okB := b.(RealTime)
	switch {
	case !okA:
		return a
	case !okB:
		return b
	case rb.Less(ra):
		return b
	}
	return a
}

// An EventBlocker waits for events: for any of them if Choice is set,
// for all of them otherwise. A non-nil Timeout ends the wait early.
// EventBlockers are immutable; the With methods return copies.
type EventBlocker struct {
	Events  []*model.Event
	Choice  bool
	Timeout TimedBlocker
}

func (*EventBlocker) isBlocker() {}

// NewEventBlocker returns a blocker on the given events, sorted and
// deduplicated.
func NewEventBlocker(events []*model.Event, choice bool, timeout TimedBlocker) *EventBlocker {
	evs := append([]*model.Event(nil), events...)
	sort.Slice(evs, func(i, j int) bool { return evs[i].String() < evs[j].String() })
	out := evs[:0]
	for i, e := range evs {
		if i == 0 || e != evs[i-1] {
			out = append(out, e)
		}
	}
	return &EventBlocker{Events: out, Choice: choice, Timeout: timeout}
}

func (b *EventBlocker) Contains(e *model.Event) bool {
	for _, x := range b.Events {
		if x == e {
			return true
		}
	}
	return false
}

// WithEvents returns b waiting for events instead.
func (b *EventBlocker) WithEvents(events []*model.Event) *EventBlocker {
	return NewEventBlocker(events, b.Choice, b.Timeout)
}

// WithTimeout returns b with a different timeout.
func (b *EventBlocker) WithTimeout(t TimedBlocker) *EventBlocker {
	return &EventBlocker{Events: b.Events, Choice: b.Choice, Timeout: t}
}

// join returns the blocker for "b op e" where e is an event or
// another blocker.
func (b *EventBlocker) join(choice bool, events ...*model.Event) *EventBlocker {
	return NewEventBlocker(append(append([]*model.Event(nil), b.Events...), events...), choice, b.Timeout)
}

func (b *EventBlocker) String() string {
	sep := " & "
	if b.Choice {
		sep = " | "
	}
	names := make([]string, len(b.Events))
	for i, e := range b.Events {
		names[i] = e.String()
	}
	s := "{" + strings.Join(names, sep) + "}"
	if b.Timeout != nil {
		s += " timeout " + b.Timeout.String()
	}
	return s
}

func blockerKey(b Blocker) string {
	if b == nil {
		return "ready"
	}
	return b.String()
}
