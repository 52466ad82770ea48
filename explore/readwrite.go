package explore

import (
	"sort"
	"strings"

	"github.com/yangshenyi/SDG4Go/absval"
	"github.com/yangshenyi/SDG4Go/model"
)

// ReadWriteInformation records, per variable, the condition under
// which a transition reads and writes it. Absent variables are
// accessed never. Compose joins alternatives with Or.
type ReadWriteInformation struct {
	Lockable
	read, written map[Variable]absval.Value
}

func newReadWriteInformation() *ReadWriteInformation {
	return &ReadWriteInformation{read: make(map[Variable]absval.Value), written: make(map[Variable]absval.Value)}
}

func (i *ReadWriteInformation) Read(v Variable) absval.Value    { return lookup(i.read, v) }
func (i *ReadWriteInformation) Written(v Variable) absval.Value { return lookup(i.written, v) }

func lookup(m map[Variable]absval.Value, v Variable) absval.Value {
	if c, ok := m[v]; ok {
		return c
	}
	return absval.Bool(false)
}

// Variables returns every accessed variable, sorted by name.
func (i *ReadWriteInformation) Variables() []Variable {
	seen := make(map[Variable]bool)
	var vs []Variable
	for _, m := range []map[Variable]absval.Value{i.read, i.written} {
		for v := range m {
			if !seen[v] {
				seen[v] = true
				vs = append(vs, v)
			}
		}
	}
	sort.Slice(vs, func(a, b int) bool { return vs[a].String() < vs[b].String() })
	return vs
}

func (i *ReadWriteInformation) Compose(other Information) Information {
	o := other.(*ReadWriteInformation)
	r := i
	if r.IsLocked() {
		r = i.UnlockedClone().(*ReadWriteInformation)
	}
	for v, c := range o.read {
		r.read[v] = absval.Or(r.Read(v), c)
	}
	for v, c := range o.written {
		r.written[v] = absval.Or(r.Written(v), c)
	}
	return r
}

func (i *ReadWriteInformation) Lock() { i.freeze(i.computeKey) }

func (i *ReadWriteInformation) Key() string { return i.cachedKey(i.computeKey) }

func (i *ReadWriteInformation) computeKey() string {
	var b strings.Builder
	writeValues(&b, i.read)
	b.WriteString(" /")
	writeValues(&b, i.written)
	return b.String()
}

func (i *ReadWriteInformation) UnlockedClone() Information {
	c := newReadWriteInformation()
	for v, x := range i.read {
		c.read[v] = x
	}
	for v, x := range i.written {
		c.written[v] = x
	}
	return c
}

// ReadWriteHandler computes ReadWriteInformation. Only variables
// accepted by Track are recorded; a nil Track records every variable.
type ReadWriteHandler struct {
	NoInformationHandler
	Track func(Variable) bool
}

func (h ReadWriteHandler) Neutral() Information {
	i := newReadWriteInformation()
	i.Lock()
	return i
}

func (h ReadWriteHandler) Evaluated(t *Transition, e model.Expression, comingFrom int) (Information, error) {
	read, written := t.ReadVariables(), t.WrittenVariables()
	if len(read) == 0 && len(written) == 0 {
		return t.Info, nil
	}
	info := t.Info.(*ReadWriteInformation)
	if info.IsLocked() {
		info = info.UnlockedClone().(*ReadWriteInformation)
	}
	c := t.Condition()
	for _, v := range read {
		if h.Track == nil || h.Track(v) {
			info.read[v] = absval.Or(info.Read(v), c)
		}
	}
	for _, v := range written {
		if h.Track == nil || h.Track(v) {
			info.written[v] = absval.Or(info.Written(v), c)
		}
	}
	return info, nil
}
