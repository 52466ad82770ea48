package explore

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yangshenyi/SDG4Go/absval"
	"github.com/yangshenyi/SDG4Go/model"
)

func TestProcessStateLock(t *testing.T) {
	fn := &model.Function{Name: "run"}
	v := Local([]*model.Function{fn}, ThisDecl)

	ps := NewProcessState(nil, newFrame(fn, absval.Undetermined))
	ps.SetLocal(v, absval.Int(1))
	ps.Lock()
	key := ps.Key()

	c := ps.UnlockedClone()
	if c.IsLocked() {
		t.Fatal("clone is locked")
	}
	c.SetLocal(v, absval.Int(2))
	c.SetBlocker(Delta)
	if got, _ := ps.Local(v); !got.Equal(absval.Int(1)) {
		t.Errorf("original local = %v after changing the clone", got)
	}
	if ps.Blocker() != nil || ps.Key() != key {
		t.Error("original changed with its clone")
	}
	if c.Key() == key {
		t.Error("clone key not recomputed after mutation")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic on mutation of a locked state")
		}
	}()
	ps.SetBlocker(Delta)
}

func TestReadWriteCompose(t *testing.T) {
	x := Global(nil, &model.Var{Name: "x", Kind: model.Global})
	a := newReadWriteInformation()
	a.written[x] = absval.Bool(true)
	b := newReadWriteInformation()
	b.read[x] = absval.Undetermined

	neutral := ReadWriteHandler{}.Neutral()
	a.Lock()
	if neutral.Compose(a).Key() != a.Key() || a.Compose(neutral).Key() != a.Key() {
		t.Error("neutral information is not an identity")
	}
	ab := a.Compose(b).(*ReadWriteInformation)
	if !absval.Definitely(ab.Written(x)) || ab.Read(x).IsDetermined() {
		t.Errorf("compose: written %v, read %v", ab.Written(x), ab.Read(x))
	}
	if !a.IsLocked() || absval.Possibly(a.Read(x)) {
		t.Error("compose changed a locked operand")
	}
}

func TestComposeAssociative(t *testing.T) {
	x := Global(nil, &model.Var{Name: "x", Kind: model.Global})
	y := Global(nil, &model.Var{Name: "y", Kind: model.Global})
	readWrite := func() (Information, Information, Information) {
		a := newReadWriteInformation()
		a.written[x] = absval.Bool(true)
		b := newReadWriteInformation()
		b.read[x] = absval.Undetermined
		b.written[y] = absval.Undetermined
		c := newReadWriteInformation()
		c.read[y] = absval.Bool(true)
		c.written[x] = absval.Undetermined
		for _, i := range []*ReadWriteInformation{a, b, c} {
			i.Lock()
		}
		return a, b, c
	}
	pairs := func() (Information, Information, Information) {
		a, b, c := readWrite()
		d, e, f := readWrite()
		return TwoInformation{a, f}, TwoInformation{b, e}, TwoInformation{c, d}
	}

	tests := []struct {
		name string
		make func() (Information, Information, Information)
	}{
		{"read/write", readWrite},
		{"pairs", pairs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, c := tt.make()
			left := a.Compose(b).Compose(c)
			a, b, c = tt.make()
			right := a.Compose(b.Compose(c))
			if diff := cmp.Diff(left.Key(), right.Key()); diff != "" {
				t.Errorf("compose not associative (-left +right):\n%s", diff)
			}
		})
	}
}
