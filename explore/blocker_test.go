package explore

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yangshenyi/SDG4Go/model"
)

func TestTime(t *testing.T) {
	tests := []struct {
		amount  int
		unit    model.TimeUnit
		want    TimedBlocker
		wantErr bool
	}{
		{0, model.NS, Delta, false},
		{5, model.ZeroTime, Delta, false},
		{2, model.NS, RealTime{2e6}, false},
		{1, model.SEC, RealTime{1e15}, false},
		{-1, model.NS, nil, true},
	}
	for _, tt := range tests {
		got, err := Time(tt.amount, tt.unit)
		if (err != nil) != tt.wantErr {
			t.Errorf("Time(%d, %v) error = %v, wantErr %v", tt.amount, tt.unit, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Time(%d, %v) = %v, want %v", tt.amount, tt.unit, got, tt.want)
		}
	}
}

func TestEarlier(t *testing.T) {
	tests := []struct {
		a, b, want TimedBlocker
	}{
		{nil, nil, nil},
		{nil, Delta, Delta},
		{RealTime{3}, nil, RealTime{3}},
		{RealTime{5}, RealTime{3}, RealTime{3}},
		{RealTime{1}, Delta, Delta},
		{Delta, RealTime{1}, Delta},
	}
	for _, tt := range tests {
		if got := earlier(tt.a, tt.b); got != tt.want {
			t.Errorf("earlier(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNewEventBlocker(t *testing.T) {
	inst := model.NewInstance("m", &model.Class{Name: "M", Events: []string{"b", "a"}})
	a, b := inst.Event("a"), inst.Event("b")

	eb := NewEventBlocker([]*model.Event{b, a, b}, true, nil)
	var names []string
	for _, e := range eb.Events {
		names = append(names, e.String())
	}
	if diff := cmp.Diff([]string{"m.a", "m.b"}, names); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if !eb.Contains(a) || eb.WithEvents([]*model.Event{b}).Contains(a) {
		t.Error("Contains does not follow the event list")
	}
	if to := eb.WithTimeout(Delta); to.Timeout != Delta || eb.Timeout != nil {
		t.Error("WithTimeout modified the receiver")
	}
}
