package explore

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yangshenyi/SDG4Go/absval"
	"github.com/yangshenyi/SDG4Go/model/modeltest"
)

func TestSequentialRecord(t *testing.T) {
	f := modeltest.Sequential()
	s, err := NewScheduler(f.System, Config{Handler: ReadWriteHandler{}})
	if err != nil {
		t.Fatal(err)
	}
	x, err := Explore(context.Background(), s, Options{})
	if err != nil {
		t.Fatal(err)
	}
	r := x.Record

	// entry -> run -> end of evaluation, which loops in the final state
	if got := r.NumStates(); got != 2 {
		t.Errorf("NumStates = %d, want 2", got)
	}
	if got := r.Len(); got != 3 {
		t.Fatalf("Len = %d, want 3", got)
	}
	succs := [][]int{r.Successors(0), r.Successors(1), r.Successors(2)}
	if diff := cmp.Diff([][]int{{1}, {2}, {2}}, succs); diff != "" {
		t.Errorf("successors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, r.Predecessors(2)); diff != "" {
		t.Errorf("Predecessors(2) mismatch (-want +got):\n%s", diff)
	}
	if r.Node(1).Proc == nil || r.Node(2).Proc != nil {
		t.Errorf("processes of the transitions: %v, %v", r.Node(1).Proc, r.Node(2).Proc)
	}

	x1 := Global(f.Top, f.Var("x"))
	if !absval.Definitely(r.Written(1, x1)) {
		t.Errorf("Written(1, %v) = %v, want true", x1, r.Written(1, x1))
	}
	if absval.Possibly(r.Written(2, x1)) {
		t.Errorf("Written(2, %v) = %v, want false", x1, r.Written(2, x1))
	}
	if diff := cmp.Diff([]string{"top.x", "top.y"}, variableStrings(r.PossiblyWritten(1))); diff != "" {
		t.Errorf("PossiblyWritten(1) mismatch (-want +got):\n%s", diff)
	}
}

func variableStrings(vs []Variable) []string {
	var r []string
	for _, v := range vs {
		r = append(r, v.String())
	}
	return r
}

func TestRecordDeduplicates(t *testing.T) {
	f := modeltest.Sequential()
	s, err := NewScheduler(f.System, Config{Handler: ReadWriteHandler{}})
	if err != nil {
		t.Fatal(err)
	}
	initial := s.InitialState()
	r := NewRecord(initial, false)
	for i := 0; i < 2; i++ {
		ts, err := s.Processes()[0].MakeStep(initial)
		if err != nil {
			t.Fatal(err)
		}
		_, isNew := r.Add(initial, ts[0])
		if isNew != (i == 0) {
			t.Errorf("round %d: isNew = %v", i, isNew)
		}
	}
	if r.Len() != 2 || r.NumStates() != 2 {
		t.Errorf("Len, NumStates = %d, %d; want 2, 2", r.Len(), r.NumStates())
	}
}

func TestConcurrentMatchesSequential(t *testing.T) {
	for _, threads := range []int{2, 8} {
		seq := explore(t, Options{})
		con := explore(t, Options{Threads: threads})
		if a, b := seq.Record.NumStates(), con.Record.NumStates(); a != b {
			t.Errorf("%d threads: NumStates %d, want %d", threads, b, a)
		}
		if a, b := seq.Record.Len(), con.Record.Len(); a != b {
			t.Errorf("%d threads: Len %d, want %d", threads, b, a)
		}
	}
}

func TestMaxStates(t *testing.T) {
	for _, threads := range []int{1, 4} {
		x := explore(t, Options{Threads: threads, MaxStates: 1})
		if !x.Truncated {
			t.Errorf("%d threads: not truncated", threads)
		}
	}
}

func explore(t *testing.T, opts Options) *Exploration {
	t.Helper()
	s, err := NewScheduler(modeltest.Handoff().System, Config{Handler: ReadWriteHandler{}})
	if err != nil {
		t.Fatal(err)
	}
	x, err := Explore(context.Background(), s, opts)
	if err != nil {
		t.Fatal(err)
	}
	return x
}

func TestCanceledExploration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := NewScheduler(modeltest.Handoff().System, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := SequentialExploration(ctx, s, Options{}); err != context.Canceled {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestTwoHandlerRecord(t *testing.T) {
	f := modeltest.Sequential()
	s, err := NewScheduler(f.System, Config{Handler: TwoHandler{NoInformationHandler{}, ReadWriteHandler{}}})
	if err != nil {
		t.Fatal(err)
	}
	x, err := Explore(context.Background(), s, Options{})
	if err != nil {
		t.Fatal(err)
	}
	r := x.Record
	info := r.Node(1).Info
	if _, ok := info.(TwoInformation); !ok {
		t.Fatalf("information is %T, want TwoInformation", info)
	}
	if !info.IsLocked() {
		t.Error("paired information not locked")
	}
	if _, ok := InformationOf[*ReadWriteInformation](info); !ok {
		t.Error("InformationOf does not find the read/write part")
	}
	y := Global(f.Top, f.Var("y"))
	if !absval.Definitely(r.Written(1, y)) {
		t.Errorf("Written(1, %v) = %v through the pair, want true", y, r.Written(1, y))
	}
}

func TestSuccessorsKeepsOtherSteps(t *testing.T) {
	s, err := NewScheduler(modeltest.UnknownEvent().System, Config{Handler: ReadWriteHandler{}})
	if err != nil {
		t.Fatal(err)
	}
	ts, err := s.Successors(s.InitialState())
	if !IsPrecision(err) {
		t.Fatalf("got error %v, want a precision error", err)
	}
	if len(ts) != 1 || ts[0].Proc.Function.Name != "other" {
		t.Errorf("got transitions %v, want the step of other", ts)
	}
}

func TestPrecisionPolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  PrecisionPolicy
		threads int
	}{
		{"skip", SkipImpreciseSteps, 1},
		{"skip concurrent", SkipImpreciseSteps, 4},
		{"abort", AbortOnPrecisionError, 1},
		{"abort concurrent", AbortOnPrecisionError, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScheduler(modeltest.UnknownEvent().System, Config{Handler: ReadWriteHandler{}})
			if err != nil {
				t.Fatal(err)
			}
			x, err := Explore(context.Background(), s, Options{Threads: tt.threads, OnPrecisionError: tt.policy})
			if tt.policy == AbortOnPrecisionError {
				var pe *PrecisionError
				if !errors.As(err, &pe) {
					t.Fatalf("got error %v, want a *PrecisionError", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(x.Incomplete) == 0 {
				t.Error("no skipped steps recorded")
			}
			for _, err := range x.Incomplete {
				if !IsPrecision(err) {
					t.Errorf("skipped step error %v is not a precision error", err)
				}
			}
			if x.Record.Len() < 2 {
				t.Errorf("Len = %d, the step of other is missing", x.Record.Len())
			}
		})
	}
}
