package pdg

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yangshenyi/SDG4Go/explore"
	"github.com/yangshenyi/SDG4Go/model"
	"github.com/yangshenyi/SDG4Go/model/modeltest"
)

// firstStep runs the first process of sys from the initial state and
// returns the PDG of its only transition.
func firstStep(t *testing.T, sys *model.System, h explore.Handler) *Info {
	t.Helper()
	s, err := explore.NewScheduler(sys, explore.Config{Handler: h})
	if err != nil {
		t.Fatal(err)
	}
	ts, err := s.Processes()[0].MakeStep(s.InitialState())
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 1 {
		t.Fatalf("got %d transitions, want 1", len(ts))
	}
	if !ts[0].Info.IsLocked() {
		t.Error("transition information not locked")
	}
	return ts[0].Info.(*Info)
}

func TestSequentialBlock(t *testing.T) {
	f := modeltest.Sequential()
	info := firstStep(t, f.System, NewHandler(model.NewIndex()))

	want := []string{
		"(ENTRY [top Top.run[]]) -CONTROL-> (STATEMENT [top Top.run[0]])",
		"(ENTRY [top Top.run[]]) -CONTROL-> (STATEMENT [top Top.run[1]])",
		"(STATEMENT [top Top.run[0]]) -DATA-> (OUT top.x)",
		"(STATEMENT [top Top.run[0]]) -DATA-> (STATEMENT [top Top.run[1]])",
		"(STATEMENT [top Top.run[1]]) -DATA-> (OUT top.y)",
	}
	if diff := cmp.Diff(want, edgeStrings(info.Edges())); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if info.Len() != 5 {
		t.Errorf("got %d nodes, want 5: %v", info.Len(), info.Nodes())
	}
}

func TestBranchJoin(t *testing.T) {
	f := modeltest.Branch()
	info := firstStep(t, f.System, NewHandler(model.NewIndex()))
	x := explore.Global(f.Top, f.Var("x"))

	read := NodeID{Kind: Statement, Stmt: "top Top.run[1]"}
	tests := []struct {
		name string
		from NodeID
	}{
		{"taken branch", NodeID{Kind: Statement, Stmt: "top Top.run[0,1]"}},
		{"not taken", varNode(In, x)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := info.Edge(Data, tt.from, read)
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Errorf("no DATA edge %v -> %v in %v", tt.from, read, info)
			}
		})
	}

	// The condition controls the write in the branch.
	ok, err := info.Edge(Control, NodeID{Kind: Statement, Stmt: "top Top.run[0,0]"}, NodeID{Kind: Statement, Stmt: "top Top.run[0,1]"})
	if err != nil || !ok {
		t.Errorf("condition does not control the branch: %v, %v", ok, err)
	}

	if got := info.Written(x); !got.Equal(info.Written(explore.Global(f.Top, f.Var("y")))) {
		t.Errorf("Written(x) = %v, want the same as Written(y)", got)
	}
	if info.Read(x).IsDetermined() {
		t.Errorf("Read(x) = %v, want undetermined", info.Read(x))
	}
}

func TestAdvancedEntryReadsBlockTrigger(t *testing.T) {
	f := modeltest.Sequential()
	info := firstStep(t, f.System, NewAdvancedHandler(model.NewIndex()))

	entry := NodeID{Kind: Entry, Stmt: "top Top.run[]"}
	trigger := explore.BlockTriggerOf(f.Top, []explore.Location{{Function: f.Function("run")}})
	ok, err := info.Edge(Control, varNode(In, trigger), entry)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Errorf("entry not controlled by its block trigger: %v", info)
	}
}

func TestWaitDefinesResumeTrigger(t *testing.T) {
	f := modeltest.Notification()
	info := firstStep(t, f.System, NewAdvancedHandler(model.NewIndex()))

	resume := explore.BlockTriggerOf(f.Top, []explore.Location{{Function: f.Function("waiter"), Indices: []int{1}}})
	ok, err := info.Edge(Data, NodeID{Kind: Statement, Stmt: "top Top.waiter[0]"}, varNode(Out, resume))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Errorf("wait does not define %v: %v", resume, info)
	}
}

func TestPairedAdvancedHandlersSeeNotification(t *testing.T) {
	f := modeltest.Handoff()
	h := explore.TwoHandler{First: NewAdvancedHandler(model.NewIndex()), Second: NewAdvancedHandler(model.NewIndex())}
	s, err := explore.NewScheduler(f.System, explore.Config{Handler: h})
	if err != nil {
		t.Fatal(err)
	}
	ts, err := s.Processes()[0].MakeStep(s.InitialState())
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 1 {
		t.Fatalf("got %d transitions, want 1", len(ts))
	}
	pair := ts[0].Info.(explore.TwoInformation)

	trigger := varNode(Out, explore.EventTriggerOf(f.Top.Event("ev")))
	for name, info := range map[string]explore.Information{"first": pair.First, "second": pair.Second} {
		if !info.(*Info).Has(trigger) {
			t.Errorf("%s PDG lacks %v: %v", name, trigger, info)
		}
	}
}
