package sdg

import (
	"context"
	"errors"
	"testing"

	"github.com/yangshenyi/SDG4Go/explore"
	"github.com/yangshenyi/SDG4Go/model"
	"github.com/yangshenyi/SDG4Go/model/modeltest"
	"github.com/yangshenyi/SDG4Go/pdg"
)

func analyze(t *testing.T, config *Config) *Result {
	t.Helper()
	r, err := Analyze(context.Background(), config)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// find returns the first node of g whose local id is local.
func find(g *Sdg, local pdg.NodeID) (SdgNodeID, bool) {
	for _, id := range g.Nodes() {
		if id.Local == local {
			return id, true
		}
	}
	return SdgNodeID{}, false
}

func TestNotificationReachesWaiter(t *testing.T) {
	f := modeltest.Notification()
	r := analyze(t, &Config{System: f.System, Advanced: true})

	resumed, ok := find(r.Sdg, pdg.NodeID{Kind: pdg.Entry, Stmt: "top Top.waiter[1]"})
	if !ok {
		t.Fatalf("no entry for the resumed waiter in\n%v", r.Sdg)
	}
	slice, err := r.Sdg.BackwardsSlice(resumed)
	if err != nil {
		t.Fatal(err)
	}
	if slice[0] != resumed {
		t.Errorf("slice starts at %v, want %v", slice[0], resumed)
	}
	notify := pdg.NodeID{Kind: pdg.Statement, Stmt: "top Top.notifier[0]"}
	for _, id := range slice {
		if id.Local == notify {
			return
		}
	}
	t.Errorf("slice of %v does not contain the notification: %v", resumed, slice)
}

func TestHandoffConnectsTransitions(t *testing.T) {
	f := modeltest.Handoff()
	r := analyze(t, &Config{System: f.System})

	g := explore.Global(f.Top, f.Var("g"))
	var cross []Edge
	for _, e := range r.Sdg.Edges() {
		if e.From.Pdg != e.To.Pdg {
			cross = append(cross, e)
		}
	}
	if len(cross) != 1 {
		t.Fatalf("got %d edges between transitions, want 1: %v", len(cross), cross)
	}
	e := cross[0]
	if e.Kind != pdg.Data || e.From.Local != (pdg.NodeID{Kind: pdg.Out, Var: g}) || e.To.Local != (pdg.NodeID{Kind: pdg.In, Var: g}) {
		t.Errorf("got %v, want a DATA edge from OUT %v to IN %v", e, g, g)
	}
	if len(r.Chains) != 1 || r.Chains[0].Def.Var != g {
		t.Errorf("chains = %v, want the one of %v", r.Chains, g)
	}
}

func TestExplorationIsDeterministic(t *testing.T) {
	tests := []struct {
		name string
		sys  func() *model.System
	}{
		{"sequential", func() *model.System { return modeltest.Sequential().System }},
		{"handoff", func() *model.System { return modeltest.Handoff().System }},
		{"producer consumer", modeltest.ProducerConsumer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			one := analyze(t, &Config{System: tt.sys(), MaxStates: 10000})
			many := analyze(t, &Config{System: tt.sys(), Threads: 4, MaxStates: 10000})
			if one.Truncated || many.Truncated {
				t.Fatal("exploration truncated")
			}
			if a, b := len(one.Incomplete), len(many.Incomplete); a != b {
				t.Errorf("skipped steps: sequential %d, concurrent %d", a, b)
			}
			if a, b := one.Record.NumStates(), many.Record.NumStates(); a != b {
				t.Errorf("NumStates: sequential %d, concurrent %d", a, b)
			}
			if a, b := len(one.Chains), len(many.Chains); a != b {
				t.Errorf("chains: sequential %d, concurrent %d", a, b)
			}
			if a, b := one.Sdg.Len(), many.Sdg.Len(); a != b {
				t.Errorf("SDG nodes: sequential %d, concurrent %d", a, b)
			}
		})
	}
}

func TestMaxStatesTruncates(t *testing.T) {
	r := analyze(t, &Config{System: modeltest.ProducerConsumer(), MaxStates: 1})
	if !r.Truncated {
		t.Error("exploration not truncated")
	}
	if n := r.Record.NumStates(); n < 1 {
		t.Errorf("NumStates = %d, want at least the initial state", n)
	}
}

func TestOnPrecisionError(t *testing.T) {
	tests := []struct {
		name     string
		advanced bool
		policy   explore.PrecisionPolicy
	}{
		{"skip", false, explore.SkipImpreciseSteps},
		{"skip advanced", true, explore.SkipImpreciseSteps},
		{"abort", false, explore.AbortOnPrecisionError},
		{"abort advanced", true, explore.AbortOnPrecisionError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := modeltest.UnknownEvent()
			r, err := Analyze(context.Background(), &Config{
				System:           f.System,
				Advanced:         tt.advanced,
				OnPrecisionError: tt.policy,
			})
			if tt.policy == explore.AbortOnPrecisionError {
				var pe *explore.PrecisionError
				if !errors.As(err, &pe) {
					t.Fatalf("got error %v, want a *PrecisionError", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(r.Incomplete) == 0 {
				t.Error("Incomplete is empty")
			}
			// The step of other is still analyzed.
			if _, ok := find(r.Sdg, pdg.NodeID{Kind: pdg.Statement, Stmt: "top Top.other[0]"}); !ok {
				t.Errorf("no statement of other in\n%v", r.Sdg)
			}
		})
	}
}
