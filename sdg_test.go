package sdg

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yangshenyi/SDG4Go/explore"
	"github.com/yangshenyi/SDG4Go/model/modeltest"
	"github.com/yangshenyi/SDG4Go/pdg"
)

// sequential returns the SDG of "x = 1; y = x;" and the number of the
// PDG of its only step.
func sequential(t *testing.T) (*Sdg, int, *modeltest.Fixture) {
	t.Helper()
	f := modeltest.Sequential()
	r := analyze(t, &Config{System: f.System})
	id, ok := find(r.Sdg, pdg.NodeID{Kind: pdg.Entry, Stmt: "top Top.run[]"})
	if !ok {
		t.Fatalf("no entry of run in\n%v", r.Sdg)
	}
	return r.Sdg, id.Pdg, f
}

func TestIntegrateTwicePanics(t *testing.T) {
	g, n, _ := sequential(t)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on a PDG integrated twice")
		}
	}()
	g.IntegratePdg(n, g.Pdg(n))
}

func TestAddEdgeUnknownNode(t *testing.T) {
	g, n, _ := sequential(t)
	entry := SdgNodeID{n, pdg.NodeID{Kind: pdg.Entry, Stmt: "top Top.run[]"}}
	missing := SdgNodeID{n, pdg.NodeID{Kind: pdg.Statement, Stmt: "top Top.run[7]"}}

	tests := []struct {
		name     string
		from, to SdgNodeID
	}{
		{"unknown source", missing, entry},
		{"unknown target", entry, missing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(g.Edges())
			_, err := g.AddEdge(pdg.Control, tt.from, tt.to)
			if !errors.Is(err, explore.ErrMismatch) {
				t.Errorf("AddEdge: got %v, want ErrMismatch", err)
			}
			if len(g.Edges()) != before {
				t.Error("failed AddEdge changed the graph")
			}
		})
	}

	if _, err := g.BackwardsSlice(missing); !errors.Is(err, explore.ErrMismatch) {
		t.Errorf("BackwardsSlice: got %v, want ErrMismatch", err)
	}
	if _, err := g.Node(missing); !errors.Is(err, explore.ErrMismatch) {
		t.Errorf("Node: got %v, want ErrMismatch", err)
	}
}

func TestAddEdgeReportsDuplicates(t *testing.T) {
	g, n, _ := sequential(t)
	entry := SdgNodeID{n, pdg.NodeID{Kind: pdg.Entry, Stmt: "top Top.run[]"}}
	first := SdgNodeID{n, pdg.NodeID{Kind: pdg.Statement, Stmt: "top Top.run[0]"}}

	added, err := g.AddEdge(pdg.Control, entry, first)
	if err != nil || added {
		t.Errorf("AddEdge of a PDG edge = %v, %v; want false, nil", added, err)
	}
	added, err = g.AddEdge(pdg.Data, entry, first)
	if err != nil || !added {
		t.Errorf("AddEdge of a new edge = %v, %v; want true, nil", added, err)
	}
	nd, err := g.Node(first)
	if err != nil {
		t.Fatal(err)
	}
	var in []string
	for _, e := range nd.In {
		in = append(in, e.Kind.String())
	}
	if diff := cmp.Diff([]string{"CONTROL", "DATA"}, in); diff != "" {
		t.Errorf("incoming edges of %v mismatch (-want +got):\n%s", first, diff)
	}
}

func TestBackwardsSlice(t *testing.T) {
	g, n, f := sequential(t)
	y := explore.Global(f.Top, f.Var("y"))
	out := SdgNodeID{n, pdg.NodeID{Kind: pdg.Out, Var: y}}

	slice, err := g.BackwardsSlice(out)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, id := range slice {
		got = append(got, id.String())
	}
	want := []string{
		SdgNodeID{n, pdg.NodeID{Kind: pdg.Out, Var: y}}.String(),
		SdgNodeID{n, pdg.NodeID{Kind: pdg.Statement, Stmt: "top Top.run[1]"}}.String(),
		SdgNodeID{n, pdg.NodeID{Kind: pdg.Entry, Stmt: "top Top.run[]"}}.String(),
		SdgNodeID{n, pdg.NodeID{Kind: pdg.Statement, Stmt: "top Top.run[0]"}}.String(),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("slice mismatch (-want +got):\n%s", diff)
	}
}
