package visual

import (
	"context"
	"strings"
	"testing"

	sdg "github.com/yangshenyi/SDG4Go"
	"github.com/yangshenyi/SDG4Go/explore"
	"github.com/yangshenyi/SDG4Go/model/modeltest"
	"github.com/yangshenyi/SDG4Go/pdg"
)

func handoff(t *testing.T) (*sdg.Sdg, *modeltest.Fixture) {
	t.Helper()
	f := modeltest.Handoff()
	r, err := sdg.Analyze(context.Background(), &sdg.Config{System: f.System})
	if err != nil {
		t.Fatal(err)
	}
	return r.Sdg, f
}

func TestPrintOutput(t *testing.T) {
	g, _ := handoff(t)
	out, err := PrintOutput(g, Options{Title: "handoff"})
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	for _, want := range []string{
		"digraph sdg {",
		`label="handoff";`,
		"subgraph \"cluster_",
		"saddlebrown",
		`style="dashed"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output does not contain %q:\n%s", want, s)
		}
	}
	if got := strings.Count(s, " -> "); got != len(g.Edges()) {
		t.Errorf("got %d edges, want %d", got, len(g.Edges()))
	}
}

func TestPrintOutputSlice(t *testing.T) {
	g, f := handoff(t)
	v := explore.Global(f.Top, f.Var("g"))

	var in sdg.SdgNodeID
	found := false
	for _, id := range g.Nodes() {
		if id.Local == (pdg.NodeID{Kind: pdg.In, Var: v}) {
			in, found = id, true
		}
	}
	if !found {
		t.Fatalf("no IN node of %v", v)
	}

	out, err := PrintOutput(g, Options{Slice: &in, NoControl: true})
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if strings.Contains(s, "reader") {
		t.Errorf("slice of %v contains the reader:\n%s", in, s)
	}
	if !strings.Contains(s, `penwidth="2"`) {
		t.Errorf("slice criterion not highlighted:\n%s", s)
	}
	if strings.Contains(s, `color="gray40"`) {
		t.Errorf("CONTROL edges drawn:\n%s", s)
	}
}

func TestPrintOutputUnknownSlice(t *testing.T) {
	g, _ := handoff(t)
	missing := sdg.SdgNodeID{Pdg: -1}
	if _, err := PrintOutput(g, Options{Slice: &missing}); err == nil {
		t.Error("PrintOutput accepted an unknown slice criterion")
	}
}
