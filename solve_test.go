package sdg

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yangshenyi/SDG4Go/absval"
	"github.com/yangshenyi/SDG4Go/cfg"
)

// loopGraph is
//
//	0 -> 1 -> 2 -> 3 -> 4 -> 5 -> 2
//	          2 ------> 4
//
// where 1 writes x, 3 may write x, 5 writes x and y, 4 reads x and 2
// reads y.
func loopGraph() *cfg.Static[string] {
	g := cfg.NewStatic[string](6)
	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 3}, {2, 4}, {3, 4}, {4, 5}, {5, 2}} {
		g.AddEdge(e[0], e[1])
	}
	yes := absval.Bool(true)
	g.SetWritten(1, "x", yes)
	g.SetWritten(3, "x", absval.Undetermined)
	g.SetWritten(5, "x", yes)
	g.SetWritten(5, "y", yes)
	g.SetRead(4, "x", yes)
	g.SetRead(2, "y", yes)
	return g
}

func chain(def int, v string, use int) DefUseChain[string] {
	return DefUseChain[string]{Def[string]{def, v}, use}
}

func TestDefUse(t *testing.T) {
	want := []DefUseChain[string]{
		chain(1, "x", 4),
		chain(3, "x", 4),
		chain(5, "y", 2),
		chain(5, "x", 4),
	}
	tests := []struct {
		name  string
		solve func(cfg.Graph[string]) []DefUseChain[string]
	}{
		{"ReachingUses", func(g cfg.Graph[string]) []DefUseChain[string] { return ReachingUses(g, nil) }},
		{"DefUseChains", func(g cfg.Graph[string]) []DefUseChain[string] { return DefUseChains(g, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.solve(loopGraph())
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("chains mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefUseUnreachable(t *testing.T) {
	// Node 2 is not reachable from the entry; its definition reaches
	// nothing.
	g := cfg.NewStatic[string](4)
	g.AddEdge(0, 1)
	g.AddEdge(2, 3)
	g.SetWritten(2, "x", absval.Bool(true))
	g.SetRead(3, "x", absval.Bool(true))
	g.SetRead(1, "x", absval.Bool(true))

	if got := ReachingUses[string](g, nil); len(got) != 0 {
		t.Errorf("ReachingUses = %v, want none", got)
	}
	if got := DefUseChains[string](g, nil); len(got) != 0 {
		t.Errorf("DefUseChains = %v, want none", got)
	}
}
