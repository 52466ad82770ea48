package cfg

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yangshenyi/SDG4Go/absval"
)

func TestStatic(t *testing.T) {
	g := NewStatic[string](3)
	g.AddEdge(0, 1)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(0, 2)

	if diff := cmp.Diff([]int{1, 2}, g.Successors(0)); diff != "" {
		t.Errorf("Successors(0) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 0}, g.Predecessors(2)); diff != "" {
		t.Errorf("Predecessors(2) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, g.Exits()); diff != "" {
		t.Errorf("Exits mismatch (-want +got):\n%s", diff)
	}

	g.SetWritten(1, "b", absval.Undetermined)
	g.SetWritten(1, "a", absval.Bool(true))
	g.SetWritten(1, "c", absval.Bool(false))
	if diff := cmp.Diff([]string{"b", "a"}, g.PossiblyWritten(1)); diff != "" {
		t.Errorf("PossiblyWritten mismatch (-want +got):\n%s", diff)
	}
	if absval.Possibly(g.Read(1, "a")) {
		t.Error("unset read is not false")
	}

	want := "entry n0\nn0 -> [1 2]\nn1 -> [2]\nn2 -> []\n"
	if got := Format[string](g); got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}
