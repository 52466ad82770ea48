package sdg

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yangshenyi/SDG4Go/cfg"
)

func graph(n int, edges ...[2]int) *cfg.Static[string] {
	g := cfg.NewStatic[string](n)
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}
	return g
}

func TestPostDominators(t *testing.T) {
	tests := []struct {
		name   string
		g      *cfg.Static[string]
		parent []int
		deps   [][]int
	}{
		{
			name:   "diamond",
			g:      graph(4, [2]int{0, 1}, [2]int{0, 2}, [2]int{1, 3}, [2]int{2, 3}),
			parent: []int{3, 3, 3, -1},
			deps:   [][]int{nil, {0}, {0}, nil},
		},
		{
			name:   "if without else",
			g:      graph(4, [2]int{0, 1}, [2]int{0, 2}, [2]int{1, 2}, [2]int{2, 3}),
			parent: []int{2, 2, 3, -1},
			deps:   [][]int{nil, {0}, nil, nil},
		},
		{
			name:   "straight line",
			g:      graph(3, [2]int{0, 1}, [2]int{1, 2}),
			parent: []int{1, 2, -1},
			deps:   [][]int{nil, nil, nil},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := PostDominators[string](tt.g)
			var parent []int
			for n := 0; n < tt.g.Len(); n++ {
				parent = append(parent, tree.Parent(n))
			}
			if diff := cmp.Diff(tt.parent, parent); diff != "" {
				t.Errorf("parents mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.deps, ControlDependence[string](tt.g)); diff != "" {
				t.Errorf("control dependence mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPostDominatorChildren(t *testing.T) {
	tests := []struct {
		name     string
		g        *cfg.Static[string]
		children [][]int
		roots    []int
	}{
		{
			"diamond",
			graph(4, [2]int{0, 1}, [2]int{0, 2}, [2]int{1, 3}, [2]int{2, 3}),
			[][]int{nil, nil, nil, {0, 1, 2}},
			[]int{3},
		},
		{
			"straight line",
			graph(3, [2]int{0, 1}, [2]int{1, 2}),
			[][]int{nil, {0}, {1}},
			[]int{2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := PostDominators[string](tt.g)
			var got [][]int
			for n := range tt.children {
				got = append(got, tree.Children(n))
			}
			if diff := cmp.Diff(tt.children, got); diff != "" {
				t.Errorf("children mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.roots, tree.Roots); diff != "" {
				t.Errorf("Roots mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
