package sdg

import "github.com/yangshenyi/SDG4Go/cfg"

// A PostDominatorTree relates every node of a graph that reaches an
// exit to its immediate post-dominator. Roots are the exits; Parent is
// -1 for roots and for nodes that reach no exit.
type PostDominatorTree struct {
	Roots    []int
	parent   []int
	children []nodeset
}

// Parent returns the immediate post-dominator of n, or -1.
func (t *PostDominatorTree) Parent(n int) int { return t.parent[n] }

// Children returns the nodes immediately post-dominated by n.
func (t *PostDominatorTree) Children(n int) []int { return t.children[n].AppendTo(nil) }

// PostDominators computes the post-dominator tree of g.
//
// The sets are computed by round-robin iteration in reverse
// breadth-first order from the exits. A successor without a set yet
// does not constrain its predecessor.
func PostDominators[V comparable](g cfg.Graph[V]) *PostDominatorTree {
	n := g.Len()
	exits := g.Exits()

	var ordered []int
	var seen nodeset
	for _, x := range exits {
		if seen.add(nodeid(x)) {
			ordered = append(ordered, x)
		}
	}
	for i := 0; i < len(ordered); i++ {
		for _, p := range g.Predecessors(ordered[i]) {
			if seen.add(nodeid(p)) {
				ordered = append(ordered, p)
			}
		}
	}

	postdom := make([]*nodeset, n)
	for changed := true; changed; {
		changed = false
		for _, x := range ordered {
			var meet *nodeset
			for _, s := range g.Successors(x) {
				ps := postdom[s]
				if ps == nil {
					continue
				}
				if meet == nil {
					meet = new(nodeset)
					meet.Copy(&ps.Sparse)
				} else {
					meet.IntersectionWith(&ps.Sparse)
				}
			}
			updated := new(nodeset)
			if meet != nil {
				updated.Copy(&meet.Sparse)
			}
			updated.add(nodeid(x))
			if postdom[x] == nil || !postdom[x].Equals(&updated.Sparse) {
				postdom[x] = updated
				changed = true
			}
		}
	}

	// Flip into strict post-domination, then keep only the direct
	// relations.
	strictly := make([]nodeset, n)
	for x, ps := range postdom {
		if ps == nil {
			continue
		}
		for _, d := range ps.AppendTo(nil) {
			if d != x {
				strictly[d].add(nodeid(x))
			}
		}
	}
	t := &PostDominatorTree{Roots: exits, parent: make([]int, n), children: make([]nodeset, n)}
	for i := range t.parent {
		t.parent[i] = -1
	}
	for d := range strictly {
		direct := &t.children[d]
		direct.Copy(&strictly[d].Sparse)
		for _, x := range strictly[d].AppendTo(nil) {
			direct.DifferenceWith(&strictly[x].Sparse)
		}
		for _, x := range direct.AppendTo(nil) {
			t.parent[x] = d
		}
	}
	return t
}

// ControlDependence returns, for every node of g, the nodes it is
// control dependent on: n depends on a if a has a successor from which
// every path to an exit passes n, while a itself is not strictly
// post-dominated by n.
func ControlDependence[V comparable](g cfg.Graph[V]) [][]int {
	t := PostDominators(g)
	deps := make([]nodeset, g.Len())
	for a := 0; a < g.Len(); a++ {
		stop := t.Parent(a)
		for _, b := range g.Successors(a) {
			for x := b; x != -1 && x != stop; x = t.Parent(x) {
				deps[x].add(nodeid(a))
			}
		}
	}
	r := make([][]int, len(deps))
	for i := range deps {
		r[i] = deps[i].AppendTo(nil)
	}
	return r
}
