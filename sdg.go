package sdg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yangshenyi/SDG4Go/explore"
	"github.com/yangshenyi/SDG4Go/pdg"
)

// An Sdg is a system dependence graph: the PDGs of all explored
// transitions, each integrated under its own number, connected by
// DATA edges from the OUT node of a defining transition to the IN node
// of every transition the definition reaches. The graph only grows.
type Sdg struct {
	pdgs  map[int]*pdg.Info
	nodes []*node // indexed by nodeid
	index map[SdgNodeID]nodeid
}

// New returns an empty Sdg.
func New() *Sdg {
	return &Sdg{pdgs: make(map[int]*pdg.Info), index: make(map[SdgNodeID]nodeid)}
}

// IntegratePdg copies the nodes and edges of info into g under number
// n. Integrating a number twice is a programming error and panics.
func (g *Sdg) IntegratePdg(n int, info *pdg.Info) {
	if _, ok := g.pdgs[n]; ok {
		panic(fmt.Sprintf("PDG %d integrated twice", n))
	}
	g.pdgs[n] = info
	for _, local := range info.Nodes() {
		id := SdgNodeID{n, local}
		if _, ok := g.index[id]; ok {
			panic(fmt.Sprintf("duplicate node %v", id))
		}
		g.index[id] = nodeid(len(g.nodes))
		g.nodes = append(g.nodes, &node{id: id})
	}
	for _, e := range info.Edges() {
		g.insert(e.Kind, g.index[SdgNodeID{n, e.From}], g.index[SdgNodeID{n, e.To}])
	}
}

func (g *Sdg) insert(k pdg.EdgeKind, from, to nodeid) bool {
	if !g.nodes[from].out[k].add(to) {
		return false
	}
	g.nodes[to].in[k].add(from)
	return true
}

func (g *Sdg) lookup(op string, id SdgNodeID) (nodeid, error) {
	if x, ok := g.index[id]; ok {
		return x, nil
	}
	return 0, &explore.MismatchError{Op: op, Detail: fmt.Sprintf("no node %v", id)}
}

// AddEdge inserts an edge between two existing nodes and reports
// whether it was new.
func (g *Sdg) AddEdge(k pdg.EdgeKind, from, to SdgNodeID) (bool, error) {
	f, err := g.lookup("AddEdge", from)
	if err != nil {
		return false, err
	}
	t, err := g.lookup("AddEdge", to)
	if err != nil {
		return false, err
	}
	return g.insert(k, f, t), nil
}

// Pdg returns the PDG integrated under number n, or nil.
func (g *Sdg) Pdg(n int) *pdg.Info { return g.pdgs[n] }

// Pdgs returns the numbers of the integrated PDGs in ascending order.
func (g *Sdg) Pdgs() []int {
	ns := make([]int, 0, len(g.pdgs))
	for n := range g.pdgs {
		ns = append(ns, n)
	}
	sort.Ints(ns)
	return ns
}

// Len returns the number of nodes.
func (g *Sdg) Len() int { return len(g.nodes) }

// Has reports whether id is a node of g.
func (g *Sdg) Has(id SdgNodeID) bool {
	_, ok := g.index[id]
	return ok
}

// Nodes returns the node ids in integration order.
func (g *Sdg) Nodes() []SdgNodeID {
	ids := make([]SdgNodeID, len(g.nodes))
	for i, n := range g.nodes {
		ids[i] = n.id
	}
	return ids
}

// A Node is a snapshot of one node of an Sdg and its edges.
type Node struct {
	ID      SdgNodeID
	In, Out []Edge
}

// Node returns the node id with its incoming and outgoing edges.
func (g *Sdg) Node(id SdgNodeID) (*Node, error) {
	x, err := g.lookup("Node", id)
	if err != nil {
		return nil, err
	}
	n := g.nodes[x]
	r := &Node{ID: id}
	for k := 0; k < numEdgeKinds; k++ {
		for _, y := range n.in[k].AppendTo(nil) {
			r.In = append(r.In, Edge{pdg.EdgeKind(k), g.nodes[y].id, id})
		}
		for _, y := range n.out[k].AppendTo(nil) {
			r.Out = append(r.Out, Edge{pdg.EdgeKind(k), id, g.nodes[y].id})
		}
	}
	return r, nil
}

// Edges returns a freshly built list of all edges, ordered by source
// node, kind and target node.
func (g *Sdg) Edges() []Edge {
	var edges []Edge
	for _, n := range g.nodes {
		for k := 0; k < numEdgeKinds; k++ {
			for _, y := range n.out[k].AppendTo(nil) {
				edges = append(edges, Edge{pdg.EdgeKind(k), n.id, g.nodes[y].id})
			}
		}
	}
	return edges
}

// BackwardsSlice returns every node id transitively reaches over
// incoming edges of any kind, id included, in breadth-first order.
func (g *Sdg) BackwardsSlice(id SdgNodeID) ([]SdgNodeID, error) {
	start, err := g.lookup("BackwardsSlice", id)
	if err != nil {
		return nil, err
	}
	var visited nodeset
	visited.add(start)
	queue := []nodeid{start}
	var slice []SdgNodeID
	for len(queue) > 0 {
		x := queue[0]
		queue = queue[1:]
		slice = append(slice, g.nodes[x].id)
		var preds nodeset
		for k := 0; k < numEdgeKinds; k++ {
			preds.addAll(&g.nodes[x].in[k])
		}
		for _, p := range preds.AppendTo(nil) {
			if visited.add(nodeid(p)) {
				queue = append(queue, nodeid(p))
			}
		}
	}
	return slice, nil
}

func (g *Sdg) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SDG; %d nodes", len(g.nodes))
	for _, e := range g.Edges() {
		b.WriteString("\n\t")
		b.WriteString(e.String())
	}
	return b.String()
}
