// Package cfg defines the control-flow graph view shared by the
// exploration record and the dependence analyses. Nodes are numbered
// densely from 0; every node knows, per variable, whether it reads and
// writes it as an abstracted boolean.
package cfg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yangshenyi/SDG4Go/absval"
)

// A Graph is a control-flow graph over nodes 0..Len()-1 whose nodes
// access variables of type V.
//
// Read and Written return Bool(false) for variables a node never
// accesses, Bool(true) for variables it always accesses and an
// undetermined value otherwise. PossiblyWritten lists the variables
// whose Written value is not false.
type Graph[V comparable] interface {
	Len() int
	Entry() int
	Exits() []int
	Successors(n int) []int
	Predecessors(n int) []int
	Read(n int, v V) absval.Value
	Written(n int, v V) absval.Value
	PossiblyWritten(n int) []V
}

// A Static is a Graph built explicitly, node by node. The zero value
// is an empty graph with entry 0.
type Static[V comparable] struct {
	Start int
	nodes []staticNode[V]
}

type staticNode[V comparable] struct {
	succs, preds []int
	read         map[V]absval.Value
	written      map[V]absval.Value
	order        []V // written variables in insertion order
}

// NewStatic returns a graph with n unconnected nodes and entry 0.
func NewStatic[V comparable](n int) *Static[V] {
	g := new(Static[V])
	for i := 0; i < n; i++ {
		g.AddNode()
	}
	return g
}

// AddNode appends a node and returns its number.
func (g *Static[V]) AddNode() int {
	g.nodes = append(g.nodes, staticNode[V]{read: make(map[V]absval.Value), written: make(map[V]absval.Value)})
	return len(g.nodes) - 1
}

// AddEdge adds the edge from -> to unless it is present.
func (g *Static[V]) AddEdge(from, to int) {
	for _, s := range g.nodes[from].succs {
		if s == to {
			return
		}
	}
	g.nodes[from].succs = append(g.nodes[from].succs, to)
	g.nodes[to].preds = append(g.nodes[to].preds, from)
}

// SetRead sets whether node n reads v.
func (g *Static[V]) SetRead(n int, v V, x absval.Value) { g.nodes[n].read[v] = x }

// SetWritten sets whether node n writes v.
func (g *Static[V]) SetWritten(n int, v V, x absval.Value) {
	nd := &g.nodes[n]
	if _, ok := nd.written[v]; !ok {
		nd.order = append(nd.order, v)
	}
	nd.written[v] = x
}

func (g *Static[V]) Len() int                 { return len(g.nodes) }
func (g *Static[V]) Entry() int               { return g.Start }
func (g *Static[V]) Successors(n int) []int   { return g.nodes[n].succs }
func (g *Static[V]) Predecessors(n int) []int { return g.nodes[n].preds }

// Exits returns the nodes without successors, in ascending order.
func (g *Static[V]) Exits() []int {
	var exits []int
	for i, nd := range g.nodes {
		if len(nd.succs) == 0 {
			exits = append(exits, i)
		}
	}
	return exits
}

func (g *Static[V]) Read(n int, v V) absval.Value    { return lookup(g.nodes[n].read, v) }
func (g *Static[V]) Written(n int, v V) absval.Value { return lookup(g.nodes[n].written, v) }

func (g *Static[V]) PossiblyWritten(n int) []V {
	var vs []V
	for _, v := range g.nodes[n].order {
		if absval.Possibly(g.nodes[n].written[v]) {
			vs = append(vs, v)
		}
	}
	return vs
}

func lookup[V comparable](m map[V]absval.Value, v V) absval.Value {
	if x, ok := m[v]; ok {
		return x
	}
	return absval.Bool(false)
}

// Format renders g one node per line ("n3 -> [4 5]"), for logs and
// test failures.
func Format[V comparable](g Graph[V]) string {
	var b strings.Builder
	fmt.Fprintf(&b, "entry n%d\n", g.Entry())
	for n := 0; n < g.Len(); n++ {
		succs := append([]int(nil), g.Successors(n)...)
		sort.Ints(succs)
		fmt.Fprintf(&b, "n%d -> %v\n", n, succs)
	}
	return b.String()
}
