// Package pdg builds a program dependence graph for every explored
// transition. The graph of one transition is an Info: an arena of
// nodes indexed by nodeid, with per-node edge sets per edge kind.
package pdg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yangshenyi/SDG4Go/absval"
	"github.com/yangshenyi/SDG4Go/explore"
	"github.com/yangshenyi/SDG4Go/model"
	"golang.org/x/tools/container/intsets"
)

type NodeKind int

const (
	Entry     NodeKind = iota // start of a code block
	Statement                 // evaluation point, or wakeup of a process
	In                        // value of a variable before the transition
	Out                       // value of a variable after the transition
)

var nodeKindNames = [...]string{"ENTRY", "STATEMENT", "IN", "OUT"}

func (k NodeKind) String() string { return nodeKindNames[k] }

type EdgeKind int

const (
	Control EdgeKind = iota
	Data
	Member
	numEdgeKinds
)

var edgeKindNames = [...]string{"CONTROL", "DATA", "MEMBER"}

func (k EdgeKind) String() string { return edgeKindNames[k] }

// A StatementID identifies an evaluation point: the location stack
// reached from the instance the code was started for. Wakeup nodes are
// identified by the woken process instead.
type StatementID struct {
	This    *model.Instance
	Stack   []explore.Location
	Process *explore.Process
}

func (s StatementID) key() string {
	if s.Process != nil {
		return "process " + s.Process.String()
	}
	this := "-"
	if s.This != nil {
		this = s.This.Name
	}
	return this + " " + explore.LocationsKey(s.Stack)
}

func (s StatementID) String() string { return "[" + s.key() + "]" }

// A NodeID identifies a node within one Info. In and Out nodes are
// identified by their variable, the other kinds by the key of their
// StatementID.
type NodeID struct {
	Kind NodeKind
	Var  explore.Variable
	Stmt string
}

func (id NodeID) String() string {
	if id.Kind == In || id.Kind == Out {
		return fmt.Sprintf("(%v %v)", id.Kind, id.Var)
	}
	return fmt.Sprintf("(%v [%s])", id.Kind, id.Stmt)
}

func varNode(k NodeKind, v explore.Variable) NodeID { return NodeID{Kind: k, Var: v} }

func stmtNode(k NodeKind, s StatementID) NodeID { return NodeID{Kind: k, Stmt: s.key()} }

type nodeset struct {
	intsets.Sparse
}

func (ns *nodeset) add(n nodeid) bool {
	return ns.Sparse.Insert(int(n))
}

func (ns *nodeset) addAll(ns_add *nodeset) bool {
	return ns.UnionWith(&ns_add.Sparse)
}

func (ns *nodeset) ids() []nodeid {
	var r []nodeid
	for _, x := range ns.AppendTo(nil) {
		r = append(r, nodeid(x))
	}
	return r
}

// nodeid denotes a node of one Info
type nodeid uint32

const noNode = ^nodeid(0)

type node struct {
	id   NodeID
	stmt *StatementID // nil for In and Out nodes

	out, in [numEdgeKinds]nodeset
}

// defs are the reaching definitions of one variable. external stands
// for a definition before the transition.
type defs struct {
	nodes    nodeset
	external bool
}

// An Edge of a PDG.
type Edge struct {
	Kind     EdgeKind
	From, To NodeID
}

func (e Edge) String() string { return fmt.Sprintf("%v -%v-> %v", e.From, e.Kind, e.To) }

// Info is the PDG of one transition together with the reaching
// definitions and the entry node of the code block currently being
// evaluated. Reaching definitions are cleared when the transition is
// finalized.
type Info struct {
	nodes    []*node
	index    map[NodeID]nodeid
	entry    nodeid
	reaching map[explore.Variable]*defs

	locked bool
	key    string
}

// NewInfo returns an empty, unlocked Info.
func NewInfo() *Info {
	return &Info{
		index:    make(map[NodeID]nodeid),
		entry:    noNode,
		reaching: make(map[explore.Variable]*defs),
	}
}

func (i *Info) mutate() {
	if i.locked {
		panic("modification of locked object")
	}
}

func (i *Info) IsLocked() bool { return i.locked }

func (i *Info) Lock() {
	if i.locked {
		return
	}
	i.key = i.computeKey()
	i.locked = true
}

func (i *Info) Key() string {
	if i.locked {
		return i.key
	}
	return i.computeKey()
}

// unlocked returns i itself if it is unlocked and a copy otherwise.
func unlocked(info explore.Information) *Info {
	i := info.(*Info)
	if i.locked {
		return i.UnlockedClone().(*Info)
	}
	return i
}

// node returns the node with the given id, creating it on first use.
func (i *Info) node(id NodeID, stmt *StatementID) nodeid {
	if n, ok := i.index[id]; ok {
		return n
	}
	i.mutate()
	n := nodeid(len(i.nodes))
	i.nodes = append(i.nodes, &node{id: id, stmt: stmt})
	i.index[id] = n
	return n
}

func (i *Info) statement(s StatementID) nodeid {
	return i.node(stmtNode(Statement, s), &s)
}

func (i *Info) inNode(v explore.Variable) nodeid { return i.node(varNode(In, v), nil) }

// insertEdge adds an edge at both endpoints or, if either already has
// it, at neither. It reports whether the edge was added.
func (i *Info) insertEdge(k EdgeKind, from, to nodeid) bool {
	i.mutate()
	src, dst := i.nodes[from], i.nodes[to]
	if !src.out[k].add(to) {
		return false
	}
	if !dst.in[k].add(from) {
		src.out[k].Remove(int(to))
		return false
	}
	return true
}

func (i *Info) mustInsertEdge(k EdgeKind, from, to nodeid) {
	if !i.insertEdge(k, from, to) {
		panic(fmt.Sprintf("edge already present: %v -%v-> %v", i.nodes[from].id, k, i.nodes[to].id))
	}
}

func (i *Info) hasControlDependency(n nodeid) bool {
	return !i.nodes[n].in[Control].IsEmpty()
}

// define makes n the only reaching definition of v.
func (i *Info) define(v explore.Variable, n nodeid) {
	i.mutate()
	d := &defs{}
	d.nodes.add(n)
	i.reaching[v] = d
}

// addDefinition adds n to the reaching definitions of v.
func (i *Info) addDefinition(v explore.Variable, n nodeid) {
	i.mutate()
	d, ok := i.reaching[v]
	if !ok {
		d = &defs{}
		i.reaching[v] = d
	}
	d.nodes.add(n)
}

// readBy adds DATA edges from every reaching definition of v to n. A
// definition before the transition is represented by v's In node.
func (i *Info) readBy(v explore.Variable, n nodeid) {
	d, ok := i.reaching[v]
	if !ok || d.external {
		i.insertEdge(Data, i.inNode(v), n)
	}
	if ok {
		for _, def := range d.nodes.ids() {
			i.insertEdge(Data, def, n)
		}
	}
}

func (i *Info) forget(drop func(explore.Variable) bool) {
	i.mutate()
	for v := range i.reaching {
		if drop(v) {
			delete(i.reaching, v)
		}
	}
}

// Compose merges other into i as an alternative outcome. Both must
// have been forked from the same entry node. A variable reaching on
// only one side may also reach from before the transition.
func (i *Info) Compose(info explore.Information) explore.Information {
	other := info.(*Info)
	switch {
	case other == i, other.isNeutral():
		return i
	case i.isNeutral():
		return other
	}
	if i.locked {
		return i.UnlockedClone().Compose(other)
	}
	if i.entryID() != other.entryID() {
		panic(fmt.Sprintf("current entry nodes don't match: %v and %v", i.entryID(), other.entryID()))
	}

	mapped := make([]nodeid, len(other.nodes))
	for n, x := range other.nodes {
		mapped[n] = i.node(x.id, x.stmt)
	}
	for n, x := range other.nodes {
		for k := EdgeKind(0); k < numEdgeKinds; k++ {
			for _, to := range x.out[k].ids() {
				i.insertEdge(k, mapped[n], mapped[to])
			}
		}
	}

	for v, d := range i.reaching {
		if _, ok := other.reaching[v]; !ok {
			d.external = true
		}
	}
	for v, od := range other.reaching {
		d, ok := i.reaching[v]
		if !ok {
			d = &defs{external: true}
			i.reaching[v] = d
		}
		d.external = d.external || od.external
		for _, n := range od.nodes.ids() {
			d.nodes.add(mapped[n])
		}
	}
	return i
}

func (i *Info) isNeutral() bool {
	return len(i.nodes) == 0 && len(i.reaching) == 0 && i.entry == noNode
}

func (i *Info) entryID() NodeID {
	if i.entry == noNode {
		return NodeID{Kind: -1}
	}
	return i.nodes[i.entry].id
}

func (i *Info) UnlockedClone() explore.Information {
	c := &Info{
		nodes:    make([]*node, len(i.nodes)),
		index:    make(map[NodeID]nodeid, len(i.index)),
		entry:    i.entry,
		reaching: make(map[explore.Variable]*defs, len(i.reaching)),
	}
	for n, x := range i.nodes {
		y := &node{id: x.id, stmt: x.stmt}
		for k := range x.out {
			y.out[k].Copy(&x.out[k].Sparse)
			y.in[k].Copy(&x.in[k].Sparse)
		}
		c.nodes[n] = y
	}
	for id, n := range i.index {
		c.index[id] = n
	}
	for v, d := range i.reaching {
		e := &defs{external: d.external}
		e.nodes.Copy(&d.nodes.Sparse)
		c.reaching[v] = e
	}
	return c
}

func (i *Info) computeKey() string {
	var b strings.Builder
	for _, id := range i.Nodes() {
		b.WriteString(id.String())
		b.WriteByte(';')
	}
	b.WriteByte('\n')
	for _, e := range i.Edges() {
		b.WriteString(e.String())
		b.WriteByte(';')
	}
	b.WriteByte('\n')
	var rs []string
	for v, d := range i.reaching {
		var s []string
		if d.external {
			s = append(s, "external")
		}
		for _, n := range d.nodes.ids() {
			s = append(s, i.nodes[n].id.String())
		}
		sort.Strings(s)
		rs = append(rs, v.String()+"<-"+strings.Join(s, ","))
	}
	sort.Strings(rs)
	b.WriteString(strings.Join(rs, ";"))
	return b.String()
}

func (i *Info) String() string {
	return fmt.Sprintf("PDG; Nodes: %v Edges: %v", i.Nodes(), i.Edges())
}

// Len returns the number of nodes.
func (i *Info) Len() int { return len(i.nodes) }

// Nodes returns the node ids sorted by their text.
func (i *Info) Nodes() []NodeID {
	ids := make([]NodeID, len(i.nodes))
	for n, x := range i.nodes {
		ids[n] = x.id
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a].String() < ids[b].String() })
	return ids
}

// Has reports whether the node exists.
func (i *Info) Has(id NodeID) bool {
	_, ok := i.index[id]
	return ok
}

// Statement returns the statement identity of an Entry or Statement
// node.
func (i *Info) Statement(id NodeID) (StatementID, bool) {
	n, ok := i.index[id]
	if !ok || i.nodes[n].stmt == nil {
		return StatementID{}, false
	}
	return *i.nodes[n].stmt, true
}

// Edges returns a fresh list of all edges, sorted by their text.
func (i *Info) Edges() []Edge {
	var es []Edge
	for _, x := range i.nodes {
		for k := EdgeKind(0); k < numEdgeKinds; k++ {
			for _, to := range x.out[k].ids() {
				es = append(es, Edge{k, x.id, i.nodes[to].id})
			}
		}
	}
	sort.Slice(es, func(a, b int) bool { return es[a].String() < es[b].String() })
	return es
}

// Edge reports whether the edge exists. Endpoints that are not nodes
// of i are a structural mismatch.
func (i *Info) Edge(k EdgeKind, from, to NodeID) (bool, error) {
	src, ok := i.index[from]
	if !ok {
		return false, &explore.MismatchError{Op: "pdg.Edge", Detail: fmt.Sprintf("no node %v", from)}
	}
	dst, ok := i.index[to]
	if !ok {
		return false, &explore.MismatchError{Op: "pdg.Edge", Detail: fmt.Sprintf("no node %v", to)}
	}
	return i.nodes[src].out[k].Has(int(dst)), nil
}

// Entry returns the entry node of the code block currently evaluated.
func (i *Info) Entry() (NodeID, bool) {
	if i.entry == noNode {
		return NodeID{}, false
	}
	return i.nodes[i.entry].id, true
}

// Reaching returns the reaching definitions of v and whether v may
// reach from before the transition. A variable without reaching
// definitions is reported external.
func (i *Info) Reaching(v explore.Variable) (nodes []NodeID, external bool) {
	d, ok := i.reaching[v]
	if !ok {
		return nil, true
	}
	for _, n := range d.nodes.ids() {
		nodes = append(nodes, i.nodes[n].id)
	}
	sort.Slice(nodes, func(a, b int) bool { return nodes[a].String() < nodes[b].String() })
	return nodes, d.external
}

// Read reports Undetermined for variables the transition may read from
// before it started and false otherwise.
func (i *Info) Read(v explore.Variable) absval.Value {
	if i.Has(varNode(In, v)) {
		return absval.Undetermined
	}
	return absval.Bool(false)
}

// Written reports true for variables defined when the transition ends.
func (i *Info) Written(v explore.Variable) absval.Value {
	return absval.Bool(i.Has(varNode(Out, v)))
}

// Variables returns the variables with an In or Out node.
func (i *Info) Variables() []explore.Variable {
	seen := make(map[explore.Variable]bool)
	var vs []explore.Variable
	for _, x := range i.nodes {
		if (x.id.Kind == In || x.id.Kind == Out) && !seen[x.id.Var] {
			seen[x.id.Var] = true
			vs = append(vs, x.id.Var)
		}
	}
	sort.Slice(vs, func(a, b int) bool { return vs[a].String() < vs[b].String() })
	return vs
}
