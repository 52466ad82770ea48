package sdg

import (
	"fmt"

	"golang.org/x/tools/container/intsets"

	"github.com/yangshenyi/SDG4Go/pdg"
)

const numEdgeKinds = int(pdg.Member) + 1

type nodeset struct {
	intsets.Sparse
}

func (ns *nodeset) add(n nodeid) bool {
	return ns.Sparse.Insert(int(n))
}

func (ns *nodeset) addAll(ns_add *nodeset) bool {
	return ns.UnionWith(&ns_add.Sparse)
}

// nodeid denotes a node of an Sdg
type nodeid uint32

// An SdgNodeID identifies a node of an Sdg: node Local of the PDG
// integrated under number Pdg.
type SdgNodeID struct {
	Pdg   int
	Local pdg.NodeID
}

func (id SdgNodeID) String() string { return fmt.Sprintf("p%d%v", id.Pdg, id.Local) }

// A node of the Sdg with its edge sets per kind.
type node struct {
	id SdgNodeID

	out, in [numEdgeKinds]nodeset
}

// An Edge of an Sdg.
type Edge struct {
	Kind     pdg.EdgeKind
	From, To SdgNodeID
}

func (e Edge) String() string { return fmt.Sprintf("%v -%v-> %v", e.From, e.Kind, e.To) }
