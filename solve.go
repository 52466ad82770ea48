package sdg

import (
	"fmt"
	"io"
	"sort"

	"github.com/yangshenyi/SDG4Go/absval"
	"github.com/yangshenyi/SDG4Go/cfg"
)

// A Def is the definition of variable Var at a graph node.
type Def[V comparable] struct {
	Node int
	Var  V
}

// A DefUseChain states that the definition Def may reach node Use,
// which may read the variable.
type DefUseChain[V comparable] struct {
	Def Def[V]
	Use int
}

// solver holds the working state of one def-use computation.
type solver[V comparable] struct {
	g        cfg.Graph[V]
	log      io.Writer // log stream; nil to disable
	worklist nodeset
	chains   map[DefUseChain[V]]bool
}

func newSolver[V comparable](g cfg.Graph[V], log io.Writer) *solver[V] {
	return &solver[V]{g: g, log: log, chains: make(map[DefUseChain[V]]bool)}
}

func (s *solver[V]) addChain(c DefUseChain[V]) {
	if !s.chains[c] {
		s.chains[c] = true
		if s.log != nil {
			fmt.Fprintf(s.log, "\t\tchain n%d %v -> n%d\n", c.Def.Node, c.Def.Var, c.Use)
		}
	}
}

func (s *solver[V]) result() []DefUseChain[V] {
	r := make([]DefUseChain[V], 0, len(s.chains))
	for c := range s.chains {
		r = append(r, c)
	}
	sort.Slice(r, func(i, j int) bool {
		a, b := r[i], r[j]
		if a.Def.Node != b.Def.Node {
			return a.Def.Node < b.Def.Node
		}
		if a.Use != b.Use {
			return a.Use < b.Use
		}
		return fmt.Sprint(a.Def.Var) < fmt.Sprint(b.Def.Var)
	})
	return r
}

// ReachingUses computes the def-use chains of g one definition at a
// time: every variable a node reachable from the entry may write is
// followed along the successors until a node definitely writes it
// again. Memory use is linear in the size of g. The chains are sorted
// by definition node, use node and variable.
func ReachingUses[V comparable](g cfg.Graph[V], log io.Writer) []DefUseChain[V] {
	s := newSolver(g, log)
	if s.log != nil {
		fmt.Fprintf(s.log, "\n\n----- Following definitions ---------\n\n")
	}

	var defsVisited nodeset
	defsVisited.add(nodeid(g.Entry()))
	defs := []int{g.Entry()}
	for len(defs) > 0 {
		d := defs[0]
		defs = defs[1:]
		for _, v := range g.PossiblyWritten(d) {
			s.follow(Def[V]{d, v})
		}
		for _, succ := range g.Successors(d) {
			if defsVisited.add(nodeid(succ)) {
				defs = append(defs, succ)
			}
		}
	}
	return s.result()
}

// follow finds the uses reached by one definition.
func (s *solver[V]) follow(def Def[V]) {
	if s.log != nil {
		fmt.Fprintf(s.log, "\tdef n%d %v\n", def.Node, def.Var)
	}
	var visited nodeset
	for _, succ := range s.g.Successors(def.Node) {
		if visited.add(nodeid(succ)) {
			s.worklist.add(nodeid(succ))
		}
	}
	for {
		var x int
		if !s.worklist.TakeMin(&x) {
			break // empty
		}
		if absval.Possibly(s.g.Read(x, def.Var)) {
			s.addChain(DefUseChain[V]{def, x})
		}
		if absval.Definitely(s.g.Written(x, def.Var)) {
			continue
		}
		for _, succ := range s.g.Successors(x) {
			if visited.add(nodeid(succ)) {
				s.worklist.add(nodeid(succ))
			}
		}
	}
}

// DefUseChains computes the def-use chains of g with the classic
// reaching definitions fixpoint. It gives the same chains as
// ReachingUses, but keeps the reaching definitions of every node at
// once.
func DefUseChains[V comparable](g cfg.Graph[V], log io.Writer) []DefUseChain[V] {
	s := newSolver(g, log)
	if s.log != nil {
		fmt.Fprintf(s.log, "\n\n----- Solving reaching definitions ---------\n\n")
	}

	// Definitions are numbered in order of discovery.
	var defs []Def[V]
	defID := make(map[Def[V]]nodeid)
	number := func(d Def[V]) nodeid {
		if id, ok := defID[d]; ok {
			return id
		}
		id := nodeid(len(defs))
		defs = append(defs, d)
		defID[d] = id
		return id
	}

	reaching := make([]*nodeset, g.Len())
	reaching[g.Entry()] = new(nodeset)
	s.worklist.add(nodeid(g.Entry()))
	for {
		var x int
		if !s.worklist.TakeMin(&x) {
			break // empty
		}
		if s.log != nil {
			fmt.Fprintf(s.log, "\ttake node n%d\n", x)
		}

		var leaving nodeset
		for _, d := range reaching[x].AppendTo(nil) {
			def := defs[d]
			if absval.Possibly(g.Read(x, def.Var)) {
				s.addChain(DefUseChain[V]{def, x})
			}
			if !absval.Definitely(g.Written(x, def.Var)) {
				leaving.add(nodeid(d))
			}
		}
		for _, v := range g.PossiblyWritten(x) {
			leaving.add(number(Def[V]{x, v}))
		}

		for _, succ := range g.Successors(x) {
			if reaching[succ] == nil {
				reaching[succ] = new(nodeset)
				reaching[succ].Copy(&leaving.Sparse)
				s.worklist.add(nodeid(succ))
			} else if reaching[succ].addAll(&leaving) {
				s.worklist.add(nodeid(succ))
			}
		}
	}

	if s.log != nil {
		fmt.Fprintf(s.log, "Solver done\n")
	}
	return s.result()
}
