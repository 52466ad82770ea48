package explore

import (
	"sync"

	"golang.org/x/tools/container/intsets"

	"github.com/yangshenyi/SDG4Go/absval"
	"github.com/yangshenyi/SDG4Go/cfg"
)

// A Record collects the states and transitions found by an
// exploration as an interleaving control-flow graph: every transition
// is a node, and node a precedes node b whenever a ends in the state b
// starts from. Node 0 is a synthetic entry that ends in the initial
// state. Transitions are identified by their start and end states and
// the key of their information, so exploring the same transition twice
// adds nothing.
type Record struct {
	mu *sync.Mutex // nil unless the record is shared between workers

	states  []*State
	stateID map[string]int

	nodes    []*RecordNode
	nodeID   map[recordKey]int
	reaching map[int][]int // state -> nodes ending in it
	leaving  map[int][]int // state -> nodes starting from it
}

// A RecordNode is a recorded transition. From is -1 for the entry.
type RecordNode struct {
	ID       int
	From, To int // state numbers
	Info     Information
	Proc     *Process // nil for scheduler transitions and the entry

	succs, preds intsets.Sparse
}

type recordKey struct {
	from, to int
	info     string
}

var _ cfg.Graph[Variable] = (*Record)(nil)

// NewRecord returns a record holding only the entry node leading to
// initial, which must be locked. If shared is set, the record may be
// used by several goroutines at once.
func NewRecord(initial *State, shared bool) *Record {
	r := &Record{
		stateID:  make(map[string]int),
		nodeID:   make(map[recordKey]int),
		reaching: make(map[int][]int),
		leaving:  make(map[int][]int),
	}
	if shared {
		r.mu = new(sync.Mutex)
	}
	r.addState(initial)
	r.addNode(-1, 0, nil, nil)
	return r
}

func (r *Record) lock() func() {
	if r.mu == nil {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *Record) addState(st *State) (int, bool) {
	k := st.Key()
	if id, ok := r.stateID[k]; ok {
		return id, false
	}
	id := len(r.states)
	r.states = append(r.states, st)
	r.stateID[k] = id
	return id, true
}

// addNode registers the transition from -> to and links it after
// every node ending in from and before every node starting from to.
func (r *Record) addNode(from, to int, info Information, p *Process) {
	k := recordKey{from, to, ""}
	if info != nil {
		k.info = info.Key()
	}
	if _, ok := r.nodeID[k]; ok {
		return
	}
	n := &RecordNode{ID: len(r.nodes), From: from, To: to, Info: info, Proc: p}
	r.nodes = append(r.nodes, n)
	r.nodeID[k] = n.ID
	r.reaching[to] = append(r.reaching[to], n.ID)
	if from >= 0 {
		r.leaving[from] = append(r.leaving[from], n.ID)
		for _, pred := range r.reaching[from] {
			r.link(pred, n.ID)
		}
	}
	for _, succ := range r.leaving[to] {
		r.link(n.ID, succ)
	}
}

func (r *Record) link(from, to int) {
	if r.nodes[from].succs.Insert(to) {
		r.nodes[to].preds.Insert(from)
	}
}

// Add records t, which starts from the recorded state from. It
// returns the recorded state equal to t.State and whether that state
// was seen for the first time.
func (r *Record) Add(from *State, t *Transition) (*State, bool) {
	defer r.lock()()
	fromID, ok := r.stateID[from.Key()]
	if !ok {
		panic("transition from unrecorded state")
	}
	toID, isNew := r.addState(t.State)
	r.addNode(fromID, toID, t.Info, t.Proc)
	return r.states[toID], isNew
}

// NumStates returns the number of distinct states recorded so far.
func (r *Record) NumStates() int {
	defer r.lock()()
	return len(r.states)
}

// State returns the state with number id.
func (r *Record) State(id int) *State {
	defer r.lock()()
	return r.states[id]
}

// Node returns the node with number n.
func (r *Record) Node(n int) *RecordNode {
	defer r.lock()()
	return r.nodes[n]
}

func (r *Record) Len() int {
	defer r.lock()()
	return len(r.nodes)
}

func (r *Record) Entry() int { return 0 }

// Exits returns the nodes without successors: the transitions ending
// in states that were never left.
func (r *Record) Exits() []int {
	defer r.lock()()
	var exits []int
	for _, n := range r.nodes {
		if n.succs.IsEmpty() {
			exits = append(exits, n.ID)
		}
	}
	return exits
}

func (r *Record) Successors(n int) []int {
	defer r.lock()()
	return r.nodes[n].succs.AppendTo(nil)
}

func (r *Record) Predecessors(n int) []int {
	defer r.lock()()
	return r.nodes[n].preds.AppendTo(nil)
}

func (r *Record) Read(n int, v Variable) absval.Value {
	if a := accessesOf(r.Node(n).Info); a != nil {
		return a.Read(v)
	}
	return absval.Bool(false)
}

func (r *Record) Written(n int, v Variable) absval.Value {
	if a := accessesOf(r.Node(n).Info); a != nil {
		return a.Written(v)
	}
	return absval.Bool(false)
}

func (r *Record) PossiblyWritten(n int) []Variable {
	a := accessesOf(r.Node(n).Info)
	if a == nil {
		return nil
	}
	var vs []Variable
	for _, v := range a.Variables() {
		if absval.Possibly(a.Written(v)) {
			vs = append(vs, v)
		}
	}
	return vs
}

// accessesOf returns the part of info that knows about variable
// accesses, looking into paired informations first-first.
func accessesOf(info Information) Accesses {
	switch i := info.(type) {
	case Accesses:
		return i
	case TwoInformation:
		if a := accessesOf(i.First); a != nil {
			return a
		}
		return accessesOf(i.Second)
	}
	return nil
}

// InformationOf returns the first information of type T in info,
// looking into paired informations.
func InformationOf[T Information](info Information) (T, bool) {
	switch i := info.(type) {
	case T:
		return i, true
	case TwoInformation:
		if x, ok := InformationOf[T](i.First); ok {
			return x, true
		}
		return InformationOf[T](i.Second)
	}
	var zero T
	return zero, false
}
