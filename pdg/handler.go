package pdg

import (
	"github.com/yangshenyi/SDG4Go/explore"
	"github.com/yangshenyi/SDG4Go/model"
)

// A Handler builds the PDG of every transition. The advanced variant
// additionally models wakeups with trigger variables, which connect
// the PDGs of different transitions.
type Handler struct {
	ix       *model.Index
	advanced bool
}

// NewHandler returns a handler building plain PDGs.
func NewHandler(ix *model.Index) *Handler { return &Handler{ix: ix} }

// NewAdvancedHandler returns a handler that adds trigger variables.
func NewAdvancedHandler(ix *model.Index) *Handler { return &Handler{ix: ix, advanced: true} }

func (h *Handler) Neutral() explore.Information {
	i := NewInfo()
	i.Lock()
	return i
}

// entryStack returns the location stack at which code resumes in ps.
func entryStack(ps *explore.ProcessState) []explore.Location {
	locs := ps.Locations()
	if cf := ps.Top().ComingFrom; cf != -1 {
		top := &locs[len(locs)-1]
		top.Indices = append(top.Indices, cf+1)
	}
	return locs
}

func (h *Handler) StartOfCode(t *explore.Transition) (explore.Information, error) {
	info := unlocked(t.Info)
	s := StatementID{This: t.Origin, Stack: entryStack(t.Local())}
	entry := info.node(stmtNode(Entry, s), &s)
	info.entry = entry
	if h.advanced {
		trigger := explore.BlockTriggerOf(t.Origin, s.Stack)
		info.insertEdge(Control, info.inNode(trigger), entry)
	}
	return info, nil
}

func (h *Handler) Announce(t *explore.Transition, e model.Expression) error {
	top := t.Local().Top()
	idx := top.Indices[len(top.Indices)-1]
	if !h.isRelevant(top.Function, e, idx, top.ComingFrom) {
		t.SetAnnounced(nil)
		return nil
	}
	t.SetAnnounced(t.Local().Locations())
	if h.advanced {
		return h.announceNotify(t, e)
	}
	return nil
}

func (h *Handler) parent(fn *model.Function, e model.Expression) model.Expression {
	return h.ix.Parent(fn, e)
}

// isRelevant reports whether evaluating e, entered from child
// comingFrom, may change the PDG. idx is e's index in its parent.
func (h *Handler) isRelevant(fn *model.Function, e model.Expression, idx, comingFrom int) bool {
	if e == nil {
		return comingFrom == -2
	}
	children := e.Children()
	n := len(children)
	end := comingFrom == n-1

	switch e := e.(type) {
	case *model.VarRef:
		return true
	case *model.Binary:
		if end && e.Op == "=" {
			return true
		}
	case *model.Call:
		if comingFrom == n-1 || comingFrom == n {
			return true
		}
	case *model.Notify:
		if end {
			return true
		}
	}
	if comingFrom >= 0 && comingFrom < n {
		if c, ok := children[comingFrom].(*model.Call); ok && c.Func.Returns && !h.isTopOfStatement(fn, c) {
			return true
		}
	}
	parent := h.parent(fn, e)
	if parent != nil && comingFrom == -1 {
		if ci := controllingIndex(parent, 1); ci != -1 && idx == ci {
			return true
		}
	}
	if _, ok := e.(*model.Return); ok {
		return comingFrom == 0
	}
	switch p := parent.(type) {
	case *model.Call:
		return end
	case *model.Access:
		if _, ok := p.Member.(*model.Call); ok && idx == 0 {
			return end
		}
	}
	return false
}

// isTopOfStatement reports whether e is a statement of a block or the
// controlling expression of a control structure.
func (h *Handler) isTopOfStatement(fn *model.Function, e model.Expression) bool {
	switch p := h.parent(fn, e).(type) {
	case nil, *model.Switch, *model.Case, *model.If, *model.While, *model.DoWhile, *model.For, *model.Block:
		return true
	case *model.Access:
		if _, ok := e.(*model.Call); ok && p.Member == e {
			return h.isTopOfStatement(fn, p)
		}
	}
	return false
}

// formsOwnNode reports whether e has a node of its own, in contrast
// to being part of an ancestor's node.
func (h *Handler) formsOwnNode(fn *model.Function, e model.Expression) bool {
	if e == nil {
		return true
	}
	parent := h.parent(fn, e)
	switch e.(type) {
	case *model.Call, *model.Notify:
		return true
	}
	switch p := parent.(type) {
	case *model.Call:
		return true
	case *model.Access:
		if _, ok := p.Member.(*model.Call); ok && p.X == e {
			return true
		}
	}
	return h.isTopOfStatement(fn, e)
}

// trim moves the top location of stack up to the nearest expression
// with a node of its own.
func (h *Handler) trim(stack []explore.Location) []explore.Location {
	r := append([]explore.Location(nil), stack...)
	top := r[len(r)-1]
	e := top.Expression()
	for !h.formsOwnNode(top.Function, e) {
		top = top.Parent()
		e = top.Expression()
	}
	r[len(r)-1] = top
	return r
}

// controllingIndex returns the index of the child of parent that
// controls its child idx, or -1. Loop conditions control themselves.
func controllingIndex(parent model.Expression, idx int) int {
	switch p := parent.(type) {
	case *model.If, *model.Switch:
		if idx == 0 {
			return -1
		}
		return 0
	case *model.For:
		if idx == 0 {
			return -1
		}
		return 1
	case *model.While, *model.DoWhile:
		return 0
	case *model.Case:
		if p.IsDefault() || idx == 0 {
			return -1
		}
		return 0
	}
	return -1
}

func functions(stack []explore.Location) []*model.Function {
	fns := make([]*model.Function, len(stack))
	for i, l := range stack {
		fns[i] = l.Function
	}
	return fns
}

func with(fns []*model.Function, f *model.Function) []*model.Function {
	return append(fns[:len(fns):len(fns)], f)
}

func addVar(vs []explore.Variable, v explore.Variable) []explore.Variable {
	for _, x := range vs {
		if x == v {
			return vs
		}
	}
	return append(vs, v)
}

// paramVariable is the variable an argument of call is bound to.
// Built-ins and calls whose arity does not match the declaration bind
// positional arguments.
func paramVariable(fns []*model.Function, call *model.Call, idx int) explore.Variable {
	callee := with(fns, call.Func)
	if call.Func.IsBuiltin() || len(call.Func.Params) != len(call.Args) {
		return explore.Local(callee, explore.ArgDecl(idx))
	}
	return explore.Local(callee, call.Func.Params[idx])
}

// step is the bookkeeping of one evaluated expression.
type step struct {
	t         *explore.Transition
	info      *Info
	e         model.Expression
	fn        *model.Function
	parent    model.Expression
	idx       int
	stack     []explore.Location // announced location stack
	fns       []*model.Function  // functions of stack
	read      []explore.Variable
	written   []explore.Variable
	node      nodeid
	statement StatementID // untrimmed
}

func (s *step) statementNode() nodeid {
	if s.node == noNode {
		s.node = s.info.statement(s.statement)
	}
	return s.node
}

func (h *Handler) Evaluated(t *explore.Transition, e model.Expression, comingFrom int) (explore.Information, error) {
	if e == nil {
		if comingFrom != -2 {
			return t.Info, nil
		}
		info := unlocked(t.Info)
		info.forget(func(v explore.Variable) bool { return v.Kind == explore.LocalVar })
		return info, nil
	}
	stack := t.Announced()
	if stack == nil {
		return t.Info, nil
	}
	top := stack[len(stack)-1]
	s := &step{
		t:         t,
		info:      unlocked(t.Info),
		e:         e,
		fn:        top.Function,
		parent:    h.parent(top.Function, e),
		idx:       top.Indices[len(top.Indices)-1],
		stack:     stack,
		fns:       functions(stack),
		read:      append([]explore.Variable(nil), t.ReadVariables()...),
		written:   append([]explore.Variable(nil), t.WrittenVariables()...),
		node:      noNode,
		statement: StatementID{This: t.Origin, Stack: stack},
	}
	info := s.info
	n := len(e.Children())
	finished := comingFrom == n-1

	if finished {
		switch p := s.parent.(type) {
		case *model.Call:
			s.written = addVar(s.written, paramVariable(s.fns, p, s.idx))
		case *model.Access:
			if call, ok := p.Member.(*model.Call); ok && s.idx == 0 {
				s.written = addVar(s.written, explore.Local(with(s.fns, call.Func), explore.ThisDecl))
			}
		}
	}

	if call, ok := e.(*model.Call); ok {
		switch {
		case comingFrom == n-1 && call.Func == model.RequestUpdate:
			if err := h.requestUpdate(s); err != nil {
				return nil, err
			}
		case comingFrom == n-1 && call.Func == model.Wait:
			h.wait(s)
		case comingFrom == n-1:
			// the arguments were bound when they were evaluated
			s.written = nil
			callee := with(s.fns, call.Func)
			if a, ok := s.parent.(*model.Access); !ok || a.Member != e {
				s.read = addVar(s.read, explore.Local(s.fns, explore.ThisDecl))
				s.written = addVar(s.written, explore.Local(callee, explore.ThisDecl))
			}
			s.read = addVar(s.read, explore.Local(callee, explore.ThisDecl))
		case comingFrom == n:
			// returned: the callee's locals are out of scope
			depth := len(s.fns) + 1
			var keep *explore.Variable
			if call.Func.Returns && !h.isTopOfStatement(s.fn, call) {
				r := explore.Local(with(s.fns, call.Func), explore.ResultDecl)
				keep = &r
			}
			info.forget(func(v explore.Variable) bool {
				return v.Kind == explore.LocalVar && v.Depth >= depth && (keep == nil || v != *keep)
			})
		}
	}

	if _, ok := e.(*model.Return); ok && comingFrom == 0 {
		s.written = addVar(s.written, explore.Local(s.fns, explore.ResultDecl))
	}

	var usedResult *explore.Variable
	if comingFrom >= 0 && comingFrom < n {
		if c, ok := e.Children()[comingFrom].(*model.Call); ok && c.Func.Returns && !h.isTopOfStatement(s.fn, c) {
			r := explore.Local(with(s.fns, c.Func), explore.ResultDecl)
			usedResult = &r
			s.read = addVar(s.read, r)
		}
	}

	if notify, ok := e.(*model.Notify); ok && finished {
		h.notify(s, notify)
	}

	trimmed := StatementID{This: t.Origin, Stack: h.trim(stack)}
	if len(s.read) > 0 {
		s.node = info.statement(trimmed)
		for _, v := range s.read {
			info.readBy(v, s.node)
		}
	}
	if usedResult != nil {
		info.forget(func(v explore.Variable) bool { return v == *usedResult })
	}
	if len(s.written) > 0 {
		s.node = info.statement(trimmed)
		for _, v := range s.written {
			info.define(v, s.node)
		}
	}

	if s.node == noNode && s.parent != nil && comingFrom == -1 {
		if ci := controllingIndex(s.parent, 1); ci != -1 && s.idx == ci {
			s.node = info.statement(trimmed)
		}
	}
	if s.node == noNode {
		return info, nil
	}

	if _, ok := s.parent.(*model.Call); ok && finished {
		callStack := append([]explore.Location(nil), stack...)
		callStack[len(callStack)-1] = top.Parent()
		call := info.statement(StatementID{This: t.Origin, Stack: callStack})
		info.insertEdge(Member, call, s.node)
	} else if !info.hasControlDependency(s.node) {
		for _, c := range h.controlling(e, stack) {
			from := info.entry
			if c != nil {
				if n, ok := info.index[stmtNode(Statement, StatementID{This: t.Origin, Stack: c})]; ok {
					from = n
				}
			}
			if from != noNode {
				info.insertEdge(Control, from, s.node)
			}
		}
	}
	return info, nil
}

// controlling returns the location stacks of the expressions
// controlling e at stack. A nil stack stands for the entry node.
func (h *Handler) controlling(e model.Expression, stack []explore.Location) [][]explore.Location {
	replaceTop := func(l explore.Location) []explore.Location {
		r := append([]explore.Location(nil), stack...)
		r[len(r)-1] = l
		return r
	}
	cur := stack[len(stack)-1]
	var result [][]explore.Location
	for {
		if e == nil || len(cur.Indices) == 0 {
			if len(stack) == 1 {
				return append(result, nil)
			}
			// controlled by the call
			caller := h.trim(stack[:len(stack)-1])
			return append(result, caller)
		}
		idx := cur.Indices[len(cur.Indices)-1]
		parent := h.parent(cur.Function, e)
		ci := controllingIndex(parent, idx)

		if _, ok := e.(*model.Case); ok && idx >= 2 && mayFallThrough(parent.(*model.Switch).Cases[idx-2]) {
			prev := cur.Parent().Child(idx - 1)
			result = append(result, replaceTop(prev))
		}

		switch ci {
		case -1:
		case idx:
			result = append(result, replaceTop(cur))
		default:
			ctl := cur.Parent().Child(ci)
			return append(result, replaceTop(ctl))
		}
		cur = cur.Parent()
		e = parent
	}
}

// mayFallThrough reports whether the body of c may run into the next
// case.
func mayFallThrough(c *model.Case) bool {
	if len(c.Body) == 0 {
		return true
	}
	last := c.Body[len(c.Body)-1]
	for {
		b, ok := last.(*model.Block)
		if !ok || len(b.List) == 0 {
			break
		}
		last = b.List[len(b.List)-1]
	}
	switch last.(type) {
	case *model.Break, *model.Return, *model.Continue:
		return false
	}
	return true
}

func (h *Handler) wait(s *step) {
	s.statementNode()
	if h.advanced {
		h.waitTrigger(s)
	}
}

func (h *Handler) requestUpdate(s *step) error {
	s.statementNode()
	if h.advanced {
		return h.requestUpdateTrigger(s)
	}
	return nil
}

func (h *Handler) notify(s *step, e *model.Notify) {
	if h.advanced {
		h.notifyTrigger(s, e)
		return
	}
	s.statementNode()
}

// Finalize adds an Out node for every variable defined at the end of
// the transition and locks the information.
func (h *Handler) Finalize(info explore.Information) explore.Information {
	i := unlocked(info)
	vars := make([]explore.Variable, 0, len(i.reaching))
	for v := range i.reaching {
		vars = append(vars, v)
	}
	sortVariables(vars)
	for _, v := range vars {
		d := i.reaching[v]
		out := i.node(varNode(Out, v), nil)
		if d.external {
			i.mustInsertEdge(Data, i.inNode(v), out)
		}
		for _, def := range d.nodes.ids() {
			i.mustInsertEdge(Data, def, out)
		}
	}
	i.reaching = make(map[explore.Variable]*defs)
	i.Lock()
	return i
}

func (h *Handler) WaitedForDelta(t *explore.Transition, _ *explore.Process) explore.Information {
	return t.Info
}

func (h *Handler) WaitedForTime(t *explore.Transition, _ *explore.Process) explore.Information {
	return t.Info
}

func (h *Handler) WaitedForEvents(t *explore.Transition, p *explore.Process, events []*model.Event, before *explore.EventBlocker) (explore.Information, error) {
	if !h.advanced {
		return t.Info, nil
	}
	return h.wakeup(t, p, events, before), nil
}
