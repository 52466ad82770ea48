package explore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// PrecisionPolicy selects what an exploration does with a step that
// fails with a *PrecisionError.
type PrecisionPolicy int

const (
	// SkipImpreciseSteps drops the failing step, keeps exploring and
	// reports the error in Exploration.Incomplete.
	SkipImpreciseSteps PrecisionPolicy = iota
	// AbortOnPrecisionError ends the exploration with the error.
	AbortOnPrecisionError
)

// Options bounds and tunes an exploration.
type Options struct {
	// Threads is the number of workers. Values below 2 explore
	// sequentially.
	Threads int
	// MaxStates is the maximum number of states whose successors are
	// computed. Zero means no bound.
	MaxStates int
	// OnPrecisionError selects how imprecise steps are handled.
	OnPrecisionError PrecisionPolicy
}

// An Exploration is the outcome of exploring a system.
type Exploration struct {
	Record *Record
	// Incomplete holds the precision errors of the skipped steps.
	Incomplete []error
	// Truncated is set if MaxStates stopped the exploration early.
	Truncated bool
}

type explorer struct {
	s        *Scheduler
	opts     Options
	expanded atomic.Int64

	mu  sync.Mutex
	res Exploration
}

// Explore explores every state reachable from the initial state of s,
// sequentially or on opts.Threads workers.
func Explore(ctx context.Context, s *Scheduler, opts Options) (*Exploration, error) {
	if opts.Threads > 1 {
		return ConcurrentExploration(ctx, s, opts)
	}
	return SequentialExploration(ctx, s, opts)
}

// SequentialExploration explores the states of s breadth first.
func SequentialExploration(ctx context.Context, s *Scheduler, opts Options) (*Exploration, error) {
	x := &explorer{s: s, opts: opts}
	initial := s.InitialState()
	x.res.Record = NewRecord(initial, false)
	if s.log != nil {
		fmt.Fprintln(s.log, "==== Starting exploration")
	}

	queue := []*State{initial}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !x.claim() {
			break
		}
		st := queue[0]
		queue = queue[1:]
		next, err := x.expand(st)
		if err != nil {
			return nil, err
		}
		queue = append(queue, next...)
	}
	x.logDone()
	return &x.res, nil
}

// ConcurrentExploration explores the states of s on opts.Threads
// workers sharing one record. The first failing worker cancels the
// others and aborts the scheduler.
func ConcurrentExploration(ctx context.Context, s *Scheduler, opts Options) (*Exploration, error) {
	x := &explorer{s: s, opts: opts}
	initial := s.InitialState()
	x.res.Record = NewRecord(initial, true)
	if s.log != nil {
		fmt.Fprintf(s.log, "==== Starting exploration (%d workers)\n", opts.Threads)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Threads)

	// work handles st and every successor no free worker takes over.
	var work func(st *State) error
	work = func(st *State) error {
		local := []*State{st}
		for len(local) > 0 {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !x.claim() {
				return nil
			}
			cur := local[len(local)-1]
			local = local[:len(local)-1]
			next, err := x.expand(cur)
			if err != nil {
				s.Abort()
				return err
			}
			for _, n := range next {
				n := n
				if !g.TryGo(func() error { return work(n) }) {
					local = append(local, n)
				}
			}
		}
		return nil
	}
	g.Go(func() error { return work(initial) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	x.logDone()
	return &x.res, nil
}

// claim reserves the expansion of one more state and reports whether
// MaxStates allows it.
func (x *explorer) claim() bool {
	if x.opts.MaxStates <= 0 {
		return true
	}
	if x.expanded.Add(1) > int64(x.opts.MaxStates) {
		x.mu.Lock()
		x.res.Truncated = true
		x.mu.Unlock()
		return false
	}
	return true
}

// expand computes the successors of st, records them and returns the
// states seen for the first time.
func (x *explorer) expand(st *State) ([]*State, error) {
	ts, err := x.successors(st)
	if err != nil {
		return nil, err
	}
	rec := x.res.Record
	var next []*State
	for _, t := range ts {
		to, isNew := rec.Add(st, t)
		if isNew {
			next = append(next, to)
		}
	}
	if x.s.log != nil {
		fmt.Fprintf(x.s.log, "\tstate with %d transitions, %d new states\n", len(ts), len(next))
	}
	return next, nil
}

func (x *explorer) successors(st *State) ([]*Transition, error) {
	ts, err := x.s.Successors(st)
	if err == nil {
		return ts, nil
	}
	errs := []error{err}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		errs = j.Unwrap()
	}
	for _, err := range errs {
		if !IsPrecision(err) || x.opts.OnPrecisionError != SkipImpreciseSteps {
			return nil, err
		}
	}
	x.mu.Lock()
	x.res.Incomplete = append(x.res.Incomplete, errs...)
	x.mu.Unlock()
	if x.s.log != nil {
		for _, err := range errs {
			fmt.Fprintf(x.s.log, "\tskipped step: %v\n", err)
		}
	}
	return ts, nil
}

func (x *explorer) logDone() {
	if x.s.log != nil {
		rec := x.res.Record
		fmt.Fprintf(x.s.log, "Exploration done: %d states, %d transitions, %d skipped steps\n",
			rec.NumStates(), rec.Len()-1, len(x.res.Incomplete))
	}
}
