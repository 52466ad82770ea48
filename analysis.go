// Package sdg computes the system dependence graph of an event-driven
// process model. It explores the abstract state space of the model,
// builds a program dependence graph per explored transition and
// connects the transitions by the def-use chains of their interleaving.
package sdg

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/yangshenyi/SDG4Go/absval"
	"github.com/yangshenyi/SDG4Go/explore"
	"github.com/yangshenyi/SDG4Go/model"
	"github.com/yangshenyi/SDG4Go/pdg"
)

// A Config formulates a dependence analysis problem for Analyze. It is
// only usable for a single invocation of Analyze and must not be
// reused.
type Config struct {
	System *model.System

	// Handler computes the transition informations. It must produce
	// a *pdg.Info, possibly paired with other informations. nil
	// means a PDG handler, with trigger variables if Advanced is set.
	Handler  explore.Handler
	Advanced bool

	Threads          int
	StopMode         explore.StopMode
	TrackEvent       func(*model.Event) bool
	TrackVariable    func(explore.Variable) bool
	MaxStates        int
	OnPrecisionError explore.PrecisionPolicy

	Log io.Writer
}

// A Result holds the results of a dependence analysis.
type Result struct {
	Sdg    *Sdg
	Record *explore.Record
	Chains []DefUseChain[explore.Variable]

	// Incomplete holds the precision errors of skipped steps; the
	// Sdg does not cover their transitions.
	Incomplete []error
	Truncated  bool
}

// An analysis instance holds the state of a single dependence analysis
// problem.
type analysis struct {
	config *Config
	ix     *model.Index
	log    io.Writer // log stream; nil to disable
}

// Analyze runs the dependence analysis specified by config.
func Analyze(ctx context.Context, config *Config) (result *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("internal error in dependence analysis: %v (please report this bug)", p)
			fmt.Fprintln(os.Stderr, "Internal panic in dependence analysis:")
			debug.PrintStack()
		}
	}()

	a := &analysis{
		config: config,
		ix:     model.NewIndex(),
		log:    config.Log,
	}

	if false {
		a.log = os.Stderr // for debugging crashes; extremely verbose
	}

	if a.log != nil {
		fmt.Fprintln(a.log, "==== Starting analysis")
	}

	h := config.Handler
	if h == nil {
		if config.Advanced {
			h = pdg.NewAdvancedHandler(a.ix)
		} else {
			h = pdg.NewHandler(a.ix)
		}
	}
	s, err := explore.NewScheduler(config.System, explore.Config{
		Handler:       h,
		StopMode:      config.StopMode,
		TrackEvent:    config.TrackEvent,
		TrackVariable: config.TrackVariable,
		Log:           a.log,
	})
	if err != nil {
		return nil, err
	}

	x, err := explore.Explore(ctx, s, explore.Options{
		Threads:          config.Threads,
		MaxStates:        config.MaxStates,
		OnPrecisionError: config.OnPrecisionError,
	})
	if err != nil {
		return nil, fmt.Errorf("exploration: %w", err)
	}

	g, chains := Build(x.Record, a.log)
	return &Result{
		Sdg:        g,
		Record:     x.Record,
		Chains:     chains,
		Incomplete: x.Incomplete,
		Truncated:  x.Truncated,
	}, nil
}

// Build assembles the Sdg of an exploration record whose transitions
// carry PDGs. Every PDG is integrated under the number of its record
// node; every def-use chain of the record adds a DATA edge from the
// OUT node of the definition to the IN node of the use. Build returns
// the chains too.
func Build(rec *explore.Record, log io.Writer) (*Sdg, []DefUseChain[explore.Variable]) {
	if log != nil {
		fmt.Fprintf(log, "==== Building SDG from %d transitions\n", rec.Len()-1)
	}
	g := New()
	view := pdgView{rec}
	for n := 0; n < rec.Len(); n++ {
		if info := view.info(n); info != nil {
			g.IntegratePdg(n, info)
		}
	}

	chains := ReachingUses[explore.Variable](view, log)
	for _, c := range chains {
		v := c.Def.Var
		from := SdgNodeID{c.Def.Node, pdgNode(pdg.Out, v)}
		to := SdgNodeID{c.Use, pdgNode(pdg.In, v)}
		if _, err := g.AddEdge(pdg.Data, from, to); err != nil {
			panic(err)
		}
	}
	if log != nil {
		fmt.Fprintf(log, "SDG done: %d nodes, %d chains\n", g.Len(), len(chains))
	}
	return g, chains
}

func pdgNode(k pdg.NodeKind, v explore.Variable) pdg.NodeID { return pdg.NodeID{Kind: k, Var: v} }

// pdgView is the record seen through the PDGs of its transitions, so
// that accesses agree with the IN and OUT nodes even when the PDG is
// paired with other informations.
type pdgView struct {
	*explore.Record
}

func (v pdgView) info(n int) *pdg.Info {
	info, _ := explore.InformationOf[*pdg.Info](v.Node(n).Info)
	return info
}

func (v pdgView) Read(n int, x explore.Variable) absval.Value {
	if info := v.info(n); info != nil {
		return info.Read(x)
	}
	return absval.Bool(false)
}

func (v pdgView) Written(n int, x explore.Variable) absval.Value {
	if info := v.info(n); info != nil {
		return info.Written(x)
	}
	return absval.Bool(false)
}

func (v pdgView) PossiblyWritten(n int) []explore.Variable {
	info := v.info(n)
	if info == nil {
		return nil
	}
	var vs []explore.Variable
	for _, x := range info.Variables() {
		if absval.Possibly(info.Written(x)) {
			vs = append(vs, x)
		}
	}
	return vs
}
