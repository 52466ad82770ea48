// Command sdg4go computes the system dependence graph of one of the
// built-in example systems and prints it. On a terminal it prints a
// summary and the edges between transitions; otherwise it writes the
// graph in DOT format.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"

	sdg "github.com/yangshenyi/SDG4Go"
	"github.com/yangshenyi/SDG4Go/model"
	"github.com/yangshenyi/SDG4Go/model/modeltest"
	visual "github.com/yangshenyi/SDG4Go/visualize"
)

var systems = map[string]func() *model.System{
	"producer-consumer": modeltest.ProducerConsumer,
	"sequential":        func() *model.System { return modeltest.Sequential().System },
	"branch":            func() *model.System { return modeltest.Branch().System },
	"notification":      func() *model.System { return modeltest.Notification().System },
	"handoff":           func() *model.System { return modeltest.Handoff().System },
}

var (
	configFlag   = flag.String("config", "", "YAML file with analysis options")
	systemFlag   = flag.String("system", "producer-consumer", "example system to analyze")
	threadsFlag  = flag.Int("threads", 0, "number of exploration workers (overrides the config)")
	advancedFlag = flag.Bool("advanced", false, "track trigger variables")
	sliceFlag    = flag.String("slice", "", "only draw the backwards slice of this node, e.g. \"p3(IN top.g)\"")
	formatFlag   = flag.String("format", "", "render an image of this format with graphviz (svg, png, ...)")
	outFlag      = flag.String("o", "sdg", "image file name without extension")
	verboseFlag  = flag.Bool("v", false, "log the analysis to stderr")
	dotFlag      = flag.Bool("dot", false, "write DOT even on a terminal")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "sdg4go:", err)
		os.Exit(1)
	}
}

func run() error {
	mk, ok := systems[*systemFlag]
	if !ok {
		var names []string
		for n := range systems {
			names = append(names, n)
		}
		sort.Strings(names)
		return fmt.Errorf("unknown system %q; known: %v", *systemFlag, names)
	}
	sys := mk()

	opts := new(sdg.Options)
	if *configFlag != "" {
		var err error
		if opts, err = sdg.LoadConfig(*configFlag); err != nil {
			return err
		}
	}
	if *threadsFlag > 0 {
		opts.Threads = *threadsFlag
	}
	if *advancedFlag {
		opts.Advanced = true
	}
	config, err := opts.Config(sys)
	if err != nil {
		return err
	}
	if *verboseFlag {
		config.Log = os.Stderr
	}

	result, err := sdg.Analyze(context.Background(), config)
	if err != nil {
		return err
	}
	for _, e := range result.Incomplete {
		fmt.Fprintln(os.Stderr, "skipped:", e)
	}
	if result.Truncated {
		fmt.Fprintln(os.Stderr, "exploration truncated at", opts.MaxStates, "states")
	}

	vopts := visual.Options{Title: *systemFlag}
	if *sliceFlag != "" {
		id, ok := findNode(result.Sdg, *sliceFlag)
		if !ok {
			return fmt.Errorf("no node %q", *sliceFlag)
		}
		vopts.Slice = &id
	}

	if *formatFlag != "" {
		dot, err := visual.PrintOutput(result.Sdg, vopts)
		if err != nil {
			return err
		}
		img, err := visual.RenderImage(*outFlag, *formatFlag, dot)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "wrote", img)
		return nil
	}

	if !*dotFlag && isatty.IsTerminal(os.Stdout.Fd()) {
		summarize(os.Stdout, result)
		return nil
	}
	dot, err := visual.PrintOutput(result.Sdg, vopts)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(dot)
	return err
}

func findNode(g *sdg.Sdg, name string) (sdg.SdgNodeID, bool) {
	for _, id := range g.Nodes() {
		if id.String() == name {
			return id, true
		}
	}
	return sdg.SdgNodeID{}, false
}

func summarize(w io.Writer, r *sdg.Result) {
	fmt.Fprintf(w, "%d states, %d transitions, %d PDGs, %d nodes, %d chains\n",
		r.Record.NumStates(), r.Record.Len()-1, len(r.Sdg.Pdgs()), r.Sdg.Len(), len(r.Chains))
	for _, e := range r.Sdg.Edges() {
		if e.From.Pdg != e.To.Pdg {
			fmt.Fprintln(w, "\t", e)
		}
	}
}
