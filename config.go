package sdg

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yangshenyi/SDG4Go/explore"
	"github.com/yangshenyi/SDG4Go/model"
)

// Options is the declarative part of a Config, as read from a YAML
// file:
//
//	advanced: true
//	threads: 4
//	stop_mode: delta            # or immediate
//	max_states: 10000
//	on_precision_error: abort   # or skip
//	track_events: [prod.ready]  # all events if absent
//	track_variables: [chan.val, counter]
type Options struct {
	Advanced         bool     `yaml:"advanced"`
	Threads          int      `yaml:"threads"`
	StopMode         string   `yaml:"stop_mode"`
	MaxStates        int      `yaml:"max_states"`
	OnPrecisionError string   `yaml:"on_precision_error"`
	TrackEvents      []string `yaml:"track_events"`
	TrackVariables   []string `yaml:"track_variables"`
}

// LoadConfig reads Options from the YAML file at path. Unknown keys are
// an error.
func LoadConfig(path string) (*Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	opts, err := ReadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

// ReadConfig decodes Options from r. An empty input gives the zero
// Options.
func ReadConfig(r io.Reader) (*Options, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	opts := new(Options)
	if err := dec.Decode(opts); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return opts, nil
}

// Config returns a Config for analyzing sys with o. Event and variable
// names are qualified by instance ("inst.name"); system globals go by
// their plain name.
func (o *Options) Config(sys *model.System) (*Config, error) {
	c := &Config{System: sys, Advanced: o.Advanced, Threads: o.Threads, MaxStates: o.MaxStates}

	switch o.StopMode {
	case "", "immediate":
		c.StopMode = explore.StopFinishImmediate
	case "delta":
		c.StopMode = explore.StopFinishDelta
	default:
		return nil, fmt.Errorf("unknown stop_mode %q", o.StopMode)
	}

	switch o.OnPrecisionError {
	case "", "skip":
		c.OnPrecisionError = explore.SkipImpreciseSteps
	case "abort":
		c.OnPrecisionError = explore.AbortOnPrecisionError
	default:
		return nil, fmt.Errorf("unknown on_precision_error %q", o.OnPrecisionError)
	}

	if o.TrackEvents != nil {
		events := make(map[*model.Event]bool)
		for _, name := range o.TrackEvents {
			e := findEvent(sys, name)
			if e == nil {
				return nil, fmt.Errorf("track_events: no event %q", name)
			}
			events[e] = true
		}
		c.TrackEvent = func(e *model.Event) bool { return events[e] }
	}

	if len(o.TrackVariables) > 0 {
		known := make(map[string]bool)
		for _, v := range globals(sys) {
			known[v.String()] = true
		}
		names := make(map[string]bool)
		for _, name := range o.TrackVariables {
			if !known[name] {
				return nil, fmt.Errorf("track_variables: no variable %q", name)
			}
			names[name] = true
		}
		c.TrackVariable = func(v explore.Variable) bool {
			return v.Kind == explore.GlobalVar && names[v.String()]
		}
	}
	return c, nil
}

func findEvent(sys *model.System, name string) *model.Event {
	for _, inst := range sys.Instances {
		for _, e := range inst.Class.Events {
			if ev := inst.Event(e); ev.String() == name {
				return ev
			}
		}
	}
	return nil
}

// globals returns the global variables of sys: its system globals and
// the fields of every instance.
func globals(sys *model.System) []explore.Variable {
	var vs []explore.Variable
	for _, v := range sys.Globals {
		vs = append(vs, explore.Global(nil, v))
	}
	for _, inst := range sys.Instances {
		for _, f := range inst.Class.Fields {
			vs = append(vs, explore.Global(inst, f))
		}
	}
	return vs
}
