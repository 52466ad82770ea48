package sdg

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yangshenyi/SDG4Go/explore"
	"github.com/yangshenyi/SDG4Go/model/modeltest"
)

func TestReadConfig(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    *Options
		wantErr bool
	}{
		{"empty", "", &Options{}, false},
		{
			name: "full",
			in: `advanced: true
threads: 4
stop_mode: delta
max_states: 100
on_precision_error: abort
track_events: [top.e]
track_variables: [top.x]
`,
			want: &Options{
				Advanced:         true,
				Threads:          4,
				StopMode:         "delta",
				MaxStates:        100,
				OnPrecisionError: "abort",
				TrackEvents:      []string{"top.e"},
				TrackVariables:   []string{"top.x"},
			},
		},
		{"unknown key", "thread: 4\n", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadConfig(strings.NewReader(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadConfig error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ReadConfig mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOptionsConfig(t *testing.T) {
	f := modeltest.Notification()
	o := &Options{
		StopMode:         "delta",
		OnPrecisionError: "abort",
		TrackEvents:      []string{"top.e"},
		TrackVariables:   []string{"top.x"},
	}
	c, err := o.Config(f.System)
	if err != nil {
		t.Fatal(err)
	}
	if c.StopMode != explore.StopFinishDelta {
		t.Errorf("StopMode = %v, want delta", c.StopMode)
	}
	if c.OnPrecisionError != explore.AbortOnPrecisionError {
		t.Errorf("OnPrecisionError = %v, want abort", c.OnPrecisionError)
	}
	if !c.TrackEvent(f.Top.Event("e")) {
		t.Error("top.e not tracked")
	}
	x := explore.Global(f.Top, f.Var("x"))
	if !c.TrackVariable(x) {
		t.Errorf("%v not tracked", x)
	}
	if c.TrackVariable(explore.EventTriggerOf(f.Top.Event("e"))) {
		t.Error("trigger tracked as a variable")
	}

	defaults, err := (&Options{}).Config(f.System)
	if err != nil {
		t.Fatal(err)
	}
	if defaults.TrackEvent != nil || defaults.TrackVariable != nil {
		t.Error("default options restrict tracking")
	}
}

func TestOptionsConfigErrors(t *testing.T) {
	f := modeltest.Notification()
	tests := []struct {
		name string
		o    Options
	}{
		{"stop mode", Options{StopMode: "never"}},
		{"precision policy", Options{OnPrecisionError: "ignore"}},
		{"event", Options{TrackEvents: []string{"top.nope"}}},
		{"variable", Options{TrackVariables: []string{"top.nope"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.o.Config(f.System); err == nil {
				t.Error("Config succeeded, want an error")
			}
		})
	}
}
