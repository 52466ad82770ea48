package model_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/yangshenyi/SDG4Go/model"
	"github.com/yangshenyi/SDG4Go/model/modeltest"
)

func TestCacheGet(t *testing.T) {
	var c model.Cache[string, int]
	var (
		mu    sync.Mutex
		calls int
	)
	create := func(k string) int {
		mu.Lock()
		calls++
		mu.Unlock()
		return len(k)
	}

	var wg sync.WaitGroup
	results := make([]int, 16)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.Get("abc", create)
		}()
	}
	wg.Wait()
	for i, r := range results {
		if r != 3 {
			t.Errorf("result %d = %d, want 3", i, r)
		}
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}

	c.Evict("abc")
	before := calls
	c.Get("abc", create)
	if calls != before+1 {
		t.Error("evicted entry not recreated")
	}
}

func TestIndexParent(t *testing.T) {
	f := modeltest.Branch()
	run := f.Function("run")
	ix := model.NewIndex()

	iff := run.Body[0].(*model.If)
	assign := iff.Then[0].(*model.Binary)
	tests := []struct {
		name string
		e    model.Expression
		want model.Expression
	}{
		{"top level", iff, nil},
		{"condition", iff.Cond, iff},
		{"branch", assign, iff},
		{"operand", assign.Y, assign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ix.Parent(run, tt.e); got != tt.want {
				t.Errorf("Parent(%v) = %v, want %v", tt.e, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := modeltest.ProducerConsumer().Validate(); err != nil {
		t.Errorf("ProducerConsumer: %v", err)
	}

	f := modeltest.Sequential()
	f.System.Instances = append(f.System.Instances, f.Top)
	f.System.Processes = append(f.System.Processes, &model.Process{Name: "m", Instance: f.Top, Function: f.Function("run"), Kind: model.Method})
	err := f.System.Validate()
	if err == nil {
		t.Fatal("Validate accepted an invalid system")
	}
	for _, want := range []string{"duplicate instance", "has no sensitivity"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}

	if err := (&model.System{}).Validate(); err == nil || !strings.Contains(err.Error(), "no processes") {
		t.Errorf("empty system: got %v", err)
	}
}
