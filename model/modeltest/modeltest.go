// Package modeltest builds small systems shared by the tests and the
// demo driver.
package modeltest

import "github.com/yangshenyi/SDG4Go/model"

// Assign returns "x = y".
func Assign(x *model.Var, y model.Expression) *model.Binary {
	return &model.Binary{Op: "=", X: &model.VarRef{Var: x}, Y: y}
}

// Ref returns a reference to v.
func Ref(v *model.Var) *model.VarRef { return &model.VarRef{Var: v} }

// Int returns an integer constant.
func Int(i int) *model.Const { return &model.Const{Value: i} }

// Wait returns a call of the wait built-in.
func Wait(args ...model.Expression) *model.Call {
	return &model.Call{Func: model.Wait, Args: args}
}

// Fixture is a system with a single class "Top" instantiated as
// "top". Each process runs a function of Top.
type Fixture struct {
	System *model.System
	Class  *model.Class
	Top    *model.Instance
	Vars   map[string]*model.Var
}

// Var returns the field of Top with the given name.
func (f *Fixture) Var(name string) *model.Var { return f.Vars[name] }

// Function returns the member function of Top with the given name.
func (f *Fixture) Function(name string) *model.Function { return f.Class.Method(name) }

func newFixture(fields []string, events []string) *Fixture {
	f := &Fixture{Class: &model.Class{Name: "Top", Events: events}, Vars: make(map[string]*model.Var)}
	for _, name := range fields {
		v := &model.Var{Name: name, Kind: model.Field}
		f.Class.Fields = append(f.Class.Fields, v)
		f.Vars[name] = v
	}
	f.Top = model.NewInstance("top", f.Class)
	f.System = &model.System{Instances: []*model.Instance{f.Top}}
	return f
}

// thread registers fn as a member function and starts a thread
// running it.
func (f *Fixture) thread(fn *model.Function) *model.Process {
	f.Class.Add(fn)
	p := &model.Process{Name: fn.Name, Instance: f.Top, Function: fn, Kind: model.Thread}
	f.System.Processes = append(f.System.Processes, p)
	return p
}

// Sequential is a single thread "run" executing "x = 1; y = x;".
func Sequential() *Fixture {
	f := newFixture([]string{"x", "y"}, nil)
	x, y := f.Var("x"), f.Var("y")
	f.thread(&model.Function{Name: "run", Body: []model.Expression{
		Assign(x, Int(1)),
		Assign(y, Ref(x)),
	}})
	return f
}

// Branch is a single thread "run" executing
// "if (c) x = 1; y = x;", where c is undetermined.
func Branch() *Fixture {
	f := newFixture([]string{"c", "x", "y"}, nil)
	c, x, y := f.Var("c"), f.Var("x"), f.Var("y")
	f.thread(&model.Function{Name: "run", Body: []model.Expression{
		&model.If{Cond: Ref(c), Then: []model.Expression{Assign(x, Int(1))}},
		Assign(y, Ref(x)),
	}})
	return f
}

// Notification has a thread "waiter" executing "wait(e); x = 1;" and
// a thread "notifier" executing "e.notify(SC_ZERO_TIME);".
func Notification() *Fixture {
	f := newFixture([]string{"x"}, []string{"e"})
	f.thread(&model.Function{Name: "waiter", Body: []model.Expression{
		Wait(&model.EventRef{Name: "e"}),
		Assign(f.Var("x"), Int(1)),
	}})
	f.thread(&model.Function{Name: "notifier", Body: []model.Expression{
		&model.Notify{Event: &model.EventRef{Name: "e"}, Delay: []model.Expression{&model.Const{Value: model.ZeroTime}}},
	}})
	return f
}

// UnknownEvent has a thread "run" executing "u.notify(SC_ZERO_TIME);",
// where the event held by u is undetermined unless u is tracked, and
// a thread "other" executing "x = 1;".
func UnknownEvent() *Fixture {
	f := newFixture([]string{"u", "x"}, nil)
	f.thread(&model.Function{Name: "run", Body: []model.Expression{
		&model.Notify{Event: Ref(f.Var("u")), Delay: []model.Expression{&model.Const{Value: model.ZeroTime}}},
	}})
	f.thread(&model.Function{Name: "other", Body: []model.Expression{
		Assign(f.Var("x"), Int(1)),
	}})
	return f
}

// Handoff has a thread "writer" executing
// "g = 1; ev.notify(SC_ZERO_TIME);" and a thread "reader", sensitive
// to ev and not initialized, executing "y = g;". The write of g
// precedes its read in every interleaving.
func Handoff() *Fixture {
	f := newFixture([]string{"g", "y"}, []string{"ev"})
	f.thread(&model.Function{Name: "writer", Body: []model.Expression{
		Assign(f.Var("g"), Int(1)),
		&model.Notify{Event: &model.EventRef{Name: "ev"}, Delay: []model.Expression{&model.Const{Value: model.ZeroTime}}},
	}})
	r := f.thread(&model.Function{Name: "reader", Body: []model.Expression{
		Assign(f.Var("y"), Ref(f.Var("g"))),
	}})
	r.Sensitivity = []*model.Event{f.Top.Event("ev")}
	r.DontInitialize = true
	return f
}

// ProducerConsumer is a producer and a consumer connected by a signal
// channel "chan" with an update routine:
//
//	class Chan { val, newVal; event changed;
//	  write(v) { newVal = v; request_update(); }
//	  read() { return val; }
//	  update() { if (val != newVal) { val = newVal; changed.notify(SC_ZERO_TIME); } } }
//	producer: chan.write(1); wait(1, SC_NS); chan.write(2);
//	consumer: while (true) { wait(chan.changed); count = chan.read(); }
func ProducerConsumer() *model.System {
	val := &model.Var{Name: "val", Kind: model.Field}
	newVal := &model.Var{Name: "newVal", Kind: model.Field}
	v := &model.Var{Name: "v", Kind: model.Param}
	write := &model.Function{Name: "write", Params: []*model.Var{v}, Body: []model.Expression{
		Assign(newVal, Ref(v)),
		&model.Call{Func: model.RequestUpdate},
	}}
	read := &model.Function{Name: "read", Returns: true, Body: []model.Expression{
		&model.Return{Value: Ref(val)},
	}}
	update := &model.Function{Name: "update", Body: []model.Expression{
		&model.If{
			Cond: &model.Binary{Op: "!=", X: Ref(val), Y: Ref(newVal)},
			Then: []model.Expression{
				Assign(val, Ref(newVal)),
				&model.Notify{Event: &model.EventRef{Name: "changed"}, Delay: []model.Expression{&model.Const{Value: model.ZeroTime}}},
			},
		},
	}}
	chanClass := (&model.Class{Name: "Chan", Fields: []*model.Var{val, newVal}, Events: []string{"changed"}}).Add(write, read, update)
	ch := model.NewInstance("chan", chanClass)

	count := &model.Var{Name: "count", Kind: model.Field}
	on := func(x *model.Call) *model.Access { return &model.Access{X: &model.Const{Value: ch}, Member: x} }
	producer := &model.Function{Name: "producer", Body: []model.Expression{
		on(&model.Call{Func: write, Args: []model.Expression{Int(1)}}),
		Wait(Int(1), &model.Const{Value: model.NS}),
		on(&model.Call{Func: write, Args: []model.Expression{Int(2)}}),
	}}
	consumer := &model.Function{Name: "consumer", Body: []model.Expression{
		&model.While{Cond: &model.Const{Value: true}, Body: []model.Expression{
			Wait(&model.Const{Value: ch.Event("changed")}),
			Assign(count, on(&model.Call{Func: read})),
		}},
	}}
	topClass := (&model.Class{Name: "Top", Fields: []*model.Var{count}}).Add(producer, consumer)
	top := model.NewInstance("top", topClass)

	return &model.System{
		Instances: []*model.Instance{ch, top},
		Processes: []*model.Process{
			{Name: "producer", Instance: top, Function: producer, Kind: model.Thread},
			{Name: "consumer", Instance: top, Function: consumer, Kind: model.Thread},
		},
	}
}
