package absval

import "testing"

var samples = []Value{Undetermined, Int(0), Int(1), Bool(true), Bool(false), Of("x")}

func TestJoinLattice(t *testing.T) {
	for _, a := range samples {
		if !a.Join(a).Equal(a) {
			t.Errorf("join not idempotent for %v", a)
		}
		if a.Join(Undetermined).IsDetermined() || Undetermined.Join(a).IsDetermined() {
			t.Errorf("undetermined not absorbing for %v", a)
		}
		for _, b := range samples {
			if !a.Join(b).Equal(b.Join(a)) {
				t.Errorf("join not commutative for %v, %v", a, b)
			}
			for _, c := range samples {
				if !a.Join(b).Join(c).Equal(a.Join(b.Join(c))) {
					t.Errorf("join not associative for %v, %v, %v", a, b, c)
				}
			}
		}
	}
}

func TestLogic(t *testing.T) {
	tests := []struct {
		name string
		got  Value
		want Value
	}{
		{"false and ?", And(Bool(false), Undetermined), Bool(false)},
		{"true and ?", And(Bool(true), Undetermined), Undetermined},
		{"true and true", And(Bool(true), Bool(true)), Bool(true)},
		{"true or ?", Or(Undetermined, Bool(true)), Bool(true)},
		{"false or ?", Or(Bool(false), Undetermined), Undetermined},
		{"false or false", Or(Bool(false), Bool(false)), Bool(false)},
		{"not ?", Not(Undetermined), Undetermined},
		{"not true", Not(Bool(true)), Bool(false)},
		{"1 + 2", Apply("+", Int(1), Int(2)), Int(3)},
		{"1 < ?", Apply("<", Int(1), Undetermined), Undetermined},
		{"x == x", Apply("==", Of("x"), Of("x")), Bool(true)},
		{"div zero", Apply("/", Int(1), Int(0)), Undetermined},
		{"neg", ApplyUnary("-", Int(4)), Int(-4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equal(tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestGetUndeterminedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Undetermined.Get()
}
