package explore

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yangshenyi/SDG4Go/model"
)

func TestLocationParent(t *testing.T) {
	fn := &model.Function{Name: "run"}
	tests := []struct {
		name    string
		indices []int
		want    []int
	}{
		{"body", nil, nil},
		{"top level", []int{2}, []int{}},
		{"nested", []int{0, 1, 3}, []int{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Location{fn, tt.indices}.Parent()
			if diff := cmp.Diff(tt.want, p.Indices); diff != "" {
				t.Errorf("Parent mismatch (-want +got):\n%s", diff)
			}
		})
	}

	// Growing the parent must not overwrite the child's path.
	l := Location{fn, []int{0, 1}}
	_ = append(l.Parent().Indices, 7)
	if diff := cmp.Diff([]int{0, 1}, l.Indices); diff != "" {
		t.Errorf("child changed (-want +got):\n%s", diff)
	}
}
