package batch

import (
	"errors"
	"testing"
)

func TestNewOK(t *testing.T) {
	r := NewOK("p1")
	if r.ID() != "p1" || r.Status() != StatusOK || r.Err() != nil || r.Failed() {
		t.Errorf("unexpected result %+v", r)
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("load node: not found")
	r := NewError("c7", err)
	if r.ID() != "c7" || r.Status() != StatusError || !r.Failed() {
		t.Errorf("unexpected result %+v", r)
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}

func TestCountFailed(t *testing.T) {
	boom := errors.New("boom")
	nodes := []Result{NewOK("p1"), NewError("p2", boom), NewOK("c1")}
	users := []Result{NewError("u1", boom), NewError("u2", nil)}

	tests := []struct {
		name  string
		lists [][]Result
		want  int
	}{
		{"none", nil, 0},
		{"nodes only", [][]Result{nodes}, 1},
		{"nil error still fails", [][]Result{users}, 2},
		{"both", [][]Result{nodes, users}, 3},
	}
	for _, tc := range tests {
		if got := CountFailed(tc.lists...); got != tc.want {
			t.Errorf("%s: CountFailed = %d, want %d", tc.name, got, tc.want)
		}
	}
}
