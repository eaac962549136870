package toolbox

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/floats"
)

func TestReLU(t *testing.T) {
	testCases := []struct {
		x, want float64
	}{
		{x: -3.5, want: 0},
		{x: -1e-300, want: 0},
		{x: 0, want: 0},
		{x: 1e-300, want: 1e-300},
		{x: 2.25, want: 2.25},
	}
	for _, tc := range testCases {
		if got := ReLU(tc.x); got != tc.want {
			t.Errorf("ReLU(%v) = %v, want %v", tc.x, got, tc.want)
		}
		if got := ReLU(ReLU(tc.x)); got != ReLU(tc.x) {
			t.Errorf("ReLU(ReLU(%v)) = %v, want %v", tc.x, got, ReLU(tc.x))
		}
	}
}

func TestSoftmaxIsDistribution(t *testing.T) {
	inputs := [][]float64{
		{0},
		{0, 0},
		{1, 2, 3},
		{-5, 0.5, 12, 7, -0.25},
		{1000, 1001, 999},
		{-1000, -1001},
	}
	for _, v := range inputs {
		got, err := Softmax(v)
		if err != nil {
			t.Fatalf("Softmax(%v) error: %v", v, err)
		}
		if len(got) != len(v) {
			t.Fatalf("Softmax(%v) has length %d, want %d", v, len(got), len(v))
		}
		for i, p := range got {
			if p < 0 || p > 1 || math.IsNaN(p) {
				t.Errorf("Softmax(%v)[%d] = %v, want a value in [0, 1]", v, i, p)
			}
		}
		if sum := floats.Sum(got); math.Abs(sum-1) > 1e-9 {
			t.Errorf("Softmax(%v) sums to %v, want 1", v, sum)
		}
	}
}

func TestSoftmaxShiftInvariant(t *testing.T) {
	v := []float64{0.3, -1.2, 2.7, 0}
	want, err := Softmax(v)
	if err != nil {
		t.Fatalf("Softmax error: %v", err)
	}

	for _, c := range []float64{-50, -1, 3.5, 700} {
		shifted := make([]float64, len(v))
		for i := range v {
			shifted[i] = v[i] + c
		}
		got, err := Softmax(shifted)
		if err != nil {
			t.Fatalf("Softmax error: %v", err)
		}
		if diff := cmp.Diff(got, want, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("Softmax(v + %v) differs from Softmax(v); diff (-got +want)\n%s", c, diff)
		}
	}
}

func TestSoftmaxKnownValues(t *testing.T) {
	got, err := Softmax([]float64{0, 0})
	if err != nil {
		t.Fatalf("Softmax error: %v", err)
	}
	if diff := cmp.Diff(got, []float64{0.5, 0.5}); diff != "" {
		t.Errorf("Wrong output; diff (-got +want)\n%s", diff)
	}

	got, err = Softmax([]float64{0, math.Log(3)})
	if err != nil {
		t.Fatalf("Softmax error: %v", err)
	}
	if diff := cmp.Diff(got, []float64{0.25, 0.75}, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Wrong output; diff (-got +want)\n%s", diff)
	}
}

func TestSoftmaxEmpty(t *testing.T) {
	if _, err := Softmax(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Softmax(nil) error = %v, want ErrEmptyInput", err)
	}
}

func TestSoftmaxNonFinite(t *testing.T) {
	for _, v := range [][]float64{
		{math.Inf(1), 0},
		{0, math.Inf(-1)},
		{1, math.NaN(), 2},
	} {
		if got, err := Softmax(v); !errors.Is(err, ErrNonFinite) {
			t.Errorf("Softmax(%v) = %v, %v; want ErrNonFinite", v, got, err)
		}
	}
}

func TestSoftmaxDoesNotModifyInput(t *testing.T) {
	v := []float64{1, 2, 3}
	if _, err := Softmax(v); err != nil {
		t.Fatalf("Softmax error: %v", err)
	}
	if diff := cmp.Diff(v, []float64{1, 2, 3}); diff != "" {
		t.Errorf("Input modified; diff (-got +want)\n%s", diff)
	}
}
